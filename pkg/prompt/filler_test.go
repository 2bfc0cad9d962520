package prompt_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-regform/pkg/form"
	"github.com/goliatone/go-regform/pkg/model"
	"github.com/goliatone/go-regform/pkg/prompt"
	"github.com/goliatone/go-regform/pkg/store"
	"github.com/goliatone/go-regform/pkg/testsupport"
	"github.com/goliatone/go-regform/pkg/validation"
)

// stubDriver replays scripted answers. Input and Password run the prompt's
// validator and move on to the next scripted answer when it fails, the way a
// terminal re-asks.
type stubDriver struct {
	inputs       []string
	passwords    []string
	confirm      []bool
	selectIdx    []int
	infoMessages []string
	messages     []string
	inputPos     int
	passPos      int
	confirmPos   int
	selectPos    int
}

func (s *stubDriver) next(ctx context.Context, cfg prompt.InputConfig, answers []string, pos *int) (string, error) {
	s.messages = append(s.messages, cfg.Message)
	for {
		if *pos >= len(answers) {
			return "", errors.New("no answer scripted for " + cfg.Message)
		}
		answer := answers[*pos]
		*pos++
		if cfg.Validator != nil {
			if err := cfg.Validator(answer); err != nil {
				_ = s.Info(ctx, err.Error())
				continue
			}
		}
		return answer, nil
	}
}

func (s *stubDriver) Input(ctx context.Context, cfg prompt.InputConfig) (string, error) {
	return s.next(ctx, cfg, s.inputs, &s.inputPos)
}

func (s *stubDriver) Password(ctx context.Context, cfg prompt.InputConfig) (string, error) {
	return s.next(ctx, cfg, s.passwords, &s.passPos)
}

func (s *stubDriver) Confirm(_ context.Context, cfg prompt.ConfirmConfig) (bool, error) {
	s.messages = append(s.messages, cfg.Message)
	if s.confirmPos >= len(s.confirm) {
		return false, errors.New("no confirm scripted")
	}
	val := s.confirm[s.confirmPos]
	s.confirmPos++
	return val, nil
}

func (s *stubDriver) Select(_ context.Context, cfg prompt.SelectConfig) (int, error) {
	s.messages = append(s.messages, cfg.Message)
	if s.selectPos >= len(s.selectIdx) {
		return -1, errors.New("no select scripted")
	}
	val := s.selectIdx[s.selectPos]
	s.selectPos++
	return val, nil
}

func (s *stubDriver) Info(_ context.Context, msg string) error {
	s.infoMessages = append(s.infoMessages, msg)
	return nil
}

func TestFiller_FillsAndSubmits(t *testing.T) {
	driver := &stubDriver{
		inputs:    []string{"Alice", "30", "a@b.com"},
		passwords: []string{"Abcdef1!", "Abcdef1!"},
		selectIdx: []int{1, 1},
		confirm:   []bool{true},
	}
	st := store.New()
	schema := validation.New()
	ctrl := form.NewManual(schema, st)
	var out bytes.Buffer

	filler := prompt.NewFiller(schema,
		prompt.WithPromptDriver(driver),
		prompt.WithCountries(testsupport.Countries()),
		prompt.WithOutput(&out),
	)

	outcome, err := filler.Fill(context.Background(), ctrl)
	if err != nil {
		t.Fatalf("fill: %v", err)
	}
	if !outcome.OK || outcome.Redirect != "/" {
		t.Fatalf("unexpected outcome %+v", outcome)
	}

	got, ok := store.SelectFormData(st.State())
	if !ok {
		t.Fatalf("expected record in store")
	}
	if diff := cmp.Diff(testsupport.ValidValues(), got); diff != "" {
		t.Fatalf("stored record mismatch (-want +got):\n%s", diff)
	}

	wantMessages := []string{"Name", "Age", "Email", "Password", "Confirm Password", "Gender", "Accept Terms & Conditions", "Select Country"}
	if diff := cmp.Diff(wantMessages, driver.messages); diff != "" {
		t.Fatalf("prompt order mismatch (-want +got):\n%s", diff)
	}

	printed := out.String()
	if !strings.Contains(printed, `"name": "Alice"`) || !strings.Contains(printed, `"password": "********"`) {
		t.Fatalf("unexpected summary output:\n%s", printed)
	}
	if strings.Contains(printed, "Abcdef1!") {
		t.Fatalf("expected passwords masked in output:\n%s", printed)
	}
}

func TestFiller_ReasksInvalidAnswers(t *testing.T) {
	driver := &stubDriver{
		inputs:    []string{"alice", "Alice", "-1", "30", "nope", "a@b.com", "", "France"},
		passwords: []string{"weak", "Abcdef1!", "Abcdef1?", "Abcdef1!"},
		selectIdx: []int{2},
		confirm:   []bool{false, true},
	}
	st := store.New()
	schema := validation.New()
	ctrl := form.NewManual(schema, st)

	filler := prompt.NewFiller(schema, prompt.WithPromptDriver(driver), prompt.WithOutput(io.Discard))
	if _, err := filler.Fill(context.Background(), ctrl); err != nil {
		t.Fatalf("fill: %v", err)
	}

	wantInfo := []string{
		validation.MsgNameUppercase,
		validation.MsgAgePositive,
		validation.MsgEmailInvalid,
		validation.MsgPasswordWeak,
		validation.MsgPasswordMismatch,
		validation.MsgAcceptTerms,
		validation.MsgCountryRequired,
	}
	if diff := cmp.Diff(wantInfo, driver.infoMessages); diff != "" {
		t.Fatalf("info messages mismatch (-want +got):\n%s", diff)
	}

	got, _ := store.SelectFormData(st.State())
	if got.Gender != "other" || got.Country != "France" {
		t.Fatalf("unexpected stored record %+v", got)
	}
}

func TestFiller_PicturePrompt(t *testing.T) {
	driver := &stubDriver{
		inputs:    []string{"Alice", "30", "a@b.com", "missing.png", "/tmp/me.png"},
		passwords: []string{"Abcdef1!", "Abcdef1!"},
		selectIdx: []int{0, 0},
		confirm:   []bool{true},
	}
	open := func(path string) (io.ReadCloser, error) {
		if path != "/tmp/me.png" {
			return nil, errors.New("not found")
		}
		return io.NopCloser(bytes.NewReader(testsupport.PNGHeader)), nil
	}

	st := store.New()
	schema := validation.New()
	ctrl := form.NewManual(schema, st)
	filler := prompt.NewFiller(schema,
		prompt.WithPromptDriver(driver),
		prompt.WithCountries(testsupport.Countries()),
		prompt.WithOutput(io.Discard),
		prompt.WithPicturePrompt(open, 0),
	)

	if _, err := filler.Fill(context.Background(), ctrl); err != nil {
		t.Fatalf("fill: %v", err)
	}

	if len(driver.infoMessages) != 1 || !strings.Contains(driver.infoMessages[0], "missing.png") {
		t.Fatalf("expected one read failure message, got %v", driver.infoMessages)
	}
	image, ok := store.SelectFormImage(st.State())
	if !ok || !strings.HasPrefix(image, "data:image/png;base64,") {
		t.Fatalf("expected png data url in store, got %q", image)
	}
	got, _ := store.SelectFormData(st.State())
	if got.Picture == nil || got.Picture.Filename != "me.png" {
		t.Fatalf("expected picture on record, got %+v", got.Picture)
	}
}

func TestFiller_AbortStopsWithoutSubmit(t *testing.T) {
	driver := &abortingDriver{}
	st := store.New()
	schema := validation.New()

	filler := prompt.NewFiller(schema, prompt.WithPromptDriver(driver), prompt.WithOutput(io.Discard))
	_, err := filler.Fill(context.Background(), form.NewManual(schema, st))
	if !errors.Is(err, prompt.ErrAborted) {
		t.Fatalf("expected ErrAborted, got %v", err)
	}
	if _, ok := store.SelectFormData(st.State()); ok {
		t.Fatalf("expected store untouched after abort")
	}
}

func TestFiller_RejectedSubmit(t *testing.T) {
	driver := &stubDriver{
		inputs:    []string{"Alice", "30", "a@b.com", "France"},
		passwords: []string{"Abcdef1!", "Abcdef1!"},
		selectIdx: []int{-1},
		confirm:   []bool{true},
	}
	st := store.New()

	// Without a validator every answer is accepted, so the missing gender is
	// only caught by the controller on submit.
	filler := prompt.NewFiller(nil, prompt.WithPromptDriver(driver), prompt.WithOutput(io.Discard))
	outcome, err := filler.Fill(context.Background(), form.NewManual(validation.New(), st))
	if !errors.Is(err, prompt.ErrRejected) {
		t.Fatalf("expected ErrRejected, got %v", err)
	}

	want := validation.Errors{{Field: model.FieldGender, Message: validation.MsgGenderRequired}}
	if diff := cmp.Diff(want, outcome.Errors); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"gender: Gender is required"}, driver.infoMessages); diff != "" {
		t.Fatalf("info messages mismatch (-want +got):\n%s", diff)
	}
	if _, ok := store.SelectFormData(st.State()); ok {
		t.Fatalf("expected store untouched after rejected submit")
	}
}

type abortingDriver struct{}

func (abortingDriver) Input(context.Context, prompt.InputConfig) (string, error) {
	return "", prompt.ErrAborted
}

func (abortingDriver) Password(context.Context, prompt.InputConfig) (string, error) {
	return "", prompt.ErrAborted
}

func (abortingDriver) Confirm(context.Context, prompt.ConfirmConfig) (bool, error) {
	return false, prompt.ErrAborted
}

func (abortingDriver) Select(context.Context, prompt.SelectConfig) (int, error) {
	return -1, prompt.ErrAborted
}

func (abortingDriver) Info(context.Context, string) error { return nil }

package prompt

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/goliatone/go-regform/pkg/form"
	"github.com/goliatone/go-regform/pkg/model"
	"github.com/goliatone/go-regform/pkg/picture"
	"github.com/goliatone/go-regform/pkg/validation"
)

// Option configures a Filler.
type Option func(*Filler)

// WithPromptDriver overrides the prompt driver used by the filler.
func WithPromptDriver(driver PromptDriver) Option {
	return func(f *Filler) {
		if driver != nil {
			f.driver = driver
		}
	}
}

// WithCountries sets the choices offered for the country prompt. Without a
// list the country is asked as free text.
func WithCountries(countries []model.Country) Option {
	return func(f *Filler) {
		f.countries = append([]model.Country(nil), countries...)
	}
}

// WithOutput sets where the submitted record is printed.
func WithOutput(out io.Writer) Option {
	return func(f *Filler) {
		if out != nil {
			f.out = out
		}
	}
}

// WithPicturePrompt asks for an optional picture path after the validated
// fields. open reads the file; nil uses the local filesystem.
func WithPicturePrompt(open func(path string) (io.ReadCloser, error), limit int64) Option {
	return func(f *Filler) {
		f.askPicture = true
		f.pictureLimit = limit
		if open != nil {
			f.open = open
		}
	}
}

// Filler walks the registration fields in a terminal session, validating every
// answer with the same rules the web forms use, and submits through a
// controller.
type Filler struct {
	driver       PromptDriver
	validator    validation.Validator
	countries    []model.Country
	out          io.Writer
	askPicture   bool
	pictureLimit int64
	open         func(path string) (io.ReadCloser, error)
}

// NewFiller builds a filler validating answers with v.
func NewFiller(v validation.Validator, options ...Option) *Filler {
	f := &Filler{
		validator: v,
		out:       os.Stdout,
		open: func(path string) (io.ReadCloser, error) {
			return os.Open(path)
		},
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(f)
	}
	if f.driver == nil {
		f.driver = NewSurveyDriver(f.out)
	}
	return f
}

// Fill prompts every field, submits through ctrl, and prints the accepted
// record as JSON with passwords masked.
func (f *Filler) Fill(ctx context.Context, ctrl form.Controller) (form.Outcome, error) {
	if ctx == nil {
		return form.Outcome{}, errors.New("prompt: context is required")
	}
	if ctrl == nil {
		return form.Outcome{}, errors.New("prompt: controller is required")
	}

	for _, field := range model.Fields {
		value, err := f.ask(ctx, ctrl, field)
		if err != nil {
			return form.Outcome{}, err
		}
		if _, err := ctrl.Change(ctx, field, value); err != nil {
			return form.Outcome{}, fmt.Errorf("prompt: apply %s: %w", field, err)
		}
	}

	if f.askPicture {
		if err := f.askForPicture(ctx, ctrl); err != nil {
			return form.Outcome{}, err
		}
	}

	outcome, err := ctrl.Submit(ctx)
	if err != nil {
		return outcome, fmt.Errorf("prompt: submit: %w", err)
	}
	if !outcome.OK {
		for _, fieldErr := range outcome.Errors {
			_ = f.driver.Info(ctx, fieldErr.Error())
		}
		return outcome, fmt.Errorf("%w: %w", ErrRejected, outcome.Errors)
	}
	if outcome.ImageErr != nil {
		_ = f.driver.Info(ctx, "Picture not stored: "+outcome.ImageErr.Error())
	}

	summary, err := ctrl.View().Values.MarshalSummary()
	if err != nil {
		return outcome, fmt.Errorf("prompt: encode summary: %w", err)
	}
	if _, err := fmt.Fprintln(f.out, string(summary)); err != nil {
		return outcome, fmt.Errorf("prompt: write summary: %w", err)
	}
	return outcome, nil
}

func (f *Filler) ask(ctx context.Context, ctrl form.Controller, field model.Field) (any, error) {
	current := ctrl.View().Values
	label := field.Label()

	switch field {
	case model.FieldGender:
		labels := make([]string, 0, len(model.Genders))
		for _, gender := range model.Genders {
			labels = append(labels, model.DefaultLabeler(gender))
		}
		idx, err := f.driver.Select(ctx, SelectConfig{
			Message:      label,
			Options:      labels,
			DefaultIndex: indexOf(model.Genders, current.Gender),
		})
		if err != nil {
			return nil, err
		}
		if idx < 0 || idx >= len(model.Genders) {
			return "", nil
		}
		return model.Genders[idx], nil

	case model.FieldAcceptTerms:
		for {
			accepted, err := f.driver.Confirm(ctx, ConfirmConfig{Message: label, Default: current.AcceptTerms})
			if err != nil {
				return nil, err
			}
			if fieldErr := f.check(field, accepted, current); fieldErr != nil {
				_ = f.driver.Info(ctx, fieldErr.Message)
				continue
			}
			return accepted, nil
		}

	case model.FieldCountry:
		if len(f.countries) > 0 {
			names := make([]string, 0, len(f.countries))
			for _, country := range f.countries {
				names = append(names, country.Name)
			}
			idx, err := f.driver.Select(ctx, SelectConfig{
				Message:      label,
				Options:      names,
				DefaultIndex: indexOf(names, current.Country),
				PageSize:     10,
			})
			if err != nil {
				return nil, err
			}
			if idx < 0 || idx >= len(names) {
				return "", nil
			}
			return names[idx], nil
		}
	}

	cfg := InputConfig{
		Message: label,
		Default: current.String(field),
		Validator: func(answer string) error {
			if fieldErr := f.check(field, answer, ctrl.View().Values); fieldErr != nil {
				return errors.New(fieldErr.Message)
			}
			return nil
		},
	}
	if field == model.FieldPassword || field == model.FieldPasswordConfirm {
		cfg.Default = ""
		return f.driver.Password(ctx, cfg)
	}
	return f.driver.Input(ctx, cfg)
}

// check validates candidate for field against a copy of values.
func (f *Filler) check(field model.Field, candidate any, values model.FormValues) *validation.FieldError {
	if f.validator == nil {
		return nil
	}
	working := values.Clone()
	if err := working.Set(field, candidate); err != nil {
		return &validation.FieldError{Field: field, Message: err.Error()}
	}
	return f.validator.ValidateField(field, working)
}

func (f *Filler) askForPicture(ctx context.Context, ctrl form.Controller) error {
	for {
		path, err := f.driver.Input(ctx, InputConfig{
			Message: model.FieldPicture.Label(),
			Help:    "Path to a PNG or JPEG file, leave empty to skip",
		})
		if err != nil {
			return err
		}
		path = strings.TrimSpace(path)
		if path == "" {
			return nil
		}

		pic, err := f.readPicture(path)
		if err != nil {
			_ = f.driver.Info(ctx, fmt.Sprintf("Could not read %s: %v", path, err))
			continue
		}
		if _, err := ctrl.SelectPicture(ctx, pic); err != nil {
			return fmt.Errorf("prompt: select picture: %w", err)
		}
		return nil
	}
}

func (f *Filler) readPicture(path string) (*model.Picture, error) {
	rc, err := f.open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()
	return picture.Read(filepath.Base(path), "", rc, f.pictureLimit)
}

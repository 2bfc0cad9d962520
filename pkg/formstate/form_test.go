package formstate_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-regform/pkg/formstate"
)

// requireNonEmpty fails every registered key whose value is not a non-empty
// string.
func requireNonEmpty(_ context.Context, values map[string]any) formstate.Result {
	errs := map[string]string{}
	for key, value := range values {
		if s, ok := value.(string); !ok || s == "" {
			errs[key] = key + " is required"
		}
	}
	if len(errs) > 0 {
		return formstate.Result{Values: map[string]any{}, Errors: errs}
	}
	return formstate.Result{Values: values, Errors: map[string]string{}}
}

func TestSetValue_OnChangeKeepsOnlyChangedFieldError(t *testing.T) {
	ctx := context.Background()
	form := formstate.New(
		formstate.WithMode(formstate.ModeOnChange),
		formstate.WithResolver(requireNonEmpty),
	)
	form.Register("first")
	form.Register("last")

	if err := form.SetValue(ctx, "first", ""); err != nil {
		t.Fatalf("set value: %v", err)
	}
	if diff := cmp.Diff(map[string]string{"first": "first is required"}, form.Errors()); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}

	if err := form.SetValue(ctx, "first", "Ada"); err != nil {
		t.Fatalf("set value: %v", err)
	}
	if form.HasErrors() {
		t.Fatalf("expected no errors, got %v", form.Errors())
	}
}

func TestSetValue_OnSubmitModeDefersValidation(t *testing.T) {
	ctx := context.Background()
	form := formstate.New(formstate.WithResolver(requireNonEmpty))
	form.Register("first")

	_ = form.SetValue(ctx, "first", "")
	if form.HasErrors() {
		t.Fatalf("expected no errors before submit")
	}

	err := form.HandleSubmit(ctx, nil)
	if !errors.Is(err, formstate.ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}

	_ = form.SetValue(ctx, "first", "Ada")
	if form.HasErrors() {
		t.Fatalf("expected re-validation after first submit to clear error, got %v", form.Errors())
	}
}

func TestHandleSubmit_InvalidReplacesErrorsAndSkipsCallback(t *testing.T) {
	ctx := context.Background()
	form := formstate.New(formstate.WithResolver(requireNonEmpty))
	form.Register("first")
	form.Register("last")
	form.SetError("stale", "old message")

	called := false
	err := form.HandleSubmit(ctx, func(context.Context, map[string]any) error {
		called = true
		return nil
	})
	if !errors.Is(err, formstate.ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
	if called {
		t.Fatalf("onValid must not run for invalid submissions")
	}
	want := map[string]string{"first": "first is required", "last": "last is required"}
	if diff := cmp.Diff(want, form.Errors()); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}

	state := form.State()
	if state.SubmitCount != 1 || !state.IsSubmitted || state.IsSubmitSuccessful || state.IsSubmitting {
		t.Fatalf("unexpected state %+v", state)
	}
}

func TestHandleSubmit_ValidPassesResolverValues(t *testing.T) {
	ctx := context.Background()
	form := formstate.New(
		formstate.WithResolver(requireNonEmpty),
		formstate.WithDefaultValues(map[string]any{"first": "Ada"}),
	)

	var got map[string]any
	err := form.HandleSubmit(ctx, func(_ context.Context, values map[string]any) error {
		got = values
		// Reading back from the callback must not deadlock.
		_ = form.Values()
		return nil
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if diff := cmp.Diff(map[string]any{"first": "Ada"}, got); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}
	if !form.State().IsSubmitSuccessful {
		t.Fatalf("expected successful submit state")
	}
}

func TestHandleSubmit_CallbackErrorMarksUnsuccessful(t *testing.T) {
	form := formstate.New()
	boom := errors.New("boom")
	if err := form.HandleSubmit(context.Background(), func(context.Context, map[string]any) error {
		return boom
	}); !errors.Is(err, boom) {
		t.Fatalf("expected callback error, got %v", err)
	}
	if form.State().IsSubmitSuccessful {
		t.Fatalf("expected unsuccessful state")
	}
}

func TestValues_ReturnsCopy(t *testing.T) {
	form := formstate.New(formstate.WithDefaultValues(map[string]any{
		"nested": map[string]any{"a": "b"},
	}))
	values := form.Values()
	values["nested"].(map[string]any)["a"] = "mutated"

	current, _ := form.Value("nested")
	if current.(map[string]any)["a"] != "b" {
		t.Fatalf("Values leaked internal state")
	}
}

func TestResetAndDirty(t *testing.T) {
	ctx := context.Background()
	form := formstate.New(formstate.WithDefaultValues(map[string]any{"first": "Ada"}))
	form.Register("last")
	_ = form.SetValue(ctx, "last", "Lovelace")
	_ = form.SetValue(ctx, "first", "Grace")

	if diff := cmp.Diff([]string{"first", "last"}, form.State().Dirty); diff != "" {
		t.Fatalf("dirty mismatch (-want +got):\n%s", diff)
	}

	form.Reset()
	want := map[string]any{"first": "Ada", "last": nil}
	if diff := cmp.Diff(want, form.Values()); diff != "" {
		t.Fatalf("values after reset mismatch (-want +got):\n%s", diff)
	}
	if len(form.State().Dirty) != 0 {
		t.Fatalf("expected dirty cleared")
	}
}

func TestSetValue_RequiresName(t *testing.T) {
	if err := formstate.New().SetValue(context.Background(), "  ", "x"); err == nil {
		t.Fatalf("expected error for empty name")
	}
}

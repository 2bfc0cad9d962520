package render_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/goliatone/go-regform/pkg/model"
	"github.com/goliatone/go-regform/pkg/render"
	"github.com/goliatone/go-regform/pkg/validation"
)

func TestMapErrorPayload_PathVariants(t *testing.T) {
	payload := map[string][]string{
		"/body/name":             {"Name is required"},
		"$.email":                {"Must be a valid email", " Must be a valid email "},
		"data[0].country":        {"Country is required"},
		"request/payload/age":    {"Age is required"},
		"non_field_errors":       {"Form level error"},
		"body/unknown-field":     {"Should fall back to form errors"},
		"":                       {"Unscoped form error"},
		"form":                   {"  "},
		"values.passwordConfirm": {"Passwords must match"},
	}

	mapped := render.MapErrorPayload(payload)

	wantFields := map[string][]string{
		"name":            {"Name is required"},
		"email":           {"Must be a valid email"},
		"country":         {"Country is required"},
		"age":             {"Age is required"},
		"passwordConfirm": {"Passwords must match"},
	}
	if diff := cmp.Diff(wantFields, mapped.Fields); diff != "" {
		t.Fatalf("field errors mismatch (-want +got):\n%s", diff)
	}

	wantForm := []string{"Form level error", "Should fall back to form errors", "Unscoped form error"}
	if diff := cmp.Diff(wantForm, mapped.Form, cmpopts.SortSlices(func(a, b string) bool { return a < b })); diff != "" {
		t.Fatalf("form errors mismatch (-want +got):\n%s", diff)
	}
	if got := mapped.First(model.FieldEmail); got != "Must be a valid email" {
		t.Fatalf("unexpected first email error %q", got)
	}
}

func TestMapErrors_ValidationErrors(t *testing.T) {
	err := fmt.Errorf("submit: %w", validation.Errors{
		{Field: model.FieldName, Message: "Name is required"},
		{Field: model.FieldAcceptTerms, Message: "Accept Terms & Conditions is required"},
	})

	mapped := render.MapErrors(err)
	want := map[string][]string{
		"name":        {"Name is required"},
		"acceptTerms": {"Accept Terms & Conditions is required"},
	}
	if diff := cmp.Diff(want, mapped.Fields); diff != "" {
		t.Fatalf("field errors mismatch (-want +got):\n%s", diff)
	}
	if len(mapped.Form) != 0 {
		t.Fatalf("expected no form errors, got %v", mapped.Form)
	}
}

func TestMapErrors_FieldErrorAndPlainError(t *testing.T) {
	mapped := render.MapErrors(&validation.FieldError{Field: model.FieldAge, Message: "Age is required"})
	if got := mapped.First(model.FieldAge); got != "Age is required" {
		t.Fatalf("unexpected age error %q", got)
	}

	mapped = render.MapErrors(validation.FieldError{Field: model.FieldEmail, Message: "Email is required"})
	if got := mapped.First(model.FieldEmail); got != "Email is required" {
		t.Fatalf("unexpected email error %q", got)
	}

	mapped = render.MapErrors(errors.New("upload failed"))
	if diff := cmp.Diff([]string{"upload failed"}, mapped.Form); diff != "" {
		t.Fatalf("form errors mismatch (-want +got):\n%s", diff)
	}

	if mapped := render.MapErrors(nil); mapped.Fields != nil || mapped.Form != nil {
		t.Fatalf("expected empty mapping, got %#v", mapped)
	}
}

func TestMapStringPayload_ResolverShape(t *testing.T) {
	mapped := render.MapStringPayload(map[string]string{
		"email": "Must be a valid email",
		"form":  "could not decode values",
	})
	if got := mapped.First(model.FieldEmail); got != "Must be a valid email" {
		t.Fatalf("unexpected email error %q", got)
	}
	if diff := cmp.Diff([]string{"could not decode values"}, mapped.Form); diff != "" {
		t.Fatalf("form errors mismatch (-want +got):\n%s", diff)
	}
}

func TestMergeFormErrors(t *testing.T) {
	merged := render.MergeFormErrors([]string{" First ", "Second"}, "Second", "third", "  ")
	want := []string{"First", "Second", "third"}
	if diff := cmp.Diff(want, merged); diff != "" {
		t.Fatalf("merged errors mismatch (-want +got):\n%s", diff)
	}
}

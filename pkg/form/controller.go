package form

import (
	"context"
	"errors"

	"github.com/goliatone/go-regform/pkg/model"
	"github.com/goliatone/go-regform/pkg/store"
	"github.com/goliatone/go-regform/pkg/validation"
)

// ErrPictureField is returned when Change is used for the picture input;
// pictures go through SelectPicture.
var ErrPictureField = errors.New("form: picture must be set with SelectPicture")

// Variant identifies a controller implementation and the route serving it.
type Variant string

const (
	VariantManual    Variant = "uncontrolled-form"
	VariantDelegated Variant = "react-hook-form"
)

// Path returns the route of the variant.
func (v Variant) Path() string { return "/" + string(v) }

// Title returns the page heading of the variant.
func (v Variant) Title() string {
	switch v {
	case VariantManual:
		return "Uncontrolled Form"
	case VariantDelegated:
		return "React Hook Form"
	}
	return string(v)
}

// Variants lists the available controllers in display order.
var Variants = []Variant{VariantManual, VariantDelegated}

// ParseVariant resolves a route segment into a Variant.
func ParseVariant(raw string) (Variant, bool) {
	for _, v := range Variants {
		if string(v) == raw {
			return v, true
		}
	}
	return "", false
}

// Status is the controller state machine position.
type Status string

const (
	StatusIdle                Status = "idle"
	StatusEditing             Status = "editing"
	StatusSubmitting          Status = "submitting"
	StatusSubmittedOK         Status = "submitted_ok"
	StatusSubmittedWithErrors Status = "submitted_with_errors"
)

// View is what the rendering layer reads: current values, per-field
// messages, and the submit gate.
type View struct {
	Variant        Variant
	Status         Status
	Editing        model.Field
	Values         model.FormValues
	Errors         map[model.Field]string
	SubmitDisabled bool
}

// Error returns the message shown for field.
func (v View) Error(field model.Field) string {
	return v.Errors[field]
}

// Outcome is the result of a submit attempt.
type Outcome struct {
	OK       bool
	Redirect string
	Errors   validation.Errors
	// ImageErr is set when the record was accepted but its picture could not
	// be turned into a displayable representation.
	ImageErr error
}

// Controller is the contract shared by both variants.
type Controller interface {
	Variant() Variant
	Change(ctx context.Context, field model.Field, value any) (*validation.FieldError, error)
	SelectPicture(ctx context.Context, pic *model.Picture) (store.Token, error)
	// AttachPicture sets the picture on the record without touching the
	// store; the image is written only by an accepted Submit.
	AttachPicture(ctx context.Context, pic *model.Picture) error
	Submit(ctx context.Context) (Outcome, error)
	View() View
}

// PictureEncoder turns a picture into the representation stored on submit.
type PictureEncoder func(pic *model.Picture) (string, error)

// Option configures a controller.
type Option func(*config)

type config struct {
	images      *store.ImageLoader
	encode      PictureEncoder
	successPath string
	initial     *model.FormValues
}

// WithImageLoader enables asynchronous picture loads on selection.
func WithImageLoader(loader *store.ImageLoader) Option {
	return func(cfg *config) {
		cfg.images = loader
	}
}

// WithPictureEncoder overrides the encoder used when a submission carries a
// picture.
func WithPictureEncoder(encode PictureEncoder) Option {
	return func(cfg *config) {
		if encode != nil {
			cfg.encode = encode
		}
	}
}

// WithSuccessPath sets where a successful submit navigates. Defaults to "/".
func WithSuccessPath(path string) Option {
	return func(cfg *config) {
		if path != "" {
			cfg.successPath = path
		}
	}
}

// WithInitialValues seeds the record, e.g. from the last submitted form.
func WithInitialValues(values model.FormValues) Option {
	return func(cfg *config) {
		clone := values.Clone()
		clone.Picture = nil
		cfg.initial = &clone
	}
}

func newConfig(deps []Option, encode PictureEncoder) config {
	cfg := config{successPath: "/", encode: encode}
	for _, opt := range deps {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}
	return cfg
}

func hasErrors(errs map[model.Field]string) bool {
	for _, msg := range errs {
		if msg != "" {
			return true
		}
	}
	return false
}

func cloneErrors(src map[model.Field]string) map[model.Field]string {
	out := make(map[model.Field]string, len(src))
	for field, msg := range src {
		if msg == "" {
			continue
		}
		out[field] = msg
	}
	return out
}

// commit pushes an accepted record and its picture into st.
func commit(st *store.Store, values model.FormValues, encode PictureEncoder) error {
	st.SetFormData(&values)
	if values.Picture == nil || encode == nil {
		return nil
	}
	image, err := encode(values.Picture)
	if err != nil {
		return err
	}
	st.SetFormImage(&image)
	return nil
}

package form

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/goliatone/go-regform/pkg/formstate"
	"github.com/goliatone/go-regform/pkg/model"
	"github.com/goliatone/go-regform/pkg/picture"
	"github.com/goliatone/go-regform/pkg/store"
	"github.com/goliatone/go-regform/pkg/validation"
)

// Delegated leaves value tracking and error bookkeeping to a formstate.Form
// running in on-change mode. The schema is reached only through the
// resolver, except for the final check inside the submit callback.
type Delegated struct {
	validator validation.Validator
	store     *store.Store
	cfg       config
	form      *formstate.Form

	mu      sync.Mutex
	editing model.Field
}

var _ Controller = (*Delegated)(nil)

// NewDelegated builds a controller backed by the formstate helper.
func NewDelegated(v validation.Validator, st *store.Store, options ...Option) *Delegated {
	cfg := newConfig(options, picture.Encode)

	var defaults model.FormValues
	if cfg.initial != nil {
		defaults = cfg.initial.Clone()
	}

	helper := formstate.New(
		formstate.WithMode(formstate.ModeOnChange),
		formstate.WithResolver(NewResolver(v)),
		formstate.WithDefaultValues(defaults.ToMap()),
	)
	for _, field := range model.Fields {
		helper.Register(string(field))
	}

	return &Delegated{
		validator: v,
		store:     st,
		cfg:       cfg,
		form:      helper,
	}
}

func (d *Delegated) Variant() Variant { return VariantDelegated }

// Change forwards the value to the helper, which re-runs the resolver and
// keeps only this field's message.
func (d *Delegated) Change(ctx context.Context, field model.Field, value any) (*validation.FieldError, error) {
	if field == model.FieldPicture {
		return nil, ErrPictureField
	}
	if _, ok := model.ParseField(string(field)); !ok {
		return nil, fmt.Errorf("%w: %q", validation.ErrUnknownField, field)
	}

	normalized, err := normalizeValue(field, value)
	if err != nil {
		return nil, err
	}
	if err := d.form.SetValue(ctx, string(field), normalized); err != nil {
		return nil, err
	}

	d.mu.Lock()
	d.editing = field
	d.mu.Unlock()

	if msg := d.form.ErrorFor(string(field)); msg != "" {
		return &validation.FieldError{Field: field, Message: msg}, nil
	}
	return nil, nil
}

// SelectPicture stores pic in the helper and optionally starts an
// asynchronous load into the store.
func (d *Delegated) SelectPicture(ctx context.Context, pic *model.Picture) (store.Token, error) {
	if err := d.AttachPicture(ctx, pic); err != nil {
		return 0, err
	}
	if pic == nil || d.cfg.images == nil {
		return 0, nil
	}
	return d.cfg.images.Load(ctx, pic), nil
}

func (d *Delegated) AttachPicture(ctx context.Context, pic *model.Picture) error {
	if err := d.form.SetValue(ctx, string(model.FieldPicture), pic); err != nil {
		return err
	}
	d.mu.Lock()
	d.editing = model.FieldPicture
	d.mu.Unlock()
	return nil
}

// Submit runs the helper's submit flow. The callback decodes the accepted
// record, validates it once more with ValidateAll and pushes it to the store.
func (d *Delegated) Submit(ctx context.Context) (Outcome, error) {
	d.mu.Lock()
	d.editing = ""
	d.mu.Unlock()

	var imageErr error
	err := d.form.HandleSubmit(ctx, func(_ context.Context, raw map[string]any) error {
		values, err := model.FromMap(raw)
		if err != nil {
			return err
		}
		if errs := d.validator.ValidateAll(values); len(errs) > 0 {
			return errs
		}
		imageErr = commit(d.store, values, d.cfg.encode)
		return nil
	})

	switch {
	case err == nil:
		return Outcome{OK: true, Redirect: d.cfg.successPath, ImageErr: imageErr}, nil
	case errors.Is(err, formstate.ErrInvalid):
		return Outcome{Errors: d.currentErrors()}, nil
	}

	var errs validation.Errors
	if errors.As(err, &errs) {
		for _, fieldErr := range errs {
			d.form.SetError(string(fieldErr.Field), fieldErr.Message)
		}
		return Outcome{Errors: errs}, nil
	}
	return Outcome{}, fmt.Errorf("form: delegated submit: %w", err)
}

// View re-reads values from the helper rather than from resolver output.
func (d *Delegated) View() View {
	values, _ := model.FromMap(d.form.Values())
	errs := make(map[model.Field]string)
	for name, msg := range d.form.Errors() {
		errs[model.Field(name)] = msg
	}

	d.mu.Lock()
	editing := d.editing
	d.mu.Unlock()

	return View{
		Variant:        VariantDelegated,
		Status:         d.status(editing),
		Editing:        editing,
		Values:         values,
		Errors:         cloneErrors(errs),
		SubmitDisabled: hasErrors(errs),
	}
}

func (d *Delegated) status(editing model.Field) Status {
	state := d.form.State()
	switch {
	case state.IsSubmitting:
		return StatusSubmitting
	case editing != "":
		return StatusEditing
	case state.IsSubmitted && state.IsSubmitSuccessful:
		return StatusSubmittedOK
	case state.IsSubmitted:
		return StatusSubmittedWithErrors
	case len(state.Dirty) > 0:
		return StatusEditing
	}
	return StatusIdle
}

// currentErrors lists the helper's messages in schema field order.
func (d *Delegated) currentErrors() validation.Errors {
	current := d.form.Errors()
	var out validation.Errors
	for _, field := range model.Fields {
		if msg, ok := current[string(field)]; ok && msg != "" {
			out = append(out, validation.FieldError{Field: field, Message: msg})
		}
	}
	if msg, ok := current[FormLevelKey]; ok && msg != "" {
		out = append(out, validation.FieldError{Message: msg})
	}
	return out
}

// normalizeValue coerces raw input into the type the record stores so the
// helper's map always round-trips through model.FromMap.
func normalizeValue(field model.Field, value any) (any, error) {
	var scratch model.FormValues
	if err := scratch.Set(field, value); err != nil {
		return nil, err
	}
	normalized, _ := scratch.Get(field)
	return normalized, nil
}

package form

import (
	"context"
	"fmt"
	"sync"

	"github.com/goliatone/go-regform/pkg/model"
	"github.com/goliatone/go-regform/pkg/picture"
	"github.com/goliatone/go-regform/pkg/store"
	"github.com/goliatone/go-regform/pkg/validation"
)

// Manual keeps its own value and error records. Each change re-validates the
// changed field only; fields that depend on it (passwordConfirm after a
// password edit) keep whatever message they had until they are edited or the
// form is submitted.
type Manual struct {
	validator validation.Validator
	store     *store.Store
	cfg       config

	mu      sync.Mutex
	values  model.FormValues
	errors  map[model.Field]string
	status  Status
	editing model.Field
}

var _ Controller = (*Manual)(nil)

// NewManual builds a manual-state controller.
func NewManual(v validation.Validator, st *store.Store, options ...Option) *Manual {
	cfg := newConfig(options, picture.Encode)
	m := &Manual{
		validator: v,
		store:     st,
		cfg:       cfg,
		errors:    make(map[model.Field]string),
		status:    StatusIdle,
	}
	if cfg.initial != nil {
		m.values = cfg.initial.Clone()
	}
	return m
}

func (m *Manual) Variant() Variant { return VariantManual }

// Change captures value into the local record and updates the field's local
// error from a single-field validation.
func (m *Manual) Change(_ context.Context, field model.Field, value any) (*validation.FieldError, error) {
	if field == model.FieldPicture {
		return nil, ErrPictureField
	}
	if _, ok := model.ParseField(string(field)); !ok {
		return nil, fmt.Errorf("%w: %q", validation.ErrUnknownField, field)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.values.Set(field, value); err != nil {
		return nil, err
	}
	m.status = StatusEditing
	m.editing = field

	fieldErr := m.validator.ValidateField(field, m.values)
	if fieldErr == nil {
		delete(m.errors, field)
		return nil, nil
	}
	m.errors[field] = fieldErr.Message
	return fieldErr, nil
}

// SelectPicture attaches pic to the record and, when an image loader is
// configured, starts loading its displayable representation into the store.
func (m *Manual) SelectPicture(ctx context.Context, pic *model.Picture) (store.Token, error) {
	if err := m.AttachPicture(ctx, pic); err != nil {
		return 0, err
	}
	if pic == nil || m.cfg.images == nil {
		return 0, nil
	}
	return m.cfg.images.Load(ctx, pic), nil
}

// AttachPicture sets pic on the local record only.
func (m *Manual) AttachPicture(_ context.Context, pic *model.Picture) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values.Picture = pic
	m.status = StatusEditing
	m.editing = model.FieldPicture
	return nil
}

// Submit validates the full record. On failure the local error record is
// replaced wholesale with the new failures and nothing is stored.
func (m *Manual) Submit(_ context.Context) (Outcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.status = StatusSubmitting
	m.editing = ""
	values := m.values.Clone()

	if errs := m.validator.ValidateAll(values); len(errs) > 0 {
		next := make(map[model.Field]string, len(errs))
		for _, fieldErr := range errs {
			next[fieldErr.Field] = fieldErr.Message
		}
		m.errors = next
		m.status = StatusSubmittedWithErrors
		return Outcome{Errors: errs}, nil
	}

	m.errors = make(map[model.Field]string)
	imageErr := commit(m.store, values, m.cfg.encode)
	m.status = StatusSubmittedOK
	return Outcome{OK: true, Redirect: m.cfg.successPath, ImageErr: imageErr}, nil
}

// View returns the current render state.
func (m *Manual) View() View {
	m.mu.Lock()
	defer m.mu.Unlock()
	return View{
		Variant:        VariantManual,
		Status:         m.status,
		Editing:        m.editing,
		Values:         m.values.Clone(),
		Errors:         cloneErrors(m.errors),
		SubmitDisabled: hasErrors(m.errors),
	}
}

package form

import (
	"context"

	"github.com/goliatone/go-regform/pkg/formstate"
	"github.com/goliatone/go-regform/pkg/model"
	"github.com/goliatone/go-regform/pkg/validation"
)

// FormLevelKey carries resolver failures not tied to a field, such as a
// record that cannot be decoded.
const FormLevelKey = "form"

// NewResolver adapts v into the formstate resolver shape. A valid record
// comes back as {values: record, errors: {}}; any failure yields {values: {},
// errors: field -> message}. Each field has one combined rule, so collapsing
// to one message per field loses nothing.
func NewResolver(v validation.Validator) formstate.Resolver {
	return func(_ context.Context, raw map[string]any) formstate.Result {
		values, err := model.FromMap(raw)
		if err != nil {
			return formstate.Result{
				Values: map[string]any{},
				Errors: map[string]string{FormLevelKey: err.Error()},
			}
		}
		errs := v.ValidateAll(values)
		if len(errs) == 0 {
			return formstate.Result{Values: raw, Errors: map[string]string{}}
		}
		return formstate.Result{Values: map[string]any{}, Errors: errs.Map()}
	}
}

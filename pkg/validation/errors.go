package validation

import (
	"errors"
	"strings"

	"github.com/goliatone/go-regform/pkg/model"
)

// ErrUnknownField is reported when a caller validates a field the schema does
// not know about.
var ErrUnknownField = errors.New("validation: unknown field")

// FieldError is a single failed rule: the dotted field path plus a fixed,
// human readable message. There are no error codes; callers branch on Field.
type FieldError struct {
	Field   model.Field `json:"field"`
	Message string      `json:"message"`
}

func (e FieldError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return string(e.Field) + ": " + e.Message
}

// Errors is the ordered list of failures produced by ValidateAll, one entry
// per violated field in schema order.
type Errors []FieldError

func (e Errors) Error() string {
	if len(e) == 0 {
		return ""
	}
	parts := make([]string, 0, len(e))
	for _, fieldErr := range e {
		parts = append(parts, fieldErr.Error())
	}
	return "validation: " + strings.Join(parts, "; ")
}

// For returns the failure recorded against field, if any.
func (e Errors) For(field model.Field) (FieldError, bool) {
	for _, fieldErr := range e {
		if fieldErr.Field == field {
			return fieldErr, true
		}
	}
	return FieldError{}, false
}

// Fields returns the field paths that failed, in order.
func (e Errors) Fields() []model.Field {
	if len(e) == 0 {
		return nil
	}
	out := make([]model.Field, 0, len(e))
	for _, fieldErr := range e {
		out = append(out, fieldErr.Field)
	}
	return out
}

// Map collapses the list into a field path to message mapping. Later entries
// win if a path repeats.
func (e Errors) Map() map[string]string {
	out := make(map[string]string, len(e))
	for _, fieldErr := range e {
		out[string(fieldErr.Field)] = fieldErr.Message
	}
	return out
}

package validation

import (
	"fmt"
	"slices"
	"strings"

	"github.com/dlclark/regexp2"
	"github.com/go-playground/validator/v10"

	"github.com/goliatone/go-regform/pkg/model"
)

var validate = validator.New()

// check evaluates one constraint against the full record and returns false
// when it fails. The record is passed whole so cross-field rules can read the
// current value of their reference field.
type check struct {
	kind    string
	message string
	test    func(values model.FormValues, field model.Field) bool
}

// Rule is the combined set of checks attached to a single field. Checks run
// in order and the first failure is the reported one.
type Rule struct {
	Field  model.Field
	checks []check
}

// Kinds lists the check identifiers of the rule, mostly useful for renderers
// that want to mirror constraints as HTML attributes.
func (r Rule) Kinds() []string {
	out := make([]string, 0, len(r.checks))
	for _, c := range r.checks {
		out = append(out, c.kind)
	}
	return out
}

func (r Rule) evaluate(values model.FormValues) *FieldError {
	for _, c := range r.checks {
		if c.test(values, r.Field) {
			continue
		}
		return &FieldError{Field: r.Field, Message: c.message}
	}
	return nil
}

func required(message string) check {
	return check{
		kind:    "required",
		message: message,
		test: func(values model.FormValues, field model.Field) bool {
			return values.String(field) != ""
		},
	}
}

func matches(pattern, message string) check {
	re := regexp2.MustCompile(pattern, regexp2.None)
	return check{
		kind:    "pattern",
		message: message,
		test: func(values model.FormValues, field model.Field) bool {
			ok, err := re.MatchString(values.String(field))
			return err == nil && ok
		},
	}
}

func email(message string) check {
	return check{
		kind:    "email",
		message: message,
		test: func(values model.FormValues, field model.Field) bool {
			return validate.Var(values.String(field), "email") == nil
		},
	}
}

func equalsField(other model.Field, message string) check {
	return check{
		kind:    "equalsField",
		message: message,
		test: func(values model.FormValues, field model.Field) bool {
			return values.String(field) == values.String(other)
		},
	}
}

func isTrue(message string) check {
	return check{
		kind:    "isTrue",
		message: message,
		test: func(values model.FormValues, field model.Field) bool {
			raw, ok := values.Get(field)
			if !ok {
				return false
			}
			checked, isBool := raw.(bool)
			return isBool && checked
		},
	}
}

func oneOf(options []string, message string) check {
	allowed := slices.Clone(options)
	return check{
		kind:    "oneOf",
		message: message,
		test: func(values model.FormValues, field model.Field) bool {
			return slices.Contains(allowed, values.String(field))
		},
	}
}

func oneOfMessage(options []string) string {
	return fmt.Sprintf("Gender must be one of %s", strings.Join(options, ", "))
}

package formstate

// Mode selects when the resolver runs outside of submissions.
type Mode string

const (
	// ModeOnSubmit validates only on submit; after the first submit edits
	// re-validate the changed field.
	ModeOnSubmit Mode = "onSubmit"
	// ModeOnChange validates the changed field on every SetValue.
	ModeOnChange Mode = "onChange"
)

// Option configures a Form.
type Option func(*Form)

// WithResolver sets the resolver used to validate records.
func WithResolver(resolver Resolver) Option {
	return func(f *Form) {
		if resolver != nil {
			f.resolver = resolver
		}
	}
}

// WithMode selects the validation mode.
func WithMode(mode Mode) Option {
	return func(f *Form) {
		if mode != "" {
			f.mode = mode
		}
	}
}

// WithDefaultValues seeds the form; Reset returns to these values.
func WithDefaultValues(values map[string]any) Option {
	return func(f *Form) {
		f.defaults = cloneValues(values)
	}
}

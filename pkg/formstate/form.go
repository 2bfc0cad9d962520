package formstate

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// ErrInvalid is returned by HandleSubmit when the resolver reports errors.
var ErrInvalid = errors.New("formstate: invalid submission")

// State is a snapshot of submission bookkeeping.
type State struct {
	SubmitCount        int
	IsSubmitting       bool
	IsSubmitted        bool
	IsSubmitSuccessful bool
	Dirty              []string
}

// Form tracks values and errors for one form instance. It is safe for
// concurrent use; callbacks passed to HandleSubmit run without the lock held
// so they may read the form back.
type Form struct {
	mu sync.Mutex

	mode     Mode
	resolver Resolver

	defaults   map[string]any
	values     map[string]any
	errors     map[string]string
	registered []string
	dirty      map[string]struct{}
	state      State
}

// New constructs a Form in OnSubmit mode with the AcceptAll resolver unless
// options say otherwise.
func New(options ...Option) *Form {
	f := &Form{
		mode:     ModeOnSubmit,
		resolver: AcceptAll,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(f)
	}
	f.values = cloneValues(f.defaults)
	f.errors = make(map[string]string)
	f.dirty = make(map[string]struct{})
	return f
}

// Register declares a field so it shows up in Values even before it is set.
func (f *Form) Register(name string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.registered {
		if existing == name {
			return
		}
	}
	f.registered = append(f.registered, name)
	if _, ok := f.values[name]; !ok {
		f.values[name] = nil
	}
}

// Registered returns the registered field names in registration order.
func (f *Form) Registered() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.registered...)
}

// SetValue records a new value for name and, depending on the mode, runs the
// resolver and updates that field's error only.
func (f *Form) SetValue(ctx context.Context, name string, value any) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("formstate: field name is required")
	}

	f.mu.Lock()
	f.values[name] = value
	f.dirty[name] = struct{}{}
	revalidate := f.mode == ModeOnChange || f.state.IsSubmitted
	snapshot := cloneValues(f.values)
	resolver := f.resolver
	f.mu.Unlock()

	if !revalidate {
		return nil
	}

	result := resolver(ctx, snapshot)

	f.mu.Lock()
	defer f.mu.Unlock()
	if msg, ok := result.Errors[name]; ok && msg != "" {
		f.errors[name] = msg
	} else {
		delete(f.errors, name)
	}
	return nil
}

// Value returns the current value of name.
func (f *Form) Value(name string) (any, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	value, ok := f.values[name]
	return value, ok
}

// Values returns a copy of the current values.
func (f *Form) Values() map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return cloneValues(f.values)
}

// Errors returns a copy of the current error messages.
func (f *Form) Errors() map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return cloneErrors(f.errors)
}

// ErrorFor returns the message attached to name, or "".
func (f *Form) ErrorFor(name string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.errors[name]
}

// HasErrors reports whether any field currently carries a message.
func (f *Form) HasErrors() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.errors) > 0
}

// SetError attaches a message to name manually.
func (f *Form) SetError(name, message string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if message == "" {
		delete(f.errors, name)
		return
	}
	f.errors[name] = message
}

// ClearErrors removes messages for names, or every message when none given.
func (f *Form) ClearErrors(names ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(names) == 0 {
		f.errors = make(map[string]string)
		return
	}
	for _, name := range names {
		delete(f.errors, name)
	}
}

// HandleSubmit runs the resolver over the full record. When it reports
// errors they replace the current error set and ErrInvalid is returned without
// calling onValid. Otherwise errors are cleared and onValid receives the
// resolver's values.
func (f *Form) HandleSubmit(ctx context.Context, onValid func(ctx context.Context, values map[string]any) error) error {
	f.mu.Lock()
	f.state.IsSubmitting = true
	f.state.SubmitCount++
	snapshot := cloneValues(f.values)
	resolver := f.resolver
	f.mu.Unlock()

	result := resolver(ctx, snapshot)

	f.mu.Lock()
	if !result.Valid() {
		f.errors = cloneErrors(result.Errors)
		f.finishSubmit(false)
		f.mu.Unlock()
		return fmt.Errorf("%w: %d field(s)", ErrInvalid, len(result.Errors))
	}
	f.errors = make(map[string]string)
	f.mu.Unlock()

	var err error
	if onValid != nil {
		err = onValid(ctx, result.Values)
	}

	f.mu.Lock()
	f.finishSubmit(err == nil)
	f.mu.Unlock()
	return err
}

func (f *Form) finishSubmit(success bool) {
	f.state.IsSubmitting = false
	f.state.IsSubmitted = true
	f.state.IsSubmitSuccessful = success
}

// State returns a snapshot of the submission state.
func (f *Form) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := f.state
	out.Dirty = make([]string, 0, len(f.dirty))
	for name := range f.dirty {
		out.Dirty = append(out.Dirty, name)
	}
	sort.Strings(out.Dirty)
	return out
}

// Reset restores default values and clears errors and submission state.
func (f *Form) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values = cloneValues(f.defaults)
	for _, name := range f.registered {
		if _, ok := f.values[name]; !ok {
			f.values[name] = nil
		}
	}
	f.errors = make(map[string]string)
	f.dirty = make(map[string]struct{})
	f.state = State{}
}

func cloneValues(src map[string]any) map[string]any {
	out := make(map[string]any, len(src))
	for k, v := range src {
		out[k] = deepCopy(v)
	}
	return out
}

func cloneErrors(src map[string]string) map[string]string {
	out := make(map[string]string, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}

func deepCopy(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		return cloneValues(typed)
	case []any:
		clone := make([]any, len(typed))
		for i, v := range typed {
			clone[i] = deepCopy(v)
		}
		return clone
	default:
		return typed
	}
}

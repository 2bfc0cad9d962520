package formstate

import "context"

// Result is what a Resolver returns. On success Values carries the accepted
// record and Errors is empty; on failure Values is empty and Errors maps each
// failing field to one message.
type Result struct {
	Values map[string]any
	Errors map[string]string
}

// Valid reports whether the result carries no errors.
func (r Result) Valid() bool {
	return len(r.Errors) == 0
}

// Resolver validates a full candidate record.
type Resolver func(ctx context.Context, values map[string]any) Result

// AcceptAll is the resolver used when none is configured.
func AcceptAll(_ context.Context, values map[string]any) Result {
	return Result{Values: cloneValues(values), Errors: map[string]string{}}
}

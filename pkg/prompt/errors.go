package prompt

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("prompt: aborted")
	// ErrRejected is returned when a submit is refused after every prompt
	// accepted its answer.
	ErrRejected = errors.New("prompt: submission rejected")
)

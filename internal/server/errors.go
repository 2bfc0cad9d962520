package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/goliatone/go-regform/pkg/form"
	"github.com/goliatone/go-regform/pkg/picture"
	"github.com/goliatone/go-regform/pkg/validation"
)

var (
	// ErrUnknownForm is returned for a route segment naming no variant.
	ErrUnknownForm = errors.New("server: unknown form")
	// ErrMissingPicture is returned when a picture upload carries no file.
	ErrMissingPicture = errors.New("server: missing picture file")

	errBadRequest = errors.New("server: malformed request")
)

// statusFor maps an error to the HTTP status it is reported with.
func statusFor(err error) int {
	var maxBytes *http.MaxBytesError
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrUnknownForm), errors.Is(err, validation.ErrUnknownField):
		return http.StatusNotFound
	case errors.As(err, &maxBytes), errors.Is(err, picture.ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, picture.ErrUnsupportedType):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, ErrMissingPicture), errors.Is(err, picture.ErrEmpty),
		errors.Is(err, form.ErrPictureField), errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeError reports err as JSON using the status from statusFor. Internal
// errors do not leak their message.
func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		message = http.StatusText(status)
	}
	writeJSON(w, status, errorResponse{Error: message})
}

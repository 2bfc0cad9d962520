package render

import (
	"errors"
	"strings"

	"github.com/goliatone/go-regform/pkg/model"
	"github.com/goliatone/go-regform/pkg/validation"
)

// ErrorMapping splits error payloads into field-level and form-level
// messages. Field keys are the registration field names.
type ErrorMapping struct {
	Fields map[string][]string
	Form   []string
}

// First returns the first message recorded for field.
func (m ErrorMapping) First(field model.Field) string {
	if messages := m.Fields[string(field)]; len(messages) > 0 {
		return messages[0]
	}
	return ""
}

// MergeFormErrors concatenates and normalises multiple form-level error
// slices, trimming whitespace and removing duplicates while preserving order.
func MergeFormErrors(existing []string, extras ...string) []string {
	combined := make([]string, 0, len(existing)+len(extras))
	combined = append(combined, existing...)
	combined = append(combined, extras...)
	return normalizeMessages(combined)
}

// MapErrors maps an error returned by a controller. validation.Errors are
// split per field; any other error becomes a single form-level message.
func MapErrors(err error) ErrorMapping {
	if err == nil {
		return ErrorMapping{}
	}

	var errs validation.Errors
	if errors.As(err, &errs) {
		payload := make(map[string][]string, len(errs))
		for _, fieldErr := range errs {
			payload[string(fieldErr.Field)] = append(payload[string(fieldErr.Field)], fieldErr.Message)
		}
		return MapErrorPayload(payload)
	}

	var fieldPtr *validation.FieldError
	if errors.As(err, &fieldPtr) && fieldPtr != nil {
		return MapErrorPayload(map[string][]string{string(fieldPtr.Field): {fieldPtr.Message}})
	}
	var fieldErr validation.FieldError
	if errors.As(err, &fieldErr) {
		return MapErrorPayload(map[string][]string{string(fieldErr.Field): {fieldErr.Message}})
	}

	return ErrorMapping{Form: normalizeMessages([]string{err.Error()})}
}

// MapErrorPayload normalises error payloads keyed by field name or by a
// pointer-like path ("/body/email", "$.email", "data[0].email"). Unknown paths
// are treated as form-level errors so messages are not lost.
func MapErrorPayload(payload map[string][]string) ErrorMapping {
	mapping := ErrorMapping{
		Fields: make(map[string][]string),
	}
	if len(payload) == 0 {
		mapping.Fields = nil
		return mapping
	}

	for rawPath, messages := range payload {
		normalizedMessages := normalizeMessages(messages)
		if len(normalizedMessages) == 0 {
			continue
		}

		field, ok := mapErrorPath(rawPath)
		if !ok {
			mapping.Form = append(mapping.Form, normalizedMessages...)
			continue
		}
		key := string(field)
		mapping.Fields[key] = normalizeMessages(append(mapping.Fields[key], normalizedMessages...))
	}

	if len(mapping.Fields) == 0 {
		mapping.Fields = nil
	}
	mapping.Form = normalizeMessages(mapping.Form)
	return mapping
}

// MapStringPayload adapts single-message payloads such as resolver output.
func MapStringPayload(payload map[string]string) ErrorMapping {
	expanded := make(map[string][]string, len(payload))
	for key, message := range payload {
		expanded[key] = []string{message}
	}
	return MapErrorPayload(expanded)
}

func normalizeMessages(messages []string) []string {
	if len(messages) == 0 {
		return nil
	}

	out := make([]string, 0, len(messages))
	seen := make(map[string]struct{}, len(messages))

	for _, message := range messages {
		trimmed := strings.TrimSpace(message)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}

	if len(out) == 0 {
		return nil
	}
	return out
}

func mapErrorPath(raw string) (model.Field, bool) {
	trimmed := strings.TrimSpace(raw)
	if isFormLevelKey(trimmed) {
		return "", false
	}

	segments := dropWrapperSegments(parsePathSegments(trimmed))
	for i := len(segments) - 1; i >= 0; i-- {
		if field, ok := model.ParseField(segments[i]); ok {
			return field, true
		}
	}
	return "", false
}

func parsePathSegments(path string) []string {
	clean := strings.TrimSpace(path)
	for strings.HasPrefix(clean, "#") || strings.HasPrefix(clean, "/") || strings.HasPrefix(clean, ".") || strings.HasPrefix(clean, "$") {
		clean = clean[1:]
	}

	replacer := strings.NewReplacer("[", ".", "]", "")
	clean = strings.Trim(replacer.Replace(clean), "./")
	if clean == "" {
		return nil
	}

	parts := strings.FieldsFunc(clean, func(r rune) bool {
		return r == '.' || r == '/'
	})

	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if segment := strings.TrimSpace(part); segment != "" {
			out = append(out, segment)
		}
	}
	return out
}

func dropWrapperSegments(segments []string) []string {
	wrappers := map[string]struct{}{
		"body":    {},
		"request": {},
		"payload": {},
		"data":    {},
		"values":  {},
	}

	out := segments
	for len(out) > 0 {
		if _, ok := wrappers[strings.ToLower(out[0])]; ok {
			out = out[1:]
			continue
		}
		break
	}
	return out
}

func isFormLevelKey(key string) bool {
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "", ".", "/", "#", "$", "form", "root", "__all__", "non_field_errors":
		return true
	default:
		return false
	}
}

package render

// RenderOptions describe per-request data that renderers can use without
// changing the page model.
type RenderOptions struct {
	// Hidden carries extra inputs emitted inside the form, keyed by name.
	Hidden map[string]string
	// FormErrors are messages that belong to no single field, for example a
	// malformed upload.
	FormErrors []string
	// Theme selects the theme variant applied to the document.
	Theme string
}

// ApplyOptions returns page with the form-level errors and hidden inputs of
// options merged into its form. page itself is not modified.
func ApplyOptions(page Page, options RenderOptions) Page {
	if page.Form == nil {
		return page
	}
	form := *page.Form
	form.FormErrors = MergeFormErrors(form.FormErrors, options.FormErrors...)
	form.Hidden = SortedHiddenFields(MergeHiddenFields(hiddenMap(form.Hidden), toHidden(options.Hidden)...))
	page.Form = &form
	return page
}

func hiddenMap(fields []HiddenField) map[string]string {
	if len(fields) == 0 {
		return nil
	}
	out := make(map[string]string, len(fields))
	for _, field := range fields {
		out[field.Name] = field.Value
	}
	return out
}

func toHidden(values map[string]string) []HiddenField {
	out := make([]HiddenField, 0, len(values))
	for name, value := range values {
		out = append(out, HiddenField{Name: name, Value: value})
	}
	return out
}

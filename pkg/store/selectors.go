package store

import (
	"slices"

	"github.com/goliatone/go-regform/pkg/model"
)

// SelectFormData returns a copy of the last submitted form.
func SelectFormData(state State) (model.FormValues, bool) {
	if state.FormData == nil {
		return model.FormValues{}, false
	}
	return state.FormData.Clone(), true
}

// SelectFormImage returns the uploaded image representation.
func SelectFormImage(state State) (string, bool) {
	if state.FormImage == nil {
		return "", false
	}
	return *state.FormImage, true
}

// SelectCountries returns a copy of the country list.
func SelectCountries(state State) []model.Country {
	return slices.Clone(state.Countries)
}

// SelectCountryNames returns the country names in list order.
func SelectCountryNames(state State) []string {
	out := make([]string, 0, len(state.Countries))
	for _, country := range state.Countries {
		out = append(out, country.Name)
	}
	return out
}

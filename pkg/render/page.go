package render

import (
	"strings"

	"github.com/goliatone/go-regform/pkg/form"
	"github.com/goliatone/go-regform/pkg/model"
	"github.com/goliatone/go-regform/pkg/store"
)

// PageKind selects the view a renderer draws.
type PageKind string

const (
	PageLanding PageKind = "landing"
	PageForm    PageKind = "form"
)

// AcceptPicture lists the file types offered by the picture input.
const AcceptPicture = "image/png, image/jpeg"

// Page is the renderer-neutral description of one screen.
type Page struct {
	Kind    PageKind     `json:"kind"`
	Title   string       `json:"title"`
	Nav     []Link       `json:"nav"`
	Form    *FormView    `json:"form,omitempty"`
	Landing *LandingView `json:"landing,omitempty"`
}

type Link struct {
	Href   string `json:"href"`
	Label  string `json:"label"`
	Active bool   `json:"active,omitempty"`
}

type Option struct {
	Value    string `json:"value"`
	Label    string `json:"label"`
	Selected bool   `json:"selected,omitempty"`
}

// FieldView is one input as drawn by the form view.
type FieldView struct {
	Name    string   `json:"name"`
	Label   string   `json:"label"`
	Type    string   `json:"type"`
	Value   string   `json:"value,omitempty"`
	Error   string   `json:"error,omitempty"`
	Checked bool     `json:"checked,omitempty"`
	Accept  string   `json:"accept,omitempty"`
	Options []Option `json:"options,omitempty"`
}

type FormView struct {
	Variant        string        `json:"variant"`
	Title          string        `json:"title"`
	Action         string        `json:"action"`
	FieldAction    string        `json:"fieldAction"`
	PictureAction  string        `json:"pictureAction"`
	Status         string        `json:"status"`
	Fields         []FieldView   `json:"fields"`
	SubmitDisabled bool          `json:"submitDisabled"`
	FormErrors     []string      `json:"formErrors,omitempty"`
	Hidden         []HiddenField `json:"hidden,omitempty"`
}

// SummaryRow is one line of the last submitted record.
type SummaryRow struct {
	Field string `json:"field"`
	Label string `json:"label"`
	Value string `json:"value"`
}

type LandingView struct {
	Image   string       `json:"image,omitempty"`
	HasData bool         `json:"hasData"`
	Data    []SummaryRow `json:"data,omitempty"`
	Links   []Link       `json:"links"`
}

// Navigation returns the top-level links with active marking the current path.
func Navigation(active string) []Link {
	links := []Link{{Href: "/", Label: "Home"}}
	for _, variant := range form.Variants {
		links = append(links, Link{Href: variant.Path(), Label: variant.Title()})
	}
	for i := range links {
		links[i].Active = links[i].Href == active
	}
	return links
}

// NewFormPage describes the form screen of a controller. countries feeds the
// country select; a value not in the list is still offered so it stays
// selected after a re-render.
func NewFormPage(view form.View, countries []model.Country) Page {
	path := view.Variant.Path()
	fv := &FormView{
		Variant:        string(view.Variant),
		Title:          view.Variant.Title(),
		Action:         path,
		FieldAction:    path + "/fields/",
		PictureAction:  path + "/picture",
		Status:         string(view.Status),
		SubmitDisabled: view.SubmitDisabled,
		Hidden:         []HiddenField{VariantField(string(view.Variant))},
	}

	for _, field := range model.Fields {
		fv.Fields = append(fv.Fields, fieldView(field, view, countries))
	}
	fv.Fields = append(fv.Fields, FieldView{
		Name:   string(model.FieldPicture),
		Label:  model.FieldPicture.Label(),
		Type:   "file",
		Value:  view.Values.String(model.FieldPicture),
		Accept: AcceptPicture,
	})

	return Page{
		Kind:  PageForm,
		Title: fv.Title,
		Nav:   Navigation(path),
		Form:  fv,
	}
}

func fieldView(field model.Field, view form.View, countries []model.Country) FieldView {
	fv := FieldView{
		Name:  string(field),
		Label: field.Label(),
		Type:  inputType(field),
		Value: view.Values.String(field),
		Error: view.Error(field),
	}

	switch field {
	case model.FieldAcceptTerms:
		fv.Value = ""
		fv.Checked = view.Values.AcceptTerms
	case model.FieldGender:
		for _, gender := range model.Genders {
			fv.Options = append(fv.Options, Option{
				Value:    gender,
				Label:    model.DefaultLabeler(gender),
				Selected: gender == view.Values.Gender,
			})
		}
	case model.FieldCountry:
		fv.Options = countryOptions(countries, view.Values.Country)
	}
	return fv
}

func inputType(field model.Field) string {
	switch field {
	case model.FieldAge:
		return "number"
	case model.FieldEmail:
		return "email"
	case model.FieldPassword, model.FieldPasswordConfirm:
		return "password"
	case model.FieldGender:
		return "radio"
	case model.FieldAcceptTerms:
		return "checkbox"
	case model.FieldCountry:
		return "select"
	}
	return "text"
}

func countryOptions(countries []model.Country, selected string) []Option {
	options := make([]Option, 0, len(countries)+1)
	found := false
	for _, country := range countries {
		isSelected := country.Name == selected
		found = found || isSelected
		options = append(options, Option{Value: country.Name, Label: country.Name, Selected: isSelected})
	}
	if selected != "" && !found {
		options = append(options, Option{Value: selected, Label: selected, Selected: true})
	}
	return options
}

// NewLandingPage describes the home screen from a store snapshot.
func NewLandingPage(state store.State) Page {
	landing := &LandingView{}
	if image, ok := store.SelectFormImage(state); ok {
		landing.Image = image
	}
	if values, ok := store.SelectFormData(state); ok {
		landing.HasData = true
		landing.Data = SummaryRows(values)
	}
	for _, variant := range form.Variants {
		landing.Links = append(landing.Links, Link{Href: variant.Path(), Label: variant.Title()})
	}

	return Page{
		Kind:    PageLanding,
		Title:   "Home",
		Nav:     Navigation("/"),
		Landing: landing,
	}
}

// SummaryRows lists a record for display with the password fields masked.
func SummaryRows(values model.FormValues) []SummaryRow {
	rows := make([]SummaryRow, 0, len(model.Fields)+1)
	for _, field := range model.Fields {
		value := values.String(field)
		switch field {
		case model.FieldPassword, model.FieldPasswordConfirm:
			if value != "" {
				value = strings.Repeat("*", 8)
			}
		case model.FieldAcceptTerms:
			value = "No"
			if values.AcceptTerms {
				value = "Yes"
			}
		}
		rows = append(rows, SummaryRow{Field: string(field), Label: summaryLabel(field), Value: value})
	}
	if values.Picture != nil {
		rows = append(rows, SummaryRow{
			Field: string(model.FieldPicture),
			Label: "Picture",
			Value: values.Picture.Filename,
		})
	}
	return rows
}

func summaryLabel(field model.Field) string {
	switch field {
	case model.FieldAcceptTerms:
		return "Accepted Terms"
	case model.FieldCountry:
		return "Country"
	}
	return field.Label()
}

package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Field identifies a single input of the registration form. Values double as
// the dotted field paths carried by validation errors and the input names used
// by renderers.
type Field string

const (
	FieldName            Field = "name"
	FieldAge             Field = "age"
	FieldEmail           Field = "email"
	FieldPassword        Field = "password"
	FieldPasswordConfirm Field = "passwordConfirm"
	FieldGender          Field = "gender"
	FieldAcceptTerms     Field = "acceptTerms"
	FieldCountry         Field = "country"
	FieldPicture         Field = "picture"
)

// Fields lists the validated inputs in display order. The picture input is
// intentionally absent since it carries no rule.
var Fields = []Field{
	FieldName,
	FieldAge,
	FieldEmail,
	FieldPassword,
	FieldPasswordConfirm,
	FieldGender,
	FieldAcceptTerms,
	FieldCountry,
}

// Genders enumerates the selectable gender options.
var Genders = []string{"male", "female", "other"}

// ParseField resolves a raw input name into a Field.
func ParseField(raw string) (Field, bool) {
	trimmed := Field(strings.TrimSpace(raw))
	if trimmed == FieldPicture {
		return trimmed, true
	}
	for _, field := range Fields {
		if field == trimmed {
			return field, true
		}
	}
	return "", false
}

func (f Field) String() string { return string(f) }

// Label returns the human readable label for the field.
func (f Field) Label() string {
	switch f {
	case FieldPasswordConfirm:
		return "Confirm Password"
	case FieldAcceptTerms:
		return "Accept Terms & Conditions"
	case FieldCountry:
		return "Select Country"
	case FieldPicture:
		return "Upload Picture"
	}
	return DefaultLabeler(string(f))
}

// Country is one entry of the selectable reference list.
type Country struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// Picture is an in-memory file reference attached to a submission.
type Picture struct {
	Filename    string `json:"filename"`
	ContentType string `json:"contentType,omitempty"`
	Data        []byte `json:"-"`
}

// Size reports the payload size in bytes.
func (p *Picture) Size() int {
	if p == nil {
		return 0
	}
	return len(p.Data)
}

// FormValues is the record submitted by both form variants.
type FormValues struct {
	Name            string   `json:"name"`
	Age             string   `json:"age"`
	Email           string   `json:"email"`
	Password        string   `json:"password"`
	PasswordConfirm string   `json:"passwordConfirm"`
	Gender          string   `json:"gender"`
	AcceptTerms     bool     `json:"acceptTerms"`
	Country         string   `json:"country"`
	Picture         *Picture `json:"picture,omitempty"`
}

// Get returns the value held for field. Unknown fields report ok=false.
func (v FormValues) Get(field Field) (any, bool) {
	switch field {
	case FieldName:
		return v.Name, true
	case FieldAge:
		return v.Age, true
	case FieldEmail:
		return v.Email, true
	case FieldPassword:
		return v.Password, true
	case FieldPasswordConfirm:
		return v.PasswordConfirm, true
	case FieldGender:
		return v.Gender, true
	case FieldAcceptTerms:
		return v.AcceptTerms, true
	case FieldCountry:
		return v.Country, true
	case FieldPicture:
		return v.Picture, v.Picture != nil
	}
	return nil, false
}

// String returns the textual representation of field as rendered in inputs.
func (v FormValues) String(field Field) string {
	value, ok := v.Get(field)
	if !ok || value == nil {
		return ""
	}
	switch typed := value.(type) {
	case string:
		return typed
	case bool:
		return strconv.FormatBool(typed)
	case *Picture:
		if typed == nil {
			return ""
		}
		return typed.Filename
	}
	return fmt.Sprint(value)
}

// Set writes a value into field. Strings are accepted for every field;
// acceptTerms additionally accepts bool. Checkbox payloads ("on", "true",
// "1") are treated as checked.
func (v *FormValues) Set(field Field, value any) error {
	if v == nil {
		return fmt.Errorf("model: nil form values")
	}
	if field == FieldPicture {
		switch typed := value.(type) {
		case nil:
			v.Picture = nil
		case *Picture:
			v.Picture = typed
		default:
			return fmt.Errorf("model: picture expects *Picture, got %T", value)
		}
		return nil
	}
	if field == FieldAcceptTerms {
		checked, err := asBool(value)
		if err != nil {
			return err
		}
		v.AcceptTerms = checked
		return nil
	}

	text, err := asString(value)
	if err != nil {
		return fmt.Errorf("model: field %q: %w", field, err)
	}
	switch field {
	case FieldName:
		v.Name = text
	case FieldAge:
		v.Age = text
	case FieldEmail:
		v.Email = text
	case FieldPassword:
		v.Password = text
	case FieldPasswordConfirm:
		v.PasswordConfirm = text
	case FieldGender:
		v.Gender = text
	case FieldCountry:
		v.Country = text
	default:
		return fmt.Errorf("model: unknown field %q", field)
	}
	return nil
}

// ToMap converts the record into the generic map shape used by the form-state
// helper. The picture is carried as-is.
func (v FormValues) ToMap() map[string]any {
	out := make(map[string]any, len(Fields)+1)
	for _, field := range Fields {
		value, _ := v.Get(field)
		out[string(field)] = value
	}
	if v.Picture != nil {
		out[string(FieldPicture)] = v.Picture
	}
	return out
}

// FromMap rebuilds a record from a generic map. Missing keys keep their zero
// value; malformed values are reported.
func FromMap(values map[string]any) (FormValues, error) {
	var out FormValues
	for key, value := range values {
		field, ok := ParseField(key)
		if !ok {
			continue
		}
		if value == nil {
			continue
		}
		if err := out.Set(field, value); err != nil {
			return FormValues{}, err
		}
	}
	return out, nil
}

// Clone returns a deep copy of the record.
func (v FormValues) Clone() FormValues {
	out := v
	if v.Picture != nil {
		pic := *v.Picture
		pic.Data = append([]byte(nil), v.Picture.Data...)
		out.Picture = &pic
	}
	return out
}

// MarshalSummary renders the record as indented JSON with the password fields
// masked, for logs and terminal output.
func (v FormValues) MarshalSummary() ([]byte, error) {
	masked := v
	if masked.Password != "" {
		masked.Password = "********"
	}
	if masked.PasswordConfirm != "" {
		masked.PasswordConfirm = "********"
	}
	return json.MarshalIndent(masked, "", "  ")
}

func asString(value any) (string, error) {
	switch typed := value.(type) {
	case nil:
		return "", nil
	case string:
		return typed, nil
	case []string:
		if len(typed) == 0 {
			return "", nil
		}
		return typed[0], nil
	case fmt.Stringer:
		return typed.String(), nil
	case int, int32, int64, float64, bool:
		return fmt.Sprint(typed), nil
	}
	return "", fmt.Errorf("unsupported value type %T", value)
}

func asBool(value any) (bool, error) {
	switch typed := value.(type) {
	case nil:
		return false, nil
	case bool:
		return typed, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(typed)) {
		case "on", "true", "1", "yes", "checked":
			return true, nil
		default:
			return false, nil
		}
	case []string:
		if len(typed) == 0 {
			return false, nil
		}
		return asBool(typed[len(typed)-1])
	}
	return false, fmt.Errorf("model: acceptTerms expects bool, got %T", value)
}

package validation

import "github.com/goliatone/go-regform/pkg/model"

const (
	// NamePattern requires an ASCII capital followed by lowercase letters.
	NamePattern = `^[A-Z][a-z]*\z`
	// UnicodeNamePattern accepts any uppercase letter followed by lowercase
	// letters of any script.
	UnicodeNamePattern = `^\p{Lu}\p{Ll}*\z`
	// AgePattern accepts digit-only strings; no parse, no range check.
	AgePattern = `^[0-9]+\z`
	// PasswordPattern requires 8+ characters from the allowed set with at
	// least one lowercase, uppercase, digit and special character.
	PasswordPattern = `^(?=.*[a-z])(?=.*[A-Z])(?=.*[0-9])(?=.*[@$!%*?&])[A-Za-z0-9@$!%*?&]{8,}\z`
)

const (
	MsgNameRequired            = "Name is required"
	MsgNameUppercase           = "Name should start with an uppercase letter"
	MsgNameUnicode             = "Name should start with an uppercase letter and contain only letters"
	MsgAgeRequired             = "Age is required"
	MsgAgePositive             = "Age should be a positive integer"
	MsgEmailRequired           = "Email is required"
	MsgEmailInvalid            = "Must be a valid email"
	MsgPasswordRequired        = "Password is required"
	MsgPasswordWeak            = "Password must contain at least 8 characters, including 1 uppercase letter, 1 lowercase letter, 1 number, and 1 special character"
	MsgPasswordConfirmRequired = "Password confirmation is required"
	MsgPasswordMismatch        = "Passwords must match"
	MsgGenderRequired          = "Gender is required"
	MsgAcceptTerms             = "Accept Terms & Conditions is required"
	MsgCountryRequired         = "Country is required"
	MsgUnknownField            = "unknown field"
)

// Validator is the capability set form controllers depend on. Both variants
// consume a Validator and never the concrete Schema.
type Validator interface {
	ValidateField(field model.Field, values model.FormValues) *FieldError
	ValidateAll(values model.FormValues) Errors
}

// Option configures schema construction.
type Option func(*config)

type config struct {
	unicodeNames bool
	strictGender bool
}

// WithUnicodeNames accepts uppercase and lowercase letters from any script in
// the name field.
func WithUnicodeNames() Option {
	return func(cfg *config) {
		cfg.unicodeNames = true
	}
}

// WithStrictGender restricts gender to the enumerated options instead of
// only requiring a non-empty value.
func WithStrictGender() Option {
	return func(cfg *config) {
		cfg.strictGender = true
	}
}

// Schema is the declarative set of per-field rules. It is immutable after
// construction and safe for concurrent use.
type Schema struct {
	rules []Rule
	index map[model.Field]int
}

var _ Validator = (*Schema)(nil)

// New builds the registration schema.
func New(options ...Option) *Schema {
	cfg := config{}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	nameRule := matches(NamePattern, MsgNameUppercase)
	if cfg.unicodeNames {
		nameRule = matches(UnicodeNamePattern, MsgNameUnicode)
	}

	genderChecks := []check{required(MsgGenderRequired)}
	if cfg.strictGender {
		genderChecks = append(genderChecks, oneOf(model.Genders, oneOfMessage(model.Genders)))
	}

	rules := []Rule{
		{Field: model.FieldName, checks: []check{required(MsgNameRequired), nameRule}},
		{Field: model.FieldAge, checks: []check{required(MsgAgeRequired), matches(AgePattern, MsgAgePositive)}},
		{Field: model.FieldEmail, checks: []check{required(MsgEmailRequired), email(MsgEmailInvalid)}},
		{Field: model.FieldPassword, checks: []check{required(MsgPasswordRequired), matches(PasswordPattern, MsgPasswordWeak)}},
		{Field: model.FieldPasswordConfirm, checks: []check{
			required(MsgPasswordConfirmRequired),
			equalsField(model.FieldPassword, MsgPasswordMismatch),
		}},
		{Field: model.FieldGender, checks: genderChecks},
		{Field: model.FieldAcceptTerms, checks: []check{isTrue(MsgAcceptTerms)}},
		{Field: model.FieldCountry, checks: []check{required(MsgCountryRequired)}},
	}

	index := make(map[model.Field]int, len(rules))
	for i, rule := range rules {
		index[rule.Field] = i
	}
	return &Schema{rules: rules, index: index}
}

// Fields returns the validated fields in schema order.
func (s *Schema) Fields() []model.Field {
	out := make([]model.Field, 0, len(s.rules))
	for _, rule := range s.rules {
		out = append(out, rule.Field)
	}
	return out
}

// Rule returns the rule attached to field.
func (s *Schema) Rule(field model.Field) (Rule, bool) {
	idx, ok := s.index[field]
	if !ok {
		return Rule{}, false
	}
	return s.rules[idx], true
}

// ValidateField validates a single field against values, which must already
// hold the candidate value. Cross-field rules read the record as it is now.
// A nil result means the field is valid. The picture field has no rule and is
// always valid.
func (s *Schema) ValidateField(field model.Field, values model.FormValues) *FieldError {
	if field == model.FieldPicture {
		return nil
	}
	rule, ok := s.Rule(field)
	if !ok {
		return &FieldError{Field: field, Message: MsgUnknownField}
	}
	return rule.evaluate(values)
}

// ValidateValue places candidate into a copy of values and validates field.
func (s *Schema) ValidateValue(field model.Field, candidate any, values model.FormValues) (*FieldError, error) {
	if _, ok := s.Rule(field); !ok && field != model.FieldPicture {
		return nil, ErrUnknownField
	}
	working := values
	if err := working.Set(field, candidate); err != nil {
		return nil, err
	}
	return s.ValidateField(field, working), nil
}

// ValidateAll collects every violation over the full record without aborting
// early. It returns nil when the record is valid.
func (s *Schema) ValidateAll(values model.FormValues) Errors {
	var errs Errors
	for _, rule := range s.rules {
		if fieldErr := rule.evaluate(values); fieldErr != nil {
			errs = append(errs, *fieldErr)
		}
	}
	return errs
}

// Has reports whether field carries a rule.
func (s *Schema) Has(field model.Field) bool {
	_, ok := s.index[field]
	return ok
}

package core

import (
	"reflect"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

// well-known form fields with extra rules
const (
	FieldEmail    = "email"
	FieldPassword = "password"
)

var (
	// custom validation tags & texts
	notBlankTag  = "notblank"
	notBlankText = "This field is required"

	emailShapeTag   = "emailshape"
	emailShapeText  = "Please enter a valid email address"
	emailShapeRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

	pwdMinLen     = 8
	pwdMinLenTag  = "pwdminlen"
	pwdMinLenText = "Password must be at least 8 characters long"
)

// Fields holds raw form values keyed by field name.
type Fields map[string]string

// Get returns the trimmed value of field `name`.
func (f Fields) Get(name string) string {
	return CleanString(f[name])
}

// Result is the outcome of a FieldValidator check.
type Result struct {
	Valid  bool
	Errors map[string]string // field -> message
}

// Err returns a *ValidationError for an invalid Result, nil otherwise.
func (r Result) Err() error {
	if r.Valid {
		return nil
	}
	flds := make([]FieldError, 0, len(r.Errors))
	for fld, msg := range r.Errors {
		flds = append(flds, FieldError{Field: fld, Error: msg})
	}
	return NewValidationError(nil, flds...)
}

// NewTranslator returns the english translator used for validation messages.
func NewTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}

// InitValidators registers the default translations and the custom form validators.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	// Use form tag names for errors instead of Go struct names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// register custom validators
	_ = validate.RegisterValidation(notBlankTag, notBlankValidation)
	RegisterCustomTranslation(validate, translator, notBlankTag, notBlankText)

	_ = validate.RegisterValidation(emailShapeTag, emailShapeValidation)
	RegisterCustomTranslation(validate, translator, emailShapeTag, emailShapeText)

	_ = validate.RegisterValidation(pwdMinLenTag, pwdMinLenValidation)
	RegisterCustomTranslation(validate, translator, pwdMinLenTag, pwdMinLenText)
}

// RegisterCustomTranslation registers a custom translation for the specified validation tag.
func RegisterCustomTranslation(validate *validator.Validate, translator ut.Translator, tag, text string, override ...bool) {
	var ovrd bool
	if len(override) > 0 {
		ovrd = override[0]
	}
	_ = validate.RegisterTranslation(
		tag, translator,
		func(t ut.Translator) error { return t.Add(tag, text, ovrd) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

// FieldValidator checks raw form fields against the portal's rules.
type FieldValidator struct {
	validate   *validator.Validate
	translator ut.Translator
}

// NewFieldValidator expects `validate` to have gone through InitValidators.
func NewFieldValidator(validate *validator.Validate, translator ut.Translator) *FieldValidator {
	return &FieldValidator{validate: validate, translator: translator}
}

// Check validates `fields`:
// every `required` field must be non-blank, a non-empty `email` must look like local@domain.tld
// and a present `password` must be at least 8 characters long. It reports one message per field.
func (fv *FieldValidator) Check(fields Fields, required ...string) Result {
	res := Result{Valid: true, Errors: make(map[string]string)}

	for name, tags := range fv.rules(fields, required) {
		err := fv.validate.Var(fields[name], strings.Join(tags, ","))
		if err == nil {
			continue
		}
		if vErrs, ok := err.(validator.ValidationErrors); ok && len(vErrs) > 0 {
			res.Errors[name] = vErrs[0].Translate(fv.translator)
		} else {
			res.Errors[name] = err.Error()
		}
		res.Valid = false
	}
	return res
}

// rules builds the ordered validation tags per field; `notblank` always comes first.
func (fv *FieldValidator) rules(fields Fields, required []string) map[string][]string {
	rules := make(map[string][]string, len(fields)+len(required))
	for _, name := range required {
		rules[name] = []string{notBlankTag}
	}
	if email, ok := fields[FieldEmail]; ok && strings.TrimSpace(email) != "" {
		rules[FieldEmail] = append(rules[FieldEmail], emailShapeTag)
	}
	if _, ok := fields[FieldPassword]; ok {
		rules[FieldPassword] = append(rules[FieldPassword], pwdMinLenTag)
	}
	return rules
}

// Custom Validators

func notBlankValidation(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

func emailShapeValidation(fl validator.FieldLevel) bool {
	return emailShapeRegex.MatchString(strings.TrimSpace(fl.Field().String()))
}

func pwdMinLenValidation(fl validator.FieldLevel) bool {
	return utf8.RuneCountInString(fl.Field().String()) >= pwdMinLen
}

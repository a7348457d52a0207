package validator

import (
	"encoding/json"
	"errors"
	"log/slog"
	"reflect"
	"slices"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
	"github.com/samber/lo"
)

var ErrTranslatorNotFound = errors.New("translator not found")

// V10ValidationError maps a snake_case field name to its English message.
type V10ValidationError map[string]string

func (vs V10ValidationError) Error() string {
	if len(vs) == 0 {
		return "validation error"
	}
	b, _ := json.Marshal(map[string]string(vs)) //nolint:errcheck // a string map always marshals
	return string(b)
}

// Values is what the HTTP layer puts under "error".
func (vs V10ValidationError) Values() map[string]string { return vs }

// V10Validator is the go-playground implementation of Validator.
type V10Validator struct {
	validate *validator.Validate
	trans    ut.Translator
}

// rule is a custom tag with its English message. {0} is the field name.
type rule struct {
	tag     string
	check   validator.Func
	message string
}

// NewV10Validator registers the English messages, the json tag as field name
// and the custom `brand` rule, which accepts any of brands (ignoring case)
// or an empty value.
func NewV10Validator(brands ...string) (*V10Validator, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(jsonName)

	lang := en.New()
	trans, ok := ut.New(lang, lang).GetTranslator(lang.Locale())
	if !ok {
		return nil, ErrTranslatorNotFound
	}
	if err := enTranslations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	for _, r := range []rule{brandRule(brands)} {
		if err := register(validate, trans, r); err != nil {
			return nil, err
		}
	}

	return &V10Validator{validate: validate, trans: trans}, nil
}

func jsonName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return f.Name
	}
	return name
}

func brandRule(brands []string) rule {
	known := lo.Map(brands, func(b string, _ int) string { return strings.ToLower(strings.TrimSpace(b)) })

	return rule{
		tag: "brand",
		check: func(fl validator.FieldLevel) bool {
			b := strings.ToLower(strings.TrimSpace(fl.Field().String()))
			return b == "" || slices.Contains(known, b)
		},
		message: "{0} must be one of [" + strings.Join(brands, " ") + "]",
	}
}

func register(validate *validator.Validate, trans ut.Translator, r rule) error {
	if err := validate.RegisterValidation(r.tag, r.check); err != nil {
		return err
	}

	return validate.RegisterTranslation(r.tag, trans,
		func(t ut.Translator) error { return t.Add(r.tag, r.message, false) },
		func(t ut.Translator, fe validator.FieldError) string {
			msg, err := t.T(fe.Tag(), fe.Field())
			if err != nil {
				slog.Warn("validation message missing", "tag", fe.Tag(), "error", err)
				return fe.Error()
			}
			return msg
		},
	)
}

// Validate returns nil, a V10ValidationError listing every failed field, or
// the validator's own error for input that is not a struct.
func (v *V10Validator) Validate(data any) error {
	err := v.validate.Struct(data)

	var fails validator.ValidationErrors
	if !errors.As(err, &fails) {
		return err
	}

	out := make(V10ValidationError, len(fails))
	for _, fe := range fails {
		out[lo.SnakeCase(fe.Field())] = fe.Translate(v.trans)
	}
	return out
}

package validation

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/ru"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	entranslations "github.com/go-playground/validator/v10/translations/en"
	rutranslations "github.com/go-playground/validator/v10/translations/ru"
)

// DefaultLocale is used when a request carries no usable Accept-Language value.
const DefaultLocale = "en"

// FieldError describes a single failed constraint on an inbound request field.
type FieldError struct {
	// Field is the JSON name of the offending field.
	Field string `json:"field"`
	// Type is the failed constraint code (e.g. "required", "email", "min").
	Type string `json:"type"`
	// Msg is the constraint message in the request's locale.
	Msg string `json:"msg"`
}

// Validator validates request structs and renders per-field errors in the
// caller's locale.
type Validator struct {
	validate *validator.Validate
	uni      *ut.UniversalTranslator
}

// New builds a Validator with JSON tag field names and en/ru message catalogs.
func New() *Validator {
	v := validator.New()

	// Report fields under their wire names, not Go names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	enLocale := en.New()
	uni := ut.New(enLocale, enLocale, ru.New())

	if trans, found := uni.GetTranslator("en"); found {
		_ = entranslations.RegisterDefaultTranslations(v, trans)
	}
	if trans, found := uni.GetTranslator("ru"); found {
		_ = rutranslations.RegisterDefaultTranslations(v, trans)
	}

	return &Validator{validate: v, uni: uni}
}

// Check validates s and returns the failed constraints translated into the
// given locale. A nil return means s is valid. Unknown locales fall back to
// the default catalog; a missing translation falls back to the raw
// constraint code.
func (v *Validator) Check(s interface{}, locale string) []FieldError {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []FieldError{{Type: "invalid", Msg: err.Error()}}
	}

	trans, found := v.uni.GetTranslator(locale)
	if !found {
		trans, _ = v.uni.GetTranslator(DefaultLocale)
	}

	out := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		msg := fe.Translate(trans)
		if msg == "" {
			msg = fe.Tag()
		}
		out = append(out, FieldError{
			Field: fe.Field(),
			Type:  fe.Tag(),
			Msg:   msg,
		})
	}
	return out
}

// Locale extracts the preferred locale from an Accept-Language header value.
// Only the first entry matters; region subtags and quality weights are
// stripped ("ru-RU,en;q=0.9" selects "ru").
func Locale(header string) string {
	if header == "" {
		return DefaultLocale
	}

	first := header
	if i := strings.IndexByte(first, ','); i >= 0 {
		first = first[:i]
	}
	if i := strings.IndexByte(first, ';'); i >= 0 {
		first = first[:i]
	}
	if i := strings.IndexByte(first, '-'); i >= 0 {
		first = first[:i]
	}

	first = strings.TrimSpace(strings.ToLower(first))
	if first == "" {
		return DefaultLocale
	}
	return first
}

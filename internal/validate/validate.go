// Package validate runs struct-tag validation and turns failures into
// user-facing field messages.
package validate

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

var (
	requiredTag  = "required"
	requiredText = "{0} is required"

	groupTag  = "budget_group"
	groupText = "{0} must be OPEX or CAPEX"
)

var (
	once       sync.Once
	validate   *validator.Validate
	translator ut.Translator
)

func setup() {
	validate = validator.New()
	english := en.New()
	uni := ut.New(english, english)
	translator, _ = uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	// Use JSON tag names for errors instead of Go struct names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = validate.RegisterValidation(groupTag, func(fl validator.FieldLevel) bool {
		v := fl.Field().String()
		return v == "OPEX" || v == "CAPEX"
	})
	registerTranslation(groupTag, groupText, false)
	registerTranslation(requiredTag, requiredText, true)
}

func registerTranslation(tag, text string, override bool) {
	_ = validate.RegisterTranslation(
		tag, translator,
		func(t ut.Translator) error { return t.Add(tag, text, override) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

// Errors maps a field namespace to its translated message.
type Errors map[string]string

func (e Errors) Error() string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, e[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Struct validates s and returns Errors when any rule fails.
func Struct(s any) error {
	once.Do(setup)
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return fmt.Errorf("validate: %w", err)
	}
	out := make(Errors, len(verrs))
	for _, fe := range verrs {
		out[fieldKey(fe.Namespace())] = fe.Translate(translator)
	}
	return out
}

// Var validates a single value against a tag expression.
func Var(field any, tag string) error {
	once.Do(setup)
	return validate.Var(field, tag)
}

// fieldKey drops the root struct name from a namespace ("Payload.meta.code" -> "meta.code").
func fieldKey(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

// Package validate is the process-wide struct validator. Messages are english
// and name fields by their json tag
package validate

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	entrans "github.com/go-playground/validator/v10/translations/en"
)

// CommandDelimiter is the field separator of the scheduler command protocol (ASCII EM)
const CommandDelimiter = "\x19"

var (
	once  sync.Once
	v     *validator.Validate
	trans ut.Translator
)

// shorter texts than the stock en translations
var messages = map[string]string{
	"min":     "{0} must be at least {1}",
	"max":     "{0} must be at most {1}",
	"nodelim": "{0} must not contain the command delimiter",
}

func setup() {
	v = validator.New(validator.WithRequiredStructEnabled())
	trans, _ = ut.New(en.New()).GetTranslator("en")

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	_ = entrans.RegisterDefaultTranslations(v, trans)

	// nodelim keeps a value from breaking the command framing
	_ = v.RegisterValidation("nodelim", func(fl validator.FieldLevel) bool {
		return !strings.Contains(fl.Field().String(), CommandDelimiter)
	})

	for tag, text := range messages {
		_ = v.RegisterTranslation(tag, trans,
			func(t ut.Translator) error { return t.Add(tag, text, true) },
			func(t ut.Translator, fe validator.FieldError) string {
				msg, _ := t.T(tag, fe.Field(), fe.Param())
				return msg
			},
		)
	}
}

// Struct validates s
func Struct(s any) error {
	once.Do(setup)
	return v.Struct(s)
}

// IsInvalidValidation reports a misuse such as validating a non-struct
func IsInvalidValidation(err error) bool {
	var inv *validator.InvalidValidationError
	return errors.As(err, &inv)
}

// FieldAndMessage returns the first failing field and its message.
// Other errors pass through with no field
func FieldAndMessage(err error) (field, message string) {
	var verrs validator.ValidationErrors
	switch {
	case err == nil:
		return "", ""
	case errors.As(err, &verrs) && len(verrs) > 0:
		return verrs[0].Field(), verrs[0].Translate(trans)
	default:
		return "", err.Error()
	}
}

package validation

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"github.com/dtroode/academia-moderation/internal/model"
)

// Validator checks command structs and reports translated field errors.
type Validator struct {
	validate   *validator.Validate
	translator ut.Translator
}

// New creates a Validator with English messages keyed by JSON field names.
func New() *Validator {
	validate := validator.New()

	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	// Use JSON tag names for errors instead of Go struct names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &Validator{validate: validate, translator: translator}
}

// Struct validates s and returns a *model.Error of kind KindValidation on failure.
func (v *Validator) Struct(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var vErrs validator.ValidationErrors
	if !errors.As(err, &vErrs) {
		return model.NewErrValidation(err.Error())
	}

	fields := make([]model.FieldError, 0, len(vErrs))
	for _, fe := range vErrs {
		fields = append(fields, model.FieldError{
			Field:   fe.Field(),
			Message: fe.Translate(v.translator),
		})
	}
	return model.NewErrValidation("", fields...)
}

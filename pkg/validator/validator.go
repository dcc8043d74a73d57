package validator

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ErrorResponse struct {
	FailedField string
	Tag         string
	Value       string
	Message     string
}

var (
	validate = validator.New()
	trans    ut.Translator
)

func init() {
	// Register custom validation for UUID
	validate.RegisterValidation("uuid_required", func(fl validator.FieldLevel) bool {
		if id, ok := fl.Field().Interface().(uuid.UUID); ok {
			return id != uuid.Nil
		}
		return false
	})
	// decimal.Decimal is a struct, so gt=0 does not apply to it
	validate.RegisterValidation("decimal_gt0", func(fl validator.FieldLevel) bool {
		if d, ok := fl.Field().Interface().(decimal.Decimal); ok {
			return d.IsPositive()
		}
		return false
	})
	validate.RegisterValidation("decimal_gte0", func(fl validator.FieldLevel) bool {
		if d, ok := fl.Field().Interface().(decimal.Decimal); ok {
			return !d.IsNegative()
		}
		return false
	})
}

// UseTranslator registers the default English messages on t; failures render Message with it.
func UseTranslator(t ut.Translator) error {
	trans = t
	if err := en_translations.RegisterDefaultTranslations(validate, t); err != nil {
		return err
	}
	if err := registerMessage(t, "decimal_gt0", "{0} must be greater than zero"); err != nil {
		return err
	}
	return registerMessage(t, "decimal_gte0", "{0} must not be negative")
}

func registerMessage(t ut.Translator, tag, text string) error {
	return validate.RegisterTranslation(tag, t, func(ut ut.Translator) error {
		return ut.Add(tag, text, true)
	}, func(ut ut.Translator, fe validator.FieldError) string {
		msg, _ := ut.T(tag, fe.Field())
		return msg
	})
}

func ValidateStruct(data interface{}) []*ErrorResponse {
	var errors []*ErrorResponse
	err := validate.Struct(data)
	if err != nil {
		validationErrors, ok := err.(validator.ValidationErrors)
		if !ok {
			return []*ErrorResponse{{FailedField: "", Tag: "invalid", Message: err.Error()}}
		}
		for _, err := range validationErrors {
			var element ErrorResponse
			element.FailedField = err.StructNamespace()
			element.Tag = err.Tag()
			element.Value = err.Param()
			if trans != nil {
				element.Message = err.Translate(trans)
			} else {
				element.Message = err.Error()
			}
			errors = append(errors, &element)
		}
	}
	return errors
}

package validator

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

const (
	ErrRequired       = "is required"
	ErrEmail          = "must be a valid email address"
	ErrMinItems       = "must contain at least %s item(s)"
	ErrMinLength      = "must be at least %s characters long"
	ErrMaxLength      = "must be at most %s characters long"
	ErrPhone          = "must be a phone number of 5 to 20 digits, spaces or +-() characters"
	ErrDefaultInvalid = "is invalid"
)

var phoneRgx = regexp.MustCompile(`^\+?[0-9 ()\-]{5,20}$`)

func NewValidator() *validator.Validate {
	validator := validator.New(validator.WithRequiredStructEnabled())

	validator.RegisterTagNameFunc(jsonFieldName)
	validator.RegisterValidation("phone", validatePhone)

	return validator
}

// jsonFieldName makes FieldError.Field() report the JSON name the client sent.
func jsonFieldName(field reflect.StructField) string {
	name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}

	if name == "" {
		return field.Name
	}

	return name
}

func validatePhone(fl validator.FieldLevel) bool {
	phone := strings.TrimSpace(fl.Field().String())

	if !phoneRgx.MatchString(phone) {
		return false
	}

	digits := 0
	for _, ch := range phone {
		if ch >= '0' && ch <= '9' {
			digits++
		}
	}

	return digits >= 5
}

// ValidationMessage converts validator errors into readable messages
func ValidationMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return ErrRequired
	case "email":
		return ErrEmail
	case "phone":
		return ErrPhone
	case "min":
		if err.Kind() == reflect.Slice {
			return fmt.Sprintf(ErrMinItems, err.Param())
		}
		return fmt.Sprintf(ErrMinLength, err.Param())
	case "max":
		return fmt.Sprintf(ErrMaxLength, err.Param())
	default:
		return ErrDefaultInvalid
	}
}

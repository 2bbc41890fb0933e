package middleware

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"

	"github.com/datahub/backend/internal/domain/shared"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// MessageInvalidBody is returned when a request body is not valid JSON
const MessageInvalidBody = "Invalid request body."

// SetupValidator reports binding errors under JSON or form field names
func SetupValidator() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
			}
			return name
		})
	}
}

// BindingErrors converts an error from gin binding into field errors
func BindingErrors(err error) shared.ValidationErrors {
	verrs := shared.NewValidationErrors()

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		for _, e := range fieldErrs {
			verrs.Add(e.Field(), validationMessage(e))
		}
		return verrs
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		verrs.Add(typeErr.Field, "Incorrect type. Expected "+typeErr.Type.String()+".")
		return verrs
	}

	verrs.Add(shared.NonFieldErrorsKey, MessageInvalidBody)
	return verrs
}

func validationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "uuid":
		return "Must be a valid UUID."
	case "oneof":
		return "Must be one of: " + e.Param() + "."
	case "min", "gte":
		if e.Kind() == reflect.String {
			return "Ensure this field has at least " + e.Param() + " characters."
		}
		return "Ensure this value is greater than or equal to " + e.Param() + "."
	case "max", "lte":
		if e.Kind() == reflect.String {
			return "Ensure this field has no more than " + e.Param() + " characters."
		}
		return "Ensure this value is less than or equal to " + e.Param() + "."
	default:
		return "Invalid value."
	}
}

package handler

import (
	stderrors "errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"kairos/internal/errors"
)

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator builds a validator that reports JSON field names.
func NewValidator() *CustomValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &CustomValidator{validator: v}
}

// Validate implements echo.Validator interface. Failures are reported as
// a ValidationError for the first offending field.
func (cv *CustomValidator) Validate(i interface{}) error {
	err := cv.validator.Struct(i)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !stderrors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}
	fe := fieldErrs[0]
	switch fe.Tag() {
	case "required":
		return errors.NewValidationError(fe.Field(), "is required")
	case "max":
		return errors.NewValidationError(fe.Field(), "must be at most "+fe.Param()+" characters")
	default:
		return errors.NewValidationError(fe.Field(), "failed "+fe.Tag())
	}
}

package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/rpupo63/portfolio-backend/errs"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// messages overrides the generic wording for fields the dashboard explains to the user.
var messages = map[string]string{
	"level":     "Level must be between 0 and 100",
	"category":  "Invalid category",
	"icon_type": "Icon type must be 'text' or 'url'",
	"color":     "Color must be a hex value like #3b82f6",
}

// Struct runs the validate tags of a record and reports the first failure as a 400.
func Struct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return errs.NewInternalErrorWithCause("validation failed", err)
	}
	return fieldError(fieldErrs[0])
}

func fieldError(fe validator.FieldError) *errs.ApiErr {
	field := fe.Field()
	if fe.Tag() == "required" {
		return errs.NewMissingRequiredFieldError(field)
	}
	if msg, ok := messages[field]; ok {
		return errs.NewInvalidFieldError(field, msg)
	}
	if fe.Tag() == "max" {
		return errs.NewInvalidFieldError(field, fmt.Sprintf("Field '%s' must be at most %s characters", field, fe.Param()))
	}
	return errs.NewInvalidFieldError(field, fmt.Sprintf("Field '%s' is invalid", field))
}

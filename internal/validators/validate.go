// Package validators turns struct tag validation failures into
// validation_failed business errors.
package validators

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/BruksfildServices01/agent-crm/internal/httperr"
)

var (
	once     sync.Once
	validate *validator.Validate
)

func instance() *validator.Validate {
	once.Do(func() {
		validate = validator.New()
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "" || name == "-" {
				return strings.ToLower(f.Name)
			}
			return name
		})
	})
	return validate
}

// Struct validates v and reports the first failing field.
func Struct(v any) error {
	err := instance().Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return httperr.Wrap(httperr.CodeValidationFailed, message(verrs[0]), err)
	}
	return httperr.Wrap(httperr.CodeValidationFailed, "Invalid input.", err)
}

func IsEmail(s string) bool {
	return instance().Var(s, "email") == nil
}

func message(fe validator.FieldError) string {
	field := fe.Field()

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required.", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address.", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters.", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters.", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s.", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid.", field)
	}
}

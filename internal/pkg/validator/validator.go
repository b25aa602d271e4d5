package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

type Validator struct {
	validate *validator.Validate
}

func New() *Validator {
	v := validator.New()
	// Report fields by their json name so messages match the API parameters.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return &Validator{validate: v}
}

// Violations validates a struct and returns one message per failed rule.
// A nil slice means the value is valid.
func (v *Validator) Violations(i interface{}) []string {
	err := v.validate.Struct(i)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return []string{err.Error()}
	}

	msgs := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		msgs = append(msgs, message(e))
	}
	return msgs
}

func message(e validator.FieldError) string {
	field := e.Field()
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, e.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, e.Param())
	case "gtefield":
		return fmt.Sprintf("%s must not be before %s", field, strings.ToLower(e.Param()))
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, e.Param())
	}
	return fmt.Sprintf("%s failed validation '%s'", field, e.Tag())
}

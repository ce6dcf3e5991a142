// internal/store/validate.go
//
// Thin wrapper around go-playground/validator.
//
// Context
// -------
// Insert and Update validate the normalized field set before touching the
// database.  Two custom rules are registered next to the built-ins:
//
//   - enum     – the field's type implements Valid() bool (Classification,
//     Recurrence, Reminder, Timezone, Salutation).
//   - notzero  – a time.Time that must be set (event_date).
//
// Field names in errors are taken from the json tag so forms can attach a
// message to the matching input.
package store

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/yanizio/agenda/internal/model"
)

type enum interface{ Valid() bool }

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("enum", func(fl validator.FieldLevel) bool {
		e, ok := fl.Field().Interface().(enum)
		return ok && e.Valid()
	})
	_ = v.RegisterValidation("notzero", func(fl validator.FieldLevel) bool {
		t, ok := fl.Field().Interface().(time.Time)
		return ok && !t.IsZero()
	})
	return v
}

// check validates fields and returns *ValidationError on failure.
func check(v *validator.Validate, kind model.Kind, fields any) error {
	err := v.Struct(fields)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}
	out := &ValidationError{Kind: kind}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{
			Field:   fe.Field(),
			Rule:    fe.Tag(),
			Message: message(fe),
		})
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notzero":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "enum":
		return "Choose one of the listed options."
	case "max":
		return fmt.Sprintf("Must be at most %s characters.", fe.Param())
	case "gte", "lte":
		return fmt.Sprintf("Must be between the allowed bounds (%s %s).", fe.Tag(), fe.Param())
	default:
		return "Invalid input."
	}
}

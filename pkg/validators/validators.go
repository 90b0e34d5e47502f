// Package validators wraps go-playground/validator with the custom rules
// used by the request bodies and turns its errors into client messages
package validators

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var passwordCharset = regexp.MustCompile(`^[a-zA-Z0-9!@#$%^&*()_+=-]*$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their JSON name
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}

		return name
	})

	v.RegisterValidation("passwd", func(fl validator.FieldLevel) bool {
		return passwordCharset.MatchString(fl.Field().String())
	})

	return v
}

// Struct validates s and returns an error carrying a message for the first
// failed rule
func Struct(s any) error {
	return translate(validate.Struct(s), "")
}

// Var validates a single value, field is the name used in the message
func Var(value any, tag, field string) error {
	return translate(validate.Var(value, tag), field)
}

func translate(err error, field string) error {
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}

	fe := verrs[0]
	name := fe.Field()
	if field != "" {
		name = field
	}

	return errors.New(message(name, fe))
}

func message(name string, fe validator.FieldError) string {
	label := strings.ToUpper(name[:1]) + name[1:]
	isString := fe.Kind() == reflect.String

	switch fe.Tag() {
	case "required":
		return label + " is required"
	case "email":
		return label + " must be a valid email address"
	case "min":
		if isString {
			return fmt.Sprintf("%s must be at least %s characters long", label, fe.Param())
		}
		return fmt.Sprintf("%s must contain at least %s items", label, fe.Param())
	case "max":
		if isString {
			return fmt.Sprintf("%s must not exceed %s characters", label, fe.Param())
		}
		return fmt.Sprintf("%s must not contain more than %s items", label, fe.Param())
	case "len":
		return fmt.Sprintf("%s must be exactly %s characters long", label, fe.Param())
	case "numeric":
		return label + " must only contain digits"
	case "passwd":
		return label + " contains invalid characters"
	case "eqfield":
		return fmt.Sprintf("%s must match %s", label, lowerFirst(fe.Param()))
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", label, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "excludesall":
		return label + " contains invalid characters"
	default:
		return label + " is invalid"
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}

	return strings.ToLower(s[:1]) + s[1:]
}

package model

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

const MaxUsernameLength = 20

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	if err := v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return IsValidUsername(fl.Field().String())
	}); err != nil {
		panic(err)
	}
	return v
}

// FieldError describes one rejected field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError collects the field errors of one request. It matches
// ErrValidation under errors.Is.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Message
	}
	return strings.Join(msgs, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Validate runs the struct's `validate` tags.
func Validate(s any) error {
	return translate(validate.Struct(s), "")
}

// validateField checks a single value against a tag list under the given
// field name.
// lengthRule is the tag for a required string of at most max characters.
func lengthRule(max int) string {
	return fmt.Sprintf("min=1,max=%d", max)
}

func validateField(name string, value any, tag string) error {
	return translate(validate.Var(value, tag), name)
}

func translate(err error, field string) error {
	if err == nil {
		return nil
	}
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return fmt.Errorf("validate: %w", err)
	}
	out := &ValidationError{Fields: make([]FieldError, 0, len(ves))}
	for _, fe := range ves {
		name := fe.Field()
		if field != "" {
			name = field
		}
		out.Fields = append(out.Fields, FieldError{Field: name, Message: fieldMessage(name, fe)})
	}
	return out
}

func fieldMessage(name string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", name)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", name, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", name, fe.Param())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", name)
	case "alpha":
		return fmt.Sprintf("%s must contain only letters", name)
	case "username":
		return fmt.Sprintf("%s is not a valid username", name)
	}
	return fmt.Sprintf("%s is invalid", name)
}

// IsValidUsername reports whether s is 1-20 lowercase letters, digits, '.'
// or '_', containing at least one letter, not starting with '.' or '_', not
// ending with '.' and without consecutive dots.
func IsValidUsername(s string) bool {
	if len(s) == 0 || len(s) > MaxUsernameLength {
		return false
	}
	if s[0] == '.' || s[0] == '_' || s[len(s)-1] == '.' {
		return false
	}
	if strings.Contains(s, "..") {
		return false
	}
	hasLetter := false
	for _, c := range s {
		switch {
		case c >= 'a' && c <= 'z':
			hasLetter = true
		case c >= '0' && c <= '9', c == '.', c == '_':
		default:
			return false
		}
	}
	return hasLetter
}

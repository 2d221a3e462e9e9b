// Package validation wraps go-playground/validator with the account rules and
// converts its errors into *domain.ValidationError.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/cinefind/moviesearch/internal/core/domain"
)

// PasswordSymbols is the set a strong password must draw at least one symbol from.
const PasswordSymbols = "@$!%*?&"

// maxPasswordBytes is the bcrypt input ceiling.
const maxPasswordBytes = 72

const passwordRuleMessage = "password must contain at least one uppercase letter, one lowercase letter, one number, and one special character (" + PasswordSymbols + ")"

// Validator satisfies echo.Validator and is shared with the service layer.
type Validator struct {
	v *validator.Validate
}

func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonName)
	_ = v.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		return StrongPassword(fl.Field().String())
	})
	_ = v.RegisterValidation("maxbytes", func(fl validator.FieldLevel) bool {
		limit, err := strconv.Atoi(fl.Param())
		return err == nil && len(fl.Field().String()) <= limit
	})
	return &Validator{v: v}
}

// Validate checks a struct against its `validate` tags.
func (v *Validator) Validate(i any) error {
	return convert(v.v.Struct(i))
}

// Field checks a single value against tag, reporting failures under name.
func (v *Validator) Field(name string, value any, tag string) error {
	err := v.v.Var(value, tag)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		out := &domain.ValidationError{Fields: make(map[string]string, len(ve))}
		for _, fe := range ve {
			out.Fields[name] = message(name, fe)
		}
		return out
	}
	return err
}

// StrongPassword reports whether s has an uppercase letter, a lowercase
// letter, a digit and a symbol from PasswordSymbols, and fits in bcrypt's
// input limit. Length lower bounds are checked by the min tag.
func StrongPassword(s string) bool {
	if len(s) > maxPasswordBytes {
		return false
	}
	var upper, lower, digit, symbol bool
	for _, r := range s {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune(PasswordSymbols, r):
			symbol = true
		}
	}
	return upper && lower && digit && symbol
}

func convert(err error) error {
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err
	}
	out := &domain.ValidationError{Fields: make(map[string]string, len(ve))}
	for _, fe := range ve {
		field := fe.Field()
		if _, seen := out.Fields[field]; seen {
			continue
		}
		out.Fields[field] = message(field, fe)
	}
	return out
}

// message converts a single FieldError into a human-readable message.
func message(field string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	case "maxbytes":
		return fmt.Sprintf("%s must be at most %s bytes", field, fe.Param())
	case "password":
		return passwordRuleMessage
	default:
		return fmt.Sprintf("%s failed validation (%s)", field, fe.Tag())
	}
}

func jsonName(f reflect.StructField) string {
	name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return strings.ToLower(f.Name)
	}
	return name
}

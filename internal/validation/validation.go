// Package validation provides request payload validation.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"unicode/utf8"

	"fashionai/internal/models"

	"github.com/go-playground/validator/v10"
)

const (
	minPasswordLength = 8
	maxPasswordLength = 128
)

var usernameRegex = regexp.MustCompile(`^[A-Za-z0-9](?:[A-Za-z0-9_.-]{1,48}[A-Za-z0-9])?$`)

// Validator wraps validator.Validate with the application's custom tags.
type Validator struct {
	validate *validator.Validate
}

// New returns a Validator with the "password" and "username" tags registered
// and field names reported by their json tag.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		return ValidatePassword(fl.Field().String()) == nil
	})
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return ValidateUsername(fl.Field().String()) == nil
	})
	return &Validator{validate: v}
}

// Struct validates s and returns a *models.AppError describing the first failure.
func (v *Validator) Struct(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return models.NewValidationError("Invalid request payload")
	}
	return models.NewValidationError(describe(verrs[0]))
}

func describe(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "len":
		return fmt.Sprintf("%s must be exactly %s characters", field, fe.Param())
	case "numeric":
		return fmt.Sprintf("%s must contain only digits", field)
	case "password":
		return ValidatePassword(fmt.Sprint(fe.Value())).Error()
	case "username":
		return ValidateUsername(fmt.Sprint(fe.Value())).Error()
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

// ValidatePassword enforces length bounds and rejects blank passwords.
func ValidatePassword(password string) error {
	n := utf8.RuneCountInString(password)
	if n < minPasswordLength {
		return fmt.Errorf("password must be at least %d characters", minPasswordLength)
	}
	if n > maxPasswordLength {
		return fmt.Errorf("password must be at most %d characters", maxPasswordLength)
	}
	if strings.TrimSpace(password) == "" {
		return errors.New("password cannot be blank")
	}
	return nil
}

// ValidateUsername allows 1-50 letters, digits, '_', '.', '-', starting and ending alphanumeric.
func ValidateUsername(username string) error {
	if !usernameRegex.MatchString(username) {
		return errors.New("username must be 1-50 characters of letters, digits, '_', '.', '-' and start and end with a letter or digit")
	}
	return nil
}

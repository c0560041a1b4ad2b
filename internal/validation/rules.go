// Package validation provides custom validation rules for the application.
package validation

import (
	"regexp"
	"strings"

	validation "github.com/jellydator/validation"

	apperrors "github.com/karthikpoola6-cmd/email-triage-ai/internal/errors"
)

var (
	// emailRegex is a basic email validation pattern
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
)

// WrapValidationError wraps validation errors as domain ErrInvalidInput
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// Email validates email format using regex
var Email = validation.NewStringRuleWithError(
	func(s string) bool {
		return emailRegex.MatchString(s)
	},
	validation.NewError("validation_email_format", "must be a valid email address"),
)

// NotBlank validates that a string is not empty after trimming whitespace
var NotBlank = validation.NewStringRuleWithError(
	func(s string) bool {
		return strings.TrimSpace(s) != ""
	},
	validation.NewError("validation_not_blank", "must not be blank"),
)

// UnitInterval validates that a float lies in [0, 1], the range of
// classification confidence values.
type UnitInterval struct{}

// Validate checks the value is a float64 within [0, 1].
func (UnitInterval) Validate(value interface{}) error {
	f, ok := value.(float64)
	if !ok {
		return validation.NewError("validation_unit_interval", "must be a float")
	}
	if f < 0 || f > 1 {
		return validation.NewError("validation_unit_interval", "must be between 0 and 1")
	}
	return nil
}

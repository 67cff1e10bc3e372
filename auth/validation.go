package auth

import (
	"strings"

	apperrors "github.com/jrsteele09/go-station-dashboard/internal/errors"
	"github.com/jrsteele09/go-station-dashboard/users"
)

const msgFillAllFields = "Please fill in all fields"

// Validator holds the input rules of the account forms. Rules are checked in
// order and the first failure is reported.
type Validator struct{}

// NewValidator creates a new Validator instance
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateRegistration checks required fields, then name, email and password strength.
func (v *Validator) ValidateRegistration(email, password, name string) error {
	if blank(name) || blank(email) || blank(password) {
		return apperrors.NewValidationError("", msgFillAllFields)
	}
	if err := users.ValidateName(name); err != nil {
		return err
	}
	if err := users.ValidateEmail(strings.TrimSpace(email)); err != nil {
		return err
	}
	return users.ValidatePasswordStrength(password)
}

func (v *Validator) ValidateLogin(email, password string) error {
	if blank(email) || blank(password) {
		return apperrors.NewValidationError("", msgFillAllFields)
	}
	return users.ValidateEmail(strings.TrimSpace(email))
}

// ValidateNewPassword checks a replacement password and its confirmation.
// An empty confirm skips the match check.
func (v *Validator) ValidateNewPassword(password, confirm string) error {
	if blank(password) {
		return apperrors.NewValidationError("password", msgFillAllFields)
	}
	if confirm != "" && password != confirm {
		return apperrors.NewValidationError("confirm_password", "Passwords do not match")
	}
	return users.ValidatePasswordStrength(password)
}

func (v *Validator) ValidateResetCode(code string) error {
	code = strings.TrimSpace(code)
	if code == "" {
		return apperrors.NewValidationError("code", "Please enter the recovery code")
	}
	if len(code) != resetCodeLength {
		return apperrors.NewValidationError("code", "Incorrect recovery code")
	}
	return nil
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

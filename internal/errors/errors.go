package errors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Common error types for the station dashboard
var (
	// Input errors
	ErrValidation = errors.New("validation error")
	ErrConflict   = errors.New("already exists")

	// Lookup errors
	ErrNotFound = errors.New("not found")

	// Authentication errors
	ErrAuth            = errors.New("invalid credentials")
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExpired  = errors.New("session expired")
	ErrInvalidToken    = errors.New("invalid token")

	// Remote errors
	ErrNetwork = errors.New("network error")

	// General errors
	ErrInternal = errors.New("internal error")
)

// ValidationError reports a single invalid input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NewValidationError creates a ValidationError for field
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// FieldErrors collects per-field validation failures of a form.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	fields := make([]string, 0, len(fe))
	for f := range fe {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+fe[f])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (fe FieldErrors) Is(target error) bool {
	return target == ErrValidation
}

// Add records message for field, keeping the first message per field.
func (fe FieldErrors) Add(field, message string) {
	if _, ok := fe[field]; !ok {
		fe[field] = message
	}
}

// Err returns nil when no field failed.
func (fe FieldErrors) Err() error {
	if len(fe) == 0 {
		return nil
	}
	return fe
}

// NetworkError reports a failed call to the remote station collection.
type NetworkError struct {
	Op         string
	URL        string
	StatusCode int // zero when no response was received
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s %s: unexpected status %d", e.Op, e.URL, e.StatusCode)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

func (e *NetworkError) Is(target error) bool {
	return target == ErrNetwork
}

// UserMessage maps err to a message that is safe to show in the UI.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Message
	}

	switch {
	case errors.Is(err, ErrValidation):
		return "Please check the highlighted fields"
	case errors.Is(err, ErrConflict):
		return "An account with this email already exists"
	case errors.Is(err, ErrNotFound):
		return "No account exists with this email"
	case errors.Is(err, ErrAuth):
		return "Invalid credentials"
	case errors.Is(err, ErrSessionExpired), errors.Is(err, ErrInvalidToken):
		return "Your session has expired, please sign in again"
	case errors.Is(err, ErrSessionNotFound):
		return "Please sign in to continue"
	case errors.Is(err, ErrNetwork):
		return "The station service could not be reached. Please try again."
	default:
		return "Internal server error. Please try again."
	}
}

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

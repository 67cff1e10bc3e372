package users

import (
	"regexp"
	"strings"
	"time"
	"unicode"

	apperrors "github.com/jrsteele09/go-station-dashboard/internal/errors"
	"golang.org/x/crypto/bcrypt"
)

const (
	MinNameLength     = 2
	MinPasswordLength = 8

	// PasswordSymbols lists the characters accepted as the special character of a password
	PasswordSymbols = `!@#$%^&*(),.?":{}|<>`
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// User is a registered account.
type User struct {
	ID           string    `json:"id"`                 // Unique identifier for the user
	Email        string    `json:"email"`              // Lower-cased email address
	PasswordHash string    `json:"-"`                  // bcrypt hash - never serialize
	Name         string    `json:"name"`               // Display name
	CreatedAt    time.Time `json:"createdAt,omitzero"` // Registration time
}

// PublicUser is the projection of a User that is kept with a login session.
type PublicUser struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt,omitzero"`
}

func (u *User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		CreatedAt: u.CreatedAt,
	}
}

// NormalizeEmail is the form an email is stored and compared in.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail checks the local@domain.tld shape.
func ValidateEmail(email string) error {
	if !emailPattern.MatchString(email) {
		return apperrors.NewValidationError("email", "Please enter a valid email")
	}
	return nil
}

func ValidateName(name string) error {
	if len([]rune(strings.TrimSpace(name))) < MinNameLength {
		return apperrors.NewValidationError("name", "Name must be at least 2 characters long")
	}
	return nil
}

// PasswordProblems lists every strength rule password breaks, in the order:
// length, uppercase, lowercase, number, special character.
func PasswordProblems(password string) []string {
	problems := make([]string, 0)
	if len(password) < MinPasswordLength {
		problems = append(problems, "Password must be at least 8 characters long")
	}

	var (
		hasUpper  bool
		hasLower  bool
		hasNumber bool
		hasSymbol bool
	)

	for _, char := range password {
		switch {
		case unicode.IsUpper(char):
			hasUpper = true
		case unicode.IsLower(char):
			hasLower = true
		case unicode.IsDigit(char):
			hasNumber = true
		case strings.ContainsRune(PasswordSymbols, char):
			hasSymbol = true
		}
	}

	if !hasUpper {
		problems = append(problems, "Password must contain at least one uppercase letter")
	}
	if !hasLower {
		problems = append(problems, "Password must contain at least one lowercase letter")
	}
	if !hasNumber {
		problems = append(problems, "Password must contain at least one number")
	}
	if !hasSymbol {
		problems = append(problems, "Password must contain at least one special character")
	}
	return problems
}

// ValidatePasswordStrength reports the first broken strength rule as a validation error.
func ValidatePasswordStrength(password string) error {
	if problems := PasswordProblems(password); len(problems) > 0 {
		return apperrors.NewValidationError("password", problems[0])
	}
	return nil
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// CheckPassword checks password against the user's hash
func (u *User) CheckPassword(password string) bool {
	return CheckPasswordHash(password, u.PasswordHash)
}

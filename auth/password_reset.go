package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	apperrors "github.com/jrsteele09/go-station-dashboard/internal/errors"
	"github.com/jrsteele09/go-station-dashboard/internal/storage/kv"
	"github.com/jrsteele09/go-station-dashboard/users"
)

const (
	resetKeyPrefix      = "password_reset/"
	resetCodeLength     = 6
	defaultResetCodeTTL = 15 * time.Minute
	maxResetAttempts    = 5
)

// resetRecord is stored per email while a recovery is in progress. Only the
// hash of the code is kept.
type resetRecord struct {
	CodeHash  string    `json:"code_hash"`
	ExpiresAt time.Time `json:"expires_at"`
	Attempts  int       `json:"attempts"`
}

// RequestPasswordReset issues a recovery code for a registered email and
// returns it. There is no mail transport, so delivering it is the caller's job.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	if blank(email) {
		return "", apperrors.NewValidationError("email", "Please enter your email")
	}
	if err := users.ValidateEmail(strings.TrimSpace(email)); err != nil {
		return "", fmt.Errorf("[Service RequestPasswordReset] %w", err)
	}

	user, err := s.repos.Users.GetByEmail(ctx, email)
	if err != nil {
		return "", fmt.Errorf("[Service RequestPasswordReset] %w", err)
	}

	code, err := generateResetCode()
	if err != nil {
		return "", fmt.Errorf("[Service RequestPasswordReset] %w", err)
	}

	record := resetRecord{
		CodeHash:  hashResetCode(code),
		ExpiresAt: s.nowTime().Add(s.resetCodeTTL),
	}
	if err := kv.SetJSON(ctx, s.repos.Store, resetKeyPrefix+user.Email, record); err != nil {
		return "", fmt.Errorf("[Service RequestPasswordReset] %w", err)
	}

	s.logger.Info().Str("email", user.Email).Str("code", code).Time("expires_at", record.ExpiresAt).Msg("password recovery code issued")
	return code, nil
}

// VerifyResetCode checks code without consuming it.
func (s *Service) VerifyResetCode(ctx context.Context, email, code string) error {
	if err := s.validator.ValidateResetCode(code); err != nil {
		return fmt.Errorf("[Service VerifyResetCode] %w", err)
	}
	if _, err := s.checkResetCode(ctx, users.NormalizeEmail(email), strings.TrimSpace(code)); err != nil {
		return fmt.Errorf("[Service VerifyResetCode] %w", err)
	}
	return nil
}

// ResetPassword sets a new password for email once code verifies, then
// discards the code. Existing login sessions are left alone.
func (s *Service) ResetPassword(ctx context.Context, email, code, newPassword, confirmPassword string) error {
	if err := s.validator.ValidateNewPassword(newPassword, confirmPassword); err != nil {
		return fmt.Errorf("[Service ResetPassword] %w", err)
	}

	normalized := users.NormalizeEmail(email)
	key, err := s.checkResetCode(ctx, normalized, strings.TrimSpace(code))
	if err != nil {
		return fmt.Errorf("[Service ResetPassword] %w", err)
	}

	user, err := s.repos.Users.GetByEmail(ctx, normalized)
	if err != nil {
		return fmt.Errorf("[Service ResetPassword] %w", err)
	}
	if err := s.setPassword(ctx, user, newPassword); err != nil {
		return fmt.Errorf("[Service ResetPassword] %w", err)
	}
	if err := s.repos.Store.Delete(ctx, key); err != nil {
		return fmt.Errorf("[Service ResetPassword] discard code: %w", err)
	}

	s.logger.Info().Str("user_id", user.ID).Msg("password reset")
	return nil
}

func (s *Service) checkResetCode(ctx context.Context, email, code string) (string, error) {
	key := resetKeyPrefix + email
	record, err := kv.GetJSON[resetRecord](ctx, s.repos.Store, key)
	if errors.Is(err, apperrors.ErrNotFound) {
		return "", codeError("Request a new recovery code")
	}
	if err != nil {
		return "", err
	}

	if !s.nowTime().Before(record.ExpiresAt) {
		_ = s.repos.Store.Delete(ctx, key)
		return "", codeError("The recovery code has expired, request a new one")
	}

	if subtle.ConstantTimeCompare([]byte(record.CodeHash), []byte(hashResetCode(code))) != 1 {
		record.Attempts++
		if record.Attempts >= maxResetAttempts {
			_ = s.repos.Store.Delete(ctx, key)
		} else if err := kv.SetJSON(ctx, s.repos.Store, key, record); err != nil {
			return "", err
		}
		return "", codeError("Incorrect recovery code")
	}
	return key, nil
}

// codeError is an ErrAuth carrying a message for the code field.
func codeError(message string) error {
	return fmt.Errorf("%w: %w", apperrors.ErrAuth, apperrors.NewValidationError("code", message))
}

func generateResetCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

func hashResetCode(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}

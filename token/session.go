// Package token issues and parses the signed session tokens handed out at login.
package token

import (
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	apperrors "github.com/jrsteele09/go-station-dashboard/internal/errors"
	"github.com/jrsteele09/go-station-dashboard/users"
)

const (
	DefaultSessionTTL = 24 * time.Hour
	issuer            = "station-dashboard"
)

// SessionClaims are the claims of a session token.
type SessionClaims struct {
	UserID string `json:"uid"`
	Email  string `json:"email"`
	jwtlib.RegisteredClaims
}

func (c *SessionClaims) IssuedAtTime() time.Time {
	if c.IssuedAt == nil {
		return time.Time{}
	}
	return c.IssuedAt.Time
}

func (c *SessionClaims) ExpiresAtTime() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}

// SessionIssuer signs session tokens with HS256.
type SessionIssuer struct {
	secret  []byte
	ttl     time.Duration
	nowTime func() time.Time
}

type SessionIssuerOption func(*SessionIssuer)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) SessionIssuerOption {
	return func(s *SessionIssuer) {
		s.nowTime = nowFunc
	}
}

// WithTTL overrides DefaultSessionTTL.
func WithTTL(ttl time.Duration) SessionIssuerOption {
	return func(s *SessionIssuer) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

func NewSessionIssuer(secret []byte, options ...SessionIssuerOption) (*SessionIssuer, error) {
	if len(secret) == 0 {
		return nil, errors.New("[NewSessionIssuer] secret is required")
	}
	s := &SessionIssuer{
		secret:  secret,
		ttl:     DefaultSessionTTL,
		nowTime: time.Now,
	}
	for _, opt := range options {
		opt(s)
	}
	return s, nil
}

// RandomSecret returns a per-process signing secret for when none is configured.
// Tokens signed with it do not survive a restart.
func RandomSecret() []byte {
	secret := make([]byte, 32)
	_, _ = rand.Read(secret)
	return secret
}

func (s *SessionIssuer) TTL() time.Duration {
	return s.ttl
}

// Issue creates a token for user valid from now until now+TTL.
func (s *SessionIssuer) Issue(user *users.User) (string, *SessionClaims, error) {
	issuedAt := s.nowTime().Truncate(time.Second)
	claims := &SessionClaims{
		UserID: user.ID,
		Email:  user.Email,
		RegisteredClaims: jwtlib.RegisteredClaims{
			Issuer:    issuer,
			Subject:   user.ID,
			IssuedAt:  jwtlib.NewNumericDate(issuedAt),
			ExpiresAt: jwtlib.NewNumericDate(issuedAt.Add(s.ttl)),
			ID:        uuid.New().String(),
		},
	}

	signed, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", nil, fmt.Errorf("[SessionIssuer Issue] failed to sign token: %w", err)
	}
	return signed, claims, nil
}

// Parse verifies raw and returns its claims. Expired tokens yield
// ErrSessionExpired, anything else that fails verification ErrInvalidToken.
func (s *SessionIssuer) Parse(raw string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	_, err := jwtlib.ParseWithClaims(raw, claims, s.verificationKey,
		jwtlib.WithTimeFunc(s.nowTime),
		jwtlib.WithIssuer(issuer),
		jwtlib.WithExpirationRequired(),
		jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}),
	)
	switch {
	case errors.Is(err, jwtlib.ErrTokenExpired):
		return nil, apperrors.Wrapf(apperrors.ErrSessionExpired, "[SessionIssuer Parse] %v", err)
	case err != nil:
		return nil, apperrors.Wrapf(apperrors.ErrInvalidToken, "[SessionIssuer Parse] %v", err)
	}
	return claims, nil
}

func (s *SessionIssuer) verificationKey(token *jwtlib.Token) (any, error) {
	if _, ok := token.Method.(*jwtlib.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
	}
	return s.secret, nil
}

package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-station-dashboard/auth/loginsession"
	apperrors "github.com/jrsteele09/go-station-dashboard/internal/errors"
	"github.com/jrsteele09/go-station-dashboard/internal/storage/kv"
	"github.com/jrsteele09/go-station-dashboard/token"
	"github.com/jrsteele09/go-station-dashboard/users"
	"github.com/rs/zerolog"
)

// Session is an authenticated browser session.
type Session struct {
	ID        string
	User      users.PublicUser
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Repos holds all repository dependencies for the Service
type Repos struct {
	Users    users.UserRepo    // Registered users
	Sessions loginsession.Repo // Logged in browser sessions
	Store    kv.Store          // Password reset codes
}

// Service registers users and manages their login sessions.
type Service struct {
	repos        Repos
	tokens       *token.SessionIssuer
	validator    *Validator
	resetCodeTTL time.Duration
	logger       zerolog.Logger
	nowTime      func() time.Time // nowTime function (injectable for testing)
}

// ServiceOption defines a function type to modify the Service instance.
type ServiceOption func(*Service)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) ServiceOption {
	return func(s *Service) {
		s.nowTime = nowFunc
	}
}

func WithLogger(logger zerolog.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithResetCodeTTL sets how long a password recovery code stays valid.
func WithResetCodeTTL(ttl time.Duration) ServiceOption {
	return func(s *Service) {
		if ttl > 0 {
			s.resetCodeTTL = ttl
		}
	}
}

// NewService initializes a new Service with required dependencies.
func NewService(repos Repos, tokens *token.SessionIssuer, options ...ServiceOption) (*Service, error) {
	if repos.Users == nil {
		return nil, errors.New("[NewService] Users repo is required")
	}
	if repos.Sessions == nil {
		return nil, errors.New("[NewService] Sessions repo is required")
	}
	if repos.Store == nil {
		return nil, errors.New("[NewService] Store is required")
	}
	if tokens == nil {
		return nil, errors.New("[NewService] token issuer is required")
	}

	s := &Service{
		repos:        repos,
		tokens:       tokens,
		validator:    NewValidator(),
		resetCodeTTL: defaultResetCodeTTL,
		logger:       zerolog.Nop(),
		nowTime:      time.Now,
	}
	for _, opt := range options {
		opt(s)
	}
	return s, nil
}

func (s *Service) Validator() *Validator {
	return s.validator
}

// Register creates a new account. Email uniqueness is checked case-insensitively.
func (s *Service) Register(ctx context.Context, email, password, name string) (*users.User, error) {
	if err := s.validator.ValidateRegistration(email, password, name); err != nil {
		return nil, fmt.Errorf("[Service Register] %w", err)
	}

	normalized := users.NormalizeEmail(email)
	_, err := s.repos.Users.GetByEmail(ctx, normalized)
	switch {
	case err == nil:
		s.logger.Info().Str("email", normalized).Msg("registration rejected, email exists")
		return nil, apperrors.Wrapf(apperrors.ErrConflict, "[Service Register] %s", normalized)
	case !errors.Is(err, apperrors.ErrNotFound):
		return nil, fmt.Errorf("[Service Register] lookup: %w", err)
	}

	hash, err := users.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("[Service Register] hash password: %w", err)
	}

	user := &users.User{
		ID:           uuid.New().String(),
		Email:        normalized,
		PasswordHash: hash,
		Name:         strings.TrimSpace(name),
		CreatedAt:    s.nowTime().UTC(),
	}
	if err := s.repos.Users.Create(ctx, user); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			s.logger.Info().Str("email", normalized).Msg("registration rejected, email exists")
		}
		return nil, fmt.Errorf("[Service Register] store user: %w", err)
	}

	s.logger.Info().Str("user_id", user.ID).Str("email", user.Email).Msg("user registered")
	return user, nil
}

// Login verifies the credentials and binds a new session token to sessionID.
func (s *Service) Login(ctx context.Context, sessionID, email, password string) (*Session, error) {
	if sessionID == "" {
		return nil, errors.New("[Service Login] sessionID is required")
	}
	if err := s.validator.ValidateLogin(email, password); err != nil {
		return nil, fmt.Errorf("[Service Login] %w", err)
	}

	user, err := s.repos.Users.GetByEmail(ctx, email)
	if err != nil {
		s.logger.Info().Str("email", email).Msg("login for unknown email")
		return nil, fmt.Errorf("[Service Login] %w", err)
	}
	if !user.CheckPassword(password) {
		s.logger.Info().Str("user_id", user.ID).Msg("login with wrong password")
		return nil, apperrors.Wrapf(apperrors.ErrAuth, "[Service Login] %s", user.Email)
	}

	raw, claims, err := s.tokens.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("[Service Login] %w", err)
	}

	stored := loginsession.Session{User: user.Public(), Token: raw}
	if err := s.repos.Sessions.Upsert(ctx, sessionID, stored); err != nil {
		return nil, fmt.Errorf("[Service Login] persist session: %w", err)
	}

	s.logger.Info().Str("user_id", user.ID).Time("expires_at", claims.ExpiresAtTime()).Msg("user logged in")
	return &Session{
		ID:        sessionID,
		User:      stored.User,
		IssuedAt:  claims.IssuedAtTime(),
		ExpiresAt: claims.ExpiresAtTime(),
	}, nil
}

// Logout clears the session unconditionally; calling it again is a no-op.
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	if err := s.repos.Sessions.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("[Service Logout] %w", err)
	}
	s.logger.Debug().Str("session_id", sessionID).Msg("session cleared")
	return nil
}

// Restore returns the live session bound to sessionID. A session whose token
// fails to parse, has expired or disagrees with the stored user is purged.
func (s *Service) Restore(ctx context.Context, sessionID string) (*Session, error) {
	stored, err := s.repos.Sessions.Get(ctx, sessionID)
	if errors.Is(err, apperrors.ErrSessionNotFound) {
		return nil, err
	}
	if err != nil {
		return nil, s.purge(ctx, sessionID, fmt.Errorf("[Service Restore] %w", err))
	}

	claims, err := s.tokens.Parse(stored.Token)
	if err != nil {
		return nil, s.purge(ctx, sessionID, fmt.Errorf("[Service Restore] %w", err))
	}
	if claims.UserID != stored.User.ID {
		return nil, s.purge(ctx, sessionID, apperrors.Wrapf(apperrors.ErrInvalidToken, "[Service Restore] token user mismatch"))
	}

	return &Session{
		ID:        sessionID,
		User:      stored.User,
		IssuedAt:  claims.IssuedAtTime(),
		ExpiresAt: claims.ExpiresAtTime(),
	}, nil
}

// UpdatePassword replaces the logged in user's password. Nothing is written
// unless every check passes.
func (s *Service) UpdatePassword(ctx context.Context, sessionID, currentPassword, newPassword string) error {
	session, err := s.Restore(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("[Service UpdatePassword] %w", err)
	}
	if err := users.ValidatePasswordStrength(newPassword); err != nil {
		return fmt.Errorf("[Service UpdatePassword] %w", err)
	}

	user, err := s.repos.Users.GetByID(ctx, session.User.ID)
	if err != nil {
		return fmt.Errorf("[Service UpdatePassword] %w", err)
	}
	if !user.CheckPassword(currentPassword) {
		return apperrors.Wrapf(apperrors.ErrAuth, "[Service UpdatePassword] current password")
	}

	if err := s.setPassword(ctx, user, newPassword); err != nil {
		return fmt.Errorf("[Service UpdatePassword] %w", err)
	}
	s.logger.Info().Str("user_id", user.ID).Msg("password updated")
	return nil
}

// GetUser returns the full account of a session's user.
func (s *Service) GetUser(ctx context.Context, userID string) (*users.User, error) {
	return s.repos.Users.GetByID(ctx, userID)
}

// PurgeExpiredSessions removes every stored session that would not restore.
func (s *Service) PurgeExpiredSessions(ctx context.Context) (int, error) {
	ids, err := s.repos.Sessions.SessionIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("[Service PurgeExpiredSessions] %w", err)
	}

	purged := 0
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return purged, err
		}
		if _, err := s.Restore(ctx, id); err == nil {
			continue
		} else if errors.Is(err, apperrors.ErrSessionNotFound) {
			// half written session, Restore leaves those alone
			if err := s.repos.Sessions.Delete(ctx, id); err != nil {
				return purged, fmt.Errorf("[Service PurgeExpiredSessions] %w", err)
			}
		}
		purged++
	}

	if purged > 0 {
		s.logger.Info().Int("purged", purged).Msg("expired sessions purged")
	}
	return purged, nil
}

func (s *Service) purge(ctx context.Context, sessionID string, cause error) error {
	s.logger.Debug().Err(cause).Str("session_id", sessionID).Msg("purging invalid session")
	if err := s.repos.Sessions.Delete(ctx, sessionID); err != nil {
		return errors.Join(cause, err)
	}
	return cause
}

func (s *Service) setPassword(ctx context.Context, user *users.User, password string) error {
	hash, err := users.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	updated := *user
	updated.PasswordHash = hash
	return s.repos.Users.Upsert(ctx, &updated)
}

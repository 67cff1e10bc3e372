package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/jrsteele09/go-station-dashboard/auth"
	apperrors "github.com/jrsteele09/go-station-dashboard/internal/errors"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// ContextKeySession stores the restored *auth.Session
	ContextKeySession ContextKey = "session"
	// ContextKeyRequestID stores the request id assigned by RequestIDMiddleware
	ContextKeyRequestID ContextKey = "request_id"
)

// RequireSessionAuth is middleware for HTML/HTMX routes that validates the
// session cookie. Expired or tampered sessions are purged by auth.Restore and
// the browser is sent back to the login page.
func (s *Server) RequireSessionAuth() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(loggedInSessionID)
			if err != nil || cookie.Value == "" {
				redirectSuccess(w, r, RouteLogin)
				return
			}

			session, err := s.auth.Restore(r.Context(), cookie.Value)
			if err != nil {
				if !errors.Is(err, apperrors.ErrSessionNotFound) {
					s.logger.Info().Err(err).Msg("session rejected")
				}
				s.dashboards.Remove(cookie.Value)
				s.clearLoginSessionCookie(w, r)
				redirectWithError(w, r, RouteLogin, apperrors.UserMessage(err))
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeySession, session)
			next(w, r.WithContext(ctx))
		}
	}
}

// sessionFrom returns the session injected by RequireSessionAuth.
func sessionFrom(r *http.Request) *auth.Session {
	session, _ := r.Context().Value(ContextKeySession).(*auth.Session)
	return session
}

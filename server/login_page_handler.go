package server

import (
	"errors"
	"net/http"
	"net/url"

	apperrors "github.com/jrsteele09/go-station-dashboard/internal/errors"
)

// LoginPageUIHandler displays the login page (GET /login)
func (s *Server) LoginPageUIHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.renderPage(w, r, "login.html", s.pageData(r))
	}
}

// LoginSubmissionHandler processes the login form submission
func (s *Server) LoginSubmissionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}

		email := r.FormValue("email")
		password := r.FormValue("password")

		sessionID := newSessionID()
		session, err := s.auth.Login(r.Context(), sessionID, email, password)
		if err != nil {
			s.renderLoginError(w, r, loginErrorMessage(err), email)
			return
		}

		s.SetLoginSessionCookie(w, r, session.ID, session.ExpiresAt)
		redirectSuccess(w, r, RouteDashboard)
	}
}

// LogoutHandler ends the session without asking; the dashboard asks first
// through its alert.
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cookie, err := r.Cookie(loggedInSessionID); err == nil && cookie.Value != "" {
			s.endSession(w, r, cookie.Value)
			return
		}
		redirectSuccess(w, r, RouteLogin)
	}
}

func (s *Server) endSession(w http.ResponseWriter, r *http.Request, sessionID string) {
	if err := s.auth.Logout(r.Context(), sessionID); err != nil {
		s.logger.Err(err).Msg("Failed to delete login session")
	}
	s.dashboards.Remove(sessionID)
	s.clearLoginSessionCookie(w, r)
	redirectSuccess(w, r, RouteLogin)
}

// Unknown emails and wrong passwords read the same to the user.
func loginErrorMessage(err error) string {
	switch {
	case errors.Is(err, apperrors.ErrNotFound), errors.Is(err, apperrors.ErrAuth):
		return "Invalid email or password"
	default:
		return apperrors.UserMessage(err)
	}
}

// renderLoginError redirects to login page with an error message
func (s *Server) renderLoginError(w http.ResponseWriter, r *http.Request, errorMsg, email string) {
	redirectSuccess(w, r, withQuery(RouteLogin, url.Values{
		"error": {errorMsg},
		"email": {email},
	}))
}

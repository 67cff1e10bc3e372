package server

import (
	"net/http"
)

// IndexHandler sends signed in browsers to the dashboard and everyone else to
// the login page
func (s *Server) IndexHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != RouteIndex {
			http.NotFound(w, r)
			return
		}

		cookie, err := r.Cookie(loggedInSessionID)
		if err == nil && cookie.Value != "" {
			if _, err := s.auth.Restore(r.Context(), cookie.Value); err == nil {
				http.Redirect(w, r, RouteDashboard, http.StatusSeeOther)
				return
			}
			s.dashboards.Remove(cookie.Value)
			s.clearLoginSessionCookie(w, r)
		}
		http.Redirect(w, r, RouteLogin, http.StatusSeeOther)
	}
}

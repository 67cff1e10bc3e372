package server

import (
	"encoding/json"
	"net/http"
)

const contentTypeHTML = "text/html; charset=utf-8"

// UIPageData is the template model of the signed-out pages
type UIPageData struct {
	AppName string
	Error   string
	Success string
	Email   string // Preserve email on error
	Name    string

	// Password recovery
	Step    string
	Code    string
	DevCode string // only set in DEV, there is no mail transport
}

func (s *Server) pageData(r *http.Request) UIPageData {
	q := r.URL.Query()
	return UIPageData{
		AppName: s.config.GetAppName(),
		Error:   q.Get("error"),
		Success: q.Get("success"),
		Email:   q.Get("email"),
	}
}

// renderPage writes a full page, or just its "content" block for HTMX.
func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, page string, data any) {
	name := layoutTemplate
	if isHTMXRequest(r) {
		name = "content"
	}
	s.renderTemplate(w, page, name, data)
}

func (s *Server) renderTemplate(w http.ResponseWriter, page, name string, data any) {
	w.Header().Set("Content-Type", contentTypeHTML)
	if err := s.templates.render(w, page, name, data); err != nil {
		s.logger.Err(err).Str("page", page).Str("template", name).Msg("Failed to render template")
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
	}
}

// HealthzHandler reports liveness
func (s *Server) HealthzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}
}

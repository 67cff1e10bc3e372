package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/jrsteele09/go-station-dashboard/auth"
	"github.com/jrsteele09/go-station-dashboard/dashboard"
	"github.com/jrsteele09/go-station-dashboard/internal/config"
	"github.com/rs/zerolog"
)

// Deps are the services the HTTP layer drives.
type Deps struct {
	Auth       *auth.Service
	Dashboards *dashboard.Registry
	// MockAPI serves the built-in station collection; nil leaves it unmounted.
	MockAPI http.Handler
	Logger  zerolog.Logger
}

type Server struct {
	env        string // Environment (e.g., "DEV", "PROD")
	mux        *http.ServeMux
	routes     []string
	config     config.Config
	auth       *auth.Service
	dashboards *dashboard.Registry
	mockAPI    http.Handler
	logger     zerolog.Logger
	templates  *templateSet
}

func New(cfg config.Config, deps Deps) (*Server, error) {
	if deps.Auth == nil {
		return nil, errors.New("[Server New] auth service is required")
	}
	if deps.Dashboards == nil {
		return nil, errors.New("[Server New] dashboard registry is required")
	}

	templates, err := loadTemplates()
	if err != nil {
		return nil, fmt.Errorf("[Server New] failed to load templates: %w", err)
	}

	s := &Server{
		env:        cfg.GetEnv(),
		mux:        http.NewServeMux(),
		config:     cfg,
		auth:       deps.Auth,
		dashboards: deps.Dashboards,
		mockAPI:    deps.MockAPI,
		logger:     deps.Logger,
		templates:  templates,
	}

	if err := s.InitialiseSystem(context.Background()); err != nil {
		return nil, fmt.Errorf("[Server New] Failed to initialise the system: %w", err)
	}

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) isDev() bool {
	return s.env == config.EnvDev
}

func (s *Server) logRoutes() {
	if !s.isDev() {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		method, path := "", route
		if parts := strings.SplitN(route, " ", 2); len(parts) > 1 {
			method, path = parts[0], parts[1]
		}
		s.logger.Debug().Msgf("[%-19s] %s", colouredMethod(method), path)
	}
}

// Helper function to determine the scheme (http/https)
func getScheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if scheme := r.Header.Get("X-Forwarded-Proto"); scheme != "" {
		return scheme
	}
	return "http"
}

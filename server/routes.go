package server

import (
	"net/http"

	"github.com/jrsteele09/go-station-dashboard/dashboard"
	"github.com/jrsteele09/go-station-dashboard/internal/config"
)

func (s *Server) initRoutes() {
	s.RegisterRouteHandler("GET "+RouteIndex, ChainMiddleware(s.IndexHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteFunc("GET "+RouteHealthz, s.HealthzHandler())

	// LOGIN
	s.RegisterRouteHandler("GET "+RouteLogin, ChainMiddleware(s.LoginPageUIHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("POST "+RouteAuthLogin, ChainMiddleware(s.LoginSubmissionHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("POST "+RouteAuthLogout, ChainMiddleware(s.LogoutHandler(), s.HTMLMiddleWare()...))

	s.RegisterRouteHandler("GET "+RouteSignup, ChainMiddleware(s.SignupGetHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("POST "+RouteSignup, ChainMiddleware(s.SignupPostHandler(), s.HTMLMiddleWare()...))

	s.RegisterRouteHandler("GET "+RouteForgotPassword, ChainMiddleware(s.ForgotPasswordGetHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("POST "+RouteForgotPassword, ChainMiddleware(s.ForgotPasswordPostHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("POST "+RouteChangePassword, ChainMiddleware(s.ChangePasswordPostHandler(), s.HTMLMiddleWare(s.RequireSessionAuth())...))

	// API routes
	s.RegisterRouteHandler("POST "+RouteAPIValidatePassword, ChainMiddleware(s.ValidatePasswordHandler(), s.APIMiddleware()...))

	// Dashboard routes (require session-based auth for HTML/HTMX UI)
	s.registerDashboardRoute("GET "+RouteDashboard, s.DashboardHandler())
	s.registerDashboardRoute("POST "+RouteDashboardSearch, s.SearchHandler())
	s.registerDashboardRoute("POST "+RouteDashboardPage, s.PageHandler())
	s.registerDashboardRoute("POST "+RouteDashboardRefresh, s.RefreshHandler())
	s.registerDashboardRoute("GET "+RouteDashboardNewStation, s.OpenModalHandler(dashboard.ModalCreate))
	s.registerDashboardRoute("GET "+RouteDashboardStation, s.OpenModalHandler(dashboard.ModalView))
	s.registerDashboardRoute("GET "+RouteDashboardEditStation, s.OpenModalHandler(dashboard.ModalEdit))
	s.registerDashboardRoute("POST "+RouteDashboardModalSave, s.SaveModalHandler())
	s.registerDashboardRoute("POST "+RouteDashboardModalClose, s.CloseModalHandler())
	s.registerDashboardRoute("POST "+RouteDashboardDeleteStation, s.DeleteStationHandler())
	s.registerDashboardRoute("POST "+RouteDashboardAlertConfirm, s.AlertConfirmHandler())
	s.registerDashboardRoute("POST "+RouteDashboardAlertDismiss, s.AlertDismissHandler())
	s.registerDashboardRoute("POST "+RouteDashboardLogout, s.RequestLogoutHandler())
	s.registerDashboardRoute("GET "+RouteDashboardProfile, s.ProfileHandler())

	if s.mockAPI != nil {
		// Methods are listed so these patterns do not conflict with "GET /"
		mock := ChainMiddleware(http.StripPrefix(config.MockAPIPath, s.mockAPI).ServeHTTP, s.APIMiddleware()...)
		for _, method := range []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions} {
			s.RegisterRouteHandler(method+" "+config.MockAPIPath+"/", mock)
		}
	}

	s.RegisterRouteHandler("GET "+RouteStaticCSS, ChainMiddleware(s.serveFileHandler(), s.StaticMiddleware()...))
}

func (s *Server) registerDashboardRoute(pattern string, handler http.HandlerFunc) {
	s.RegisterRouteHandler(pattern, ChainMiddleware(handler, s.HTMLMiddleWare(s.RequireSessionAuth())...))
}

package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	RouteIndex = "/"

	// Auth Routes - Login & Logout
	RouteLogin      = "/login"
	RouteAuthLogin  = "/auth/login"
	RouteAuthLogout = "/auth/logout"

	// Auth Routes - Signup
	RouteSignup = "/auth/signup"

	// Auth Routes - Password Management
	RouteChangePassword = "/auth/change-password"
	RouteForgotPassword = "/auth/forgot-password"

	// API Routes
	RouteAPIValidatePassword = "/api/validate-password"

	// Dashboard Routes
	RouteDashboard              = "/dashboard"
	RouteDashboardSearch        = "/dashboard/search"
	RouteDashboardPage          = "/dashboard/page"
	RouteDashboardRefresh       = "/dashboard/refresh"
	RouteDashboardNewStation    = "/dashboard/stations/new"
	RouteDashboardStation       = "/dashboard/stations/{id}"
	RouteDashboardEditStation   = "/dashboard/stations/{id}/edit"
	RouteDashboardDeleteStation = "/dashboard/stations/{id}/delete"
	RouteDashboardModalSave     = "/dashboard/modal/save"
	RouteDashboardModalClose    = "/dashboard/modal/close"
	RouteDashboardAlertConfirm  = "/dashboard/alert/confirm"
	RouteDashboardAlertDismiss  = "/dashboard/alert/dismiss"
	RouteDashboardLogout        = "/dashboard/logout"
	RouteDashboardProfile       = "/dashboard/profile"

	RouteHealthz = "/healthz"

	// Static Asset Routes (patterns)
	RouteStaticCSS = "/css/{file}"
)

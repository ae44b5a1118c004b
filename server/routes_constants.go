package server

import "github.com/jrsteele09/go-admin-console/gate"

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	// Auth Routes - Login & Logout
	RouteLogin      = gate.LoginRoute
	RouteAuthLogin  = "/auth/login"
	RouteAuthLogout = "/auth/logout"

	// Public Routes
	RouteRegister       = "/register"
	RouteForgotPassword = "/forgot-password"

	// Dashboard Routes
	RouteDashboard      = gate.LandingRoute
	RouteUsers          = "/dashboard/users"
	RouteUser           = "/dashboard/users/{id}"
	RouteUserDelete     = "/dashboard/users/{id}/delete"
	RouteFineTunes      = "/dashboard/fine-tune"
	RouteFineTune       = "/dashboard/fine-tune/{id}"
	RouteFineTuneDelete = "/dashboard/fine-tune/{id}/delete"
	RouteFineTuneCheck  = "/dashboard/fine-tune/{id}/check"
	RouteSettings       = "/dashboard/settings"
	RouteProfile        = "/profile"

	// Operational Routes
	RouteSessionEvents = "/session/events"
	RouteHealth        = "/healthz"
	RouteMetrics       = "/metrics"

	// Static Asset Routes (patterns)
	RouteStatic  = "/static/{file...}"
	staticPrefix = "/static/"
)

// Query parameters
const (
	fromParam   = gate.FromParam
	errorParam  = "error"
	noticeParam = "notice"
)

const (
	contentTypeHTML        = "text/html; charset=utf-8"
	contentTypeEventStream = "text/event-stream"
)

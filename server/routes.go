package server

import (
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) initRoutes() {
	s.RegisterRouteHandler("GET /{$}", ChainMiddleware(s.IndexHandler(), s.HTMLMiddleWare()...))

	// LOGIN
	s.RegisterRouteHandler("GET "+RouteLogin, ChainMiddleware(s.LoginPageUIHandler(), s.HTMLMiddleWare(s.GateMiddleware)...))
	s.RegisterRouteHandler("POST "+RouteAuthLogin, ChainMiddleware(s.LoginSubmissionHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("GET "+RouteAuthLogout, ChainMiddleware(s.LogoutHandler(), s.HTMLMiddleWare()...))

	// Public pages handled by the API team; shown as placeholders
	s.RegisterRouteHandler("GET "+RouteRegister, ChainMiddleware(s.PlaceholderHandler("Register"), s.HTMLMiddleWare(s.GateMiddleware)...))
	s.RegisterRouteHandler("GET "+RouteForgotPassword, ChainMiddleware(s.PlaceholderHandler("Forgot password"), s.HTMLMiddleWare(s.GateMiddleware)...))

	// Dashboard pages
	s.RegisterRouteHandler("GET "+RouteDashboard, ChainMiddleware(s.DashboardHandler(), s.HTMLMiddleWare(s.GateMiddleware)...))
	s.RegisterRouteHandler("GET "+RouteProfile, ChainMiddleware(s.ProfileHandler(), s.HTMLMiddleWare(s.GateMiddleware)...))
	s.RegisterRouteHandler("GET "+RouteSettings, ChainMiddleware(s.SettingsHandler(), s.HTMLMiddleWare(s.GateMiddleware)...))

	s.RegisterRouteHandler("GET "+RouteUsers, ChainMiddleware(s.UsersListHandler(), s.HTMLMiddleWare(s.GateMiddleware)...))
	s.RegisterRouteHandler("POST "+RouteUsers, ChainMiddleware(s.UserCreateHandler(), s.HTMLMiddleWare(s.GateMiddleware)...))
	s.RegisterRouteHandler("POST "+RouteUser, ChainMiddleware(s.UserUpdateHandler(), s.HTMLMiddleWare(s.GateMiddleware)...))
	s.RegisterRouteHandler("POST "+RouteUserDelete, ChainMiddleware(s.UserDeleteHandler(), s.HTMLMiddleWare(s.GateMiddleware)...))

	s.RegisterRouteHandler("GET "+RouteFineTunes, ChainMiddleware(s.FineTuneListHandler(), s.HTMLMiddleWare(s.GateMiddleware)...))
	s.RegisterRouteHandler("POST "+RouteFineTunes, ChainMiddleware(s.FineTuneCreateHandler(), s.HTMLMiddleWare(s.GateMiddleware)...))
	s.RegisterRouteHandler("POST "+RouteFineTune, ChainMiddleware(s.FineTuneUpdateHandler(), s.HTMLMiddleWare(s.GateMiddleware)...))
	s.RegisterRouteHandler("POST "+RouteFineTuneDelete, ChainMiddleware(s.FineTuneDeleteHandler(), s.HTMLMiddleWare(s.GateMiddleware)...))
	s.RegisterRouteHandler("POST "+RouteFineTuneCheck, ChainMiddleware(s.FineTuneCheckHandler(), s.HTMLMiddleWare(s.GateMiddleware)...))

	// Session push and operations
	s.RegisterRouteHandler("GET "+RouteSessionEvents, ChainMiddleware(s.SessionEventsHandler(), s.LoggingMiddleware, s.RecoverMiddleware))
	s.RegisterRouteHandler("GET "+RouteHealth, ChainMiddleware(s.HealthHandler(), s.RecoverMiddleware))
	s.RegisterRouteHandler("GET "+RouteMetrics, promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

	s.RegisterRouteHandler("GET "+RouteStatic, ChainMiddleware(s.serveFileHandler(), s.StaticMiddleware()...))
}

func (s *Server) serveFileHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filePath := strings.TrimPrefix(r.URL.Path, staticPrefix)
		if filePath == "" {
			http.Error(w, "404 - Page Not Found", http.StatusNotFound)
			return
		}
		err := StreamFile(w, r, filePath)
		if err != nil {
			logError(r.Method, filePath, err.Error())
			http.Error(w, "404 - Page Not Found", http.StatusNotFound)
			return
		}
	}
}

package server

import (
	"context"
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"github.com/jrsteele09/go-admin-console/finetune"
	"github.com/jrsteele09/go-admin-console/gate"
	"github.com/jrsteele09/go-admin-console/internal/config"
	"github.com/jrsteele09/go-admin-console/internal/metrics"
	"github.com/jrsteele09/go-admin-console/sessions"
	"github.com/jrsteele09/go-admin-console/users"
	"github.com/prometheus/client_golang/prometheus"
)

// API is the REST API as seen by the dashboard pages
type API interface {
	Login(ctx context.Context, email, password string) (*users.Profile, error)
	Logout()
	Profile(ctx context.Context) (*users.Profile, error)

	ListUsers(ctx context.Context) ([]users.User, error)
	CreateUser(ctx context.Context, req users.CreateUserRequest) (*users.User, error)
	UpdateUser(ctx context.Context, id string, req users.UpdateUserRequest) (*users.User, error)
	DeleteUser(ctx context.Context, id string) error

	ListFineTunes(ctx context.Context, page, limit int) (finetune.Page, error)
	SearchFineTunes(ctx context.Context, keyword string, page, limit int) (finetune.Page, error)
	CreateFineTune(ctx context.Context, req finetune.Request) (*finetune.FineTune, error)
	UpdateFineTune(ctx context.Context, id string, req finetune.Request) (*finetune.FineTune, error)
	SetFineTuneChecked(ctx context.Context, id string, checked bool) error
	DeleteFineTune(ctx context.Context, id string) error
}

// Session is the session state the pages display
type Session interface {
	Snapshot() sessions.State
}

// Server is the dashboard shell: it renders the console pages for the one
// operator of this process.
type Server struct {
	env       string
	mux       *http.ServeMux
	routes    []string
	config    config.Config
	api       API
	session   Session
	gate      *gate.Gate
	metrics   *metrics.Metrics
	gatherer  prometheus.Gatherer
	templates map[string]*template.Template

	// stopped ends long-lived streams when the server shuts down
	stopped context.Context
	stop    context.CancelFunc
}

// Option configures a Server
type Option func(*Server)

// WithMetrics exposes the registry behind gatherer on /metrics
func WithMetrics(m *metrics.Metrics, gatherer prometheus.Gatherer) Option {
	return func(s *Server) {
		s.metrics = m
		s.gatherer = gatherer
	}
}

func New(config config.Config, api API, session Session, g *gate.Gate, opts ...Option) (*Server, error) {
	templates, err := parsePages()
	if err != nil {
		return nil, fmt.Errorf("[Server New] failed to parse templates: %w", err)
	}

	s := &Server{
		env:       config.GetEnv(),
		mux:       http.NewServeMux(),
		config:    config,
		api:       api,
		session:   session,
		gate:      g,
		templates: templates,
	}
	s.stopped, s.stop = context.WithCancel(context.Background())
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		registry := prometheus.NewRegistry()
		s.metrics = metrics.NewMetrics(registry)
		s.gatherer = registry
	}

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

// Stop ends open session event streams. Register it with
// http.Server.RegisterOnShutdown so Shutdown does not wait on them.
func (s *Server) Stop() {
	s.stop()
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

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

package gate

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"sync"

	"github.com/jrsteele09/go-admin-console/internal/metrics"
	"github.com/jrsteele09/go-admin-console/sessions"
	"github.com/jrsteele09/go-admin-console/users"
	"github.com/rs/zerolog/log"
)

// Routes the gate navigates to
const (
	LoginRoute   = "/login"
	LandingRoute = "/dashboard"
	FromParam    = "from"
)

// DefaultPublicPaths are reachable without signing in
var DefaultPublicPaths = []string{"/login", "/register", "/forgot-password"}

type Action string

const (
	ActionRender   Action = "render"
	ActionLoading  Action = "loading"
	ActionRedirect Action = "redirect"
)

// Decision is what to do with a navigation to a path
type Decision struct {
	Action   Action
	Location string
}

// Session is the session state the gate reads and initialises
type Session interface {
	Snapshot() sessions.State
	Subscribe() (<-chan sessions.State, func())
	SetUser(user *users.Profile)
	SetLoading(loading bool)
}

// CredentialProbe is the part of the credential store used at start-up
type CredentialProbe interface {
	IsAuthenticated() bool
	ClearCredential()
}

// ProfileFetcher loads the signed in user's profile
type ProfileFetcher interface {
	Profile(ctx context.Context) (*users.Profile, error)
}

// Gate decides whether a route may be shown for the current session. The
// session is its only source of truth.
type Gate struct {
	session     Session
	publicPaths []string
	metrics     *metrics.Metrics
	initOnce    sync.Once
}

type Option func(*Gate)

// WithPublicPaths replaces the paths reachable without signing in
func WithPublicPaths(paths ...string) Option {
	return func(g *Gate) {
		g.publicPaths = paths
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(g *Gate) {
		g.metrics = m
	}
}

func New(session Session, opts ...Option) *Gate {
	g := &Gate{
		session:     session,
		publicPaths: DefaultPublicPaths,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.metrics == nil {
		g.metrics = metrics.Nop()
	}
	return g
}

// IsPublic reports whether path is a public path or below one
func (g *Gate) IsPublic(path string) bool {
	for _, public := range g.publicPaths {
		if path == public || strings.HasPrefix(path, strings.TrimSuffix(public, "/")+"/") {
			return true
		}
	}
	return false
}

// Decide returns the decision for path in the current session state
func (g *Gate) Decide(path string) Decision {
	d := g.decide(g.session.Snapshot().Phase(), path)
	g.metrics.GateDecisions.WithLabelValues(string(d.Action)).Inc()
	return d
}

func (g *Gate) decide(phase sessions.Phase, path string) Decision {
	switch phase {
	case sessions.PhaseLoading:
		return Decision{Action: ActionLoading}
	case sessions.PhaseAuthenticated:
		if g.IsPublic(path) {
			return Decision{Action: ActionRedirect, Location: LandingRoute}
		}
	case sessions.PhaseAnonymous:
		if !g.IsPublic(path) {
			return Decision{Action: ActionRedirect, Location: LoginRedirect(path)}
		}
	}
	return Decision{Action: ActionRender}
}

// LoginRedirect is the login route remembering where to return to
func LoginRedirect(from string) string {
	if from == "" {
		return LoginRoute
	}
	return LoginRoute + "?" + FromParam + "=" + url.QueryEscape(from)
}

// Initialize resolves the start-up session once. A durable token is checked
// by fetching the profile; no token or any failure clears the credential.
// Loading always ends, whatever the outcome.
func (g *Gate) Initialize(ctx context.Context, store CredentialProbe, fetcher ProfileFetcher) {
	g.initOnce.Do(func() {
		defer g.session.SetLoading(false)

		if !store.IsAuthenticated() {
			log.Debug().Msg("No stored credential, starting signed out")
			store.ClearCredential()
			return
		}

		profile, err := fetcher.Profile(ctx)
		if err == nil && profile == nil {
			err = errors.New("empty profile")
		}
		if err != nil {
			log.Warn().Err(err).Msg("Failed to restore session, signing out")
			store.ClearCredential()
			return
		}
		g.session.SetUser(profile)
		log.Info().Str("user_id", profile.ID).Msg("Session restored")
	})
}

// Watch re-decides the current route on every session change and calls
// navigate when it must move. It blocks until ctx is done.
func (g *Gate) Watch(ctx context.Context, current func() string, navigate func(location string)) {
	states, cancel := g.session.Subscribe()
	defer cancel()

	check := func(state sessions.State) {
		path, _, _ := strings.Cut(current(), "?")
		d := g.decide(state.Phase(), path)
		if d.Action == ActionRedirect && d.Location != path {
			g.metrics.GateDecisions.WithLabelValues(string(d.Action)).Inc()
			navigate(d.Location)
		}
	}

	check(g.session.Snapshot())
	for {
		select {
		case <-ctx.Done():
			return
		case state, ok := <-states:
			if !ok {
				return
			}
			check(state)
		}
	}
}

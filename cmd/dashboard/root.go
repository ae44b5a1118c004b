package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/jrsteele09/go-admin-console/apiclient"
	"github.com/jrsteele09/go-admin-console/credentials"
	"github.com/jrsteele09/go-admin-console/credentials/storage"
	"github.com/jrsteele09/go-admin-console/gate"
	"github.com/jrsteele09/go-admin-console/internal/config"
	"github.com/jrsteele09/go-admin-console/internal/logging"
	"github.com/jrsteele09/go-admin-console/internal/metrics"
	"github.com/jrsteele09/go-admin-console/sessions"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Fine-tune admin console",
	Long: `dashboard serves the fine-tune admin console and manages the operator's
session against the REST API.

The token pair is kept in the data folder (FOLDER) and shared by every
subcommand, so signing in from the command line also signs in the web console.

Subcommands:
  serve   Run the web console
  login   Sign in with email and password
  logout  Sign out and remove stored tokens
  status  Show the current session`,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(serveCmd, loginCmd, logoutCmd, statusCmd)
}

// console is the wiring every subcommand shares
type console struct {
	config   config.Config
	registry *prometheus.Registry
	metrics  *metrics.Metrics
	session  *sessions.Manager
	store    *credentials.Store
	client   *apiclient.Client
	gate     *gate.Gate
}

func newConsole() (*console, error) {
	c, err := config.New()
	if err != nil {
		return nil, fmt.Errorf("[newConsole] failed to load config: %w", err)
	}
	logging.Setup(c.GetEnv(), os.Stderr)

	backends, err := storage.NewDefault(c)
	if err != nil {
		return nil, fmt.Errorf("[newConsole] failed to open storage: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.NewMetrics(registry)

	session := sessions.NewManager()
	store := credentials.NewStore(session, c.GetAccessTokenCookieExpiry(), c.GetRefreshTokenCookieExpiry(), backends...)
	client := apiclient.New(c.GetAPIURL(), store, session,
		apiclient.WithHTTPClient(&http.Client{Timeout: c.GetRequestTimeout()}),
		apiclient.WithMetrics(m),
		apiclient.WithRefreshTimeout(c.GetRefreshTimeout()),
		apiclient.WithSessionExpiredHandler(func(e apiclient.SessionExpired) {
			log.Info().Str("reason", string(e.Reason)).Str("redirect_to", e.RedirectTo).Msg("Session ended")
		}),
	)

	return &console{
		config:   c,
		registry: registry,
		metrics:  m,
		session:  session,
		store:    store,
		client:   client,
		gate:     gate.New(session, gate.WithMetrics(m)),
	}, nil
}

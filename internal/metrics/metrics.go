package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus metrics for the console
type Metrics struct {
	// API pipeline metrics
	APIRequests        *prometheus.CounterVec
	APIRequestDuration *prometheus.HistogramVec

	// Token lifecycle metrics
	TokenRefreshes     *prometheus.CounterVec
	RefreshWaiters     prometheus.Counter
	SessionExpirations prometheus.Counter

	// Navigation metrics
	GateDecisions *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance with all metrics registered
func NewMetrics(registry prometheus.Registerer) *Metrics {
	factory := promauto.With(registry)

	return &Metrics{
		APIRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "console_api_requests_total",
				Help: "Total number of API requests by method and status code",
			},
			[]string{"method", "status"},
		),
		APIRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "console_api_request_duration_seconds",
				Help:    "API request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method"},
		),
		TokenRefreshes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "console_token_refreshes_total",
				Help: "Total number of token refresh calls by result",
			},
			[]string{"result"},
		),
		RefreshWaiters: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "console_token_refresh_shared_total",
				Help: "Token refreshes whose result was shared by more than one request",
			},
		),
		SessionExpirations: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "console_session_expirations_total",
				Help: "Total number of forced logouts after a failed refresh",
			},
		),
		GateDecisions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "console_gate_decisions_total",
				Help: "Navigation decisions made by the session gate",
			},
			[]string{"action"},
		),
	}
}

// Nop returns metrics registered against a throwaway registry, for callers
// that do not export them.
func Nop() *Metrics {
	return NewMetrics(prometheus.NewRegistry())
}

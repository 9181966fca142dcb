package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the verification service.
type Metrics struct {
	// Verification metrics
	VerificationsTotal   *prometheus.CounterVec
	VerificationDuration *prometheus.HistogramVec

	// Upstream (Patreon API) call metrics
	UpstreamRequestsTotal   *prometheus.CounterVec
	UpstreamRequestDuration *prometheus.HistogramVec
	UpstreamRetriesTotal    prometheus.Counter

	// Membership resolution metrics
	DuplicateMembershipsTotal prometheus.Counter

	// Token endpoint metrics
	TokenGrantsTotal *prometheus.CounterVec

	// Rate limiting metrics
	RateLimitHitsTotal *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics.
func New(registry prometheus.Registerer) *Metrics {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}

	factory := promauto.With(registry)

	return &Metrics{
		VerificationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pixl_verifications_total",
				Help: "Total number of entitlement verifications by decision",
			},
			[]string{"decision"},
		),
		VerificationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pixl_verification_duration_seconds",
				Help:    "Time taken to produce an entitlement decision, including upstream retries",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"decision"},
		),

		UpstreamRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pixl_upstream_requests_total",
				Help: "Total number of Patreon API requests by endpoint and status code",
			},
			[]string{"endpoint", "status"},
		),
		UpstreamRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pixl_upstream_request_duration_seconds",
				Help:    "Patreon API request latency by endpoint",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
			},
			[]string{"endpoint"},
		),
		UpstreamRetriesTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "pixl_upstream_retries_total",
				Help: "Total number of retried upstream calls after rate limiting",
			},
		),

		DuplicateMembershipsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "pixl_duplicate_memberships_total",
				Help: "Identity lookups that returned more than one membership for the configured campaign",
			},
		),

		TokenGrantsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pixl_token_grants_total",
				Help: "Total number of OAuth token grants by grant type and outcome",
			},
			[]string{"grant", "outcome"},
		),

		RateLimitHitsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pixl_rate_limit_hits_total",
				Help: "Total number of inbound requests rejected by rate limiting",
			},
			[]string{"limit_type"},
		),
	}
}

// ObserveVerification records a completed verification with its decision tag.
func (m *Metrics) ObserveVerification(decision string, duration time.Duration) {
	m.VerificationsTotal.WithLabelValues(decision).Inc()
	m.VerificationDuration.WithLabelValues(decision).Observe(duration.Seconds())
}

// ObserveUpstream records a Patreon API call. statusCode 0 means the call
// failed at transport level before a status was received.
func (m *Metrics) ObserveUpstream(endpoint string, statusCode int, duration time.Duration) {
	status := "transport_error"
	if statusCode > 0 {
		status = strconv.Itoa(statusCode)
	}
	m.UpstreamRequestsTotal.WithLabelValues(endpoint, status).Inc()
	m.UpstreamRequestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

// ObserveRetry records one retried upstream attempt.
func (m *Metrics) ObserveRetry() {
	m.UpstreamRetriesTotal.Inc()
}

// ObserveDuplicateMemberships records a duplicate-membership resolution.
func (m *Metrics) ObserveDuplicateMemberships() {
	m.DuplicateMembershipsTotal.Inc()
}

// ObserveTokenGrant records a token exchange or refresh outcome.
func (m *Metrics) ObserveTokenGrant(grant string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	m.TokenGrantsTotal.WithLabelValues(grant, outcome).Inc()
}

// ObserveRateLimit records an inbound request rejected by the limiter.
func (m *Metrics) ObserveRateLimit(limitType string) {
	m.RateLimitHitsTotal.WithLabelValues(limitType).Inc()
}

// Package ratelimit throttles inbound requests per client IP. The limiter is
// a pluggable strategy handed to the router rather than module-level state,
// so the in-process implementation can be swapped for a distributed one
// without touching the verification core.
package ratelimit

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/httprate"

	"github.com/pixlverify/server/internal/metrics"
)

// Config holds inbound rate limiting configuration.
type Config struct {
	PerIPEnabled bool
	PerIPLimit   int           // requests per window
	PerIPWindow  time.Duration // time window

	// Metrics collector (optional)
	Metrics *metrics.Metrics
}

// Strategy decides whether an inbound request proceeds.
type Strategy interface {
	Handler(next http.Handler) http.Handler
}

// rateLimitResponse is the JSON error body for a throttled request.
type rateLimitResponse struct {
	Error             string `json:"error"`
	Message           string `json:"message"`
	RetryAfterSeconds int    `json:"retry_after_seconds"`
}

// NewIPStrategy builds a per-IP limiter on httprate. A disabled config yields
// a pass-through strategy.
func NewIPStrategy(cfg Config) Strategy {
	if !cfg.PerIPEnabled {
		return Noop()
	}

	limiter := httprate.Limit(
		cfg.PerIPLimit,
		cfg.PerIPWindow,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(limitHandler(int(cfg.PerIPWindow.Seconds()), cfg.Metrics)),
	)

	return strategyFunc(limiter)
}

// Noop returns a strategy that never throttles.
func Noop() Strategy {
	return strategyFunc(func(next http.Handler) http.Handler {
		return next
	})
}

type strategyFunc func(http.Handler) http.Handler

func (f strategyFunc) Handler(next http.Handler) http.Handler {
	return f(next)
}

// limitHandler writes the 429 response for throttled requests.
func limitHandler(windowSeconds int, metricsCollector *metrics.Metrics) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		if metricsCollector != nil {
			metricsCollector.ObserveRateLimit("per_ip")
		}

		response := rateLimitResponse{
			Error:             "rate_limit_exceeded",
			Message:           "IP rate limit exceeded. Please try again later.",
			RetryAfterSeconds: windowSeconds,
		}

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Retry-After", fmt.Sprintf("%d", windowSeconds))
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(response)
	}
}

package httpserver

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pixlverify/server/internal/apikey"
	apierrors "github.com/pixlverify/server/internal/errors"
	"github.com/pixlverify/server/internal/versioning"
	"github.com/pixlverify/server/pkg/responders"
)

// health reports liveness. It deliberately performs no upstream call: the
// Patreon API being down degrades verifications but does not make this
// process unhealthy.
// GET /healthz
func (h *handlers) health(w http.ResponseWriter, r *http.Request) {
	responders.JSON(w, http.StatusOK, map[string]any{
		"status":         "ok",
		"service":        "pixl-verify",
		"version":        versioning.Get(),
		"uptime_seconds": int64(time.Since(serverStartTime).Seconds()),
	})
}

// metricsEndpoint exposes Prometheus metrics, optionally behind an admin key.
// GET /metrics
func (h *handlers) metricsEndpoint() http.HandlerFunc {
	prom := promhttp.Handler()
	return func(w http.ResponseWriter, r *http.Request) {
		if adminKey := h.cfg.Server.AdminMetricsAPIKey; adminKey != "" {
			if !apikey.Matches([]string{adminKey}, r.Header.Get(apikey.Header)) {
				apierrors.WriteSimpleError(w, apierrors.ErrCodeUnauthorized, "Invalid or missing API key")
				return
			}
		}
		prom.ServeHTTP(w, r)
	}
}

package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/pixlverify/server/internal/apikey"
	"github.com/pixlverify/server/internal/config"
	"github.com/pixlverify/server/internal/logger"
	"github.com/pixlverify/server/internal/metrics"
	"github.com/pixlverify/server/internal/patreon"
	"github.com/pixlverify/server/internal/ratelimit"
	"github.com/pixlverify/server/internal/verify"
)

var serverStartTime = time.Now()

// Server wires handlers, middleware, and dependencies.
type Server struct {
	handlers
	httpServer *http.Server
}

type handlers struct {
	cfg      *config.Config
	verifier *verify.Service
	tokens   *patreon.TokenClient
	metrics  *metrics.Metrics
	logger   zerolog.Logger
}

// New builds the HTTP server with configured router.
func New(cfg *config.Config, verifier *verify.Service, tokens *patreon.TokenClient, limiter ratelimit.Strategy, metricsCollector *metrics.Metrics, appLogger zerolog.Logger) *Server {
	router := chi.NewRouter()

	s := &Server{
		handlers: handlers{
			cfg:      cfg,
			verifier: verifier,
			tokens:   tokens,
			metrics:  metricsCollector,
			logger:   appLogger,
		},
		httpServer: &http.Server{
			Addr:         cfg.Server.Address,
			ReadTimeout:  cfg.Server.ReadTimeout.Duration,
			WriteTimeout: cfg.Server.WriteTimeout.Duration,
			IdleTimeout:  cfg.Server.IdleTimeout.Duration,
			Handler:      router,
		},
	}

	ConfigureRouter(router, cfg, verifier, tokens, limiter, metricsCollector, appLogger)

	return s
}

// ConfigureRouter attaches the verification routes to an existing router.
func ConfigureRouter(router chi.Router, cfg *config.Config, verifier *verify.Service, tokens *patreon.TokenClient, limiter ratelimit.Strategy, metricsCollector *metrics.Metrics, appLogger zerolog.Logger) {
	if router == nil {
		return
	}

	handler := handlers{
		cfg:      cfg,
		verifier: verifier,
		tokens:   tokens,
		metrics:  metricsCollector,
		logger:   appLogger,
	}

	if len(cfg.Server.CORSAllowedOrigins) > 0 {
		router.Use(cors.New(cors.Options{
			AllowedOrigins:   cfg.Server.CORSAllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"*"},
			ExposedHeaders:   []string{"Location"},
			AllowCredentials: false,
			MaxAge:           300,
		}).Handler)
	}

	// Security headers first so every response carries them
	router.Use(securityHeadersMiddleware)

	// Structured logging before RequestID so handlers see the enriched context
	router.Use(logger.Middleware(appLogger))
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)

	// Inbound throttling; the strategy is pluggable so a distributed limiter
	// can replace the in-process one
	if limiter == nil {
		limiter = ratelimit.Noop()
	}
	router.Use(limiter.Handler)

	gate := apikey.Middleware(apikey.Config{
		Enabled: cfg.APIKey.Enabled,
		Keys:    cfg.APIKey.Keys,
	})

	mount := func(r chi.Router) {
		r.Get("/healthz", handler.health)
		r.Get("/metrics", handler.metricsEndpoint())

		// The OAuth redirect is driven by the user agent mid-flow, so it sits
		// outside the API-key gate
		r.Get("/patreon/redirect", handler.patreonRedirect)

		r.Group(func(gr chi.Router) {
			gr.Use(gate)
			gr.Post("/verify", handler.verifyEntitlement)
			gr.Post("/patreon/refresh", handler.refreshToken)
		})
	}

	if prefix := cfg.Server.RoutePrefix; prefix != "" {
		router.Route(prefix, mount)
	} else {
		mount(router)
	}
}

// ListenAndServe starts accepting connections.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown drains in-flight requests until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	zlog "github.com/rs/zerolog/log"

	"github.com/pixlverify/server/internal/circuitbreaker"
	"github.com/pixlverify/server/internal/config"
	"github.com/pixlverify/server/internal/httpserver"
	"github.com/pixlverify/server/internal/lifecycle"
	"github.com/pixlverify/server/internal/logger"
	"github.com/pixlverify/server/internal/metrics"
	"github.com/pixlverify/server/internal/patreon"
	"github.com/pixlverify/server/internal/ratelimit"
	"github.com/pixlverify/server/internal/retry"
	"github.com/pixlverify/server/internal/verify"
	"github.com/pixlverify/server/internal/versioning"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// .env is a local development convenience; absence is not an error
	_ = godotenv.Load()

	configPath := flag.String("config", os.Getenv("PIXL_CONFIG"), "path to YAML configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		zlog.Fatal().Err(err).Msg("main.config_load_failed")
	}

	appLogger := logger.New(logger.Config{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		Service:     "pixl-verify",
		Version:     versioning.Get().String(),
		Environment: cfg.Logging.Environment,
	})
	zlog.Logger = appLogger

	metricsCollector := metrics.New(prometheus.DefaultRegisterer)
	breakers := circuitbreaker.NewManagerFromConfig(cfg.CircuitBreaker)

	client := patreon.NewClient(cfg.Patreon, breakers, metricsCollector)
	tokens := patreon.NewTokenClient(cfg.Patreon, breakers, metricsCollector)

	policy := retry.New(cfg.Retry, patreon.IsRateLimited)
	policy.OnRetry = func(ctx context.Context, attempt int, err error) {
		metricsCollector.ObserveRetry()
		log := logger.FromContext(ctx)
		log.Warn().
			Int("attempt", attempt).
			Dur("delay", policy.Delay).
			Msg("upstream.rate_limited_retrying")
	}

	verifier := verify.New(client, policy, cfg.Patreon.CampaignID, cfg.Patreon.MinimumAmountCents, metricsCollector)

	limiter := ratelimit.NewIPStrategy(ratelimit.Config{
		PerIPEnabled: cfg.RateLimit.PerIPEnabled,
		PerIPLimit:   cfg.RateLimit.PerIPLimit,
		PerIPWindow:  cfg.RateLimit.PerIPWindow.Duration,
		Metrics:      metricsCollector,
	})

	srv := httpserver.New(cfg, verifier, tokens, limiter, metricsCollector, appLogger)

	resources := lifecycle.NewManager()
	resources.RegisterFunc("patreon_client", func() error {
		client.CloseIdleConnections()
		return nil
	})
	resources.RegisterFunc("token_client", func() error {
		tokens.CloseIdleConnections()
		return nil
	})

	serveErr := make(chan error, 1)
	go func() {
		appLogger.Info().
			Str("address", cfg.Server.Address).
			Str("campaign_id", cfg.Patreon.CampaignID).
			Int64("minimum_amount_cents", cfg.Patreon.MinimumAmountCents).
			Msg("main.server_starting")
		serveErr <- srv.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-stop:
		appLogger.Info().Str("signal", sig.String()).Msg("main.shutdown_requested")
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error().Err(err).Msg("main.server_failed")
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error().Err(err).Msg("main.shutdown_failed")
	}
	if err := resources.Close(); err != nil {
		appLogger.Error().Err(err).Msg("main.resource_cleanup_failed")
	}

	appLogger.Info().Msg("main.stopped")
}

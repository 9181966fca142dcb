// Package retry re-issues read-only upstream lookups that failed due to rate
// limiting. The delay between attempts is fixed rather than exponential: it
// matches the upstream's observed rate-limit window and keeps worst-case added
// latency at (MaxAttempts-1) * Delay. Only naturally idempotent GETs are
// wrapped in this policy.
package retry

import (
	"context"
	"time"

	"github.com/pixlverify/server/internal/config"
)

// Policy holds the retry configuration. The zero value performs a single
// attempt with no retries.
type Policy struct {
	// MaxAttempts is the total attempt budget, including the first call.
	MaxAttempts int

	// Delay is the fixed pause between attempts.
	Delay time.Duration

	// ShouldRetry decides whether a failure is retryable. Anything else
	// propagates immediately.
	ShouldRetry func(error) bool

	// OnRetry, if set, is invoked before each re-attempt. attempt is the
	// 1-based number of the attempt that just failed.
	OnRetry func(ctx context.Context, attempt int, err error)

	// Sleep is the delay implementation; tests substitute it. Defaults to a
	// context-aware timer.
	Sleep func(ctx context.Context, d time.Duration) error
}

// New builds a Policy from configuration.
func New(cfg config.RetryConfig, shouldRetry func(error) bool) Policy {
	return Policy{
		MaxAttempts: cfg.MaxAttempts,
		Delay:       cfg.Delay.Duration,
		ShouldRetry: shouldRetry,
	}
}

// Do runs op, re-issuing it while ShouldRetry approves the failure and the
// attempt budget lasts. The last error is propagated unchanged on exhaustion.
// If the context is cancelled while a delay is pending, the retry is abandoned
// and the context error is returned; no further upstream calls are issued.
func (p Policy) Do(ctx context.Context, op func() error) error {
	attempts := p.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}
	sleep := p.Sleep
	if sleep == nil {
		sleep = sleepContext
	}

	var err error
	for attempt := 1; ; attempt++ {
		err = op()
		if err == nil || attempt >= attempts || p.ShouldRetry == nil || !p.ShouldRetry(err) {
			return err
		}

		if p.OnRetry != nil {
			p.OnRetry(ctx, attempt, err)
		}

		if sleepErr := sleep(ctx, p.Delay); sleepErr != nil {
			return sleepErr
		}
	}
}

// sleepContext blocks for d without holding any goroutine hostage past
// cancellation.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

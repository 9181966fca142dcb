package circuitbreaker

import (
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker"

	"github.com/pixlverify/server/internal/config"
)

func enabledConfig() config.CircuitBreakerConfig {
	breaker := config.BreakerConfig{
		MaxRequests:         1,
		Interval:            config.Duration{Duration: time.Minute},
		Timeout:             config.Duration{Duration: time.Minute},
		ConsecutiveFailures: 2,
	}
	return config.CircuitBreakerConfig{
		Enabled:       true,
		PatreonAPI:    breaker,
		TokenEndpoint: breaker,
	}
}

func TestDisabledManagerPassesThrough(t *testing.T) {
	m := NewManagerFromConfig(config.CircuitBreakerConfig{Enabled: false})

	want := errors.New("upstream failed")
	for i := 0; i < 10; i++ {
		_, err := m.Execute(ServicePatreonAPI, func() (interface{}, error) {
			return nil, want
		})
		if !errors.Is(err, want) {
			t.Fatalf("disabled manager must never trip, got %v", err)
		}
	}

	if state := m.State(ServicePatreonAPI); state != "disabled" {
		t.Errorf("expected disabled state, got %q", state)
	}
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	m := NewManagerFromConfig(enabledConfig())

	fail := errors.New("upstream failed")
	for i := 0; i < 2; i++ {
		m.Execute(ServicePatreonAPI, func() (interface{}, error) {
			return nil, fail
		})
	}

	_, err := m.Execute(ServicePatreonAPI, func() (interface{}, error) {
		t.Fatal("open breaker must not invoke the call")
		return nil, nil
	})
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Fatalf("expected ErrOpenState, got %v", err)
	}
}

func TestBreakersAreIsolatedPerService(t *testing.T) {
	m := NewManagerFromConfig(enabledConfig())

	fail := errors.New("token endpoint down")
	for i := 0; i < 2; i++ {
		m.Execute(ServiceTokenEndpoint, func() (interface{}, error) {
			return nil, fail
		})
	}

	result, err := m.Execute(ServicePatreonAPI, func() (interface{}, error) {
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("token endpoint failures must not trip the API breaker: %v", err)
	}
	if result != "ok" {
		t.Errorf("unexpected result %v", result)
	}
}

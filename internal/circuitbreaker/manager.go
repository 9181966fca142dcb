package circuitbreaker

import (
	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"

	"github.com/pixlverify/server/internal/config"
)

// ServiceType identifies different external services for circuit breaker isolation.
type ServiceType string

const (
	// ServicePatreonAPI covers identity and campaign-member lookups.
	ServicePatreonAPI ServiceType = "patreon_api"
	// ServiceTokenEndpoint covers authorization-code and refresh-token grants.
	ServiceTokenEndpoint ServiceType = "token_endpoint"
)

// Manager manages circuit breakers for the upstream Patreon services.
// Each service has its own breaker so a failing token endpoint cannot trip
// verification lookups, and vice versa.
type Manager struct {
	breakers map[ServiceType]*gobreaker.CircuitBreaker
	enabled  bool
}

// NewManagerFromConfig creates a circuit breaker manager from application config.
func NewManagerFromConfig(cfg config.CircuitBreakerConfig) *Manager {
	m := &Manager{
		breakers: make(map[ServiceType]*gobreaker.CircuitBreaker),
		enabled:  cfg.Enabled,
	}

	if !cfg.Enabled {
		// Pass-through manager
		return m
	}

	m.breakers[ServicePatreonAPI] = gobreaker.NewCircuitBreaker(toSettings(string(ServicePatreonAPI), cfg.PatreonAPI))
	m.breakers[ServiceTokenEndpoint] = gobreaker.NewCircuitBreaker(toSettings(string(ServiceTokenEndpoint), cfg.TokenEndpoint))

	return m
}

// Execute wraps a function call with circuit breaker protection.
// If the manager is disabled or has no breaker for the service, the call
// executes directly.
func (m *Manager) Execute(service ServiceType, fn func() (interface{}, error)) (interface{}, error) {
	if !m.enabled {
		return fn()
	}

	breaker, ok := m.breakers[service]
	if !ok {
		return fn()
	}

	return breaker.Execute(fn)
}

// State returns the current state of a circuit breaker.
func (m *Manager) State(service ServiceType) string {
	if !m.enabled {
		return "disabled"
	}

	breaker, ok := m.breakers[service]
	if !ok {
		return "not_configured"
	}

	return breaker.State().String()
}

// toSettings converts breaker config to gobreaker.Settings.
func toSettings(name string, cfg config.BreakerConfig) gobreaker.Settings {
	return gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval.Duration,
		Timeout:     cfg.Timeout.Duration,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if cfg.ConsecutiveFailures > 0 && counts.ConsecutiveFailures >= cfg.ConsecutiveFailures {
				return true
			}

			if cfg.FailureRatio > 0 && cfg.MinRequests > 0 && counts.Requests >= cfg.MinRequests {
				failureRate := float64(counts.TotalFailures) / float64(counts.Requests)
				if failureRate >= cfg.FailureRatio {
					return true
				}
			}

			return false
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuitbreaker.state_changed")
		},
	}
}

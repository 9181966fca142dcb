package config

import (
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration to support string based YAML decoding.
type Duration struct {
	time.Duration
}

// UnmarshalYAML parses duration values expressed as Go-style strings or numbers interpreted as seconds.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		raw := strings.TrimSpace(value.Value)
		if raw == "" {
			d.Duration = 0
			return nil
		}
		parsed, err := time.ParseDuration(raw)
		if err == nil {
			d.Duration = parsed
			return nil
		}
		secs, convErr := time.ParseDuration(fmt.Sprintf("%ss", raw))
		if convErr == nil {
			d.Duration = secs
			return nil
		}
		return fmt.Errorf("invalid duration value %q: %w", raw, err)
	default:
		return fmt.Errorf("unsupported duration node kind: %v", value.Kind)
	}
}

// MarshalYAML renders the duration as a string to keep config edits human-friendly.
func (d Duration) MarshalYAML() (interface{}, error) {
	return d.Duration.String(), nil
}

// Config holds application level configuration aggregated from file and environment variables.
type Config struct {
	Server         ServerConfig         `yaml:"server"`
	Logging        LoggingConfig        `yaml:"logging"`
	Patreon        PatreonConfig        `yaml:"patreon"`
	Retry          RetryConfig          `yaml:"retry"`
	RateLimit      RateLimitConfig      `yaml:"rate_limit"`
	APIKey         APIKeyConfig         `yaml:"api_key"`
	CircuitBreaker CircuitBreakerConfig `yaml:"circuit_breaker"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Address            string   `yaml:"address"`
	ReadTimeout        Duration `yaml:"read_timeout"`
	WriteTimeout       Duration `yaml:"write_timeout"`
	IdleTimeout        Duration `yaml:"idle_timeout"`
	CORSAllowedOrigins []string `yaml:"cors_allowed_origins"`
	RoutePrefix        string   `yaml:"route_prefix"`          // Optional prefix for all routes (e.g., "/api")
	AdminMetricsAPIKey string   `yaml:"admin_metrics_api_key"` // Optional API key to protect /metrics (empty disables protection)
}

// LoggingConfig holds structured logging configuration.
type LoggingConfig struct {
	Level       string `yaml:"level"`       // debug, info, warn, error
	Format      string `yaml:"format"`      // json, console
	Environment string `yaml:"environment"` // production, development
}

// PatreonConfig holds Patreon platform integration configuration.
//
// ClientID/ClientSecret are the confidential OAuth client credentials used by
// the token-exchange endpoints. CampaignID scopes entitlement verification to
// a single creator campaign. MinimumAmountCents is the entitlement floor: a
// member counts as subscribed when their currently entitled amount meets it.
type PatreonConfig struct {
	ClientID           string   `yaml:"client_id"`
	ClientSecret       string   `yaml:"client_secret"`
	APIBaseURL         string   `yaml:"api_base_url"`
	TokenURL           string   `yaml:"token_url"`
	RedirectURL        string   `yaml:"redirect_url"`         // OAuth redirect registered with Patreon (this server's /patreon/redirect)
	AppRedirectURI     string   `yaml:"app_redirect_uri"`     // App URI scheme tokens are handed back to
	CampaignID         string   `yaml:"campaign_id"`
	MinimumAmountCents int64    `yaml:"minimum_amount_cents"`
	UserAgent          string   `yaml:"user_agent"`
	RequestTimeout     Duration `yaml:"request_timeout"`
}

// RetryConfig holds the rate-limit retry policy for upstream lookups.
// The delay is fixed, not exponential: it matches observed Patreon rate-limit
// windows and keeps worst-case added latency at (max_attempts-1) * delay.
type RetryConfig struct {
	MaxAttempts int      `yaml:"max_attempts"`
	Delay       Duration `yaml:"delay"`
}

// RateLimitConfig holds inbound per-IP request throttling configuration.
type RateLimitConfig struct {
	PerIPEnabled bool     `yaml:"per_ip_enabled"`
	PerIPLimit   int      `yaml:"per_ip_limit"`
	PerIPWindow  Duration `yaml:"per_ip_window"`
}

// APIKeyConfig holds the inbound pre-shared API key gate configuration.
type APIKeyConfig struct {
	Enabled bool     `yaml:"enabled"`
	Keys    []string `yaml:"keys"`
}

// CircuitBreakerConfig holds circuit breaker configuration for upstream services.
type CircuitBreakerConfig struct {
	Enabled       bool          `yaml:"enabled"`
	PatreonAPI    BreakerConfig `yaml:"patreon_api"`
	TokenEndpoint BreakerConfig `yaml:"token_endpoint"`
}

// BreakerConfig configures a single circuit breaker.
type BreakerConfig struct {
	MaxRequests         uint32   `yaml:"max_requests"`
	Interval            Duration `yaml:"interval"`
	Timeout             Duration `yaml:"timeout"`
	ConsecutiveFailures uint32   `yaml:"consecutive_failures"`
	FailureRatio        float64  `yaml:"failure_ratio"`
	MinRequests         uint32   `yaml:"min_requests"`
}

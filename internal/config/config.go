package config

import (
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// defaultCampaignID is the compiled-in campaign the verifier is scoped to
// when no override is configured.
const defaultCampaignID = "9217335"

// Load reads configuration from a YAML file and applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	if path != "" {
		if err := cfg.parseFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.finalize(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Address:      ":8080",
			ReadTimeout:  Duration{Duration: 15 * time.Second},
			WriteTimeout: Duration{Duration: 15 * time.Second},
			IdleTimeout:  Duration{Duration: 60 * time.Second},
		},
		Logging: LoggingConfig{
			Level:       "info",
			Format:      "json",
			Environment: "production",
		},
		Patreon: PatreonConfig{
			APIBaseURL:         "https://www.patreon.com/api/oauth2/v2",
			TokenURL:           "https://www.patreon.com/api/oauth2/token",
			AppRedirectURI:     "com.example.patreonapp://oauthredirect",
			CampaignID:         defaultCampaignID,
			MinimumAmountCents: 100,
			UserAgent:          "PixL - Subscription Check",
			RequestTimeout:     Duration{Duration: 10 * time.Second},
		},
		Retry: RetryConfig{
			MaxAttempts: 3,
			Delay:       Duration{Duration: 1 * time.Second},
		},
		RateLimit: RateLimitConfig{
			// Generous limit - designed to prevent spam, not restrict legitimate use
			PerIPEnabled: true,
			PerIPLimit:   60,
			PerIPWindow:  Duration{Duration: 1 * time.Minute},
		},
		APIKey: APIKeyConfig{
			Enabled: true,
		},
		CircuitBreaker: CircuitBreakerConfig{
			Enabled: true,
			PatreonAPI: BreakerConfig{
				MaxRequests:         3,
				Interval:            Duration{Duration: 60 * time.Second},
				Timeout:             Duration{Duration: 30 * time.Second},
				ConsecutiveFailures: 5,
				FailureRatio:        0.5,
				MinRequests:         10,
			},
			TokenEndpoint: BreakerConfig{
				MaxRequests:         3,
				Interval:            Duration{Duration: 60 * time.Second},
				Timeout:             Duration{Duration: 30 * time.Second},
				ConsecutiveFailures: 5,
				FailureRatio:        0.5,
				MinRequests:         10,
			},
		},
	}
}

// parseFile merges YAML configuration from the given path into the config.
func (c *Config) parseFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open config file: %w", err)
	}
	defer f.Close()

	raw, err := io.ReadAll(f)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	if err := yaml.Unmarshal(raw, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

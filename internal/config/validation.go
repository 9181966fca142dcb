package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"
)

// finalize applies defaults and validates the configuration.
func (c *Config) finalize() error {
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}
	if c.Logging.Environment == "" {
		c.Logging.Environment = "production"
	}
	if c.Server.Address == "" {
		c.Server.Address = ":8080"
	}
	if c.Patreon.RequestTimeout.Duration <= 0 {
		c.Patreon.RequestTimeout = Duration{Duration: 10 * time.Second}
	}
	if c.Retry.MaxAttempts <= 0 {
		c.Retry.MaxAttempts = 3
	}
	if c.Retry.Delay.Duration < 0 {
		c.Retry.Delay = Duration{Duration: time.Second}
	}

	return c.validate()
}

// validate checks the configuration for errors that would make the server
// misbehave at runtime rather than fail at startup.
func (c *Config) validate() error {
	if c.Patreon.CampaignID == "" {
		return errors.New("config: patreon campaign_id must not be empty")
	}
	if c.Patreon.MinimumAmountCents < 0 {
		return fmt.Errorf("config: minimum_amount_cents must not be negative, got %d", c.Patreon.MinimumAmountCents)
	}
	if err := validateURL("patreon api_base_url", c.Patreon.APIBaseURL); err != nil {
		return err
	}
	if err := validateURL("patreon token_url", c.Patreon.TokenURL); err != nil {
		return err
	}
	if c.APIKey.Enabled && len(c.APIKey.Keys) == 0 {
		return errors.New("config: api_key gate enabled but no keys configured (set API_KEY or PIXL_API_KEYS)")
	}
	if c.RateLimit.PerIPEnabled && c.RateLimit.PerIPLimit <= 0 {
		return fmt.Errorf("config: per_ip_limit must be positive when rate limiting is enabled, got %d", c.RateLimit.PerIPLimit)
	}
	return nil
}

func validateURL(name, raw string) error {
	if raw == "" {
		return fmt.Errorf("config: %s must not be empty", name)
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("config: %s is not an absolute URL: %q", name, raw)
	}
	return nil
}

package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// applyEnvOverrides applies environment variable overrides to the config.
// Environment variables take precedence over YAML configuration.
// All env vars use PIXL_ prefix for namespace isolation.
func (c *Config) applyEnvOverrides() {
	// Server config
	setIfEnv(&c.Server.Address, "PIXL_SERVER_ADDRESS")
	setIfEnv(&c.Server.RoutePrefix, "PIXL_ROUTE_PREFIX")
	setIfEnv(&c.Server.AdminMetricsAPIKey, "PIXL_ADMIN_METRICS_API_KEY")
	if v := os.Getenv("PIXL_CORS_ALLOWED_ORIGINS"); v != "" {
		c.Server.CORSAllowedOrigins = splitCSV(v)
	}

	// Normalize route prefix: ensure it starts with / and doesn't end with /
	if c.Server.RoutePrefix != "" {
		c.Server.RoutePrefix = normalizeRoutePrefix(c.Server.RoutePrefix)
	}

	// Logging config
	setIfEnv(&c.Logging.Level, "PIXL_LOG_LEVEL")
	setIfEnv(&c.Logging.Format, "PIXL_LOG_FORMAT")
	setIfEnv(&c.Logging.Environment, "PIXL_ENVIRONMENT")

	// Patreon config
	setIfEnv(&c.Patreon.ClientID, "PATREON_CLIENT_ID")
	setIfEnv(&c.Patreon.ClientSecret, "PATREON_CLIENT_SECRET")
	setIfEnv(&c.Patreon.APIBaseURL, "PIXL_PATREON_API_BASE_URL")
	setIfEnv(&c.Patreon.TokenURL, "PIXL_PATREON_TOKEN_URL")
	setIfEnv(&c.Patreon.RedirectURL, "PIXL_PATREON_REDIRECT_URL")
	setIfEnv(&c.Patreon.AppRedirectURI, "PIXL_APP_REDIRECT_URI")
	setIfEnv(&c.Patreon.CampaignID, "PIXL_CAMPAIGN_ID")
	setInt64IfEnv(&c.Patreon.MinimumAmountCents, "PIXL_MINIMUM_AMOUNT_CENTS")
	setIfEnv(&c.Patreon.UserAgent, "PIXL_PATREON_USER_AGENT")
	setDurationIfEnv(&c.Patreon.RequestTimeout, "PIXL_PATREON_REQUEST_TIMEOUT")

	// Retry config
	setIntIfEnv(&c.Retry.MaxAttempts, "PIXL_RETRY_MAX_ATTEMPTS")
	setDurationIfEnv(&c.Retry.Delay, "PIXL_RETRY_DELAY")

	// Rate limit config
	setBoolIfEnv(&c.RateLimit.PerIPEnabled, "PIXL_RATE_LIMIT_PER_IP_ENABLED")
	setIntIfEnv(&c.RateLimit.PerIPLimit, "PIXL_RATE_LIMIT_PER_IP_LIMIT")
	setDurationIfEnv(&c.RateLimit.PerIPWindow, "PIXL_RATE_LIMIT_PER_IP_WINDOW")

	// API key config. API_KEY matches the variable name the deployed
	// functions used; PIXL_API_KEYS accepts a comma-separated list.
	setBoolIfEnv(&c.APIKey.Enabled, "PIXL_API_KEY_ENABLED")
	if v := os.Getenv("API_KEY"); v != "" {
		c.APIKey.Keys = appendUnique(c.APIKey.Keys, v)
	}
	if v := os.Getenv("PIXL_API_KEYS"); v != "" {
		for _, key := range splitCSV(v) {
			c.APIKey.Keys = appendUnique(c.APIKey.Keys, key)
		}
	}

	// Circuit breaker config
	setBoolIfEnv(&c.CircuitBreaker.Enabled, "PIXL_CIRCUIT_BREAKER_ENABLED")
}

// setIfEnv sets a string pointer to the environment variable value if it exists.
func setIfEnv(target *string, key string) {
	if val := os.Getenv(key); val != "" {
		*target = val
	}
}

// setBoolIfEnv sets a boolean pointer from an environment variable.
// Accepts "1", "true", "TRUE", "True" as true values.
func setBoolIfEnv(target *bool, key string) {
	if v := os.Getenv(key); v != "" {
		*target = v == "1" || strings.EqualFold(v, "true")
	}
}

// setIntIfEnv sets an int pointer from an environment variable.
func setIntIfEnv(target *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*target = n
		}
	}
}

// setInt64IfEnv sets an int64 pointer from an environment variable.
func setInt64IfEnv(target *int64, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*target = n
		}
	}
}

// setDurationIfEnv sets a Duration pointer from an environment variable.
// Uses time.ParseDuration to parse values like "5m", "120s", "1h30m".
func setDurationIfEnv(target *Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if dur, err := time.ParseDuration(v); err == nil {
			*target = Duration{Duration: dur}
		}
	}
}

// splitCSV splits a comma-separated value, trimming whitespace and dropping empties.
func splitCSV(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// appendUnique appends value to keys unless already present.
func appendUnique(keys []string, value string) []string {
	for _, k := range keys {
		if k == value {
			return keys
		}
	}
	return append(keys, value)
}

// normalizeRoutePrefix ensures the prefix starts with / and doesn't end with /.
// Examples: "api" -> "/api", "/api/" -> "/api"
func normalizeRoutePrefix(prefix string) string {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return ""
	}
	if !strings.HasPrefix(prefix, "/") {
		prefix = "/" + prefix
	}
	prefix = strings.TrimSuffix(prefix, "/")
	return prefix
}

// Package apikey gates inbound requests on a pre-shared key. Unlike a tiering
// scheme, this gate is strict: a missing or unknown key rejects the request
// before it can reach the verification core.
package apikey

import (
	"crypto/subtle"
	"net/http"
	"strings"

	apierrors "github.com/pixlverify/server/internal/errors"
)

// Header is the request header carrying the pre-shared key.
const Header = "X-API-Key"

// Config holds API key gate configuration.
type Config struct {
	// Enabled controls whether the gate is active. Disabled is intended for
	// local development only.
	Enabled bool

	// Keys are the accepted pre-shared keys.
	Keys []string
}

// Middleware rejects requests whose X-API-Key header does not match a
// configured key. Comparison is constant-time per candidate key.
func Middleware(cfg Config) func(http.Handler) http.Handler {
	if !cfg.Enabled {
		return func(next http.Handler) http.Handler {
			return next
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			provided := strings.TrimSpace(r.Header.Get(Header))
			if !Matches(cfg.Keys, provided) {
				apierrors.WriteSimpleError(w, apierrors.ErrCodeUnauthorized, "Invalid or missing API key")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Matches reports whether provided equals one of the configured keys.
// Every candidate is compared so timing does not reveal which key prefix matched.
func Matches(keys []string, provided string) bool {
	if provided == "" {
		return false
	}
	matched := false
	for _, key := range keys {
		if subtle.ConstantTimeCompare([]byte(key), []byte(provided)) == 1 {
			matched = true
		}
	}
	return matched
}

package patreon

import (
	"errors"
	"fmt"
)

// UpstreamError describes a failed Patreon API call. StatusCode is 0 when the
// request failed at transport level before any response was received. Body is
// the (truncated) upstream response body; it is for server-side logs only and
// must never be echoed to callers.
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("patreon: request failed: %s", e.Body)
	}
	return fmt.Sprintf("patreon: upstream returned status %d", e.StatusCode)
}

// IsRateLimited reports whether err is an upstream 429. This is the only
// condition the retry policy acts on.
func IsRateLimited(err error) bool {
	var ue *UpstreamError
	return errors.As(err, &ue) && ue.StatusCode == 429
}

// StatusOf extracts the upstream status code from err, if it carries one.
func StatusOf(err error) (int, bool) {
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return ue.StatusCode, true
	}
	return 0, false
}

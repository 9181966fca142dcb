package httpserver

import (
	"context"
	"errors"

	"net/http"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"

	apierrors "github.com/pixlverify/server/internal/errors"
	"github.com/pixlverify/server/internal/patreon"
	"github.com/pixlverify/server/internal/verify"
)

// writeUpstreamError classifies a failed upstream interaction into the
// caller-facing error taxonomy. Raw upstream bodies are logged server-side
// only; the response never forwards them, so credentials and other secrets in
// upstream payloads cannot leak through error responses.
func writeUpstreamError(w http.ResponseWriter, log zerolog.Logger, op string, err error) {
	switch {
	case errors.Is(err, verify.ErrEmptyToken):
		apierrors.WriteSimpleError(w, apierrors.ErrCodeMissingField, "accessToken is required")
		return

	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		log.Warn().Str("op", op).Msg("upstream.circuit_open")
		apierrors.WriteSimpleError(w, apierrors.ErrCodeUpstreamUnavailable, upstreamMessage(apierrors.ErrCodeUpstreamUnavailable))
		return

	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		// The caller is likely gone; respond anyway in case the write still lands
		apierrors.WriteSimpleError(w, apierrors.ErrCodeInternalError, "Request cancelled")
		return
	}

	var ue *patreon.UpstreamError
	if errors.As(err, &ue) {
		code := apierrors.ErrCodeUpstreamError
		if ue.StatusCode > 0 {
			code = apierrors.ClassifyUpstream(ue.StatusCode)
		}
		log.Error().
			Str("op", op).
			Int("upstream_status", ue.StatusCode).
			Str("upstream_body", ue.Body).
			Str("error_code", string(code)).
			Msg("upstream.call_failed")
		apierrors.WriteSimpleError(w, code, upstreamMessage(code))
		return
	}

	log.Error().Err(err).Str("op", op).Msg("upstream.unclassified_failure")
	apierrors.WriteSimpleError(w, apierrors.ErrCodeInternalError, "Verification failed")
}

// upstreamMessage returns the human-readable message for an upstream-derived
// error code. Messages are generic on purpose.
func upstreamMessage(code apierrors.ErrorCode) string {
	switch code {
	case apierrors.ErrCodeUpstreamUnauthorized:
		return "Patreon token is invalid or expired"
	case apierrors.ErrCodeUpstreamForbidden:
		return "Patreon token is missing required scopes"
	case apierrors.ErrCodeUpstreamRateLimited:
		return "Patreon rate limit exceeded, please try again later"
	case apierrors.ErrCodeUpstreamUnavailable:
		return "Membership platform is temporarily unavailable"
	default:
		return "Verification failed"
	}
}

package errors

// ErrorCode represents a machine-readable error identifier for client error handling.
type ErrorCode string

// Request validation errors.
const (
	ErrCodeInvalidJSON  ErrorCode = "invalid_json"
	ErrCodeMissingField ErrorCode = "missing_field"
	ErrCodeInvalidField ErrorCode = "invalid_field"
)

// Authentication errors for the inbound API-key gate.
const (
	ErrCodeUnauthorized ErrorCode = "unauthorized"
)

// Upstream (Patreon API) derived errors. These classify what the upstream
// returned after the retry budget is spent; the raw upstream payload is
// logged server-side only.
const (
	ErrCodeUpstreamUnauthorized ErrorCode = "upstream_unauthorized"
	ErrCodeUpstreamForbidden    ErrorCode = "upstream_forbidden"
	ErrCodeUpstreamRateLimited  ErrorCode = "upstream_rate_limited"
	ErrCodeUpstreamUnavailable  ErrorCode = "upstream_unavailable"
	ErrCodeUpstreamError        ErrorCode = "upstream_error"
)

// Internal/system errors.
const (
	ErrCodeInternalError ErrorCode = "internal_error"
	ErrCodeConfigError   ErrorCode = "config_error"
)

// IsRetryable returns whether an error code represents a retryable error.
// Retryable errors are transient upstream conditions, not validation or
// credential failures.
func (e ErrorCode) IsRetryable() bool {
	switch e {
	case ErrCodeUpstreamRateLimited,
		ErrCodeUpstreamUnavailable:
		return true
	default:
		return false
	}
}

// HTTPStatus returns the appropriate HTTP status code for this error.
func (e ErrorCode) HTTPStatus() int {
	switch e {
	case ErrCodeInvalidJSON,
		ErrCodeMissingField,
		ErrCodeInvalidField:
		return 400

	case ErrCodeUnauthorized,
		ErrCodeUpstreamUnauthorized:
		return 401

	case ErrCodeUpstreamForbidden:
		return 403

	case ErrCodeUpstreamRateLimited:
		return 429

	case ErrCodeUpstreamUnavailable:
		return 503

	case ErrCodeUpstreamError,
		ErrCodeInternalError,
		ErrCodeConfigError:
		return 500

	default:
		return 500
	}
}

// ClassifyUpstream maps an upstream HTTP status code (observed after retries
// are exhausted) to the caller-facing error code. 401/403 mean the bearer
// credential is invalid or under-scoped and the caller should re-authenticate;
// 5xx means the platform is down; anything else is unclassified.
func ClassifyUpstream(statusCode int) ErrorCode {
	switch {
	case statusCode == 401:
		return ErrCodeUpstreamUnauthorized
	case statusCode == 403:
		return ErrCodeUpstreamForbidden
	case statusCode == 429:
		return ErrCodeUpstreamRateLimited
	case statusCode >= 500:
		return ErrCodeUpstreamUnavailable
	default:
		return ErrCodeUpstreamError
	}
}

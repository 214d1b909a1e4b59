package adapter

import "errors"

var (
	ErrUnauthorized      = errors.New("client unauthorized")
	ErrForbidden         = errors.New("forbidden")
	ErrBadRequest        = errors.New("bad request")
	ErrNotFound          = errors.New("not found")
	ErrTooManyRequests   = errors.New("too many requests")
	ErrServerUnavailable = errors.New("remote store unavailable")
	ErrNetwork           = errors.New("network error")
	ErrMalformedResponse = errors.New("malformed response")
)

// IsRetryable reports whether err is a transient failure worth retrying:
// a network or timeout error, throttling or a 5xx response.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrNetwork) ||
		errors.Is(err, ErrServerUnavailable) ||
		errors.Is(err, ErrTooManyRequests)
}

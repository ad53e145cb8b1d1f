package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Common error types for the mood music API
var (
	// Startup errors
	ErrConfiguration = errors.New("invalid configuration")

	// Login flow errors
	ErrStateMismatch            = errors.New("invalid state parameter")
	ErrAuthorizationDenied      = errors.New("authorization denied by user")
	ErrInvalidAuthorizationCode = errors.New("invalid authorization code")

	// Token errors
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrTokenExchangeFailed = errors.New("failed to exchange code for token")
	ErrTokenRefreshFailed  = errors.New("failed to refresh token")

	// Session errors
	ErrUnauthenticated = errors.New("not authenticated")

	// Request errors
	ErrInvalidRequest = errors.New("invalid request")
	ErrRateLimited    = errors.New("rate limit exceeded")
	ErrNotFound       = errors.New("not found")

	// Upstream errors
	ErrUpstream             = errors.New("upstream request failed")
	ErrUpstreamUnauthorized = errors.New("provider rejected the access token")
	ErrUnavailable          = errors.New("service unavailable")
)

type mapping struct {
	target error
	status int
	reason string
}

// Ordered: the first match in an error chain wins.
var mappings = []mapping{
	{ErrStateMismatch, http.StatusBadRequest, "invalid_state"},
	{ErrAuthorizationDenied, http.StatusBadRequest, "authorization_denied"},
	{ErrInvalidAuthorizationCode, http.StatusBadRequest, "invalid_authorization_code"},
	{ErrInvalidRequest, http.StatusBadRequest, "invalid_request"},
	{ErrInvalidRefreshToken, http.StatusUnauthorized, "reauthentication_required"},
	{ErrUpstreamUnauthorized, http.StatusUnauthorized, "reauthentication_required"},
	{ErrUnauthenticated, http.StatusUnauthorized, "unauthenticated"},
	{ErrNotFound, http.StatusNotFound, "not_found"},
	{ErrRateLimited, http.StatusTooManyRequests, "rate_limited"},
	{ErrUnavailable, http.StatusServiceUnavailable, "unavailable"},
	{ErrTokenExchangeFailed, http.StatusInternalServerError, "token_exchange_failed"},
	{ErrTokenRefreshFailed, http.StatusInternalServerError, "token_refresh_failed"},
	{ErrUpstream, http.StatusInternalServerError, "upstream_failure"},
}

// HTTPStatus maps an error to the status code returned to clients.
// Unknown errors are internal errors.
func HTTPStatus(err error) int {
	for _, m := range mappings {
		if errors.Is(err, m.target) {
			return m.status
		}
	}
	return http.StatusInternalServerError
}

// Reason maps an error to a short machine readable reason.
func Reason(err error) string {
	for _, m := range mappings {
		if errors.Is(err, m.target) {
			return m.reason
		}
	}
	return "internal_error"
}

// Message is the client-safe text for err: the message of the matched
// sentinel, never the wrapped detail.
func Message(err error) string {
	for _, m := range mappings {
		if errors.Is(err, m.target) {
			return m.target.Error()
		}
	}
	return "internal server error"
}

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

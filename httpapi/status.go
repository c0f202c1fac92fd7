package httpapi

import (
	"errors"
	"net/http"

	"github.com/MrEthical07/sessionkit"
)

// Messages shared by several routes.
const (
	msgInternal          = "Internal Server Error"
	msgInvalidBody       = "Invalid request body"
	msgTooManyRequests   = "Too many requests from this IP, please try again later."
	msgRefreshMissing    = "Refresh token is missing"
	msgRefreshExpired    = "Refresh token has expired"
	msgRefreshInvalid    = "Invalid refresh token"
	msgRefreshReuse      = "Refresh token reuse detected. Please log in again."
	msgRefreshRateLimit  = "Too many refresh attempts, please try again later."
	msgNoSession         = "Invalid token. Please try again!"
	msgInvalidCreds      = "Invalid credentials. Please try again!"
	msgEmailTaken        = "Email is already registered"
	msgValidationFailed  = "Validation failed"
	msgInvalidLogoutPair = "Invalid Token"
)

// StatusFor maps an Engine error to its HTTP status and client message. Store and
// unknown errors map to 500 so a backend outage is never reported as an auth decision.
func StatusFor(err error) (int, string) {
	switch {
	case err == nil:
		return http.StatusOK, "OK"
	case errors.Is(err, sessionkit.ErrStoreUnavailable), errors.Is(err, sessionkit.ErrEngineNotReady):
		return http.StatusInternalServerError, msgInternal
	case errors.Is(err, sessionkit.ErrInvalidToken):
		return http.StatusUnauthorized, msgInvalidLogoutPair
	case errors.Is(err, sessionkit.ErrInvalidCredentials):
		return http.StatusUnauthorized, msgInvalidCreds
	case errors.Is(err, sessionkit.ErrTokenMissing):
		return http.StatusUnauthorized, "Access Denied: Token is missing"
	case errors.Is(err, sessionkit.ErrTokenMalformed):
		return http.StatusBadRequest, "Invalid token format"
	case errors.Is(err, sessionkit.ErrTokenExpired):
		return http.StatusUnauthorized, "Token has expired"
	case errors.Is(err, sessionkit.ErrTokenInvalidSignature):
		return http.StatusForbidden, "Invalid Token"
	case errors.Is(err, sessionkit.ErrTokenNotYetValid):
		return http.StatusBadRequest, "Token not active yet"
	case errors.Is(err, sessionkit.ErrTokenBlacklisted):
		return http.StatusForbidden, "This token has been invalidated (blacklisted)"
	case errors.Is(err, sessionkit.ErrRateLimited):
		return http.StatusTooManyRequests, msgRefreshRateLimit
	case errors.Is(err, sessionkit.ErrReplayDetected):
		return http.StatusForbidden, msgRefreshReuse
	case errors.Is(err, sessionkit.ErrNoSession):
		return http.StatusUnauthorized, msgNoSession
	case errors.Is(err, sessionkit.ErrDuplicateIdentity):
		return http.StatusBadRequest, msgEmailTaken
	case errors.Is(err, sessionkit.ErrValidationFailed):
		return http.StatusBadRequest, msgValidationFailed
	default:
		return http.StatusInternalServerError, msgInternal
	}
}

// refreshStatus is StatusFor with the refresh route's wording for token failures.
func refreshStatus(err error) (int, string) {
	switch {
	case errors.Is(err, sessionkit.ErrStoreUnavailable):
		return http.StatusInternalServerError, msgInternal
	case errors.Is(err, sessionkit.ErrTokenMissing):
		return http.StatusUnauthorized, msgRefreshMissing
	case errors.Is(err, sessionkit.ErrTokenExpired):
		return http.StatusUnauthorized, msgRefreshExpired
	case errors.Is(err, sessionkit.ErrTokenMalformed),
		errors.Is(err, sessionkit.ErrTokenInvalidSignature),
		errors.Is(err, sessionkit.ErrTokenNotYetValid):
		return http.StatusForbidden, msgRefreshInvalid
	default:
		return StatusFor(err)
	}
}

// keepsRefreshCookie reports whether a failed refresh should leave the cookie alone:
// the token may still be good once the limiter or the store recovers.
func keepsRefreshCookie(err error) bool {
	return errors.Is(err, sessionkit.ErrRateLimited) || errors.Is(err, sessionkit.ErrStoreUnavailable)
}

package sessionkit

import "errors"

var (
	// ErrInvalidCredentials is returned by Login for an unknown email or a wrong password.
	// The two cases are indistinguishable on purpose.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrTokenMissing is returned when no token was presented.
	ErrTokenMissing = errors.New("token missing")
	// ErrTokenMalformed is returned when a token cannot be decoded or lacks a jti.
	ErrTokenMalformed = errors.New("token malformed")
	// ErrTokenExpired is returned when a token's exp is in the past.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenInvalidSignature is returned when a token was not signed with the expected key.
	ErrTokenInvalidSignature = errors.New("token signature invalid")
	// ErrTokenNotYetValid is returned when a token's nbf or iat lies in the future.
	ErrTokenNotYetValid = errors.New("token not yet valid")
	// ErrTokenBlacklisted is returned when an access token id was revoked by logout.
	ErrTokenBlacklisted = errors.New("token blacklisted")
	// ErrRateLimited is returned when refresh attempts exceed the window threshold.
	ErrRateLimited = errors.New("rate limited")
	// ErrReplayDetected is returned when a refresh token that was already rotated away is
	// presented again. The session has been terminated when this is returned.
	ErrReplayDetected = errors.New("refresh token replay detected")
	// ErrNoSession is returned when the identity has no active rotation record.
	ErrNoSession = errors.New("no active session")
	// ErrDuplicateIdentity is returned by Register when the email is already registered.
	ErrDuplicateIdentity = errors.New("identity already exists")
	// ErrValidationFailed is returned when request input violates registration rules.
	ErrValidationFailed = errors.New("validation failed")
	// ErrStoreUnavailable is returned when the cache or the identity store cannot be
	// reached. It never means a check passed.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrInvalidToken is returned by Logout when the body token differs from the bearer token.
	ErrInvalidToken = errors.New("invalid token")
	// ErrEngineNotReady is returned when an Engine method is called on a nil or unbuilt engine.
	ErrEngineNotReady = errors.New("engine not ready")
)

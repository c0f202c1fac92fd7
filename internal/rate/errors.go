package rate

import "errors"

var (
	// ErrRateLimited is returned once a counter exceeds its threshold within the window.
	ErrRateLimited = errors.New("rate limited")
	// ErrRedisUnavailable wraps every Redis I/O failure.
	ErrRedisUnavailable = errors.New("redis unavailable")
)

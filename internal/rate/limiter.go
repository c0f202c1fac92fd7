package rate

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config holds rate limiter tuning parameters.
type Config struct {
	Prefix string

	EnableRefreshThrottle bool
	MaxRefreshAttempts    int
	RefreshWindow         time.Duration

	EnableRequestThrottle bool
	MaxRequests           int
	RequestWindow         time.Duration
}

// Window is the state of one counter right after an increment.
type Window struct {
	Count   int64
	ResetIn time.Duration
}

// KEYS[1] counter, ARGV[1] window ms. Returns {count, pttl}.
const incrementScript = `
local count = redis.call("INCR", KEYS[1])
if count == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("PTTL", KEYS[1])
if ttl < 0 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
  ttl = tonumber(ARGV[1])
end
return {count, ttl}
`

var incrementLua = redis.NewScript(incrementScript)

// Limiter enforces per-identity refresh limits and per-IP request limits using Redis
// counters.
type Limiter struct {
	redis  redis.UniversalClient
	config Config
}

// New creates a rate [Limiter] backed by the given Redis client.
func New(redisClient redis.UniversalClient, cfg Config) *Limiter {
	return &Limiter{
		redis:  redisClient,
		config: cfg,
	}
}

// CheckRefresh counts one refresh attempt for email and returns [ErrRateLimited] once the
// count exceeds the configured maximum for the current window.
func (l *Limiter) CheckRefresh(ctx context.Context, email string) error {
	if !l.config.EnableRefreshThrottle {
		return nil
	}

	w, err := l.Increment(ctx, l.refreshKey(email), l.config.RefreshWindow)
	if err != nil {
		return err
	}
	if w.Count > int64(l.config.MaxRefreshAttempts) {
		return ErrRateLimited
	}
	return nil
}

// ResetRefresh clears the refresh counter for email. Called after a successful rotation.
func (l *Limiter) ResetRefresh(ctx context.Context, email string) error {
	return l.Reset(ctx, l.refreshKey(email))
}

// CheckRequest counts one request from ip. The returned window is valid even when the
// error is [ErrRateLimited] so callers can report when the client may retry.
func (l *Limiter) CheckRequest(ctx context.Context, ip string) (Window, error) {
	if !l.config.EnableRequestThrottle || ip == "" {
		return Window{}, nil
	}

	w, err := l.Increment(ctx, l.requestKey(ip), l.config.RequestWindow)
	if err != nil {
		return Window{}, err
	}
	if w.Count > int64(l.config.MaxRequests) {
		return w, ErrRateLimited
	}
	return w, nil
}

// Increment adds one to key. The first hit in a window starts the window.
func (l *Limiter) Increment(ctx context.Context, key string, window time.Duration) (Window, error) {
	if window <= 0 {
		return Window{}, fmt.Errorf("invalid rate window %v", window)
	}

	res, err := incrementLua.Run(ctx, l.redis, []string{key}, window.Milliseconds()).Int64Slice()
	if err != nil {
		return Window{}, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if len(res) != 2 {
		return Window{}, fmt.Errorf("%w: invalid increment script response", ErrRedisUnavailable)
	}

	return Window{Count: res[0], ResetIn: time.Duration(res[1]) * time.Millisecond}, nil
}

// Reset deletes key. Resetting a missing counter succeeds.
func (l *Limiter) Reset(ctx context.Context, key string) error {
	if err := l.redis.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

func (l *Limiter) refreshKey(email string) string {
	return l.config.Prefix + "refresh:rate:" + email
}

func (l *Limiter) requestKey(ip string) string {
	return l.config.Prefix + "request:rate:" + ip
}

package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrRefreshHashMismatch is returned by RotateRefreshHash when the presented hash is not
// the current one. The rotation record has already been deleted when this is returned.
var ErrRefreshHashMismatch = errors.New("refresh hash mismatch")

// ErrNoRotationRecord is returned by RotateRefreshHash when the identity has no active
// rotation record.
var ErrNoRotationRecord = errors.New("no rotation record")

// ErrRedisUnavailable wraps every Redis I/O failure.
var ErrRedisUnavailable = errors.New("redis unavailable")

const blacklistedValue = "blacklisted"

const (
	rotateStatusNotFound int64 = 0
	rotateStatusMismatch int64 = 2
	rotateStatusRotated  int64 = 3
)

// KEYS[1] rotation record, ARGV[1] presented hash, ARGV[2] next hash, ARGV[3] ttl ms.
// A mismatch ends the session: the record is deleted in the same step that detects it.
const rotateRefreshScript = `
local current = redis.call("GET", KEYS[1])
if not current then
  return 0
end
if current ~= ARGV[1] then
  redis.call("DEL", KEYS[1])
  return 2
end
redis.call("SET", KEYS[1], ARGV[2], "PX", ARGV[3])
return 3
`

var rotateRefreshLua = redis.NewScript(rotateRefreshScript)

// Store is the Redis-backed revocation store.
//
// Store holds no in-process state; it is safe for concurrent use and all operations are
// idempotent.
type Store struct {
	redis  redis.UniversalClient
	prefix string
}

// NewStore creates a [Store] backed by the given Redis client. prefix is prepended
// verbatim to every key.
func NewStore(redis redis.UniversalClient, prefix string) *Store {
	return &Store{
		redis:  redis,
		prefix: prefix,
	}
}

func (s *Store) blacklistKey(jti string) string {
	return s.prefix + "accessToken:blacklist:" + jti
}

func (s *Store) refreshKey(email string) string {
	return s.prefix + "refreshToken:" + email
}

// Blacklist marks an access-token id as revoked for ttl. A non-positive ttl is a no-op:
// the token has already expired and cannot authorize anything.
//
//	Performance: 1 Redis SET.
func (s *Store) Blacklist(ctx context.Context, jti string, ttl time.Duration) error {
	if strings.TrimSpace(jti) == "" {
		return errors.New("jti is required")
	}
	if ttl <= 0 {
		return nil
	}
	if err := s.redis.Set(ctx, s.blacklistKey(jti), blacklistedValue, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// IsBlacklisted reports whether jti has a live revocation entry.
//
//	Performance: 1 Redis EXISTS.
func (s *Store) IsBlacklisted(ctx context.Context, jti string) (bool, error) {
	n, err := s.redis.Exists(ctx, s.blacklistKey(jti)).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return n > 0, nil
}

// SetRefreshHash replaces the identity's rotation record in a single SET, invalidating
// whichever refresh token was current before.
func (s *Store) SetRefreshHash(ctx context.Context, email, hash string, ttl time.Duration) error {
	if ttl <= 0 {
		return errors.New("rotation record ttl must be positive")
	}
	if err := s.redis.Set(ctx, s.refreshKey(email), hash, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// GetRefreshHash returns the current refresh hash for email. ok is false when the
// identity has no active session.
func (s *Store) GetRefreshHash(ctx context.Context, email string) (hash string, ok bool, err error) {
	hash, err = s.redis.Get(ctx, s.refreshKey(email)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return hash, true, nil
}

// DeleteRefreshHash removes the identity's rotation record. Deleting a missing record
// succeeds.
func (s *Store) DeleteRefreshHash(ctx context.Context, email string) error {
	if err := s.redis.Del(ctx, s.refreshKey(email)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// RotateRefreshHash atomically swaps the identity's rotation record from presentedHash to
// nextHash. This is the core of the rotation protocol that enables reuse detection.
//
// It returns [ErrNoRotationRecord] when no record exists and [ErrRefreshHashMismatch]
// (after deleting the record) when presentedHash is stale. Concurrent callers holding the
// same token get exactly one success.
//
//	Performance: 1 Lua EVALSHA (atomic compare-and-swap).
func (s *Store) RotateRefreshHash(ctx context.Context, email, presentedHash, nextHash string, ttl time.Duration) error {
	if ttl <= 0 {
		return errors.New("rotation record ttl must be positive")
	}
	result, err := rotateRefreshLua.Run(
		ctx,
		s.redis,
		[]string{s.refreshKey(email)},
		presentedHash,
		nextHash,
		ttl.Milliseconds(),
	).Int64()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	switch result {
	case rotateStatusNotFound:
		return ErrNoRotationRecord
	case rotateStatusMismatch:
		return ErrRefreshHashMismatch
	case rotateStatusRotated:
		return nil
	default:
		return fmt.Errorf("%w: unknown refresh script status %d", ErrRedisUnavailable, result)
	}
}

// Ping returns a point-in-time Redis availability check and latency.
func (s *Store) Ping(ctx context.Context) (time.Duration, error) {
	start := time.Now()
	if err := s.redis.Ping(ctx).Err(); err != nil {
		return time.Since(start), fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return time.Since(start), nil
}

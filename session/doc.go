// Package session provides the Redis-backed revocation state of the session core: the
// access-token blacklist and the per-identity refresh rotation record.
//
// # Keys
//
//   - {prefix}accessToken:blacklist:{jti} holds "blacklisted" until the token would have
//     expired anyway (bounded by the caller).
//   - {prefix}refreshToken:{email} holds the hex SHA-256 of the only refresh token that may
//     currently be exchanged for that identity.
//
// # Architecture boundaries
//
// This package does NOT interpret tokens or decide policy. Absence of a key is never an
// error; it means "not revoked" or "no active session". Every Redis failure is wrapped in
// [ErrRedisUnavailable] so callers can refuse instead of passing a check.
package session

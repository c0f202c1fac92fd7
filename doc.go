// Package sessionkit implements the session lifecycle of a JWT-based auth service:
// login, refresh-token rotation with replay detection, logout with access-token
// revocation, and per-request access validation.
//
// An access token and a refresh token are minted together under one token id (jti).
// Redis holds three kinds of state: a blacklist of revoked access-token ids, one SHA-256
// rotation record per identity, and fixed-window rate counters. Every check that depends
// on Redis fails closed: when the store cannot be reached the call returns
// [ErrStoreUnavailable], never success.
//
// Build an [Engine] with [New] and [Builder.Build]. Engine methods are safe for concurrent
// use. The HTTP surface lives in package httpapi; persistent identity storage in
// package docstore.
package sessionkit

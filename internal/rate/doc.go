// Package rate provides Redis-backed fixed-window counters for the session core.
//
// # Window semantics
//
// INCR and PEXPIRE-on-first-hit run as one Lua script, so a crash between the two can
// never leave a counter without a TTL. Key prefixes:
//   - refresh:rate:{email}: refresh attempts per identity
//   - request:rate:{ip}:    coarse request throttle per client IP
//
// # What this package must NOT do
//
//   - Decide what a rejection means to a client (that lives in the Engine and httpapi).
//   - Be imported outside the sessionkit module.
package rate

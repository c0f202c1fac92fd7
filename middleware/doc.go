// Package middleware provides net/http middleware over a [sessionkit.Engine].
//
// [Guard] validates the bearer access token of each request and stores the verified
// claims in the request context. [SecurityHeaders] sets browser hardening headers. The
// gin router in package httpapi reuses both.
package middleware

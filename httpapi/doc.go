// Package httpapi exposes a [sessionkit.Engine] over HTTP with gin.
//
// Every response, success or failure, uses the [Response] envelope. The refresh token
// travels in an HttpOnly, SameSite=Strict cookie named refreshToken; access tokens
// travel in the Authorization header.
//
//	POST /api/auth/register   201 | 400
//	POST /api/auth/login      200 | 401
//	POST /api/auth/refresh    200 | 401 | 403 | 429   (alias: POST /refresh_token)
//	POST /api/auth/logout     200 | 401
//	GET  /                    200 | 400 | 401 | 403   (bearer token required)
//	GET  /test                200
//	GET  /healthz             200 | 503
//	GET  /metrics             Prometheus text format, when configured
//
// All routes except /healthz and /metrics go through the per-IP request limiter.
package httpapi

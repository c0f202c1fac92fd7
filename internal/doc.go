// Package internal groups helpers private to sessionkit.
//
//   - appconfig: environment and .env loading for the server binary, plus its logger
//   - conn: lazily dialed clients shared across goroutines
//   - rate: Redis fixed-window counters for refresh and per-IP throttling
package internal

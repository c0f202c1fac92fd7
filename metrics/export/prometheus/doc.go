// Package prometheus exposes sessionkit engine counters through
// prometheus/client_golang.
//
// [Collector] implements prometheus.Collector over [sessionkit.Engine.MetricsSnapshot].
// Counters are named sessionkit_*_total; the single histogram is
// sessionkit_authorize_latency_seconds. Callers register the collector on their own
// registry, or mount [Handler].
package prometheus

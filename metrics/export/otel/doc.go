// Package otel mirrors sessionkit engine metrics into OpenTelemetry.
//
// [NewExporter] registers one Int64ObservableCounter per engine counter and one
// Int64ObservableGauge per latency bucket. A single callback takes one
// [sessionkit.Engine.MetricsSnapshot] per collection cycle. The caller owns the
// MeterProvider.
package otel

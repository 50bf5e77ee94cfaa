// Package otel provides OpenTelemetry metric exporter bindings for herdgate
// counters and histograms.
//
// [NewOTelExporter] registers Int64ObservableCounter instruments for each herdgate
// metric and Int64ObservableGauge per histogram bucket. A single callback reads
// [herdgate.Engine.MetricsSnapshot] on each collection cycle.
//
// # What this package must NOT do
//
//   - Own the OTel MeterProvider — callers supply the Meter.
//   - Mutate engine state.
package otel

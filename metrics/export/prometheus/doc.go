// Package prometheus provides Prometheus collectors for herdgate metrics.
//
// [NewPrometheusExporter] accepts a [herdgate.Engine] and exposes an [http.Handler]
// that renders all herdgate counters and histograms in Prometheus text exposition
// format. Counter names are prefixed herdgate_*_total; the single histogram is
// herdgate_auth_latency_seconds.
//
// # What this package must NOT do
//
//   - Register metrics in a global Prometheus registry — callers mount the Handler.
//   - Mutate engine state.
package prometheus

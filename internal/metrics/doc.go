// Package metrics implements the in-process counter and latency histogram
// system backing the root metrics API and the metrics/export exporters.
//
// # Architecture boundaries
//
// This package owns counter storage (padded atomic slots) and the snapshot
// model. It does NOT name metrics for external systems — exposition names
// live in metrics/export/internaldefs.
//
// # What this package must NOT do
//
//   - Import herdgate or any sibling internal package.
//   - Allocate on the Inc/Observe hot paths.
package metrics

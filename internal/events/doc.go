// Package events implements async event dispatching for session lifecycle
// transitions.
//
// # Components
//
//   - [Sink] — interface for event consumers (channel, JSON writer, no-op).
//   - [Event] — structured session record with timestamp, type, user, route,
//     request id, and metadata.
//
// # Architecture boundaries
//
// This package owns the event model and sink delivery. It does NOT decide
// which events to emit — that responsibility belongs to the Engine.
//
// # What this package must NOT do
//
//   - Filter or suppress events based on session state.
//   - Import herdgate or any sibling internal package.
//   - Perform network I/O beyond what a caller-supplied Sink does.
package events

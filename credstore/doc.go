// Package credstore persists the single bearer-token slot the session is
// rebuilt from across process restarts.
//
// # Contract
//
// [Store] is synchronous, idempotent, and policy-free: Save overwrites, Clear
// on an empty slot is a no-op, Read reports absence instead of erroring. The
// token is an opaque blob; no backend inspects it.
//
// # Backends
//
//   - [Memory] — ephemeral, for tests and single-run tools.
//   - [File] — one durable slot with atomic replace, the default for desktop
//     and terminal hosts.
//   - [Redis] — a shared slot for kiosk deployments where several terminals
//     present one operator session; backend errors degrade to absence rather
//     than surfacing through the infallible Store interface.
//
// # What this package must NOT do
//
//   - Validate or decode the token.
//   - Decide when to save or clear — the Engine is the sole writer.
//   - Import herdgate (no upward imports).
package credstore

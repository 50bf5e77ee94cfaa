// Package token provides read-only inspection of the stored bearer token.
//
// The client never validates tokens — signature checks belong to the backend.
// The only thing this package does is peek at the unverified exp claim so a
// bootstrap with an already-expired token can skip the doomed network
// round-trip.
//
// # What this package must NOT do
//
//   - Verify signatures or treat any token as valid.
//   - Decode claims beyond the registered expiry.
//   - Import herdgate (no upward imports).
package token

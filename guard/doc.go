// Package guard implements route access control over the session engine:
// a pure decision function plus a stateful wrapper that re-evaluates on
// session transitions and fires idempotent redirects through a host-supplied
// navigator.
//
// # Decision order
//
// For every (route, session) pair exactly one outcome holds, checked in fixed
// priority: a loading session renders nothing and never redirects; a
// protected route with no session redirects to the login route; an auth-entry
// route with an established session redirects to the home route; everything
// else is allowed. Role-based checks are out of scope here and belong to the
// rendering host.
//
// # Architecture boundaries
//
// This package depends on the root package for session state and route
// configuration. It performs no I/O and no navigation itself; redirects go
// through the [Navigator] the host provides.
//
// # What this package must NOT do
//
//   - Call the backend or touch the credential store.
//   - Mutate session state.
//   - Fire the same redirect twice for one (route, session) pair.
package guard

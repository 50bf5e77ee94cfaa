// Package herdgate provides the client-side session and access-control core for
// the herdtrack farm-management frontend: bearer-token persistence, session
// bootstrap/login/register/logout orchestration against the REST backend, and
// route gating without redirect loops or flashes of protected content.
//
// The package is designed for event-driven UI hosts: Engine methods are safe to
// call from multiple goroutines after initialization through [Builder.Build],
// although authentication-determining operations (Bootstrap, Login, Register)
// are contractually non-overlapping — the host must not start one while the
// session is already loading.
//
// # Architecture boundaries
//
// herdgate is the public surface. It exposes [Engine], [Builder], [Config], and
// value types (SessionState, UserProfile, LoginResult, etc.). Credential
// persistence lives in credstore, the REST client in apiclient, route gating in
// guard, and async list loading in table. Event buffering and metric counters
// live under internal/ and are re-exported here.
//
// # What this package must NOT do
//
//   - Issue, sign, or validate bearer tokens — that is backend territory; the
//     client treats tokens as opaque blobs (at most an unverified expiry peek,
//     see the token package).
//   - Cache the bearer token anywhere but the credential store; the store is
//     the single source of truth and is read through on every request.
//   - Render anything. Outcomes are values; the UI host owns presentation.
package herdgate

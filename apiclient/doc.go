// Package apiclient is the REST client for the herdtrack backend: a thin
// request helper that attaches the bearer token, normalizes HTTP errors into
// a single shape, and exposes the auth and list endpoints the session engine
// and table controllers consume.
//
// # Error normalization
//
// Every non-2xx response becomes an [*APIError] carrying the status code and
// the backend's detail message; a body without a parseable detail degrades to
// "unknown error". Transport failures are returned wrapped, never panicked.
//
// # Token handling
//
// The bearer token is read through the credential store on every request and
// never cached here: Logout and Login change the stored token between
// requests, and a cached copy would reanimate a revoked session.
package apiclient

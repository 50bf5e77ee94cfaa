package credstore

// Store is the single named token slot in client-durable storage. All
// operations are synchronous and idempotent; absence is a state, not an
// error. The Engine is the sole writer; readers (the API client, for
// attaching the auth header) must call Read on every request rather than
// caching the token, since Logout and Login change it between requests.
type Store interface {
	// Save overwrites the slot with token.
	Save(token string)
	// Read returns the stored token, with ok false when the slot is empty.
	Read() (token string, ok bool)
	// Clear empties the slot. Clearing an empty slot is a no-op.
	Clear()
}

package domain

// Store handles local persistence (BoltDB + memory).
// Only user data lives here; fetch results are never persisted.
type Store interface {
	PreferenceStore
	RequestRepository

	Close() error
}

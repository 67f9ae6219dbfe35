package domain

import "context"

// PreferenceStore persists per-streamer user toggles.
// Keys are streamer IDs; values are independent of fetch status.
type PreferenceStore interface {
	GetPreferences() (map[string]Preferences, error)
	GetPreference(id string) (Preferences, bool)
	SavePreference(id string, pref Preferences) error
}

// RequestRepository persists pending streamer requests
type RequestRepository interface {
	ListRequests(ctx context.Context) ([]StreamerRequest, error)
	GetRequest(ctx context.Context, id string) (StreamerRequest, error)
	SaveRequest(ctx context.Context, req StreamerRequest) error
	DeleteRequest(ctx context.Context, id string) error
}

// RosterSnapshot is an immutable, ordered view of the roster
type RosterSnapshot struct {
	Streamers []Streamer
	Loading   bool
}

// FailedCount returns the number of streamers whose last fetch failed
func (s RosterSnapshot) FailedCount() int {
	n := 0
	for _, st := range s.Streamers {
		if st.Error {
			n++
		}
	}
	return n
}

// LiveCount returns the number of streamers currently live
func (s RosterSnapshot) LiveCount() int {
	n := 0
	for _, st := range s.Streamers {
		if st.IsLive() {
			n++
		}
	}
	return n
}

// LoadedCount returns the number of streamers with a non-error status
func (s RosterSnapshot) LoadedCount() int {
	n := 0
	for _, st := range s.Streamers {
		if st.Loaded() {
			n++
		}
	}
	return n
}

// RosterObserver receives a fresh snapshot after every roster mutation.
// Implementations must not block.
type RosterObserver interface {
	OnRoster(snapshot RosterSnapshot)
}

// RosterObserverFunc adapts a function to RosterObserver
type RosterObserverFunc func(snapshot RosterSnapshot)

// OnRoster calls f(snapshot)
func (f RosterObserverFunc) OnRoster(snapshot RosterSnapshot) { f(snapshot) }

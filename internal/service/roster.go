package service

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/mmcdole/kickboard/internal/domain"
)

// RosterStore holds the tracked streamers and their last-known status.
// Every mutation re-sorts the list and publishes a snapshot to observers.
// Observers are called with the roster locked and must not call back into it.
type RosterStore struct {
	prefs  domain.PreferenceStore
	logger *slog.Logger
	now    func() time.Time

	mu        sync.Mutex
	streamers []domain.Streamer
	loading   int // Active refresh runs
	observers []domain.RosterObserver
}

// NewRosterStore creates an empty roster. prefs may be nil (toggles are not persisted).
func NewRosterStore(prefs domain.PreferenceStore, logger *slog.Logger) *RosterStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &RosterStore{prefs: prefs, logger: logger, now: time.Now}
}

// Subscribe registers an observer for future snapshots
func (r *RosterStore) Subscribe(o domain.RosterObserver) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.observers = append(r.observers, o)
}

// Load replaces the roster with streamers, applying persisted preferences.
// Used once at startup to publish the skeleton, favorites first.
func (r *RosterStore) Load(streamers []domain.Streamer) {
	var prefs map[string]domain.Preferences
	if r.prefs != nil {
		p, err := r.prefs.GetPreferences()
		if err != nil {
			r.logger.Warn("failed to load preferences", "error", err)
		}
		prefs = p
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.streamers = make([]domain.Streamer, 0, len(streamers))
	for _, s := range streamers {
		if p, ok := prefs[s.ID]; ok {
			s.IsFavorite = p.Favorite
			s.NotificationsEnabled = p.Notify
		}
		r.streamers = append(r.streamers, s.Clone())
	}
	r.sortLocked()
	r.publishLocked()
}

// Snapshot returns an ordered copy of the roster
func (r *RosterStore) Snapshot() domain.RosterSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked()
}

// Get returns a copy of the streamer with id
func (r *RosterStore) Get(id string) (domain.Streamer, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if i := r.indexLocked(id); i >= 0 {
		return r.streamers[i].Clone(), true
	}
	return domain.Streamer{}, false
}

// Failed returns copies of the streamers whose last fetch failed
func (r *RosterStore) Failed() []domain.Streamer {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Streamer
	for _, s := range r.streamers {
		if s.Error {
			out = append(out, s.Clone())
		}
	}
	return out
}

// MergeFetchResult applies a fetch result to the streamer with id.
// A failed result clears the status so nothing stale survives.
// Returns false when id is not tracked.
func (r *RosterStore) MergeFetchResult(id string, ch domain.Channel) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexLocked(id)
	if i < 0 {
		return false
	}

	s := &r.streamers[i]
	if ch.Error {
		s.Channel = nil
		s.Error = true
	} else {
		c := ch.Clone()
		s.Channel = &c
		s.Error = false
	}
	s.LastUpdated = r.now()

	r.sortLocked()
	r.publishLocked()
	return true
}

// ClearStatus resets a streamer to the not-yet-loaded state
func (r *RosterStore) ClearStatus(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexLocked(id)
	if i < 0 {
		return false
	}
	r.streamers[i].Channel = nil
	r.streamers[i].Error = false

	r.sortLocked()
	r.publishLocked()
	return true
}

// ClearFailed resets every failed streamer and returns them as they were
// before the reset
func (r *RosterStore) ClearFailed() []domain.Streamer {
	r.mu.Lock()
	defer r.mu.Unlock()

	var failed []domain.Streamer
	for i := range r.streamers {
		if !r.streamers[i].Error {
			continue
		}
		failed = append(failed, r.streamers[i].Clone())
		r.streamers[i].Channel = nil
		r.streamers[i].Error = false
	}
	if len(failed) > 0 {
		r.sortLocked()
		r.publishLocked()
	}
	return failed
}

// RestoreFailed marks streamers as failed again when they are still in the
// cleared, not-yet-loaded state. Streamers that received a result since
// ClearFailed are left alone. Returns how many were restored.
func (r *RosterStore) RestoreFailed(streamers []domain.Streamer) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, st := range streamers {
		i := r.indexLocked(st.ID)
		if i < 0 {
			continue
		}
		s := &r.streamers[i]
		if s.Channel != nil || s.Error {
			continue
		}
		s.Error = true
		n++
	}
	if n > 0 {
		r.sortLocked()
		r.publishLocked()
	}
	return n
}

// ToggleFavorite flips the favorite flag and returns the new value
func (r *RosterStore) ToggleFavorite(id string) (bool, error) {
	return r.updatePreference(id, func(s *domain.Streamer) bool {
		s.IsFavorite = !s.IsFavorite
		return s.IsFavorite
	})
}

// ToggleNotify flips the notification flag and returns the new value
func (r *RosterStore) ToggleNotify(id string) (bool, error) {
	return r.updatePreference(id, func(s *domain.Streamer) bool {
		s.NotificationsEnabled = !s.NotificationsEnabled
		return s.NotificationsEnabled
	})
}

// updatePreference mutates a flag, persists both flags and publishes.
// A persistence failure is logged and the in-memory change is kept.
func (r *RosterStore) updatePreference(id string, mutate func(*domain.Streamer) bool) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexLocked(id)
	if i < 0 {
		return false, fmt.Errorf("%s: %w", id, domain.ErrStreamerNotFound)
	}

	s := &r.streamers[i]
	value := mutate(s)
	pref := domain.Preferences{Favorite: s.IsFavorite, Notify: s.NotificationsEnabled}

	if r.prefs != nil {
		if err := r.prefs.SavePreference(id, pref); err != nil {
			r.logger.Error("failed to save preference", "id", id, "error", err)
		}
	}

	r.sortLocked()
	r.publishLocked()
	return value, nil
}

// Append adds a streamer at the front of the roster
func (r *RosterStore) Append(s domain.Streamer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.indexLocked(s.ID) >= 0 {
		return fmt.Errorf("%s: %w", s.ID, domain.ErrDuplicateStreamer)
	}
	if s.AddedAt.IsZero() {
		s.AddedAt = r.now()
	}
	r.streamers = append([]domain.Streamer{s.Clone()}, r.streamers...)
	r.publishLocked()
	return nil
}

// BeginLoading marks a refresh run as active
func (r *RosterStore) BeginLoading() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loading++
	r.publishLocked()
}

// EndLoading marks a refresh run as finished
func (r *RosterStore) EndLoading() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.loading > 0 {
		r.loading--
	}
	r.publishLocked()
}

func (r *RosterStore) indexLocked(id string) int {
	for i := range r.streamers {
		if r.streamers[i].ID == id {
			return i
		}
	}
	return -1
}

func (r *RosterStore) snapshotLocked() domain.RosterSnapshot {
	out := make([]domain.Streamer, len(r.streamers))
	for i, s := range r.streamers {
		out[i] = s.Clone()
	}
	return domain.RosterSnapshot{Streamers: out, Loading: r.loading > 0}
}

func (r *RosterStore) publishLocked() {
	if len(r.observers) == 0 {
		return
	}
	snap := r.snapshotLocked()
	for _, o := range r.observers {
		o.OnRoster(snap)
	}
}

func (r *RosterStore) sortLocked() {
	SortStreamers(r.streamers)
}

// SortStreamers orders streamers in place: loaded before not loaded,
// favorites, live, then live by viewers descending. Ties keep their order.
func SortStreamers(streamers []domain.Streamer) {
	sort.SliceStable(streamers, func(i, j int) bool {
		a, b := streamers[i], streamers[j]
		if a.Loaded() != b.Loaded() {
			return a.Loaded()
		}
		if a.IsFavorite != b.IsFavorite {
			return a.IsFavorite
		}
		if a.IsLive() != b.IsLive() {
			return a.IsLive()
		}
		if a.IsLive() {
			return a.Viewers() > b.Viewers()
		}
		return false
	})
}

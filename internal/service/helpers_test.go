package service

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mmcdole/kickboard/internal/adapter"
	"github.com/mmcdole/kickboard/internal/domain"
	"github.com/mmcdole/kickboard/internal/store"
)

// fakeFetcher returns canned channels and records call counts and concurrency
type fakeFetcher struct {
	mu      sync.Mutex
	calls   map[string]int
	results map[string]domain.Channel // Missing usernames get an offline channel
	fail    map[string]bool
	delay   time.Duration

	inFlight    atomic.Int32
	maxInFlight atomic.Int32
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		calls:   map[string]int{},
		results: map[string]domain.Channel{},
		fail:    map[string]bool{},
	}
}

func (f *fakeFetcher) FetchChannel(ctx context.Context, username string) domain.Channel {
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		peak := f.maxInFlight.Load()
		if n <= peak || f.maxInFlight.CompareAndSwap(peak, n) {
			break
		}
	}

	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return domain.Channel{Username: username, Error: true}
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[username]++
	if f.fail[username] {
		return domain.Channel{Username: username, Error: true}
	}
	if ch, ok := f.results[username]; ok {
		return ch
	}
	return domain.Channel{Username: username, DisplayName: username}
}

func (f *fakeFetcher) callCount(username string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[username]
}

func (f *fakeFetcher) setFail(username string, fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail[username] = fail
}

// recordedSleep captures scheduler delays without waiting
type recordedSleep struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (r *recordedSleep) sleep(ctx context.Context, d time.Duration) error {
	r.mu.Lock()
	r.delays = append(r.delays, d)
	r.mu.Unlock()
	return ctx.Err()
}

func (r *recordedSleep) recorded() []time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]time.Duration(nil), r.delays...)
}

// fakeNotifier records notifications and answers permission requests with answer
type fakeNotifier struct {
	mu         sync.Mutex
	permission domain.Permission
	answer     domain.Permission
	requests   int
	sent       []string
}

func (n *fakeNotifier) Permission() domain.Permission {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.permission
}

func (n *fakeNotifier) RequestPermission(ctx context.Context) (domain.Permission, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.requests++
	n.permission = n.answer
	return n.permission, nil
}

func (n *fakeNotifier) Notify(ctx context.Context, title, body string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.permission != domain.PermissionGranted {
		return domain.ErrNotificationsDenied
	}
	n.sent = append(n.sent, title)
	return nil
}

func (n *fakeNotifier) titles() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.sent...)
}

func newMemoryStore() *store.BoltStore {
	s, err := store.NewBoltStore("")
	if err != nil {
		panic(err)
	}
	return s
}

func newTestRoster(prefs domain.PreferenceStore) *RosterStore {
	return NewRosterStore(prefs, adapter.NullLogger())
}

func makeStreamers(ids ...string) []domain.Streamer {
	out := make([]domain.Streamer, len(ids))
	for i, id := range ids {
		out[i] = domain.Streamer{ID: id, Username: id, IsSystem: true}
	}
	return out
}

func idsOf(list []domain.Streamer) []string {
	out := make([]string, len(list))
	for i, s := range list {
		out[i] = s.ID
	}
	return out
}

func liveChannel(username string, viewers int) domain.Channel {
	return domain.Channel{Username: username, DisplayName: username, IsLive: true, ViewerCount: viewers, LiveTitle: "on air"}
}

func offlineChannel(username string) domain.Channel {
	return domain.Channel{Username: username, DisplayName: username}
}

package cache

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mmcdole/kickboard/internal/domain"
)

// memHash is an in-process stand-in for Redis hashes
type memHash struct {
	mu     sync.Mutex
	hashes map[string]map[string]string
	fail   error
}

func newMemHash() *memHash {
	return &memHash{hashes: map[string]map[string]string{}}
}

func (m *memHash) hGetAll(_ context.Context, key string) (map[string]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return nil, m.fail
	}
	out := make(map[string]string, len(m.hashes[key]))
	for k, v := range m.hashes[key] {
		out[k] = v
	}
	return out, nil
}

func (m *memHash) hGet(_ context.Context, key, field string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return "", m.fail
	}
	v, ok := m.hashes[key][field]
	if !ok {
		return "", redis.Nil
	}
	return v, nil
}

func (m *memHash) hSet(_ context.Context, key, field string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	if m.hashes[key] == nil {
		m.hashes[key] = map[string]string{}
	}
	m.hashes[key][field] = string(value)
	return nil
}

func (m *memHash) hDel(_ context.Context, key, field string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return 0, m.fail
	}
	if _, ok := m.hashes[key][field]; !ok {
		return 0, nil
	}
	delete(m.hashes[key], field)
	return 1, nil
}

func TestRequestRepositoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	h := newMemHash()
	repo := &RequestRepository{hash: h}

	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	reqs := []domain.StreamerRequest{
		{ID: "r1", Username: "older", Votes: 1, CreatedAt: base},
		{ID: "r2", Username: "popular", Votes: 3, CreatedAt: base.Add(time.Hour), Tags: []string{"rp"}},
		{ID: "r3", Username: "newer", Votes: 1, CreatedAt: base.Add(2 * time.Hour), Characters: []string{"Tony"}},
	}
	for _, req := range reqs {
		if err := repo.SaveRequest(ctx, req); err != nil {
			t.Fatalf("SaveRequest(%s): %v", req.ID, err)
		}
	}
	if n := len(h.hashes[requestsKey]); n != 3 {
		t.Fatalf("hash has %d fields, want 3", n)
	}

	got, err := repo.ListRequests(ctx)
	if err != nil {
		t.Fatalf("ListRequests: %v", err)
	}
	var ids []string
	for _, r := range got {
		ids = append(ids, r.ID)
	}
	if want := []string{"r2", "r1", "r3"}; !reflect.DeepEqual(ids, want) {
		t.Errorf("order = %v, want %v", ids, want)
	}

	one, err := repo.GetRequest(ctx, "r2")
	if err != nil {
		t.Fatalf("GetRequest: %v", err)
	}
	if one.Username != "popular" || one.Votes != 3 || !one.CreatedAt.Equal(reqs[1].CreatedAt) ||
		!reflect.DeepEqual(one.Tags, []string{"rp"}) {
		t.Errorf("GetRequest = %+v", one)
	}

	// Saving again overwrites the same field
	one.Votes = 4
	if err := repo.SaveRequest(ctx, one); err != nil {
		t.Fatal(err)
	}
	if again, _ := repo.GetRequest(ctx, "r2"); again.Votes != 4 {
		t.Errorf("votes after update = %d, want 4", again.Votes)
	}

	if err := repo.DeleteRequest(ctx, "r1"); err != nil {
		t.Fatalf("DeleteRequest: %v", err)
	}
	if _, err := repo.GetRequest(ctx, "r1"); !errors.Is(err, domain.ErrRequestNotFound) {
		t.Errorf("GetRequest after delete err = %v, want ErrRequestNotFound", err)
	}
}

func TestRequestRepositoryMissing(t *testing.T) {
	ctx := context.Background()
	repo := &RequestRepository{hash: newMemHash()}

	if _, err := repo.GetRequest(ctx, "ghost"); !errors.Is(err, domain.ErrRequestNotFound) {
		t.Errorf("GetRequest err = %v, want ErrRequestNotFound", err)
	}
	if err := repo.DeleteRequest(ctx, "ghost"); !errors.Is(err, domain.ErrRequestNotFound) {
		t.Errorf("DeleteRequest err = %v, want ErrRequestNotFound", err)
	}

	got, err := repo.ListRequests(ctx)
	if err != nil || len(got) != 0 {
		t.Errorf("ListRequests = %v, %v, want empty", got, err)
	}
}

func TestRequestRepositoryBackendErrors(t *testing.T) {
	ctx := context.Background()
	h := newMemHash()
	repo := &RequestRepository{hash: h}
	h.fail = errors.New("connection refused")

	if _, err := repo.ListRequests(ctx); err == nil {
		t.Error("ListRequests should fail")
	}
	_, err := repo.GetRequest(ctx, "r1")
	if err == nil || errors.Is(err, domain.ErrRequestNotFound) {
		t.Errorf("GetRequest err = %v, want backend error", err)
	}
	if err := repo.SaveRequest(ctx, domain.StreamerRequest{ID: "r1"}); err == nil {
		t.Error("SaveRequest should fail")
	}
	if err := repo.DeleteRequest(ctx, "r1"); err == nil || errors.Is(err, domain.ErrRequestNotFound) {
		t.Errorf("DeleteRequest err = %v, want backend error", err)
	}
}

func TestRequestRepositoryRejectsCorruptEntry(t *testing.T) {
	h := newMemHash()
	h.hashes[requestsKey] = map[string]string{"bad": "{not json"}
	repo := &RequestRepository{hash: h}

	if _, err := repo.ListRequests(context.Background()); err == nil {
		t.Error("ListRequests should fail on a corrupt entry")
	}
	if _, err := repo.GetRequest(context.Background(), "bad"); err == nil {
		t.Error("GetRequest should fail on a corrupt entry")
	}
}

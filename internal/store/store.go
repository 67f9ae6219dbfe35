package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/mmcdole/kickboard/internal/domain"
	bolt "go.etcd.io/bbolt"
)

// Bucket names
var (
	bucketPreferences = []byte("preferences")
	bucketRequests    = []byte("requests")
)

var _ domain.Store = (*BoltStore)(nil)

// BoltStore implements domain.Store using BoltDB.
// Only user data is kept: preferences and pending streamer requests.
type BoltStore struct {
	db *bolt.DB
	mu sync.RWMutex // Protects memory cache

	// In-memory cache for reads (promoted on access). In memory-only mode
	// it is the only copy.
	cache map[string][]byte
}

// NewBoltStore opens (or creates) the database at path.
// An empty path gives a memory-only store.
func NewBoltStore(path string) (*BoltStore, error) {
	if path == "" {
		return &BoltStore{cache: make(map[string][]byte)}, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{bucketPreferences, bucketRequests} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltStore{db: db, cache: make(map[string][]byte)}, nil
}

func (s *BoltStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// === Generic helpers ===

func cacheKey(bucket []byte, key string) string {
	return string(bucket) + ":" + key
}

func (s *BoltStore) get(bucket []byte, key string, dest interface{}) bool {
	ck := cacheKey(bucket, key)

	s.mu.RLock()
	if data, ok := s.cache[ck]; ok {
		s.mu.RUnlock()
		return json.Unmarshal(data, dest) == nil
	}
	s.mu.RUnlock()

	if s.db == nil {
		return false
	}

	var data []byte
	s.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(bucket).Get([]byte(key)); v != nil {
			data = append([]byte(nil), v...)
		}
		return nil
	})
	if data == nil {
		return false
	}

	s.mu.Lock()
	s.cache[ck] = data
	s.mu.Unlock()

	return json.Unmarshal(data, dest) == nil
}

func (s *BoltStore) set(bucket []byte, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.cache[cacheKey(bucket, key)] = data
	s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucket).Put([]byte(key), data)
	})
}

// delete reports whether the key existed
func (s *BoltStore) delete(bucket []byte, key string) (bool, error) {
	ck := cacheKey(bucket, key)

	s.mu.Lock()
	_, found := s.cache[ck]
	delete(s.cache, ck)
	s.mu.Unlock()

	if s.db == nil {
		return found, nil
	}

	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		if b.Get([]byte(key)) != nil {
			found = true
		}
		return b.Delete([]byte(key))
	})
	return found, err
}

// each calls fn for every value in bucket
func (s *BoltStore) each(bucket []byte, fn func(key string, data []byte) error) error {
	if s.db == nil {
		prefix := string(bucket) + ":"
		s.mu.RLock()
		entries := make(map[string][]byte)
		for k, v := range s.cache {
			if strings.HasPrefix(k, prefix) {
				entries[strings.TrimPrefix(k, prefix)] = v
			}
		}
		s.mu.RUnlock()

		for k, v := range entries {
			if err := fn(k, v); err != nil {
				return err
			}
		}
		return nil
	}

	return s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucket).ForEach(func(k, v []byte) error {
			return fn(string(k), v)
		})
	})
}

// === Preferences ===

func (s *BoltStore) GetPreferences() (map[string]domain.Preferences, error) {
	prefs := make(map[string]domain.Preferences)
	err := s.each(bucketPreferences, func(key string, data []byte) error {
		var p domain.Preferences
		if err := json.Unmarshal(data, &p); err != nil {
			return fmt.Errorf("decode preference %s: %w", key, err)
		}
		prefs[key] = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return prefs, nil
}

func (s *BoltStore) GetPreference(id string) (domain.Preferences, bool) {
	var p domain.Preferences
	ok := s.get(bucketPreferences, id, &p)
	return p, ok
}

func (s *BoltStore) SavePreference(id string, pref domain.Preferences) error {
	return s.set(bucketPreferences, id, pref)
}

// === Streamer requests ===

// ListRequests returns requests sorted by votes, then oldest first
func (s *BoltStore) ListRequests(ctx context.Context) ([]domain.StreamerRequest, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var reqs []domain.StreamerRequest
	err := s.each(bucketRequests, func(key string, data []byte) error {
		var r domain.StreamerRequest
		if err := json.Unmarshal(data, &r); err != nil {
			return fmt.Errorf("decode request %s: %w", key, err)
		}
		reqs = append(reqs, r)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(reqs, func(i, j int) bool {
		if reqs[i].Votes != reqs[j].Votes {
			return reqs[i].Votes > reqs[j].Votes
		}
		return reqs[i].CreatedAt.Before(reqs[j].CreatedAt)
	})
	return reqs, nil
}

func (s *BoltStore) GetRequest(ctx context.Context, id string) (domain.StreamerRequest, error) {
	if err := ctx.Err(); err != nil {
		return domain.StreamerRequest{}, err
	}
	var r domain.StreamerRequest
	if !s.get(bucketRequests, id, &r) {
		return domain.StreamerRequest{}, domain.ErrRequestNotFound
	}
	return r, nil
}

func (s *BoltStore) SaveRequest(ctx context.Context, req domain.StreamerRequest) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if req.ID == "" {
		return fmt.Errorf("request has no id")
	}
	return s.set(bucketRequests, req.ID, req)
}

func (s *BoltStore) DeleteRequest(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	found, err := s.delete(bucketRequests, id)
	if err != nil {
		return err
	}
	if !found {
		return domain.ErrRequestNotFound
	}
	return nil
}

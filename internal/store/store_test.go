package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/mmcdole/kickboard/internal/domain"
)

// storeModes opens a fresh store backed by disk or by memory only
var storeModes = map[string]func(t *testing.T) *BoltStore{
	"bolt": func(t *testing.T) *BoltStore {
		s, err := NewBoltStore(filepath.Join(t.TempDir(), "data", "kickboard.db"))
		if err != nil {
			t.Fatalf("NewBoltStore: %v", err)
		}
		t.Cleanup(func() { s.Close() })
		return s
	},
	"memory": func(t *testing.T) *BoltStore {
		s, err := NewBoltStore("")
		if err != nil {
			t.Fatalf("NewBoltStore: %v", err)
		}
		return s
	},
}

func TestPreferences(t *testing.T) {
	for name, open := range storeModes {
		t.Run(name, func(t *testing.T) {
			s := open(t)

			if _, ok := s.GetPreference("alpha"); ok {
				t.Fatal("expected no preference before save")
			}
			if err := s.SavePreference("alpha", domain.Preferences{Favorite: true}); err != nil {
				t.Fatalf("SavePreference: %v", err)
			}
			if err := s.SavePreference("beta", domain.Preferences{Notify: true}); err != nil {
				t.Fatalf("SavePreference: %v", err)
			}

			p, ok := s.GetPreference("alpha")
			if !ok || !p.Favorite || p.Notify {
				t.Errorf("GetPreference(alpha) = %+v, %v", p, ok)
			}

			all, err := s.GetPreferences()
			if err != nil {
				t.Fatalf("GetPreferences: %v", err)
			}
			if len(all) != 2 || !all["beta"].Notify {
				t.Errorf("GetPreferences = %+v", all)
			}
		})
	}
}

func TestPreferencesSurviveReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kickboard.db")

	s, err := NewBoltStore(path)
	if err != nil {
		t.Fatalf("NewBoltStore: %v", err)
	}
	if err := s.SavePreference("alpha", domain.Preferences{Favorite: true, Notify: true}); err != nil {
		t.Fatalf("SavePreference: %v", err)
	}
	s.Close()

	s, err = NewBoltStore(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()

	all, err := s.GetPreferences()
	if err != nil {
		t.Fatalf("GetPreferences: %v", err)
	}
	if got := all["alpha"]; !got.Favorite || !got.Notify {
		t.Errorf("after reopen = %+v", got)
	}
}

func TestRequests(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for name, open := range storeModes {
		t.Run(name, func(t *testing.T) {
			s := open(t)

			reqs := []domain.StreamerRequest{
				{ID: "r1", Username: "one", Votes: 1, CreatedAt: base.Add(time.Hour)},
				{ID: "r2", Username: "two", Votes: 5, CreatedAt: base.Add(2 * time.Hour)},
				{ID: "r3", Username: "three", Votes: 1, CreatedAt: base},
			}
			for _, r := range reqs {
				if err := s.SaveRequest(ctx, r); err != nil {
					t.Fatalf("SaveRequest: %v", err)
				}
			}

			list, err := s.ListRequests(ctx)
			if err != nil {
				t.Fatalf("ListRequests: %v", err)
			}
			var ids []string
			for _, r := range list {
				ids = append(ids, r.ID)
			}
			if len(ids) != 3 || ids[0] != "r2" || ids[1] != "r3" || ids[2] != "r1" {
				t.Errorf("order = %v, want [r2 r3 r1]", ids)
			}

			got, err := s.GetRequest(ctx, "r2")
			if err != nil || got.Username != "two" {
				t.Errorf("GetRequest = %+v, %v", got, err)
			}

			if err := s.DeleteRequest(ctx, "r2"); err != nil {
				t.Fatalf("DeleteRequest: %v", err)
			}
			if _, err := s.GetRequest(ctx, "r2"); !errors.Is(err, domain.ErrRequestNotFound) {
				t.Errorf("GetRequest after delete err = %v", err)
			}
			if err := s.DeleteRequest(ctx, "r2"); !errors.Is(err, domain.ErrRequestNotFound) {
				t.Errorf("second delete err = %v, want ErrRequestNotFound", err)
			}
		})
	}
}

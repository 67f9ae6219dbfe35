package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/mmcdole/kickboard/internal/domain"
)

func TestPrintRoster(t *testing.T) {
	now := time.Date(2024, 5, 1, 20, 0, 0, 0, time.UTC)
	since := now.Add(-90 * time.Minute)
	snapshot := domain.RosterSnapshot{Streamers: []domain.Streamer{
		{ID: "a", Username: "a", IsFavorite: true, Channel: &domain.Channel{
			DisplayName: "Alpha", IsLive: true, ViewerCount: 1500, LiveSince: &since,
			LiveCategory: "Just Chatting", LiveTitle: "hello",
		}},
		{ID: "b", Username: "b", Channel: &domain.Channel{DisplayName: "Bravo"}},
		{ID: "c", Username: "c", Error: true},
		{ID: "d", Username: "d"},
	}}

	tests := []struct {
		name        string
		showOffline bool
		want        []string
		absent      []string
	}{
		{
			name:        "all",
			showOffline: true,
			want:        []string{"LIVE", "Alpha *", "1.5K", "1h30m", "Just Chatting", "Bravo", "error", "pending"},
		},
		{
			name:        "live only",
			showOffline: false,
			want:        []string{"Alpha *", "error", "pending"},
			absent:      []string{"Bravo"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := printRoster(&buf, snapshot, tt.showOffline, now); err != nil {
				t.Fatalf("printRoster() error = %v", err)
			}
			out := buf.String()
			for _, w := range tt.want {
				if !strings.Contains(out, w) {
					t.Errorf("output missing %q:\n%s", w, out)
				}
			}
			for _, a := range tt.absent {
				if strings.Contains(out, a) {
					t.Errorf("output should not contain %q:\n%s", a, out)
				}
			}
			if !strings.Contains(out, "1 live, 2/4 loaded, 1 unreachable") {
				t.Errorf("summary line missing:\n%s", out)
			}
		})
	}
}

package tui

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/kickboard/internal/domain"
	"github.com/mmcdole/kickboard/internal/service"
)

func newTestModel(t *testing.T) Model {
	t.Helper()
	m := NewModel(context.Background(), nil, nil, nil, make(chan domain.RosterSnapshot), nil, true)
	return send(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})
}

func send(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	updated, _ := m.Update(msg)
	out, ok := updated.(Model)
	if !ok {
		t.Fatalf("Update returned %T, want Model", updated)
	}
	return out
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestModelRendersRoster(t *testing.T) {
	m := newTestModel(t)
	m = send(t, m, RosterMsg{Snapshot: domain.RosterSnapshot{
		Streamers: []domain.Streamer{
			{ID: "alice", Username: "alice", Channel: &domain.Channel{
				Username: "alice", DisplayName: "Alice", IsLive: true, ViewerCount: 1200, LiveTitle: "late night",
			}},
			{ID: "bob", Username: "bob"},
		},
	}})

	if m.List.ItemCount() != 2 {
		t.Fatalf("ItemCount() = %d, want 2", m.List.ItemCount())
	}

	view := m.View()
	for _, want := range []string{"Alice", "bob", "1 live", "1/2 loaded", "late night"} {
		if !strings.Contains(view, want) {
			t.Errorf("view is missing %q", want)
		}
	}
}

func TestModelHelpToggle(t *testing.T) {
	m := newTestModel(t)

	m = send(t, m, runes("?"))
	if m.State != StateHelp {
		t.Fatalf("State = %v after ?, want help", m.State)
	}
	m = send(t, m, runes("j"))
	if m.State != StateBrowsing {
		t.Errorf("State = %v after a key in help, want browsing", m.State)
	}
}

func TestModelInspectorToggle(t *testing.T) {
	m := newTestModel(t)
	m = send(t, m, runes("i"))
	if m.ShowInspector {
		t.Error("i should hide the details panel")
	}
}

func TestModelRequestForm(t *testing.T) {
	m := newTestModel(t)

	m = send(t, m, runes("a"))
	if !m.InputModal.IsVisible() {
		t.Fatal("a should open the request form")
	}

	// Empty username submits nothing
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(Model)
	if m.InputModal.IsVisible() || cmd != nil {
		t.Fatalf("empty submit: visible=%v cmd=%v, want closed with no command", m.InputModal.IsVisible(), cmd != nil)
	}

	m = send(t, m, runes("a"))
	m = send(t, m, runes("newcomer"))
	updated, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(Model)
	if m.InputModal.IsVisible() {
		t.Error("form should close after submit")
	}
	if cmd == nil {
		t.Error("submit should produce a request command")
	}
}

func TestModelFilterSwallowsActionKeys(t *testing.T) {
	m := newTestModel(t)
	m = send(t, m, RosterMsg{Snapshot: domain.RosterSnapshot{
		Streamers: []domain.Streamer{{ID: "iris", Username: "iris"}, {ID: "bob", Username: "bob"}},
	}})

	m = send(t, m, runes("/"))
	m = send(t, m, runes("i"))

	if !m.ShowInspector {
		t.Error("typing i into the filter must not toggle the details panel")
	}
	if m.List.FilterQuery() != "i" {
		t.Errorf("FilterQuery() = %q, want %q", m.List.FilterQuery(), "i")
	}
}

func TestReportStatus(t *testing.T) {
	tests := []struct {
		name   string
		fetch  int
		failed int
		want   string
	}{
		{"nothing", 0, 0, "Nothing to do"},
		{"clean", 4, 0, "Refreshed 4 streamers"},
		{"partial", 3, 1, "Refreshed 3 streamers, 1 unreachable (x to retry)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := reportStatus("Refreshed", service.BatchReport{Fetched: tt.fetch, Failed: tt.failed})
			if r != tt.want {
				t.Errorf("reportStatus() = %q, want %q", r, tt.want)
			}
		})
	}
}

package components

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/kickboard/internal/domain"
	"github.com/mmcdole/kickboard/internal/tui/styles"
)

// RequestAction is what the user asked the requests modal to do
type RequestAction int

const (
	RequestActionNone RequestAction = iota
	RequestActionAccept
	RequestActionDelete
	RequestActionNew
	RequestActionClose
)

// RequestsModal lists pending streamer requests
type RequestsModal struct {
	visible  bool
	loading  bool
	requests []domain.StreamerRequest
	cursor   int
	width    int
}

// NewRequestsModal creates a hidden modal
func NewRequestsModal() RequestsModal {
	return RequestsModal{}
}

// Show opens the modal in the loading state
func (m *RequestsModal) Show() {
	m.visible = true
	m.loading = true
	m.cursor = 0
}

// Hide dismisses the modal
func (m *RequestsModal) Hide() {
	m.visible = false
}

// IsVisible returns whether the modal is shown
func (m *RequestsModal) IsVisible() bool {
	return m.visible
}

// SetWidth bounds the modal to the terminal width
func (m *RequestsModal) SetWidth(width int) {
	m.width = width
}

// SetRequests fills the list, keeping the cursor in range
func (m *RequestsModal) SetRequests(reqs []domain.StreamerRequest) {
	m.loading = false
	m.requests = reqs
	if m.cursor >= len(reqs) {
		m.cursor = max(len(reqs)-1, 0)
	}
}

// Selected returns the request under the cursor
func (m *RequestsModal) Selected() (domain.StreamerRequest, bool) {
	if m.cursor < 0 || m.cursor >= len(m.requests) {
		return domain.StreamerRequest{}, false
	}
	return m.requests[m.cursor], true
}

// HandleKeyMsg processes a key and reports the requested action.
// Every key is consumed while the modal is visible.
func (m *RequestsModal) HandleKeyMsg(msg tea.KeyMsg) RequestAction {
	if !m.visible {
		return RequestActionNone
	}

	switch msg.String() {
	case "j", "down":
		if m.cursor < len(m.requests)-1 {
			m.cursor++
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "enter", "y":
		if _, ok := m.Selected(); ok {
			return RequestActionAccept
		}
	case "x", "d":
		if _, ok := m.Selected(); ok {
			return RequestActionDelete
		}
	case "a", "n":
		return RequestActionNew
	case "esc", "q", "p":
		return RequestActionClose
	}
	return RequestActionNone
}

// View renders the modal
func (m *RequestsModal) View() string {
	if !m.visible {
		return ""
	}

	modalWidth := 52
	if m.width > 0 && m.width < modalWidth+10 {
		modalWidth = max(m.width-10, 20)
	}
	rowWidth := modalWidth - 4

	lines := []string{
		styles.ModalTitleStyle.Render(fmt.Sprintf("Requests (%d)", len(m.requests))),
	}

	switch {
	case m.loading:
		lines = append(lines, styles.DimStyle.Render("Loading..."))
	case len(m.requests) == 0:
		lines = append(lines, styles.DimStyle.Render("No pending requests"))
	}

	for i, req := range m.requests {
		votes := fmt.Sprintf("%d▲", req.Votes)
		name := styles.Truncate(req.Username, rowWidth-lipgloss.Width(votes)-1)
		gap := max(rowWidth-lipgloss.Width(name)-lipgloss.Width(votes), 1)
		row := name + strings.Repeat(" ", gap) + votes

		style := lipgloss.NewStyle().Foreground(styles.LightGray)
		if i == m.cursor {
			style = lipgloss.NewStyle().Foreground(styles.White).Background(styles.SlateLight)
		}
		lines = append(lines, style.Render(row))

		if extra := requestDetail(req); extra != "" && i == m.cursor {
			lines = append(lines, styles.DimStyle.Render(styles.Truncate(extra, rowWidth)))
		}
	}

	lines = append(lines, "",
		styles.HelpKeyStyle.Render("enter")+styles.HelpDescStyle.Render(" accept  ")+
			styles.HelpKeyStyle.Render("x")+styles.HelpDescStyle.Render(" delete  ")+
			styles.HelpKeyStyle.Render("a")+styles.HelpDescStyle.Render(" new  ")+
			styles.HelpKeyStyle.Render("esc")+styles.HelpDescStyle.Render(" close"),
	)

	return styles.ModalStyle.
		Width(modalWidth).
		Render(strings.Join(lines, "\n"))
}

func requestDetail(req domain.StreamerRequest) string {
	var parts []string
	if len(req.Tags) > 0 {
		parts = append(parts, strings.Join(req.Tags, ", "))
	}
	if len(req.Characters) > 0 {
		parts = append(parts, "as "+strings.Join(req.Characters, ", "))
	}
	return strings.Join(parts, " · ")
}

package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/kickboard/internal/adapter"
	"github.com/mmcdole/kickboard/internal/domain"
	"github.com/mmcdole/kickboard/internal/service"
	"github.com/mmcdole/kickboard/internal/tui/components"
	"github.com/mmcdole/kickboard/internal/tui/styles"
)

// ApplicationState represents the current state of the application
type ApplicationState int

const (
	StateBrowsing ApplicationState = iota
	StateHelp
)

// Launcher opens a channel URL outside the dashboard
type Launcher interface {
	Launch(url string, live bool) error
}

// Model is the main Bubble Tea model for the application
type Model struct {
	// Application state
	State ApplicationState
	Ready bool

	// Services
	ctx        context.Context
	RefreshSvc *service.RefreshService
	RequestSvc *service.RequestService
	Launcher   Launcher

	// Event sources
	rosterCh <-chan domain.RosterSnapshot
	alertCh  <-chan adapter.Notification

	// UI Components
	List          *components.StreamerList
	Inspector     components.Inspector
	InputModal    components.InputModal
	RequestsModal components.RequestsModal

	// Data
	Snapshot domain.RosterSnapshot

	// Dimensions
	Width  int
	Height int

	// UI state
	StatusMsg     string
	StatusIsErr   bool
	SpinnerFrame  int
	ShowInspector bool
}

// NewModel creates the application model. Snapshots arrive on roster and
// go-live alerts on alerts; alerts may be nil.
func NewModel(
	ctx context.Context,
	refreshSvc *service.RefreshService,
	requestSvc *service.RequestService,
	launcher Launcher,
	roster <-chan domain.RosterSnapshot,
	alerts <-chan adapter.Notification,
	showOffline bool,
) Model {
	return Model{
		State:         StateBrowsing,
		ctx:           ctx,
		RefreshSvc:    refreshSvc,
		RequestSvc:    requestSvc,
		Launcher:      launcher,
		rosterCh:      roster,
		alertCh:       alerts,
		List:          components.NewStreamerList(showOffline),
		Inspector:     components.NewInspector(),
		InputModal:    components.NewInputModal(),
		RequestsModal: components.NewRequestsModal(),
		ShowInspector: true,
	}
}

// Init starts listening for roster snapshots and alerts
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		WaitForRosterCmd(m.rosterCh),
		TickCmd(100 * time.Millisecond),
	}
	if m.alertCh != nil {
		cmds = append(cmds, WaitForNotificationCmd(m.alertCh))
	}
	return tea.Batch(cmds...)
}

// Update handles all messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.Ready = true
		m.updateLayout()
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case TickMsg:
		m.SpinnerFrame++
		m.List.SetSpinnerFrame(m.SpinnerFrame)
		return m, TickCmd(100 * time.Millisecond)

	case RosterMsg:
		m.Snapshot = msg.Snapshot
		m.List.SetStreamers(msg.Snapshot.Streamers)
		m.List.SetLoading(msg.Snapshot.Loading)
		m.syncInspector()
		return m, WaitForRosterCmd(m.rosterCh)

	case NotificationMsg:
		m.StatusMsg = styles.NotifyChar + " " + msg.Notification.Title
		if msg.Notification.Body != "" {
			m.StatusMsg += ": " + msg.Notification.Body
		}
		m.StatusIsErr = false
		return m, tea.Batch(WaitForNotificationCmd(m.alertCh), ClearStatusCmd(10*time.Second))

	case RefreshDoneMsg:
		return m.setStatus(reportStatus("Refreshed", msg.Report), msg.Report.Failed > 0)

	case RetryFailedDoneMsg:
		return m.setStatus(reportStatus("Retried", msg.Report), msg.Report.Failed > 0)

	case RetryDoneMsg:
		st, ok := m.findStreamer(msg.ID)
		if ok && st.Error {
			return m.setStatus("Still unreachable: "+st.DisplayName(), true)
		}
		return m.setStatus("Updated "+msg.ID, false)

	case ToggledMsg:
		state := "off"
		if msg.Value {
			state = "on"
		}
		return m.setStatus(fmt.Sprintf("%s %s for %s", capitalize(msg.What), state, msg.ID), false)

	case LaunchedMsg:
		return m.setStatus("Opened "+msg.Name, false)

	case RequestsLoadedMsg:
		m.RequestsModal.SetRequests(msg.Requests)
		return m, nil

	case RequestSubmittedMsg:
		return m.setStatus(submitStatus(msg.Result), false)

	case RequestAcceptedMsg:
		m.StatusMsg = "Added " + msg.Streamer.Username
		m.StatusIsErr = false
		return m, tea.Batch(ClearStatusCmd(3*time.Second), m.reloadRequests())

	case RequestDeletedMsg:
		m.StatusMsg = "Request removed"
		m.StatusIsErr = false
		return m, tea.Batch(ClearStatusCmd(3*time.Second), m.reloadRequests())

	case ErrMsg:
		if errors.Is(msg.Err, context.Canceled) {
			return m, nil
		}
		m.StatusMsg = msg.Error()
		m.StatusIsErr = true
		return m, ClearStatusCmd(5 * time.Second)

	case StatusMsg:
		return m.setStatus(msg.Message, msg.IsError)

	case ClearStatusMsg:
		m.StatusMsg = ""
		m.StatusIsErr = false
		return m, nil
	}

	// Cursor blink and other textinput messages
	var cmd tea.Cmd
	if m.InputModal.IsVisible() {
		m.InputModal, cmd, _ = m.InputModal.Update(msg)
	} else if m.List.IsFiltering() {
		cmd = m.List.Update(msg)
	}
	return m, cmd
}

func (m Model) setStatus(text string, isErr bool) (tea.Model, tea.Cmd) {
	m.StatusMsg = text
	m.StatusIsErr = isErr
	return m, ClearStatusCmd(3 * time.Second)
}

func (m Model) reloadRequests() tea.Cmd {
	if !m.RequestsModal.IsVisible() {
		return nil
	}
	return LoadRequestsCmd(m.ctx, m.RequestSvc)
}

// syncInspector points the inspector at the list selection
func (m *Model) syncInspector() {
	if st, ok := m.List.SelectedStreamer(); ok {
		m.Inspector.SetStreamer(&st)
		return
	}
	m.Inspector.SetStreamer(nil)
}

func (m Model) findStreamer(id string) (domain.Streamer, bool) {
	for _, st := range m.Snapshot.Streamers {
		if st.ID == id {
			return st, true
		}
	}
	return domain.Streamer{}, false
}

func reportStatus(verb string, r service.BatchReport) string {
	if r.Fetched == 0 && r.Failed == 0 {
		return "Nothing to do"
	}
	s := fmt.Sprintf("%s %d streamers", verb, r.Fetched)
	if r.Failed > 0 {
		s += fmt.Sprintf(", %d unreachable (x to retry)", r.Failed)
	}
	return s
}

func submitStatus(res service.SubmitResult) string {
	var s string
	if res.Voted {
		s = fmt.Sprintf("Voted for %s (%d votes)", res.Request.Username, res.Request.Votes)
	} else {
		s = "Requested " + res.Request.Username
	}
	if len(res.Similar) > 0 {
		s += " · looks like " + strings.Join(res.Similar, ", ")
	}
	return s
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// View renders the application
func (m Model) View() string {
	if !m.Ready {
		return "Loading..."
	}

	if m.State == StateHelp {
		return m.renderHelp()
	}

	content := m.List.View()
	if m.calculateColumnLayout(m.Width).inspectorWidth > 0 {
		content = lipgloss.JoinHorizontal(lipgloss.Top, content, m.Inspector.View())
	}

	view := lipgloss.JoinVertical(
		lipgloss.Left,
		m.renderHeader(),
		content,
		m.renderFooter(),
	)

	if m.RequestsModal.IsVisible() {
		view = lipgloss.Place(m.Width, m.Height,
			lipgloss.Center, lipgloss.Center,
			m.RequestsModal.View())
	}

	if m.InputModal.IsVisible() {
		view = lipgloss.Place(m.Width, m.Height,
			lipgloss.Center, lipgloss.Center,
			m.InputModal.View())
	}

	return view
}

// renderHeader renders the title and roster counters
func (m Model) renderHeader() string {
	s := m.Snapshot
	left := styles.AccentStyle.Bold(true).Render("kickboard")

	var counts []string
	if live := s.LiveCount(); live > 0 {
		counts = append(counts, styles.LiveStyle.Render(fmt.Sprintf("%d live", live)))
	}
	counts = append(counts, styles.DimStyle.Render(fmt.Sprintf("%d/%d loaded", s.LoadedCount(), len(s.Streamers))))
	if failed := s.FailedCount(); failed > 0 {
		counts = append(counts, styles.ErrorStyle.Render(fmt.Sprintf("%d unreachable", failed)))
	}
	right := strings.Join(counts, styles.DimStyle.Render(" · "))

	gap := max(m.Width-lipgloss.Width(left)-lipgloss.Width(right)-1, 1)
	return left + strings.Repeat(" ", gap) + right
}

// renderFooter renders a single-line minimal footer
func (m Model) renderFooter() string {
	var left string
	switch {
	case m.StatusMsg != "" && m.StatusIsErr:
		left = styles.ErrorStyle.Render(m.StatusMsg)
	case m.StatusMsg != "":
		left = styles.DimStyle.Render(m.StatusMsg)
	case m.Snapshot.Loading:
		left = RenderSpinner(m.SpinnerFrame) + " " + styles.DimStyle.Render("Refreshing...")
	}

	var center string
	if m.Snapshot.FailedCount() > 0 {
		center = styles.AccentStyle.Render("x") + styles.DimStyle.Render(" retry failed")
	}

	right := styles.AccentStyle.Render("?") + styles.DimStyle.Render(" help")

	leftWidth := lipgloss.Width(left)
	centerWidth := lipgloss.Width(center)
	rightWidth := lipgloss.Width(right)

	if leftWidth+centerWidth+rightWidth >= m.Width {
		left = styles.Truncate(left, max(m.Width-rightWidth-1, 0))
		gap := max(m.Width-lipgloss.Width(left)-rightWidth, 0)
		return left + strings.Repeat(" ", gap) + right
	}

	available := m.Width - leftWidth - rightWidth
	leftPad := (available - centerWidth) / 2
	rightPad := available - centerWidth - leftPad

	return left + strings.Repeat(" ", leftPad) + center + strings.Repeat(" ", rightPad) + right
}

// renderHelp renders the help screen
func (m Model) renderHelp() string {
	help := `
NAVIGATION                      STREAMERS
  j/k        Up/down               R/Enter  Retry selected
  g/Home     First streamer        f        Toggle favorite
  G/End      Last streamer         n        Toggle go-live alert
  Ctrl+u/d   Scroll half page      r        Refresh everyone
  J/K        Scroll details        x        Retry unreachable
                                   w        Watch / open channel

VIEW                            REQUESTS
  /          Filter                a        Request a streamer
  o          Show/hide offline     p        Pending requests
  i          Toggle details
  q          Quit                  ?        This help

Press any key to return...
`

	return lipgloss.Place(m.Width, m.Height,
		lipgloss.Center, lipgloss.Center,
		styles.ModalStyle.Render(help))
}

// RenderSpinner returns the spinner glyph for frame
func RenderSpinner(frame int) string {
	frames := []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
	return styles.AccentStyle.Render(frames[frame%len(frames)])
}

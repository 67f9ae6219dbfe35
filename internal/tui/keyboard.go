package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/kickboard/internal/tui/components"
)

// handleKeyMsg handles keyboard input
func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.State == StateHelp {
		m.State = StateBrowsing
		return m, nil
	}

	// Route to active modal if any
	if handled, newModel, cmd := m.routeToModal(msg); handled {
		return newModel, cmd
	}

	// Typing into the filter
	if m.List.IsFiltering() {
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		cmd := m.List.Update(msg)
		m.syncInspector()
		return m, cmd
	}

	switch {
	case key.Matches(msg, Keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, Keys.Help):
		m.State = StateHelp
		return m, nil

	case key.Matches(msg, Keys.Escape):
		if m.List.FilterQuery() != "" {
			m.List.ClearFilter()
			m.syncInspector()
		}
		return m, nil

	case key.Matches(msg, Keys.Filter):
		return m, m.List.StartFilter()

	case key.Matches(msg, Keys.Refresh):
		if m.Snapshot.Loading {
			m.StatusMsg = "Refresh already running"
			m.StatusIsErr = false
			return m, ClearStatusCmd(2 * time.Second)
		}
		return m, RefreshAllCmd(m.ctx, m.RefreshSvc)

	case key.Matches(msg, Keys.Retry):
		if st, ok := m.List.SelectedStreamer(); ok {
			m.StatusMsg = "Retrying " + st.DisplayName() + "..."
			m.StatusIsErr = false
			return m, RetryOneCmd(m.ctx, m.RefreshSvc, st.ID)
		}
		return m, nil

	case key.Matches(msg, Keys.RetryFailed):
		if m.Snapshot.FailedCount() == 0 {
			m.StatusMsg = "Nothing to retry"
			m.StatusIsErr = false
			return m, ClearStatusCmd(2 * time.Second)
		}
		return m, RetryFailedCmd(m.ctx, m.RefreshSvc)

	case key.Matches(msg, Keys.Favorite):
		if st, ok := m.List.SelectedStreamer(); ok {
			return m, ToggleFavoriteCmd(m.RefreshSvc, st.ID)
		}
		return m, nil

	case key.Matches(msg, Keys.Notify):
		if st, ok := m.List.SelectedStreamer(); ok {
			return m, ToggleNotifyCmd(m.ctx, m.RefreshSvc, st.ID)
		}
		return m, nil

	case key.Matches(msg, Keys.Watch):
		if st, ok := m.List.SelectedStreamer(); ok && m.Launcher != nil {
			return m, LaunchCmd(m.Launcher, st)
		}
		return m, nil

	case key.Matches(msg, Keys.Request):
		m.showRequestForm()
		return m, nil

	case key.Matches(msg, Keys.Requests):
		m.RequestsModal.Show()
		m.RequestsModal.SetWidth(m.Width)
		return m, LoadRequestsCmd(m.ctx, m.RequestSvc)

	case key.Matches(msg, Keys.ToggleOffline):
		text := "Hiding offline channels"
		if m.List.ToggleOffline() {
			text = "Showing offline channels"
		}
		m.syncInspector()
		m.StatusMsg = text
		m.StatusIsErr = false
		return m, ClearStatusCmd(2 * time.Second)

	case key.Matches(msg, Keys.ToggleInspector):
		m.ShowInspector = !m.ShowInspector
		m.updateLayout()
		return m, nil

	case key.Matches(msg, Keys.ScrollDetails):
		m.Inspector.ScrollDown()
		return m, nil

	case key.Matches(msg, Keys.ScrollDetailsUp):
		m.Inspector.ScrollUp()
		return m, nil
	}

	cmd := m.List.Update(msg)
	m.syncInspector()
	return m, cmd
}

// routeToModal forwards keys to the visible modal.
// Returns true when a modal consumed the key.
func (m Model) routeToModal(msg tea.KeyMsg) (bool, Model, tea.Cmd) {
	if m.InputModal.IsVisible() {
		var cmd tea.Cmd
		var submitted bool
		m.InputModal, cmd, submitted = m.InputModal.Update(msg)
		if submitted {
			values := m.InputModal.Values()
			m.InputModal.Hide()
			if values[0] == "" {
				return true, m, nil
			}
			return true, m, SubmitRequestCmd(m.ctx, m.RequestSvc, values[0], values[1], values[2])
		}
		return true, m, cmd
	}

	if m.RequestsModal.IsVisible() {
		switch m.RequestsModal.HandleKeyMsg(msg) {
		case components.RequestActionAccept:
			req, _ := m.RequestsModal.Selected()
			return true, m, AcceptRequestCmd(m.ctx, m.RequestSvc, req.ID)
		case components.RequestActionDelete:
			req, _ := m.RequestsModal.Selected()
			return true, m, DeleteRequestCmd(m.ctx, m.RequestSvc, req.ID)
		case components.RequestActionNew:
			m.RequestsModal.Hide()
			m.showRequestForm()
		case components.RequestActionClose:
			m.RequestsModal.Hide()
		}
		return true, m, nil
	}

	return false, m, nil
}

func (m *Model) showRequestForm() {
	m.InputModal.Show("Request a streamer",
		components.InputField{Label: "Kick username or channel URL", Placeholder: "kick.com/..."},
		components.InputField{Label: "Tags (comma separated)", Placeholder: "optional"},
		components.InputField{Label: "Characters (comma separated)", Placeholder: "optional"},
	)
}

package components

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/kickboard/internal/tui/styles"
)

// InputField describes one line of an InputModal
type InputField struct {
	Label       string
	Placeholder string
}

// InputModal is a small form of labeled text inputs.
// tab/shift+tab move between fields, enter submits.
type InputModal struct {
	visible bool
	title   string
	labels  []string
	inputs  []textinput.Model
	focus   int
}

// NewInputModal creates a hidden modal
func NewInputModal() InputModal {
	return InputModal{}
}

// Show displays the modal with empty fields
func (m *InputModal) Show(title string, fields ...InputField) {
	m.visible = true
	m.title = title
	m.focus = 0
	m.labels = make([]string, len(fields))
	m.inputs = make([]textinput.Model, len(fields))

	for i, f := range fields {
		ti := textinput.New()
		ti.Placeholder = f.Placeholder
		ti.CharLimit = 120
		ti.Width = 34
		ti.Prompt = ""
		ti.TextStyle = lipgloss.NewStyle().Foreground(styles.White)
		ti.PlaceholderStyle = styles.DimStyle
		m.labels[i] = f.Label
		m.inputs[i] = ti
	}
	if len(m.inputs) > 0 {
		m.inputs[0].Focus()
	}
}

// Hide dismisses the modal
func (m *InputModal) Hide() {
	m.visible = false
	for i := range m.inputs {
		m.inputs[i].Blur()
	}
}

// IsVisible returns whether the modal is shown
func (m InputModal) IsVisible() bool {
	return m.visible
}

// Values returns the field contents in order
func (m InputModal) Values() []string {
	values := make([]string, len(m.inputs))
	for i, in := range m.inputs {
		values[i] = in.Value()
	}
	return values
}

// Update handles input events, returns (modal, cmd, submitted)
func (m InputModal) Update(msg tea.Msg) (InputModal, tea.Cmd, bool) {
	if !m.visible || len(m.inputs) == 0 {
		return m, nil, false
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "enter":
			return m, nil, true
		case "esc":
			m.Hide()
			return m, nil, false
		case "tab", "down":
			return m, m.moveFocus(1), false
		case "shift+tab", "up":
			return m, m.moveFocus(-1), false
		}
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd, false
}

func (m *InputModal) moveFocus(delta int) tea.Cmd {
	m.inputs[m.focus].Blur()
	m.focus = (m.focus + delta + len(m.inputs)) % len(m.inputs)
	return m.inputs[m.focus].Focus()
}

// View renders the modal
func (m InputModal) View() string {
	if !m.visible {
		return ""
	}

	const modalWidth = 40

	line := lipgloss.NewStyle().Width(modalWidth).Background(styles.SlateDark)
	spacer := line.Render("")

	rows := []string{
		line.Foreground(styles.White).Bold(true).Render(m.title),
		spacer,
	}
	for i, in := range m.inputs {
		labelStyle := styles.DimStyle
		if i == m.focus {
			labelStyle = styles.AccentStyle
		}
		rows = append(rows,
			line.Render(labelStyle.Render(m.labels[i])),
			line.Render(in.View()),
			spacer,
		)
	}
	rows = append(rows, line.Render(
		styles.HelpKeyStyle.Render("tab")+styles.HelpDescStyle.Render(" next  ")+
			styles.HelpKeyStyle.Render("enter")+styles.HelpDescStyle.Render(" submit  ")+
			styles.HelpKeyStyle.Render("esc")+styles.HelpDescStyle.Render(" cancel"),
	))

	return styles.ModalStyle.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

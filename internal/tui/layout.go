package tui

// Layout proportions
const (
	ListPercent    = 45 // Streamer list when details are shown
	MinColumnWidth = 24

	// Header line + footer line
	ChromeHeight = 2
)

// columnLayout holds calculated widths for the View
type columnLayout struct {
	listWidth      int
	inspectorWidth int // 0 if not shown
}

// calculateColumnLayout splits the width between the list and the inspector
func (m Model) calculateColumnLayout(availableWidth int) columnLayout {
	if !m.ShowInspector || availableWidth < 2*MinColumnWidth {
		return columnLayout{listWidth: availableWidth}
	}
	list := max(availableWidth*ListPercent/100, MinColumnWidth)
	return columnLayout{
		listWidth:      list,
		inspectorWidth: availableWidth - list,
	}
}

// updateLayout updates component sizes based on window size
func (m *Model) updateLayout() {
	if m.Width == 0 || m.Height == 0 {
		return
	}

	contentHeight := max(m.Height-ChromeHeight, 3)
	layout := m.calculateColumnLayout(m.Width)

	m.List.SetSize(layout.listWidth, contentHeight)
	if layout.inspectorWidth > 0 {
		m.Inspector.SetSize(layout.inspectorWidth, contentHeight)
	}
	m.RequestsModal.SetWidth(m.Width)
}

package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/kickboard/internal/domain"
	"github.com/mmcdole/kickboard/internal/tui/styles"
	"github.com/sahilm/fuzzy"
)

// Spinner frames for loading rows
var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Layout constants for the list
const (
	// Border adds 1 char on each side
	BorderWidth  = 2
	BorderHeight = 2

	// Scroll indicators ("↑ more" and "↓ more") each take 1 line
	ScrollIndicatorLines = 2
)

// StreamerList is the scrollable, filterable roster column
type StreamerList struct {
	streamers []domain.Streamer
	visible   []int // indices into streamers, in display order

	cursor     int
	offset     int
	maxVisible int

	width   int
	height  int
	focused bool

	loading      bool
	spinnerFrame int
	showOffline  bool

	filterInput textinput.Model
	filterQuery string
}

// NewStreamerList creates an empty list
func NewStreamerList(showOffline bool) *StreamerList {
	ti := textinput.New()
	ti.Placeholder = "name, tag or character..."
	ti.Prompt = "/ "
	ti.PromptStyle = styles.FilterPromptStyle

	return &StreamerList{
		filterInput: ti,
		showOffline: showOffline,
		focused:     true,
	}
}

// SetStreamers replaces the rows, keeping the cursor on the same streamer
// when it is still visible
func (l *StreamerList) SetStreamers(streamers []domain.Streamer) {
	selected, hadSelection := l.SelectedStreamer()

	l.streamers = streamers
	l.rebuild()

	if hadSelection {
		for pos, idx := range l.visible {
			if l.streamers[idx].ID == selected.ID {
				l.cursor = pos
				break
			}
		}
	}
	l.clampCursor()
	l.ensureVisible()
}

// SetLoading shows the spinner in the title
func (l *StreamerList) SetLoading(loading bool) {
	l.loading = loading
}

// SetSpinnerFrame advances the spinner animation
func (l *StreamerList) SetSpinnerFrame(frame int) {
	l.spinnerFrame = frame
}

// ToggleOffline shows or hides loaded offline channels
func (l *StreamerList) ToggleOffline() bool {
	l.showOffline = !l.showOffline
	l.rebuild()
	l.clampCursor()
	l.ensureVisible()
	return l.showOffline
}

// ShowOffline reports whether offline channels are listed
func (l *StreamerList) ShowOffline() bool {
	return l.showOffline
}

// SetFocused sets whether the list receives navigation keys
func (l *StreamerList) SetFocused(focused bool) {
	l.focused = focused
}

// SetSize sets the outer dimensions including the border
func (l *StreamerList) SetSize(width, height int) {
	l.width = width
	l.height = height
	l.recalcMaxVisible()
	l.ensureVisible()
}

// ItemCount returns the number of visible rows
func (l *StreamerList) ItemCount() int {
	return len(l.visible)
}

// SelectedStreamer returns the streamer under the cursor
func (l *StreamerList) SelectedStreamer() (domain.Streamer, bool) {
	if l.cursor < 0 || l.cursor >= len(l.visible) {
		return domain.Streamer{}, false
	}
	return l.streamers[l.visible[l.cursor]], true
}

// IsFiltering returns true while the filter input has focus
func (l *StreamerList) IsFiltering() bool {
	return l.filterInput.Focused()
}

// FilterQuery returns the active filter text
func (l *StreamerList) FilterQuery() string {
	return l.filterQuery
}

// StartFilter focuses the filter input
func (l *StreamerList) StartFilter() tea.Cmd {
	l.recalcMaxVisible()
	return l.filterInput.Focus()
}

// ClearFilter drops the query and shows every row again
func (l *StreamerList) ClearFilter() {
	l.filterQuery = ""
	l.filterInput.SetValue("")
	l.filterInput.Blur()
	l.rebuild()
	l.recalcMaxVisible()
	l.clampCursor()
	l.ensureVisible()
}

// Update handles navigation and filter typing
func (l *StreamerList) Update(msg tea.Msg) tea.Cmd {
	if !l.focused {
		return nil
	}

	keyMsg, isKey := msg.(tea.KeyMsg)

	if l.filterInput.Focused() {
		if isKey {
			switch keyMsg.String() {
			case "esc":
				l.ClearFilter()
				return nil
			case "enter":
				// Keep the results, navigate them
				l.filterInput.Blur()
				l.recalcMaxVisible()
				return nil
			case "backspace":
				if l.filterInput.Value() == "" {
					l.ClearFilter()
					return nil
				}
			}
		}

		var cmd tea.Cmd
		l.filterInput, cmd = l.filterInput.Update(msg)
		l.applyFilter(l.filterInput.Value())
		return cmd
	}

	if !isKey || len(l.visible) == 0 {
		return nil
	}

	switch {
	case key.Matches(keyMsg, ListKeys.Down):
		l.cursor++
	case key.Matches(keyMsg, ListKeys.Up):
		l.cursor--
	case key.Matches(keyMsg, ListKeys.Home):
		l.cursor = 0
		l.offset = 0
	case key.Matches(keyMsg, ListKeys.End):
		l.cursor = len(l.visible) - 1
	case key.Matches(keyMsg, ListKeys.HalfDown):
		l.cursor += max(l.maxVisible/2, 1)
	case key.Matches(keyMsg, ListKeys.HalfUp):
		l.cursor -= max(l.maxVisible/2, 1)
	}
	l.clampCursor()
	l.ensureVisible()
	return nil
}

// View renders the bordered list
func (l *StreamerList) View() string {
	style := styles.InactiveBorder
	if l.focused {
		style = styles.ActiveBorder
	}

	frameW, frameH := style.GetFrameSize()
	return style.
		Width(l.width - frameW).
		Height(l.height - frameH).
		Render(l.renderContent())
}

func (l *StreamerList) renderContent() string {
	innerWidth := l.width - BorderWidth
	var b strings.Builder

	title := styles.TitleStyle.Render("Streamers")
	if l.loading {
		title += " " + styles.AccentStyle.Render(spinnerFrames[l.spinnerFrame%len(spinnerFrames)])
	}
	b.WriteString(title)
	b.WriteString("\n")

	if l.hasFilterLine() {
		if l.filterInput.Focused() {
			b.WriteString(l.filterInput.View())
		} else {
			b.WriteString(styles.FilterPromptStyle.Render("/ ") + l.filterQuery +
				styles.DimStyle.Render(fmt.Sprintf("  (%d)", len(l.visible))))
		}
		b.WriteString("\n")
	}

	if len(l.visible) == 0 {
		switch {
		case l.filterQuery != "":
			b.WriteString(styles.DimStyle.Render("No matches"))
		case len(l.streamers) > 0:
			b.WriteString(styles.DimStyle.Render("Nobody is live (o shows offline)"))
		default:
			b.WriteString(styles.DimStyle.Render("Roster is empty"))
		}
		return b.String()
	}

	if l.offset > 0 {
		b.WriteString(styles.DimStyle.Render("↑ more"))
	}
	b.WriteString("\n")

	end := min(l.offset+l.maxVisible, len(l.visible))
	for pos := l.offset; pos < end; pos++ {
		st := l.streamers[l.visible[pos]]
		b.WriteString(RenderStreamerRow(st, pos == l.cursor, innerWidth))
		if pos < end-1 {
			b.WriteString("\n")
		}
	}

	if end < len(l.visible) {
		b.WriteString("\n")
		b.WriteString(styles.DimStyle.Render("↓ more"))
	}
	return b.String()
}

// RenderStreamerRow renders one roster row: marker, name, badges and the live summary
func RenderStreamerRow(st domain.Streamer, selected bool, width int) string {
	marker, color := rowMarker(st)
	gold := styles.Gold
	dim := styles.DimGray

	parts := []styles.RowPart{{Text: marker + " ", Foreground: &color}}

	var right string
	switch {
	case st.IsLive():
		right = domain.FormatViewers(st.Viewers())
		if cat := st.Channel.LiveCategory; cat != "" {
			right = cat + "  " + right
		}
	case st.Error:
		right = "unavailable"
	case st.Loaded() && st.Channel.NotFound:
		right = "not found"
	case st.Loaded() && st.Channel.LastStreamStart != nil:
		right = "seen " + humanizeSince(time.Since(*st.Channel.LastStreamStart))
	}

	var badges string
	if st.IsFavorite {
		badges += " " + styles.FavoriteChar
	}
	if st.NotificationsEnabled {
		badges += " " + styles.NotifyChar
	}

	// marker(2) + margins(2) + gap(1)
	nameWidth := width - 5 - lipgloss.Width(badges) - lipgloss.Width(right)
	name := styles.Truncate(st.DisplayName(), max(nameWidth, 4))
	parts = append(parts, styles.RowPart{Text: name})
	if badges != "" {
		parts = append(parts, styles.RowPart{Text: badges, Foreground: &gold})
	}

	used := 2 + lipgloss.Width(name) + lipgloss.Width(badges)
	if pad := width - 2 - used - lipgloss.Width(right); pad > 0 && right != "" {
		parts = append(parts, styles.RowPart{Text: strings.Repeat(" ", pad)})
		parts = append(parts, styles.RowPart{Text: right, Foreground: &dim})
	}
	return styles.RenderListRow(parts, selected, width)
}

func rowMarker(st domain.Streamer) (string, lipgloss.Color) {
	switch {
	case st.Error:
		return styles.ErrorChar, styles.Red
	case !st.Loaded():
		return styles.LoadingChar, styles.DimGray
	case st.Channel.IsLive:
		return styles.LiveChar, styles.LiveRed
	default:
		return styles.OfflineChar, styles.DimGray
	}
}

// humanizeSince renders an age as "5m ago", "3h ago" or "2d ago"
func humanizeSince(d time.Duration) string {
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 48*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}

func (l *StreamerList) hasFilterLine() bool {
	return l.filterInput.Focused() || l.filterQuery != ""
}

func (l *StreamerList) recalcMaxVisible() {
	// title line + scroll indicators + border
	reserved := 1 + ScrollIndicatorLines + BorderHeight
	if l.hasFilterLine() {
		reserved++
	}
	l.maxVisible = max(l.height-reserved, 1)
}

func (l *StreamerList) clampCursor() {
	if l.cursor >= len(l.visible) {
		l.cursor = len(l.visible) - 1
	}
	if l.cursor < 0 {
		l.cursor = 0
	}
}

func (l *StreamerList) ensureVisible() {
	if l.maxVisible <= 0 {
		return
	}
	if l.cursor < l.offset {
		l.offset = l.cursor
	}
	if l.cursor >= l.offset+l.maxVisible {
		l.offset = l.cursor - l.maxVisible + 1
	}
	if l.offset < 0 {
		l.offset = 0
	}
}

func (l *StreamerList) applyFilter(query string) {
	l.filterQuery = query
	l.rebuild()
	l.cursor = 0
	l.offset = 0
}

// rebuild recomputes the visible rows. Without a query the roster order is
// kept; with one, rows follow match quality.
func (l *StreamerList) rebuild() {
	var candidates []int
	if l.filterQuery == "" {
		candidates = make([]int, len(l.streamers))
		for i := range l.streamers {
			candidates[i] = i
		}
	} else {
		haystack := make([]string, len(l.streamers))
		for i, st := range l.streamers {
			haystack[i] = searchText(st)
		}
		matches := fuzzy.Find(strings.ToLower(l.filterQuery), haystack)
		candidates = make([]int, len(matches))
		for i, match := range matches {
			candidates[i] = match.Index
		}
	}

	l.visible = l.visible[:0]
	for _, idx := range candidates {
		st := l.streamers[idx]
		// Unloaded and failed rows stay listed so their state is visible
		if !l.showOffline && st.Loaded() && !st.Channel.IsLive {
			continue
		}
		l.visible = append(l.visible, idx)
	}
}

// searchText is the lowercase text a filter query is matched against
func searchText(st domain.Streamer) string {
	fields := []string{st.DisplayName(), st.Username}
	fields = append(fields, st.Tags...)
	fields = append(fields, st.Characters...)
	if st.Loaded() && st.Channel.LiveCategory != "" {
		fields = append(fields, st.Channel.LiveCategory)
	}
	return strings.ToLower(strings.Join(fields, " "))
}

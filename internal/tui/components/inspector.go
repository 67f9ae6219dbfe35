package components

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/kickboard/internal/domain"
	"github.com/mmcdole/kickboard/internal/tui/styles"
)

// Layout constants for the inspector
const (
	InspectorBorderHeight     = 2
	InspectorScrollIndicators = 2
)

// inspectorContent holds the three zones of the panel
type inspectorContent struct {
	header string // fixed top
	body   string // scrollable middle
	footer string // fixed bottom
}

// Inspector shows the details of the selected streamer
type Inspector struct {
	streamer   *domain.Streamer
	width      int
	height     int
	offset     int
	maxVisible int
	now        func() time.Time
}

// NewInspector creates an empty inspector
func NewInspector() Inspector {
	return Inspector{now: time.Now}
}

// SetStreamer sets the streamer to display. Scroll resets when the
// selection moves to someone else.
func (i *Inspector) SetStreamer(st *domain.Streamer) {
	if st == nil || i.streamer == nil || i.streamer.ID != st.ID {
		i.offset = 0
	}
	i.streamer = st
}

// SetSize updates the component dimensions
func (i *Inspector) SetSize(width, height int) {
	i.width = width
	i.height = height
	// title + blank line
	i.maxVisible = max(height-InspectorBorderHeight-InspectorScrollIndicators-2, 1)
}

// ScrollDown moves the body one line down
func (i *Inspector) ScrollDown() {
	i.offset++
}

// ScrollUp moves the body one line up
func (i *Inspector) ScrollUp() {
	if i.offset > 0 {
		i.offset--
	}
}

// View renders the panel
func (i Inspector) View() string {
	style := styles.InactiveBorder

	contentWidth := max(i.width-3, 10)
	content := i.render(contentWidth)

	headerLines := splitLines(content.header)
	footerLines := splitLines(content.footer)
	bodyLines := splitLines(content.body)

	bodyRoom := max(i.maxVisible-len(headerLines)-len(footerLines), 1)
	offset := min(i.offset, max(len(bodyLines)-bodyRoom, 0))
	end := min(offset+bodyRoom, len(bodyLines))

	parts := []string{styles.AccentStyle.Render("Details"), ""}
	if content.header != "" {
		parts = append(parts, headerLines...)
	}

	if offset > 0 {
		parts = append(parts, styles.DimStyle.Render("↑ more"))
	} else {
		parts = append(parts, " ")
	}
	parts = append(parts, bodyLines[offset:end]...)
	for j := end - offset; j < bodyRoom; j++ {
		parts = append(parts, "")
	}
	if end < len(bodyLines) {
		parts = append(parts, styles.DimStyle.Render("↓ more"))
	} else {
		parts = append(parts, " ")
	}

	if content.footer != "" {
		parts = append(parts, footerLines...)
	}

	frameW, frameH := style.GetFrameSize()
	return style.
		Width(i.width - frameW).
		Height(i.height - frameH).
		Render(strings.Join(parts, "\n"))
}

func (i Inspector) render(width int) inspectorContent {
	if i.streamer == nil {
		return inspectorContent{body: styles.DimStyle.Render("No streamer selected")}
	}
	st := *i.streamer
	return inspectorContent{
		header: i.renderHeader(st, width),
		body:   renderBody(st, width),
		footer: renderFooter(st, width),
	}
}

func (i Inspector) renderHeader(st domain.Streamer, width int) string {
	var lines []string

	name := st.DisplayName()
	if st.IsFavorite {
		name += " " + styles.FavoriteChar
	}
	lines = append(lines, styles.TitleStyle.Render(styles.Truncate(name, width)))
	if st.Username != st.DisplayName() {
		lines = append(lines, styles.SubtitleStyle.Render("@"+st.Username))
	}

	switch {
	case st.Error:
		lines = append(lines, styles.ErrorStyle.Render("Could not reach Kick (R to retry)"))
	case st.Channel == nil:
		lines = append(lines, styles.DimStyle.Render("Loading..."))
	case st.Channel.NotFound:
		lines = append(lines, styles.DimBadgeStyle.Render("NOT FOUND"))
	case st.Channel.IsLive:
		ch := st.Channel
		status := styles.LiveBadgeStyle.Render("LIVE") + " " +
			styles.SubtitleStyle.Render(domain.FormatViewers(ch.ViewerCount)+" viewers")
		if up := domain.FormatDuration(ch.Uptime(i.now())); up != "" {
			status += styles.DimStyle.Render(" · " + up)
		}
		lines = append(lines, status)
		if ch.LiveTitle != "" {
			lines = append(lines, lipgloss.NewStyle().Width(width).Render(ch.LiveTitle))
		}
		if ch.LiveCategory != "" {
			lines = append(lines, styles.AccentStyle.Render(ch.LiveCategory))
		}
	default:
		status := styles.DimBadgeStyle.Render("OFFLINE")
		if last := st.Channel.LastStreamStart; last != nil {
			status += styles.DimStyle.Render(" last stream " + last.Local().Format("Jan 2 15:04"))
		}
		lines = append(lines, status)
	}
	return strings.Join(lines, "\n")
}

func renderBody(st domain.Streamer, width int) string {
	var sections []string

	if st.Loaded() {
		if st.Channel.FollowersCount > 0 {
			sections = append(sections, styles.DimStyle.Render("Followers ")+
				domain.FormatViewers(st.Channel.FollowersCount))
		}
		if st.Channel.Bio != "" {
			sections = append(sections, lipgloss.NewStyle().Width(width).Render(st.Channel.Bio))
		}
	}

	if len(st.Tags) > 0 {
		sections = append(sections, labeled("Tags", strings.Join(st.Tags, ", "), width))
	}
	if len(st.Characters) > 0 {
		sections = append(sections, labeled("Characters", strings.Join(st.Characters, ", "), width))
	}

	if links := st.AllLinks(); len(links) > 0 {
		keys := make([]string, 0, len(links))
		for k := range links {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		var b strings.Builder
		b.WriteString(styles.DimStyle.Render("Links"))
		for _, k := range keys {
			b.WriteString("\n")
			b.WriteString(styles.HelpKeyStyle.Render(fmt.Sprintf("%-10s", k)))
			b.WriteString(styles.Truncate(links[k], max(width-10, 4)))
		}
		sections = append(sections, b.String())
	}

	if len(sections) == 0 {
		return styles.DimStyle.Render("Nothing more to show")
	}
	return strings.Join(sections, "\n\n")
}

func renderFooter(st domain.Streamer, width int) string {
	var parts []string
	if st.NotificationsEnabled {
		parts = append(parts, styles.NotifyChar+" alerts on")
	}
	if !st.IsSystem {
		parts = append(parts, "requested")
	}
	if st.Channel != nil && !st.Channel.CheckedAt.IsZero() {
		parts = append(parts, "checked "+st.Channel.CheckedAt.Local().Format("15:04:05"))
	} else if !st.LastUpdated.IsZero() {
		parts = append(parts, "checked "+st.LastUpdated.Local().Format("15:04:05"))
	}
	if len(parts) == 0 {
		return ""
	}
	return styles.DimStyle.Render(styles.Truncate(strings.Join(parts, " · "), width))
}

func labeled(label, value string, width int) string {
	return styles.DimStyle.Render(label) + "\n" + lipgloss.NewStyle().Width(width).Render(value)
}

func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

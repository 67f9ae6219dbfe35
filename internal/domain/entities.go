package domain

import (
	"fmt"
	"time"
)

// Channel is the normalized status snapshot of a streamer, built from one fetch.
// On Error every optional field is left empty.
type Channel struct {
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	ProfilePic  string `json:"profile_pic,omitempty"`

	IsLive       bool       `json:"is_live"`
	LiveTitle    string     `json:"live_title,omitempty"`
	ViewerCount  int        `json:"viewer_count,omitempty"`
	LiveCategory string     `json:"live_category,omitempty"`
	LiveSince    *time.Time `json:"live_since,omitempty"`

	// LastStreamStart is the start of the most recent past session (offline only)
	LastStreamStart *time.Time `json:"last_stream_start,omitempty"`

	Bio            string            `json:"bio,omitempty"`
	FollowersCount int               `json:"followers_count,omitempty"`
	BannerImage    string            `json:"banner_image,omitempty"`
	SocialLinks    map[string]string `json:"social_links,omitempty"`

	LiveURL    string `json:"live_url"`
	ProfileURL string `json:"profile_url"`

	// NotFound is set when the upstream definitively reported no such channel
	NotFound bool `json:"not_found,omitempty"`
	// Error is set when every network path failed
	Error bool `json:"error,omitempty"`

	CheckedAt time.Time `json:"checked_at"`
}

// Streamer is one tracked creator: identity, user preferences and the last fetched status.
type Streamer struct {
	ID         string   // Stable identity (Kick username as configured)
	Username   string   // Kick username used for upstream requests
	Tags       []string // Free-form labels
	Characters []string // Roleplay characters played by the streamer
	IsSystem   bool     // True for roster entries, false for accepted requests

	IsFavorite           bool
	NotificationsEnabled bool

	Channel *Channel // nil until loaded, nil again after a failed fetch
	Error   bool     // Last fetch exhausted every path

	Links map[string]string // Roster-provided links, merged under channel social links

	LastUpdated time.Time
	AddedAt     time.Time
}

// Loaded returns true when the streamer has a populated, non-error status
func (s Streamer) Loaded() bool {
	return s.Channel != nil && !s.Error
}

// IsLive returns true when the last fetch saw an active livestream
func (s Streamer) IsLive() bool {
	return s.Loaded() && s.Channel.IsLive
}

// Viewers returns the current viewer count (0 when offline or not loaded)
func (s Streamer) Viewers() int {
	if !s.IsLive() {
		return 0
	}
	return s.Channel.ViewerCount
}

// DisplayName returns the channel display name, falling back to the username
func (s Streamer) DisplayName() string {
	if s.Channel != nil && s.Channel.DisplayName != "" {
		return s.Channel.DisplayName
	}
	return s.Username
}

// AllLinks merges roster links with the social links reported by the channel.
// Channel links win on conflict.
func (s Streamer) AllLinks() map[string]string {
	links := make(map[string]string, len(s.Links))
	for k, v := range s.Links {
		links[k] = v
	}
	if s.Loaded() {
		for k, v := range s.Channel.SocialLinks {
			links[k] = v
		}
	}
	return links
}

// Clone returns a deep copy so snapshots can be handed to observers safely
func (s Streamer) Clone() Streamer {
	out := s
	out.Tags = append([]string(nil), s.Tags...)
	out.Characters = append([]string(nil), s.Characters...)
	if s.Links != nil {
		out.Links = make(map[string]string, len(s.Links))
		for k, v := range s.Links {
			out.Links[k] = v
		}
	}
	if s.Channel != nil {
		ch := s.Channel.Clone()
		out.Channel = &ch
	}
	return out
}

// Clone returns a deep copy of the channel
func (c Channel) Clone() Channel {
	out := c
	if c.SocialLinks != nil {
		out.SocialLinks = make(map[string]string, len(c.SocialLinks))
		for k, v := range c.SocialLinks {
			out.SocialLinks[k] = v
		}
	}
	if c.LiveSince != nil {
		t := *c.LiveSince
		out.LiveSince = &t
	}
	if c.LastStreamStart != nil {
		t := *c.LastStreamStart
		out.LastStreamStart = &t
	}
	return out
}

// Uptime returns how long the current session has been running
func (c Channel) Uptime(now time.Time) time.Duration {
	if !c.IsLive || c.LiveSince == nil {
		return 0
	}
	return now.Sub(*c.LiveSince)
}

// FormatViewers renders a viewer count compactly (e.g., "1.2K")
func FormatViewers(n int) string {
	switch {
	case n >= 1_000_000:
		return fmt.Sprintf("%.1fM", float64(n)/1_000_000)
	case n >= 1_000:
		return fmt.Sprintf("%.1fK", float64(n)/1_000)
	default:
		return fmt.Sprintf("%d", n)
	}
}

// FormatDuration renders a duration as "2h05m" or "12m"
func FormatDuration(d time.Duration) string {
	if d <= 0 {
		return ""
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	if h > 0 {
		return fmt.Sprintf("%dh%02dm", h, m)
	}
	return fmt.Sprintf("%dm", m)
}

// Preferences holds the per-streamer user toggles persisted across sessions
type Preferences struct {
	Favorite bool `json:"favorite"`
	Notify   bool `json:"notify"`
}

// StreamerRequest is a pending suggestion to add a streamer to the roster
type StreamerRequest struct {
	ID         string    `json:"id"`
	Username   string    `json:"username"`
	Tags       []string  `json:"tags,omitempty"`
	Characters []string  `json:"characters,omitempty"`
	Votes      int       `json:"votes"`
	CreatedAt  time.Time `json:"created_at"`
}

package tui

import "github.com/mmcdole/kickboard/internal/domain"

// ChannelObserver adapts domain.RosterObserver to a channel for Bubble Tea.
// The channel holds at most one snapshot; a newer one replaces an unread one
// so the UI always renders the latest state.
type ChannelObserver struct {
	ch chan domain.RosterSnapshot
}

// NewChannelObserver creates a new channel-based observer.
func NewChannelObserver() *ChannelObserver {
	return &ChannelObserver{ch: make(chan domain.RosterSnapshot, 1)}
}

// Updates returns the channel the TUI waits on
func (o *ChannelObserver) Updates() <-chan domain.RosterSnapshot {
	return o.ch
}

// OnRoster delivers snapshot without blocking
func (o *ChannelObserver) OnRoster(snapshot domain.RosterSnapshot) {
	for {
		select {
		case o.ch <- snapshot:
			return
		default:
		}
		// Full: drop the stale snapshot and try again
		select {
		case <-o.ch:
		default:
		}
	}
}

package tui

import (
	"github.com/mmcdole/kickboard/internal/adapter"
	"github.com/mmcdole/kickboard/internal/domain"
	"github.com/mmcdole/kickboard/internal/service"
)

// Message types for the TUI

// ErrMsg represents an error
type ErrMsg struct {
	Err     error
	Context string
}

// Error implements the error interface
func (e ErrMsg) Error() string {
	if e.Context != "" {
		return e.Context + ": " + e.Err.Error()
	}
	return e.Err.Error()
}

// RosterMsg carries the latest roster snapshot
type RosterMsg struct {
	Snapshot domain.RosterSnapshot
}

// NotificationMsg carries a delivered go-live alert
type NotificationMsg struct {
	Notification adapter.Notification
}

// RefreshDoneMsg signals that a manual full refresh finished
type RefreshDoneMsg struct {
	Report service.BatchReport
}

// RetryFailedDoneMsg signals that the failed set was refetched
type RetryFailedDoneMsg struct {
	Report service.BatchReport
}

// RetryDoneMsg signals that a single streamer was refetched
type RetryDoneMsg struct {
	ID string
}

// ToggledMsg reports the new value of a favorite or alert flag
type ToggledMsg struct {
	ID    string
	What  string // "favorite" or "alerts"
	Value bool
}

// LaunchedMsg signals that a channel was handed to a player or the browser
type LaunchedMsg struct {
	Name string
}

// RequestsLoadedMsg carries the pending requests
type RequestsLoadedMsg struct {
	Requests []domain.StreamerRequest
}

// RequestSubmittedMsg signals that a request was recorded
type RequestSubmittedMsg struct {
	Result service.SubmitResult
}

// RequestAcceptedMsg signals that a request became a tracked streamer
type RequestAcceptedMsg struct {
	Streamer domain.Streamer
}

// RequestDeletedMsg signals that a request was removed
type RequestDeletedMsg struct {
	ID string
}

// TickMsg drives the spinner
type TickMsg struct{}

// ClearStatusMsg clears the status bar message
type ClearStatusMsg struct{}

// StatusMsg sets a temporary status message
type StatusMsg struct {
	Message string
	IsError bool
}

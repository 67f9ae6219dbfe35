package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/kickboard/internal/adapter"
	"github.com/mmcdole/kickboard/internal/domain"
	"github.com/mmcdole/kickboard/internal/service"
)

// Command factories for async operations.
// Each derives its deadline from the program context so quitting cancels it.

const (
	batchTimeout   = 10 * time.Minute
	requestTimeout = 10 * time.Second
)

// WaitForRosterCmd blocks until the next roster snapshot
func WaitForRosterCmd(ch <-chan domain.RosterSnapshot) tea.Cmd {
	return func() tea.Msg {
		snapshot, ok := <-ch
		if !ok {
			return nil
		}
		return RosterMsg{Snapshot: snapshot}
	}
}

// WaitForNotificationCmd blocks until the next go-live alert
func WaitForNotificationCmd(ch <-chan adapter.Notification) tea.Cmd {
	return func() tea.Msg {
		n, ok := <-ch
		if !ok {
			return nil
		}
		return NotificationMsg{Notification: n}
	}
}

// RefreshAllCmd refetches the whole roster
func RefreshAllCmd(ctx context.Context, svc *service.RefreshService) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, batchTimeout)
		defer cancel()

		return RefreshDoneMsg{Report: svc.RefreshAll(ctx)}
	}
}

// RetryFailedCmd refetches only the streamers whose last fetch failed
func RetryFailedCmd(ctx context.Context, svc *service.RefreshService) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, batchTimeout)
		defer cancel()

		return RetryFailedDoneMsg{Report: svc.RetryFailed(ctx)}
	}
}

// RetryOneCmd refetches a single streamer, bypassing any shared cache
func RetryOneCmd(ctx context.Context, svc *service.RefreshService, id string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, time.Minute)
		defer cancel()

		if err := svc.RetryOne(ctx, id); err != nil {
			return ErrMsg{Err: err, Context: "retrying " + id}
		}
		return RetryDoneMsg{ID: id}
	}
}

// ToggleFavoriteCmd flips a streamer's favorite flag
func ToggleFavoriteCmd(svc *service.RefreshService, id string) tea.Cmd {
	return func() tea.Msg {
		on, err := svc.ToggleFavorite(id)
		if err != nil {
			return ErrMsg{Err: err, Context: "favorite"}
		}
		return ToggledMsg{ID: id, What: "favorite", Value: on}
	}
}

// ToggleNotifyCmd flips a streamer's go-live alert flag
func ToggleNotifyCmd(ctx context.Context, svc *service.RefreshService, id string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, requestTimeout)
		defer cancel()

		on, err := svc.ToggleNotify(ctx, id)
		if err != nil {
			return ErrMsg{Err: err, Context: "alerts"}
		}
		return ToggledMsg{ID: id, What: "alerts", Value: on}
	}
}

// LaunchCmd opens a channel in a player or the browser
func LaunchCmd(l Launcher, st domain.Streamer) tea.Cmd {
	return func() tea.Msg {
		url := "https://kick.com/" + st.Username
		if st.Loaded() {
			if st.Channel.IsLive && st.Channel.LiveURL != "" {
				url = st.Channel.LiveURL
			} else if st.Channel.ProfileURL != "" {
				url = st.Channel.ProfileURL
			}
		}
		if err := l.Launch(url, st.IsLive()); err != nil {
			return ErrMsg{Err: err, Context: "opening " + st.DisplayName()}
		}
		return LaunchedMsg{Name: st.DisplayName()}
	}
}

// LoadRequestsCmd lists pending requests
func LoadRequestsCmd(ctx context.Context, svc *service.RequestService) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, requestTimeout)
		defer cancel()

		reqs, err := svc.List(ctx)
		if err != nil {
			return ErrMsg{Err: err, Context: "loading requests"}
		}
		return RequestsLoadedMsg{Requests: reqs}
	}
}

// SubmitRequestCmd records a streamer request
func SubmitRequestCmd(ctx context.Context, svc *service.RequestService, input, tags, characters string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, requestTimeout)
		defer cancel()

		res, err := svc.Submit(ctx, input, tags, characters)
		if err != nil {
			return ErrMsg{Err: err, Context: "request"}
		}
		return RequestSubmittedMsg{Result: res}
	}
}

// AcceptRequestCmd turns a request into a tracked streamer
func AcceptRequestCmd(ctx context.Context, svc *service.RequestService, id string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, requestTimeout)
		defer cancel()

		st, err := svc.Accept(ctx, id)
		if err != nil {
			return ErrMsg{Err: err, Context: "accepting request"}
		}
		return RequestAcceptedMsg{Streamer: st}
	}
}

// DeleteRequestCmd removes a request
func DeleteRequestCmd(ctx context.Context, svc *service.RequestService, id string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, requestTimeout)
		defer cancel()

		if err := svc.Delete(ctx, id); err != nil {
			return ErrMsg{Err: err, Context: "deleting request"}
		}
		return RequestDeletedMsg{ID: id}
	}
}

// TickCmd returns a command that sends a tick after a delay
func TickCmd(delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(t time.Time) tea.Msg {
		return TickMsg{}
	})
}

// ClearStatusCmd returns a command that clears status after a delay
func ClearStatusCmd(delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(t time.Time) tea.Msg {
		return ClearStatusMsg{}
	})
}

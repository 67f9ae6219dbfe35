package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/mmcdole/kickboard/internal/domain"
)

// AlertObserver watches roster snapshots and sends a notification when a
// streamer with alerts enabled goes from offline to live. A streamer seen
// live on its first successful fetch does not trigger an alert.
type AlertObserver struct {
	notifier domain.Notifier
	logger   *slog.Logger

	mu   sync.Mutex
	live map[string]bool // Last known live state of loaded streamers
}

// NewAlertObserver creates an observer that alerts through notifier
func NewAlertObserver(notifier domain.Notifier, logger *slog.Logger) *AlertObserver {
	if logger == nil {
		logger = slog.Default()
	}
	return &AlertObserver{
		notifier: notifier,
		logger:   logger,
		live:     make(map[string]bool),
	}
}

func (a *AlertObserver) OnRoster(snapshot domain.RosterSnapshot) {
	var wentLive []domain.Streamer

	a.mu.Lock()
	for _, st := range snapshot.Streamers {
		// Failed and cleared streamers keep their last known state
		if !st.Loaded() {
			continue
		}
		was, known := a.live[st.ID]
		now := st.IsLive()
		a.live[st.ID] = now
		if known && !was && now && st.NotificationsEnabled {
			wentLive = append(wentLive, st)
		}
	}
	a.mu.Unlock()

	for _, st := range wentLive {
		title := fmt.Sprintf("%s is live", st.DisplayName())
		body := st.Channel.LiveTitle
		if st.Channel.LiveCategory != "" {
			body = fmt.Sprintf("%s (%s)", body, st.Channel.LiveCategory)
		}
		err := a.notifier.Notify(context.Background(), title, body)
		switch {
		case errors.Is(err, domain.ErrNotificationsDenied):
			a.logger.Debug("alert suppressed, permission not granted", "id", st.ID)
		case err != nil:
			a.logger.Warn("failed to send alert", "id", st.ID, "error", err)
		}
	}
}

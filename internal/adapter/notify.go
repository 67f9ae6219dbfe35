package adapter

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/mmcdole/kickboard/internal/domain"
	"golang.org/x/term"
)

// Notification is a delivered go-live alert
type Notification struct {
	Title string
	Body  string
	At    time.Time
}

// TerminalNotifier implements domain.Notifier for a terminal session.
// Alerts are logged and forwarded to a sink channel that the TUI drains.
type TerminalNotifier struct {
	mode   string
	prompt func() bool // decides "prompt" mode; defaults to stdout being a terminal
	sink   chan<- Notification
	logger *slog.Logger

	mu         sync.Mutex
	permission domain.Permission
}

// NewTerminalNotifier creates a notifier from configuration.
// sink may be nil when nobody displays alerts (e.g., --once mode).
func NewTerminalNotifier(cfg NotificationsConfig, sink chan<- Notification, logger *slog.Logger) *TerminalNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	n := &TerminalNotifier{
		mode:   strings.ToLower(cfg.Permission),
		sink:   sink,
		logger: logger,
		prompt: func() bool { return term.IsTerminal(int(os.Stdout.Fd())) },
	}
	switch n.mode {
	case "granted":
		n.permission = domain.PermissionGranted
	case "denied":
		n.permission = domain.PermissionDenied
	}
	return n
}

// SetPrompt replaces the decision used in "prompt" mode
func (n *TerminalNotifier) SetPrompt(prompt func() bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.prompt = prompt
}

func (n *TerminalNotifier) Permission() domain.Permission {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.permission
}

// RequestPermission decides once per session; later calls return the cached answer
func (n *TerminalNotifier) RequestPermission(ctx context.Context) (domain.Permission, error) {
	if err := ctx.Err(); err != nil {
		return domain.PermissionDefault, err
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	if n.permission != domain.PermissionDefault {
		return n.permission, nil
	}
	if n.prompt != nil && n.prompt() {
		n.permission = domain.PermissionGranted
	} else {
		n.permission = domain.PermissionDenied
	}
	n.logger.Info("notification permission decided", "permission", n.permission.String())
	return n.permission, nil
}

func (n *TerminalNotifier) Notify(ctx context.Context, title, body string) error {
	if n.Permission() != domain.PermissionGranted {
		return domain.ErrNotificationsDenied
	}

	n.logger.Info("notification", "title", title, "body", body)
	if n.sink == nil {
		return nil
	}

	select {
	case n.sink <- Notification{Title: title, Body: body, At: time.Now()}:
	case <-ctx.Done():
		return ctx.Err()
	default: // Non-blocking if nobody is draining
		n.logger.Debug("notification dropped, sink full", "title", title)
	}
	return nil
}

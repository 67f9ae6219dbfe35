package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all key bindings for the application
type KeyMap struct {
	// Actions
	Quit            key.Binding
	Help            key.Binding
	Escape          key.Binding
	Filter          key.Binding
	Refresh         key.Binding
	Retry           key.Binding
	RetryFailed     key.Binding
	Favorite        key.Binding
	Notify          key.Binding
	Request         key.Binding
	Requests        key.Binding
	Watch           key.Binding
	ToggleOffline   key.Binding
	ToggleInspector key.Binding
	ScrollDetails   key.Binding
	ScrollDetailsUp key.Binding
}

// DefaultKeyMap returns the default key bindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel/clear"),
		),
		Filter: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "filter"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh all"),
		),
		Retry: key.NewBinding(
			key.WithKeys("R", "enter"),
			key.WithHelp("R", "retry selected"),
		),
		RetryFailed: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "retry failed"),
		),
		Favorite: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "favorite"),
		),
		Notify: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "go-live alert"),
		),
		Request: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "request streamer"),
		),
		Requests: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "pending requests"),
		),
		Watch: key.NewBinding(
			key.WithKeys("w"),
			key.WithHelp("w", "watch/open channel"),
		),
		ToggleOffline: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "show/hide offline"),
		),
		ToggleInspector: key.NewBinding(
			key.WithKeys("i"),
			key.WithHelp("i", "toggle details"),
		),
		ScrollDetails: key.NewBinding(
			key.WithKeys("J", "shift+down"),
			key.WithHelp("J", "scroll details"),
		),
		ScrollDetailsUp: key.NewBinding(
			key.WithKeys("K", "shift+up"),
			key.WithHelp("K", "scroll details up"),
		),
	}
}

// Keys is the global key bindings instance
var Keys = DefaultKeyMap()

package domain

import "context"

// ChannelFetcher retrieves the current status of a single channel.
// It never fails: every failure is reported through Channel.Error.
type ChannelFetcher interface {
	FetchChannel(ctx context.Context, username string) Channel
}

// ChannelFetcherFunc adapts a plain function to ChannelFetcher
type ChannelFetcherFunc func(ctx context.Context, username string) Channel

// FetchChannel calls f(ctx, username)
func (f ChannelFetcherFunc) FetchChannel(ctx context.Context, username string) Channel {
	return f(ctx, username)
}

// FreshFetcher is implemented by fetchers that sit in front of a cache
// and can skip it for a manual retry
type FreshFetcher interface {
	FetchFresh(ctx context.Context, username string) Channel
}

// Permission is the state of the notification permission for the session
type Permission int

const (
	PermissionDefault Permission = iota // Not yet asked
	PermissionGranted
	PermissionDenied
)

// String returns the permission name
func (p Permission) String() string {
	switch p {
	case PermissionGranted:
		return "granted"
	case PermissionDenied:
		return "denied"
	default:
		return "default"
	}
}

// Notifier delivers go-live alerts to the user
type Notifier interface {
	// Permission returns the current permission without prompting
	Permission() Permission

	// RequestPermission asks for permission if it has not been decided yet
	RequestPermission(ctx context.Context) (Permission, error)

	// Notify delivers a single alert
	Notify(ctx context.Context, title, body string) error
}

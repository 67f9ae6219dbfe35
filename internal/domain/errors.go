package domain

import "errors"

// Sentinel errors for domain operations
var (
	// ErrStreamerNotFound indicates no streamer with the given ID is tracked
	ErrStreamerNotFound = errors.New("streamer not found")

	// ErrDuplicateStreamer indicates a streamer with the same ID is already tracked
	ErrDuplicateStreamer = errors.New("streamer already tracked")

	// ErrRequestNotFound indicates the streamer request does not exist
	ErrRequestNotFound = errors.New("streamer request not found")

	// ErrInvalidUsername indicates the username could not be parsed
	ErrInvalidUsername = errors.New("invalid kick username")

	// ErrNotificationsDenied indicates notification permission was refused
	ErrNotificationsDenied = errors.New("notification permission denied")
)

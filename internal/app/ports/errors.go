package ports

import "errors"

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
	// ErrChannelFailure marks a terminal transport fault on a participant channel.
	ErrChannelFailure = errors.New("channel failure")
)

package repositories

import "errors"

// Sentinel failures shared by every repository in this package. Callers
// branch with errors.Is.
var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrConflict indicates the attempted write lost to an existing row
	// under a uniqueness constraint, such as the (channel_id, subscriber_id)
	// pair on subscriptions.
	ErrConflict = errors.New("record conflict")
)

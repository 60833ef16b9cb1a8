package conversation

import "errors"

// Sentinel errors, part of the Store's public API; check with errors.Is.
var (
	// ErrNotFound indicates the requested conversation does not exist.
	ErrNotFound = errors.New("conversation not found")
)

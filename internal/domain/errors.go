package domain

import "errors"

var (
	// ErrNotFound is returned when a session does not exist or the caller
	// does not own it. Ownership mismatches deliberately look identical to
	// missing sessions so existence is never leaked.
	ErrNotFound = errors.New("session not found")

	// ErrSessionEnded is returned for mutations on an ended session.
	ErrSessionEnded = errors.New("session has ended")
)

package session

import "errors"

var (
	// ErrSessionNotFound is returned when no session record exists for an id
	ErrSessionNotFound = errors.New("session not found")
)

package prefs

import "errors"

var (
	// ErrNotFound means the user has never saved preferences.
	ErrNotFound = errors.New("preferences not found")
	// ErrInvalidInput rejects a malformed preferences payload.
	ErrInvalidInput = errors.New("invalid preferences")
)

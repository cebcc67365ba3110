package generated

import "errors"

var (
	// ErrNotFound indicates the generated resume does not exist or is not
	// visible to the caller.
	ErrNotFound = errors.New("generated resume not found")

	// ErrInvalidInput indicates validation or bad input.
	ErrInvalidInput = errors.New("invalid input")
)

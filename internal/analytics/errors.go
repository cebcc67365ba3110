package analytics

import "errors"

// ErrInvalidInput rejects a malformed feedback payload.
var ErrInvalidInput = errors.New("invalid feedback")

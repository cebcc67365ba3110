package pipeline

import "errors"

// ErrNotFound indicates the requested run does not exist for the user.
var ErrNotFound = errors.New("pipeline run not found")

package quota

import "errors"

// ErrLimitReached indicates the user exhausted the category's hourly window.
var ErrLimitReached = errors.New("quota limit reached")

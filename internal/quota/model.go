package quota

import "time"

// Category names a rate-limited operation class.
type Category string

const (
	CategoryFullModify  Category = "full-modify"
	CategoryQuickModify Category = "quick-modify"
)

const (
	limitFullModify  = 10
	limitQuickModify = 20
	limitDefault     = 100
)

// Window is one user's consumption inside a fixed clock-hour window.
type Window struct {
	UserID      string    `json:"userId"`
	Category    Category  `json:"category"`
	WindowStart time.Time `json:"windowStart"`
	Used        int       `json:"used"`
}

// Admission is the outcome of an admission attempt.
type Admission struct {
	Allowed   bool      `json:"allowed"`
	Remaining int       `json:"remaining"`
	ResetAt   time.Time `json:"resetAt"`
}

// Limit returns the hourly cap for a category.
func Limit(category Category) int {
	switch category {
	case CategoryFullModify:
		return limitFullModify
	case CategoryQuickModify:
		return limitQuickModify
	default:
		return limitDefault
	}
}

// windowStart floors t to the containing clock hour in UTC.
func windowStart(t time.Time) time.Time {
	return t.UTC().Truncate(time.Hour)
}

package analytics

import "context"

// Repo persists feedback records.
type Repo interface {
	Create(ctx context.Context, fb Feedback) error
	// ListByUser returns the user's feedback newest-first, at most limit
	// records.
	ListByUser(ctx context.Context, userID string, limit int) ([]Feedback, error)
}

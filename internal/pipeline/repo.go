package pipeline

import "context"

// Repo persists pipeline runs.
type Repo interface {
	Create(ctx context.Context, run Run) error
	Update(ctx context.Context, run Run) error
	GetByID(ctx context.Context, userID, id string) (Run, error)
	ListByUser(ctx context.Context, userID string, limit int) ([]Run, error)
}

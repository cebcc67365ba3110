package generated

import (
	"context"
	"time"
)

// Repo defines persistence operations for generated resumes.
type Repo interface {
	Create(ctx context.Context, resume GeneratedResume) error
	GetByID(ctx context.Context, userID, id string) (GeneratedResume, error)
	ListByUser(ctx context.Context, userID string, filter ListFilter) ([]GeneratedResume, int, error)
	// Delete removes the record. Deleting a missing record returns ErrNotFound.
	Delete(ctx context.Context, userID, id string) (GeneratedResume, error)
	// ListExpired returns records whose expires_at precedes cutoff, across all users.
	ListExpired(ctx context.Context, cutoff time.Time, limit int) ([]GeneratedResume, error)
	// DeleteRecord removes a record without ownership checks; missing rows are a no-op.
	DeleteRecord(ctx context.Context, id string) error
}

package resumes

import "context"

// Repo defines persistence for master resumes. Each user keeps at most one.
type Repo interface {
	Create(ctx context.Context, resume MasterResume) error
	GetByUser(ctx context.Context, userID string) (MasterResume, error)
	// Update persists resume if expectedVersion still matches the stored row,
	// bumping the version. Returns ErrVersionConflict otherwise.
	Update(ctx context.Context, resume MasterResume, expectedVersion int) (MasterResume, error)
	Delete(ctx context.Context, userID string) error
}

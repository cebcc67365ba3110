package uploads

import (
	"context"
	"time"
)

// Repo persists temp upload records.
type Repo interface {
	Create(ctx context.Context, upload TempUpload) error
	GetByID(ctx context.Context, userID, id string) (TempUpload, error)
	// ListExpired returns up to limit records with ExpiresAt before cutoff,
	// oldest first.
	ListExpired(ctx context.Context, cutoff time.Time, limit int) ([]TempUpload, error)
	// DeleteRecord removes a record by id. Missing records are a no-op.
	DeleteRecord(ctx context.Context, id string) error
}

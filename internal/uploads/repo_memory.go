package uploads

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo is an in-memory Repo used when no database is configured.
type MemoryRepo struct {
	mu      sync.RWMutex
	uploads map[string]TempUpload
}

// NewMemoryRepo constructs an empty MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{uploads: map[string]TempUpload{}}
}

// Create stores a new upload record.
func (r *MemoryRepo) Create(ctx context.Context, upload TempUpload) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.uploads[upload.ID] = upload
	return nil
}

// GetByID returns an upload owned by the user.
func (r *MemoryRepo) GetByID(ctx context.Context, userID, id string) (TempUpload, error) {
	if err := ctx.Err(); err != nil {
		return TempUpload{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	upload, ok := r.uploads[id]
	if !ok || upload.UserID != userID {
		return TempUpload{}, ErrNotFound
	}
	return upload, nil
}

// ListExpired returns expired records oldest-first.
func (r *MemoryRepo) ListExpired(ctx context.Context, cutoff time.Time, limit int) ([]TempUpload, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 100
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []TempUpload
	for _, upload := range r.uploads {
		if upload.ExpiresAt.Before(cutoff) {
			out = append(out, upload)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ExpiresAt.Before(out[j].ExpiresAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// DeleteRecord removes a record; missing records are a no-op.
func (r *MemoryRepo) DeleteRecord(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.uploads, id)
	return nil
}

var _ Repo = (*MemoryRepo)(nil)

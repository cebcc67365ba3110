package resumes

import (
	"context"
	"sync"
	"time"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string]MasterResume // userId -> resume
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{data: make(map[string]MasterResume)}
}

// Create stores a new master resume; a user may only have one.
func (r *MemoryRepo) Create(ctx context.Context, resume MasterResume) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[resume.UserID]; ok {
		return ErrAlreadyExists
	}
	r.data[resume.UserID] = resume
	return nil
}

// GetByUser returns the user's master resume.
func (r *MemoryRepo) GetByUser(ctx context.Context, userID string) (MasterResume, error) {
	if err := ctx.Err(); err != nil {
		return MasterResume{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	resume, ok := r.data[userID]
	if !ok {
		return MasterResume{}, ErrNotFound
	}
	return resume, nil
}

// Update replaces the stored resume if the version matches.
func (r *MemoryRepo) Update(ctx context.Context, resume MasterResume, expectedVersion int) (MasterResume, error) {
	if err := ctx.Err(); err != nil {
		return MasterResume{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.data[resume.UserID]
	if !ok {
		return MasterResume{}, ErrNotFound
	}
	if current.Version != expectedVersion {
		return MasterResume{}, ErrVersionConflict
	}
	resume.ID = current.ID
	resume.CreatedAt = current.CreatedAt
	resume.Version = current.Version + 1
	resume.UpdatedAt = time.Now().UTC()
	r.data[resume.UserID] = resume
	return resume, nil
}

// Delete removes the user's master resume, if any.
func (r *MemoryRepo) Delete(ctx context.Context, userID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[userID]; !ok {
		return ErrNotFound
	}
	delete(r.data, userID)
	return nil
}

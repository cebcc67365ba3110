package prefs

import (
	"context"
	"sync"
)

// MemoryRepo is an in-memory Repo used when no database is configured.
type MemoryRepo struct {
	mu    sync.RWMutex
	prefs map[string]Preferences
}

// NewMemoryRepo constructs an empty MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{prefs: map[string]Preferences{}}
}

// Get returns the user's saved preferences.
func (r *MemoryRepo) Get(ctx context.Context, userID string) (Preferences, error) {
	if err := ctx.Err(); err != nil {
		return Preferences{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.prefs[userID]
	if !ok {
		return Preferences{}, ErrNotFound
	}
	return p, nil
}

// Put upserts the user's preferences.
func (r *MemoryRepo) Put(ctx context.Context, userID string, p Preferences) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prefs[userID] = p
	return nil
}

var _ Repo = (*MemoryRepo)(nil)

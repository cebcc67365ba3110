package generated

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string]GeneratedResume // id -> record
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{data: make(map[string]GeneratedResume)}
}

// Create stores a generated resume record.
func (r *MemoryRepo) Create(ctx context.Context, resume GeneratedResume) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[resume.ID] = resume
	return nil
}

// GetByID returns a record owned by the user.
func (r *MemoryRepo) GetByID(ctx context.Context, userID, id string) (GeneratedResume, error) {
	if err := ctx.Err(); err != nil {
		return GeneratedResume{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	resume, ok := r.data[id]
	if !ok || resume.UserID != userID {
		return GeneratedResume{}, ErrNotFound
	}
	return resume, nil
}

// ListByUser returns one page newest-first plus the filtered total.
func (r *MemoryRepo) ListByUser(ctx context.Context, userID string, filter ListFilter) ([]GeneratedResume, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	r.mu.RLock()
	var matched []GeneratedResume
	for _, resume := range r.data {
		if resume.UserID != userID {
			continue
		}
		if filter.Company != "" && !strings.EqualFold(resume.CompanyName, filter.Company) {
			continue
		}
		matched = append(matched, resume)
	}
	r.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID > matched[j].ID
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	if offset >= total {
		return []GeneratedResume{}, total, nil
	}
	end := total
	if filter.Limit > 0 && offset+filter.Limit < end {
		end = offset + filter.Limit
	}
	return matched[offset:end], total, nil
}

// Delete removes a record owned by the user and returns it.
func (r *MemoryRepo) Delete(ctx context.Context, userID, id string) (GeneratedResume, error) {
	if err := ctx.Err(); err != nil {
		return GeneratedResume{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	resume, ok := r.data[id]
	if !ok || resume.UserID != userID {
		return GeneratedResume{}, ErrNotFound
	}
	delete(r.data, id)
	return resume, nil
}

// ListExpired returns expired records oldest-first.
func (r *MemoryRepo) ListExpired(ctx context.Context, cutoff time.Time, limit int) ([]GeneratedResume, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	var out []GeneratedResume
	for _, resume := range r.data {
		if resume.ExpiresAt.Before(cutoff) {
			out = append(out, resume)
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ExpiresAt.Before(out[j].ExpiresAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// DeleteRecord removes a record by id; missing rows are a no-op.
func (r *MemoryRepo) DeleteRecord(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.data, id)
	return nil
}

var _ Repo = (*MemoryRepo)(nil)

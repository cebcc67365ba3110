package quota

import (
	"context"
	"time"
)

type store interface {
	Admit(ctx context.Context, userID string, category Category) (Admission, error)
	Peek(ctx context.Context, userID string, category Category) (Admission, error)
}

// Service enforces fixed hourly request windows per user and category.
type Service struct {
	store store
}

// NewService constructs a Service with an in-memory store.
func NewService() *Service {
	return &Service{store: newMemoryStore(time.Now)}
}

// NewServiceWithClock constructs an in-memory Service with an injected clock.
func NewServiceWithClock(now func() time.Time) *Service {
	return &Service{store: newMemoryStore(now)}
}

// NewPostgresService constructs a Service backed by Postgres.
func NewPostgresService(pgStore store) *Service {
	return &Service{store: pgStore}
}

// TryAdmit atomically checks and consumes one unit of the category's hourly
// window. When the window is exhausted the returned Admission carries
// Allowed=false and the caller decides how to surface the refusal.
func (s *Service) TryAdmit(ctx context.Context, userID string, category Category) (Admission, error) {
	return s.store.Admit(ctx, userID, category)
}

// Remaining reports the window state without consuming.
func (s *Service) Remaining(ctx context.Context, userID string, category Category) (Admission, error) {
	return s.store.Peek(ctx, userID, category)
}

package quota

import (
	"context"
	"sync"
	"time"
)

// staleAfter is how long an untouched window entry survives before lazy GC.
const staleAfter = 2 * time.Hour

type windowEntry struct {
	window  Window
	touched time.Time
}

type memoryStore struct {
	mu      sync.Mutex
	entries map[string]*windowEntry
	now     func() time.Time
}

func newMemoryStore(now func() time.Time) *memoryStore {
	if now == nil {
		now = time.Now
	}
	return &memoryStore{
		entries: make(map[string]*windowEntry),
		now:     now,
	}
}

func entryKey(userID string, category Category) string {
	return userID + "\x00" + string(category)
}

// entryLocked returns the per-key entry, creating it if absent, and drops
// entries untouched for longer than staleAfter. Callers hold s.mu for the
// whole admission, so an evicted entry can never still be counted against.
func (s *memoryStore) entryLocked(userID string, category Category, now time.Time) *windowEntry {
	for key, e := range s.entries {
		if now.Sub(e.touched) > staleAfter {
			delete(s.entries, key)
		}
	}
	key := entryKey(userID, category)
	e, ok := s.entries[key]
	if !ok {
		e = &windowEntry{
			window:  Window{UserID: userID, Category: category},
			touched: now,
		}
		s.entries[key] = e
	}
	return e
}

func (s *memoryStore) Admit(ctx context.Context, userID string, category Category) (Admission, error) {
	if err := ctx.Err(); err != nil {
		return Admission{}, err
	}
	limit := Limit(category)
	now := s.now().UTC()
	start := windowStart(now)

	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.entryLocked(userID, category, now)
	if !e.window.WindowStart.Equal(start) {
		e.window.WindowStart = start
		e.window.Used = 0
	}
	e.touched = now
	resetAt := start.Add(time.Hour)
	if e.window.Used >= limit {
		return Admission{Allowed: false, Remaining: 0, ResetAt: resetAt}, nil
	}
	e.window.Used++
	return Admission{Allowed: true, Remaining: limit - e.window.Used, ResetAt: resetAt}, nil
}

func (s *memoryStore) Peek(ctx context.Context, userID string, category Category) (Admission, error) {
	if err := ctx.Err(); err != nil {
		return Admission{}, err
	}
	limit := Limit(category)
	now := s.now().UTC()
	start := windowStart(now)

	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.entryLocked(userID, category, now)
	if !e.window.WindowStart.Equal(start) {
		e.window.WindowStart = start
		e.window.Used = 0
	}
	e.touched = now
	remaining := limit - e.window.Used
	if remaining < 0 {
		remaining = 0
	}
	return Admission{Allowed: remaining > 0, Remaining: remaining, ResetAt: start.Add(time.Hour)}, nil
}

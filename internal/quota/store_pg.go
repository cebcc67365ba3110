package quota

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

const selectWindowForUpdate = `
SELECT window_start, used FROM quota_windows WHERE user_id = $1 AND category = $2 FOR UPDATE`

type pgStore struct {
	DB  *sql.DB
	now func() time.Time
}

// NewPGStore constructs a Postgres-backed quota store.
func NewPGStore(db *sql.DB) *pgStore {
	return &pgStore{DB: db, now: time.Now}
}

func (s *pgStore) Admit(ctx context.Context, userID string, category Category) (Admission, error) {
	return s.admit(ctx, userID, category, true)
}

func (s *pgStore) Peek(ctx context.Context, userID string, category Category) (Admission, error) {
	return s.admit(ctx, userID, category, false)
}

// admit locks the (user, category) row, rolls the window forward if the clock
// hour changed, and optionally consumes one unit.
func (s *pgStore) admit(ctx context.Context, userID string, category Category, consume bool) (Admission, error) {
	limit := Limit(category)
	now := s.now().UTC()
	start := windowStart(now)
	resetAt := start.Add(time.Hour)

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return Admission{}, err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	w := Window{UserID: userID, Category: category}
	row := tx.QueryRowContext(ctx, selectWindowForUpdate, userID, string(category))
	err = row.Scan(&w.WindowStart, &w.Used)
	if errors.Is(err, sql.ErrNoRows) {
		// Two first-ever admissions can race here: both miss the select,
		// both insert. DO NOTHING lets the loser proceed, and the re-read
		// locks whichever row won.
		if _, err = tx.ExecContext(ctx, `
INSERT INTO quota_windows (user_id, category, window_start, used) VALUES ($1, $2, $3, 0)
ON CONFLICT (user_id, category) DO NOTHING`,
			userID, string(category), start); err != nil {
			return Admission{}, err
		}
		row = tx.QueryRowContext(ctx, selectWindowForUpdate, userID, string(category))
		err = row.Scan(&w.WindowStart, &w.Used)
	}
	if err != nil {
		return Admission{}, err
	}
	if !w.WindowStart.UTC().Equal(start) {
		w.WindowStart = start
		w.Used = 0
		if _, err = tx.ExecContext(ctx, `
UPDATE quota_windows SET window_start = $1, used = 0 WHERE user_id = $2 AND category = $3`,
			start, userID, string(category)); err != nil {
			return Admission{}, err
		}
	}

	used := w.Used
	if used >= limit {
		if err = tx.Commit(); err != nil {
			return Admission{}, err
		}
		return Admission{Allowed: false, Remaining: 0, ResetAt: resetAt}, nil
	}

	if consume {
		used++
		if _, err = tx.ExecContext(ctx, `
UPDATE quota_windows SET used = $1 WHERE user_id = $2 AND category = $3`,
			used, userID, string(category)); err != nil {
			return Admission{}, err
		}
	}
	if err = tx.Commit(); err != nil {
		return Admission{}, err
	}
	return Admission{Allowed: true, Remaining: limit - used, ResetAt: resetAt}, nil
}

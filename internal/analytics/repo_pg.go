package analytics

import (
	"context"
	"database/sql"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const columns = `id, user_id, resume_id, got_interview, rating, comment, submitted_at`

// Create inserts a feedback record.
func (r *PGRepo) Create(ctx context.Context, fb Feedback) error {
	const query = `
INSERT INTO resume_feedback (` + columns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.DB.ExecContext(ctx, query,
		fb.ID, fb.UserID, fb.ResumeID, fb.GotInterview, fb.Rating, fb.Comment, fb.SubmittedAt)
	return err
}

// ListByUser returns the user's feedback newest-first.
func (r *PGRepo) ListByUser(ctx context.Context, userID string, limit int) ([]Feedback, error) {
	if limit <= 0 {
		limit = 500
	}
	const query = `
SELECT ` + columns + `
FROM resume_feedback
WHERE user_id = $1
ORDER BY submitted_at DESC, id DESC
LIMIT $2`
	rows, err := r.DB.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Feedback
	for rows.Next() {
		var fb Feedback
		if err := rows.Scan(&fb.ID, &fb.UserID, &fb.ResumeID, &fb.GotInterview, &fb.Rating, &fb.Comment, &fb.SubmittedAt); err != nil {
			return nil, err
		}
		out = append(out, fb)
	}
	return out, rows.Err()
}

var _ Repo = (*PGRepo)(nil)

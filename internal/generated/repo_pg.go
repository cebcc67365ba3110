package generated

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const columns = `id, user_id, job_title, company_name, job_posting, template_id, output_format, storage_key, content_type, size_bytes, match_score, created_at, expires_at`

// Create inserts a generated resume record.
func (r *PGRepo) Create(ctx context.Context, resume GeneratedResume) error {
	const query = `
INSERT INTO generated_resumes (` + columns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.DB.ExecContext(ctx, query,
		resume.ID,
		resume.UserID,
		resume.JobTitle,
		resume.CompanyName,
		resume.JobPosting,
		resume.TemplateID,
		resume.OutputFormat,
		resume.StorageKey,
		resume.ContentType,
		resume.SizeBytes,
		resume.MatchScore,
		resume.CreatedAt,
		resume.ExpiresAt,
	)
	return err
}

// GetByID returns a record owned by the user.
func (r *PGRepo) GetByID(ctx context.Context, userID, id string) (GeneratedResume, error) {
	const query = `
SELECT ` + columns + `
FROM generated_resumes
WHERE id = $1 AND user_id = $2`
	resume, err := scanOne(r.DB.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return GeneratedResume{}, ErrNotFound
		}
		return GeneratedResume{}, err
	}
	return resume, nil
}

// ListByUser returns one page newest-first plus the filtered total.
func (r *PGRepo) ListByUser(ctx context.Context, userID string, filter ListFilter) ([]GeneratedResume, int, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	var total int
	const countQuery = `
SELECT COUNT(*) FROM generated_resumes
WHERE user_id = $1 AND ($2 = '' OR LOWER(company_name) = LOWER($2))`
	if err := r.DB.QueryRowContext(ctx, countQuery, userID, filter.Company).Scan(&total); err != nil {
		return nil, 0, err
	}

	const query = `
SELECT ` + columns + `
FROM generated_resumes
WHERE user_id = $1 AND ($2 = '' OR LOWER(company_name) = LOWER($2))
ORDER BY created_at DESC, id DESC
LIMIT $3 OFFSET $4`
	rows, err := r.DB.QueryContext(ctx, query, userID, filter.Company, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := []GeneratedResume{}
	for rows.Next() {
		resume, err := scanOne(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, resume)
	}
	return out, total, rows.Err()
}

// Delete removes a record owned by the user and returns it.
func (r *PGRepo) Delete(ctx context.Context, userID, id string) (GeneratedResume, error) {
	const query = `
DELETE FROM generated_resumes
WHERE id = $1 AND user_id = $2
RETURNING ` + columns
	resume, err := scanOne(r.DB.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return GeneratedResume{}, ErrNotFound
		}
		return GeneratedResume{}, err
	}
	return resume, nil
}

// ListExpired returns expired records oldest-first.
func (r *PGRepo) ListExpired(ctx context.Context, cutoff time.Time, limit int) ([]GeneratedResume, error) {
	if limit <= 0 {
		limit = 100
	}
	const query = `
SELECT ` + columns + `
FROM generated_resumes
WHERE expires_at < $1
ORDER BY expires_at ASC
LIMIT $2`
	rows, err := r.DB.QueryContext(ctx, query, cutoff, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []GeneratedResume
	for rows.Next() {
		resume, err := scanOne(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, resume)
	}
	return out, rows.Err()
}

// DeleteRecord removes a record by id; missing rows are a no-op.
func (r *PGRepo) DeleteRecord(ctx context.Context, id string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM generated_resumes WHERE id = $1`, id)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOne(row rowScanner) (GeneratedResume, error) {
	var resume GeneratedResume
	err := row.Scan(
		&resume.ID,
		&resume.UserID,
		&resume.JobTitle,
		&resume.CompanyName,
		&resume.JobPosting,
		&resume.TemplateID,
		&resume.OutputFormat,
		&resume.StorageKey,
		&resume.ContentType,
		&resume.SizeBytes,
		&resume.MatchScore,
		&resume.CreatedAt,
		&resume.ExpiresAt,
	)
	return resume, err
}

var _ Repo = (*PGRepo)(nil)

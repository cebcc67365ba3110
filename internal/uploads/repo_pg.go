package uploads

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

const columns = `id, user_id, file_name, content_type, size_bytes, storage_key, created_at, expires_at`

// Create inserts an upload record.
func (r *PGRepo) Create(ctx context.Context, upload TempUpload) error {
	const query = `
INSERT INTO temp_uploads (` + columns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.DB.ExecContext(ctx, query,
		upload.ID, upload.UserID, upload.FileName, upload.ContentType,
		upload.SizeBytes, upload.StorageKey, upload.CreatedAt, upload.ExpiresAt)
	return err
}

// GetByID returns an upload owned by the user.
func (r *PGRepo) GetByID(ctx context.Context, userID, id string) (TempUpload, error) {
	const query = `
SELECT ` + columns + `
FROM temp_uploads
WHERE id = $1 AND user_id = $2`
	upload, err := scanUpload(r.DB.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return TempUpload{}, ErrNotFound
		}
		return TempUpload{}, err
	}
	return upload, nil
}

// ListExpired returns expired records oldest-first.
func (r *PGRepo) ListExpired(ctx context.Context, cutoff time.Time, limit int) ([]TempUpload, error) {
	if limit <= 0 {
		limit = 100
	}
	const query = `
SELECT ` + columns + `
FROM temp_uploads
WHERE expires_at < $1
ORDER BY expires_at ASC
LIMIT $2`
	rows, err := r.DB.QueryContext(ctx, query, cutoff, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TempUpload
	for rows.Next() {
		upload, err := scanUpload(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, upload)
	}
	return out, rows.Err()
}

// DeleteRecord removes a record; missing records are a no-op.
func (r *PGRepo) DeleteRecord(ctx context.Context, id string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM temp_uploads WHERE id = $1`, id)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUpload(row rowScanner) (TempUpload, error) {
	var upload TempUpload
	err := row.Scan(
		&upload.ID, &upload.UserID, &upload.FileName, &upload.ContentType,
		&upload.SizeBytes, &upload.StorageKey, &upload.CreatedAt, &upload.ExpiresAt)
	return upload, err
}

var _ Repo = (*PGRepo)(nil)

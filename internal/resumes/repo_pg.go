package resumes

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"
)

// PGRepo implements Repo using Postgres. Structured data lives in a JSONB column.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a new master resume.
func (r *PGRepo) Create(ctx context.Context, resume MasterResume) error {
	data, err := json.Marshal(resume.Data)
	if err != nil {
		return err
	}
	source, err := json.Marshal(resume.Source)
	if err != nil {
		return err
	}
	const query = `
INSERT INTO master_resumes (id, user_id, structured_data, source_type, source_metadata, version, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (user_id) DO NOTHING`
	res, err := r.DB.ExecContext(ctx, query,
		resume.ID,
		resume.UserID,
		data,
		string(resume.SourceType),
		source,
		resume.Version,
		resume.CreatedAt,
		resume.UpdatedAt,
	)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrAlreadyExists
	}
	return nil
}

// GetByUser returns the user's master resume.
func (r *PGRepo) GetByUser(ctx context.Context, userID string) (MasterResume, error) {
	const query = `
SELECT id, user_id, structured_data, source_type, source_metadata, version, created_at, updated_at
FROM master_resumes
WHERE user_id = $1`
	var resume MasterResume
	var rawData, rawSource []byte
	var sourceType string
	err := r.DB.QueryRowContext(ctx, query, userID).Scan(
		&resume.ID,
		&resume.UserID,
		&rawData,
		&sourceType,
		&rawSource,
		&resume.Version,
		&resume.CreatedAt,
		&resume.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return MasterResume{}, ErrNotFound
		}
		return MasterResume{}, err
	}
	if err := json.Unmarshal(rawData, &resume.Data); err != nil {
		return MasterResume{}, err
	}
	if len(rawSource) > 0 {
		if err := json.Unmarshal(rawSource, &resume.Source); err != nil {
			return MasterResume{}, err
		}
	}
	resume.SourceType = SourceType(sourceType)
	return resume, nil
}

// Update replaces the stored resume if the version matches, bumping it.
func (r *PGRepo) Update(ctx context.Context, resume MasterResume, expectedVersion int) (MasterResume, error) {
	data, err := json.Marshal(resume.Data)
	if err != nil {
		return MasterResume{}, err
	}
	source, err := json.Marshal(resume.Source)
	if err != nil {
		return MasterResume{}, err
	}
	now := time.Now().UTC()
	const query = `
UPDATE master_resumes
SET structured_data = $1, source_type = $2, source_metadata = $3, version = version + 1, updated_at = $4
WHERE user_id = $5 AND version = $6
RETURNING id, version, created_at`
	err = r.DB.QueryRowContext(ctx, query,
		data,
		string(resume.SourceType),
		source,
		now,
		resume.UserID,
		expectedVersion,
	).Scan(&resume.ID, &resume.Version, &resume.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Distinguish a missing row from a lost version race.
			if _, getErr := r.GetByUser(ctx, resume.UserID); errors.Is(getErr, ErrNotFound) {
				return MasterResume{}, ErrNotFound
			}
			return MasterResume{}, ErrVersionConflict
		}
		return MasterResume{}, err
	}
	resume.UpdatedAt = now
	return resume, nil
}

// Delete removes the user's master resume.
func (r *PGRepo) Delete(ctx context.Context, userID string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM master_resumes WHERE user_id = $1`, userID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

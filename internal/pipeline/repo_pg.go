package pipeline

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"resume-tailor/internal/quota"
)

// PGRepo implements Repo using Postgres. Stage outputs are stored as JSONB
// snapshots so a run's history survives restarts.
type PGRepo struct {
	DB *sql.DB
}

const runColumns = `id, user_id, category, status, failed_stage, failure_reason, posting, analysis, gap_report, plan, match_score, result_id, started_at, updated_at`

// Create inserts a run.
func (r *PGRepo) Create(ctx context.Context, run Run) error {
	args, err := encodeRun(run)
	if err != nil {
		return err
	}
	const query = `
INSERT INTO pipeline_runs (` + runColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err = r.DB.ExecContext(ctx, query, args...)
	return err
}

// Update overwrites a run's mutable fields.
func (r *PGRepo) Update(ctx context.Context, run Run) error {
	args, err := encodeRun(run)
	if err != nil {
		return err
	}
	const query = `
UPDATE pipeline_runs
SET category = $3, status = $4, failed_stage = $5, failure_reason = $6,
    posting = $7, analysis = $8, gap_report = $9, plan = $10,
    match_score = $11, result_id = $12, started_at = $13, updated_at = $14
WHERE id = $1 AND user_id = $2`
	res, err := r.DB.ExecContext(ctx, query, args...)
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

// GetByID returns a run owned by the user.
func (r *PGRepo) GetByID(ctx context.Context, userID, id string) (Run, error) {
	const query = `
SELECT ` + runColumns + `
FROM pipeline_runs
WHERE id = $1 AND user_id = $2`
	run, err := scanRun(r.DB.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, ErrNotFound
		}
		return Run{}, err
	}
	return run, nil
}

// ListByUser returns the user's runs newest-first.
func (r *PGRepo) ListByUser(ctx context.Context, userID string, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 50
	}
	const query = `
SELECT ` + runColumns + `
FROM pipeline_runs
WHERE user_id = $1
ORDER BY started_at DESC, id DESC
LIMIT $2`
	rows, err := r.DB.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, run)
	}
	return out, rows.Err()
}

func encodeRun(run Run) ([]any, error) {
	posting, err := json.Marshal(run.Posting)
	if err != nil {
		return nil, fmt.Errorf("marshal posting: %w", err)
	}
	analysis, err := marshalNullable(run.Analysis)
	if err != nil {
		return nil, fmt.Errorf("marshal analysis: %w", err)
	}
	gapReport, err := marshalNullable(run.GapReport)
	if err != nil {
		return nil, fmt.Errorf("marshal gap report: %w", err)
	}
	plan, err := marshalNullable(run.Plan)
	if err != nil {
		return nil, fmt.Errorf("marshal plan: %w", err)
	}
	return []any{
		run.ID, run.UserID, string(run.Category), string(run.Status),
		string(run.FailedStage), run.FailureReason, posting, analysis,
		gapReport, plan, run.MatchScore, run.ResultID,
		run.StartedAt, run.UpdatedAt,
	}, nil
}

func marshalNullable(v any) (any, error) {
	switch typed := v.(type) {
	case nil:
		return nil, nil
	default:
		data, err := json.Marshal(typed)
		if err != nil {
			return nil, err
		}
		return data, nil
	}
}

type runScanner interface {
	Scan(dest ...any) error
}

func scanRun(row runScanner) (Run, error) {
	var (
		run                       Run
		category, status, stage   string
		posting                   []byte
		analysis, gapReport, plan []byte
	)
	err := row.Scan(
		&run.ID, &run.UserID, &category, &status, &stage,
		&run.FailureReason, &posting, &analysis, &gapReport, &plan,
		&run.MatchScore, &run.ResultID, &run.StartedAt, &run.UpdatedAt,
	)
	if err != nil {
		return Run{}, err
	}
	run.Category = quota.Category(category)
	run.Status = Status(status)
	run.FailedStage = Stage(stage)

	if len(posting) > 0 {
		if err := json.Unmarshal(posting, &run.Posting); err != nil {
			return Run{}, fmt.Errorf("unmarshal posting: %w", err)
		}
	}
	if err := unmarshalNullable(analysis, &run.Analysis); err != nil {
		return Run{}, fmt.Errorf("unmarshal analysis: %w", err)
	}
	if err := unmarshalNullable(gapReport, &run.GapReport); err != nil {
		return Run{}, fmt.Errorf("unmarshal gap report: %w", err)
	}
	if err := unmarshalNullable(plan, &run.Plan); err != nil {
		return Run{}, fmt.Errorf("unmarshal plan: %w", err)
	}
	return run, nil
}

func unmarshalNullable[T any](data []byte, dst **T) error {
	if len(data) == 0 {
		return nil
	}
	var out T
	if err := json.Unmarshal(data, &out); err != nil {
		return err
	}
	*dst = &out
	return nil
}

var _ Repo = (*PGRepo)(nil)

package prefs

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Get returns the user's saved preferences.
func (r *PGRepo) Get(ctx context.Context, userID string) (Preferences, error) {
	const query = `
SELECT default_template, always_include_sections, default_tone, color_scheme, updated_at
FROM user_preferences
WHERE user_id = $1`
	var (
		p        Preferences
		sections []byte
	)
	err := r.DB.QueryRowContext(ctx, query, userID).Scan(
		&p.DefaultTemplate, &sections, &p.DefaultTone, &p.ColorScheme, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Preferences{}, ErrNotFound
		}
		return Preferences{}, err
	}
	if err := json.Unmarshal(sections, &p.AlwaysIncludeSections); err != nil {
		return Preferences{}, fmt.Errorf("decode sections: %w", err)
	}
	return p, nil
}

// Put upserts the user's preferences.
func (r *PGRepo) Put(ctx context.Context, userID string, p Preferences) error {
	sections, err := json.Marshal(p.AlwaysIncludeSections)
	if err != nil {
		return fmt.Errorf("encode sections: %w", err)
	}
	const query = `
INSERT INTO user_preferences (user_id, default_template, always_include_sections, default_tone, color_scheme, updated_at)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (user_id) DO UPDATE SET
    default_template = EXCLUDED.default_template,
    always_include_sections = EXCLUDED.always_include_sections,
    default_tone = EXCLUDED.default_tone,
    color_scheme = EXCLUDED.color_scheme,
    updated_at = EXCLUDED.updated_at`
	_, err = r.DB.ExecContext(ctx, query,
		userID, p.DefaultTemplate, sections, p.DefaultTone, p.ColorScheme, p.UpdatedAt)
	return err
}

var _ Repo = (*PGRepo)(nil)

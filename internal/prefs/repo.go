package prefs

import "context"

// Repo persists one preferences row per user.
type Repo interface {
	// Get returns the user's saved preferences, or ErrNotFound when the
	// user has never saved any.
	Get(ctx context.Context, userID string) (Preferences, error)
	// Put upserts the user's preferences.
	Put(ctx context.Context, userID string, p Preferences) error
}

package prefs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"resume-tailor/internal/render"
)

// Service reads and validates user preferences.
type Service struct {
	Repo Repo

	now func() time.Time
}

// NewService constructs a Service.
func NewService(repo Repo) *Service {
	return &Service{Repo: repo, now: time.Now}
}

// Get returns the user's preferences, falling back to the shipped defaults
// when the user has never saved any.
func (s *Service) Get(ctx context.Context, userID string) (Preferences, error) {
	p, err := s.Repo.Get(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return Defaults(), nil
	}
	if err != nil {
		return Preferences{}, err
	}
	return p, nil
}

// Update validates and saves the user's preferences. Blank fields fall back
// to the shipped defaults before validation, so a partial payload is fine.
func (s *Service) Update(ctx context.Context, userID string, p Preferences) (Preferences, error) {
	defaults := Defaults()
	if p.DefaultTemplate == "" {
		p.DefaultTemplate = defaults.DefaultTemplate
	}
	if p.DefaultTone == "" {
		p.DefaultTone = defaults.DefaultTone
	}
	if p.ColorScheme == "" {
		p.ColorScheme = defaults.ColorScheme
	}
	if len(p.AlwaysIncludeSections) == 0 {
		p.AlwaysIncludeSections = defaults.AlwaysIncludeSections
	}

	if !render.KnownTemplate(p.DefaultTemplate) {
		return Preferences{}, fmt.Errorf("%w: unknown template %q", ErrInvalidInput, p.DefaultTemplate)
	}
	if !knownTone(p.DefaultTone) {
		return Preferences{}, fmt.Errorf("%w: unknown tone %q", ErrInvalidInput, p.DefaultTone)
	}

	p.UpdatedAt = s.now().UTC()
	if err := s.Repo.Put(ctx, userID, p); err != nil {
		return Preferences{}, err
	}
	return p, nil
}

func knownTone(tone string) bool {
	for _, t := range allowedTones {
		if t == tone {
			return true
		}
	}
	return false
}

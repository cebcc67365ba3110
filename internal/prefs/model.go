package prefs

import (
	"time"

	"resume-tailor/internal/render"
)

// Tones a user may pick as their default rewrite voice.
var allowedTones = []string{"professional", "technical", "creative", "corporate"}

// Preferences are a user's saved defaults for resume generation. They are
// returned as-is until the user saves their own.
type Preferences struct {
	DefaultTemplate       string    `json:"default_template"`
	AlwaysIncludeSections []string  `json:"always_include_sections"`
	DefaultTone           string    `json:"default_tone"`
	ColorScheme           string    `json:"color_scheme"`
	UpdatedAt             time.Time `json:"updated_at,omitempty"`
}

// Defaults returns the preferences served before a user saves any.
func Defaults() Preferences {
	return Preferences{
		DefaultTemplate:       render.DefaultTemplateID,
		AlwaysIncludeSections: []string{"education", "experience"},
		DefaultTone:           "professional",
		ColorScheme:           "blue",
	}
}

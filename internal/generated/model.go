package generated

import "time"

// ArtifactTTL is how long a generated resume survives before the retention
// sweep removes it.
const ArtifactTTL = 30 * 24 * time.Hour

// GeneratedResume is the terminal artifact of a tailoring run.
type GeneratedResume struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	JobTitle     string    `json:"job_title"`
	CompanyName  string    `json:"company_name"`
	JobPosting   string    `json:"-"` // snapshot kept for regeneration, not listed
	TemplateID   string    `json:"template_id"`
	OutputFormat string    `json:"output_format"`
	StorageKey   string    `json:"-"`
	ContentType  string    `json:"content_type"`
	SizeBytes    int64     `json:"size_bytes"`
	MatchScore   float64   `json:"match_score"`
	CreatedAt    time.Time `json:"created_at"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// Page is one listing page plus the counters clients page with.
type Page struct {
	Items       []GeneratedResume `json:"items"`
	Total       int               `json:"total"`
	Limit       int               `json:"limit"`
	Offset      int               `json:"offset"`
	HasNext     bool              `json:"has_next"`
	HasPrevious bool              `json:"has_previous"`
}

// ListFilter narrows a listing.
type ListFilter struct {
	Company string
	Limit   int
	Offset  int
}

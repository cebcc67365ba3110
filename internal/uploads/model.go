package uploads

import "time"

// DefaultTTL is how long a temp upload survives before the retention sweep
// removes it.
const DefaultTTL = 24 * time.Hour

// TempUpload is a file parked before being attached to a master resume.
type TempUpload struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	FileName    string    `json:"file_name"`
	ContentType string    `json:"content_type"`
	SizeBytes   int64     `json:"size_bytes"`
	StorageKey  string    `json:"-"`
	CreatedAt   time.Time `json:"created_at"`
	ExpiresAt   time.Time `json:"expires_at"`
}

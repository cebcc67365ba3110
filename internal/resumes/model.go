package resumes

import "time"

// SourceType records how a master resume entered the system.
type SourceType string

const (
	SourceJSON SourceType = "json"
	SourceFile SourceType = "file"
)

// PersonalInfo holds the identifying header of a resume.
type PersonalInfo struct {
	Name     string   `json:"name"`
	Email    string   `json:"email"`
	Phone    string   `json:"phone,omitempty"`
	Location string   `json:"location,omitempty"`
	Links    []string `json:"links,omitempty"`
}

// ExperienceItem is a single role in the experience section.
type ExperienceItem struct {
	Title     string   `json:"title"`
	Company   string   `json:"company"`
	Location  string   `json:"location,omitempty"`
	StartDate string   `json:"start_date,omitempty"`
	EndDate   string   `json:"end_date,omitempty"`
	Bullets   []string `json:"bullets,omitempty"`
}

// EducationItem is a single entry in the education section.
type EducationItem struct {
	Degree      string `json:"degree"`
	Institution string `json:"institution"`
	Year        string `json:"year,omitempty"`
}

// Project is a single entry in the projects section.
type Project struct {
	Name         string   `json:"name"`
	Description  string   `json:"description,omitempty"`
	Technologies []string `json:"technologies,omitempty"`
}

// ResumeData is the structured content of a resume.
type ResumeData struct {
	PersonalInfo   PersonalInfo     `json:"personal_info"`
	Summary        string           `json:"summary,omitempty"`
	Skills         []string         `json:"skills"`
	Experience     []ExperienceItem `json:"experience"`
	Education      []EducationItem  `json:"education,omitempty"`
	Projects       []Project        `json:"projects,omitempty"`
	Certifications []string         `json:"certifications,omitempty"`
}

// SourceMetadata describes the original upload a resume was built from.
type SourceMetadata struct {
	FileName   string    `json:"file_name,omitempty"`
	SizeBytes  int64     `json:"size_bytes,omitempty"`
	MimeType   string    `json:"mime_type,omitempty"`
	UploadedAt time.Time `json:"uploaded_at,omitempty"`
}

// MasterResume is the single canonical resume a user keeps on file.
type MasterResume struct {
	ID         string         `json:"id"`
	UserID     string         `json:"user_id"`
	Data       ResumeData     `json:"data"`
	SourceType SourceType     `json:"source_type"`
	Source     SourceMetadata `json:"source,omitempty"`
	Version    int            `json:"version"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// SectionNames lists the sections a modification plan may reference.
func SectionNames() []string {
	return []string{"personal_info", "summary", "skills", "experience", "education", "projects", "certifications"}
}

// HasSection reports whether name is a recognized resume section.
func HasSection(name string) bool {
	for _, s := range SectionNames() {
		if s == name {
			return true
		}
	}
	return false
}

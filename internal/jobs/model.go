package jobs

// JobPosting is the immutable input to analysis. It is never persisted
// beyond the pipeline run it feeds.
type JobPosting struct {
	Description string `json:"job_description"`
	Title       string `json:"job_title,omitempty"`
	CompanyName string `json:"company_name,omitempty"`
	URL         string `json:"job_url,omitempty"`
}

// AnalysisResult is the structured requirement set extracted from a posting.
type AnalysisResult struct {
	Keywords        []string `json:"keywords"`
	RequiredSkills  []string `json:"required_skills"`
	ExperienceLevel string   `json:"experience_level"`
	Industry        string   `json:"industry"`
	Confidence      float64  `json:"confidence"`
}

// Degenerate reports whether the posting carried too little signal to trust
// the extracted requirement sets.
func (a AnalysisResult) Degenerate() bool {
	return a.Confidence < 0.3
}

package analytics

import "time"

// Feedback is one user report on how a generated resume performed.
type Feedback struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	ResumeID     string    `json:"resume_id"`
	GotInterview bool      `json:"got_interview"`
	Rating       int       `json:"rating"`
	Comment      string    `json:"feedback,omitempty"`
	SubmittedAt  time.Time `json:"submitted_at"`
}

// KeywordReport aggregates requirement keywords across the user's recent runs.
type KeywordReport struct {
	TrendingKeywords []string            `json:"trending_keywords"`
	SkillDemand      map[string]int      `json:"skill_demand"`
	IndustryKeywords map[string][]string `json:"industry_keywords"`
	AnalysisPeriod   string              `json:"analysis_period"`
}

// SuccessReport correlates submitted feedback with the modifications that
// produced each resume.
type SuccessReport struct {
	TotalResumesGenerated      int                `json:"total_resumes_generated"`
	InterviewRate              float64            `json:"interview_rate"`
	TopPerformingModifications []string           `json:"top_performing_modifications"`
	SuccessByIndustry          map[string]float64 `json:"success_by_industry"`
	Suggestions                []string           `json:"suggestions"`
}

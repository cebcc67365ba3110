package pipeline

import (
	"time"

	"resume-tailor/internal/gaps"
	"resume-tailor/internal/jobs"
	"resume-tailor/internal/modify"
	"resume-tailor/internal/quota"
	"resume-tailor/internal/render"
)

// Status is the run state machine value. Runs move strictly forward; FAILED
// absorbs from any non-terminal state.
type Status string

const (
	StatusCreated        Status = "CREATED"
	StatusAnalyzing      Status = "ANALYZING"
	StatusGapsIdentified Status = "GAPS_IDENTIFIED"
	StatusModifying      Status = "MODIFYING"
	StatusRendering      Status = "RENDERING"
	StatusComplete       Status = "COMPLETE"
	StatusFailed         Status = "FAILED"
)

// Stage names recorded when a run fails.
const (
	StageAnalyze Stage = "analyze"
	StageGaps    Stage = "gaps"
	StageModify  Stage = "modify"
	StageRender  Stage = "render"
)

// Stage identifies one pipeline step.
type Stage string

// Run is one pipeline execution with its checkpointed stage outputs. Runs
// are retained for history independently of the artifact's retention clock.
type Run struct {
	ID            string               `json:"id"`
	UserID        string               `json:"user_id"`
	Category      quota.Category       `json:"category"`
	Status        Status               `json:"status"`
	FailedStage   Stage                `json:"failed_stage,omitempty"`
	FailureReason string               `json:"failure_reason,omitempty"`
	Posting       jobs.JobPosting      `json:"posting"`
	Analysis      *jobs.AnalysisResult `json:"analysis,omitempty"`
	GapReport     *gaps.Report         `json:"gap_report,omitempty"`
	Plan          *modify.Plan         `json:"plan,omitempty"`
	MatchScore    float64              `json:"match_score"`
	ResultID      string               `json:"result_id,omitempty"`
	StartedAt     time.Time            `json:"started_at"`
	UpdatedAt     time.Time            `json:"updated_at"`
}

// Request carries everything a caller supplies to start a run.
type Request struct {
	Posting        jobs.JobPosting
	Customizations modify.Customizations
	Category       quota.Category
	TemplateID     string
	Format         render.Format
}

// Result is a completed run together with its rendered artifact bytes.
type Result struct {
	Run        Run
	ResumeID   string
	MatchScore float64
	Artifact   render.Artifact
}

// Preview is what a dry run returns: the plan without a rendered artifact.
type Preview struct {
	RunID               string            `json:"run_id"`
	ProposedChanges     []modify.PlanEdit `json:"proposed_changes"`
	SectionsToModify    []string          `json:"sections_to_modify"`
	SkillsToEmphasize   []string          `json:"skills_to_emphasize"`
	EstimatedMatchScore float64           `json:"estimated_match_score"`
}

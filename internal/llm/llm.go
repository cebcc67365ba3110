package llm

import (
	"context"
	"encoding/json"
	"errors"
)

// Client abstracts the external model collaborator behind task-shaped calls.
// Every method returns the model's raw JSON payload; callers own schema
// validation and error classification.
type Client interface {
	// AnalyzeJob extracts structured requirements from a job posting.
	AnalyzeJob(ctx context.Context, input AnalyzeJobInput) (json.RawMessage, error)
	// RewriteContent rewrites resume phrasing toward a job posting.
	RewriteContent(ctx context.Context, input RewriteInput) (json.RawMessage, error)
	// StructureResume converts extracted plain text into structured resume JSON.
	StructureResume(ctx context.Context, resumeText string) (json.RawMessage, error)
}

// AnalyzeJobInput captures the inputs for job posting analysis.
type AnalyzeJobInput struct {
	JobDescription string
	JobTitle       string
	CompanyName    string
}

// RewriteInput captures the inputs for tailored content rewriting.
type RewriteInput struct {
	ResumeJSON     string
	JobDescription string
	GapSummary     string
	Tone           string
	Sections       []string
}

// ErrNotImplemented is returned by the placeholder client.
var ErrNotImplemented = errors.New("LLM not implemented")

// PlaceholderClient is a stub implementation until provider wiring is added.
type PlaceholderClient struct{}

// AnalyzeJob returns ErrNotImplemented.
func (PlaceholderClient) AnalyzeJob(ctx context.Context, input AnalyzeJobInput) (json.RawMessage, error) {
	_ = ctx
	_ = input
	return nil, ErrNotImplemented
}

// RewriteContent returns ErrNotImplemented.
func (PlaceholderClient) RewriteContent(ctx context.Context, input RewriteInput) (json.RawMessage, error) {
	_ = ctx
	_ = input
	return nil, ErrNotImplemented
}

// StructureResume returns ErrNotImplemented.
func (PlaceholderClient) StructureResume(ctx context.Context, resumeText string) (json.RawMessage, error) {
	_ = ctx
	_ = resumeText
	return nil, ErrNotImplemented
}

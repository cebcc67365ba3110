package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"resume-tailor/internal/llm"
	"resume-tailor/internal/shared/fault"
)

// Service analyzes job postings via the model collaborator and owns
// validation of what comes back.
type Service struct {
	LLM llm.Client
}

// NewService constructs a Service.
func NewService(client llm.Client) *Service {
	return &Service{LLM: client}
}

// Analyze extracts structured requirements from a posting. Empty posting text
// is a validation failure; malformed or absent model output is an upstream
// model failure, which callers may retry.
func (s *Service) Analyze(ctx context.Context, posting JobPosting) (AnalysisResult, error) {
	if strings.TrimSpace(posting.Description) == "" {
		return AnalysisResult{}, fault.Newf(fault.KindValidation, "job_description is required")
	}

	raw, err := s.LLM.AnalyzeJob(ctx, llm.AnalyzeJobInput{
		JobDescription: posting.Description,
		JobTitle:       posting.Title,
		CompanyName:    posting.CompanyName,
	})
	if err != nil {
		return AnalysisResult{}, fault.New(fault.KindUpstreamModel, err)
	}

	var result AnalysisResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return AnalysisResult{}, fault.New(fault.KindUpstreamModel, fmt.Errorf("analysis decode: %w", err))
	}
	if err := validate(result); err != nil {
		return AnalysisResult{}, fault.New(fault.KindUpstreamModel, err)
	}
	return normalize(result), nil
}

func validate(result AnalysisResult) error {
	if result.Confidence < 0 || result.Confidence > 1 {
		return fmt.Errorf("confidence %v out of range", result.Confidence)
	}
	if result.Keywords == nil && result.RequiredSkills == nil {
		return fmt.Errorf("analysis missing keyword and skill sets")
	}
	// Empty requirement sets are only acceptable for degenerate postings.
	if len(result.RequiredSkills) == 0 && len(result.Keywords) == 0 && !result.Degenerate() {
		return fmt.Errorf("analysis returned no requirements at confidence %v", result.Confidence)
	}
	return nil
}

func normalize(result AnalysisResult) AnalysisResult {
	result.Keywords = dedupe(result.Keywords)
	result.RequiredSkills = dedupe(result.RequiredSkills)
	result.ExperienceLevel = strings.ToLower(strings.TrimSpace(result.ExperienceLevel))
	if result.ExperienceLevel == "" {
		result.ExperienceLevel = "unknown"
	}
	result.Industry = strings.TrimSpace(result.Industry)
	return result
}

func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		key := strings.ToLower(v)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, v)
	}
	return out
}

package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"resume-tailor/internal/llm"
	"resume-tailor/internal/shared/fault"
)

type fakeAnalyzer struct {
	llm.PlaceholderClient
	raw json.RawMessage
	err error
}

func (f fakeAnalyzer) AnalyzeJob(ctx context.Context, input llm.AnalyzeJobInput) (json.RawMessage, error) {
	return f.raw, f.err
}

func TestAnalyzeRejectsEmptyPosting(t *testing.T) {
	svc := NewService(fakeAnalyzer{})
	_, err := svc.Analyze(context.Background(), JobPosting{Description: "   "})
	if fault.KindOf(err) != fault.KindValidation {
		t.Fatalf("expected validation fault, got %v", err)
	}
	if fault.Retryable(err) {
		t.Fatalf("validation failures must not be retryable")
	}
}

func TestAnalyzeClassifiesModelFailureAsRetryable(t *testing.T) {
	svc := NewService(fakeAnalyzer{err: errors.New("upstream 503")})
	_, err := svc.Analyze(context.Background(), JobPosting{Description: "Go engineer wanted"})
	if fault.KindOf(err) != fault.KindUpstreamModel {
		t.Fatalf("expected upstream model fault, got %v", err)
	}
	if !fault.Retryable(err) {
		t.Fatalf("upstream model failures must be retryable")
	}
}

func TestAnalyzeRejectsMalformedOutput(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"not json", `analysis: fine`},
		{"confidence out of range", `{"keywords":["Go"],"required_skills":["Go"],"experience_level":"mid","industry":"software","confidence":1.5}`},
		{"missing sets", `{"experience_level":"mid","industry":"software","confidence":0.9}`},
		{"empty sets at high confidence", `{"keywords":[],"required_skills":[],"experience_level":"mid","industry":"software","confidence":0.9}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := NewService(fakeAnalyzer{raw: json.RawMessage(tc.raw)})
			_, err := svc.Analyze(context.Background(), JobPosting{Description: "Go engineer wanted"})
			if fault.KindOf(err) != fault.KindUpstreamModel {
				t.Fatalf("expected upstream model fault, got %v", err)
			}
		})
	}
}

func TestAnalyzeNormalizesOutput(t *testing.T) {
	raw := json.RawMessage(`{
		"keywords": [" Go ", "go", "Kubernetes", ""],
		"required_skills": ["Go", "PostgreSQL"],
		"experience_level": " Senior ",
		"industry": " software ",
		"confidence": 0.85
	}`)
	svc := NewService(fakeAnalyzer{raw: raw})

	result, err := svc.Analyze(context.Background(), JobPosting{Description: "Go engineer wanted"})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if want := []string{"Go", "Kubernetes"}; !reflect.DeepEqual(result.Keywords, want) {
		t.Fatalf("keywords = %v, want %v", result.Keywords, want)
	}
	if result.ExperienceLevel != "senior" {
		t.Fatalf("experience_level = %q", result.ExperienceLevel)
	}
	if result.Industry != "software" {
		t.Fatalf("industry = %q", result.Industry)
	}
	if result.Degenerate() {
		t.Fatalf("confidence 0.85 should not be degenerate")
	}
}

func TestAnalyzeAcceptsDegeneratePosting(t *testing.T) {
	raw := json.RawMessage(`{"keywords":[],"required_skills":[],"experience_level":"","industry":"","confidence":0.1}`)
	svc := NewService(fakeAnalyzer{raw: raw})

	result, err := svc.Analyze(context.Background(), JobPosting{Description: "engineer"})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if !result.Degenerate() {
		t.Fatalf("expected degenerate analysis")
	}
	if result.ExperienceLevel != "unknown" {
		t.Fatalf("experience_level = %q, want unknown", result.ExperienceLevel)
	}
}

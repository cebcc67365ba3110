package analytics

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"resume-tailor/internal/generated"
	"resume-tailor/internal/pipeline"
)

const (
	// analysisWindow bounds how far back keyword aggregation looks.
	analysisWindow = 30 * 24 * time.Hour
	maxTrending    = 10
	runSample      = 200
	feedbackSample = 500
)

// RunSource exposes the pipeline run history feeding the aggregations.
type RunSource interface {
	ListByUser(ctx context.Context, userID string, limit int) ([]pipeline.Run, error)
}

// ResumeSource exposes the generated resume records feedback refers to.
type ResumeSource interface {
	Get(ctx context.Context, userID, id string) (generated.GeneratedResume, error)
	List(ctx context.Context, userID string, filter generated.ListFilter) (generated.Page, error)
}

// Service aggregates run history and feedback into per-user insights.
type Service struct {
	Repo    Repo
	Runs    RunSource
	Resumes ResumeSource

	now func() time.Time
}

// NewService constructs a Service.
func NewService(repo Repo, runs RunSource, resumes ResumeSource) *Service {
	return &Service{Repo: repo, Runs: runs, Resumes: resumes, now: time.Now}
}

// SubmitFeedback validates and records one feedback report. The referenced
// resume must exist and belong to the caller.
func (s *Service) SubmitFeedback(ctx context.Context, userID string, fb Feedback) (Feedback, error) {
	if fb.ResumeID == "" {
		return Feedback{}, fmt.Errorf("%w: resume_id is required", ErrInvalidInput)
	}
	if fb.Rating < 1 || fb.Rating > 5 {
		return Feedback{}, fmt.Errorf("%w: rating must be between 1 and 5", ErrInvalidInput)
	}
	if _, err := s.Resumes.Get(ctx, userID, fb.ResumeID); err != nil {
		return Feedback{}, err
	}

	fb.ID = uuid.NewString()
	fb.UserID = userID
	fb.SubmittedAt = s.now().UTC()
	if err := s.Repo.Create(ctx, fb); err != nil {
		return Feedback{}, err
	}
	return fb, nil
}

// Keywords aggregates requirement keywords from the user's runs over the
// last 30 days.
func (s *Service) Keywords(ctx context.Context, userID string) (KeywordReport, error) {
	runs, err := s.Runs.ListByUser(ctx, userID, runSample)
	if err != nil {
		return KeywordReport{}, err
	}
	cutoff := s.now().UTC().Add(-analysisWindow)

	counts := map[string]int{}
	demand := map[string]int{}
	industries := map[string]map[string]struct{}{}
	for _, run := range runs {
		if run.Analysis == nil || run.StartedAt.Before(cutoff) {
			continue
		}
		for _, kw := range run.Analysis.Keywords {
			counts[kw]++
		}
		for _, skill := range run.Analysis.RequiredSkills {
			demand[skill]++
		}
		if industry := run.Analysis.Industry; industry != "" {
			set, ok := industries[industry]
			if !ok {
				set = map[string]struct{}{}
				industries[industry] = set
			}
			for _, kw := range run.Analysis.Keywords {
				set[kw] = struct{}{}
			}
		}
	}

	report := KeywordReport{
		TrendingKeywords: rankedByCount(counts, maxTrending),
		SkillDemand:      demand,
		IndustryKeywords: map[string][]string{},
		AnalysisPeriod:   "last 30 days",
	}
	for industry, set := range industries {
		kws := make([]string, 0, len(set))
		for kw := range set {
			kws = append(kws, kw)
		}
		sort.Strings(kws)
		report.IndustryKeywords[industry] = kws
	}
	return report, nil
}

// SuccessRate correlates feedback with the plan and analysis of the run that
// produced each resume.
func (s *Service) SuccessRate(ctx context.Context, userID string) (SuccessReport, error) {
	page, err := s.Resumes.List(ctx, userID, generated.ListFilter{})
	if err != nil {
		return SuccessReport{}, err
	}
	feedback, err := s.Repo.ListByUser(ctx, userID, feedbackSample)
	if err != nil {
		return SuccessReport{}, err
	}
	runs, err := s.Runs.ListByUser(ctx, userID, runSample)
	if err != nil {
		return SuccessReport{}, err
	}

	runByResult := map[string]pipeline.Run{}
	for _, run := range runs {
		if run.ResultID != "" {
			runByResult[run.ResultID] = run
		}
	}

	report := SuccessReport{
		TotalResumesGenerated: page.Total,
		SuccessByIndustry:     map[string]float64{},
	}

	interviews := 0
	ratingSum := 0
	sectionWins := map[string]int{}
	industryTotals := map[string]int{}
	industryWins := map[string]int{}
	for _, fb := range feedback {
		ratingSum += fb.Rating
		if fb.GotInterview {
			interviews++
		}
		run, ok := runByResult[fb.ResumeID]
		if !ok {
			continue
		}
		if fb.GotInterview && run.Plan != nil {
			for _, section := range run.Plan.SectionsToModify {
				sectionWins[section]++
			}
		}
		if run.Analysis != nil && run.Analysis.Industry != "" {
			industryTotals[run.Analysis.Industry]++
			if fb.GotInterview {
				industryWins[run.Analysis.Industry]++
			}
		}
	}
	if len(feedback) > 0 {
		report.InterviewRate = float64(interviews) / float64(len(feedback))
	}
	for industry, total := range industryTotals {
		report.SuccessByIndustry[industry] = float64(industryWins[industry]) / float64(total)
	}
	report.TopPerformingModifications = rankedByCount(sectionWins, 5)
	report.Suggestions = suggestions(len(feedback), report.InterviewRate, ratingSum)
	return report, nil
}

// rankedByCount orders keys by count descending, breaking ties lexically.
func rankedByCount(counts map[string]int, n int) []string {
	out := make([]string, 0, len(counts))
	for k := range counts {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool {
		if counts[out[i]] != counts[out[j]] {
			return counts[out[i]] > counts[out[j]]
		}
		return out[i] < out[j]
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// suggestions are intentionally coarse; anything finer-grained needs more
// signal than the feedback form collects.
func suggestions(samples int, interviewRate float64, ratingSum int) []string {
	if samples == 0 {
		return []string{"Submit feedback on generated resumes to unlock success insights"}
	}
	var out []string
	if interviewRate < 0.25 {
		out = append(out, "Add quantified achievements to your experience bullets")
	}
	if float64(ratingSum)/float64(samples) < 3 {
		out = append(out, "Try a different template for your next application")
	}
	if len(out) == 0 {
		out = append(out, "Keep emphasizing the skills that match each posting")
	}
	return out
}

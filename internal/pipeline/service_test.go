package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"sync"
	"testing"
	"time"

	"resume-tailor/internal/generated"
	"resume-tailor/internal/jobs"
	"resume-tailor/internal/llm"
	"resume-tailor/internal/modify"
	"resume-tailor/internal/quota"
	"resume-tailor/internal/render"
	"resume-tailor/internal/resumes"
	"resume-tailor/internal/shared/fault"
)

var masterResumeJSON = []byte(`{
	"personal_info": {"name": "Ada Lovelace", "email": "ada@example.com"},
	"summary": "Backend engineer who ships data pipelines.",
	"skills": ["Python", "React"],
	"experience": [
		{
			"title": "Senior Engineer",
			"company": "Analytical Engines Ltd",
			"bullets": ["Built ETL pipelines in Python", "Led the dashboard rewrite"]
		}
	]
}`)

type fakeLLM struct {
	llm.PlaceholderClient

	mu           sync.Mutex
	analyzeCalls int
	analyzeFails int
	rewriteCalls int
	onAnalyze    func()
}

func (f *fakeLLM) AnalyzeJob(ctx context.Context, input llm.AnalyzeJobInput) (json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.analyzeCalls++
	if f.onAnalyze != nil {
		f.onAnalyze()
	}
	if f.analyzeFails > 0 {
		f.analyzeFails--
		return nil, errors.New("model unavailable")
	}
	return json.RawMessage(`{
		"keywords": ["data pipelines"],
		"required_skills": ["Python", "React", "Kubernetes"],
		"experience_level": "senior",
		"industry": "software",
		"confidence": 0.9
	}`), nil
}

func (f *fakeLLM) RewriteContent(ctx context.Context, input llm.RewriteInput) (json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rewriteCalls++
	return json.RawMessage(`{
		"summary": "Senior engineer focused on Python data pipelines.",
		"skills": ["Python", "React"],
		"experience": [
			{"title": "Senior Engineer", "company": "Analytical Engines Ltd",
			 "bullets": ["Shipped Python ETL pipelines feeding analytics"]}
		]
	}`), nil
}

type fakeEngine struct {
	mu       sync.Mutex
	calls    int
	fails    int
	onRender func()
}

func (f *fakeEngine) RenderHTMLToPDF(ctx context.Context, html string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.onRender != nil {
		f.onRender()
	}
	if f.fails > 0 {
		f.fails--
		return nil, errors.New("engine crashed")
	}
	return []byte("%PDF-1.7 rendered"), nil
}

type memStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newMemStore() *memStore {
	return &memStore{objects: map[string][]byte{}}
}

func (s *memStore) Save(ctx context.Context, userID, fileName string, r io.Reader) (string, int64, string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", 0, "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	key := fmt.Sprintf("%s/%s", userID, fileName)
	s.objects[key] = data
	return key, int64(len(data)), "application/octet-stream", nil
}

func (s *memStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.objects[key]
	if !ok {
		return nil, fs.ErrNotExist
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *memStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

type fixture struct {
	orc    *Orchestrator
	model  *fakeLLM
	engine *fakeEngine
	runs   *MemoryRepo
}

func newFixture(t *testing.T, withMaster bool) *fixture {
	t.Helper()
	model := &fakeLLM{}
	engine := &fakeEngine{}
	runs := NewMemoryRepo()
	resumeSvc := resumes.NewService(resumes.NewMemoryRepo())
	if withMaster {
		if _, err := resumeSvc.CreateFromJSON(context.Background(), "user-1", masterResumeJSON); err != nil {
			t.Fatalf("seed master resume: %v", err)
		}
	}

	orc := NewOrchestrator(
		quota.NewService(),
		resumeSvc,
		jobs.NewService(model),
		modify.NewService(model),
		render.NewService(engine, nil),
		generated.NewService(generated.NewMemoryRepo(), newMemStore()),
		runs,
	)
	orc.sleep = func(time.Duration) {}
	return &fixture{orc: orc, model: model, engine: engine, runs: runs}
}

func pdfRequest() Request {
	return Request{
		Posting: jobs.JobPosting{
			Description: "We need a senior engineer for Python data pipelines on Kubernetes.",
			Title:       "Senior Backend Engineer",
			CompanyName: "Acme",
		},
		Category:   quota.CategoryFullModify,
		TemplateID: "modern",
		Format:     render.FormatPDF,
	}
}

func TestStartRunProducesArtifactAndRecord(t *testing.T) {
	fix := newFixture(t, true)
	ctx := context.Background()

	result, err := fix.orc.StartRun(ctx, "user-1", pdfRequest())
	if err != nil {
		t.Fatalf("start run: %v", err)
	}
	if !bytes.Equal(result.Artifact.Bytes, []byte("%PDF-1.7 rendered")) {
		t.Fatalf("artifact bytes = %q", result.Artifact.Bytes)
	}
	if result.ResumeID == "" {
		t.Fatalf("expected generated resume id")
	}
	if want := 0.75; result.MatchScore < want-0.001 || result.MatchScore > want+0.001 {
		t.Fatalf("match score = %v, want ~%v", result.MatchScore, want)
	}

	run, err := fix.runs.GetByID(ctx, "user-1", result.Run.ID)
	if err != nil {
		t.Fatalf("load run: %v", err)
	}
	if run.Status != StatusComplete {
		t.Fatalf("run status = %s", run.Status)
	}
	if run.Analysis == nil || run.GapReport == nil || run.Plan == nil {
		t.Fatalf("missing checkpointed outputs: %+v", run)
	}
	if run.ResultID != result.ResumeID {
		t.Fatalf("result id = %q, want %q", run.ResultID, result.ResumeID)
	}

	record, err := fix.orc.Generated.Get(ctx, "user-1", result.ResumeID)
	if err != nil {
		t.Fatalf("load generated record: %v", err)
	}
	if record.ExpiresAt.Sub(record.CreatedAt) != generated.ArtifactTTL {
		t.Fatalf("retention window = %s", record.ExpiresAt.Sub(record.CreatedAt))
	}
}

func TestPreviewSkipsRenderAndScoresGaps(t *testing.T) {
	fix := newFixture(t, true)
	ctx := context.Background()

	preview, err := fix.orc.PreviewRun(ctx, "user-1", pdfRequest())
	if err != nil {
		t.Fatalf("preview: %v", err)
	}
	if preview.EstimatedMatchScore >= 1.0 {
		t.Fatalf("score = %v, want < 1.0 with an unmet requirement", preview.EstimatedMatchScore)
	}
	found := false
	for _, section := range preview.SectionsToModify {
		if section == "skills" {
			found = true
		}
	}
	if !found {
		t.Fatalf("sections_to_modify = %v, want skills present", preview.SectionsToModify)
	}
	if len(preview.ProposedChanges) == 0 {
		t.Fatalf("expected proposed changes")
	}
	if fix.engine.calls != 0 {
		t.Fatalf("preview rendered %d times", fix.engine.calls)
	}

	// The declared category is still consumed: model calls were made.
	admission, err := fix.orc.Quota.Remaining(ctx, "user-1", quota.CategoryFullModify)
	if err != nil {
		t.Fatalf("remaining: %v", err)
	}
	if admission.Remaining != quota.Limit(quota.CategoryFullModify)-1 {
		t.Fatalf("remaining = %d", admission.Remaining)
	}
}

func TestNoMasterResumeStillConsumesQuota(t *testing.T) {
	fix := newFixture(t, false)
	ctx := context.Background()

	_, err := fix.orc.StartRun(ctx, "user-1", pdfRequest())
	if fault.KindOf(err) != fault.KindNoMasterResume {
		t.Fatalf("error = %v, want no-master-resume", err)
	}

	admission, err := fix.orc.Quota.Remaining(ctx, "user-1", quota.CategoryFullModify)
	if err != nil {
		t.Fatalf("remaining: %v", err)
	}
	if admission.Remaining != quota.Limit(quota.CategoryFullModify)-1 {
		t.Fatalf("remaining = %d, want the refused run to have spent one admission", admission.Remaining)
	}
}

func TestQuotaRefusalCreatesNoRun(t *testing.T) {
	fix := newFixture(t, true)
	ctx := context.Background()

	for i := 0; i < quota.Limit(quota.CategoryFullModify); i++ {
		if _, err := fix.orc.Quota.TryAdmit(ctx, "user-1", quota.CategoryFullModify); err != nil {
			t.Fatalf("prime quota: %v", err)
		}
	}

	_, err := fix.orc.StartRun(ctx, "user-1", pdfRequest())
	var refusal *QuotaRefusal
	if !errors.As(err, &refusal) {
		t.Fatalf("error = %v, want quota refusal", err)
	}
	if refusal.Admission.Remaining != 0 {
		t.Fatalf("remaining = %d", refusal.Admission.Remaining)
	}
	if refusal.Admission.ResetAt.IsZero() {
		t.Fatalf("expected reset time")
	}

	runs, err := fix.runs.ListByUser(ctx, "user-1", 10)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(runs) != 0 {
		t.Fatalf("refused admission left %d runs behind", len(runs))
	}
	if fix.model.analyzeCalls != 0 {
		t.Fatalf("model called %d times after refusal", fix.model.analyzeCalls)
	}
}

func TestTransientModelFailureIsRetried(t *testing.T) {
	fix := newFixture(t, true)
	fix.model.analyzeFails = 2

	result, err := fix.orc.StartRun(context.Background(), "user-1", pdfRequest())
	if err != nil {
		t.Fatalf("start run: %v", err)
	}
	if fix.model.analyzeCalls != 3 {
		t.Fatalf("analyze calls = %d, want 3", fix.model.analyzeCalls)
	}
	if result.Run.Status != StatusComplete {
		t.Fatalf("run status = %s", result.Run.Status)
	}
}

func TestRetriesStopAtBound(t *testing.T) {
	fix := newFixture(t, true)
	fix.model.analyzeFails = 10

	_, err := fix.orc.StartRun(context.Background(), "user-1", pdfRequest())
	if fault.KindOf(err) != fault.KindUpstreamModel {
		t.Fatalf("error = %v, want upstream model failure", err)
	}
	if fix.model.analyzeCalls != 3 {
		t.Fatalf("analyze calls = %d, want initial attempt plus two retries", fix.model.analyzeCalls)
	}

	runs, err := fix.runs.ListByUser(context.Background(), "user-1", 10)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(runs) != 1 || runs[0].Status != StatusFailed {
		t.Fatalf("runs = %+v, want one failed run", runs)
	}
	if runs[0].FailedStage != StageAnalyze || runs[0].FailureReason == "" {
		t.Fatalf("failure detail = %q/%q", runs[0].FailedStage, runs[0].FailureReason)
	}
}

func TestValidationFailureIsNotRetried(t *testing.T) {
	fix := newFixture(t, true)

	req := pdfRequest()
	req.Posting.Description = "   "
	_, err := fix.orc.StartRun(context.Background(), "user-1", req)
	if fault.KindOf(err) != fault.KindValidation {
		t.Fatalf("error = %v, want validation failure", err)
	}
	if fix.model.analyzeCalls != 0 {
		t.Fatalf("model called %d times for an empty posting", fix.model.analyzeCalls)
	}
}

func TestTransientRenderFailureIsRetried(t *testing.T) {
	fix := newFixture(t, true)
	fix.engine.fails = 1

	result, err := fix.orc.StartRun(context.Background(), "user-1", pdfRequest())
	if err != nil {
		t.Fatalf("start run: %v", err)
	}
	if fix.engine.calls != 2 {
		t.Fatalf("engine calls = %d, want 2", fix.engine.calls)
	}
	if len(result.Artifact.Bytes) == 0 {
		t.Fatalf("expected artifact bytes")
	}
}

func TestCancellationStopsBeforeNextStage(t *testing.T) {
	fix := newFixture(t, true)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	fix.model.onAnalyze = cancel

	_, err := fix.orc.StartRun(ctx, "user-1", pdfRequest())
	if err == nil {
		t.Fatalf("expected the run to stop after cancellation")
	}
	if fix.model.analyzeCalls != 1 {
		t.Fatalf("analyze calls = %d, want the in-flight attempt to finish", fix.model.analyzeCalls)
	}
	if fix.model.rewriteCalls != 0 {
		t.Fatalf("rewrite ran %d times after cancellation", fix.model.rewriteCalls)
	}
	if fix.engine.calls != 0 {
		t.Fatalf("render ran %d times after cancellation", fix.engine.calls)
	}

	runs, err := fix.runs.ListByUser(context.Background(), "user-1", 10)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(runs) != 1 || runs[0].Status != StatusFailed {
		t.Fatalf("runs = %+v, want one failed run", runs)
	}
	if runs[0].FailedStage != StageModify {
		t.Fatalf("failed stage = %q, want modify (the first stage not started)", runs[0].FailedStage)
	}
	if runs[0].Analysis == nil || runs[0].GapReport == nil {
		t.Fatalf("finished stage outputs were not persisted: %+v", runs[0])
	}
}

func TestCancelledDuringRenderStillStoresArtifact(t *testing.T) {
	fix := newFixture(t, true)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	fix.engine.onRender = cancel

	result, err := fix.orc.StartRun(ctx, "user-1", pdfRequest())
	if err != nil {
		t.Fatalf("start run: %v", err)
	}
	if result.ResumeID == "" {
		t.Fatalf("expected the finished render to be registered")
	}

	record, err := fix.orc.Generated.Get(context.Background(), "user-1", result.ResumeID)
	if err != nil {
		t.Fatalf("load generated record: %v", err)
	}
	if record.ID != result.ResumeID {
		t.Fatalf("record id = %q, want %q", record.ID, result.ResumeID)
	}
	run, err := fix.runs.GetByID(context.Background(), "user-1", result.Run.ID)
	if err != nil {
		t.Fatalf("load run: %v", err)
	}
	if run.Status != StatusComplete {
		t.Fatalf("run status = %s, want complete", run.Status)
	}
}

func TestRegenerateLeavesOriginalUntouched(t *testing.T) {
	fix := newFixture(t, true)
	ctx := context.Background()

	first, err := fix.orc.StartRun(ctx, "user-1", pdfRequest())
	if err != nil {
		t.Fatalf("start run: %v", err)
	}
	before, err := fix.orc.Generated.Get(ctx, "user-1", first.ResumeID)
	if err != nil {
		t.Fatalf("load original: %v", err)
	}

	second, err := fix.orc.Regenerate(ctx, "user-1", first.ResumeID)
	if err != nil {
		t.Fatalf("regenerate: %v", err)
	}
	if second.ResumeID == first.ResumeID {
		t.Fatalf("regenerate reused the original record id")
	}
	if second.Run.ID == first.Run.ID {
		t.Fatalf("regenerate reused the original run id")
	}

	after, err := fix.orc.Generated.Get(ctx, "user-1", first.ResumeID)
	if err != nil {
		t.Fatalf("original vanished after regenerate: %v", err)
	}
	if after != before {
		t.Fatalf("original mutated:\nbefore %+v\nafter  %+v", before, after)
	}

	page, err := fix.orc.Generated.List(ctx, "user-1", generated.ListFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if page.Total != 2 {
		t.Fatalf("total = %d, want both records", page.Total)
	}
}

func TestRegenerateMissingRecord(t *testing.T) {
	fix := newFixture(t, true)

	_, err := fix.orc.Regenerate(context.Background(), "user-1", "nope")
	if fault.KindOf(err) != fault.KindNotFound {
		t.Fatalf("error = %v, want not found", err)
	}
}

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"resume-tailor/internal/gaps"
	"resume-tailor/internal/generated"
	"resume-tailor/internal/jobs"
	"resume-tailor/internal/modify"
	"resume-tailor/internal/quota"
	"resume-tailor/internal/render"
	"resume-tailor/internal/resumes"
	"resume-tailor/internal/shared/fault"
	"resume-tailor/internal/shared/metrics"
	"resume-tailor/internal/shared/telemetry"
)

// Timeouts bounds each model/render stage. Zero values fall back to the
// defaults below.
type Timeouts struct {
	Analyze time.Duration
	Modify  time.Duration
	Render  time.Duration
}

const (
	defaultAnalyzeTimeout = 30 * time.Second
	defaultModifyTimeout  = 30 * time.Second
	defaultRenderTimeout  = 60 * time.Second

	defaultMaxRetries = 2
	retryBackoffBase  = 300 * time.Millisecond
)

// QuotaRefusal is returned by StartRun when the hourly window is exhausted.
// It carries the admission snapshot so callers can report the remaining
// allowance and reset time.
type QuotaRefusal struct {
	Admission quota.Admission
}

func (e *QuotaRefusal) Error() string {
	return fmt.Sprintf("quota exhausted, resets at %s", e.Admission.ResetAt.Format(time.RFC3339))
}

// Orchestrator sequences analyze, gap identification, modify and render for
// one run, checkpointing after each stage.
type Orchestrator struct {
	Quota     *quota.Service
	Resumes   *resumes.Service
	Analyzer  *jobs.Service
	Modifier  *modify.Service
	Renderer  *render.Service
	Generated *generated.Service
	Runs      Repo

	Timeouts   Timeouts
	MaxRetries int

	now   func() time.Time
	sleep func(time.Duration)
}

// NewOrchestrator wires the stage services together with default timeouts.
func NewOrchestrator(q *quota.Service, r *resumes.Service, a *jobs.Service, m *modify.Service, rd *render.Service, g *generated.Service, runs Repo) *Orchestrator {
	return &Orchestrator{
		Quota:      q,
		Resumes:    r,
		Analyzer:   a,
		Modifier:   m,
		Renderer:   rd,
		Generated:  g,
		Runs:       runs,
		MaxRetries: defaultMaxRetries,
		now:        time.Now,
		sleep:      time.Sleep,
	}
}

// StartRun executes the full pipeline and returns the rendered artifact.
// Quota is consumed before the master resume lookup, so a caller without a
// master resume still spends one admission.
func (o *Orchestrator) StartRun(ctx context.Context, userID string, req Request) (Result, error) {
	run, master, err := o.admit(ctx, userID, req)
	if err != nil {
		return Result{}, err
	}
	started := o.now()
	metrics.IncRunStarted()

	_, report, tailored, err := o.runThroughModify(ctx, &run, master.Data, req)
	if err != nil {
		return Result{}, o.fail(ctx, &run, err)
	}

	if err := o.transition(ctx, &run, StatusRendering); err != nil {
		return Result{}, o.fail(ctx, &run, err)
	}
	var artifact render.Artifact
	renderStart := o.now()
	err = o.runStage(ctx, &run, StageRender, o.renderTimeout(), func(stageCtx context.Context) error {
		var renderErr error
		artifact, renderErr = o.Renderer.Render(stageCtx, tailored, req.TemplateID, req.Format)
		return renderErr
	})
	metrics.ObserveRenderDurationMs(float64(o.now().Sub(renderStart).Milliseconds()))
	if err != nil {
		return Result{}, o.fail(ctx, &run, err)
	}

	// A finished render is never thrown away: registration proceeds even if
	// the caller has gone.
	record, err := o.Generated.Register(context.WithoutCancel(ctx), generated.NewArtifact{
		UserID:       userID,
		JobTitle:     req.Posting.Title,
		CompanyName:  req.Posting.CompanyName,
		JobPosting:   req.Posting.Description,
		TemplateID:   req.TemplateID,
		OutputFormat: string(req.Format),
		ContentType:  artifact.ContentType,
		Ext:          artifact.Ext,
		MatchScore:   report.MatchScore,
		Bytes:        artifact.Bytes,
	})
	if err != nil {
		return Result{}, o.fail(ctx, &run, fault.New(fault.KindStorage, err))
	}

	run.ResultID = record.ID
	if err := o.transition(ctx, &run, StatusComplete); err != nil {
		return Result{}, o.fail(ctx, &run, err)
	}
	metrics.IncRunCompleted()
	metrics.ObserveRunDurationMs(float64(o.now().Sub(started).Milliseconds()))
	telemetry.Info("pipeline run complete", map[string]any{
		"runId":    run.ID,
		"resumeId": record.ID,
		"score":    report.MatchScore,
	})

	return Result{Run: run, ResumeID: record.ID, MatchScore: report.MatchScore, Artifact: artifact}, nil
}

// PreviewRun executes through the modify stage and returns the plan without
// rendering. The declared category is still consumed: the model calls happen
// either way.
func (o *Orchestrator) PreviewRun(ctx context.Context, userID string, req Request) (Preview, error) {
	run, master, err := o.admit(ctx, userID, req)
	if err != nil {
		return Preview{}, err
	}
	metrics.IncRunStarted()

	_, report, _, err := o.runThroughModify(ctx, &run, master.Data, req)
	if err != nil {
		return Preview{}, o.fail(ctx, &run, err)
	}
	if err := o.transition(ctx, &run, StatusComplete); err != nil {
		return Preview{}, o.fail(ctx, &run, err)
	}
	metrics.IncRunCompleted()

	plan := *run.Plan
	return Preview{
		RunID:               run.ID,
		ProposedChanges:     plan.Edits,
		SectionsToModify:    plan.SectionsToModify,
		SkillsToEmphasize:   plan.SkillsToEmphasize,
		EstimatedMatchScore: report.MatchScore,
	}, nil
}

// Regenerate replays the stored posting of an existing generated resume
// against the user's current master resume. The original record is never
// touched; a fresh run produces a fresh record.
func (o *Orchestrator) Regenerate(ctx context.Context, userID, resumeID string) (Result, error) {
	original, err := o.Generated.Get(ctx, userID, resumeID)
	if err != nil {
		if errors.Is(err, generated.ErrNotFound) {
			return Result{}, fault.New(fault.KindNotFound, err)
		}
		return Result{}, err
	}

	format := render.Format(original.OutputFormat)
	if format == "" {
		format = render.FormatPDF
	}
	return o.StartRun(ctx, userID, Request{
		Posting: jobs.JobPosting{
			Description: original.JobPosting,
			Title:       original.JobTitle,
			CompanyName: original.CompanyName,
		},
		Category:   quota.CategoryFullModify,
		TemplateID: original.TemplateID,
		Format:     format,
	})
}

// admit consumes quota, verifies the master resume exists, and checkpoints
// the new run.
func (o *Orchestrator) admit(ctx context.Context, userID string, req Request) (Run, resumes.MasterResume, error) {
	admission, err := o.Quota.TryAdmit(ctx, userID, req.Category)
	if err != nil {
		return Run{}, resumes.MasterResume{}, err
	}
	if !admission.Allowed {
		metrics.IncQuotaRejected()
		return Run{}, resumes.MasterResume{}, &QuotaRefusal{Admission: admission}
	}

	master, err := o.Resumes.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, resumes.ErrNotFound) {
			return Run{}, resumes.MasterResume{}, fault.Newf(fault.KindNoMasterResume, "no master resume uploaded")
		}
		return Run{}, resumes.MasterResume{}, err
	}

	now := o.now().UTC()
	run := Run{
		ID:        uuid.NewString(),
		UserID:    userID,
		Category:  req.Category,
		Status:    StatusCreated,
		Posting:   req.Posting,
		StartedAt: now,
		UpdatedAt: now,
	}
	if err := o.Runs.Create(ctx, run); err != nil {
		return Run{}, resumes.MasterResume{}, err
	}
	return run, master, nil
}

// runThroughModify executes analyze, gap identification and modify,
// checkpointing stage outputs onto the run.
func (o *Orchestrator) runThroughModify(ctx context.Context, run *Run, master resumes.ResumeData, req Request) (jobs.AnalysisResult, gaps.Report, resumes.ResumeData, error) {
	var (
		analysis jobs.AnalysisResult
		report   gaps.Report
		tailored resumes.ResumeData
	)

	if err := o.transition(ctx, run, StatusAnalyzing); err != nil {
		return analysis, report, tailored, err
	}
	err := o.runStage(ctx, run, StageAnalyze, o.analyzeTimeout(), func(stageCtx context.Context) error {
		var stageErr error
		analysis, stageErr = o.Analyzer.Analyze(stageCtx, req.Posting)
		return stageErr
	})
	if err != nil {
		return analysis, report, tailored, err
	}
	run.Analysis = &analysis

	// Gap identification is pure and deterministic; it cannot fail and
	// needs no timeout or retry.
	report = gaps.Identify(master, analysis)
	run.GapReport = &report
	run.MatchScore = report.MatchScore
	if err := o.transition(ctx, run, StatusGapsIdentified); err != nil {
		return analysis, report, tailored, err
	}

	plan, err := o.Modifier.BuildPlan(master, report, req.Customizations)
	if err != nil {
		run.FailedStage = StageModify
		return analysis, report, tailored, err
	}
	run.Plan = &plan
	if err := o.transition(ctx, run, StatusModifying); err != nil {
		return analysis, report, tailored, err
	}

	err = o.runStage(ctx, run, StageModify, o.modifyTimeout(), func(stageCtx context.Context) error {
		var stageErr error
		tailored, stageErr = o.Modifier.Apply(stageCtx, master, plan, req.Posting.Description)
		return stageErr
	})
	if err != nil {
		return analysis, report, tailored, err
	}
	return analysis, report, tailored, nil
}

// runStage executes fn detached from request cancellation but bounded by the
// stage timeout, retrying retryable failures with exponential backoff. The
// parent context is consulted before every attempt: an in-flight attempt is
// never thrown away, but once the caller cancels no new stage or retry starts.
func (o *Orchestrator) runStage(ctx context.Context, run *Run, stage Stage, timeout time.Duration, fn func(context.Context) error) error {
	var lastErr error
	for attempt := 0; attempt <= o.maxRetries(); attempt++ {
		if err := ctx.Err(); err != nil {
			if lastErr == nil {
				lastErr = err
			}
			break
		}
		if attempt > 0 {
			metrics.IncStageRetry()
			o.sleep(retryBackoffBase << (attempt - 1))
			telemetry.Warn("retrying pipeline stage", map[string]any{
				"runId":   run.ID,
				"stage":   string(stage),
				"attempt": attempt,
				"error":   lastErr.Error(),
			})
		}

		stageCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
		err := fn(stageCtx)
		cancel()
		if err == nil {
			return nil
		}
		if errors.Is(err, context.DeadlineExceeded) {
			kind := fault.KindUpstreamModel
			if stage == StageRender {
				kind = fault.KindRender
			}
			err = fault.Transient(kind, fmt.Errorf("%s stage timed out after %s", stage, timeout))
		}
		lastErr = err
		if !fault.Retryable(err) {
			break
		}
	}
	run.FailedStage = stage
	return lastErr
}

// fail records the absorbing FAILED state and surfaces the stage error.
func (o *Orchestrator) fail(ctx context.Context, run *Run, err error) error {
	run.Status = StatusFailed
	run.FailureReason = err.Error()
	run.UpdatedAt = o.now().UTC()
	if updateErr := o.Runs.Update(context.WithoutCancel(ctx), *run); updateErr != nil {
		telemetry.Error("persist failed run", map[string]any{"runId": run.ID, "error": updateErr.Error()})
	}
	metrics.IncRunFailed()
	telemetry.Error("pipeline run failed", map[string]any{
		"runId": run.ID,
		"stage": string(run.FailedStage),
		"error": err.Error(),
	})
	return err
}

func (o *Orchestrator) transition(ctx context.Context, run *Run, status Status) error {
	run.Status = status
	run.UpdatedAt = o.now().UTC()
	return o.Runs.Update(context.WithoutCancel(ctx), *run)
}

func (o *Orchestrator) analyzeTimeout() time.Duration {
	if o.Timeouts.Analyze > 0 {
		return o.Timeouts.Analyze
	}
	return defaultAnalyzeTimeout
}

func (o *Orchestrator) modifyTimeout() time.Duration {
	if o.Timeouts.Modify > 0 {
		return o.Timeouts.Modify
	}
	return defaultModifyTimeout
}

func (o *Orchestrator) renderTimeout() time.Duration {
	if o.Timeouts.Render > 0 {
		return o.Timeouts.Render
	}
	return defaultRenderTimeout
}

func (o *Orchestrator) maxRetries() int {
	if o.MaxRetries >= 0 {
		return o.MaxRetries
	}
	return defaultMaxRetries
}

package modify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"resume-tailor/internal/gaps"
	"resume-tailor/internal/llm"
	"resume-tailor/internal/resumes"
	"resume-tailor/internal/shared/fault"
)

// defaultSections are always rewritten unless the caller narrows the plan.
var defaultSections = []string{"summary", "experience", "skills"}

// Service builds modification plans and applies them via the model collaborator.
type Service struct {
	LLM llm.Client
}

// NewService constructs a Service.
func NewService(client llm.Client) *Service {
	return &Service{LLM: client}
}

// BuildPlan derives the section edits for a run. It is deterministic over its
// inputs; the model is not consulted. Section names in customizations must
// exist on the resume model or the plan is rejected.
func (s *Service) BuildPlan(resume resumes.ResumeData, report gaps.Report, custom Customizations) (Plan, error) {
	for _, section := range custom.IncludeSections {
		if !resumes.HasSection(section) {
			return Plan{}, fault.Newf(fault.KindValidation, "unknown section %q in include_sections", section)
		}
	}

	sections := mergeSections(defaultSections, custom.IncludeSections)
	skills := emphasizedSkills(report, custom)
	tone := strings.TrimSpace(custom.Tone)
	if tone == "" {
		tone = "professional"
	}

	plan := Plan{
		SectionsToModify:  sections,
		SkillsToEmphasize: skills,
		Tone:              tone,
	}
	for _, section := range sections {
		plan.Edits = append(plan.Edits, buildEdit(section, report, skills))
	}
	return plan, nil
}

// Apply rewrites the planned sections through the model and merges the result
// into a copy of the resume. The model may rephrase and reorder but never add
// skills; anything else in its output is discarded.
func (s *Service) Apply(ctx context.Context, resume resumes.ResumeData, plan Plan, jobDescription string) (resumes.ResumeData, error) {
	for _, edit := range plan.Edits {
		if !resumes.HasSection(edit.Section) {
			return resumes.ResumeData{}, fault.Newf(fault.KindValidation, "plan references unknown section %q", edit.Section)
		}
	}

	resumeJSON, err := json.Marshal(resume)
	if err != nil {
		return resumes.ResumeData{}, fault.New(fault.KindInternal, err)
	}

	raw, err := s.LLM.RewriteContent(ctx, llm.RewriteInput{
		ResumeJSON:     string(resumeJSON),
		JobDescription: jobDescription,
		GapSummary:     gapSummary(plan),
		Tone:           plan.Tone,
		Sections:       plan.SectionsToModify,
	})
	if err != nil {
		return resumes.ResumeData{}, fault.New(fault.KindUpstreamModel, err)
	}

	var rewritten struct {
		Summary    string `json:"summary"`
		Experience []struct {
			Title   string   `json:"title"`
			Company string   `json:"company"`
			Bullets []string `json:"bullets"`
		} `json:"experience"`
		Skills []string `json:"skills"`
	}
	if err := json.Unmarshal(raw, &rewritten); err != nil {
		return resumes.ResumeData{}, fault.New(fault.KindUpstreamModel, fmt.Errorf("rewrite decode: %w", err))
	}

	tailored := resume
	if wantsSection(plan, "summary") && strings.TrimSpace(rewritten.Summary) != "" {
		tailored.Summary = rewritten.Summary
	}
	if wantsSection(plan, "skills") && sameSkillSet(resume.Skills, rewritten.Skills) {
		tailored.Skills = rewritten.Skills
	}
	if wantsSection(plan, "experience") && len(rewritten.Experience) == len(resume.Experience) {
		tailored.Experience = make([]resumes.ExperienceItem, len(resume.Experience))
		copy(tailored.Experience, resume.Experience)
		for i, exp := range rewritten.Experience {
			if len(exp.Bullets) > 0 {
				tailored.Experience[i].Bullets = exp.Bullets
			}
		}
	}
	return tailored, nil
}

func buildEdit(section string, report gaps.Report, skills []string) PlanEdit {
	switch section {
	case "skills":
		return PlanEdit{
			Section:   section,
			Action:    ActionReorder,
			Rationale: fmt.Sprintf("surface %s ahead of unrelated skills", strings.Join(skills, ", ")),
		}
	case "summary", "experience":
		missing := report.MissingRequirements()
		rationale := "align phrasing with the posting's requirements"
		if len(missing) > 0 {
			rationale = fmt.Sprintf("speak to requirements the resume does not surface: %s", strings.Join(missing, ", "))
		}
		return PlanEdit{Section: section, Action: ActionEmphasize, Rationale: rationale}
	default:
		return PlanEdit{
			Section:   section,
			Action:    ActionAdd,
			Rationale: "included at the caller's request",
		}
	}
}

func mergeSections(base, extra []string) []string {
	seen := make(map[string]struct{}, len(base)+len(extra))
	out := make([]string, 0, len(base)+len(extra))
	for _, lists := range [][]string{base, extra} {
		for _, s := range lists {
			s = strings.ToLower(strings.TrimSpace(s))
			if s == "" {
				continue
			}
			if _, ok := seen[s]; ok {
				continue
			}
			seen[s] = struct{}{}
			out = append(out, s)
		}
	}
	return out
}

// emphasizedSkills merges forced skills with the requirements the resume
// already satisfies, forced skills first.
func emphasizedSkills(report gaps.Report, custom Customizations) []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(skill string) {
		skill = strings.TrimSpace(skill)
		if skill == "" {
			return
		}
		key := strings.ToLower(skill)
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		out = append(out, skill)
	}
	for _, skill := range custom.EmphasizeSkills {
		add(skill)
	}
	for _, gap := range report.Gaps {
		if gap.Satisfied {
			add(gap.Requirement)
		}
	}
	return out
}

func gapSummary(plan Plan) string {
	var b strings.Builder
	for _, edit := range plan.Edits {
		fmt.Fprintf(&b, "%s (%s): %s\n", edit.Section, edit.Action, edit.Rationale)
	}
	return strings.TrimSpace(b.String())
}

func wantsSection(plan Plan, section string) bool {
	for _, s := range plan.SectionsToModify {
		if s == section {
			return true
		}
	}
	return false
}

func sameSkillSet(before, after []string) bool {
	if len(before) != len(after) {
		return false
	}
	counts := make(map[string]int, len(before))
	for _, s := range before {
		counts[strings.ToLower(strings.TrimSpace(s))]++
	}
	for _, s := range after {
		key := strings.ToLower(strings.TrimSpace(s))
		counts[key]--
		if counts[key] < 0 {
			return false
		}
	}
	return true
}

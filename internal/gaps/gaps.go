package gaps

import (
	"strings"

	"resume-tailor/internal/jobs"
	"resume-tailor/internal/resumes"
)

// RequirementGap records whether one extracted requirement is covered by the
// resume, with the text span that satisfied it.
type RequirementGap struct {
	Requirement string `json:"requirement"`
	Satisfied   bool   `json:"satisfied"`
	Evidence    string `json:"evidence,omitempty"`
}

// Report is the full gap analysis for one (resume, analysis) pair. Derived,
// never mutated after creation.
type Report struct {
	Gaps       []RequirementGap `json:"gaps"`
	Satisfied  int              `json:"satisfied"`
	Total      int              `json:"total"`
	MatchScore float64          `json:"match_score"`
}

// MissingRequirements lists the unsatisfied requirement names in report order.
func (r Report) MissingRequirements() []string {
	var out []string
	for _, g := range r.Gaps {
		if !g.Satisfied {
			out = append(out, g.Requirement)
		}
	}
	return out
}

// synonyms maps a canonical requirement term to spellings that count as
// evidence for it. Keys and values are lowercase.
var synonyms = map[string][]string{
	"go":                  {"golang"},
	"golang":              {"go"},
	"javascript":          {"js", "ecmascript"},
	"typescript":          {"ts"},
	"postgresql":          {"postgres", "psql"},
	"kubernetes":          {"k8s"},
	"amazon web services": {"aws"},
	"aws":                 {"amazon web services"},
	"google cloud":        {"gcp"},
	"gcp":                 {"google cloud"},
	"machine learning":    {"ml"},
	"ci/cd":               {"continuous integration", "continuous delivery"},
	"rest":                {"restful"},
}

// Identify compares the resume against the analyzed requirements. It is a
// pure function: identical inputs always produce an identical Report, which
// is what makes pipeline stage retries safe.
func Identify(resume resumes.ResumeData, analysis jobs.AnalysisResult) Report {
	requirements := collectRequirements(analysis)
	haystack := buildHaystack(resume)

	report := Report{
		Gaps:  make([]RequirementGap, 0, len(requirements)),
		Total: len(requirements),
	}
	for _, req := range requirements {
		evidence, ok := findEvidence(req, haystack)
		gap := RequirementGap{Requirement: req, Satisfied: ok, Evidence: evidence}
		if ok {
			report.Satisfied++
		}
		report.Gaps = append(report.Gaps, gap)
	}
	if report.Total > 0 {
		report.MatchScore = float64(report.Satisfied) / float64(report.Total)
	}
	return report
}

// collectRequirements merges required skills and keywords, skills first,
// preserving input order and dropping case-insensitive duplicates.
func collectRequirements(analysis jobs.AnalysisResult) []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(values []string) {
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
	}
	add(analysis.RequiredSkills)
	add(analysis.Keywords)
	return out
}

// haystackEntry is one searchable text span with its lowercase form cached.
type haystackEntry struct {
	text  string
	lower string
}

func buildHaystack(resume resumes.ResumeData) []haystackEntry {
	var entries []haystackEntry
	add := func(text string) {
		text = strings.TrimSpace(text)
		if text == "" {
			return
		}
		entries = append(entries, haystackEntry{text: text, lower: strings.ToLower(text)})
	}

	for _, skill := range resume.Skills {
		add(skill)
	}
	add(resume.Summary)
	for _, exp := range resume.Experience {
		add(exp.Title)
		for _, b := range exp.Bullets {
			add(b)
		}
	}
	for _, p := range resume.Projects {
		add(p.Name)
		add(p.Description)
		for _, tech := range p.Technologies {
			add(tech)
		}
	}
	for _, cert := range resume.Certifications {
		add(cert)
	}
	return entries
}

// findEvidence returns the first haystack span containing the requirement or
// one of its recognized synonyms.
func findEvidence(requirement string, haystack []haystackEntry) (string, bool) {
	terms := []string{strings.ToLower(strings.TrimSpace(requirement))}
	if alts, ok := synonyms[terms[0]]; ok {
		terms = append(terms, alts...)
	}
	for _, entry := range haystack {
		for _, term := range terms {
			if containsTerm(entry.lower, term) {
				return entry.text, true
			}
		}
	}
	return "", false
}

// containsTerm matches term inside text on word boundaries, so "go" does not
// match "django" or "google".
func containsTerm(text, term string) bool {
	if term == "" {
		return false
	}
	for start := 0; ; {
		idx := strings.Index(text[start:], term)
		if idx < 0 {
			return false
		}
		idx += start
		end := idx + len(term)
		beforeOK := idx == 0 || !isWordChar(text[idx-1])
		afterOK := end == len(text) || !isWordChar(text[end])
		if beforeOK && afterOK {
			return true
		}
		start = idx + 1
		if start >= len(text) {
			return false
		}
	}
}

func isWordChar(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9' || b == '_' || b == '+' || b == '#'
}

package modify

// Customizations are caller-supplied steering knobs for a tailoring run.
type Customizations struct {
	EmphasizeSkills []string `json:"emphasize_skills,omitempty"`
	IncludeSections []string `json:"include_sections,omitempty"`
	Tone            string   `json:"tone,omitempty"`
}

// Action is the kind of edit a plan entry performs on a section.
type Action string

const (
	ActionReorder   Action = "reorder"
	ActionEmphasize Action = "emphasize"
	ActionAdd       Action = "add"
	ActionRemove    Action = "remove"
)

// PlanEdit is one section-level edit with its justification.
type PlanEdit struct {
	Section   string `json:"section"`
	Action    Action `json:"action"`
	Rationale string `json:"rationale"`
}

// Plan is the ordered edit list produced before any content is rewritten.
type Plan struct {
	Edits             []PlanEdit `json:"edits"`
	SectionsToModify  []string   `json:"sections_to_modify"`
	SkillsToEmphasize []string   `json:"skills_to_emphasize"`
	Tone              string     `json:"tone"`
}

package llm

import _ "embed"

var (
	//go:embed prompts/analyze_job.txt
	promptAnalyzeJob string
	//go:embed prompts/rewrite.txt
	promptRewrite string
	//go:embed prompts/structure_resume.txt
	promptStructureResume string
)

// PromptTemplate returns the embedded prompt template for a task and whether
// the task name was recognized.
func PromptTemplate(task string) (string, bool) {
	switch task {
	case "analyze_job":
		return promptAnalyzeJob, true
	case "rewrite":
		return promptRewrite, true
	case "structure_resume":
		return promptStructureResume, true
	default:
		return "", false
	}
}

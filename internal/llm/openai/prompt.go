package openai

import (
	"fmt"
	"strings"

	"resume-tailor/internal/llm"
)

// Message represents an OpenAI chat message.
type Message struct {
	Role    string
	Content string
}

const (
	systemPromptJSON    = "You are a resume tailoring engine. Respond with JSON only. No markdown. Never omit keys. Output must match the schema exactly."
	systemPromptFixJSON = "You are a JSON repair tool. Return only valid JSON that matches the schema exactly."
)

func buildAnalyzeJobMessages(input llm.AnalyzeJobInput) []Message {
	template, _ := llm.PromptTemplate("analyze_job")
	var b strings.Builder
	if strings.TrimSpace(input.JobTitle) != "" {
		fmt.Fprintf(&b, "Job Title: %s\n", input.JobTitle)
	}
	if strings.TrimSpace(input.CompanyName) != "" {
		fmt.Fprintf(&b, "Company: %s\n", input.CompanyName)
	}
	fmt.Fprintf(&b, "Job Posting:\n%s", input.JobDescription)

	return []Message{
		{Role: "system", Content: systemPromptJSON},
		{Role: "developer", Content: template},
		{Role: "user", Content: b.String()},
	}
}

func buildRewriteMessages(input llm.RewriteInput) []Message {
	template, _ := llm.PromptTemplate("rewrite")
	tone := strings.TrimSpace(input.Tone)
	if tone == "" {
		tone = "professional"
	}
	template = strings.ReplaceAll(template, "{{TONE}}", tone)

	sections := "summary, experience, skills"
	if len(input.Sections) > 0 {
		sections = strings.Join(input.Sections, ", ")
	}
	user := fmt.Sprintf("Sections to rewrite: %s\n\nRequirement gaps:\n%s\n\nResume JSON:\n%s\n\nJob Description:\n%s",
		sections, orNA(input.GapSummary), input.ResumeJSON, orNA(input.JobDescription))

	return []Message{
		{Role: "system", Content: systemPromptJSON},
		{Role: "developer", Content: template},
		{Role: "user", Content: user},
	}
}

func buildStructureMessages(resumeText string) []Message {
	template, _ := llm.PromptTemplate("structure_resume")
	return []Message{
		{Role: "system", Content: systemPromptJSON},
		{Role: "developer", Content: template},
		{Role: "user", Content: fmt.Sprintf("Resume Text:\n%s", resumeText)},
	}
}

func buildFixMessages(raw []byte) []Message {
	return []Message{
		{Role: "system", Content: systemPromptFixJSON},
		{Role: "user", Content: fmt.Sprintf("Fix this JSON to match the schema exactly. Output JSON only:\n%s", string(raw))},
	}
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}

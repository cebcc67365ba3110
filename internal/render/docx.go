package render

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nguyenthenguyen/docx"

	"resume-tailor/internal/resumes"
)

// DocxTemplateRenderer fills DOCX template files from a directory on disk.
// A template named <id>.docx carries {{NAME}}-style placeholders; multi-line
// values rely on the docx library turning "\n" into line breaks.
type DocxTemplateRenderer struct {
	TemplateDir string
}

// NewDocxTemplateRenderer constructs a DocxTemplateRenderer.
func NewDocxTemplateRenderer(templateDir string) *DocxTemplateRenderer {
	return &DocxTemplateRenderer{TemplateDir: templateDir}
}

// RenderDocx fills the named template with the resume's content.
func (r *DocxTemplateRenderer) RenderDocx(templateID string, resume resumes.ResumeData) ([]byte, error) {
	path := filepath.Join(r.TemplateDir, filepath.Base(templateID)+".docx")
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("docx template %s: %w", templateID, err)
	}

	file, err := docx.ReadDocxFile(path)
	if err != nil {
		return nil, fmt.Errorf("read docx template %s: %w", templateID, err)
	}
	defer file.Close()

	doc := file.Editable()
	for placeholder, value := range placeholderValues(resume) {
		if err := doc.Replace(placeholder, value, -1); err != nil {
			return nil, fmt.Errorf("fill %s in template %s: %w", placeholder, templateID, err)
		}
	}

	var buf bytes.Buffer
	if err := doc.Write(&buf); err != nil {
		return nil, fmt.Errorf("write docx: %w", err)
	}
	return buf.Bytes(), nil
}

func placeholderValues(resume resumes.ResumeData) map[string]string {
	return map[string]string{
		"{{NAME}}":           resume.PersonalInfo.Name,
		"{{EMAIL}}":          resume.PersonalInfo.Email,
		"{{PHONE}}":          resume.PersonalInfo.Phone,
		"{{LOCATION}}":       resume.PersonalInfo.Location,
		"{{SUMMARY}}":        resume.Summary,
		"{{SKILLS}}":         strings.Join(resume.Skills, ", "),
		"{{EXPERIENCE}}":     experienceText(resume.Experience),
		"{{EDUCATION}}":      educationText(resume.Education),
		"{{CERTIFICATIONS}}": strings.Join(resume.Certifications, "\n"),
	}
}

func experienceText(items []resumes.ExperienceItem) string {
	var b strings.Builder
	for i, item := range items {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "%s, %s", item.Title, item.Company)
		if item.StartDate != "" {
			fmt.Fprintf(&b, " (%s", item.StartDate)
			if item.EndDate != "" {
				fmt.Fprintf(&b, " - %s", item.EndDate)
			} else {
				b.WriteString(" - Present")
			}
			b.WriteString(")")
		}
		for _, bullet := range item.Bullets {
			fmt.Fprintf(&b, "\n- %s", bullet)
		}
	}
	return b.String()
}

func educationText(items []resumes.EducationItem) string {
	var b strings.Builder
	for i, item := range items {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%s, %s", item.Degree, item.Institution)
		if item.Year != "" {
			fmt.Fprintf(&b, " (%s)", item.Year)
		}
	}
	return b.String()
}

var _ DocxRenderer = (*DocxTemplateRenderer)(nil)

package render

import (
	"embed"
	"fmt"
	"html/template"
)

//go:embed templates/*.html
var templateFiles embed.FS

// TemplateInfo describes one selectable render template.
type TemplateInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// DefaultTemplateID is used when the caller does not pick a template.
const DefaultTemplateID = "modern"

var templateCatalog = []TemplateInfo{
	{ID: "modern", Name: "Modern", Description: "Single column, sans-serif, skills up top"},
	{ID: "classic", Name: "Classic", Description: "Serif, traditional ordering, conservative spacing"},
	{ID: "creative", Name: "Creative", Description: "Accent color and two-column header"},
	{ID: "minimal", Name: "Minimal", Description: "Plain text look, maximum ATS compatibility"},
}

// Templates lists the available render templates.
func Templates() []TemplateInfo {
	out := make([]TemplateInfo, len(templateCatalog))
	copy(out, templateCatalog)
	return out
}

// KnownTemplate reports whether id names a registered template.
func KnownTemplate(id string) bool {
	for _, t := range templateCatalog {
		if t.ID == id {
			return true
		}
	}
	return false
}

func loadTemplate(id string) (*template.Template, error) {
	if !KnownTemplate(id) {
		return nil, fmt.Errorf("unknown template %q", id)
	}
	return template.ParseFS(templateFiles, "templates/"+id+".html")
}

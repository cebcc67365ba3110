package render

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"resume-tailor/internal/resumes"
	"resume-tailor/internal/shared/fault"
)

// Format is a supported artifact output format.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatDOCX Format = "docx"
	FormatHTML Format = "html"
)

// Artifact is a rendered resume ready for storage.
type Artifact struct {
	Bytes       []byte
	ContentType string
	Ext         string
}

// PDFEngine converts HTML to PDF bytes. Implemented by the headless Chrome
// engine; tests substitute a fake.
type PDFEngine interface {
	RenderHTMLToPDF(ctx context.Context, html string) ([]byte, error)
}

// DocxRenderer fills a DOCX template from structured resume content.
type DocxRenderer interface {
	RenderDocx(templateID string, resume resumes.ResumeData) ([]byte, error)
}

// Service renders tailored resumes into artifacts.
type Service struct {
	PDF  PDFEngine
	Docx DocxRenderer
}

// NewService constructs a Service.
func NewService(pdf PDFEngine, docx DocxRenderer) *Service {
	return &Service{PDF: pdf, Docx: docx}
}

// Render produces the artifact for a tailored resume. Structural problems
// (unknown template or format, content the template can't hold) are fatal;
// engine failures are transient and may be retried.
func (s *Service) Render(ctx context.Context, resume resumes.ResumeData, templateID string, format Format) (Artifact, error) {
	if strings.TrimSpace(resume.PersonalInfo.Name) == "" {
		return Artifact{}, fault.Newf(fault.KindRender, "resume has no name to render")
	}
	if templateID == "" {
		templateID = DefaultTemplateID
	}
	if !KnownTemplate(templateID) {
		return Artifact{}, fault.Newf(fault.KindRender, "unknown template %q", templateID)
	}

	switch format {
	case FormatHTML:
		html, err := BuildHTML(resume, templateID)
		if err != nil {
			return Artifact{}, fault.New(fault.KindRender, err)
		}
		return Artifact{Bytes: []byte(html), ContentType: "text/html; charset=utf-8", Ext: ".html"}, nil

	case FormatPDF, "":
		html, err := BuildHTML(resume, templateID)
		if err != nil {
			return Artifact{}, fault.New(fault.KindRender, err)
		}
		if s.PDF == nil {
			return Artifact{}, fault.Newf(fault.KindRender, "no PDF engine configured")
		}
		pdfBytes, err := s.PDF.RenderHTMLToPDF(ctx, html)
		if err != nil {
			return Artifact{}, fault.Transient(fault.KindRender, fmt.Errorf("pdf engine: %w", err))
		}
		return Artifact{Bytes: pdfBytes, ContentType: "application/pdf", Ext: ".pdf"}, nil

	case FormatDOCX:
		if s.Docx == nil {
			return Artifact{}, fault.Newf(fault.KindRender, "no DOCX renderer configured")
		}
		docxBytes, err := s.Docx.RenderDocx(templateID, resume)
		if err != nil {
			return Artifact{}, fault.New(fault.KindRender, err)
		}
		return Artifact{
			Bytes:       docxBytes,
			ContentType: "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
			Ext:         ".docx",
		}, nil

	default:
		return Artifact{}, fault.Newf(fault.KindRender, "unsupported output format %q", format)
	}
}

// BuildHTML renders the resume through the named HTML template.
func BuildHTML(resume resumes.ResumeData, templateID string) (string, error) {
	tmpl, err := loadTemplate(templateID)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, resume); err != nil {
		return "", fmt.Errorf("execute template %s: %w", templateID, err)
	}
	return buf.String(), nil
}

package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"

	"resume-tailor/internal/llm"
	"resume-tailor/internal/resumes"
	"resume-tailor/internal/shared/fault"
)

const maxFileBytes = 10 << 20

// Service turns uploaded resume files into structured content using the
// model collaborator.
type Service struct {
	LLM llm.Client
}

// NewService constructs a Service.
func NewService(client llm.Client) *Service {
	return &Service{LLM: client}
}

// ParseResume extracts text from a PDF/DOCX upload and structures it via the
// model. The structured payload is validated before returning.
func (s *Service) ParseResume(ctx context.Context, fileName string, r io.Reader) (resumes.ResumeData, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxFileBytes+1))
	if err != nil {
		return resumes.ResumeData{}, fault.New(fault.KindStorage, fmt.Errorf("read upload: %w", err))
	}
	if len(data) > maxFileBytes {
		return resumes.ResumeData{}, fault.Newf(fault.KindValidation, "file exceeds %d bytes", maxFileBytes)
	}

	mimeType := mime.TypeByExtension(filepath.Ext(fileName))
	text, err := TextFromBytes(ctx, data, mimeType, fileName)
	if err != nil {
		return resumes.ResumeData{}, fault.New(fault.KindValidation, err)
	}
	if strings.TrimSpace(text) == "" {
		return resumes.ResumeData{}, fault.Newf(fault.KindValidation, "no text could be extracted from %s", fileName)
	}

	raw, err := s.LLM.StructureResume(ctx, text)
	if err != nil {
		return resumes.ResumeData{}, fault.New(fault.KindUpstreamModel, err)
	}
	if err := resumes.ValidateRaw(raw); err != nil {
		return resumes.ResumeData{}, fault.New(fault.KindUpstreamModel, err)
	}
	var parsed resumes.ResumeData
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return resumes.ResumeData{}, fault.New(fault.KindUpstreamModel, fmt.Errorf("structured resume decode: %w", err))
	}
	return parsed, nil
}

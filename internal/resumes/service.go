package resumes

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
)

// FileParser turns an uploaded resume file into structured content.
// Implemented by the extract package.
type FileParser interface {
	ParseResume(ctx context.Context, fileName string, r io.Reader) (ResumeData, error)
}

// Service contains business logic for master resumes.
type Service struct {
	Repo Repo
}

// NewService constructs a Service.
func NewService(repo Repo) *Service {
	return &Service{Repo: repo}
}

// CreateFromJSON validates a raw JSON resume and stores it as the user's master resume.
func (s *Service) CreateFromJSON(ctx context.Context, userID string, raw []byte) (MasterResume, error) {
	data, err := decodeAndValidate(raw)
	if err != nil {
		return MasterResume{}, err
	}
	now := time.Now().UTC()
	resume := MasterResume{
		ID:         uuid.NewString(),
		UserID:     userID,
		Data:       data,
		SourceType: SourceJSON,
		Version:    1,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.Repo.Create(ctx, resume); err != nil {
		return MasterResume{}, err
	}
	return resume, nil
}

// CreateFromFile extracts structured content from an uploaded file and stores it.
func (s *Service) CreateFromFile(ctx context.Context, userID string, parser FileParser, fileName, mimeType string, size int64, r io.Reader) (MasterResume, error) {
	if parser == nil {
		return MasterResume{}, fmt.Errorf("%w: file uploads are not supported", ErrInvalidInput)
	}
	data, err := parser.ParseResume(ctx, fileName, r)
	if err != nil {
		return MasterResume{}, err
	}
	now := time.Now().UTC()
	resume := MasterResume{
		ID:         uuid.NewString(),
		UserID:     userID,
		Data:       data,
		SourceType: SourceFile,
		Source: SourceMetadata{
			FileName:   fileName,
			SizeBytes:  size,
			MimeType:   mimeType,
			UploadedAt: now,
		},
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.Repo.Create(ctx, resume); err != nil {
		return MasterResume{}, err
	}
	return resume, nil
}

// Get returns the user's master resume.
func (s *Service) Get(ctx context.Context, userID string) (MasterResume, error) {
	return s.Repo.GetByUser(ctx, userID)
}

// UpdateFromJSON validates and replaces the user's master resume content.
// expectedVersion guards against concurrent writers.
func (s *Service) UpdateFromJSON(ctx context.Context, userID string, raw []byte, expectedVersion int) (MasterResume, error) {
	data, err := decodeAndValidate(raw)
	if err != nil {
		return MasterResume{}, err
	}
	current, err := s.Repo.GetByUser(ctx, userID)
	if err != nil {
		return MasterResume{}, err
	}
	if expectedVersion == 0 {
		expectedVersion = current.Version
	}
	updated := current
	updated.Data = data
	updated.SourceType = SourceJSON
	return s.Repo.Update(ctx, updated, expectedVersion)
}

// Delete removes the user's master resume.
func (s *Service) Delete(ctx context.Context, userID string) error {
	return s.Repo.Delete(ctx, userID)
}

func decodeAndValidate(raw []byte) (ResumeData, error) {
	if err := ValidateRaw(raw); err != nil {
		return ResumeData{}, err
	}
	var data ResumeData
	if err := json.Unmarshal(raw, &data); err != nil {
		return ResumeData{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return data, nil
}

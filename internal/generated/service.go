package generated

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"time"

	"github.com/google/uuid"

	"resume-tailor/internal/shared/storage/object"
)

// NewArtifact is everything the pipeline hands over once rendering succeeds.
type NewArtifact struct {
	UserID       string
	JobTitle     string
	CompanyName  string
	JobPosting   string
	TemplateID   string
	OutputFormat string
	ContentType  string
	Ext          string
	MatchScore   float64
	Bytes        []byte
}

// Service contains business logic for generated resume records and their
// stored artifacts.
type Service struct {
	Repo  Repo
	Store object.ObjectStore

	now func() time.Time
}

// NewService constructs a Service.
func NewService(repo Repo, store object.ObjectStore) *Service {
	return &Service{Repo: repo, Store: store, now: time.Now}
}

// NewServiceWithClock constructs a Service with an injectable clock.
func NewServiceWithClock(repo Repo, store object.ObjectStore, now func() time.Time) *Service {
	return &Service{Repo: repo, Store: store, now: now}
}

// Register persists the rendered artifact and records its metadata. The
// record expires ArtifactTTL after creation.
func (s *Service) Register(ctx context.Context, artifact NewArtifact) (GeneratedResume, error) {
	if artifact.UserID == "" || len(artifact.Bytes) == 0 {
		return GeneratedResume{}, ErrInvalidInput
	}

	id := uuid.NewString()
	fileName := fmt.Sprintf("generated/%s%s", id, artifact.Ext)
	key, size, _, err := s.Store.Save(ctx, artifact.UserID, fileName, bytes.NewReader(artifact.Bytes))
	if err != nil {
		return GeneratedResume{}, err
	}

	now := s.now().UTC()
	resume := GeneratedResume{
		ID:           id,
		UserID:       artifact.UserID,
		JobTitle:     artifact.JobTitle,
		CompanyName:  artifact.CompanyName,
		JobPosting:   artifact.JobPosting,
		TemplateID:   artifact.TemplateID,
		OutputFormat: artifact.OutputFormat,
		StorageKey:   key,
		ContentType:  artifact.ContentType,
		SizeBytes:    size,
		MatchScore:   artifact.MatchScore,
		CreatedAt:    now,
		ExpiresAt:    now.Add(ArtifactTTL),
	}
	if err := s.Repo.Create(ctx, resume); err != nil {
		// The record is the source of truth; an orphaned object will be
		// collected once its key stops resolving.
		_ = s.Store.Delete(ctx, key)
		return GeneratedResume{}, err
	}
	return resume, nil
}

// Get returns a record owned by the user.
func (s *Service) Get(ctx context.Context, userID, id string) (GeneratedResume, error) {
	if userID == "" || id == "" {
		return GeneratedResume{}, ErrInvalidInput
	}
	return s.Repo.GetByID(ctx, userID, id)
}

// Open returns the record plus a reader over the stored artifact bytes.
func (s *Service) Open(ctx context.Context, userID, id string) (GeneratedResume, io.ReadCloser, error) {
	resume, err := s.Get(ctx, userID, id)
	if err != nil {
		return GeneratedResume{}, nil, err
	}
	reader, err := s.Store.Open(ctx, resume.StorageKey)
	if err != nil {
		return GeneratedResume{}, nil, err
	}
	return resume, reader, nil
}

// List returns one page of the user's generated resumes, newest first.
func (s *Service) List(ctx context.Context, userID string, filter ListFilter) (Page, error) {
	if userID == "" {
		return Page{}, ErrInvalidInput
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Limit > 100 {
		filter.Limit = 100
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	items, total, err := s.Repo.ListByUser(ctx, userID, filter)
	if err != nil {
		return Page{}, err
	}
	return Page{
		Items:       items,
		Total:       total,
		Limit:       filter.Limit,
		Offset:      filter.Offset,
		HasNext:     filter.Offset+len(items) < total,
		HasPrevious: filter.Offset > 0,
	}, nil
}

// Delete removes the record and its stored artifact. A failed object delete
// is not surfaced: the record is gone and retention cannot resurrect it.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	if userID == "" || id == "" {
		return ErrInvalidInput
	}
	resume, err := s.Repo.Delete(ctx, userID, id)
	if err != nil {
		return err
	}
	_ = s.Store.Delete(ctx, resume.StorageKey)
	return nil
}

// RemoveExpired deletes up to limit records whose retention window has
// passed, together with their artifacts. It returns how many were removed.
func (s *Service) RemoveExpired(ctx context.Context, limit int) (int, error) {
	expired, err := s.Repo.ListExpired(ctx, s.now().UTC(), limit)
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, resume := range expired {
		// A record whose object is already gone still has to go away,
		// otherwise the sweep would retry it forever.
		if err := s.Store.Delete(ctx, resume.StorageKey); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return removed, err
		}
		if err := s.Repo.DeleteRecord(ctx, resume.ID); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}

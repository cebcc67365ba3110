package uploads

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"time"

	"github.com/google/uuid"

	"resume-tailor/internal/shared/storage/object"
)

const maxUploadBytes = 10 << 20

var allowedContentTypes = map[string]struct{}{
	"application/pdf":    {},
	"application/msword": {},
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": {},
	"application/json": {},
	"text/plain":       {},
}

// Service stores temp uploads and enforces their expiry.
type Service struct {
	Repo  Repo
	Store object.ObjectStore
	TTL   time.Duration

	now func() time.Time
}

// NewService constructs a Service with the default 24h TTL.
func NewService(repo Repo, store object.ObjectStore) *Service {
	return &Service{Repo: repo, Store: store, TTL: DefaultTTL, now: time.Now}
}

// Save persists the file and records its expiry.
func (s *Service) Save(ctx context.Context, userID, fileName, contentType string, r io.Reader) (TempUpload, error) {
	if userID == "" || fileName == "" {
		return TempUpload{}, ErrInvalidInput
	}
	if _, ok := allowedContentTypes[contentType]; !ok {
		return TempUpload{}, ErrInvalidInput
	}

	key, size, detected, err := s.Store.Save(ctx, userID, fileName, io.LimitReader(r, maxUploadBytes+1))
	if err != nil {
		return TempUpload{}, err
	}
	if size > maxUploadBytes {
		_ = s.Store.Delete(ctx, key)
		return TempUpload{}, ErrInvalidInput
	}
	if contentType == "" {
		contentType = detected
	}

	ttl := s.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	now := s.now().UTC()
	upload := TempUpload{
		ID:          uuid.NewString(),
		UserID:      userID,
		FileName:    fileName,
		ContentType: contentType,
		SizeBytes:   size,
		StorageKey:  key,
		CreatedAt:   now,
		ExpiresAt:   now.Add(ttl),
	}
	if err := s.Repo.Create(ctx, upload); err != nil {
		_ = s.Store.Delete(ctx, key)
		return TempUpload{}, err
	}
	return upload, nil
}

// Open returns the record plus a reader over the stored bytes. Expired
// uploads behave as missing even before the sweep collects them.
func (s *Service) Open(ctx context.Context, userID, id string) (TempUpload, io.ReadCloser, error) {
	upload, err := s.Repo.GetByID(ctx, userID, id)
	if err != nil {
		return TempUpload{}, nil, err
	}
	if !upload.ExpiresAt.After(s.now().UTC()) {
		return TempUpload{}, nil, ErrNotFound
	}
	reader, err := s.Store.Open(ctx, upload.StorageKey)
	if err != nil {
		return TempUpload{}, nil, err
	}
	return upload, reader, nil
}

// RemoveExpired deletes up to limit expired uploads and their files,
// returning how many were removed.
func (s *Service) RemoveExpired(ctx context.Context, limit int) (int, error) {
	expired, err := s.Repo.ListExpired(ctx, s.now().UTC(), limit)
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, upload := range expired {
		if err := s.Store.Delete(ctx, upload.StorageKey); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return removed, err
		}
		if err := s.Repo.DeleteRecord(ctx, upload.ID); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}

package uploads

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"
	"sync"
	"testing"
	"time"
)

type fakeStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: map[string][]byte{}}
}

func (s *fakeStore) Save(ctx context.Context, userID, fileName string, r io.Reader) (string, int64, string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", 0, "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	key := fmt.Sprintf("%s/%s", userID, fileName)
	s.objects[key] = data
	return key, int64(len(data)), "application/octet-stream", nil
}

func (s *fakeStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.objects[key]
	if !ok {
		return nil, fs.ErrNotExist
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *fakeStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

func TestSaveAndOpenRoundTrip(t *testing.T) {
	svc := NewService(NewMemoryRepo(), newFakeStore())
	ctx := context.Background()

	upload, err := svc.Save(ctx, "user-1", "resume.pdf", "application/pdf", strings.NewReader("%PDF-1.7 body"))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if upload.ExpiresAt.Sub(upload.CreatedAt) != DefaultTTL {
		t.Fatalf("ttl = %s", upload.ExpiresAt.Sub(upload.CreatedAt))
	}

	got, reader, err := svc.Open(ctx, "user-1", upload.ID)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer reader.Close()
	data, err := io.ReadAll(reader)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "%PDF-1.7 body" || got.FileName != "resume.pdf" {
		t.Fatalf("round trip: %q %+v", data, got)
	}
}

func TestSaveRejectsUnsupportedContentType(t *testing.T) {
	svc := NewService(NewMemoryRepo(), newFakeStore())

	_, err := svc.Save(context.Background(), "user-1", "payload.exe", "application/octet-stream", strings.NewReader("nope"))
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("save: %v, want ErrInvalidInput", err)
	}
}

func TestOpenIsScopedToOwner(t *testing.T) {
	svc := NewService(NewMemoryRepo(), newFakeStore())
	ctx := context.Background()

	upload, err := svc.Save(ctx, "user-1", "resume.pdf", "application/pdf", strings.NewReader("data"))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, _, err := svc.Open(ctx, "user-2", upload.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("cross-user open: %v, want ErrNotFound", err)
	}
}

func TestExpiredUploadBehavesAsMissingAndIsSwept(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := now
	store := newFakeStore()
	svc := NewService(NewMemoryRepo(), store)
	svc.now = func() time.Time { return clock }
	ctx := context.Background()

	upload, err := svc.Save(ctx, "user-1", "resume.pdf", "application/pdf", strings.NewReader("data"))
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	clock = now.Add(DefaultTTL + time.Minute)
	if _, _, err := svc.Open(ctx, "user-1", upload.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("open expired: %v, want ErrNotFound", err)
	}

	removed, err := svc.RemoveExpired(ctx, 100)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if removed != 1 {
		t.Fatalf("removed = %d, want 1", removed)
	}
	if len(store.objects) != 0 {
		t.Fatalf("store still holds %d objects", len(store.objects))
	}

	again, err := svc.RemoveExpired(ctx, 100)
	if err != nil {
		t.Fatalf("second sweep: %v", err)
	}
	if again != 0 {
		t.Fatalf("second sweep removed %d, want 0", again)
	}
}

package attachment

import (
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/JiggaBS/AutoAndrewProject-sub000/internal/config"
	"github.com/JiggaBS/AutoAndrewProject-sub000/internal/domain"
	internal_errors "github.com/JiggaBS/AutoAndrewProject-sub000/internal/errors"
)

// Mock structs
type MockObjectStore struct {
	PutFunc        func(ctx context.Context, key, contentType string, body io.Reader) error
	PresignGetFunc func(ctx context.Context, key string, ttl time.Duration) (string, error)

	putCalls     []string
	presignCalls []string
}

func (m *MockObjectStore) Put(ctx context.Context, key, contentType string, body io.Reader) error {
	m.putCalls = append(m.putCalls, key)
	if m.PutFunc != nil {
		return m.PutFunc(ctx, key, contentType, body)
	}
	return nil
}

func (m *MockObjectStore) PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error) {
	m.presignCalls = append(m.presignCalls, key)
	if m.PresignGetFunc != nil {
		return m.PresignGetFunc(ctx, key, ttl)
	}
	return fmt.Sprintf("https://bucket.example.com/%s?sig=%d", key, len(m.presignCalls)), nil
}

func newTestManager(store *MockObjectStore) *Manager {
	m := New(store, config.Limits{UploadUrlTTL: 24 * time.Hour, PreviewUrlTTL: time.Hour})
	m.now = func() time.Time { return time.UnixMilli(1700000000000) }
	return m
}

func pendingFile(name, mime string) *domain.PendingFile {
	return &domain.PendingFile{
		FileCommonMetadata: domain.FileCommonMetadata{Filename: name, MimeType: mime, SizeBytes: 4},
		Data:               strings.NewReader("data"),
	}
}

func TestUpload_CanonicalPath(t *testing.T) {
	store := &MockObjectStore{}
	m := newTestManager(store)

	att, err := m.Upload(context.Background(), 42, pendingFile("Фото машины (1).jpg", "image/jpeg"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	pattern := regexp.MustCompile(`^thread/42/\d+-[A-Za-z0-9._-]+$`)
	if !pattern.MatchString(att.StoragePath) {
		t.Errorf("storage path %q does not match canonical scheme", att.StoragePath)
	}
	if att.StoragePath != "thread/42/1700000000000-_____________1_.jpg" {
		t.Errorf("unexpected sanitized path %q", att.StoragePath)
	}
	if att.Url == "" {
		t.Error("expected initial signed URL on upload")
	}
	if att.Name != "Фото машины (1).jpg" {
		t.Errorf("display name must keep the original filename, got %q", att.Name)
	}
}

func TestUpload_ProviderErrorIsUploadFailed(t *testing.T) {
	store := &MockObjectStore{
		PutFunc: func(ctx context.Context, key, contentType string, body io.Reader) error {
			return errors.New("connection reset")
		},
	}
	m := newTestManager(store)

	_, err := m.Upload(context.Background(), 1, pendingFile("a.pdf", "application/pdf"))
	if internal_errors.StatusCode(err) != 502 {
		t.Fatalf("expected UploadFailed(502), got %v", err)
	}
	if len(store.presignCalls) != 0 {
		t.Error("failed upload must not presign anything")
	}
}

func TestUpload_PresignFailureIsNotFatal(t *testing.T) {
	store := &MockObjectStore{
		PresignGetFunc: func(ctx context.Context, key string, ttl time.Duration) (string, error) {
			return "", errors.New("rate limited")
		},
	}
	m := newTestManager(store)

	att, err := m.Upload(context.Background(), 1, pendingFile("a.pdf", "application/pdf"))
	if err != nil {
		t.Fatalf("upload must survive a presign failure: %v", err)
	}
	if att.Url != "" {
		t.Error("expected empty URL when presign fails")
	}
	if att.StoragePath == "" {
		t.Error("storage path must still be set")
	}
}

func TestUploadBatch_IndependentOutcomes(t *testing.T) {
	store := &MockObjectStore{
		PutFunc: func(ctx context.Context, key, contentType string, body io.Reader) error {
			if strings.Contains(key, "bad") {
				return errors.New("boom")
			}
			return nil
		},
	}
	m := newTestManager(store)

	results := m.UploadBatch(context.Background(), 7, []*domain.PendingFile{
		pendingFile("ok1.txt", "text/plain"),
		pendingFile("bad.txt", "text/plain"),
		pendingFile("ok2.txt", "text/plain"),
	})

	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if results[0].Err != nil || results[2].Err != nil {
		t.Error("good files must succeed despite a failing sibling")
	}
	if results[1].Err == nil {
		t.Error("bad file must report its own failure")
	}
}

func TestResolveUrl_AlwaysRederives(t *testing.T) {
	store := &MockObjectStore{}
	m := newTestManager(store)

	att := domain.Attachment{
		StoragePath: "thread/42/123-car.jpg",
		Url:         "https://bucket.example.com/thread/42/123-car.jpg?sig=stale",
	}

	first, err := m.ResolveUrl(context.Background(), att)
	if err != nil {
		t.Fatal(err)
	}
	second, err := m.ResolveUrl(context.Background(), att)
	if err != nil {
		t.Fatal(err)
	}
	if first == att.Url || second == att.Url {
		t.Error("stored URL must never be returned as-is")
	}
	if first == second {
		t.Error("each resolution must derive a fresh URL")
	}
	for _, key := range store.presignCalls {
		if key != att.StoragePath {
			t.Errorf("presigned wrong key %q", key)
		}
	}
}

func TestResolveUrl_PathExtractedFromStoredUrl(t *testing.T) {
	store := &MockObjectStore{}
	m := newTestManager(store)

	att := domain.Attachment{
		Url: "https://s3.example.com/my-bucket/thread/42/123-car.jpg?X-Amz-Expires=3600",
	}
	if _, err := m.ResolveUrl(context.Background(), att); err != nil {
		t.Fatalf("expected fallback extraction to succeed: %v", err)
	}
	if store.presignCalls[0] != "thread/42/123-car.jpg" {
		t.Errorf("extracted wrong path %q", store.presignCalls[0])
	}
}

func TestResolveUrl_Unresolvable(t *testing.T) {
	store := &MockObjectStore{}
	m := newTestManager(store)

	_, err := m.ResolveUrl(context.Background(), domain.Attachment{Name: "ghost.png"})
	if internal_errors.StatusCode(err) != 422 {
		t.Fatalf("expected AttachmentUnresolvable(422), got %v", err)
	}
	if len(store.presignCalls) != 0 {
		t.Error("unresolvable attachment must not hit the store")
	}
}

func TestResolveUrl_PresignErrorDegrades(t *testing.T) {
	store := &MockObjectStore{
		PresignGetFunc: func(ctx context.Context, key string, ttl time.Duration) (string, error) {
			return "", errors.New("throttled")
		},
	}
	m := newTestManager(store)

	_, err := m.ResolveUrl(context.Background(), domain.Attachment{StoragePath: "thread/1/1-a.png"})
	if internal_errors.StatusCode(err) != 422 {
		t.Fatalf("expected AttachmentUnresolvable(422), got %v", err)
	}
}

func TestExtractPathFromUrl(t *testing.T) {
	cases := []struct {
		raw  string
		want string
		ok   bool
	}{
		{"https://s3.eu-central-1.amazonaws.com/bucket/thread/9/1-x.pdf?sig=a", "thread/9/1-x.pdf", true},
		{"https://bucket.s3.amazonaws.com/thread/9/1-x.pdf", "thread/9/1-x.pdf", true},
		{"https://example.com/nothing/here.png", "", false},
		{"://broken", "", false},
		{"", "", false},
	}
	for _, c := range cases {
		got, ok := ExtractPathFromUrl(c.raw)
		if got != c.want || ok != c.ok {
			t.Errorf("ExtractPathFromUrl(%q) = %q, %v; want %q, %v", c.raw, got, ok, c.want, c.ok)
		}
	}
}

func TestRequestIdFromPath(t *testing.T) {
	cases := []struct {
		path string
		want domain.RequestId
		ok   bool
	}{
		{"thread/42/123-photo.jpg", 42, true},
		{"thread/1/1-a.pdf", 1, true},
		{"thread/0/1-a.pdf", 0, false},
		{"thread/-7/1-a.pdf", 0, false},
		{"thread/abc/1-a.pdf", 0, false},
		{"thread/42", 0, false},
		{"other/42/1-a.pdf", 0, false},
		{"", 0, false},
	}
	for _, c := range cases {
		got, ok := RequestIdFromPath(c.path)
		if got != c.want || ok != c.ok {
			t.Errorf("RequestIdFromPath(%q) = %d, %v; want %d, %v", c.path, got, ok, c.want, c.ok)
		}
	}
}

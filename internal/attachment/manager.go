// Package attachment moves validated uploads into object storage and hands
// out short-lived signed URLs. Storage paths are permanent identities; URLs
// are throwaway capabilities derived on demand.
package attachment

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/JiggaBS/AutoAndrewProject-sub000/internal/config"
	"github.com/JiggaBS/AutoAndrewProject-sub000/internal/domain"
	internal_errors "github.com/JiggaBS/AutoAndrewProject-sub000/internal/errors"
)

// ObjectStore is the slice of the s3 layer the manager needs.
type ObjectStore interface {
	Put(ctx context.Context, key, contentType string, body io.Reader) error
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
}

type Manager struct {
	store      ObjectStore
	uploadTTL  time.Duration
	previewTTL time.Duration
	now        func() time.Time
}

func New(store ObjectStore, limits config.Limits) *Manager {
	return &Manager{
		store:      store,
		uploadTTL:  limits.UploadUrlTTL,
		previewTTL: limits.PreviewUrlTTL,
		now:        time.Now,
	}
}

// UploadResult reports one file's outcome. A batch never hides individual
// failures behind a single error.
type UploadResult struct {
	Attachment domain.Attachment
	Err        error
}

// Upload moves one validated file into the bucket and returns its attachment
// record with an initial long-lived URL. A provider error leaves no partial
// record behind: the attachment either fully exists or the caller gets
// UploadFailed.
func (m *Manager) Upload(ctx context.Context, requestId domain.RequestId, file *domain.PendingFile) (domain.Attachment, error) {
	path := m.storagePath(requestId, file.Filename)

	if err := m.store.Put(ctx, path, file.MimeType, file.Data); err != nil {
		slog.Error("attachment upload failed", "path", path, "err", err)
		return domain.Attachment{}, internal_errors.UploadFailed(fmt.Sprintf("Upload of %s failed", file.Filename))
	}

	att := domain.Attachment{
		StoragePath: path,
		Name:        file.Filename,
		MimeType:    file.MimeType,
		SizeBytes:   file.SizeBytes,
		ImageWidth:  file.ImageWidth,
		ImageHeight: file.ImageHeight,
	}

	// The initial URL is a convenience for the sender's own render. Failing
	// to mint it is not an upload failure: the object is durable and any
	// later ResolveUrl call can derive a fresh URL from the path.
	url, err := m.store.PresignGet(ctx, path, m.uploadTTL)
	if err != nil {
		slog.Warn("initial presign failed, attachment stays resolvable by path", "path", path, "err", err)
	} else {
		att.Url = url
	}
	return att, nil
}

// UploadBatch uploads every file and reports per-file outcomes in input
// order. One bad file does not sink the rest of the batch.
func (m *Manager) UploadBatch(ctx context.Context, requestId domain.RequestId, files []*domain.PendingFile) []UploadResult {
	results := make([]UploadResult, 0, len(files))
	for _, f := range files {
		att, err := m.Upload(ctx, requestId, f)
		results = append(results, UploadResult{Attachment: att, Err: err})
	}
	return results
}

// ResolveUrl derives a fresh short-lived URL for an attachment. Any URL the
// record already carries is treated as an expired cache hint, never trusted.
// Side-effect free and safe to call concurrently per rendered thumbnail; a
// failure degrades to AttachmentUnresolvable for this attachment only.
func (m *Manager) ResolveUrl(ctx context.Context, att domain.Attachment) (string, error) {
	path := att.StoragePath
	if path == "" {
		// Legacy records persisted only the (possibly expired) URL.
		extracted, ok := ExtractPathFromUrl(att.Url)
		if !ok {
			return "", internal_errors.AttachmentUnresolvable(fmt.Sprintf("Attachment %q has no storage path", att.Name))
		}
		path = extracted
	}

	url, err := m.store.PresignGet(ctx, path, m.previewTTL)
	if err != nil {
		slog.Warn("presign failed", "path", path, "err", err)
		return "", internal_errors.AttachmentUnresolvable(fmt.Sprintf("Could not derive URL for %q", att.Name))
	}
	return url, nil
}

// storagePath builds the canonical object key:
// thread/{requestId}/{unixMillis}-{sanitizedName}. The millisecond timestamp
// makes concurrent uploads of the same filename collision-resistant.
func (m *Manager) storagePath(requestId domain.RequestId, filename string) string {
	return fmt.Sprintf("thread/%d/%d-%s", requestId, m.now().UnixMilli(), SanitizeFilename(filename))
}

// SanitizeFilename replaces every rune outside [a-zA-Z0-9._-] with '_' so
// the original name survives in the key without escaping surprises.
func SanitizeFilename(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.' || r == '-' || r == '_':
			return r
		}
		return '_'
	}, name)
}

// RequestIdFromPath parses the owning request id out of a canonical storage
// path (thread/{requestId}/{file}). Callers use it to authorize access
// before presigning a path a client handed them.
func RequestIdFromPath(path string) (domain.RequestId, bool) {
	segments := strings.Split(path, "/")
	if len(segments) < 3 || segments[0] != "thread" {
		return 0, false
	}
	id, err := strconv.ParseInt(segments[1], 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return domain.RequestId(id), true
}

// ExtractPathFromUrl recovers the canonical storage path from a previously
// issued URL. It looks for the "thread/" segment so both path-style and
// virtual-hosted-style URLs work.
func ExtractPathFromUrl(raw string) (string, bool) {
	if raw == "" {
		return "", false
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return "", false
	}
	segments := strings.Split(strings.TrimPrefix(parsed.Path, "/"), "/")
	for i, seg := range segments {
		if seg == "thread" && i+2 < len(segments) {
			return strings.Join(segments[i:], "/"), true
		}
	}
	return "", false
}

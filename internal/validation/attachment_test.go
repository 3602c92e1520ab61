package validation

import (
	"bytes"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/JiggaBS/AutoAndrewProject-sub000/internal/domain"
)

// buildMultipart produces parsed file headers the way a handler would see
// them after ParseMultipartForm.
func buildMultipart(t *testing.T, files map[string][]byte, contentTypes map[string]string) []*multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for name, data := range files {
		header := make(map[string][]string)
		header["Content-Disposition"] = []string{`form-data; name="files"; filename="` + name + `"`}
		if ct, ok := contentTypes[name]; ok {
			header["Content-Type"] = []string{ct}
		}
		part, err := w.CreatePart(header)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := part.Write(data); err != nil {
			t.Fatal(err)
		}
	}
	w.Close()

	req := httptest.NewRequest(http.MethodPost, "/", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	if err := req.ParseMultipartForm(32 << 20); err != nil {
		t.Fatal(err)
	}
	return req.MultipartForm.File["files"]
}

func TestValidateAttachments_AllowedTypes(t *testing.T) {
	headers := buildMultipart(t,
		map[string][]byte{"report.pdf": []byte("%PDF-1.4"), "data.csv": []byte("a,b\n1,2\n")},
		map[string]string{"report.pdf": "application/pdf", "data.csv": "text/csv"},
	)

	pending, err := ValidateAttachments(headers, 10<<20, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("expected 2 pending files, got %d", len(pending))
	}
	for _, p := range pending {
		if !AllowedMimeTypes[p.MimeType] {
			t.Errorf("pending file has disallowed mime %q", p.MimeType)
		}
	}
}

func TestValidateAttachments_RejectsDisallowedMime(t *testing.T) {
	headers := buildMultipart(t,
		map[string][]byte{"payload.exe": {0x4d, 0x5a}},
		map[string]string{"payload.exe": "application/x-msdownload"},
	)

	_, err := ValidateAttachments(headers, 10<<20, 10)
	if !errors.Is(err, ErrInvalidMimeType) {
		t.Fatalf("expected ErrInvalidMimeType, got %v", err)
	}
}

func TestValidateAttachments_RejectsOversizedFile(t *testing.T) {
	headers := buildMultipart(t,
		map[string][]byte{"big.txt": bytes.Repeat([]byte("x"), 2048)},
		map[string]string{"big.txt": "text/plain"},
	)

	_, err := ValidateAttachments(headers, 1024, 10)
	if !errors.Is(err, ErrFileTooLarge) {
		t.Fatalf("expected ErrFileTooLarge, got %v", err)
	}
}

func TestValidateAttachments_RejectsOversizedBatch(t *testing.T) {
	files := map[string][]byte{}
	types := map[string]string{}
	for _, name := range []string{"a.txt", "b.txt", "c.txt"} {
		files[name] = []byte("ok")
		types[name] = "text/plain"
	}
	headers := buildMultipart(t, files, types)

	_, err := ValidateAttachments(headers, 10<<20, 2)
	if !errors.Is(err, ErrTooManyAttachments) {
		t.Fatalf("expected ErrTooManyAttachments, got %v", err)
	}
}

func TestValidateAttachments_MidBatchFailureFailsWholeBatch(t *testing.T) {
	// deterministic part order: the good file comes first, so it is already
	// open when the second file fails the allow-list
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	parts := []struct {
		name, contentType, data string
	}{
		{"notes.txt", "text/plain", "hello"},
		{"payload.sh", "application/x-sh", "#!/bin/sh"},
	}
	for _, p := range parts {
		header := make(map[string][]string)
		header["Content-Disposition"] = []string{`form-data; name="files"; filename="` + p.name + `"`}
		header["Content-Type"] = []string{p.contentType}
		part, err := w.CreatePart(header)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := part.Write([]byte(p.data)); err != nil {
			t.Fatal(err)
		}
	}
	w.Close()

	req := httptest.NewRequest(http.MethodPost, "/", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	if err := req.ParseMultipartForm(32 << 20); err != nil {
		t.Fatal(err)
	}
	headers := req.MultipartForm.File["files"]

	pending, err := ValidateAttachments(headers, 10<<20, 10)
	if !errors.Is(err, ErrInvalidMimeType) {
		t.Fatalf("expected ErrInvalidMimeType, got %v", err)
	}
	if pending != nil {
		t.Fatalf("failed batch must not hand back open files, got %d", len(pending))
	}
}

func TestClosePending(t *testing.T) {
	closers := []*recordingCloser{{}, {}}
	files := []*domain.PendingFile{
		{Data: closers[0]},
		{Data: closers[1]},
		{Data: strings.NewReader("no closer")},
	}

	closePending(files)

	for i, c := range closers {
		if !c.closed {
			t.Errorf("file %d left open", i)
		}
	}
}

type recordingCloser struct{ closed bool }

func (r *recordingCloser) Read(p []byte) (int, error) { return 0, io.EOF }
func (r *recordingCloser) Close() error               { r.closed = true; return nil }

func TestValidateAttachments_EmptyBatchIsNoop(t *testing.T) {
	pending, err := ValidateAttachments(nil, 10<<20, 10)
	if err != nil || pending != nil {
		t.Fatalf("expected nil, nil for empty batch, got %v, %v", pending, err)
	}
}

func TestValidateAttachments_MimeParamsStripped(t *testing.T) {
	headers := buildMultipart(t,
		map[string][]byte{"notes.txt": []byte("hello")},
		map[string]string{"notes.txt": "text/plain; charset=utf-8"},
	)

	pending, err := ValidateAttachments(headers, 10<<20, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pending[0].MimeType != "text/plain" {
		t.Errorf("expected bare mime type, got %q", pending[0].MimeType)
	}
}

func TestValidateBody(t *testing.T) {
	if err := ValidateBody("hello", 0, 2000); err != nil {
		t.Errorf("plain body should validate: %v", err)
	}
	if err := ValidateBody("", 1, 2000); err != nil {
		t.Errorf("attachment-only message should validate: %v", err)
	}
	if err := ValidateBody("   ", 0, 2000); !errors.Is(err, ErrEmptyMessage) {
		t.Errorf("expected ErrEmptyMessage, got %v", err)
	}
	if err := ValidateBody(strings.Repeat("a", 2001), 0, 2000); !errors.Is(err, ErrBodyTooLong) {
		t.Errorf("expected ErrBodyTooLong, got %v", err)
	}
	if err := ValidateBody(strings.Repeat("ф", 2000), 0, 2000); err != nil {
		t.Errorf("limit is runes, not bytes: %v", err)
	}
}

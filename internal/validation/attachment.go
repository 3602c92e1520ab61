package validation

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"mime"
	"mime/multipart"
	"path/filepath"
	"strings"
	"unicode/utf8"

	_ "golang.org/x/image/webp"

	"github.com/JiggaBS/AutoAndrewProject-sub000/internal/domain"
)

// AllowedMimeTypes is the attachment allow-list shared by every upload
// surface: common image formats, PDF, Word/Excel, plain text and CSV.
var AllowedMimeTypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"image/gif":       true,
	"image/webp":      true,
	"application/pdf": true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
	"application/vnd.ms-excel": true,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": true,
	"text/plain": true,
	"text/csv":   true,
}

// ValidateAttachments checks the batch and every file against the allow-list
// and size caps before anything touches the network. The first offending
// file fails the whole batch so no partial upload can start.
func ValidateAttachments(fileHeaders []*multipart.FileHeader, maxFileBytes int64, maxBatch int) ([]*domain.PendingFile, error) {
	if len(fileHeaders) == 0 {
		return nil, nil
	}
	if len(fileHeaders) > maxBatch {
		return nil, fmt.Errorf("%w: %d files, limit %d", ErrTooManyAttachments, len(fileHeaders), maxBatch)
	}

	// Files already opened for earlier batch entries must not leak when a
	// later entry fails the batch.
	var pendingFiles []*domain.PendingFile
	for _, fileHeader := range fileHeaders {
		if fileHeader.Size > maxFileBytes {
			closePending(pendingFiles)
			return nil, fmt.Errorf("%w: %s is %.1fMB, limit %.1fMB",
				ErrFileTooLarge, fileHeader.Filename, FormatSizeMB(fileHeader.Size), FormatSizeMB(maxFileBytes))
		}

		mimeType, err := DetectMimeType(fileHeader)
		if err != nil {
			closePending(pendingFiles)
			return nil, err
		}
		if !AllowedMimeTypes[mimeType] {
			closePending(pendingFiles)
			return nil, fmt.Errorf("%w: %s (file: %s)", ErrInvalidMimeType, mimeType, fileHeader.Filename)
		}

		file, err := fileHeader.Open()
		if err != nil {
			closePending(pendingFiles)
			return nil, fmt.Errorf("failed to open uploaded file: %w", err)
		}

		width, height := ExtractImageDimensions(file, mimeType)

		pendingFiles = append(pendingFiles, &domain.PendingFile{
			FileCommonMetadata: domain.FileCommonMetadata{
				Filename:    fileHeader.Filename,
				SizeBytes:   fileHeader.Size,
				MimeType:    mimeType,
				ImageWidth:  width,
				ImageHeight: height,
			},
			Data: file,
		})
	}

	return pendingFiles, nil
}

func closePending(files []*domain.PendingFile) {
	for _, pf := range files {
		if closer, ok := pf.Data.(io.Closer); ok {
			closer.Close()
		}
	}
}

// ValidateBody enforces the message body contract: a message must carry text
// or at least one attachment, and text is capped at maxChars.
func ValidateBody(body string, attachmentCount, maxChars int) error {
	if strings.TrimSpace(body) == "" && attachmentCount == 0 {
		return ErrEmptyMessage
	}
	if utf8.RuneCountInString(body) > maxChars {
		return fmt.Errorf("%w: %d chars, limit %d", ErrBodyTooLong, utf8.RuneCountInString(body), maxChars)
	}
	return nil
}

func DetectMimeType(fileHeader *multipart.FileHeader) (string, error) {
	mimeType := fileHeader.Header.Get("Content-Type")

	// If no Content-Type or it's generic, detect from extension
	if mimeType == "" || mimeType == "application/octet-stream" {
		ext := filepath.Ext(fileHeader.Filename)
		detectedType := mime.TypeByExtension(ext)
		if detectedType != "" {
			mimeType = detectedType
		}
	}

	if mimeType == "" {
		return "", fmt.Errorf("could not detect MIME type for file: %s", fileHeader.Filename)
	}

	// Strip parameters like "; charset=utf-8" before the allow-list lookup
	if parsed, _, err := mime.ParseMediaType(mimeType); err == nil {
		mimeType = parsed
	}

	return mimeType, nil
}

func ExtractImageDimensions(file multipart.File, mimeType string) (*int, *int) {
	if !strings.HasPrefix(mimeType, "image/") {
		return nil, nil
	}

	img, _, err := image.DecodeConfig(file)
	if err != nil {
		file.Seek(0, 0)
		return nil, nil
	}
	file.Seek(0, 0)

	width, height := img.Width, img.Height
	return &width, &height
}

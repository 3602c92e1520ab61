package domain

import "io"

// Attachment is a file linked to a message. StoragePath is the authoritative
// identity; Url is a derived, time-boxed capability and must never be treated
// as durable.
type Attachment struct {
	Id          int64       `json:"id"`
	StoragePath StoragePath `json:"storage_path"`
	Name        string      `json:"name"`
	MimeType    string      `json:"type"`
	SizeBytes   int64       `json:"size"`
	Url         string      `json:"url,omitempty"`
	ImageWidth  *int        `json:"image_width,omitempty"`
	ImageHeight *int        `json:"image_height,omitempty"`
}

type FileCommonMetadata struct {
	Filename    string
	SizeBytes   int64
	MimeType    string
	ImageWidth  *int
	ImageHeight *int
}

// PendingFile is a validated upload that has not reached object storage yet.
type PendingFile struct {
	FileCommonMetadata
	Data io.Reader
}

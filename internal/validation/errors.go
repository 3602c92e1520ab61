package validation

import "errors"

// ErrPayloadTooLarge is returned when the request body exceeds size limits
var ErrPayloadTooLarge = errors.New("payload too large")

// ErrInvalidMimeType is returned when an uploaded file has a disallowed MIME type
var ErrInvalidMimeType = errors.New("invalid MIME type")

// ErrFileTooLarge is returned when a single file exceeds its surface's cap
var ErrFileTooLarge = errors.New("file too large")

// ErrTooManyAttachments is returned when too many files are uploaded
var ErrTooManyAttachments = errors.New("too many attachments")

// ErrEmptyMessage is returned when a message has neither body nor attachments
var ErrEmptyMessage = errors.New("empty message")

// ErrBodyTooLong is returned when a message body exceeds the length limit
var ErrBodyTooLong = errors.New("message body too long")

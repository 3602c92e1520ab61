// Package api holds the request/response DTOs of the messaging HTTP surface.
package api

import (
	"github.com/JiggaBS/AutoAndrewProject-sub000/internal/domain"
)

// Request DTOs

type SendMessageRequest struct {
	Body        string              `json:"body,omitempty"`
	Attachments []domain.Attachment `json:"attachments,omitempty"`
}

type TransitionStatusRequest struct {
	Status string `validate:"required" json:"status"`
}

// ResolveUrlRequest asks for a fresh signed URL. StoragePath is the
// preferred identity; Url is accepted as a fallback for older records that
// only kept the signed URL.
type ResolveUrlRequest struct {
	StoragePath string `json:"storage_path,omitempty"`
	Url         string `json:"url,omitempty"`
}

type OfferSetRequest struct {
	Amount int64 `validate:"required" json:"amount"`
}

type AppointmentSetRequest struct {
	// RFC 3339 timestamp of the appointment
	When string `validate:"required" json:"when"`
}

// Response DTOs

type ThreadResponse struct {
	domain.Thread
}

type SendMessageResponse struct {
	Message domain.Message `json:"message"`
}

type UnreadResponse struct {
	Unread int `json:"unread"`
}

// UploadOutcome reports a single file of an upload batch. A batch response
// carries one outcome per file in input order, so one bad file never hides
// the rest.
type UploadOutcome struct {
	Name       string             `json:"name"`
	Error      string             `json:"error,omitempty"`
	Attachment *domain.Attachment `json:"attachment,omitempty"`
}

type UploadBatchResponse struct {
	Results []UploadOutcome `json:"results"`
}

type ResolveUrlResponse struct {
	Url string `json:"url"`
}

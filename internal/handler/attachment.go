package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/JiggaBS/AutoAndrewProject-sub000/internal/api"
	"github.com/JiggaBS/AutoAndrewProject-sub000/internal/attachment"
	"github.com/JiggaBS/AutoAndrewProject-sub000/internal/domain"
	internal_errors "github.com/JiggaBS/AutoAndrewProject-sub000/internal/errors"
	"github.com/JiggaBS/AutoAndrewProject-sub000/internal/utils"
	"github.com/JiggaBS/AutoAndrewProject-sub000/internal/validation"
)

// UploadAttachments accepts a multipart batch under the "attachments" field
// on the chat surface: 10MB per file, 10 files per batch by default.
func (h *Handler) UploadAttachments(w http.ResponseWriter, r *http.Request) {
	limits := h.cfg.Public.Limits
	h.upload(w, r, limits.MaxChatFileBytes, limits.MaxChatBatch)
}

// UploadPhotos is the photo surface of the same upload flow with its own,
// tighter caps: 5MB per file, 5 files per batch by default.
func (h *Handler) UploadPhotos(w http.ResponseWriter, r *http.Request) {
	limits := h.cfg.Public.Limits
	h.upload(w, r, limits.MaxPhotoFileBytes, limits.MaxPhotoBatch)
}

// upload validates every file up front and uploads them one by one. The
// response carries a per-file outcome so one failed upload never hides the
// rest.
func (h *Handler) upload(w http.ResponseWriter, r *http.Request, maxFileBytes int64, maxBatch int) {
	requestId, err := requestIdParam(r)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	p, err := principal(r)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	if err := h.thread.Authorize(requestId, p.Role, p.Id); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	maxTotal := maxFileBytes * int64(maxBatch)
	maxRequestSize := validation.CalculateMaxRequestSize(maxTotal, 1<<20)
	if err := validation.ValidateAndParseMultipart(r, w, maxRequestSize); err != nil {
		msg := fmt.Sprintf("Upload exceeds the total limit of %.0f MB", validation.FormatSizeMB(maxTotal))
		utils.WriteErrorAndStatusCode(w, internal_errors.FileTooLarge(msg))
		return
	}

	fileHeaders := r.MultipartForm.File["attachments"]
	pendingFiles, err := validation.ValidateAttachments(fileHeaders, maxFileBytes, maxBatch)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, mapValidationError(err))
		return
	}
	if len(pendingFiles) == 0 {
		utils.WriteErrorAndStatusCode(w, internal_errors.Validation("No files in upload"))
		return
	}
	defer func() {
		for _, pf := range pendingFiles {
			if closer, ok := pf.Data.(io.Closer); ok {
				closer.Close()
			}
		}
	}()

	results := h.attachments.UploadBatch(r.Context(), requestId, pendingFiles)

	resp := api.UploadBatchResponse{Results: make([]api.UploadOutcome, 0, len(results))}
	for i, res := range results {
		outcome := api.UploadOutcome{Name: pendingFiles[i].Filename}
		if res.Err != nil {
			outcome.Error = res.Err.Error()
		} else {
			att := res.Attachment
			outcome.Attachment = &att
		}
		resp.Results = append(resp.Results, outcome)
	}

	utils.WriteJSON(w, http.StatusOK, resp)
}

// ResolveAttachmentUrl hands out a fresh short-lived signed URL for a stored
// attachment. Clients call it when a previously issued URL expired. The
// caller must be allowed to read the thread the path belongs to; storage
// paths are guessable, so presigning without that check would leak other
// customers' files.
func (h *Handler) ResolveAttachmentUrl(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	var body api.ResolveUrlRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	if body.StoragePath == "" && body.Url == "" {
		utils.WriteErrorAndStatusCode(w, internal_errors.Validation("storage_path or url required"))
		return
	}

	path := body.StoragePath
	if path == "" {
		extracted, ok := attachment.ExtractPathFromUrl(body.Url)
		if !ok {
			utils.WriteErrorAndStatusCode(w, internal_errors.AttachmentUnresolvable("URL does not reference a stored attachment"))
			return
		}
		path = extracted
	}
	requestId, ok := attachment.RequestIdFromPath(path)
	if !ok {
		utils.WriteErrorAndStatusCode(w, internal_errors.Validation("Unrecognized storage path"))
		return
	}
	if err := h.thread.Authorize(requestId, p.Role, p.Id); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	url, err := h.attachments.ResolveUrl(r.Context(), domain.Attachment{StoragePath: path})
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, api.ResolveUrlResponse{Url: url})
}

// mapValidationError translates validation sentinels into status-coded errors.
func mapValidationError(err error) error {
	switch {
	case errors.Is(err, validation.ErrInvalidMimeType):
		return internal_errors.UnsupportedType(err.Error())
	case errors.Is(err, validation.ErrFileTooLarge), errors.Is(err, validation.ErrPayloadTooLarge):
		return internal_errors.FileTooLarge(err.Error())
	case errors.Is(err, validation.ErrTooManyAttachments):
		return internal_errors.Validation(err.Error())
	default:
		return internal_errors.Validation(err.Error())
	}
}

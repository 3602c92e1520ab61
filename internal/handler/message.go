package handler

import (
	"net/http"

	"github.com/JiggaBS/AutoAndrewProject-sub000/internal/api"
	"github.com/JiggaBS/AutoAndrewProject-sub000/internal/domain"
	"github.com/JiggaBS/AutoAndrewProject-sub000/internal/utils"
)

// GetThread returns the full thread of a request in chronological order.
// Attachment URLs in the response are freshly signed and short-lived.
func (h *Handler) GetThread(w http.ResponseWriter, r *http.Request) {
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

	thread, err := h.thread.List(r.Context(), requestId, p.Role, p.Id)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, api.ThreadResponse{Thread: *thread})
}

// SendMessage appends a message to a thread. Attachments must already be
// uploaded; the payload references them by storage path.
func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
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

	var body api.SendMessageRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	msg, err := h.thread.Send(r.Context(), domain.MessageCreationData{
		RequestId:   requestId,
		Sender:      p.Role,
		SenderId:    &p.Id,
		Body:        body.Body,
		Attachments: body.Attachments,
	})
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusCreated, api.SendMessageResponse{Message: *msg})
}

// MarkRead stamps all counterpart messages as read. Repeating the call is a
// no-op success.
func (h *Handler) MarkRead(w http.ResponseWriter, r *http.Request) {
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

	if err := h.thread.MarkRead(requestId, p.Role, p.Id); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// Unread returns how many counterpart messages the caller has not read yet.
func (h *Handler) Unread(w http.ResponseWriter, r *http.Request) {
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

	count, err := h.thread.Unread(requestId, p.Role, p.Id)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, api.UnreadResponse{Unread: count})
}

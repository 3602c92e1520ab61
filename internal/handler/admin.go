package handler

import (
	"net/http"
	"time"

	"github.com/JiggaBS/AutoAndrewProject-sub000/internal/api"
	"github.com/JiggaBS/AutoAndrewProject-sub000/internal/domain"
	internal_errors "github.com/JiggaBS/AutoAndrewProject-sub000/internal/errors"
	"github.com/JiggaBS/AutoAndrewProject-sub000/internal/utils"
)

// TransitionStatus moves a request along its lifecycle. Invalid edges get a
// 400, so does an unknown target status.
func (h *Handler) TransitionStatus(w http.ResponseWriter, r *http.Request) {
	requestId, err := requestIdParam(r)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	var body api.TransitionStatusRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	if err := h.thread.TransitionStatus(requestId, domain.RequestStatus(body.Status)); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// OfferSet records a final offer: a system message lands in the thread and
// the customer gets an email. Both side effects are best effort, so the
// response is always 202 once the payload parses.
func (h *Handler) OfferSet(w http.ResponseWriter, r *http.Request) {
	requestId, err := requestIdParam(r)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	var body api.OfferSetRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	if body.Amount <= 0 {
		utils.WriteErrorAndStatusCode(w, internal_errors.Validation("Amount must be positive"))
		return
	}

	_ = h.admin.OfferSet(requestId, body.Amount)
	w.WriteHeader(http.StatusAccepted)
}

// AppointmentSet announces a scheduled appointment the same best-effort way.
func (h *Handler) AppointmentSet(w http.ResponseWriter, r *http.Request) {
	requestId, err := requestIdParam(r)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	var body api.AppointmentSetRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	when, err := time.Parse(time.RFC3339, body.When)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, internal_errors.Validation("when must be RFC 3339"))
		return
	}

	_ = h.admin.AppointmentSet(requestId, when)
	w.WriteHeader(http.StatusAccepted)
}

package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/JiggaBS/AutoAndrewProject-sub000/internal/attachment"
	"github.com/JiggaBS/AutoAndrewProject-sub000/internal/config"
	"github.com/JiggaBS/AutoAndrewProject-sub000/internal/domain"
	internal_errors "github.com/JiggaBS/AutoAndrewProject-sub000/internal/errors"
	"github.com/JiggaBS/AutoAndrewProject-sub000/internal/middleware"
	"github.com/JiggaBS/AutoAndrewProject-sub000/internal/service"
)

// Pinger reports dependency health for the readiness probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	thread      *service.Thread
	attachments *attachment.Manager
	admin       *service.AdminEvents
	health      Pinger
	cfg         *config.Config
}

func New(thread *service.Thread, attachments *attachment.Manager, admin *service.AdminEvents, health Pinger, cfg *config.Config) *Handler {
	return &Handler{thread, attachments, admin, health, cfg}
}

// requestIdParam parses the {request} url parameter.
func requestIdParam(r *http.Request) (domain.RequestId, error) {
	raw := chi.URLParam(r, "request")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, internal_errors.Validation("Bad request id")
	}
	return id, nil
}

// principal pulls the authenticated caller set by the auth middleware.
// Routes behind NeedAuth always have one; a nil here is a wiring bug.
func principal(r *http.Request) (*domain.Principal, error) {
	p := middleware.GetPrincipal(r)
	if p == nil {
		return nil, &internal_errors.ErrorWithStatusCode{Message: "Unauthorized", StatusCode: http.StatusUnauthorized}
	}
	return p, nil
}

// Package router wires the HTTP surface: public probes, authenticated
// messaging routes and admin-only lifecycle triggers.
package router

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/JiggaBS/AutoAndrewProject-sub000/internal/middleware/metrics"
	"github.com/JiggaBS/AutoAndrewProject-sub000/internal/setup"
)

func New(deps *setup.Dependencies) *chi.Mux {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.Cfg.Public.Http.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(metrics.Middleware)

	// Public routes
	r.Get("/healthz", deps.Handler.Health)
	r.Get("/readyz", deps.Handler.Ready)
	r.Handle("/metrics", promhttp.Handler())

	// Authenticated routes
	r.Group(func(r chi.Router) {
		r.Use(deps.Auth.NeedAuth())

		r.Get("/v1/requests/{request}/messages", deps.Handler.GetThread)
		r.Post("/v1/requests/{request}/messages", deps.Handler.SendMessage)
		r.Post("/v1/requests/{request}/read", deps.Handler.MarkRead)
		r.Get("/v1/requests/{request}/unread", deps.Handler.Unread)
		r.Post("/v1/requests/{request}/attachments", deps.Handler.UploadAttachments)
		r.Post("/v1/requests/{request}/photos", deps.Handler.UploadPhotos)
		r.Post("/v1/attachments/url", deps.Handler.ResolveAttachmentUrl)
		r.Get("/v1/requests/{request}/ws", deps.Handler.Subscribe)
	})

	// Admin routes
	r.Group(func(r chi.Router) {
		r.Use(deps.Auth.AdminOnly())

		r.Put("/v1/requests/{request}/status", deps.Handler.TransitionStatus)
		r.Post("/v1/requests/{request}/offer", deps.Handler.OfferSet)
		r.Post("/v1/requests/{request}/appointment", deps.Handler.AppointmentSet)
	})

	return r
}

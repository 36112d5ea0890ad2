package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter creates a new router with all routes configured
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware (all routes)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(LoggingMiddleware)
	r.Use(RecoveryMiddleware)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", h.Health)

		// Everything else acts on the caller's behalf upstream.
		r.Group(func(r chi.Router) {
			r.Use(RequireToken(h.loginPath))

			r.Route("/orgs/{orgID}", func(r chi.Router) {
				r.Get("/dashboard/{tab}", h.Dashboard)
				r.Get("/mission-vision", h.MissionVision)
				r.Get("/what-if", h.WhatIf)

				r.Post("/events", h.CreateEvent)
				r.Put("/events/{eventID}", h.UpdateEvent)
				r.Delete("/events/{eventID}", h.DeleteEvent)

				r.Post("/thank-you", h.SendThankYou)
				r.Post("/tasks", h.CreateTask)
				r.Post("/reports/export", h.ExportReport)
			})

			r.Post("/events/{eventID}/tickets", h.CreateTicketType)
			r.Put("/tickets/{ticketID}", h.UpdateTicketType)
			r.Delete("/tickets/{ticketID}", h.DeleteTicketType)
			r.Post("/events/{eventID}/registrations", h.CreateRegistration)
			r.Post("/registrations/{registrationID}/check-in", h.CheckIn)

			r.Get("/admin/requests", h.PendingRequests)
			r.Post("/admin/requests/{requestID}/approve", h.ApproveRequest)
			r.Post("/admin/requests/{requestID}/reject", h.RejectRequest)
		})
	})

	return r
}

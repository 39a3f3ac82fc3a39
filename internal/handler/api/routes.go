// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes registers every /api endpoint on r. authn must authenticate the
// bearer token and authz must reject non-admins.
func (h *Handler) Routes(r chi.Router, authn, authz func(http.Handler) http.Handler) {
	r.Post("/register", h.Register)
	r.Group(func(r chi.Router) {
		if h.login != nil {
			r.Use(h.login.Middleware())
		}
		r.Post("/login", h.Login)
	})

	r.Group(func(r chi.Router) {
		r.Use(authn)

		r.Get("/me", h.Me)
		r.Put("/me/guidelines-seen", h.GuidelinesSeen)

		r.Route("/sentences", func(r chi.Router) {
			r.Get("/", h.ListSentences)
			r.Get("/next", h.NextSentence)
			r.Get("/unannotated", h.UnannotatedSentences)
			r.Get("/{id}", h.GetSentence)
			r.With(authz).Post("/", h.CreateSentence)
		})

		r.Route("/annotations", func(r chi.Router) {
			r.Get("/", h.ListMyAnnotations)
			r.Post("/", h.CreateAnnotation)
			r.Post("/legacy", h.CreateLegacyAnnotation)
			r.Get("/{id}", h.GetAnnotation)
			r.Put("/{id}", h.UpdateAnnotation)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(authz)

			r.Get("/stats", h.AdminStats)
			r.Get("/users", h.ListUsers)
			r.Put("/users/{id}", h.UpdateUser)
			r.Get("/users/{id}/stats", h.UserStats)
			r.Get("/annotations", h.ListAllAnnotations)
			r.Put("/annotations/{id}/review", h.ReviewAnnotation)
			r.Delete("/annotations/{id}", h.DeleteAnnotation)
			r.Post("/sentences/bulk", h.BulkCreateSentences)
			r.Delete("/sentences/{id}", h.DeactivateSentence)
			r.Get("/events", h.ListEvents)
		})
	})
}

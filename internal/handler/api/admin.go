// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"

	"github.com/wimarka/annotate/internal/service"
)

// BulkSentencesRequest is the body of POST /api/admin/sentences/bulk.
type BulkSentencesRequest struct {
	Sentences []service.SentenceInput `json:"sentences"`
}

// AdminStats handles GET /api/admin/stats.
func (h *Handler) AdminStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Stats.Stats(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err, "")
		return
	}
	WriteSuccess(w, stats, nil)
}

// ListUsers handles GET /api/admin/users.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	skip, limit := page(r)
	users, total, err := h.svc.Users.List(r.Context(), skip, limit)
	if err != nil {
		h.writeServiceError(w, r, err, "")
		return
	}
	WriteSuccess(w, mapSlice(users, toUserResponse), &Meta{Total: total, Skip: skip, Limit: limit})
}

// UpdateUser handles PUT /api/admin/users/{id}.
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	admin, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := requireID(w, r, "user")
	if !ok {
		return
	}
	var in service.AdminUserUpdate
	if !decodeJSON(w, r, &in) {
		return
	}
	user, err := h.svc.Users.AdminUpdate(r.Context(), admin, id, in)
	if err != nil {
		h.writeServiceError(w, r, err, "User not found")
		return
	}
	WriteSuccess(w, toUserResponse(user), nil)
}

// UserStats handles GET /api/admin/users/{id}/stats.
func (h *Handler) UserStats(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r, "user")
	if !ok {
		return
	}
	stats, err := h.svc.Users.UserStats(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, err, "User not found")
		return
	}
	WriteSuccess(w, UserStatsResponse{
		User:                     toUserResponse(stats.User),
		TotalAnnotations:         stats.TotalAnnotations,
		CompletedAnnotations:     stats.CompletedAnnotations,
		AverageTimePerAnnotation: stats.AverageTimePerAnnotation,
	}, nil)
}

// ListAllAnnotations handles GET /api/admin/annotations.
func (h *Handler) ListAllAnnotations(w http.ResponseWriter, r *http.Request) {
	skip, limit := page(r)
	details, total, err := h.svc.Annotations.ListAll(r.Context(), skip, limit)
	if err != nil {
		h.writeServiceError(w, r, err, "")
		return
	}
	WriteSuccess(w, mapSlice(details, toAnnotationResponse), &Meta{Total: total, Skip: skip, Limit: limit})
}

// ReviewAnnotation handles PUT /api/admin/annotations/{id}/review.
func (h *Handler) ReviewAnnotation(w http.ResponseWriter, r *http.Request) {
	admin, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := requireID(w, r, "annotation")
	if !ok {
		return
	}
	detail, err := h.svc.Annotations.Review(r.Context(), admin, id)
	if err != nil {
		h.writeServiceError(w, r, err, "Annotation not found")
		return
	}
	WriteSuccess(w, toAnnotationResponse(detail), nil)
}

// DeleteAnnotation handles DELETE /api/admin/annotations/{id}.
func (h *Handler) DeleteAnnotation(w http.ResponseWriter, r *http.Request) {
	admin, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := requireID(w, r, "annotation")
	if !ok {
		return
	}
	if err := h.svc.Annotations.Delete(r.Context(), admin, id); err != nil {
		h.writeServiceError(w, r, err, "Annotation not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// BulkCreateSentences handles POST /api/admin/sentences/bulk. Either every
// sentence is stored or none is.
func (h *Handler) BulkCreateSentences(w http.ResponseWriter, r *http.Request) {
	admin, ok := requireUser(w, r)
	if !ok {
		return
	}
	var in BulkSentencesRequest
	if !decodeJSON(w, r, &in) {
		return
	}
	created, err := h.svc.Sentences.BulkCreate(r.Context(), admin, in.Sentences)
	if err != nil {
		h.writeServiceError(w, r, err, "")
		return
	}
	WriteJSON(w, http.StatusCreated, Response{
		Data: mapSlice(created, toSentenceResponse),
		Meta: &Meta{Total: int64(len(created)), Limit: int64(len(created))},
	})
}

// DeactivateSentence handles DELETE /api/admin/sentences/{id}.
func (h *Handler) DeactivateSentence(w http.ResponseWriter, r *http.Request) {
	admin, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := requireID(w, r, "sentence")
	if !ok {
		return
	}
	if err := h.svc.Sentences.Deactivate(r.Context(), admin, id); err != nil {
		h.writeServiceError(w, r, err, "Sentence not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListEvents handles GET /api/admin/events.
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	skip, limit := page(r)
	events, total, err := h.svc.Events.List(r.Context(), skip, limit)
	if err != nil {
		h.writeServiceError(w, r, err, "")
		return
	}
	WriteSuccess(w, mapSlice(events, toEventResponse), &Meta{Total: total, Skip: skip, Limit: limit})
}


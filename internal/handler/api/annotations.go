// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"

	"github.com/wimarka/annotate/internal/service"
)

// CreateAnnotation handles POST /api/annotations.
func (h *Handler) CreateAnnotation(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	var in service.CreateAnnotationInput
	if !decodeJSON(w, r, &in) {
		return
	}
	detail, err := h.svc.Annotations.Create(r.Context(), user, in)
	if err != nil {
		h.writeServiceError(w, r, err, "Sentence not found")
		return
	}
	WriteCreated(w, toAnnotationResponse(detail))
}

// CreateLegacyAnnotation handles POST /api/annotations/legacy, the older
// create path without highlights.
func (h *Handler) CreateLegacyAnnotation(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	var in service.LegacyAnnotationInput
	if !decodeJSON(w, r, &in) {
		return
	}
	detail, err := h.svc.Annotations.CreateLegacy(r.Context(), user, in)
	if err != nil {
		h.writeServiceError(w, r, err, "Sentence not found")
		return
	}
	WriteCreated(w, toAnnotationResponse(detail))
}

// ListMyAnnotations handles GET /api/annotations.
func (h *Handler) ListMyAnnotations(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	skip, limit := page(r)
	details, total, err := h.svc.Annotations.ListMine(r.Context(), user, skip, limit)
	if err != nil {
		h.writeServiceError(w, r, err, "")
		return
	}
	WriteSuccess(w, mapSlice(details, toAnnotationResponse), &Meta{Total: total, Skip: skip, Limit: limit})
}

// GetAnnotation handles GET /api/annotations/{id}. Other users'
// annotations read as not found.
func (h *Handler) GetAnnotation(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := requireID(w, r, "annotation")
	if !ok {
		return
	}
	detail, err := h.svc.Annotations.Get(r.Context(), user, id)
	if err != nil {
		h.writeServiceError(w, r, err, "Annotation not found")
		return
	}
	WriteSuccess(w, toAnnotationResponse(detail), nil)
}

// UpdateAnnotation handles PUT /api/annotations/{id}. Absent fields are
// left unchanged and explicit nulls clear them.
func (h *Handler) UpdateAnnotation(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := requireID(w, r, "annotation")
	if !ok {
		return
	}
	var in service.UpdateAnnotationInput
	if !decodeJSON(w, r, &in) {
		return
	}
	detail, err := h.svc.Annotations.Update(r.Context(), user, id, in)
	if err != nil {
		h.writeServiceError(w, r, err, "Annotation not found")
		return
	}
	WriteSuccess(w, toAnnotationResponse(detail), nil)
}

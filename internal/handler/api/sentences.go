// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"errors"
	"net/http"

	"github.com/wimarka/annotate/internal/service"
)

// ListSentences handles GET /api/sentences.
func (h *Handler) ListSentences(w http.ResponseWriter, r *http.Request) {
	skip, limit := page(r)
	sentences, total, err := h.svc.Sentences.List(r.Context(), skip, limit)
	if err != nil {
		h.writeServiceError(w, r, err, "")
		return
	}
	WriteSuccess(w, mapSlice(sentences, toSentenceResponse), &Meta{Total: total, Skip: skip, Limit: limit})
}

// NextSentence handles GET /api/sentences/next. It answers 204 when the
// user has nothing left to annotate.
func (h *Handler) NextSentence(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	sentence, err := h.svc.Assignment.NextSentence(r.Context(), user)
	if errors.Is(err, service.ErrNotFound) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err != nil {
		h.writeServiceError(w, r, err, "")
		return
	}
	WriteSuccess(w, toSentenceResponse(sentence), nil)
}

// UnannotatedSentences handles GET /api/sentences/unannotated.
func (h *Handler) UnannotatedSentences(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	skip, limit := page(r)
	sentences, total, err := h.svc.Assignment.UnannotatedBatch(r.Context(), user, skip, limit)
	if err != nil {
		h.writeServiceError(w, r, err, "")
		return
	}
	WriteSuccess(w, mapSlice(sentences, toSentenceResponse), &Meta{Total: total, Skip: skip, Limit: limit})
}

// GetSentence handles GET /api/sentences/{id}.
func (h *Handler) GetSentence(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r, "sentence")
	if !ok {
		return
	}
	sentence, err := h.svc.Sentences.Get(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, err, "Sentence not found")
		return
	}
	WriteSuccess(w, toSentenceResponse(sentence), nil)
}

// CreateSentence handles POST /api/sentences (admin).
func (h *Handler) CreateSentence(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	var in service.SentenceInput
	if !decodeJSON(w, r, &in) {
		return
	}
	sentence, err := h.svc.Sentences.Create(r.Context(), user, in)
	if err != nil {
		h.writeServiceError(w, r, err, "")
		return
	}
	WriteCreated(w, toSentenceResponse(sentence))
}

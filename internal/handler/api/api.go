// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package api provides the JSON REST handlers of the annotation backend.
package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/wimarka/annotate/internal/handler"
	"github.com/wimarka/annotate/internal/middleware"
	"github.com/wimarka/annotate/internal/service"
	"github.com/wimarka/annotate/internal/store"
)

// maxBodyBytes bounds request bodies; bulk imports are the largest.
const maxBodyBytes = 8 << 20

// Services groups the business services the handlers call.
type Services struct {
	Users       *service.UserService
	Sentences   *service.SentenceService
	Annotations *service.AnnotationService
	Assignment  *service.AssignmentService
	Stats       *service.StatsService
	Events      *service.EventService
}

// Handler holds shared dependencies for all API handlers.
type Handler struct {
	svc    Services
	login  *middleware.LoginProtection
	logger *slog.Logger
}

// NewHandler creates a new API handler. login may be nil to disable
// account lockout.
func NewHandler(svc Services, login *middleware.LoginProtection, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{svc: svc, login: login, logger: logger}
}

// Response is the standard API response wrapper.
type Response struct {
	Data any   `json:"data"`
	Meta *Meta `json:"meta,omitempty"`
}

// Meta contains pagination metadata.
type Meta struct {
	Total int64 `json:"total"`
	Skip  int64 `json:"skip"`
	Limit int64 `json:"limit"`
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// WriteSuccess writes a 200 response with the data envelope.
func WriteSuccess(w http.ResponseWriter, data any, meta *Meta) {
	WriteJSON(w, http.StatusOK, Response{Data: data, Meta: meta})
}

// WriteCreated writes a 201 Created response.
func WriteCreated(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusCreated, Response{Data: data})
}

// WriteBadRequest writes a 400 Bad Request response.
func WriteBadRequest(w http.ResponseWriter, message string) {
	middleware.WriteAPIError(w, http.StatusBadRequest, middleware.CodeBadRequest, message, nil)
}

// WriteNotFound writes a 404 Not Found response.
func WriteNotFound(w http.ResponseWriter, message string) {
	middleware.WriteAPIError(w, http.StatusNotFound, middleware.CodeNotFound, message, nil)
}

// WriteValidationError writes a 422 response with field errors.
func WriteValidationError(w http.ResponseWriter, fieldErrors map[string]string) {
	middleware.WriteAPIError(w, http.StatusUnprocessableEntity, middleware.CodeValidation, "Validation failed", fieldErrors)
}

// WriteInternalError writes a 500 response.
func WriteInternalError(w http.ResponseWriter) {
	middleware.WriteAPIError(w, http.StatusInternalServerError, middleware.CodeInternalError, "Internal server error", nil)
}

// writeServiceError maps a service error to its HTTP response. Unknown
// errors are logged and reported as 500.
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error, notFound string) {
	if ve, ok := service.IsValidationError(err); ok {
		WriteValidationError(w, ve.Fields)
		return
	}

	switch {
	case errors.Is(err, service.ErrNotFound):
		WriteNotFound(w, notFound)
	case errors.Is(err, service.ErrConflict):
		middleware.WriteAPIError(w, http.StatusConflict, middleware.CodeConflict, conflictMessage(err), nil)
	case errors.Is(err, service.ErrInvalidCredentials):
		middleware.WriteAPIError(w, http.StatusUnauthorized, middleware.CodeInvalidLogin, "Incorrect email or password", nil)
	case errors.Is(err, service.ErrUnauthorized):
		middleware.WriteAPIError(w, http.StatusUnauthorized, middleware.CodeUnauthorized, "Could not validate credentials", nil)
	case errors.Is(err, service.ErrForbidden):
		middleware.WriteAPIError(w, http.StatusForbidden, middleware.CodeForbidden, "Not enough permissions", nil)
	default:
		h.logger.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"user_id", middleware.GetUserID(r),
			"error", err,
		)
		WriteInternalError(w)
	}
}

// conflictMessage returns the context the services wrapped around
// ErrConflict, e.g. "sentence 3 already annotated".
func conflictMessage(err error) string {
	suffix := ": " + service.ErrConflict.Error()
	if msg := err.Error(); strings.HasSuffix(msg, suffix) {
		return strings.TrimSuffix(msg, suffix)
	}
	return "Resource already exists"
}

// decodeJSON reads a JSON body into dst. It writes a 400 response and
// returns false when the body is missing or malformed.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			WriteBadRequest(w, "Request body is required")
		} else {
			WriteBadRequest(w, "Invalid JSON body")
		}
		return false
	}
	return true
}

// requireUser returns the authenticated user. BearerAuth guarantees one is
// present on every route that calls it.
func requireUser(w http.ResponseWriter, r *http.Request) (store.User, bool) {
	user := middleware.GetUser(r)
	if user == nil {
		middleware.WriteAPIError(w, http.StatusUnauthorized, middleware.CodeUnauthorized, "Could not validate credentials", nil)
		return store.User{}, false
	}
	return *user, true
}

// requireID parses the {id} URL parameter, writing 400 on failure.
func requireID(w http.ResponseWriter, r *http.Request, entityName string) (int64, bool) {
	id, err := handler.ParseIDParam(r)
	if err != nil || id <= 0 {
		WriteBadRequest(w, "Invalid "+entityName+" ID")
		return 0, false
	}
	return id, true
}

// page reads skip and limit and returns the values echoed in Meta.
func page(r *http.Request) (skip, limit int64) {
	skip, limit = handler.ParsePage(r)
	if limit == 0 {
		limit = service.DefaultPageLimit
	}
	if limit > service.MaxPageLimit {
		limit = service.MaxPageLimit
	}
	return skip, limit
}

// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package service holds the business rules of the annotation backend:
// sentence assignment, the annotation write path, accounts, admin
// aggregation and the audit event log.
package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/wimarka/annotate/internal/model"
	"github.com/wimarka/annotate/internal/store"
)

// EventService provides event logging functionality.
type EventService struct {
	queries *store.Queries
}

// NewEventService creates a new EventService.
func NewEventService(db *sql.DB) *EventService {
	return &EventService{
		queries: store.New(db),
	}
}

// LogEvent creates a new event log entry.
func (s *EventService) LogEvent(ctx context.Context, level, category, message string, userID *int64, ipAddress string, metadata map[string]any) error {
	var nullUserID sql.NullInt64
	if userID != nil {
		nullUserID = sql.NullInt64{Int64: *userID, Valid: true}
	}

	metadataJSON := "{}"
	if metadata != nil {
		jsonBytes, err := json.Marshal(metadata)
		if err == nil {
			metadataJSON = string(jsonBytes)
		}
	}

	_, err := s.queries.CreateEvent(ctx, store.CreateEventParams{
		Level:     level,
		Category:  category,
		Message:   message,
		UserID:    nullUserID,
		Metadata:  metadataJSON,
		IpAddress: ipAddress,
		CreatedAt: time.Now(),
	})
	if err != nil {
		slog.Error("failed to log event", "error", err, "category", category)
		return err
	}

	return nil
}

// LogAuthEvent logs an authentication-related event.
func (s *EventService) LogAuthEvent(ctx context.Context, level, message string, userID *int64, ipAddress string, metadata map[string]any) error {
	return s.LogEvent(ctx, level, model.EventCategoryAuth, message, userID, ipAddress, metadata)
}

// LogUserEvent logs a user-related event.
func (s *EventService) LogUserEvent(ctx context.Context, level, message string, userID *int64, ipAddress string, metadata map[string]any) error {
	return s.LogEvent(ctx, level, model.EventCategoryUser, message, userID, ipAddress, metadata)
}

// LogSentenceEvent logs a sentence-related event.
func (s *EventService) LogSentenceEvent(ctx context.Context, level, message string, userID *int64, ipAddress string, metadata map[string]any) error {
	return s.LogEvent(ctx, level, model.EventCategorySentence, message, userID, ipAddress, metadata)
}

// LogAnnotationEvent logs an annotation-related event.
func (s *EventService) LogAnnotationEvent(ctx context.Context, level, message string, userID *int64, ipAddress string, metadata map[string]any) error {
	return s.LogEvent(ctx, level, model.EventCategoryAnnotation, message, userID, ipAddress, metadata)
}

// List returns events newest first together with the total count.
func (s *EventService) List(ctx context.Context, skip, limit int64) ([]store.Event, int64, error) {
	skip, limit = clampPage(skip, limit)

	events, err := s.queries.ListEvents(ctx, store.ListEventsParams{Limit: limit, Offset: skip})
	if err != nil {
		return nil, 0, fmt.Errorf("listing events: %w", err)
	}
	total, err := s.queries.CountEvents(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("counting events: %w", err)
	}
	return events, total, nil
}

// record logs an event for an actor without failing the caller.
// A nil EventService is allowed.
func (s *EventService) record(ctx context.Context, category, message string, actorID int64, metadata map[string]any) {
	if s == nil {
		return
	}
	uid := actorID
	var userID *int64
	if uid > 0 {
		userID = &uid
	}
	_ = s.LogEvent(ctx, model.EventLevelInfo, category, message, userID, ClientIPFromContext(ctx), metadata)
}

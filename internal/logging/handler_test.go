// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package logging

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wimarka/annotate/internal/model"
	"github.com/wimarka/annotate/internal/store"
	"github.com/wimarka/annotate/internal/testutil"
)

// discardHandler is a slog.Handler that discards all logs.
type discardHandler struct{}

func (h discardHandler) Enabled(context.Context, slog.Level) bool  { return true }
func (h discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (h discardHandler) WithAttrs([]slog.Attr) slog.Handler        { return h }
func (h discardHandler) WithGroup(string) slog.Handler             { return h }

func testDB(t *testing.T) *sql.DB {
	t.Helper()
	db, cleanup := testutil.TestDB(t)
	t.Cleanup(cleanup)
	return db
}

func listEvents(t *testing.T, db *sql.DB) []store.Event {
	t.Helper()
	events, err := store.New(db).ListEvents(context.Background(), store.ListEventsParams{Limit: 10})
	require.NoError(t, err)
	return events
}

func TestEventLogHandler_Levels(t *testing.T) {
	tests := []struct {
		name      string
		log       func(*slog.Logger)
		wantLevel string
	}{
		{"error", func(l *slog.Logger) { l.Error("database connection failed", "host", "localhost") }, model.EventLevelError},
		{"warn", func(l *slog.Logger) { l.Warn("slow query detected", "duration_ms", 5000) }, model.EventLevelWarning},
		{"info", func(l *slog.Logger) { l.Info("server started", "port", 8000) }, ""},
		{"debug", func(l *slog.Logger) { l.Debug("processing request") }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := testDB(t)
			tt.log(slog.New(NewEventLogHandler(discardHandler{}, db)))

			events := listEvents(t, db)
			if tt.wantLevel == "" {
				assert.Empty(t, events)
				return
			}
			require.Len(t, events, 1)
			assert.Equal(t, tt.wantLevel, events[0].Level)
		})
	}
}

func TestEventLogHandler_CustomLevel(t *testing.T) {
	db := testDB(t)
	logger := slog.New(NewEventLogHandlerWithLevel(discardHandler{}, db, slog.LevelInfo))

	logger.Info("server started", "port", 8000)

	events := listEvents(t, db)
	require.Len(t, events, 1)
	assert.Equal(t, model.EventLevelInfo, events[0].Level)
}

func TestEventLogHandler_Category(t *testing.T) {
	tests := []struct {
		message string
		attrs   []any
		want    string
	}{
		{"login attempt blocked", nil, model.EventCategoryAuth},
		{"token verification failed", nil, model.EventCategoryAuth},
		{"annotation update failed", nil, model.EventCategoryAnnotation},
		{"sentence import aborted", nil, model.EventCategorySentence},
		{"user lookup failed", nil, model.EventCategoryUser},
		{"unknown error occurred", nil, model.EventCategorySystem},
		{"something happened", []any{"category", model.EventCategoryUser}, model.EventCategoryUser},
	}

	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			db := testDB(t)
			slog.New(NewEventLogHandler(discardHandler{}, db)).Error(tt.message, tt.attrs...)

			events := listEvents(t, db)
			require.Len(t, events, 1)
			assert.Equal(t, tt.want, events[0].Category)
		})
	}
}

func TestEventLogHandler_Metadata(t *testing.T) {
	db := testDB(t)
	logger := slog.New(NewEventLogHandler(discardHandler{}, db)).With("service", "api")

	logger.Error("request failed",
		"status_code", 500,
		"path", `/api/"quoted"`,
		"error", errors.New("boom"),
		"category", model.EventCategorySystem,
	)

	events := listEvents(t, db)
	require.Len(t, events, 1)

	var meta map[string]any
	require.NoError(t, json.Unmarshal([]byte(events[0].Metadata), &meta))
	assert.Equal(t, "api", meta["service"])
	assert.Equal(t, float64(500), meta["status_code"])
	assert.Equal(t, `/api/"quoted"`, meta["path"])
	assert.Equal(t, "boom", meta["error"])
	assert.NotContains(t, meta, "category")
}

func TestEventLogHandler_UserID(t *testing.T) {
	db := testDB(t)
	user := testutil.CreateUser(t, db, "alice", "tagalog")

	slog.New(NewEventLogHandler(discardHandler{}, db)).Warn("user rehash failed", "user_id", user.ID)

	events := listEvents(t, db)
	require.Len(t, events, 1)
	assert.True(t, events[0].UserID.Valid)
	assert.Equal(t, user.ID, events[0].UserID.Int64)
	assert.Equal(t, "{}", events[0].Metadata)
}

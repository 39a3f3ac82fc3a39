// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package testutil provides shared test helpers for the annotate project.
package testutil

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/wimarka/annotate/internal/auth"
	"github.com/wimarka/annotate/internal/store"

	_ "github.com/mattn/go-sqlite3"
)

// TestPassword is the plain-text password of every user created by CreateUser.
const TestPassword = "password123"

// TestLoggerSilent creates a completely silent test logger (error level only).
func TestLoggerSilent() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}

// TestDB creates a temporary test database with migrations applied.
// Returns the database and a cleanup function that should be deferred.
func TestDB(t *testing.T) (*sql.DB, func()) {
	t.Helper()

	f, err := os.CreateTemp(t.TempDir(), "annotate-test-*.db")
	if err != nil {
		t.Fatalf("creating temp file: %v", err)
	}
	dbPath := f.Name()
	_ = f.Close()

	db, err := store.NewDB(dbPath)
	if err != nil {
		_ = os.Remove(dbPath)
		t.Fatalf("NewDB: %v", err)
	}

	if err := store.Migrate(db); err != nil {
		_ = db.Close()
		_ = os.Remove(dbPath)
		t.Fatalf("Migrate: %v", err)
	}

	return db, func() {
		_ = db.Close()
		_ = os.Remove(dbPath)
	}
}

// TestMemoryDB creates a migrated in-memory SQLite database.
// The pool is pinned to one connection so every query sees the same
// in-memory database.
func TestMemoryDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:?_foreign_keys=on")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	db.SetMaxOpenConns(1)

	if err := store.Migrate(db); err != nil {
		_ = db.Close()
		t.Fatalf("Migrate: %v", err)
	}

	t.Cleanup(func() { _ = db.Close() })
	return db
}

// CreateUser inserts an active annotator with TestPassword.
// An empty language leaves preferred_language NULL.
func CreateUser(t *testing.T, db *sql.DB, username, language string) store.User {
	t.Helper()
	return createUser(t, db, username, language, false)
}

// CreateAdmin inserts an active admin with TestPassword.
func CreateAdmin(t *testing.T, db *sql.DB, username string) store.User {
	t.Helper()
	return createUser(t, db, username, "", true)
}

func createUser(t *testing.T, db *sql.DB, username, language string, isAdmin bool) store.User {
	t.Helper()

	hash, err := auth.HashPassword(TestPassword)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}

	user, err := store.New(db).CreateUser(context.Background(), store.CreateUserParams{
		Email:             username + "@example.com",
		Username:          username,
		PasswordHash:      hash,
		FirstName:         username,
		LastName:          "Tester",
		PreferredLanguage: sql.NullString{String: language, Valid: language != ""},
		IsActive:          true,
		IsAdmin:           isAdmin,
		CreatedAt:         time.Now(),
	})
	if err != nil {
		t.Fatalf("CreateUser(%s): %v", username, err)
	}
	return user
}

// CreateSentence inserts an active sentence targeting language.
// An empty reference leaves reference_translation NULL.
func CreateSentence(t *testing.T, db *sql.DB, language, machine, reference string) store.Sentence {
	t.Helper()

	s, err := store.New(db).CreateSentence(context.Background(), store.CreateSentenceParams{
		SourceText:           "Source for " + machine,
		MachineTranslation:   machine,
		ReferenceTranslation: sql.NullString{String: reference, Valid: reference != ""},
		SourceLanguage:       "en",
		TargetLanguage:       language,
		CreatedAt:            time.Now(),
	})
	if err != nil {
		t.Fatalf("CreateSentence: %v", err)
	}
	return s
}

// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/wimarka/annotate/internal/auth"
	"github.com/wimarka/annotate/internal/middleware"
	"github.com/wimarka/annotate/internal/service"
	"github.com/wimarka/annotate/internal/store"
	"github.com/wimarka/annotate/internal/testutil"
)

const testSecret = "api-test-secret-0123456789abcdefghij"

// testEnv is an API router over an in-memory database.
type testEnv struct {
	db     *sql.DB
	router chi.Router
	svc    Services
	login  *middleware.LoginProtection
}

// testSetup wires the services, handler and routes the way the server does.
func testSetup(t *testing.T) *testEnv {
	t.Helper()
	db := testutil.TestMemoryDB(t)

	events := service.NewEventService(db)
	svc := Services{
		Users:       service.NewUserService(db, auth.NewTokenIssuer(testSecret, 30*time.Minute), events, testutil.TestLoggerSilent()),
		Sentences:   service.NewSentenceService(db, events),
		Annotations: service.NewAnnotationService(db, events),
		Assignment:  service.NewAssignmentService(db),
		Stats:       service.NewStatsService(db),
		Events:      events,
	}
	login := middleware.NewLoginProtection(middleware.LoginProtectionConfig{
		IPRateLimit:       100,
		IPBurst:           100,
		MaxFailedAttempts: 3,
		LockoutDuration:   time.Minute,
		AttemptWindow:     time.Minute,
	})
	t.Cleanup(login.Stop)

	h := NewHandler(svc, login, testutil.TestLoggerSilent())
	r := chi.NewRouter()
	r.Use(middleware.ClientIP)
	r.Route("/api", func(r chi.Router) {
		h.Routes(r, middleware.BearerAuth(svc.Users), middleware.RequireAdmin(events))
	})

	return &testEnv{db: db, router: r, svc: svc, login: login}
}

// tokenFor issues a bearer token for user.
func (e *testEnv) tokenFor(t *testing.T, user store.User) string {
	t.Helper()
	token, _, err := e.svc.Users.IssueToken(user)
	if err != nil {
		t.Fatalf("issuing token: %v", err)
	}
	return token
}

// do sends a request through the router. An empty token sends no
// Authorization header.
func (e *testEnv) do(t *testing.T, method, path, body, token string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// dataResponse is a generic wrapper for API responses with a "data" field.
type dataResponse[T any] struct {
	Data T `json:"data"`
}

// listResponse is a generic wrapper for API list responses with data and meta.
type listResponse[T any] struct {
	Data []T  `json:"data"`
	Meta Meta `json:"meta"`
}

// unmarshalData unmarshals a JSON response body into the specified type.
func unmarshalData[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var resp dataResponse[T]
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v (body %s)", err, w.Body.String())
	}
	return resp.Data
}

// unmarshalList unmarshals a JSON list response body into the specified type.
func unmarshalList[T any](t *testing.T, w *httptest.ResponseRecorder) ([]T, Meta) {
	t.Helper()
	var resp listResponse[T]
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v (body %s)", err, w.Body.String())
	}
	return resp.Data, resp.Meta
}

// unmarshalError decodes an error body.
func unmarshalError(t *testing.T, w *httptest.ResponseRecorder) middleware.APIError {
	t.Helper()
	var resp middleware.APIError
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal error: %v (body %s)", err, w.Body.String())
	}
	return resp
}

func assertStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	if w.Code != want {
		t.Fatalf("status = %d, want %d (body %s)", w.Code, want, w.Body.String())
	}
}

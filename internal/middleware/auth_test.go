// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/wimarka/annotate/internal/service"
	"github.com/wimarka/annotate/internal/store"
	"github.com/wimarka/annotate/internal/testutil"
)

// fakeResolver maps fixed tokens to users.
type fakeResolver map[string]store.User

func (f fakeResolver) ResolveToken(_ context.Context, token string) (store.User, error) {
	if token == "broken" {
		return store.User{}, errors.New("database is locked")
	}
	user, ok := f[token]
	if !ok {
		return store.User{}, service.ErrUnauthorized
	}
	return user, nil
}

func echoUser(w http.ResponseWriter, r *http.Request) {
	user := GetUser(r)
	if user == nil {
		w.WriteHeader(http.StatusTeapot)
		return
	}
	_, _ = w.Write([]byte(user.Username))
}

func TestBearerAuth(t *testing.T) {
	resolver := fakeResolver{"good": {ID: 7, Username: "alice"}}
	wrapped := BearerAuth(resolver)(http.HandlerFunc(echoUser))

	tests := []struct {
		name     string
		header   string
		wantCode int
		wantBody string
	}{
		{"valid token", "Bearer good", http.StatusOK, "alice"},
		{"lowercase scheme", "bearer good", http.StatusOK, "alice"},
		{"missing header", "", http.StatusUnauthorized, ""},
		{"wrong scheme", "Basic good", http.StatusUnauthorized, ""},
		{"empty token", "Bearer ", http.StatusUnauthorized, ""},
		{"unknown token", "Bearer nope", http.StatusUnauthorized, ""},
		{"resolver failure", "Bearer broken", http.StatusInternalServerError, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			wrapped.ServeHTTP(rr, req)

			if rr.Code != tt.wantCode {
				t.Fatalf("Status = %d, want %d", rr.Code, tt.wantCode)
			}
			if tt.wantBody != "" && rr.Body.String() != tt.wantBody {
				t.Errorf("Body = %q, want %q", rr.Body.String(), tt.wantBody)
			}
			if tt.wantCode == http.StatusUnauthorized && rr.Header().Get("WWW-Authenticate") != "Bearer" {
				t.Error("401 responses should carry WWW-Authenticate: Bearer")
			}
		})
	}
}

func TestGetUserID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if got := GetUserID(req); got != 0 {
		t.Errorf("GetUserID() without user = %d, want 0", got)
	}

	ctx := context.WithValue(req.Context(), ContextKeyUser, store.User{ID: 42})
	if got := GetUserID(req.WithContext(ctx)); got != 42 {
		t.Errorf("GetUserID() = %d, want 42", got)
	}
}

func TestRequireAdmin(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()

	events := service.NewEventService(db)
	admin := testutil.CreateAdmin(t, db, "admin")
	alice := testutil.CreateUser(t, db, "alice", "tagalog")

	wrapped := RequireAdmin(events)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	serve := func(user *store.User) int {
		req := httptest.NewRequest(http.MethodGet, "/api/admin/stats", nil)
		if user != nil {
			req = req.WithContext(context.WithValue(req.Context(), ContextKeyUser, *user))
		}
		rr := httptest.NewRecorder()
		wrapped.ServeHTTP(rr, req)
		return rr.Code
	}

	if code := serve(&admin); code != http.StatusNoContent {
		t.Errorf("admin = %d, want 204", code)
	}
	if code := serve(&alice); code != http.StatusForbidden {
		t.Errorf("annotator = %d, want 403", code)
	}
	if code := serve(nil); code != http.StatusUnauthorized {
		t.Errorf("anonymous = %d, want 401", code)
	}

	logged, total, err := events.List(context.Background(), 0, 10)
	if err != nil {
		t.Fatalf("listing events: %v", err)
	}
	if total != 1 || logged[0].UserID.Int64 != alice.ID {
		t.Errorf("expected one denial event for alice, got %d events", total)
	}
}

func TestClientIP(t *testing.T) {
	var seen string
	wrapped := ClientIP(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = service.ClientIPFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "203.0.113.9:5000"
	wrapped.ServeHTTP(httptest.NewRecorder(), req)

	if seen != "203.0.113.9" {
		t.Errorf("client IP in context = %q, want %q", seen, "203.0.113.9")
	}
}

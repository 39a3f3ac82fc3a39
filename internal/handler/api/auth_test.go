// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/wimarka/annotate/internal/auth"
	"github.com/wimarka/annotate/internal/middleware"
	"github.com/wimarka/annotate/internal/model"
	"github.com/wimarka/annotate/internal/testutil"
)

func TestRegister(t *testing.T) {
	env := testSetup(t)

	w := env.do(t, http.MethodPost, "/api/register", `{
		"email": "a@x.com", "username": "alice", "password": "correct-horse",
		"first_name": "Alice", "last_name": "Reyes", "preferred_language": "tagalog"
	}`, "")
	assertStatus(t, w, http.StatusCreated)

	resp := unmarshalData[TokenResponse](t, w)
	if resp.AccessToken == "" || resp.TokenType != auth.TokenType {
		t.Errorf("token response = %+v", resp)
	}
	if resp.User.Username != "alice" || resp.User.PreferredLanguage == nil || *resp.User.PreferredLanguage != "tagalog" {
		t.Errorf("user = %+v", resp.User)
	}
	if strings.Contains(w.Body.String(), "password") {
		t.Error("response must not include password material")
	}

	w = env.do(t, http.MethodPost, "/api/register", `{"email": "A@X.com", "username": "alice2", "password": "correct-horse"}`, "")
	assertStatus(t, w, http.StatusConflict)
	if e := unmarshalError(t, w); e.Error.Code != middleware.CodeConflict {
		t.Errorf("code = %q, want %q", e.Error.Code, middleware.CodeConflict)
	}
}

func TestRegister_BadInput(t *testing.T) {
	env := testSetup(t)

	w := env.do(t, http.MethodPost, "/api/register", `{"email": "nope", "username": "", "password": "x"}`, "")
	assertStatus(t, w, http.StatusUnprocessableEntity)
	e := unmarshalError(t, w)
	for _, field := range []string{"email", "username", "password"} {
		if e.Error.Details[field] == "" {
			t.Errorf("missing detail for %q: %v", field, e.Error.Details)
		}
	}

	w = env.do(t, http.MethodPost, "/api/register", `{"email":`, "")
	assertStatus(t, w, http.StatusBadRequest)

	w = env.do(t, http.MethodPost, "/api/register", "", "")
	assertStatus(t, w, http.StatusBadRequest)
}

func TestLogin(t *testing.T) {
	env := testSetup(t)
	testutil.CreateUser(t, env.db, "alice", "tagalog")

	w := env.do(t, http.MethodPost, "/api/login", `{"email": "Alice@Example.com", "password": "`+testutil.TestPassword+`"}`, "")
	assertStatus(t, w, http.StatusOK)
	resp := unmarshalData[TokenResponse](t, w)

	w = env.do(t, http.MethodGet, "/api/me", "", resp.AccessToken)
	assertStatus(t, w, http.StatusOK)
	if me := unmarshalData[UserResponse](t, w); me.Username != "alice" {
		t.Errorf("me = %+v", me)
	}
}

func TestLogin_LockoutAfterFailures(t *testing.T) {
	env := testSetup(t)
	testutil.CreateUser(t, env.db, "alice", "tagalog")
	bad := `{"email": "alice@example.com", "password": "wrong-password"}`

	for i := 0; i < 3; i++ {
		w := env.do(t, http.MethodPost, "/api/login", bad, "")
		assertStatus(t, w, http.StatusUnauthorized)
	}

	// Locked now, even with the right password.
	w := env.do(t, http.MethodPost, "/api/login", `{"email": "alice@example.com", "password": "`+testutil.TestPassword+`"}`, "")
	assertStatus(t, w, http.StatusTooManyRequests)
	if e := unmarshalError(t, w); e.Error.Code != middleware.CodeAccountLocked {
		t.Errorf("code = %q, want %q", e.Error.Code, middleware.CodeAccountLocked)
	}

	events, total, err := env.svc.Events.List(context.Background(), 0, 100)
	if err != nil {
		t.Fatalf("listing events: %v", err)
	}
	// 3 failures, 1 lockout, 1 attempt on the locked account.
	if total != 5 {
		t.Errorf("events = %d, want 5", total)
	}
	for _, e := range events {
		if e.Category != model.EventCategoryAuth {
			t.Errorf("event %q has category %q", e.Message, e.Category)
		}
	}
}

func TestLogin_UnknownEmailLooksLikeWrongPassword(t *testing.T) {
	env := testSetup(t)

	w := env.do(t, http.MethodPost, "/api/login", `{"email": "ghost@example.com", "password": "whatever1"}`, "")
	assertStatus(t, w, http.StatusUnauthorized)
	if e := unmarshalError(t, w); e.Error.Code != middleware.CodeInvalidLogin {
		t.Errorf("code = %q, want %q", e.Error.Code, middleware.CodeInvalidLogin)
	}

	w = env.do(t, http.MethodPost, "/api/login", `{"email": "", "password": ""}`, "")
	assertStatus(t, w, http.StatusUnprocessableEntity)
}

func TestMe_RequiresToken(t *testing.T) {
	env := testSetup(t)

	assertStatus(t, env.do(t, http.MethodGet, "/api/me", "", ""), http.StatusUnauthorized)
	assertStatus(t, env.do(t, http.MethodGet, "/api/me", "", "not-a-token"), http.StatusUnauthorized)
}

func TestGuidelinesSeen(t *testing.T) {
	env := testSetup(t)
	alice := testutil.CreateUser(t, env.db, "alice", "tagalog")

	w := env.do(t, http.MethodPut, "/api/me/guidelines-seen", "", env.tokenFor(t, alice))
	assertStatus(t, w, http.StatusOK)
	if u := unmarshalData[UserResponse](t, w); !u.GuidelinesSeen {
		t.Error("guidelines_seen should be true")
	}
}

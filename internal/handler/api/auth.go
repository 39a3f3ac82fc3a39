// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/wimarka/annotate/internal/middleware"
	"github.com/wimarka/annotate/internal/model"
	"github.com/wimarka/annotate/internal/service"
)

// LoginRequest is the body of POST /api/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register handles POST /api/register.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var in service.RegisterInput
	if !decodeJSON(w, r, &in) {
		return
	}

	user, err := h.svc.Users.Register(r.Context(), in)
	if err != nil {
		h.writeServiceError(w, r, err, "User not found")
		return
	}

	token, expiresAt, err := h.svc.Users.IssueToken(user)
	if err != nil {
		h.writeServiceError(w, r, fmt.Errorf("issuing token: %w", err), "")
		return
	}
	WriteCreated(w, toTokenResponse(token, expiresAt, user))
}

// Login handles POST /api/login. Repeated failures lock the account for a
// while; the response never says whether the email exists.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var in LoginRequest
	if !decodeJSON(w, r, &in) {
		return
	}
	account := strings.ToLower(strings.TrimSpace(in.Email))
	if account == "" || in.Password == "" {
		WriteValidationError(w, map[string]string{"email": "Email and password are required"})
		return
	}
	ip := service.ClientIPFromContext(r.Context())

	if h.login != nil {
		if locked, remaining := h.login.IsAccountLocked(account); locked {
			h.logAuth(r, model.EventLevelWarning, "Login attempt on locked account", account, ip)
			middleware.WriteAPIError(w, http.StatusTooManyRequests, middleware.CodeAccountLocked,
				fmt.Sprintf("Account temporarily locked. Try again in %s.", remaining.Round(time.Second)), nil)
			return
		}
	}

	user, err := h.svc.Users.Authenticate(r.Context(), account, in.Password)
	if errors.Is(err, service.ErrInvalidCredentials) {
		h.logAuth(r, model.EventLevelWarning, "Failed login attempt", account, ip)
		if h.login != nil {
			if locked, _ := h.login.RecordFailedAttempt(account); locked {
				h.logAuth(r, model.EventLevelWarning, "Account locked after failed login attempts", account, ip)
			}
		}
		h.writeServiceError(w, r, err, "")
		return
	}
	if err != nil {
		h.writeServiceError(w, r, err, "")
		return
	}

	if h.login != nil {
		h.login.RecordSuccessfulLogin(account)
	}

	token, expiresAt, err := h.svc.Users.IssueToken(user)
	if err != nil {
		h.writeServiceError(w, r, fmt.Errorf("issuing token: %w", err), "")
		return
	}
	WriteSuccess(w, toTokenResponse(token, expiresAt, user), nil)
}

func (h *Handler) logAuth(r *http.Request, level, message, account, ip string) {
	if h.svc.Events == nil {
		return
	}
	_ = h.svc.Events.LogAuthEvent(r.Context(), level, message, nil, ip, map[string]any{"email": account})
}

// Me handles GET /api/me.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	WriteSuccess(w, toUserResponse(user), nil)
}

// GuidelinesSeen handles PUT /api/me/guidelines-seen.
func (h *Handler) GuidelinesSeen(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	updated, err := h.svc.Users.MarkGuidelinesSeen(r.Context(), user.ID)
	if err != nil {
		h.writeServiceError(w, r, err, "User not found")
		return
	}
	WriteSuccess(w, toUserResponse(updated), nil)
}

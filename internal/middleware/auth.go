// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package middleware provides HTTP middleware for bearer authentication,
// admin authorization, rate limiting and request context handling.
package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/wimarka/annotate/internal/model"
	"github.com/wimarka/annotate/internal/service"
	"github.com/wimarka/annotate/internal/store"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

// ContextKeyUser holds the authenticated store.User.
const ContextKeyUser ContextKey = "user"

// TokenResolver turns a bearer token into an active user.
type TokenResolver interface {
	ResolveToken(ctx context.Context, token string) (store.User, error)
}

// BearerAuth requires a valid "Authorization: Bearer <token>" header and
// stores the resolved user in the request context.
func BearerAuth(resolver TokenResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				w.Header().Set("WWW-Authenticate", "Bearer")
				WriteAPIError(w, http.StatusUnauthorized, CodeUnauthorized, "Could not validate credentials", nil)
				return
			}

			user, err := resolver.ResolveToken(r.Context(), token)
			if err != nil {
				if !errors.Is(err, service.ErrUnauthorized) {
					slog.Error("resolving bearer token", "error", err)
					WriteAPIError(w, http.StatusInternalServerError, CodeInternalError, "Internal server error", nil)
					return
				}
				w.Header().Set("WWW-Authenticate", "Bearer")
				WriteAPIError(w, http.StatusUnauthorized, CodeUnauthorized, "Could not validate credentials", nil)
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyUser, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// GetUser retrieves the current user from the request context.
// Returns nil if no user is in context.
func GetUser(r *http.Request) *store.User {
	user, ok := r.Context().Value(ContextKeyUser).(store.User)
	if !ok {
		return nil
	}
	return &user
}

// GetUserID returns the current user's ID from context, or 0 if not found.
func GetUserID(r *http.Request) int64 {
	if user := GetUser(r); user != nil {
		return user.ID
	}
	return 0
}

// RequireAdmin rejects non-admin users with 403. It must run after
// BearerAuth. Denials are written to the event log when events is set.
func RequireAdmin(events *service.EventService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := GetUser(r)
			if user == nil {
				WriteAPIError(w, http.StatusUnauthorized, CodeUnauthorized, "Could not validate credentials", nil)
				return
			}
			if !user.IsAdmin {
				slog.Warn("access denied",
					"method", r.Method,
					"path", r.URL.Path,
					"user_id", user.ID,
				)
				if events != nil {
					userID := user.ID
					_ = events.LogAuthEvent(r.Context(), model.EventLevelWarning, "Access denied: admin required", &userID, getClientIP(r), map[string]any{
						"method": r.Method,
						"path":   r.URL.Path,
					})
				}
				WriteAPIError(w, http.StatusForbidden, CodeForbidden, "Not enough permissions", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ClientIP records the client address in the request context so services
// can attach it to audit events.
func ClientIP(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := service.WithClientIP(r.Context(), getClientIP(r))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

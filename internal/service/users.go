// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/wimarka/annotate/internal/auth"
	"github.com/wimarka/annotate/internal/model"
	"github.com/wimarka/annotate/internal/store"
)

// MinPasswordLength is the shortest password accepted at registration.
const MinPasswordLength = 8

// RegisterInput is the payload for creating an account.
type RegisterInput struct {
	Email             string  `json:"email"`
	Username          string  `json:"username"`
	Password          string  `json:"password"`
	FirstName         string  `json:"first_name"`
	LastName          string  `json:"last_name"`
	PreferredLanguage *string `json:"preferred_language"`
}

// AdminUserUpdate carries the account flags an admin may change.
// Nil fields are left unchanged.
type AdminUserUpdate struct {
	IsActive *bool `json:"is_active"`
	IsAdmin  *bool `json:"is_admin"`
}

// UserStats summarises one annotator's work.
type UserStats struct {
	User                     store.User
	TotalAnnotations         int64
	CompletedAnnotations     int64
	AverageTimePerAnnotation float64
}

// UserService manages accounts and credentials.
type UserService struct {
	queries *store.Queries
	tokens  *auth.TokenIssuer
	events  *EventService
	logger  *slog.Logger
}

// NewUserService creates a new UserService. events may be nil.
func NewUserService(db *sql.DB, tokens *auth.TokenIssuer, events *EventService, logger *slog.Logger) *UserService {
	return &UserService{
		queries: store.New(db),
		tokens:  tokens,
		events:  events,
		logger:  logger,
	}
}

// Register validates in and creates an active, non-admin account.
// A taken email or username yields ErrConflict.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (store.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	username := strings.TrimSpace(in.Username)

	ve := newValidationError()
	if email == "" {
		ve.Add("email", "Email is required")
	} else if _, err := mail.ParseAddress(email); err != nil {
		ve.Add("email", "Invalid email format")
	}
	if username == "" {
		ve.Add("username", "Username is required")
	}
	if in.Password == "" {
		ve.Add("password", "Password is required")
	} else if len(in.Password) < MinPasswordLength {
		ve.Add("password", fmt.Sprintf("Password must be at least %d characters", MinPasswordLength))
	}
	if err := ve.errOrNil(); err != nil {
		return store.User{}, err
	}

	taken, err := s.queries.CountUsersByEmailOrUsername(ctx, store.CountUsersByEmailOrUsernameParams{
		Email:    email,
		Username: username,
	})
	if err != nil {
		return store.User{}, fmt.Errorf("checking existing users: %w", err)
	}
	if taken > 0 {
		return store.User{}, fmt.Errorf("email or username already registered: %w", ErrConflict)
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return store.User{}, fmt.Errorf("hashing password: %w", err)
	}

	var language sql.NullString
	if in.PreferredLanguage != nil {
		lang := NormalizeLanguage(*in.PreferredLanguage)
		language = sql.NullString{String: lang, Valid: lang != ""}
	}

	user, err := s.queries.CreateUser(ctx, store.CreateUserParams{
		Email:             email,
		Username:          username,
		PasswordHash:      hash,
		FirstName:         strings.TrimSpace(in.FirstName),
		LastName:          strings.TrimSpace(in.LastName),
		PreferredLanguage: language,
		IsActive:          true,
		IsAdmin:           false,
		CreatedAt:         time.Now().UTC(),
	})
	if store.IsUniqueViolation(err) {
		return store.User{}, fmt.Errorf("email or username already registered: %w", ErrConflict)
	}
	if err != nil {
		return store.User{}, fmt.Errorf("creating user: %w", err)
	}

	s.events.record(ctx, model.EventCategoryAuth, "User registered", user.ID, map[string]any{"username": user.Username})
	return user, nil
}

// Authenticate verifies an email and password. Unknown emails, wrong
// passwords and inactive accounts all yield ErrInvalidCredentials.
// Hashes in an outdated format are upgraded on success.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (store.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.queries.GetUserByEmail(ctx, email)
	if errors.Is(err, sql.ErrNoRows) {
		return store.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return store.User{}, fmt.Errorf("loading user: %w", err)
	}

	valid, err := auth.CheckPassword(password, user.PasswordHash)
	if err != nil {
		s.logger.Warn("stored password hash could not be verified", "user_id", user.ID, "error", err)
		return store.User{}, ErrInvalidCredentials
	}
	if !valid || !user.IsActive {
		return store.User{}, ErrInvalidCredentials
	}

	if auth.NeedsRehash(user.PasswordHash) {
		s.rehash(ctx, user.ID, password)
	}
	return user, nil
}

func (s *UserService) rehash(ctx context.Context, userID int64, password string) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		s.logger.Error("rehashing password", "user_id", userID, "error", err)
		return
	}
	if err := s.queries.UpdateUserPasswordHash(ctx, store.UpdateUserPasswordHashParams{
		PasswordHash: hash,
		ID:           userID,
	}); err != nil {
		s.logger.Error("storing rehashed password", "user_id", userID, "error", err)
		return
	}
	s.logger.Info("upgraded password hash", "user_id", userID)
}

// IssueToken creates an access token for user.
func (s *UserService) IssueToken(user store.User) (string, time.Time, error) {
	return s.tokens.Issue(user.ID, time.Now())
}

// ResolveToken returns the active user a bearer token was issued to.
func (s *UserService) ResolveToken(ctx context.Context, token string) (store.User, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return store.User{}, ErrUnauthorized
	}
	userID, err := claims.UserID()
	if err != nil {
		return store.User{}, ErrUnauthorized
	}

	user, err := s.queries.GetUserByID(ctx, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return store.User{}, ErrUnauthorized
	}
	if err != nil {
		return store.User{}, fmt.Errorf("loading token user: %w", err)
	}
	if !user.IsActive {
		return store.User{}, ErrUnauthorized
	}
	return user, nil
}

// MarkGuidelinesSeen records that the user has read the annotation guidelines.
func (s *UserService) MarkGuidelinesSeen(ctx context.Context, userID int64) (store.User, error) {
	user, err := s.queries.UpdateUserGuidelinesSeen(ctx, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return store.User{}, ErrNotFound
	}
	if err != nil {
		return store.User{}, fmt.Errorf("updating guidelines flag: %w", err)
	}
	return user, nil
}

// Get returns a user by id.
func (s *UserService) Get(ctx context.Context, id int64) (store.User, error) {
	user, err := s.queries.GetUserByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return store.User{}, ErrNotFound
	}
	if err != nil {
		return store.User{}, fmt.Errorf("getting user: %w", err)
	}
	return user, nil
}

// List returns a page of users ordered by id and the total count.
func (s *UserService) List(ctx context.Context, skip, limit int64) ([]store.User, int64, error) {
	skip, limit = clampPage(skip, limit)

	users, err := s.queries.ListUsers(ctx, store.ListUsersParams{Limit: limit, Offset: skip})
	if err != nil {
		return nil, 0, fmt.Errorf("listing users: %w", err)
	}
	total, err := s.queries.CountUsers(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("counting users: %w", err)
	}
	return users, total, nil
}

// AdminUpdate changes the active and admin flags of a user. Admins cannot
// deactivate or demote themselves.
func (s *UserService) AdminUpdate(ctx context.Context, admin store.User, id int64, in AdminUserUpdate) (store.User, error) {
	if !admin.IsAdmin {
		return store.User{}, ErrForbidden
	}

	user, err := s.Get(ctx, id)
	if err != nil {
		return store.User{}, err
	}

	params := store.UpdateUserFlagsParams{IsActive: user.IsActive, IsAdmin: user.IsAdmin, ID: user.ID}
	if in.IsActive != nil {
		params.IsActive = *in.IsActive
	}
	if in.IsAdmin != nil {
		params.IsAdmin = *in.IsAdmin
	}

	if admin.ID == user.ID && (!params.IsActive || !params.IsAdmin) {
		ve := newValidationError()
		ve.Add("user", "You cannot deactivate or demote your own account")
		return store.User{}, ve
	}

	updated, err := s.queries.UpdateUserFlags(ctx, params)
	if err != nil {
		return store.User{}, fmt.Errorf("updating user flags: %w", err)
	}

	s.events.record(ctx, model.EventCategoryUser, "User flags updated", admin.ID, map[string]any{
		"target_user_id": updated.ID,
		"is_active":      updated.IsActive,
		"is_admin":       updated.IsAdmin,
	})
	return updated, nil
}

// UserStats returns annotation totals for one user.
func (s *UserService) UserStats(ctx context.Context, userID int64) (UserStats, error) {
	user, err := s.Get(ctx, userID)
	if err != nil {
		return UserStats{}, err
	}

	row, err := s.queries.GetAnnotatorStats(ctx, userID)
	if err != nil {
		return UserStats{}, fmt.Errorf("loading annotator stats: %w", err)
	}

	return UserStats{
		User:                     user,
		TotalAnnotations:         row.TotalAnnotations,
		CompletedAnnotations:     row.CompletedAnnotations,
		AverageTimePerAnnotation: row.AverageTimeSpent,
	}, nil
}

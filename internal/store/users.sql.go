// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"
)

const userColumns = `id, email, username, password_hash, first_name, last_name, preferred_language,
       is_active, is_admin, guidelines_seen, created_at`

func scanUser(row scanner) (User, error) {
	var i User
	err := row.Scan(
		&i.ID,
		&i.Email,
		&i.Username,
		&i.PasswordHash,
		&i.FirstName,
		&i.LastName,
		&i.PreferredLanguage,
		&i.IsActive,
		&i.IsAdmin,
		&i.GuidelinesSeen,
		&i.CreatedAt,
	)
	return i, err
}

func scanUsers(rows *sql.Rows) ([]User, error) {
	defer rows.Close()
	items := []User{}
	for rows.Next() {
		i, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const createUser = `-- name: CreateUser :one
INSERT INTO users (
    email, username, password_hash, first_name, last_name, preferred_language,
    is_active, is_admin, guidelines_seen, created_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, 0, ?)
RETURNING ` + userColumns

type CreateUserParams struct {
	Email             string         `json:"email"`
	Username          string         `json:"username"`
	PasswordHash      string         `json:"password_hash"`
	FirstName         string         `json:"first_name"`
	LastName          string         `json:"last_name"`
	PreferredLanguage sql.NullString `json:"preferred_language"`
	IsActive          bool           `json:"is_active"`
	IsAdmin           bool           `json:"is_admin"`
	CreatedAt         time.Time      `json:"created_at"`
}

func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (User, error) {
	row := q.db.QueryRowContext(ctx, createUser,
		arg.Email,
		arg.Username,
		arg.PasswordHash,
		arg.FirstName,
		arg.LastName,
		arg.PreferredLanguage,
		arg.IsActive,
		arg.IsAdmin,
		arg.CreatedAt,
	)
	return scanUser(row)
}

const getUserByID = `-- name: GetUserByID :one
SELECT ` + userColumns + ` FROM users WHERE id = ?`

func (q *Queries) GetUserByID(ctx context.Context, id int64) (User, error) {
	return scanUser(q.db.QueryRowContext(ctx, getUserByID, id))
}

const getUserByEmail = `-- name: GetUserByEmail :one
SELECT ` + userColumns + ` FROM users WHERE email = ?`

func (q *Queries) GetUserByEmail(ctx context.Context, email string) (User, error) {
	return scanUser(q.db.QueryRowContext(ctx, getUserByEmail, email))
}

const countUsersByEmailOrUsername = `-- name: CountUsersByEmailOrUsername :one
SELECT COUNT(*) FROM users WHERE email = ? OR username = ?`

type CountUsersByEmailOrUsernameParams struct {
	Email    string `json:"email"`
	Username string `json:"username"`
}

func (q *Queries) CountUsersByEmailOrUsername(ctx context.Context, arg CountUsersByEmailOrUsernameParams) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countUsersByEmailOrUsername, arg.Email, arg.Username).Scan(&count)
	return count, err
}

const listUsers = `-- name: ListUsers :many
SELECT ` + userColumns + ` FROM users ORDER BY id ASC LIMIT ? OFFSET ?`

type ListUsersParams struct {
	Limit  int64 `json:"limit"`
	Offset int64 `json:"offset"`
}

func (q *Queries) ListUsers(ctx context.Context, arg ListUsersParams) ([]User, error) {
	rows, err := q.db.QueryContext(ctx, listUsers, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	return scanUsers(rows)
}

// GetUsersByIDs loads every user whose id is in ids, keyed by id.
func (q *Queries) GetUsersByIDs(ctx context.Context, ids []int64) (map[int64]User, error) {
	result := make(map[int64]User, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	query, args, err := sq.Select(userColumns).From("users").Where(sq.Eq{"id": ids}).ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	users, err := scanUsers(rows)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		result[u.ID] = u
	}
	return result, nil
}

const countUsers = `-- name: CountUsers :one
SELECT COUNT(*) FROM users`

func (q *Queries) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countUsers).Scan(&count)
	return count, err
}

const updateUserGuidelinesSeen = `-- name: UpdateUserGuidelinesSeen :one
UPDATE users SET guidelines_seen = 1 WHERE id = ?
RETURNING ` + userColumns

func (q *Queries) UpdateUserGuidelinesSeen(ctx context.Context, id int64) (User, error) {
	return scanUser(q.db.QueryRowContext(ctx, updateUserGuidelinesSeen, id))
}

const updateUserFlags = `-- name: UpdateUserFlags :one
UPDATE users SET is_active = ?, is_admin = ? WHERE id = ?
RETURNING ` + userColumns

type UpdateUserFlagsParams struct {
	IsActive bool  `json:"is_active"`
	IsAdmin  bool  `json:"is_admin"`
	ID       int64 `json:"id"`
}

func (q *Queries) UpdateUserFlags(ctx context.Context, arg UpdateUserFlagsParams) (User, error) {
	return scanUser(q.db.QueryRowContext(ctx, updateUserFlags, arg.IsActive, arg.IsAdmin, arg.ID))
}

const updateUserPasswordHash = `-- name: UpdateUserPasswordHash :exec
UPDATE users SET password_hash = ? WHERE id = ?`

type UpdateUserPasswordHashParams struct {
	PasswordHash string `json:"password_hash"`
	ID           int64  `json:"id"`
}

func (q *Queries) UpdateUserPasswordHash(ctx context.Context, arg UpdateUserPasswordHashParams) error {
	_, err := q.db.ExecContext(ctx, updateUserPasswordHash, arg.PasswordHash, arg.ID)
	return err
}

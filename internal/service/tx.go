// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/wimarka/annotate/internal/store"
)

// runInTx runs fn inside a transaction and commits when fn returns nil.
// The rollback is deferred so every exit path releases the transaction.
// fn must only use the Queries it is given.
func runInTx(ctx context.Context, db *sql.DB, queries *store.Queries, fn func(q *store.Queries) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(queries.WithTx(tx)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// clampPage bounds skip and limit for listing queries.
func clampPage(skip, limit int64) (int64, int64) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	return skip, limit
}

// Page size bounds for list operations.
const (
	DefaultPageLimit = 100
	MaxPageLimit     = 1000
)

// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/wimarka/annotate/internal/store"
)

// AdminStats is the admin dashboard summary.
type AdminStats struct {
	TotalUsers           int64 `json:"total_users"`
	TotalSentences       int64 `json:"total_sentences"`
	TotalAnnotations     int64 `json:"total_annotations"`
	CompletedAnnotations int64 `json:"completed_annotations"`
	ActiveUsers          int64 `json:"active_users"`
}

// StatsService computes aggregate counts. Nothing is cached; every call
// reads the current state in a single statement.
type StatsService struct {
	queries *store.Queries
}

// NewStatsService creates a new StatsService.
func NewStatsService(db *sql.DB) *StatsService {
	return &StatsService{queries: store.New(db)}
}

// Stats returns the current totals.
func (s *StatsService) Stats(ctx context.Context) (AdminStats, error) {
	row, err := s.queries.GetAdminStats(ctx)
	if err != nil {
		return AdminStats{}, fmt.Errorf("loading admin stats: %w", err)
	}
	return AdminStats(row), nil
}

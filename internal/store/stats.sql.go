// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import "context"

const getAdminStats = `-- name: GetAdminStats :one
SELECT
    (SELECT COUNT(*) FROM users) AS total_users,
    (SELECT COUNT(*) FROM sentences) AS total_sentences,
    (SELECT COUNT(*) FROM annotations) AS total_annotations,
    (SELECT COUNT(*) FROM annotations WHERE annotation_status = 'completed') AS completed_annotations,
    (SELECT COUNT(*) FROM users WHERE is_active = 1) AS active_users`

type GetAdminStatsRow struct {
	TotalUsers           int64 `json:"total_users"`
	TotalSentences       int64 `json:"total_sentences"`
	TotalAnnotations     int64 `json:"total_annotations"`
	CompletedAnnotations int64 `json:"completed_annotations"`
	ActiveUsers          int64 `json:"active_users"`
}

func (q *Queries) GetAdminStats(ctx context.Context) (GetAdminStatsRow, error) {
	var i GetAdminStatsRow
	err := q.db.QueryRowContext(ctx, getAdminStats).Scan(
		&i.TotalUsers,
		&i.TotalSentences,
		&i.TotalAnnotations,
		&i.CompletedAnnotations,
		&i.ActiveUsers,
	)
	return i, err
}

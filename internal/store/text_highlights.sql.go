// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"
)

const textHighlightColumns = `id, annotation_id, highlighted_text, start_index, end_index, text_type,
       highlight_type, comment, created_at`

func scanTextHighlight(row scanner) (TextHighlight, error) {
	var i TextHighlight
	err := row.Scan(
		&i.ID,
		&i.AnnotationID,
		&i.HighlightedText,
		&i.StartIndex,
		&i.EndIndex,
		&i.TextType,
		&i.HighlightType,
		&i.Comment,
		&i.CreatedAt,
	)
	return i, err
}

func scanTextHighlights(rows *sql.Rows) ([]TextHighlight, error) {
	defer rows.Close()
	items := []TextHighlight{}
	for rows.Next() {
		i, err := scanTextHighlight(rows)
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

const createTextHighlight = `-- name: CreateTextHighlight :one
INSERT INTO text_highlights (
    annotation_id, highlighted_text, start_index, end_index, text_type,
    highlight_type, comment, created_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
RETURNING ` + textHighlightColumns

type CreateTextHighlightParams struct {
	AnnotationID    int64     `json:"annotation_id"`
	HighlightedText string    `json:"highlighted_text"`
	StartIndex      int64     `json:"start_index"`
	EndIndex        int64     `json:"end_index"`
	TextType        string    `json:"text_type"`
	HighlightType   string    `json:"highlight_type"`
	Comment         string    `json:"comment"`
	CreatedAt       time.Time `json:"created_at"`
}

func (q *Queries) CreateTextHighlight(ctx context.Context, arg CreateTextHighlightParams) (TextHighlight, error) {
	row := q.db.QueryRowContext(ctx, createTextHighlight,
		arg.AnnotationID,
		arg.HighlightedText,
		arg.StartIndex,
		arg.EndIndex,
		arg.TextType,
		arg.HighlightType,
		arg.Comment,
		arg.CreatedAt,
	)
	return scanTextHighlight(row)
}

const listTextHighlightsByAnnotation = `-- name: ListTextHighlightsByAnnotation :many
SELECT ` + textHighlightColumns + ` FROM text_highlights WHERE annotation_id = ? ORDER BY id ASC`

func (q *Queries) ListTextHighlightsByAnnotation(ctx context.Context, annotationID int64) ([]TextHighlight, error) {
	rows, err := q.db.QueryContext(ctx, listTextHighlightsByAnnotation, annotationID)
	if err != nil {
		return nil, err
	}
	return scanTextHighlights(rows)
}

// ListTextHighlightsByAnnotations loads the highlights of several annotations
// at once, grouped by annotation id.
func (q *Queries) ListTextHighlightsByAnnotations(ctx context.Context, annotationIDs []int64) (map[int64][]TextHighlight, error) {
	result := make(map[int64][]TextHighlight, len(annotationIDs))
	if len(annotationIDs) == 0 {
		return result, nil
	}

	query, args, err := sq.Select(textHighlightColumns).
		From("text_highlights").
		Where(sq.Eq{"annotation_id": annotationIDs}).
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	highlights, err := scanTextHighlights(rows)
	if err != nil {
		return nil, err
	}
	for _, h := range highlights {
		result[h.AnnotationID] = append(result[h.AnnotationID], h)
	}
	return result, nil
}

const deleteTextHighlightsByAnnotation = `-- name: DeleteTextHighlightsByAnnotation :execrows
DELETE FROM text_highlights WHERE annotation_id = ?`

func (q *Queries) DeleteTextHighlightsByAnnotation(ctx context.Context, annotationID int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteTextHighlightsByAnnotation, annotationID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const countOrphanTextHighlights = `-- name: CountOrphanTextHighlights :one
SELECT COUNT(*) FROM text_highlights th
WHERE NOT EXISTS (SELECT 1 FROM annotations a WHERE a.id = th.annotation_id)`

// CountOrphanTextHighlights counts highlights whose annotation no longer exists.
func (q *Queries) CountOrphanTextHighlights(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countOrphanTextHighlights).Scan(&count)
	return count, err
}

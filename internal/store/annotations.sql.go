// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"
)

const annotationColumns = `id, sentence_id, annotator_id, fluency_score, adequacy_score, overall_quality,
       errors_found, suggested_correction, comments, final_form, time_spent_seconds,
       annotation_status, created_at, updated_at`

func scanAnnotation(row scanner) (Annotation, error) {
	var i Annotation
	err := row.Scan(
		&i.ID,
		&i.SentenceID,
		&i.AnnotatorID,
		&i.FluencyScore,
		&i.AdequacyScore,
		&i.OverallQuality,
		&i.ErrorsFound,
		&i.SuggestedCorrection,
		&i.Comments,
		&i.FinalForm,
		&i.TimeSpentSeconds,
		&i.AnnotationStatus,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

func scanAnnotations(rows *sql.Rows) ([]Annotation, error) {
	defer rows.Close()
	items := []Annotation{}
	for rows.Next() {
		i, err := scanAnnotation(rows)
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

const createAnnotation = `-- name: CreateAnnotation :one
INSERT INTO annotations (
    sentence_id, annotator_id, fluency_score, adequacy_score, overall_quality,
    errors_found, suggested_correction, comments, final_form, time_spent_seconds,
    annotation_status, created_at, updated_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
RETURNING ` + annotationColumns

type CreateAnnotationParams struct {
	SentenceID          int64          `json:"sentence_id"`
	AnnotatorID         int64          `json:"annotator_id"`
	FluencyScore        sql.NullInt64  `json:"fluency_score"`
	AdequacyScore       sql.NullInt64  `json:"adequacy_score"`
	OverallQuality      sql.NullInt64  `json:"overall_quality"`
	ErrorsFound         sql.NullString `json:"errors_found"`
	SuggestedCorrection sql.NullString `json:"suggested_correction"`
	Comments            sql.NullString `json:"comments"`
	FinalForm           sql.NullString `json:"final_form"`
	TimeSpentSeconds    sql.NullInt64  `json:"time_spent_seconds"`
	AnnotationStatus    string         `json:"annotation_status"`
	CreatedAt           time.Time      `json:"created_at"`
	UpdatedAt           time.Time      `json:"updated_at"`
}

func (q *Queries) CreateAnnotation(ctx context.Context, arg CreateAnnotationParams) (Annotation, error) {
	row := q.db.QueryRowContext(ctx, createAnnotation,
		arg.SentenceID,
		arg.AnnotatorID,
		arg.FluencyScore,
		arg.AdequacyScore,
		arg.OverallQuality,
		arg.ErrorsFound,
		arg.SuggestedCorrection,
		arg.Comments,
		arg.FinalForm,
		arg.TimeSpentSeconds,
		arg.AnnotationStatus,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	return scanAnnotation(row)
}

const getAnnotationForAnnotator = `-- name: GetAnnotationForAnnotator :one
SELECT ` + annotationColumns + ` FROM annotations WHERE id = ? AND annotator_id = ?`

type GetAnnotationForAnnotatorParams struct {
	ID          int64 `json:"id"`
	AnnotatorID int64 `json:"annotator_id"`
}

func (q *Queries) GetAnnotationForAnnotator(ctx context.Context, arg GetAnnotationForAnnotatorParams) (Annotation, error) {
	return scanAnnotation(q.db.QueryRowContext(ctx, getAnnotationForAnnotator, arg.ID, arg.AnnotatorID))
}

const annotationExistsForSentence = `-- name: AnnotationExistsForSentence :one
SELECT EXISTS(SELECT 1 FROM annotations WHERE sentence_id = ? AND annotator_id = ?)`

type AnnotationExistsForSentenceParams struct {
	SentenceID  int64 `json:"sentence_id"`
	AnnotatorID int64 `json:"annotator_id"`
}

func (q *Queries) AnnotationExistsForSentence(ctx context.Context, arg AnnotationExistsForSentenceParams) (bool, error) {
	var exists int64
	err := q.db.QueryRowContext(ctx, annotationExistsForSentence, arg.SentenceID, arg.AnnotatorID).Scan(&exists)
	return exists != 0, err
}

const listAnnotationsByAnnotator = `-- name: ListAnnotationsByAnnotator :many
SELECT ` + annotationColumns + ` FROM annotations WHERE annotator_id = ? ORDER BY id ASC LIMIT ? OFFSET ?`

type ListAnnotationsByAnnotatorParams struct {
	AnnotatorID int64 `json:"annotator_id"`
	Limit       int64 `json:"limit"`
	Offset      int64 `json:"offset"`
}

func (q *Queries) ListAnnotationsByAnnotator(ctx context.Context, arg ListAnnotationsByAnnotatorParams) ([]Annotation, error) {
	rows, err := q.db.QueryContext(ctx, listAnnotationsByAnnotator, arg.AnnotatorID, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	return scanAnnotations(rows)
}

const countAnnotationsByAnnotator = `-- name: CountAnnotationsByAnnotator :one
SELECT COUNT(*) FROM annotations WHERE annotator_id = ?`

func (q *Queries) CountAnnotationsByAnnotator(ctx context.Context, annotatorID int64) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countAnnotationsByAnnotator, annotatorID).Scan(&count)
	return count, err
}

const listAnnotations = `-- name: ListAnnotations :many
SELECT ` + annotationColumns + ` FROM annotations ORDER BY id ASC LIMIT ? OFFSET ?`

type ListAnnotationsParams struct {
	Limit  int64 `json:"limit"`
	Offset int64 `json:"offset"`
}

func (q *Queries) ListAnnotations(ctx context.Context, arg ListAnnotationsParams) ([]Annotation, error) {
	rows, err := q.db.QueryContext(ctx, listAnnotations, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	return scanAnnotations(rows)
}

const countAnnotations = `-- name: CountAnnotations :one
SELECT COUNT(*) FROM annotations`

func (q *Queries) CountAnnotations(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countAnnotations).Scan(&count)
	return count, err
}

const updateAnnotationStatus = `-- name: UpdateAnnotationStatus :one
UPDATE annotations SET annotation_status = ?, updated_at = ? WHERE id = ?
RETURNING ` + annotationColumns

type UpdateAnnotationStatusParams struct {
	AnnotationStatus string    `json:"annotation_status"`
	UpdatedAt        time.Time `json:"updated_at"`
	ID               int64     `json:"id"`
}

func (q *Queries) UpdateAnnotationStatus(ctx context.Context, arg UpdateAnnotationStatusParams) (Annotation, error) {
	return scanAnnotation(q.db.QueryRowContext(ctx, updateAnnotationStatus, arg.AnnotationStatus, arg.UpdatedAt, arg.ID))
}

const deleteAnnotation = `-- name: DeleteAnnotation :execrows
DELETE FROM annotations WHERE id = ?`

func (q *Queries) DeleteAnnotation(ctx context.Context, id int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteAnnotation, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// AnnotationPatch lists the columns an update may touch. A nil field is left
// as stored; a non-nil field is written, and an invalid Null* clears the column.
type AnnotationPatch struct {
	FluencyScore        *sql.NullInt64
	AdequacyScore       *sql.NullInt64
	OverallQuality      *sql.NullInt64
	ErrorsFound         *sql.NullString
	SuggestedCorrection *sql.NullString
	Comments            *sql.NullString
	FinalForm           *sql.NullString
	TimeSpentSeconds    *sql.NullInt64
	AnnotationStatus    *string
}

// setMap returns the column assignments for the non-nil fields.
func (p AnnotationPatch) setMap() map[string]any {
	m := make(map[string]any)
	if p.FluencyScore != nil {
		m["fluency_score"] = *p.FluencyScore
	}
	if p.AdequacyScore != nil {
		m["adequacy_score"] = *p.AdequacyScore
	}
	if p.OverallQuality != nil {
		m["overall_quality"] = *p.OverallQuality
	}
	if p.ErrorsFound != nil {
		m["errors_found"] = *p.ErrorsFound
	}
	if p.SuggestedCorrection != nil {
		m["suggested_correction"] = *p.SuggestedCorrection
	}
	if p.Comments != nil {
		m["comments"] = *p.Comments
	}
	if p.FinalForm != nil {
		m["final_form"] = *p.FinalForm
	}
	if p.TimeSpentSeconds != nil {
		m["time_spent_seconds"] = *p.TimeSpentSeconds
	}
	if p.AnnotationStatus != nil {
		m["annotation_status"] = *p.AnnotationStatus
	}
	return m
}

type PatchAnnotationParams struct {
	ID        int64
	Patch     AnnotationPatch
	UpdatedAt time.Time
}

// PatchAnnotation applies only the fields present in the patch and always
// refreshes updated_at.
func (q *Queries) PatchAnnotation(ctx context.Context, arg PatchAnnotationParams) (Annotation, error) {
	set := arg.Patch.setMap()
	set["updated_at"] = arg.UpdatedAt

	query, args, err := sq.Update("annotations").
		SetMap(set).
		Where(sq.Eq{"id": arg.ID}).
		Suffix("RETURNING " + annotationColumns).
		ToSql()
	if err != nil {
		return Annotation{}, err
	}
	return scanAnnotation(q.db.QueryRowContext(ctx, query, args...))
}

const getAnnotatorStats = `-- name: GetAnnotatorStats :one
SELECT
    COUNT(*) AS total_annotations,
    COALESCE(SUM(CASE WHEN annotation_status = 'completed' THEN 1 ELSE 0 END), 0) AS completed_annotations,
    COALESCE(AVG(time_spent_seconds), 0.0) AS average_time_spent
FROM annotations
WHERE annotator_id = ?`

type GetAnnotatorStatsRow struct {
	TotalAnnotations     int64   `json:"total_annotations"`
	CompletedAnnotations int64   `json:"completed_annotations"`
	AverageTimeSpent     float64 `json:"average_time_spent"`
}

func (q *Queries) GetAnnotatorStats(ctx context.Context, annotatorID int64) (GetAnnotatorStatsRow, error) {
	var i GetAnnotatorStatsRow
	err := q.db.QueryRowContext(ctx, getAnnotatorStats, annotatorID).Scan(
		&i.TotalAnnotations,
		&i.CompletedAnnotations,
		&i.AverageTimeSpent,
	)
	return i, err
}

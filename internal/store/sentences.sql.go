// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"
)

const sentenceColumns = `id, source_text, tagalog_source_text, machine_translation, reference_translation,
       source_language, target_language, domain, is_active, created_at`

func scanSentence(row scanner) (Sentence, error) {
	var i Sentence
	err := row.Scan(
		&i.ID,
		&i.SourceText,
		&i.TagalogSourceText,
		&i.MachineTranslation,
		&i.ReferenceTranslation,
		&i.SourceLanguage,
		&i.TargetLanguage,
		&i.Domain,
		&i.IsActive,
		&i.CreatedAt,
	)
	return i, err
}

func scanSentences(rows *sql.Rows) ([]Sentence, error) {
	defer rows.Close()
	items := []Sentence{}
	for rows.Next() {
		i, err := scanSentence(rows)
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

const createSentence = `-- name: CreateSentence :one
INSERT INTO sentences (
    source_text, tagalog_source_text, machine_translation, reference_translation,
    source_language, target_language, domain, is_active, created_at
) VALUES (?, ?, ?, ?, ?, ?, ?, 1, ?)
RETURNING ` + sentenceColumns

type CreateSentenceParams struct {
	SourceText           string         `json:"source_text"`
	TagalogSourceText    sql.NullString `json:"tagalog_source_text"`
	MachineTranslation   string         `json:"machine_translation"`
	ReferenceTranslation sql.NullString `json:"reference_translation"`
	SourceLanguage       string         `json:"source_language"`
	TargetLanguage       string         `json:"target_language"`
	Domain               sql.NullString `json:"domain"`
	CreatedAt            time.Time      `json:"created_at"`
}

func (q *Queries) CreateSentence(ctx context.Context, arg CreateSentenceParams) (Sentence, error) {
	row := q.db.QueryRowContext(ctx, createSentence,
		arg.SourceText,
		arg.TagalogSourceText,
		arg.MachineTranslation,
		arg.ReferenceTranslation,
		arg.SourceLanguage,
		arg.TargetLanguage,
		arg.Domain,
		arg.CreatedAt,
	)
	return scanSentence(row)
}

const getSentenceByID = `-- name: GetSentenceByID :one
SELECT ` + sentenceColumns + ` FROM sentences WHERE id = ?`

func (q *Queries) GetSentenceByID(ctx context.Context, id int64) (Sentence, error) {
	return scanSentence(q.db.QueryRowContext(ctx, getSentenceByID, id))
}

// GetSentencesByIDs loads every sentence whose id is in ids, keyed by id.
func (q *Queries) GetSentencesByIDs(ctx context.Context, ids []int64) (map[int64]Sentence, error) {
	result := make(map[int64]Sentence, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	query, args, err := sq.Select(sentenceColumns).From("sentences").Where(sq.Eq{"id": ids}).ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	sentences, err := scanSentences(rows)
	if err != nil {
		return nil, err
	}
	for _, s := range sentences {
		result[s.ID] = s
	}
	return result, nil
}

const listActiveSentences = `-- name: ListActiveSentences :many
SELECT ` + sentenceColumns + ` FROM sentences WHERE is_active = 1 ORDER BY id ASC LIMIT ? OFFSET ?`

type ListActiveSentencesParams struct {
	Limit  int64 `json:"limit"`
	Offset int64 `json:"offset"`
}

func (q *Queries) ListActiveSentences(ctx context.Context, arg ListActiveSentencesParams) ([]Sentence, error) {
	rows, err := q.db.QueryContext(ctx, listActiveSentences, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	return scanSentences(rows)
}

const countActiveSentences = `-- name: CountActiveSentences :one
SELECT COUNT(*) FROM sentences WHERE is_active = 1`

func (q *Queries) CountActiveSentences(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countActiveSentences).Scan(&count)
	return count, err
}

const deactivateSentence = `-- name: DeactivateSentence :execrows
UPDATE sentences SET is_active = 0 WHERE id = ?`

func (q *Queries) DeactivateSentence(ctx context.Context, id int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, deactivateSentence, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// unannotatedFilter selects active sentences in a target language that the
// annotator has not annotated yet.
func unannotatedFilter(targetLanguage string, annotatorID int64) sq.Sqlizer {
	return sq.And{
		sq.Eq{"s.is_active": true},
		sq.Eq{"s.target_language": targetLanguage},
		sq.Expr("NOT EXISTS (SELECT 1 FROM annotations a WHERE a.sentence_id = s.id AND a.annotator_id = ?)", annotatorID),
	}
}

type ListUnannotatedSentencesParams struct {
	TargetLanguage string `json:"target_language"`
	AnnotatorID    int64  `json:"annotator_id"`
	Limit          int64  `json:"limit"`
	Offset         int64  `json:"offset"`
}

// ListUnannotatedSentences returns the annotator's pending sentences, lowest id first.
func (q *Queries) ListUnannotatedSentences(ctx context.Context, arg ListUnannotatedSentencesParams) ([]Sentence, error) {
	query, args, err := sq.Select(prefixColumns("s", sentenceColumns)).
		From("sentences s").
		Where(unannotatedFilter(arg.TargetLanguage, arg.AnnotatorID)).
		OrderBy("s.id ASC").
		Limit(uint64(arg.Limit)).
		Offset(uint64(arg.Offset)).
		ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return scanSentences(rows)
}

type CountUnannotatedSentencesParams struct {
	TargetLanguage string `json:"target_language"`
	AnnotatorID    int64  `json:"annotator_id"`
}

func (q *Queries) CountUnannotatedSentences(ctx context.Context, arg CountUnannotatedSentencesParams) (int64, error) {
	query, args, err := sq.Select("COUNT(*)").
		From("sentences s").
		Where(unannotatedFilter(arg.TargetLanguage, arg.AnnotatorID)).
		ToSql()
	if err != nil {
		return 0, err
	}
	var count int64
	err = q.db.QueryRowContext(ctx, query, args...).Scan(&count)
	return count, err
}

const countSentences = `-- name: CountSentences :one
SELECT COUNT(*) FROM sentences`

func (q *Queries) CountSentences(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countSentences).Scan(&count)
	return count, err
}

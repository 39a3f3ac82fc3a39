// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"

	"github.com/wimarka/annotate/internal/model"
	"github.com/wimarka/annotate/internal/store"
)

// SentenceInput is the payload for creating one sentence.
type SentenceInput struct {
	SourceText           string  `json:"source_text" yaml:"source_text"`
	TagalogSourceText    *string `json:"tagalog_source_text,omitempty" yaml:"tagalog_source_text,omitempty"`
	MachineTranslation   string  `json:"machine_translation" yaml:"machine_translation"`
	ReferenceTranslation *string `json:"reference_translation,omitempty" yaml:"reference_translation,omitempty"`
	SourceLanguage       string  `json:"source_language" yaml:"source_language"`
	TargetLanguage       string  `json:"target_language" yaml:"target_language"`
	Domain               *string `json:"domain,omitempty" yaml:"domain,omitempty"`
}

// SentenceService manages the sentence corpus.
type SentenceService struct {
	db      *sql.DB
	queries *store.Queries
	events  *EventService
}

// NewSentenceService creates a new SentenceService. events may be nil.
func NewSentenceService(db *sql.DB, events *EventService) *SentenceService {
	return &SentenceService{
		db:      db,
		queries: store.New(db),
		events:  events,
	}
}

// normalizeText trims s and converts it to Unicode NFC so that highlight
// offsets count the same code points the annotator sees.
func normalizeText(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// NormalizeLanguage canonicalises a language name for matching sentences
// against a user's preferred language.
func NormalizeLanguage(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func optionalText(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	v := normalizeText(*s)
	return sql.NullString{String: v, Valid: v != ""}
}

// params validates in and converts it to insert parameters. Field names in
// ve are prefixed with prefix.
func (in SentenceInput) params(prefix string, ve *ValidationError, now time.Time) store.CreateSentenceParams {
	p := store.CreateSentenceParams{
		SourceText:           normalizeText(in.SourceText),
		TagalogSourceText:    optionalText(in.TagalogSourceText),
		MachineTranslation:   normalizeText(in.MachineTranslation),
		ReferenceTranslation: optionalText(in.ReferenceTranslation),
		SourceLanguage:       NormalizeLanguage(in.SourceLanguage),
		TargetLanguage:       NormalizeLanguage(in.TargetLanguage),
		Domain:               optionalText(in.Domain),
		CreatedAt:            now,
	}

	if p.SourceText == "" {
		ve.Add(prefix+"source_text", "Source text is required")
	}
	if p.MachineTranslation == "" {
		ve.Add(prefix+"machine_translation", "Machine translation is required")
	}
	if p.SourceLanguage == "" {
		ve.Add(prefix+"source_language", "Source language is required")
	}
	if p.TargetLanguage == "" {
		ve.Add(prefix+"target_language", "Target language is required")
	}
	return p
}

// Create validates and stores one sentence.
func (s *SentenceService) Create(ctx context.Context, actor store.User, in SentenceInput) (store.Sentence, error) {
	ve := newValidationError()
	params := in.params("", ve, time.Now().UTC())
	if err := ve.errOrNil(); err != nil {
		return store.Sentence{}, err
	}

	sentence, err := s.queries.CreateSentence(ctx, params)
	if err != nil {
		return store.Sentence{}, fmt.Errorf("creating sentence: %w", err)
	}

	s.events.record(ctx, model.EventCategorySentence, "Sentence created", actor.ID, map[string]any{"sentence_id": sentence.ID})
	return sentence, nil
}

// BulkCreate validates every input first and then inserts all of them in
// one transaction. Either every sentence is stored or none is.
func (s *SentenceService) BulkCreate(ctx context.Context, actor store.User, inputs []SentenceInput) ([]store.Sentence, error) {
	ve := newValidationError()
	if len(inputs) == 0 {
		ve.Add("sentences", "At least one sentence is required")
		return nil, ve
	}

	now := time.Now().UTC()
	params := make([]store.CreateSentenceParams, len(inputs))
	for i, in := range inputs {
		params[i] = in.params(fmt.Sprintf("sentences[%d].", i), ve, now)
	}
	if err := ve.errOrNil(); err != nil {
		return nil, err
	}

	created := make([]store.Sentence, 0, len(params))
	err := runInTx(ctx, s.db, s.queries, func(q *store.Queries) error {
		for i, p := range params {
			sentence, err := q.CreateSentence(ctx, p)
			if err != nil {
				return fmt.Errorf("creating sentence %d: %w", i, err)
			}
			created = append(created, sentence)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.events.record(ctx, model.EventCategorySentence, "Sentences imported", actor.ID, map[string]any{"count": len(created)})
	return created, nil
}

// Get returns a sentence by id.
func (s *SentenceService) Get(ctx context.Context, id int64) (store.Sentence, error) {
	sentence, err := s.queries.GetSentenceByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Sentence{}, ErrNotFound
	}
	if err != nil {
		return store.Sentence{}, fmt.Errorf("getting sentence: %w", err)
	}
	return sentence, nil
}

// List returns a page of active sentences and their total count.
func (s *SentenceService) List(ctx context.Context, skip, limit int64) ([]store.Sentence, int64, error) {
	skip, limit = clampPage(skip, limit)

	sentences, err := s.queries.ListActiveSentences(ctx, store.ListActiveSentencesParams{Limit: limit, Offset: skip})
	if err != nil {
		return nil, 0, fmt.Errorf("listing sentences: %w", err)
	}
	total, err := s.queries.CountActiveSentences(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("counting sentences: %w", err)
	}
	return sentences, total, nil
}

// Deactivate hides a sentence from assignment and listings. Existing
// annotations of the sentence are kept.
func (s *SentenceService) Deactivate(ctx context.Context, actor store.User, id int64) error {
	n, err := s.queries.DeactivateSentence(ctx, id)
	if err != nil {
		return fmt.Errorf("deactivating sentence: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}

	s.events.record(ctx, model.EventCategorySentence, "Sentence deactivated", actor.ID, map[string]any{"sentence_id": id})
	return nil
}

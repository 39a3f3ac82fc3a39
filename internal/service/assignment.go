// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/wimarka/annotate/internal/store"
)

// AssignmentService decides which sentences an annotator should see next.
// Candidates are active sentences in the annotator's preferred language
// that the annotator has not annotated yet, lowest id first.
type AssignmentService struct {
	queries *store.Queries
}

// NewAssignmentService creates a new AssignmentService.
func NewAssignmentService(db *sql.DB) *AssignmentService {
	return &AssignmentService{queries: store.New(db)}
}

// NextSentence returns the first candidate sentence for user.
// It returns ErrNotFound when there is none, including when the user has
// no preferred language.
func (s *AssignmentService) NextSentence(ctx context.Context, user store.User) (store.Sentence, error) {
	if !user.PreferredLanguage.Valid || user.PreferredLanguage.String == "" {
		return store.Sentence{}, ErrNotFound
	}

	sentences, err := s.queries.ListUnannotatedSentences(ctx, store.ListUnannotatedSentencesParams{
		TargetLanguage: user.PreferredLanguage.String,
		AnnotatorID:    user.ID,
		Limit:          1,
		Offset:         0,
	})
	if err != nil {
		return store.Sentence{}, fmt.Errorf("selecting next sentence: %w", err)
	}
	if len(sentences) == 0 {
		return store.Sentence{}, ErrNotFound
	}
	return sentences[0], nil
}

// UnannotatedBatch returns a page of candidate sentences and the total
// number of candidates.
func (s *AssignmentService) UnannotatedBatch(ctx context.Context, user store.User, skip, limit int64) ([]store.Sentence, int64, error) {
	if !user.PreferredLanguage.Valid || user.PreferredLanguage.String == "" {
		return []store.Sentence{}, 0, nil
	}
	skip, limit = clampPage(skip, limit)

	sentences, err := s.queries.ListUnannotatedSentences(ctx, store.ListUnannotatedSentencesParams{
		TargetLanguage: user.PreferredLanguage.String,
		AnnotatorID:    user.ID,
		Limit:          limit,
		Offset:         skip,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("listing unannotated sentences: %w", err)
	}

	total, err := s.queries.CountUnannotatedSentences(ctx, store.CountUnannotatedSentencesParams{
		TargetLanguage: user.PreferredLanguage.String,
		AnnotatorID:    user.ID,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("counting unannotated sentences: %w", err)
	}
	return sentences, total, nil
}

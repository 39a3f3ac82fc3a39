// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/wimarka/annotate/internal/model"
	"github.com/wimarka/annotate/internal/store"
)

// HighlightInput is one highlighted span in a create or update request.
type HighlightInput struct {
	HighlightedText string `json:"highlighted_text"`
	StartIndex      int64  `json:"start_index"`
	EndIndex        int64  `json:"end_index"`
	TextType        string `json:"text_type"`
	HighlightType   string `json:"highlight_type"`
	Comment         string `json:"comment"`
}

// AnnotationFields are the rating fields shared by both create entry points.
type AnnotationFields struct {
	FluencyScore        *int64  `json:"fluency_score"`
	AdequacyScore       *int64  `json:"adequacy_score"`
	OverallQuality      *int64  `json:"overall_quality"`
	ErrorsFound         *string `json:"errors_found"`
	SuggestedCorrection *string `json:"suggested_correction"`
	Comments            *string `json:"comments"`
	FinalForm           *string `json:"final_form"`
	TimeSpentSeconds    *int64  `json:"time_spent_seconds"`
}

// CreateAnnotationInput is the payload of the highlight-based create.
type CreateAnnotationInput struct {
	SentenceID int64 `json:"sentence_id"`
	AnnotationFields
	Highlights []HighlightInput `json:"highlights"`
}

// LegacyAnnotationInput is the payload of the create entry point used by
// older clients. It carries no highlights.
type LegacyAnnotationInput struct {
	SentenceID int64 `json:"sentence_id"`
	AnnotationFields
}

// UpdateAnnotationInput is a partial update. Absent fields are left alone,
// explicit nulls clear the column.
type UpdateAnnotationInput struct {
	FluencyScore        model.Optional[int64]            `json:"fluency_score"`
	AdequacyScore       model.Optional[int64]            `json:"adequacy_score"`
	OverallQuality      model.Optional[int64]            `json:"overall_quality"`
	ErrorsFound         model.Optional[string]           `json:"errors_found"`
	SuggestedCorrection model.Optional[string]           `json:"suggested_correction"`
	Comments            model.Optional[string]           `json:"comments"`
	FinalForm           model.Optional[string]           `json:"final_form"`
	TimeSpentSeconds    model.Optional[int64]            `json:"time_spent_seconds"`
	AnnotationStatus    model.Optional[string]           `json:"annotation_status"`
	Highlights          model.Optional[[]HighlightInput] `json:"highlights"`
}

// AnnotationDetail is an annotation joined with its sentence, annotator
// and highlights.
type AnnotationDetail struct {
	Annotation store.Annotation
	Sentence   store.Sentence
	Annotator  store.User
	Highlights []store.TextHighlight
}

// AnnotationService owns the annotation write path. At most one annotation
// exists per (sentence, annotator); the unique index on the table backs
// the in-transaction check.
type AnnotationService struct {
	db      *sql.DB
	queries *store.Queries
	events  *EventService
}

// NewAnnotationService creates a new AnnotationService. events may be nil.
func NewAnnotationService(db *sql.DB, events *EventService) *AnnotationService {
	return &AnnotationService{
		db:      db,
		queries: store.New(db),
		events:  events,
	}
}

// Create stores an annotation with its highlights for user. The annotation
// is marked completed. A second annotation of the same sentence by the
// same user fails with ErrConflict and writes nothing.
func (s *AnnotationService) Create(ctx context.Context, user store.User, in CreateAnnotationInput) (AnnotationDetail, error) {
	ve := newValidationError()
	validateSentenceID(ve, in.SentenceID)
	validateFields(ve, in.AnnotationFields)
	if err := ve.errOrNil(); err != nil {
		return AnnotationDetail{}, err
	}

	sentence, err := s.activeSentence(ctx, in.SentenceID)
	if err != nil {
		return AnnotationDetail{}, err
	}

	highlights := prepareHighlights(ve, sentence, in.Highlights)
	if err := ve.errOrNil(); err != nil {
		return AnnotationDetail{}, err
	}

	var detail AnnotationDetail
	err = runInTx(ctx, s.db, s.queries, func(q *store.Queries) error {
		annotation, err := insertAnnotation(ctx, q, sentence.ID, user.ID, in.AnnotationFields)
		if err != nil {
			return err
		}
		created, err := insertHighlights(ctx, q, annotation.ID, highlights)
		if err != nil {
			return err
		}
		detail = AnnotationDetail{Annotation: annotation, Sentence: sentence, Annotator: user, Highlights: created}
		return nil
	})
	if err != nil {
		return AnnotationDetail{}, err
	}
	return detail, nil
}

// CreateLegacy stores an annotation without highlights under the same
// one-per-sentence rule as Create.
func (s *AnnotationService) CreateLegacy(ctx context.Context, user store.User, in LegacyAnnotationInput) (AnnotationDetail, error) {
	ve := newValidationError()
	validateSentenceID(ve, in.SentenceID)
	validateFields(ve, in.AnnotationFields)
	if err := ve.errOrNil(); err != nil {
		return AnnotationDetail{}, err
	}

	sentence, err := s.activeSentence(ctx, in.SentenceID)
	if err != nil {
		return AnnotationDetail{}, err
	}

	var detail AnnotationDetail
	err = runInTx(ctx, s.db, s.queries, func(q *store.Queries) error {
		annotation, err := insertAnnotation(ctx, q, sentence.ID, user.ID, in.AnnotationFields)
		if err != nil {
			return err
		}
		detail = AnnotationDetail{Annotation: annotation, Sentence: sentence, Annotator: user, Highlights: []store.TextHighlight{}}
		return nil
	})
	if err != nil {
		return AnnotationDetail{}, err
	}
	return detail, nil
}

// Update applies a partial update to one of user's annotations. Annotations
// that do not exist and annotations owned by someone else both yield
// ErrNotFound. When highlights are present they replace the stored set.
func (s *AnnotationService) Update(ctx context.Context, user store.User, id int64, in UpdateAnnotationInput) (AnnotationDetail, error) {
	current, err := s.queries.GetAnnotationForAnnotator(ctx, store.GetAnnotationForAnnotatorParams{ID: id, AnnotatorID: user.ID})
	if errors.Is(err, sql.ErrNoRows) {
		return AnnotationDetail{}, ErrNotFound
	}
	if err != nil {
		return AnnotationDetail{}, fmt.Errorf("loading annotation: %w", err)
	}

	sentence, err := s.queries.GetSentenceByID(ctx, current.SentenceID)
	if err != nil {
		return AnnotationDetail{}, fmt.Errorf("loading annotation sentence: %w", err)
	}

	ve := newValidationError()
	patch := buildPatch(ve, current, in)
	var highlights []store.CreateTextHighlightParams
	if in.Highlights.HasValue() {
		highlights = prepareHighlights(ve, sentence, in.Highlights.Value)
	}
	if err := ve.errOrNil(); err != nil {
		return AnnotationDetail{}, err
	}

	var detail AnnotationDetail
	err = runInTx(ctx, s.db, s.queries, func(q *store.Queries) error {
		annotation, err := q.PatchAnnotation(ctx, store.PatchAnnotationParams{
			ID:        current.ID,
			Patch:     patch,
			UpdatedAt: time.Now().UTC(),
		})
		if err != nil {
			return fmt.Errorf("updating annotation: %w", err)
		}

		var stored []store.TextHighlight
		if in.Highlights.HasValue() {
			if _, err := q.DeleteTextHighlightsByAnnotation(ctx, annotation.ID); err != nil {
				return fmt.Errorf("clearing highlights: %w", err)
			}
			stored, err = insertHighlights(ctx, q, annotation.ID, highlights)
		} else {
			stored, err = q.ListTextHighlightsByAnnotation(ctx, annotation.ID)
		}
		if err != nil {
			return err
		}

		detail = AnnotationDetail{Annotation: annotation, Sentence: sentence, Annotator: user, Highlights: stored}
		return nil
	})
	if err != nil {
		return AnnotationDetail{}, err
	}
	return detail, nil
}

// Review marks an annotation reviewed. Only admins may review.
func (s *AnnotationService) Review(ctx context.Context, admin store.User, id int64) (AnnotationDetail, error) {
	if !admin.IsAdmin {
		return AnnotationDetail{}, ErrForbidden
	}

	annotation, err := s.queries.UpdateAnnotationStatus(ctx, store.UpdateAnnotationStatusParams{
		AnnotationStatus: model.StatusReviewed,
		UpdatedAt:        time.Now().UTC(),
		ID:               id,
	})
	if errors.Is(err, sql.ErrNoRows) {
		return AnnotationDetail{}, ErrNotFound
	}
	if err != nil {
		return AnnotationDetail{}, fmt.Errorf("reviewing annotation: %w", err)
	}

	details, err := s.details(ctx, []store.Annotation{annotation})
	if err != nil {
		return AnnotationDetail{}, err
	}

	s.events.record(ctx, model.EventCategoryAnnotation, "Annotation reviewed", admin.ID, map[string]any{"annotation_id": id})
	return details[0], nil
}

// Delete removes an annotation and, through the foreign key cascade, its
// highlights. Only admins may delete.
func (s *AnnotationService) Delete(ctx context.Context, admin store.User, id int64) error {
	if !admin.IsAdmin {
		return ErrForbidden
	}

	n, err := s.queries.DeleteAnnotation(ctx, id)
	if err != nil {
		return fmt.Errorf("deleting annotation: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}

	s.events.record(ctx, model.EventCategoryAnnotation, "Annotation deleted", admin.ID, map[string]any{"annotation_id": id})
	return nil
}

// Get returns one of user's annotations.
func (s *AnnotationService) Get(ctx context.Context, user store.User, id int64) (AnnotationDetail, error) {
	annotation, err := s.queries.GetAnnotationForAnnotator(ctx, store.GetAnnotationForAnnotatorParams{ID: id, AnnotatorID: user.ID})
	if errors.Is(err, sql.ErrNoRows) {
		return AnnotationDetail{}, ErrNotFound
	}
	if err != nil {
		return AnnotationDetail{}, fmt.Errorf("loading annotation: %w", err)
	}

	details, err := s.details(ctx, []store.Annotation{annotation})
	if err != nil {
		return AnnotationDetail{}, err
	}
	return details[0], nil
}

// ListMine returns a page of user's annotations and their total count.
func (s *AnnotationService) ListMine(ctx context.Context, user store.User, skip, limit int64) ([]AnnotationDetail, int64, error) {
	skip, limit = clampPage(skip, limit)

	annotations, err := s.queries.ListAnnotationsByAnnotator(ctx, store.ListAnnotationsByAnnotatorParams{
		AnnotatorID: user.ID,
		Limit:       limit,
		Offset:      skip,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("listing annotations: %w", err)
	}
	total, err := s.queries.CountAnnotationsByAnnotator(ctx, user.ID)
	if err != nil {
		return nil, 0, fmt.Errorf("counting annotations: %w", err)
	}

	details, err := s.details(ctx, annotations)
	if err != nil {
		return nil, 0, err
	}
	return details, total, nil
}

// ListAll returns a page of every annotation and the total count.
func (s *AnnotationService) ListAll(ctx context.Context, skip, limit int64) ([]AnnotationDetail, int64, error) {
	skip, limit = clampPage(skip, limit)

	annotations, err := s.queries.ListAnnotations(ctx, store.ListAnnotationsParams{Limit: limit, Offset: skip})
	if err != nil {
		return nil, 0, fmt.Errorf("listing annotations: %w", err)
	}
	total, err := s.queries.CountAnnotations(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("counting annotations: %w", err)
	}

	details, err := s.details(ctx, annotations)
	if err != nil {
		return nil, 0, err
	}
	return details, total, nil
}

// details joins annotations with their sentences, annotators and
// highlights using one lookup per related table.
func (s *AnnotationService) details(ctx context.Context, annotations []store.Annotation) ([]AnnotationDetail, error) {
	out := make([]AnnotationDetail, 0, len(annotations))
	if len(annotations) == 0 {
		return out, nil
	}

	ids := make([]int64, len(annotations))
	sentenceIDs := make([]int64, len(annotations))
	userIDs := make([]int64, len(annotations))
	for i, a := range annotations {
		ids[i] = a.ID
		sentenceIDs[i] = a.SentenceID
		userIDs[i] = a.AnnotatorID
	}

	sentences, err := s.queries.GetSentencesByIDs(ctx, sentenceIDs)
	if err != nil {
		return nil, fmt.Errorf("loading sentences: %w", err)
	}
	users, err := s.queries.GetUsersByIDs(ctx, userIDs)
	if err != nil {
		return nil, fmt.Errorf("loading annotators: %w", err)
	}
	highlights, err := s.queries.ListTextHighlightsByAnnotations(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("loading highlights: %w", err)
	}

	for _, a := range annotations {
		hs := highlights[a.ID]
		if hs == nil {
			hs = []store.TextHighlight{}
		}
		out = append(out, AnnotationDetail{
			Annotation: a,
			Sentence:   sentences[a.SentenceID],
			Annotator:  users[a.AnnotatorID],
			Highlights: hs,
		})
	}
	return out, nil
}

// activeSentence loads a sentence that can be annotated. Unknown and
// deactivated sentences yield ErrNotFound.
func (s *AnnotationService) activeSentence(ctx context.Context, id int64) (store.Sentence, error) {
	sentence, err := s.queries.GetSentenceByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Sentence{}, fmt.Errorf("sentence %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return store.Sentence{}, fmt.Errorf("loading sentence: %w", err)
	}
	if !sentence.IsActive {
		return store.Sentence{}, fmt.Errorf("sentence %d is inactive: %w", id, ErrNotFound)
	}
	return sentence, nil
}

// insertAnnotation checks for an existing annotation of the pair and
// inserts a completed one. Both steps run on the caller's transaction.
func insertAnnotation(ctx context.Context, q *store.Queries, sentenceID, userID int64, f AnnotationFields) (store.Annotation, error) {
	exists, err := q.AnnotationExistsForSentence(ctx, store.AnnotationExistsForSentenceParams{
		SentenceID:  sentenceID,
		AnnotatorID: userID,
	})
	if err != nil {
		return store.Annotation{}, fmt.Errorf("checking existing annotation: %w", err)
	}
	if exists {
		return store.Annotation{}, fmt.Errorf("sentence %d already annotated: %w", sentenceID, ErrConflict)
	}

	now := time.Now().UTC()
	annotation, err := q.CreateAnnotation(ctx, store.CreateAnnotationParams{
		SentenceID:          sentenceID,
		AnnotatorID:         userID,
		FluencyScore:        nullInt(f.FluencyScore),
		AdequacyScore:       nullInt(f.AdequacyScore),
		OverallQuality:      nullInt(f.OverallQuality),
		ErrorsFound:         nullStr(f.ErrorsFound),
		SuggestedCorrection: nullStr(f.SuggestedCorrection),
		Comments:            nullStr(f.Comments),
		FinalForm:           nullStr(f.FinalForm),
		TimeSpentSeconds:    nullInt(f.TimeSpentSeconds),
		AnnotationStatus:    model.StatusCompleted,
		CreatedAt:           now,
		UpdatedAt:           now,
	})
	if store.IsUniqueViolation(err) {
		return store.Annotation{}, fmt.Errorf("sentence %d already annotated: %w", sentenceID, ErrConflict)
	}
	if err != nil {
		return store.Annotation{}, fmt.Errorf("creating annotation: %w", err)
	}
	return annotation, nil
}

func insertHighlights(ctx context.Context, q *store.Queries, annotationID int64, params []store.CreateTextHighlightParams) ([]store.TextHighlight, error) {
	created := make([]store.TextHighlight, 0, len(params))
	for _, p := range params {
		p.AnnotationID = annotationID
		h, err := q.CreateTextHighlight(ctx, p)
		if err != nil {
			return nil, fmt.Errorf("creating highlight: %w", err)
		}
		created = append(created, h)
	}
	return created, nil
}

func validateScore(ve *ValidationError, field string, v *int64) {
	if v != nil && !model.ValidScore(*v) {
		ve.Add(field, fmt.Sprintf("Must be between %d and %d", model.MinScore, model.MaxScore))
	}
}

func validateSentenceID(ve *ValidationError, id int64) {
	if id <= 0 {
		ve.Add("sentence_id", "Sentence is required")
	}
}

func validateFields(ve *ValidationError, f AnnotationFields) {
	validateScore(ve, "fluency_score", f.FluencyScore)
	validateScore(ve, "adequacy_score", f.AdequacyScore)
	validateScore(ve, "overall_quality", f.OverallQuality)
	if f.TimeSpentSeconds != nil && *f.TimeSpentSeconds < 0 {
		ve.Add("time_spent_seconds", "Must not be negative")
	}
}

// prepareHighlights validates highlights against the sentence text they
// point into and fills in missing highlighted text from the span.
func prepareHighlights(ve *ValidationError, sentence store.Sentence, in []HighlightInput) []store.CreateTextHighlightParams {
	now := time.Now().UTC()
	out := make([]store.CreateTextHighlightParams, 0, len(in))

	for i, h := range in {
		field := fmt.Sprintf("highlights[%d]", i)

		if !model.ValidHighlightType(h.HighlightType) {
			ve.Add(field+".highlight_type", "Must be one of error, suggestion, note")
		}

		var text string
		switch h.TextType {
		case model.TextTypeMachine:
			text = sentence.MachineTranslation
		case model.TextTypeReference:
			if !sentence.ReferenceTranslation.Valid {
				ve.Add(field+".text_type", "Sentence has no reference translation")
				continue
			}
			text = sentence.ReferenceTranslation.String
		default:
			ve.Add(field+".text_type", "Must be machine or reference")
			continue
		}

		if !model.SpanWithin(text, h.StartIndex, h.EndIndex) {
			ve.Add(field+".start_index", "Span must satisfy 0 <= start_index <= end_index <= text length")
			continue
		}

		highlighted := h.HighlightedText
		if highlighted == "" {
			highlighted = model.SpanText(text, h.StartIndex, h.EndIndex)
		}

		out = append(out, store.CreateTextHighlightParams{
			HighlightedText: highlighted,
			StartIndex:      h.StartIndex,
			EndIndex:        h.EndIndex,
			TextType:        h.TextType,
			HighlightType:   h.HighlightType,
			Comment:         h.Comment,
			CreatedAt:       now,
		})
	}
	return out
}

// buildPatch validates an update against the current annotation and turns
// it into a store patch.
func buildPatch(ve *ValidationError, current store.Annotation, in UpdateAnnotationInput) store.AnnotationPatch {
	var patch store.AnnotationPatch

	patch.FluencyScore = optionalScore(ve, "fluency_score", in.FluencyScore)
	patch.AdequacyScore = optionalScore(ve, "adequacy_score", in.AdequacyScore)
	patch.OverallQuality = optionalScore(ve, "overall_quality", in.OverallQuality)

	if in.TimeSpentSeconds.HasValue() && in.TimeSpentSeconds.Value < 0 {
		ve.Add("time_spent_seconds", "Must not be negative")
	}
	patch.TimeSpentSeconds = optionalInt(in.TimeSpentSeconds)

	patch.ErrorsFound = optionalStr(in.ErrorsFound)
	patch.SuggestedCorrection = optionalStr(in.SuggestedCorrection)
	patch.Comments = optionalStr(in.Comments)
	patch.FinalForm = optionalStr(in.FinalForm)

	if in.AnnotationStatus.Set {
		status := in.AnnotationStatus.Value
		switch {
		case in.AnnotationStatus.Null:
			ve.Add("annotation_status", "Must not be null")
		case !model.UserSettableStatus(status):
			ve.Add("annotation_status", "Must be in_progress or completed")
		case current.AnnotationStatus == model.StatusReviewed:
			ve.Add("annotation_status", "Reviewed annotations cannot change status")
		default:
			patch.AnnotationStatus = &status
		}
	}

	return patch
}

func optionalScore(ve *ValidationError, field string, o model.Optional[int64]) *sql.NullInt64 {
	if o.HasValue() && !model.ValidScore(o.Value) {
		ve.Add(field, fmt.Sprintf("Must be between %d and %d", model.MinScore, model.MaxScore))
	}
	return optionalInt(o)
}

func optionalInt(o model.Optional[int64]) *sql.NullInt64 {
	if !o.Set {
		return nil
	}
	return &sql.NullInt64{Int64: o.Value, Valid: !o.Null}
}

func optionalStr(o model.Optional[string]) *sql.NullString {
	if !o.Set {
		return nil
	}
	return &sql.NullString{String: o.Value, Valid: !o.Null}
}

func nullInt(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

func nullStr(v *string) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *v, Valid: true}
}

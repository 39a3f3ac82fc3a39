// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/wimarka/annotate/internal/auth"
	"github.com/wimarka/annotate/internal/service"
	"github.com/wimarka/annotate/internal/store"
)

// UserResponse is the public view of an account. The password hash is
// never serialised.
type UserResponse struct {
	ID                int64     `json:"id"`
	Email             string    `json:"email"`
	Username          string    `json:"username"`
	FirstName         string    `json:"first_name"`
	LastName          string    `json:"last_name"`
	PreferredLanguage *string   `json:"preferred_language"`
	IsActive          bool      `json:"is_active"`
	IsAdmin           bool      `json:"is_admin"`
	GuidelinesSeen    bool      `json:"guidelines_seen"`
	CreatedAt         time.Time `json:"created_at"`
}

// SentenceResponse represents a sentence in API responses.
type SentenceResponse struct {
	ID                   int64     `json:"id"`
	SourceText           string    `json:"source_text"`
	TagalogSourceText    *string   `json:"tagalog_source_text"`
	MachineTranslation   string    `json:"machine_translation"`
	ReferenceTranslation *string   `json:"reference_translation"`
	SourceLanguage       string    `json:"source_language"`
	TargetLanguage       string    `json:"target_language"`
	Domain               *string   `json:"domain"`
	IsActive             bool      `json:"is_active"`
	CreatedAt            time.Time `json:"created_at"`
}

// HighlightResponse represents a text highlight in API responses.
type HighlightResponse struct {
	ID              int64     `json:"id"`
	AnnotationID    int64     `json:"annotation_id"`
	HighlightedText string    `json:"highlighted_text"`
	StartIndex      int64     `json:"start_index"`
	EndIndex        int64     `json:"end_index"`
	TextType        string    `json:"text_type"`
	HighlightType   string    `json:"highlight_type"`
	Comment         string    `json:"comment"`
	CreatedAt       time.Time `json:"created_at"`
}

// AnnotationResponse is an annotation with its sentence, annotator and
// highlights.
type AnnotationResponse struct {
	ID                  int64               `json:"id"`
	SentenceID          int64               `json:"sentence_id"`
	AnnotatorID         int64               `json:"annotator_id"`
	FluencyScore        *int64              `json:"fluency_score"`
	AdequacyScore       *int64              `json:"adequacy_score"`
	OverallQuality      *int64              `json:"overall_quality"`
	ErrorsFound         *string             `json:"errors_found"`
	SuggestedCorrection *string             `json:"suggested_correction"`
	Comments            *string             `json:"comments"`
	FinalForm           *string             `json:"final_form"`
	TimeSpentSeconds    *int64              `json:"time_spent_seconds"`
	AnnotationStatus    string              `json:"annotation_status"`
	CreatedAt           time.Time           `json:"created_at"`
	UpdatedAt           time.Time           `json:"updated_at"`
	Sentence            SentenceResponse    `json:"sentence"`
	Annotator           UserResponse        `json:"annotator"`
	Highlights          []HighlightResponse `json:"highlights"`
}

// TokenResponse is returned by register and login.
type TokenResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresAt   time.Time    `json:"expires_at"`
	User        UserResponse `json:"user"`
}

// UserStatsResponse is the per-annotator summary.
type UserStatsResponse struct {
	User                     UserResponse `json:"user"`
	TotalAnnotations         int64        `json:"total_annotations"`
	CompletedAnnotations     int64        `json:"completed_annotations"`
	AverageTimePerAnnotation float64      `json:"average_time_per_annotation"`
}

// EventResponse is one audit log entry.
type EventResponse struct {
	ID        int64           `json:"id"`
	Level     string          `json:"level"`
	Category  string          `json:"category"`
	Message   string          `json:"message"`
	UserID    *int64          `json:"user_id"`
	Metadata  json.RawMessage `json:"metadata"`
	IPAddress string          `json:"ip_address"`
	CreatedAt time.Time       `json:"created_at"`
}

func nullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func nullInt(ni sql.NullInt64) *int64 {
	if !ni.Valid {
		return nil
	}
	v := ni.Int64
	return &v
}

func toUserResponse(u store.User) UserResponse {
	return UserResponse{
		ID:                u.ID,
		Email:             u.Email,
		Username:          u.Username,
		FirstName:         u.FirstName,
		LastName:          u.LastName,
		PreferredLanguage: nullString(u.PreferredLanguage),
		IsActive:          u.IsActive,
		IsAdmin:           u.IsAdmin,
		GuidelinesSeen:    u.GuidelinesSeen,
		CreatedAt:         u.CreatedAt,
	}
}

func toSentenceResponse(s store.Sentence) SentenceResponse {
	return SentenceResponse{
		ID:                   s.ID,
		SourceText:           s.SourceText,
		TagalogSourceText:    nullString(s.TagalogSourceText),
		MachineTranslation:   s.MachineTranslation,
		ReferenceTranslation: nullString(s.ReferenceTranslation),
		SourceLanguage:       s.SourceLanguage,
		TargetLanguage:       s.TargetLanguage,
		Domain:               nullString(s.Domain),
		IsActive:             s.IsActive,
		CreatedAt:            s.CreatedAt,
	}
}

func toHighlightResponse(h store.TextHighlight) HighlightResponse {
	return HighlightResponse{
		ID:              h.ID,
		AnnotationID:    h.AnnotationID,
		HighlightedText: h.HighlightedText,
		StartIndex:      h.StartIndex,
		EndIndex:        h.EndIndex,
		TextType:        h.TextType,
		HighlightType:   h.HighlightType,
		Comment:         h.Comment,
		CreatedAt:       h.CreatedAt,
	}
}

func toAnnotationResponse(d service.AnnotationDetail) AnnotationResponse {
	a := d.Annotation
	highlights := make([]HighlightResponse, len(d.Highlights))
	for i, h := range d.Highlights {
		highlights[i] = toHighlightResponse(h)
	}
	return AnnotationResponse{
		ID:                  a.ID,
		SentenceID:          a.SentenceID,
		AnnotatorID:         a.AnnotatorID,
		FluencyScore:        nullInt(a.FluencyScore),
		AdequacyScore:       nullInt(a.AdequacyScore),
		OverallQuality:      nullInt(a.OverallQuality),
		ErrorsFound:         nullString(a.ErrorsFound),
		SuggestedCorrection: nullString(a.SuggestedCorrection),
		Comments:            nullString(a.Comments),
		FinalForm:           nullString(a.FinalForm),
		TimeSpentSeconds:    nullInt(a.TimeSpentSeconds),
		AnnotationStatus:    a.AnnotationStatus,
		CreatedAt:           a.CreatedAt,
		UpdatedAt:           a.UpdatedAt,
		Sentence:            toSentenceResponse(d.Sentence),
		Annotator:           toUserResponse(d.Annotator),
		Highlights:          highlights,
	}
}

func toTokenResponse(token string, expiresAt time.Time, u store.User) TokenResponse {
	return TokenResponse{
		AccessToken: token,
		TokenType:   auth.TokenType,
		ExpiresAt:   expiresAt,
		User:        toUserResponse(u),
	}
}

func toEventResponse(e store.Event) EventResponse {
	meta := json.RawMessage(e.Metadata)
	if !json.Valid(meta) {
		meta = json.RawMessage("{}")
	}
	return EventResponse{
		ID:        e.ID,
		Level:     e.Level,
		Category:  e.Category,
		Message:   e.Message,
		UserID:    nullInt(e.UserID),
		Metadata:  meta,
		IPAddress: e.IpAddress,
		CreatedAt: e.CreatedAt,
	}
}

// mapSlice converts every element of in with fn.
func mapSlice[T, R any](in []T, fn func(T) R) []R {
	out := make([]R, len(in))
	for i, v := range in {
		out[i] = fn(v)
	}
	return out
}

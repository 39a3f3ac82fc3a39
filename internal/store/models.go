// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"database/sql"
	"time"
)

type User struct {
	ID                int64          `json:"id"`
	Email             string         `json:"email"`
	Username          string         `json:"username"`
	PasswordHash      string         `json:"-"`
	FirstName         string         `json:"first_name"`
	LastName          string         `json:"last_name"`
	PreferredLanguage sql.NullString `json:"preferred_language"`
	IsActive          bool           `json:"is_active"`
	IsAdmin           bool           `json:"is_admin"`
	GuidelinesSeen    bool           `json:"guidelines_seen"`
	CreatedAt         time.Time      `json:"created_at"`
}

type Sentence struct {
	ID                   int64          `json:"id"`
	SourceText           string         `json:"source_text"`
	TagalogSourceText    sql.NullString `json:"tagalog_source_text"`
	MachineTranslation   string         `json:"machine_translation"`
	ReferenceTranslation sql.NullString `json:"reference_translation"`
	SourceLanguage       string         `json:"source_language"`
	TargetLanguage       string         `json:"target_language"`
	Domain               sql.NullString `json:"domain"`
	IsActive             bool           `json:"is_active"`
	CreatedAt            time.Time      `json:"created_at"`
}

type Annotation struct {
	ID                  int64          `json:"id"`
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

type TextHighlight struct {
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

type Event struct {
	ID        int64         `json:"id"`
	Level     string        `json:"level"`
	Category  string        `json:"category"`
	Message   string        `json:"message"`
	UserID    sql.NullInt64 `json:"user_id"`
	Metadata  string        `json:"metadata"`
	IpAddress string        `json:"ip_address"`
	CreatedAt time.Time     `json:"created_at"`
}

// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines the domain vocabulary shared by the store, services
// and handlers: annotation statuses, highlight kinds, score bounds and
// span rules.
package model

import "unicode/utf8"

// Annotation statuses.
const (
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusReviewed   = "reviewed"
)

// Score bounds for fluency, adequacy and overall quality.
const (
	MinScore = 1
	MaxScore = 5
)

// Text types a highlight can point into.
const (
	TextTypeMachine   = "machine"
	TextTypeReference = "reference"
)

// Highlight types.
const (
	HighlightTypeError      = "error"
	HighlightTypeSuggestion = "suggestion"
	HighlightTypeNote       = "note"
)

// ValidStatus reports whether s is a known annotation status.
func ValidStatus(s string) bool {
	switch s {
	case StatusInProgress, StatusCompleted, StatusReviewed:
		return true
	}
	return false
}

// UserSettableStatus reports whether an annotator may move their own
// annotation to status s. Only admins mark annotations reviewed.
func UserSettableStatus(s string) bool {
	return s == StatusInProgress || s == StatusCompleted
}

// ValidScore reports whether v lies within [MinScore, MaxScore].
func ValidScore(v int64) bool {
	return v >= MinScore && v <= MaxScore
}

// ValidTextType reports whether t names a highlightable text.
func ValidTextType(t string) bool {
	return t == TextTypeMachine || t == TextTypeReference
}

// ValidHighlightType reports whether t is a known highlight type.
func ValidHighlightType(t string) bool {
	switch t {
	case HighlightTypeError, HighlightTypeSuggestion, HighlightTypeNote:
		return true
	}
	return false
}

// SpanWithin reports whether [start, end) is a valid span of text.
// Offsets count Unicode code points, not bytes.
func SpanWithin(text string, start, end int64) bool {
	if start < 0 || start > end {
		return false
	}
	return end <= int64(utf8.RuneCountInString(text))
}

// SpanText returns the code points of text in [start, end).
// The span must satisfy SpanWithin.
func SpanText(text string, start, end int64) string {
	runes := []rune(text)
	return string(runes[start:end])
}

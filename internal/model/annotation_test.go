// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "testing"

func TestValidStatus(t *testing.T) {
	tests := []struct {
		status string
		want   bool
	}{
		{StatusInProgress, true},
		{StatusCompleted, true},
		{StatusReviewed, true},
		{"", false},
		{"done", false},
		{"Completed", false},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			if got := ValidStatus(tt.status); got != tt.want {
				t.Errorf("ValidStatus(%q) = %v, want %v", tt.status, got, tt.want)
			}
		})
	}
}

func TestUserSettableStatus(t *testing.T) {
	if !UserSettableStatus(StatusInProgress) || !UserSettableStatus(StatusCompleted) {
		t.Error("annotators should be able to set in_progress and completed")
	}
	if UserSettableStatus(StatusReviewed) {
		t.Error("annotators should not be able to set reviewed")
	}
}

func TestValidScore(t *testing.T) {
	tests := []struct {
		score int64
		want  bool
	}{
		{0, false},
		{1, true},
		{3, true},
		{5, true},
		{6, false},
		{-1, false},
	}

	for _, tt := range tests {
		if got := ValidScore(tt.score); got != tt.want {
			t.Errorf("ValidScore(%d) = %v, want %v", tt.score, got, tt.want)
		}
	}
}

func TestValidTypes(t *testing.T) {
	if !ValidTextType(TextTypeMachine) || !ValidTextType(TextTypeReference) {
		t.Error("machine and reference should be valid text types")
	}
	if ValidTextType("source") {
		t.Error("source should not be a valid text type")
	}

	for _, ht := range []string{HighlightTypeError, HighlightTypeSuggestion, HighlightTypeNote} {
		if !ValidHighlightType(ht) {
			t.Errorf("ValidHighlightType(%q) = false", ht)
		}
	}
	if ValidHighlightType("typo") {
		t.Error("typo should not be a valid highlight type")
	}
}

func TestSpanWithin(t *testing.T) {
	// "Kumusta ka?" is 11 code points; "Ñoño" is 4 code points but 6 bytes.
	tests := []struct {
		name       string
		text       string
		start, end int64
		want       bool
	}{
		{"whole text", "Kumusta ka?", 0, 11, true},
		{"empty span", "Kumusta ka?", 3, 3, true},
		{"past end", "Kumusta ka?", 0, 12, false},
		{"negative start", "Kumusta ka?", -1, 2, false},
		{"start after end", "Kumusta ka?", 5, 4, false},
		{"multibyte whole", "Ñoño", 0, 4, true},
		{"multibyte byte length", "Ñoño", 0, 6, false},
		{"empty text", "", 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SpanWithin(tt.text, tt.start, tt.end); got != tt.want {
				t.Errorf("SpanWithin(%q, %d, %d) = %v, want %v", tt.text, tt.start, tt.end, got, tt.want)
			}
		})
	}
}

func TestSpanText(t *testing.T) {
	if got := SpanText("Magandang umaga", 10, 15); got != "umaga" {
		t.Errorf("SpanText = %q, want %q", got, "umaga")
	}
	if got := SpanText("Ñoño bago", 0, 4); got != "Ñoño" {
		t.Errorf("SpanText = %q, want %q", got, "Ñoño")
	}
}

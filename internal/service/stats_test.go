// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wimarka/annotate/internal/store"
	"github.com/wimarka/annotate/internal/testutil"
)

func TestStats(t *testing.T) {
	db := setupServiceDB(t)
	ctx := context.Background()
	svc := NewStatsService(db)
	annotations := NewAnnotationService(db, nil)

	empty, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, AdminStats{}, empty)

	alice := testutil.CreateUser(t, db, "alice", "tagalog")
	bob := testutil.CreateUser(t, db, "bob", "tagalog")
	s1 := testutil.CreateSentence(t, db, "tagalog", "Isa", "")
	s2 := testutil.CreateSentence(t, db, "tagalog", "Dalawa", "")

	_, err = annotations.Create(ctx, alice, CreateAnnotationInput{SentenceID: s1.ID})
	require.NoError(t, err)
	d, err := annotations.Create(ctx, alice, CreateAnnotationInput{SentenceID: s2.ID})
	require.NoError(t, err)
	_, err = annotations.Update(ctx, alice, d.Annotation.ID, decodeUpdate(t, `{"annotation_status": "in_progress"}`))
	require.NoError(t, err)

	_, err = store.New(db).UpdateUserFlags(ctx, store.UpdateUserFlagsParams{IsActive: false, ID: bob.ID})
	require.NoError(t, err)

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, AdminStats{
		TotalUsers:           2,
		TotalSentences:       2,
		TotalAnnotations:     2,
		CompletedAnnotations: 1,
		ActiveUsers:          1,
	}, stats)
}

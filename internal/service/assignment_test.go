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

func TestNextSentence(t *testing.T) {
	db := setupServiceDB(t)
	ctx := context.Background()
	svc := NewAssignmentService(db)
	annotations := NewAnnotationService(db, nil)

	alice := testutil.CreateUser(t, db, "alice", "tagalog")
	testutil.CreateSentence(t, db, "cebuano", "Maayong buntag", "")
	s1 := testutil.CreateSentence(t, db, "tagalog", "Magandang umaga", "")
	s2 := testutil.CreateSentence(t, db, "tagalog", "Salamat po", "")

	next, err := svc.NextSentence(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, s1.ID, next.ID)
	assert.Equal(t, "tagalog", next.TargetLanguage)

	_, err = annotations.Create(ctx, alice, CreateAnnotationInput{SentenceID: s1.ID})
	require.NoError(t, err)

	next, err = svc.NextSentence(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, s2.ID, next.ID)

	_, err = store.New(db).DeactivateSentence(ctx, s2.ID)
	require.NoError(t, err)

	_, err = svc.NextSentence(ctx, alice)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNextSentence_NoPreferredLanguage(t *testing.T) {
	db := setupServiceDB(t)
	svc := NewAssignmentService(db)

	user := testutil.CreateUser(t, db, "nolang", "")
	testutil.CreateSentence(t, db, "tagalog", "Magandang umaga", "")

	_, err := svc.NextSentence(context.Background(), user)
	assert.ErrorIs(t, err, ErrNotFound)

	batch, total, err := svc.UnannotatedBatch(context.Background(), user, 0, 10)
	require.NoError(t, err)
	assert.Empty(t, batch)
	assert.Zero(t, total)
}

func TestUnannotatedBatch(t *testing.T) {
	db := setupServiceDB(t)
	ctx := context.Background()
	svc := NewAssignmentService(db)
	annotations := NewAnnotationService(db, nil)

	alice := testutil.CreateUser(t, db, "alice", "ilocano")
	bob := testutil.CreateUser(t, db, "bob", "ilocano")

	var ids []int64
	for _, text := range []string{"maysa", "dua", "tallo", "uppat"} {
		ids = append(ids, testutil.CreateSentence(t, db, "ilocano", text, "").ID)
	}

	_, err := annotations.Create(ctx, bob, CreateAnnotationInput{SentenceID: ids[0]})
	require.NoError(t, err)

	page, total, err := svc.UnannotatedBatch(ctx, alice, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)
	require.Len(t, page, 2)
	assert.Equal(t, ids[1], page[0].ID)
	assert.Equal(t, ids[2], page[1].ID)

	page, total, err = svc.UnannotatedBatch(ctx, bob, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, page, 3)
	assert.Equal(t, ids[1], page[0].ID)
}

/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suparena/auditstore/errors"
	"github.com/suparena/auditstore/store"
)

type player struct {
	ID        string    `auditstore:"key"`
	Region    string    `auditstore:"partitionkey"`
	UpdatedAt time.Time `auditstore:"timestamp"`
	Rating    int
}

type badType struct {
	Name string
}

var _ store.EntityStore[player] = (*Store[player])(nil)
var _ store.Provider = (*Provider)(nil)

func newStore(t *testing.T) *Store[player] {
	t.Helper()
	s, err := Open[player](NewProvider(), "players")
	require.NoError(t, err)
	return s
}

func TestOpenFailsFastOnBadType(t *testing.T) {
	_, err := Open[badType](NewProvider(), "bad")
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrNoKeyField)
}

func TestOpenReturnsSameStore(t *testing.T) {
	p := NewProvider()
	s1, err := Open[player](p, "players")
	require.NoError(t, err)
	s2, err := Open[player](p, "players")
	require.NoError(t, err)
	assert.Same(t, s1, s2)
}

func TestInsertGetRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	in := &player{ID: "p1", Region: "eu", Rating: 1500}
	require.NoError(t, s.Insert(ctx, in))

	got, err := s.Get(ctx, "p1", "eu")
	require.NoError(t, err)
	assert.Equal(t, "p1", got.ID)
	assert.Equal(t, "eu", got.Region)
	assert.Equal(t, 1500, got.Rating)
	assert.False(t, got.UpdatedAt.IsZero(), "backend should stamp the timestamp field")
}

func TestInsertDuplicateFails(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	require.NoError(t, s.Insert(ctx, &player{ID: "p1", Region: "eu"}))
	err := s.Insert(ctx, &player{ID: "p1", Region: "eu"})
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrAlreadyExists)
}

func TestPartitionKeyIsPartOfIdentity(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	require.NoError(t, s.Insert(ctx, &player{ID: "p1", Region: "eu"}))
	// Same key, different partition: a distinct record.
	require.NoError(t, s.Insert(ctx, &player{ID: "p1", Region: "us"}))

	_, err := s.Get(ctx, "p1", "apac")
	assert.ErrorIs(t, err, errors.ErrNotFound)
}

func TestUpdateMissingFails(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	err := s.Update(ctx, &player{ID: "ghost", Region: "eu"})
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrNotFound)
}

func TestUpdateReplaces(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	require.NoError(t, s.Insert(ctx, &player{ID: "p1", Region: "eu", Rating: 1500}))
	require.NoError(t, s.Update(ctx, &player{ID: "p1", Region: "eu", Rating: 1600}))

	got, err := s.Get(ctx, "p1", "eu")
	require.NoError(t, err)
	assert.Equal(t, 1600, got.Rating)
}

func TestUpsertCreatesAndReplaces(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	require.NoError(t, s.Upsert(ctx, &player{ID: "p1", Region: "eu", Rating: 1}))
	require.NoError(t, s.Upsert(ctx, &player{ID: "p1", Region: "eu", Rating: 2}))

	got, err := s.Get(ctx, "p1", "eu")
	require.NoError(t, err)
	assert.Equal(t, 2, got.Rating)
	assert.Equal(t, 1, s.Count())
}

func TestGetIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	require.NoError(t, s.Insert(ctx, &player{ID: "p1", Region: "eu", Rating: 9}))

	first, err := s.Get(ctx, "p1", "eu")
	require.NoError(t, err)
	second, err := s.Get(ctx, "p1", "eu")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestBulkUpsert(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	batch := []*player{
		{ID: "p1", Region: "eu"},
		{ID: "p2", Region: "eu"},
		{ID: "p3", Region: "us"},
	}
	require.NoError(t, s.BulkUpsert(ctx, batch))
	assert.Equal(t, 3, s.Count())
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	require.NoError(t, s.Insert(ctx, &player{ID: "p1", Region: "eu"}))
	require.NoError(t, s.Delete(ctx, "p1", "eu", false))

	_, err := s.Get(ctx, "p1", "eu")
	assert.ErrorIs(t, err, errors.ErrNotFound)

	// Missing without errorIfMissing is a no-op.
	require.NoError(t, s.Delete(ctx, "p1", "eu", false))

	// Missing with errorIfMissing fails.
	err = s.Delete(ctx, "p1", "eu", true)
	assert.ErrorIs(t, err, errors.ErrNotFound)
}

func TestListSince(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	current := base

	p := NewProvider().WithClock(func() time.Time { return current })
	s, err := Open[player](p, "players")
	require.NoError(t, err)

	require.NoError(t, s.Insert(ctx, &player{ID: "old", Region: "eu"}))

	current = base.Add(time.Hour)
	require.NoError(t, s.Insert(ctx, &player{ID: "new", Region: "eu"}))

	all, err := s.List(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	cutoff := base.Add(30 * time.Minute)
	recent, err := s.List(ctx, &cutoff)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "new", recent[0].ID)

	// Strictly greater: a record stamped exactly at the cutoff is excluded.
	exact := base.Add(time.Hour)
	none, err := s.List(ctx, &exact)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestDeleteStore(t *testing.T) {
	ctx := context.Background()
	p := NewProvider()
	s, err := Open[player](p, "players")
	require.NoError(t, err)

	require.NoError(t, s.Insert(ctx, &player{ID: "p1", Region: "eu"}))
	require.NoError(t, s.DeleteStore(ctx))

	names, err := p.StoreNames(ctx)
	require.NoError(t, err)
	assert.Empty(t, names)
	assert.Equal(t, 0, s.Count())
}

func TestProviderStoreNames(t *testing.T) {
	ctx := context.Background()
	p := NewProvider()

	_, err := Open[player](p, "players")
	require.NoError(t, err)
	_, err = Open[player](p, "archive")
	require.NoError(t, err)

	names, err := p.StoreNames(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"archive", "players"}, names)
}

func TestContextCancellation(t *testing.T) {
	s := newStore(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.Insert(ctx, &player{ID: "p1", Region: "eu"})
	assert.ErrorIs(t, err, context.Canceled)
}

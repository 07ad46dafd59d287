/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package auditstore_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suparena/auditstore"
	"github.com/suparena/auditstore/store/memory"
	"github.com/suparena/auditstore/testmodels"
)

func TestTypedRegistry(t *testing.T) {
	t.Run("BasicOperations", func(t *testing.T) {
		reg := auditstore.NewTypedRegistry[testmodels.RatingSystem]()

		provider := memory.NewProvider()
		ratings, err := memory.Open[testmodels.RatingSystem](provider, "ratings")
		require.NoError(t, err)

		require.NoError(t, reg.Register("ratings", ratings))

		retrieved, err := reg.Get("ratings")
		require.NoError(t, err)
		require.NotNil(t, retrieved)
		assert.Equal(t, "ratings", retrieved.Name())

		assert.Equal(t, []string{"ratings"}, reg.List())

		require.NoError(t, reg.Remove("ratings"))
		_, err = reg.Get("ratings")
		assert.Error(t, err)
	})

	t.Run("DuplicateRegistration", func(t *testing.T) {
		reg := auditstore.NewTypedRegistry[testmodels.RatingSystem]()

		provider := memory.NewProvider()
		ratings, err := memory.Open[testmodels.RatingSystem](provider, "ratings")
		require.NoError(t, err)

		require.NoError(t, reg.Register("ratings", ratings))
		assert.Error(t, reg.Register("ratings", ratings))
	})

	t.Run("RemoveMissing", func(t *testing.T) {
		reg := auditstore.NewTypedRegistry[testmodels.RatingSystem]()
		assert.Error(t, reg.Remove("absent"))
	})
}

func TestMultiTypeRegistry(t *testing.T) {
	reg := auditstore.NewRegistry()
	provider := memory.NewProvider()

	ratings, err := memory.Open[testmodels.RatingSystem](provider, "ratings")
	require.NoError(t, err)
	matches, err := memory.Open[testmodels.MatchRecord](provider, "matches")
	require.NoError(t, err)

	require.NoError(t, auditstore.RegisterStore(reg, "ratings", ratings))
	require.NoError(t, auditstore.RegisterStore(reg, "matches", matches))

	gotRatings, err := auditstore.GetStore[testmodels.RatingSystem](reg, "ratings")
	require.NoError(t, err)
	assert.Equal(t, "ratings", gotRatings.Name())

	gotMatches, err := auditstore.GetStore[testmodels.MatchRecord](reg, "matches")
	require.NoError(t, err)
	assert.Equal(t, "matches", gotMatches.Name())

	// Same name under a different type is a different slot.
	_, err = auditstore.GetStore[testmodels.MatchRecord](reg, "ratings")
	assert.Error(t, err)

	assert.Equal(t, []string{"matches"}, auditstore.ListStores[testmodels.MatchRecord](reg))

	require.NoError(t, auditstore.RemoveStore[testmodels.RatingSystem](reg, "ratings"))
	_, err = auditstore.GetStore[testmodels.RatingSystem](reg, "ratings")
	assert.Error(t, err)
}

func TestRegistryHoldsUsableStores(t *testing.T) {
	ctx := context.Background()
	reg := auditstore.NewRegistry()
	provider := memory.NewProvider()

	ratings, err := memory.Open[testmodels.RatingSystem](provider, "ratings")
	require.NoError(t, err)
	require.NoError(t, auditstore.RegisterStore(reg, "ratings", ratings))

	s, err := auditstore.GetStore[testmodels.RatingSystem](reg, "ratings")
	require.NoError(t, err)

	id := "rs1"
	name := "WTT"
	require.NoError(t, s.Insert(ctx, &testmodels.RatingSystem{ID: &id, Name: &name}))

	got, err := s.Get(ctx, "rs1", "")
	require.NoError(t, err)
	require.NotNil(t, got.UpdatedAt, "backend should stamp the timestamp field")
	assert.Equal(t, "WTT", *got.Name)
}

func TestVersionInfo(t *testing.T) {
	info := auditstore.GetVersionInfo()
	assert.NotEmpty(t, info.Version)
}

package store

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadTranslations_EmptyNotNil(t *testing.T) {
	s := createTestStore(t)

	got, err := s.ReadTranslations(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestReadTranslations_Ordering(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)
	createTestSession(t, s, "session-1", 1)

	inputs := []struct {
		seq   int64
		input string
	}{
		{5, "SELECT ?c WHERE { ?c ?p ?o }"},
		{2, "SELECT ?a WHERE { ?a ?p ?o }"},
		{3, "SELECT ?b WHERE { ?b ?p ?o }"},
		{3, "SELECT ?d WHERE { ?d ?p ?o }"},
	}
	for _, in := range inputs {
		tr := createTestTranslation(t, "session-1", in.seq, DirectionToGraph, in.input, "[]")
		_, err := s.WriteTranslation(ctx, tr)
		require.NoError(t, err)
	}

	got, err := s.ReadTranslations(ctx)
	require.NoError(t, err)
	require.Len(t, got, 4)

	assert.Equal(t, int64(2), got[0].Seq)
	assert.Equal(t, int64(3), got[1].Seq)
	assert.Equal(t, int64(3), got[2].Seq)
	assert.Less(t, got[1].ID, got[2].ID, "equal seq orders by id")
	assert.Equal(t, int64(5), got[3].Seq)
}

func TestReadSessionTranslations(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)
	createTestSession(t, s, "session-1", 1)
	createTestSession(t, s, "session-2", 10)

	a := createTestTranslation(t, "session-1", 2, DirectionToGraph, "SELECT ?a WHERE { ?a ?p ?o }", "[]")
	b := createTestTranslation(t, "session-2", 11, DirectionToQuery, "[]", "")
	for _, tr := range []Translation{a, b} {
		_, err := s.WriteTranslation(ctx, tr)
		require.NoError(t, err)
	}

	got, err := s.ReadSessionTranslations(ctx, "session-2")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, b, got[0])

	sessions, err := s.ReadSessions(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, "session-1", sessions[0].ID)
	assert.Equal(t, map[string]any{}, sessions[0].Settings)
}

func TestReadTranslation_NotFound(t *testing.T) {
	s := createTestStore(t)

	_, err := s.ReadTranslation(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestReadTranslation_RoundTripsFlags(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)
	createTestSession(t, s, "session-1", 1)

	tr, err := NewTranslation("session-1", 2, DirectionToQuery, `[{"source":{"id":"?s"},"target":{"id":"?o"}}]`, true, true, "SELECT ...")
	require.NoError(t, err)
	_, err = s.WriteTranslation(ctx, tr)
	require.NoError(t, err)

	got, err := s.ReadTranslation(ctx, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, tr, got)
}

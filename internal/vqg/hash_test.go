package vqg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranslationIDDeterministic(t *testing.T) {
	id1, err := TranslationID("to_query", "[]", true, false)
	require.NoError(t, err)
	id2, err := TranslationID("to_query", "[]", true, false)
	require.NoError(t, err)

	assert.Equal(t, id1, id2)
	assert.Len(t, id1, 64)
}

func TestTranslationIDDistinguishesInputs(t *testing.T) {
	base := MustTranslationID("to_query", "[]", false, false)

	tests := []struct {
		name string
		id   string
	}{
		{"direction", MustTranslationID("to_graph", "[]", false, false)},
		{"input", MustTranslationID("to_query", "[ ]", false, false)},
		{"label service", MustTranslationID("to_query", "[]", true, false)},
		{"label service prefixes", MustTranslationID("to_query", "[]", false, true)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotEqual(t, base, tt.id)
		})
	}
}

func TestHashWithDomainSeparation(t *testing.T) {
	data := []byte(`{"a":1}`)
	assert.NotEqual(t,
		hashWithDomain(DomainTranslation, data),
		hashWithDomain(DomainGraph, data))
}

func TestGraphIDIgnoresKeyOrder(t *testing.T) {
	a, err := DecodeConnections([]byte(`[{"source":{"id":"?a","label":"a"},"target":{"id":"?b","label":"b"},"properties":[{"id":"?p","label":"p"}]}]`))
	require.NoError(t, err)
	b, err := DecodeConnections([]byte(`[{"properties":[{"label":"p","id":"?p"}],"target":{"label":"b","id":"?b"},"source":{"label":"a","id":"?a"}}]`))
	require.NoError(t, err)

	idA, err := GraphID(a)
	require.NoError(t, err)
	idB, err := GraphID(b)
	require.NoError(t, err)
	assert.Equal(t, idA, idB)

	b[0].Target.Distinct = true
	idC, err := GraphID(b)
	require.NoError(t, err)
	assert.NotEqual(t, idA, idC)
}

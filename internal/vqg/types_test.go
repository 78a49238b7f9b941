package vqg

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPathTypeSeparator(t *testing.T) {
	assert.Equal(t, "/", PathType("").Separator())
	assert.Equal(t, "/", PathSequence.Separator())
	assert.Equal(t, "|", PathAlternation.Separator())
}

func TestModifierClassification(t *testing.T) {
	tests := []struct {
		mod        Modifier
		valid      bool
		repetition bool
	}{
		{"", true, false},
		{ModReverse, true, false},
		{ModZeroOrMore, true, true},
		{ModOneOrMore, true, true},
		{ModZeroOrOne, true, true},
		{"{2}", false, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.mod), func(t *testing.T) {
			assert.Equal(t, tt.valid, tt.mod.Valid())
			assert.Equal(t, tt.repetition, tt.mod.IsRepetition())
		})
	}
}

func TestPropertyWalk(t *testing.T) {
	root := Property{
		ID: "root",
		Children: []Property{
			{ID: "a", Children: []Property{{ID: "a1"}}},
			{ID: "b"},
		},
	}

	var seen []string
	root.Walk(func(p Property) { seen = append(seen, p.ID) })
	assert.Equal(t, []string{"root", "a", "a1", "b"}, seen)
}

func TestPrefixDeclaration(t *testing.T) {
	p := Prefix{IRI: "http://example.org/", Abbreviation: "ex"}
	assert.Equal(t, "PREFIX ex: <http://example.org/>", p.Declaration())
	assert.False(t, p.IsEmpty())
	assert.True(t, Prefix{}.IsEmpty())
}

func TestApplyDataSource(t *testing.T) {
	conns := []Connection{{
		Source: Entity{ID: "Q5879"},
		Target: Entity{ID: "?uni"},
		Properties: []Property{
			{ID: "P69"},
			{ID: "root", Children: []Property{{ID: "P31"}, {ID: "ex:x"}}},
		},
	}}

	out := ApplyDataSource(conns, KnownDataSources["factgrid"])

	assert.Equal(t, "fg", out[0].Source.Prefix.Abbreviation)
	assert.True(t, out[0].Target.Prefix.IsEmpty())
	assert.Equal(t, "fgt", out[0].Properties[0].Prefix.Abbreviation)
	assert.True(t, out[0].Properties[1].Prefix.IsEmpty())
	assert.Equal(t, "fgt", out[0].Properties[1].Children[0].Prefix.Abbreviation)
	assert.True(t, out[0].Properties[1].Children[1].Prefix.IsEmpty())

	// input untouched
	assert.True(t, conns[0].Source.Prefix.IsEmpty())
	assert.True(t, conns[0].Properties[1].Children[0].Prefix.IsEmpty())
}

func TestDataSourceNames(t *testing.T) {
	assert.Equal(t, []string{"factgrid", "mimotext", "wikidata"}, DataSourceNames())
}

package translate

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/querygraph/internal/compose"
	"github.com/roach88/querygraph/internal/sparql"
	"github.com/roach88/querygraph/internal/vqg"
)

func assertQueriesEquivalent(t *testing.T, actual, expected string) {
	t.Helper()
	got, err := sparql.Parse(actual)
	require.NoError(t, err, "actual query did not parse:\n%s", actual)
	want, err := sparql.Parse(expected)
	require.NoError(t, err, "expected query did not parse:\n%s", expected)
	assert.Equal(t, want.String(), got.String(), "queries are not equivalent\nactual:\n%s\nexpected:\n%s", actual, expected)
}

func selectLine(t *testing.T, query string) string {
	t.Helper()
	for _, line := range strings.Split(query, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "SELECT ") {
			return line
		}
	}
	t.Fatalf("no SELECT line in query:\n%s", query)
	return ""
}

// projectionVars splits "SELECT ?a ?b WHERE {" into ["?a", "?b"].
func projectionVars(line string) []string {
	part := strings.TrimPrefix(line, "SELECT ")
	part, _, _ = strings.Cut(part, " WHERE")
	return strings.Fields(part)
}

func decodeGraph(t *testing.T, out string) []map[string]any {
	t.Helper()
	var conns []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &conns), "invalid JSON output:\n%s", out)
	return conns
}

func field(m map[string]any, path ...string) any {
	var cur any = m
	for _, key := range path {
		switch v := cur.(type) {
		case map[string]any:
			cur = v[key]
		case []any:
			if key != "0" || len(v) == 0 {
				return nil
			}
			cur = v[0]
		default:
			return nil
		}
	}
	return cur
}

const goetheGraph = `[{"properties":[{"id":"?variable1","label":"Variable","description":"Variable Entity","prefix":{"iri":"","abbreviation":""},"dataSource":{"name":"","url":"","preferredLanguages":[]}}],"source":{"id":"Q5879","label":"Johann Wolfgang von Goethe","description":"German writer","prefix":{"iri":"http://www.wikidata.org/entity/","abbreviation":"wd"},"dataSource":{"name":"WikiData","url":"https://www.wikidata.org/w/api.php","preferredLanguages":["en"]}},"target":{"id":"Q154804","label":"Leipzig University","prefix":{"iri":"http://www.wikidata.org/entity/","abbreviation":"wd"}}}]`

const educatedAtGraph = `[{"properties":[{"id":"P69","label":"educated at","prefix":{"iri":"http://www.wikidata.org/prop/direct/","abbreviation":"wdt"},"selectedForProjection":false}],"source":{"id":"Q5879","label":"Johann Wolfgang von Goethe","prefix":{"iri":"http://www.wikidata.org/entity/","abbreviation":"wd"},"selectedForProjection":false},"target":{"id":"?university","label":"Variable","prefix":{"iri":"","abbreviation":""},"selectedForProjection":true}}]`

func TestGraphToQueryEmpty(t *testing.T) {
	assert.Equal(t, "", GraphToQuery("[]", false, false))
	assert.Equal(t, "", GraphToQuery("", false, false))
	assert.Equal(t, "", GraphToQuery("null", true, true))
}

func TestGraphToQueryInvalidJSON(t *testing.T) {
	assert.Equal(t, "", GraphToQuery("not a json", false, false))
	assert.Equal(t, "", GraphToQuery(`[{"source":{"id":"?a"}}]`, false, false), "missing target")
}

func TestGraphToQuerySimple(t *testing.T) {
	result := GraphToQuery(goetheGraph, false, false)

	assertQueriesEquivalent(t, result, `PREFIX wd: <http://www.wikidata.org/entity/>
SELECT ?variable1 WHERE {
    wd:Q5879 ?variable1 wd:Q154804 .
}`)
	assert.Contains(t, result, "# Johann Wolfgang von Goethe -- [Variable] -> Leipzig University")
}

func TestGraphToQueryProjection(t *testing.T) {
	tests := []struct {
		name  string
		graph string
		want  []string
	}{
		{
			name:  "selected variable",
			graph: educatedAtGraph,
			want:  []string{"?university"},
		},
		{
			name:  "no selected variables",
			graph: strings.Replace(educatedAtGraph, `"?university","label":"Variable","prefix":{"iri":"","abbreviation":""},"selectedForProjection":true`, `"?university","label":"Variable","prefix":{"iri":"","abbreviation":""},"selectedForProjection":false`, 1),
			want:  []string{"*"},
		},
		{
			name:  "missing selectedForProjection defaults to selected",
			graph: `[{"properties":[{"id":"P69","label":"educated at","prefix":{"iri":"http://www.wikidata.org/prop/direct/","abbreviation":"wdt"}}],"source":{"id":"Q5879","label":"Johann Wolfgang von Goethe","prefix":{"iri":"http://www.wikidata.org/entity/","abbreviation":"wd"}},"target":{"id":"?university","label":"Variable","prefix":{"iri":"","abbreviation":""}}}]`,
			want:  []string{"?university"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := GraphToQuery(tt.graph, false, false)
			assert.Equal(t, tt.want, projectionVars(selectLine(t, result)))
			assert.Contains(t, result, "wd:Q5879 wdt:P69 ?university")
		})
	}
}

func TestGraphToQueryMultipleVariables(t *testing.T) {
	graph := `[{"properties":[{"id":"?prop","label":"Variable","prefix":{"iri":"","abbreviation":""},"selectedForProjection":false}],"source":{"id":"?person","label":"Variable","prefix":{"iri":"","abbreviation":""},"selectedForProjection":true},"target":{"id":"?university","label":"Variable","prefix":{"iri":"","abbreviation":""},"selectedForProjection":true}}]`

	result := GraphToQuery(graph, false, false)
	vars := projectionVars(selectLine(t, result))

	assert.Contains(t, vars, "?person")
	assert.Contains(t, vars, "?university")
	assert.NotContains(t, vars, "?prop", "property variable must not be projected")
	assert.Contains(t, result, "?person ?prop ?university")
}

func TestGraphToQueryLabelService(t *testing.T) {
	result := GraphToQuery(educatedAtGraph, true, true)

	assert.Contains(t, result, "PREFIX bd: <http://www.bigdata.com/rdf#>")
	assert.Contains(t, result, "PREFIX wikibase: <http://wikiba.se/ontology#>")
	assert.Contains(t, result, "SERVICE wikibase:label")

	vars := projectionVars(selectLine(t, result))
	assert.Contains(t, vars, "?university")
	assert.Contains(t, vars, "?universityLabel")

	_, err := sparql.Parse(result)
	assert.NoError(t, err, "generated query should parse:\n%s", result)
}

func TestGraphToQueryPropertyPaths(t *testing.T) {
	tests := []struct {
		name  string
		graph string
		want  string
	}{
		{
			name: "sequence",
			graph: `[{
				"source": {"id": "?item", "label": "item", "prefix": {"iri": "", "abbreviation": ""}},
				"target": {"id": "Q5", "label": "Human", "prefix": {"iri": "http://www.wikidata.org/entity/", "abbreviation": "wd"}},
				"properties": [{
					"id": "path", "label": "instance of subclass of",
					"prefix": {"iri": "", "abbreviation": ""},
					"pathType": "sequence",
					"properties": [
						{"id": "P31", "label": "instance of", "prefix": {"iri": "http://www.wikidata.org/prop/direct/", "abbreviation": "wdt"}},
						{"id": "P279", "label": "subclass of", "prefix": {"iri": "http://www.wikidata.org/prop/direct/", "abbreviation": "wdt"}, "modifier": "*"}
					]
				}]
			}]`,
			want: "?item (wdt:P31/wdt:P279*) wd:Q5 .",
		},
		{
			name: "alternation",
			graph: `[{
				"source": {"id": "?x", "label": "x", "prefix": {"iri": "", "abbreviation": ""}},
				"target": {"id": "TargetClass", "label": "Target", "prefix": {"iri": "http://example.org/", "abbreviation": "ex"}},
				"properties": [{
					"id": "alt", "label": "type or subclass",
					"prefix": {"iri": "", "abbreviation": ""},
					"pathType": "alternation", "modifier": "+",
					"properties": [
						{"id": "type", "label": "type", "prefix": {"iri": "http://www.w3.org/1999/02/22-rdf-syntax-ns#", "abbreviation": "rdf"}},
						{"id": "subClassOf", "label": "subclass", "prefix": {"iri": "http://www.w3.org/2000/01/rdf-schema#", "abbreviation": "rdfs"}}
					]
				}]
			}]`,
			want: "(rdf:type|rdfs:subClassOf)+ ex:TargetClass",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Contains(t, GraphToQuery(tt.graph, false, false), tt.want)
		})
	}
}

func TestGraphToQueryMultipleProperties(t *testing.T) {
	graph := `[{
		"source": {"id": "?s", "label": "S", "prefix": {"iri": "", "abbreviation": ""}},
		"target": {"id": "?o", "label": "O", "prefix": {"iri": "", "abbreviation": ""}},
		"properties": [
			{"id": "p1", "label": "P1", "prefix": {"iri": "http://example.org/", "abbreviation": "ex"}},
			{"id": "p2", "label": "P2", "prefix": {"iri": "http://example.org/", "abbreviation": "ex"}}
		]
	}]`

	result := GraphToQuery(graph, false, false)
	assert.Contains(t, result, "?s ex:p1 ?o .")
	assert.Contains(t, result, "?s ex:p2 ?o .")
	assertQueriesEquivalent(t, result, "PREFIX ex: <http://example.org/>\nSELECT ?o ?s WHERE {\n    ?s ex:p1 ?o .\n    ?s ex:p2 ?o .\n}")
}

func TestGraphToQueryDistinct(t *testing.T) {
	distinctTarget := strings.Replace(educatedAtGraph, `"selectedForProjection":true}`, `"selectedForProjection":true,"distinct":true}`, 1)

	t.Run("per-variable distinct", func(t *testing.T) {
		line := selectLine(t, GraphToQuery(distinctTarget, false, false))
		assert.Contains(t, line, "DISTINCT(?university)")
		assert.False(t, strings.HasPrefix(line, "SELECT DISTINCT "), "global DISTINCT must not be used: %s", line)
	})

	t.Run("plain select", func(t *testing.T) {
		line := selectLine(t, GraphToQuery(educatedAtGraph, false, false))
		assert.NotContains(t, line, "DISTINCT")
		assert.Contains(t, line, "?university")
	})

	t.Run("distinct requires selection", func(t *testing.T) {
		graph := strings.Replace(educatedAtGraph, `"selectedForProjection":true}`, `"selectedForProjection":false,"distinct":true}`, 1)
		assert.NotContains(t, GraphToQuery(graph, false, false), "DISTINCT")
	})

	t.Run("mixed", func(t *testing.T) {
		graph := `[{"properties":[{"id":"P69","label":"educated at","prefix":{"iri":"http://www.wikidata.org/prop/direct/","abbreviation":"wdt"},"selectedForProjection":false}],"source":{"id":"?person","label":"Variable","prefix":{"iri":"","abbreviation":""},"selectedForProjection":true,"distinct":false},"target":{"id":"?university","label":"Variable","prefix":{"iri":"","abbreviation":""},"selectedForProjection":true,"distinct":true}}]`
		line := selectLine(t, GraphToQuery(graph, false, false))
		assert.Contains(t, line, "DISTINCT(?university)")
		assert.Contains(t, line, "?person")
		assert.NotContains(t, line, "DISTINCT(?person)")
	})

	t.Run("label variable never wrapped", func(t *testing.T) {
		line := selectLine(t, GraphToQuery(distinctTarget, true, true))
		assert.Contains(t, line, "DISTINCT(?university)")
		assert.Contains(t, line, "?universityLabel")
		assert.NotContains(t, line, "DISTINCT(?universityLabel)")
	})
}

func TestQueryToGraphEmptyAndInvalid(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{name: "empty", query: ""},
		{name: "ask", query: "ASK WHERE { ?s ?p ?o . }"},
		{name: "mumbo jumbo", query: "some mumbo jumbo"},
		{name: "partially invalid", query: "SELECT * WHERE { ?s ?p ?o . some nonsense }"},
		{name: "already prefixed and invalid", query: compose.Preamble + "SELECT * WHERE {"},
		{name: "invalid utf-8 literal", query: "SELECT ?s WHERE { ?s <http://x/p> \"caf\xe9\" . }"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, "[]", QueryToGraph(tt.query))
		})
	}
}

func TestQueryToGraphDeeplyNestedQuery(t *testing.T) {
	const deep = 100000
	tests := []struct {
		name  string
		query string
	}{
		{"bracketed path", "SELECT ?a WHERE { ?a " + strings.Repeat("(", deep) + "<http://x/p>" + strings.Repeat(")", deep) + " ?b . }"},
		{"nested groups", "SELECT ?a WHERE " + strings.Repeat("{ ", deep) + "?a <http://x/p> ?b" + strings.Repeat(" }", deep)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, "[]", QueryToGraph(tt.query))
			assert.Empty(t, ConnectionsFromQuery(tt.query).Connections)
		})
	}
}

func TestQueryToGraphSerializes(t *testing.T) {
	out := QueryToGraph("SELECT ?3 WHERE { <http://www.wikidata.org/entity/Q5879> ?3 <http://www.wikidata.org/entity/Q152838> .}")

	conns := decodeGraph(t, out)
	require.Len(t, conns, 1)
	assert.Equal(t, "?3", field(conns[0], "properties", "0", "id"))
}

func TestQueryToGraphLabelServiceQuery(t *testing.T) {
	query := `
PREFIX bd: <http://www.bigdata.com/rdf#>
PREFIX wikibase: <http://wikiba.se/ontology#>
PREFIX wd: <http://www.wikidata.org/entity/>
SELECT ?3 ?3Label WHERE {
     wd:Q5879 ?3 wd:Q2079 .
    # Johann Wolfgang von Goethe -- [Variable] -> Leipzig
    SERVICE wikibase:label { bd:serviceParam wikibase:language "[AUTO_LANGUAGE],en". }
}
`
	conns := decodeGraph(t, QueryToGraph(query))
	require.Len(t, conns, 1)
	c := conns[0]

	assert.Equal(t, "?3", field(c, "properties", "0", "id"))
	assert.Equal(t, "<http://www.wikidata.org/entity/Q5879>", field(c, "source", "id"))
	assert.Equal(t, "<http://www.wikidata.org/entity/Q2079>", field(c, "target", "id"))
	assert.Equal(t, true, field(c, "properties", "0", "selectedForProjection"))
	assert.Equal(t, true, field(c, "source", "selectedForProjection"))
	assert.Equal(t, true, field(c, "target", "selectedForProjection"))
}

func TestQueryToGraphProjectionAndDistinct(t *testing.T) {
	tests := []struct {
		name         string
		query        string
		wantSelected bool
		wantDistinct bool
	}{
		{
			name: "specific projection",
			query: `PREFIX wd: <http://www.wikidata.org/entity/>
PREFIX wdt: <http://www.wikidata.org/prop/direct/>
SELECT ?university WHERE {
     wd:Q5879 wdt:P69 ?university .
}`,
			wantSelected: true,
		},
		{
			name: "global distinct is not imported",
			query: `PREFIX wd: <http://www.wikidata.org/entity/>
PREFIX wdt: <http://www.wikidata.org/prop/direct/>
SELECT DISTINCT ?university WHERE {
    wd:Q5879 wdt:P69 ?university .
}`,
			wantSelected: true,
			wantDistinct: false,
		},
		{
			name: "per-variable distinct is imported",
			query: `PREFIX wd: <http://www.wikidata.org/entity/>
PREFIX wdt: <http://www.wikidata.org/prop/direct/>
SELECT DISTINCT(?university) WHERE {
    wd:Q5879 wdt:P69 ?university .
}`,
			wantSelected: true,
			wantDistinct: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conns := decodeGraph(t, QueryToGraph(tt.query))
			require.Len(t, conns, 1)
			assert.Equal(t, "?university", field(conns[0], "target", "id"))
			assert.Equal(t, tt.wantSelected, field(conns[0], "target", "selectedForProjection"))
			assert.Equal(t, tt.wantDistinct, field(conns[0], "target", "distinct"))
		})
	}
}

func TestQueryToGraphRetriesWithLabelPrefixes(t *testing.T) {
	query := `SELECT ?item ?itemLabel WHERE {
    ?item <http://www.wikidata.org/prop/direct/P31> <http://www.wikidata.org/entity/Q5> .
    SERVICE wikibase:label { bd:serviceParam wikibase:language "[AUTO_LANGUAGE],en". }
}`
	_, err := sparql.Parse(query)
	require.Error(t, err, "query uses undeclared prefixes")

	conns := decodeGraph(t, QueryToGraph(query))
	require.Len(t, conns, 1)
	assert.Equal(t, "?item", field(conns[0], "source", "id"))
}

func TestParseQueryReturnsFirstError(t *testing.T) {
	_, err := ParseQuery("SELECT * WHERE { ?s ?p }")
	require.Error(t, err)
	var syntaxErr *sparql.SyntaxError
	require.ErrorAs(t, err, &syntaxErr)
	assert.Equal(t, 1, syntaxErr.Line)
}

func TestRoundTripPreservesGraph(t *testing.T) {
	conns := []vqg.Connection{{
		Source: vqg.Entity{ID: "?person", Label: "?person", SelectedForProjection: true},
		Target: vqg.Entity{ID: "?university", Label: "?university", SelectedForProjection: true, Distinct: true},
		Properties: []vqg.Property{
			vqg.NewLeaf("<http://www.wikidata.org/prop/direct/P69>"),
			{
				ID:                    "(<http://example.org/a>/<http://example.org/b>)+",
				Label:                 "(<http://example.org/a>/<http://example.org/b>)+",
				SelectedForProjection: true,
				PathType:              vqg.PathSequence,
				Modifier:              vqg.ModOneOrMore,
				Children: []vqg.Property{
					vqg.NewLeaf("<http://example.org/a>"),
					vqg.NewLeaf("<http://example.org/b>"),
				},
			},
		},
	}}

	text := QueryFromConnections(conns, compose.Options{})
	res := ConnectionsFromQuery(text)

	require.Len(t, res.Connections, 2)
	assert.Equal(t, conns[0].Properties[0], res.Connections[0].Properties[0])
	assert.Equal(t, conns[0].Properties[1], res.Connections[1].Properties[0])
	assert.True(t, res.Connections[0].Target.Distinct)
	assert.False(t, res.Connections[0].Source.Distinct)
}

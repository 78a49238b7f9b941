package testutil

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/roach88/querygraph/internal/store"
)

// Graph documents used across package tests.
const (
	// GoetheGraph links Goethe to Leipzig University by a variable predicate.
	GoetheGraph = `[{"properties":[{"id":"?variable1","label":"Variable","prefix":{"iri":"","abbreviation":""}}],"source":{"id":"Q5879","label":"Johann Wolfgang von Goethe","prefix":{"iri":"http://www.wikidata.org/entity/","abbreviation":"wd"}},"target":{"id":"Q154804","label":"Leipzig University","prefix":{"iri":"http://www.wikidata.org/entity/","abbreviation":"wd"}}}]`

	// EducatedAtGraph asks where Goethe was educated; only ?university is selected.
	EducatedAtGraph = `[{"properties":[{"id":"P69","label":"educated at","prefix":{"iri":"http://www.wikidata.org/prop/direct/","abbreviation":"wdt"},"selectedForProjection":false}],"source":{"id":"Q5879","label":"Johann Wolfgang von Goethe","prefix":{"iri":"http://www.wikidata.org/entity/","abbreviation":"wd"},"selectedForProjection":false},"target":{"id":"?university","label":"Variable","prefix":{"iri":"","abbreviation":""},"selectedForProjection":true}}]`

	// GoetheQuery is the query GoetheGraph composes to, up to formatting.
	GoetheQuery = `PREFIX wd: <http://www.wikidata.org/entity/> SELECT ?variable1 WHERE { wd:Q5879 ?variable1 wd:Q154804 . }`
)

// OpenStore opens a store in a temp dir and closes it on cleanup.
func OpenStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "qbg.db"))
	if err != nil {
		t.Fatalf("store.Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// Logger returns a logger that discards output.
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

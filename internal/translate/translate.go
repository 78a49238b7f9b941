// Package translate is the public entry point for converting between
// VQG graph JSON and SPARQL query text.
//
// GraphToQuery and QueryToGraph never return errors and never panic:
// malformed input degrades to an empty result. The typed variants expose
// the intermediate values for callers that want them.
package translate

import (
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/roach88/querygraph/internal/compose"
	"github.com/roach88/querygraph/internal/extract"
	"github.com/roach88/querygraph/internal/sparql"
	"github.com/roach88/querygraph/internal/vqg"
)

const emptyGraph = "[]"

var (
	hookOnce   sync.Once
	diagnostic atomic.Pointer[slog.Logger]
)

// InstallDiagnosticHook routes recovered panics to logger. Only the
// first call has an effect.
func InstallDiagnosticHook(logger *slog.Logger) {
	hookOnce.Do(func() {
		diagnostic.Store(logger)
	})
}

func reportPanic(op string, r any) {
	logger := diagnostic.Load()
	if logger == nil {
		logger = slog.Default()
	}
	logger.Error("recovered panic during translation",
		"op", op,
		"panic", fmt.Sprint(r),
		"stack", string(debug.Stack()))
}

// GraphToQuery renders a JSON graph document as SPARQL. Empty or
// undecodable input yields "".
func GraphToQuery(graphJSON string, addLabelService, addLabelServicePrefixes bool) (out string) {
	defer func() {
		if r := recover(); r != nil {
			reportPanic("graph_to_query", r)
			out = ""
		}
	}()

	conns, err := vqg.DecodeConnections([]byte(graphJSON))
	if err != nil {
		slog.Debug("graph decode failed", "error", err)
		return ""
	}
	return QueryFromConnections(conns, compose.Options{
		AddLabelService:         addLabelService,
		AddLabelServicePrefixes: addLabelServicePrefixes,
	})
}

// QueryToGraph converts SPARQL text to a JSON graph document. Anything
// that cannot be parsed yields "[]".
func QueryToGraph(text string) (out string) {
	if text == "" {
		return emptyGraph
	}
	defer func() {
		if r := recover(); r != nil {
			reportPanic("query_to_graph", r)
			out = emptyGraph
		}
	}()

	res := ConnectionsFromQuery(text)
	encoded, err := vqg.EncodeConnections(res.Connections)
	if err != nil {
		slog.Debug("graph encode failed", "error", err)
		return emptyGraph
	}
	return encoded
}

// QueryFromConnections renders conns with the given composer options.
func QueryFromConnections(conns []vqg.Connection, opts compose.Options) string {
	return compose.Compose(conns, opts)
}

// ConnectionsFromQuery parses and extracts text. The result is never
// nil; a query that cannot be parsed has no connections.
func ConnectionsFromQuery(text string) *extract.Result {
	q, err := ParseQuery(text)
	if err != nil {
		slog.Debug("query parse failed", "error", err)
		return &extract.Result{
			Connections: []vqg.Connection{},
			Dropped:     []string{},
		}
	}
	return extract.Extract(q)
}

// ParseQuery parses text. When parsing fails and text does not already
// start with the label service prefixes, they are prepended and parsing
// is retried once. The error returned is from the first attempt.
func ParseQuery(text string) (*sparql.Query, error) {
	q, err := sparql.Parse(text)
	if err == nil {
		return q, nil
	}
	if strings.HasPrefix(text, compose.Preamble) {
		return nil, err
	}

	retried, retryErr := sparql.Parse(compose.Preamble + text)
	if retryErr != nil {
		return nil, err
	}
	slog.Debug("query parsed after adding label service prefixes")
	return retried, nil
}

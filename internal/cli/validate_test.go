package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/querygraph/internal/testutil"
)

func TestValidateCommand(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		content  string
		wantCode int
		wantOut  string
	}{
		{
			name:     "valid json graph",
			file:     "graph.json",
			content:  testutil.GoetheGraph,
			wantCode: ExitSuccess,
			wantOut:  "✓ Valid graph (1 connection(s))",
		},
		{
			name:     "valid cue graph",
			file:     "graph.cue",
			content:  sequenceCUE,
			wantCode: ExitSuccess,
			wantOut:  "✓ Valid graph (1 connection(s))",
		},
		{
			name:     "empty id",
			file:     "graph.json",
			content:  `[{"source":{"id":""},"target":{"id":"?o"},"properties":[]}]`,
			wantCode: ExitFailure,
			wantOut:  "✗ Invalid graph",
		},
		{
			name:     "bad modifier",
			file:     "graph.json",
			content:  `[{"source":{"id":"?s"},"target":{"id":"?o"},"properties":[{"id":"p","modifier":"!"}]}]`,
			wantCode: ExitFailure,
			wantOut:  "E006",
		},
		{
			name:     "valid query",
			file:     "query.rq",
			content:  testutil.GoetheQuery,
			wantCode: ExitSuccess,
			wantOut:  "✓ Valid query",
		},
		{
			name:     "invalid query",
			file:     "query.sparql",
			content:  "SELECT ?s WHERE { ?s ?p }",
			wantCode: ExitFailure,
			wantOut:  "✗ Invalid query",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), tt.file, tt.content)
			out, err := execute(t, NewValidateCommand(&RootOptions{Format: "text"}), "", path)
			assert.Equal(t, tt.wantCode, GetExitCode(err))
			assert.Contains(t, out, tt.wantOut)
		})
	}
}

func TestValidateJSONListsViolations(t *testing.T) {
	path := writeFile(t, t.TempDir(), "graph.json",
		`[{"source":{"id":""},"target":{"id":""},"properties":[{"id":"p","pathType":"chain"}]}]`)

	out, err := execute(t, NewValidateCommand(&RootOptions{Format: "json"}), "", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.False(t, resp.Data.Valid)
	assert.Equal(t, KindGraph, resp.Data.Kind)
	assert.GreaterOrEqual(t, len(resp.Data.Errors), 2)
}

func TestValidateMissingFile(t *testing.T) {
	out, err := execute(t, NewValidateCommand(&RootOptions{Format: "text"}), "", "/nonexistent/graph.json")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E005]")
}

func TestValidateRequiresArg(t *testing.T) {
	_, err := execute(t, NewValidateCommand(&RootOptions{Format: "text"}), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg")
}

func TestValidateReportsGraphID(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "graph.json", testutil.GoetheGraph)

	out, err := execute(t, NewValidateCommand(&RootOptions{Format: "json"}), "", path)
	require.NoError(t, err)

	var resp struct {
		Data ValidationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.True(t, resp.Data.Valid)
	assert.Len(t, resp.Data.GraphID, 64)

	again, err := execute(t, NewValidateCommand(&RootOptions{Format: "json"}), "", path)
	require.NoError(t, err)
	var resp2 struct {
		Data ValidationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(again), &resp2))
	assert.Equal(t, resp.Data.GraphID, resp2.Data.GraphID)
}

package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const harnessScenarios = "../harness/testdata/scenarios"

func TestTestCommandMissingArgs(t *testing.T) {
	_, err := execute(t, NewTestCommand(&RootOptions{Format: "text"}), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg")
}

func TestTestCommandNonExistentScenariosDir(t *testing.T) {
	out, err := execute(t, NewTestCommand(&RootOptions{Format: "text"}), "", "/nonexistent/scenarios")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "scenarios directory not found")
}

func TestTestCommandRunsScenarios(t *testing.T) {
	out, err := execute(t, NewTestCommand(&RootOptions{Format: "text"}), "", harnessScenarios)
	require.NoError(t, err, out)
	assert.Contains(t, out, "✓ goethe_variable_predicate")
	assert.Contains(t, out, "Results: 6 passed, 0 failed, 6 total")
}

func TestTestCommandFilter(t *testing.T) {
	out, err := execute(t, NewTestCommand(&RootOptions{Format: "json"}), "", harnessScenarios, "--filter", "distinct_*")
	require.NoError(t, err)

	var resp struct {
		Status string     `json:"status"`
		Data   TestResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 1, resp.Data.Total)
	require.Len(t, resp.Data.Scenarios, 1)
	assert.Equal(t, "distinct_import", resp.Data.Scenarios[0].Name)
	assert.Len(t, resp.Data.Scenarios[0].TranslationID, 64)
}

func TestTestCommandInvalidFilter(t *testing.T) {
	_, err := execute(t, NewTestCommand(&RootOptions{Format: "text"}), "", harnessScenarios, "--filter", "[")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestTestCommandNoScenarios(t *testing.T) {
	out, err := execute(t, NewTestCommand(&RootOptions{Format: "text"}), "", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out, "No scenarios found.")
}

func TestTestCommandFailingScenario(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "fail.yaml", `
name: wrong_projection
description: "expects the wrong projection"
direction: to_query
input: '[{"properties":[{"id":"?p","label":"p","selectedForProjection":true}],"source":{"id":"?s","label":"s","selectedForProjection":true},"target":{"id":"?o","label":"o","selectedForProjection":true}}]'
assertions:
  - type: projection
    value: "?s"
`)

	out, err := execute(t, NewTestCommand(&RootOptions{Format: "text"}), "", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ wrong_projection")
	assert.Contains(t, out, "Expected: SELECT ?s")
	assert.Contains(t, out, "Actual: SELECT ?o ?p ?s")
}

func TestTestCommandMalformedScenario(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "bad.yaml", "name: [\n")

	out, err := execute(t, NewTestCommand(&RootOptions{Format: "text"}), "", dir)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E008]")
}

func TestTestCommandUpdateWritesGolden(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "empty.yaml", `
name: empty_graph
description: "an empty graph renders nothing"
direction: to_graph
input: "SELECT ?s WHERE { ?s <http://example.org/p> ?o }"
golden: true
`)

	_, err := execute(t, NewTestCommand(&RootOptions{Format: "text"}), "", dir)
	require.Error(t, err, "golden file does not exist yet")

	out, err := execute(t, NewTestCommand(&RootOptions{Format: "text"}), "", dir, "--update")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ empty_graph (golden updated)")

	data, err := os.ReadFile(filepath.Join(dir, "golden", "empty_graph.golden"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"id":"?s"`)

	_, err = execute(t, NewTestCommand(&RootOptions{Format: "text"}), "", dir)
	require.NoError(t, err)
}

package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

// goetheQueryText is what testutil.GoetheGraph renders to.
const goetheQueryText = `PREFIX wd: <http://www.wikidata.org/entity/>

SELECT ?variable1 WHERE {
    wd:Q5879 ?variable1 wd:Q154804 .
    # Johann Wolfgang von Goethe -- [Variable] -> Leipzig University
}`

const sequenceCUE = `_wd: {iri: "http://www.wikidata.org/entity/", abbreviation: "wd"}
_wdt: {iri: "http://www.wikidata.org/prop/direct/", abbreviation: "wdt"}

connections: [{
	source: {id: "?item", label: "item"}
	target: {id: "Q5", label: "human", prefix: _wd}
	properties: [{
		id:       "path"
		label:    "instance of / subclass of"
		pathType: "sequence"
		properties: [
			{id: "P31", label: "instance of", prefix: _wdt},
			{id: "P279", label: "subclass of", prefix: _wdt, modifier: "*"},
		]
	}]
}]
`

// execute runs cmd with args and stdin and returns stdout.
func execute(t *testing.T, cmd *cobra.Command, stdin string, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// isolateConfig keeps a developer's qbg.yaml and QBG_* variables out of
// root command tests. Empty variables are ignored by the config loader.
func isolateConfig(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	for _, kv := range os.Environ() {
		if name, _, ok := strings.Cut(kv, "="); ok && strings.HasPrefix(name, "QBG_") {
			t.Setenv(name, "")
		}
	}
}

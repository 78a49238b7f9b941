package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/roach88/querygraph/internal/translate"
)

// ToGraphOptions holds flags for the to-graph command.
type ToGraphOptions struct {
	*RootOptions
	Record string // translation log path; empty disables recording
}

// ToGraphResult is the JSON payload of to-graph.
type ToGraphResult struct {
	Graph     json.RawMessage `json:"graph"`
	SessionID string          `json:"session_id,omitempty"`
}

// NewToGraphCommand creates the to-graph command.
func NewToGraphCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ToGraphOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "to-graph [file|-]",
		Short: "Import a SPARQL query as a graph document",
		Long: `Import a SPARQL query as visual query graph JSON.

Only basic graph patterns and property paths become connections; other
operators are dropped (see "qbg explain"). A query that does not parse
imports as an empty graph.

Examples:
  qbg to-graph query.rq
  echo 'SELECT ?s WHERE { ?s ?p ?o }' | qbg to-graph
  qbg to-graph query.rq --record qbg.db`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runToGraph(opts, cmd, args)
		},
	}

	cmd.Flags().StringVar(&opts.Record, "record", "", "record the translation in this SQLite log")

	return cmd
}

func runToGraph(opts *ToGraphOptions, cmd *cobra.Command, args []string) error {
	formatter := opts.formatter(cmd)

	data, name, err := readInput(cmd, args)
	if err != nil {
		return failInput(formatter, err)
	}
	formatter.VerboseLog("Read query from %s (%d bytes)", name, len(data))

	var graph, sessionID string
	if opts.Record != "" {
		rec, closeLog, err := openRecorder(cmd.Context(), opts.Record, opts.logger(), map[string]any{
			"command": "to-graph",
		})
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeStore, "failed to open translation log: "+err.Error(), nil)
		}
		defer closeLog()

		graph, err = rec.ToGraph(cmd.Context(), string(data))
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeStore, "failed to record translation: "+err.Error(), nil)
		}
		sessionID = rec.SessionID()
	} else {
		graph = translate.QueryToGraph(string(data))
	}

	return formatter.Success(ToGraphResult{Graph: json.RawMessage(graph), SessionID: sessionID}, graph)
}

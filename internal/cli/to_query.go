package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/querygraph/internal/compose"
	"github.com/roach88/querygraph/internal/translate"
	"github.com/roach88/querygraph/internal/vqg"
)

// ToQueryOptions holds flags for the to-query command.
type ToQueryOptions struct {
	*RootOptions
	LabelService         bool
	LabelServicePrefixes bool
	Record               string // translation log path; empty disables recording
	Source               string // known data source for bare ids
}

// ToQueryResult is the JSON payload of to-query.
type ToQueryResult struct {
	Query     string `json:"query"`
	SessionID string `json:"session_id,omitempty"`
}

// NewToQueryCommand creates the to-query command.
func NewToQueryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ToQueryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "to-query [file|-]",
		Short: "Render a graph document as SPARQL",
		Long: `Render a visual query graph as a SPARQL SELECT query.

The graph is read from a .json or .cue file, or from stdin. An empty
graph renders as an empty query.

Examples:
  qbg to-query graph.json
  qbg to-query graph.cue --label-service --label-service-prefixes
  cat graph.json | qbg to-query --source wikidata
  qbg to-query graph.json --record qbg.db`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runToQuery(opts, cmd, args)
		},
	}

	cmd.Flags().BoolVar(&opts.LabelService, "label-service", false, "add the Wikibase label service and label variables")
	cmd.Flags().BoolVar(&opts.LabelServicePrefixes, "label-service-prefixes", false, "declare the bd: and wikibase: prefixes")
	cmd.Flags().StringVar(&opts.Record, "record", "", "record the translation in this SQLite log")
	cmd.Flags().StringVar(&opts.Source, "source", "", "fill prefixes of bare Q/P ids from a known data source ("+strings.Join(vqg.DataSourceNames(), ", ")+")")

	return cmd
}

func runToQuery(opts *ToQueryOptions, cmd *cobra.Command, args []string) error {
	formatter := opts.formatter(cmd)
	cfg := opts.settings()

	composeOpts := compose.Options{
		AddLabelService:         cfg.LabelService,
		AddLabelServicePrefixes: cfg.LabelServicePrefixes,
	}
	if cmd.Flags().Changed("label-service") {
		composeOpts.AddLabelService = opts.LabelService
	}
	if cmd.Flags().Changed("label-service-prefixes") {
		composeOpts.AddLabelServicePrefixes = opts.LabelServicePrefixes
	}
	source := cfg.Source
	if cmd.Flags().Changed("source") {
		source = opts.Source
	}

	data, name, err := readInput(cmd, args)
	if err != nil {
		return failInput(formatter, err)
	}
	input, err := graphInput(data, name, source)
	if err != nil {
		return failInput(formatter, err)
	}
	formatter.VerboseLog("Read graph from %s (%d bytes)", name, len(data))

	result := ToQueryResult{}
	if opts.Record != "" {
		rec, closeLog, err := openRecorder(cmd.Context(), opts.Record, opts.logger(), map[string]any{
			"command": "to-query",
			"source":  source,
		})
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeStore, "failed to open translation log: "+err.Error(), nil)
		}
		defer closeLog()

		result.Query, err = rec.ToQuery(cmd.Context(), input, composeOpts)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeStore, "failed to record translation: "+err.Error(), nil)
		}
		result.SessionID = rec.SessionID()
		formatter.VerboseLog("Recorded in %s (session %s)", opts.Record, result.SessionID)
	} else {
		result.Query = translate.GraphToQuery(input, composeOpts.AddLabelService, composeOpts.AddLabelServicePrefixes)
	}

	return formatter.Success(result, result.Query)
}

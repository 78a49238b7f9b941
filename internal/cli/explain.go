package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/querygraph/internal/extract"
	"github.com/roach88/querygraph/internal/sparql"
	"github.com/roach88/querygraph/internal/translate"
)

// ExplainResult describes how a query imports.
type ExplainResult struct {
	Form              string   `json:"form"`
	Algebra           string   `json:"algebra"`
	Projected         []string `json:"projected"` // empty means SELECT *
	DistinctVariables []string `json:"distinct_variables"`
	OuterDistinct     bool     `json:"outer_distinct"`
	Connections       int      `json:"connections"`
	Dropped           []string `json:"dropped"`
}

// NewExplainCommand creates the explain command.
func NewExplainCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "explain [file|-]",
		Short: "Show how a query is imported",
		Long: `Parse a SPARQL query and report its canonical algebra, projection,
distinct flags, the number of connections it imports as and every
operator the importer drops.

Exit codes:
  0 - Query parsed
  1 - Query does not parse
  2 - Command error (unreadable input, etc.)`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExplain(rootOpts, cmd, args)
		},
	}

	return cmd
}

func runExplain(opts *RootOptions, cmd *cobra.Command, args []string) error {
	formatter := opts.formatter(cmd)

	data, _, err := readInput(cmd, args)
	if err != nil {
		return failInput(formatter, err)
	}

	q, err := translate.ParseQuery(string(data))
	if err != nil {
		return formatter.Fail(ExitFailure, ErrCodeSyntax, err.Error(), syntaxDetails(err))
	}

	res := extract.Extract(q)
	result := ExplainResult{
		Form:              res.Form.String(),
		Algebra:           q.String(),
		Projected:         nonNil(res.Projected),
		DistinctVariables: nonNil(res.DistinctVariables),
		OuterDistinct:     res.OuterDistinct,
		Connections:       len(res.Connections),
		Dropped:           nonNil(res.Dropped),
	}

	return formatter.Success(result, formatExplain(result))
}

func formatExplain(r ExplainResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Form: %s\n", r.Form)
	fmt.Fprintf(&b, "Algebra: %s\n", r.Algebra)
	fmt.Fprintf(&b, "Projection: %s\n", listOr(r.Projected, " ", "*"))
	fmt.Fprintf(&b, "Distinct variables: %s\n", listOr(r.DistinctVariables, " ", "none"))
	fmt.Fprintf(&b, "Outer DISTINCT: %v\n", r.OuterDistinct)
	fmt.Fprintf(&b, "Connections: %d\n", r.Connections)
	fmt.Fprintf(&b, "Dropped: %s", listOr(r.Dropped, ", ", "none"))
	return b.String()
}

// syntaxDetails returns the position of a syntax error, or nil.
func syntaxDetails(err error) any {
	var se *sparql.SyntaxError
	if !errors.As(err, &se) {
		return nil
	}
	return map[string]int{"line": se.Line, "column": se.Column}
}

func listOr(items []string, sep, empty string) string {
	if len(items) == 0 {
		return empty
	}
	return strings.Join(items, sep)
}

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}

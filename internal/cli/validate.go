package cli

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/querygraph/internal/schema"
	"github.com/roach88/querygraph/internal/sparql"
	"github.com/roach88/querygraph/internal/vqg"
)

// Validation input kinds.
const (
	KindGraph = "graph"
	KindQuery = "query"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid       bool               `json:"valid"`
	Kind        string             `json:"kind"`
	Connections int                `json:"connections,omitempty"`
	GraphID     string             `json:"graph_id,omitempty"`
	Errors      []schema.Violation `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <file>",
		Short: "Validate a graph document or a query",
		Long: `Validate a graph document against the graph schema, or check that a
query parses. Files ending in .rq or .sparql are queries; .cue and
everything else are graph documents. All schema violations are reported.

Exit codes:
  0 - Valid
  1 - Invalid
  2 - Command error (file not found, etc.)`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, cmd, args)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, cmd *cobra.Command, args []string) error {
	formatter := opts.formatter(cmd)

	data, name, err := readInput(cmd, args)
	if err != nil {
		return failInput(formatter, err)
	}

	var result ValidationResult
	switch strings.ToLower(filepath.Ext(name)) {
	case ".rq", ".sparql":
		result = validateQuery(data)
	case ".cue":
		result = validateCUE(data, filepath.Base(name))
	default:
		result = validateJSON(data)
	}
	formatter.VerboseLog("Validated %s as %s", name, result.Kind)

	if !result.Valid {
		return outputValidationErrors(formatter, result)
	}
	return outputValidateSuccess(formatter, result)
}

func validateQuery(data []byte) ValidationResult {
	if _, err := sparql.Parse(string(data)); err != nil {
		return ValidationResult{Kind: KindQuery, Errors: []schema.Violation{syntaxViolation(err)}}
	}
	return ValidationResult{Valid: true, Kind: KindQuery}
}

func validateJSON(data []byte) ValidationResult {
	if err := schema.Validate(data); err != nil {
		return ValidationResult{Kind: KindGraph, Errors: toViolations(err)}
	}
	conns, err := vqg.DecodeConnections(data)
	if err != nil {
		return ValidationResult{Kind: KindGraph, Errors: toViolations(err)}
	}
	return validGraph(conns)
}

func validateCUE(data []byte, filename string) ValidationResult {
	conns, err := schema.LoadCUE(data, filename)
	if err != nil {
		return ValidationResult{Kind: KindGraph, Errors: toViolations(err)}
	}
	return validGraph(conns)
}

// validGraph reports a graph's size and content id. The id is the same
// for a JSON document and a CUE document describing the same graph.
func validGraph(conns []vqg.Connection) ValidationResult {
	result := ValidationResult{Valid: true, Kind: KindGraph, Connections: len(conns)}
	if id, err := vqg.GraphID(conns); err == nil {
		result.GraphID = id
	}
	return result
}

func toViolations(err error) []schema.Violation {
	var ve *schema.ValidationError
	if errors.As(err, &ve) {
		return ve.Violations
	}
	var de *vqg.DecodeError
	if errors.As(err, &de) {
		return []schema.Violation{{Path: de.Path, Message: de.Err.Error()}}
	}
	return []schema.Violation{{Message: err.Error()}}
}

func syntaxViolation(err error) schema.Violation {
	var se *sparql.SyntaxError
	if errors.As(err, &se) {
		return schema.Violation{Message: se.Message, Line: se.Line, Column: se.Column}
	}
	return schema.Violation{Message: err.Error()}
}

// outputValidateSuccess outputs successful validation results.
func outputValidateSuccess(formatter *OutputFormatter, result ValidationResult) error {
	text := "✓ Valid query"
	if result.Kind == KindGraph {
		text = fmt.Sprintf("✓ Valid graph (%d connection(s))", result.Connections)
	}
	return formatter.Success(result, text)
}

// outputValidationErrors outputs every violation.
func outputValidationErrors(formatter *OutputFormatter, result ValidationResult) error {
	message := fmt.Sprintf("validation failed with %d error(s)", len(result.Errors))
	code := ErrCodeInvalid
	if result.Kind == KindQuery {
		code = ErrCodeSyntax
	}

	if formatter.Format == "json" {
		if err := formatter.encode(CLIResponse{
			Status: "error",
			Data:   result,
			Error: &CLIError{
				Code:    code,
				Message: message,
			},
			TraceID: formatter.TraceID,
		}); err != nil {
			return err
		}
		// Validation failures = exit code 1 (test/validation failure)
		return reportedError(ExitFailure, message)
	}

	// Text format
	fmt.Fprintf(formatter.Writer, "✗ Invalid %s\n", result.Kind)
	fmt.Fprintln(formatter.Writer)
	for _, v := range result.Errors {
		fmt.Fprintf(formatter.Writer, "  %s: %s\n", code, v.String())
	}

	return reportedError(ExitFailure, message)
}

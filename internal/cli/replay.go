package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/querygraph/internal/recorder"
	"github.com/roach88/querygraph/internal/store"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Database string
}

// ReplayMismatch is one translation whose output changed.
type ReplayMismatch struct {
	ID        string `json:"id"`
	SessionID string `json:"session_id"`
	Seq       int64  `json:"seq"`
	Direction string `json:"direction"`
	Recorded  string `json:"recorded"`
	Got       string `json:"got"`
}

// ReplayResult holds the overall replay result.
type ReplayResult struct {
	Total            int              `json:"total"`
	Mismatches       []ReplayMismatch `json:"mismatches"`
	AllDeterministic bool             `json:"all_deterministic"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Re-run recorded translations and verify determinism",
		Long: `Re-run every translation in the log, in log order, and verify that
the current translator produces byte-identical output.

Exit codes:
  0 - All translations reproduce
  1 - At least one output differs
  2 - Command error (database not found, etc.)

Examples:
  qbg replay --db ./qbg.db
  qbg replay --db ./qbg.db --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite translation log (default from config)")

	return cmd
}

func runReplay(opts *ReplayOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	path := opts.Database
	if path == "" {
		path = opts.settings().DB
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return formatter.Fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("database not found: %s", path), nil)
	}

	st, err := store.Open(path)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeStore, "failed to open database: "+err.Error(), nil)
	}
	defer st.Close()

	replayed, err := st.Replay(cmd.Context(), recorder.Retranslate)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeStore, "replay failed: "+err.Error(), nil)
	}

	result := ReplayResult{
		Total:            replayed.Total,
		Mismatches:       make([]ReplayMismatch, 0, len(replayed.Mismatches)),
		AllDeterministic: replayed.Deterministic(),
	}
	for _, m := range replayed.Mismatches {
		result.Mismatches = append(result.Mismatches, ReplayMismatch{
			ID:        m.Translation.ID,
			SessionID: m.Translation.SessionID,
			Seq:       m.Translation.Seq,
			Direction: m.Translation.Direction,
			Recorded:  m.Translation.Output,
			Got:       m.Got,
		})
	}

	if opts.Format == "json" {
		return outputReplayJSON(formatter, result)
	}
	return outputReplayText(formatter, result)
}

// outputReplayJSON outputs the replay result as JSON.
func outputReplayJSON(formatter *OutputFormatter, result ReplayResult) error {
	response := CLIResponse{
		Status:  "ok",
		Data:    result,
		TraceID: formatter.TraceID,
	}

	if !result.AllDeterministic {
		response.Status = "error"
		response.Error = &CLIError{
			Code:    ErrCodeDeterminism,
			Message: "determinism verification failed",
		}
	}

	if err := formatter.encode(response); err != nil {
		return err
	}

	if !result.AllDeterministic {
		// Determinism failure = exit code 1
		return reportedError(ExitFailure, "determinism verification failed")
	}
	return nil
}

// outputReplayText outputs the replay result as text.
func outputReplayText(formatter *OutputFormatter, result ReplayResult) error {
	w := formatter.Writer

	if result.Total == 0 {
		fmt.Fprintln(w, "No translations found in database.")
		return nil
	}

	fmt.Fprintf(w, "Replay Summary: %d translation(s)\n", result.Total)
	fmt.Fprintln(w)

	for _, m := range result.Mismatches {
		fmt.Fprintf(w, "✗ %s (seq %d, %s)\n", m.ID, m.Seq, m.Direction)
		if formatter.Verbose {
			fmt.Fprintf(w, "  Recorded: %s\n", m.Recorded)
			fmt.Fprintf(w, "  Got:      %s\n", m.Got)
		}
	}

	if result.AllDeterministic {
		fmt.Fprintln(w, "✓ All translations verified deterministic")
		return nil
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "✗ Determinism verification failed: %d of %d translation(s) differ\n", len(result.Mismatches), result.Total)
	// Determinism failure = exit code 1
	return reportedError(ExitFailure, "determinism verification failed")
}

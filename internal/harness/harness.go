package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/querygraph/internal/compose"
	"github.com/roach88/querygraph/internal/recorder"
	"github.com/roach88/querygraph/internal/schema"
	"github.com/roach88/querygraph/internal/store"
	"github.com/roach88/querygraph/internal/vqg"
)

// Runner executes scenarios.
type Runner struct {
	// UpdateGolden rewrites golden files instead of comparing.
	UpdateGolden bool

	// Logger receives per-scenario debug logs. Nil discards them.
	Logger *slog.Logger
}

// Run executes a scenario with a default Runner.
func Run(scenario *Scenario) (*Result, error) {
	return (&Runner{}).Run(scenario)
}

// Run executes a test scenario and returns the result.
//
// Each scenario runs in a fresh in-memory translation log with a fixed
// session id and a clock starting at zero, so recorded ids and seqs are
// identical across runs.
//
// Execution flow:
// 1. Resolve the input (inline text or graph_file)
// 2. Translate and record in the scenario's direction
// 3. Evaluate assertions against the output
// 4. Compare or update the golden file when enabled
//
// A returned error means the scenario could not run at all; assertion
// failures are reported in Result.Errors.
func (r *Runner) Run(scenario *Scenario) (*Result, error) {
	logger := r.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	input, err := resolveInput(scenario)
	if err != nil {
		return nil, err
	}

	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	ctx := context.Background()
	rec, err := recorder.New(ctx, st, logger,
		recorder.WithSessionIDGenerator(recorder.NewFixedGenerator("scenario:"+scenario.Name)),
		recorder.WithClock(recorder.NewClock()),
	)
	if err != nil {
		return nil, err
	}

	result := NewResult(scenario.Direction)
	switch scenario.Direction {
	case store.DirectionToQuery:
		result.Output, err = rec.ToQuery(ctx, input, compose.Options{
			AddLabelService:         scenario.AddLabelService,
			AddLabelServicePrefixes: scenario.AddLabelServicePrefixes,
		})
	case store.DirectionToGraph:
		result.Output, err = rec.ToGraph(ctx, input)
	default:
		return nil, fmt.Errorf("unknown direction %q", scenario.Direction)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to record translation: %w", err)
	}

	recorded, err := st.ReadSessionTranslations(ctx, rec.SessionID())
	if err != nil {
		return nil, err
	}
	if len(recorded) == 1 {
		result.TranslationID = recorded[0].ID
	}

	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}

	if scenario.Golden {
		if err := checkGolden(scenario, result.Output, r.UpdateGolden); err != nil {
			result.AddError(err.Error())
		}
	}

	logger.Debug("scenario finished",
		"scenario", scenario.Name,
		"direction", scenario.Direction,
		"translation_id", result.TranslationID,
		"pass", result.Pass,
	)
	return result, nil
}

// resolveInput returns the text handed to the translator. Graph files are
// loaded through the schema loader and re-encoded as graph JSON.
func resolveInput(s *Scenario) (string, error) {
	if s.GraphFile == "" {
		return s.Input, nil
	}
	conns, err := schema.LoadFile(s.GraphFile)
	if err != nil {
		return "", fmt.Errorf("failed to load graph file: %w", err)
	}
	return vqg.EncodeConnections(conns)
}

package harness

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// GoldenDir is where golden files live for a scenario: golden/ next to
// the scenario file, or testdata/golden for scenarios built in code.
func GoldenDir(s *Scenario) string {
	if s.BaseDir == "" {
		return filepath.Join("testdata", "golden")
	}
	return filepath.Join(s.BaseDir, "golden")
}

// GoldenPath returns the golden file of a scenario.
func GoldenPath(s *Scenario) string {
	return filepath.Join(GoldenDir(s), s.Name+".golden")
}

// checkGolden compares output with the scenario's golden file, or
// rewrites the file when update is set.
func checkGolden(s *Scenario, output string, update bool) error {
	path := GoldenPath(s)
	if update {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("golden: %w", err)
		}
		if err := os.WriteFile(path, []byte(output), 0o644); err != nil {
			return fmt.Errorf("golden: %w", err)
		}
		return nil
	}

	want, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("golden file %s does not exist (run with --update to create it)", path)
	}
	if err != nil {
		return fmt.Errorf("golden: %w", err)
	}
	if !bytes.Equal(want, []byte(output)) {
		return &AssertionError{
			Type:     "golden",
			Expected: fmt.Sprintf("output identical to %s", path),
			Actual:   "output differs",
			Output:   output,
		}
	}
	return nil
}

// RunWithGolden executes a scenario and compares the output against a
// golden file in GoldenDir(scenario), named after the scenario.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if the scenario cannot run. Assertion failures and
// golden mismatches fail t.
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	// goldie owns the comparison here so that -update works.
	s := *scenario
	s.Golden = false
	result, err := Run(&s)
	if err != nil {
		return err
	}
	for _, msg := range result.Errors {
		t.Error(msg)
	}

	AssertGolden(t, scenario, result)
	return nil
}

// AssertGolden compares an already computed result against the
// scenario's golden file.
func AssertGolden(t *testing.T, scenario *Scenario, result *Result) {
	t.Helper()

	g := goldie.New(t,
		goldie.WithFixtureDir(GoldenDir(scenario)),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, []byte(result.Output))
}

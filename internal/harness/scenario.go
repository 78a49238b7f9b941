package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/querygraph/internal/store"
)

// Scenario defines a conformance test scenario: one translation and the
// assertions its output must satisfy.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Direction is "to_query" (graph in, SPARQL out) or "to_graph".
	Direction string `yaml:"direction"`

	// Input is graph JSON or query text, depending on Direction.
	Input string `yaml:"input,omitempty"`

	// GraphFile is a .json or .cue graph document used instead of Input
	// for to_query scenarios. Relative to the scenario file.
	GraphFile string `yaml:"graph_file,omitempty"`

	AddLabelService         bool `yaml:"add_label_service,omitempty"`
	AddLabelServicePrefixes bool `yaml:"add_label_service_prefixes,omitempty"`

	// Golden compares the output with golden/<name>.golden next to the
	// scenario file.
	Golden bool `yaml:"golden,omitempty"`

	Assertions []Assertion `yaml:"assertions"`

	// BaseDir is the directory of the scenario file. Set by LoadScenario.
	BaseDir string `yaml:"-"`
}

// Assertion validates the translation output.
type Assertion struct {
	// Type specifies the assertion type:
	// - "contains" / "not_contains": substring check on the output
	// - "equivalent": output parses to the same query as Value
	// - "projection": the SELECT clause text equals Value
	// - "connection_count": the graph has Value connections
	// - "json_equals": the graph value at Path equals Value
	// - "empty": the output is the empty result for its direction
	Type string `yaml:"type"`

	// Value is the expected value. Its YAML type depends on Type.
	Value any `yaml:"value,omitempty"`

	// Path is a dotted location in graph JSON, e.g. "0.target.distinct".
	Path string `yaml:"path,omitempty"`
}

// Assertion type constants.
const (
	AssertContains        = "contains"
	AssertNotContains     = "not_contains"
	AssertEquivalent      = "equivalent"
	AssertProjection      = "projection"
	AssertConnectionCount = "connection_count"
	AssertJSONEquals      = "json_equals"
	AssertEmpty           = "empty"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict field validation catches typos like "assertion:" vs "assertions:".
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	scenario.BaseDir = filepath.Dir(path)
	if scenario.GraphFile != "" && !filepath.IsAbs(scenario.GraphFile) {
		scenario.GraphFile = filepath.Join(scenario.BaseDir, scenario.GraphFile)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// LoadScenarios loads every *.yaml and *.yml file in dir, sorted by file
// name. The first invalid file aborts loading.
func LoadScenarios(dir string) ([]*Scenario, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario dir: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".yaml", ".yml":
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	scenarios := make([]*Scenario, 0, len(names))
	for _, name := range names {
		s, err := LoadScenario(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	switch s.Direction {
	case store.DirectionToQuery, store.DirectionToGraph:
	case "":
		return fmt.Errorf("direction is required")
	default:
		return fmt.Errorf("direction must be %s or %s, got %q", store.DirectionToQuery, store.DirectionToGraph, s.Direction)
	}

	if s.GraphFile != "" {
		if s.Direction != store.DirectionToQuery {
			return fmt.Errorf("graph_file is only valid for %s", store.DirectionToQuery)
		}
		if s.Input != "" {
			return fmt.Errorf("input and graph_file are mutually exclusive")
		}
		if _, err := os.Stat(s.GraphFile); os.IsNotExist(err) {
			return fmt.Errorf("graph file not found: %s", s.GraphFile)
		}
	}

	if len(s.Assertions) == 0 && !s.Golden {
		return fmt.Errorf("assertions list is required unless golden is set")
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, s.Direction, &assertion); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, direction string, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertContains, AssertNotContains, AssertEquivalent:
		if _, ok := a.Value.(string); !ok {
			return fmt.Errorf("assertions[%d]: %s requires a string value", index, a.Type)
		}
		if a.Type == AssertEquivalent && direction != store.DirectionToQuery {
			return fmt.Errorf("assertions[%d]: equivalent is only valid for %s", index, store.DirectionToQuery)
		}
	case AssertProjection:
		if _, ok := a.Value.(string); !ok {
			return fmt.Errorf("assertions[%d]: projection requires a string value", index)
		}
		if direction != store.DirectionToQuery {
			return fmt.Errorf("assertions[%d]: projection is only valid for %s", index, store.DirectionToQuery)
		}
	case AssertConnectionCount:
		n, ok := a.Value.(int)
		if !ok || n < 0 {
			return fmt.Errorf("assertions[%d]: connection_count requires a non-negative integer value", index)
		}
	case AssertJSONEquals:
		if a.Path == "" {
			return fmt.Errorf("assertions[%d]: path is required for json_equals", index)
		}
		if direction != store.DirectionToGraph {
			return fmt.Errorf("assertions[%d]: json_equals is only valid for %s", index, store.DirectionToGraph)
		}
	case AssertEmpty:
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}

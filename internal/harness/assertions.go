package harness

import (
	"encoding/json"
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/roach88/querygraph/internal/sparql"
	"github.com/roach88/querygraph/internal/store"
	"github.com/roach88/querygraph/internal/translate"
	"github.com/roach88/querygraph/internal/vqg"
)

// selectClause captures the projection of a composed query.
var selectClause = regexp.MustCompile(`(?m)^SELECT (.*) WHERE \{$`)

// AssertionError is returned when an assertion fails.
// It includes the output to help debug the failure.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
	Output   string
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nOutput:\n")
	for _, line := range strings.Split(e.Output, "\n") {
		fmt.Fprintf(&buf, "  %s\n", line)
	}

	return buf.String()
}

func assertContains(output string, a Assertion, want bool) error {
	value, _ := a.Value.(string)
	if strings.Contains(output, value) == want {
		return nil
	}
	verb := "output containing"
	if !want {
		verb = "output not containing"
	}
	return &AssertionError{
		Type:     a.Type,
		Expected: fmt.Sprintf("%s %q", verb, value),
		Actual:   "mismatch",
		Output:   output,
	}
}

// assertEquivalent parses both queries and compares their canonical
// renderings, so prefixes, whitespace and comments do not matter.
func assertEquivalent(output string, a Assertion) error {
	value, _ := a.Value.(string)
	want, err := translate.ParseQuery(value)
	if err != nil {
		return fmt.Errorf("equivalent: expected query does not parse: %w", err)
	}
	got, err := sparql.Parse(output)
	if err != nil {
		return &AssertionError{
			Type:     a.Type,
			Expected: want.String(),
			Actual:   fmt.Sprintf("output does not parse: %v", err),
			Output:   output,
		}
	}
	if got.String() != want.String() {
		return &AssertionError{
			Type:     a.Type,
			Expected: want.String(),
			Actual:   got.String(),
			Output:   output,
		}
	}
	return nil
}

func assertProjection(output string, a Assertion) error {
	value, _ := a.Value.(string)
	m := selectClause.FindStringSubmatch(output)
	if m == nil {
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("SELECT %s", value),
			Actual:   "no SELECT clause",
			Output:   output,
		}
	}
	if m[1] != value {
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("SELECT %s", value),
			Actual:   fmt.Sprintf("SELECT %s", m[1]),
			Output:   output,
		}
	}
	return nil
}

// assertConnectionCount counts graph connections. SPARQL output is read
// back through the extractor first.
func assertConnectionCount(direction, output string, a Assertion) error {
	want, _ := a.Value.(int)

	var got int
	if direction == store.DirectionToGraph {
		conns, err := vqg.DecodeConnections([]byte(output))
		if err != nil {
			return fmt.Errorf("connection_count: %w", err)
		}
		got = len(conns)
	} else {
		got = len(translate.ConnectionsFromQuery(output).Connections)
	}

	if got != want {
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("%d connections", want),
			Actual:   fmt.Sprintf("%d connections", got),
			Output:   output,
		}
	}
	return nil
}

func assertJSONEquals(output string, a Assertion) error {
	var doc any
	if err := json.Unmarshal([]byte(output), &doc); err != nil {
		return fmt.Errorf("json_equals: output is not JSON: %w", err)
	}

	got, err := lookupPath(doc, a.Path)
	if err != nil {
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("value at %s", a.Path),
			Actual:   err.Error(),
			Output:   output,
		}
	}

	want, err := normalizeJSON(a.Value)
	if err != nil {
		return fmt.Errorf("json_equals: %w", err)
	}
	if !valuesEqual(got, want) {
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("%s = %v", a.Path, want),
			Actual:   fmt.Sprintf("%s = %v", a.Path, got),
			Output:   output,
		}
	}
	return nil
}

func assertEmpty(direction, output string, a Assertion) error {
	empty := ""
	if direction == store.DirectionToGraph {
		empty = "[]"
	}
	if output != empty {
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("%q", empty),
			Actual:   fmt.Sprintf("%d bytes of output", len(output)),
			Output:   output,
		}
	}
	return nil
}

// lookupPath walks a decoded JSON document along a dotted path. Numeric
// segments index arrays.
func lookupPath(doc any, path string) (any, error) {
	cur := doc
	for _, seg := range strings.Split(path, ".") {
		switch node := cur.(type) {
		case []any:
			i, err := strconv.Atoi(seg)
			if err != nil || i < 0 || i >= len(node) {
				return nil, fmt.Errorf("no element %q in array of %d", seg, len(node))
			}
			cur = node[i]
		case map[string]any:
			v, ok := node[seg]
			if !ok {
				return nil, fmt.Errorf("no key %q", seg)
			}
			cur = v
		default:
			return nil, fmt.Errorf("cannot index %T with %q", cur, seg)
		}
	}
	return cur, nil
}

// normalizeJSON converts a YAML-decoded value to the types encoding/json
// produces, so ints compare equal to float64 and so on.
func normalizeJSON(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// valuesEqual compares two values for equality.
// Handles nested maps and slices.
func valuesEqual(actual, expected any) bool {
	if actual == nil && expected == nil {
		return true
	}
	if actual == nil || expected == nil {
		return false
	}
	return reflect.DeepEqual(actual, expected)
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertContains:
			err = assertContains(result.Output, assertion, true)
		case AssertNotContains:
			err = assertContains(result.Output, assertion, false)
		case AssertEquivalent:
			err = assertEquivalent(result.Output, assertion)
		case AssertProjection:
			err = assertProjection(result.Output, assertion)
		case AssertConnectionCount:
			err = assertConnectionCount(result.Direction, result.Output, assertion)
		case AssertJSONEquals:
			err = assertJSONEquals(result.Output, assertion)
		case AssertEmpty:
			err = assertEmpty(result.Direction, result.Output, assertion)
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}

// Package harness runs conformance scenarios against the translator.
//
// A scenario is one translation, in either direction, plus assertions on
// its output and an optional golden file.
//
// # Scenario Format
//
//	name: sequence_path
//	description: "Sequence paths render in parentheses"
//	direction: to_query          # or to_graph
//	input: |                     # graph JSON or query text
//	  [...]
//	graph_file: graph.cue        # instead of input, to_query only
//	add_label_service: false
//	add_label_service_prefixes: false
//	golden: true                 # compare with golden/<name>.golden
//	assertions:
//	  - type: contains
//	    value: "(wdt:P31/wdt:P279*)"
//	  - type: json_equals        # to_graph only
//	    path: 0.target.distinct
//	    value: true
//
// # Assertion Types
//
//   - contains, not_contains: substring check on the output
//   - equivalent: output and value parse to the same query
//   - projection: the SELECT clause equals value, e.g. "DISTINCT(?a) ?b"
//   - connection_count: the graph has value connections; SPARQL output is
//     extracted first
//   - json_equals: the value at a dotted path of the graph JSON
//   - empty: "" for to_query, "[]" for to_graph
//
// # Deterministic Testing
//
// Every scenario is recorded in a fresh in-memory translation log with a
// fixed session id and a clock starting at zero, so the recorded
// translation id is stable and can be compared across runs.
package harness

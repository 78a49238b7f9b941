// Package sparql is a SPARQL 1.1 query front end: a lexer, a
// recursive-descent parser building SPARQL algebra, and a canonical
// renderer.
//
// It parses and renders; it never evaluates. Expressions (FILTER, BIND,
// HAVING, ORDER BY and projection expressions) are kept as normalized
// token text.
//
// SEALED INTERFACES:
//
// GraphPattern, PropertyPath and Term are sealed with marker methods, so
// consumers can write exhaustive type switches:
//
//	switch p := pattern.(type) {
//	case *sparql.Bgp:
//	case *sparql.PathPattern:
//	case *sparql.Join:
//	...
//	}
//
// Graph pattern and path nodes are always pointers. Terms are values.
//
// CANONICAL FORM:
//
// (*Query).String() renders the algebra as an S-expression with every IRI
// expanded, so two queries that differ only in prefix declarations,
// whitespace, comments or IRI abbreviation render identically. Round-trip
// checks compare these strings.
//
// EXTENSIONS:
//
// The projection clause accepts DISTINCT(?v) as a per-variable marker in
// addition to the global SELECT DISTINCT. Such variables are listed in
// Project.DistinctVariables.
package sparql

package sparql

import "strings"

// XSD datatype IRIs assigned to numeric and boolean literals.
const (
	XSDNamespace = "http://www.w3.org/2001/XMLSchema#"
	XSDInteger   = XSDNamespace + "integer"
	XSDDecimal   = XSDNamespace + "decimal"
	XSDDouble    = XSDNamespace + "double"
	XSDBoolean   = XSDNamespace + "boolean"
	XSDString    = XSDNamespace + "string"

	RDFType = "http://www.w3.org/1999/02/22-rdf-syntax-ns#type"
	RDFNil  = "http://www.w3.org/1999/02/22-rdf-syntax-ns#nil"
)

// Term is an RDF term or a variable in a triple pattern.
type Term interface {
	term()
	String() string
}

// IRI is an absolute (or unresolved relative) IRI without angle brackets.
type IRI string

func (IRI) term() {}

func (i IRI) String() string {
	return "<" + string(i) + ">"
}

// Variable is a query variable name without the leading ? or $.
type Variable string

func (Variable) term() {}

func (v Variable) String() string {
	return "?" + string(v)
}

// BlankNode is a blank node label without the leading _:.
type BlankNode string

func (BlankNode) term() {}

func (b BlankNode) String() string {
	return "_:" + string(b)
}

// Literal is an RDF literal. Language and Datatype are mutually
// exclusive; both empty means a simple literal.
type Literal struct {
	Value    string
	Language string
	Datatype IRI
}

func (Literal) term() {}

func (l Literal) String() string {
	s := quoteLiteral(l.Value)
	switch {
	case l.Language != "":
		return s + "@" + l.Language
	case l.Datatype != "" && l.Datatype != XSDString:
		return s + "^^" + l.Datatype.String()
	default:
		return s
	}
}

var literalEscaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	"\n", `\n`,
	"\r", `\r`,
	"\t", `\t`,
)

func quoteLiteral(s string) string {
	return `"` + literalEscaper.Replace(s) + `"`
}

// TriplePattern is a subject/predicate/object pattern whose predicate is
// an IRI or a variable.
type TriplePattern struct {
	Subject   Term
	Predicate Term
	Object    Term
}

func (t TriplePattern) String() string {
	return "(triple " + t.Subject.String() + " " + t.Predicate.String() + " " + t.Object.String() + ")"
}

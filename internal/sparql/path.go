package sparql

import "strings"

// PropertyPath is a predicate-position path expression.
//
// Binary operators are left-associative: a/b/c parses as
// Sequence(Sequence(a, b), c).
type PropertyPath interface {
	propertyPath()
	String() string
}

// PathIRI is a single predicate IRI.
type PathIRI struct {
	IRI IRI
}

// PathReverse is ^path.
type PathReverse struct {
	Inner PropertyPath
}

// PathSequence is left/right.
type PathSequence struct {
	Left, Right PropertyPath
}

// PathAlternative is left|right.
type PathAlternative struct {
	Left, Right PropertyPath
}

// PathZeroOrMore is path*.
type PathZeroOrMore struct {
	Inner PropertyPath
}

// PathOneOrMore is path+.
type PathOneOrMore struct {
	Inner PropertyPath
}

// PathZeroOrOne is path?.
type PathZeroOrOne struct {
	Inner PropertyPath
}

// PathNegatedSet is !(iri|^iri|...).
type PathNegatedSet struct {
	Items []NegatedItem
}

// NegatedItem is one member of a negated property set.
type NegatedItem struct {
	IRI     IRI
	Inverse bool
}

func (*PathIRI) propertyPath()         {}
func (*PathReverse) propertyPath()     {}
func (*PathSequence) propertyPath()    {}
func (*PathAlternative) propertyPath() {}
func (*PathZeroOrMore) propertyPath()  {}
func (*PathOneOrMore) propertyPath()   {}
func (*PathZeroOrOne) propertyPath()   {}
func (*PathNegatedSet) propertyPath()  {}

func (p *PathIRI) String() string { return p.IRI.String() }

func (p *PathReverse) String() string { return "^" + group(p.Inner) }

func (p *PathSequence) String() string {
	return "(" + p.Left.String() + "/" + p.Right.String() + ")"
}

func (p *PathAlternative) String() string {
	return "(" + p.Left.String() + "|" + p.Right.String() + ")"
}

func (p *PathZeroOrMore) String() string { return group(p.Inner) + "*" }
func (p *PathOneOrMore) String() string  { return group(p.Inner) + "+" }
func (p *PathZeroOrOne) String() string  { return group(p.Inner) + "?" }

func (p *PathNegatedSet) String() string {
	items := make([]string, len(p.Items))
	for i, item := range p.Items {
		items[i] = item.String()
	}
	return "!(" + strings.Join(items, "|") + ")"
}

func (n NegatedItem) String() string {
	if n.Inverse {
		return "^" + n.IRI.String()
	}
	return n.IRI.String()
}

// group renders p so that a unary operator binds to all of it.
// IRIs and already-parenthesized binary paths need no extra parentheses.
func group(p PropertyPath) string {
	switch p.(type) {
	case *PathIRI, *PathSequence, *PathAlternative, *PathNegatedSet:
		return p.String()
	default:
		return "(" + p.String() + ")"
	}
}

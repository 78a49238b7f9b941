package sparql

// GraphPattern is a node of the SPARQL algebra tree.
//
// Pattern types:
//   - Bgp, PathPattern: leaves holding triple patterns
//   - Join, LeftJoin, Union, Minus: binary operators
//   - Filter, Graph, Service, Extend, Group: unary operators over Inner
//   - Values: inline data
//   - OrderBy, Project, Distinct, Reduced, Slice: solution modifiers
type GraphPattern interface {
	graphPattern()
}

// Expression is the normalized token text of an expression. Prefixed
// names are expanded, keywords upper-cased and spacing is canonical.
type Expression string

// Bgp is a basic graph pattern: a conjunction of simple triples.
type Bgp struct {
	Triples []TriplePattern
}

// PathPattern is a triple whose predicate is a non-trivial property path.
type PathPattern struct {
	Subject Term
	Path    PropertyPath
	Object  Term
}

// Join is the conjunction of two patterns.
type Join struct {
	Left, Right GraphPattern
}

// LeftJoin is OPTIONAL. Expr is the filter scoped to the optional
// group, empty when there is none.
type LeftJoin struct {
	Left, Right GraphPattern
	Expr        Expression
}

// Filter restricts Inner by a conjunction of constraints.
type Filter struct {
	Exprs []Expression
	Inner GraphPattern
}

// Union is left UNION right.
type Union struct {
	Left, Right GraphPattern
}

// Minus is left MINUS right.
type Minus struct {
	Left, Right GraphPattern
}

// Graph scopes Inner to a named graph (IRI or variable).
type Graph struct {
	Name  Term
	Inner GraphPattern
}

// Service delegates Inner to a remote endpoint (IRI or variable).
type Service struct {
	Name   Term
	Inner  GraphPattern
	Silent bool
}

// Extend binds Variable to Expr (BIND or a projection expression).
type Extend struct {
	Inner    GraphPattern
	Variable Variable
	Expr     Expression
}

// Values is inline data. A nil entry in a row means UNDEF.
type Values struct {
	Variables []Variable
	Rows      [][]Term
}

// Group is GROUP BY. Keys are kept as expressions.
type Group struct {
	Inner GraphPattern
	Keys  []Expression
}

// OrderCondition is one ORDER BY key.
type OrderCondition struct {
	Expr       Expression
	Descending bool
}

// OrderBy sorts Inner.
type OrderBy struct {
	Inner      GraphPattern
	Conditions []OrderCondition
}

// Project restricts solutions to Variables. DistinctVariables lists the
// variables written as DISTINCT(?v) in the projection clause, in
// projection order.
type Project struct {
	Inner             GraphPattern
	Variables         []Variable
	DistinctVariables []Variable
}

// Distinct is SELECT DISTINCT.
type Distinct struct {
	Inner GraphPattern
}

// Reduced is SELECT REDUCED.
type Reduced struct {
	Inner GraphPattern
}

// Slice is OFFSET/LIMIT. Limit is -1 when absent.
type Slice struct {
	Inner  GraphPattern
	Offset int64
	Limit  int64
}

func (*Bgp) graphPattern()         {}
func (*PathPattern) graphPattern() {}
func (*Join) graphPattern()        {}
func (*LeftJoin) graphPattern()    {}
func (*Filter) graphPattern()      {}
func (*Union) graphPattern()       {}
func (*Minus) graphPattern()       {}
func (*Graph) graphPattern()       {}
func (*Service) graphPattern()     {}
func (*Extend) graphPattern()      {}
func (*Values) graphPattern()      {}
func (*Group) graphPattern()       {}
func (*OrderBy) graphPattern()     {}
func (*Project) graphPattern()     {}
func (*Distinct) graphPattern()    {}
func (*Reduced) graphPattern()     {}
func (*Slice) graphPattern()       {}

// IsDistinctVariable reports whether v was projected as DISTINCT(?v).
func (p *Project) IsDistinctVariable(v Variable) bool {
	for _, d := range p.DistinctVariables {
		if d == v {
			return true
		}
	}
	return false
}

// join combines two patterns, dropping empty BGPs on either side.
func join(left, right GraphPattern) GraphPattern {
	if isEmptyBgp(left) {
		return right
	}
	if isEmptyBgp(right) {
		return left
	}
	return &Join{Left: left, Right: right}
}

func isEmptyBgp(p GraphPattern) bool {
	b, ok := p.(*Bgp)
	return ok && len(b.Triples) == 0
}

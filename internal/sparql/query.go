package sparql

// QueryForm is the kind of query.
type QueryForm int

const (
	FormSelect QueryForm = iota
	FormConstruct
	FormAsk
	FormDescribe
)

func (f QueryForm) String() string {
	switch f {
	case FormSelect:
		return "select"
	case FormConstruct:
		return "construct"
	case FormAsk:
		return "ask"
	case FormDescribe:
		return "describe"
	default:
		return "unknown"
	}
}

// Dataset holds FROM and FROM NAMED clauses.
type Dataset struct {
	Default []IRI
	Named   []IRI
}

// Query is a parsed query.
//
// Pattern is the full algebra including solution modifiers. For SELECT
// the outer shape is Slice(Distinct|Reduced(Project(OrderBy(...)))),
// with each layer present only when the query uses it. A SELECT * query
// has no Project node.
type Query struct {
	Form     QueryForm
	Pattern  GraphPattern
	Template []TriplePattern // CONSTRUCT only
	Describe []Term          // DESCRIBE only; empty means DESCRIBE *
	Dataset  *Dataset
	Base     IRI
}

// String renders the query canonically. The prologue is not included;
// every IRI is written in full.
func (q *Query) String() string {
	return renderQuery(q)
}

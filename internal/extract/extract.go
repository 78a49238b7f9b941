// Package extract turns parsed SPARQL queries into VQG connections.
//
// Extraction has two passes. The extractor walks the algebra tree and
// emits one connection per triple or path pattern; the annotator then
// marks variables as selected for projection and per-variable distinct
// based on the query's outer shape.
//
// Only basic graph patterns, path patterns, joins and the outer solution
// modifiers carry structure into the graph. Every other operator is
// dropped on purpose and reported in Result.Dropped.
package extract

import (
	"log/slog"

	"github.com/roach88/querygraph/internal/pathcodec"
	"github.com/roach88/querygraph/internal/sparql"
	"github.com/roach88/querygraph/internal/vqg"
)

// Result is the outcome of extracting one query.
type Result struct {
	Form        sparql.QueryForm
	Connections []vqg.Connection

	// Projected lists the projected variable ids ("?name") in projection
	// order. Nil means the query has no projection (SELECT *), so every
	// variable is selected.
	Projected []string

	// DistinctVariables lists variables written as DISTINCT(?v).
	DistinctVariables []string

	// OuterDistinct reports a global SELECT DISTINCT. It is never copied
	// into per-variable flags.
	OuterDistinct bool

	// Dropped names each operator that contributed no connections,
	// in walk order.
	Dropped []string
}

// Extract extracts and annotates connections from q. Queries that are
// not SELECT yield no connections.
func Extract(q *sparql.Query) *Result {
	res := &Result{
		Form:        q.Form,
		Connections: []vqg.Connection{},
		Dropped:     []string{},
	}
	if q.Form != sparql.FormSelect {
		res.Dropped = append(res.Dropped, q.Form.String()+" query")
		return res
	}

	inner, shape := peelOuterShape(q.Pattern)
	res.Projected = shape.projected
	res.DistinctVariables = shape.distinctVariables
	res.OuterDistinct = shape.outerDistinct

	x := &extractor{}
	res.Connections = append(res.Connections, x.walk(inner)...)
	res.Dropped = append(res.Dropped, x.dropped...)

	annotate(res.Connections, shape)

	if len(res.Dropped) > 0 {
		slog.Debug("operators dropped during extraction",
			"dropped", res.Dropped,
			"connections", len(res.Connections))
	}
	return res
}

// extractor collects connections from graph patterns.
type extractor struct {
	dropped []string
}

// walk handles every GraphPattern kind explicitly. Operators without a
// graph representation fall into the ignored arm and yield nothing.
func (x *extractor) walk(pattern sparql.GraphPattern) []vqg.Connection {
	switch p := pattern.(type) {
	case *sparql.Bgp:
		conns := make([]vqg.Connection, 0, len(p.Triples))
		for _, t := range p.Triples {
			conns = append(conns, newConnection(t.Subject, vqg.NewLeaf(t.Predicate.String()), t.Object))
		}
		return conns

	case *sparql.PathPattern:
		return []vqg.Connection{newConnection(p.Subject, pathcodec.Decompose(p.Path), p.Object)}

	case *sparql.Join:
		left := x.walk(p.Left)
		return append(left, x.walk(p.Right)...)

	case *sparql.Service:
		// Label service blocks are regenerated from a flag on the way out.
		return nil

	case *sparql.Distinct:
		return x.walk(p.Inner)

	case *sparql.Filter, *sparql.LeftJoin, *sparql.Union, *sparql.Minus,
		*sparql.Graph, *sparql.Extend, *sparql.Values, *sparql.Group,
		*sparql.OrderBy, *sparql.Project, *sparql.Reduced, *sparql.Slice:
		x.dropped = append(x.dropped, OperatorName(p))
		return nil

	default:
		x.dropped = append(x.dropped, OperatorName(p))
		return nil
	}
}

func newConnection(subject sparql.Term, property vqg.Property, object sparql.Term) vqg.Connection {
	return vqg.Connection{
		Source:     vqg.NewEntity(subject.String()),
		Target:     vqg.NewEntity(object.String()),
		Properties: []vqg.Property{property},
	}
}

// OperatorName names a graph pattern kind the way a query author would.
func OperatorName(pattern sparql.GraphPattern) string {
	switch pattern.(type) {
	case *sparql.Bgp:
		return "bgp"
	case *sparql.PathPattern:
		return "path"
	case *sparql.Join:
		return "join"
	case *sparql.LeftJoin:
		return "optional"
	case *sparql.Filter:
		return "filter"
	case *sparql.Union:
		return "union"
	case *sparql.Minus:
		return "minus"
	case *sparql.Graph:
		return "graph"
	case *sparql.Service:
		return "service"
	case *sparql.Extend:
		return "bind"
	case *sparql.Values:
		return "values"
	case *sparql.Group:
		return "group by"
	case *sparql.OrderBy:
		return "order by"
	case *sparql.Project:
		return "subquery"
	case *sparql.Distinct:
		return "distinct"
	case *sparql.Reduced:
		return "reduced"
	case *sparql.Slice:
		return "limit/offset"
	default:
		return "unknown"
	}
}

package extract

import (
	"github.com/roach88/querygraph/internal/sparql"
	"github.com/roach88/querygraph/internal/vqg"
)

// outerShape is what the annotator learns from the query's solution
// modifiers.
type outerShape struct {
	projected         []string
	projectedSet      map[string]bool
	distinctVariables []string
	distinctSet       map[string]bool
	outerDistinct     bool
}

// peelOuterShape strips the outer solution modifiers and returns the
// pattern that carries graph structure.
//
// Recognized shapes, after removing Slice and Reduced:
//
//	Distinct(Project(vars, inner))  projected = vars, outer distinct
//	Project(vars, inner)            projected = vars
//	Distinct(inner)                 no projection, outer distinct
//	inner                           no projection
//
// An OrderBy directly below the projection is removed as well.
func peelOuterShape(pattern sparql.GraphPattern) (sparql.GraphPattern, outerShape) {
	var shape outerShape

peel:
	for {
		switch p := pattern.(type) {
		case *sparql.Slice:
			pattern = p.Inner
		case *sparql.Reduced:
			pattern = p.Inner
		default:
			break peel
		}
	}

	if d, ok := pattern.(*sparql.Distinct); ok {
		shape.outerDistinct = true
		pattern = d.Inner
	}

	if p, ok := pattern.(*sparql.Project); ok {
		shape.projected = make([]string, 0, len(p.Variables))
		shape.projectedSet = make(map[string]bool, len(p.Variables))
		for _, v := range p.Variables {
			shape.projected = append(shape.projected, v.String())
			shape.projectedSet[v.String()] = true
		}
		shape.distinctVariables = make([]string, 0, len(p.DistinctVariables))
		shape.distinctSet = make(map[string]bool, len(p.DistinctVariables))
		for _, v := range p.DistinctVariables {
			shape.distinctVariables = append(shape.distinctVariables, v.String())
			shape.distinctSet[v.String()] = true
		}
		pattern = p.Inner
	}

	if o, ok := pattern.(*sparql.OrderBy); ok {
		pattern = o.Inner
	}
	return pattern, shape
}

// selected reports whether a variable id is selected for projection.
func (s outerShape) selected(id string) bool {
	return s.projectedSet == nil || s.projectedSet[id]
}

// annotate sets projection and distinct flags on every variable.
// Distinct comes only from DISTINCT(?v) markers; a global SELECT
// DISTINCT leaves per-variable flags false.
func annotate(conns []vqg.Connection, shape outerShape) {
	for i := range conns {
		annotateEntity(&conns[i].Source, shape)
		annotateEntity(&conns[i].Target, shape)
		for j := range conns[i].Properties {
			annotateProperty(&conns[i].Properties[j], shape)
		}
	}
}

func annotateEntity(e *vqg.Entity, shape outerShape) {
	if !e.IsVariable() {
		return
	}
	e.SelectedForProjection = shape.selected(e.ID)
	e.Distinct = e.SelectedForProjection && shape.distinctSet[e.ID]
}

func annotateProperty(p *vqg.Property, shape outerShape) {
	if p.IsVariable() {
		p.SelectedForProjection = shape.selected(p.ID)
	}
	for i := range p.Children {
		annotateProperty(&p.Children[i], shape)
	}
}

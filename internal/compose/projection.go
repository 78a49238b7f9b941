package compose

import (
	"slices"
	"strings"

	"github.com/roach88/querygraph/internal/vqg"
)

// projection collects selected variables by name. A name maps to true
// when it renders as DISTINCT(?name).
type projection map[string]bool

func (p projection) add(id string, distinct bool) {
	p[id] = p[id] || distinct
}

// projectionList renders the SELECT projection. Tokens are ordered by
// variable name; a DISTINCT wrapper does not change a token's position.
// Label variables are never wrapped.
func projectionList(conns []vqg.Connection, labels bool) string {
	vars := make(projection)
	for _, conn := range conns {
		for _, e := range []vqg.Entity{conn.Source, conn.Target} {
			if e.IsVariable() && e.SelectedForProjection {
				vars.add(e.ID, e.Distinct)
			}
		}
		for _, p := range conn.Properties {
			p.Walk(func(node vqg.Property) {
				if node.IsVariable() && node.SelectedForProjection {
					vars.add(node.ID, false)
				}
			})
		}
	}
	if len(vars) == 0 {
		return "*"
	}

	names := make([]string, 0, 2*len(vars))
	for id := range vars {
		names = append(names, id)
	}
	if labels {
		for _, id := range names {
			label := labelVariable(id)
			if _, ok := vars[label]; !ok {
				vars[label] = false
			}
		}
		names = names[:0]
		for id := range vars {
			names = append(names, id)
		}
	}
	slices.Sort(names)

	tokens := make([]string, len(names))
	for i, id := range names {
		if vars[id] {
			tokens[i] = "DISTINCT(" + id + ")"
		} else {
			tokens[i] = id
		}
	}
	return strings.Join(tokens, " ")
}

func labelVariable(id string) string {
	return "?" + strings.TrimPrefix(id, "?") + "Label"
}

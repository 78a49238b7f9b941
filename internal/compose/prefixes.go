package compose

import (
	"slices"
	"strings"

	"github.com/roach88/querygraph/internal/vqg"
)

// prefixBlock renders the PREFIX declarations used by conns, sorted and
// deduplicated, followed by a blank line. It is empty when no node has
// a namespace and no literal needs xsd:.
func prefixBlock(conns []vqg.Connection) string {
	seen := make(map[string]bool)
	needsXSD := false

	visit := func(id string, prefix vqg.Prefix) {
		if strings.Contains(id, "^^xsd:") {
			needsXSD = true
		}
		if !prefix.IsEmpty() {
			seen[prefix.Declaration()] = true
		}
	}
	for _, conn := range conns {
		visit(conn.Source.ID, conn.Source.Prefix)
		visit(conn.Target.ID, conn.Target.Prefix)
		for _, p := range conn.Properties {
			p.Walk(func(node vqg.Property) {
				visit(node.ID, node.Prefix)
			})
		}
	}

	var b strings.Builder
	if needsXSD && !seen[XSDPrefix] {
		b.WriteString(XSDPrefix + "\n")
	}
	if len(seen) > 0 {
		lines := make([]string, 0, len(seen))
		for line := range seen {
			lines = append(lines, line)
		}
		slices.Sort(lines)
		b.WriteString(strings.Join(lines, "\n"))
		b.WriteString("\n\n")
	}
	return b.String()
}

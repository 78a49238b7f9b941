// Package compose renders VQG connections as SPARQL SELECT text.
package compose

import (
	"strings"

	"github.com/roach88/querygraph/internal/pathcodec"
	"github.com/roach88/querygraph/internal/vqg"
)

// Fixed namespace and service lines.
const (
	BDPrefix       = "PREFIX bd: <http://www.bigdata.com/rdf#>"
	WikibasePrefix = "PREFIX wikibase: <http://wikiba.se/ontology#>"
	XSDPrefix      = "PREFIX xsd: <http://www.w3.org/2001/XMLSchema#>"

	LabelService = `SERVICE wikibase:label { bd:serviceParam wikibase:language "[AUTO_LANGUAGE],en". }`

	// Preamble is the text a query starts with when label service
	// prefixes are requested.
	Preamble = BDPrefix + "\n" + WikibasePrefix + "\n"

	indent = "    "
)

// Options are the composer feature flags.
type Options struct {
	// AddLabelService adds a ?{name}Label projection per selected
	// variable and the label SERVICE block.
	AddLabelService bool

	// AddLabelServicePrefixes prepends the bd: and wikibase: prefixes.
	AddLabelServicePrefixes bool
}

// Compose renders conns as query text. An empty graph renders as "".
func Compose(conns []vqg.Connection, opts Options) string {
	if len(conns) == 0 {
		return ""
	}

	var b strings.Builder
	if opts.AddLabelServicePrefixes {
		b.WriteString(Preamble)
	}
	b.WriteString(prefixBlock(conns))
	b.WriteString("SELECT ")
	b.WriteString(projectionList(conns, opts.AddLabelService))
	b.WriteString(" WHERE {\n")
	for _, conn := range conns {
		writeConnection(&b, conn)
	}
	if opts.AddLabelService {
		b.WriteString(indent + LabelService + "\n")
	}
	b.WriteString("}")
	return b.String()
}

func writeConnection(b *strings.Builder, conn vqg.Connection) {
	source := pathcodec.RenderIRI(conn.Source.ID, conn.Source.Prefix)
	target := pathcodec.RenderIRI(conn.Target.ID, conn.Target.Prefix)
	for _, p := range conn.Properties {
		b.WriteString(indent + source + " " + pathcodec.Recompose(p) + " " + target + " .\n")
		b.WriteString(indent + "# " + commentText(conn.Source.Label) + " -- [" + commentText(p.Label) + "] -> " + commentText(conn.Target.Label) + "\n")
	}
}

// A line break in a label would end the comment early.
var lineBreaks = strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ")

func commentText(label string) string {
	return lineBreaks.Replace(label)
}

// Package pathcodec converts between SPARQL property paths and recursive
// vqg.Property trees.
//
// Decompose turns a parsed path into a tree whose leaves are predicate
// IRIs and whose composite nodes join their children by sequence or
// alternation. Unary operators become the node's Modifier. Recompose
// renders a tree back to path text.
package pathcodec

import (
	"strings"

	"github.com/roach88/querygraph/internal/sparql"
	"github.com/roach88/querygraph/internal/vqg"
)

// Decompose converts a property path into a Property tree.
//
// Left-nested chains of the same binary operator are flattened into one
// composite, matching how the parser associates a/b/c. A node never
// carries two modifiers: applying a second one wraps the node in a
// single-child sequence first.
func Decompose(path sparql.PropertyPath) vqg.Property {
	switch p := path.(type) {
	case *sparql.PathIRI:
		return leaf(p.IRI.String())
	case *sparql.PathNegatedSet:
		return leaf(p.String())
	case *sparql.PathReverse:
		return withModifier(Decompose(p.Inner), vqg.ModReverse, p)
	case *sparql.PathZeroOrMore:
		return withModifier(Decompose(p.Inner), vqg.ModZeroOrMore, p)
	case *sparql.PathOneOrMore:
		return withModifier(Decompose(p.Inner), vqg.ModOneOrMore, p)
	case *sparql.PathZeroOrOne:
		return withModifier(Decompose(p.Inner), vqg.ModZeroOrOne, p)
	case *sparql.PathSequence:
		var children []vqg.Property
		if left, ok := p.Left.(*sparql.PathSequence); ok {
			children = Decompose(left).Children
		} else {
			children = []vqg.Property{Decompose(p.Left)}
		}
		return composite(vqg.PathSequence, append(children, Decompose(p.Right)), p)
	case *sparql.PathAlternative:
		var children []vqg.Property
		if left, ok := p.Left.(*sparql.PathAlternative); ok {
			children = Decompose(left).Children
		} else {
			children = []vqg.Property{Decompose(p.Left)}
		}
		return composite(vqg.PathAlternation, append(children, Decompose(p.Right)), p)
	default:
		// Unknown path kinds stay opaque.
		return leaf(path.String())
	}
}

func leaf(id string) vqg.Property {
	return vqg.NewLeaf(id)
}

func composite(pathType vqg.PathType, children []vqg.Property, path sparql.PropertyPath) vqg.Property {
	text := path.String()
	return vqg.Property{
		ID:                    text,
		Label:                 text,
		SelectedForProjection: true,
		Children:              children,
		PathType:              pathType,
	}
}

// withModifier sets mod on node. Composite ids are refreshed to the text
// of the whole modified path; leaf ids stay the predicate IRI.
func withModifier(node vqg.Property, mod vqg.Modifier, whole sparql.PropertyPath) vqg.Property {
	if node.Modifier != "" {
		node = composite(vqg.PathSequence, []vqg.Property{node}, whole)
	} else if !node.IsLeaf() {
		node.ID = whole.String()
		node.Label = node.ID
	}
	node.Modifier = mod
	return node
}

// Recompose renders a Property tree as property path text.
//
// Leaves render through RenderIRI; composites join their children with
// "/" or "|" inside parentheses. Repetition modifiers are suffixes and
// the reverse modifier is a prefix. Unknown modifiers are not emitted.
func Recompose(p vqg.Property) string {
	var body string
	if p.IsLeaf() {
		body = RenderIRI(p.ID, p.Prefix)
	} else {
		parts := make([]string, len(p.Children))
		for i, child := range p.Children {
			parts[i] = Recompose(child)
		}
		body = "(" + strings.Join(parts, p.PathType.Separator()) + ")"
	}

	switch {
	case p.Modifier == vqg.ModReverse:
		return "^" + body
	case p.Modifier.IsRepetition():
		return body + string(p.Modifier)
	default:
		return body
	}
}

// RenderIRI abbreviates id with prefix unless the prefix is empty or id
// is already a prefixed name or a bracketed IRI.
func RenderIRI(id string, prefix vqg.Prefix) string {
	if prefix.IRI == "" || strings.Contains(id, ":") || strings.HasPrefix(id, "<") {
		return id
	}
	return prefix.Abbreviation + ":" + id
}

package vqg

import "strings"

// Prefix maps an abbreviation to a namespace IRI.
// An empty IRI means the owning id is rendered verbatim.
type Prefix struct {
	IRI          string `json:"iri"`
	Abbreviation string `json:"abbreviation"`
}

// IsEmpty reports whether the prefix carries no namespace.
func (p Prefix) IsEmpty() bool {
	return p.IRI == ""
}

// Declaration renders the prefix as a SPARQL PREFIX line.
func (p Prefix) Declaration() string {
	return "PREFIX " + p.Abbreviation + ": <" + p.IRI + ">"
}

// Entity is a subject or object slot of a triple pattern: an IRI, a literal,
// a blank node or a variable (id starting with "?").
type Entity struct {
	ID                    string `json:"id"`
	Label                 string `json:"label"`
	Prefix                Prefix `json:"prefix"`
	SelectedForProjection bool   `json:"selectedForProjection"`
	Distinct              bool   `json:"distinct"`
}

// IsVariable reports whether the entity id names a variable.
func (e Entity) IsVariable() bool {
	return IsVariable(e.ID)
}

// PathType selects the operator joining a composite Property's children.
// The zero value means absent, which renders as a sequence.
type PathType string

const (
	PathSequence    PathType = "sequence"
	PathAlternation PathType = "alternation"
)

// Separator returns the path operator for the type.
func (t PathType) Separator() string {
	if t == PathAlternation {
		return "|"
	}
	return "/"
}

// Modifier is a unary path operator applied to a whole Property node.
// The zero value means absent.
type Modifier string

const (
	ModReverse    Modifier = "^"
	ModZeroOrMore Modifier = "*"
	ModOneOrMore  Modifier = "+"
	ModZeroOrOne  Modifier = "?"
)

// IsRepetition reports whether the modifier is one of the suffix operators.
func (m Modifier) IsRepetition() bool {
	return m == ModZeroOrMore || m == ModOneOrMore || m == ModZeroOrOne
}

// Valid reports whether the modifier is absent or a known operator.
func (m Modifier) Valid() bool {
	return m == "" || m == ModReverse || m.IsRepetition()
}

// Property is a predicate slot. A leaf (no Children) is a single predicate
// IRI or variable; a composite joins its Children with PathType. Modifier
// applies to the whole node.
type Property struct {
	ID                    string     `json:"id"`
	Label                 string     `json:"label"`
	Prefix                Prefix     `json:"prefix"`
	SelectedForProjection bool       `json:"selectedForProjection"`
	Children              []Property `json:"properties"`
	PathType              PathType   `json:"pathType,omitempty"`
	Modifier              Modifier   `json:"modifier,omitempty"`
}

// IsLeaf reports whether the property has no children.
func (p Property) IsLeaf() bool {
	return len(p.Children) == 0
}

// IsVariable reports whether the property id names a variable.
func (p Property) IsVariable() bool {
	return IsVariable(p.ID)
}

// Walk visits p and then every descendant in depth-first order.
func (p Property) Walk(fn func(Property)) {
	fn(p)
	for _, child := range p.Children {
		child.Walk(fn)
	}
}

// Connection links a source and target entity by parallel properties.
type Connection struct {
	Source     Entity     `json:"source"`
	Target     Entity     `json:"target"`
	Properties []Property `json:"properties"`
}

// IsVariable reports whether id is a variable token.
func IsVariable(id string) bool {
	return strings.HasPrefix(id, "?")
}

// NewEntity creates an entity with no namespace whose label is its id.
// Projection defaults to selected, distinct to false.
func NewEntity(id string) Entity {
	return Entity{
		ID:                    id,
		Label:                 id,
		SelectedForProjection: true,
	}
}

// NewLeaf creates a leaf property with no namespace whose label is its id.
func NewLeaf(id string) Property {
	return Property{
		ID:                    id,
		Label:                 id,
		SelectedForProjection: true,
		Children:              []Property{},
	}
}

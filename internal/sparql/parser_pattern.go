package sparql

import "fmt"

// tripleItem is one parsed triple. path is nil for a simple triple whose
// predicate is an IRI or variable.
type tripleItem struct {
	subject   Term
	predicate Term
	path      PropertyPath
	object    Term
}

func (p *parser) parseGroupGraphPattern() (GraphPattern, error) {
	if err := p.expectPunct("{"); err != nil {
		return nil, err
	}
	if err := p.nest(); err != nil {
		return nil, err
	}
	defer p.unnest(1)

	if p.atWord("SELECT") {
		sub, err := p.parseSubSelect()
		if err != nil {
			return nil, err
		}
		if err := p.expectPunct("}"); err != nil {
			return nil, err
		}
		return sub, nil
	}

	var (
		pattern GraphPattern = &Bgp{}
		filters []Expression
		levels  int
	)
	defer func() { p.unnest(levels) }()
	for !p.atPunct("}") {
		if !p.atTriplesStart() && !p.atWord("FILTER") {
			// Every other element wraps the pattern built so far.
			if err := p.nest(); err != nil {
				return nil, err
			}
			levels++
		}
		switch {
		case p.at(tokEOF):
			return nil, p.unexpected(`expected "}"`)

		case p.atWord("OPTIONAL"):
			p.advance()
			right, err := p.parseGroupGraphPattern()
			if err != nil {
				return nil, err
			}
			lj := &LeftJoin{Left: pattern, Right: right}
			if f, ok := right.(*Filter); ok {
				lj.Right = f.Inner
				lj.Expr = conjunction(f.Exprs)
			}
			pattern = lj

		case p.atWord("MINUS"):
			p.advance()
			right, err := p.parseGroupGraphPattern()
			if err != nil {
				return nil, err
			}
			pattern = &Minus{Left: pattern, Right: right}

		case p.atWord("BIND"):
			p.advance()
			if err := p.expectPunct("("); err != nil {
				return nil, err
			}
			expr, err := p.captureUntilAs()
			if err != nil {
				return nil, err
			}
			if !p.at(tokVar) {
				return nil, p.unexpected("expected variable after AS")
			}
			v := Variable(p.advance().text)
			if err := p.expectPunct(")"); err != nil {
				return nil, err
			}
			pattern = &Extend{Inner: pattern, Variable: v, Expr: expr}

		case p.atWord("FILTER"):
			p.advance()
			c, err := p.parseConstraint()
			if err != nil {
				return nil, err
			}
			filters = append(filters, c)

		case p.atWord("VALUES"):
			values, err := p.parseDataBlock()
			if err != nil {
				return nil, err
			}
			pattern = join(pattern, values)

		case p.atWord("GRAPH"):
			p.advance()
			name, err := p.parseVarOrIRI()
			if err != nil {
				return nil, err
			}
			inner, err := p.parseGroupGraphPattern()
			if err != nil {
				return nil, err
			}
			pattern = join(pattern, &Graph{Name: name, Inner: inner})

		case p.atWord("SERVICE"):
			p.advance()
			silent := false
			if p.atWord("SILENT") {
				p.advance()
				silent = true
			}
			name, err := p.parseVarOrIRI()
			if err != nil {
				return nil, err
			}
			inner, err := p.parseGroupGraphPattern()
			if err != nil {
				return nil, err
			}
			pattern = join(pattern, &Service{Name: name, Inner: inner, Silent: silent})

		case p.atPunct("{"):
			group, err := p.parseGroupOrUnion()
			if err != nil {
				return nil, err
			}
			pattern = join(pattern, group)

		case p.atTriplesStart():
			items, err := p.parseTriplesItems()
			if err != nil {
				return nil, err
			}
			pattern = join(pattern, patternFromItems(items))
			continue

		default:
			return nil, p.unexpected("expected triple pattern or graph pattern")
		}

		if p.atPunct(".") {
			p.advance()
		}
	}
	p.advance()

	if len(filters) > 0 {
		return &Filter{Exprs: filters, Inner: pattern}, nil
	}
	return pattern, nil
}

func (p *parser) parseGroupOrUnion() (GraphPattern, error) {
	left, err := p.parseGroupGraphPattern()
	if err != nil {
		return nil, err
	}
	levels := 0
	defer func() { p.unnest(levels) }()
	for p.atWord("UNION") {
		if err := p.nest(); err != nil {
			return nil, err
		}
		levels++
		p.advance()
		right, err := p.parseGroupGraphPattern()
		if err != nil {
			return nil, err
		}
		left = &Union{Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseSubSelect() (GraphPattern, error) {
	sc, err := p.parseSelectClause()
	if err != nil {
		return nil, err
	}
	where, err := p.parseWhereClause(false)
	if err != nil {
		return nil, err
	}
	mods, err := p.parseSolutionModifiers()
	if err != nil {
		return nil, err
	}
	if err := p.parseTrailingValues(mods); err != nil {
		return nil, err
	}
	return buildSelect(where, sc, mods), nil
}

// patternFromItems merges consecutive simple triples into one Bgp and
// keeps each path triple as its own PathPattern, preserving order.
func patternFromItems(items []tripleItem) GraphPattern {
	var (
		result  GraphPattern = &Bgp{}
		current *Bgp
	)
	for _, it := range items {
		if it.path == nil {
			if current == nil {
				current = &Bgp{}
			}
			current.Triples = append(current.Triples, TriplePattern{
				Subject:   it.subject,
				Predicate: it.predicate,
				Object:    it.object,
			})
			continue
		}
		if current != nil {
			result = join(result, current)
			current = nil
		}
		result = join(result, &PathPattern{Subject: it.subject, Path: it.path, Object: it.object})
	}
	if current != nil {
		result = join(result, current)
	}
	return result
}

// --- triples ---

func (p *parser) atTriplesStart() bool {
	tok := p.peek()
	switch tok.kind {
	case tokVar, tokIRI, tokPName, tokBlank, tokString, tokInteger, tokDecimal, tokDouble:
		return true
	case tokWord:
		return isWord(tok, "true") || isWord(tok, "false")
	case tokPunct:
		return tok.text == "[" || tok.text == "(" ||
			((tok.text == "+" || tok.text == "-") && isNumber(p.peekAt(1)))
	}
	return false
}

func (p *parser) atVerb() bool {
	tok := p.peek()
	switch tok.kind {
	case tokVar, tokIRI, tokPName:
		return true
	case tokWord:
		return tok.text == "a"
	case tokPunct:
		return tok.text == "^" || tok.text == "!" || tok.text == "("
	}
	return false
}

// parseTriplesItems parses TriplesBlock: subject/property-list groups
// separated by dots.
func (p *parser) parseTriplesItems() ([]tripleItem, error) {
	var items []tripleItem
	for {
		if err := p.parseTriplesSameSubject(&items); err != nil {
			return nil, err
		}
		if !p.atPunct(".") {
			return items, nil
		}
		p.advance()
		if !p.atTriplesStart() {
			return items, nil
		}
	}
}

func (p *parser) parseTriplesSameSubject(items *[]tripleItem) error {
	if p.atPunct("[") && !isPunct(p.peekAt(1), "]") {
		subject, err := p.parseBlankNodePropertyList(items)
		if err != nil {
			return err
		}
		if p.atVerb() {
			return p.parsePropertyList(subject, items)
		}
		return nil
	}

	subject, inner, err := p.parseGraphNode()
	if err != nil {
		return err
	}
	*items = append(*items, inner...)
	return p.parsePropertyList(subject, items)
}

func (p *parser) parsePropertyList(subject Term, items *[]tripleItem) error {
	for {
		if !p.atVerb() {
			return p.unexpected("expected predicate")
		}
		predicate, path, err := p.parseVerb()
		if err != nil {
			return err
		}

		for {
			object, inner, err := p.parseGraphNode()
			if err != nil {
				return err
			}
			*items = append(*items, tripleItem{subject: subject, predicate: predicate, path: path, object: object})
			*items = append(*items, inner...)
			if !p.atPunct(",") {
				break
			}
			p.advance()
		}

		if !p.atPunct(";") {
			return nil
		}
		for p.atPunct(";") {
			p.advance()
		}
		if !p.atVerb() {
			return nil
		}
	}
}

// parseVerb returns either a simple predicate term or a property path.
func (p *parser) parseVerb() (Term, PropertyPath, error) {
	if p.at(tokVar) {
		return Variable(p.advance().text), nil, nil
	}
	path, err := p.parsePath()
	if err != nil {
		return nil, nil, err
	}
	if iri, ok := path.(*PathIRI); ok {
		return iri.IRI, nil, nil
	}
	return nil, path, nil
}

// parseGraphNode parses an object or subject node. Triples produced by
// a nested blank node property list are returned separately.
func (p *parser) parseGraphNode() (Term, []tripleItem, error) {
	if p.atPunct("[") && !isPunct(p.peekAt(1), "]") {
		var inner []tripleItem
		node, err := p.parseBlankNodePropertyList(&inner)
		if err != nil {
			return nil, nil, err
		}
		return node, inner, nil
	}
	t, err := p.parseVarOrTerm()
	if err != nil {
		return nil, nil, err
	}
	return t, nil, nil
}

func (p *parser) parseBlankNodePropertyList(items *[]tripleItem) (Term, error) {
	p.advance()
	if err := p.nest(); err != nil {
		return nil, err
	}
	defer p.unnest(1)
	node := p.freshBlankNode()
	if err := p.parsePropertyList(node, items); err != nil {
		return nil, err
	}
	if err := p.expectPunct("]"); err != nil {
		return nil, err
	}
	return node, nil
}

func (p *parser) freshBlankNode() BlankNode {
	node := BlankNode(fmt.Sprintf("anon%d", p.anon))
	p.anon++
	return node
}

func isNumber(tok token) bool {
	return tok.kind == tokInteger || tok.kind == tokDecimal || tok.kind == tokDouble
}

func (p *parser) parseVarOrTerm() (Term, error) {
	tok := p.peek()
	switch tok.kind {
	case tokVar:
		p.advance()
		return Variable(tok.text), nil
	case tokIRI, tokPName:
		return p.parseIRI()
	case tokBlank:
		p.advance()
		return BlankNode(tok.text), nil
	case tokString:
		return p.parseRDFLiteral()
	case tokInteger, tokDecimal, tokDouble:
		p.advance()
		return numericLiteral(tok, ""), nil
	case tokWord:
		if isWord(tok, "true") || isWord(tok, "false") {
			p.advance()
			return Literal{Value: lowerASCII(tok.text), Datatype: XSDBoolean}, nil
		}
	case tokPunct:
		switch {
		case tok.text == "[" && isPunct(p.peekAt(1), "]"):
			p.advance()
			p.advance()
			return p.freshBlankNode(), nil
		case tok.text == "(" && isPunct(p.peekAt(1), ")"):
			p.advance()
			p.advance()
			return IRI(RDFNil), nil
		case tok.text == "(":
			return nil, p.errorAt(tok, "RDF collections are not supported")
		case (tok.text == "+" || tok.text == "-") && isNumber(p.peekAt(1)):
			p.advance()
			return numericLiteral(p.advance(), tok.text), nil
		}
	}
	return nil, p.unexpected("expected RDF term or variable")
}

func (p *parser) parseRDFLiteral() (Term, error) {
	tok := p.advance()
	lit := Literal{Value: tok.text}
	switch {
	case p.at(tokLangTag):
		lit.Language = lowerASCII(p.advance().text)
	case p.atPunct("^^"):
		p.advance()
		dt, err := p.parseIRI()
		if err != nil {
			return nil, err
		}
		lit.Datatype = dt
	}
	return lit, nil
}

func numericLiteral(tok token, sign string) Literal {
	value := tok.text
	if sign == "-" {
		value = "-" + value
	}
	switch tok.kind {
	case tokDecimal:
		return Literal{Value: value, Datatype: XSDDecimal}
	case tokDouble:
		return Literal{Value: value, Datatype: XSDDouble}
	default:
		return Literal{Value: value, Datatype: XSDInteger}
	}
}

func lowerASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

// --- property paths ---

func (p *parser) parsePath() (PropertyPath, error) {
	left, err := p.parsePathSequence()
	if err != nil {
		return nil, err
	}
	levels := 0
	defer func() { p.unnest(levels) }()
	for p.atPunct("|") {
		if err := p.nest(); err != nil {
			return nil, err
		}
		levels++
		p.advance()
		right, err := p.parsePathSequence()
		if err != nil {
			return nil, err
		}
		left = &PathAlternative{Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parsePathSequence() (PropertyPath, error) {
	left, err := p.parsePathEltOrInverse()
	if err != nil {
		return nil, err
	}
	levels := 0
	defer func() { p.unnest(levels) }()
	for p.atPunct("/") {
		if err := p.nest(); err != nil {
			return nil, err
		}
		levels++
		p.advance()
		right, err := p.parsePathEltOrInverse()
		if err != nil {
			return nil, err
		}
		left = &PathSequence{Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parsePathEltOrInverse() (PropertyPath, error) {
	if p.atPunct("^") {
		p.advance()
		elt, err := p.parsePathElt()
		if err != nil {
			return nil, err
		}
		return &PathReverse{Inner: elt}, nil
	}
	return p.parsePathElt()
}

func (p *parser) parsePathElt() (PropertyPath, error) {
	primary, err := p.parsePathPrimary()
	if err != nil {
		return nil, err
	}
	switch {
	case p.atPunct("*"):
		p.advance()
		return &PathZeroOrMore{Inner: primary}, nil
	case p.atPunct("+"):
		p.advance()
		return &PathOneOrMore{Inner: primary}, nil
	case p.atPunct("?"):
		p.advance()
		return &PathZeroOrOne{Inner: primary}, nil
	}
	return primary, nil
}

func (p *parser) parsePathPrimary() (PropertyPath, error) {
	switch {
	case p.isIRIStart():
		iri, err := p.parseIRI()
		if err != nil {
			return nil, err
		}
		return &PathIRI{IRI: iri}, nil
	case p.peek().kind == tokWord && p.peek().text == "a":
		p.advance()
		return &PathIRI{IRI: RDFType}, nil
	case p.atPunct("!"):
		p.advance()
		return p.parseNegatedSet()
	case p.atPunct("("):
		p.advance()
		if err := p.nest(); err != nil {
			return nil, err
		}
		defer p.unnest(1)
		inner, err := p.parsePath()
		if err != nil {
			return nil, err
		}
		if err := p.expectPunct(")"); err != nil {
			return nil, err
		}
		return inner, nil
	}
	return nil, p.unexpected("expected property path")
}

func (p *parser) parseNegatedSet() (PropertyPath, error) {
	set := &PathNegatedSet{Items: []NegatedItem{}}
	if !p.atPunct("(") {
		item, err := p.parseNegatedItem()
		if err != nil {
			return nil, err
		}
		set.Items = append(set.Items, item)
		return set, nil
	}

	p.advance()
	if p.atPunct(")") {
		p.advance()
		return set, nil
	}
	for {
		item, err := p.parseNegatedItem()
		if err != nil {
			return nil, err
		}
		set.Items = append(set.Items, item)
		if !p.atPunct("|") {
			break
		}
		p.advance()
	}
	if err := p.expectPunct(")"); err != nil {
		return nil, err
	}
	return set, nil
}

func (p *parser) parseNegatedItem() (NegatedItem, error) {
	item := NegatedItem{}
	if p.atPunct("^") {
		p.advance()
		item.Inverse = true
	}
	if p.peek().kind == tokWord && p.peek().text == "a" {
		p.advance()
		item.IRI = RDFType
		return item, nil
	}
	iri, err := p.parseIRI()
	if err != nil {
		return NegatedItem{}, err
	}
	item.IRI = iri
	return item, nil
}

// --- inline data ---

func (p *parser) parseDataBlock() (*Values, error) {
	if err := p.expectWord("VALUES"); err != nil {
		return nil, err
	}

	values := &Values{Variables: []Variable{}, Rows: [][]Term{}}
	if p.at(tokVar) {
		values.Variables = append(values.Variables, Variable(p.advance().text))
		if err := p.expectPunct("{"); err != nil {
			return nil, err
		}
		for !p.atPunct("}") {
			v, err := p.parseDataValue()
			if err != nil {
				return nil, err
			}
			values.Rows = append(values.Rows, []Term{v})
		}
		p.advance()
		return values, nil
	}

	if err := p.expectPunct("("); err != nil {
		return nil, err
	}
	for p.at(tokVar) {
		values.Variables = append(values.Variables, Variable(p.advance().text))
	}
	if err := p.expectPunct(")"); err != nil {
		return nil, err
	}
	if err := p.expectPunct("{"); err != nil {
		return nil, err
	}
	for !p.atPunct("}") {
		start := p.peek()
		if err := p.expectPunct("("); err != nil {
			return nil, err
		}
		row := []Term{}
		for !p.atPunct(")") {
			v, err := p.parseDataValue()
			if err != nil {
				return nil, err
			}
			row = append(row, v)
		}
		p.advance()
		if len(row) != len(values.Variables) {
			return nil, p.errorAt(start, fmt.Sprintf("VALUES row has %d values, expected %d", len(row), len(values.Variables)))
		}
		values.Rows = append(values.Rows, row)
	}
	p.advance()
	return values, nil
}

// parseDataValue returns nil for UNDEF.
func (p *parser) parseDataValue() (Term, error) {
	if p.atWord("UNDEF") {
		p.advance()
		return nil, nil
	}
	tok := p.peek()
	switch tok.kind {
	case tokIRI, tokPName, tokString, tokInteger, tokDecimal, tokDouble, tokWord:
		return p.parseVarOrTerm()
	case tokPunct:
		if tok.text == "+" || tok.text == "-" {
			return p.parseVarOrTerm()
		}
	}
	return nil, p.unexpected("expected data value")
}

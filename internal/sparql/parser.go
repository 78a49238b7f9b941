package sparql

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

type parser struct {
	src      string
	toks     []token
	pos      int
	base     IRI
	prefixes map[string]string
	anon     int
	depth    int
}

// maxNesting bounds how deep the algebra built for one query may grow.
// Nested groups, bracketed paths, blank node property lists and chained
// operators each add a level.
const maxNesting = 1000

// Parse parses a SPARQL 1.1 query. Errors are *SyntaxError.
func Parse(text string) (*Query, error) {
	p, err := newParser(text, nil)
	if err != nil {
		return nil, err
	}
	q, err := p.parseQuery()
	if err != nil {
		return nil, err
	}
	return q, nil
}

// ParsePath parses a standalone property path written with full IRIs.
func ParsePath(text string) (PropertyPath, error) {
	return ParsePathWithPrefixes(text, nil)
}

// ParsePathWithPrefixes parses a standalone property path, expanding
// prefixed names with the given abbreviation to namespace map.
func ParsePathWithPrefixes(text string, prefixes map[string]string) (PropertyPath, error) {
	p, err := newParser(text, prefixes)
	if err != nil {
		return nil, err
	}
	path, err := p.parsePath()
	if err != nil {
		return nil, err
	}
	if !p.at(tokEOF) {
		return nil, p.unexpected("after path")
	}
	return path, nil
}

func newParser(text string, prefixes map[string]string) (*parser, error) {
	toks, err := tokenize(text)
	if err != nil {
		return nil, err
	}
	p := &parser{src: text, toks: toks, prefixes: make(map[string]string, len(prefixes))}
	for k, v := range prefixes {
		p.prefixes[k] = v
	}
	return p, nil
}

// --- token helpers ---

func (p *parser) peek() token {
	return p.peekAt(0)
}

func (p *parser) peekAt(n int) token {
	if p.pos+n < len(p.toks) {
		return p.toks[p.pos+n]
	}
	return p.toks[len(p.toks)-1]
}

func (p *parser) advance() token {
	tok := p.peek()
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return tok
}

func (p *parser) at(kind tokenKind) bool {
	return p.peek().kind == kind
}

func (p *parser) atPunct(s string) bool {
	return isPunct(p.peek(), s)
}

func (p *parser) atWord(kw string) bool {
	return isWord(p.peek(), kw)
}

func isPunct(tok token, s string) bool {
	return tok.kind == tokPunct && tok.text == s
}

func isWord(tok token, kw string) bool {
	return tok.kind == tokWord && strings.EqualFold(tok.text, kw)
}

func (p *parser) expectPunct(s string) error {
	if !p.atPunct(s) {
		return p.unexpected(fmt.Sprintf("expected %q", s))
	}
	p.advance()
	return nil
}

func (p *parser) expectWord(kw string) error {
	if !p.atWord(kw) {
		return p.unexpected("expected " + kw)
	}
	p.advance()
	return nil
}

// nest adds one level of nesting.
func (p *parser) nest() error {
	p.depth++
	if p.depth > maxNesting {
		return p.errorAt(p.peek(), fmt.Sprintf("nesting too deep (more than %d levels)", maxNesting))
	}
	return nil
}

// unnest removes n levels of nesting.
func (p *parser) unnest(n int) {
	p.depth -= n
}

func (p *parser) errorAt(tok token, msg string) error {
	return newSyntaxError(p.src, tok.pos, msg)
}

func (p *parser) unexpected(context string) error {
	tok := p.peek()
	var found string
	switch tok.kind {
	case tokEOF:
		found = "end of input"
	case tokPName:
		found = fmt.Sprintf("%s %q", tok.kind, tok.prefix+":"+tok.text)
	default:
		found = fmt.Sprintf("%s %q", tok.kind, tok.text)
	}
	return p.errorAt(tok, fmt.Sprintf("%s, found %s", context, found))
}

// --- IRIs ---

func (p *parser) resolve(ref string) IRI {
	if p.base == "" {
		return IRI(ref)
	}
	refURL, err := url.Parse(ref)
	if err != nil || refURL.IsAbs() {
		return IRI(ref)
	}
	baseURL, err := url.Parse(string(p.base))
	if err != nil {
		return IRI(ref)
	}
	return IRI(baseURL.ResolveReference(refURL).String())
}

func (p *parser) expandPName(tok token) (IRI, error) {
	ns, ok := p.prefixes[tok.prefix]
	if !ok {
		return "", p.errorAt(tok, fmt.Sprintf("undefined prefix %q", tok.prefix))
	}
	return IRI(ns + tok.text), nil
}

func (p *parser) isIRIStart() bool {
	return p.at(tokIRI) || p.at(tokPName)
}

func (p *parser) parseIRI() (IRI, error) {
	tok := p.peek()
	switch tok.kind {
	case tokIRI:
		p.advance()
		return p.resolve(tok.text), nil
	case tokPName:
		p.advance()
		return p.expandPName(tok)
	default:
		return "", p.unexpected("expected IRI")
	}
}

func (p *parser) parseVarOrIRI() (Term, error) {
	if p.at(tokVar) {
		return Variable(p.advance().text), nil
	}
	iri, err := p.parseIRI()
	if err != nil {
		return nil, err
	}
	return iri, nil
}

// --- query forms ---

func (p *parser) parseQuery() (*Query, error) {
	if err := p.parsePrologue(); err != nil {
		return nil, err
	}

	var (
		q   *Query
		err error
	)
	switch {
	case p.atWord("SELECT"):
		q, err = p.parseSelectQuery()
	case p.atWord("CONSTRUCT"):
		q, err = p.parseConstructQuery()
	case p.atWord("ASK"):
		q, err = p.parseAskQuery()
	case p.atWord("DESCRIBE"):
		q, err = p.parseDescribeQuery()
	default:
		return nil, p.unexpected("expected SELECT, CONSTRUCT, ASK or DESCRIBE")
	}
	if err != nil {
		return nil, err
	}
	if !p.at(tokEOF) {
		return nil, p.unexpected("unexpected input after query")
	}
	q.Base = p.base
	return q, nil
}

func (p *parser) parsePrologue() error {
	for {
		switch {
		case p.atWord("BASE"):
			p.advance()
			if !p.at(tokIRI) {
				return p.unexpected("expected IRI after BASE")
			}
			p.base = p.resolve(p.advance().text)
		case p.atWord("PREFIX"):
			p.advance()
			tok := p.peek()
			if tok.kind != tokPName || tok.text != "" {
				return p.unexpected("expected prefix name after PREFIX")
			}
			p.advance()
			if !p.at(tokIRI) {
				return p.unexpected("expected IRI in PREFIX declaration")
			}
			p.prefixes[tok.prefix] = string(p.resolve(p.advance().text))
		default:
			return nil
		}
	}
}

type projectionItem struct {
	variable Variable
	expr     Expression
	distinct bool
}

type selectClause struct {
	distinct bool
	reduced  bool
	star     bool
	items    []projectionItem
}

type modifiers struct {
	groupBy []Expression
	having  []Expression
	orderBy []OrderCondition
	offset  int64
	limit   int64
	values  *Values
}

func (p *parser) parseSelectQuery() (*Query, error) {
	sc, err := p.parseSelectClause()
	if err != nil {
		return nil, err
	}
	dataset, err := p.parseDatasetClauses()
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
	return &Query{Form: FormSelect, Pattern: buildSelect(where, sc, mods), Dataset: dataset}, nil
}

// atPerVariableDistinct reports whether the input continues with
// DISTINCT ( ?v ), the per-variable projection marker.
func (p *parser) atPerVariableDistinct() bool {
	return p.atWord("DISTINCT") &&
		isPunct(p.peekAt(1), "(") &&
		p.peekAt(2).kind == tokVar &&
		isPunct(p.peekAt(3), ")")
}

func (p *parser) parseSelectClause() (*selectClause, error) {
	if err := p.expectWord("SELECT"); err != nil {
		return nil, err
	}

	sc := &selectClause{}
	switch {
	case p.atWord("DISTINCT") && !p.atPerVariableDistinct():
		p.advance()
		sc.distinct = true
	case p.atWord("REDUCED"):
		p.advance()
		sc.reduced = true
	}

	if p.atPunct("*") {
		p.advance()
		sc.star = true
		return sc, nil
	}

	for {
		switch {
		case p.at(tokVar):
			sc.items = append(sc.items, projectionItem{variable: Variable(p.advance().text)})
			continue
		case p.atPerVariableDistinct():
			p.advance()
			p.advance()
			v := Variable(p.advance().text)
			p.advance()
			sc.items = append(sc.items, projectionItem{variable: v, distinct: true})
			continue
		case p.atPunct("("):
			p.advance()
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
			sc.items = append(sc.items, projectionItem{variable: v, expr: expr})
			continue
		}
		break
	}

	if len(sc.items) == 0 {
		return nil, p.unexpected("expected projection variables or *")
	}
	return sc, nil
}

func (p *parser) parseDatasetClauses() (*Dataset, error) {
	var ds *Dataset
	for p.atWord("FROM") {
		p.advance()
		named := false
		if p.atWord("NAMED") {
			p.advance()
			named = true
		}
		iri, err := p.parseIRI()
		if err != nil {
			return nil, err
		}
		if ds == nil {
			ds = &Dataset{}
		}
		if named {
			ds.Named = append(ds.Named, iri)
		} else {
			ds.Default = append(ds.Default, iri)
		}
	}
	return ds, nil
}

func (p *parser) parseWhereClause(optional bool) (GraphPattern, error) {
	if p.atWord("WHERE") {
		p.advance()
	} else if optional && !p.atPunct("{") {
		return &Bgp{}, nil
	}
	return p.parseGroupGraphPattern()
}

func (p *parser) parseSolutionModifiers() (*modifiers, error) {
	mods := &modifiers{limit: -1}

	if p.atWord("GROUP") {
		p.advance()
		if err := p.expectWord("BY"); err != nil {
			return nil, err
		}
		for p.atGroupCondition() {
			key, err := p.parseGroupCondition()
			if err != nil {
				return nil, err
			}
			mods.groupBy = append(mods.groupBy, key)
		}
		if len(mods.groupBy) == 0 {
			return nil, p.unexpected("expected GROUP BY condition")
		}
	}

	if p.atWord("HAVING") {
		p.advance()
		for p.atConstraint() {
			c, err := p.parseConstraint()
			if err != nil {
				return nil, err
			}
			mods.having = append(mods.having, c)
		}
		if len(mods.having) == 0 {
			return nil, p.unexpected("expected HAVING condition")
		}
	}

	if p.atWord("ORDER") {
		p.advance()
		if err := p.expectWord("BY"); err != nil {
			return nil, err
		}
		for p.atOrderCondition() {
			cond, err := p.parseOrderCondition()
			if err != nil {
				return nil, err
			}
			mods.orderBy = append(mods.orderBy, cond)
		}
		if len(mods.orderBy) == 0 {
			return nil, p.unexpected("expected ORDER BY condition")
		}
	}

	seenLimit, seenOffset := false, false
	for {
		switch {
		case p.atWord("LIMIT") && !seenLimit:
			p.advance()
			n, err := p.parseNonNegativeInt()
			if err != nil {
				return nil, err
			}
			mods.limit, seenLimit = n, true
		case p.atWord("OFFSET") && !seenOffset:
			p.advance()
			n, err := p.parseNonNegativeInt()
			if err != nil {
				return nil, err
			}
			mods.offset, seenOffset = n, true
		default:
			return mods, nil
		}
	}
}

func (p *parser) parseNonNegativeInt() (int64, error) {
	if !p.at(tokInteger) {
		return 0, p.unexpected("expected integer")
	}
	tok := p.advance()
	n, err := strconv.ParseInt(tok.text, 10, 64)
	if err != nil {
		return 0, p.errorAt(tok, "integer out of range")
	}
	return n, nil
}

func (p *parser) parseTrailingValues(mods *modifiers) error {
	if !p.atWord("VALUES") {
		return nil
	}
	values, err := p.parseDataBlock()
	if err != nil {
		return err
	}
	mods.values = values
	return nil
}

// buildSelect wraps the WHERE pattern in the SELECT solution modifiers,
// innermost first: group, having, values, projection expressions,
// order, project, distinct/reduced, slice.
func buildSelect(where GraphPattern, sc *selectClause, mods *modifiers) GraphPattern {
	pattern := applyGrouping(where, mods)

	for _, item := range sc.items {
		if item.expr != "" {
			pattern = &Extend{Inner: pattern, Variable: item.variable, Expr: item.expr}
		}
	}

	if len(mods.orderBy) > 0 {
		pattern = &OrderBy{Inner: pattern, Conditions: mods.orderBy}
	}

	if !sc.star {
		project := &Project{Inner: pattern, Variables: []Variable{}, DistinctVariables: []Variable{}}
		for _, item := range sc.items {
			project.Variables = append(project.Variables, item.variable)
			if item.distinct {
				project.DistinctVariables = append(project.DistinctVariables, item.variable)
			}
		}
		pattern = project
	}

	switch {
	case sc.distinct:
		pattern = &Distinct{Inner: pattern}
	case sc.reduced:
		pattern = &Reduced{Inner: pattern}
	}
	return applySlice(pattern, mods)
}

// buildModifiers applies the solution modifiers of a query form that has
// no projection (ASK, CONSTRUCT, DESCRIBE).
func buildModifiers(where GraphPattern, mods *modifiers) GraphPattern {
	pattern := applyGrouping(where, mods)
	if len(mods.orderBy) > 0 {
		pattern = &OrderBy{Inner: pattern, Conditions: mods.orderBy}
	}
	return applySlice(pattern, mods)
}

func applyGrouping(pattern GraphPattern, mods *modifiers) GraphPattern {
	if len(mods.groupBy) > 0 {
		pattern = &Group{Inner: pattern, Keys: mods.groupBy}
	}
	if len(mods.having) > 0 {
		pattern = &Filter{Exprs: mods.having, Inner: pattern}
	}
	if mods.values != nil {
		pattern = join(pattern, mods.values)
	}
	return pattern
}

func applySlice(pattern GraphPattern, mods *modifiers) GraphPattern {
	if mods.offset > 0 || mods.limit >= 0 {
		return &Slice{Inner: pattern, Offset: mods.offset, Limit: mods.limit}
	}
	return pattern
}

func (p *parser) parseConstructQuery() (*Query, error) {
	p.advance()

	var (
		template []TriplePattern
		where    GraphPattern
		dataset  *Dataset
		err      error
	)
	if p.atPunct("{") {
		if template, err = p.parseConstructTemplate(); err != nil {
			return nil, err
		}
		if dataset, err = p.parseDatasetClauses(); err != nil {
			return nil, err
		}
		if where, err = p.parseWhereClause(false); err != nil {
			return nil, err
		}
	} else {
		if dataset, err = p.parseDatasetClauses(); err != nil {
			return nil, err
		}
		if err := p.expectWord("WHERE"); err != nil {
			return nil, err
		}
		if template, err = p.parseConstructTemplate(); err != nil {
			return nil, err
		}
		where = &Bgp{Triples: template}
	}

	mods, err := p.parseSolutionModifiers()
	if err != nil {
		return nil, err
	}
	if err := p.parseTrailingValues(mods); err != nil {
		return nil, err
	}
	return &Query{
		Form:     FormConstruct,
		Pattern:  buildModifiers(where, mods),
		Template: template,
		Dataset:  dataset,
	}, nil
}

func (p *parser) parseConstructTemplate() ([]TriplePattern, error) {
	if err := p.expectPunct("{"); err != nil {
		return nil, err
	}
	template := []TriplePattern{}
	if !p.atPunct("}") {
		start := p.peek()
		items, err := p.parseTriplesItems()
		if err != nil {
			return nil, err
		}
		for _, it := range items {
			if it.path != nil {
				return nil, p.errorAt(start, "property paths are not allowed in a CONSTRUCT template")
			}
			template = append(template, TriplePattern{Subject: it.subject, Predicate: it.predicate, Object: it.object})
		}
	}
	if err := p.expectPunct("}"); err != nil {
		return nil, err
	}
	return template, nil
}

func (p *parser) parseAskQuery() (*Query, error) {
	p.advance()
	dataset, err := p.parseDatasetClauses()
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
	return &Query{Form: FormAsk, Pattern: buildModifiers(where, mods), Dataset: dataset}, nil
}

func (p *parser) parseDescribeQuery() (*Query, error) {
	p.advance()

	describe := []Term{}
	if p.atPunct("*") {
		p.advance()
	} else {
		for p.at(tokVar) || p.isIRIStart() {
			t, err := p.parseVarOrIRI()
			if err != nil {
				return nil, err
			}
			describe = append(describe, t)
		}
		if len(describe) == 0 {
			return nil, p.unexpected("expected variable, IRI or * after DESCRIBE")
		}
	}

	dataset, err := p.parseDatasetClauses()
	if err != nil {
		return nil, err
	}
	where, err := p.parseWhereClause(true)
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
	return &Query{
		Form:     FormDescribe,
		Pattern:  buildModifiers(where, mods),
		Describe: describe,
		Dataset:  dataset,
	}, nil
}

package sparql

import (
	"strings"
)

// keywords that end a HAVING or ORDER BY condition list even when
// followed by an opening parenthesis.
var clauseKeywords = map[string]bool{
	"GROUP":  true,
	"HAVING": true,
	"ORDER":  true,
	"LIMIT":  true,
	"OFFSET": true,
	"VALUES": true,
}

func (p *parser) atConstraint() bool {
	tok := p.peek()
	next := p.peekAt(1)
	switch tok.kind {
	case tokPunct:
		return tok.text == "("
	case tokWord:
		if clauseKeywords[strings.ToUpper(tok.text)] {
			return false
		}
		return isPunct(next, "(") || isWord(tok, "EXISTS") || isWord(tok, "NOT")
	case tokIRI, tokPName:
		return isPunct(next, "(")
	}
	return false
}

func (p *parser) atGroupCondition() bool {
	return p.at(tokVar) || p.atConstraint()
}

func (p *parser) atOrderCondition() bool {
	return p.atWord("ASC") || p.atWord("DESC") || p.at(tokVar) || p.atConstraint()
}

// parseConstraint captures a bracketted expression, a built-in call, an
// EXISTS/NOT EXISTS pattern or a function call.
func (p *parser) parseConstraint() (Expression, error) {
	var toks []token
	tok := p.peek()
	switch {
	case isPunct(tok, "("):
		group, err := p.captureBalanced()
		if err != nil {
			return "", err
		}
		toks = group
	case isWord(tok, "NOT") || isWord(tok, "EXISTS"):
		toks = append(toks, p.advance())
		if isWord(tok, "NOT") {
			if !p.atWord("EXISTS") {
				return "", p.unexpected("expected EXISTS after NOT")
			}
			toks = append(toks, p.advance())
		}
		if !p.atPunct("{") {
			return "", p.unexpected(`expected "{" after EXISTS`)
		}
		group, err := p.captureBalanced()
		if err != nil {
			return "", err
		}
		toks = append(toks, group...)
	case tok.kind == tokWord || tok.kind == tokIRI || tok.kind == tokPName:
		toks = append(toks, p.advance())
		if !p.atPunct("(") {
			return "", p.unexpected(`expected "(" in function call`)
		}
		group, err := p.captureBalanced()
		if err != nil {
			return "", err
		}
		toks = append(toks, group...)
	default:
		return "", p.unexpected("expected constraint")
	}
	return p.formatExpression(toks)
}

func (p *parser) parseGroupCondition() (Expression, error) {
	if p.at(tokVar) {
		return Expression("?" + p.advance().text), nil
	}
	if !p.atPunct("(") {
		return p.parseConstraint()
	}

	p.advance()
	toks, err := p.captureUntil(func() bool { return p.atWord("AS") || p.atPunct(")") })
	if err != nil {
		return "", err
	}
	expr, err := p.formatExpression(toks)
	if err != nil {
		return "", err
	}
	text := "(" + string(expr)
	if p.atWord("AS") {
		p.advance()
		if !p.at(tokVar) {
			return "", p.unexpected("expected variable after AS")
		}
		text += " AS ?" + p.advance().text
	}
	if err := p.expectPunct(")"); err != nil {
		return "", err
	}
	return Expression(text + ")"), nil
}

func (p *parser) parseOrderCondition() (OrderCondition, error) {
	switch {
	case p.atWord("ASC") || p.atWord("DESC"):
		desc := p.atWord("DESC")
		p.advance()
		if !p.atPunct("(") {
			return OrderCondition{}, p.unexpected(`expected "(" after ASC or DESC`)
		}
		expr, err := p.parseConstraint()
		if err != nil {
			return OrderCondition{}, err
		}
		return OrderCondition{Expr: expr, Descending: desc}, nil
	case p.at(tokVar):
		return OrderCondition{Expr: Expression("?" + p.advance().text)}, nil
	default:
		expr, err := p.parseConstraint()
		if err != nil {
			return OrderCondition{}, err
		}
		return OrderCondition{Expr: expr}, nil
	}
}

// captureUntilAs collects expression tokens up to a top-level AS, which
// is consumed.
func (p *parser) captureUntilAs() (Expression, error) {
	toks, err := p.captureUntil(func() bool { return p.atWord("AS") })
	if err != nil {
		return "", err
	}
	if len(toks) == 0 {
		return "", p.unexpected("expected expression")
	}
	p.advance()
	return p.formatExpression(toks)
}

// captureUntil collects tokens until stop reports true at bracket depth
// zero. The stopping token is not consumed.
func (p *parser) captureUntil(stop func() bool) ([]token, error) {
	var toks []token
	depth := 0
	for {
		if depth == 0 && stop() {
			return toks, nil
		}
		tok := p.peek()
		switch {
		case tok.kind == tokEOF:
			return nil, p.unexpected("unterminated expression")
		case isOpener(tok):
			depth++
		case isCloser(tok):
			depth--
			if depth < 0 {
				return nil, p.unexpected("unbalanced brackets in expression")
			}
		}
		toks = append(toks, p.advance())
	}
}

// captureBalanced consumes an opening bracket through its matching
// closing bracket.
func (p *parser) captureBalanced() ([]token, error) {
	var toks []token
	depth := 0
	for {
		tok := p.peek()
		switch {
		case tok.kind == tokEOF:
			return nil, p.unexpected("unbalanced brackets")
		case isOpener(tok):
			depth++
		case isCloser(tok):
			depth--
		}
		toks = append(toks, p.advance())
		if depth == 0 {
			return toks, nil
		}
	}
}

func isOpener(tok token) bool {
	return tok.kind == tokPunct && (tok.text == "(" || tok.text == "{" || tok.text == "[")
}

func isCloser(tok token) bool {
	return tok.kind == tokPunct && (tok.text == ")" || tok.text == "}" || tok.text == "]")
}

// formatExpression renders tokens canonically: IRIs expanded, keywords
// upper-cased, single spaces except inside brackets, before commas and
// between a function name and its argument list.
func (p *parser) formatExpression(toks []token) (Expression, error) {
	var b strings.Builder
	var prev token
	for i, tok := range toks {
		text, err := p.tokenText(tok)
		if err != nil {
			return "", err
		}
		if i > 0 && needsSpace(prev, tok) {
			b.WriteByte(' ')
		}
		b.WriteString(text)
		prev = tok
	}
	return Expression(b.String()), nil
}

func (p *parser) tokenText(tok token) (string, error) {
	switch tok.kind {
	case tokIRI:
		return p.resolve(tok.text).String(), nil
	case tokPName:
		iri, err := p.expandPName(tok)
		if err != nil {
			return "", err
		}
		return iri.String(), nil
	case tokVar:
		return "?" + tok.text, nil
	case tokBlank:
		return "_:" + tok.text, nil
	case tokString:
		return quoteLiteral(tok.text), nil
	case tokLangTag:
		return "@" + lowerASCII(tok.text), nil
	case tokWord:
		if isWord(tok, "true") || isWord(tok, "false") || tok.text == "a" {
			return lowerASCII(tok.text), nil
		}
		return strings.ToUpper(tok.text), nil
	default:
		return tok.text, nil
	}
}

func needsSpace(prev, cur token) bool {
	switch {
	case isPunct(prev, "(") || isPunct(prev, "[") || isPunct(prev, "!") || isPunct(prev, "^^"):
		return false
	case isPunct(cur, ")") || isPunct(cur, "]") || isPunct(cur, ",") || isPunct(cur, "^^"):
		return false
	case cur.kind == tokLangTag:
		return false
	case isPunct(cur, "(") && (prev.kind == tokWord || prev.kind == tokIRI || prev.kind == tokPName):
		return false
	}
	return true
}

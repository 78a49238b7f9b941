package sparql

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIRI
	tokPName
	tokVar
	tokBlank
	tokString
	tokLangTag
	tokInteger
	tokDecimal
	tokDouble
	tokWord
	tokPunct
)

func (k tokenKind) String() string {
	switch k {
	case tokEOF:
		return "end of input"
	case tokIRI:
		return "IRI"
	case tokPName:
		return "prefixed name"
	case tokVar:
		return "variable"
	case tokBlank:
		return "blank node"
	case tokString:
		return "string"
	case tokLangTag:
		return "language tag"
	case tokInteger, tokDecimal, tokDouble:
		return "number"
	case tokWord:
		return "keyword"
	default:
		return "punctuation"
	}
}

// token is a lexeme. For tokPName, prefix holds the part before the
// colon and text the local part. For tokString, text is the unescaped
// value. For tokIRI, text excludes the angle brackets.
type token struct {
	kind   tokenKind
	text   string
	prefix string
	pos    int
}

type lexer struct {
	src  string
	pos  int
	toks []token
}

// tokenize splits src into tokens, ending with a tokEOF token.
func tokenize(src string) ([]token, error) {
	lx := &lexer{src: src}
	if pos := invalidUTF8(src); pos >= 0 {
		return nil, lx.errorf(pos, "invalid UTF-8 encoding")
	}
	for {
		tok, err := lx.next()
		if err != nil {
			return nil, err
		}
		lx.toks = append(lx.toks, tok)
		if tok.kind == tokEOF {
			return lx.toks, nil
		}
	}
}

// invalidUTF8 returns the offset of the first byte that is not part of a
// valid UTF-8 sequence, or -1.
func invalidUTF8(src string) int {
	for i := 0; i < len(src); {
		r, size := utf8.DecodeRuneInString(src[i:])
		if r == utf8.RuneError && size == 1 {
			return i
		}
		i += size
	}
	return -1
}

func (lx *lexer) errorf(pos int, format string, args ...any) error {
	return newSyntaxError(lx.src, pos, fmt.Sprintf(format, args...))
}

func newSyntaxError(src string, pos int, msg string) *SyntaxError {
	if pos > len(src) {
		pos = len(src)
	}
	line := 1 + strings.Count(src[:pos], "\n")
	lineStart := strings.LastIndexByte(src[:pos], '\n') + 1
	return &SyntaxError{
		Pos:     pos,
		Line:    line,
		Column:  utf8.RuneCountInString(src[lineStart:pos]) + 1,
		Message: msg,
	}
}

func (lx *lexer) peekByte(offset int) byte {
	if lx.pos+offset < len(lx.src) {
		return lx.src[lx.pos+offset]
	}
	return 0
}

func (lx *lexer) skipSpaceAndComments() {
	for lx.pos < len(lx.src) {
		c := lx.src[lx.pos]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			lx.pos++
		case c == '#':
			for lx.pos < len(lx.src) && lx.src[lx.pos] != '\n' {
				lx.pos++
			}
		default:
			return
		}
	}
}

func (lx *lexer) next() (token, error) {
	lx.skipSpaceAndComments()
	start := lx.pos
	if lx.pos >= len(lx.src) {
		return token{kind: tokEOF, pos: start}, nil
	}

	c := lx.src[lx.pos]
	switch {
	case c == '<':
		if iri, ok := lx.scanIRIRef(); ok {
			return token{kind: tokIRI, text: iri, pos: start}, nil
		}
		return lx.punct(start, "<=", "<")
	case c == '?' || c == '$':
		if name := lx.scanVarName(lx.pos + 1); name != "" {
			lx.pos += 1 + len(name)
			return token{kind: tokVar, text: name, pos: start}, nil
		}
		if c == '$' {
			return token{}, lx.errorf(start, "expected variable name after $")
		}
		lx.pos++
		return token{kind: tokPunct, text: "?", pos: start}, nil
	case c == '"' || c == '\'':
		return lx.scanString(start)
	case c == '@':
		return lx.scanLangTag(start)
	case c >= '0' && c <= '9':
		return lx.scanNumber(start), nil
	case c == '.' && isDigit(lx.peekByte(1)) && lx.prevAllowsNumber():
		return lx.scanNumber(start), nil
	case c == '_' && lx.peekByte(1) == ':':
		lx.pos += 2
		label := lx.scanNameChars(lx.pos, true)
		if label == "" {
			return token{}, lx.errorf(start, "expected blank node label after _:")
		}
		lx.pos += len(label)
		return token{kind: tokBlank, text: label, pos: start}, nil
	case c == ':' || isNameStart(lx.runeAt(lx.pos)):
		return lx.scanWordOrPName(start)
	case c == '^':
		return lx.punct(start, "^^", "^")
	case c == '!':
		return lx.punct(start, "!=", "!")
	case c == '>':
		return lx.punct(start, ">=", ">")
	case c == '&':
		if lx.peekByte(1) == '&' {
			return lx.punct(start, "&&")
		}
	case c == '|':
		return lx.punct(start, "||", "|")
	case strings.IndexByte("{}()[].;,*/+-=", c) >= 0:
		lx.pos++
		return token{kind: tokPunct, text: string(c), pos: start}, nil
	}
	r, _ := utf8.DecodeRuneInString(lx.src[lx.pos:])
	return token{}, lx.errorf(start, "unexpected character %q", r)
}

// punct consumes the first candidate that matches at the current position.
func (lx *lexer) punct(start int, candidates ...string) (token, error) {
	for _, cand := range candidates {
		if strings.HasPrefix(lx.src[lx.pos:], cand) {
			lx.pos += len(cand)
			return token{kind: tokPunct, text: cand, pos: start}, nil
		}
	}
	return token{}, lx.errorf(start, "unexpected character %q", lx.src[lx.pos])
}

// prevAllowsNumber reports whether a leading-dot decimal may start here.
// After a term a dot ends the triple instead.
func (lx *lexer) prevAllowsNumber() bool {
	if len(lx.toks) == 0 {
		return true
	}
	prev := lx.toks[len(lx.toks)-1]
	if prev.kind != tokPunct {
		return false
	}
	return prev.text != ")" && prev.text != "]" && prev.text != "}"
}

func (lx *lexer) scanIRIRef() (string, bool) {
	for i := lx.pos + 1; i < len(lx.src); i++ {
		c := lx.src[i]
		switch {
		case c == '>':
			iri := lx.src[lx.pos+1 : i]
			lx.pos = i + 1
			return iri, true
		case c <= ' ' || strings.IndexByte("<\"{}|^`\\", c) >= 0:
			return "", false
		}
	}
	return "", false
}

func (lx *lexer) runeAt(pos int) rune {
	if pos >= len(lx.src) {
		return utf8.RuneError
	}
	r, _ := utf8.DecodeRuneInString(lx.src[pos:])
	return r
}

func (lx *lexer) scanVarName(pos int) string {
	end := pos
	for end < len(lx.src) {
		r, size := utf8.DecodeRuneInString(lx.src[end:])
		if !(isNameStart(r) || unicode.IsDigit(r) || r == '_' || (end > pos && r == '·')) {
			break
		}
		end += size
	}
	return lx.src[pos:end]
}

// scanNameChars scans PN_CHARS with inner dots. Trailing dots are not
// part of the name. When allowDigitStart is false the first rune must
// be a letter or underscore.
func (lx *lexer) scanNameChars(pos int, allowDigitStart bool) string {
	end := pos
	for end < len(lx.src) {
		r, size := utf8.DecodeRuneInString(lx.src[end:])
		ok := isNameStart(r) || r == '_' || unicode.IsDigit(r)
		if end > pos {
			ok = ok || r == '-' || r == '.' || r == '·'
		} else if !allowDigitStart && unicode.IsDigit(r) {
			ok = false
		}
		if !ok {
			break
		}
		end += size
	}
	for end > pos && lx.src[end-1] == '.' {
		end--
	}
	return lx.src[pos:end]
}

// scanWordOrPName reads a keyword, a prefixed name or a PNAME_NS.
func (lx *lexer) scanWordOrPName(start int) (token, error) {
	prefix := lx.scanNameChars(lx.pos, false)
	if lx.pos+len(prefix) < len(lx.src) && lx.src[lx.pos+len(prefix)] == ':' {
		lx.pos += len(prefix) + 1
		local, err := lx.scanLocalName()
		if err != nil {
			return token{}, err
		}
		return token{kind: tokPName, prefix: prefix, text: local, pos: start}, nil
	}

	end := lx.pos
	for end < len(lx.src) {
		r, size := utf8.DecodeRuneInString(lx.src[end:])
		if !(isNameStart(r) || r == '_' || unicode.IsDigit(r)) {
			break
		}
		end += size
	}
	word := lx.src[lx.pos:end]
	lx.pos = end
	return token{kind: tokWord, text: word, pos: start}, nil
}

// scanLocalName reads PN_LOCAL: name characters, colons, %HH and
// backslash escapes. Trailing dots end the name.
func (lx *lexer) scanLocalName() (string, error) {
	var b strings.Builder
	for lx.pos < len(lx.src) {
		r, size := utf8.DecodeRuneInString(lx.src[lx.pos:])
		switch {
		case r == '\\':
			if lx.pos+1 >= len(lx.src) || strings.IndexByte("_~.-!$&'()*+,;=/?#@%", lx.src[lx.pos+1]) < 0 {
				return "", lx.errorf(lx.pos, "invalid escape in local name")
			}
			b.WriteByte(lx.src[lx.pos+1])
			lx.pos += 2
			continue
		case r == '%':
			if lx.pos+2 >= len(lx.src) || !isHex(lx.src[lx.pos+1]) || !isHex(lx.src[lx.pos+2]) {
				return "", lx.errorf(lx.pos, "invalid percent encoding in local name")
			}
			b.WriteString(lx.src[lx.pos : lx.pos+3])
			lx.pos += 3
			continue
		case r == '.':
			if !lx.localContinuesAfterDot() {
				return b.String(), nil
			}
		case isNameStart(r) || r == '_' || r == ':' || r == '-' || r == '·' || unicode.IsDigit(r):
		default:
			return b.String(), nil
		}
		b.WriteRune(r)
		lx.pos += size
	}
	return b.String(), nil
}

func (lx *lexer) localContinuesAfterDot() bool {
	i := lx.pos
	for i < len(lx.src) && lx.src[i] == '.' {
		i++
	}
	if i >= len(lx.src) {
		return false
	}
	r, _ := utf8.DecodeRuneInString(lx.src[i:])
	return isNameStart(r) || r == '_' || r == ':' || r == '-' || r == '%' || r == '\\' || unicode.IsDigit(r)
}

func (lx *lexer) scanString(start int) (token, error) {
	quote := lx.src[lx.pos]
	long := strings.HasPrefix(lx.src[lx.pos:], strings.Repeat(string(quote), 3))
	if long {
		lx.pos += 3
	} else {
		lx.pos++
	}

	var b strings.Builder
	for lx.pos < len(lx.src) {
		c := lx.src[lx.pos]
		switch {
		case long && strings.HasPrefix(lx.src[lx.pos:], strings.Repeat(string(quote), 3)):
			lx.pos += 3
			return token{kind: tokString, text: b.String(), pos: start}, nil
		case !long && c == quote:
			lx.pos++
			return token{kind: tokString, text: b.String(), pos: start}, nil
		case !long && (c == '\n' || c == '\r'):
			return token{}, lx.errorf(lx.pos, "newline in string literal")
		case c == '\\':
			r, n, err := lx.unescape(lx.pos)
			if err != nil {
				return token{}, err
			}
			b.WriteRune(r)
			lx.pos += n
		default:
			r, size := utf8.DecodeRuneInString(lx.src[lx.pos:])
			b.WriteRune(r)
			lx.pos += size
		}
	}
	return token{}, lx.errorf(start, "unterminated string literal")
}

func (lx *lexer) unescape(pos int) (rune, int, error) {
	if pos+1 >= len(lx.src) {
		return 0, 0, lx.errorf(pos, "unterminated escape")
	}
	switch lx.src[pos+1] {
	case 't':
		return '\t', 2, nil
	case 'b':
		return '\b', 2, nil
	case 'n':
		return '\n', 2, nil
	case 'r':
		return '\r', 2, nil
	case 'f':
		return '\f', 2, nil
	case '"':
		return '"', 2, nil
	case '\'':
		return '\'', 2, nil
	case '\\':
		return '\\', 2, nil
	case 'u':
		return lx.unescapeHex(pos, 4)
	case 'U':
		return lx.unescapeHex(pos, 8)
	default:
		return 0, 0, lx.errorf(pos, "invalid escape \\%c", lx.src[pos+1])
	}
}

func (lx *lexer) unescapeHex(pos, digits int) (rune, int, error) {
	if pos+2+digits > len(lx.src) {
		return 0, 0, lx.errorf(pos, "truncated unicode escape")
	}
	var r rune
	for _, c := range []byte(lx.src[pos+2 : pos+2+digits]) {
		if !isHex(c) {
			return 0, 0, lx.errorf(pos, "invalid unicode escape")
		}
		r = r<<4 | rune(hexValue(c))
	}
	if !utf8.ValidRune(r) {
		return 0, 0, lx.errorf(pos, "unicode escape is not a valid code point")
	}
	return r, 2 + digits, nil
}

func (lx *lexer) scanLangTag(start int) (token, error) {
	lx.pos++
	end := lx.pos
	for end < len(lx.src) && isAlpha(lx.src[end]) {
		end++
	}
	if end == lx.pos {
		return token{}, lx.errorf(start, "expected language tag after @")
	}
	for end < len(lx.src) && lx.src[end] == '-' {
		j := end + 1
		for j < len(lx.src) && (isAlpha(lx.src[j]) || isDigit(lx.src[j])) {
			j++
		}
		if j == end+1 {
			break
		}
		end = j
	}
	tag := lx.src[lx.pos:end]
	lx.pos = end
	return token{kind: tokLangTag, text: tag, pos: start}, nil
}

func (lx *lexer) scanNumber(start int) token {
	kind := tokInteger
	for lx.pos < len(lx.src) && isDigit(lx.src[lx.pos]) {
		lx.pos++
	}
	if lx.pos < len(lx.src) && lx.src[lx.pos] == '.' && isDigit(lx.peekByte(1)) {
		kind = tokDecimal
		lx.pos++
		for lx.pos < len(lx.src) && isDigit(lx.src[lx.pos]) {
			lx.pos++
		}
	}
	if c := lx.peekByte(0); c == 'e' || c == 'E' {
		j := lx.pos + 1
		if j < len(lx.src) && (lx.src[j] == '+' || lx.src[j] == '-') {
			j++
		}
		if j < len(lx.src) && isDigit(lx.src[j]) {
			kind = tokDouble
			lx.pos = j
			for lx.pos < len(lx.src) && isDigit(lx.src[lx.pos]) {
				lx.pos++
			}
		}
	}
	return token{kind: kind, text: lx.src[start:lx.pos], pos: start}
}

func isNameStart(r rune) bool {
	return r != utf8.RuneError && unicode.IsLetter(r)
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isAlpha(c byte) bool { return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') }

func isHex(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func hexValue(c byte) byte {
	switch {
	case isDigit(c):
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	default:
		return c - 'A' + 10
	}
}

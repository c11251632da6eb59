package lexer

import (
	"strings"

	"github.com/josbeir/tree-sitter-latte/syntax"
)

// Lexer tokenizes the expression language inside a tag. It works on the
// byte range [pos, end) of the full template so token spans are absolute.
type Lexer struct {
	source string
	pos    int
	start  int
	end    int
}

// New creates a Lexer over source[start:end].
func New(source string, start, end int) *Lexer {
	if end > len(source) {
		end = len(source)
	}
	return &Lexer{source: source, pos: start, end: end}
}

// Tokenize returns all tokens of source[start:end], terminated by TokenEOF.
// Error tokens are included; scanning continues after them.
func Tokenize(source string, start, end int) []Token {
	l := New(source, start, end)
	var tokens []Token
	for {
		tok := l.Next()
		tokens = append(tokens, tok)
		if tok.Type == TokenEOF {
			return tokens
		}
	}
}

// Pos returns the current offset.
func (l *Lexer) Pos() int {
	return l.pos
}

// Next returns the next token. At the end of the range it keeps returning
// TokenEOF.
func (l *Lexer) Next() Token {
	l.skipWhitespace()
	l.markStart()
	if l.atEnd() {
		return l.makeToken(TokenEOF)
	}

	ch := l.source[l.pos]
	switch {
	case ch == '$':
		if l.pos+1 < l.end && IsIdentStart(l.source[l.pos+1]) {
			l.advance(1)
			n := identLen(l.source[l.pos:l.end])
			l.advance(n)
			tok := l.makeToken(TokenVariable)
			tok.Value = l.source[l.start+1 : l.pos]
			return tok
		}
		l.advance(1)
		return l.errorToken(syntax.UnexpectedToken)

	case IsIdentStart(ch) || (ch == '\\' && l.pos+1 < l.end && IsIdentStart(l.source[l.pos+1])):
		return l.lexIdent()

	case isDigit(ch):
		return l.lexNumber()

	case ch == '\'' || ch == '"':
		return l.lexString(ch)
	}

	rest := l.rest()
	for _, op := range operators {
		if strings.HasPrefix(rest, op.text) {
			l.advance(len(op.text))
			return l.makeToken(op.typ)
		}
	}

	l.advance(1)
	return l.errorToken(syntax.UnexpectedToken)
}

// lexIdent lexes an identifier including `\`-separated namespace parts.
func (l *Lexer) lexIdent() Token {
	for {
		if l.source[l.pos] == '\\' {
			l.advance(1)
		}
		l.advance(identLen(l.rest()))
		if l.pos+1 < l.end && l.source[l.pos] == '\\' && IsIdentStart(l.source[l.pos+1]) {
			continue
		}
		break
	}
	return l.makeToken(TokenIdent)
}

// lexNumber lexes a number literal. Forms are tried from the most specific
// to the bare integer so a float is never cut at its decimal point.
func (l *Lexer) lexNumber() Token {
	rest := l.rest()
	for _, scan := range []func(string) int{scanFloat, scanScientific, scanHex, scanBinary, scanOctal, scanInteger} {
		if n := scan(rest); n > 0 {
			l.advance(n)
			return l.makeToken(TokenNumber)
		}
	}
	// unreachable: scanInteger matches any leading digit
	l.advance(1)
	return l.makeToken(TokenNumber)
}

// lexString lexes a quoted string. A raw newline ends an unterminated
// string; an escaped one is allowed.
func (l *Lexer) lexString(quote byte) Token {
	l.advance(1)
	for !l.atEnd() {
		ch := l.source[l.pos]
		switch {
		case ch == '\\':
			l.advance(2)
		case ch == quote:
			l.advance(1)
			return l.makeToken(TokenString)
		case ch == '\n':
			return l.errorToken(syntax.UnterminatedLiteral)
		default:
			l.advance(1)
		}
	}
	return l.errorToken(syntax.UnterminatedLiteral)
}

// Helper methods

func (l *Lexer) atEnd() bool {
	return l.pos >= l.end
}

func (l *Lexer) rest() string {
	if l.pos >= l.end {
		return ""
	}
	return l.source[l.pos:l.end]
}

func (l *Lexer) advance(n int) {
	l.pos += n
	if l.pos > l.end {
		l.pos = l.end
	}
}

func (l *Lexer) markStart() {
	l.start = l.pos
}

func (l *Lexer) span() Span {
	return Span{Start: l.start, End: l.pos}
}

func (l *Lexer) makeToken(typ TokenType) Token {
	return Token{
		Type:  typ,
		Value: l.source[l.start:l.pos],
		Span:  l.span(),
	}
}

func (l *Lexer) errorToken(kind syntax.ErrorKind) Token {
	tok := l.makeToken(TokenError)
	tok.Kind = kind
	return tok
}

func (l *Lexer) skipWhitespace() {
	for !l.atEnd() && isSpace(l.source[l.pos]) {
		l.pos++
	}
}

func scanDigits(s string, i int, ok func(byte) bool) int {
	for i < len(s) && ok(s[i]) {
		i++
	}
	return i
}

func scanExponent(s string, i int) int {
	if i >= len(s) || (s[i] != 'e' && s[i] != 'E') {
		return 0
	}
	j := i + 1
	if j < len(s) && (s[j] == '+' || s[j] == '-') {
		j++
	}
	k := scanDigits(s, j, isDigit)
	if k == j {
		return 0
	}
	return k
}

// [0-9]+\.[0-9]+([eE][+-]?[0-9]+)?
func scanFloat(s string) int {
	i := scanDigits(s, 0, isDigit)
	if i == 0 || i+1 >= len(s) || s[i] != '.' || !isDigit(s[i+1]) {
		return 0
	}
	i = scanDigits(s, i+1, isDigit)
	if e := scanExponent(s, i); e > 0 {
		return e
	}
	return i
}

// [0-9]+[eE][+-]?[0-9]+
func scanScientific(s string) int {
	i := scanDigits(s, 0, isDigit)
	if i == 0 {
		return 0
	}
	return scanExponent(s, i)
}

func scanPrefixed(s string, prefix byte, ok func(byte) bool) int {
	if len(s) < 3 || s[0] != '0' || (s[1] != prefix && s[1] != prefix-'a'+'A') {
		return 0
	}
	i := scanDigits(s, 2, ok)
	if i == 2 {
		return 0
	}
	return i
}

func scanHex(s string) int    { return scanPrefixed(s, 'x', isHexDigit) }
func scanBinary(s string) int { return scanPrefixed(s, 'b', func(c byte) bool { return c == '0' || c == '1' }) }
func scanOctal(s string) int  { return scanPrefixed(s, 'o', func(c byte) bool { return c >= '0' && c <= '7' }) }
func scanInteger(s string) int {
	return scanDigits(s, 0, isDigit)
}

func identLen(s string) int {
	if s == "" || !IsIdentStart(s[0]) {
		return 0
	}
	i := 1
	for i < len(s) && IsIdentPart(s[i]) {
		i++
	}
	return i
}

// ScanIdent returns the length of the identifier starting at src[pos], or 0.
func ScanIdent(src string, pos int) int {
	if pos >= len(src) {
		return 0
	}
	return identLen(src[pos:])
}

// IsIdentStart reports whether ch may start an identifier. Bytes >= 0x80
// are accepted so UTF-8 names pass through unchanged.
func IsIdentStart(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_' || ch >= 0x80
}

// IsIdentPart reports whether ch may continue an identifier.
func IsIdentPart(ch byte) bool {
	return IsIdentStart(ch) || isDigit(ch)
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isHexDigit(ch byte) bool {
	return isDigit(ch) || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')
}

func isSpace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r' || ch == '\f'
}

// IsSpace reports whether ch is template whitespace.
func IsSpace(ch byte) bool {
	return isSpace(ch)
}

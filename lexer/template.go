package lexer

import (
	"strings"

	"github.com/josbeir/tree-sitter-latte/syntax"
)

// ScanTemplate classifies the template construct starting at src[pos].
//
// Delimiter tokens ({, {=, {$, {/) cover only the delimiter itself. Comments
// cover the whole `{* ... *}`. Text runs never start or end with whitespace;
// whitespace between constructs is returned as TokenWhitespace. A `{` that
// does not open a tag is ordinary text; a stray `>` is a one byte TokenText.
func ScanTemplate(src string, pos int) Token {
	if pos >= len(src) {
		return Token{Type: TokenEOF, Span: Span{Start: len(src), End: len(src)}}
	}

	ch := src[pos]
	switch {
	case isSpace(ch):
		end := pos + 1
		for end < len(src) && isSpace(src[end]) {
			end++
		}
		return templateToken(src, TokenWhitespace, pos, end)

	case ch == '{' && IsTagStart(src, pos):
		return scanBrace(src, pos)

	case ch == '<' || ch == '&':
		return templateToken(src, TokenMarkup, pos, pos+1)

	case ch == '>':
		return templateToken(src, TokenText, pos, pos+1)
	}

	end := pos
	last := pos
	for end < len(src) {
		c := src[end]
		if c == '<' || c == '>' || c == '&' || (c == '{' && IsTagStart(src, end)) {
			break
		}
		end++
		if !isSpace(c) {
			last = end
		}
	}
	return templateToken(src, TokenText, pos, last)
}

func scanBrace(src string, pos int) Token {
	switch src[pos+1] {
	case '*':
		idx := strings.Index(src[pos+2:], "*}")
		if idx < 0 {
			tok := templateToken(src, TokenError, pos, len(src))
			tok.Kind = syntax.UnterminatedLiteral
			return tok
		}
		return templateToken(src, TokenComment, pos, pos+2+idx+2)
	case '=':
		return templateToken(src, TokenPrintOpen, pos, pos+2)
	case '$':
		return templateToken(src, TokenVarOpen, pos, pos+2)
	case '/':
		return templateToken(src, TokenCloseOpen, pos, pos+2)
	}
	return templateToken(src, TokenTagOpen, pos, pos+1)
}

func templateToken(src string, typ TokenType, start, end int) Token {
	return Token{Type: typ, Value: src[start:end], Span: Span{Start: start, End: end}}
}

// IsTagStart reports whether the `{` at src[pos] opens a Latte tag. Like
// Latte itself, a brace followed by whitespace, `}` or the end of input is
// plain text, which keeps inline CSS and JavaScript readable.
func IsTagStart(src string, pos int) bool {
	if pos+1 >= len(src) || src[pos] != '{' {
		return false
	}
	next := src[pos+1]
	return !isSpace(next) && next != '}'
}

// ScanTagEnd finds the `}` closing a tag whose interior starts at pos and
// returns the offset just past it. Quoted strings and nested braces are
// skipped. When a quote is never closed the first `}` after pos is used and
// UnterminatedLiteral is reported; when there is no `}` at all the result is
// len(src) with UnexpectedToken.
func ScanTagEnd(src string, pos int) (int, syntax.ErrorKind) {
	depth := 0
	for i := pos; i < len(src); i++ {
		switch c := src[i]; c {
		case '\'', '"':
			end := scanQuoted(src, i)
			if end < 0 {
				if idx := strings.IndexByte(src[pos:], '}'); idx >= 0 {
					return pos + idx + 1, syntax.UnterminatedLiteral
				}
				return len(src), syntax.UnterminatedLiteral
			}
			i = end - 1
		case '{':
			depth++
		case '}':
			if depth == 0 {
				return i + 1, 0
			}
			depth--
		}
	}
	return len(src), syntax.UnexpectedToken
}

// ScanRawEnd returns the offset just past the first `}` at or after pos that
// is not preceded by a backslash. No quote or brace awareness is applied.
func ScanRawEnd(src string, pos int) (int, bool) {
	for i := pos; i < len(src); i++ {
		if src[i] == '}' && (i == 0 || src[i-1] != '\\') {
			return i + 1, true
		}
	}
	return len(src), false
}

// scanQuoted returns the offset just past the quote closing the string that
// starts at src[pos], or -1.
func scanQuoted(src string, pos int) int {
	quote := src[pos]
	for i := pos + 1; i < len(src); i++ {
		switch src[i] {
		case '\\':
			i++
		case quote:
			return i + 1
		}
	}
	return -1
}

// ScanRawArgs returns the end of a raw argument run starting at pos within
// [pos, end): it stops at the first `|` outside quotes and brackets.
func ScanRawArgs(src string, pos, end int) int {
	depth := 0
	for i := pos; i < end; i++ {
		switch c := src[i]; c {
		case '\'', '"':
			q := scanQuoted(src[:end], i)
			if q < 0 {
				return end
			}
			i = q - 1
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			if depth > 0 {
				depth--
			}
		case '|':
			if depth == 0 {
				if i+1 < end && src[i+1] == '|' {
					i++
					continue
				}
				return i
			}
		}
	}
	return end
}

// TrimSpan shrinks [start, end) so it neither starts nor ends with
// whitespace.
func TrimSpan(src string, start, end int) (int, int) {
	for start < end && isSpace(src[start]) {
		start++
	}
	for end > start && isSpace(src[end-1]) {
		end--
	}
	return start, end
}

// Package markup scans the HTML side of a Latte template: tags, comments,
// doctypes, character references and raw text elements. It wraps the
// golang.org/x/net/html tokenizer and adds byte spans for attributes and
// for Latte tags embedded in attribute values.
package markup

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/josbeir/tree-sitter-latte/syntax"
)

// TokenType identifies a markup construct.
type TokenType int

const (
	StartTag TokenType = iota
	EndTag
	Doctype
	Comment
	Entity
	RawElement
)

func (t TokenType) String() string {
	switch t {
	case StartTag:
		return "StartTag"
	case EndTag:
		return "EndTag"
	case Doctype:
		return "Doctype"
	case Comment:
		return "Comment"
	case Entity:
		return "Entity"
	case RawElement:
		return "RawElement"
	}
	return "TokenType(?)"
}

// Part is a literal run or a `{...}` Latte tag inside an attribute value.
type Part struct {
	Span  syntax.Span
	Text  string
	Latte bool
}

// Value is an attribute value. Span includes the quotes; Quote is 0 for
// unquoted values.
type Value struct {
	Span  syntax.Span
	Quote byte
	Parts []Part
}

// Attr is one attribute of a start tag. A Latte tag standing in attribute
// position, as in `<div {if $x}hidden{/if}>`, is reported as an attribute
// whose name is the raw tag.
type Attr struct {
	Name     string
	NameSpan syntax.Span
	Value    *Value
}

// Token is one markup construct.
type Token struct {
	Type TokenType
	// Name is the lower-cased tag name of tags and raw elements.
	Name string
	Span syntax.Span
	// Data is the comment or doctype text, or the decoded entity.
	Data        string
	Attrs       []Attr
	SelfClosing bool
	Void        bool

	// Parts of a raw element. EndTag is empty when the element is not
	// closed before the end of input.
	StartTag syntax.Span
	Content  syntax.Span
	EndTag   syntax.Span
}

// Scanner scans markup tokens.
type Scanner struct{}

// NewScanner returns a Scanner.
func NewScanner() *Scanner {
	return &Scanner{}
}

// ScanMarkup scans the markup construct starting at src[pos], which must
// be `<` or `&`. It returns false when the bytes there are not markup, for
// example a lone `<` in text.
func (s *Scanner) ScanMarkup(src string, pos int) (Token, bool) {
	if pos >= len(src) {
		return Token{}, false
	}
	switch src[pos] {
	case '&':
		return scanEntity(src, pos)
	case '<':
		if !opensTag(src, pos) {
			return Token{}, false
		}
		return scanTag(src, pos)
	}
	return Token{}, false
}

// opensTag filters what the tokenizer would treat as text or silently
// skip, such as `< ` or `</>`.
func opensTag(src string, pos int) bool {
	if pos+1 >= len(src) {
		return false
	}
	c := src[pos+1]
	switch {
	case isLetter(c), c == '!', c == '?':
		return true
	case c == '/':
		return pos+2 < len(src) && isLetter(src[pos+2])
	}
	return false
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func scanTag(src string, pos int) (Token, bool) {
	// The tokenizer is created at the cursor for every construct, so
	// offsets stay in step with the Latte side of the parser.
	z := html.NewTokenizer(strings.NewReader(src[pos:]))
	z.SetMaxBuf(0)
	tt := z.Next()
	end := pos + len(z.Raw())
	tok := Token{Span: syntax.Span{Start: pos, End: end}}

	switch tt {
	case html.CommentToken:
		tok.Type = Comment
		tok.Data = string(z.Text())
		return tok, true

	case html.DoctypeToken:
		tok.Type = Doctype
		tok.Data = string(z.Text())
		return tok, true

	case html.EndTagToken:
		name, _ := z.TagName()
		if len(name) == 0 {
			return Token{}, false
		}
		tok.Type = EndTag
		tok.Name = string(name)
		return tok, true

	case html.StartTagToken, html.SelfClosingTagToken:
		name, _ := z.TagName()
		tok.Type = StartTag
		tok.Name = string(name)
		tok.SelfClosing = tt == html.SelfClosingTagToken
		tok.Void = isVoid(tok.Name)
		tok.Attrs = scanAttrs(src, pos+1+len(tok.Name), end)
		if !tok.SelfClosing && isRawText(tok.Name) {
			return scanRawElement(z, src, tok), true
		}
		return tok, true
	}
	return Token{}, false
}

// scanRawElement reads the content and end tag of a script or style
// element with the tokenizer that produced its start tag; only that
// tokenizer knows it is in raw text state.
func scanRawElement(z *html.Tokenizer, src string, start Token) Token {
	tok := start
	tok.Type = RawElement
	tok.StartTag = start.Span
	offset := start.Span.End
	tok.Content = syntax.Span{Start: offset, End: offset}
	tok.EndTag = syntax.Span{Start: len(src), End: len(src)}

	tt := z.Next()
	if tt == html.TextToken {
		offset += len(z.Raw())
		tok.Content.End = offset
		tt = z.Next()
	}
	if tt == html.EndTagToken {
		tok.EndTag = syntax.Span{Start: offset, End: offset + len(z.Raw())}
		tok.Span.End = tok.EndTag.End
		return tok
	}
	// Unclosed: the content runs to the end of input.
	tok.Content.End = len(src)
	tok.Span.End = len(src)
	return tok
}

var voidElements = map[atom.Atom]bool{
	atom.Area:   true,
	atom.Base:   true,
	atom.Br:     true,
	atom.Col:    true,
	atom.Embed:  true,
	atom.Hr:     true,
	atom.Img:    true,
	atom.Input:  true,
	atom.Link:   true,
	atom.Meta:   true,
	atom.Param:  true,
	atom.Source: true,
	atom.Track:  true,
	atom.Wbr:    true,
}

func isVoid(name string) bool {
	return voidElements[atom.Lookup([]byte(name))]
}

func isRawText(name string) bool {
	a := atom.Lookup([]byte(name))
	return a == atom.Script || a == atom.Style
}

// scanEntity scans `&name;`, `&#123;` or `&#x1F;`. References that do not
// decode are not entities.
func scanEntity(src string, pos int) (Token, bool) {
	i := pos + 1
	if i < len(src) && src[i] == '#' {
		i++
		hex := i < len(src) && (src[i] == 'x' || src[i] == 'X')
		if hex {
			i++
		}
		start := i
		for i < len(src) && (isDigit(src[i]) || (hex && isHexLetter(src[i]))) {
			i++
		}
		if i == start {
			return Token{}, false
		}
	} else {
		start := i
		for i < len(src) && (isLetter(src[i]) || isDigit(src[i])) {
			i++
		}
		if i == start {
			return Token{}, false
		}
	}
	if i >= len(src) || src[i] != ';' {
		return Token{}, false
	}
	raw := src[pos : i+1]
	decoded := html.UnescapeString(raw)
	if decoded == raw {
		return Token{}, false
	}
	return Token{
		Type: Entity,
		Span: syntax.Span{Start: pos, End: i + 1},
		Data: decoded,
	}, true
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isHexLetter(c byte) bool {
	return (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

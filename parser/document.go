package parser

import (
	"strings"

	"github.com/josbeir/tree-sitter-latte/ast"
	"github.com/josbeir/tree-sitter-latte/lexer"
	"github.com/josbeir/tree-sitter-latte/syntax"
)

// parseNodes runs the node loop of the current scope. It returns at the end
// of input or in front of a construct that an enclosing scope has to
// handle: a close or branch tag of an open block, or the end tag of an open
// element.
func (p *Parser) parseNodes() []ast.Node {
	var out []ast.Node
	for p.pos < len(p.src) && !p.stopped() {
		tok := lexer.ScanTemplate(p.src, p.pos)
		if p.atStop(tok) {
			p.touch(p.stopEnd(tok))
			break
		}
		if n := p.reuseAt(); n != nil {
			out = append(out, n)
			continue
		}
		if !p.count() {
			out = append(out, p.limitError())
			break
		}

		ctx := p.context()
		outer := p.reach
		p.reach = p.pos
		n := p.parseNode(tok)
		p.record(n, ctx)
		p.touch(outer)
		out = append(out, n)
	}
	return out
}

func (p *Parser) parseNode(tok lexer.Token) ast.Node {
	span := tok.Span
	switch tok.Type {
	case lexer.TokenWhitespace:
		p.advanceTo(span.End)
		p.touch(span.End + 1)
		return &ast.Whitespace{Loc: ast.At(span)}

	case lexer.TokenComment:
		p.advanceTo(span.End)
		return &ast.Comment{Loc: ast.At(span), Value: p.src[span.Start+2 : span.End-2]}

	case lexer.TokenError:
		p.advanceTo(span.End)
		return p.errorNode(span, syntax.NewError(tok.Kind, span, "unterminated comment"))

	case lexer.TokenMarkup:
		return p.parseMarkup(tok)

	case lexer.TokenTagOpen, lexer.TokenPrintOpen, lexer.TokenVarOpen, lexer.TokenCloseOpen:
		return p.parseTag(tok)
	}
	return p.parseText(span)
}

func (p *Parser) parseText(span syntax.Span) ast.Node {
	p.advanceTo(span.End)
	// The text scan looked past trailing whitespace at the delimiter and
	// the byte after it.
	end := span.End
	for end < len(p.src) && lexer.IsSpace(p.src[end]) {
		end++
	}
	p.touch(end + 2)
	return &ast.Text{Loc: ast.At(span), Value: span.Text(p.src)}
}

// atStop reports whether tok belongs to an enclosing scope.
func (p *Parser) atStop(tok lexer.Token) bool {
	switch tok.Type {
	case lexer.TokenCloseOpen:
		return len(p.blocks) > 0
	case lexer.TokenTagOpen:
		return len(p.blocks) > 0 && isBranch(p.src, tok.Span.Start)
	case lexer.TokenMarkup:
		name, ok := endTagName(p.src, tok.Span.Start)
		return ok && p.elementOpen(name)
	}
	return false
}

// stopEnd returns how far the stop check looked: the delimiter and the
// name after it.
func (p *Parser) stopEnd(tok lexer.Token) int {
	i := tok.Span.End
	if tok.Type == lexer.TokenMarkup {
		i++
	}
	for i < len(p.src) && isTagNameChar(p.src[i]) {
		i++
	}
	return i + 1
}

func (p *Parser) elementOpen(name string) bool {
	for i := len(p.elems) - 1; i >= 0; i-- {
		if p.elems[i] == name {
			return true
		}
	}
	return false
}

// branchTags continue an open block rather than start a node.
var branchTags = map[string]bool{
	"else":      true,
	"elseif":    true,
	"elseifset": true,
	"case":      true,
	"default":   true,
}

// isBranch reports whether the tag at pos is a branch keyword. `{default}`
// followed by a variable is an assignment, not a switch branch.
func isBranch(src string, pos int) bool {
	start := pos + 1
	n := lexer.ScanIdent(src, start)
	if n == 0 {
		return false
	}
	name := src[start : start+n]
	if !branchTags[name] {
		return false
	}
	i := start + n
	if i < len(src) && lexer.IsIdentPart(src[i]) {
		return false
	}
	if name == "default" {
		for i < len(src) && lexer.IsSpace(src[i]) {
			i++
		}
		return i >= len(src) || src[i] != '$'
	}
	return true
}

// endTagName returns the lower-cased name of the end tag `</name` at pos.
func endTagName(src string, pos int) (string, bool) {
	if pos+2 >= len(src) || src[pos] != '<' || src[pos+1] != '/' {
		return "", false
	}
	i := pos + 2
	for i < len(src) && isTagNameChar(src[i]) {
		i++
	}
	if i == pos+2 {
		return "", false
	}
	return strings.ToLower(src[pos+2 : i]), true
}

func isTagNameChar(c byte) bool {
	return c == '-' || c == ':' || c == '_' || c == '.' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

package parser

import (
	"github.com/josbeir/tree-sitter-latte/ast"
	"github.com/josbeir/tree-sitter-latte/lexer"
	"github.com/josbeir/tree-sitter-latte/markup"
	"github.com/josbeir/tree-sitter-latte/syntax"
)

// MarkupScanner is the HTML sub-parser. Given the offset of a `<` or `&`
// it returns the markup construct found there, or false when the bytes are
// plain text.
type MarkupScanner interface {
	ScanMarkup(src string, pos int) (markup.Token, bool)
}

func (p *Parser) parseMarkup(tok lexer.Token) ast.Node {
	mt, ok := p.markup.ScanMarkup(p.src, p.pos)
	if !ok {
		// A lone `<` or `&` is text. The tokenizer may have read to the
		// end of input looking for the end of a tag.
		if p.src[p.pos] == '<' {
			p.touch(len(p.src))
		} else {
			p.touch(entityEnd(p.src, p.pos) + 1)
		}
		return p.parseText(tok.Span)
	}
	p.advanceTo(mt.Span.End)
	p.touch(mt.Span.End + 1)
	span := mt.Span

	switch mt.Type {
	case markup.Doctype:
		return &ast.Doctype{Loc: ast.At(span), Raw: span.Text(p.src)}
	case markup.Comment:
		return &ast.Comment{Loc: ast.At(span), Value: mt.Data, HTML: true}
	case markup.Entity:
		return &ast.Entity{Loc: ast.At(span), Raw: span.Text(p.src), Value: mt.Data}
	case markup.EndTag:
		return &ast.ErroneousEndTag{Loc: ast.At(span), Name: mt.Name}
	case markup.RawElement:
		el := &ast.RawElement{
			Loc:         ast.At(span),
			Start:       p.startTag(mt, mt.StartTag),
			Content:     mt.Content.Text(p.src),
			ContentSpan: mt.Content,
		}
		if !mt.EndTag.IsEmpty() {
			el.End = &ast.EndTag{Loc: ast.At(mt.EndTag), Name: mt.Name}
		}
		return el
	}
	return p.parseElement(mt)
}

func (p *Parser) startTag(mt markup.Token, span syntax.Span) *ast.StartTag {
	st := &ast.StartTag{Loc: ast.At(span), Name: mt.Name, SelfClosing: mt.SelfClosing}
	for _, a := range mt.Attrs {
		attr := &ast.Attribute{
			Loc:      ast.At(a.NameSpan),
			Name:     a.Name,
			NameSpan: a.NameSpan,
		}
		if a.Value != nil {
			v := &ast.AttributeValue{Loc: ast.At(a.Value.Span), Quote: a.Value.Quote}
			for _, part := range a.Value.Parts {
				v.Parts = append(v.Parts, &ast.AttributePart{Loc: ast.At(part.Span), Text: part.Text, Latte: part.Latte})
			}
			attr.Value = v
			attr.Range.End = a.Value.Span.End
		}
		st.Attrs = append(st.Attrs, attr)
	}
	return st
}

// parseElement parses the body of the element opened by mt. The body ends
// at the element's end tag, at the end tag of an enclosing element (which
// closes this one implicitly), or at a tag that belongs to an enclosing
// Latte block.
func (p *Parser) parseElement(mt markup.Token) ast.Node {
	start := p.startTag(mt, mt.Span)
	el := &ast.Element{Loc: ast.At(mt.Span), Start: start}
	if mt.Void || mt.SelfClosing {
		return el
	}
	if err := p.enter(mt.Span); err != nil {
		return p.errorNode(mt.Span, err)
	}
	defer p.leave()

	p.elems = append(p.elems, mt.Name)
	el.Body = p.parseNodes()
	p.elems = p.elems[:len(p.elems)-1]

	if name, ok := endTagName(p.src, p.pos); ok && name == mt.Name && !p.stopped() {
		if end, ok := p.markup.ScanMarkup(p.src, p.pos); ok && end.Type == markup.EndTag {
			p.advanceTo(end.Span.End)
			el.End = &ast.EndTag{Loc: ast.At(end.Span), Name: end.Name}
		}
	}
	el.Range = syntax.Span{Start: mt.Span.Start, End: p.pos}
	return el
}

// entityEnd returns where a failed character reference scan at pos
// stopped looking.
func entityEnd(src string, pos int) int {
	i := pos + 1
	for i < len(src) && (src[i] == '#' || lexer.IsIdentPart(src[i])) {
		i++
	}
	return i
}

package ast

import (
	"strconv"
	"strings"
)

// shape is the display form of a tree element: a name, an optional field
// label, a span, leaf text and named or positional children. Both SExpr
// and Export are rendered from it.
type shape struct {
	field    string
	name     string
	span     Span
	text     string
	anon     bool // punctuation such as an operator, printed quoted
	missing  bool // a required close tag that never appeared
	children []*shape
}

func (s *shape) add(children ...*shape) *shape {
	for _, c := range children {
		if c != nil {
			s.children = append(s.children, c)
		}
	}
	return s
}

func (s *shape) as(field string) *shape {
	if s != nil {
		s.field = field
	}
	return s
}

func leaf(name string, span Span, text string) *shape {
	return &shape{name: name, span: span, text: text}
}

func named(start int, name, leafName string) *shape {
	return leaf(leafName, Span{Start: start, End: start + len(name)}, name)
}

// SExpr renders n in the s-expression form used by the test corpus, e.g.
// `(document (if_block open: (if_start condition: (php_variable name:
// (identifier))) (text) close: (if_end)))`. Whitespace trivia is omitted.
func SExpr(n Spanned) string {
	s := describe(n)
	if s == nil {
		return ""
	}
	var b strings.Builder
	writeShape(&b, s)
	return b.String()
}

func writeShape(b *strings.Builder, s *shape) {
	if s.field != "" {
		b.WriteString(s.field)
		b.WriteString(": ")
	}
	switch {
	case s.anon:
		b.WriteString(strconv.Quote(s.name))
		return
	case s.missing:
		b.WriteString("(MISSING ")
		b.WriteString(s.name)
		b.WriteByte(')')
		return
	}
	b.WriteByte('(')
	b.WriteString(s.name)
	for _, c := range s.children {
		b.WriteByte(' ')
		writeShape(b, c)
	}
	b.WriteByte(')')
}

func describe(n Spanned) *shape {
	if isNil(n) {
		return nil
	}
	if e, ok := n.(Expr); ok {
		return describeExpr(e)
	}
	s := &shape{name: Name(n), span: n.Span()}
	switch n := n.(type) {
	case *Document:
		s.add(nodes(n.Children)...)
	case *Whitespace:
		return nil
	case *Text:
		s.text = n.Value
	case *Comment:
		s.text = n.Value
	case *Error:
		s.text = n.Raw
	case *PrintTag:
		s.add(describeExpr(n.Expr).as("expression"), filterChain(n.Filters))
	case *VariableTag:
		s.add(describeExpr(n.Var).as("variable"), filterChain(n.Filters))
	case *Assignment:
		s.add(describe(n.Type).as("type"), describeExpr(n.Target).as("variable"), describeExpr(n.Value).as("value"), filterChain(n.Filters))
	case *VarTypeDecl:
		s.add(describe(n.Type).as("type"), describeExpr(n.Var).as("variable"))
	case *TemplateTypeDecl:
		s.add(describe(n.Type).as("type"))
	case *TypeRef:
		s.text = n.Name
	case *Capture:
		open := tagShape(n.Open, "capture_start").add(describeExpr(n.Var).as("variable"), filterChain(n.Filters))
		s.add(open.as("open"))
		s.add(nodes(n.Body)...)
		s.add(closeShape(n.Close, "capture_end"))
	case *FileTag:
		s.add(describeExpr(n.Path).as("path"))
		s.add(arguments(n.Args)...)
		s.add(filterChain(n.Filters))
	case *Argument:
		if n.Name != "" {
			s.add(named(n.Range.Start, n.Name, "identifier").as("name"))
		}
		s.add(describeExpr(n.Value).as("value"))
	case *Embed:
		open := tagShape(n.Open, "embed_start").add(describeExpr(n.Path).as("path"))
		open.add(arguments(n.Args)...)
		s.add(open.as("open"))
		s.add(nodes(n.Body)...)
		s.add(closeShape(n.Close, "embed_end"))
	case *SingleTag:
		switch {
		case n.Expr != nil:
			s.add(describeExpr(n.Expr).as("expression"))
		case n.Args != "":
			s.add(leaf("arguments", n.ArgsSpan, n.Args).as("arguments"))
		}
	case *IfBlock:
		first := n.Branches[0]
		s.add(condShape(tagShape(first.Tag, "if_start"), first).as("open"))
		s.add(nodes(first.Body)...)
		for _, br := range n.Branches[1:] {
			b := &shape{name: Name(br), span: br.Range}
			b.add(condShape(tagShape(br.Tag, "elseif_start"), br))
			s.add(b.add(nodes(br.Body)...))
		}
		s.add(elseShape(n.Else))
		s.add(closeShape(n.Close, "if_end"))
	case *LoopBlock:
		open := tagShape(n.Open, n.Loop.String()+"_start")
		switch {
		case n.Foreach != nil:
			open.add(describe(n.Foreach).as("header"))
		case n.Cond != nil:
			open.add(describeExpr(n.Cond).as("condition"))
		case n.Open != nil && n.Open.Args != "":
			open.add(leaf("arguments", n.Open.ArgsSpan, n.Open.Args).as("arguments"))
		}
		s.add(open.as("open"))
		s.add(nodes(n.Body)...)
		s.add(elseShape(n.Else))
		s.add(closeShape(n.Close, n.Loop.String()+"_end"))
	case *ForeachHeader:
		s.add(describeExpr(n.Iterable).as("iterable"), describeExpr(n.Key).as("key"), describeExpr(n.Value).as("value"))
	case *SwitchBlock:
		s.add(tagShape(n.Open, "switch_start").add(describeExpr(n.Expr).as("expression")).as("open"))
		s.add(nodes(n.Preamble)...)
		for _, c := range n.Cases {
			s.add(describe(c))
		}
		s.add(closeShape(n.Close, "switch_end"))
	case *SwitchCase:
		if n.Default {
			s.add(tagShape(n.Tag, "default_start"))
		} else {
			start := tagShape(n.Tag, "case_start")
			for _, v := range n.Values {
				start.add(describeExpr(v).as("value"))
			}
			s.add(start)
		}
		s.add(nodes(n.Body)...)
	case *PhpBlock:
		if strings.TrimSpace(n.Raw) != "" {
			s.add(leaf("php_content", n.RawSpan, n.Raw))
		}
	case *GenericBlock:
		open := tagShape(n.Open, "block_start")
		if n.Open != nil {
			open.add(named(n.Open.Range.Start+1, n.Name, "tag_name").as("name"))
			if n.Open.Args != "" {
				open.add(leaf("arguments", n.Open.ArgsSpan, n.Open.Args).as("arguments"))
			}
		}
		s.add(open.as("open"))
		s.add(nodes(n.Body)...)
		s.add(elseShape(n.Else))
		s.add(closeShape(n.Close, "block_end"))
	case *MacroCall:
		s.add(named(n.Range.Start+1, n.Name, "macro_name").as("name"))
		if n.Args != "" {
			s.add(leaf("macro_args", n.ArgsSpan, n.Args).as("arguments"))
		}
	case *ExpressionTag:
		s.add(describeExpr(n.Expr).as("expression"), filterChain(n.Filters))
	case *Doctype:
		s.text = n.Raw
	case *Entity:
		s.text = n.Raw
	case *Element:
		s.add(describe(n.Start))
		s.add(nodes(n.Body)...)
		s.add(describe(n.End))
	case *RawElement:
		s.add(describe(n.Start))
		if n.Content != "" {
			s.add(leaf("raw_text", n.ContentSpan, n.Content))
		}
		s.add(describe(n.End))
	case *StartTag:
		s.add(named(n.Range.Start+1, n.Name, "tag_name").as("name"))
		for _, a := range n.Attrs {
			s.add(describe(a))
		}
	case *EndTag:
		s.add(named(n.Range.Start+2, n.Name, "tag_name").as("name"))
	case *ErroneousEndTag:
		s.add(named(n.Range.Start+2, n.Name, "erroneous_end_tag_name").as("name"))
	case *Attribute:
		s.add(leaf("attribute_name", n.NameSpan, n.Name).as("name"))
		s.add(describe(n.Value).as("value"))
	case *AttributeValue:
		if n.Quote == 0 && len(n.Parts) == 1 {
			s.text = n.Parts[0].Text
			break
		}
		for _, p := range n.Parts {
			s.add(describe(p))
		}
	case *AttributePart:
		s.text = n.Text
	case *ElseBranch:
		s.add(tagShape(n.Tag, "else_start"))
		s.add(nodes(n.Body)...)
	case *Filter:
		s.add(leaf("filter_name", Span{Start: n.Range.Start + 1, End: n.Range.Start + 1 + len(n.Name)}, n.Name).as("name"))
		if n.HasArgs {
			s.add(leaf("filter_args", n.ArgsSpan, n.Args).as("args"))
		}
	}
	return s
}

func describeExpr(e Expr) *shape {
	if isNil(e) {
		return nil
	}
	s := &shape{name: Name(e), span: e.Span()}
	switch e := e.(type) {
	case *Variable:
		s.add(named(e.Range.Start+1, e.Name, "identifier").as("name"))
		for _, a := range e.Accessors {
			s.add(describeAccessor(a))
		}
	case *FunctionCall:
		s.add(leaf("identifier", e.NameSpan, e.Name).as("function"))
		s.add(argumentList(e.Args, Span{Start: e.NameSpan.End, End: e.Range.End}))
	case *StaticCall:
		s.add(leaf("identifier", e.ClassSpan, e.Class).as("class"))
		if e.Call {
			s.add(leaf("identifier", e.MemberSpan, e.Member).as("method"))
			s.add(argumentList(e.Args, Span{Start: e.MemberSpan.End, End: e.Range.End}))
		} else {
			s.add(leaf("identifier", e.MemberSpan, e.Member).as("constant"))
		}
	case *BinaryOp:
		s.add(describeExpr(e.Left).as("left"), &shape{field: "operator", name: e.Op, anon: true, text: e.Op}, describeExpr(e.Right).as("right"))
	case *UnaryOp:
		s.add(&shape{field: "operator", name: e.Op, anon: true, text: e.Op}, describeExpr(e.Operand).as("operand"))
	case *Ternary:
		s.add(describeExpr(e.Cond).as("condition"), describeExpr(e.Then).as("consequence"), describeExpr(e.Else).as("alternative"))
	case *Literal:
		s.text = e.Value
	case *ArrayLiteral:
		for _, el := range e.Elements {
			if el.Key == nil {
				s.add(describeExpr(el.Value))
				continue
			}
			s.add((&shape{name: Name(el), span: el.Range}).add(describeExpr(el.Key).as("key"), describeExpr(el.Value).as("value")))
		}
	case *Parenthesized:
		s.add(describeExpr(e.Inner))
	case *Ident:
		s.text = e.Name
	case *BadExpr:
		if e.Err != nil {
			s.text = e.Err.Message
		}
	}
	return s
}

func describeAccessor(a *Accessor) *shape {
	s := &shape{name: Name(a), span: a.Range}
	if a.Access == AccessIndex {
		return s.add(describeExpr(a.Index).as("index"))
	}
	s.add(leaf("identifier", a.NameSpan, a.Name).as("name"))
	if a.Access == AccessMethod {
		s.add(argumentList(a.Args, Span{Start: a.NameSpan.End, End: a.Range.End}))
	}
	return s
}

func argumentList(args []Expr, span Span) *shape {
	if len(args) == 0 {
		return nil
	}
	s := &shape{field: "arguments", name: "argument_list", span: span}
	for _, a := range args {
		s.add(describeExpr(a))
	}
	return s
}

func arguments(args []*Argument) []*shape {
	out := make([]*shape, 0, len(args))
	for _, a := range args {
		out = append(out, describe(a))
	}
	return out
}

func nodes(list []Node) []*shape {
	out := make([]*shape, 0, len(list))
	for _, n := range list {
		if s := describe(n); s != nil {
			out = append(out, s)
		}
	}
	return out
}

func filterChain(fs []*Filter) *shape {
	if len(fs) == 0 {
		return nil
	}
	s := &shape{field: "filters", name: "filter_chain", span: fs[0].Range.Join(fs[len(fs)-1].Range)}
	for _, f := range fs {
		s.add(describe(f))
	}
	return s
}

func tagShape(t *Tag, name string) *shape {
	s := &shape{name: name}
	if t != nil {
		s.span = t.Range
		s.text = t.Args
	}
	return s
}

func closeShape(t *Tag, name string) *shape {
	if t == nil {
		return &shape{field: "close", name: name, missing: true}
	}
	return tagShape(t, name).as("close")
}

func condShape(s *shape, br *IfBranch) *shape {
	s.add(describeExpr(br.Cond).as("condition"))
	for _, e := range br.Isset {
		s.add(describeExpr(e).as("condition"))
	}
	return s
}

func elseShape(e *ElseBranch) *shape {
	if e == nil {
		return nil
	}
	return describe(e)
}

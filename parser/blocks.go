package parser

import (
	"github.com/josbeir/tree-sitter-latte/ast"
	"github.com/josbeir/tree-sitter-latte/lexer"
	"github.com/josbeir/tree-sitter-latte/syntax"
)

// push opens a paired construct. When the nesting limit is reached the
// opening tag becomes an Error node and no body is parsed.
func (p *Parser) push(t *tagInfo) *ast.Error {
	if err := p.enter(t.span()); err != nil {
		return p.errorNode(t.span(), err)
	}
	p.blocks = append(p.blocks, t.name)
	return nil
}

func (p *Parser) pop() {
	p.blocks = p.blocks[:len(p.blocks)-1]
	p.leave()
}

// body parses the nodes of one block part in a fresh element scope. It
// returns the tag that ended the part: a close tag, or a branch tag accept
// agreed to. It returns nil at the end of input. Every close tag ends the
// part; one that does not match the block leaves it unterminated and is
// handed on unconsumed. Branch tags that do not belong to the block become
// Error nodes inside the body.
func (p *Parser) body(accept func(*tagInfo) bool) ([]ast.Node, *tagInfo) {
	saved := p.elems
	p.elems = nil
	defer func() { p.elems = saved }()

	var out []ast.Node
	for {
		out = append(out, p.parseNodes()...)
		if p.stopped() || p.pos >= len(p.src) {
			return out, nil
		}
		tok := lexer.ScanTemplate(p.src, p.pos)
		t, errNode := p.scanTag(tok)
		if errNode != nil {
			out = append(out, errNode)
			continue
		}
		switch {
		case t.open == lexer.TokenCloseOpen:
			return out, t
		case accept(t):
			return out, t
		default:
			p.advanceTo(t.end)
			out = append(out, p.tagError(t, syntax.UnexpectedToken, "unexpected {%s} in {%s}", t.name, p.blocks[len(p.blocks)-1]))
		}
	}
}

// closes reports whether stop is the close tag of the block opened as
// name; `{/}` closes any block. It consumes the tag when it matches.
func (p *Parser) closes(stop *tagInfo, name string) bool {
	if stop == nil || stop.open != lexer.TokenCloseOpen || (stop.name != "" && stop.name != name) {
		return false
	}
	p.advanceTo(stop.end)
	return true
}

// unterminated builds the UnterminatedBlock error for the block opened by
// open.
func (p *Parser) unterminated(open *ast.Tag) *syntax.Error {
	err := syntax.NewError(syntax.UnterminatedBlock, open.Range, "{%s} is never closed", open.Name)
	err.Family = open.Name
	err.OpenedAt = open.Range.Start
	p.report(err)
	return err
}

// finish sets the close tag of a block or records that it is missing.
func (p *Parser) finish(open *ast.Tag, stop *tagInfo, close **ast.Tag, errs *[]*syntax.Error) {
	if p.closes(stop, open.Name) {
		*close = p.tag(stop)
		return
	}
	*errs = append(*errs, p.unterminated(open))
}

func (p *Parser) partSpan(start int) syntax.Span {
	return syntax.Span{Start: start, End: p.pos}
}

func isElse(t *tagInfo) bool {
	return t.keyword("else")
}

func tryIf(p *Parser, t *tagInfo) (ast.Node, bool) {
	if !t.keyword("if", "ifset", "ifchanged") {
		return nil, false
	}
	open := p.tag(t)
	block := &ast.IfBlock{}
	first := &ast.IfBranch{Tag: open}
	p.condition(first, t)
	block.Branches = []*ast.IfBranch{first}
	if errNode := p.push(t); errNode != nil {
		return errNode, true
	}
	defer p.pop()

	cur := first
	var stop *tagInfo
	for {
		var body []ast.Node
		body, stop = p.body(func(s *tagInfo) bool {
			return block.Else == nil && s.keyword("else", "elseif", "elseifset")
		})
		if block.Else != nil {
			block.Else.Body = body
			block.Else.Range = p.partSpan(block.Else.Tag.Range.Start)
		} else {
			cur.Body = body
			cur.Range = p.partSpan(cur.Tag.Range.Start)
		}
		if stop == nil || stop.open == lexer.TokenCloseOpen {
			break
		}
		p.advanceTo(stop.end)
		if isElse(stop) {
			block.Else = &ast.ElseBranch{Tag: p.tag(stop)}
			continue
		}
		cur = &ast.IfBranch{Tag: p.tag(stop)}
		p.condition(cur, stop)
		block.Branches = append(block.Branches, cur)
	}
	p.finish(open, stop, &block.Close, &block.Errs)
	block.Range = p.partSpan(t.start)
	return block, true
}

// condition parses the condition of an if-family tag. `{ifset}`,
// `{elseifset}` and `{ifchanged}` take a list; an empty condition is
// allowed (Latte then reads it from the close tag).
func (p *Parser) condition(br *ast.IfBranch, t *tagInfo) {
	if t.args.IsEmpty() {
		return
	}
	e := p.newExprParser(t.args.Start, t.innerEnd)
	switch t.name {
	case "ifset", "elseifset", "ifchanged":
		list, err := e.parseList(e.parseIssetItem)
		if err != nil {
			br.Isset = []ast.Expr{p.badExpr(t.args, err)}
			return
		}
		br.Isset = list
	default:
		cond, err := e.parseExpr()
		if err == nil {
			err = e.expectEnd()
		}
		if err != nil {
			br.Cond = p.badExpr(t.args, err)
			return
		}
		br.Cond = cond
	}
}

var loopKinds = map[string]ast.LoopKind{
	"foreach": ast.LoopForeach,
	"for":     ast.LoopFor,
	"while":   ast.LoopWhile,
}

func tryLoop(p *Parser, t *tagInfo) (ast.Node, bool) {
	kind, ok := loopKinds[t.name]
	if !ok || t.open != lexer.TokenTagOpen {
		return nil, false
	}
	open := p.tag(t)
	block := &ast.LoopBlock{Loop: kind, Open: open}
	switch kind {
	case ast.LoopForeach:
		block.Foreach = p.foreachHeader(t)
	case ast.LoopWhile:
		if !t.args.IsEmpty() {
			e := p.newExprParser(t.args.Start, t.innerEnd)
			cond, err := e.parseExpr()
			if err == nil {
				err = e.expectEnd()
			}
			if err != nil {
				block.Cond = p.badExpr(t.args, err)
			} else {
				block.Cond = cond
			}
		}
	}
	if errNode := p.push(t); errNode != nil {
		return errNode, true
	}
	defer p.pop()

	body, stop := p.body(isElse)
	block.Body = body
	if stop != nil && isElse(stop) {
		p.advanceTo(stop.end)
		block.Else = &ast.ElseBranch{Tag: p.tag(stop)}
		block.Else.Body, stop = p.body(func(*tagInfo) bool { return false })
		block.Else.Range = p.partSpan(block.Else.Tag.Range.Start)
	}
	p.finish(open, stop, &block.Close, &block.Errs)
	block.Range = p.partSpan(t.start)
	return block, true
}

// foreachHeader parses `iterable as [$key =>] $value`.
func (p *Parser) foreachHeader(t *tagInfo) *ast.ForeachHeader {
	h := &ast.ForeachHeader{Loc: ast.At(t.args)}
	if t.args.IsEmpty() {
		h.Iterable = p.badExpr(t.span(), syntax.NewError(syntax.UnexpectedToken, t.span(), "{foreach} requires `iterable as $value`"))
		return h
	}
	e := p.newExprParser(t.args.Start, t.innerEnd)
	iterable, err := e.parseExpr()
	if err == nil && !e.current().Is("as") {
		err = e.unexpected("`as`")
	}
	var target ast.Expr
	if err == nil {
		e.advance()
		target, err = e.parseExpr()
	}
	if err == nil && e.skip(lexer.TokenDoubleArrow) {
		h.Key = target
		target, err = e.parseExpr()
	}
	if err == nil {
		err = e.expectEnd()
	}
	if err != nil {
		h.Iterable, h.Key = p.badExpr(t.args, err), nil
		return h
	}
	h.Iterable, h.Value = iterable, target
	return h
}

func trySwitch(p *Parser, t *tagInfo) (ast.Node, bool) {
	if !t.keyword("switch") {
		return nil, false
	}
	open := p.tag(t)
	block := &ast.SwitchBlock{Open: open}
	if !t.args.IsEmpty() {
		e := p.newExprParser(t.args.Start, t.innerEnd)
		expr, err := e.parseExpr()
		if err == nil {
			err = e.expectEnd()
		}
		if err != nil {
			block.Expr = p.badExpr(t.args, err)
		} else {
			block.Expr = expr
		}
	}
	if errNode := p.push(t); errNode != nil {
		return errNode, true
	}
	defer p.pop()

	isCase := func(s *tagInfo) bool { return s.keyword("case", "default") }
	body, stop := p.body(isCase)
	block.Preamble = body
	for _, n := range body {
		if n.Kind() != ast.KindWhitespace {
			err := syntax.NewError(syntax.UnexpectedToken, n.Span(), "content before the first {case} of {switch}")
			p.report(err)
			block.Errs = append(block.Errs, err)
			break
		}
	}
	for stop != nil && stop.open != lexer.TokenCloseOpen {
		p.advanceTo(stop.end)
		c := &ast.SwitchCase{Tag: p.tag(stop), Default: stop.name == "default"}
		if !c.Default {
			c.Values = p.caseValues(stop)
		}
		c.Body, stop = p.body(isCase)
		c.Range = p.partSpan(c.Tag.Range.Start)
		block.Cases = append(block.Cases, c)
	}
	p.finish(open, stop, &block.Close, &block.Errs)
	block.Range = p.partSpan(t.start)
	return block, true
}

func (p *Parser) caseValues(t *tagInfo) []ast.Expr {
	if t.args.IsEmpty() {
		err := syntax.NewError(syntax.UnexpectedToken, t.span(), "{case} requires a value")
		return []ast.Expr{p.badExpr(t.span(), err)}
	}
	e := p.newExprParser(t.args.Start, t.innerEnd)
	values, err := e.parseList(e.parseExpr)
	if err != nil {
		return []ast.Expr{p.badExpr(t.args, err)}
	}
	return values
}

func tryCapture(p *Parser, t *tagInfo) (ast.Node, bool) {
	if !t.keyword("capture") {
		return nil, false
	}
	open := p.tag(t)
	block := &ast.Capture{Open: open}
	e := p.newExprParser(t.args.Start, t.innerEnd)
	v, err := e.expectVariable()
	if err == nil && e.matches(lexer.TokenPipe) {
		block.Filters, err = e.parseFilters()
	}
	if err == nil {
		err = e.expectEnd()
	}
	if err != nil {
		p.report(err)
		block.Errs = append(block.Errs, err)
	} else {
		block.Var = v
	}
	if errNode := p.push(t); errNode != nil {
		return errNode, true
	}
	defer p.pop()

	body, stop := p.body(func(*tagInfo) bool { return false })
	block.Body = body
	p.finish(open, stop, &block.Close, &block.Errs)
	block.Range = p.partSpan(t.start)
	return block, true
}

func tryEmbed(p *Parser, t *tagInfo) (ast.Node, bool) {
	if !t.keyword("embed") {
		return nil, false
	}
	open := p.tag(t)
	block := &ast.Embed{Open: open}
	path, args, _, err := p.parseFileArgs(t)
	if err != nil {
		block.Path = p.badExpr(t.args, err)
	} else {
		block.Path, block.Args = path, args
	}
	if errNode := p.push(t); errNode != nil {
		return errNode, true
	}
	defer p.pop()

	body, stop := p.body(func(*tagInfo) bool { return false })
	block.Body = body
	p.finish(open, stop, &block.Close, &block.Errs)
	block.Range = p.partSpan(t.start)
	return block, true
}

func tryGeneric(p *Parser, t *tagInfo) (ast.Node, bool) {
	if t.open != lexer.TokenTagOpen || !p.pairTags[t.name] {
		return nil, false
	}
	open := p.tag(t)
	block := &ast.GenericBlock{Name: t.name, Open: open}
	if errNode := p.push(t); errNode != nil {
		return errNode, true
	}
	defer p.pop()

	body, stop := p.body(func(s *tagInfo) bool { return t.name == "try" && isElse(s) })
	block.Body = body
	if stop != nil && isElse(stop) {
		p.advanceTo(stop.end)
		block.Else = &ast.ElseBranch{Tag: p.tag(stop)}
		block.Else.Body, stop = p.body(func(*tagInfo) bool { return false })
		block.Else.Range = p.partSpan(block.Else.Tag.Range.Start)
	}
	p.finish(open, stop, &block.Close, &block.Errs)
	block.Range = p.partSpan(t.start)
	return block, true
}

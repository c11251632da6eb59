package parser

import (
	"strings"

	"github.com/josbeir/tree-sitter-latte/ast"
	"github.com/josbeir/tree-sitter-latte/lexer"
	"github.com/josbeir/tree-sitter-latte/syntax"
)

// Binary operator precedence, higher binds tighter. All binary operators
// are left associative.
var binaryPrec = map[lexer.TokenType]int{
	lexer.TokenPow:          10,
	lexer.TokenMul:          9,
	lexer.TokenDiv:          9,
	lexer.TokenMod:          9,
	lexer.TokenPlus:         8,
	lexer.TokenMinus:        8,
	lexer.TokenConcat:       8,
	lexer.TokenLt:           7,
	lexer.TokenLe:           7,
	lexer.TokenGt:           7,
	lexer.TokenGe:           7,
	lexer.TokenSpaceship:    7,
	lexer.TokenEq:           6,
	lexer.TokenNe:           6,
	lexer.TokenIdentical:    6,
	lexer.TokenNotIdentical: 6,
	lexer.TokenNeAlt:        6,
	lexer.TokenAndAnd:       5,
	lexer.TokenOrOr:         4,
	lexer.TokenCoalesce:     3,
}

// Word operators.
var keywordPrec = map[string]int{
	"and": 2,
	"or":  1,
}

// exprParser parses the expression language over the tokens of one tag
// interior.
type exprParser struct {
	p       *Parser
	src     string
	end     int
	tokens  []lexer.Token
	pos     int
	lastEnd int
}

func (p *Parser) newExprParser(start, end int) *exprParser {
	return &exprParser{
		p:       p,
		src:     p.src,
		end:     end,
		tokens:  lexer.Tokenize(p.src, start, end),
		lastEnd: start,
	}
}

// parseFiltered parses `expr filters?` and requires the whole range
// [start, end) to be consumed.
func (p *Parser) parseFiltered(start, end int) (ast.Expr, []*ast.Filter, *syntax.Error) {
	e := p.newExprParser(start, end)
	expr, err := e.parseExpr()
	if err != nil {
		return nil, nil, err
	}
	var filters []*ast.Filter
	if e.matches(lexer.TokenPipe) {
		if filters, err = e.parseFilters(); err != nil {
			return nil, nil, err
		}
	}
	if err := e.expectEnd(); err != nil {
		return nil, nil, err
	}
	return expr, filters, nil
}

func (e *exprParser) current() lexer.Token {
	return e.peek(0)
}

func (e *exprParser) peek(n int) lexer.Token {
	if i := e.pos + n; i < len(e.tokens) {
		return e.tokens[i]
	}
	return e.tokens[len(e.tokens)-1]
}

func (e *exprParser) advance() lexer.Token {
	tok := e.current()
	if e.pos < len(e.tokens)-1 {
		e.pos++
	}
	e.lastEnd = tok.Span.End
	return tok
}

func (e *exprParser) matches(typ lexer.TokenType) bool {
	return e.current().Type == typ
}

func (e *exprParser) skip(typ lexer.TokenType) bool {
	if e.matches(typ) {
		e.advance()
		return true
	}
	return false
}

func (e *exprParser) atEnd() bool {
	return e.matches(lexer.TokenEOF)
}

func (e *exprParser) expect(typ lexer.TokenType, what string) *syntax.Error {
	if e.skip(typ) {
		return nil
	}
	return e.unexpected(what)
}

func (e *exprParser) expectEnd() *syntax.Error {
	if e.atEnd() {
		return nil
	}
	return e.unexpected("")
}

// unexpected builds an error for the current token.
func (e *exprParser) unexpected(expected string) *syntax.Error {
	tok := e.current()
	kind := syntax.UnexpectedToken
	if tok.Type == lexer.TokenError && tok.Kind != 0 {
		kind = tok.Kind
	}
	var got string
	switch {
	case tok.Type == lexer.TokenEOF:
		got = "unexpected end of expression"
	case kind == syntax.UnterminatedLiteral:
		got = "unterminated string"
	default:
		got = "unexpected " + quote(tok.Span.Text(e.src))
	}
	if expected != "" {
		return syntax.NewError(kind, tok.Span, "%s, expected %s", got, expected)
	}
	return syntax.NewError(kind, tok.Span, "%s", got)
}

func quote(s string) string {
	return "`" + s + "`"
}

func (e *exprParser) span(start int) syntax.Span {
	return syntax.Span{Start: start, End: e.lastEnd}
}

func (e *exprParser) parseExpr() (ast.Expr, *syntax.Error) {
	return e.parseTernary()
}

// parseTernary parses `cond ? then : else` and the short `cond ?: else`.
// Nesting on the alternative is right associative.
func (e *exprParser) parseTernary() (ast.Expr, *syntax.Error) {
	cond, err := e.parseBinary(1)
	if err != nil {
		return nil, err
	}
	if !e.skip(lexer.TokenQuestion) {
		return cond, nil
	}
	var then ast.Expr
	if !e.skip(lexer.TokenColon) {
		if then, err = e.parseTernary(); err != nil {
			return nil, err
		}
		if err := e.expect(lexer.TokenColon, "`:`"); err != nil {
			return nil, err
		}
	}
	els, err := e.parseTernary()
	if err != nil {
		return nil, err
	}
	return &ast.Ternary{
		Loc:  ast.At(syntax.Span{Start: cond.Span().Start, End: els.Span().End}),
		Cond: cond,
		Then: then,
		Else: els,
	}, nil
}

func (e *exprParser) binaryPrecedence(tok lexer.Token) (int, bool) {
	if tok.Type == lexer.TokenIdent {
		prec, ok := keywordPrec[strings.ToLower(tok.Value)]
		return prec, ok
	}
	prec, ok := binaryPrec[tok.Type]
	return prec, ok
}

// parseBinary is the precedence climbing loop: it keeps folding operators
// that bind at least as tightly as min into the left operand.
func (e *exprParser) parseBinary(min int) (ast.Expr, *syntax.Error) {
	left, err := e.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		tok := e.current()
		prec, ok := e.binaryPrecedence(tok)
		if !ok || prec < min {
			return left, nil
		}
		e.advance()
		right, err := e.parseBinary(prec + 1)
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryOp{
			Loc:   ast.At(syntax.Span{Start: left.Span().Start, End: right.Span().End}),
			Op:    tok.Value,
			Left:  left,
			Right: right,
		}
	}
}

func (e *exprParser) parseUnary() (ast.Expr, *syntax.Error) {
	tok := e.current()
	if err := e.p.enter(tok.Span); err != nil {
		return nil, err
	}
	defer e.p.leave()

	switch {
	case tok.Type == lexer.TokenNot, tok.Type == lexer.TokenMinus, tok.Type == lexer.TokenPlus,
		tok.Type == lexer.TokenIncrement, tok.Type == lexer.TokenDecrement,
		tok.Type == lexer.TokenIdent && strings.EqualFold(tok.Value, "not"):
		e.advance()
		operand, err := e.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryOp{
			Loc:     ast.At(syntax.Span{Start: tok.Span.Start, End: operand.Span().End}),
			Op:      tok.Value,
			Operand: operand,
		}, nil
	}
	return e.parsePrimary()
}

func (e *exprParser) parsePrimary() (ast.Expr, *syntax.Error) {
	tok := e.current()
	switch tok.Type {
	case lexer.TokenVariable:
		return e.parseVariable()

	case lexer.TokenString:
		e.advance()
		return &ast.Literal{Loc: ast.At(tok.Span), Lit: ast.LitString, Value: tok.Value}, nil

	case lexer.TokenNumber:
		e.advance()
		return &ast.Literal{Loc: ast.At(tok.Span), Lit: ast.LitNumber, Value: tok.Value}, nil

	case lexer.TokenIdent:
		switch strings.ToLower(tok.Value) {
		case "true", "false":
			e.advance()
			return &ast.Literal{Loc: ast.At(tok.Span), Lit: ast.LitBool, Value: tok.Value}, nil
		case "null":
			e.advance()
			return &ast.Literal{Loc: ast.At(tok.Span), Lit: ast.LitNull, Value: tok.Value}, nil
		}
		e.advance()
		switch {
		case e.matches(lexer.TokenParenOpen):
			args, err := e.parseCallArgs()
			if err != nil {
				return nil, err
			}
			return &ast.FunctionCall{
				Loc:      ast.At(e.span(tok.Span.Start)),
				Name:     tok.Value,
				NameSpan: tok.Span,
				Args:     args,
			}, nil
		case e.matches(lexer.TokenDoubleColon):
			return e.parseStatic(tok)
		}
		return &ast.Ident{Loc: ast.At(tok.Span), Name: tok.Value}, nil

	case lexer.TokenParenOpen:
		e.advance()
		inner, err := e.parseExpr()
		if err != nil {
			return nil, err
		}
		if !e.skip(lexer.TokenParenClose) {
			err := e.unexpected("`)`")
			err.Kind = syntax.UnbalancedParenthesis
			return nil, err
		}
		return &ast.Parenthesized{Loc: ast.At(e.span(tok.Span.Start)), Inner: inner}, nil

	case lexer.TokenBracketOpen:
		return e.parseArray()
	}
	return nil, e.unexpected("")
}

// parseStatic parses `Class::CONST` and `Class::method(args)` after the
// class name.
func (e *exprParser) parseStatic(class lexer.Token) (ast.Expr, *syntax.Error) {
	e.advance() // ::
	member := e.current()
	if member.Type != lexer.TokenIdent {
		return nil, e.unexpected("a constant or method name")
	}
	e.advance()
	n := &ast.StaticCall{
		Class:      class.Value,
		ClassSpan:  class.Span,
		Member:     member.Value,
		MemberSpan: member.Span,
	}
	if e.matches(lexer.TokenParenOpen) {
		args, err := e.parseCallArgs()
		if err != nil {
			return nil, err
		}
		n.Call = true
		n.Args = args
	}
	n.Range = e.span(class.Span.Start)
	return n, nil
}

// parseCallArgs parses `(expr, ...)`. A trailing comma is allowed.
func (e *exprParser) parseCallArgs() ([]ast.Expr, *syntax.Error) {
	e.advance() // (
	var args []ast.Expr
	for !e.matches(lexer.TokenParenClose) {
		if e.atEnd() {
			err := e.unexpected("`)`")
			err.Kind = syntax.UnbalancedParenthesis
			return nil, err
		}
		arg, err := e.parseExpr()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if !e.skip(lexer.TokenComma) && !e.matches(lexer.TokenParenClose) {
			err := e.unexpected("`,` or `)`")
			err.Kind = syntax.UnbalancedParenthesis
			return nil, err
		}
	}
	e.advance() // )
	return args, nil
}

func (e *exprParser) parseArray() (ast.Expr, *syntax.Error) {
	open := e.advance()
	arr := &ast.ArrayLiteral{}
	for !e.matches(lexer.TokenBracketClose) {
		first, err := e.parseExpr()
		if err != nil {
			return nil, err
		}
		el := &ast.ArrayElement{Value: first}
		if e.skip(lexer.TokenDoubleArrow) {
			value, err := e.parseExpr()
			if err != nil {
				return nil, err
			}
			el.Key, el.Value = first, value
		}
		el.Range = syntax.Span{Start: first.Span().Start, End: el.Value.Span().End}
		arr.Elements = append(arr.Elements, el)
		if !e.skip(lexer.TokenComma) && !e.matches(lexer.TokenBracketClose) {
			return nil, e.unexpected("`,` or `]`")
		}
	}
	e.advance() // ]
	arr.Range = e.span(open.Span.Start)
	return arr, nil
}

func (e *exprParser) expectVariable() (*ast.Variable, *syntax.Error) {
	if !e.matches(lexer.TokenVariable) {
		return nil, e.unexpected("a variable")
	}
	return e.parseVariable()
}

// parseVariable parses `$name` and its accessor chain.
func (e *exprParser) parseVariable() (*ast.Variable, *syntax.Error) {
	tok := e.advance()
	v := &ast.Variable{Loc: ast.At(tok.Span), Name: tok.Value}
	for {
		op := e.current()
		acc := &ast.Accessor{}
		switch op.Type {
		case lexer.TokenArrow, lexer.TokenNullsafeArrow, lexer.TokenDoubleColon:
			e.advance()
			name := e.current()
			if name.Type != lexer.TokenIdent {
				return nil, e.unexpected("a member name")
			}
			e.advance()
			acc.Name, acc.NameSpan = name.Value, name.Span
			acc.Nullsafe = op.Type == lexer.TokenNullsafeArrow
			acc.Static = op.Type == lexer.TokenDoubleColon
			switch {
			case e.matches(lexer.TokenParenOpen):
				args, err := e.parseCallArgs()
				if err != nil {
					return nil, err
				}
				acc.Access, acc.Args = ast.AccessMethod, args
			case acc.Static:
				acc.Access = ast.AccessConstant
			default:
				acc.Access = ast.AccessProperty
			}
		case lexer.TokenBracketOpen:
			e.advance()
			index, err := e.parseExpr()
			if err != nil {
				return nil, err
			}
			if err := e.expect(lexer.TokenBracketClose, "`]`"); err != nil {
				return nil, err
			}
			acc.Access, acc.Index = ast.AccessIndex, index
		default:
			return v, nil
		}
		acc.Range = e.span(op.Span.Start)
		v.Accessors = append(v.Accessors, acc)
		v.Range.End = acc.Range.End
	}
}

// parseBlockName parses `#name`.
func (e *exprParser) parseBlockName() (ast.Expr, *syntax.Error) {
	hash := e.advance()
	name := e.current()
	if name.Type != lexer.TokenIdent || name.Span.Start != hash.Span.End {
		return nil, e.unexpected("a block name")
	}
	e.advance()
	return &ast.Ident{Loc: ast.At(e.span(hash.Span.Start)), Name: name.Value}, nil
}

// parseArgument parses `name: expr`, `name => expr` or a positional `expr`.
func (e *exprParser) parseArgument() (*ast.Argument, *syntax.Error) {
	tok := e.current()
	next := e.peek(1).Type
	if tok.Type == lexer.TokenIdent && (next == lexer.TokenColon || next == lexer.TokenDoubleArrow) {
		e.advance()
		e.advance()
		value, err := e.parseExpr()
		if err != nil {
			return nil, err
		}
		return &ast.Argument{Loc: ast.At(e.span(tok.Span.Start)), Name: tok.Value, Value: value}, nil
	}
	value, err := e.parseExpr()
	if err != nil {
		return nil, err
	}
	return &ast.Argument{Loc: ast.At(value.Span()), Value: value}, nil
}

// parseList parses one or more comma separated items up to the end of the
// range.
func (e *exprParser) parseList(item func() (ast.Expr, *syntax.Error)) ([]ast.Expr, *syntax.Error) {
	var out []ast.Expr
	for {
		x, err := item()
		if err != nil {
			return nil, err
		}
		out = append(out, x)
		if !e.skip(lexer.TokenComma) {
			return out, e.expectEnd()
		}
	}
}

// parseIssetItem parses a subject of `{ifset}`: an expression or a block
// name.
func (e *exprParser) parseIssetItem() (ast.Expr, *syntax.Error) {
	if e.matches(lexer.TokenHash) {
		return e.parseBlockName()
	}
	return e.parseExpr()
}

// parseFilters parses `|name[:args]` steps directly from the source, so
// filter arguments keep their raw text.
func (e *exprParser) parseFilters() ([]*ast.Filter, *syntax.Error) {
	src := e.src
	pos := e.current().Span.Start
	var out []*ast.Filter
	for pos < e.end && src[pos] == '|' {
		nameStart := e.skipSpace(pos + 1)
		n := lexer.ScanIdent(src, nameStart)
		if n == 0 {
			e.retokenize(nameStart)
			return nil, e.unexpected("a filter name")
		}
		f := &ast.Filter{Name: src[nameStart : nameStart+n]}
		next := nameStart + n
		f.ArgsSpan = syntax.Span{Start: next, End: next}
		if i := e.skipSpace(next); i < e.end && src[i] == ':' {
			argsEnd := lexer.ScanRawArgs(src, i+1, e.end)
			start, end := lexer.TrimSpan(src, i+1, argsEnd)
			f.HasArgs = true
			f.Args = src[start:end]
			f.ArgsSpan = syntax.Span{Start: start, End: end}
			next = argsEnd
		}
		_, end := lexer.TrimSpan(src, pos, next)
		f.Range = syntax.Span{Start: pos, End: end}
		out = append(out, f)
		pos = e.skipSpace(next)
	}
	e.retokenize(pos)
	return out, nil
}

func (e *exprParser) skipSpace(i int) int {
	for i < e.end && lexer.IsSpace(e.src[i]) {
		i++
	}
	return i
}

// retokenize restarts the token stream at pos.
func (e *exprParser) retokenize(pos int) {
	e.tokens = lexer.Tokenize(e.src, pos, e.end)
	e.pos = 0
	e.lastEnd = pos
}

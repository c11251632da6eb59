package parser

import (
	"strings"

	"github.com/josbeir/tree-sitter-latte/ast"
	"github.com/josbeir/tree-sitter-latte/lexer"
	"github.com/josbeir/tree-sitter-latte/syntax"
)

// tagInfo is a scanned `{...}` tag before classification.
type tagInfo struct {
	open     lexer.TokenType // TagOpen, PrintOpen, VarOpen or CloseOpen
	start    int             // offset of `{`
	end      int             // offset just past `}`
	inner    int             // interior is src[inner:innerEnd]
	innerEnd int
	name     string // leading identifier of `{name` and `{/name`
	nameEnd  int
	args     syntax.Span // trimmed text after the name
}

func (t *tagInfo) span() syntax.Span {
	return syntax.Span{Start: t.start, End: t.end}
}

func (p *Parser) tag(t *tagInfo) *ast.Tag {
	return &ast.Tag{
		Loc:      ast.At(t.span()),
		Name:     t.name,
		Args:     t.args.Text(p.src),
		ArgsSpan: t.args,
	}
}

// scanTag finds the extent of the tag opened by tok. A tag that cannot be
// delimited is returned as an Error node and the cursor moves past it.
func (p *Parser) scanTag(tok lexer.Token) (*tagInfo, *ast.Error) {
	t := &tagInfo{open: tok.Type, start: tok.Span.Start}
	switch tok.Type {
	case lexer.TokenPrintOpen, lexer.TokenCloseOpen:
		t.inner = t.start + 2
	default:
		t.inner = t.start + 1
	}
	t.nameEnd = t.inner
	if t.open == lexer.TokenTagOpen || t.open == lexer.TokenCloseOpen {
		t.nameEnd = t.inner + lexer.ScanIdent(p.src, t.inner)
		t.name = p.src[t.inner:t.nameEnd]
	}

	var kind syntax.ErrorKind
	if t.open == lexer.TokenTagOpen && t.name == "php" {
		end, ok := lexer.ScanRawEnd(p.src, t.nameEnd)
		t.end = end
		if !ok {
			kind = syntax.UnexpectedToken
		}
	} else {
		t.end, kind = lexer.ScanTagEnd(p.src, t.inner)
	}

	switch kind {
	case syntax.UnexpectedToken:
		// No closing brace anywhere: give up on the rest of the line.
		p.touch(len(p.src))
		end := len(p.src)
		if idx := strings.IndexByte(p.src[t.start:], '\n'); idx >= 0 {
			end = t.start + idx
		}
		span := syntax.Span{Start: t.start, End: end}
		p.advanceTo(end)
		return nil, p.errorNode(span, syntax.NewError(syntax.UnexpectedToken, span, "unclosed tag"))
	case syntax.UnterminatedLiteral:
		// The quote scan ran to the end of input.
		p.touch(len(p.src))
		span := t.span()
		p.advanceTo(t.end)
		return nil, p.errorNode(span, syntax.NewError(syntax.UnterminatedLiteral, span, "unterminated string in tag"))
	}

	p.touch(t.end)
	t.innerEnd = t.end - 1
	start, end := lexer.TrimSpan(p.src, t.nameEnd, t.innerEnd)
	t.args = syntax.Span{Start: start, End: end}
	return t, nil
}

// family is one entry of the dispatch table. try returns false when the tag
// does not belong to the family, letting the next family have a go.
type family struct {
	name string
	try  func(p *Parser, t *tagInfo) (ast.Node, bool)
}

// families is tried first-match-wins. The order is load bearing: `{= }` and
// `{$x}` are recognized before any keyword, keyword families before the
// macro call fallback, and the macro call before the catch-all expression
// tag, which would otherwise swallow `{foo}`.
var families []family

func init() {
	families = []family{
		{"print", tryPrint},
		{"variable", tryVariable},
		{"assignment", tryAssignment},
		{"type", tryTypeDecl},
		{"capture", tryCapture},
		{"file", tryFileTag},
		{"embed", tryEmbed},
		{"single", trySingle},
		{"php", tryPhp},
		{"block", tryGeneric},
		{"if", tryIf},
		{"loop", tryLoop},
		{"switch", trySwitch},
		{"macro", tryMacroCall},
		{"expression", tryExpression},
	}
}

// genericBlocks are parsed as GenericBlock. Options.PairTags extends the
// list.
var genericBlocks = []string{
	"block", "macro", "spaceless", "translate", "try", "cache",
	"define", "snippet", "snippetArea", "iterateWhile",
}

var fileTags = map[string]ast.FileKind{
	"include": ast.FileInclude,
	"extends": ast.FileExtends,
	"layout":  ast.FileLayout,
	"import":  ast.FileImport,
	"sandbox": ast.FileSandbox,
}

type singleArgs int

const (
	argsNone singleArgs = iota
	argsOptionalExpr
	argsRaw
	argsStatement // raw PHP statement, required
)

var singleTags = map[string]singleArgs{
	"rollback":      argsNone,
	"trace":         argsNone,
	"debugbreak":    argsOptionalExpr,
	"do":            argsStatement,
	"dump":          argsOptionalExpr,
	"parameters":    argsRaw,
	"contentType":   argsRaw,
	"syntax":        argsRaw,
	"templatePrint": argsRaw,
	"varPrint":      argsRaw,
}

// reserved words never name a macro call.
var reserved = map[string]bool{
	"var": true, "default": true, "varType": true, "templateType": true,
	"capture": true, "embed": true, "php": true,
	"if": true, "ifset": true, "ifchanged": true, "elseif": true, "elseifset": true, "else": true,
	"foreach": true, "for": true, "while": true, "switch": true, "case": true,
	"true": true, "false": true, "null": true, "and": true, "or": true, "not": true,
}

func isReserved(name string) bool {
	if reserved[name] || reserved[strings.ToLower(name)] {
		return true
	}
	if _, ok := fileTags[name]; ok {
		return true
	}
	_, ok := singleTags[name]
	return ok
}

// parseTag scans and classifies the tag opened by tok.
func (p *Parser) parseTag(tok lexer.Token) ast.Node {
	t, errNode := p.scanTag(tok)
	if errNode != nil {
		return errNode
	}
	p.advanceTo(t.end)

	if t.open == lexer.TokenCloseOpen {
		return p.tagError(t, syntax.UnexpectedToken, "unexpected {/%s}", t.name)
	}
	if t.open == lexer.TokenTagOpen && isBranch(p.src, t.start) {
		return p.tagError(t, syntax.UnexpectedToken, "{%s} outside of a matching block", t.name)
	}
	for _, f := range families {
		if n, ok := f.try(p, t); ok {
			return n
		}
	}
	return p.tagError(t, syntax.UnknownTag, "unknown tag %s", t.span().Text(p.src))
}

func (p *Parser) tagError(t *tagInfo, kind syntax.ErrorKind, format string, args ...any) *ast.Error {
	return p.errorNode(t.span(), syntax.NewError(kind, t.span(), format, args...))
}

// keyword reports whether t is `{name ...}` for one of names.
func (t *tagInfo) keyword(names ...string) bool {
	if t.open != lexer.TokenTagOpen {
		return false
	}
	for _, n := range names {
		if t.name == n {
			return true
		}
	}
	return false
}

func tryPrint(p *Parser, t *tagInfo) (ast.Node, bool) {
	if t.open != lexer.TokenPrintOpen {
		return nil, false
	}
	expr, filters, err := p.parseFiltered(t.inner, t.innerEnd)
	if err != nil {
		return p.errorNode(t.span(), err), true
	}
	return &ast.PrintTag{Loc: ast.At(t.span()), Expr: expr, Filters: filters}, true
}

// tryVariable accepts `{$name accessors* filters?}` only; anything more,
// such as `{$a + 1}`, falls through to the expression tag.
func tryVariable(p *Parser, t *tagInfo) (ast.Node, bool) {
	if t.open != lexer.TokenVarOpen {
		return nil, false
	}
	e := p.newExprParser(t.inner, t.innerEnd)
	if !e.matches(lexer.TokenVariable) {
		return nil, false
	}
	v, err := e.parseVariable()
	if err != nil {
		return nil, false
	}
	var filters []*ast.Filter
	if e.matches(lexer.TokenPipe) {
		if filters, err = e.parseFilters(); err != nil {
			return nil, false
		}
	}
	if !e.atEnd() {
		return nil, false
	}
	return &ast.VariableTag{Loc: ast.At(t.span()), Var: v, Filters: filters}, true
}

func tryAssignment(p *Parser, t *tagInfo) (ast.Node, bool) {
	if !t.keyword("var", "default") {
		return nil, false
	}
	n := &ast.Assignment{Loc: ast.At(t.span())}
	if t.name == "default" {
		n.Assign = ast.AssignDefault
	}
	start := t.args.Start
	if start < t.innerEnd && p.src[start] != '$' {
		end := scanType(p.src, start, t.innerEnd)
		if end == start {
			return p.tagError(t, syntax.UnexpectedToken, "expected a variable after {%s}", t.name), true
		}
		n.Type = &ast.TypeRef{Loc: ast.At(syntax.Span{Start: start, End: end}), Name: p.src[start:end]}
		start = end
	}

	e := p.newExprParser(start, t.innerEnd)
	target, err := e.expectVariable()
	if err == nil {
		err = e.expect(lexer.TokenAssign, "`=`")
	}
	if err == nil {
		n.Value, err = e.parseExpr()
	}
	if err == nil && e.matches(lexer.TokenPipe) {
		n.Filters, err = e.parseFilters()
	}
	if err == nil {
		err = e.expectEnd()
	}
	if err != nil {
		return p.errorNode(t.span(), err), true
	}
	n.Target = target
	return n, true
}

func tryTypeDecl(p *Parser, t *tagInfo) (ast.Node, bool) {
	if !t.keyword("varType", "templateType") {
		return nil, false
	}
	start := t.args.Start
	end := scanType(p.src, start, t.innerEnd)
	if end == start {
		return p.tagError(t, syntax.UnexpectedToken, "expected a type after {%s}", t.name), true
	}
	typ := &ast.TypeRef{Loc: ast.At(syntax.Span{Start: start, End: end}), Name: p.src[start:end]}

	if t.name == "templateType" {
		if rest := strings.TrimSpace(p.src[end:t.innerEnd]); rest != "" {
			return p.tagError(t, syntax.UnexpectedToken, "unexpected %q after type", rest), true
		}
		return &ast.TemplateTypeDecl{Loc: ast.At(t.span()), Type: typ}, true
	}

	e := p.newExprParser(end, t.innerEnd)
	v, err := e.expectVariable()
	if err == nil {
		err = e.expectEnd()
	}
	if err != nil {
		return p.errorNode(t.span(), err), true
	}
	return &ast.VarTypeDecl{Loc: ast.At(t.span()), Type: typ, Var: v}, true
}

// scanType returns the end of the type annotation starting at pos:
// `?Type`, namespaced names, `[]` suffixes, generic `<...>` arguments and
// `|` unions.
func scanType(src string, pos, end int) int {
	i := pos
	for {
		if i < end && src[i] == '?' {
			i++
		}
		nameStart := i
		for i < end && (lexer.IsIdentPart(src[i]) || src[i] == '\\') {
			i++
		}
		if i == nameStart {
			return pos
		}
		if i < end && src[i] == '<' {
			depth := 0
			for ; i < end; i++ {
				if src[i] == '<' {
					depth++
				} else if src[i] == '>' {
					depth--
					if depth == 0 {
						i++
						break
					}
				}
			}
		}
		for i+1 < end && src[i] == '[' && src[i+1] == ']' {
			i += 2
		}
		if i < end && src[i] == '|' {
			i++
			continue
		}
		return i
	}
}

func tryFileTag(p *Parser, t *tagInfo) (ast.Node, bool) {
	kind, ok := fileTags[t.name]
	if !ok || t.open != lexer.TokenTagOpen {
		return nil, false
	}
	path, args, filters, err := p.parseFileArgs(t)
	if err != nil {
		return p.errorNode(t.span(), err), true
	}
	return &ast.FileTag{Loc: ast.At(t.span()), File: kind, Path: path, Args: args, Filters: filters}, true
}

// parseFileArgs parses `path[, arg]* filters?`. The path is an expression,
// or a block name written bare or as `#name`.
func (p *Parser) parseFileArgs(t *tagInfo) (ast.Expr, []*ast.Argument, []*ast.Filter, *syntax.Error) {
	if t.args.IsEmpty() {
		return nil, nil, nil, syntax.NewError(syntax.UnexpectedToken, t.args, "{%s} requires a path", t.name)
	}
	e := p.newExprParser(t.args.Start, t.innerEnd)
	var path ast.Expr
	var err *syntax.Error
	if e.matches(lexer.TokenHash) {
		path, err = e.parseBlockName()
	} else {
		path, err = e.parseExpr()
	}
	if err != nil {
		return nil, nil, nil, err
	}

	var args []*ast.Argument
	for e.skip(lexer.TokenComma) {
		arg, err := e.parseArgument()
		if err != nil {
			return nil, nil, nil, err
		}
		args = append(args, arg)
	}
	var filters []*ast.Filter
	if e.matches(lexer.TokenPipe) {
		if filters, err = e.parseFilters(); err != nil {
			return nil, nil, nil, err
		}
	}
	if err := e.expectEnd(); err != nil {
		return nil, nil, nil, err
	}
	return path, args, filters, nil
}

func trySingle(p *Parser, t *tagInfo) (ast.Node, bool) {
	mode, ok := singleTags[t.name]
	if !ok || t.open != lexer.TokenTagOpen {
		return nil, false
	}
	n := &ast.SingleTag{
		Loc:      ast.At(t.span()),
		Name:     t.name,
		Args:     t.args.Text(p.src),
		ArgsSpan: t.args,
	}
	switch mode {
	case argsNone:
		if !t.args.IsEmpty() {
			return p.tagError(t, syntax.UnexpectedToken, "{%s} takes no arguments", t.name), true
		}
	case argsStatement:
		if t.args.IsEmpty() {
			return p.tagError(t, syntax.UnexpectedToken, "{%s} requires a statement", t.name), true
		}
	case argsOptionalExpr:
		if t.args.IsEmpty() {
			break
		}
		e := p.newExprParser(t.args.Start, t.innerEnd)
		expr, err := e.parseExpr()
		if err == nil {
			err = e.expectEnd()
		}
		if err != nil {
			return p.errorNode(t.span(), err), true
		}
		n.Expr = expr
	}
	return n, true
}

// tryPhp keeps the interior verbatim; scanTag already cut the tag at the
// first unescaped `}`.
func tryPhp(p *Parser, t *tagInfo) (ast.Node, bool) {
	if !t.keyword("php") {
		return nil, false
	}
	return &ast.PhpBlock{Loc: ast.At(t.span()), Raw: t.args.Text(p.src), RawSpan: t.args}, true
}

// tryMacroCall accepts `{name}` and `{name raw args}` where name is not a
// built-in keyword. Arguments that start with an operator make the tag an
// expression instead.
func tryMacroCall(p *Parser, t *tagInfo) (ast.Node, bool) {
	if t.open != lexer.TokenTagOpen || t.name == "" || isReserved(t.name) {
		return nil, false
	}
	if t.nameEnd < t.innerEnd && !lexer.IsSpace(p.src[t.nameEnd]) {
		return nil, false
	}
	if !t.args.IsEmpty() {
		first := lexer.New(p.src, t.args.Start, t.args.End).Next()
		if isOperator(first.Type) {
			return nil, false
		}
	}
	return &ast.MacroCall{
		Loc:      ast.At(t.span()),
		Name:     t.name,
		Args:     t.args.Text(p.src),
		ArgsSpan: t.args,
	}, true
}

// tryExpression is the catch-all `{expr filters?}`.
func tryExpression(p *Parser, t *tagInfo) (ast.Node, bool) {
	if t.open != lexer.TokenTagOpen && t.open != lexer.TokenVarOpen {
		return nil, false
	}
	e := p.newExprParser(t.inner, t.innerEnd)
	if !startsExpr(e.current().Type) {
		return nil, false
	}
	expr, filters, err := p.parseFiltered(t.inner, t.innerEnd)
	if err != nil {
		return p.errorNode(t.span(), err), true
	}
	return &ast.ExpressionTag{Loc: ast.At(t.span()), Expr: expr, Filters: filters}, true
}

func startsExpr(typ lexer.TokenType) bool {
	switch typ {
	case lexer.TokenVariable, lexer.TokenIdent, lexer.TokenString, lexer.TokenNumber,
		lexer.TokenParenOpen, lexer.TokenBracketOpen, lexer.TokenNot, lexer.TokenMinus,
		lexer.TokenPlus, lexer.TokenIncrement, lexer.TokenDecrement, lexer.TokenError:
		return true
	}
	return false
}

func isOperator(typ lexer.TokenType) bool {
	if _, ok := binaryPrec[typ]; ok {
		return true
	}
	switch typ {
	case lexer.TokenQuestion, lexer.TokenPipe, lexer.TokenAssign, lexer.TokenArrow,
		lexer.TokenNullsafeArrow, lexer.TokenDoubleColon:
		return true
	}
	return false
}

// Package parser implements the Latte template parser: a hand-written
// recursive descent engine over the template source with a precedence
// climbing parser for tag expressions.
//
// Parsing is resilient by default: syntax errors become Error nodes, BadExpr
// placeholders or missing close tags, and parsing resumes after the
// offending tag. With Options.Strict the first error stops the parse.
package parser

import (
	"sort"
	"strings"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/josbeir/tree-sitter-latte/ast"
	"github.com/josbeir/tree-sitter-latte/markup"
	"github.com/josbeir/tree-sitter-latte/syntax"
)

// DefaultMaxDepth bounds the nesting of blocks, elements and expressions
// when Options.MaxDepth is zero.
const DefaultMaxDepth = 256

// Options configures a parse.
type Options struct {
	// Strict stops at the first syntax error and returns it.
	Strict bool
	// MaxDepth bounds nesting; zero means DefaultMaxDepth.
	MaxDepth int
	// MaxNodes bounds the number of nodes; zero means no limit.
	MaxNodes int
	// PairTags names additional tags parsed as generic paired blocks.
	PairTags []string
	// Markup scans HTML constructs; nil means markup.NewScanner().
	Markup MarkupScanner
	// Logger receives debug events; nil means zap.NewNop().
	Logger *zap.Logger
}

// Tree is the result of a parse.
type Tree struct {
	Doc    *ast.Document
	Source string

	opts   Options
	meta   map[ast.Node]nodeMeta
	reused int
}

// nodeMeta records how a node was parsed so a later Reparse can decide
// whether it may be reused.
type nodeMeta struct {
	ctx   string // open blocks and elements at the node's start
	reach int    // end of the source examined while parsing the node
}

// Diagnostics returns every syntax error recorded in the tree, in source
// order.
func (t *Tree) Diagnostics() []*syntax.Error {
	var out []*syntax.Error
	ast.Inspect(t.Doc, func(n ast.Spanned) bool {
		switch n := n.(type) {
		case *ast.Error:
			out = append(out, n.Err)
		case *ast.BadExpr:
			out = append(out, n.Err)
		case *ast.Capture:
			out = append(out, n.Errs...)
		case *ast.Embed:
			out = append(out, n.Errs...)
		case *ast.IfBlock:
			out = append(out, n.Errs...)
		case *ast.LoopBlock:
			out = append(out, n.Errs...)
		case *ast.SwitchBlock:
			out = append(out, n.Errs...)
		case *ast.GenericBlock:
			out = append(out, n.Errs...)
		}
		return true
	})
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Span.Start < out[j].Span.Start
	})
	return out
}

// Err combines all diagnostics into one error, or returns nil.
func (t *Tree) Err() error {
	var err error
	for _, d := range t.Diagnostics() {
		err = multierr.Append(err, d)
	}
	return err
}

// Reused reports how many subtrees Reparse took over from the previous
// tree.
func (t *Tree) Reused() int {
	return t.reused
}

// Options returns the options the tree was parsed with.
func (t *Tree) Options() Options {
	return t.opts
}

// Parser holds the state of a single parse. It is not safe for concurrent
// use; every Parse call creates its own.
type Parser struct {
	src      string
	pos      int
	opts     Options
	log      *zap.Logger
	markup   MarkupScanner
	pairTags map[string]bool

	depth  int
	nodes  int
	blocks []string // open Latte constructs, innermost last
	elems  []string // open elements of the current block scope
	reach  int

	failed *syntax.Error // first error in strict mode
	halted bool          // node limit reached

	meta   map[ast.Node]nodeMeta
	reuse  *reuser
	reused int
}

func newParser(src string, opts Options) *Parser {
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Markup == nil {
		opts.Markup = markup.NewScanner()
	}
	pairTags := make(map[string]bool, len(genericBlocks)+len(opts.PairTags))
	for _, name := range genericBlocks {
		pairTags[name] = true
	}
	for _, name := range opts.PairTags {
		pairTags[name] = true
	}
	return &Parser{
		src:      src,
		opts:     opts,
		log:      opts.Logger,
		markup:   opts.Markup,
		pairTags: pairTags,
		meta:     make(map[ast.Node]nodeMeta),
	}
}

// Parse parses a template. In strict mode the first syntax error is
// returned and the tree is nil; otherwise errors are part of the tree.
func Parse(src string, opts Options) (*Tree, error) {
	p := newParser(src, opts)
	return p.run()
}

func (p *Parser) run() (*Tree, error) {
	doc := p.parseDocument()
	if p.failed != nil {
		return nil, p.failed
	}
	return &Tree{
		Doc:    doc,
		Source: p.src,
		opts:   p.opts,
		meta:   p.meta,
		reused: p.reused,
	}, nil
}

func (p *Parser) parseDocument() *ast.Document {
	children := p.parseNodes()
	return &ast.Document{
		Loc:      ast.At(syntax.Span{Start: 0, End: len(p.src)}),
		Children: children,
	}
}

// stopped reports whether parsing must unwind.
func (p *Parser) stopped() bool {
	return p.failed != nil || p.halted
}

// touch records that the parser examined the source up to offset.
func (p *Parser) touch(offset int) {
	if offset > p.reach {
		p.reach = offset
	}
}

// advanceTo moves the cursor to offset.
func (p *Parser) advanceTo(offset int) {
	p.pos = offset
	p.touch(offset)
}

// report records a syntax error.
func (p *Parser) report(err *syntax.Error) {
	p.log.Debug("syntax error",
		zap.Stringer("kind", err.Kind),
		zap.Int("offset", err.Span.Start),
		zap.String("message", err.Message))
	if p.opts.Strict && p.failed == nil {
		p.failed = err
	}
}

// errorNode reports err and returns an Error node covering span.
func (p *Parser) errorNode(span syntax.Span, err *syntax.Error) *ast.Error {
	p.report(err)
	return &ast.Error{Loc: ast.At(span), Err: err, Raw: span.Text(p.src)}
}

// badExpr reports err and returns a placeholder expression covering span.
func (p *Parser) badExpr(span syntax.Span, err *syntax.Error) *ast.BadExpr {
	p.report(err)
	return &ast.BadExpr{Loc: ast.At(span), Err: err}
}

// enter increases the nesting depth or fails with DepthExceeded.
func (p *Parser) enter(span syntax.Span) *syntax.Error {
	if p.depth >= p.opts.MaxDepth {
		p.log.Debug("depth guard tripped", zap.Int("max_depth", p.opts.MaxDepth), zap.Int("offset", span.Start))
		return syntax.NewError(syntax.DepthExceeded, span, "nesting exceeds %d levels", p.opts.MaxDepth)
	}
	p.depth++
	return nil
}

func (p *Parser) leave() {
	p.depth--
}

// count accounts for one more node and reports whether the node limit
// still holds.
func (p *Parser) count() bool {
	if p.opts.MaxNodes <= 0 {
		return true
	}
	p.nodes++
	return p.nodes <= p.opts.MaxNodes
}

// limitError ends the parse with an Error node covering the rest of the
// input.
func (p *Parser) limitError() ast.Node {
	span := syntax.Span{Start: p.pos, End: len(p.src)}
	p.log.Debug("node guard tripped", zap.Int("max_nodes", p.opts.MaxNodes), zap.Int("offset", p.pos))
	n := p.errorNode(span, syntax.NewError(syntax.DepthExceeded, span, "more than %d nodes", p.opts.MaxNodes))
	p.advanceTo(len(p.src))
	p.halted = true
	return n
}

// context fingerprints the parse state that influences how a node at the
// cursor is parsed.
func (p *Parser) context() string {
	return strings.Join(p.blocks, ">") + "|" + strings.Join(p.elems, ">")
}

// record remembers how n was parsed.
func (p *Parser) record(n ast.Node, ctx string) {
	p.meta[n] = nodeMeta{ctx: ctx, reach: p.reach}
}

// Package latte parses Latte templates into syntax trees.
//
// Latte mixes HTML with curly-brace tags ({if}, {foreach}, {$var|filter},
// {include 'file.latte'}, n:attributes). The parser recognizes both layers
// and produces a single tree with byte spans for every node, suitable for
// highlighting, code navigation and editor diagnostics.
//
// # Quick Start
//
//	tree, err := latte.Parse("{if $user}Hello {$user->name}!{/if}", latte.DefaultConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(ast.SExpr(tree.Doc))
//
// # Error Handling
//
// Parsing is resilient by default: syntax errors are recorded in the tree
// as error nodes and unterminated blocks, and the rest of the template is
// still parsed. Tree.Diagnostics lists them in source order:
//
//	for _, d := range tree.Diagnostics() {
//	    fmt.Println(d)
//	}
//
// With Config.Strict the first error is returned instead. Errors can be
// matched by kind:
//
//	if errors.Is(err, latte.ErrUnterminatedBlock) {
//	    ...
//	}
//
// # Environments
//
// An Environment keeps parsed templates by name and updates them
// incrementally as their sources change:
//
//	env := latte.NewEnvironment(cfg)
//	env.AddTemplate("page.latte", src)
//	env.UpdateTemplate("page.latte", edited, latte.Edit{Start: 10, OldEnd: 12, NewEnd: 15})
//
// # Output Formats
//
// Encode writes a tree as an s-expression, JSON or YAML document.
//
// # See Also
//
//   - parser: the parser itself and incremental reparsing
//   - ast: node types, traversal and the s-expression printer
//   - markup: the HTML scanner
package latte

import (
	"fmt"
	"os"

	"github.com/josbeir/tree-sitter-latte/parser"
	"github.com/josbeir/tree-sitter-latte/syntax"
)

// Version of the parser.
const Version = "0.4.0"

// Tree is a parsed template.
type Tree = parser.Tree

// Edit describes a change to a source as byte offsets.
type Edit = parser.Edit

// Span is a half-open byte range.
type Span = syntax.Span

// Parse parses a template with the given configuration.
func Parse(src string, cfg Config) (*Tree, error) {
	return parser.Parse(src, cfg.Options(nil))
}

// ParseFile reads and parses the template at path. Syntax errors in
// strict mode are returned as a Diagnostic carrying the path.
func ParseFile(path string, cfg Config) (*Tree, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read template: %w", err)
	}
	src := string(data)
	tree, err := parser.Parse(src, cfg.Options(nil))
	if err != nil {
		return nil, locate(path, src, err)
	}
	return tree, nil
}

// Reparse updates a tree after its source changed. See parser.Reparse.
func Reparse(old *Tree, src string, edits ...Edit) (*Tree, error) {
	return parser.Reparse(old, src, edits...)
}

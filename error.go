package latte

import (
	"errors"
	"fmt"

	"github.com/josbeir/tree-sitter-latte/syntax"
)

// ErrorKind describes the type of a syntax error.
type ErrorKind = syntax.ErrorKind

// Error is a single syntax error with its span.
type Error = syntax.Error

const (
	UnterminatedLiteral   = syntax.UnterminatedLiteral
	UnterminatedBlock     = syntax.UnterminatedBlock
	UnexpectedToken       = syntax.UnexpectedToken
	UnbalancedParenthesis = syntax.UnbalancedParenthesis
	DepthExceeded         = syntax.DepthExceeded
	UnknownTag            = syntax.UnknownTag
)

// Sentinels for errors.Is.
var (
	ErrUnterminatedLiteral   = syntax.ErrUnterminatedLiteral
	ErrUnterminatedBlock     = syntax.ErrUnterminatedBlock
	ErrUnexpectedToken       = syntax.ErrUnexpectedToken
	ErrUnbalancedParenthesis = syntax.ErrUnbalancedParenthesis
	ErrDepthExceeded         = syntax.ErrDepthExceeded
	ErrUnknownTag            = syntax.ErrUnknownTag

	// ErrTemplateNotFound is returned when a template is neither added
	// to an Environment nor found by its loader.
	ErrTemplateNotFound = errors.New("template not found")
)

// Diagnostic is a syntax error located in a named template.
type Diagnostic struct {
	Name string
	syntax.Located

	source string
}

func (d Diagnostic) String() string {
	if d.Name == "" {
		return d.Located.String()
	}
	return fmt.Sprintf("%s:%s", d.Name, d.Located)
}

func (d Diagnostic) Error() string {
	return d.String()
}

// Unwrap exposes the syntax error so errors.Is matches kind sentinels.
func (d Diagnostic) Unwrap() error {
	return d.Located.Error
}

// Diagnose locates every diagnostic of tree, in source order.
func Diagnose(name string, tree *Tree) []Diagnostic {
	diags := tree.Diagnostics()
	if len(diags) == 0 {
		return nil
	}
	lines := syntax.NewLineIndex(tree.Source)
	out := make([]Diagnostic, len(diags))
	for i, err := range diags {
		out[i] = Diagnostic{Name: name, Located: lines.Locate(err), source: tree.Source}
	}
	return out
}

// locate turns a strict-mode syntax error into a Diagnostic. Other errors
// pass through.
func locate(name, src string, err error) error {
	var se *syntax.Error
	if !errors.As(err, &se) {
		return err
	}
	return Diagnostic{Name: name, Located: syntax.NewLineIndex(src).Locate(se), source: src}
}

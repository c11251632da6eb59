package lsp

import (
	"strings"

	"go.lsp.dev/protocol"

	latte "github.com/josbeir/tree-sitter-latte"
)

const source = "latte"

// diagnostics converts the syntax errors of a template. The result is never
// nil so that an empty list clears the client's diagnostics.
func diagnostics(tmpl *latte.Template) []protocol.Diagnostic {
	src, lines := tmpl.Source(), tmpl.Lines()
	out := make([]protocol.Diagnostic, 0)
	for _, err := range tmpl.Tree().Diagnostics() {
		d := protocol.Diagnostic{
			Range:    rangeOf(src, lines, err.Span),
			Severity: protocol.DiagnosticSeverityError,
			Code:     strings.ReplaceAll(err.Kind.String(), " ", "_"),
			Source:   source,
			Message:  err.Message,
		}
		if d.Message == "" {
			d.Message = err.Kind.String()
		}
		out = append(out, d)
	}
	return out
}

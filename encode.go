package latte

import (
	"fmt"
	"io"
	"strings"

	"github.com/segmentio/encoding/json"
	"gopkg.in/yaml.v3"

	"github.com/josbeir/tree-sitter-latte/ast"
)

// Format selects how Encode writes a tree.
type Format string

const (
	FormatSExpr Format = "sexp"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// Formats lists the supported output formats.
var Formats = []Format{FormatSExpr, FormatJSON, FormatYAML}

// ParseFormat resolves a format name. The empty name means FormatSExpr.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(name) {
	case "", "sexp", "sexpr":
		return FormatSExpr, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unknown output format %q", name)
}

// Encode writes n in the given format. Trivia is omitted in every format;
// JSON and YAML use the shape of ast.Export.
func Encode(w io.Writer, n ast.Spanned, format Format) error {
	f, err := ParseFormat(string(format))
	if err != nil {
		return err
	}
	switch f {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(ast.Export(n))
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(ast.Export(n)); err != nil {
			return err
		}
		return enc.Close()
	default:
		_, err := fmt.Fprintln(w, ast.SExpr(n))
		return err
	}
}

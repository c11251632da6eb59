package lsp

import (
	"unicode/utf8"

	"go.lsp.dev/protocol"

	latte "github.com/josbeir/tree-sitter-latte"
	"github.com/josbeir/tree-sitter-latte/syntax"
)

// contentChange is protocol.TextDocumentContentChangeEvent with an
// optional range: a change without one replaces the whole document.
type contentChange struct {
	Range *protocol.Range `json:"range,omitempty"`
	Text  string          `json:"text"`
}

type didChangeParams struct {
	TextDocument   protocol.VersionedTextDocumentIdentifier `json:"textDocument"`
	ContentChanges []contentChange                          `json:"contentChanges"`
}

// applyChanges applies content changes in order and returns the new text
// with the byte edits that produced it. When a change replaces the whole
// document no edits are returned and the caller diffs the two texts.
func applyChanges(src string, changes []contentChange) (string, []latte.Edit) {
	var edits []latte.Edit
	full := false
	for _, c := range changes {
		if c.Range == nil {
			src, full = c.Text, true
			continue
		}
		lines := syntax.NewLineIndex(src)
		start := offsetOf(src, lines, c.Range.Start)
		end := offsetOf(src, lines, c.Range.End)
		if end < start {
			start, end = end, start
		}
		src = src[:start] + c.Text + src[end:]
		edits = append(edits, latte.Edit{Start: start, OldEnd: end, NewEnd: start + len(c.Text)})
	}
	if full {
		return src, nil
	}
	return src, edits
}

// offsetOf converts an LSP position, whose character counts UTF-16 code
// units, into a byte offset. Positions past the end of a line clamp to it.
func offsetOf(src string, lines *syntax.LineIndex, pos protocol.Position) int {
	i := lines.Offset(int(pos.Line), 0)
	end := lines.Offset(int(pos.Line), len(src))
	units := int(pos.Character)
	for i < end && units > 0 {
		r, size := utf8.DecodeRuneInString(src[i:])
		n := utf16Len(r)
		if n > units {
			break
		}
		units -= n
		i += size
	}
	return i
}

// positionOf converts a byte offset into an LSP position.
func positionOf(src string, lines *syntax.LineIndex, offset int) protocol.Position {
	p := lines.Position(offset)
	lineStart := p.Offset - (p.Column - 1)
	units := 0
	for _, r := range src[lineStart:p.Offset] {
		units += utf16Len(r)
	}
	return protocol.Position{Line: uint32(p.Line - 1), Character: uint32(units)}
}

func rangeOf(src string, lines *syntax.LineIndex, span syntax.Span) protocol.Range {
	return protocol.Range{
		Start: positionOf(src, lines, span.Start),
		End:   positionOf(src, lines, span.End),
	}
}

func utf16Len(r rune) int {
	if r >= 0x10000 {
		return 2
	}
	return 1
}

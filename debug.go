package latte

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// Format implements fmt.Formatter. The %+v verb adds the surrounding
// source lines with the error underlined:
//
//	page.latte:2:1: unterminated block: {if} is never closed
//	--------------------------------- page.latte ----------------------------------
//	   1 | <ul>
//	   2 > {if $a}
//	     i ^^^^^^^ unterminated block
//	   3 | </ul>
//	~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~
func (d Diagnostic) Format(f fmt.State, verb rune) {
	switch {
	case verb == 'v' && f.Flag('+'):
		_, _ = io.WriteString(f, d.String())
		renderSnippet(f, d)
	case verb == 'q':
		_, _ = fmt.Fprintf(f, "%q", d.String())
	default:
		_, _ = io.WriteString(f, d.String())
	}
}

func renderSnippet(w io.Writer, d Diagnostic) {
	if d.source == "" {
		return
	}
	title := fmt.Sprintf(" %s ", templateTitle(d.Name))
	_, _ = fmt.Fprint(w, "\n")
	_, _ = fmt.Fprintln(w, centerLine(title, '-', 79))

	lines := strings.Split(d.source, "\n")
	lineIdx := d.Pos.Line - 1
	if lineIdx >= len(lines) {
		lineIdx = len(lines) - 1
	}
	if lineIdx < 0 {
		lineIdx = 0
	}

	skip := lineIdx - 3
	if skip < 0 {
		skip = 0
	}
	for idx := skip; idx < lineIdx; idx++ {
		_, _ = fmt.Fprintf(w, "%4d | %s\n", idx+1, lines[idx])
	}

	line := lines[lineIdx]
	_, _ = fmt.Fprintf(w, "%4d > %s\n", lineIdx+1, line)

	col := d.Pos.Column - 1
	if col > len(line) {
		col = len(line)
	}
	_, _ = fmt.Fprintf(w,
		"     i %s%s %s\n",
		strings.Repeat(" ", utf8.RuneCountInString(line[:col])),
		strings.Repeat("^", caretWidth(line[col:], d.Span.Len())),
		d.Kind,
	)

	for idx := lineIdx + 1; idx <= lineIdx+3 && idx < len(lines); idx++ {
		_, _ = fmt.Fprintf(w, "%4d | %s\n", idx+1, lines[idx])
	}
	_, _ = fmt.Fprint(w, strings.Repeat("~", 79))
}

// caretWidth is the number of characters of rest covered by a span of
// length n, stopping at the end of the line.
func caretWidth(rest string, n int) int {
	if n > len(rest) {
		n = len(rest)
	}
	width := utf8.RuneCountInString(rest[:n])
	if width == 0 {
		return 1
	}
	return width
}

func templateTitle(name string) string {
	if name == "" {
		return "Template Source"
	}
	parts := strings.FieldsFunc(name, func(r rune) bool { return r == '/' || r == '\\' })
	if len(parts) == 0 {
		return "Template Source"
	}
	return parts[len(parts)-1]
}

func centerLine(title string, fill rune, width int) string {
	if len(title) >= width {
		return title
	}
	pad := width - len(title)
	left := pad / 2
	right := pad - left
	return strings.Repeat(string(fill), left) + title + strings.Repeat(string(fill), right)
}

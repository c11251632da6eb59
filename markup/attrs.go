package markup

import (
	"github.com/josbeir/tree-sitter-latte/lexer"
	"github.com/josbeir/tree-sitter-latte/syntax"
)

// scanAttrs finds the attributes of the start tag whose name ends at pos
// and whose raw text ends at end. The tokenizer already decided where the
// tag ends; this pass only recovers spans, so every scan is clamped to end.
func scanAttrs(src string, pos, end int) []Attr {
	var attrs []Attr
	i := pos
	for {
		for i < end && (isSpace(src[i]) || src[i] == '/') {
			i++
		}
		if i >= end || src[i] == '>' {
			return attrs
		}

		if lexer.IsTagStart(src, i) {
			tagEnd := latteEnd(src, i, end)
			attrs = append(attrs, Attr{Name: src[i:tagEnd], NameSpan: syntax.Span{Start: i, End: tagEnd}})
			i = tagEnd
			continue
		}

		nameStart := i
		for i < end && !isSpace(src[i]) && src[i] != '=' && src[i] != '>' && !(src[i] == '/' && i+1 < end && src[i+1] == '>') {
			if lexer.IsTagStart(src, i) {
				i = latteEnd(src, i, end)
				continue
			}
			i++
		}
		if i == nameStart {
			// A stray `=` or similar; step over it.
			i++
			continue
		}
		attr := Attr{Name: src[nameStart:i], NameSpan: syntax.Span{Start: nameStart, End: i}}

		j := i
		for j < end && isSpace(src[j]) {
			j++
		}
		if j < end && src[j] == '=' {
			j++
			for j < end && isSpace(src[j]) {
				j++
			}
			attr.Value, i = scanValue(src, j, end)
		}
		attrs = append(attrs, attr)
	}
}

func scanValue(src string, pos, end int) (*Value, int) {
	if pos >= end {
		return nil, pos
	}
	if q := src[pos]; q == '"' || q == '\'' {
		i := pos + 1
		for i < end && src[i] != q {
			i++
		}
		v := &Value{Quote: q, Parts: splitLatte(src, pos+1, i)}
		if i < end {
			i++
		}
		v.Span = syntax.Span{Start: pos, End: i}
		return v, i
	}
	i := pos
	for i < end && !isSpace(src[i]) && src[i] != '>' {
		if lexer.IsTagStart(src, i) {
			i = latteEnd(src, i, end)
			continue
		}
		i++
	}
	return &Value{Span: syntax.Span{Start: pos, End: i}, Parts: splitLatte(src, pos, i)}, i
}

// splitLatte splits src[start:end] into literal runs and `{...}` Latte
// tags.
func splitLatte(src string, start, end int) []Part {
	var parts []Part
	lit := start
	flush := func(to int) {
		if to > lit {
			parts = append(parts, Part{Span: syntax.Span{Start: lit, End: to}, Text: src[lit:to]})
		}
	}
	for i := start; i < end; {
		if !lexer.IsTagStart(src, i) {
			i++
			continue
		}
		flush(i)
		tagEnd := latteEnd(src, i, end)
		parts = append(parts, Part{Span: syntax.Span{Start: i, End: tagEnd}, Text: src[i:tagEnd], Latte: true})
		i = tagEnd
		lit = i
	}
	flush(end)
	return parts
}

// latteEnd returns the end of the Latte tag at src[pos], clamped to end.
func latteEnd(src string, pos, end int) int {
	tagEnd, _ := lexer.ScanTagEnd(src, pos+1)
	if tagEnd > end {
		return end
	}
	return tagEnd
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}

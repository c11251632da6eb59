package syntax

import (
	"errors"
	"fmt"
	"testing"
)

func TestLineIndex(t *testing.T) {
	src := "ab\ncd\n\nef"
	li := NewLineIndex(src)
	if li.Lines() != 4 {
		t.Fatalf("expected 4 lines, got %d", li.Lines())
	}

	tests := []struct {
		offset    int
		line, col int
	}{
		{0, 1, 1},
		{2, 1, 3},
		{3, 2, 1},
		{6, 3, 1},
		{8, 4, 2},
		{100, 4, 3},
		{-5, 1, 1},
	}
	for _, tt := range tests {
		pos := li.Position(tt.offset)
		if pos.Line != tt.line || pos.Column != tt.col {
			t.Errorf("Position(%d) = %s, want %d:%d", tt.offset, pos, tt.line, tt.col)
		}
	}

	if got := li.Offset(1, 1); got != 4 {
		t.Errorf("Offset(1, 1) = %d, want 4", got)
	}
	if got := li.Offset(0, 10); got != 2 {
		t.Errorf("Offset(0, 10) = %d, want 2 (clamped to line end)", got)
	}
	if got := li.Offset(9, 0); got != len(src) {
		t.Errorf("Offset(9, 0) = %d, want %d", got, len(src))
	}
}

func TestSpan(t *testing.T) {
	s := Span{Start: 2, End: 5}
	if s.Len() != 3 || s.IsEmpty() {
		t.Errorf("unexpected length for %s", s)
	}
	if !s.Contains(2) || s.Contains(5) {
		t.Errorf("Contains is not half open")
	}
	if !s.Overlaps(Span{Start: 4, End: 9}) || s.Overlaps(Span{Start: 5, End: 9}) {
		t.Errorf("Overlaps is not half open")
	}
	if got := s.Join(Span{Start: 0, End: 3}); got != (Span{Start: 0, End: 5}) {
		t.Errorf("Join = %s", got)
	}
	if got := s.Shift(-2); got != (Span{Start: 0, End: 3}) {
		t.Errorf("Shift = %s", got)
	}
	if got := s.Text("abcdefg"); got != "cde" {
		t.Errorf("Text = %q", got)
	}
	if got := (Span{Start: 5, End: 50}).Text("abcdefg"); got != "fg" {
		t.Errorf("Text is not clamped: %q", got)
	}
}

func TestErrorIs(t *testing.T) {
	err := NewError(UnterminatedBlock, Span{Start: 1, End: 4}, "{%s} is never closed", "if")
	if err.Error() != "unterminated block: {if} is never closed" {
		t.Errorf("unexpected message %q", err.Error())
	}
	wrapped := fmt.Errorf("parsing a.latte: %w", err)
	if !errors.Is(wrapped, ErrUnterminatedBlock) {
		t.Errorf("expected wrapped error to match its kind")
	}
	if errors.Is(wrapped, ErrUnknownTag) {
		t.Errorf("expected kinds to differ")
	}
}

func TestErrorShift(t *testing.T) {
	err := NewError(UnterminatedBlock, Span{Start: 10, End: 14}, "x")
	err.OpenedAt = 10
	moved := err.Shift(5)
	if moved == err {
		t.Fatalf("expected a copy")
	}
	if moved.Span != (Span{Start: 15, End: 19}) || moved.OpenedAt != 15 {
		t.Errorf("unexpected shifted error %+v", moved)
	}
	if err.Span.Start != 10 {
		t.Errorf("original error was modified")
	}
	if err.Shift(0) != err {
		t.Errorf("expected a zero shift to return the error itself")
	}
}

func TestLocate(t *testing.T) {
	li := NewLineIndex("a\n{if}")
	loc := li.Locate(NewError(UnterminatedBlock, Span{Start: 2, End: 6}, "{if} is never closed"))
	if got := loc.String(); got != "2:1: unterminated block: {if} is never closed" {
		t.Errorf("unexpected location %q", got)
	}
}

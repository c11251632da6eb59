package syntax

import (
	"fmt"
	"sort"
)

// Position is a human readable source location. Line and Column are
// 1-indexed; Column counts bytes.
type Position struct {
	Offset int
	Line   int
	Column int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// LineIndex maps byte offsets to line/column positions.
type LineIndex struct {
	starts []int
	size   int
}

// NewLineIndex builds the index for src.
func NewLineIndex(src string) *LineIndex {
	starts := []int{0}
	for i := 0; i < len(src); i++ {
		if src[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &LineIndex{starts: starts, size: len(src)}
}

// Position returns the line/column of offset. Offsets past the end are
// clamped to the end of the source.
func (li *LineIndex) Position(offset int) Position {
	if offset < 0 {
		offset = 0
	}
	if offset > li.size {
		offset = li.size
	}
	line := sort.Search(len(li.starts), func(i int) bool { return li.starts[i] > offset }) - 1
	return Position{
		Offset: offset,
		Line:   line + 1,
		Column: offset - li.starts[line] + 1,
	}
}

// Offset converts a 0-indexed line and byte column back into an offset.
// Columns past the end of the line are clamped to the line end.
func (li *LineIndex) Offset(line, col int) int {
	if line < 0 {
		return 0
	}
	if line >= len(li.starts) {
		return li.size
	}
	end := li.size
	if line+1 < len(li.starts) {
		end = li.starts[line+1] - 1
	}
	off := li.starts[line] + col
	if off > end {
		off = end
	}
	return off
}

// Lines returns the number of lines in the indexed source.
func (li *LineIndex) Lines() int {
	return len(li.starts)
}

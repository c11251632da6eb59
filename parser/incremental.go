package parser

import (
	"go.uber.org/zap"

	"github.com/josbeir/tree-sitter-latte/ast"
)

// Edit describes one text change: bytes [Start, OldEnd) of the previous
// source were replaced by bytes [Start, NewEnd) of the new source.
type Edit struct {
	Start  int
	OldEnd int
	NewEnd int
}

// Delta is the change in length.
func (e Edit) Delta() int {
	return e.NewEnd - e.OldEnd
}

// DiffEdit returns the smallest single Edit turning old into cur, found by
// trimming their common prefix and suffix.
func DiffEdit(old, cur string) Edit {
	n := min(len(old), len(cur))
	pre := 0
	for pre < n && old[pre] == cur[pre] {
		pre++
	}
	suf := 0
	for suf < n-pre && old[len(old)-1-suf] == cur[len(cur)-1-suf] {
		suf++
	}
	return Edit{Start: pre, OldEnd: len(old) - suf, NewEnd: len(cur) - suf}
}

// merge folds e into the window w. w.Start and w.OldEnd are offsets in
// the original source, w.NewEnd an offset in the source as edited so far;
// e is expressed in the latter.
func merge(w, e Edit) Edit {
	out := Edit{Start: min(w.Start, e.Start), OldEnd: w.OldEnd}
	if e.OldEnd > w.NewEnd {
		out.OldEnd = w.OldEnd + (e.OldEnd - w.NewEnd)
	}
	end := w.NewEnd
	switch {
	case end >= e.OldEnd:
		end += e.Delta()
	case end > e.Start:
		end = e.NewEnd
	}
	out.NewEnd = max(end, e.NewEnd)
	return out
}

// Reparse parses src, the source of old with edits applied in order, and
// reuses subtrees of old that the edits cannot have affected: subtrees
// wholly before the edited window that never looked into it are taken
// over as they are, subtrees wholly after it are copied with their spans
// shifted. A subtree is only reused where it is met in the same block and
// element context it was parsed in. Without edits the window is computed
// by diffing the two sources.
func Reparse(old *Tree, src string, edits ...Edit) (*Tree, error) {
	if old == nil {
		return Parse(src, Options{})
	}
	var w Edit
	if len(edits) == 0 {
		w = DiffEdit(old.Source, src)
	} else {
		w = edits[0]
		for _, e := range edits[1:] {
			w = merge(w, e)
		}
	}

	p := newParser(src, old.opts)
	if w.Start < 0 || w.OldEnd < w.Start || w.NewEnd < w.Start ||
		w.OldEnd > len(old.Source) || w.NewEnd > len(src) ||
		len(src)-len(old.Source) != w.Delta() {
		p.log.Debug("edit does not match sources, parsing from scratch",
			zap.Int("start", w.Start), zap.Int("old_end", w.OldEnd), zap.Int("new_end", w.NewEnd))
		return p.run()
	}
	p.reuse = newReuser(old, w)
	tree, err := p.run()
	p.log.Debug("reparsed",
		zap.Int("start", w.Start), zap.Int("old_end", w.OldEnd), zap.Int("new_end", w.NewEnd),
		zap.Int("reused", p.reused))
	return tree, err
}

type reuseKey struct {
	start int
	ctx   string
}

// reuser indexes the nodes of a previous tree by start offset and
// context.
type reuser struct {
	old   *Tree
	edit  Edit
	delta int
	index map[reuseKey]ast.Node
}

func newReuser(old *Tree, w Edit) *reuser {
	r := &reuser{
		old:   old,
		edit:  w,
		delta: w.Delta(),
		index: make(map[reuseKey]ast.Node, len(old.meta)),
	}
	for n, m := range old.meta {
		r.index[reuseKey{start: n.Span().Start, ctx: m.ctx}] = n
	}
	return r
}

// reuseAt returns a node of the previous tree that can stand in for
// whatever would be parsed at the cursor, and moves past it.
func (p *Parser) reuseAt() ast.Node {
	r := p.reuse
	if r == nil {
		return nil
	}
	before := p.pos < r.edit.Start
	oldPos := p.pos
	switch {
	case before:
	case p.pos > r.edit.NewEnd:
		oldPos = p.pos - r.delta
	default:
		return nil
	}

	n, ok := r.index[reuseKey{start: oldPos, ctx: p.context()}]
	if !ok {
		return nil
	}
	m := r.old.meta[n]
	if before && m.reach >= r.edit.Start {
		return nil
	}

	shift := 0
	if !before {
		shift = r.delta
	}
	node := n
	if shift != 0 {
		node = ast.Shift(n, shift)
	}
	r.adopt(p, n, node, shift)
	p.advanceTo(node.Span().End)
	p.touch(m.reach + shift)
	p.reused++
	return node
}

// adopt carries the parse records of a reused subtree over to the new
// tree, so the next Reparse can reuse its parts again.
func (r *reuser) adopt(p *Parser, old, cur ast.Node, shift int) {
	olds := subtree(old)
	curs := olds
	if shift != 0 {
		curs = subtree(cur)
	}
	for i, o := range olds {
		if m, ok := r.old.meta[o]; ok {
			m.reach += shift
			p.meta[curs[i]] = m
		}
	}
}

func subtree(n ast.Node) []ast.Node {
	var out []ast.Node
	ast.Inspect(n, func(s ast.Spanned) bool {
		if node, ok := s.(ast.Node); ok {
			out = append(out, node)
		}
		return true
	})
	return out
}

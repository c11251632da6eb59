package parser

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/josbeir/tree-sitter-latte/ast"
	"github.com/josbeir/tree-sitter-latte/internal/testutil"
)

const layout = `<p>{$a}</p>
{if $b}x{/if}
{foreach $c as $d}<li>{$d|upper}</li>{/foreach}
`

// replace applies one replacement to src and returns the result with its
// Edit.
func replace(t *testing.T, src, old, new string) (string, Edit) {
	t.Helper()
	i := strings.Index(src, old)
	if i < 0 {
		t.Fatalf("%q not found", old)
	}
	return src[:i] + new + src[i+len(old):], Edit{Start: i, OldEnd: i + len(old), NewEnd: i + len(new)}
}

func TestReparseReuse(t *testing.T) {
	old := mustParse(t, layout)
	before := ast.SExpr(old.Doc)
	oldForeach := old.Doc.Children[4]

	src, edit := replace(t, layout, "x{/if}", "yyy{/if}")
	tree, err := Reparse(old, src, edit)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	fresh := mustParse(t, src)
	if got, want := ast.SExpr(tree.Doc), ast.SExpr(fresh.Doc); got != want {
		t.Fatalf("reparse differs from a full parse\n%s", testutil.Diff(want, got))
	}
	checkSpans(t, tree.Doc, src)

	if tree.Doc.Children[0] != old.Doc.Children[0] {
		t.Errorf("expected the element before the edit to be reused as is")
	}
	if tree.Doc.Children[2] == old.Doc.Children[2] {
		t.Errorf("expected the edited block to be parsed again")
	}
	shifted := tree.Doc.Children[4]
	if shifted == oldForeach {
		t.Errorf("expected a shifted copy of the block after the edit")
	}
	if want := oldForeach.Span().Shift(2); shifted.Span() != want {
		t.Errorf("expected span %s, got %s", want, shifted.Span())
	}
	if tree.Reused() < 3 {
		t.Errorf("expected at least 3 reused subtrees, got %d", tree.Reused())
	}

	// The previous tree is left untouched.
	if ast.SExpr(old.Doc) != before || old.Doc.Children[4] != oldForeach {
		t.Errorf("previous tree was modified")
	}
	if oldForeach.Span().Start != strings.Index(layout, "{foreach") {
		t.Errorf("previous tree spans were modified")
	}
}

func TestReparseChain(t *testing.T) {
	tree := mustParse(t, layout)
	src := layout
	steps := []struct{ old, new string }{
		{"x{/if}", "yyy{/if}"},
		{"{$a}", "{$a->b}"},
		{"<li>", "<li class=\"{$k}\">"},
		{"{/foreach}", "{else}none{/foreach}"},
		{"{if $b}", "{if $b && $c}"},
		{"upper", "lower"},
	}
	for _, step := range steps {
		var edit Edit
		src, edit = replace(t, src, step.old, step.new)
		var err error
		tree, err = Reparse(tree, src, edit)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		fresh := mustParse(t, src)
		if got, want := ast.SExpr(tree.Doc), ast.SExpr(fresh.Doc); got != want {
			t.Fatalf("after %q: reparse differs from a full parse\n%s", step.new, testutil.Diff(want, got))
		}
		checkSpans(t, tree.Doc, src)
	}
}

func TestReparseContextChange(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		old, new string
	}{
		{"open block", "a {$x} b {/if} c", "a ", "{if $y}a "},
		{"close block", "{if $y}a {$x} b{/if} c", "{/if}", ""},
		{"open element", "{$x}</div>", "{$x}", "<div>{$x}"},
		{"remove element", "<div>{$x}</div>{$y}", "<div>", ""},
		{"unclose string", "{='a'} {$b} {='c'}", "'a'", "'a"},
		{"unclose tag", "{$a} x {$b}", "{$a}", "{$a"},
		{"comment", "a {$b} c *} d", "a ", "a {* "},
		{"default branch", "{switch 1}{case 1}{default $x = 1}{/switch}", "$x = 1", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			old := mustParse(t, tt.src)
			src, edit := replace(t, tt.src, tt.old, tt.new)
			tree, err := Reparse(old, src, edit)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			fresh := mustParse(t, src)
			if got, want := ast.SExpr(tree.Doc), ast.SExpr(fresh.Doc); got != want {
				t.Errorf("reparse differs from a full parse\n%s", testutil.Diff(want, got))
			}
			if diff := cmp.Diff(kinds(fresh.Diagnostics()), kinds(tree.Diagnostics())); diff != "" {
				t.Errorf("diagnostics mismatch (-fresh +reparsed):\n%s", diff)
			}
		})
	}
}

func TestReparseWithoutEdits(t *testing.T) {
	old := mustParse(t, layout)
	src := strings.Replace(layout, "{$a}", "{$aa}", 1)
	tree, err := Reparse(old, src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, want := ast.SExpr(tree.Doc), ast.SExpr(mustParse(t, src).Doc); got != want {
		t.Fatalf("reparse differs from a full parse\n%s", testutil.Diff(want, got))
	}
	if tree.Reused() == 0 {
		t.Errorf("expected reuse after the diffed edit")
	}
}

func TestReparseBadEdit(t *testing.T) {
	old := mustParse(t, layout)
	src := layout + "tail"
	tree, err := Reparse(old, src, Edit{Start: 0, OldEnd: 1, NewEnd: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tree.Reused() != 0 {
		t.Errorf("expected a full parse for an edit that does not match the sources")
	}
	if got, want := ast.SExpr(tree.Doc), ast.SExpr(mustParse(t, src).Doc); got != want {
		t.Errorf("reparse differs from a full parse\n%s", testutil.Diff(want, got))
	}
}

func TestReparseNil(t *testing.T) {
	tree, err := Reparse(nil, "{$a}")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tree.Doc.Children) != 1 {
		t.Errorf("expected 1 node, got %d", len(tree.Doc.Children))
	}
}

func TestDiffEdit(t *testing.T) {
	tests := []struct {
		old, new string
		want     Edit
	}{
		{"abc", "abc", Edit{3, 3, 3}},
		{"abc", "abXc", Edit{2, 2, 3}},
		{"abc", "ac", Edit{1, 2, 1}},
		{"aaa", "aaaa", Edit{3, 3, 4}},
		{"", "x", Edit{0, 0, 1}},
	}
	for _, tt := range tests {
		if got := DiffEdit(tt.old, tt.new); got != tt.want {
			t.Errorf("DiffEdit(%q, %q) = %+v, want %+v", tt.old, tt.new, got, tt.want)
		}
	}
}

func TestMergeEdits(t *testing.T) {
	src := "0123456789"
	// Two edits in sequence: insert "ab" at 2, then delete 7..9 of the
	// result.
	step1 := src[:2] + "ab" + src[2:]
	step2 := step1[:7] + step1[9:]
	e1 := Edit{Start: 2, OldEnd: 2, NewEnd: 4}
	e2 := Edit{Start: 7, OldEnd: 9, NewEnd: 7}

	w := merge(e1, e2)
	if w.Start != 2 || w.OldEnd != 7 || w.NewEnd != 7 {
		t.Fatalf("unexpected window %+v", w)
	}
	if len(step2)-len(src) != w.Delta() {
		t.Errorf("window delta %d does not match length change %d", w.Delta(), len(step2)-len(src))
	}
	if src[:w.Start] != step2[:w.Start] || src[w.OldEnd:] != step2[w.NewEnd:] {
		t.Errorf("window %+v does not cover the changes", w)
	}

	old := mustParse(t, layout)
	a, e1 := replace(t, layout, "{$a}", "{$aa}")
	b, e2 := replace(t, a, "upper", "lower|trim")
	tree, err := Reparse(old, b, e1, e2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, want := ast.SExpr(tree.Doc), ast.SExpr(mustParse(t, b).Doc); got != want {
		t.Errorf("reparse differs from a full parse\n%s", testutil.Diff(want, got))
	}
}

package parser

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/josbeir/tree-sitter-latte/ast"
	"github.com/josbeir/tree-sitter-latte/internal/testutil"
)

const (
	corpusDir    = "testdata/corpus"
	skipListFile = "testdata/skiplist.txt"
)

func TestCorpus(t *testing.T) {
	skipList, err := testutil.LoadSkipList(skipListFile)
	if err != nil {
		t.Fatalf("failed to load skip list: %v", err)
	}

	files, err := filepath.Glob(filepath.Join(corpusDir, "*.txt"))
	if err != nil {
		t.Fatalf("failed to glob corpus: %v", err)
	}
	if len(files) == 0 {
		t.Fatalf("no corpus files found in %s", corpusDir)
	}

	for _, path := range files {
		cases, err := testutil.ParseCorpusFile(path)
		if err != nil {
			t.Fatalf("failed to read corpus: %v", err)
		}
		for _, c := range cases {
			name := strings.TrimSuffix(c.File, ".txt") + "/" + c.Name
			t.Run(name, func(t *testing.T) {
				if skipList[name] {
					t.Skipf("skipped via skiplist.txt")
				}

				tree, err := Parse(c.Input, Options{Strict: c.Attrs["strict"]})
				if err != nil {
					t.Fatalf("%s:%d: parse error: %v", c.File, c.Line, err)
				}
				actual := ast.SExpr(tree.Doc)
				if actual != c.Expected {
					t.Errorf("%s:%d: output mismatch\n%s", c.File, c.Line, testutil.Diff(c.Expected, actual))
				}
				checkSpans(t, tree.Doc, c.Input)

				again, _ := Parse(c.Input, Options{})
				if got := ast.SExpr(again.Doc); got != actual {
					t.Errorf("second parse differs\n%s", testutil.Diff(actual, got))
				}
			})
		}
	}
}

// checkSpans verifies that top level nodes tile the source and that every
// node lies within its parent.
func checkSpans(t *testing.T, doc *ast.Document, src string) {
	t.Helper()
	pos := 0
	for _, n := range doc.Children {
		if n.Span().Start != pos {
			t.Errorf("gap or overlap at %d: %s starts at %d", pos, ast.Name(n), n.Span().Start)
		}
		pos = n.Span().End
	}
	if pos != len(src) {
		t.Errorf("top level nodes end at %d, source has %d bytes", pos, len(src))
	}

	var walk func(parent ast.Spanned)
	walk = func(parent ast.Spanned) {
		ps := parent.Span()
		for _, c := range ast.Children(parent) {
			cs := c.Span()
			if cs.Start < ps.Start || cs.End > ps.End {
				t.Errorf("%s %s is outside its parent %s %s", ast.Name(c), cs, ast.Name(parent), ps)
			}
			walk(c)
		}
	}
	walk(doc)
}

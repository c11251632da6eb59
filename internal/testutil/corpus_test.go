package testutil

import (
	"strings"
	"testing"
)

func TestParseCorpus(t *testing.T) {
	content := `==========
first
==========

{$a}

---

(document
  (latte_variable))

==========
second :strict
==========
x
---
(document (text))
`
	cases := ParseCorpus(content)
	if len(cases) != 2 {
		t.Fatalf("expected 2 cases, got %d", len(cases))
	}
	if cases[0].Name != "first" || cases[0].Input != "{$a}" {
		t.Errorf("unexpected first case %+v", cases[0])
	}
	if cases[0].Expected != "(document (latte_variable))" {
		t.Errorf("unexpected expected tree %q", cases[0].Expected)
	}
	if cases[1].Name != "second" || !cases[1].Attrs["strict"] {
		t.Errorf("unexpected second case %+v", cases[1])
	}
	if cases[1].Line != 12 {
		t.Errorf("expected header line 12, got %d", cases[1].Line)
	}
}

func TestDiff(t *testing.T) {
	if d := Diff("(a)", "(a)"); d != "" {
		t.Errorf("expected no diff, got %q", d)
	}
	d := Diff("(a (b) (x))", "(a (c) (x))")
	if !strings.Contains(d, "(b)") || !strings.Contains(d, "(c)") {
		t.Errorf("expected the differing nodes in the diff, got:\n%s", d)
	}
	if got := nodeLines("(a (b) (x))"); len(got) != 3 || got[1] != "(b)" {
		t.Errorf("unexpected node lines %q", got)
	}
}

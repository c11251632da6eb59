package ast_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/josbeir/tree-sitter-latte/ast"
	"github.com/josbeir/tree-sitter-latte/parser"
	"github.com/josbeir/tree-sitter-latte/syntax"
)

func parse(t *testing.T, src string) *ast.Document {
	t.Helper()
	tree, err := parser.Parse(src, parser.Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return tree.Doc
}

func spans(n ast.Spanned) []syntax.Span {
	var out []syntax.Span
	ast.Inspect(n, func(n ast.Spanned) bool {
		out = append(out, n.Span())
		return true
	})
	return out
}

func TestShift(t *testing.T) {
	doc := parse(t, "{if $a}{$b->c(1)|upper}<p class=x>{/if}")
	block := doc.Children[0].(*ast.IfBlock)
	before := spans(block)

	moved := ast.Shift(block, 10)
	if moved == block {
		t.Fatalf("expected a copy")
	}
	after := spans(moved)
	if len(after) != len(before) {
		t.Fatalf("expected %d nodes, got %d", len(before), len(after))
	}
	for i := range before {
		if after[i] != before[i].Shift(10) {
			t.Errorf("node %d: expected %s, got %s", i, before[i].Shift(10), after[i])
		}
	}
	if diff := cmp.Diff(before, spans(block)); diff != "" {
		t.Errorf("original tree was modified (-before +after):\n%s", diff)
	}
	if ast.SExpr(moved) != ast.SExpr(block) {
		t.Errorf("shifted tree has a different shape")
	}
}

func TestShiftErrors(t *testing.T) {
	doc := parse(t, "{if $a}x")
	block := doc.Children[0].(*ast.IfBlock)
	moved := ast.Shift(block, 3)
	if len(moved.Errs) != 1 {
		t.Fatalf("expected 1 error, got %d", len(moved.Errs))
	}
	if moved.Errs[0] == block.Errs[0] {
		t.Errorf("expected the error to be copied")
	}
	if moved.Errs[0].OpenedAt != 3 || moved.Errs[0].Span.Start != 3 {
		t.Errorf("unexpected shifted error %+v", moved.Errs[0])
	}
	if block.Errs[0].OpenedAt != 0 {
		t.Errorf("original error was modified")
	}
}

func TestName(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"{$a}", "latte_variable"},
		{"{=$a}", "latte_print_tag"},
		{"{$a + 1}", "latte_expression_tag"},
		{"{var $a = 1}", "var_tag"},
		{"{default $a = 1}", "default_tag"},
		{"{varType int $a}", "var_type_tag"},
		{"{templateType A}", "template_type_tag"},
		{"{include 'a'}", "include_tag"},
		{"{extends 'a'}", "extends_tag"},
		{"{import 'a'}", "import_tag"},
		{"{sandbox 'a'}", "sandbox_tag"},
		{"{templatePrint}", "template_print_tag"},
		{"{debugbreak}", "debugbreak_tag"},
		{"{rollback}", "rollback_tag"},
		{"{capture $a}{/capture}", "capture_tag"},
		{"{embed 'a'}{/embed}", "embed_tag"},
		{"{if 1}{/if}", "if_block"},
		{"{ifset $a}{/ifset}", "if_block"},
		{"{foreach $a as $b}{/foreach}", "foreach_block"},
		{"{for ;;}{/for}", "for_block"},
		{"{while 1}{/while}", "while_block"},
		{"{switch 1}{/switch}", "switch_block"},
		{"{php}", "php_block"},
		{"{block a}{/block}", "block"},
		{"{macro a}{/macro}", "macro"},
		{"{spaceless}{/spaceless}", "pair_tag"},
		{"{foo}", "macro_call"},
		{"<!DOCTYPE html>", "doctype"},
		{"&amp;", "entity"},
		{"<b></b>", "element"},
		{"<script></script>", "script_element"},
		{"<style></style>", "style_element"},
		{"</b>", "erroneous_end_tag"},
		{"<!-- x -->", "comment"},
		{"{/if}", "ERROR"},
		{"text", "text"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			doc := parse(t, tt.src)
			if got := ast.Name(doc.Children[0]); got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestSExprOmitsWhitespace(t *testing.T) {
	doc := parse(t, "  {$a}  \n ")
	want := "(document (latte_variable variable: (php_variable name: (identifier))))"
	if got := ast.SExpr(doc); got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
}

func TestExport(t *testing.T) {
	doc := parse(t, "{if $a}x")
	out := ast.Export(doc)
	if out.Type != "document" || out.Start != 0 || out.End != 8 {
		t.Fatalf("unexpected root %+v", out)
	}
	block := out.Children[0]
	if block.Type != "if_block" {
		t.Fatalf("expected if_block, got %s", block.Type)
	}
	last := block.Children[len(block.Children)-1]
	want := &ast.Exported{Type: "if_end", Field: "close", Start: 8, End: 8, Missing: true}
	if diff := cmp.Diff(want, last); diff != "" {
		t.Errorf("missing close mismatch (-want +got):\n%s", diff)
	}
	text := block.Children[1]
	if text.Type != "text" || text.Text != "x" || text.Start != 7 || text.End != 8 {
		t.Errorf("unexpected text %+v", text)
	}
}

func TestExportOperator(t *testing.T) {
	doc := parse(t, "{=1+2}")
	bin := ast.Export(doc).Children[0].Children[0]
	if bin.Type != "binary_expression" || bin.Field != "expression" {
		t.Fatalf("unexpected node %+v", bin)
	}
	op := bin.Children[1]
	if op.Type != "+" || op.Field != "operator" || op.Start != bin.End {
		t.Errorf("unexpected operator %+v", op)
	}
}

func TestInspect(t *testing.T) {
	doc := parse(t, "{foreach $items as $item}<li>{$item->name}</li>{/foreach}")
	var names []string
	ast.Inspect(doc, func(n ast.Spanned) bool {
		if v, ok := n.(*ast.Variable); ok {
			names = append(names, v.Name)
		}
		return true
	})
	if diff := cmp.Diff([]string{"items", "item", "item"}, names); diff != "" {
		t.Errorf("variables mismatch (-want +got):\n%s", diff)
	}

	count := 0
	ast.Inspect(doc, func(n ast.Spanned) bool {
		count++
		_, isDoc := n.(*ast.Document)
		return isDoc
	})
	if count != 2 {
		t.Errorf("expected Inspect to stop descending, visited %d nodes", count)
	}
}

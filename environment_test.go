package latte

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/josbeir/tree-sitter-latte/ast"
)

func TestEnvironmentAddAndGet(t *testing.T) {
	env := NewEnvironment(DefaultConfig())
	if _, err := env.AddTemplate("b.latte", "{$b}"); err != nil {
		t.Fatal(err)
	}
	if _, err := env.AddTemplate("a.latte", "{if $a}"); err != nil {
		t.Fatal(err)
	}

	tmpl, err := env.GetTemplate("a.latte")
	if err != nil {
		t.Fatal(err)
	}
	if tmpl.Name() != "a.latte" || tmpl.Source() != "{if $a}" {
		t.Errorf("unexpected template %q: %q", tmpl.Name(), tmpl.Source())
	}
	diags := tmpl.Diagnostics()
	if len(diags) != 1 || diags[0].String() != "a.latte:1:1: unterminated block: {if} is never closed" {
		t.Errorf("unexpected diagnostics %v", diags)
	}
	if tmpl.Err() == nil {
		t.Error("Err should report the unterminated block")
	}

	if diff := cmp.Diff([]string{"a.latte", "b.latte"}, env.TemplateNames()); diff != "" {
		t.Errorf("names mismatch (-want +got):\n%s", diff)
	}

	env.RemoveTemplate("b.latte")
	if _, err := env.GetTemplate("b.latte"); !errors.Is(err, ErrTemplateNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestEnvironmentLoader(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "layouts", "main.latte"), "<main>{block content}{/block}</main>")

	env := NewEnvironment(DefaultConfig())
	env.SetLoader(DirLoader(dir))

	tmpl, err := env.GetTemplate("layouts/main.latte")
	if err != nil {
		t.Fatal(err)
	}
	if k := tmpl.Document().Children[0].Kind(); k != ast.KindElement {
		t.Errorf("expected element, got %s", k)
	}
	if len(env.TemplateNames()) != 1 {
		t.Error("loaded template should be stored")
	}

	for _, name := range []string{"missing.latte", "../outside.latte"} {
		if _, err := env.GetTemplate(name); !errors.Is(err, ErrTemplateNotFound) {
			t.Errorf("%s: expected not found, got %v", name, err)
		}
	}
}

func TestEnvironmentUpdate(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	env := NewEnvironment(DefaultConfig())
	env.SetLogger(zap.New(core))

	src := "<p>{$a}</p>\n{if $b}x{/if}\n<span>{$c}</span>"
	old, err := env.AddTemplate("page", src)
	if err != nil {
		t.Fatal(err)
	}

	// Remove the `{/if}` close tag.
	start := len("<p>{$a}</p>\n{if $b}x")
	edited := src[:start] + src[start+len("{/if}"):]
	tmpl, err := env.UpdateTemplate("page", edited, Edit{Start: start, OldEnd: start + 5, NewEnd: start})
	if err != nil {
		t.Fatal(err)
	}
	if tmpl.Tree().Reused() == 0 {
		t.Error("expected reused subtrees")
	}
	if tmpl.Document().Children[0] != old.Document().Children[0] {
		t.Error("leading element should be reused")
	}
	diags := tmpl.Diagnostics()
	if len(diags) != 1 || !errors.Is(diags[0], ErrUnterminatedBlock) {
		t.Errorf("unexpected diagnostics %v", diags)
	}
	if diags[0].Pos.Line != 2 {
		t.Errorf("expected line 2, got %s", diags[0].Pos)
	}
	if logs.FilterMessage("template updated").Len() != 1 {
		t.Error("expected one update log entry")
	}

	// Unknown names are parsed from scratch.
	if _, err := env.UpdateTemplate("new", "{$x}"); err != nil {
		t.Fatal(err)
	}
	if len(env.TemplateNames()) != 2 {
		t.Errorf("expected two templates, got %v", env.TemplateNames())
	}
}

func TestEnvironmentStrict(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Strict = true
	env := NewEnvironment(cfg)

	if _, err := env.AddTemplate("bad", "{if $a}"); !errors.Is(err, ErrUnterminatedBlock) {
		t.Errorf("expected unterminated block, got %v", err)
	}
	if _, err := env.AddTemplate("page", "{$a}"); err != nil {
		t.Fatal(err)
	}
	_, err := env.UpdateTemplate("page", "{if $a}")
	var d Diagnostic
	if !errors.As(err, &d) || d.Name != "page" {
		t.Fatalf("expected a diagnostic for page, got %v", err)
	}
	if _, err := env.GetTemplate("page"); !errors.Is(err, ErrTemplateNotFound) {
		t.Error("a failed strict update should drop the template")
	}
}

func TestTemplateFromString(t *testing.T) {
	env := NewEnvironment(DefaultConfig())
	tmpl, err := env.TemplateFromString("{$a}")
	if err != nil {
		t.Fatal(err)
	}
	if tmpl.Name() != "" || len(env.TemplateNames()) != 0 {
		t.Error("TemplateFromString should not store the template")
	}
	if tmpl.Lines().Lines() != 1 {
		t.Errorf("expected 1 line, got %d", tmpl.Lines().Lines())
	}
}

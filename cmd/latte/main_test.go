package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	latte "github.com/josbeir/tree-sitter-latte"
)

func writeTemplates(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestRunParse(t *testing.T) {
	dir := writeTemplates(t, map[string]string{
		"ok.latte":  "{$a}",
		"bad.latte": "x\n{if $a}",
	})

	var out, errOut bytes.Buffer
	env := newEnvironment(latte.DefaultConfig())
	if err := runParse(&out, &errOut, env, filepath.Join(dir, "ok.latte")); err != nil {
		t.Fatal(err)
	}
	want := "(document (latte_variable variable: (php_variable name: (identifier))))\n"
	if out.String() != want {
		t.Errorf("got %q, want %q", out.String(), want)
	}

	out.Reset()
	cfg := latte.DefaultConfig()
	cfg.Format = latte.FormatJSON
	bad := filepath.Join(dir, "bad.latte")
	err := runParse(&out, &errOut, newEnvironment(cfg), bad)
	if !errors.Is(err, errDiagnostics) {
		t.Fatalf("expected errDiagnostics, got %v", err)
	}
	if !strings.Contains(out.String(), `"type": "document"`) {
		t.Errorf("expected a JSON tree, got %s", out.String())
	}
	if got := errOut.String(); got != bad+":2:1: unterminated block: {if} is never closed\n" {
		t.Errorf("unexpected diagnostics %q", got)
	}

	errOut.Reset()
	cfg.Strict = true
	if err := runParse(&out, &errOut, newEnvironment(cfg), bad); !errors.Is(err, errDiagnostics) {
		t.Fatalf("expected errDiagnostics, got %v", err)
	}
	if !strings.HasPrefix(errOut.String(), bad+":2:1: ") {
		t.Errorf("unexpected strict output %q", errOut.String())
	}

	if err := runParse(&out, &errOut, env, filepath.Join(dir, "missing.latte")); !errors.Is(err, latte.ErrTemplateNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestRunCheck(t *testing.T) {
	dir := writeTemplates(t, map[string]string{
		"a.latte":          "{foreach $items as $item}{$item}{/foreach}",
		"views/b.latte":    "{if $x}",
		"views/c.latte":    "<p>{/if}</p>",
		"views/notes.txt":  "{if",
		"views/d/ok.latte": "{block content}{/block}",
	})

	var out bytes.Buffer
	err := runCheck(context.Background(), &out, newEnvironment(latte.DefaultConfig()), []string{dir})
	if !errors.Is(err, errDiagnostics) {
		t.Fatalf("expected errDiagnostics, got %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %q", out.String())
	}
	if !strings.HasPrefix(lines[0], filepath.Join(dir, "views", "b.latte")+":1:1: unterminated block") {
		t.Errorf("unexpected first line %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], filepath.Join(dir, "views", "c.latte")+":1:4: ") {
		t.Errorf("unexpected second line %q", lines[1])
	}
	if lines[2] != "2 of 4 files have syntax errors" {
		t.Errorf("unexpected summary %q", lines[2])
	}

	out.Reset()
	if err := runCheck(context.Background(), &out, newEnvironment(latte.DefaultConfig()), []string{filepath.Join(dir, "a.latte")}); err != nil {
		t.Errorf("clean file: %v\n%s", err, out.String())
	}
	if err := runCheck(context.Background(), &out, newEnvironment(latte.DefaultConfig()), []string{filepath.Join(dir, "nope")}); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}

func TestCollectFiles(t *testing.T) {
	dir := writeTemplates(t, map[string]string{
		"b.latte":       "",
		"a/x.latte":     "",
		"a/readme.md":   "",
		"single.html":   "",
		"z/deep/y.latte": "",
	})
	files, err := collectFiles([]string{dir, filepath.Join(dir, "single.html")})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{
		filepath.Join(dir, "a", "x.latte"),
		filepath.Join(dir, "b.latte"),
		filepath.Join(dir, "z", "deep", "y.latte"),
		filepath.Join(dir, "single.html"),
	}
	if diff := cmp.Diff(want, files); diff != "" {
		t.Errorf("files mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadConfigFlags(t *testing.T) {
	dir := writeTemplates(t, map[string]string{
		"latte.yaml": "strict: true\nformat: yaml\n",
	})
	configPath = filepath.Join(dir, "latte.yaml")
	t.Cleanup(func() { configPath = "" })

	cfg, err := loadConfig(&parseCmd)
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.Strict || cfg.Format != latte.FormatYAML {
		t.Errorf("config file not applied: %+v", cfg)
	}

	if err := parseCmd.Flags().Set("format", "json"); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { parseCmd.Flags().Lookup("format").Changed = false; format = "sexp" })
	cfg, err = loadConfig(&parseCmd)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Format != latte.FormatJSON {
		t.Errorf("flag should override the file, got %q", cfg.Format)
	}
}

func TestVerboseDiagnostics(t *testing.T) {
	dir := writeTemplates(t, map[string]string{"bad.latte": "x\n{if $a}"})
	verbose = true
	t.Cleanup(func() { verbose = false })

	var out, errOut bytes.Buffer
	err := runParse(&out, &errOut, newEnvironment(latte.DefaultConfig()), filepath.Join(dir, "bad.latte"))
	if !errors.Is(err, errDiagnostics) {
		t.Fatalf("expected errDiagnostics, got %v", err)
	}
	if !strings.Contains(errOut.String(), "   2 > {if $a}\n") {
		t.Errorf("expected a source snippet, got:\n%s", errOut.String())
	}
}

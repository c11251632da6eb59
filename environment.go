package latte

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/josbeir/tree-sitter-latte/ast"
	"github.com/josbeir/tree-sitter-latte/parser"
	"github.com/josbeir/tree-sitter-latte/syntax"
)

// LoaderFunc is a function that loads template source by name.
type LoaderFunc func(name string) (string, error)

// Environment holds the configuration and parsed templates.
type Environment struct {
	templates   map[string]*compiledTemplate
	templatesMu sync.RWMutex
	loader      LoaderFunc
	config      Config
	log         *zap.Logger
}

type compiledTemplate struct {
	name  string
	tree  *parser.Tree
	lines *syntax.LineIndex
}

// NewEnvironment creates an environment that parses with cfg.
func NewEnvironment(cfg Config) *Environment {
	return &Environment{
		templates: make(map[string]*compiledTemplate),
		config:    cfg,
		log:       zap.NewNop(),
	}
}

// SetLogger sets the logger handed to the parser.
func (e *Environment) SetLogger(log *zap.Logger) {
	if log == nil {
		log = zap.NewNop()
	}
	e.log = log
}

// SetLoader sets the function GetTemplate falls back to for unknown names.
func (e *Environment) SetLoader(loader LoaderFunc) {
	e.loader = loader
}

// Config returns the environment's configuration.
func (e *Environment) Config() Config {
	return e.config
}

// AddTemplate parses source and stores it under name, replacing any
// previous template of that name.
func (e *Environment) AddTemplate(name, source string) (*Template, error) {
	tree, err := parser.Parse(source, e.config.Options(e.log.With(zap.String("template", name))))
	if err != nil {
		return nil, locate(name, source, err)
	}
	return e.store(name, tree), nil
}

// UpdateTemplate replaces the source of a stored template, reusing the
// parts of its tree the edits did not touch. Edits are applied in order
// and use offsets into the source they apply to; without edits the changed
// range is found by comparing the sources. Unknown names are parsed from
// scratch.
func (e *Environment) UpdateTemplate(name, source string, edits ...Edit) (*Template, error) {
	e.templatesMu.RLock()
	old, ok := e.templates[name]
	e.templatesMu.RUnlock()
	if !ok {
		return e.AddTemplate(name, source)
	}

	tree, err := parser.Reparse(old.tree, source, edits...)
	if err != nil {
		// The stored tree no longer matches any source the caller has.
		e.RemoveTemplate(name)
		return nil, locate(name, source, err)
	}
	e.log.Debug("template updated",
		zap.String("template", name),
		zap.Int("reused", tree.Reused()),
		zap.Int("diagnostics", len(tree.Diagnostics())))
	return e.store(name, tree), nil
}

func (e *Environment) store(name string, tree *parser.Tree) *Template {
	compiled := &compiledTemplate{
		name:  name,
		tree:  tree,
		lines: syntax.NewLineIndex(tree.Source),
	}
	e.templatesMu.Lock()
	e.templates[name] = compiled
	e.templatesMu.Unlock()
	return &Template{compiled: compiled}
}

// GetTemplate returns a stored template, asking the loader for names that
// were never added.
func (e *Environment) GetTemplate(name string) (*Template, error) {
	e.templatesMu.RLock()
	compiled, ok := e.templates[name]
	e.templatesMu.RUnlock()

	if ok {
		return &Template{compiled: compiled}, nil
	}

	// Try loader
	if e.loader != nil {
		source, err := e.loader(name)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrTemplateNotFound, name, err)
		}
		return e.AddTemplate(name, source)
	}

	return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, name)
}

// TemplateFromString parses source without storing it.
func (e *Environment) TemplateFromString(source string) (*Template, error) {
	tree, err := parser.Parse(source, e.config.Options(e.log))
	if err != nil {
		return nil, locate("", source, err)
	}
	return &Template{compiled: &compiledTemplate{
		tree:  tree,
		lines: syntax.NewLineIndex(source),
	}}, nil
}

// RemoveTemplate forgets a stored template.
func (e *Environment) RemoveTemplate(name string) {
	e.templatesMu.Lock()
	delete(e.templates, name)
	e.templatesMu.Unlock()
}

// TemplateNames returns the names of all stored templates, sorted.
func (e *Environment) TemplateNames() []string {
	e.templatesMu.RLock()
	names := make([]string, 0, len(e.templates))
	for name := range e.templates {
		names = append(names, name)
	}
	e.templatesMu.RUnlock()
	sort.Strings(names)
	return names
}

// DirLoader loads templates by relative path from dir. Names escaping the
// directory are rejected.
func DirLoader(dir string) LoaderFunc {
	return func(name string) (string, error) {
		clean := filepath.Clean(filepath.FromSlash(name))
		if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
			return "", fmt.Errorf("template name %q leaves %s", name, dir)
		}
		data, err := os.ReadFile(filepath.Join(dir, clean))
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
}

// Template is a parsed template held by an Environment.
type Template struct {
	compiled *compiledTemplate
}

// Name returns the template's name; it is empty for TemplateFromString.
func (t *Template) Name() string {
	return t.compiled.name
}

// Source returns the template source.
func (t *Template) Source() string {
	return t.compiled.tree.Source
}

// Tree returns the parse tree.
func (t *Template) Tree() *Tree {
	return t.compiled.tree
}

// Document returns the root node of the tree.
func (t *Template) Document() *ast.Document {
	return t.compiled.tree.Doc
}

// Lines returns the line index of the source.
func (t *Template) Lines() *syntax.LineIndex {
	return t.compiled.lines
}

// Diagnostics returns the template's syntax errors with positions.
func (t *Template) Diagnostics() []Diagnostic {
	diags := t.compiled.tree.Diagnostics()
	out := make([]Diagnostic, len(diags))
	for i, err := range diags {
		out[i] = Diagnostic{
			Name:    t.compiled.name,
			Located: t.compiled.lines.Locate(err),
			source:  t.compiled.tree.Source,
		}
	}
	return out
}

// Err combines the template's syntax errors into one error, or returns nil.
func (t *Template) Err() error {
	return t.compiled.tree.Err()
}

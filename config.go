package latte

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/josbeir/tree-sitter-latte/parser"
)

// ConfigNames are the file names FindConfig looks for, in order.
var ConfigNames = []string{".latte.toml", ".latte.yaml", ".latte.yml"}

// Config holds parser and output settings. It can be loaded from a TOML
// or YAML file:
//
//	strict = false
//	max_depth = 128
//	pair_tags = ["cache", "spaceless"]
//	format = "json"
type Config struct {
	// Strict stops at the first syntax error.
	Strict bool `toml:"strict" yaml:"strict"`
	// MaxDepth bounds the nesting of blocks, elements and expressions.
	MaxDepth int `toml:"max_depth" yaml:"max_depth"`
	// MaxNodes bounds the size of a tree; zero means no limit.
	MaxNodes int `toml:"max_nodes" yaml:"max_nodes"`
	// PairTags names extra tags that are parsed as paired blocks.
	PairTags []string `toml:"pair_tags" yaml:"pair_tags"`
	// Format is the output format used by Encode callers such as the CLI.
	Format Format `toml:"format" yaml:"format"`
}

// DefaultConfig returns the default settings.
func DefaultConfig() Config {
	return Config{
		MaxDepth: parser.DefaultMaxDepth,
		Format:   FormatSExpr,
	}
}

// Options converts the configuration into parser options.
func (c Config) Options(log *zap.Logger) parser.Options {
	return parser.Options{
		Strict:   c.Strict,
		MaxDepth: c.MaxDepth,
		MaxNodes: c.MaxNodes,
		PairTags: c.PairTags,
		Logger:   log,
	}
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if c.MaxDepth < 0 {
		return fmt.Errorf("max_depth must not be negative, got %d", c.MaxDepth)
	}
	if c.MaxNodes < 0 {
		return fmt.Errorf("max_nodes must not be negative, got %d", c.MaxNodes)
	}
	for _, name := range c.PairTags {
		if name == "" || strings.ContainsAny(name, " \t\n{}/") {
			return fmt.Errorf("invalid pair tag name %q", name)
		}
	}
	if _, err := ParseFormat(string(c.Format)); err != nil {
		return err
	}
	return nil
}

// LoadConfig reads a configuration file. The format is chosen by
// extension; settings missing from the file keep their defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		// An empty document leaves the defaults alone.
		if err := dec.Decode(&cfg); err != nil && len(bytes.TrimSpace(data)) > 0 {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		return cfg, fmt.Errorf("unsupported config format %q", ext)
	}
	if cfg.Format == "" {
		cfg.Format = FormatSExpr
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// FindConfig looks for a configuration file in dir and its parents.
func FindConfig(dir string) (string, bool) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", false
	}
	for {
		for _, name := range ConfigNames {
			path := filepath.Join(dir, name)
			if info, err := os.Stat(path); err == nil && !info.IsDir() {
				return path, true
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

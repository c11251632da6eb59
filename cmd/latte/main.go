package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	latte "github.com/josbeir/tree-sitter-latte"
	"github.com/josbeir/tree-sitter-latte/internal/lsp"
)

// errDiagnostics signals that syntax errors were printed; main exits with
// status 1 without printing anything else.
var errDiagnostics = errors.New("syntax errors found")

var (
	configPath string
	verbose    bool
	strict     bool
	format     string

	logger = zap.NewNop()
)

var rootCmd = cobra.Command{
	Use:           "latte",
	Short:         "Parse and check Latte templates",
	Version:       latte.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		log, err := newLogger()
		if err != nil {
			return fmt.Errorf("creating logger: %w", err)
		}
		logger = log
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

var parseCmd = cobra.Command{
	Use:   "parse FILE",
	Short: "Print the syntax tree of a template",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		return runParse(cmd.OutOrStdout(), cmd.ErrOrStderr(), newEnvironment(cfg), args[0])
	},
}

var checkCmd = cobra.Command{
	Use:   "check FILE|DIR...",
	Short: "Report syntax errors in templates",
	Long:  "Parses every file given, and every .latte file below each directory given, and prints their syntax errors.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		return runCheck(cmd.Context(), cmd.OutOrStdout(), newEnvironment(cfg), args)
	},
}

var lspCmd = cobra.Command{
	Use:   "lsp",
	Short: "Run the language server on stdin and stdout",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		srv := lsp.NewServer(lsp.Options{
			Config:   cfg,
			Discover: configPath == "",
			Logger:   logger,
		})
		return srv.Serve(cmd.Context(), lsp.Stdio())
	},
}

func newLogger() (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	return cfg.Build()
}

// loadConfig reads --config, or a config file found from the working
// directory, and applies the flags that were set on top of it.
func loadConfig(cmd *cobra.Command) (latte.Config, error) {
	cfg := latte.DefaultConfig()
	path := configPath
	if path == "" {
		if found, ok := latte.FindConfig("."); ok {
			path = found
		}
	}
	if path != "" {
		loaded, err := latte.LoadConfig(path)
		if err != nil {
			return cfg, fmt.Errorf("loading config: %w", err)
		}
		cfg = loaded
	}
	flags := cmd.Flags()
	if flags.Changed("strict") {
		cfg.Strict = strict
	}
	if flags.Changed("format") {
		f, err := latte.ParseFormat(format)
		if err != nil {
			return cfg, err
		}
		cfg.Format = f
	}
	return cfg, nil
}

// newEnvironment returns an environment that loads templates by file path.
func newEnvironment(cfg latte.Config) *latte.Environment {
	env := latte.NewEnvironment(cfg)
	env.SetLogger(logger)
	env.SetLoader(func(name string) (string, error) {
		data, err := os.ReadFile(name)
		return string(data), err
	})
	return env
}

func runParse(out, errOut io.Writer, env *latte.Environment, path string) error {
	tmpl, err := env.GetTemplate(path)
	if err != nil {
		var d latte.Diagnostic
		if errors.As(err, &d) {
			printDiagnostic(errOut, d)
			return errDiagnostics
		}
		return err
	}
	if err := latte.Encode(out, tmpl.Document(), env.Config().Format); err != nil {
		return fmt.Errorf("writing tree: %w", err)
	}
	diags := tmpl.Diagnostics()
	for _, d := range diags {
		printDiagnostic(errOut, d)
	}
	if len(diags) > 0 {
		return errDiagnostics
	}
	return nil
}

// runCheck parses the templates concurrently and prints their diagnostics
// in argument order.
func runCheck(ctx context.Context, out io.Writer, env *latte.Environment, args []string) error {
	files, err := collectFiles(args)
	if err != nil {
		return err
	}

	results := make([][]latte.Diagnostic, len(files))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, file := range files {
		i, file := i, file
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			tmpl, err := env.GetTemplate(file)
			if err != nil {
				var d latte.Diagnostic
				if errors.As(err, &d) {
					results[i] = []latte.Diagnostic{d}
					return nil
				}
				return err
			}
			results[i] = tmpl.Diagnostics()
			env.RemoveTemplate(file)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	failed := 0
	for _, diags := range results {
		for _, d := range diags {
			printDiagnostic(out, d)
		}
		if len(diags) > 0 {
			failed++
		}
	}
	if failed > 0 {
		fmt.Fprintf(out, "%d of %d files have syntax errors\n", failed, len(files))
		return errDiagnostics
	}
	return nil
}

// printDiagnostic prints one diagnostic per line, or with its source
// context when verbose.
func printDiagnostic(w io.Writer, d latte.Diagnostic) {
	if verbose {
		fmt.Fprintf(w, "%+v\n", d)
		return
	}
	fmt.Fprintln(w, d)
}

// collectFiles expands directories into the .latte files below them.
func collectFiles(args []string) ([]string, error) {
	var files []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, arg)
			continue
		}
		err = filepath.WalkDir(arg, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && strings.HasSuffix(path, ".latte") {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return files, nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a .latte.toml or .latte.yaml file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&strict, "strict", false, "Stop at the first syntax error")

	parseCmd.Flags().StringVarP(&format, "format", "f", "sexp", "Output format: sexp, json or yaml")
	rootCmd.AddCommand(&parseCmd)
	rootCmd.AddCommand(&checkCmd)
	rootCmd.AddCommand(&lspCmd)
}

func main() {
	err := rootCmd.ExecuteContext(context.Background())
	if errors.Is(err, errDiagnostics) {
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "latte: %v\n", err)
		os.Exit(2)
	}
}

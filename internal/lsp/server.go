// Package lsp implements a Latte language server that reports syntax
// errors as diagnostics. Documents are kept in a latte.Environment and
// reparsed incrementally as the editor sends changes.
package lsp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/segmentio/encoding/json"
	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"
	"go.uber.org/atomic"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	latte "github.com/josbeir/tree-sitter-latte"
)

// ErrExitWithoutShutdown is returned by Serve when the client sent exit
// before shutdown.
var ErrExitWithoutShutdown = errors.New("exit without shutdown")

var errNotInitialized = jsonrpc2.NewError(-32002, "server not initialized")

// Options configures a Server.
type Options struct {
	// Config is used for every document. Strict is ignored: the server
	// always parses resiliently.
	Config latte.Config
	// Discover looks for a configuration file in the workspace root on
	// initialize and uses it instead of Config.
	Discover bool
	// Logger receives request logs; nil means zap.NewNop().
	Logger *zap.Logger
}

// Server is a language server for one client connection.
type Server struct {
	opts Options
	log  *zap.Logger
	env  *latte.Environment
	conn jsonrpc2.Conn

	initialized atomic.Bool // initialize was answered
	shutdown    atomic.Bool
	exited      atomic.Bool
}

// NewServer creates a server.
func NewServer(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	s := &Server{opts: opts, log: opts.Logger}
	s.configure(opts.Config)
	return s
}

func (s *Server) configure(cfg latte.Config) {
	cfg.Strict = false
	s.env = latte.NewEnvironment(cfg)
	s.env.SetLogger(s.log)
}

// Serve runs the server on rwc until the client exits, the connection
// closes or ctx is done.
func (s *Server) Serve(ctx context.Context, rwc io.ReadWriteCloser) error {
	s.conn = jsonrpc2.NewConn(jsonrpc2.NewStream(rwc))
	s.conn.Go(ctx, s.handle)
	select {
	case <-ctx.Done():
		s.conn.Close()
		return ctx.Err()
	case <-s.conn.Done():
	}
	if s.exited.Load() {
		if !s.shutdown.Load() {
			return ErrExitWithoutShutdown
		}
		return nil
	}
	if err := s.conn.Err(); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func (s *Server) handle(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	s.log.Debug("request", zap.String("method", req.Method()))
	method := req.Method()
	if !s.initialized.Load() && method != protocol.MethodInitialize && method != protocol.MethodExit {
		// Notifications are dropped; the replier ignores them.
		return reply(ctx, nil, errNotInitialized)
	}
	switch method {
	case protocol.MethodInitialize:
		var params protocol.InitializeParams
		if err := unmarshal(req, &params); err != nil {
			return reply(ctx, nil, err)
		}
		result := s.initialize(params)
		s.initialized.Store(true)
		return reply(ctx, result, nil)

	case protocol.MethodInitialized:
		s.log.Info("client initialized")
		return reply(ctx, nil, nil)

	case protocol.MethodShutdown:
		s.shutdown.Store(true)
		return reply(ctx, nil, nil)

	case protocol.MethodExit:
		s.exited.Store(true)
		if err := reply(ctx, nil, nil); err != nil {
			return err
		}
		return s.conn.Close()

	case protocol.MethodTextDocumentDidOpen:
		var params protocol.DidOpenTextDocumentParams
		if err := unmarshal(req, &params); err != nil {
			return reply(ctx, nil, err)
		}
		tmpl, err := s.env.AddTemplate(string(params.TextDocument.URI), params.TextDocument.Text)
		if err != nil {
			return reply(ctx, nil, err)
		}
		s.log.Debug("document opened", zap.String("uri", string(params.TextDocument.URI)))
		return reply(ctx, nil, s.publish(ctx, params.TextDocument.URI, tmpl))

	case protocol.MethodTextDocumentDidChange:
		var params didChangeParams
		if err := unmarshal(req, &params); err != nil {
			return reply(ctx, nil, err)
		}
		tmpl, err := s.change(params)
		if err != nil {
			return reply(ctx, nil, err)
		}
		return reply(ctx, nil, s.publish(ctx, params.TextDocument.URI, tmpl))

	case protocol.MethodTextDocumentDidClose:
		var params protocol.DidCloseTextDocumentParams
		if err := unmarshal(req, &params); err != nil {
			return reply(ctx, nil, err)
		}
		s.env.RemoveTemplate(string(params.TextDocument.URI))
		return reply(ctx, nil, s.conn.Notify(ctx, protocol.MethodTextDocumentPublishDiagnostics,
			&protocol.PublishDiagnosticsParams{
				URI:         params.TextDocument.URI,
				Diagnostics: []protocol.Diagnostic{},
			}))
	}
	return jsonrpc2.MethodNotFoundHandler(ctx, reply, req)
}

func (s *Server) initialize(params protocol.InitializeParams) *protocol.InitializeResult {
	if s.opts.Discover {
		if dir, ok := rootDir(params.RootURI); ok {
			s.discover(dir)
		}
	}
	return &protocol.InitializeResult{
		Capabilities: protocol.ServerCapabilities{
			TextDocumentSync: protocol.TextDocumentSyncOptions{
				OpenClose: true,
				Change:    protocol.TextDocumentSyncKindIncremental,
			},
		},
		ServerInfo: &protocol.ServerInfo{
			Name:    "latte-lsp",
			Version: latte.Version,
		},
	}
}

// discover loads the workspace configuration, keeping the current one when
// there is none or it is invalid.
func (s *Server) discover(dir string) {
	path, ok := latte.FindConfig(dir)
	if !ok {
		return
	}
	cfg, err := latte.LoadConfig(path)
	if err != nil {
		s.log.Warn("ignoring invalid config", zap.String("path", path), zap.Error(err))
		return
	}
	s.log.Info("using config", zap.String("path", path))
	s.configure(cfg)
}

func rootDir(root protocol.DocumentURI) (string, bool) {
	u := uri.URI(root)
	if !strings.HasPrefix(string(u), uri.FileScheme+"://") {
		return "", false
	}
	return u.Filename(), true
}

func (s *Server) change(params didChangeParams) (*latte.Template, error) {
	name := string(params.TextDocument.URI)
	tmpl, err := s.env.GetTemplate(name)
	if err != nil {
		return nil, fmt.Errorf("change to unopened document: %w", err)
	}
	src, edits := applyChanges(tmpl.Source(), params.ContentChanges)
	tmpl, err = s.env.UpdateTemplate(name, src, edits...)
	if err != nil {
		return nil, err
	}
	s.log.Debug("document changed",
		zap.String("uri", name),
		zap.Int("edits", len(edits)),
		zap.Int("reused", tmpl.Tree().Reused()))
	return tmpl, nil
}

func (s *Server) publish(ctx context.Context, docURI protocol.DocumentURI, tmpl *latte.Template) error {
	return s.conn.Notify(ctx, protocol.MethodTextDocumentPublishDiagnostics,
		&protocol.PublishDiagnosticsParams{
			URI:         docURI,
			Diagnostics: diagnostics(tmpl),
		})
}

func unmarshal(req jsonrpc2.Request, v any) error {
	if err := json.Unmarshal(req.Params(), v); err != nil {
		return fmt.Errorf("%w: %s", jsonrpc2.ErrInvalidParams, err)
	}
	return nil
}

// Stdio returns the process's standard input and output as a connection.
func Stdio() io.ReadWriteCloser {
	return stdio{}
}

type stdio struct{}

func (stdio) Read(p []byte) (int, error)  { return os.Stdin.Read(p) }
func (stdio) Write(p []byte) (int, error) { return os.Stdout.Write(p) }

func (stdio) Close() error {
	return multierr.Combine(os.Stdin.Close(), os.Stdout.Close())
}

package server

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/corymhall/lc3lsp/debug"
	"github.com/corymhall/lc3lsp/file"
	"github.com/corymhall/lc3lsp/lsp"
	"github.com/corymhall/lc3lsp/rpc"
)

// emptyParams decodes requests that carry no parameters.
type emptyParams struct{}

func (s *Server) Initialize(ctx context.Context, params *lsp.InitializeParams, _ *file.Store) (*lsp.InitializeResult, error) {
	s.stateMu.Lock()
	if s.state >= serverInitializing {
		defer s.stateMu.Unlock()
		return nil, fmt.Errorf("%w: initialize called while server in %v state", rpc.ErrInvalidRequest, s.state)
	}
	s.state = serverInitializing
	s.stateMu.Unlock()

	if params.ClientInfo != nil {
		debug.Logger(ctx).Info("client connected",
			slog.String("client", params.ClientInfo.Name),
			slog.String("clientVersion", params.ClientInfo.Version))
	}
	return &lsp.InitializeResult{
		Capabilities: lsp.ServerCapabilities{
			TextDocumentSync: lsp.TextDocumentSyncKindFull,
			CompletionProvider: &lsp.CompletionOptions{
				TriggerCharacters: []string{"."},
				ResolveProvider:   false,
			},
			DefinitionProvider: true,
			HoverProvider:      true,
		},
		ServerInfo: lsp.ServerInfo{
			Name:    Name,
			Version: Version,
		},
	}, nil
}

func (s *Server) Initialized(ctx context.Context, _ *lsp.InitializedParams, _ *file.Store) error {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	if s.state != serverInitializing {
		return fmt.Errorf("%w: initialized called while server in %v state", rpc.ErrInvalidRequest, s.state)
	}
	s.state = serverInitialized
	return nil
}

// Shutdown implements the 'shutdown' LSP handler. The dispatcher stops
// reading after the reply is sent.
func (s *Server) Shutdown(ctx context.Context, _ *emptyParams, _ *file.Store) (any, error) {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	if s.state != serverShutDown {
		debug.Logger(ctx).Info("shutdown requested", slog.String("state", s.state.String()))
		s.state = serverShutDown
	}
	return nil, nil
}

// Exit ends the dispatch loop; see ExitCode for the process status.
func (s *Server) Exit(ctx context.Context, _ *emptyParams, _ *file.Store) error {
	if s.currentState() != serverShutDown {
		debug.Logger(ctx).Warn("exit without shutdown")
	}
	return nil
}

// checkInitialized rejects requests that arrive before initialize.
func (s *Server) checkInitialized(method string) error {
	if state := s.currentState(); state < serverInitializing {
		return fmt.Errorf("%w: %s called while server in %v state", rpc.ErrServerNotInitialized, method, state)
	}
	return nil
}

package server

import (
	"context"
	"log/slog"

	"github.com/corymhall/lc3lsp/completion"
	"github.com/corymhall/lc3lsp/debug"
	"github.com/corymhall/lc3lsp/file"
	"github.com/corymhall/lc3lsp/lsp"
)

// Completion classifies the text before the cursor and returns the matching
// fixed list. An unknown document completes as if it were empty.
func (s *Server) Completion(ctx context.Context, params *lsp.CompletionParams, docs *file.Store) ([]lsp.CompletionItem, error) {
	if err := s.checkInitialized(lsp.MethodCompletion); err != nil {
		return nil, err
	}
	text := docs.Text(params.TextDocument.URI)
	kind, items := completion.Complete(text, params.Position)

	debug.Logger(ctx).Debug("completion",
		slog.String("uri", string(params.TextDocument.URI)),
		slog.String("context", kind.String()),
		slog.Int("items", len(items)))
	s.metrics.ObserveCompletion(kind.String(), len(items))
	return items, nil
}

// Definition never resolves a symbol.
func (s *Server) Definition(ctx context.Context, params *lsp.DefinitionParams, _ *file.Store) ([]lsp.Location, error) {
	if err := s.checkInitialized(lsp.MethodDefinition); err != nil {
		return nil, err
	}
	return []lsp.Location{}, nil
}

// Hover has no content to offer and answers null.
func (s *Server) Hover(ctx context.Context, params *lsp.HoverParams, _ *file.Store) (*lsp.Hover, error) {
	if err := s.checkInitialized(lsp.MethodHover); err != nil {
		return nil, err
	}
	return nil, nil
}

package server

import (
	"context"
	"log/slog"

	"github.com/corymhall/lc3lsp/debug"
	"github.com/corymhall/lc3lsp/file"
	"github.com/corymhall/lc3lsp/lsp"
)

func (s *Server) DidOpen(ctx context.Context, params *lsp.DidOpenTextDocumentParams, docs *file.Store) error {
	return s.didModifyFile(ctx, docs, file.Modification{
		URI:        params.TextDocument.URI,
		Action:     file.Open,
		Version:    params.TextDocument.Version,
		Text:       params.TextDocument.Text,
		LanguageID: params.TextDocument.LanguageID,
	})
}

// DidChange stores the text of the first content change. Only full sync is
// advertised, so that change holds the whole document.
func (s *Server) DidChange(ctx context.Context, params *lsp.DidChangeTextDocumentParams, docs *file.Store) error {
	if len(params.ContentChanges) == 0 {
		return nil
	}
	return s.didModifyFile(ctx, docs, file.Modification{
		URI:     params.TextDocument.URI,
		Action:  file.Change,
		Version: params.TextDocument.Version,
		Text:    params.ContentChanges[0].Text,
	})
}

func (s *Server) didModifyFile(ctx context.Context, docs *file.Store, mod file.Modification) error {
	if state := s.currentState(); state < serverInitializing {
		debug.Logger(ctx).Debug("dropping notification before initialize", slog.String("state", state.String()))
		return nil
	}
	ctx, _ = debug.With(ctx, slog.String("uri", string(mod.URI)))
	ctx, done := debug.Start(ctx, "textdocument.didModifyFile", slog.String("action", mod.Action.String()))
	defer done()

	if mod.Action == file.Open && file.KindForLang(mod.LanguageID) == file.UnknownKind {
		debug.Logger(ctx).Debug("unrecognized language id", slog.String("languageId", string(mod.LanguageID)))
	}
	if err := docs.Apply(mod); err != nil {
		return err
	}
	if doc, ok := docs.Document(mod.URI); ok {
		debug.Logger(ctx).Debug("document stored",
			slog.Int("version", int(doc.Version)),
			slog.Int("bytes", len(doc.Text)))
	}
	s.metrics.SetDocuments(docs.Len())
	return s.publishDiagnostics(ctx, mod.URI)
}

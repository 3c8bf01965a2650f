package server

import (
	"context"
	"fmt"

	"github.com/corymhall/lc3lsp/lsp"
)

const (
	diagnosticSource  = "lc3_lsp"
	diagnosticMessage = "dummy diagnostic"
)

// placeholderDiagnostics is the fixed report sent for every document until
// the server learns to analyze LC-3 source.
func placeholderDiagnostics() []lsp.Diagnostic {
	return []lsp.Diagnostic{{
		Range: lsp.Range{
			Start: lsp.Position{Line: 0, Character: 0},
			End:   lsp.Position{Line: 0, Character: 1},
		},
		Severity: lsp.SeverityInformation,
		Source:   diagnosticSource,
		Message:  diagnosticMessage,
	}}
}

// publishDiagnostics sends exactly one publishDiagnostics notification for uri.
func (s *Server) publishDiagnostics(ctx context.Context, uri lsp.DocumentURI) error {
	if err := s.client.PublishDiagnostics(ctx, &lsp.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: placeholderDiagnostics(),
	}); err != nil {
		return fmt.Errorf("publishing diagnostics for %s: %w", uri, err)
	}
	return nil
}

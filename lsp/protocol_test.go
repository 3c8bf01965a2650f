package lsp

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"

	"github.com/corymhall/lc3lsp/rpc"
	"github.com/hexops/autogold/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnmarshalJSON(t *testing.T) {
	t.Run("null is a no-op", func(t *testing.T) {
		params := InitializedParams{}
		require.NoError(t, UnmarshalJSON(json.RawMessage("null"), &params))
		require.NoError(t, UnmarshalJSON(nil, &params))
	})

	t.Run("decodes positions", func(t *testing.T) {
		var params CompletionParams
		err := UnmarshalJSON(json.RawMessage(`{"textDocument":{"uri":"file:///a.asm"},"position":{"line":2,"character":5}}`), &params)
		require.NoError(t, err)
		assert.Equal(t, DocumentURI("file:///a.asm"), params.TextDocument.URI)
		assert.Equal(t, Position{Line: 2, Character: 5}, params.Position)
		assert.Nil(t, params.Context)
	})

	t.Run("rejects wrong types", func(t *testing.T) {
		var params DidOpenTextDocumentParams
		err := UnmarshalJSON(json.RawMessage(`{"textDocument":{"uri":1}}`), &params)
		assert.Error(t, err)
	})
}

func TestCompletionItemJSON(t *testing.T) {
	data, err := json.Marshal([]CompletionItem{
		{Label: "R0", Kind: CompletionItemKindVariable, Detail: "General purpose register 0"},
	})
	require.NoError(t, err)
	autogold.Expect(`[{"label":"R0","kind":6,"detail":"General purpose register 0"}]`).Equal(t, string(data))
}

func TestPublishDiagnosticsJSON(t *testing.T) {
	data, err := json.Marshal(&PublishDiagnosticsParams{
		URI: "file:///a.asm",
		Diagnostics: []Diagnostic{{
			Range:    Range{End: Position{Character: 1}},
			Severity: SeverityInformation,
			Source:   "lc3_lsp",
			Message:  "dummy diagnostic",
		}},
	})
	require.NoError(t, err)
	autogold.Expect(`{"uri":"file:///a.asm","diagnostics":[{"range":{"start":{"line":0,"character":0},"end":{"line":0,"character":1}},"severity":3,"source":"lc3_lsp","message":"dummy diagnostic"}]}`).Equal(t, string(data))
}

func TestClientDispatcher(t *testing.T) {
	var out bytes.Buffer
	conn := rpc.NewConn(rpc.NewHeaderStream(strings.NewReader(""), &out), nil)
	client := ClientDispatcher(conn)
	ctx := context.Background()

	require.NoError(t, client.LogMessage(ctx, &LogMessageParams{Type: MessageTypeInfo, Message: "ready"}))
	require.NoError(t, client.PublishDiagnostics(ctx, &PublishDiagnosticsParams{URI: "file:///a.asm", Diagnostics: []Diagnostic{}}))

	s := rpc.NewHeaderStream(bytes.NewReader(out.Bytes()), io.Discard)
	var methods []string
	for {
		msg, _, err := s.Read(ctx)
		if err != nil {
			break
		}
		methods = append(methods, msg.(*rpc.Notification).Method())
	}
	assert.Equal(t, []string{MethodLogMessage, MethodPublishDiagnostics}, methods)
}

package lsp

import (
	"bytes"
	"context"
	"encoding/json"

	"github.com/corymhall/lc3lsp/rpc"
)

type DocumentURI string

type LanguageKind string

// UnmarshalJSON unmarshals msg into the variable pointed to by
// params. In JSONRPC, optional messages may be
// "null", in which case it is a no-op.
func UnmarshalJSON(msg json.RawMessage, v any) error {
	if len(msg) == 0 || bytes.Equal(msg, []byte("null")) {
		return nil
	}
	return json.Unmarshal(msg, v)
}

type connSender interface {
	Notify(ctx context.Context, method string, params any) error
}

type clientDispatcher struct {
	sender connSender
}

// ClientDispatcher returns a Client that sends its notifications over conn.
func ClientDispatcher(conn rpc.Conn) Client {
	return &clientDispatcher{
		sender: conn,
	}
}

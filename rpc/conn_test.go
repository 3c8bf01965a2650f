package rpc

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func frame(body string) string {
	return fmt.Sprintf("Content-Length: %d\r\n\r\n%s", len(body), body)
}

// readFrames decodes every frame written to out.
func readFrames(t *testing.T, out *bytes.Buffer) []Message {
	t.Helper()
	s := NewHeaderStream(bytes.NewReader(out.Bytes()), io.Discard)
	var msgs []Message
	for {
		msg, _, err := s.Read(context.Background())
		if errors.Is(err, io.EOF) {
			return msgs
		}
		require.NoError(t, err)
		msgs = append(msgs, msg)
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestHeaderStreamRead(t *testing.T) {
	ctx := context.Background()

	t.Run("extra headers are ignored", func(t *testing.T) {
		body := `{"jsonrpc":"2.0","method":"initialized","params":{}}`
		in := fmt.Sprintf("Content-Type: application/vscode-jsonrpc; charset=utf-8\r\nContent-Length: %d\r\n\r\n%s", len(body), body)
		s := NewHeaderStream(strings.NewReader(in), io.Discard)
		msg, n, err := s.Read(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(len(in)), n)
		assert.IsType(t, &Notification{}, msg)
	})

	t.Run("missing content length", func(t *testing.T) {
		s := NewHeaderStream(strings.NewReader("Content-Type: text\r\n\r\n{}"), io.Discard)
		_, _, err := s.Read(ctx)
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrParse)
	})

	t.Run("bad body is a parse error", func(t *testing.T) {
		s := NewHeaderStream(strings.NewReader(frame(`{"jsonrpc":`)+frame(`{"jsonrpc":"2.0","method":"exit"}`)), io.Discard)
		_, _, err := s.Read(ctx)
		require.ErrorIs(t, err, ErrParse)

		msg, _, err := s.Read(ctx)
		require.NoError(t, err)
		n, ok := msg.(*Notification)
		require.True(t, ok)
		assert.Equal(t, "exit", n.Method())
	})

	t.Run("end of input", func(t *testing.T) {
		s := NewHeaderStream(strings.NewReader(""), io.Discard)
		_, _, err := s.Read(ctx)
		assert.ErrorIs(t, err, io.EOF)
	})
}

func TestHeaderStreamWrite(t *testing.T) {
	var out bytes.Buffer
	s := NewHeaderStream(strings.NewReader(""), &out)
	n, err := NewNotification("window/logMessage", map[string]any{"type": 3, "message": "hi"})
	require.NoError(t, err)

	written, err := s.Write(context.Background(), n)
	require.NoError(t, err)
	assert.Equal(t, int64(out.Len()), written)
	assert.Equal(t, frame(`{"jsonrpc":"2.0","method":"window/logMessage","params":{"message":"hi","type":3}}`), out.String())
}

func TestConnRun(t *testing.T) {
	ctx := context.Background()

	t.Run("replies to calls in order", func(t *testing.T) {
		in := frame(`{"jsonrpc":"2.0","id":1,"method":"echo","params":"a"}`) +
			frame(`{"jsonrpc":"2.0","method":"note"}`) +
			frame(`{"jsonrpc":"2.0","id":"two","method":"echo","params":"b"}`)
		var out bytes.Buffer
		conn := NewConn(NewHeaderStream(strings.NewReader(in), &out), testLogger())

		var seen []string
		err := conn.Run(ctx, func(ctx context.Context, reply Replier, req Request) error {
			seen = append(seen, req.Method())
			return reply(ctx, req.Params(), nil)
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"echo", "note", "echo"}, seen)

		msgs := readFrames(t, &out)
		require.Len(t, msgs, 2)
		first := msgs[0].(*Response)
		assert.Equal(t, NewIntID(1), first.ID())
		assert.Equal(t, `"a"`, string(first.Result()))
		second := msgs[1].(*Response)
		assert.Equal(t, NewStringID("two"), second.ID())
		assert.Equal(t, `"b"`, string(second.Result()))
	})

	t.Run("stop ends the loop", func(t *testing.T) {
		in := frame(`{"jsonrpc":"2.0","id":1,"method":"stop"}`) +
			frame(`{"jsonrpc":"2.0","id":2,"method":"never"}`)
		var out bytes.Buffer
		conn := NewConn(NewHeaderStream(strings.NewReader(in), &out), testLogger())

		calls := 0
		err := conn.Run(ctx, func(ctx context.Context, reply Replier, req Request) error {
			calls++
			if err := reply(ctx, nil, nil); err != nil {
				return err
			}
			return ErrStop
		})
		require.NoError(t, err)
		assert.Equal(t, 1, calls)
		assert.Len(t, readFrames(t, &out), 1)
	})

	t.Run("malformed frames are skipped", func(t *testing.T) {
		in := frame(`not json`) + frame(`{"jsonrpc":"2.0","id":5,"method":"unknown"}`)
		var out bytes.Buffer
		conn := NewConn(NewHeaderStream(strings.NewReader(in), &out), testLogger())

		require.NoError(t, conn.Run(ctx, MethodNotFound))
		msgs := readFrames(t, &out)
		require.Len(t, msgs, 1)
		resp := msgs[0].(*Response)
		var rpcErr *Error
		require.ErrorAs(t, resp.Err(), &rpcErr)
		assert.Equal(t, int64(CodeMethodNotFound), rpcErr.Code)
		assert.Equal(t, "unhandled method", rpcErr.Message)
	})

	t.Run("client responses are discarded", func(t *testing.T) {
		in := frame(`{"jsonrpc":"2.0","id":9,"result":null}`)
		var out bytes.Buffer
		conn := NewConn(NewHeaderStream(strings.NewReader(in), &out), testLogger())

		err := conn.Run(ctx, func(context.Context, Replier, Request) error {
			t.Fatal("handler must not see responses")
			return nil
		})
		require.NoError(t, err)
		assert.Zero(t, out.Len())
	})

	t.Run("handler errors do not stop the loop", func(t *testing.T) {
		in := frame(`{"jsonrpc":"2.0","method":"a"}`) + frame(`{"jsonrpc":"2.0","method":"b"}`)
		conn := NewConn(NewHeaderStream(strings.NewReader(in), io.Discard), testLogger())

		var seen []string
		err := conn.Run(ctx, func(_ context.Context, _ Replier, req Request) error {
			seen = append(seen, req.Method())
			return errors.New("write failed")
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, seen)
	})

	t.Run("truncated stream is an error", func(t *testing.T) {
		in := "Content-Length: 40\r\n\r\n{\"jsonrpc\""
		conn := NewConn(NewHeaderStream(strings.NewReader(in), io.Discard), testLogger())
		err := conn.Run(ctx, MethodNotFound)
		assert.Error(t, err)
	})

	t.Run("unencodable result becomes internal error", func(t *testing.T) {
		in := frame(`{"jsonrpc":"2.0","id":1,"method":"bad"}`)
		var out bytes.Buffer
		conn := NewConn(NewHeaderStream(strings.NewReader(in), &out), testLogger())

		err := conn.Run(ctx, func(ctx context.Context, reply Replier, _ Request) error {
			return reply(ctx, make(chan int), nil)
		})
		require.NoError(t, err)
		msgs := readFrames(t, &out)
		require.Len(t, msgs, 1)
		var rpcErr *Error
		require.ErrorAs(t, msgs[0].(*Response).Err(), &rpcErr)
		assert.Equal(t, int64(CodeInternalError), rpcErr.Code)
	})
}

func TestConnNotify(t *testing.T) {
	var out bytes.Buffer
	conn := NewConn(NewHeaderStream(strings.NewReader(""), &out), nil)
	require.NoError(t, conn.Notify(context.Background(), "textDocument/publishDiagnostics", map[string]string{"uri": "file:///x.asm"}))

	msgs := readFrames(t, &out)
	require.Len(t, msgs, 1)
	n := msgs[0].(*Notification)
	assert.Equal(t, "textDocument/publishDiagnostics", n.Method())
	assert.JSONEq(t, `{"uri":"file:///x.asm"}`, string(n.Params()))
}

// Package logger holds the program log level and the slog handlers that
// mirror records to the language client.
package logger

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/corymhall/lc3lsp/lsp"
)

var ProgramLevel = new(slog.LevelVar)

// ClientHandler is a slog.Handler that sends each record to the client as a
// window/logMessage notification.
type ClientHandler struct {
	client lsp.Client
	level  slog.Leveler
	attrs  string
	group  string
}

// NewClientHandler returns a handler sending records at or above level to
// client. A nil level means ProgramLevel.
func NewClientHandler(client lsp.Client, level slog.Leveler) *ClientHandler {
	if level == nil {
		level = ProgramLevel
	}
	return &ClientHandler{client: client, level: level}
}

func (h *ClientHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *ClientHandler) Handle(ctx context.Context, r slog.Record) error {
	var b strings.Builder
	b.WriteString(r.Message)
	b.WriteString(h.attrs)
	r.Attrs(func(a slog.Attr) bool {
		writeAttr(&b, h.group, a)
		return true
	})
	return h.client.LogMessage(ctx, &lsp.LogMessageParams{
		Type:    convertLevel(r.Level),
		Message: b.String(),
	})
}

func (h *ClientHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	var b strings.Builder
	b.WriteString(h.attrs)
	for _, a := range attrs {
		writeAttr(&b, h.group, a)
	}
	h2 := *h
	h2.attrs = b.String()
	return &h2
}

func (h *ClientHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	h2 := *h
	h2.group = h.group + name + "."
	return &h2
}

func writeAttr(b *strings.Builder, group string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	if a.Value.Kind() == slog.KindGroup {
		prefix := group
		if a.Key != "" {
			prefix += a.Key + "."
		}
		for _, ga := range a.Value.Group() {
			writeAttr(b, prefix, ga)
		}
		return
	}
	b.WriteByte(' ')
	b.WriteString(group)
	b.WriteString(a.Key)
	b.WriteByte('=')
	b.WriteString(a.Value.String())
}

func convertLevel(level slog.Level) lsp.MessageType {
	switch level {
	case slog.LevelDebug:
		return lsp.MessageTypeDebug
	case slog.LevelInfo:
		return lsp.MessageTypeInfo
	case slog.LevelWarn:
		return lsp.MessageTypeWarning
	case slog.LevelError:
		return lsp.MessageTypeError
	default:
		return lsp.MessageTypeLog
	}
}

type fanout []slog.Handler

// Fanout returns a handler that passes each record to every handler that
// accepts its level.
func Fanout(handlers ...slog.Handler) slog.Handler {
	return fanout(handlers)
}

func (f fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f fanout) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range f {
		if h.Enabled(ctx, r.Level) {
			errs = append(errs, h.Handle(ctx, r.Clone()))
		}
	}
	return errors.Join(errs...)
}

func (f fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (f fanout) WithGroup(name string) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithGroup(name)
	}
	return out
}

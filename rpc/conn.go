package rpc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
)

// Conn is the common interface to jsonrpc servers.
// It reads messages from its stream one at a time, hands requests to a
// Handler and writes replies and notifications back to the same stream.
type Conn interface {
	// Notify invokes the target method but does not wait for a response.
	// The params will be marshaled to JSON before sending over the wire, and will
	// be handed to the method invoked.
	Notify(ctx context.Context, method string, params any) error

	// Run reads and handles messages until the stream fails or the handler
	// returns ErrStop. Each message is handled to completion before the next
	// one is read. A clean end of input or ErrStop returns nil.
	Run(ctx context.Context, handler Handler) error
}

type conn struct {
	stream Stream
	logger *slog.Logger
}

// NewConn creates a new connection object around the supplied stream.
func NewConn(s Stream, logger *slog.Logger) Conn {
	if logger == nil {
		logger = slog.Default()
	}
	return &conn{
		stream: s,
		logger: logger,
	}
}

func (c *conn) Notify(ctx context.Context, method string, params any) (err error) {
	notify, err := NewNotification(method, params)
	if err != nil {
		return fmt.Errorf("marshaling notify parameters: %v", err)
	}
	_, err = c.write(ctx, notify)
	return err
}

func (c *conn) replier(req Request) Replier {
	return func(ctx context.Context, result any, err error) error {
		call, ok := req.(*Call)
		if !ok {
			// request was a notify, no need to respond
			return nil
		}
		response, err := NewResponse(call.id, result, err)
		if err != nil {
			// the result could not be encoded, tell the caller instead
			response, _ = NewResponse(call.id, nil, fmt.Errorf("%w: %v", ErrInternal, err))
		}
		_, err = c.write(ctx, response)
		if err != nil {
			return err
		}
		return nil
	}
}

func (c *conn) write(ctx context.Context, msg Message) (int64, error) {
	return c.stream.Write(ctx, msg)
}

func (c *conn) Run(ctx context.Context, handler Handler) error {
	for {
		// get the next message
		msg, _, err := c.stream.Read(ctx)
		if err != nil {
			if errors.Is(err, ErrParse) {
				c.logger.Warn("dropping malformed message", slog.Any("error", err))
				continue
			}
			if errors.Is(err, io.EOF) {
				return nil
			}
			// The stream failed, we cannot continue.
			return fmt.Errorf("error reading from stream: %w", err)
		}
		switch msg := msg.(type) {
		case Request:
			if err := handler(ctx, c.replier(msg), msg); err != nil {
				if errors.Is(err, ErrStop) {
					return nil
				}
				// delivery failed, not much we can do
				c.logger.Error("handling message failed",
					slog.String("method", msg.Method()),
					slog.Any("error", err))
			}
		case *Response:
			// the server never issues calls, so nobody is waiting for this
			c.logger.Debug("discarding response", slog.String("id", msg.id.String()))
		}
	}
}

package rpc

import (
	"context"
	"errors"
	"fmt"
)

// Error is a JSON-RPC error object. Handlers wrap the sentinel values below with
// fmt.Errorf("%w: ...") so the code survives to the wire.
type Error struct {
	// Code is a number indicating the error type that occurred.
	Code int64 `json:"code"`
	// Message is a short description of the error.
	Message string `json:"message"`
}

// NewError builds an Error with the given code and message.
func NewError(code int64, message string) *Error {
	return &Error{Code: code, Message: message}
}

func (err *Error) Error() string {
	return err.Message
}

// Standard JSON-RPC and LSP error codes.
const (
	CodeParseError           = -32700
	CodeInvalidRequest       = -32600
	CodeMethodNotFound       = -32601
	CodeInvalidParams        = -32602
	CodeInternalError        = -32603
	CodeServerNotInitialized = -32002
)

var (
	// ErrParse is used when invalid JSON was received by the server.
	ErrParse = NewError(CodeParseError, "JSON RPC parse error")
	// ErrInvalidRequest is used when the JSON sent is not a valid Request object.
	ErrInvalidRequest = NewError(CodeInvalidRequest, "JSON RPC invalid request")
	// ErrMethodNotFound should be returned by the handler when the method does
	// not exist / is not available.
	ErrMethodNotFound = NewError(CodeMethodNotFound, "JSON RPC method not found")
	// ErrInvalidParams should be returned by the handler when method
	// parameter(s) were invalid.
	ErrInvalidParams = NewError(CodeInvalidParams, "JSON RPC invalid params")
	// ErrInternal is used for handler failures that carry no code of their own.
	ErrInternal = NewError(CodeInternalError, "JSON RPC internal error")
	// ErrServerNotInitialized is returned for requests that arrive before
	// the initialize handshake.
	ErrServerNotInitialized = NewError(CodeServerNotInitialized, "JSON RPC server not initialized")
)

// ErrStop is returned by a Handler to make Conn.Run return after the current
// message. It is not a failure.
var ErrStop = errors.New("rpc: stop")

// unhandledMethod is the fixed message sent for calls nobody routes.
const unhandledMethod = "unhandled method"

// Handler is invoked to handle incoming requests.
// The Replier sends a reply to the request and must be called exactly once.
type Handler func(ctx context.Context, reply Replier, req Request) error

// Replier is passed to handlers to allow them to reply to the request.
// If err is set then result will be ignored.
type Replier func(ctx context.Context, result any, err error) error

// MethodNotFound is a Handler that replies to all call requests with the
// standard method not found response.
// This should normally be the final handler in a chain.
func MethodNotFound(ctx context.Context, reply Replier, req Request) error {
	return reply(ctx, nil, NewError(CodeMethodNotFound, unhandledMethod))
}

// toWireError converts any error into the object sent on the wire. Coded
// errors keep their code and the full wrapped text; anything else is internal.
func toWireError(err error) *Error {
	if err == nil {
		return nil
	}
	if e, ok := err.(*Error); ok {
		return e
	}
	var coded *Error
	if errors.As(err, &coded) {
		return &Error{Code: coded.Code, Message: err.Error()}
	}
	return &Error{Code: CodeInternalError, Message: fmt.Sprintf("%s: %s", ErrInternal.Message, err)}
}

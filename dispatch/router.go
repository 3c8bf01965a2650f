// Package dispatch routes decoded JSON-RPC messages to registered handlers.
package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/corymhall/lc3lsp/file"
	"github.com/corymhall/lc3lsp/lsp"
	"github.com/corymhall/lc3lsp/rpc"
	"github.com/pulumi/pulumi/sdk/v3/go/common/util/contract"
)

// RequestHandler answers a call. The returned value is the JSON result.
type RequestHandler interface {
	HandleRequest(ctx context.Context, params json.RawMessage, docs *file.Store) (any, error)
}

// NotificationHandler handles a message that never gets a reply.
type NotificationHandler interface {
	HandleNotification(ctx context.Context, params json.RawMessage, docs *file.Store) error
}

type RequestHandlerFunc func(ctx context.Context, params json.RawMessage, docs *file.Store) (any, error)

func (f RequestHandlerFunc) HandleRequest(ctx context.Context, params json.RawMessage, docs *file.Store) (any, error) {
	return f(ctx, params, docs)
}

type NotificationHandlerFunc func(ctx context.Context, params json.RawMessage, docs *file.Store) error

func (f NotificationHandlerFunc) HandleNotification(ctx context.Context, params json.RawMessage, docs *file.Store) error {
	return f(ctx, params, docs)
}

// RequestFunc adapts a typed handler. Params that fail to decode are
// reported as rpc.ErrInvalidParams without calling fn.
func RequestFunc[P, R any](fn func(context.Context, *P, *file.Store) (R, error)) RequestHandler {
	return RequestHandlerFunc(func(ctx context.Context, raw json.RawMessage, docs *file.Store) (any, error) {
		var params P
		if err := lsp.UnmarshalJSON(raw, &params); err != nil {
			return nil, invalidParams(err)
		}
		return fn(ctx, &params, docs)
	})
}

// NotificationFunc is RequestFunc for notifications.
func NotificationFunc[P any](fn func(context.Context, *P, *file.Store) error) NotificationHandler {
	return NotificationHandlerFunc(func(ctx context.Context, raw json.RawMessage, docs *file.Store) error {
		var params P
		if err := lsp.UnmarshalJSON(raw, &params); err != nil {
			return invalidParams(err)
		}
		return fn(ctx, &params, docs)
	})
}

func invalidParams(err error) error {
	return fmt.Errorf("%w: %s", rpc.ErrInvalidParams, err)
}

type requestRoute struct {
	handler  RequestHandler
	terminal bool
}

type notificationRoute struct {
	handler  NotificationHandler
	terminal bool
}

// Router is the method table consulted by the Dispatcher. It is filled once
// at startup and only read afterwards.
type Router struct {
	requests      map[string]requestRoute
	notifications map[string]notificationRoute
}

func NewRouter() *Router {
	return &Router{
		requests:      make(map[string]requestRoute),
		notifications: make(map[string]notificationRoute),
	}
}

func (r *Router) HandleRequest(method string, h RequestHandler) {
	r.addRequest(method, h, false)
}

func (r *Router) HandleNotification(method string, h NotificationHandler) {
	r.addNotification(method, h, false)
}

// HandleShutdown registers a call after whose reply the loop stops.
func (r *Router) HandleShutdown(method string, h RequestHandler) {
	r.addRequest(method, h, true)
}

// HandleExit registers a notification after which the loop stops.
func (r *Router) HandleExit(method string, h NotificationHandler) {
	r.addNotification(method, h, true)
}

func (r *Router) addRequest(method string, h RequestHandler, terminal bool) {
	r.assertFree(method)
	contract.Assertf(h != nil, "nil handler for %q", method)
	r.requests[method] = requestRoute{handler: h, terminal: terminal}
}

func (r *Router) addNotification(method string, h NotificationHandler, terminal bool) {
	r.assertFree(method)
	contract.Assertf(h != nil, "nil handler for %q", method)
	r.notifications[method] = notificationRoute{handler: h, terminal: terminal}
}

func (r *Router) assertFree(method string) {
	_, isRequest := r.requests[method]
	_, isNotification := r.notifications[method]
	contract.Assertf(!isRequest && !isNotification, "method %q registered twice", method)
}

// Request returns the handler for a call method.
func (r *Router) Request(method string) (RequestHandler, bool) {
	route, ok := r.requests[method]
	return route.handler, ok
}

// Notification returns the handler for a notification method.
func (r *Router) Notification(method string) (NotificationHandler, bool) {
	route, ok := r.notifications[method]
	return route.handler, ok
}

// Terminal reports whether handling method ends the dispatch loop.
func (r *Router) Terminal(method string) bool {
	if route, ok := r.requests[method]; ok {
		return route.terminal
	}
	return r.notifications[method].terminal
}

// Methods lists every registered method, sorted.
func (r *Router) Methods() []string {
	methods := make([]string, 0, len(r.requests)+len(r.notifications))
	for m := range r.requests {
		methods = append(methods, m)
	}
	for m := range r.notifications {
		methods = append(methods, m)
	}
	slices.Sort(methods)
	return methods
}

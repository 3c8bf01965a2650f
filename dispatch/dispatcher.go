package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/corymhall/lc3lsp/debug"
	"github.com/corymhall/lc3lsp/file"
	"github.com/corymhall/lc3lsp/metrics"
	"github.com/corymhall/lc3lsp/rpc"
)

// unroutedMethod labels metrics for methods nobody registered.
const unroutedMethod = "other"

// Dispatcher is the rpc.Handler of the server. It owns the document store
// and hands it to every handler; messages are handled one at a time.
type Dispatcher struct {
	router  *Router
	docs    *file.Store
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// New returns a Dispatcher over router. A nil docs gets a fresh store and a
// nil m records no metrics.
func New(router *Router, docs *file.Store, logger *slog.Logger, m *metrics.Metrics) *Dispatcher {
	if docs == nil {
		docs = file.NewStore()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		router:  router,
		docs:    docs,
		logger:  logger,
		metrics: m,
	}
}

// Docs is the store handed to handlers.
func (d *Dispatcher) Docs() *file.Store {
	return d.docs
}

// Handle routes one message. Calls get exactly one reply; notifications
// never get one. It returns rpc.ErrStop after a terminal method.
func (d *Dispatcher) Handle(ctx context.Context, reply rpc.Replier, req rpc.Request) error {
	ctx = debug.WithLogger(ctx, d.logger)
	ctx, _ = debug.With(ctx, slog.String("method", req.Method()))

	switch req := req.(type) {
	case *rpc.Call:
		return d.handleCall(ctx, reply, req)
	case *rpc.Notification:
		return d.handleNotification(ctx, req)
	default:
		return nil
	}
}

func (d *Dispatcher) handleCall(ctx context.Context, reply rpc.Replier, call *rpc.Call) error {
	start := time.Now()
	method := call.Method()
	logger := debug.Logger(ctx)

	h, ok := d.router.Request(method)
	if !ok {
		logger.Debug("unhandled request", slog.String("id", call.ID().String()))
		d.metrics.ObserveRequest(unroutedMethod, metrics.OutcomeUnhandled, time.Since(start))
		return rpc.MethodNotFound(ctx, reply, call)
	}

	result, err := d.request(ctx, h, call.Params())
	outcome := metrics.OutcomeOK
	if err != nil {
		outcome = metrics.OutcomeError
		logger.Debug("request failed", slog.Any("error", err))
	}
	elapsed := time.Since(start)
	logger.Debug("handled request", slog.String("outcome", outcome), slog.Duration("elapsed", elapsed))
	d.metrics.ObserveRequest(method, outcome, elapsed)
	d.metrics.SetDocuments(d.docs.Len())

	terminal := d.router.Terminal(method)
	if rerr := reply(ctx, result, err); rerr != nil {
		if !terminal {
			return fmt.Errorf("replying to %s: %w", method, rerr)
		}
		debug.LogError(ctx, "reply failed", rerr)
	}
	if terminal {
		return rpc.ErrStop
	}
	return nil
}

func (d *Dispatcher) handleNotification(ctx context.Context, n *rpc.Notification) error {
	start := time.Now()
	method := n.Method()

	h, ok := d.router.Notification(method)
	if !ok {
		debug.Logger(ctx).Debug("ignoring notification")
		d.metrics.ObserveNotification(unroutedMethod, metrics.OutcomeUnhandled, time.Since(start))
		return nil
	}

	outcome := metrics.OutcomeOK
	if err := d.notify(ctx, h, n.Params()); err != nil {
		outcome = metrics.OutcomeError
		debug.LogError(ctx, "notification failed", err)
	}
	elapsed := time.Since(start)
	debug.Logger(ctx).Debug("handled notification", slog.String("outcome", outcome), slog.Duration("elapsed", elapsed))
	d.metrics.ObserveNotification(method, outcome, elapsed)
	d.metrics.SetDocuments(d.docs.Len())

	if d.router.Terminal(method) {
		return rpc.ErrStop
	}
	return nil
}

func (d *Dispatcher) request(ctx context.Context, h RequestHandler, params json.RawMessage) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			result, err = nil, fmt.Errorf("%w: handler panic: %v", rpc.ErrInternal, r)
		}
	}()
	return h.HandleRequest(ctx, params, d.docs)
}

func (d *Dispatcher) notify(ctx context.Context, h NotificationHandler, params json.RawMessage) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: handler panic: %v", rpc.ErrInternal, r)
		}
	}()
	return h.HandleNotification(ctx, params, d.docs)
}

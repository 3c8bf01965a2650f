// Package debug carries a request scoped *slog.Logger on the context.
package debug

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

type loggerCtx int

const (
	loggerCtxKey = loggerCtx(iota)
)

// WithLogger returns a context carrying logger.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerCtxKey, logger)
}

// Logger returns the logger carried by ctx, or slog.Default.
func Logger(ctx context.Context) *slog.Logger {
	logger, ok := ctx.Value(loggerCtxKey).(*slog.Logger)
	if !ok || logger == nil {
		return slog.Default()
	}

	return logger
}

func LogError(ctx context.Context, msg string, err error) {
	logger := Logger(ctx)
	logger.Log(ctx, slog.LevelError, msg, slog.Any("error", err))
}

func With(ctx context.Context, args ...any) (context.Context, *slog.Logger) {
	logger := Logger(ctx).With(args...)
	ctx = WithLogger(ctx, logger)
	return ctx, logger
}

// Start logs the beginning of name at debug level and returns a func that
// logs its end with the elapsed time.
func Start(ctx context.Context, name string, args ...any) (context.Context, func()) {
	logger := Logger(ctx)
	logger.Log(ctx, slog.LevelDebug, fmt.Sprintf("%s Starting...", name), args...)
	start := time.Now()

	return ctx, func() {
		args = append(args, slog.Duration("elapsed", time.Since(start)))
		logger.Log(ctx, slog.LevelDebug, fmt.Sprintf("%s Done", name), args...)
	}
}

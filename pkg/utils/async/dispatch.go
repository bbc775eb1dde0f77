package async

import (
	"context"
	"log/slog"
	"runtime/debug"

	"github.com/m-mizutani/ctxlog"
)

// Go runs a named handler in a new goroutine with panic recovery. The
// handler receives the caller's context unchanged, so cancelling it stops
// the handler; the name shows up in panic and error logs to identify which
// background worker failed.
func Go(ctx context.Context, name string, handler func(ctx context.Context) error) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				ctxlog.From(ctx).Error("panic in background worker",
					slog.String("worker", name),
					slog.Any("recover", r),
					slog.String("stack", string(debug.Stack())),
				)
			}
		}()

		if err := handler(ctx); err != nil {
			ctxlog.From(ctx).Error("error in background worker",
				slog.String("worker", name),
				slog.Any("error", err),
			)
		}
	}()
}

// Detach returns a new background context that keeps the logger of the
// original context but drops its cancellation. Use it when a handler must
// outlive the request that spawned it.
func Detach(ctx context.Context) context.Context {
	return ctxlog.With(context.Background(), ctxlog.From(ctx))
}

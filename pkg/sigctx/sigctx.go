package sigctx

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

var shutdownSignals = []os.Signal{
	syscall.SIGINT,
	syscall.SIGTERM,
	syscall.SIGQUIT,
}

// NotifyContext is done on the first shutdown signal.
func NotifyContext() (context.Context, context.CancelFunc) {
	return WithSignals(context.Background(), shutdownSignals...)
}

// WithSignals derives from parent a context that is done when one of sigs
// arrives. Stop relaying the signals by calling the returned func.
func WithSignals(
	parent context.Context, sigs ...os.Signal,
) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, sigs...)
}

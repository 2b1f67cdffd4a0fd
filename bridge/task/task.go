// Package task adapts the agent's asynchronous operations to the bridge's
// synchronous, one-command-per-process model. Each call gets its own
// goroutine and single-use result channel; nothing is shared between calls
// and everything is released on every exit path.
package task

import (
	"context"
	"time"

	"github.com/modumentor/bridge/errors"
)

// Runner carries the per-invocation execution policy. The zero value runs
// operations without a timeout, matching the behavior the backend has
// always relied on; a positive Timeout bounds each operation.
type Runner struct {
	Timeout time.Duration
}

type outcome[T any] struct {
	value T
	err   error
}

// Run executes op to completion and returns its result synchronously. A
// fresh goroutine is created for the call and the derived context is
// cancelled via defer on normal completion, failure and panic alike. Panics
// inside op are converted to errors so a misbehaving operation yields an
// error Result instead of killing the process.
//
// On timeout the operation's goroutine may still be running; its channel
// send cannot block (buffer of one) so it finishes and is collected
// normally.
func Run[T any](ctx context.Context, r *Runner, op func(context.Context) (T, error)) (T, error) {
	var cancel context.CancelFunc
	if r != nil && r.Timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
	} else {
		ctx, cancel = context.WithCancel(ctx)
	}
	defer cancel()

	ch := make(chan outcome[T], 1)
	go func() {
		defer func() {
			if p := recover(); p != nil {
				var zero T
				ch <- outcome[T]{zero, errors.New("operation panicked: %v", p)}
			}
		}()
		value, err := op(ctx)
		ch <- outcome[T]{value, err}
	}()

	select {
	case out := <-ch:
		return out.value, out.err
	case <-ctx.Done():
		var zero T
		return zero, errors.Wrapf(ctx.Err(), "operation did not complete")
	}
}

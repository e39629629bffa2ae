// Package bounded runs blocking operations under a hard deadline.
//
// Many of the libraries behind an operation (PDF parsing, word-document conversion) cannot be
// interrupted, so a timed-out operation keeps running in its goroutine and its result is
// discarded. Operations that do honor ctx (exec'd processes, HTTP calls) are cancelled.
package bounded

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrTimedOut is returned when the deadline fires before the operation completes.
var ErrTimedOut = errors.New("operation timed out")

// Op is a blocking unit of work.
type Op[T any] func(ctx context.Context) (T, error)

type outcome[T any] struct {
	val T
	err error
}

// Run executes op and returns its result, or ErrTimedOut if d elapses first.
// A non-positive d only bounds op by ctx. Any deadline, d or an inherited one, maps to
// ErrTimedOut; plain cancellation returns ctx.Err().
func Run[T any](ctx context.Context, d time.Duration, op Op[T]) (T, error) {
	var zero T
	if d > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}

	done := make(chan outcome[T], 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome[T]{err: fmt.Errorf("operation panicked: %v", r)}
			}
		}()
		v, err := op(ctx)
		done <- outcome[T]{val: v, err: err}
	}()

	select {
	case out := <-done:
		// A cooperative op may surface the deadline itself.
		if out.err != nil && errors.Is(out.err, context.DeadlineExceeded) {
			return zero, fmt.Errorf("%w: %v", ErrTimedOut, out.err)
		}
		return out.val, out.err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return zero, ErrTimedOut
		}
		return zero, ctx.Err()
	}
}

// IsTimeout reports whether err came from a deadline.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimedOut) || errors.Is(err, context.DeadlineExceeded)
}

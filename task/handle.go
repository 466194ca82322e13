package task

import (
	"context"
	"runtime"
	"sync/atomic"
	"time"
)

// stackSize bounds the stack captured for a panicking task.
const stackSize = 4096

// Handle is the only way to observe a spawned task's outcome.
//
// A Handle must be joined exactly once. Dropping it without joining is allowed
// but forfeits both the value and any failure.
type Handle[R any] struct {
	done   chan struct{}
	value  R
	err    error
	joined atomic.Bool
}

// Spawn starts fn on a new goroutine immediately and returns its Handle.
//
// Example:
//
//	h := task.Spawn(func() int { return expensiveSum(data) })
//	doOtherWork()
//	sum, err := h.Join()
func Spawn[R any](fn func() R) *Handle[R] {
	return SpawnFunc(func() (R, error) {
		return fn(), nil
	})
}

// SpawnFunc starts fn on a new goroutine. An error returned by fn becomes the
// task's outcome; a panic becomes a *Failure.
func SpawnFunc[R any](fn func() (R, error)) *Handle[R] {
	h := &Handle[R]{done: make(chan struct{})}
	go h.run(fn)
	return h
}

// SpawnContext is SpawnFunc for bodies that accept a context. The context is
// handed to fn as is; cancelling it does not stop the task unless fn checks it.
func SpawnContext[R any](ctx context.Context, fn func(context.Context) (R, error)) *Handle[R] {
	return SpawnFunc(func() (R, error) {
		return fn(ctx)
	})
}

// run executes fn with panic recovery. Goexit is detected by fn neither
// returning nor panicking.
func (h *Handle[R]) run(fn func() (R, error)) {
	returned := false
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, stackSize)
			n := runtime.Stack(buf, false)
			h.err = &Failure{Value: r, Stack: buf[:n]}
		} else if !returned {
			h.err = &Failure{Goexit: true}
		}
		close(h.done)
	}()

	h.value, h.err = fn()
	returned = true
}

// Join blocks until the task finishes and returns its outcome.
// It returns ErrAlreadyJoined if the outcome was already taken.
func (h *Handle[R]) Join() (R, error) {
	<-h.done
	return h.take()
}

// JoinContext is Join with cancellation. If ctx ends first it returns ctx.Err()
// and the handle stays joinable.
func (h *Handle[R]) JoinContext(ctx context.Context) (R, error) {
	select {
	case <-h.done:
		return h.take()
	case <-ctx.Done():
		var zero R
		return zero, ctx.Err()
	}
}

// JoinTimeout waits at most d for the task. On expiry it returns
// context.DeadlineExceeded and the handle stays joinable.
func (h *Handle[R]) JoinTimeout(d time.Duration) (R, error) {
	ctx, cancel := context.WithTimeout(context.Background(), d)
	defer cancel()
	return h.JoinContext(ctx)
}

// Done returns a channel that is closed when the task finishes.
func (h *Handle[R]) Done() <-chan struct{} {
	return h.done
}

// IsFinished reports whether the task has finished, without consuming it.
func (h *Handle[R]) IsFinished() bool {
	select {
	case <-h.done:
		return true
	default:
		return false
	}
}

func (h *Handle[R]) take() (R, error) {
	if !h.joined.CompareAndSwap(false, true) {
		var zero R
		return zero, ErrAlreadyJoined
	}
	return h.value, h.err
}

package channel

import (
	"context"
	"errors"
	"iter"
	"sync/atomic"
	"time"

	"github.com/utkarsh5026/crew/internal/queue"
)

// shared is the state behind every handle of one channel.
type shared[T any] struct {
	q         *queue.Queue[T]
	senders   atomic.Int64
	receivers atomic.Int64
}

// acquire increments n unless it already dropped to zero.
func acquire(n *atomic.Int64) bool {
	for {
		cur := n.Load()
		if cur <= 0 {
			return false
		}
		if n.CompareAndSwap(cur, cur+1) {
			return true
		}
	}
}

// Sender is the sending half of a channel. Each Sender must be closed exactly
// once; the channel disconnects when the last live Sender is closed.
type Sender[T any] struct {
	ch     *shared[T]
	closed atomic.Bool
}

// Receiver is the receiving half of a channel. Clones share one queue, so every
// item is delivered to exactly one Receiver.
type Receiver[T any] struct {
	ch     *shared[T]
	closed atomic.Bool
}

// New creates a channel and returns its first Sender and Receiver.
// The channel is unbounded unless WithCapacity is given.
func New[T any](opts ...Option) (*Sender[T], *Receiver[T]) {
	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}

	ch := &shared[T]{q: queue.New[T](cfg.capacity)}
	ch.senders.Store(1)
	ch.receivers.Store(1)

	return &Sender[T]{ch: ch}, &Receiver[T]{ch: ch}
}

// Unbounded is shorthand for New without options.
func Unbounded[T any]() (*Sender[T], *Receiver[T]) {
	return New[T]()
}

// Bounded is shorthand for New(WithCapacity(capacity)).
func Bounded[T any](capacity int) (*Sender[T], *Receiver[T]) {
	return New[T](WithCapacity(capacity))
}

// Send enqueues item, blocking only while a bounded channel is full.
func (s *Sender[T]) Send(item T) error {
	return s.SendContext(context.Background(), item)
}

// SendContext is Send with cancellation. It returns ctx.Err() if the context ends
// while waiting for a free slot.
func (s *Sender[T]) SendContext(ctx context.Context, item T) error {
	if s.closed.Load() {
		return ErrClosed
	}
	return sendErr(s.ch.q.Enqueue(ctx, item))
}

// TrySend enqueues item without blocking.
func (s *Sender[T]) TrySend(item T) error {
	if s.closed.Load() {
		return ErrClosed
	}
	return sendErr(s.ch.q.TryEnqueue(item))
}

// Clone returns a new Sender for the same channel. Cloning a closed handle
// returns a closed handle.
func (s *Sender[T]) Clone() *Sender[T] {
	clone := &Sender[T]{ch: s.ch}
	if s.closed.Load() || !acquire(&s.ch.senders) {
		clone.closed.Store(true)
	}
	return clone
}

// Close releases this handle. When the last Sender is closed the channel
// disconnects: buffered items are still delivered, then receivers observe
// ErrDisconnected. Closing a handle twice returns ErrClosed.
func (s *Sender[T]) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return ErrClosed
	}
	if s.ch.senders.Add(-1) == 0 {
		s.ch.q.Close()
	}
	return nil
}

// Len returns the number of buffered items.
func (s *Sender[T]) Len() int { return s.ch.q.Len() }

// Cap returns the bound of the channel, 0 when unbounded.
func (s *Sender[T]) Cap() int { return s.ch.q.Cap() }

// IsClosed reports whether every Sender of the channel has been closed.
func (s *Sender[T]) IsClosed() bool { return s.ch.q.IsClosed() }

// Recv blocks until an item is available or the channel disconnects.
func (r *Receiver[T]) Recv() (T, error) {
	return r.RecvContext(context.Background())
}

// RecvContext is Recv with cancellation. It returns ctx.Err() if the context
// ends first.
func (r *Receiver[T]) RecvContext(ctx context.Context) (T, error) {
	if r.closed.Load() {
		var zero T
		return zero, ErrDisconnected
	}
	return recvErr[T](r.ch.q.Dequeue(ctx, nil))
}

// RecvTimeout waits at most d for an item. The error is ErrTimeout when the
// channel is still open and ErrDisconnected when it is closed and drained.
func (r *Receiver[T]) RecvTimeout(d time.Duration) (T, error) {
	return r.RecvTimeoutContext(context.Background(), d)
}

// RecvTimeoutContext is RecvTimeout that also gives up when ctx ends, returning
// ctx.Err().
func (r *Receiver[T]) RecvTimeoutContext(ctx context.Context, d time.Duration) (T, error) {
	if r.closed.Load() {
		var zero T
		return zero, ErrDisconnected
	}

	if d <= 0 {
		item, err := r.TryRecv()
		if errors.Is(err, ErrEmpty) {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return item, ctxErr
			}
			err = ErrTimeout
		}
		return item, err
	}

	timer := time.NewTimer(d)
	defer timer.Stop()
	return recvErr[T](r.ch.q.Dequeue(ctx, timer.C))
}

// TryRecv takes an item without blocking. The error is ErrEmpty when nothing is
// buffered and ErrDisconnected when the channel is closed and drained.
func (r *Receiver[T]) TryRecv() (T, error) {
	if r.closed.Load() {
		var zero T
		return zero, ErrDisconnected
	}
	return recvErr[T](r.ch.q.TryDequeue())
}

// All yields received items until the channel disconnects.
//
//	for msg := range rx.All() {
//	    fmt.Println(msg)
//	}
func (r *Receiver[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		for {
			item, err := r.Recv()
			if err != nil {
				return
			}
			if !yield(item) {
				return
			}
		}
	}
}

// Clone returns a new Receiver for the same channel. Cloning a closed handle
// returns a closed handle.
func (r *Receiver[T]) Clone() *Receiver[T] {
	clone := &Receiver[T]{ch: r.ch}
	if r.closed.Load() || !acquire(&r.ch.receivers) {
		clone.closed.Store(true)
	}
	return clone
}

// Close releases this handle. When the last Receiver is closed buffered items
// are dropped and every later Send returns ErrClosed.
func (r *Receiver[T]) Close() error {
	if !r.closed.CompareAndSwap(false, true) {
		return ErrClosed
	}
	if r.ch.receivers.Add(-1) == 0 {
		r.ch.q.Abandon()
	}
	return nil
}

// Len returns the number of buffered items.
func (r *Receiver[T]) Len() int { return r.ch.q.Len() }

// Cap returns the bound of the channel, 0 when unbounded.
func (r *Receiver[T]) Cap() int { return r.ch.q.Cap() }

// IsClosed reports whether every Sender of the channel has been closed.
func (r *Receiver[T]) IsClosed() bool { return r.ch.q.IsClosed() }

func sendErr(err error) error {
	if errors.Is(err, queue.ErrClosed) {
		return ErrClosed
	}
	if errors.Is(err, queue.ErrFull) {
		return ErrFull
	}
	return err
}

func recvErr[T any](item T, err error) (T, error) {
	switch {
	case err == nil:
		return item, nil
	case errors.Is(err, queue.ErrClosed):
		return item, ErrDisconnected
	case errors.Is(err, queue.ErrExpired):
		return item, ErrTimeout
	case errors.Is(err, queue.ErrEmpty):
		return item, ErrEmpty
	default:
		return item, err
	}
}

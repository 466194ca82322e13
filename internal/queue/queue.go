package queue

import (
	"context"
	"errors"
	"sync"
	"time"
)

var (
	ErrFull    = errors.New("queue is full")
	ErrClosed  = errors.New("queue is closed")
	ErrEmpty   = errors.New("queue is empty")
	ErrExpired = errors.New("queue wait expired")
)

const (
	// Initial ring size for a queue; the ring doubles whenever it fills up.
	defaultInitialCapacity = 16
)

// Queue is a multi-producer multi-consumer FIFO queue.
//
// It has two independent ways of shutting down:
//   - Close: no further items will be enqueued. Items already buffered are still
//     handed out, after which every dequeue reports ErrClosed.
//   - Abandon: nobody will ever dequeue again. Buffered items are dropped and
//     every enqueue reports ErrClosed.
//
// A Queue created with a positive bound applies backpressure: Enqueue blocks while
// the queue holds bound items and TryEnqueue reports ErrFull.
type Queue[T any] struct {
	mu        sync.Mutex
	ring      []T
	head      int
	size      int
	bound     int
	closed    bool
	abandoned bool

	// Notification channel for data (BUFFERED, NEVER CLOSED)
	notifyC chan struct{}

	// Notification channel for free slots in bounded mode (BUFFERED, NEVER CLOSED)
	spaceC chan struct{}

	// Closed on Close
	closeC chan struct{}

	// Closed on Abandon
	abandonC chan struct{}
}

// New creates a queue. A bound <= 0 creates an unbounded queue.
func New[T any](bound int) *Queue[T] {
	if bound < 0 {
		bound = 0
	}

	initial := defaultInitialCapacity
	if bound > 0 && bound < initial {
		initial = bound
	}

	return &Queue[T]{
		ring:     make([]T, initial),
		bound:    bound,
		notifyC:  make(chan struct{}, 1),
		spaceC:   make(chan struct{}, 1),
		closeC:   make(chan struct{}),
		abandonC: make(chan struct{}),
	}
}

// TryEnqueue adds an item without blocking.
// Returns ErrClosed if the queue was closed or abandoned and ErrFull if a bounded
// queue has no free slot.
func (q *Queue[T]) TryEnqueue(value T) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed || q.abandoned {
		return ErrClosed
	}

	if q.IsBounded() && q.size >= q.bound {
		return ErrFull
	}

	if q.size == len(q.ring) {
		q.grow()
	}

	q.ring[(q.head+q.size)%len(q.ring)] = value
	q.size++

	signal(q.notifyC)
	if q.IsBounded() && q.size < q.bound {
		// pass the baton to the next blocked producer
		signal(q.spaceC)
	}
	return nil
}

// Enqueue adds an item, blocking while a bounded queue is full.
// Returns ctx.Err() if the context ends first.
func (q *Queue[T]) Enqueue(ctx context.Context, value T) error {
	for {
		err := q.TryEnqueue(value)
		if !errors.Is(err, ErrFull) {
			return err
		}

		select {
		case <-q.spaceC:
		case <-q.closeC:
		case <-q.abandonC:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// TryDequeue removes the oldest item without blocking.
// Returns ErrEmpty if nothing is buffered yet and ErrClosed once the queue is
// closed and fully drained.
func (q *Queue[T]) TryDequeue() (T, error) {
	var zero T

	q.mu.Lock()
	defer q.mu.Unlock()

	if q.size == 0 {
		if q.closed || q.abandoned {
			return zero, ErrClosed
		}
		return zero, ErrEmpty
	}

	value := q.ring[q.head]
	q.ring[q.head] = zero
	q.head = (q.head + 1) % len(q.ring)
	q.size--

	if q.size > 0 {
		// wake the next waiting consumer, the signal we consumed covered one item only
		signal(q.notifyC)
	}
	if q.IsBounded() {
		signal(q.spaceC)
	}
	return value, nil
}

// Dequeue removes the oldest item, blocking until one is available.
//
// It returns ErrClosed once the queue is closed and drained, ErrExpired if expire
// fires first, or ctx.Err() if the context ends first. A nil expire channel never
// fires.
func (q *Queue[T]) Dequeue(ctx context.Context, expire <-chan time.Time) (T, error) {
	var zero T

	for {
		value, err := q.TryDequeue()
		if !errors.Is(err, ErrEmpty) {
			return value, err
		}

		select {
		case <-q.notifyC:
		case <-q.closeC:
			// One more pass: items enqueued before Close must still be drained.
		case <-q.abandonC:
		case <-expire:
			return zero, ErrExpired
		case <-ctx.Done():
			return zero, ctx.Err()
		}
	}
}

// Len returns the number of buffered items.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.size
}

// Cap returns the bound of the queue, 0 when unbounded.
func (q *Queue[T]) Cap() int {
	return q.bound
}

// IsBounded returns whether the queue applies backpressure.
func (q *Queue[T]) IsBounded() bool {
	return q.bound > 0
}

// Close marks the queue as closed.
// No new items can be enqueued after close. Safe to call more than once.
func (q *Queue[T]) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	close(q.closeC)
}

// Abandon drops every buffered item and rejects all future enqueues.
// Safe to call more than once.
func (q *Queue[T]) Abandon() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.abandoned {
		return
	}
	q.abandoned = true

	var zero T
	for i := range q.ring {
		q.ring[i] = zero
	}
	q.head, q.size = 0, 0
	close(q.abandonC)
}

// IsClosed returns whether Close has been called.
func (q *Queue[T]) IsClosed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}

// IsAbandoned returns whether Abandon has been called.
func (q *Queue[T]) IsAbandoned() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.abandoned
}

// grow doubles the ring, keeping items in FIFO order. Caller holds q.mu.
func (q *Queue[T]) grow() {
	next := make([]T, max(len(q.ring)*2, 1))
	for i := range q.size {
		next[i] = q.ring[(q.head+i)%len(q.ring)]
	}
	q.ring = next
	q.head = 0
}

// signal performs a non-blocking send on a wake-up channel.
func signal(c chan struct{}) {
	select {
	case c <- struct{}{}:
	default:
	}
}

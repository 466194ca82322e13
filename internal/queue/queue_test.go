package queue

import (
	"context"
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestQueue_BasicEnqueueDequeue(t *testing.T) {
	q := New[int](0)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if err := q.Enqueue(ctx, i); err != nil {
			t.Fatalf("failed to enqueue %d: %v", i, err)
		}
	}

	for i := 0; i < 5; i++ {
		val, err := q.Dequeue(ctx, nil)
		if err != nil {
			t.Fatalf("failed to dequeue: %v", err)
		}
		if val != i {
			t.Errorf("expected %d, got %d", i, val)
		}
	}
}

func TestQueue_GrowsPastInitialCapacity(t *testing.T) {
	q := New[int](0)

	total := defaultInitialCapacity*4 + 3
	// Interleave a few dequeues so the ring wraps before it grows.
	for i := 0; i < 5; i++ {
		if err := q.TryEnqueue(i); err != nil {
			t.Fatalf("enqueue %d: %v", i, err)
		}
	}
	for i := 0; i < 5; i++ {
		if _, err := q.TryDequeue(); err != nil {
			t.Fatalf("dequeue %d: %v", i, err)
		}
	}

	for i := 0; i < total; i++ {
		if err := q.TryEnqueue(i); err != nil {
			t.Fatalf("enqueue %d: %v", i, err)
		}
	}

	if q.Len() != total {
		t.Fatalf("expected len %d, got %d", total, q.Len())
	}

	for i := 0; i < total; i++ {
		val, err := q.TryDequeue()
		if err != nil {
			t.Fatalf("dequeue %d: %v", i, err)
		}
		if val != i {
			t.Fatalf("expected %d, got %d", i, val)
		}
	}
}

func TestQueue_Bound(t *testing.T) {
	tests := []struct {
		bound       int
		wantBounded bool
		wantCap     int
	}{
		{-3, false, 0},
		{0, false, 0},
		{1, true, 1},
		{512, true, 512},
	}

	for _, tt := range tests {
		q := New[int](tt.bound)
		if got := q.IsBounded(); got != tt.wantBounded {
			t.Errorf("New(%d).IsBounded() = %v, want %v", tt.bound, got, tt.wantBounded)
		}
		if got := q.Cap(); got != tt.wantCap {
			t.Errorf("New(%d).Cap() = %d, want %d", tt.bound, got, tt.wantCap)
		}
	}
}

func TestQueue_BoundedQueueFull(t *testing.T) {
	capacity := 4
	q := New[int](capacity)

	for i := 0; i < capacity; i++ {
		if err := q.TryEnqueue(i); err != nil {
			t.Fatalf("failed to enqueue %d: %v", i, err)
		}
	}

	if err := q.TryEnqueue(999); !errors.Is(err, ErrFull) {
		t.Errorf("expected ErrFull, got %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if err := q.Enqueue(ctx, 999); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected blocked enqueue to end with deadline exceeded, got %v", err)
	}
}

func TestQueue_BoundedEnqueueUnblocksOnDequeue(t *testing.T) {
	q := New[int](1)
	ctx := context.Background()

	if err := q.Enqueue(ctx, 1); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	done := make(chan error, 1)
	go func() {
		done <- q.Enqueue(ctx, 2)
	}()

	select {
	case err := <-done:
		t.Fatalf("enqueue should block on a full queue, returned %v", err)
	case <-time.After(30 * time.Millisecond):
	}

	if v, err := q.Dequeue(ctx, nil); err != nil || v != 1 {
		t.Fatalf("expected 1, got %d (%v)", v, err)
	}

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("blocked enqueue failed: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("blocked enqueue never resumed")
	}

	if v, err := q.Dequeue(ctx, nil); err != nil || v != 2 {
		t.Fatalf("expected 2, got %d (%v)", v, err)
	}
}

func TestQueue_CloseDrainsThenReportsClosed(t *testing.T) {
	q := New[string](0)
	ctx := context.Background()

	_ = q.TryEnqueue("a")
	_ = q.TryEnqueue("b")
	q.Close()
	q.Close()

	if err := q.TryEnqueue("c"); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed after close, got %v", err)
	}

	for _, want := range []string{"a", "b"} {
		got, err := q.Dequeue(ctx, nil)
		if err != nil {
			t.Fatalf("expected buffered item %q, got error %v", want, err)
		}
		if got != want {
			t.Errorf("expected %q, got %q", want, got)
		}
	}

	if _, err := q.Dequeue(ctx, nil); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed on drained queue, got %v", err)
	}
	if _, err := q.TryDequeue(); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed from TryDequeue, got %v", err)
	}
}

func TestQueue_CloseWakesBlockedConsumers(t *testing.T) {
	q := New[int](0)
	consumers := 4

	var wg sync.WaitGroup
	var closedCount atomic.Int32
	wg.Add(consumers)
	for i := 0; i < consumers; i++ {
		go func() {
			defer wg.Done()
			if _, err := q.Dequeue(context.Background(), nil); errors.Is(err, ErrClosed) {
				closedCount.Add(1)
			}
		}()
	}

	time.Sleep(20 * time.Millisecond)
	q.Close()

	waitDone := make(chan struct{})
	go func() {
		wg.Wait()
		close(waitDone)
	}()

	select {
	case <-waitDone:
	case <-time.After(time.Second):
		t.Fatal("consumers were not woken by Close")
	}

	if closedCount.Load() != int32(consumers) {
		t.Errorf("expected %d consumers to observe ErrClosed, got %d", consumers, closedCount.Load())
	}
}

func TestQueue_DequeueExpires(t *testing.T) {
	q := New[int](0)

	start := time.Now()
	_, err := q.Dequeue(context.Background(), time.After(50*time.Millisecond))
	elapsed := time.Since(start)

	if !errors.Is(err, ErrExpired) {
		t.Fatalf("expected ErrExpired, got %v", err)
	}
	if elapsed < 40*time.Millisecond {
		t.Errorf("dequeue returned too early: %v", elapsed)
	}

	// Still usable afterwards.
	_ = q.TryEnqueue(7)
	if v, err := q.Dequeue(context.Background(), time.After(time.Second)); err != nil || v != 7 {
		t.Errorf("expected 7 after expiry, got %d (%v)", v, err)
	}
}

func TestQueue_DequeueContextCancelled(t *testing.T) {
	q := New[int](0)
	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	if _, err := q.Dequeue(ctx, nil); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestQueue_Abandon(t *testing.T) {
	q := New[int](1)
	_ = q.TryEnqueue(1)

	blocked := make(chan error, 1)
	go func() {
		blocked <- q.Enqueue(context.Background(), 2)
	}()

	time.Sleep(20 * time.Millisecond)
	q.Abandon()

	select {
	case err := <-blocked:
		if !errors.Is(err, ErrClosed) {
			t.Errorf("expected ErrClosed for blocked producer, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("blocked producer was not released by Abandon")
	}

	if q.Len() != 0 {
		t.Errorf("expected abandoned queue to be empty, got %d", q.Len())
	}
	if !q.IsAbandoned() {
		t.Error("expected IsAbandoned to be true")
	}
}

func TestQueue_ConcurrentProducersConsumers(t *testing.T) {
	q := New[int](0)
	ctx := context.Background()

	producerCount := 8
	itemsPerProducer := 500
	consumerCount := 4

	var producers sync.WaitGroup
	producers.Add(producerCount)
	for p := 0; p < producerCount; p++ {
		go func(producerID int) {
			defer producers.Done()
			for i := 0; i < itemsPerProducer; i++ {
				if err := q.Enqueue(ctx, producerID*itemsPerProducer+i); err != nil {
					t.Errorf("producer %d: enqueue failed: %v", producerID, err)
					return
				}
			}
		}(p)
	}

	var mu sync.Mutex
	seen := make([]int, 0, producerCount*itemsPerProducer)
	var consumers sync.WaitGroup
	consumers.Add(consumerCount)
	for c := 0; c < consumerCount; c++ {
		go func() {
			defer consumers.Done()
			for {
				v, err := q.Dequeue(ctx, nil)
				if err != nil {
					return
				}
				mu.Lock()
				seen = append(seen, v)
				mu.Unlock()
			}
		}()
	}

	producers.Wait()
	q.Close()
	consumers.Wait()

	if len(seen) != producerCount*itemsPerProducer {
		t.Fatalf("expected %d items, got %d", producerCount*itemsPerProducer, len(seen))
	}

	sort.Ints(seen)
	for i, v := range seen {
		if v != i {
			t.Fatalf("item %d missing or duplicated (found %d)", i, v)
		}
	}
}

func TestQueue_PerProducerOrderSingleConsumer(t *testing.T) {
	q := New[[2]int](0)
	ctx := context.Background()

	producerCount := 4
	itemsPerProducer := 200

	var wg sync.WaitGroup
	wg.Add(producerCount)
	for p := 0; p < producerCount; p++ {
		go func(id int) {
			defer wg.Done()
			for i := 0; i < itemsPerProducer; i++ {
				_ = q.Enqueue(ctx, [2]int{id, i})
			}
		}(p)
	}

	go func() {
		wg.Wait()
		q.Close()
	}()

	next := make([]int, producerCount)
	for {
		item, err := q.Dequeue(ctx, nil)
		if err != nil {
			break
		}
		if item[1] != next[item[0]] {
			t.Fatalf("producer %d: expected seq %d, got %d", item[0], next[item[0]], item[1])
		}
		next[item[0]]++
	}

	for p, n := range next {
		if n != itemsPerProducer {
			t.Errorf("producer %d: received %d items, want %d", p, n, itemsPerProducer)
		}
	}
}

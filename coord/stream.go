package coord

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/utkarsh5026/crew/channel"
	"github.com/utkarsh5026/crew/timeout"
)

var (
	// ErrNoConsumers is returned by Stream when StreamSpec.Consumers is not positive.
	ErrNoConsumers = errors.New("coord: stream needs at least one consumer")

	// ErrNoFold is returned by Stream when StreamSpec.Fold is nil.
	ErrNoFold = errors.New("coord: stream needs a fold function")
)

// ProducerFunc sends items on tx. The Sender is closed for the producer when it
// returns, so it must not be retained. A Send error must be returned or handled.
type ProducerFunc[T any] func(ctx context.Context, tx *channel.Sender[T]) error

// FoldFunc merges one received item into a consumer's accumulator.
type FoldFunc[T, R any] func(acc R, item T) (R, error)

// StreamSpec describes a fan-in/fan-out run: every producer feeds one shared
// channel and Consumers workers drain it, each folding what it receives into
// its own accumulator.
type StreamSpec[T, R any] struct {
	Producers []ProducerFunc[T]
	Consumers int

	// Init returns a consumer's starting accumulator. Nil starts from the zero R.
	Init func() R

	Fold FoldFunc[T, R]
}

// Stream runs spec to completion.
//
// Consumers are spawned first, each with its own Receiver, and poll with the
// configured timeout policy: a timeout is retried, a disconnect ends the
// consumer. Producers are spawned next, each with its own Sender which closes
// when the producer returns. Once every producer has been started the
// coordinator closes its own Sender, so the channel disconnects exactly when
// the last producer finishes.
//
// Workers are joined in spawn order: consumer-0..N-1, then producer-0..M-1.
// A consumer's value is its final accumulator. Failures are collected in the
// report rather than aborting the run.
//
// Example:
//
//	report, err := coord.Stream(ctx, coord.StreamSpec[string, []string]{
//	    Producers: []coord.ProducerFunc[string]{
//	        func(ctx context.Context, tx *channel.Sender[string]) error {
//	            for _, s := range []string{"A", "B", "C"} {
//	                if err := tx.Send(s); err != nil {
//	                    return err
//	                }
//	            }
//	            return nil
//	        },
//	    },
//	    Consumers: 2,
//	    Fold: func(acc []string, s string) ([]string, error) {
//	        return append(acc, s), nil
//	    },
//	})
func Stream[T, R any](ctx context.Context, spec StreamSpec[T, R], opts ...Option) (*Report[R], error) {
	if spec.Consumers <= 0 {
		return nil, ErrNoConsumers
	}
	if spec.Fold == nil {
		return nil, ErrNoFold
	}

	cfg := newConfig(opts)
	return run(ctx, cfg, func(s *Scope[R]) error {
		tx, rx := channel.New[T](channel.WithCapacity(cfg.capacity))

		for i := range spec.Consumers {
			crx := rx.Clone()
			id := WorkerID(fmt.Sprintf("consumer-%d", i))
			if err := s.spawn(id, RoleConsumer, func(ctx context.Context) (R, error) {
				defer crx.Close()
				return consume(ctx, s, id, crx, spec)
			}); err != nil {
				_ = crx.Close()
				return err
			}
		}
		// Consumers hold their own clones.
		_ = rx.Close()

		var spawnErr error
		for i, produce := range spec.Producers {
			ptx := tx.Clone()
			id := WorkerID(fmt.Sprintf("producer-%d", i))
			if err := s.spawn(id, RoleProducer, func(ctx context.Context) (R, error) {
				defer ptx.Close()
				var zero R
				return zero, produce(ctx, ptx)
			}); err != nil {
				_ = ptx.Close()
				spawnErr = err
				break
			}
		}

		// Last coordinator-held Sender; the channel disconnects once every
		// producer has closed its clone.
		_ = tx.Close()
		return spawnErr
	})
}

func consume[T, R any](ctx context.Context, s *Scope[R], id WorkerID, rx *channel.Receiver[T], spec StreamSpec[T, R]) (R, error) {
	var acc R
	if spec.Init != nil {
		acc = spec.Init()
	}

	src := &observedReceiver[T]{
		rx:      rx,
		metrics: s.metrics,
		logger:  s.logger.With(zap.String("worker", string(id))),
	}

	stats, err := timeout.Drain(ctx, s.cfg.policy, src, func(item T) error {
		if s.cfg.limiter != nil {
			if err := s.cfg.limiter.Wait(ctx); err != nil {
				return err
			}
		}

		var err error
		acc, err = spec.Fold(acc, item)
		return err
	})

	src.logger.Debug("consumer drained",
		zap.Int("received", stats.Received),
		zap.Int("timeouts", stats.Timeouts),
	)
	return acc, err
}

// observedReceiver counts receives and timeouts on their way to Drain.
type observedReceiver[T any] struct {
	rx      *channel.Receiver[T]
	metrics *metrics
	logger  *zap.Logger
}

func (o *observedReceiver[T]) RecvTimeoutContext(ctx context.Context, d time.Duration) (T, error) {
	item, err := o.rx.RecvTimeoutContext(ctx, d)
	switch {
	case err == nil:
		o.metrics.receive()
	case errors.Is(err, channel.ErrTimeout):
		o.metrics.timeout()
		o.logger.Debug("receive timed out, channel still open", zap.Duration("deadline", d))
	}
	return item, err
}

package timeout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/utkarsh5026/crew/channel"
	"github.com/utkarsh5026/crew/internal/algorithms"
)

// DefaultDeadline is the per-receive wait used by Default.
const DefaultDeadline = time.Second

// ErrInvalidDeadline is returned by New for a non-positive deadline.
var ErrInvalidDeadline = errors.New("timeout: deadline must be positive")

// Receiver is the receive side a Policy polls. *channel.Receiver satisfies it.
type Receiver[T any] interface {
	RecvTimeoutContext(ctx context.Context, d time.Duration) (T, error)
}

// Policy bounds how long a consumer blocks on each receive.
//
// A timeout is a liveness aid, never a termination signal: Drain keeps polling
// through any number of timeouts and stops only when the channel disconnects,
// the context ends, or the item handler fails.
type Policy struct {
	deadline    time.Duration
	maxDeadline time.Duration
	growthType  algorithms.GrowthType
	jitter      float64
	onTimeout   func(idle int)

	// shared strategy for Recv; Drain builds its own per call
	growth algorithms.Growth
}

// Stats summarizes one Drain call.
type Stats struct {
	Received int
	Timeouts int
}

// New creates a policy waiting deadline per receive.
// Returns ErrInvalidDeadline if deadline <= 0.
func New(deadline time.Duration, opts ...Option) (*Policy, error) {
	if deadline <= 0 {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidDeadline, deadline)
	}

	p := &Policy{
		deadline:    deadline,
		maxDeadline: deadline,
		growthType:  algorithms.GrowthFixed,
	}
	for _, opt := range opts {
		opt(p)
	}

	p.maxDeadline = max(p.maxDeadline, p.deadline)
	p.growth = p.newGrowth()
	return p, nil
}

// Default returns a fixed one-second policy.
func Default() *Policy {
	p, _ := New(DefaultDeadline)
	return p
}

// Deadline returns the base per-receive wait.
func (p *Policy) Deadline() time.Duration { return p.deadline }

// MaxDeadline returns the widest wait growth may reach.
func (p *Policy) MaxDeadline() time.Duration { return p.maxDeadline }

// Growth returns the name of the growth strategy.
func (p *Policy) Growth() string { return p.growthType.String() }

// Wait returns the per-receive wait after idle consecutive timeouts.
func (p *Policy) Wait(idle int) time.Duration {
	return p.growth.Deadline(idle)
}

func (p *Policy) newGrowth() algorithms.Growth {
	return algorithms.NewGrowth(p.growthType, p.deadline, p.maxDeadline, p.jitter)
}

// Recv performs one receive on rx, waiting as long as p allows after idle
// consecutive timeouts.
func Recv[T any](ctx context.Context, p *Policy, rx Receiver[T], idle int) (T, error) {
	return rx.RecvTimeoutContext(ctx, p.Wait(idle))
}

// Drain receives from rx until the channel disconnects, calling fn for every
// item.
//
// Timeouts are counted and retried. Drain returns nil once rx reports
// channel.ErrDisconnected, ctx.Err() as soon as ctx ends, or the first error
// returned by fn.
//
// Example:
//
//	stats, err := timeout.Drain(ctx, policy, rx, func(msg string) error {
//	    fmt.Println("got:", msg)
//	    return nil
//	})
func Drain[T any](ctx context.Context, p *Policy, rx Receiver[T], fn func(T) error) (Stats, error) {
	var stats Stats
	growth := p.newGrowth()
	idle := 0

	for {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		item, err := rx.RecvTimeoutContext(ctx, growth.Deadline(idle))
		switch {
		case err == nil:
			stats.Received++
			if idle > 0 {
				idle = 0
				growth.Reset()
			}
			if err := fn(item); err != nil {
				return stats, err
			}

		case errors.Is(err, channel.ErrTimeout):
			stats.Timeouts++
			if p.onTimeout != nil {
				p.onTimeout(idle)
			}
			idle++

		case errors.Is(err, channel.ErrDisconnected):
			return stats, nil

		default:
			return stats, err
		}
	}
}

package timeout

import (
	"time"

	"github.com/utkarsh5026/crew/internal/algorithms"
)

// Option configures a Policy.
type Option func(*Policy)

// WithMaxDeadline caps how far growth may widen the wait.
// Values below the base deadline are ignored.
func WithMaxDeadline(d time.Duration) Option {
	return func(p *Policy) {
		if d > 0 {
			p.maxDeadline = d
		}
	}
}

// WithGrowth widens the wait after consecutive timeouts.
// Supported names: "fixed", "exponential", "jittered", "decorrelated".
// Unknown names keep the fixed default.
//
// Example:
//
//	p, _ := timeout.New(100*time.Millisecond,
//	    timeout.WithGrowth("exponential"),
//	    timeout.WithMaxDeadline(2*time.Second),
//	)
func WithGrowth(name string) Option {
	return func(p *Policy) {
		if g, ok := algorithms.ParseGrowthType(name); ok {
			p.growthType = g
		}
	}
}

// WithJitter sets the jitter factor for "jittered" growth, clamped to [0, 1].
func WithJitter(factor float64) Option {
	return func(p *Policy) {
		p.jitter = factor
	}
}

// WithOnTimeout registers a hook called on every timeout inside Drain with the
// idle streak before that timeout.
func WithOnTimeout(fn func(idle int)) Option {
	return func(p *Policy) {
		p.onTimeout = fn
	}
}

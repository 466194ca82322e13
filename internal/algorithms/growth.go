package algorithms

import (
	"cmp"
	"math/rand"
	"sync"
	"time"
)

const (
	maxShift = 62 // 1 << 63 overflows int64
)

// fixedGrowth waits the same base deadline regardless of idleness.
type fixedGrowth struct {
	base time.Duration
}

func (f fixedGrowth) Deadline(int) time.Duration { return f.base }

func (f fixedGrowth) Reset() {}

// exponentialGrowth doubles the deadline per consecutive timeout.
//
//	idle 0: 1x base
//	idle 1: 2x base
//	idle 2: 4x base
//	...until maxDelay is reached
type exponentialGrowth struct {
	base     time.Duration
	maxDelay time.Duration
}

func newExponentialGrowth(base, maxDelay time.Duration) *exponentialGrowth {
	return &exponentialGrowth{base: base, maxDelay: maxDelay}
}

func (eg *exponentialGrowth) Deadline(idle int) time.Duration {
	return calcExponentialDelay(idle, eg.base, eg.maxDelay)
}

// Reset does nothing, the strategy is stateless.
func (eg *exponentialGrowth) Reset() {}

// jitteredGrowth spreads exponential deadlines by ±jitterFactor so consumers
// that went idle together do not all wake at once.
type jitteredGrowth struct {
	base, maxDelay time.Duration
	jitterFactor   float64 // 0.0 to 1.0
	rng            *rand.Rand
	mu             sync.Mutex
}

func newJitteredGrowth(base, maxDelay time.Duration, jitterFactor float64) *jitteredGrowth {
	return &jitteredGrowth{
		base:         base,
		maxDelay:     maxDelay,
		jitterFactor: clamp(jitterFactor, 0, 1),
		rng:          rand.New(rand.NewSource(time.Now().UnixNano())), // #nosec G404 -- jitter does not need crypto rand
	}
}

func (jg *jitteredGrowth) Deadline(idle int) time.Duration {
	baseDelay := calcExponentialDelay(idle, jg.base, jg.maxDelay)

	jg.mu.Lock()
	multiplier := 1.0 + (jg.rng.Float64()*2-1)*jg.jitterFactor
	jg.mu.Unlock()

	// Never drop to zero: a zero deadline would turn the receive into a poll.
	return clamp(time.Duration(float64(baseDelay)*multiplier), min(jg.base, time.Millisecond), jg.maxDelay)
}

func (jg *jitteredGrowth) Reset() {}

// decorrelatedGrowth picks each deadline at random between base and three
// times the previous one, capped at maxDelay.
//
//	deadline = min(maxDelay, random(base, prev * 3))
type decorrelatedGrowth struct {
	base     time.Duration
	maxDelay time.Duration
	prev     time.Duration
	rng      *rand.Rand
	mu       sync.Mutex
}

func newDecorrelatedGrowth(base, maxDelay time.Duration) *decorrelatedGrowth {
	return &decorrelatedGrowth{
		base:     base,
		maxDelay: maxDelay,
		prev:     base,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())), // #nosec G404 -- jitter does not need crypto rand
	}
}

func (dg *decorrelatedGrowth) Deadline(idle int) time.Duration {
	dg.mu.Lock()
	defer dg.mu.Unlock()

	if idle <= 0 {
		dg.prev = dg.base
		return dg.base
	}

	upper := min(time.Duration(float64(dg.prev)*3), dg.maxDelay)
	spread := upper - dg.base
	if spread <= 0 {
		dg.prev = dg.base
		return dg.base
	}

	delay := dg.base + time.Duration(dg.rng.Int63n(int64(spread)))
	dg.prev = delay
	return delay
}

func (dg *decorrelatedGrowth) Reset() {
	dg.mu.Lock()
	defer dg.mu.Unlock()
	dg.prev = dg.base
}

func calcExponentialDelay(idle int, base, maxDelay time.Duration) time.Duration {
	if idle <= 0 {
		return base
	}

	if idle > maxShift {
		return maxDelay
	}

	if base > maxDelay>>uint(idle) {
		return maxDelay
	}
	return base << uint(idle)
}

func clamp[T cmp.Ordered](v, lo, hi T) T {
	return min(max(v, lo), hi)
}

package coord

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/utkarsh5026/crew/timeout"
)

// Option is a functional option for configuring a coordinated run.
type Option func(*config)

type config struct {
	policy     *timeout.Policy
	capacity   int
	logger     *zap.Logger
	registerer prometheus.Registerer
	limiter    *rate.Limiter
	pinned     bool
	onSpawn    func(id WorkerID, role Role)
	onJoin     func(id WorkerID, role Role, elapsed time.Duration, err error)
}

func newConfig(opts []Option) *config {
	cfg := &config{
		policy: timeout.Default(),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// WithTimeoutPolicy sets the receive-timeout policy consumers poll with.
// If not specified, consumers wait one second per receive.
func WithTimeoutPolicy(p *timeout.Policy) Option {
	return func(cfg *config) {
		if p != nil {
			cfg.policy = p
		}
	}
}

// WithCapacity bounds the stream channel to n buffered items, making producers
// block while consumers fall behind. If not specified, the channel is unbounded.
func WithCapacity(n int) Option {
	return func(cfg *config) {
		if n > 0 {
			cfg.capacity = n
		}
	}
}

// WithLogger sets the logger for worker lifecycle events.
// Spawns and joins are logged at debug level, failures at warn.
func WithLogger(logger *zap.Logger) Option {
	return func(cfg *config) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}

// WithMetrics registers the coordinator's collectors with reg.
// Collectors already registered by an earlier run are reused.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(cfg *config) {
		cfg.registerer = reg
	}
}

// WithRateLimit caps how fast consumers fold items.
// itemsPerSecond specifies the sustained rate shared by all consumers and
// burst the number of items that may be folded back to back.
//
// Example:
//
//	WithRateLimit(100, 10) // 100 items/sec with bursts of 10
func WithRateLimit(itemsPerSecond float64, burst int) Option {
	return func(cfg *config) {
		if itemsPerSecond > 0 && burst > 0 {
			cfg.limiter = rate.NewLimiter(rate.Limit(itemsPerSecond), burst)
		}
	}
}

// WithPinnedWorkers locks each worker to an OS thread pinned to one CPU core,
// assigned round-robin in spawn order. Where pinning is unsupported workers
// still run, unpinned.
func WithPinnedWorkers(enabled bool) Option {
	return func(cfg *config) {
		cfg.pinned = enabled
	}
}

// WithOnSpawn registers a hook called after each worker is started.
func WithOnSpawn(fn func(id WorkerID, role Role)) Option {
	return func(cfg *config) {
		cfg.onSpawn = fn
	}
}

// WithOnJoin registers a hook called as each worker is joined, in join order.
func WithOnJoin(fn func(id WorkerID, role Role, elapsed time.Duration, err error)) Option {
	return func(cfg *config) {
		cfg.onJoin = fn
	}
}

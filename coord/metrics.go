package coord

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace = "crew"
	roleLabel = "role"
)

// metrics is nil when no registerer was configured; every method is nil-safe.
type metrics struct {
	spawned  *prometheus.CounterVec
	failed   *prometheus.CounterVec
	received prometheus.Counter
	timeouts prometheus.Counter
	duration *prometheus.HistogramVec
}

func newMetrics(reg prometheus.Registerer) (*metrics, error) {
	if reg == nil {
		return nil, nil
	}

	var (
		m   metrics
		err error
	)

	if m.spawned, err = registerOrReuse(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tasks_spawned_total",
		Help:      "Total number of worker tasks spawned.",
	}, []string{roleLabel})); err != nil {
		return nil, err
	}

	if m.failed, err = registerOrReuse(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tasks_failed_total",
		Help:      "Total number of worker tasks joined with an error or failure.",
	}, []string{roleLabel})); err != nil {
		return nil, err
	}

	if m.received, err = registerOrReuse(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "items_received_total",
		Help:      "Total number of items received by consumers.",
	})); err != nil {
		return nil, err
	}

	if m.timeouts, err = registerOrReuse(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "receive_timeouts_total",
		Help:      "Total number of consumer receives that timed out on an open channel.",
	})); err != nil {
		return nil, err
	}

	if m.duration, err = registerOrReuse(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "task_duration_seconds",
		Help:      "Wall time of worker tasks from start to finish.",
		Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
	}, []string{roleLabel})); err != nil {
		return nil, err
	}

	return &m, nil
}

// registerOrReuse registers c, or returns the collector already registered
// under the same descriptor.
func registerOrReuse[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

func (m *metrics) spawn(role Role) {
	if m == nil {
		return
	}
	m.spawned.WithLabelValues(string(role)).Inc()
}

func (m *metrics) join(role Role, elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	m.duration.WithLabelValues(string(role)).Observe(elapsed.Seconds())
	if err != nil {
		m.failed.WithLabelValues(string(role)).Inc()
	}
}

func (m *metrics) receive() {
	if m == nil {
		return
	}
	m.received.Inc()
}

func (m *metrics) timeout() {
	if m == nil {
		return
	}
	m.timeouts.Inc()
}

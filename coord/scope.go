package coord

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/segmentio/ksuid"
	"go.uber.org/zap"

	"github.com/utkarsh5026/crew/internal/cpu"
	"github.com/utkarsh5026/crew/task"
)

var (
	// ErrDuplicateWorker is returned when a worker id is spawned twice in one scope.
	ErrDuplicateWorker = errors.New("coord: duplicate worker id")

	// ErrScopeClosed is returned when spawning after the scope body returned.
	ErrScopeClosed = errors.New("coord: scope is closed")
)

// WorkerID names a worker within one run.
type WorkerID string

// Role classifies a worker for logs, metrics and reports.
type Role string

const (
	RoleTask     Role = "task"
	RoleProducer Role = "producer"
	RoleConsumer Role = "consumer"
)

// WorkerFunc is the body of a scoped worker.
type WorkerFunc[R any] func(ctx context.Context) (R, error)

type worker[R any] struct {
	id      WorkerID
	role    Role
	handle  *task.Handle[R]
	elapsed time.Duration // written by the worker before its handle completes
}

// Scope owns every worker spawned during a Run. Handles never leave it: when
// the body returns, Run joins them all.
type Scope[R any] struct {
	ctx     context.Context
	cfg     *config
	metrics *metrics
	runID   string
	logger  *zap.Logger

	mu      sync.Mutex
	closed  bool
	workers []*worker[R]
	ids     map[WorkerID]struct{}
}

// Run calls body with a fresh Scope, then joins every worker body spawned, in
// spawn order, and returns their outcomes.
//
// The report always covers every spawned worker, including after body fails
// or panics. body's own error is returned separately; a panicking body yields
// a *task.Failure.
//
// Example:
//
//	report, err := coord.Run(ctx, func(s *coord.Scope[int]) error {
//	    for i, part := range parts {
//	        if err := s.Spawn(fmt.Sprintf("sum-%d", i), func(context.Context) (int, error) {
//	            return sum(part), nil
//	        }); err != nil {
//	            return err
//	        }
//	    }
//	    return nil
//	})
func Run[R any](ctx context.Context, body func(*Scope[R]) error, opts ...Option) (*Report[R], error) {
	return run(ctx, newConfig(opts), body)
}

func run[R any](ctx context.Context, cfg *config, body func(*Scope[R]) error) (*Report[R], error) {
	m, err := newMetrics(cfg.registerer)
	if err != nil {
		return nil, fmt.Errorf("coord: register metrics: %w", err)
	}

	start := time.Now()
	runID := ksuid.New().String()
	s := &Scope[R]{
		ctx:     ctx,
		cfg:     cfg,
		metrics: m,
		runID:   runID,
		logger:  cfg.logger.With(zap.String("run", runID)),
		ids:     make(map[WorkerID]struct{}),
	}

	s.logger.Debug("run started")

	// The body runs as a task of its own so a panic in it is contained.
	_, bodyErr := task.SpawnFunc(func() (struct{}, error) {
		return struct{}{}, body(s)
	}).Join()
	if bodyErr != nil {
		s.logger.Warn("scope body failed", zap.Error(bodyErr))
	}

	report := s.joinAll()
	report.Elapsed = time.Since(start)

	s.logger.Debug("run finished",
		zap.Int("workers", len(report.Outcomes)),
		zap.Int("failures", len(report.Failures())),
		zap.Duration("elapsed", report.Elapsed),
	)
	return report, bodyErr
}

// Spawn starts fn as a task worker named name.
// Returns ErrDuplicateWorker if name is taken and ErrScopeClosed once the body
// has returned.
func (s *Scope[R]) Spawn(name string, fn WorkerFunc[R]) error {
	return s.spawn(WorkerID(name), RoleTask, fn)
}

// Context returns the context workers receive.
func (s *Scope[R]) Context() context.Context { return s.ctx }

// RunID returns the unique id of this run, as it appears in logs and reports.
func (s *Scope[R]) RunID() string { return s.runID }

// Len returns the number of workers spawned so far.
func (s *Scope[R]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.workers)
}

func (s *Scope[R]) spawn(id WorkerID, role Role, fn WorkerFunc[R]) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return fmt.Errorf("%w: cannot spawn %q", ErrScopeClosed, id)
	}
	if _, dup := s.ids[id]; dup {
		s.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrDuplicateWorker, id)
	}

	w := &worker[R]{id: id, role: role}
	slot := len(s.workers)
	w.handle = task.SpawnFunc(func() (R, error) {
		start := time.Now()
		defer func() { w.elapsed = time.Since(start) }()

		if s.cfg.pinned {
			release, err := cpu.Pin(slot)
			defer release()
			if err != nil {
				s.logger.Debug("worker not pinned",
					zap.String("worker", string(id)), zap.Error(err))
			}
		}
		return fn(s.ctx)
	})

	s.ids[id] = struct{}{}
	s.workers = append(s.workers, w)
	s.mu.Unlock()

	s.metrics.spawn(role)
	s.logger.Debug("worker spawned",
		zap.String("worker", string(id)), zap.String("role", string(role)))
	if s.cfg.onSpawn != nil {
		s.cfg.onSpawn(id, role)
	}
	return nil
}

// joinAll closes the scope and joins every worker in spawn order. A failed
// worker is recorded and joining continues with the next.
func (s *Scope[R]) joinAll() *Report[R] {
	s.mu.Lock()
	s.closed = true
	workers := s.workers
	s.mu.Unlock()

	report := &Report[R]{
		RunID:    s.runID,
		Outcomes: make([]Outcome[R], 0, len(workers)),
	}

	for _, w := range workers {
		value, err := w.handle.Join()
		o := Outcome[R]{
			Worker:  w.id,
			Role:    w.role,
			Value:   value,
			Err:     err,
			Elapsed: w.elapsed,
		}
		report.Outcomes = append(report.Outcomes, o)

		fields := []zap.Field{
			zap.String("worker", string(w.id)),
			zap.String("role", string(w.role)),
			zap.Duration("elapsed", w.elapsed),
		}
		var f *task.Failure
		switch {
		case errors.As(err, &f):
			s.logger.Warn("worker crashed", append(fields, zap.Error(err), zap.ByteString("stack", f.Stack))...)
		case err != nil:
			s.logger.Warn("worker failed", append(fields, zap.Error(err))...)
		default:
			s.logger.Debug("worker joined", fields...)
		}

		s.metrics.join(w.role, w.elapsed, err)
		if s.cfg.onJoin != nil {
			s.cfg.onJoin(w.id, w.role, w.elapsed, err)
		}
	}
	return report
}

package coord

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/multierr"

	"github.com/utkarsh5026/crew/task"
)

// ErrUnknownWorker is returned by Report.Value for an id that was never spawned.
var ErrUnknownWorker = errors.New("coord: unknown worker")

// Outcome is the joined result of one worker.
type Outcome[R any] struct {
	Worker  WorkerID
	Role    Role
	Value   R
	Err     error
	Elapsed time.Duration
}

// Failed reports whether the worker returned an error or terminated abnormally.
func (o Outcome[R]) Failed() bool {
	return o.Err != nil
}

// Crashed reports whether the worker panicked or exited via runtime.Goexit.
func (o Outcome[R]) Crashed() bool {
	return task.IsFailure(o.Err)
}

// Report aggregates every worker outcome of a run, in join order.
type Report[R any] struct {
	RunID    string
	Outcomes []Outcome[R]
	Elapsed  time.Duration
}

// Failures returns the outcomes that carry an error.
func (r *Report[R]) Failures() []Outcome[R] {
	var failed []Outcome[R]
	for _, o := range r.Outcomes {
		if o.Failed() {
			failed = append(failed, o)
		}
	}
	return failed
}

// Values returns the values of successful workers in join order.
func (r *Report[R]) Values() []R {
	values := make([]R, 0, len(r.Outcomes))
	for _, o := range r.Outcomes {
		if !o.Failed() {
			values = append(values, o.Value)
		}
	}
	return values
}

// Value returns the value and error of a single worker.
func (r *Report[R]) Value(id WorkerID) (R, error) {
	for _, o := range r.Outcomes {
		if o.Worker == id {
			return o.Value, o.Err
		}
	}
	var zero R
	return zero, fmt.Errorf("%w: %q", ErrUnknownWorker, id)
}

// ByRole returns the outcomes of workers spawned with role.
func (r *Report[R]) ByRole(role Role) []Outcome[R] {
	var out []Outcome[R]
	for _, o := range r.Outcomes {
		if o.Role == role {
			out = append(out, o)
		}
	}
	return out
}

// OK reports whether every worker succeeded.
func (r *Report[R]) OK() bool {
	for _, o := range r.Outcomes {
		if o.Failed() {
			return false
		}
	}
	return true
}

// Err combines every worker failure into one error, nil when all succeeded.
// Each failure is prefixed with its role and worker id; errors.Is and
// errors.As see through to the original errors.
func (r *Report[R]) Err() error {
	var err error
	for _, o := range r.Outcomes {
		if o.Failed() {
			err = multierr.Append(err, fmt.Errorf("%s %s: %w", o.Role, o.Worker, o.Err))
		}
	}
	return err
}

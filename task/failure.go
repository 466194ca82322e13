package task

import (
	"errors"
	"fmt"
)

// ErrAlreadyJoined is returned when a Handle is joined a second time.
var ErrAlreadyJoined = errors.New("task: handle already joined")

// Failure reports a task that terminated abnormally: its body panicked or
// called runtime.Goexit instead of returning.
//
// Use errors.As to tell a Failure apart from an ordinary error returned by the
// task body:
//
//	_, err := h.Join()
//	var f *task.Failure
//	if errors.As(err, &f) {
//	    log.Printf("task crashed: %v\n%s", f.Value, f.Stack)
//	}
type Failure struct {
	// Value is whatever was passed to panic. Nil when Goexit is true.
	Value any

	// Stack is the goroutine stack captured at the point of the panic.
	Stack []byte

	// Goexit is set when the task ended through runtime.Goexit.
	Goexit bool
}

func (f *Failure) Error() string {
	if f.Goexit {
		return "task: exited via runtime.Goexit"
	}
	return fmt.Sprintf("task: panic: %v", f.Value)
}

// Unwrap exposes the panic value when it is itself an error.
func (f *Failure) Unwrap() error {
	if err, ok := f.Value.(error); ok {
		return err
	}
	return nil
}

// Trace formats the failure together with its stack trace.
func (f *Failure) Trace() string {
	return fmt.Sprintf("%s\nstack trace:\n%s", f.Error(), f.Stack)
}

// IsFailure reports whether err, or any error it wraps, is a *Failure.
func IsFailure(err error) bool {
	var f *Failure
	return errors.As(err, &f)
}

// Package task runs functions on their own goroutine and hands back a joinable
// Handle.
//
// A task starts as soon as it is spawned. Its outcome is only reachable through
// Join, which may succeed at most once. A task that panics or calls
// runtime.Goexit does not take the process down: the fault is recovered and
// Join reports it as a *Failure carrying the panic value and stack.
//
//	h := task.Spawn(func() int {
//	    return 6 * 7
//	})
//	v, err := h.Join()  // 42, nil
//	_, err = h.Join()   // ErrAlreadyJoined
//
// Spawned handles are easy to forget. Package coord wraps them in a scope that
// joins every task before returning.
package task

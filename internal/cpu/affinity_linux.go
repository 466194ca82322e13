//go:build linux

package cpu

import (
	"fmt"
	"runtime"

	"golang.org/x/sys/unix"
)

// Pin locks the calling goroutine to its OS thread and binds that thread to
// core slot % NumCPU. The returned release restores the thread's previous
// affinity and unlocks it; it must be called from the same goroutine, and is
// non-nil even when err is not.
func Pin(slot int) (release func(), err error) {
	runtime.LockOSThread()

	var prev unix.CPUSet
	if err := unix.SchedGetaffinity(0, &prev); err != nil {
		return runtime.UnlockOSThread, fmt.Errorf("cpu: read affinity: %w", err)
	}

	var mask unix.CPUSet
	mask.Zero()
	mask.Set(core(slot))

	if err := unix.SchedSetaffinity(0, &mask); err != nil { // 0 = current thread
		return runtime.UnlockOSThread, fmt.Errorf("cpu: pin to core %d: %w", core(slot), err)
	}

	return func() {
		_ = unix.SchedSetaffinity(0, &prev)
		runtime.UnlockOSThread()
	}, nil
}

// Current returns the cores the calling thread may run on.
func Current() ([]int, error) {
	var set unix.CPUSet
	if err := unix.SchedGetaffinity(0, &set); err != nil {
		return nil, err
	}

	cores := make([]int, 0, set.Count())
	for i := range NumCPU() {
		if set.IsSet(i) {
			cores = append(cores, i)
		}
	}
	return cores, nil
}

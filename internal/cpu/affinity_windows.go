//go:build windows

package cpu

import (
	"fmt"
	"runtime"
	"syscall"
)

var (
	kernel32              = syscall.NewLazyDLL("kernel32.dll")
	setThreadAffinityMask = kernel32.NewProc("SetThreadAffinityMask")
	getCurrentThread      = kernel32.NewProc("GetCurrentThread")
)

// Pin locks the calling goroutine to its OS thread and binds that thread to
// core slot % NumCPU. The returned release restores the previous mask and
// unlocks the thread.
func Pin(slot int) (release func(), err error) {
	runtime.LockOSThread()

	// Bit N = CPU N
	mask, err := singleCoreMask(core(slot))
	if err != nil {
		return runtime.UnlockOSThread, err
	}

	handle, _, _ := getCurrentThread.Call()

	prev, _, callErr := setThreadAffinityMask.Call(handle, mask)
	if prev == 0 {
		return runtime.UnlockOSThread, fmt.Errorf("cpu: pin to core %d: %w", core(slot), callErr)
	}

	return func() {
		_, _, _ = setThreadAffinityMask.Call(handle, prev)
		runtime.UnlockOSThread()
	}, nil
}

// Current is not implemented on Windows.
func Current() ([]int, error) {
	return nil, ErrUnsupported
}

//go:build !linux && !windows

package cpu

import "runtime"

// Pin locks the goroutine to an OS thread. Pinning to a core is not available
// on this platform, so it always reports ErrUnsupported.
func Pin(int) (release func(), err error) {
	runtime.LockOSThread()
	return runtime.UnlockOSThread, ErrUnsupported
}

// Current is not implemented on this platform.
func Current() ([]int, error) {
	return nil, ErrUnsupported
}

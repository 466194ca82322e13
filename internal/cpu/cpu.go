// Package cpu pins worker goroutines to CPU cores.
package cpu

import (
	"errors"
	"fmt"
	"math/bits"
	"runtime"
)

// ErrUnsupported is returned by Pin on platforms without thread affinity.
// The goroutine is still locked to its OS thread.
var ErrUnsupported = errors.New("cpu: thread affinity not supported on " + runtime.GOOS)

// NumCPU returns the number of logical CPUs available.
func NumCPU() int {
	return runtime.NumCPU()
}

// core maps any slot onto a valid core index.
func core(slot int) int {
	n := NumCPU()
	slot %= n
	if slot < 0 {
		slot += n
	}
	return slot
}

// singleCoreMask returns a mask with only bit c set. Masks are one machine word
// wide, so cores at or past bits.UintSize cannot be addressed.
func singleCoreMask(c int) (uintptr, error) {
	if c < 0 || c >= bits.UintSize {
		return 0, fmt.Errorf("%w: core %d does not fit a %d-bit mask", ErrUnsupported, c, bits.UintSize)
	}
	return uintptr(1) << uint(c), nil
}

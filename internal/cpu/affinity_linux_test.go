//go:build linux

package cpu

import (
	"errors"
	"testing"
)

func TestPin(t *testing.T) {
	before, err := Current()
	if err != nil {
		t.Fatalf("Current: %v", err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)

		release, err := Pin(0)
		defer release()
		if err != nil {
			// Restricted sandboxes may refuse sched_setaffinity.
			if errors.Is(err, ErrUnsupported) {
				t.Errorf("linux must not report ErrUnsupported")
			}
			return
		}

		cores, err := Current()
		if err != nil {
			t.Errorf("Current: %v", err)
			return
		}
		if len(cores) != 1 || cores[0] != core(0) {
			t.Errorf("expected to be pinned to core %d, got %v", core(0), cores)
		}
	}()
	<-done

	after, err := Current()
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if len(after) != len(before) {
		t.Errorf("affinity of the test goroutine changed: %v -> %v", before, after)
	}
}

package algorithms

import "time"

// Growth decides how long a consumer waits on a receive after a run of
// consecutive timeouts.
type Growth interface {
	// Deadline returns the wait for the next receive. idle counts the timeouts
	// observed since the last successful receive (0 = the last receive
	// succeeded or none has happened yet).
	Deadline(idle int) time.Duration

	// Reset drops any state carried between calls. Called after a successful
	// receive.
	Reset()
}

// Package timeout implements the receive-timeout policy used by consumers.
//
// Consumers poll with a bounded wait so they never block forever on a quiet
// channel. The one rule: a timeout alone never ends the loop. Only a
// disconnected channel does.
//
//	policy := timeout.Default() // 1s per receive
//	stats, err := timeout.Drain(ctx, policy, rx, handle)
//
// Waits can widen while the channel stays quiet and snap back to the base
// deadline after the next item:
//
//	policy, err := timeout.New(50*time.Millisecond,
//	    timeout.WithGrowth("exponential"),
//	    timeout.WithMaxDeadline(time.Second),
//	)
package timeout

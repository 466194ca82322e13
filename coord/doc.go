// Package coord spawns groups of workers, wires them to a shared channel and
// joins them all before returning.
//
// # Scoped Runs
//
// Run hands its body a Scope. Every worker spawned through the scope is joined,
// in spawn order, once the body returns, so no handle can be forgotten:
//
//	report, err := coord.Run(ctx, func(s *coord.Scope[int]) error {
//	    return s.Spawn("square", func(context.Context) (int, error) {
//	        return 7 * 7, nil
//	    })
//	})
//	v, _ := report.Value("square") // 49
//
// # Fan-out / Fan-in
//
// Stream runs the producer/consumer pattern end to end: producers send on
// clones of one Sender, consumers share one Receiver and fold what they get,
// and the channel disconnects as soon as the last producer finishes.
// Consumers wait with a timeout.Policy; a receive timeout never stops them.
//
// # Partial Failure
//
// A worker that returns an error, panics or calls runtime.Goexit does not stop
// the run. Its outcome carries the error (a *task.Failure for crashes) and the
// remaining workers are still joined. Report.Err combines all failures.
//
// # Configuration
//
//	coord.Stream(ctx, spec,
//	    coord.WithTimeoutPolicy(policy),     // per-receive wait for consumers
//	    coord.WithCapacity(64),              // bounded channel, backpressure on producers
//	    coord.WithLogger(logger),            // zap logger for lifecycle events
//	    coord.WithMetrics(prometheus.DefaultRegisterer),
//	    coord.WithRateLimit(100, 10),        // consumer fold rate
//	    coord.WithPinnedWorkers(true),       // lock workers to CPU cores
//	)
package coord

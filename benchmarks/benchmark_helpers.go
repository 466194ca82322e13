package benchmarks

import (
	"math"
	"slices"
	"testing"
	"time"

	"github.com/utkarsh5026/crew/coord"
	"github.com/utkarsh5026/crew/timeout"
)

// channelConfig names one channel setup under test.
type channelConfig struct {
	name     string
	capacity int // 0 = unbounded
}

func getChannelConfigs() []channelConfig {
	return []channelConfig{
		{name: "Unbounded", capacity: 0},
		{name: "Bounded-16", capacity: 16},
		{name: "Bounded-256", capacity: 256},
		{name: "Bounded-4096", capacity: 4096},
	}
}

// runChannelBenchmark runs benchFunc once per channel setup.
func runChannelBenchmark(b *testing.B, configs []channelConfig, benchFunc func(b *testing.B, c channelConfig)) {
	for _, c := range configs {
		b.Run(c.name, func(b *testing.B) {
			benchFunc(b, c)
		})
	}
}

// streamOptions returns coordinator options tuned for benchmarks: a short
// receive deadline so idle consumers notice disconnection quickly.
func streamOptions(b *testing.B, capacity int) []coord.Option {
	b.Helper()
	policy, err := timeout.New(time.Millisecond)
	if err != nil {
		b.Fatal(err)
	}
	return []coord.Option{
		coord.WithTimeoutPolicy(policy),
		coord.WithCapacity(capacity),
	}
}

// cpuBoundWork simulates a CPU-intensive fold step.
func cpuBoundWork(iterations int) func(acc int, item int) (int, error) {
	return func(acc int, item int) (int, error) {
		result := 0
		for i := range iterations {
			result += i * item
		}
		return acc + result%7, nil
	}
}

func reportThroughput(b *testing.B, itemsPerOp int) {
	nsPerOp := float64(b.Elapsed().Nanoseconds()) / float64(b.N)
	b.ReportMetric(float64(itemsPerOp)/nsPerOp*1e9, "items/sec")
}

func percentile(latencies []time.Duration, p float64) time.Duration {
	if len(latencies) == 0 {
		return 0
	}

	sorted := slices.Clone(latencies)
	slices.Sort(sorted)

	// nearest-rank: p=0.50 with 100 elements picks index 49
	index := max(int(math.Round(p*float64(len(sorted)-1))), 0)
	if index >= len(sorted) {
		index = len(sorted) - 1
	}
	return sorted[index]
}

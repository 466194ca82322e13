package algorithms

import "time"

// GrowthType selects how receive deadlines widen while a channel stays quiet.
type GrowthType int

const (
	// GrowthFixed keeps the base deadline for every receive (default).
	GrowthFixed GrowthType = iota
	// GrowthExponential doubles the deadline after each consecutive timeout.
	GrowthExponential
	// GrowthJittered is exponential growth with random jitter.
	GrowthJittered
	// GrowthDecorrelated uses decorrelated jitter.
	GrowthDecorrelated
)

func (g GrowthType) String() string {
	switch g {
	case GrowthFixed:
		return "fixed"
	case GrowthExponential:
		return "exponential"
	case GrowthJittered:
		return "jittered"
	case GrowthDecorrelated:
		return "decorrelated"
	default:
		return "unknown"
	}
}

// ParseGrowthType maps a name produced by String back to its GrowthType.
func ParseGrowthType(name string) (GrowthType, bool) {
	for _, g := range []GrowthType{GrowthFixed, GrowthExponential, GrowthJittered, GrowthDecorrelated} {
		if g.String() == name {
			return g, true
		}
	}
	return GrowthFixed, false
}

// NewGrowth creates a growth strategy. A maxDelay below base is raised to base.
func NewGrowth(growthType GrowthType, base, maxDelay time.Duration, jitterFactor float64) Growth {
	maxDelay = max(maxDelay, base)

	switch growthType {
	case GrowthExponential:
		return newExponentialGrowth(base, maxDelay)

	case GrowthJittered:
		return newJitteredGrowth(base, maxDelay, jitterFactor)

	case GrowthDecorrelated:
		return newDecorrelatedGrowth(base, maxDelay)

	default:
		return fixedGrowth{base: base}
	}
}

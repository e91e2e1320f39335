package analysis

import (
	"math"
)

// Value score component weights. Specificity and aspect coverage dominate so
// that detailed reviews outrank star-only enthusiasm.
const (
	weightSpecificity = 0.30
	weightCoverage    = 0.25
	weightLength      = 0.15
	weightVerified    = 0.10
	weightSentiment   = 0.10
	weightBaseline    = 0.10

	// baselineUsefulness is the neutral prior before helpful votes exist.
	baselineUsefulness = 0.5

	// specificitySaturation is the term count at which the specificity
	// component maxes out; more terms past it add nothing.
	specificitySaturation = 3
	coverageSaturation    = 3
	sentimentSaturation   = 2

	// Length scoring: below shortPenaltyLimit the component scales down
	// linearly; between it and longCeiling it is 1.0; past the ceiling it
	// decays toward longFloor to resist padding.
	shortPenaltyLimit = 50
	longCeiling       = 500
	longFloor         = 0.7

	boilerplatePenalty = 15.0
)

// Score maps a feature bundle to a quality score in [0,100]. It never fails:
// empty or malformed text yields the minimum score. For a fixed length the
// score is monotonically non-decreasing in specificity.
func Score(f Features, isVerifiedPurchase bool) float64 {
	if f.EffectivelyEmpty {
		return 0
	}

	specificity := saturate(f.SpecificTerms, specificitySaturation)
	coverage := saturate(len(f.Tags), coverageSaturation)
	sentiment := saturate(f.PositiveWords+f.NegativeWords, sentimentSaturation)

	verified := 0.0
	if isVerifiedPurchase {
		verified = 1.0
	}

	v := weightSpecificity*specificity +
		weightCoverage*coverage +
		weightLength*lengthScore(f.Length) +
		weightVerified*verified +
		weightSentiment*sentiment +
		weightBaseline*baselineUsefulness

	score := v * 100
	if f.IsGeneric {
		score -= boilerplatePenalty
	}

	return round2(clamp(score, 0, 100))
}

func saturate(count, ceiling int) float64 {
	if count >= ceiling {
		return 1.0
	}
	if count <= 0 {
		return 0.0
	}
	return float64(count) / float64(ceiling)
}

func lengthScore(length int) float64 {
	switch {
	case length < shortPenaltyLimit:
		return float64(length) / float64(shortPenaltyLimit)
	case length <= longCeiling:
		return 1.0
	default:
		return math.Max(longFloor, 1.0-float64(length-longCeiling)/1000.0)
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(v, hi))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

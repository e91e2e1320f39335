package aggregate

import (
	"math"
	"sync"
	"time"

	"github.com/ShakenTheCoder/REVIfinal/internal/domain"
)

const (
	// minWeight keeps near-zero-score reviews in the contributing set with
	// negligible influence instead of excluding them, so the weighted rating
	// always averages over the current contributing set.
	minWeight = 0.5

	// confidenceHalfCount is the review count at which the sample-size part
	// of the confidence score reaches 0.5.
	confidenceHalfCount = 5.0

	// maxVariancePenalty caps how much score spread can erode confidence.
	maxVariancePenalty = 0.5
)

// Compute builds the rating summary for one product from its review set.
// Rejected reviews never contribute; shadow reviews contribute only when
// includeShadow is set. Pure function over its inputs.
func Compute(productID string, reviews []domain.Review, includeShadow bool, now time.Time) domain.RatingSummary {
	summary := domain.RatingSummary{
		ProductID: productID,
		UpdatedAt: now,
	}

	var (
		weightSum   float64
		weightedSum float64
		scores      []float64
		positive    int
	)

	for _, r := range reviews {
		if !contributes(r, includeShadow) {
			continue
		}
		w := math.Max(r.ValueScore, minWeight)
		weightSum += w
		weightedSum += float64(r.Rating) * w
		scores = append(scores, r.ValueScore)
		if r.Rating >= 4 {
			positive++
		}
	}

	n := len(scores)
	summary.TotalReviews = n
	if n == 0 {
		return summary
	}

	summary.WeightedRating = round2(weightedSum / weightSum)
	summary.PositiveRatio = round2(float64(positive) / float64(n))
	summary.ConfidenceScore = round2(confidence(scores))

	return summary
}

func contributes(r domain.Review, includeShadow bool) bool {
	if !r.Category.Contributing() {
		return false
	}
	if r.Category == domain.CategoryShadow && !includeShadow {
		return false
	}
	return true
}

// confidence rises toward 1 as the sample grows and is reduced by high
// variance in value scores, flagging products whose rating rests on few
// authoritative reviews.
func confidence(scores []float64) float64 {
	n := float64(len(scores))
	saturation := n / (n + confidenceHalfCount)

	var mean float64
	for _, s := range scores {
		mean += s
	}
	mean /= n

	var variance float64
	for _, s := range scores {
		d := s - mean
		variance += d * d
	}
	variance /= n

	stddev := math.Sqrt(variance)
	penalty := math.Min(stddev/100.0, maxVariancePenalty)

	return saturation * (1 - penalty)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// KeyedMutex serializes work per string key. One update is in flight per
// product at a time while unrelated products proceed in parallel. Idle
// entries are evicted once their last holder releases.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyedLock
}

type keyedLock struct {
	mu   sync.Mutex
	refs int
}

// NewKeyedMutex creates an empty keyed mutex.
func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{locks: make(map[string]*keyedLock)}
}

// Lock acquires the lock for key, blocking while another holder has it.
func (k *KeyedMutex) Lock(key string) {
	k.mu.Lock()
	entry, ok := k.locks[key]
	if !ok {
		entry = &keyedLock{}
		k.locks[key] = entry
	}
	entry.refs++
	k.mu.Unlock()

	entry.mu.Lock()
}

// Unlock releases the lock for key.
func (k *KeyedMutex) Unlock(key string) {
	k.mu.Lock()
	entry := k.locks[key]
	entry.refs--
	if entry.refs == 0 {
		delete(k.locks, key)
	}
	k.mu.Unlock()

	entry.mu.Unlock()
}

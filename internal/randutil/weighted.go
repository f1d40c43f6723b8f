package randutil

import (
	"math/rand"
	"time"
)

// NewRand returns a seedable pseudorandom source. A zero seed derives one from
// the clock; any other value reproduces an identical draw sequence.
func NewRand(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

// WeightedChoice is a declarative weighted distribution over values of T.
// Weights need not sum to 1; they are normalized on construction.
type WeightedChoice[T any] struct {
	values     []T
	cumulative []float64
	total      float64
}

// NewWeightedChoice builds a weighted distribution. Values and weights must
// have equal nonzero length; non-positive weights make their value unreachable.
func NewWeightedChoice[T any](values []T, weights []float64) *WeightedChoice[T] {
	if len(values) == 0 || len(values) != len(weights) {
		panic("randutil: values and weights must have equal nonzero length")
	}

	wc := &WeightedChoice[T]{
		values:     values,
		cumulative: make([]float64, len(weights)),
	}
	for i, w := range weights {
		if w > 0 {
			wc.total += w
		}
		wc.cumulative[i] = wc.total
	}
	if wc.total <= 0 {
		panic("randutil: at least one weight must be positive")
	}
	return wc
}

// Uniform builds an equally weighted distribution over values
func Uniform[T any](values []T) *WeightedChoice[T] {
	weights := make([]float64, len(values))
	for i := range weights {
		weights[i] = 1
	}
	return NewWeightedChoice(values, weights)
}

// Pick draws one value according to the distribution
func (wc *WeightedChoice[T]) Pick(r *rand.Rand) T {
	target := r.Float64() * wc.total
	for i, c := range wc.cumulative {
		if target < c {
			return wc.values[i]
		}
	}
	return wc.values[len(wc.values)-1]
}

// Choice draws one value uniformly from a slice
func Choice[T any](r *rand.Rand, values []T) T {
	return values[r.Intn(len(values))]
}

// Shuffle permutes a slice in place
func Shuffle[T any](r *rand.Rand, values []T) {
	r.Shuffle(len(values), func(i, j int) {
		values[i], values[j] = values[j], values[i]
	})
}

// Between draws a uniform float in [lo, hi)
func Between(r *rand.Rand, lo, hi float64) float64 {
	return lo + r.Float64()*(hi-lo)
}

// IntBetween draws a uniform int in [lo, hi]
func IntBetween(r *rand.Rand, lo, hi int) int {
	return lo + r.Intn(hi-lo+1)
}

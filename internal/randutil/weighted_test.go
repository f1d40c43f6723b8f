package randutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeightedChoiceDistribution(t *testing.T) {
	r := NewRand(42)
	wc := NewWeightedChoice([]string{"common", "rare"}, []float64{0.9, 0.1})

	counts := map[string]int{}
	const draws = 10000
	for i := 0; i < draws; i++ {
		counts[wc.Pick(r)]++
	}

	assert.Greater(t, counts["common"], counts["rare"])
	// 90/10 split should land within a loose band at 10k draws
	assert.InDelta(t, 9000, counts["common"], 300)
	assert.InDelta(t, 1000, counts["rare"], 300)
}

func TestWeightedChoiceSingleValue(t *testing.T) {
	r := NewRand(1)
	wc := NewWeightedChoice([]int{7}, []float64{3})
	for i := 0; i < 100; i++ {
		assert.Equal(t, 7, wc.Pick(r))
	}
}

func TestWeightedChoiceRejectsMismatchedLengths(t *testing.T) {
	assert.Panics(t, func() {
		NewWeightedChoice([]string{"a", "b"}, []float64{1})
	})
	assert.Panics(t, func() {
		NewWeightedChoice([]string{}, []float64{})
	})
	assert.Panics(t, func() {
		NewWeightedChoice([]string{"a"}, []float64{0})
	})
}

func TestUniformCoversAllValues(t *testing.T) {
	r := NewRand(7)
	wc := Uniform([]string{"a", "b", "c"})

	seen := map[string]bool{}
	for i := 0; i < 1000; i++ {
		seen[wc.Pick(r)] = true
	}
	assert.Len(t, seen, 3)
}

func TestSeedReproducibility(t *testing.T) {
	wc := Uniform([]int{1, 2, 3, 4, 5})

	first := make([]int, 50)
	second := make([]int, 50)
	r1 := NewRand(99)
	r2 := NewRand(99)
	for i := 0; i < 50; i++ {
		first[i] = wc.Pick(r1)
		second[i] = wc.Pick(r2)
	}
	require.Equal(t, first, second)
}

func TestBetweenBounds(t *testing.T) {
	r := NewRand(3)
	for i := 0; i < 1000; i++ {
		v := Between(r, 0.7, 0.9)
		assert.GreaterOrEqual(t, v, 0.7)
		assert.Less(t, v, 0.9)
	}
}

func TestIntBetweenInclusive(t *testing.T) {
	r := NewRand(5)
	seen := map[int]bool{}
	for i := 0; i < 1000; i++ {
		v := IntBetween(r, 1, 3)
		seen[v] = true
		assert.GreaterOrEqual(t, v, 1)
		assert.LessOrEqual(t, v, 3)
	}
	assert.Len(t, seen, 3)
}

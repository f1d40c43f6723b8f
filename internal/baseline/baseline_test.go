package baseline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeUndefinedOnSmallSamples(t *testing.T) {
	assert.False(t, Compute(nil).Defined)
	assert.False(t, Compute([]float64{}).Defined)
	assert.False(t, Compute([]float64{5}).Defined)
}

func TestComputeUndefinedOnFlatSeries(t *testing.T) {
	b := Compute([]float64{3, 3, 3, 3})
	assert.False(t, b.Defined)
	assert.Equal(t, 3.0, b.Mean)
	assert.Zero(t, b.StdDev)
}

func TestComputeSampleStdDev(t *testing.T) {
	b := Compute([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	require.True(t, b.Defined)
	assert.InDelta(t, 5.0, b.Mean, 1e-9)
	// sample (n-1) standard deviation, not population
	assert.InDelta(t, 2.138, b.StdDev, 0.001)
}

func TestZScore(t *testing.T) {
	b := Compute([]float64{10, 12, 8, 10, 12, 8})
	require.True(t, b.Defined)

	z, ok := b.ZScore(14)
	require.True(t, ok)
	assert.Greater(t, z, 0.0)

	z, ok = b.ZScore(b.Mean)
	require.True(t, ok)
	assert.InDelta(t, 0.0, z, 1e-9)

	_, ok = Baseline{}.ZScore(5)
	assert.False(t, ok)
}

func TestDailySeriesGroupsByUTCDate(t *testing.T) {
	s := NewDailySeries()
	day1 := time.Date(2026, 8, 1, 23, 50, 0, 0, time.UTC)
	day2 := time.Date(2026, 8, 2, 0, 10, 0, 0, time.UTC)

	s.Increment(day1)
	s.Increment(day1.Add(5 * time.Minute))
	s.Increment(day2)

	values := s.Values()
	require.Len(t, values, 2)
	assert.ElementsMatch(t, []float64{2, 1}, values)
}

func TestDailySeriesAbsentDaysNotZeroFilled(t *testing.T) {
	s := NewDailySeries()
	s.Add(time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC), 10)
	s.Add(time.Date(2026, 8, 10, 12, 0, 0, 0, time.UTC), 10)

	// the eight silent days in between contribute no samples
	assert.Len(t, s.Values(), 2)
	assert.False(t, s.Baseline().Defined)
}

func TestDistinctDailySeries(t *testing.T) {
	s := NewDistinctDailySeries()
	day := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)

	s.Add(day, "10.1.0.5")
	s.Add(day.Add(time.Hour), "10.1.0.5")
	s.Add(day.Add(2*time.Hour), "10.2.0.9")
	s.Add(day.AddDate(0, 0, 1), "10.1.0.5")

	values := s.Values()
	require.Len(t, values, 2)
	assert.ElementsMatch(t, []float64{2, 1}, values)
}

package baseline

import (
	"math"
	"time"
)

// Baseline is a per-entity statistical profile over daily aggregates. Defined
// is false when the sample is too small or has zero variance, which callers
// treat as "no baseline" rather than dividing by zero.
type Baseline struct {
	Mean    float64
	StdDev  float64
	Defined bool
}

// Compute returns the mean and sample standard deviation of the samples.
// Fewer than two samples or zero variance yields an undefined baseline.
func Compute(samples []float64) Baseline {
	if len(samples) < 2 {
		return Baseline{}
	}

	var sum float64
	for _, s := range samples {
		sum += s
	}
	mean := sum / float64(len(samples))

	var sq float64
	for _, s := range samples {
		d := s - mean
		sq += d * d
	}
	variance := sq / float64(len(samples)-1)
	if variance == 0 {
		return Baseline{Mean: mean}
	}

	return Baseline{Mean: mean, StdDev: math.Sqrt(variance), Defined: true}
}

// ZScore measures how far value sits from the baseline in standard deviations.
// The second return is false when the baseline is undefined.
func (b Baseline) ZScore(value float64) (float64, bool) {
	if !b.Defined {
		return 0, false
	}
	return (value - b.Mean) / b.StdDev, true
}

// DailySeries accumulates per-day values for one entity. Days are keyed by
// UTC calendar date.
type DailySeries struct {
	counts map[string]float64
}

func NewDailySeries() *DailySeries {
	return &DailySeries{counts: make(map[string]float64)}
}

// Add accumulates value into the day bucket containing t
func (d *DailySeries) Add(t time.Time, value float64) {
	d.counts[t.UTC().Format("2006-01-02")] += value
}

// Increment adds one to the day bucket containing t
func (d *DailySeries) Increment(t time.Time) {
	d.Add(t, 1)
}

// Values returns the per-day totals. Days with no events are absent, matching
// aggregate-then-average semantics over observed days only.
func (d *DailySeries) Values() []float64 {
	values := make([]float64, 0, len(d.counts))
	for _, v := range d.counts {
		values = append(values, v)
	}
	return values
}

// Baseline computes the baseline over the accumulated daily totals
func (d *DailySeries) Baseline() Baseline {
	return Compute(d.Values())
}

// DistinctDailySeries counts distinct string values per entity per day
type DistinctDailySeries struct {
	seen map[string]map[string]bool
}

func NewDistinctDailySeries() *DistinctDailySeries {
	return &DistinctDailySeries{seen: make(map[string]map[string]bool)}
}

func (d *DistinctDailySeries) Add(t time.Time, value string) {
	day := t.UTC().Format("2006-01-02")
	if d.seen[day] == nil {
		d.seen[day] = make(map[string]bool)
	}
	d.seen[day][value] = true
}

func (d *DistinctDailySeries) Values() []float64 {
	values := make([]float64, 0, len(d.seen))
	for _, day := range d.seen {
		values = append(values, float64(len(day)))
	}
	return values
}

func (d *DistinctDailySeries) Baseline() Baseline {
	return Compute(d.Values())
}

package detect

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"cybercommand/internal/baseline"
	"cybercommand/internal/models"
)

var ErrEmptyUserID = errors.New("detect: user id is required")

// MetricDeviation is one dimension of a user's composite score
type MetricDeviation struct {
	Metric  string  `json:"metric"`
	Current float64 `json:"current"`
	Mean    float64 `json:"mean"`
	StdDev  float64 `json:"stddev"`
	AbsZ    float64 `json:"abs_z"`
	Defined bool    `json:"defined"`
}

// CompositeFinding scores a user's most recent day against their own history
type CompositeFinding struct {
	UserID  string            `json:"user_id"`
	Metrics []MetricDeviation `json:"metrics"`
	Score   float64           `json:"score"`
	Flagged bool              `json:"flagged"`
}

// CompositeAnomalyScore z-scores the user's latest active day on three
// dimensions (event count, byte volume, distinct destinations) against the
// user's own daily history over the baseline window. The user is flagged when
// any defined deviation exceeds the threshold; the score is the mean of the
// defined deviations and is meaningful for ranking only.
func (e *Engine) CompositeAnomalyScore(ctx context.Context, epochID, userID string) (CompositeFinding, error) {
	if userID == "" {
		return CompositeFinding{}, ErrEmptyUserID
	}

	events, err := e.reader.NetworkEventsSince(ctx, epochID, e.windowStart(e.cfg.BaselineWindowDays))
	if err != nil {
		return CompositeFinding{}, fmt.Errorf("failed to load network events: %w", err)
	}

	counts := baseline.NewDailySeries()
	bytesMoved := baseline.NewDailySeries()
	destinations := baseline.NewDistinctDailySeries()
	perDayDest := map[string]map[string]bool{}

	var latestDay string
	for _, ev := range events {
		if ev.UserID != userID {
			continue
		}
		day := ev.EventTime.UTC().Format("2006-01-02")
		if day > latestDay {
			latestDay = day
		}

		counts.Increment(ev.EventTime)
		bytesMoved.Add(ev.EventTime, float64(ev.BytesTransferred))
		destinations.Add(ev.EventTime, ev.DestinationIP)
		if perDayDest[day] == nil {
			perDayDest[day] = map[string]bool{}
		}
		perDayDest[day][ev.DestinationIP] = true
	}

	finding := CompositeFinding{UserID: userID}
	if latestDay == "" {
		return finding, nil
	}

	currentCount, currentBytes := currentDayTotals(events, userID, latestDay)

	finding.Metrics = []MetricDeviation{
		deviation("event_count", currentCount, counts.Baseline()),
		deviation("bytes_transferred", currentBytes, bytesMoved.Baseline()),
		deviation("distinct_destinations", float64(len(perDayDest[latestDay])), destinations.Baseline()),
	}

	var sum float64
	var defined int
	for _, m := range finding.Metrics {
		if !m.Defined {
			continue
		}
		defined++
		sum += m.AbsZ
		if m.AbsZ > e.cfg.CompositeZThreshold {
			finding.Flagged = true
		}
	}
	if defined > 0 {
		finding.Score = sum / float64(defined)
	}

	sort.Slice(finding.Metrics, func(i, j int) bool {
		return finding.Metrics[i].Metric < finding.Metrics[j].Metric
	})
	return finding, nil
}

func currentDayTotals(events []models.NetworkEvent, userID, day string) (count, bytes float64) {
	for _, ev := range events {
		if ev.UserID != userID || ev.EventTime.UTC().Format("2006-01-02") != day {
			continue
		}
		count++
		bytes += float64(ev.BytesTransferred)
	}
	return count, bytes
}

func deviation(metric string, current float64, b baseline.Baseline) MetricDeviation {
	d := MetricDeviation{
		Metric:  metric,
		Current: current,
		Mean:    b.Mean,
		StdDev:  b.StdDev,
	}
	if z, ok := b.ZScore(current); ok {
		d.AbsZ = math.Abs(z)
		d.Defined = true
	}
	return d
}

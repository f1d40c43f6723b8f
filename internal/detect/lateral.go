package detect

import (
	"context"
	"fmt"
	"sort"

	"cybercommand/internal/baseline"
)

// LateralFinding flags a (user, source host) pair fanning out to far more
// internal destinations than its own history.
type LateralFinding struct {
	UserID         string  `json:"user_id"`
	SourceIP       string  `json:"source_ip"`
	RecentDistinct int     `json:"recent_distinct_destinations"`
	BaselineMean   float64 `json:"baseline_mean"`
	BaselineStdDev float64 `json:"baseline_stddev"`
	ZScore         float64 `json:"z_score"`
}

// LateralMovement looks only at internal-to-internal traffic. For each
// (user, source ip) pair it counts distinct internal destinations over the
// recent window and z-scores that against the pair's daily-distinct baseline.
// Pairs with a flat or short history have no defined deviation and are
// excluded rather than scored.
func (e *Engine) LateralMovement(ctx context.Context, epochID string) ([]LateralFinding, error) {
	events, err := e.reader.NetworkEventsSince(ctx, epochID, e.windowStart(e.cfg.BaselineWindowDays))
	if err != nil {
		return nil, fmt.Errorf("failed to load network events: %w", err)
	}

	recentStart := e.windowStart(e.cfg.LateralWindowDays)

	type pairKey struct {
		userID   string
		sourceIP string
	}
	daily := map[pairKey]*baseline.DistinctDailySeries{}
	recent := map[pairKey]map[string]bool{}

	for _, ev := range events {
		if ev.UserID == "" || !isInternalIP(ev.SourceIP) || !isInternalIP(ev.DestinationIP) {
			continue
		}
		key := pairKey{userID: ev.UserID, sourceIP: ev.SourceIP}

		if daily[key] == nil {
			daily[key] = baseline.NewDistinctDailySeries()
		}
		daily[key].Add(ev.EventTime, ev.DestinationIP)

		if !ev.EventTime.Before(recentStart) {
			if recent[key] == nil {
				recent[key] = map[string]bool{}
			}
			recent[key][ev.DestinationIP] = true
		}
	}

	findings := []LateralFinding{}
	for key, destinations := range recent {
		b := daily[key].Baseline()
		z, ok := b.ZScore(float64(len(destinations)))
		if !ok || z <= e.cfg.LateralZThreshold {
			continue
		}
		findings = append(findings, LateralFinding{
			UserID:         key.userID,
			SourceIP:       key.sourceIP,
			RecentDistinct: len(destinations),
			BaselineMean:   b.Mean,
			BaselineStdDev: b.StdDev,
			ZScore:         z,
		})
	}

	sort.Slice(findings, func(i, j int) bool {
		if findings[i].ZScore != findings[j].ZScore {
			return findings[i].ZScore > findings[j].ZScore
		}
		return findings[i].UserID < findings[j].UserID
	})
	return findings, nil
}

package detect

import (
	"context"
	"fmt"
	"sort"
)

// BehaviorFinding flags a user whose recent after-hours activity is out of
// proportion to their usual business-hours rate.
type BehaviorFinding struct {
	UserID             string  `json:"user_id"`
	Department         string  `json:"department"`
	AvgBusinessPerHour float64 `json:"avg_business_per_hour"`
	AfterHoursCount    int     `json:"after_hours_count"`
	Ratio              float64 `json:"ratio"`
}

// BehavioralAnomaly compares each user's after-hours auth volume over the
// recent window against their average per-hour business-hours rate over the
// baseline window. Users with no business-hours history have no ratio to
// compare against and are excluded.
func (e *Engine) BehavioralAnomaly(ctx context.Context, epochID string) ([]BehaviorFinding, error) {
	events, err := e.reader.AuthEventsSince(ctx, epochID, e.windowStart(e.cfg.BaselineWindowDays))
	if err != nil {
		return nil, fmt.Errorf("failed to load auth events: %w", err)
	}

	businessHoursPerDay := e.cfg.BusinessHourEnd - e.cfg.BusinessHourStart
	if businessHoursPerDay <= 0 {
		return nil, fmt.Errorf("%w: business window [%d,%d)", ErrInvalidWindow,
			e.cfg.BusinessHourStart, e.cfg.BusinessHourEnd)
	}
	totalBusinessHours := float64(e.cfg.BaselineWindowDays * businessHoursPerDay)
	recentStart := e.windowStart(e.cfg.RecentWindowDays)

	type agg struct {
		department string
		business   int
		afterHours int
	}
	byUser := map[string]*agg{}

	for _, ev := range events {
		a := byUser[ev.UserID]
		if a == nil {
			a = &agg{department: ev.Department}
			byUser[ev.UserID] = a
		}
		if e.isBusinessHour(ev.EventTime) {
			a.business++
		} else if !ev.EventTime.Before(recentStart) {
			a.afterHours++
		}
	}

	findings := []BehaviorFinding{}
	for userID, a := range byUser {
		if a.afterHours <= e.cfg.AfterHoursMinEvents {
			continue
		}
		if a.business == 0 {
			continue
		}
		avg := float64(a.business) / totalBusinessHours
		findings = append(findings, BehaviorFinding{
			UserID:             userID,
			Department:         a.department,
			AvgBusinessPerHour: avg,
			AfterHoursCount:    a.afterHours,
			Ratio:              float64(a.afterHours) / avg,
		})
	}

	sort.Slice(findings, func(i, j int) bool {
		fi, fj := findings[i], findings[j]
		if fi.Ratio != fj.Ratio {
			return fi.Ratio > fj.Ratio
		}
		return fi.UserID < fj.UserID
	})
	return findings, nil
}

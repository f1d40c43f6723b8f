package detect

import (
	"context"
	"fmt"
	"sort"
	"time"
)

// FailedLoginBurst aggregates failed authentications from one source address
type FailedLoginBurst struct {
	SourceIP      string    `json:"source_ip"`
	FailureCount  int       `json:"failure_count"`
	DistinctUsers int       `json:"distinct_users"`
	Reasons       []string  `json:"reasons"`
	FirstAttempt  time.Time `json:"first_attempt"`
	LastAttempt   time.Time `json:"last_attempt"`
}

// FailedLoginBursts flags source addresses producing more failed logins than
// the configured burst threshold over the window. Counts at the threshold are
// not flagged.
func (e *Engine) FailedLoginBursts(ctx context.Context, epochID string, daysBack int) ([]FailedLoginBurst, error) {
	if daysBack <= 0 {
		return nil, fmt.Errorf("%w: daysBack=%d", ErrInvalidWindow, daysBack)
	}

	events, err := e.reader.AuthEventsSince(ctx, epochID, e.windowStart(daysBack))
	if err != nil {
		return nil, fmt.Errorf("failed to load auth events: %w", err)
	}

	type agg struct {
		count       int
		users       map[string]bool
		reasons     map[string]bool
		first, last time.Time
	}
	bySource := map[string]*agg{}

	for _, ev := range events {
		if ev.Succeeded() {
			continue
		}
		a := bySource[ev.SourceIP]
		if a == nil {
			a = &agg{users: map[string]bool{}, reasons: map[string]bool{}, first: ev.EventTime, last: ev.EventTime}
			bySource[ev.SourceIP] = a
		}
		a.count++
		a.users[ev.UserID] = true
		if ev.FailureReason != "" {
			a.reasons[ev.FailureReason] = true
		}
		if ev.EventTime.Before(a.first) {
			a.first = ev.EventTime
		}
		if ev.EventTime.After(a.last) {
			a.last = ev.EventTime
		}
	}

	findings := []FailedLoginBurst{}
	for sourceIP, a := range bySource {
		if a.count <= e.cfg.FailedLoginBurstMin {
			continue
		}
		reasons := make([]string, 0, len(a.reasons))
		for r := range a.reasons {
			reasons = append(reasons, r)
		}
		sort.Strings(reasons)

		findings = append(findings, FailedLoginBurst{
			SourceIP:      sourceIP,
			FailureCount:  a.count,
			DistinctUsers: len(a.users),
			Reasons:       reasons,
			FirstAttempt:  a.first,
			LastAttempt:   a.last,
		})
	}

	sort.Slice(findings, func(i, j int) bool {
		if findings[i].FailureCount != findings[j].FailureCount {
			return findings[i].FailureCount > findings[j].FailureCount
		}
		return findings[i].SourceIP < findings[j].SourceIP
	})
	return findings, nil
}

package detect

import (
	"context"
	"fmt"
	"sort"
	"time"

	"cybercommand/internal/models"
)

// IntelMatch aggregates traffic that touched one active threat indicator
type IntelMatch struct {
	Indicator       string    `json:"indicator"`
	IndicatorType   string    `json:"indicator_type"`
	ThreatType      string    `json:"threat_type"`
	ThreatFamily    string    `json:"threat_family"`
	ConfidenceScore float64   `json:"confidence_score"`
	Severity        string    `json:"severity"`
	EventCount      int       `json:"event_count"`
	TotalBytes      uint64    `json:"total_bytes"`
	DistinctUsers   int       `json:"distinct_users"`
	FirstSeen       time.Time `json:"first_seen"`
	LastSeen        time.Time `json:"last_seen"`
}

// ThreatIntelMatches joins network traffic to active indicators on either the
// destination address or the destination domain. Traffic matching nothing in
// the intel catalog simply contributes no rows.
func (e *Engine) ThreatIntelMatches(ctx context.Context, epochID string, daysBack int) ([]IntelMatch, error) {
	if daysBack <= 0 {
		return nil, fmt.Errorf("%w: daysBack=%d", ErrInvalidWindow, daysBack)
	}

	indicators, err := e.reader.ActiveIndicators(ctx, epochID)
	if err != nil {
		return nil, fmt.Errorf("failed to load threat indicators: %w", err)
	}

	byValue := map[string]models.ThreatIndicator{}
	for _, ind := range indicators {
		switch ind.IndicatorType {
		case models.IndicatorTypeIP, models.IndicatorTypeDomain:
			byValue[ind.Indicator] = ind
		}
	}
	if len(byValue) == 0 {
		return []IntelMatch{}, nil
	}

	events, err := e.reader.NetworkEventsSince(ctx, epochID, e.windowStart(daysBack))
	if err != nil {
		return nil, fmt.Errorf("failed to load network events: %w", err)
	}

	type agg struct {
		indicator   models.ThreatIndicator
		count       int
		bytes       uint64
		users       map[string]bool
		first, last time.Time
	}
	matches := map[string]*agg{}

	record := func(ind models.ThreatIndicator, ev models.NetworkEvent) {
		a := matches[ind.Indicator]
		if a == nil {
			a = &agg{indicator: ind, users: map[string]bool{}, first: ev.EventTime, last: ev.EventTime}
			matches[ind.Indicator] = a
		}
		a.count++
		a.bytes += ev.BytesTransferred
		if ev.UserID != "" {
			a.users[ev.UserID] = true
		}
		if ev.EventTime.Before(a.first) {
			a.first = ev.EventTime
		}
		if ev.EventTime.After(a.last) {
			a.last = ev.EventTime
		}
	}

	for _, ev := range events {
		if ind, ok := byValue[ev.DestinationIP]; ok {
			record(ind, ev)
			continue
		}
		if ind, ok := byValue[ev.DestinationDomain]; ok {
			record(ind, ev)
		}
	}

	findings := []IntelMatch{}
	for _, a := range matches {
		findings = append(findings, IntelMatch{
			Indicator:       a.indicator.Indicator,
			IndicatorType:   a.indicator.IndicatorType,
			ThreatType:      a.indicator.ThreatType,
			ThreatFamily:    a.indicator.ThreatFamily,
			ConfidenceScore: a.indicator.ConfidenceScore,
			Severity:        a.indicator.Severity,
			EventCount:      a.count,
			TotalBytes:      a.bytes,
			DistinctUsers:   len(a.users),
			FirstSeen:       a.first,
			LastSeen:        a.last,
		})
	}

	sort.Slice(findings, func(i, j int) bool {
		if findings[i].ConfidenceScore != findings[j].ConfidenceScore {
			return findings[i].ConfidenceScore > findings[j].ConfidenceScore
		}
		if findings[i].TotalBytes != findings[j].TotalBytes {
			return findings[i].TotalBytes > findings[j].TotalBytes
		}
		return findings[i].Indicator < findings[j].Indicator
	})
	return findings, nil
}

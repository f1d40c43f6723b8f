package detect

import (
	"context"
	"fmt"
	"sort"
)

// ProtocolStat is one row of the protocol mix summary
type ProtocolStat struct {
	Protocol            string  `json:"protocol"`
	ApplicationProtocol string  `json:"application_protocol"`
	EventCount          int     `json:"event_count"`
	TotalBytes          uint64  `json:"total_bytes"`
	Share               float64 `json:"share"`
}

// DomainStat summarizes traffic to one destination domain
type DomainStat struct {
	Domain        string `json:"domain"`
	EventCount    int    `json:"event_count"`
	TotalBytes    uint64 `json:"total_bytes"`
	DistinctUsers int    `json:"distinct_users"`
}

// UserProfile summarizes one user's network activity over the window
type UserProfile struct {
	UserID               string  `json:"user_id"`
	EventCount           int     `json:"event_count"`
	TotalBytes           uint64  `json:"total_bytes"`
	DistinctDestinations int     `json:"distinct_destinations"`
	DistinctDomains      int     `json:"distinct_domains"`
	AvgThreatScore       float64 `json:"avg_threat_score"`
}

// ProtocolBreakdown summarizes traffic volume per (protocol, application)
func (e *Engine) ProtocolBreakdown(ctx context.Context, epochID string, daysBack int) ([]ProtocolStat, error) {
	if daysBack <= 0 {
		return nil, fmt.Errorf("%w: daysBack=%d", ErrInvalidWindow, daysBack)
	}

	events, err := e.reader.NetworkEventsSince(ctx, epochID, e.windowStart(daysBack))
	if err != nil {
		return nil, fmt.Errorf("failed to load network events: %w", err)
	}

	type key struct{ protocol, app string }
	type agg struct {
		count int
		bytes uint64
	}
	byProto := map[key]*agg{}
	for _, ev := range events {
		k := key{protocol: ev.Protocol, app: ev.ApplicationProtocol}
		a := byProto[k]
		if a == nil {
			a = &agg{}
			byProto[k] = a
		}
		a.count++
		a.bytes += ev.BytesTransferred
	}

	stats := []ProtocolStat{}
	for k, a := range byProto {
		stats = append(stats, ProtocolStat{
			Protocol:            k.protocol,
			ApplicationProtocol: k.app,
			EventCount:          a.count,
			TotalBytes:          a.bytes,
			Share:               float64(a.count) / float64(len(events)),
		})
	}

	sort.Slice(stats, func(i, j int) bool {
		if stats[i].EventCount != stats[j].EventCount {
			return stats[i].EventCount > stats[j].EventCount
		}
		return stats[i].ApplicationProtocol < stats[j].ApplicationProtocol
	})
	return stats, nil
}

// TopDestinationDomains returns the most contacted domains, by event count
func (e *Engine) TopDestinationDomains(ctx context.Context, epochID string, daysBack, limit int) ([]DomainStat, error) {
	if daysBack <= 0 || limit <= 0 {
		return nil, fmt.Errorf("%w: daysBack=%d limit=%d", ErrInvalidWindow, daysBack, limit)
	}

	events, err := e.reader.NetworkEventsSince(ctx, epochID, e.windowStart(daysBack))
	if err != nil {
		return nil, fmt.Errorf("failed to load network events: %w", err)
	}

	type agg struct {
		count int
		bytes uint64
		users map[string]bool
	}
	byDomain := map[string]*agg{}
	for _, ev := range events {
		if ev.DestinationDomain == "" {
			continue
		}
		a := byDomain[ev.DestinationDomain]
		if a == nil {
			a = &agg{users: map[string]bool{}}
			byDomain[ev.DestinationDomain] = a
		}
		a.count++
		a.bytes += ev.BytesTransferred
		if ev.UserID != "" {
			a.users[ev.UserID] = true
		}
	}

	stats := []DomainStat{}
	for domain, a := range byDomain {
		stats = append(stats, DomainStat{
			Domain:        domain,
			EventCount:    a.count,
			TotalBytes:    a.bytes,
			DistinctUsers: len(a.users),
		})
	}

	sort.Slice(stats, func(i, j int) bool {
		if stats[i].EventCount != stats[j].EventCount {
			return stats[i].EventCount > stats[j].EventCount
		}
		return stats[i].Domain < stats[j].Domain
	})
	if len(stats) > limit {
		stats = stats[:limit]
	}
	return stats, nil
}

// UserActivityProfiles summarizes per-user network behavior over the window
func (e *Engine) UserActivityProfiles(ctx context.Context, epochID string, daysBack int) ([]UserProfile, error) {
	if daysBack <= 0 {
		return nil, fmt.Errorf("%w: daysBack=%d", ErrInvalidWindow, daysBack)
	}

	events, err := e.reader.NetworkEventsSince(ctx, epochID, e.windowStart(daysBack))
	if err != nil {
		return nil, fmt.Errorf("failed to load network events: %w", err)
	}

	type agg struct {
		count       int
		bytes       uint64
		dests       map[string]bool
		domains     map[string]bool
		threatTotal float64
	}
	byUser := map[string]*agg{}
	for _, ev := range events {
		if ev.UserID == "" {
			continue
		}
		a := byUser[ev.UserID]
		if a == nil {
			a = &agg{dests: map[string]bool{}, domains: map[string]bool{}}
			byUser[ev.UserID] = a
		}
		a.count++
		a.bytes += ev.BytesTransferred
		a.dests[ev.DestinationIP] = true
		if ev.DestinationDomain != "" {
			a.domains[ev.DestinationDomain] = true
		}
		a.threatTotal += ev.ThreatScore
	}

	profiles := []UserProfile{}
	for userID, a := range byUser {
		profiles = append(profiles, UserProfile{
			UserID:               userID,
			EventCount:           a.count,
			TotalBytes:           a.bytes,
			DistinctDestinations: len(a.dests),
			DistinctDomains:      len(a.domains),
			AvgThreatScore:       a.threatTotal / float64(a.count),
		})
	}

	sort.Slice(profiles, func(i, j int) bool {
		if profiles[i].TotalBytes != profiles[j].TotalBytes {
			return profiles[i].TotalBytes > profiles[j].TotalBytes
		}
		return profiles[i].UserID < profiles[j].UserID
	})
	return profiles, nil
}

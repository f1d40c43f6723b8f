package detect

import (
	"context"
	"fmt"
	"sort"
	"time"
)

// ExfiltrationFinding aggregates a user's large outbound transfers
type ExfiltrationFinding struct {
	UserID             string    `json:"user_id"`
	TotalBytes         uint64    `json:"total_bytes"`
	EventCount         int       `json:"event_count"`
	UniqueDestinations int       `json:"unique_destinations"`
	MaxTransferBytes   uint64    `json:"max_transfer_bytes"`
	FirstSeen          time.Time `json:"first_seen"`
	LastSeen           time.Time `json:"last_seen"`
}

// FindExfiltration flags users whose large transfers (each above the per-event
// floor) either sum past the volume threshold or spray across too many
// destinations. A user at exactly a threshold is not flagged.
func (e *Engine) FindExfiltration(ctx context.Context, epochID string, daysBack int) ([]ExfiltrationFinding, error) {
	if daysBack <= 0 {
		return nil, fmt.Errorf("%w: daysBack=%d", ErrInvalidWindow, daysBack)
	}

	events, err := e.reader.NetworkEventsSince(ctx, epochID, e.windowStart(daysBack))
	if err != nil {
		return nil, fmt.Errorf("failed to load network events: %w", err)
	}

	type agg struct {
		total        uint64
		count        int
		max          uint64
		destinations map[string]bool
		first, last  time.Time
	}
	byUser := map[string]*agg{}

	for _, ev := range events {
		if ev.UserID == "" || ev.BytesTransferred <= e.cfg.MinTransferBytes {
			continue
		}
		a := byUser[ev.UserID]
		if a == nil {
			a = &agg{destinations: map[string]bool{}, first: ev.EventTime, last: ev.EventTime}
			byUser[ev.UserID] = a
		}
		a.total += ev.BytesTransferred
		a.count++
		if ev.BytesTransferred > a.max {
			a.max = ev.BytesTransferred
		}
		a.destinations[ev.DestinationIP] = true
		if ev.EventTime.Before(a.first) {
			a.first = ev.EventTime
		}
		if ev.EventTime.After(a.last) {
			a.last = ev.EventTime
		}
	}

	findings := []ExfiltrationFinding{}
	for userID, a := range byUser {
		if a.total <= e.cfg.ExfilTotalBytes && len(a.destinations) <= e.cfg.ExfilUniqueDestinations {
			continue
		}
		findings = append(findings, ExfiltrationFinding{
			UserID:             userID,
			TotalBytes:         a.total,
			EventCount:         a.count,
			UniqueDestinations: len(a.destinations),
			MaxTransferBytes:   a.max,
			FirstSeen:          a.first,
			LastSeen:           a.last,
		})
	}

	sort.Slice(findings, func(i, j int) bool {
		if findings[i].TotalBytes != findings[j].TotalBytes {
			return findings[i].TotalBytes > findings[j].TotalBytes
		}
		return findings[i].UserID < findings[j].UserID
	})
	return findings, nil
}

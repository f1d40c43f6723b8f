package models

import "time"

// Indicator types
const (
	IndicatorTypeIP     = "ip"
	IndicatorTypeDomain = "domain"
	IndicatorTypeHash   = "hash"
)

// ThreatIndicator is an IOC record from the simulated intel feed. Severity is
// derived from the confidence score via an ordered threshold table at
// generation time.
type ThreatIndicator struct {
	EpochID         string    `db:"epoch_id" json:"epoch_id"`
	IndicatorID     string    `db:"indicator_id" json:"indicator_id"`
	Indicator       string    `db:"indicator" json:"indicator"`
	IndicatorType   string    `db:"indicator_type" json:"indicator_type"`
	ThreatType      string    `db:"threat_type" json:"threat_type"`
	ThreatFamily    string    `db:"threat_family" json:"threat_family"`
	Source          string    `db:"source" json:"source"`
	ConfidenceScore float64   `db:"confidence_score" json:"confidence_score"`
	Severity        string    `db:"severity" json:"severity"`
	FirstSeen       time.Time `db:"first_seen" json:"first_seen"`
	LastSeen        time.Time `db:"last_seen" json:"last_seen"`
	IsActive        bool      `db:"is_active" json:"is_active"`
}

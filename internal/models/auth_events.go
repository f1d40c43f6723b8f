package models

import "time"

// Authentication results
const (
	AuthResultSuccess = "success"
	AuthResultFailure = "failure"
	AuthResultLocked  = "locked"
	AuthResultExpired = "expired"
)

// AuthEvent is one synthesized authentication record. FailureReason is
// non-empty exactly when AuthResult is not success.
type AuthEvent struct {
	EpochID          string    `db:"epoch_id" json:"epoch_id"`
	LogID            string    `db:"log_id" json:"log_id"`
	EventBucket      int       `db:"event_bucket" json:"event_bucket"`
	EventTime        time.Time `db:"event_time" json:"event_time"`
	UserID           string    `db:"user_id" json:"user_id"`
	Department       string    `db:"department" json:"department"`
	Title            string    `db:"title" json:"title"`
	AuthMethod       string    `db:"auth_method" json:"auth_method"`
	AuthResult       string    `db:"auth_result" json:"auth_result"`
	FailureReason    string    `db:"failure_reason" json:"failure_reason,omitempty"`
	SourceIP         string    `db:"source_ip" json:"source_ip"`
	GeoCountry       string    `db:"geo_country" json:"geo_country"`
	GeoCity          string    `db:"geo_city" json:"geo_city"`
	GeoLatitude      float64   `db:"geo_latitude" json:"geo_latitude"`
	GeoLongitude     float64   `db:"geo_longitude" json:"geo_longitude"`
	RiskScore        float64   `db:"risk_score" json:"risk_score"`
	MFAMethod        string    `db:"mfa_method" json:"mfa_method"`
	DeviceTrustLevel string    `db:"device_trust_level" json:"device_trust_level"`
}

// Succeeded reports whether the authentication attempt succeeded
func (e *AuthEvent) Succeeded() bool {
	return e.AuthResult == AuthResultSuccess
}

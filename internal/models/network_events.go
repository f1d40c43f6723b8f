package models

import "time"

// NetworkEvent is one synthesized network connection record.
//
// BytesTransferred is always BytesSent + BytesReceived; it is computed at
// construction and never set independently. UserID may reference a user that
// does not exist in the catalog; readers treat unmatched joins as absent
// enrichment rather than an error.
type NetworkEvent struct {
	EpochID             string    `db:"epoch_id" json:"epoch_id"`
	LogID               string    `db:"log_id" json:"log_id"`
	EventBucket         int       `db:"event_bucket" json:"event_bucket"`
	EventTime           time.Time `db:"event_time" json:"event_time"`
	SourceIP            string    `db:"source_ip" json:"source_ip"`
	DestinationIP       string    `db:"destination_ip" json:"destination_ip"`
	DestinationDomain   string    `db:"destination_domain" json:"destination_domain"`
	SourcePort          uint16    `db:"source_port" json:"source_port"`
	DestinationPort     uint16    `db:"destination_port" json:"destination_port"`
	Protocol            string    `db:"protocol" json:"protocol"`
	ApplicationProtocol string    `db:"application_protocol" json:"application_protocol"`
	BytesSent           uint64    `db:"bytes_sent" json:"bytes_sent"`
	BytesReceived       uint64    `db:"bytes_received" json:"bytes_received"`
	BytesTransferred    uint64    `db:"bytes_transferred" json:"bytes_transferred"`
	DurationMs          uint32    `db:"duration_ms" json:"duration_ms"`
	ConnectionState     string    `db:"connection_state" json:"connection_state"`
	UserID              string    `db:"user_id" json:"user_id,omitempty"`
	SessionID           string    `db:"session_id" json:"session_id"`
	ThreatScore         float64   `db:"threat_score" json:"threat_score"`
	GeoCountry          string    `db:"geo_country" json:"geo_country"`
	GeoCity             string    `db:"geo_city" json:"geo_city"`
	GeoLatitude         float64   `db:"geo_latitude" json:"geo_latitude"`
	GeoLongitude        float64   `db:"geo_longitude" json:"geo_longitude"`
	GeoThreatLevel      string    `db:"geo_threat_level" json:"geo_threat_level,omitempty"`
}

// SetBytes records transfer volume and maintains the BytesTransferred identity
func (e *NetworkEvent) SetBytes(sent, received uint64) {
	e.BytesSent = sent
	e.BytesReceived = received
	e.BytesTransferred = sent + received
}

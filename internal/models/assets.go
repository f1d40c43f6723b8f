package models

import "time"

// Asset is a reference-catalog host record, written once per generation epoch.
type Asset struct {
	EpochID            string    `db:"epoch_id" json:"epoch_id"`
	AssetID            string    `db:"asset_id" json:"asset_id"`
	Hostname           string    `db:"hostname" json:"hostname"`
	IPAddress          string    `db:"ip_address" json:"ip_address"`
	MACAddress         string    `db:"mac_address" json:"mac_address"`
	AssetType          string    `db:"asset_type" json:"asset_type"`
	OperatingSystem    string    `db:"operating_system" json:"operating_system"`
	Location           string    `db:"location" json:"location"`
	Criticality        string    `db:"criticality" json:"criticality"`
	SecurityZone       string    `db:"security_zone" json:"security_zone"`
	VulnerabilityScore float64   `db:"vulnerability_score" json:"vulnerability_score"`
	CreatedAt          time.Time `db:"created_at" json:"created_at"`
}

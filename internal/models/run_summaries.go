package models

import "time"

// Run statuses
const (
	RunStatusPublished = "published"
	RunStatusFailed    = "failed"
)

// RunSummary records one GenerateAll run: how much was written into the epoch
// and whether the epoch pointer moved.
type RunSummary struct {
	RunID             string    `db:"run_id" json:"run_id"`
	EpochID           string    `db:"epoch_id" json:"epoch_id"`
	Status            string    `db:"status" json:"status"`
	Seed              int64     `db:"seed" json:"seed"`
	StartedAt         time.Time `db:"started_at" json:"started_at"`
	FinishedAt        time.Time `db:"finished_at" json:"finished_at"`
	UsersWritten      uint64    `db:"users_written" json:"users_written"`
	AssetsWritten     uint64    `db:"assets_written" json:"assets_written"`
	IndicatorsWritten uint64    `db:"indicators_written" json:"indicators_written"`
	NetworkWritten    uint64    `db:"network_written" json:"network_written"`
	AuthWritten       uint64    `db:"auth_written" json:"auth_written"`
	InjectedWritten   uint64    `db:"injected_written" json:"injected_written"`
}

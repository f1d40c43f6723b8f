package store

import (
	"context"
	"time"

	"cybercommand/internal/models"
)

// Writer persists catalog and event rows for a staged epoch. Rows become
// visible to readers only once the epoch pointer moves.
type Writer interface {
	WriteUsers(ctx context.Context, users []models.User) error
	WriteAssets(ctx context.Context, assets []models.Asset) error
	WriteIndicators(ctx context.Context, indicators []models.ThreatIndicator) error
	WriteNetworkEvents(ctx context.Context, events []models.NetworkEvent) error
	WriteAuthEvents(ctx context.Context, events []models.AuthEvent) error
}

// Reader serves detection queries scoped to a single epoch. An epoch with no
// rows yields empty slices, never errors.
type Reader interface {
	Users(ctx context.Context, epochID string) ([]models.User, error)
	Assets(ctx context.Context, epochID string) ([]models.Asset, error)
	ActiveIndicators(ctx context.Context, epochID string) ([]models.ThreatIndicator, error)
	NetworkEventsSince(ctx context.Context, epochID string, since time.Time) ([]models.NetworkEvent, error)
	AuthEventsSince(ctx context.Context, epochID string, since time.Time) ([]models.AuthEvent, error)
}

// Store is the full event-store surface the services wire against
type Store interface {
	Reader
	Writer

	// EnsureSchema creates the six tables if they do not exist
	EnsureSchema(ctx context.Context) error
	// WriteRunSummary persists the outcome of one generation run
	WriteRunSummary(ctx context.Context, summary models.RunSummary) error
	// DeleteEpochsExcept drops rows of superseded epochs after a publish
	DeleteEpochsExcept(ctx context.Context, keepEpochID string) error
}

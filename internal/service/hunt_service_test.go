package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"cybercommand/internal/config"
	"cybercommand/internal/detect"
	"cybercommand/internal/epoch"
	"cybercommand/internal/models"
	"cybercommand/internal/store"
)

var huntNow = time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

func testDetectionConfig() config.DetectionConfig {
	return config.DetectionConfig{
		MinTransferBytes:        1_000_000,
		ExfilTotalBytes:         100_000_000,
		ExfilUniqueDestinations: 50,
		TravelHoursThreshold:    8,
		InternationalFloorHours: 8,
		CityFloorHours:          2,
		BaselineWindowDays:      30,
		RecentWindowDays:        7,
		BusinessHourStart:       9,
		BusinessHourEnd:         17,
		AfterHoursMinEvents:     5,
		LateralWindowDays:       7,
		LateralZThreshold:       2,
		CompositeZThreshold:     2,
		FailedLoginBurstMin:     50,
	}
}

func newTestHuntService(t *testing.T) (*HuntService, *store.MemoryStore, *epoch.Manager) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	cfg := testConfig()
	cfg.Detection = testDetectionConfig()
	mem := store.NewMemoryStore()
	epochs := epoch.NewManager(rdb)
	engine := detect.NewEngine(mem, cfg.Detection).WithClock(func() time.Time { return huntNow })
	svc := NewHuntService(engine, epochs, nil, nil, cfg, zap.NewNop())
	return svc, mem, epochs
}

func publishTestEpoch(t *testing.T, epochs *epoch.Manager) string {
	t.Helper()
	build, err := epochs.Begin(context.Background())
	require.NoError(t, err)
	require.NoError(t, epochs.Publish(context.Background(), build))
	return build.ID
}

func TestHuntBeforeFirstPublishIsEmpty(t *testing.T) {
	svc, mem, _ := newTestHuntService(t)
	ctx := context.Background()

	// rows exist under a build that was never published
	require.NoError(t, mem.WriteNetworkEvents(ctx, []models.NetworkEvent{{
		EpochID:          "unpublished",
		EventTime:        huntNow.Add(-time.Hour),
		UserID:           "alice",
		SourceIP:         "10.1.20.30",
		DestinationIP:    "52.0.0.1",
		BytesTransferred: 200_000_000,
	}}))

	findings, err := svc.Exfiltration(ctx, 7)
	require.NoError(t, err)
	assert.Empty(t, findings)

	lateral, err := svc.LateralMovement(ctx)
	require.NoError(t, err)
	assert.Empty(t, lateral)
}

func TestHuntScopedToPublishedEpoch(t *testing.T) {
	svc, mem, epochs := newTestHuntService(t)
	ctx := context.Background()
	epochID := publishTestEpoch(t, epochs)

	hot := models.NetworkEvent{
		EpochID:          epochID,
		LogID:            "hot",
		EventTime:        huntNow.Add(-24 * time.Hour),
		UserID:           "alice",
		SourceIP:         "10.1.20.30",
		DestinationIP:    "52.0.0.1",
		BytesSent:        200_000_000,
		BytesTransferred: 200_000_000,
	}
	// same shape of traffic under a stale epoch must stay invisible
	stale := hot
	stale.EpochID = "superseded"
	stale.LogID = "stale"
	stale.UserID = "mallory"
	require.NoError(t, mem.WriteNetworkEvents(ctx, []models.NetworkEvent{hot, stale}))

	findings, err := svc.Exfiltration(ctx, 7)
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Equal(t, "alice", findings[0].UserID)
}

func TestCompositeScoreThroughService(t *testing.T) {
	svc, mem, epochs := newTestHuntService(t)
	ctx := context.Background()
	epochID := publishTestEpoch(t, epochs)

	events := make([]models.NetworkEvent, 0, 11)
	for day := 1; day <= 10; day++ {
		events = append(events, models.NetworkEvent{
			EpochID:          epochID,
			EventTime:        huntNow.Add(-time.Duration(day) * 24 * time.Hour),
			UserID:           "alice",
			DestinationIP:    "52.0.0.1",
			BytesTransferred: 1000,
		})
	}
	require.NoError(t, mem.WriteNetworkEvents(ctx, events))

	finding, err := svc.CompositeScore(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", finding.UserID)
	assert.Len(t, finding.Metrics, 3)

	_, err = svc.CompositeScore(ctx, "")
	assert.ErrorIs(t, err, detect.ErrEmptyUserID)
}

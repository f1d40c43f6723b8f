package detect

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"cybercommand/internal/config"
	"cybercommand/internal/models"
	"cybercommand/internal/store"
)

const testEpoch = "epoch-test"

var testNow = time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

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

func newTestEngine(t *testing.T) (*Engine, *store.MemoryStore) {
	t.Helper()
	mem := store.NewMemoryStore()
	engine := NewEngine(mem, testDetectionConfig()).
		WithClock(func() time.Time { return testNow })
	return engine, mem
}

func netEvent(userID string, at time.Time, destIP string, bytes uint64) models.NetworkEvent {
	e := models.NetworkEvent{
		EpochID:       testEpoch,
		LogID:         fmt.Sprintf("net-%s-%d-%s", userID, at.UnixNano(), destIP),
		EventTime:     at,
		SourceIP:      "10.1.20.30",
		DestinationIP: destIP,
		UserID:        userID,
		Protocol:      "TCP",
	}
	e.SetBytes(bytes, 0)
	return e
}

func authEvent(userID string, at time.Time, result, country, city, sourceIP string) models.AuthEvent {
	e := models.AuthEvent{
		EpochID:    testEpoch,
		LogID:      fmt.Sprintf("auth-%s-%d", userID, at.UnixNano()),
		EventTime:  at,
		UserID:     userID,
		AuthResult: result,
		GeoCountry: country,
		GeoCity:    city,
		SourceIP:   sourceIP,
	}
	if result != models.AuthResultSuccess {
		e.FailureReason = "invalid_password"
	}
	return e
}

func writeNetwork(t *testing.T, mem *store.MemoryStore, events ...models.NetworkEvent) {
	t.Helper()
	require.NoError(t, mem.WriteNetworkEvents(context.Background(), events))
}

func writeAuth(t *testing.T, mem *store.MemoryStore, events ...models.AuthEvent) {
	t.Helper()
	require.NoError(t, mem.WriteAuthEvents(context.Background(), events))
}

package detect

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cybercommand/internal/models"
)

func TestImpossibleTravelCountryChange(t *testing.T) {
	engine, mem := newTestEngine(t)
	base := testNow.Add(-48 * time.Hour)

	// London then Singapore three hours later: physically impossible
	writeAuth(t, mem,
		authEvent("alice", base, models.AuthResultSuccess, "United Kingdom", "London", "10.3.0.5"),
		authEvent("alice", base.Add(3*time.Hour), models.AuthResultSuccess, "Singapore", "Singapore", "10.4.0.9"),
	)
	// same hop over nine hours: plausible
	writeAuth(t, mem,
		authEvent("bob", base, models.AuthResultSuccess, "United Kingdom", "London", "10.3.0.6"),
		authEvent("bob", base.Add(9*time.Hour), models.AuthResultSuccess, "Singapore", "Singapore", "10.4.0.2"),
	)

	findings, err := engine.DetectImpossibleTravel(context.Background(), testEpoch, 8)
	require.NoError(t, err)
	require.Len(t, findings, 1)

	f := findings[0]
	assert.Equal(t, "alice", f.UserID)
	assert.Equal(t, "United Kingdom", f.FromCountry)
	assert.Equal(t, "Singapore", f.ToCountry)
	assert.InDelta(t, 3.0, f.HoursBetween, 1e-9)
	assert.Equal(t, 8.0, f.MinPlausible)
}

func TestImpossibleTravelCityFloor(t *testing.T) {
	engine, mem := newTestEngine(t)
	base := testNow.Add(-48 * time.Hour)

	// SF to NY inside the same country: two-hour floor applies
	writeAuth(t, mem,
		authEvent("carol", base, models.AuthResultSuccess, "United States", "San Francisco", "10.1.0.5"),
		authEvent("carol", base.Add(time.Hour), models.AuthResultSuccess, "United States", "New York", "10.2.0.5"),
		authEvent("dave", base, models.AuthResultSuccess, "United States", "San Francisco", "10.1.0.6"),
		authEvent("dave", base.Add(3*time.Hour), models.AuthResultSuccess, "United States", "New York", "10.2.0.6"),
	)

	findings, err := engine.DetectImpossibleTravel(context.Background(), testEpoch, 8)
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Equal(t, "carol", findings[0].UserID)
	assert.Equal(t, 2.0, findings[0].MinPlausible)
}

func TestImpossibleTravelIgnoresFailuresAndStationaryUsers(t *testing.T) {
	engine, mem := newTestEngine(t)
	base := testNow.Add(-48 * time.Hour)

	writeAuth(t, mem,
		// failed login abroad does not pair
		authEvent("erin", base, models.AuthResultSuccess, "United States", "New York", "10.2.0.1"),
		authEvent("erin", base.Add(time.Hour), models.AuthResultFailure, "Singapore", "Singapore", "10.4.0.1"),
		// no location change
		authEvent("frank", base, models.AuthResultSuccess, "United States", "New York", "10.2.0.2"),
		authEvent("frank", base.Add(time.Hour), models.AuthResultSuccess, "United States", "New York", "10.2.0.2"),
	)

	findings, err := engine.DetectImpossibleTravel(context.Background(), testEpoch, 8)
	require.NoError(t, err)
	assert.Empty(t, findings)
}

func TestImpossibleTravelOrdersByTightestPair(t *testing.T) {
	engine, mem := newTestEngine(t)
	base := testNow.Add(-48 * time.Hour)

	writeAuth(t, mem,
		authEvent("slow", base, models.AuthResultSuccess, "United Kingdom", "London", "10.3.0.1"),
		authEvent("slow", base.Add(5*time.Hour), models.AuthResultSuccess, "Singapore", "Singapore", "10.4.0.1"),
		authEvent("fast", base, models.AuthResultSuccess, "United Kingdom", "London", "10.3.0.2"),
		authEvent("fast", base.Add(time.Hour), models.AuthResultSuccess, "Singapore", "Singapore", "10.4.0.2"),
	)

	findings, err := engine.DetectImpossibleTravel(context.Background(), testEpoch, 8)
	require.NoError(t, err)
	require.Len(t, findings, 2)
	assert.Equal(t, "fast", findings[0].UserID)
	assert.Equal(t, "slow", findings[1].UserID)
}

func TestImpossibleTravelRejectsNonPositiveThreshold(t *testing.T) {
	engine, _ := newTestEngine(t)
	_, err := engine.DetectImpossibleTravel(context.Background(), testEpoch, 0)
	require.ErrorIs(t, err, ErrInvalidWindow)
}

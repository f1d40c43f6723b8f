package detect

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cybercommand/internal/models"
)

// at places an event on a day offset from the pinned clock at a fixed UTC hour
func at(daysAgo, hour int) time.Time {
	day := testNow.AddDate(0, 0, -daysAgo)
	return time.Date(day.Year(), day.Month(), day.Day(), hour, 30, 0, 0, time.UTC)
}

func TestBehavioralAnomalyFlagsNightOwl(t *testing.T) {
	engine, mem := newTestEngine(t)

	// steady business-hours history over the baseline window
	for d := 8; d <= 28; d++ {
		writeAuth(t, mem, authEvent("gina", at(d, 10), models.AuthResultSuccess, "United States", "New York", "10.2.0.1"))
	}
	// burst of late-night logins inside the recent window
	for i := 0; i < 8; i++ {
		writeAuth(t, mem, authEvent("gina", at(2, 21).Add(time.Duration(i)*time.Minute),
			models.AuthResultSuccess, "United States", "New York", "10.2.0.1"))
	}

	findings, err := engine.BehavioralAnomaly(context.Background(), testEpoch)
	require.NoError(t, err)
	require.Len(t, findings, 1)

	f := findings[0]
	assert.Equal(t, "gina", f.UserID)
	assert.Equal(t, 8, f.AfterHoursCount)
	assert.Greater(t, f.Ratio, 1.0)
}

func TestBehavioralAnomalyMinimumEvents(t *testing.T) {
	engine, mem := newTestEngine(t)

	// exactly the minimum: not flagged, threshold is exclusive
	for i := 0; i < 5; i++ {
		writeAuth(t, mem, authEvent("henry", at(3, 22).Add(time.Duration(i)*time.Minute),
			models.AuthResultSuccess, "United States", "New York", "10.2.0.2"))
	}

	findings, err := engine.BehavioralAnomaly(context.Background(), testEpoch)
	require.NoError(t, err)
	assert.Empty(t, findings)
}

func TestBehavioralAnomalyExcludesUsersWithoutBaseline(t *testing.T) {
	engine, mem := newTestEngine(t)

	// ivan has business-hours history, judy has none at all; the same
	// after-hours burst flags ivan but leaves judy without a ratio
	writeAuth(t, mem, authEvent("ivan", at(20, 11), models.AuthResultSuccess, "United States", "New York", "10.2.0.3"))
	for i := 0; i < 6; i++ {
		writeAuth(t, mem, authEvent("ivan", at(2, 20).Add(time.Duration(i)*time.Minute),
			models.AuthResultSuccess, "United States", "New York", "10.2.0.3"))
		writeAuth(t, mem, authEvent("judy", at(2, 20).Add(time.Duration(i)*time.Minute),
			models.AuthResultSuccess, "United States", "New York", "10.2.0.4"))
	}

	findings, err := engine.BehavioralAnomaly(context.Background(), testEpoch)
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Equal(t, "ivan", findings[0].UserID)
}

func TestBehavioralAnomalyIgnoresOldAfterHoursActivity(t *testing.T) {
	engine, mem := newTestEngine(t)

	// after-hours logins outside the recent window do not count
	for i := 0; i < 10; i++ {
		writeAuth(t, mem, authEvent("kate", at(15, 22).Add(time.Duration(i)*time.Minute),
			models.AuthResultSuccess, "United States", "New York", "10.2.0.5"))
	}

	findings, err := engine.BehavioralAnomaly(context.Background(), testEpoch)
	require.NoError(t, err)
	assert.Empty(t, findings)
}

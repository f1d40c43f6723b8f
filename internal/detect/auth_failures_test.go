package detect

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cybercommand/internal/models"
)

func TestFailedLoginBurstsThresholdExclusive(t *testing.T) {
	engine, mem := newTestEngine(t)
	base := testNow.Add(-24 * time.Hour)

	// 51 failures from one source, 50 from another
	for i := 0; i < 51; i++ {
		writeAuth(t, mem, authEvent(fmt.Sprintf("user%d", i%10), base.Add(time.Duration(i)*time.Minute),
			models.AuthResultFailure, "United States", "New York", "203.0.113.7"))
	}
	for i := 0; i < 50; i++ {
		writeAuth(t, mem, authEvent("victim", base.Add(time.Duration(i)*time.Minute),
			models.AuthResultFailure, "United States", "New York", "203.0.113.8"))
	}

	findings, err := engine.FailedLoginBursts(context.Background(), testEpoch, 7)
	require.NoError(t, err)
	require.Len(t, findings, 1)

	f := findings[0]
	assert.Equal(t, "203.0.113.7", f.SourceIP)
	assert.Equal(t, 51, f.FailureCount)
	assert.Equal(t, 10, f.DistinctUsers)
	assert.Contains(t, f.Reasons, "invalid_password")
	assert.True(t, f.LastAttempt.After(f.FirstAttempt))
}

func TestFailedLoginBurstsIgnoresSuccesses(t *testing.T) {
	engine, mem := newTestEngine(t)
	base := testNow.Add(-24 * time.Hour)

	for i := 0; i < 100; i++ {
		writeAuth(t, mem, authEvent("busy", base.Add(time.Duration(i)*time.Minute),
			models.AuthResultSuccess, "United States", "New York", "10.2.0.1"))
	}

	findings, err := engine.FailedLoginBursts(context.Background(), testEpoch, 7)
	require.NoError(t, err)
	assert.Empty(t, findings)
}

func TestFailedLoginBurstsCountsLockouts(t *testing.T) {
	engine, mem := newTestEngine(t)
	base := testNow.Add(-24 * time.Hour)

	// locked and expired results are failures too
	for i := 0; i < 60; i++ {
		result := models.AuthResultLocked
		if i%2 == 0 {
			result = models.AuthResultExpired
		}
		e := authEvent("victim", base.Add(time.Duration(i)*time.Minute),
			result, "United States", "New York", "203.0.113.9")
		e.FailureReason = "account_locked"
		writeAuth(t, mem, e)
	}

	findings, err := engine.FailedLoginBursts(context.Background(), testEpoch, 7)
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Equal(t, 60, findings[0].FailureCount)
}

func TestFailedLoginBurstsRejectsNonPositiveWindow(t *testing.T) {
	engine, _ := newTestEngine(t)
	_, err := engine.FailedLoginBursts(context.Background(), testEpoch, -1)
	require.ErrorIs(t, err, ErrInvalidWindow)
}

package detect

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLateralMovementFlagsFanOut(t *testing.T) {
	engine, mem := newTestEngine(t)

	// twenty days of history touching two or three hosts a day
	for d := 8; d <= 27; d++ {
		n := 2 + d%2
		for i := 0; i < n; i++ {
			e := netEvent("leo", at(d, 10), fmt.Sprintf("10.1.5.%d", i+1), 5000)
			e.SourceIP = "10.1.0.10"
			writeNetwork(t, mem, e)
		}
	}
	// sudden fan-out to thirty hosts inside the recent window
	for i := 0; i < 30; i++ {
		e := netEvent("leo", at(2, 10), fmt.Sprintf("10.1.9.%d", i+1), 5000)
		e.SourceIP = "10.1.0.10"
		writeNetwork(t, mem, e)
	}

	findings, err := engine.LateralMovement(context.Background(), testEpoch)
	require.NoError(t, err)
	require.Len(t, findings, 1)

	f := findings[0]
	assert.Equal(t, "leo", f.UserID)
	assert.Equal(t, "10.1.0.10", f.SourceIP)
	assert.Equal(t, 30, f.RecentDistinct)
	assert.Greater(t, f.ZScore, 2.0)
}

func TestLateralMovementExcludesFlatBaseline(t *testing.T) {
	engine, mem := newTestEngine(t)

	// identical fan-out every day: zero variance, no defined deviation
	for d := 1; d <= 28; d++ {
		for i := 0; i < 3; i++ {
			e := netEvent("mona", at(d, 10), fmt.Sprintf("10.2.5.%d", i+1), 5000)
			e.SourceIP = "10.2.0.20"
			writeNetwork(t, mem, e)
		}
	}

	findings, err := engine.LateralMovement(context.Background(), testEpoch)
	require.NoError(t, err)
	assert.Empty(t, findings)
}

func TestLateralMovementIgnoresExternalTraffic(t *testing.T) {
	engine, mem := newTestEngine(t)

	for d := 1; d <= 28; d++ {
		n := 2 + d%5
		for i := 0; i < n; i++ {
			// external destinations never count as lateral movement
			e := netEvent("nate", at(d, 10), fmt.Sprintf("52.0.5.%d", i+1), 5000)
			e.SourceIP = "10.1.0.30"
			writeNetwork(t, mem, e)
		}
	}

	findings, err := engine.LateralMovement(context.Background(), testEpoch)
	require.NoError(t, err)
	assert.Empty(t, findings)
}

package detect

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProtocolBreakdown(t *testing.T) {
	engine, mem := newTestEngine(t)
	at := testNow.Add(-24 * time.Hour)

	for i := 0; i < 6; i++ {
		e := netEvent("alice", at.Add(time.Duration(i)*time.Minute), "52.0.0.1", 1000)
		e.ApplicationProtocol = "HTTPS"
		writeNetwork(t, mem, e)
	}
	for i := 0; i < 4; i++ {
		e := netEvent("bob", at.Add(time.Duration(i)*time.Minute), "52.0.0.2", 2000)
		e.Protocol = "UDP"
		e.ApplicationProtocol = "DNS"
		writeNetwork(t, mem, e)
	}

	stats, err := engine.ProtocolBreakdown(context.Background(), testEpoch, 7)
	require.NoError(t, err)
	require.Len(t, stats, 2)

	assert.Equal(t, "HTTPS", stats[0].ApplicationProtocol)
	assert.Equal(t, 6, stats[0].EventCount)
	assert.InDelta(t, 0.6, stats[0].Share, 1e-9)
	assert.Equal(t, "DNS", stats[1].ApplicationProtocol)
}

func TestTopDestinationDomainsLimit(t *testing.T) {
	engine, mem := newTestEngine(t)
	at := testNow.Add(-24 * time.Hour)

	for d := 0; d < 5; d++ {
		for i := 0; i <= d; i++ {
			e := netEvent("alice", at.Add(time.Duration(i)*time.Minute), "52.0.0.1", 1000)
			e.DestinationDomain = fmt.Sprintf("domain%d.com", d)
			writeNetwork(t, mem, e)
		}
	}

	stats, err := engine.TopDestinationDomains(context.Background(), testEpoch, 7, 3)
	require.NoError(t, err)
	require.Len(t, stats, 3)
	assert.Equal(t, "domain4.com", stats[0].Domain)
	assert.Equal(t, 5, stats[0].EventCount)
}

func TestUserActivityProfiles(t *testing.T) {
	engine, mem := newTestEngine(t)
	at := testNow.Add(-24 * time.Hour)

	e1 := netEvent("alice", at, "52.0.0.1", 4000)
	e1.DestinationDomain = "github.com"
	e1.ThreatScore = 0.2
	e2 := netEvent("alice", at.Add(time.Minute), "52.0.0.2", 6000)
	e2.DestinationDomain = "slack.com"
	e2.ThreatScore = 0.4
	e3 := netEvent("bob", at, "52.0.0.1", 1000)
	// rows with no user attribution contribute nothing
	dangling := netEvent("", at, "52.0.0.3", 999_999)
	writeNetwork(t, mem, e1, e2, e3, dangling)

	profiles, err := engine.UserActivityProfiles(context.Background(), testEpoch, 7)
	require.NoError(t, err)
	require.Len(t, profiles, 2)

	assert.Equal(t, "alice", profiles[0].UserID)
	assert.Equal(t, 2, profiles[0].EventCount)
	assert.Equal(t, uint64(10000), profiles[0].TotalBytes)
	assert.Equal(t, 2, profiles[0].DistinctDestinations)
	assert.Equal(t, 2, profiles[0].DistinctDomains)
	assert.InDelta(t, 0.3, profiles[0].AvgThreatScore, 1e-9)
}

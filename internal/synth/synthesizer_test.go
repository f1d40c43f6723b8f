package synth

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cybercommand/internal/bucketing"
	"cybercommand/internal/catalog"
	"cybercommand/internal/config"
	"cybercommand/internal/models"
	"cybercommand/internal/randutil"
)

func testBucketer() *bucketing.BucketingManager {
	return bucketing.NewBucketingManager(&config.Config{
		Bucketing: config.BucketingConfig{EventBuckets: 64},
	})
}

func testUsers(t *testing.T, count int) []models.User {
	t.Helper()
	users, err := catalog.NewGenerator(randutil.NewRand(1)).Users("epoch-1", count, time.Now())
	require.NoError(t, err)
	return users
}

func TestGenerateEventsValidation(t *testing.T) {
	s := NewSynthesizer(randutil.NewRand(1), testBucketer())
	users := testUsers(t, 10)
	now := time.Now()

	_, _, err := s.GenerateEvents("e", users, 0, 10, 10, now)
	require.ErrorIs(t, err, ErrInvalidWindow)

	_, _, err = s.GenerateEvents("e", users, 7, 0, 10, now)
	require.ErrorIs(t, err, ErrInvalidVolume)

	_, _, err = s.GenerateEvents("e", users, 7, 10, -1, now)
	require.ErrorIs(t, err, ErrInvalidVolume)

	_, _, err = s.GenerateEvents("e", nil, 7, 10, 10, now)
	require.ErrorIs(t, err, ErrEmptyCatalog)
}

func TestGenerateEventsVolumeAndWindow(t *testing.T) {
	s := NewSynthesizer(randutil.NewRand(42), testBucketer())
	users := testUsers(t, 50)
	now := time.Now().UTC()
	const days, netPerDay, authPerDay = 5, 100, 60

	network, auth, err := s.GenerateEvents("epoch-1", users, days, netPerDay, authPerDay, now)
	require.NoError(t, err)
	assert.Len(t, network, days*netPerDay)
	assert.Len(t, auth, days*authPerDay)

	windowStart := now.AddDate(0, 0, -days)
	for _, e := range network {
		assert.False(t, e.EventTime.Before(windowStart), "event before window start")
		assert.False(t, e.EventTime.After(now), "event after now")
	}
	for _, e := range auth {
		assert.False(t, e.EventTime.Before(windowStart))
		assert.False(t, e.EventTime.After(now))
	}
}

func TestNetworkEventBytesIdentity(t *testing.T) {
	s := NewSynthesizer(randutil.NewRand(42), testBucketer())
	network, _, err := s.GenerateEvents("epoch-1", testUsers(t, 20), 3, 200, 10, time.Now())
	require.NoError(t, err)

	for _, e := range network {
		assert.Equal(t, e.BytesSent+e.BytesReceived, e.BytesTransferred)
	}
}

func TestNetworkEventShape(t *testing.T) {
	users := testUsers(t, 30)
	byID := map[string]models.User{}
	for _, u := range users {
		byID[u.UserID] = u
	}

	bucketer := testBucketer()
	s := NewSynthesizer(randutil.NewRand(7), bucketer)
	network, _, err := s.GenerateEvents("epoch-1", users, 3, 300, 10, time.Now())
	require.NoError(t, err)

	internal := 0
	for _, e := range network {
		user, ok := byID[e.UserID]
		require.True(t, ok)
		office := catalog.OfficeByKey(user.Location)
		assert.True(t, strings.HasPrefix(e.SourceIP, office.SubnetPrefix+"."),
			"source %s not in %s subnet", e.SourceIP, user.Location)
		assert.Equal(t, bucketer.GetEventBucket(e.UserID), e.EventBucket)

		assert.GreaterOrEqual(t, e.ThreatScore, 0.0)
		assert.Less(t, e.ThreatScore, 0.3)
		assert.Empty(t, e.GeoThreatLevel)

		if strings.HasPrefix(e.DestinationIP, "10.") {
			internal++
			assert.Equal(t, "company.local", e.DestinationDomain)
		} else {
			assert.Contains(t, legitimateDomains, e.DestinationDomain)
		}
	}
	// 30% internal destination rate, loose band at 900 rows
	assert.InDelta(t, 270, internal, 90)
}

func TestAuthEventFailureReasons(t *testing.T) {
	s := NewSynthesizer(randutil.NewRand(7), testBucketer())
	_, auth, err := s.GenerateEvents("epoch-1", testUsers(t, 30), 5, 10, 400, time.Now())
	require.NoError(t, err)

	results := map[string]int{}
	for _, e := range auth {
		results[e.AuthResult]++
		if e.Succeeded() {
			assert.Empty(t, e.FailureReason)
		} else {
			assert.NotEmpty(t, e.FailureReason)
		}
		assert.GreaterOrEqual(t, e.RiskScore, 0.0)
		assert.Less(t, e.RiskScore, 0.4)
	}
	// success dominates at p=0.9
	assert.Greater(t, results["success"], results["failure"])
	assert.InDelta(t, 1800, results["success"], 120)
}

func TestGenerateEventsReproducible(t *testing.T) {
	users := testUsers(t, 20)
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	s1 := NewSynthesizer(randutil.NewRand(99), testBucketer())
	s2 := NewSynthesizer(randutil.NewRand(99), testBucketer())

	n1, a1, err := s1.GenerateEvents("e", users, 2, 50, 50, now)
	require.NoError(t, err)
	n2, a2, err := s2.GenerateEvents("e", users, 2, 50, 50, now)
	require.NoError(t, err)

	// LogID and SessionID are uuid draws; everything else must match
	require.Equal(t, len(n1), len(n2))
	for i := range n1 {
		n1[i].LogID, n2[i].LogID = "", ""
		n1[i].SessionID, n2[i].SessionID = "", ""
	}
	assert.Equal(t, n1, n2)

	require.Equal(t, len(a1), len(a2))
	for i := range a1 {
		a1[i].LogID, a2[i].LogID = "", ""
	}
	assert.Equal(t, a1, a2)
}

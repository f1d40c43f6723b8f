package catalog

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cybercommand/internal/models"
	"cybercommand/internal/randutil"
)

func newTestGenerator() *Generator {
	return NewGenerator(randutil.NewRand(42))
}

func TestUsersRejectsNonPositiveCount(t *testing.T) {
	g := newTestGenerator()
	_, err := g.Users("epoch-1", 0, time.Now())
	require.ErrorIs(t, err, ErrInvalidCount)

	_, err = g.Users("epoch-1", -5, time.Now())
	require.ErrorIs(t, err, ErrInvalidCount)
}

func TestUsersShape(t *testing.T) {
	g := newTestGenerator()
	now := time.Now().UTC()

	users, err := g.Users("epoch-1", 200, now)
	require.NoError(t, err)
	require.Len(t, users, 200)

	ids := map[string]bool{}
	for _, u := range users {
		assert.Equal(t, "epoch-1", u.EpochID)
		assert.False(t, ids[u.UserID], "duplicate user_id %s", u.UserID)
		ids[u.UserID] = true

		assert.Equal(t, u.UserID, u.Username)
		assert.Equal(t, u.Username+"@company.com", u.Email)
		assert.Contains(t, RolesByDepartment[u.Department], u.Title)
		assert.Contains(t, EmploymentTypes, u.EmployeeType)
		assert.Contains(t, SecurityClearances, u.SecurityClearance)
		assert.GreaterOrEqual(t, u.RiskScore, 0.0)
		assert.Less(t, u.RiskScore, 0.3)
		assert.Equal(t, IsPrivilegedTitle(u.Title), u.Privileged)
	}
}

func TestUsersCoverMultipleDepartments(t *testing.T) {
	g := newTestGenerator()
	users, err := g.Users("epoch-1", 500, time.Now())
	require.NoError(t, err)

	depts := map[string]bool{}
	for _, u := range users {
		depts[u.Department] = true
	}
	// 500 draws over a shuffled 12-department cross join covers all of them
	assert.Len(t, depts, len(Departments))
}

func TestAssetsShape(t *testing.T) {
	g := newTestGenerator()
	assets, err := g.Assets("epoch-1", 300, time.Now())
	require.NoError(t, err)
	require.Len(t, assets, 300)

	for _, a := range assets {
		office := OfficeByKey(a.Location)
		assert.True(t, strings.HasPrefix(a.IPAddress, office.SubnetPrefix+"."),
			"asset ip %s outside %s subnet", a.IPAddress, a.Location)
		assert.Contains(t, OperatingSystemsByAssetType[a.AssetType], a.OperatingSystem)
		assert.Contains(t, CriticalityLevels, a.Criticality)
		assert.Len(t, strings.Split(a.MACAddress, ":"), 6)
		assert.GreaterOrEqual(t, a.VulnerabilityScore, 0.0)
		assert.LessOrEqual(t, a.VulnerabilityScore, 1.0)
	}
}

func TestAssetsRejectsNonPositiveCount(t *testing.T) {
	g := newTestGenerator()
	_, err := g.Assets("epoch-1", 0, time.Now())
	require.ErrorIs(t, err, ErrInvalidCount)
}

func TestIndicatorsCatalog(t *testing.T) {
	g := newTestGenerator()
	indicators := g.Indicators("epoch-1", time.Now())

	require.Len(t, indicators, len(MaliciousIPs)+len(MaliciousDomains)+HashIndicatorCount)

	byType := map[string]int{}
	for _, ind := range indicators {
		byType[ind.IndicatorType]++
		assert.True(t, ind.IsActive)
		assert.Equal(t, SeverityFor(ind.ConfidenceScore), ind.Severity)
		assert.False(t, ind.LastSeen.Before(ind.FirstSeen))

		switch ind.IndicatorType {
		case models.IndicatorTypeIP:
			assert.Contains(t, MaliciousIPs, ind.Indicator)
			assert.GreaterOrEqual(t, ind.ConfidenceScore, 0.70)
			assert.Less(t, ind.ConfidenceScore, 0.95)
		case models.IndicatorTypeDomain:
			assert.Contains(t, MaliciousDomains, ind.Indicator)
			assert.GreaterOrEqual(t, ind.ConfidenceScore, 0.80)
			assert.Less(t, ind.ConfidenceScore, 0.98)
		case models.IndicatorTypeHash:
			assert.Len(t, ind.Indicator, 64)
			assert.GreaterOrEqual(t, ind.ConfidenceScore, 0.85)
			assert.Less(t, ind.ConfidenceScore, 0.99)
		}
	}
	assert.Equal(t, len(MaliciousIPs), byType[models.IndicatorTypeIP])
	assert.Equal(t, len(MaliciousDomains), byType[models.IndicatorTypeDomain])
	assert.Equal(t, HashIndicatorCount, byType[models.IndicatorTypeHash])
}

func TestSeverityThresholdEdges(t *testing.T) {
	assert.Equal(t, "critical", SeverityFor(0.81))
	assert.Equal(t, "high", SeverityFor(0.8))
	assert.Equal(t, "high", SeverityFor(0.61))
	assert.Equal(t, "medium", SeverityFor(0.6))
	assert.Equal(t, "medium", SeverityFor(0.41))
	assert.Equal(t, "low", SeverityFor(0.4))
	assert.Equal(t, "low", SeverityFor(0.0))
}

func TestIsPrivilegedTitle(t *testing.T) {
	assert.True(t, IsPrivilegedTitle("Engineering Manager"))
	assert.True(t, IsPrivilegedTitle("VP Sales"))
	assert.True(t, IsPrivilegedTitle("CISO"))
	assert.True(t, IsPrivilegedTitle("Tech Lead"))
	assert.False(t, IsPrivilegedTitle("Software Engineer"))
	assert.False(t, IsPrivilegedTitle("Accountant"))
}

func TestGeneratorReproducible(t *testing.T) {
	g1 := NewGenerator(randutil.NewRand(7))
	g2 := NewGenerator(randutil.NewRand(7))
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	u1, err := g1.Users("e", 50, now)
	require.NoError(t, err)
	u2, err := g2.Users("e", 50, now)
	require.NoError(t, err)
	assert.Equal(t, u1, u2)
}

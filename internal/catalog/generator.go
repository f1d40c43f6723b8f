package catalog

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"

	"cybercommand/internal/models"
	"cybercommand/internal/randutil"
)

var ErrInvalidCount = errors.New("catalog: entity count must be positive")

// Generator produces the three entity catalogs (users, assets, threat
// indicators) for one generation epoch. All randomness flows through the
// injected source so runs are reproducible under a fixed seed.
type Generator struct {
	rng *rand.Rand

	employmentType *randutil.WeightedChoice[string]
	clearance      *randutil.WeightedChoice[string]
	office         *randutil.WeightedChoice[Office]
	assetType      *randutil.WeightedChoice[string]
	criticality    *randutil.WeightedChoice[string]
}

func NewGenerator(rng *rand.Rand) *Generator {
	return &Generator{
		rng:            rng,
		employmentType: randutil.NewWeightedChoice(EmploymentTypes, EmploymentTypeWeights),
		clearance:      randutil.NewWeightedChoice(SecurityClearances, SecurityClearanceWeights),
		office:         randutil.NewWeightedChoice(Offices, OfficeWeights),
		assetType:      randutil.NewWeightedChoice(AssetTypes, AssetTypeWeights),
		criticality:    randutil.NewWeightedChoice(CriticalityLevels, CriticalityWeights),
	}
}

// Users samples count users from the cross join of departments and their role
// tables. Usernames are first-initial plus last name, deduplicated with a
// numeric suffix so user_id stays unique within the epoch.
func (g *Generator) Users(epochID string, count int, now time.Time) ([]models.User, error) {
	if count <= 0 {
		return nil, fmt.Errorf("%w: users=%d", ErrInvalidCount, count)
	}

	type roleCombo struct {
		department string
		title      string
	}
	var combos []roleCombo
	for _, dept := range Departments {
		for _, title := range RolesByDepartment[dept] {
			combos = append(combos, roleCombo{department: dept, title: title})
		}
	}
	randutil.Shuffle(g.rng, combos)

	users := make([]models.User, 0, count)
	seen := make(map[string]int, count)
	for i := 0; i < count; i++ {
		combo := combos[i%len(combos)]
		first := randutil.Choice(g.rng, firstNames)
		last := randutil.Choice(g.rng, lastNames)

		username := strings.ToLower(first[:1] + last)
		if n := seen[username]; n > 0 {
			seen[username] = n + 1
			username = fmt.Sprintf("%s%d", username, n+1)
		} else {
			seen[username] = 1
		}

		users = append(users, models.User{
			EpochID:           epochID,
			UserID:            username,
			Username:          username,
			Email:             username + "@company.com",
			FirstName:         first,
			LastName:          last,
			Department:        combo.department,
			Title:             combo.title,
			EmployeeType:      g.employmentType.Pick(g.rng),
			SecurityClearance: g.clearance.Pick(g.rng),
			Location:          g.office.Pick(g.rng).Key,
			Privileged:        IsPrivilegedTitle(combo.title),
			RiskScore:         randutil.Between(g.rng, 0, 0.3),
			CreatedAt:         now,
		})
	}
	return users, nil
}

// Assets samples count assets across the weighted asset-type mix. Each asset
// gets an address inside its office subnet and a random MAC.
func (g *Generator) Assets(epochID string, count int, now time.Time) ([]models.Asset, error) {
	if count <= 0 {
		return nil, fmt.Errorf("%w: assets=%d", ErrInvalidCount, count)
	}

	assets := make([]models.Asset, 0, count)
	perType := map[string]int{}
	for i := 0; i < count; i++ {
		assetType := g.assetType.Pick(g.rng)
		perType[assetType]++
		office := g.office.Pick(g.rng)

		assets = append(assets, models.Asset{
			EpochID:            epochID,
			AssetID:            uuid.NewString(),
			Hostname:           g.hostname(assetType, office, perType[assetType]),
			IPAddress:          g.internalIP(office),
			MACAddress:         g.macAddress(),
			AssetType:          assetType,
			OperatingSystem:    randutil.Choice(g.rng, OperatingSystemsByAssetType[assetType]),
			Location:           office.Key,
			Criticality:        g.criticality.Pick(g.rng),
			SecurityZone:       g.securityZone(assetType),
			VulnerabilityScore: g.rng.Float64(),
			CreatedAt:          now,
		})
	}
	return assets, nil
}

// Indicators produces the full threat-intel catalog: the curated IP and domain
// sets plus random sha256 hashes, each with a per-type confidence range.
func (g *Generator) Indicators(epochID string, now time.Time) []models.ThreatIndicator {
	indicators := make([]models.ThreatIndicator, 0, len(MaliciousIPs)+len(MaliciousDomains)+HashIndicatorCount)

	for _, ip := range MaliciousIPs {
		indicators = append(indicators, g.indicator(epochID, ip, models.IndicatorTypeIP,
			randutil.Choice(g.rng, IPThreatTypes), randutil.Between(g.rng, 0.70, 0.95), now))
	}
	for _, domain := range MaliciousDomains {
		indicators = append(indicators, g.indicator(epochID, domain, models.IndicatorTypeDomain,
			randutil.Choice(g.rng, DomainThreatTypes), randutil.Between(g.rng, 0.80, 0.98), now))
	}
	for i := 0; i < HashIndicatorCount; i++ {
		indicators = append(indicators, g.indicator(epochID, g.sha256Hex(), models.IndicatorTypeHash,
			randutil.Choice(g.rng, HashThreatTypes), randutil.Between(g.rng, 0.85, 0.99), now))
	}
	return indicators
}

func (g *Generator) indicator(epochID, value, indicatorType, threatType string, confidence float64, now time.Time) models.ThreatIndicator {
	firstSeen := now.AddDate(0, 0, -randutil.IntBetween(g.rng, 30, 365))
	lastSeen := now.AddDate(0, 0, -randutil.IntBetween(g.rng, 0, 29))

	return models.ThreatIndicator{
		EpochID:         epochID,
		IndicatorID:     uuid.NewString(),
		Indicator:       value,
		IndicatorType:   indicatorType,
		ThreatType:      threatType,
		ThreatFamily:    randutil.Choice(g.rng, MalwareFamilies),
		Source:          randutil.Choice(g.rng, ThreatIntelSources),
		ConfidenceScore: confidence,
		Severity:        SeverityFor(confidence),
		FirstSeen:       firstSeen,
		LastSeen:        lastSeen,
		IsActive:        true,
	}
}

// Severity thresholds, ordered highest first. First matching floor wins.
var severityThresholds = []struct {
	floor float64
	label string
}{
	{0.8, "critical"},
	{0.6, "high"},
	{0.4, "medium"},
}

// SeverityFor maps a confidence score to a severity label
func SeverityFor(confidence float64) string {
	for _, t := range severityThresholds {
		if confidence > t.floor {
			return t.label
		}
	}
	return "low"
}

// IsPrivilegedTitle reports whether a job title carries elevated access
func IsPrivilegedTitle(title string) bool {
	for _, marker := range privilegedTitleMarkers {
		if strings.Contains(title, marker) {
			return true
		}
	}
	return false
}

func (g *Generator) hostname(assetType string, office Office, seq int) string {
	switch assetType {
	case "workstation":
		site := map[string]string{
			"headquarters": "SF", "east_coast": "NY", "europe": "LON", "apac": "SG",
		}[office.Key]
		return fmt.Sprintf("WKS-%s-%04d", site, seq)
	case "server":
		return fmt.Sprintf("%s-server-%02d", randutil.Choice(g.rng, ServerServices), seq)
	default:
		return fmt.Sprintf("%s-%04d", assetType, seq)
	}
}

func (g *Generator) internalIP(office Office) string {
	return fmt.Sprintf("%s.%d.%d", office.SubnetPrefix,
		randutil.IntBetween(g.rng, 0, 255), randutil.IntBetween(g.rng, 1, 254))
}

func (g *Generator) macAddress() string {
	octets := make([]string, 6)
	for i := range octets {
		octets[i] = fmt.Sprintf("%02x", g.rng.Intn(256))
	}
	return strings.Join(octets, ":")
}

func (g *Generator) securityZone(assetType string) string {
	if assetType == "server" {
		return randutil.Choice(g.rng, []string{"datacenter", "dmz"})
	}
	return randutil.Choice(g.rng, []string{"corporate", "guest"})
}

func (g *Generator) sha256Hex() string {
	const hexDigits = "0123456789abcdef"
	b := make([]byte, 64)
	for i := range b {
		b[i] = hexDigits[g.rng.Intn(len(hexDigits))]
	}
	return string(b)
}

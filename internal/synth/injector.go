package synth

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"cybercommand/internal/bucketing"
	"cybercommand/internal/catalog"
	"cybercommand/internal/models"
	"cybercommand/internal/randutil"
)

var ErrNoActiveIndicators = errors.New("synth: no active ip indicators to target")

// Timing and volume profile of the injected exfiltration campaign
const (
	eveningBias       = 0.6
	eveningStartHour  = 18
	eveningEndHour    = 23
	minExfilBytes     = 10_000_000
	maxExfilBytes     = 500_000_000
	minExfilResponse  = 1_000
	maxExfilResponse  = 10_000
	minInjectedThreat = 0.7
	maxInjectedThreat = 0.9
)

// Injector appends an exfiltration scenario on top of the background streams.
// Injected rows always resolve to an active IP indicator, so the intel join in
// detection is satisfied by construction.
type Injector struct {
	rng               *rand.Rand
	bucketer          *bucketing.BucketingManager
	targetDepartments map[string]bool
	stagingSubnet     string
}

func NewInjector(rng *rand.Rand, bucketer *bucketing.BucketingManager, targetDepartments []string, stagingSubnet string) *Injector {
	targets := make(map[string]bool, len(targetDepartments))
	for _, d := range targetDepartments {
		targets[d] = true
	}
	return &Injector{
		rng:               rng,
		bucketer:          bucketer,
		targetDepartments: targets,
		stagingSubnet:     stagingSubnet,
	}
}

// InjectScenario produces eventCount malicious network rows over the trailing
// window. The append is purely additive; calling it again layers a second
// identical campaign.
func (inj *Injector) InjectScenario(epochID string, users []models.User, indicators []models.ThreatIndicator, daysBack, eventCount int, now time.Time) ([]models.NetworkEvent, error) {
	if daysBack <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidWindow, daysBack)
	}
	if eventCount <= 0 {
		return nil, fmt.Errorf("%w: count=%d", ErrInvalidVolume, eventCount)
	}

	targets := inj.targetUsers(users)
	if len(targets) == 0 {
		return nil, ErrEmptyCatalog
	}

	var activeIPs []models.ThreatIndicator
	for _, ind := range indicators {
		if ind.IndicatorType == models.IndicatorTypeIP && ind.IsActive {
			activeIPs = append(activeIPs, ind)
		}
	}
	if len(activeIPs) == 0 {
		return nil, ErrNoActiveIndicators
	}

	events := make([]models.NetworkEvent, 0, eventCount)
	for i := 0; i < eventCount; i++ {
		user := randutil.Choice(inj.rng, targets)
		indicator := randutil.Choice(inj.rng, activeIPs)
		origin := randutil.Choice(inj.rng, catalog.ThreatLocations)

		e := models.NetworkEvent{
			EpochID:             epochID,
			LogID:               uuid.NewString(),
			EventBucket:         inj.bucketer.GetEventBucket(user.UserID),
			EventTime:           inj.scenarioTime(now, daysBack),
			SourceIP:            subnetIP(inj.rng, inj.stagingSubnet),
			DestinationIP:       indicator.Indicator,
			DestinationDomain:   randutil.Choice(inj.rng, catalog.MaliciousDomains),
			SourcePort:          uint16(randutil.IntBetween(inj.rng, 1024, 65535)),
			DestinationPort:     443,
			Protocol:            "TCP",
			ApplicationProtocol: "HTTPS",
			DurationMs:          uint32(randutil.IntBetween(inj.rng, 100, 30000)),
			ConnectionState:     "ESTABLISHED",
			UserID:              user.UserID,
			SessionID:           uuid.NewString()[:8],
			ThreatScore:         randutil.Between(inj.rng, minInjectedThreat, maxInjectedThreat),
			GeoCountry:          origin.Country,
			GeoCity:             origin.City,
			GeoLatitude:         jitter(inj.rng, 55.0),
			GeoLongitude:        jitter(inj.rng, 37.0),
			GeoThreatLevel:      origin.ThreatLevel,
		}
		e.SetBytes(
			uint64(randutil.IntBetween(inj.rng, minExfilBytes, maxExfilBytes)),
			uint64(randutil.IntBetween(inj.rng, minExfilResponse, maxExfilResponse)),
		)

		events = append(events, e)
	}
	return events, nil
}

// targetUsers narrows to the high-value departments; every user qualifies when
// none of them is staffed.
func (inj *Injector) targetUsers(users []models.User) []models.User {
	var targets []models.User
	for _, u := range users {
		if inj.targetDepartments[u.Department] {
			targets = append(targets, u)
		}
	}
	if len(targets) == 0 {
		return users
	}
	return targets
}

// scenarioTime skews activity into evening hours: most rows land between
// 18:00 and 23:59 of a random day, the rest anywhere in the window. Every
// result stays inside [now-daysBack, now].
func (inj *Injector) scenarioTime(now time.Time, daysBack int) time.Time {
	if inj.rng.Float64() >= eveningBias {
		return uniformTime(inj.rng, now, daysBack)
	}

	day := now.AddDate(0, 0, -randutil.IntBetween(inj.rng, 1, daysBack))
	t := time.Date(day.Year(), day.Month(), day.Day(),
		randutil.IntBetween(inj.rng, eveningStartHour, eveningEndHour),
		randutil.IntBetween(inj.rng, 0, 59),
		randutil.IntBetween(inj.rng, 0, 59),
		0, day.Location())
	// evening slots on the oldest day can precede the window start when now
	// is itself a late-evening instant
	if t.Before(now.AddDate(0, 0, -daysBack)) || t.After(now) {
		return uniformTime(inj.rng, now, daysBack)
	}
	return t
}

package synth

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"cybercommand/internal/bucketing"
	"cybercommand/internal/catalog"
	"cybercommand/internal/models"
	"cybercommand/internal/randutil"
)

var (
	ErrInvalidWindow = errors.New("synth: days back must be positive")
	ErrInvalidVolume = errors.New("synth: per-day event volume must be positive")
	ErrEmptyCatalog  = errors.New("synth: user catalog is empty")
)

const internalDestinationRate = 0.3

// Synthesizer produces the background network and authentication streams for
// one epoch. Every field of every row is an independent draw from its
// dimension table; no cross-row state is kept.
type Synthesizer struct {
	rng      *rand.Rand
	bucketer *bucketing.BucketingManager

	service    *randutil.WeightedChoice[portService]
	authResult *randutil.WeightedChoice[string]
}

func NewSynthesizer(rng *rand.Rand, bucketer *bucketing.BucketingManager) *Synthesizer {
	return &Synthesizer{
		rng:        rng,
		bucketer:   bucketer,
		service:    randutil.NewWeightedChoice(portServices, portServiceWeights),
		authResult: randutil.NewWeightedChoice(authResults, authResultWeights),
	}
}

// GenerateEvents synthesizes daysBack * perDay rows for each stream. The two
// streams run concurrently on child random sources derived from the parent
// seed, so output stays reproducible.
func (s *Synthesizer) GenerateEvents(epochID string, users []models.User, daysBack, networkPerDay, authPerDay int, now time.Time) ([]models.NetworkEvent, []models.AuthEvent, error) {
	if daysBack <= 0 {
		return nil, nil, fmt.Errorf("%w: got %d", ErrInvalidWindow, daysBack)
	}
	if networkPerDay <= 0 || authPerDay <= 0 {
		return nil, nil, fmt.Errorf("%w: network=%d auth=%d", ErrInvalidVolume, networkPerDay, authPerDay)
	}
	if len(users) == 0 {
		return nil, nil, ErrEmptyCatalog
	}

	netRng := rand.New(rand.NewSource(s.rng.Int63()))
	authRng := rand.New(rand.NewSource(s.rng.Int63()))

	var (
		network []models.NetworkEvent
		auth    []models.AuthEvent
	)

	var g errgroup.Group
	g.Go(func() error {
		network = s.networkStream(netRng, epochID, users, daysBack*networkPerDay, daysBack, now)
		return nil
	})
	g.Go(func() error {
		auth = s.authStream(authRng, epochID, users, daysBack*authPerDay, daysBack, now)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return network, auth, nil
}

func (s *Synthesizer) networkStream(rng *rand.Rand, epochID string, users []models.User, count, daysBack int, now time.Time) []models.NetworkEvent {
	events := make([]models.NetworkEvent, 0, count)
	for i := 0; i < count; i++ {
		user := randutil.Choice(rng, users)
		office := catalog.OfficeByKey(user.Location)
		svc := s.service.Pick(rng)

		e := models.NetworkEvent{
			EpochID:             epochID,
			LogID:               uuid.NewString(),
			EventBucket:         s.bucketer.GetEventBucket(user.UserID),
			EventTime:           uniformTime(rng, now, daysBack),
			SourceIP:            subnetIP(rng, office.SubnetPrefix),
			SourcePort:          uint16(randutil.IntBetween(rng, 1024, 65535)),
			DestinationPort:     svc.Port,
			Protocol:            svc.Protocol,
			ApplicationProtocol: svc.App,
			DurationMs:          uint32(randutil.IntBetween(rng, 100, 30000)),
			ConnectionState:     randutil.Choice(rng, connectionStates),
			UserID:              user.UserID,
			SessionID:           uuid.NewString()[:8],
			ThreatScore:         randutil.Between(rng, 0, 0.3),
		}
		e.SetBytes(
			uint64(randutil.IntBetween(rng, 100, 50000)),
			uint64(randutil.IntBetween(rng, 100, 500000)),
		)

		if rng.Float64() < internalDestinationRate {
			destOffice := randutil.Choice(rng, catalog.Offices)
			e.DestinationIP = subnetIP(rng, destOffice.SubnetPrefix)
			e.DestinationDomain = "company.local"
			applyGeo(&e, rng, officeGeos[destOffice.Key])
		} else {
			e.DestinationIP = publicIP(rng)
			e.DestinationDomain = randutil.Choice(rng, legitimateDomains)
			applyGeo(&e, rng, randutil.Choice(rng, externalGeos))
		}

		events = append(events, e)
	}
	return events
}

func (s *Synthesizer) authStream(rng *rand.Rand, epochID string, users []models.User, count, daysBack int, now time.Time) []models.AuthEvent {
	events := make([]models.AuthEvent, 0, count)
	for i := 0; i < count; i++ {
		user := randutil.Choice(rng, users)
		office := catalog.OfficeByKey(user.Location)
		geo := officeGeos[office.Key]
		result := s.authResult.Pick(rng)

		e := models.AuthEvent{
			EpochID:          epochID,
			LogID:            uuid.NewString(),
			EventBucket:      s.bucketer.GetEventBucket(user.UserID),
			EventTime:        uniformTime(rng, now, daysBack),
			UserID:           user.UserID,
			Department:       user.Department,
			Title:            user.Title,
			AuthMethod:       randutil.Choice(rng, authMethods),
			AuthResult:       result,
			SourceIP:         subnetIP(rng, office.SubnetPrefix),
			GeoCountry:       geo.Country,
			GeoCity:          geo.City,
			GeoLatitude:      jitter(rng, geo.Latitude),
			GeoLongitude:     jitter(rng, geo.Longitude),
			RiskScore:        randutil.Between(rng, 0, 0.4),
			MFAMethod:        randutil.Choice(rng, mfaMethods),
			DeviceTrustLevel: randutil.Choice(rng, deviceTrustLevels),
		}
		if reasons, ok := failureReasons[result]; ok {
			e.FailureReason = randutil.Choice(rng, reasons)
		}

		events = append(events, e)
	}
	return events
}

// uniformTime draws an instant uniformly over the trailing daysBack window
func uniformTime(rng *rand.Rand, now time.Time, daysBack int) time.Time {
	windowSeconds := int64(daysBack) * 24 * 3600
	return now.Add(-time.Duration(rng.Int63n(windowSeconds)) * time.Second)
}

func subnetIP(rng *rand.Rand, prefix string) string {
	return fmt.Sprintf("%s.%d.%d", prefix,
		randutil.IntBetween(rng, 0, 255), randutil.IntBetween(rng, 1, 254))
}

func publicIP(rng *rand.Rand) string {
	return fmt.Sprintf("%d.%d.%d.%d",
		randutil.Choice(rng, publicFirstOctets),
		randutil.IntBetween(rng, 0, 255),
		randutil.IntBetween(rng, 0, 255),
		randutil.IntBetween(rng, 1, 254))
}

func applyGeo(e *models.NetworkEvent, rng *rand.Rand, geo externalGeo) {
	e.GeoCountry = geo.Country
	e.GeoCity = geo.City
	e.GeoLatitude = jitter(rng, geo.Latitude)
	e.GeoLongitude = jitter(rng, geo.Longitude)
}

// jitter spreads coordinates around a city center so points do not stack
func jitter(rng *rand.Rand, v float64) float64 {
	return v + randutil.Between(rng, -0.5, 0.5)
}

package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"

	"cybercommand/internal/client"
	"cybercommand/internal/config"
	"cybercommand/internal/detect"
	"cybercommand/internal/epoch"
	"cybercommand/internal/search"
	"cybercommand/internal/util"
)

// Detection names used for finding documents and Kafka records
const (
	DetectionExfiltration     = "data_exfiltration"
	DetectionImpossibleTravel = "impossible_travel"
	DetectionBehavior         = "behavioral_anomaly"
	DetectionLateralMovement  = "lateral_movement"
	DetectionComposite        = "composite_anomaly"
	DetectionFailedLogins     = "failed_login_burst"
	DetectionThreatIntel      = "threat_intel_match"
)

// HuntService runs batch detections against the published epoch. Every query
// resolves the epoch pointer first, so results always come from one coherent
// generation run. Findings are mirrored into Elasticsearch and Kafka on a
// best-effort basis; the caller gets the findings either way.
type HuntService struct {
	engine   *detect.Engine
	epochs   *epoch.Manager
	indexer  *search.Indexer
	producer *client.KafkaProducer
	cfg      *config.Config
	logger   *zap.Logger
}

func NewHuntService(
	engine *detect.Engine,
	epochs *epoch.Manager,
	indexer *search.Indexer,
	producer *client.KafkaProducer,
	cfg *config.Config,
	logger *zap.Logger,
) *HuntService {
	return &HuntService{
		engine:   engine,
		epochs:   epochs,
		indexer:  indexer,
		producer: producer,
		cfg:      cfg,
		logger:   logger,
	}
}

func (s *HuntService) Exfiltration(ctx context.Context, daysBack int) ([]detect.ExfiltrationFinding, error) {
	epochID, ok, err := s.currentEpoch(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	findings, err := s.engine.FindExfiltration(ctx, epochID, daysBack)
	if err != nil {
		return nil, err
	}
	s.record(epochID, DetectionExfiltration, asDocuments(findings))
	return findings, nil
}

func (s *HuntService) ImpossibleTravel(ctx context.Context, hoursThreshold int) ([]detect.TravelFinding, error) {
	epochID, ok, err := s.currentEpoch(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	findings, err := s.engine.DetectImpossibleTravel(ctx, epochID, hoursThreshold)
	if err != nil {
		return nil, err
	}
	s.record(epochID, DetectionImpossibleTravel, asDocuments(findings))
	return findings, nil
}

func (s *HuntService) BehavioralAnomalies(ctx context.Context) ([]detect.BehaviorFinding, error) {
	epochID, ok, err := s.currentEpoch(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	findings, err := s.engine.BehavioralAnomaly(ctx, epochID)
	if err != nil {
		return nil, err
	}
	s.record(epochID, DetectionBehavior, asDocuments(findings))
	return findings, nil
}

func (s *HuntService) LateralMovement(ctx context.Context) ([]detect.LateralFinding, error) {
	epochID, ok, err := s.currentEpoch(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	findings, err := s.engine.LateralMovement(ctx, epochID)
	if err != nil {
		return nil, err
	}
	s.record(epochID, DetectionLateralMovement, asDocuments(findings))
	return findings, nil
}

func (s *HuntService) CompositeScore(ctx context.Context, userID string) (detect.CompositeFinding, error) {
	if userID == "" {
		return detect.CompositeFinding{}, detect.ErrEmptyUserID
	}
	epochID, ok, err := s.currentEpoch(ctx)
	if err != nil {
		return detect.CompositeFinding{}, err
	}
	if !ok {
		return detect.CompositeFinding{UserID: userID}, nil
	}
	finding, err := s.engine.CompositeAnomalyScore(ctx, epochID, userID)
	if err != nil {
		return detect.CompositeFinding{}, err
	}
	if finding.Flagged {
		s.record(epochID, DetectionComposite, []interface{}{finding})
	}
	return finding, nil
}

func (s *HuntService) FailedLoginBursts(ctx context.Context, daysBack int) ([]detect.FailedLoginBurst, error) {
	epochID, ok, err := s.currentEpoch(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	findings, err := s.engine.FailedLoginBursts(ctx, epochID, daysBack)
	if err != nil {
		return nil, err
	}
	s.record(epochID, DetectionFailedLogins, asDocuments(findings))
	return findings, nil
}

func (s *HuntService) ThreatIntelMatches(ctx context.Context, daysBack int) ([]detect.IntelMatch, error) {
	epochID, ok, err := s.currentEpoch(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	findings, err := s.engine.ThreatIntelMatches(ctx, epochID, daysBack)
	if err != nil {
		return nil, err
	}
	s.record(epochID, DetectionThreatIntel, asDocuments(findings))
	return findings, nil
}

func (s *HuntService) ProtocolBreakdown(ctx context.Context, daysBack int) ([]detect.ProtocolStat, error) {
	epochID, ok, err := s.currentEpoch(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return s.engine.ProtocolBreakdown(ctx, epochID, daysBack)
}

func (s *HuntService) TopDestinationDomains(ctx context.Context, daysBack, limit int) ([]detect.DomainStat, error) {
	epochID, ok, err := s.currentEpoch(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return s.engine.TopDestinationDomains(ctx, epochID, daysBack, limit)
}

func (s *HuntService) UserActivityProfiles(ctx context.Context, daysBack int) ([]detect.UserProfile, error) {
	epochID, ok, err := s.currentEpoch(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return s.engine.UserActivityProfiles(ctx, epochID, daysBack)
}

// currentEpoch resolves the published epoch pointer. Before the first publish
// there is nothing to hunt over; callers report empty results, not an error.
func (s *HuntService) currentEpoch(ctx context.Context) (string, bool, error) {
	epochID, err := s.epochs.Current(ctx)
	if errors.Is(err, epoch.ErrNoPublishedEpoch) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return epochID, true, nil
}

// record mirrors findings to Elasticsearch and announces the run on Kafka.
// Runs in the background so a slow sink never delays the API response.
func (s *HuntService) record(epochID, detection string, findings []interface{}) {
	if len(findings) == 0 {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if s.indexer != nil {
			if err := s.indexer.IndexFindings(ctx, epochID, detection, findings); err != nil {
				util.Warn("failed to index hunt findings",
					zap.String("detection", detection), zap.Error(err))
			}
		}
		if s.producer != nil {
			s.announce(ctx, epochID, detection, len(findings))
		}
	}()
}

func (s *HuntService) announce(ctx context.Context, epochID, detection string, count int) {
	payload, err := json.Marshal(map[string]interface{}{
		"epoch_id":      epochID,
		"detection":     detection,
		"finding_count": count,
		"detected_at":   time.Now().UTC(),
	})
	if err != nil {
		util.Warn("failed to encode finding record", zap.Error(err))
		return
	}

	if err := s.producer.ProduceMessage(ctx, s.cfg.Kafka.FindingTopic,
		[]byte(detection), payload, map[string]string{"epoch_id": epochID}); err != nil {
		util.Warn("failed to publish finding record",
			zap.String("detection", detection), zap.Error(err))
	}
}

func asDocuments[T any](findings []T) []interface{} {
	docs := make([]interface{}, len(findings))
	for i := range findings {
		docs[i] = findings[i]
	}
	return docs
}

package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"cybercommand/internal/bucketing"
	"cybercommand/internal/catalog"
	"cybercommand/internal/client"
	"cybercommand/internal/config"
	"cybercommand/internal/epoch"
	"cybercommand/internal/models"
	"cybercommand/internal/randutil"
	"cybercommand/internal/store"
	"cybercommand/internal/synth"
	"cybercommand/internal/util"
)

var ErrNoCatalog = errors.New("service: current epoch has no user catalog")

// CatalogSummary reports what one catalog generation wrote
type CatalogSummary struct {
	EpochID           string `json:"epoch_id"`
	UsersWritten      int    `json:"users_written"`
	AssetsWritten     int    `json:"assets_written"`
	IndicatorsWritten int    `json:"indicators_written"`
}

// EventSummary reports what one event generation wrote
type EventSummary struct {
	EpochID        string `json:"epoch_id"`
	NetworkWritten int    `json:"network_written"`
	AuthWritten    int    `json:"auth_written"`
}

// GenerateAllParams sizes a full regeneration run. Zero values fall back to
// the configured defaults.
type GenerateAllParams struct {
	UserCount     int   `json:"user_count"`
	AssetCount    int   `json:"asset_count"`
	DaysBack      int   `json:"days_back"`
	NetworkPerDay int   `json:"network_per_day"`
	AuthPerDay    int   `json:"auth_per_day"`
	Seed          int64 `json:"seed"`
}

// GeneratorService drives the synthetic corpus lifecycle. GenerateAll stages
// a complete epoch and publishes it atomically; GenerateEvents and
// InjectScenario append to the already published epoch.
type GeneratorService struct {
	store    store.Store
	epochs   *epoch.Manager
	producer *client.KafkaProducer
	bucketer *bucketing.BucketingManager
	cfg      *config.Config
	logger   *zap.Logger
}

func NewGeneratorService(
	st store.Store,
	epochs *epoch.Manager,
	producer *client.KafkaProducer,
	bucketer *bucketing.BucketingManager,
	cfg *config.Config,
	logger *zap.Logger,
) *GeneratorService {
	return &GeneratorService{
		store:    st,
		epochs:   epochs,
		producer: producer,
		bucketer: bucketer,
		cfg:      cfg,
		logger:   logger,
	}
}

// GenerateAll rebuilds the entire corpus inside one staged epoch: catalogs,
// background streams, injected scenario, then a single atomic publish. A
// failure at any stage aborts the build and leaves the previous epoch live.
func (s *GeneratorService) GenerateAll(ctx context.Context, params GenerateAllParams) (models.RunSummary, error) {
	params = s.withDefaults(params)
	startedAt := time.Now().UTC()

	build, err := s.epochs.Begin(ctx)
	if err != nil {
		return models.RunSummary{}, err
	}

	summary, err := s.buildEpoch(ctx, build, params, startedAt)
	if err != nil {
		if abortErr := s.epochs.Abort(ctx, build); abortErr != nil {
			util.Warn("failed to abort generation build",
				zap.String("epoch_id", build.ID), zap.Error(abortErr))
		}
		s.recordRun(ctx, summary, models.RunStatusFailed)
		return models.RunSummary{}, err
	}

	if err := s.epochs.Publish(ctx, build); err != nil {
		s.recordRun(ctx, summary, models.RunStatusFailed)
		return models.RunSummary{}, fmt.Errorf("failed to publish epoch: %w", err)
	}

	s.recordRun(ctx, summary, models.RunStatusPublished)
	s.notifyEpochPublished(summary)
	s.cleanupSupersededEpochs(build.ID)

	return summary, nil
}

func (s *GeneratorService) buildEpoch(ctx context.Context, build *epoch.Build, params GenerateAllParams, startedAt time.Time) (models.RunSummary, error) {
	summary := models.RunSummary{
		RunID:     uuid.NewString(),
		EpochID:   build.ID,
		Seed:      params.Seed,
		StartedAt: startedAt,
	}
	now := time.Now().UTC()
	rng := randutil.NewRand(params.Seed)

	gen := catalog.NewGenerator(rng)
	users, err := gen.Users(build.ID, params.UserCount, now)
	if err != nil {
		return summary, err
	}
	assets, err := gen.Assets(build.ID, params.AssetCount, now)
	if err != nil {
		return summary, err
	}
	indicators := gen.Indicators(build.ID, now)

	if err := s.store.WriteUsers(ctx, users); err != nil {
		return summary, fmt.Errorf("failed to write users: %w", err)
	}
	if err := s.store.WriteAssets(ctx, assets); err != nil {
		return summary, fmt.Errorf("failed to write assets: %w", err)
	}
	if err := s.store.WriteIndicators(ctx, indicators); err != nil {
		return summary, fmt.Errorf("failed to write indicators: %w", err)
	}
	summary.UsersWritten = uint64(len(users))
	summary.AssetsWritten = uint64(len(assets))
	summary.IndicatorsWritten = uint64(len(indicators))

	synthesizer := synth.NewSynthesizer(rng, s.bucketer)
	network, auth, err := synthesizer.GenerateEvents(build.ID, users,
		params.DaysBack, params.NetworkPerDay, params.AuthPerDay, now)
	if err != nil {
		return summary, err
	}
	if err := s.store.WriteNetworkEvents(ctx, network); err != nil {
		return summary, fmt.Errorf("failed to write network events: %w", err)
	}
	if err := s.store.WriteAuthEvents(ctx, auth); err != nil {
		return summary, fmt.Errorf("failed to write auth events: %w", err)
	}
	summary.NetworkWritten = uint64(len(network))
	summary.AuthWritten = uint64(len(auth))

	injector := synth.NewInjector(rng, s.bucketer,
		s.cfg.Generator.TargetDepartments, s.cfg.Generator.StagingSubnet)
	scenarioCount := int(float64(len(network)) * s.cfg.Generator.ScenarioFraction)
	if scenarioCount > 0 {
		injected, err := injector.InjectScenario(build.ID, users, indicators,
			params.DaysBack, scenarioCount, now)
		if err != nil {
			return summary, err
		}
		if err := s.store.WriteNetworkEvents(ctx, injected); err != nil {
			return summary, fmt.Errorf("failed to write injected events: %w", err)
		}
		summary.InjectedWritten = uint64(len(injected))
	}

	summary.FinishedAt = time.Now().UTC()
	return summary, nil
}

// GenerateCatalog stages and publishes an epoch holding fresh catalogs only.
// Event history from the previous epoch is superseded along with it.
func (s *GeneratorService) GenerateCatalog(ctx context.Context, userCount, assetCount int, seed int64) (CatalogSummary, error) {
	if userCount == 0 {
		userCount = s.cfg.Generator.DefaultUserCount
	}
	if assetCount == 0 {
		assetCount = s.cfg.Generator.DefaultAssetCount
	}

	build, err := s.epochs.Begin(ctx)
	if err != nil {
		return CatalogSummary{}, err
	}

	summary, err := s.writeCatalogs(ctx, build.ID, userCount, assetCount, seed)
	if err != nil {
		if abortErr := s.epochs.Abort(ctx, build); abortErr != nil {
			util.Warn("failed to abort catalog build",
				zap.String("epoch_id", build.ID), zap.Error(abortErr))
		}
		return CatalogSummary{}, err
	}

	if err := s.epochs.Publish(ctx, build); err != nil {
		return CatalogSummary{}, fmt.Errorf("failed to publish epoch: %w", err)
	}
	s.cleanupSupersededEpochs(build.ID)
	return summary, nil
}

func (s *GeneratorService) writeCatalogs(ctx context.Context, epochID string, userCount, assetCount int, seed int64) (CatalogSummary, error) {
	now := time.Now().UTC()
	gen := catalog.NewGenerator(randutil.NewRand(seed))

	users, err := gen.Users(epochID, userCount, now)
	if err != nil {
		return CatalogSummary{}, err
	}
	assets, err := gen.Assets(epochID, assetCount, now)
	if err != nil {
		return CatalogSummary{}, err
	}
	indicators := gen.Indicators(epochID, now)

	if err := s.store.WriteUsers(ctx, users); err != nil {
		return CatalogSummary{}, fmt.Errorf("failed to write users: %w", err)
	}
	if err := s.store.WriteAssets(ctx, assets); err != nil {
		return CatalogSummary{}, fmt.Errorf("failed to write assets: %w", err)
	}
	if err := s.store.WriteIndicators(ctx, indicators); err != nil {
		return CatalogSummary{}, fmt.Errorf("failed to write indicators: %w", err)
	}

	return CatalogSummary{
		EpochID:           epochID,
		UsersWritten:      len(users),
		AssetsWritten:     len(assets),
		IndicatorsWritten: len(indicators),
	}, nil
}

// GenerateEvents appends background streams to the currently published epoch
// using its user catalog.
func (s *GeneratorService) GenerateEvents(ctx context.Context, daysBack, networkPerDay, authPerDay int, seed int64) (EventSummary, error) {
	epochID, err := s.epochs.Current(ctx)
	if err != nil {
		return EventSummary{}, err
	}

	users, err := s.store.Users(ctx, epochID)
	if err != nil {
		return EventSummary{}, fmt.Errorf("failed to load user catalog: %w", err)
	}
	if len(users) == 0 {
		return EventSummary{}, ErrNoCatalog
	}

	synthesizer := synth.NewSynthesizer(randutil.NewRand(seed), s.bucketer)
	network, auth, err := synthesizer.GenerateEvents(epochID, users,
		daysBack, networkPerDay, authPerDay, time.Now().UTC())
	if err != nil {
		return EventSummary{}, err
	}

	if err := s.store.WriteNetworkEvents(ctx, network); err != nil {
		return EventSummary{}, fmt.Errorf("failed to write network events: %w", err)
	}
	if err := s.store.WriteAuthEvents(ctx, auth); err != nil {
		return EventSummary{}, fmt.Errorf("failed to write auth events: %w", err)
	}

	return EventSummary{
		EpochID:        epochID,
		NetworkWritten: len(network),
		AuthWritten:    len(auth),
	}, nil
}

// InjectScenario layers one more exfiltration campaign onto the published
// epoch. Calls are additive and repeatable.
func (s *GeneratorService) InjectScenario(ctx context.Context, daysBack, eventCount int, seed int64) (int, error) {
	epochID, err := s.epochs.Current(ctx)
	if err != nil {
		return 0, err
	}

	users, err := s.store.Users(ctx, epochID)
	if err != nil {
		return 0, fmt.Errorf("failed to load user catalog: %w", err)
	}
	if len(users) == 0 {
		return 0, ErrNoCatalog
	}
	indicators, err := s.store.ActiveIndicators(ctx, epochID)
	if err != nil {
		return 0, fmt.Errorf("failed to load threat indicators: %w", err)
	}

	injector := synth.NewInjector(randutil.NewRand(seed), s.bucketer,
		s.cfg.Generator.TargetDepartments, s.cfg.Generator.StagingSubnet)
	injected, err := injector.InjectScenario(epochID, users, indicators,
		daysBack, eventCount, time.Now().UTC())
	if err != nil {
		return 0, err
	}

	if err := s.store.WriteNetworkEvents(ctx, injected); err != nil {
		return 0, fmt.Errorf("failed to write injected events: %w", err)
	}
	return len(injected), nil
}

func (s *GeneratorService) withDefaults(params GenerateAllParams) GenerateAllParams {
	gen := s.cfg.Generator
	if params.UserCount == 0 {
		params.UserCount = gen.DefaultUserCount
	}
	if params.AssetCount == 0 {
		params.AssetCount = gen.DefaultAssetCount
	}
	if params.DaysBack == 0 {
		params.DaysBack = gen.DaysBack
	}
	if params.NetworkPerDay == 0 {
		params.NetworkPerDay = gen.NetworkPerDay
	}
	if params.AuthPerDay == 0 {
		params.AuthPerDay = gen.AuthPerDay
	}
	if params.Seed == 0 {
		params.Seed = gen.Seed
	}
	return params
}

// recordRun persists the run summary. Failures are logged, not propagated:
// losing a summary row never fails a run.
func (s *GeneratorService) recordRun(ctx context.Context, summary models.RunSummary, status string) {
	summary.Status = status
	if summary.FinishedAt.IsZero() {
		summary.FinishedAt = time.Now().UTC()
	}
	if err := s.store.WriteRunSummary(ctx, summary); err != nil {
		util.Warn("failed to persist run summary",
			zap.String("run_id", summary.RunID), zap.Error(err))
	}
}

// notifyEpochPublished emits the epoch-published record for downstream
// consumers. Best effort.
func (s *GeneratorService) notifyEpochPublished(summary models.RunSummary) {
	if s.producer == nil {
		return
	}

	payload, err := json.Marshal(summary)
	if err != nil {
		util.Warn("failed to encode epoch notification", zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.producer.ProduceMessage(ctx, s.cfg.Kafka.EpochTopic,
		[]byte(summary.EpochID), payload, map[string]string{"event": "epoch_published"}); err != nil {
		util.Warn("failed to publish epoch notification",
			zap.String("epoch_id", summary.EpochID), zap.Error(err))
	}
}

// cleanupSupersededEpochs deletes rows of older epochs in the background
func (s *GeneratorService) cleanupSupersededEpochs(keepEpochID string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		if err := s.store.DeleteEpochsExcept(ctx, keepEpochID); err != nil {
			util.Warn("failed to clean superseded epochs",
				zap.String("keep_epoch", keepEpochID), zap.Error(err))
		}
	}()
}

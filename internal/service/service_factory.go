package service

import (
	"go.uber.org/zap"

	"cybercommand/internal/bucketing"
	"cybercommand/internal/client"
	"cybercommand/internal/config"
	"cybercommand/internal/detect"
	"cybercommand/internal/epoch"
	"cybercommand/internal/search"
	"cybercommand/internal/store"
)

// ServiceFactory creates and manages service instances
type ServiceFactory struct {
	store        store.Store
	epochs       *epoch.Manager
	producer     *client.KafkaProducer
	indexer      *search.Indexer
	bucketingMgr *bucketing.BucketingManager
	cfg          *config.Config
	logger       *zap.Logger

	generatorService *GeneratorService
	huntService      *HuntService
}

// NewServiceFactory creates a new service factory. The Kafka producer and
// finding indexer may be nil; the services degrade to store-only operation.
func NewServiceFactory(
	st store.Store,
	epochs *epoch.Manager,
	producer *client.KafkaProducer,
	indexer *search.Indexer,
	bucketingMgr *bucketing.BucketingManager,
	cfg *config.Config,
	logger *zap.Logger,
) *ServiceFactory {
	return &ServiceFactory{
		store:        st,
		epochs:       epochs,
		producer:     producer,
		indexer:      indexer,
		bucketingMgr: bucketingMgr,
		cfg:          cfg,
		logger:       logger,
	}
}

// GeneratorService returns the generator service instance (singleton)
func (f *ServiceFactory) GeneratorService() *GeneratorService {
	if f.generatorService == nil {
		f.generatorService = NewGeneratorService(
			f.store,
			f.epochs,
			f.producer,
			f.bucketingMgr,
			f.cfg,
			f.logger,
		)
	}
	return f.generatorService
}

// HuntService returns the hunt service instance (singleton)
func (f *ServiceFactory) HuntService() *HuntService {
	if f.huntService == nil {
		engine := detect.NewEngine(f.store, f.cfg.Detection)
		f.huntService = NewHuntService(
			engine,
			f.epochs,
			f.indexer,
			f.producer,
			f.cfg,
			f.logger,
		)
	}
	return f.huntService
}

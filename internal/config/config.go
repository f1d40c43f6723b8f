package config

import (
	"fmt"
	"sync"
	"time"

	"github.com/joho/godotenv"

	"cybercommand/internal/util"
)

// Config holds all application configuration, loaded from the environment
type Config struct {
	Environment string

	Server        ServerConfig
	Clickhouse    ClickhouseConfig
	Redis         RedisConfig
	Kafka         KafkaConfig
	Elasticsearch ElasticsearchConfig
	Logging       LoggingConfig
	Bucketing     BucketingConfig
	Generator     GeneratorConfig
	Detection     DetectionConfig
}

type ServerConfig struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type ClickhouseConfig struct {
	URL      string
	Username string
	Password string
	Database string
}

type RedisConfig struct {
	URL      string
	Password string
	DB       int
	PoolSize int
}

type KafkaConfig struct {
	Brokers      []string
	EpochTopic   string
	FindingTopic string
}

type ElasticsearchConfig struct {
	URL           string
	Username      string
	Password      string
	FindingsIndex string
}

type LoggingConfig struct {
	Level  string
	Format string
}

type BucketingConfig struct {
	EventBuckets int
}

// GeneratorConfig carries corpus-shape defaults for catalog and event generation
type GeneratorConfig struct {
	Seed              int64
	DefaultUserCount  int
	DefaultAssetCount int
	DaysBack          int
	NetworkPerDay     int
	AuthPerDay        int
	// ScenarioFraction sizes injected scenario traffic relative to background volume
	ScenarioFraction float64
	// TargetDepartments restricts scenario victims to high-value departments
	TargetDepartments []string
	StagingSubnet     string
}

// DetectionConfig exposes the demo-tuned hunting thresholds as configuration.
// These values mirror the original demo defaults and carry no validated
// security meaning.
type DetectionConfig struct {
	MinTransferBytes        uint64
	ExfilTotalBytes         uint64
	ExfilUniqueDestinations int

	TravelHoursThreshold    int
	InternationalFloorHours float64
	CityFloorHours          float64

	BaselineWindowDays  int
	RecentWindowDays    int
	BusinessHourStart   int
	BusinessHourEnd     int
	AfterHoursMinEvents int

	LateralWindowDays   int
	LateralZThreshold   float64
	CompositeZThreshold float64

	FailedLoginBurstMin int
}

var (
	globalConfig *Config
	loadOnce     sync.Once
)

// LoadConfig loads configuration from .env (if present) and the environment
func LoadConfig() *Config {
	loadOnce.Do(func() {
		// .env is optional; real deployments pass plain environment variables
		_ = godotenv.Load()

		globalConfig = &Config{
			Environment: util.GetEnv("APP_ENV", "development"),
			Server: ServerConfig{
				Port:         util.GetEnvInt("SERVER_PORT", 8080),
				ReadTimeout:  time.Duration(util.GetEnvInt("SERVER_READ_TIMEOUT_SECONDS", 30)) * time.Second,
				WriteTimeout: time.Duration(util.GetEnvInt("SERVER_WRITE_TIMEOUT_SECONDS", 120)) * time.Second,
				IdleTimeout:  time.Duration(util.GetEnvInt("SERVER_IDLE_TIMEOUT_SECONDS", 60)) * time.Second,
			},
			Clickhouse: ClickhouseConfig{
				URL:      util.GetEnv("CLICKHOUSE_URL", "http://localhost:8123"),
				Username: util.GetEnv("CLICKHOUSE_USERNAME", "default"),
				Password: util.GetEnv("CLICKHOUSE_PASSWORD", ""),
				Database: util.GetEnv("CLICKHOUSE_DATABASE", "cyber_command"),
			},
			Redis: RedisConfig{
				URL:      util.GetEnv("REDIS_URL", "redis://localhost:6379"),
				Password: util.GetEnv("REDIS_PASSWORD", ""),
				DB:       util.GetEnvInt("REDIS_DB", 0),
				PoolSize: util.GetEnvInt("REDIS_POOL_SIZE", 20),
			},
			Kafka: KafkaConfig{
				Brokers:      util.GetEnvSlice("KAFKA_BROKERS", []string{"localhost:9092"}),
				EpochTopic:   util.GetEnv("KAFKA_EPOCH_TOPIC", "cybercommand.epochs"),
				FindingTopic: util.GetEnv("KAFKA_FINDING_TOPIC", "cybercommand.findings"),
			},
			Elasticsearch: ElasticsearchConfig{
				URL:           util.GetEnv("ELASTICSEARCH_URL", "http://localhost:9200"),
				Username:      util.GetEnv("ELASTICSEARCH_USERNAME", ""),
				Password:      util.GetEnv("ELASTICSEARCH_PASSWORD", ""),
				FindingsIndex: util.GetEnv("ELASTICSEARCH_FINDINGS_INDEX", "cybercommand-findings"),
			},
			Logging: LoggingConfig{
				Level:  util.GetEnv("LOG_LEVEL", "info"),
				Format: util.GetEnv("LOG_FORMAT", "console"),
			},
			Bucketing: BucketingConfig{
				EventBuckets: util.GetEnvInt("EVENT_BUCKETS", 64),
			},
			Generator: GeneratorConfig{
				Seed:              int64(util.GetEnvInt("GENERATOR_SEED", 0)),
				DefaultUserCount:  util.GetEnvInt("GENERATOR_USER_COUNT", 500),
				DefaultAssetCount: util.GetEnvInt("GENERATOR_ASSET_COUNT", 300),
				DaysBack:          util.GetEnvInt("GENERATOR_DAYS_BACK", 30),
				NetworkPerDay:     util.GetEnvInt("GENERATOR_NETWORK_PER_DAY", 10000),
				AuthPerDay:        util.GetEnvInt("GENERATOR_AUTH_PER_DAY", 5000),
				ScenarioFraction:  util.GetEnvFloat("GENERATOR_SCENARIO_FRACTION", 0.1),
				TargetDepartments: util.GetEnvSlice("GENERATOR_TARGET_DEPARTMENTS", []string{"Engineering", "Finance"}),
				StagingSubnet:     util.GetEnv("GENERATOR_STAGING_SUBNET", "10.66.6"),
			},
			Detection: DetectionConfig{
				MinTransferBytes:        uint64(util.GetEnvInt("DETECT_MIN_TRANSFER_BYTES", 1_000_000)),
				ExfilTotalBytes:         uint64(util.GetEnvInt("DETECT_EXFIL_TOTAL_BYTES", 100_000_000)),
				ExfilUniqueDestinations: util.GetEnvInt("DETECT_EXFIL_UNIQUE_DESTINATIONS", 50),
				TravelHoursThreshold:    util.GetEnvInt("DETECT_TRAVEL_HOURS_THRESHOLD", 8),
				InternationalFloorHours: util.GetEnvFloat("DETECT_INTERNATIONAL_FLOOR_HOURS", 8),
				CityFloorHours:          util.GetEnvFloat("DETECT_CITY_FLOOR_HOURS", 2),
				BaselineWindowDays:      util.GetEnvInt("DETECT_BASELINE_WINDOW_DAYS", 30),
				RecentWindowDays:        util.GetEnvInt("DETECT_RECENT_WINDOW_DAYS", 7),
				BusinessHourStart:       util.GetEnvInt("DETECT_BUSINESS_HOUR_START", 9),
				BusinessHourEnd:         util.GetEnvInt("DETECT_BUSINESS_HOUR_END", 17),
				AfterHoursMinEvents:     util.GetEnvInt("DETECT_AFTER_HOURS_MIN_EVENTS", 5),
				LateralWindowDays:       util.GetEnvInt("DETECT_LATERAL_WINDOW_DAYS", 7),
				LateralZThreshold:       util.GetEnvFloat("DETECT_LATERAL_Z_THRESHOLD", 2),
				CompositeZThreshold:     util.GetEnvFloat("DETECT_COMPOSITE_Z_THRESHOLD", 2),
				FailedLoginBurstMin:     util.GetEnvInt("DETECT_FAILED_LOGIN_BURST_MIN", 50),
			},
		}
	})

	return globalConfig
}

// Get returns the loaded configuration, loading it on first use
func Get() *Config {
	if globalConfig == nil {
		return LoadConfig()
	}
	return globalConfig
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func (c *Config) GetServerAddress() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}

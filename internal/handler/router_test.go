package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"cybercommand/internal/bucketing"
	"cybercommand/internal/config"
	"cybercommand/internal/detect"
	"cybercommand/internal/epoch"
	"cybercommand/internal/service"
	"cybercommand/internal/store"
)

func testServer(t *testing.T) *httptest.Server {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	cfg := &config.Config{
		Environment: "development",
		Bucketing:   config.BucketingConfig{EventBuckets: 64},
		Generator: config.GeneratorConfig{
			Seed:              42,
			DefaultUserCount:  20,
			DefaultAssetCount: 10,
			DaysBack:          3,
			NetworkPerDay:     100,
			AuthPerDay:        50,
			ScenarioFraction:  0.1,
			TargetDepartments: []string{"Engineering", "Finance"},
			StagingSubnet:     "10.66.6",
		},
		Detection: config.DetectionConfig{
			MinTransferBytes:        1_000_000,
			ExfilTotalBytes:         100_000_000,
			ExfilUniqueDestinations: 50,
			TravelHoursThreshold:    8,
			InternationalFloorHours: 8,
			CityFloorHours:          2,
			BaselineWindowDays:      30,
			RecentWindowDays:        7,
			BusinessHourStart:       9,
			BusinessHourEnd:         17,
			AfterHoursMinEvents:     5,
			LateralWindowDays:       7,
			LateralZThreshold:       2,
			CompositeZThreshold:     2,
			FailedLoginBurstMin:     50,
		},
	}

	mem := store.NewMemoryStore()
	epochs := epoch.NewManager(rdb)
	bucketer := bucketing.NewBucketingManager(cfg)
	logger := zap.NewNop()

	generatorService := service.NewGeneratorService(mem, epochs, nil, bucketer, cfg, logger)
	engine := detect.NewEngine(mem, cfg.Detection)
	huntService := service.NewHuntService(engine, epochs, nil, nil, cfg, logger)

	router := NewRouter(
		NewGenerateHandler(generatorService, logger),
		NewHuntHandler(huntService, cfg, logger),
		logger,
	)
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server
}

func decodeResponse(t *testing.T, res *http.Response) Response {
	t.Helper()
	defer res.Body.Close()
	var body Response
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	return body
}

func TestHealthEndpoint(t *testing.T) {
	server := testServer(t)

	res, err := http.Get(server.URL + "/health")
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)
}

func TestHuntBeforeFirstGenerate(t *testing.T) {
	server := testServer(t)

	// nothing published yet; hunts report empty results rather than failing
	res, err := http.Get(server.URL + "/api/v1/hunt/exfiltration")
	require.NoError(t, err)
	body := decodeResponse(t, res)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.True(t, body.Success)
	assert.Nil(t, body.Data)
}

func TestGenerateThenHunt(t *testing.T) {
	server := testServer(t)

	res, err := http.Post(server.URL+"/api/v1/generate/", "application/json", strings.NewReader("{}"))
	require.NoError(t, err)
	body := decodeResponse(t, res)
	require.Equal(t, http.StatusCreated, res.StatusCode)
	assert.True(t, body.Success)

	res, err = http.Get(server.URL + "/api/v1/hunt/intel-matches?days=30")
	require.NoError(t, err)
	body = decodeResponse(t, res)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.True(t, body.Success)

	res, err = http.Get(server.URL + "/api/v1/analytics/protocols?days=30")
	require.NoError(t, err)
	body = decodeResponse(t, res)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.True(t, body.Success)
}

func TestGenerateRejectsInvalidBody(t *testing.T) {
	server := testServer(t)

	res, err := http.Post(server.URL+"/api/v1/generate/events", "application/json",
		strings.NewReader(`{"days_back": -1, "network_per_day": 10, "auth_per_day": 10}`))
	require.NoError(t, err)
	body := decodeResponse(t, res)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	assert.False(t, body.Success)
}

func TestHuntRejectsBadQueryParam(t *testing.T) {
	server := testServer(t)

	res, err := http.Get(server.URL + "/api/v1/hunt/exfiltration?days=banana")
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

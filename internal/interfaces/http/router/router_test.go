package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulsemetrics/analytics-api/internal/config"
	"github.com/pulsemetrics/analytics-api/internal/domain/models"
	"github.com/pulsemetrics/analytics-api/internal/infrastructure/monitoring"
	"github.com/pulsemetrics/analytics-api/internal/infrastructure/ratelimit"
	"github.com/pulsemetrics/analytics-api/internal/interfaces/http/handlers"
	"github.com/pulsemetrics/analytics-api/pkg/constants"
	"github.com/pulsemetrics/analytics-api/pkg/logger"
)

// stubRepo serves a fixed snapshot so routing behavior can be exercised
// without a database.
type stubRepo struct{}

func (stubRepo) HourlyEvents(ctx context.Context) ([]models.HourlyEvents, error) {
	return []models.HourlyEvents{{Hour: 0, Events: 10}}, nil
}

func (stubRepo) DailyEvents(ctx context.Context) ([]models.DailyEvents, error) {
	return []models.DailyEvents{{Events: 30}}, nil
}

func (stubRepo) HourlyStats(ctx context.Context) ([]models.HourlyStats, error) {
	return []models.HourlyStats{{Hour: 0, Impressions: 100}}, nil
}

func (stubRepo) DailyStats(ctx context.Context) ([]models.DailyStats, error) {
	return []models.DailyStats{{Impressions: 300}}, nil
}

func (stubRepo) POIs(ctx context.Context) ([]models.POI, error) {
	return []models.POI{{POIID: 1, Name: "Central Station", Lat: -33.883, Lon: 151.207}}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Host: "127.0.0.1", Port: 8080},
		RateLimit: config.RateLimitConfig{
			Enabled:          true,
			Tabular:          config.Quota{Limit: 100, Per: 60},
			POI:              config.Quota{Limit: 2, Per: 20},
			ExpirationWindow: 10,
			CheckTimeout:     500,
		},
	}
}

func newTestRouter(t *testing.T, cfg *config.Config) (*Router, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	log := logger.NewNoopLogger()
	registry := prometheus.NewRegistry()
	metrics := monitoring.NewMetrics(registry)
	limiter := ratelimit.NewFixedWindowLimiter(client, log)

	r := New(Dependencies{
		Config:           cfg,
		Logger:           log,
		Metrics:          metrics,
		Registry:         registry,
		Limiter:          limiter,
		AnalyticsHandler: handlers.NewAnalyticsHandler(stubRepo{}, log),
		POIHandler:       handlers.NewPOIHandler(stubRepo{}, log),
		HealthHandler:    handlers.NewHealthHandler(nil),
	})
	return r, mr
}

func get(r *Router, path string, header http.Header) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, vals := range header {
		for _, v := range vals {
			req.Header.Add(k, v)
		}
	}
	r.Engine().ServeHTTP(w, req)
	return w
}

func TestRouter_WelcomeRoute(t *testing.T) {
	r, _ := newTestRouter(t, testConfig())

	w := get(r, "/", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Welcome to the analytics API", w.Body.String())
}

func TestRouter_AnalyticsRoutesCarryQuotaHeaders(t *testing.T) {
	r, _ := newTestRouter(t, testConfig())

	for _, path := range []string{"/events/hourly", "/events/daily", "/stats/hourly", "/stats/daily"} {
		w := get(r, path, nil)
		assert.Equal(t, http.StatusOK, w.Code, path)
		assert.Equal(t, "100", w.Header().Get(constants.HeaderRateLimitLimit), path)
		assert.Equal(t, "99", w.Header().Get(constants.HeaderRateLimitRemaining), path)
		assert.NotEmpty(t, w.Header().Get(constants.HeaderRateLimitReset), path)
	}
}

func TestRouter_RoutesHaveIndependentQuotaPools(t *testing.T) {
	r, _ := newTestRouter(t, testConfig())

	// Exhaust the POI quota (2 per window).
	assert.Equal(t, http.StatusOK, get(r, "/poi", nil).Code)
	assert.Equal(t, http.StatusOK, get(r, "/poi", nil).Code)
	w := get(r, "/poi", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.JSONEq(t, `{"data": "You hit the rate limit", "error": "429"}`, w.Body.String())

	// The geojson route and the tabular routes have their own pools.
	assert.Equal(t, http.StatusOK, get(r, "/poi/geojson", nil).Code)
	assert.Equal(t, http.StatusOK, get(r, "/events/hourly", nil).Code)
}

func TestRouter_UnprotectedRoutesSkipQuota(t *testing.T) {
	r, _ := newTestRouter(t, testConfig())

	for _, path := range []string{"/", "/health/live", "/health/ready", "/metrics"} {
		w := get(r, path, nil)
		assert.Equal(t, http.StatusOK, w.Code, path)
		assert.Empty(t, w.Header().Get(constants.HeaderRateLimitLimit), path)
	}
}

func TestRouter_RateLimitingDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimit.Enabled = false
	r, _ := newTestRouter(t, cfg)

	// Well past the configured POI quota; nothing is rejected or decorated.
	for i := 0; i < 5; i++ {
		w := get(r, "/poi", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get(constants.HeaderRateLimitLimit))
	}
}

func TestRouter_FailsOpenWhenCounterStoreDown(t *testing.T) {
	r, mr := newTestRouter(t, testConfig())
	mr.Close()

	w := get(r, "/events/hourly", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get(constants.HeaderRateLimitLimit))
}

func TestRouter_CORSHeaders(t *testing.T) {
	r, _ := newTestRouter(t, testConfig())

	w := get(r, "/events/hourly", http.Header{"Origin": []string{"https://dashboard.example.com"}})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Expose-Headers"), constants.HeaderRateLimitRemaining)
}

func TestRouter_RequestIDEchoedAndGenerated(t *testing.T) {
	r, _ := newTestRouter(t, testConfig())

	w := get(r, "/", http.Header{constants.HeaderRequestID: []string{"req-123"}})
	assert.Equal(t, "req-123", w.Header().Get(constants.HeaderRequestID))

	w = get(r, "/", nil)
	assert.NotEmpty(t, w.Header().Get(constants.HeaderRequestID))
}

func TestRouter_UnknownRouteReturnsJSON404(t *testing.T) {
	r, _ := newTestRouter(t, testConfig())

	w := get(r, "/events/weekly", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error": "not_found", "error_description": "The requested resource was not found"}`, w.Body.String())
}

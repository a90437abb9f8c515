// Package cache provides a read-through cache decorator for the analytics
// repository. Analytics snapshots change slowly, so a short in-process TTL
// takes repeated identical queries off the database.
package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/pulsemetrics/analytics-api/internal/domain/models"
	"github.com/pulsemetrics/analytics-api/internal/domain/repository"
	"github.com/pulsemetrics/analytics-api/pkg/constants"
	"github.com/pulsemetrics/analytics-api/pkg/logger"
)

const (
	keyHourlyEvents = "events:hourly"
	keyDailyEvents  = "events:daily"
	keyHourlyStats  = "stats:hourly"
	keyDailyStats   = "stats:daily"
	keyPOIs         = "poi:all"
)

// CachedAnalyticsRepository wraps an AnalyticsRepository with a TTL cache.
type CachedAnalyticsRepository struct {
	inner  repository.AnalyticsRepository
	cache  *gocache.Cache
	logger logger.Logger
}

// NewCachedAnalyticsRepository creates the cache decorator. A non-positive ttl
// falls back to the default query cache TTL.
func NewCachedAnalyticsRepository(inner repository.AnalyticsRepository, ttl time.Duration, log logger.Logger) *CachedAnalyticsRepository {
	if ttl <= 0 {
		ttl = constants.QueryCacheTTL
	}
	return &CachedAnalyticsRepository{
		inner:  inner,
		cache:  gocache.New(ttl, constants.QueryCacheCleanupInterval),
		logger: log.WithComponent("analytics_cache"),
	}
}

// HourlyEvents returns hourly event counts, cached.
func (r *CachedAnalyticsRepository) HourlyEvents(ctx context.Context) ([]models.HourlyEvents, error) {
	if rows, ok := r.cache.Get(keyHourlyEvents); ok {
		return rows.([]models.HourlyEvents), nil
	}
	rows, err := r.inner.HourlyEvents(ctx)
	if err != nil {
		return nil, err
	}
	r.store(ctx, keyHourlyEvents, rows)
	return rows, nil
}

// DailyEvents returns daily event counts, cached.
func (r *CachedAnalyticsRepository) DailyEvents(ctx context.Context) ([]models.DailyEvents, error) {
	if rows, ok := r.cache.Get(keyDailyEvents); ok {
		return rows.([]models.DailyEvents), nil
	}
	rows, err := r.inner.DailyEvents(ctx)
	if err != nil {
		return nil, err
	}
	r.store(ctx, keyDailyEvents, rows)
	return rows, nil
}

// HourlyStats returns hourly delivery statistics, cached.
func (r *CachedAnalyticsRepository) HourlyStats(ctx context.Context) ([]models.HourlyStats, error) {
	if rows, ok := r.cache.Get(keyHourlyStats); ok {
		return rows.([]models.HourlyStats), nil
	}
	rows, err := r.inner.HourlyStats(ctx)
	if err != nil {
		return nil, err
	}
	r.store(ctx, keyHourlyStats, rows)
	return rows, nil
}

// DailyStats returns daily delivery statistics, cached.
func (r *CachedAnalyticsRepository) DailyStats(ctx context.Context) ([]models.DailyStats, error) {
	if rows, ok := r.cache.Get(keyDailyStats); ok {
		return rows.([]models.DailyStats), nil
	}
	rows, err := r.inner.DailyStats(ctx)
	if err != nil {
		return nil, err
	}
	r.store(ctx, keyDailyStats, rows)
	return rows, nil
}

// POIs returns points of interest, cached.
func (r *CachedAnalyticsRepository) POIs(ctx context.Context) ([]models.POI, error) {
	if rows, ok := r.cache.Get(keyPOIs); ok {
		return rows.([]models.POI), nil
	}
	rows, err := r.inner.POIs(ctx)
	if err != nil {
		return nil, err
	}
	r.store(ctx, keyPOIs, rows)
	return rows, nil
}

func (r *CachedAnalyticsRepository) store(ctx context.Context, key string, rows interface{}) {
	r.cache.SetDefault(key, rows)
	r.logger.Debug(ctx, "query result cached", logger.String("key", key))
}

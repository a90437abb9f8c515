package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulsemetrics/analytics-api/internal/domain/models"
	"github.com/pulsemetrics/analytics-api/pkg/errors"
	"github.com/pulsemetrics/analytics-api/pkg/logger"
)

// countingRepo records how many times each query reaches the inner repository.
type countingRepo struct {
	calls map[string]int
	err   error
}

func newCountingRepo() *countingRepo {
	return &countingRepo{calls: map[string]int{}}
}

func (f *countingRepo) HourlyEvents(ctx context.Context) ([]models.HourlyEvents, error) {
	f.calls["hourly_events"]++
	if f.err != nil {
		return nil, f.err
	}
	return []models.HourlyEvents{{Hour: 1, Events: 10}}, nil
}

func (f *countingRepo) DailyEvents(ctx context.Context) ([]models.DailyEvents, error) {
	f.calls["daily_events"]++
	return []models.DailyEvents{{Events: 30}}, nil
}

func (f *countingRepo) HourlyStats(ctx context.Context) ([]models.HourlyStats, error) {
	f.calls["hourly_stats"]++
	return []models.HourlyStats{{Hour: 1, Impressions: 100}}, nil
}

func (f *countingRepo) DailyStats(ctx context.Context) ([]models.DailyStats, error) {
	f.calls["daily_stats"]++
	return []models.DailyStats{{Impressions: 300}}, nil
}

func (f *countingRepo) POIs(ctx context.Context) ([]models.POI, error) {
	f.calls["poi"]++
	return []models.POI{{POIID: 1, Name: "Central Station"}}, nil
}

func TestCachedRepository_ServesSecondReadFromCache(t *testing.T) {
	inner := newCountingRepo()
	repo := NewCachedAnalyticsRepository(inner, time.Minute, logger.NewNoopLogger())

	first, err := repo.HourlyEvents(context.Background())
	require.NoError(t, err)
	second, err := repo.HourlyEvents(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, inner.calls["hourly_events"])
}

func TestCachedRepository_KeysAreIndependent(t *testing.T) {
	inner := newCountingRepo()
	repo := NewCachedAnalyticsRepository(inner, time.Minute, logger.NewNoopLogger())

	ctx := context.Background()
	_, err := repo.DailyEvents(ctx)
	require.NoError(t, err)
	_, err = repo.DailyStats(ctx)
	require.NoError(t, err)
	_, err = repo.POIs(ctx)
	require.NoError(t, err)
	_, err = repo.POIs(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, inner.calls["daily_events"])
	assert.Equal(t, 1, inner.calls["daily_stats"])
	assert.Equal(t, 1, inner.calls["poi"])
	assert.Equal(t, 0, inner.calls["hourly_stats"])
}

func TestCachedRepository_DoesNotCacheErrors(t *testing.T) {
	inner := newCountingRepo()
	inner.err = errors.ErrDatabaseOperation(assert.AnError)
	repo := NewCachedAnalyticsRepository(inner, time.Minute, logger.NewNoopLogger())

	ctx := context.Background()
	_, err := repo.HourlyEvents(ctx)
	require.Error(t, err)

	// The failure must not be cached: once the database recovers, the next
	// read goes through and the result is stored.
	inner.err = nil
	rows, err := repo.HourlyEvents(ctx)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
	assert.Equal(t, 2, inner.calls["hourly_events"])

	_, err = repo.HourlyEvents(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls["hourly_events"])
}

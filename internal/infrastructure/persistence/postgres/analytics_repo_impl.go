package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/pulsemetrics/analytics-api/internal/domain/models"
	"github.com/pulsemetrics/analytics-api/internal/domain/repository"
	"github.com/pulsemetrics/analytics-api/pkg/errors"
	"github.com/pulsemetrics/analytics-api/pkg/logger"
)

// AnalyticsRepoImpl implements AnalyticsRepository over PostgreSQL.
// All queries are read-only.
type AnalyticsRepoImpl struct {
	db     *gorm.DB
	logger logger.Logger
}

// NewAnalyticsRepository creates a PostgreSQL-backed analytics repository.
func NewAnalyticsRepository(db *gorm.DB, log logger.Logger) repository.AnalyticsRepository {
	return &AnalyticsRepoImpl{
		db:     db,
		logger: log.WithComponent("analytics_repository"),
	}
}

// HourlyEvents returns a week (168 rows) of hourly event counts.
func (r *AnalyticsRepoImpl) HourlyEvents(ctx context.Context) ([]models.HourlyEvents, error) {
	var rows []models.HourlyEvents
	err := r.query(ctx, "hourly_events", &rows, `
		SELECT date, hour, events
		FROM hourly_events
		ORDER BY date, hour
		LIMIT 168`)
	return rows, err
}

// DailyEvents returns a week of daily aggregated event counts.
func (r *AnalyticsRepoImpl) DailyEvents(ctx context.Context) ([]models.DailyEvents, error) {
	var rows []models.DailyEvents
	err := r.query(ctx, "daily_events", &rows, `
		SELECT date, SUM(events) AS events
		FROM hourly_events
		GROUP BY date
		ORDER BY date
		LIMIT 7`)
	return rows, err
}

// HourlyStats returns a week (168 rows) of hourly delivery statistics.
func (r *AnalyticsRepoImpl) HourlyStats(ctx context.Context) ([]models.HourlyStats, error) {
	var rows []models.HourlyStats
	err := r.query(ctx, "hourly_stats", &rows, `
		SELECT date, hour, impressions, clicks, revenue
		FROM hourly_stats
		ORDER BY date, hour
		LIMIT 168`)
	return rows, err
}

// DailyStats returns a week of daily aggregated delivery statistics.
func (r *AnalyticsRepoImpl) DailyStats(ctx context.Context) ([]models.DailyStats, error) {
	var rows []models.DailyStats
	err := r.query(ctx, "daily_stats", &rows, `
		SELECT date,
			SUM(impressions) AS impressions,
			SUM(clicks) AS clicks,
			SUM(revenue) AS revenue
		FROM hourly_stats
		GROUP BY date
		ORDER BY date
		LIMIT 7`)
	return rows, err
}

// POIs returns all points of interest.
func (r *AnalyticsRepoImpl) POIs(ctx context.Context) ([]models.POI, error) {
	var rows []models.POI
	err := r.query(ctx, "poi", &rows, `
		SELECT poi_id, name, lat, lon
		FROM poi
		ORDER BY poi_id`)
	return rows, err
}

func (r *AnalyticsRepoImpl) query(ctx context.Context, name string, dest interface{}, sql string) error {
	start := time.Now()

	if err := r.db.WithContext(ctx).Raw(sql).Scan(dest).Error; err != nil {
		r.logger.Error(ctx, "analytics query failed", err, logger.String("query", name))
		return errors.ErrDatabaseOperation(err)
	}

	r.logger.Debug(ctx, "analytics query completed",
		logger.String("query", name),
		logger.Int64("latency_ms", time.Since(start).Milliseconds()),
	)
	return nil
}

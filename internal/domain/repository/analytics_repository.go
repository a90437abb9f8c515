// Package repository defines the data access interfaces of the analytics API.
package repository

import (
	"context"

	"github.com/pulsemetrics/analytics-api/internal/domain/models"
)

// AnalyticsRepository provides read-only access to the analytics tables.
type AnalyticsRepository interface {
	// HourlyEvents returns up to a week of hourly event counts, ordered by date and hour.
	HourlyEvents(ctx context.Context) ([]models.HourlyEvents, error)

	// DailyEvents returns up to a week of daily aggregated event counts, ordered by date.
	DailyEvents(ctx context.Context) ([]models.DailyEvents, error)

	// HourlyStats returns up to a week of hourly delivery statistics, ordered by date and hour.
	HourlyStats(ctx context.Context) ([]models.HourlyStats, error)

	// DailyStats returns up to a week of daily aggregated delivery statistics, ordered by date.
	DailyStats(ctx context.Context) ([]models.DailyStats, error)

	// POIs returns all points of interest.
	POIs(ctx context.Context) ([]models.POI, error)
}

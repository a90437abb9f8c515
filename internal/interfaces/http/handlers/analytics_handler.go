// Package handlers contains the gin HTTP handlers of the analytics API.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pulsemetrics/analytics-api/internal/domain/models"
	"github.com/pulsemetrics/analytics-api/internal/domain/repository"
	"github.com/pulsemetrics/analytics-api/pkg/errors"
	"github.com/pulsemetrics/analytics-api/pkg/logger"
)

// AnalyticsHandler serves the tabular events and stats endpoints.
type AnalyticsHandler struct {
	repo repository.AnalyticsRepository
	log  logger.Logger
}

// NewAnalyticsHandler creates a new AnalyticsHandler.
func NewAnalyticsHandler(repo repository.AnalyticsRepository, log logger.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{repo: repo, log: log}
}

// EventsHourly returns hourly event counts.
func (h *AnalyticsHandler) EventsHourly(c *gin.Context) {
	rows, err := h.repo.HourlyEvents(c.Request.Context())
	if err != nil {
		h.serverError(c, err)
		return
	}
	if rows == nil {
		rows = []models.HourlyEvents{}
	}
	c.JSON(http.StatusOK, rows)
}

// EventsDaily returns daily aggregated event counts.
func (h *AnalyticsHandler) EventsDaily(c *gin.Context) {
	rows, err := h.repo.DailyEvents(c.Request.Context())
	if err != nil {
		h.serverError(c, err)
		return
	}
	if rows == nil {
		rows = []models.DailyEvents{}
	}
	c.JSON(http.StatusOK, rows)
}

// StatsHourly returns hourly delivery statistics.
func (h *AnalyticsHandler) StatsHourly(c *gin.Context) {
	rows, err := h.repo.HourlyStats(c.Request.Context())
	if err != nil {
		h.serverError(c, err)
		return
	}
	if rows == nil {
		rows = []models.HourlyStats{}
	}
	c.JSON(http.StatusOK, rows)
}

// StatsDaily returns daily aggregated delivery statistics.
func (h *AnalyticsHandler) StatsDaily(c *gin.Context) {
	rows, err := h.repo.DailyStats(c.Request.Context())
	if err != nil {
		h.serverError(c, err)
		return
	}
	if rows == nil {
		rows = []models.DailyStats{}
	}
	c.JSON(http.StatusOK, rows)
}

func (h *AnalyticsHandler) serverError(c *gin.Context, err error) {
	h.log.Error(c.Request.Context(), "analytics query failed", err,
		logger.String("route", c.FullPath()),
	)
	c.JSON(http.StatusInternalServerError, gin.H{
		"error":             string(errors.CodeServerError),
		"error_description": "An unexpected error occurred",
	})
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pulsemetrics/analytics-api/internal/domain/models"
	"github.com/pulsemetrics/analytics-api/internal/domain/repository"
	"github.com/pulsemetrics/analytics-api/pkg/errors"
	"github.com/pulsemetrics/analytics-api/pkg/logger"
)

// POIHandler serves the point-of-interest endpoints.
type POIHandler struct {
	repo repository.AnalyticsRepository
	log  logger.Logger
}

// NewPOIHandler creates a new POIHandler.
func NewPOIHandler(repo repository.AnalyticsRepository, log logger.Logger) *POIHandler {
	return &POIHandler{repo: repo, log: log}
}

// List returns all points of interest as tabular JSON rows.
func (h *POIHandler) List(c *gin.Context) {
	pois, err := h.repo.POIs(c.Request.Context())
	if err != nil {
		h.serverError(c, err)
		return
	}
	if pois == nil {
		pois = []models.POI{}
	}
	c.JSON(http.StatusOK, pois)
}

// GeoJSON returns all points of interest as a GeoJSON FeatureCollection of
// Point geometries.
func (h *POIHandler) GeoJSON(c *gin.Context) {
	pois, err := h.repo.POIs(c.Request.Context())
	if err != nil {
		h.serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.NewPOIFeatureCollection(pois))
}

func (h *POIHandler) serverError(c *gin.Context, err error) {
	h.log.Error(c.Request.Context(), "poi query failed", err,
		logger.String("route", c.FullPath()),
	)
	c.JSON(http.StatusInternalServerError, gin.H{
		"error":             string(errors.CodeServerError),
		"error_description": "An unexpected error occurred",
	})
}

package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulsemetrics/analytics-api/internal/domain/models"
	"github.com/pulsemetrics/analytics-api/pkg/errors"
	"github.com/pulsemetrics/analytics-api/pkg/logger"
)

func TestPOIList_ReturnsRows(t *testing.T) {
	h := NewPOIHandler(&fakeRepo{}, logger.NewNoopLogger())

	w := serve(h.List, "/poi")

	assert.Equal(t, http.StatusOK, w.Code)

	var rows []models.POI
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, "Central Station", rows[0].Name)
	assert.InDelta(t, 151.207, rows[0].Lon, 1e-9)
}

func TestPOIGeoJSON_BuildsFeatureCollection(t *testing.T) {
	h := NewPOIHandler(&fakeRepo{}, logger.NewNoopLogger())

	w := serve(h.GeoJSON, "/poi/geojson")

	assert.Equal(t, http.StatusOK, w.Code)

	var fc models.FeatureCollection
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &fc))

	assert.Equal(t, "FeatureCollection", fc.Type)
	require.Len(t, fc.Features, 2)

	first := fc.Features[0]
	assert.Equal(t, "Feature", first.Type)
	assert.Equal(t, "Point", first.Geometry.Type)
	// GeoJSON coordinate order is [longitude, latitude].
	require.Len(t, first.Geometry.Coordinates, 2)
	assert.InDelta(t, 151.207, first.Geometry.Coordinates[0], 1e-9)
	assert.InDelta(t, -33.883, first.Geometry.Coordinates[1], 1e-9)
	assert.Equal(t, "Central Station", first.Properties["name"])
	assert.EqualValues(t, 1, first.Properties["poi_id"])
}

func TestPOIGeoJSON_EmptyHasEmptyFeatureList(t *testing.T) {
	fc := models.NewPOIFeatureCollection(nil)

	raw, err := json.Marshal(fc)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type": "FeatureCollection", "features": []}`, string(raw))
}

func TestPOIHandlers_DatabaseErrorReturns500(t *testing.T) {
	h := NewPOIHandler(&fakeRepo{err: errors.ErrDatabaseOperation(assert.AnError)}, logger.NewNoopLogger())

	w := serve(h.List, "/poi")
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	w = serve(h.GeoJSON, "/poi/geojson")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error": "server_error", "error_description": "An unexpected error occurred"}`, w.Body.String())
}

package models

// GeoJSON types for the point-of-interest surface, per RFC 7946.

// PointGeometry is a GeoJSON Point. Coordinates are [longitude, latitude].
type PointGeometry struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"`
}

// Feature is a GeoJSON Feature wrapping a point of interest.
type Feature struct {
	Type       string                 `json:"type"`
	Geometry   PointGeometry          `json:"geometry"`
	Properties map[string]interface{} `json:"properties"`
}

// FeatureCollection is a GeoJSON FeatureCollection.
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

// NewPOIFeatureCollection converts POI rows into a GeoJSON FeatureCollection
// of Point geometries keyed by the rows' longitude and latitude columns.
func NewPOIFeatureCollection(pois []POI) FeatureCollection {
	features := make([]Feature, 0, len(pois))
	for _, p := range pois {
		features = append(features, Feature{
			Type: "Feature",
			Geometry: PointGeometry{
				Type:        "Point",
				Coordinates: []float64{p.Lon, p.Lat},
			},
			Properties: map[string]interface{}{
				"poi_id": p.POIID,
				"name":   p.Name,
			},
		})
	}
	return FeatureCollection{Type: "FeatureCollection", Features: features}
}

// Package geo handles geographic data structures and coordinate conversions.
package geo

// FeatureCollection represents a collection of geographic features.
// It follows the standard GeoJSON structure.
type FeatureCollection struct {
	Type     string    `json:"type" yaml:"type"`
	Features []Feature `json:"features" yaml:"features"`
}

// Feature represents a single geographic feature with geometry and properties.
// ID is the optional top-level identifier; GeoJSON allows strings and numbers.
type Feature struct {
	ID         any            `json:"id,omitempty" yaml:"id,omitempty"`
	Properties map[string]any `json:"properties" yaml:"properties"`
	Geometry   *Geometry      `json:"geometry" yaml:"geometry"`
	Type       string         `json:"type" yaml:"type"`
}

// Geometry represents the geometry of a point feature.
// Entries may be null in the source document.
type Geometry struct {
	Type        string     `json:"type" yaml:"type"`
	Coordinates []*float64 `json:"coordinates" yaml:"coordinates"` // [Lon, Lat]
}

// NewPointFeature builds a Point feature from a longitude/latitude pair.
func NewPointFeature(lon, lat float64, props map[string]any) Feature {
	return Feature{
		Type: "Feature",
		Geometry: &Geometry{
			Type:        "Point",
			Coordinates: []*float64{&lon, &lat},
		},
		Properties: props,
	}
}

// Position returns the geometry position in source order.
// Either value is nil when the geometry is missing, too short or holds null.
func (g *Geometry) Position() (lon, lat *float64) {
	if g == nil || len(g.Coordinates) < 2 {
		return nil, nil
	}

	return g.Coordinates[0], g.Coordinates[1]
}

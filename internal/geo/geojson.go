package geo

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Marker is a named point to be drawn on the 2D map.
type Marker struct {
	Position GeodeticPoint
	Name     string
	Kind     string // satellite, shadow, direction, observer
	Color    string // CSS color, optional
}

// NewFeature builds a GeoJSON Point feature for a marker.
// Coordinates follow GeoJSON order: [lng, lat].
func NewFeature(m Marker) *geojson.Feature {
	f := geojson.NewFeature(orb.Point{m.Position.Longitude, m.Position.Latitude})
	f.Properties["name"] = m.Name
	f.Properties["type"] = m.Kind
	if m.Color != "" {
		f.Properties["color"] = m.Color
	}
	return f
}

// FeatureCollection builds a GeoJSON FeatureCollection from markers, keeping their order.
func FeatureCollection(markers ...Marker) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, m := range markers {
		fc.Append(NewFeature(m))
	}
	return fc
}

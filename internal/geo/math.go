package geo

import (
	"math"

	"github.com/owlpinetech/flatsphere"
)

// MaxMercatorLat is the latitude limit of the square Web-Mercator world.
const MaxMercatorLat = 85.05112878

// MapPoint is a position on the 2D map. X and Y are normalized to [0, 1]
// with (0, 0) at the north-west corner, as slippy map tiles are laid out.
type MapPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

var mercator = flatsphere.NewMercator()

// ToMapPoint mirrors a ground position onto the Mercator map.
// Latitude is clamped to ±MaxMercatorLat, longitude is wrapped into [-180, 180).
func ToMapPoint(p GeodeticPoint) MapPoint {
	lat := p.Latitude
	if lat > MaxMercatorLat {
		lat = MaxMercatorLat
	} else if lat < -MaxMercatorLat {
		lat = -MaxMercatorLat
	}

	x, y := mercator.Project(lat*degToRad, NormalizeLongitude(p.Longitude)*degToRad)

	// x: [-PI..PI] -> [0..1], y: [PI..-PI] -> [0..1]
	return MapPoint{
		X: (x + math.Pi) / (2 * math.Pi),
		Y: (math.Pi - y) / (2 * math.Pi),
	}
}

// NormalizeLongitude wraps a longitude into [-180, 180).
func NormalizeLongitude(lng float64) float64 {
	lng = math.Mod(lng+180, 360)
	if lng < 0 {
		lng += 360
	}
	return lng - 180
}

// Heading returns the unit direction (dx along longitude, dy along latitude)
// from one ground position to another. ok is false when the points coincide.
func Heading(from, to GeodeticPoint) (dx, dy float64, ok bool) {
	dx = to.Longitude - from.Longitude
	dy = to.Latitude - from.Latitude

	length := math.Hypot(dx, dy)
	if length == 0 || math.IsNaN(length) || math.IsInf(length, 0) {
		return 0, 0, false
	}

	return dx / length, dy / length, true
}

// Offset moves p by distanceDeg degrees along the (dx, dy) direction.
func Offset(p GeodeticPoint, dx, dy, distanceDeg float64) GeodeticPoint {
	return GeodeticPoint{
		Latitude:  p.Latitude + dy*distanceDeg,
		Longitude: p.Longitude + dx*distanceDeg,
	}
}

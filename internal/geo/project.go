// Package geo converts geographic positions into globe (3D) and map (2D) coordinates.
package geo

import "math"

// Render radii in globe units. The globe itself has radius GlobeRadius and
// surface markers sit slightly above it so they are not hidden by the texture.
const (
	GlobeRadius     = 5.0
	ObserverRadius  = 5.01
	ShadowRadius    = 5.02
	DirectionRadius = 5.03
)

const degToRad = math.Pi / 180

// GeodeticPoint is a latitude/longitude pair in degrees.
type GeodeticPoint struct {
	Latitude  float64 `json:"lat" yaml:"lat"`
	Longitude float64 `json:"lng" yaml:"lng"`
}

// Vector3 is a point in the globe frame: +Y is the north pole,
// latitude 0 / longitude 0 lies on +X and the antimeridian on -X.
type Vector3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Length returns the distance from the origin.
func (v Vector3) Length() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Project maps a latitude/longitude (degrees) onto a sphere of the given radius.
// The axis convention matches the globe texture and must not change.
// Non-finite input propagates into the result.
func Project(latitudeDeg, longitudeDeg, radius float64) Vector3 {
	phi := (90 - latitudeDeg) * degToRad
	theta := (longitudeDeg + 180) * degToRad

	return Vector3{
		X: -radius * math.Sin(phi) * math.Cos(theta),
		Y: radius * math.Cos(phi),
		Z: radius * math.Sin(phi) * math.Sin(theta),
	}
}

// ProjectPoint is Project for a GeodeticPoint.
func ProjectPoint(p GeodeticPoint, radius float64) Vector3 {
	return Project(p.Latitude, p.Longitude, radius)
}

package orbit

import "math"

// Classification thresholds. Display approximations, not orbital mechanics boundaries.
const (
	HighEccentricity = 0.1
	LEOMaxAltitudeKm = 2000.0
	MEOMaxAltitudeKm = 22000.0
)

// Earth constants used by the circular-orbit approximations.
const (
	EarthMu       = 398600.4418 // km^3/s^2
	EarthRadiusKm = 6378.137
	secondsPerDay = 86400.0
)

// Classify returns the display regime for an orbit.
// Eccentricity is checked first: a highly eccentric orbit is HEO whatever its altitude.
func Classify(altitudeKm, eccentricity float64) Regime {
	return Lookup(classifyTag(altitudeKm, eccentricity))
}

// ClassifyAltitude classifies a circular orbit by altitude only.
func ClassifyAltitude(altitudeKm float64) Regime {
	return Classify(altitudeKm, 0)
}

func classifyTag(altitudeKm, eccentricity float64) Tag {
	switch {
	case eccentricity > HighEccentricity:
		return TagHEO
	case altitudeKm <= LEOMaxAltitudeKm:
		return TagLEO
	case altitudeKm <= MEOMaxAltitudeKm:
		return TagMEO
	default:
		return TagGEO
	}
}

// AltitudeFromMeanMotion approximates the altitude (km) of a circular orbit
// from its mean motion in revolutions per day.
func AltitudeFromMeanMotion(revPerDay float64) float64 {
	n := revPerDay * 2 * math.Pi / secondsPerDay
	return math.Cbrt(EarthMu/(n*n)) - EarthRadiusKm
}

// MeanMotionFromAltitude is the inverse of AltitudeFromMeanMotion.
func MeanMotionFromAltitude(altitudeKm float64) float64 {
	r := altitudeKm + EarthRadiusKm
	return math.Sqrt(EarthMu/(r*r*r)) * secondsPerDay / (2 * math.Pi)
}

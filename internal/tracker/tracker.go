// Package tracker places a selected satellite on the globe and the 2D map,
// using live N2YO positions with a deterministic mock fallback.
package tracker

import (
	"context"
	"errors"
	"time"

	"github.com/woozymasta/satglobe/internal/catalog"
	"github.com/woozymasta/satglobe/internal/geo"
	"github.com/woozymasta/satglobe/internal/metrics"
	"github.com/woozymasta/satglobe/internal/orbit"

	"github.com/rs/zerolog/log"
)

// Data sources of a placement.
const (
	SourceAPI  = "api"
	SourceMock = "mock"
)

// DefaultInterval is the Follow update period used when none is given.
const DefaultInterval = 10 * time.Second

// HeadingDistanceDeg is how far ahead of the satellite the heading dot is drawn.
const HeadingDistanceDeg = 1.0

// ErrNoPositions is returned when the position API answers without samples.
var ErrNoPositions = errors.New("no position data available")

// mockHeading is used when no direction can be derived from the samples.
var mockHeading = [2]float64{0.1, 0.1}

// Observer is a ground observer. Altitude is in metres.
type Observer struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lng"`
	Altitude  float64 `json:"alt"`
}

// Point returns the observer ground position.
func (o Observer) Point() geo.GeodeticPoint {
	return geo.GeodeticPoint{Latitude: o.Latitude, Longitude: o.Longitude}
}

// Position is a single N2YO position sample.
type Position struct {
	Status       string  `json:"status,omitempty"`
	SatLatitude  float64 `json:"satlatitude"`
	SatLongitude float64 `json:"satlongitude"`
	SatAltitude  float64 `json:"sataltitude"`
	Azimuth      float64 `json:"azimuth"`
	Elevation    float64 `json:"elevation"`
	Timestamp    int64   `json:"timestamp"`
}

// Point returns the sub-satellite ground position.
func (p Position) Point() geo.GeodeticPoint {
	return geo.GeodeticPoint{Latitude: p.SatLatitude, Longitude: p.SatLongitude}
}

// Time returns the sample time in UTC.
func (p Position) Time() time.Time {
	return time.Unix(p.Timestamp, 0).UTC()
}

// MockPosition derives a plausible, deterministic position from the NORAD id.
func MockPosition(noradID int, obs Observer, now time.Time, status string) Position {
	return Position{
		SatLatitude:  obs.Latitude + float64(noradID%10)*2,
		SatLongitude: obs.Longitude + float64(noradID%15)*2,
		SatAltitude:  400 + float64(noradID%5)*100,
		Azimuth:      180 + float64(noradID%180),
		Elevation:    -30 + float64(noradID%60),
		Timestamp:    now.Unix(),
		Status:       status,
	}
}

// MapMarkers are the 2D map positions of a placement.
type MapMarkers struct {
	Satellite geo.MapPoint `json:"satellite"`
	Observer  geo.MapPoint `json:"observer"`
}

// Placement is everything a viewer needs to draw a tracked satellite.
type Placement struct {
	Name      string            `json:"name"`
	Status    string            `json:"status"`
	Source    string            `json:"source"`
	Color     string            `json:"color"`
	Position  Position          `json:"position"`
	Regime    orbit.Regime      `json:"regime"`
	Heading   geo.GeodeticPoint `json:"heading"` // ground position of the heading dot
	Map       MapMarkers        `json:"map"`
	Satellite geo.Vector3       `json:"satellite"`
	Shadow    geo.Vector3       `json:"shadow"`
	Direction geo.Vector3       `json:"direction"`
	Observer  geo.Vector3       `json:"observer"`
	NoradID   int               `json:"norad_id"`
}

// Place computes globe and map positions from position samples.
// The first sample is the current position; the last one gives the heading.
func Place(rec catalog.Record, samples []Position, obs Observer, source string) (Placement, error) {
	if len(samples) == 0 {
		return Placement{}, ErrNoPositions
	}

	current := samples[0]
	last := samples[len(samples)-1]
	regime := rec.Regime()

	dx, dy, ok := geo.Heading(current.Point(), last.Point())
	if !ok {
		dx, dy = mockHeading[0], mockHeading[1]
	}
	heading := geo.Offset(current.Point(), dx, dy, HeadingDistanceDeg)

	status := current.Status
	if status == "" {
		status = rec.StatusOr(catalog.StatusInactive)
	}

	return Placement{
		NoradID:   rec.NoradCatID,
		Name:      rec.ObjectName,
		Status:    status,
		Source:    source,
		Regime:    regime,
		Color:     regime.Hex(),
		Position:  current,
		Heading:   heading,
		Satellite: geo.ProjectPoint(current.Point(), geo.GlobeRadius+regime.HeightOffset),
		Shadow:    geo.ProjectPoint(current.Point(), geo.ShadowRadius),
		Direction: geo.ProjectPoint(heading, geo.DirectionRadius),
		Observer:  geo.ProjectPoint(obs.Point(), geo.ObserverRadius),
		Map: MapMarkers{
			Satellite: geo.ToMapPoint(current.Point()),
			Observer:  geo.ToMapPoint(obs.Point()),
		},
	}, nil
}

// Markers returns the placement as GeoJSON-ready map markers.
func (p Placement) Markers(obs Observer) []geo.Marker {
	return []geo.Marker{
		{Position: p.Position.Point(), Name: p.Name, Kind: "satellite", Color: p.Color},
		{Position: p.Heading, Name: p.Name, Kind: "direction"},
		{Position: obs.Point(), Name: "observer", Kind: "observer", Color: "#f9ff50"},
	}
}

// PositionSource provides position samples for a satellite.
type PositionSource interface {
	Positions(ctx context.Context, noradID int, obs Observer, seconds int) ([]Position, error)
}

// Tracker places satellites using a PositionSource and falls back to mock
// positions when it fails.
type Tracker struct {
	Source  PositionSource
	Metrics *metrics.Collector
	Now     func() time.Time
	Seconds int // position window requested per update
}

// New returns a tracker requesting a window of seconds samples per update.
func New(src PositionSource, seconds int, m *metrics.Collector) *Tracker {
	return &Tracker{Source: src, Seconds: seconds, Metrics: m, Now: time.Now}
}

// Track returns the current placement of rec as seen by obs.
// Errors from the position source are logged and replaced by a mock position.
func (t *Tracker) Track(ctx context.Context, rec catalog.Record, obs Observer) Placement {
	if t.Source != nil {
		samples, err := t.Source.Positions(ctx, rec.NoradCatID, obs, t.Seconds)
		if err == nil {
			var p Placement
			if p, err = Place(rec, samples, obs, SourceAPI); err == nil {
				t.Metrics.ObserveRegime(p.Regime.Tag.String())
				return p
			}
		}

		log.Warn().
			Err(err).
			Int("norad_id", rec.NoradCatID).
			Msg("Position API failed, using mock position")
	}

	t.Metrics.IncTrackFallback()
	mock := MockPosition(rec.NoradCatID, obs, t.now(), rec.StatusOr(catalog.StatusInactive))

	// A single sample always yields a usable placement.
	p, _ := Place(rec, []Position{mock}, obs, SourceMock)
	t.Metrics.ObserveRegime(p.Regime.Tag.String())
	return p
}

// Follow calls fn with a fresh placement immediately and then every interval
// until ctx is cancelled. It returns ctx.Err().
func (t *Tracker) Follow(ctx context.Context, rec catalog.Record, obs Observer, interval time.Duration, fn func(Placement)) error {
	if interval <= 0 {
		interval = DefaultInterval
	}

	fn(t.Track(ctx, rec, obs))

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			fn(t.Track(ctx, rec, obs))
		}
	}
}

func (t *Tracker) now() time.Time {
	if t.Now == nil {
		return time.Now()
	}
	return t.Now()
}

// Package server handles HTTP requests and middleware.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"hash/crc32"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/woozymasta/satglobe/internal/catalog"
	"github.com/woozymasta/satglobe/internal/geo"
	"github.com/woozymasta/satglobe/internal/orbit"
	"github.com/woozymasta/satglobe/internal/tracker"
)

// mockAboveCount is the number of placeholder records served when "above" fails.
const mockAboveCount = 5

// HandleSearch serves /api/search?q=<term>.
func (s *ServerContext) HandleSearch(w http.ResponseWriter, r *http.Request) {
	records, _ := s.Catalog()
	writeJSON(w, catalog.Search(records, strings.TrimSpace(r.URL.Query().Get("q"))))
}

// HandlePreset serves /api/presets/{iss|starlink|gps|heo}.
func (s *ServerContext) HandlePreset(w http.ResponseWriter, r *http.Request) {
	name := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/presets/"), "/")

	records, _ := s.Catalog()
	result, ok := catalog.Preset(records, name)
	if !ok {
		http.NotFound(w, r)
		return
	}

	writeJSON(w, result)
}

// HandleClassify serves /api/classify?alt=&ecc= or ?mean_motion=&ecc=.
func (s *ServerContext) HandleClassify(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	ecc, err := floatParam(q.Get("ecc"), 0)
	if err != nil {
		http.Error(w, "invalid ecc", http.StatusBadRequest)
		return
	}

	var alt float64
	switch {
	case q.Get("alt") != "":
		if alt, err = floatParam(q.Get("alt"), 0); err != nil {
			http.Error(w, "invalid alt", http.StatusBadRequest)
			return
		}
	case q.Get("mean_motion") != "":
		mm, err := floatParam(q.Get("mean_motion"), 0)
		if err != nil || mm <= 0 {
			http.Error(w, "invalid mean_motion", http.StatusBadRequest)
			return
		}
		alt = orbit.AltitudeFromMeanMotion(mm)
	default:
		http.Error(w, "alt or mean_motion required", http.StatusBadRequest)
		return
	}

	regime := orbit.Classify(alt, ecc)
	s.Metrics.ObserveRegime(regime.Tag.String())

	writeJSON(w, struct {
		orbit.Regime
		Hex      string  `json:"hex"`
		Altitude float64 `json:"altitude"`
	}{regime, regime.Hex(), alt})
}

// HandleProject serves /api/project?lat=&lng=&radius=.
func (s *ServerContext) HandleProject(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	lat, errLat := floatParam(q.Get("lat"), 0)
	lng, errLng := floatParam(q.Get("lng"), 0)
	radius, errRadius := floatParam(q.Get("radius"), geo.GlobeRadius)
	if errLat != nil || errLng != nil || errRadius != nil {
		http.Error(w, "invalid coordinates", http.StatusBadRequest)
		return
	}

	writeJSON(w, geo.Project(lat, lng, radius))
}

// HandleTrack serves /api/track/{norad} and /api/track/{norad}/geojson.
// The observer defaults to the configured one and may be overridden by query.
func (s *ServerContext) HandleTrack(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/track/"), "/"), "/")
	if len(parts) == 0 || len(parts) > 2 || (len(parts) == 2 && parts[1] != "geojson") {
		http.NotFound(w, r)
		return
	}

	id, err := strconv.Atoi(parts[0])
	if err != nil || id <= 0 {
		http.Error(w, "invalid NORAD id", http.StatusBadRequest)
		return
	}

	obs, err := s.observer(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	p := s.Tracker.Track(r.Context(), s.record(id), obs)

	log.Debug().
		Int("norad_id", id).
		Str("regime", p.Regime.Tag.String()).
		Str("source", p.Source).
		Msg("Satellite placed")

	if len(parts) == 2 {
		fc := geo.FeatureCollection(p.Markers(obs)...)
		data, err := fc.MarshalJSON()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/geo+json")
		_, _ = w.Write(data)
		return
	}

	writeJSON(w, p)
}

// HandleAbove serves /api/above?lat=&lng=&alt=&category= as catalog records.
// Failures of the N2YO query are answered with mock records.
func (s *ServerContext) HandleAbove(w http.ResponseWriter, r *http.Request) {
	obs, err := s.observer(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	category := 0
	if v := r.URL.Query().Get("category"); v != "" {
		if category, err = strconv.Atoi(v); err != nil {
			http.Error(w, "invalid category", http.StatusBadRequest)
			return
		}
	}

	now := time.Now()
	passes, err := s.N2YO.Above(r.Context(), obs, s.Config.AboveRadius, category)
	if err != nil {
		log.Warn().Err(err).Int("category", category).Msg("Above query failed, using mock satellites")
		w.Header().Set("X-Data-Source", tracker.SourceMock)
		writeJSON(w, catalog.MockAbove(mockAboveCount, now))
		return
	}

	_, active := s.Catalog()
	w.Header().Set("X-Data-Source", SourceAPI)
	writeJSON(w, catalog.FromAbove(passes, active, now))
}

// HandleCategories serves the N2YO search categories.
func (s *ServerContext) HandleCategories(w http.ResponseWriter, _ *http.Request) {
	categories := s.Categories
	if categories == nil {
		categories = []catalog.Category{}
	}
	writeJSON(w, categories)
}

// HandleFavicon serves the site favicon.
func (s *ServerContext) HandleFavicon(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/favicon.svg" {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	_, _ = w.Write(s.Favicon)
}

// HandleIndex serves the main HTML application.
func (s *ServerContext) HandleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" && strings.Contains(r.URL.Path, ".") {
		http.NotFound(w, r)
		return
	}

	etag := fmt.Sprintf(`"%x-%x"`, len(s.IndexHTML), crc32.ChecksumIEEE(s.IndexHTML))

	if match := r.Header.Get("If-None-Match"); match == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "public, no-cache")
	_, _ = w.Write(s.IndexHTML)
}

// observer returns the configured observer overridden by lat/lng/alt query values.
func (s *ServerContext) observer(r *http.Request) (tracker.Observer, error) {
	q := r.URL.Query()
	def := s.Config.Observer

	lat, err := floatParam(q.Get("lat"), def.Latitude)
	if err != nil {
		return tracker.Observer{}, fmt.Errorf("invalid lat: %w", err)
	}
	lng, err := floatParam(q.Get("lng"), def.Longitude)
	if err != nil {
		return tracker.Observer{}, fmt.Errorf("invalid lng: %w", err)
	}
	alt, err := floatParam(q.Get("alt"), def.Altitude)
	if err != nil {
		return tracker.Observer{}, fmt.Errorf("invalid alt: %w", err)
	}

	return tracker.Observer{Latitude: lat, Longitude: lng, Altitude: alt}, nil
}

// errNotFinite rejects NaN and Inf query values, JSON cannot carry them.
var errNotFinite = errors.New("value must be finite")

func floatParam(v string, def float64) (float64, error) {
	if v == "" {
		return def, nil
	}

	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, errNotFinite
	}
	return f, nil
}

func writeJSON(w http.ResponseWriter, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	// Ignoring error as we cannot handle client disconnects
	_, _ = w.Write(append(data, '\n'))
}

// HandleFollow streams placements of /api/follow/{norad} as server-sent events,
// one every poll interval, until the client disconnects.
func (s *ServerContext) HandleFollow(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/follow/"), "/"))
	if err != nil || id <= 0 {
		http.Error(w, "invalid NORAD id", http.StatusBadRequest)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	obs, err := s.observer(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	rec := s.record(id)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	log.Debug().Int("norad_id", id).Dur("interval", s.Config.PollInterval).Msg("Follow stream opened")

	err = s.Tracker.Follow(r.Context(), rec, obs, s.Config.PollInterval, func(p tracker.Placement) {
		data, err := json.Marshal(p)
		if err != nil {
			log.Error().Err(err).Msg("Failed to encode placement")
			return
		}
		_, _ = fmt.Fprintf(w, "event: placement\ndata: %s\n\n", data)
		flusher.Flush()
	})

	log.Debug().Err(err).Int("norad_id", id).Msg("Follow stream closed")
}

// record returns the active catalog record of id, or a bare record naming it.
func (s *ServerContext) record(id int) catalog.Record {
	_, active := s.Catalog()
	if rec, ok := active[id]; ok {
		return rec
	}
	return catalog.Record{NoradCatID: id, ObjectName: fmt.Sprintf("NORAD %d", id)}
}

package tracker

import (
	"context"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/woozymasta/satglobe/internal/catalog"
	"github.com/woozymasta/satglobe/internal/geo"
	"github.com/woozymasta/satglobe/internal/metrics"
	"github.com/woozymasta/satglobe/internal/orbit"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

var iss = catalog.Record{ObjectName: "ISS (ZARYA)", NoradCatID: 25544, MeanMotion: 15.5, Eccentricity: 0.0005}

type fakeSource struct {
	err     error
	samples []Position
	calls   int
	mu      sync.Mutex
}

func (f *fakeSource) Positions(_ context.Context, _ int, _ Observer, _ int) ([]Position, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.samples, f.err
}

func (f *fakeSource) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func nearVec(a, b geo.Vector3) bool {
	const eps = 1e-9
	return math.Abs(a.X-b.X) < eps && math.Abs(a.Y-b.Y) < eps && math.Abs(a.Z-b.Z) < eps
}

func TestMockPosition(t *testing.T) {
	now := time.Unix(1700000000, 0)
	obs := Observer{Latitude: 10, Longitude: 20}

	got := MockPosition(25544, obs, now, "active")
	// 25544 % 10 = 4, % 15 = 14, % 5 = 4, % 180 = 164, % 60 = 44
	want := Position{
		SatLatitude:  18,
		SatLongitude: 48,
		SatAltitude:  800,
		Azimuth:      344,
		Elevation:    14,
		Timestamp:    1700000000,
		Status:       "active",
	}
	if got != want {
		t.Fatalf("MockPosition = %+v, want %+v", got, want)
	}
}

func TestPlaceUsesRegimeHeight(t *testing.T) {
	obs := Observer{Latitude: 0, Longitude: 0}
	samples := []Position{
		{SatLatitude: 0, SatLongitude: 0, Timestamp: 1},
		{SatLatitude: 3, SatLongitude: 4, Timestamp: 10},
	}

	p, err := Place(iss, samples, obs, SourceAPI)
	if err != nil {
		t.Fatalf("Place: %v", err)
	}

	if p.Regime.Tag != orbit.TagLEO || p.Color != "#ffc0cb" {
		t.Fatalf("regime = %v color = %s", p.Regime.Tag, p.Color)
	}
	if !nearVec(p.Satellite, geo.Project(0, 0, 5.5)) {
		t.Fatalf("satellite = %+v", p.Satellite)
	}
	if math.Abs(p.Satellite.Length()-5.5) > 1e-9 || math.Abs(p.Shadow.Length()-geo.ShadowRadius) > 1e-9 {
		t.Fatalf("radii = %v %v", p.Satellite.Length(), p.Shadow.Length())
	}
	if math.Abs(p.Observer.Length()-geo.ObserverRadius) > 1e-9 {
		t.Fatalf("observer radius = %v", p.Observer.Length())
	}

	// direction (4, 3) / 5 one degree ahead
	if math.Abs(p.Heading.Latitude-0.6) > 1e-9 || math.Abs(p.Heading.Longitude-0.8) > 1e-9 {
		t.Fatalf("heading = %+v", p.Heading)
	}
	if !nearVec(p.Direction, geo.Project(0.6, 0.8, geo.DirectionRadius)) {
		t.Fatalf("direction = %+v", p.Direction)
	}
	if p.Status != catalog.StatusInactive || p.Source != SourceAPI {
		t.Fatalf("status = %q source = %q", p.Status, p.Source)
	}
	if math.Abs(p.Map.Satellite.X-0.5) > 1e-9 || math.Abs(p.Map.Satellite.Y-0.5) > 1e-9 {
		t.Fatalf("map = %+v", p.Map.Satellite)
	}
}

func TestPlaceSingleSampleUsesMockHeading(t *testing.T) {
	samples := []Position{{SatLatitude: 10, SatLongitude: 20, Status: "active"}}
	p, err := Place(iss, samples, Observer{}, SourceMock)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(p.Heading.Latitude-10.1) > 1e-9 || math.Abs(p.Heading.Longitude-20.1) > 1e-9 {
		t.Fatalf("heading = %+v, want 10.1/20.1", p.Heading)
	}
	if p.Status != "active" {
		t.Fatalf("sample status should win, got %q", p.Status)
	}
}

func TestPlaceHEOHeight(t *testing.T) {
	molniya := catalog.Record{NoradCatID: 25485, MeanMotion: 2.006, Eccentricity: 0.72}
	p, err := Place(molniya, []Position{{SatLatitude: 60}}, Observer{}, SourceAPI)
	if err != nil {
		t.Fatal(err)
	}
	if p.Regime.Tag != orbit.TagHEO || math.Abs(p.Satellite.Length()-7.25) > 1e-9 {
		t.Fatalf("regime = %v radius = %v", p.Regime.Tag, p.Satellite.Length())
	}
}

func TestPlaceWithoutSamples(t *testing.T) {
	if _, err := Place(iss, nil, Observer{}, SourceAPI); !errors.Is(err, ErrNoPositions) {
		t.Fatalf("err = %v, want ErrNoPositions", err)
	}
}

func TestTrackFallsBackToMock(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := metrics.New(reg)
	if err != nil {
		t.Fatal(err)
	}

	for name, src := range map[string]*fakeSource{
		"error": {err: errors.New("boom")},
		"empty": {samples: []Position{}},
	} {
		t.Run(name, func(t *testing.T) {
			tr := New(src, 10, m)
			tr.Now = func() time.Time { return time.Unix(42, 0) }

			p := tr.Track(context.Background(), iss, Observer{Latitude: 1, Longitude: 2})
			if p.Source != SourceMock {
				t.Fatalf("source = %q, want mock", p.Source)
			}
			if p.Position != MockPosition(iss.NoradCatID, Observer{Latitude: 1, Longitude: 2}, time.Unix(42, 0), catalog.StatusInactive) {
				t.Fatalf("position = %+v", p.Position)
			}
		})
	}

	if got := testutil.ToFloat64(m.TrackFallbacks); got != 2 {
		t.Fatalf("fallbacks = %v, want 2", got)
	}
}

func TestTrackUsesSource(t *testing.T) {
	src := &fakeSource{samples: []Position{{SatLatitude: 51.5, SatLongitude: -0.1}}}
	p := New(src, 10, nil).Track(context.Background(), iss, Observer{})
	if p.Source != SourceAPI || p.Position.SatLatitude != 51.5 {
		t.Fatalf("placement = %+v", p)
	}
}

func TestFollowStopsOnCancel(t *testing.T) {
	src := &fakeSource{samples: []Position{{SatLatitude: 1}}}
	tr := New(src, 10, nil)

	ctx, cancel := context.WithCancel(context.Background())
	var mu sync.Mutex
	updates := 0

	done := make(chan error, 1)
	go func() {
		done <- tr.Follow(ctx, iss, Observer{}, 5*time.Millisecond, func(Placement) {
			mu.Lock()
			updates++
			n := updates
			mu.Unlock()
			if n == 3 {
				cancel()
			}
		})
	}()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("Follow returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("Follow did not stop")
	}

	if src.Calls() < 3 {
		t.Fatalf("calls = %d, want >= 3", src.Calls())
	}
}

func TestClientPositions(t *testing.T) {
	var gotPath, gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.URL.Query().Get("apiKey")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"info":{"satname":"SPACE STATION","satid":25544},"positions":[
			{"satlatitude":-39.9,"satlongitude":158.3,"sataltitude":417.8,"azimuth":254.3,"elevation":-69.2,"timestamp":1521354418},
			{"satlatitude":-39.8,"satlongitude":158.4,"sataltitude":417.8,"azimuth":254.4,"elevation":-69.1,"timestamp":1521354419}]}`))
	}))
	defer srv.Close()

	c := &Client{HTTP: srv.Client(), BaseURL: srv.URL + "/rest/v1/satellite/", APIKey: "KEY"}
	got, err := c.Positions(context.Background(), 25544, Observer{Latitude: 41.702, Longitude: -76.014}, 2)
	if err != nil {
		t.Fatalf("Positions: %v", err)
	}
	if gotPath != "/rest/v1/satellite/positions/25544/41.702/-76.014/0/2" || gotKey != "KEY" {
		t.Fatalf("request path = %q key = %q", gotPath, gotKey)
	}
	if len(got) != 2 || got[0].SatAltitude != 417.8 || got[0].Time().Year() != 2018 {
		t.Fatalf("positions = %+v", got)
	}
}

func TestClientErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.Contains(r.URL.Path, "/positions/1/"):
			_, _ = w.Write([]byte(`{"positions":[]}`))
		case strings.Contains(r.URL.Path, "/positions/2/"):
			_, _ = w.Write([]byte(`{"error":"Invalid API Key!"}`))
		default:
			http.Error(w, "nope", http.StatusForbidden)
		}
	}))
	defer srv.Close()

	c := &Client{HTTP: srv.Client(), BaseURL: srv.URL}
	if _, err := c.Positions(context.Background(), 1, Observer{}, 1); !errors.Is(err, ErrNoPositions) {
		t.Errorf("empty positions err = %v", err)
	}
	if _, err := c.Positions(context.Background(), 2, Observer{}, 1); err == nil || !strings.Contains(err.Error(), "Invalid API Key") {
		t.Errorf("api error = %v", err)
	}
	if _, err := c.Positions(context.Background(), 3, Observer{}, 1); err == nil || !strings.Contains(err.Error(), "403") {
		t.Errorf("status error = %v", err)
	}
}

func TestClientAbove(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/above/41.702/-76.014/0/70/18" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`{"info":{"category":"Amateur radio","satcount":1},"above":[
			{"satid":20480,"satname":"JAS JO-20","intDesignator":"1990-013C","satlat":49.5,"satlng":-96.4,"satalt":1227.9}]}`))
	}))
	defer srv.Close()

	c := &Client{HTTP: srv.Client(), BaseURL: srv.URL}
	got, err := c.Above(context.Background(), Observer{Latitude: 41.702, Longitude: -76.014}, 70, 18)
	if err != nil {
		t.Fatalf("Above: %v", err)
	}
	if len(got) != 1 || got[0].SatID != 20480 || got[0].SatAlt != 1227.9 {
		t.Fatalf("above = %+v", got)
	}
}

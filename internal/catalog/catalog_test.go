package catalog

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/woozymasta/satglobe/internal/orbit"
)

const sampleGP = `[
  {"OBJECT_NAME":"ISS (ZARYA)","OBJECT_ID":"1998-067A","EPOCH":"2025-03-01T12:00:00","MEAN_MOTION":15.5,"ECCENTRICITY":0.0005,"INCLINATION":51.64,"RA_OF_ASC_NODE":10,"ARG_OF_PERICENTER":20,"MEAN_ANOMALY":30,"EPHEMERIS_TYPE":0,"CLASSIFICATION_TYPE":"U","NORAD_CAT_ID":25544,"ELEMENT_SET_NO":999,"REV_AT_EPOCH":1,"BSTAR":0.0001,"MEAN_MOTION_DOT":0.0001,"MEAN_MOTION_DDOT":0},
  {"OBJECT_NAME":"STARLINK-1007","EPOCH":"2025-03-01T12:00:00","MEAN_MOTION":15.06,"ECCENTRICITY":0.0001,"NORAD_CAT_ID":44713},
  {"OBJECT_NAME":"Starlink-1008","EPOCH":"2025-03-01T12:00:00","MEAN_MOTION":15.06,"ECCENTRICITY":0.0001,"NORAD_CAT_ID":44714},
  {"OBJECT_NAME":"NAVSTAR 43 (USA 132)","EPOCH":"2025-03-01T12:00:00","MEAN_MOTION":2.0056,"ECCENTRICITY":0.01,"NORAD_CAT_ID":24876},
  {"OBJECT_NAME":"MOLNIYA 1-91","EPOCH":"2025-03-01T12:00:00","MEAN_MOTION":2.006,"ECCENTRICITY":0.72,"NORAD_CAT_ID":25485},
  {"OBJECT_NAME":"GOES 16","EPOCH":"2025-03-01T12:00:00","MEAN_MOTION":1.0027,"ECCENTRICITY":0.0001,"NORAD_CAT_ID":41866}
]`

func sampleRecords(t *testing.T) []Record {
	t.Helper()
	records, err := Decode(strings.NewReader(sampleGP))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	return records
}

func TestDecode(t *testing.T) {
	records := sampleRecords(t)
	if len(records) != 6 {
		t.Fatalf("records = %d, want 6", len(records))
	}
	iss := records[0]
	if iss.ObjectName != "ISS (ZARYA)" || iss.NoradCatID != 25544 || iss.Inclination != 51.64 || iss.ClassificationType != "U" {
		t.Fatalf("unexpected ISS record: %+v", iss)
	}
	if iss.Status != "" {
		t.Fatalf("status should be empty before search, got %q", iss.Status)
	}

	if _, err := Decode(strings.NewReader("{not json")); err == nil {
		t.Fatalf("expected error for malformed catalog")
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "satellites.json")
	if err := os.WriteFile(path, []byte(sampleGP), 0644); err != nil {
		t.Fatal(err)
	}
	records, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if len(records) != 6 {
		t.Fatalf("records = %d", len(records))
	}

	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestRecordRegime(t *testing.T) {
	want := map[int]orbit.Tag{
		25544: orbit.TagLEO,
		44713: orbit.TagLEO,
		24876: orbit.TagMEO,
		25485: orbit.TagHEO,
		41866: orbit.TagGEO,
	}
	for _, r := range sampleRecords(t) {
		tag, ok := want[r.NoradCatID]
		if !ok {
			continue
		}
		if got := r.Regime().Tag; got != tag {
			t.Errorf("%s: regime %v, want %v (alt %.0f km)", r.ObjectName, got, tag, r.Altitude())
		}
	}
}

func TestSearch(t *testing.T) {
	records := sampleRecords(t)

	tests := []struct {
		term string
		want []int
	}{
		{"", nil},
		{"s", nil},
		{"starlink", []int{44713, 44714}},
		{"STARLINK-100", []int{44713, 44714}},
		{"zarya", []int{25544}},
		{"2554", []int{25544}},
		{"448", nil},
		{"4471", []int{44713, 44714}},
		{"nothing-like-this", nil},
	}

	for _, tt := range tests {
		got := Search(records, tt.term)
		if got == nil {
			t.Fatalf("Search(%q) returned nil slice", tt.term)
		}
		if len(got) != len(tt.want) {
			t.Errorf("Search(%q) = %d results, want %d", tt.term, len(got), len(tt.want))
			continue
		}
		for i, id := range tt.want {
			if got[i].NoradCatID != id {
				t.Errorf("Search(%q)[%d] = %d, want %d", tt.term, i, got[i].NoradCatID, id)
			}
			if got[i].Status != StatusActive {
				t.Errorf("Search(%q)[%d] status = %q, want active", tt.term, i, got[i].Status)
			}
		}
	}

	if records[1].Status != "" {
		t.Fatalf("Search must not mutate the catalog")
	}
}

func TestSearchLimit(t *testing.T) {
	records := make([]Record, 120)
	for i := range records {
		records[i] = Record{ObjectName: "STARLINK", NoradCatID: 50000 + i}
	}
	got := Search(records, "star")
	if len(got) != MaxResults {
		t.Fatalf("results = %d, want %d", len(got), MaxResults)
	}
	if got[0].NoradCatID != 50000 || got[MaxResults-1].NoradCatID != 50000+MaxResults-1 {
		t.Fatalf("results not in catalog order")
	}
}

func TestPresets(t *testing.T) {
	records := sampleRecords(t)

	iss, ok := FindISS(records)
	if !ok || iss.NoradCatID != NoradISS || iss.Status != StatusActive {
		t.Fatalf("FindISS = %+v, %v", iss, ok)
	}
	if _, ok := FindISS(records[1:]); ok {
		t.Fatalf("FindISS found ISS in a catalog without it")
	}

	if got := Starlink(records); len(got) != 2 {
		t.Errorf("Starlink = %d, want 2", len(got))
	}
	if got := GPS(records); len(got) != 1 || got[0].NoradCatID != 24876 {
		t.Errorf("GPS = %+v", got)
	}
	if got := HighlyEccentric(records); len(got) != 1 || got[0].NoradCatID != 25485 {
		t.Errorf("HighlyEccentric = %+v", got)
	}

	for _, name := range []string{"iss", "ISS", "starlink", "gps", "heo"} {
		got, ok := Preset(records, name)
		if !ok || len(got) == 0 {
			t.Errorf("Preset(%q) = %d, %v", name, len(got), ok)
		}
	}
	if got, ok := Preset(records[1:], "iss"); !ok || len(got) != 0 {
		t.Errorf("Preset(iss) without ISS = %d, %v", len(got), ok)
	}
	if _, ok := Preset(records, "cubesats"); ok {
		t.Errorf("Preset(cubesats) should be unknown")
	}
}

func TestFromAbove(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	active := NewIndex(sampleRecords(t))

	passes := []AbovePass{
		{SatName: "ISS (ZARYA)", SatID: 25544, SatAlt: 420},
		{SatName: "INTELSAT 901", SatID: 26824, SatAlt: 35790},
	}
	got := FromAbove(passes, active, now)
	if len(got) != 2 {
		t.Fatalf("records = %d", len(got))
	}

	if got[0].Status != StatusActive || got[1].Status != StatusInactive {
		t.Fatalf("statuses = %q, %q", got[0].Status, got[1].Status)
	}
	if got[0].Inclination != 90 || got[1].Inclination != 0 {
		t.Fatalf("inclinations = %v, %v", got[0].Inclination, got[1].Inclination)
	}
	if got[0].Eccentricity != 0.0001 || got[0].ClassificationType != "U" || got[0].ElementSetNo != 999 {
		t.Fatalf("placeholders not set: %+v", got[0])
	}
	if got[0].Epoch != "2025-03-01T12:00:00Z" {
		t.Fatalf("epoch = %q", got[0].Epoch)
	}
	if alt := got[0].Altitude(); math.Abs(alt-420) > 1e-6 {
		t.Fatalf("altitude round trip = %v, want 420", alt)
	}
	if got[1].Regime().Tag != orbit.TagGEO {
		t.Fatalf("GEO pass classified as %v", got[1].Regime().Tag)
	}
}

func TestMockAbove(t *testing.T) {
	got := MockAbove(5, time.Unix(0, 0))
	if len(got) != 5 {
		t.Fatalf("mock records = %d", len(got))
	}
	for i, r := range got {
		if r.NoradCatID != 1000+i || r.MeanMotion != 15 || r.Status != StatusInactive {
			t.Errorf("mock[%d] = %+v", i, r)
		}
	}
	if got[4].ObjectName != "Mock Satellite 5" {
		t.Errorf("name = %q", got[4].ObjectName)
	}
}

func TestLoadCategories(t *testing.T) {
	dir := t.TempDir()

	jsonPath := filepath.Join(dir, "search-categories.json")
	if err := os.WriteFile(jsonPath, []byte(`[{"id":52,"Category":"Starlink"},{"id":20,"Category":"GPS Operational"}]`), 0644); err != nil {
		t.Fatal(err)
	}
	yamlPath := filepath.Join(dir, "categories.yaml")
	if err := os.WriteFile(yamlPath, []byte("- id: 2\n  name: International Space Station\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cats, err := LoadCategories(jsonPath)
	if err != nil || len(cats) != 2 || cats[0].ID != 52 || cats[0].Name != "Starlink" {
		t.Fatalf("json categories = %+v, %v", cats, err)
	}

	cats, err = LoadCategories(yamlPath)
	if err != nil || len(cats) != 1 || cats[0].ID != 2 {
		t.Fatalf("yaml categories = %+v, %v", cats, err)
	}

	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte("[{"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadCategories(bad); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestGroupURL(t *testing.T) {
	if got := GroupQuery("gps-ops"); got != "GROUP=gps-ops&FORMAT=json" {
		t.Fatalf("GroupQuery = %q", got)
	}
	if got := GPURL("https://celestrak.org/NORAD/elements/", GroupQuery(GroupActive)); got != "https://celestrak.org/NORAD/elements/gp.php?GROUP=active&FORMAT=json" {
		t.Fatalf("GPURL = %q", got)
	}
}

func TestSearchCountsCharacters(t *testing.T) {
	records := []Record{{ObjectName: "ÉTOILE", NoradCatID: 1}, {ObjectName: "Élan", NoradCatID: 2}}

	if got := Search(records, "É"); len(got) != 0 {
		t.Fatalf("single accented character matched %d records", len(got))
	}
	if got := Search(records, "ét"); len(got) != 1 || got[0].NoradCatID != 1 {
		t.Fatalf("two characters = %+v", got)
	}
}

func TestLoadCountries(t *testing.T) {
	dir := t.TempDir()

	jsonPath := filepath.Join(dir, "countries.json")
	body := `[{"name":{"common":"Japan"},"latlng":[36,138]},
		{"name":{"common":"Antarctica"},"latlng":[-90,0]},
		{"name":{"common":"Nowhere"},"latlng":[]}]`
	if err := os.WriteFile(jsonPath, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	yamlPath := filepath.Join(dir, "countries.yaml")
	if err := os.WriteFile(yamlPath, []byte("- {name: Peru, lat: -10, lng: -76}\n- {name: Chile, lat: -30, lng: -71}\n"), 0644); err != nil {
		t.Fatal(err)
	}

	got, err := LoadCountries(jsonPath)
	if err != nil {
		t.Fatalf("json: %v", err)
	}
	if len(got) != 2 || got[0].Name != "Antarctica" || got[1].Latitude != 36 || got[1].Longitude != 138 {
		t.Fatalf("json countries = %+v", got)
	}

	got, err = LoadCountries(yamlPath)
	if err != nil || len(got) != 2 || got[0].Name != "Chile" || got[1].Longitude != -76 {
		t.Fatalf("yaml countries = %+v, %v", got, err)
	}

	if _, err := LoadCountries(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

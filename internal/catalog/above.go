package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/woozymasta/satglobe/internal/orbit"

	"gopkg.in/yaml.v3"
)

// GEOAltitudeKm is the geostationary altitude used to guess inclination for "above" results.
const GEOAltitudeKm = 35786.0

// AbovePass is a satellite reported overhead by the N2YO "above" endpoint.
type AbovePass struct {
	SatName string  `json:"satname"`
	IntDes  string  `json:"intDesignator,omitempty"`
	SatID   int     `json:"satid"`
	SatLat  float64 `json:"satlat"`
	SatLng  float64 `json:"satlng"`
	SatAlt  float64 `json:"satalt"`
}

// FromAbove converts "above" passes into catalog records. Orbital elements the
// endpoint does not return are filled with near-circular placeholders. A pass is
// active when its id is present in the active catalog.
func FromAbove(passes []AbovePass, active Index, now time.Time) []Record {
	epoch := now.UTC().Format(time.RFC3339)
	records := make([]Record, 0, len(passes))
	for _, p := range passes {
		inclination := 90.0
		if p.SatAlt > GEOAltitudeKm {
			inclination = 0
		}

		status := StatusInactive
		if active.Has(p.SatID) {
			status = StatusActive
		}

		records = append(records, Record{
			ObjectName:         p.SatName,
			NoradCatID:         p.SatID,
			MeanMotion:         orbit.MeanMotionFromAltitude(p.SatAlt),
			Epoch:              epoch,
			Eccentricity:       0.0001,
			Inclination:        inclination,
			ClassificationType: "U",
			ElementSetNo:       999,
			Status:             status,
		})
	}
	return records
}

// MockAbove returns n placeholder records used when the "above" query fails.
func MockAbove(n int, now time.Time) []Record {
	epoch := now.UTC().Format(time.RFC3339)
	records := make([]Record, 0, n)
	for i := 0; i < n; i++ {
		records = append(records, Record{
			ObjectName:         fmt.Sprintf("Mock Satellite %d", i+1),
			NoradCatID:         1000 + i,
			MeanMotion:         15.0,
			Epoch:              epoch,
			Eccentricity:       0.0001,
			Inclination:        90,
			ClassificationType: "U",
			ElementSetNo:       999,
			Status:             StatusInactive,
		})
	}
	return records
}

// Category is an N2YO satellite category offered as an "above" filter.
type Category struct {
	Name string `json:"Category" yaml:"name"`
	ID   int    `json:"id" yaml:"id"`
}

// LoadCategories reads categories from a JSON or YAML file, chosen by extension.
func LoadCategories(path string) ([]Category, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var categories []Category
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &categories)
	default:
		err = json.Unmarshal(data, &categories)
	}
	if err != nil {
		return nil, fmt.Errorf("parse categories %s: %w", path, err)
	}

	return categories, nil
}

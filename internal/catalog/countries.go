package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Country is an observer preset placed at a country's reference point.
type Country struct {
	Name      string  `json:"name" yaml:"name"`
	Latitude  float64 `json:"lat" yaml:"lat"`
	Longitude float64 `json:"lng" yaml:"lng"`
}

// restCountry is the REST Countries JSON shape: {"name":{"common":..},"latlng":[lat,lng]}.
type restCountry struct {
	Name struct {
		Common string `json:"common"`
	} `json:"name"`
	LatLng []float64 `json:"latlng"`
}

// LoadCountries reads observer presets sorted by name. YAML files hold
// name/lat/lng entries; JSON files use the REST Countries format.
// JSON entries without a two-element latlng are skipped.
func LoadCountries(path string) ([]Country, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var countries []Country
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &countries)
	default:
		var raw []restCountry
		if err = json.Unmarshal(data, &raw); err == nil {
			countries = make([]Country, 0, len(raw))
			for _, c := range raw {
				if len(c.LatLng) != 2 || c.Name.Common == "" {
					continue
				}
				countries = append(countries, Country{Name: c.Name.Common, Latitude: c.LatLng[0], Longitude: c.LatLng[1]})
			}
		}
	}
	if err != nil {
		return nil, fmt.Errorf("parse countries %s: %w", path, err)
	}

	sort.SliceStable(countries, func(i, j int) bool {
		return countries[i].Name < countries[j].Name
	})

	return countries, nil
}

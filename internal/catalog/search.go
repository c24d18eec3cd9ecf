package catalog

import (
	"net/url"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/woozymasta/satglobe/internal/orbit"
)

// Search limits.
const (
	MinSearchLength = 2
	MaxResults      = 50
)

// NoradISS is the catalog number of the International Space Station.
const NoradISS = 25544

// Search returns records whose name or NORAD id contains term (case-insensitive).
// Terms shorter than MinSearchLength characters yield no results; at most MaxResults are returned.
func Search(records []Record, term string) []Record {
	if utf8.RuneCountInString(term) < MinSearchLength {
		return []Record{}
	}

	term = strings.ToLower(term)
	results := make([]Record, 0)
	for _, r := range records {
		if strings.Contains(strings.ToLower(r.ObjectName), term) ||
			strings.Contains(strconv.Itoa(r.NoradCatID), term) {
			results = append(results, r.WithStatus(StatusActive))
			if len(results) == MaxResults {
				break
			}
		}
	}

	return results
}

// FindISS returns the ISS record if present.
func FindISS(records []Record) (Record, bool) {
	for _, r := range records {
		if r.NoradCatID == NoradISS {
			return r.WithStatus(StatusActive), true
		}
	}
	return Record{}, false
}

// Starlink returns all records whose name contains "starlink".
func Starlink(records []Record) []Record {
	return filterName(records, "starlink")
}

// GPS returns the NAVSTAR (GPS) constellation.
func GPS(records []Record) []Record {
	return filterName(records, "navstar")
}

// HighlyEccentric returns records classified as HEO by eccentricity.
func HighlyEccentric(records []Record) []Record {
	return filter(records, func(r Record) bool {
		return r.Eccentricity > orbit.HighEccentricity
	})
}

// Preset returns the records for a named preset: iss, starlink, gps or heo.
// ok is false for unknown names.
func Preset(records []Record, name string) ([]Record, bool) {
	switch strings.ToLower(name) {
	case "iss":
		if r, found := FindISS(records); found {
			return []Record{r}, true
		}
		return []Record{}, true
	case "starlink":
		return Starlink(records), true
	case "gps":
		return GPS(records), true
	case "heo":
		return HighlyEccentric(records), true
	default:
		return nil, false
	}
}

func filterName(records []Record, needle string) []Record {
	return filter(records, func(r Record) bool {
		return strings.Contains(strings.ToLower(r.ObjectName), needle)
	})
}

func filter(records []Record, keep func(Record) bool) []Record {
	out := make([]Record, 0)
	for _, r := range records {
		if keep(r) {
			out = append(out, r.WithStatus(StatusActive))
		}
	}
	return out
}

// GroupActive is the CelesTrak group of all active satellites.
const GroupActive = "active"

// GroupQuery returns the gp.php query string of a CelesTrak group in JSON format.
func GroupQuery(group string) string {
	return "GROUP=" + url.QueryEscape(group) + "&FORMAT=json"
}

// GPURL joins a CelesTrak elements base URL and a gp.php query.
func GPURL(base, query string) string {
	return strings.TrimRight(base, "/") + "/gp.php?" + query
}

// Package catalog handles the satellite catalog in CelesTrak GP JSON format:
// loading, searching and the preset filters offered by the viewer.
package catalog

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/woozymasta/satglobe/internal/orbit"
)

// Catalog statuses.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// Record is a single CelesTrak GP element set.
type Record struct {
	ObjectName         string  `json:"OBJECT_NAME" yaml:"object_name"`
	ObjectID           string  `json:"OBJECT_ID,omitempty" yaml:"object_id,omitempty"`
	Epoch              string  `json:"EPOCH" yaml:"epoch"`
	ClassificationType string  `json:"CLASSIFICATION_TYPE" yaml:"classification_type"`
	Status             string  `json:"STATUS,omitempty" yaml:"status,omitempty"`
	MeanMotion         float64 `json:"MEAN_MOTION" yaml:"mean_motion"`
	Eccentricity       float64 `json:"ECCENTRICITY" yaml:"eccentricity"`
	Inclination        float64 `json:"INCLINATION" yaml:"inclination"`
	RAOfAscNode        float64 `json:"RA_OF_ASC_NODE" yaml:"ra_of_asc_node"`
	ArgOfPericenter    float64 `json:"ARG_OF_PERICENTER" yaml:"arg_of_pericenter"`
	MeanAnomaly        float64 `json:"MEAN_ANOMALY" yaml:"mean_anomaly"`
	BStar              float64 `json:"BSTAR" yaml:"bstar"`
	MeanMotionDot      float64 `json:"MEAN_MOTION_DOT" yaml:"mean_motion_dot"`
	MeanMotionDDot     float64 `json:"MEAN_MOTION_DDOT" yaml:"mean_motion_ddot"`
	NoradCatID         int     `json:"NORAD_CAT_ID" yaml:"norad_cat_id"`
	EphemerisType      int     `json:"EPHEMERIS_TYPE" yaml:"ephemeris_type"`
	ElementSetNo       int     `json:"ELEMENT_SET_NO" yaml:"element_set_no"`
	RevAtEpoch         int     `json:"REV_AT_EPOCH" yaml:"rev_at_epoch"`
}

// Altitude approximates the altitude in km from the mean motion,
// treating the orbit as circular.
func (r Record) Altitude() float64 {
	return orbit.AltitudeFromMeanMotion(r.MeanMotion)
}

// Regime classifies the record using its approximate altitude and eccentricity.
func (r Record) Regime() orbit.Regime {
	return orbit.Classify(r.Altitude(), r.Eccentricity)
}

// WithStatus returns a copy of r with the given status.
func (r Record) WithStatus(status string) Record {
	r.Status = status
	return r
}

// StatusOr returns the record status, or fallback if none is set.
func (r Record) StatusOr(fallback string) string {
	if r.Status == "" {
		return fallback
	}
	return r.Status
}

// Decode reads a JSON array of GP records.
func Decode(r io.Reader) ([]Record, error) {
	var records []Record
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return records, nil
}

// LoadFile reads a GP JSON catalog from disk.
func LoadFile(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	return Decode(f)
}

// Index maps NORAD ids to records.
type Index map[int]Record

// NewIndex indexes records by NORAD id. Later duplicates win.
func NewIndex(records []Record) Index {
	idx := make(Index, len(records))
	for _, r := range records {
		idx[r.NoradCatID] = r
	}
	return idx
}

// Has reports whether the id is present.
func (i Index) Has(id int) bool {
	_, ok := i[id]
	return ok
}

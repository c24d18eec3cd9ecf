// Package orbit classifies satellites into display regimes (LEO/MEO/GEO/HEO)
// and maps each regime to a fixed render height and color.
package orbit

import (
	"fmt"
	"strings"
)

// Tag identifies an orbit regime.
type Tag uint8

// Known regimes. TagDefault is the fallback entry and is never produced by Classify.
const (
	TagDefault Tag = iota
	TagLEO
	TagMEO
	TagGEO
	TagHEO
)

var tagNames = [...]string{
	TagDefault: "DEFAULT",
	TagLEO:     "LEO",
	TagMEO:     "MEO",
	TagGEO:     "GEO",
	TagHEO:     "HEO",
}

// Regime is a row of the regime table.
type Regime struct {
	Tag          Tag     `json:"tag" yaml:"tag"`
	HeightOffset float64 `json:"height" yaml:"height"` // globe units above the reference sphere
	Color        uint32  `json:"color" yaml:"color"`   // packed 0xRRGGBB
}

var regimes = [...]Regime{
	TagDefault: {Tag: TagDefault, HeightOffset: 0.5, Color: 0xFFC0CB},
	TagLEO:     {Tag: TagLEO, HeightOffset: 0.5, Color: 0xFFC0CB},
	TagMEO:     {Tag: TagMEO, HeightOffset: 1.25, Color: 0xFF4500},
	TagGEO:     {Tag: TagGEO, HeightOffset: 2.0, Color: 0x3BF7FF},
	TagHEO:     {Tag: TagHEO, HeightOffset: 2.25, Color: 0xFF00FF},
}

// Lookup returns the table entry for tag, or the DEFAULT entry if tag is unknown.
func Lookup(tag Tag) Regime {
	if int(tag) >= len(regimes) {
		return regimes[TagDefault]
	}
	return regimes[tag]
}

// Regimes returns a copy of the four classified regimes in LEO, MEO, GEO, HEO order.
func Regimes() []Regime {
	return []Regime{regimes[TagLEO], regimes[TagMEO], regimes[TagGEO], regimes[TagHEO]}
}

// String returns the regime name, "DEFAULT" for unknown tags.
func (t Tag) String() string {
	if int(t) >= len(tagNames) {
		return tagNames[TagDefault]
	}
	return tagNames[t]
}

// ParseTag converts a regime name to a Tag. Unknown names map to TagDefault.
func ParseTag(s string) Tag {
	s = strings.ToUpper(strings.TrimSpace(s))
	for i, name := range tagNames {
		if name == s {
			return Tag(i)
		}
	}
	return TagDefault
}

// MarshalText implements encoding.TextMarshaler.
func (t Tag) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Tag) UnmarshalText(text []byte) error {
	*t = ParseTag(string(text))
	return nil
}

// Hex returns the regime color in CSS notation, e.g. "#ffc0cb".
func (r Regime) Hex() string {
	return fmt.Sprintf("#%06x", r.Color&0xFFFFFF)
}

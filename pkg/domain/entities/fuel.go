package entities

import (
	"strconv"
	"strings"
)

// DefaultFuelFullThreshold is the level at or above which a tank counts as full.
const DefaultFuelFullThreshold = 0.98

// FuelLevel keeps the label as exported alongside its parsed fraction.
type FuelLevel struct {
	Raw   string   `json:"raw,omitempty"`
	Level *float64 `json:"level,omitempty"`
}

// ParseFuel reads "F", "E", "3/4", "75%", "0.75" or "75". Numbers above 1
// are taken as percentages. Anything else keeps the label with no level.
func ParseFuel(raw string) FuelLevel {
	label := strings.TrimSpace(raw)
	f := FuelLevel{Raw: label}
	if label == "" {
		return f
	}

	level, ok := parseFuelLevel(strings.ToUpper(label))
	if ok && level >= 0 && level <= 1 {
		f.Level = &level
	}
	return f
}

func parseFuelLevel(s string) (float64, bool) {
	switch s {
	case "F", "FULL", "PLEIN":
		return 1, true
	case "E", "EMPTY", "VIDE":
		return 0, true
	}

	if num, den, found := strings.Cut(s, "/"); found {
		n, err1 := strconv.ParseFloat(strings.TrimSpace(num), 64)
		d, err2 := strconv.ParseFloat(strings.TrimSpace(den), 64)
		if err1 != nil || err2 != nil || d <= 0 {
			return 0, false
		}
		return n / d, true
	}

	pct := strings.HasSuffix(s, "%")
	s = strings.TrimSpace(strings.TrimSuffix(s, "%"))
	n, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
	if err != nil {
		return 0, false
	}
	if pct || n > 1 {
		n /= 100
	}
	return n, true
}

// Known reports whether a level could be parsed.
func (f FuelLevel) Known() bool {
	return f.Level != nil
}

// IsFull reports whether the level reaches threshold. Unparseable labels and
// empty cells are not full.
func (f FuelLevel) IsFull(threshold float64) bool {
	return f.Level != nil && *f.Level >= threshold
}

func (f FuelLevel) String() string {
	return f.Raw
}

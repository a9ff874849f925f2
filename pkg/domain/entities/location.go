package entities

import (
	"regexp"
	"strings"
)

// LocationCodes expands branch codes such as "CMNO" (Casablanca airport).
// The first three letters name the city, the last letter the site.
type LocationCodes struct {
	Cities map[string]string `mapstructure:"cities" yaml:"cities"`
	Sites  map[string]string `mapstructure:"sites" yaml:"sites"`
}

// DefaultLocationCodes returns the codes used by the Casablanca branches.
func DefaultLocationCodes() LocationCodes {
	return LocationCodes{
		Cities: map[string]string{"CMN": "Casablanca"},
		Sites:  map[string]string{"O": "Airport", "C": "City"},
	}
}

var locationCode = regexp.MustCompile(`^([A-Z]{3,5})[0-9]*$`)

// Resolve expands code. ok is false when code does not look like a branch
// code (upper-case letters, optionally followed by digits).
func (lc LocationCodes) Resolve(code string) (string, bool) {
	m := locationCode.FindStringSubmatch(strings.TrimSpace(code))
	if m == nil {
		return "", false
	}
	letters := m[1]
	city := letters[:3]
	if name, ok := lc.Cities[city]; ok {
		city = name
	}
	if site, ok := lc.Sites[letters[len(letters)-1:]]; ok && len(letters) > 3 {
		return city + " - " + site, true
	}
	return city, true
}

// Normalize returns the expanded label for raw, or raw itself when it is not
// a code.
func (lc LocationCodes) Normalize(raw string) string {
	raw = strings.TrimSpace(raw)
	if name, ok := lc.Resolve(raw); ok {
		return name
	}
	return raw
}

// Package datenorm turns the date cells found in fleet exports into instants.
//
// Exports mix spreadsheet serials, ISO strings and slash dates in both day
// and month first order. Normalize never fails loudly: anything it cannot
// read, including impossible calendar dates such as 31/02/2024, comes back
// as ok == false.
package datenorm

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// DisplayLayout is the day-first layout used when rendering instants.
const DisplayLayout = "02/01/2006 15:04"

const msPerDay = 86400000

// serialLimit bounds serials to years 1..9999.
const serialLimit = 2958466

var (
	slashDate = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})(?:\s+(\d{1,2}):(\d{2})(?::(\d{2}))?(?:\s*([AaPp][Mm]))?)?$`)
	isoDate   = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})(?:[ T](\d{1,2}):(\d{2})(?::(\d{2}))?)?$`)
	dashDate  = regexp.MustCompile(`^(\d{1,2})-(\d{1,2})-(\d{4})$`)
	serialStr = regexp.MustCompile(`^-?\d+(\.\d+)?$`)
)

// layouts are tried in order once the shaped patterns have not matched.
var layouts = []string{
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"02/01/2006 03:04 PM",
	"02/01/2006",
	"01/02/2006 15:04:05",
	"01/02/2006 15:04",
	"01/02/2006 03:04 PM",
	"01/02/2006",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02.01.2006 15:04",
	"02.01.2006",
}

// Normalizer interprets wall-clock values in a fixed location.
type Normalizer struct {
	loc *time.Location
}

// New returns a Normalizer for loc; nil means time.Local.
func New(loc *time.Location) *Normalizer {
	if loc == nil {
		loc = time.Local
	}
	return &Normalizer{loc: loc}
}

// Location returns the zone wall-clock values are read in.
func (n *Normalizer) Location() *time.Location {
	return n.loc
}

// Normalize converts v into an instant. v may be nil, any numeric kind
// (a spreadsheet serial, day 0 = 1899-12-30), a time.Time or a string.
func (n *Normalizer) Normalize(v any) (time.Time, bool) {
	switch x := v.(type) {
	case nil:
		return time.Time{}, false
	case time.Time:
		return n.native(x)
	case *time.Time:
		if x == nil {
			return time.Time{}, false
		}
		return n.native(*x)
	case string:
		return n.parseString(x)
	case float64:
		return n.FromSerial(x)
	case float32:
		return n.FromSerial(float64(x))
	case int:
		return n.FromSerial(float64(x))
	case int8:
		return n.FromSerial(float64(x))
	case int16:
		return n.FromSerial(float64(x))
	case int32:
		return n.FromSerial(float64(x))
	case int64:
		return n.FromSerial(float64(x))
	case uint:
		return n.FromSerial(float64(x))
	case uint8:
		return n.FromSerial(float64(x))
	case uint16:
		return n.FromSerial(float64(x))
	case uint32:
		return n.FromSerial(float64(x))
	case uint64:
		return n.FromSerial(float64(x))
	default:
		return time.Time{}, false
	}
}

// FromSerial converts a spreadsheet serial into a wall-clock instant. The
// fractional part is the time of day, rounded to the millisecond.
func (n *Normalizer) FromSerial(serial float64) (time.Time, bool) {
	if math.IsNaN(serial) || math.IsInf(serial, 0) || math.Abs(serial) >= serialLimit {
		return time.Time{}, false
	}
	ms := int64(math.Round(serial * msPerDay))
	days := ms / msPerDay
	rem := ms % msPerDay
	if rem < 0 {
		days--
		rem += msPerDay
	}
	t := time.Date(1899, time.December, 30+int(days), 0, 0, 0, int(rem)*int(time.Millisecond), n.loc)
	return t, validYear(t)
}

func (n *Normalizer) native(t time.Time) (time.Time, bool) {
	if t.IsZero() || !validYear(t) {
		return time.Time{}, false
	}
	return t, true
}

func (n *Normalizer) parseString(raw string) (time.Time, bool) {
	s := strings.TrimSpace(strings.ReplaceAll(raw, "\u00a0", " "))
	if s == "" {
		return time.Time{}, false
	}

	if m := slashDate.FindStringSubmatch(s); m != nil {
		day, month := dayMonth(atoi(m[1]), atoi(m[2]))
		hh, mm, ss := atoi(m[4]), atoi(m[5]), atoi(m[6])
		switch strings.ToLower(m[7]) {
		case "pm":
			if hh < 12 {
				hh += 12
			}
		case "am":
			if hh == 12 {
				hh = 0
			}
		}
		return n.checked(atoi(m[3]), month, day, hh, mm, ss)
	}

	if m := isoDate.FindStringSubmatch(s); m != nil {
		return n.checked(atoi(m[1]), atoi(m[2]), atoi(m[3]), atoi(m[4]), atoi(m[5]), atoi(m[6]))
	}

	if m := dashDate.FindStringSubmatch(s); m != nil {
		day, month := dayMonth(atoi(m[1]), atoi(m[2]))
		return n.checked(atoi(m[3]), month, day, 0, 0, 0)
	}

	// CSV exports carry serials as text.
	if serialStr.MatchString(s) {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return time.Time{}, false
		}
		return n.FromSerial(f)
	}

	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, s, n.loc); err == nil {
			return n.native(t)
		}
	}

	if t, err := dateparse.ParseIn(s, n.loc); err == nil {
		return n.native(t)
	}
	return time.Time{}, false
}

// checked builds a wall-clock instant and rejects any component that
// time.Date would have normalized into a neighbouring day or month.
func (n *Normalizer) checked(year, month, day, hour, minute, second int) (time.Time, bool) {
	if month < 1 || month > 12 || day < 1 || hour < 0 || hour > 23 || minute < 0 || minute > 59 || second < 0 || second > 59 {
		return time.Time{}, false
	}
	t := time.Date(year, time.Month(month), day, hour, minute, second, 0, n.loc)
	if t.Year() != year || int(t.Month()) != month || t.Day() != day ||
		t.Hour() != hour || t.Minute() != minute || t.Second() != second {
		return time.Time{}, false
	}
	return t, validYear(t)
}

// dayMonth applies the disambiguation rule: a group above 12 must be the
// day, otherwise the first group is the day.
func dayMonth(p1, p2 int) (day, month int) {
	if p1 > 12 {
		return p1, p2
	}
	if p2 > 12 {
		return p2, p1
	}
	return p1, p2
}

func atoi(s string) int {
	if s == "" {
		return 0
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return -1
	}
	return v
}

func validYear(t time.Time) bool {
	y := t.Year()
	return y >= 1 && y <= 9999
}

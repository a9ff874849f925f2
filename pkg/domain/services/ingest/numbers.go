package ingest

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	nonNumeric  = regexp.MustCompile(`[^0-9.,\-]`)
	leadingInt  = regexp.MustCompile(`^\s*([-+]?\d+)`)
	decimalTail = regexp.MustCompile(`^\d{1,2}$`)
	// A lone dot between a non-zero group and exactly three digits groups
	// thousands ("1.250"), as a lone comma does.
	dotGrouping = regexp.MustCompile(`^-?[1-9]\d{0,2}\.\d{3}$`)
)

// Text renders a cell as trimmed text. Whole floats print without a
// fraction so numeric ids read back as written.
func Text(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(strings.ReplaceAll(x, "\u00a0", " "))
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case bool:
		return strconv.FormatBool(x)
	case time.Time:
		return x.Format(time.RFC3339)
	default:
		return strings.TrimSpace(fmt.Sprint(x))
	}
}

// ParseDecimal reads a locale-formatted amount such as "1 250,50 DH",
// "$1,250.50" or "450". Currency symbols and spaces are dropped. When both
// separators appear the last one is the decimal point; a lone comma followed
// by one or two digits is a decimal comma, otherwise commas group thousands.
func ParseDecimal(v any) decimal.NullDecimal {
	switch x := v.(type) {
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return decimal.NullDecimal{}
		}
		return decimal.NewNullDecimal(decimal.NewFromFloat(x))
	case int:
		return decimal.NewNullDecimal(decimal.NewFromInt(int64(x)))
	case int64:
		return decimal.NewNullDecimal(decimal.NewFromInt(x))
	case string:
		s := normalizeSeparators(nonNumeric.ReplaceAllString(x, ""))
		if s == "" || s == "-" {
			return decimal.NullDecimal{}
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return decimal.NullDecimal{}
		}
		return decimal.NewNullDecimal(d)
	default:
		return decimal.NullDecimal{}
	}
}

func normalizeSeparators(s string) string {
	lastComma := strings.LastIndex(s, ",")
	lastDot := strings.LastIndex(s, ".")

	switch {
	case lastComma >= 0 && lastDot >= 0:
		if lastComma > lastDot {
			s = strings.ReplaceAll(s, ".", "")
			return strings.Replace(s, ",", ".", 1)
		}
		return strings.ReplaceAll(s, ",", "")
	case lastComma >= 0:
		if strings.Count(s, ",") == 1 && decimalTail.MatchString(s[lastComma+1:]) {
			return strings.Replace(s, ",", ".", 1)
		}
		return strings.ReplaceAll(s, ",", "")
	case strings.Count(s, ".") > 1 || dotGrouping.MatchString(s):
		return strings.ReplaceAll(s, ".", "")
	default:
		return s
	}
}

// ParseOdometer reads a mileage such as "12 345 km". nil means unparseable.
func ParseOdometer(v any) *float64 {
	d := ParseDecimal(v)
	if !d.Valid {
		return nil
	}
	f := d.Decimal.InexactFloat64()
	return &f
}

// LeadingInt returns the integer a cell starts with ("3 days" is 3), or 0.
func LeadingInt(v any) int {
	switch x := v.(type) {
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return 0
		}
		return int(x)
	case int:
		return x
	case int64:
		return int(x)
	case string:
		m := leadingInt.FindStringSubmatch(x)
		if m == nil {
			return 0
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}

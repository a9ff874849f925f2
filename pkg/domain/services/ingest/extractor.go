// Package ingest turns decoded spreadsheet tables into canonical fleet
// records. It classifies each table by its headers, extracts fields through
// configurable alias lists and drops rows that cannot be used. It never
// returns errors: unusable input shows up as dropped rows in Stats.
package ingest

import (
	"sort"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/vsinha/fleetdash/pkg/domain/entities"
)

// FoldHeader reduces a header to its comparison key: non-breaking spaces
// and runs of whitespace become one space, the ends are trimmed, accents are
// removed and case is folded. "Kilométrage " and "KILOMETRAGE" share a key.
func FoldHeader(h string) string {
	s := strings.Join(strings.Fields(strings.ReplaceAll(h, "\u00a0", " ")), " ")
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if stripped, _, err := transform.String(t, s); err == nil {
		s = stripped
	}
	return cases.Fold().String(s)
}

// Extractor resolves field aliases against one table's headers.
type Extractor struct {
	headers []string
	byKey   map[string][]string
}

// NewExtractor indexes headers by their folded key.
func NewExtractor(headers []string) *Extractor {
	e := &Extractor{
		headers: append([]string(nil), headers...),
		byKey:   make(map[string][]string, len(headers)),
	}
	for _, h := range headers {
		k := FoldHeader(h)
		e.byKey[k] = append(e.byKey[k], h)
	}
	return e
}

// Has reports whether any header matches alias.
func (e *Extractor) Has(alias string) bool {
	_, ok := e.byKey[FoldHeader(alias)]
	return ok
}

// Extract returns the first non-empty value among the spec's aliases, then
// among the headers matching its pattern.
func (e *Extractor) Extract(row entities.Row, spec FieldSpec) (any, bool) {
	for _, alias := range spec.Aliases {
		for _, h := range e.byKey[FoldHeader(alias)] {
			if v, ok := row[h]; ok && !blank(v) {
				return v, true
			}
		}
	}

	re := spec.matcher()
	if re == nil {
		return nil, false
	}
	for _, h := range e.headers {
		if !re.MatchString(FoldHeader(h)) {
			continue
		}
		if v, ok := row[h]; ok && !blank(v) {
			return v, true
		}
	}
	return nil, false
}

// Extract resolves spec against a single row, using the row's own keys as
// headers.
func Extract(row entities.Row, spec FieldSpec) (any, bool) {
	headers := make([]string, 0, len(row))
	for h := range row {
		headers = append(headers, h)
	}
	sort.Strings(headers)
	return NewExtractor(headers).Extract(row, spec)
}

func blank(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(strings.ReplaceAll(x, "\u00a0", " ")) == ""
	case time.Time:
		return x.IsZero()
	default:
		return false
	}
}

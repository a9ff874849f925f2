package entities

import (
	"fmt"
	"strings"
)

// RecordKind identifies which export a table came from.
type RecordKind string

const (
	KindReservations RecordKind = "reservations"
	KindAvailable    RecordKind = "available"
	KindDueIn        RecordKind = "due_in"
	KindUnknown      RecordKind = "unknown"
)

// Row maps a header to its raw cell value: string, float64, bool or time.Time.
type Row map[string]any

// Table is a decoded spreadsheet: the first sheet's headers and data rows.
type Table struct {
	// Name is the source file name; used as a classification hint.
	Name    string
	Headers []string
	Rows    []Row
}

// NewTable builds a table from a header row and positional cell values.
// Header cells are trimmed; blank headers become "column_N" (1-based) and
// repeated headers get a "_1", "_2"... suffix. Rows whose cells are all
// blank are skipped, and cells beyond the header row are ignored.
func NewTable(name string, header []string, cells [][]any) Table {
	headers := make([]string, len(header))
	seen := map[string]int{}
	for i, h := range header {
		h = strings.TrimSpace(h)
		if h == "" {
			h = fmt.Sprintf("column_%d", i+1)
		}
		if n, dup := seen[h]; dup {
			seen[h] = n + 1
			h = fmt.Sprintf("%s_%d", h, n+1)
		} else {
			seen[h] = 0
		}
		headers[i] = h
	}

	t := Table{Name: name, Headers: headers}
	for _, rowCells := range cells {
		row := Row{}
		for i, v := range rowCells {
			if i >= len(headers) || blankCell(v) {
				continue
			}
			row[headers[i]] = v
		}
		if len(row) > 0 {
			t.Rows = append(t.Rows, row)
		}
	}
	return t
}

func blankCell(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(strings.ReplaceAll(x, "\u00a0", " ")) == ""
	}
	return false
}

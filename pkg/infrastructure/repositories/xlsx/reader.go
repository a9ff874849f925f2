// Package xlsx reads the first sheet of an Excel workbook.
package xlsx

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/vsinha/fleetdash/pkg/domain/entities"
	"github.com/vsinha/fleetdash/pkg/domain/repositories"
	"github.com/vsinha/fleetdash/pkg/errors"
)

// Reader decodes workbooks. Numeric cells, including dates stored as
// serials, come back as float64; booleans as bool; everything else as text.
type Reader struct{}

var _ repositories.TabularReader = (*Reader)(nil)

func NewReader() *Reader {
	return &Reader{}
}

func (r *Reader) Read(ctx context.Context, path string) (entities.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return entities.Table{}, errors.WrapIO("open", path, err)
	}
	defer f.Close()
	return r.Decode(ctx, filepath.Base(path), f)
}

func (r *Reader) Decode(ctx context.Context, name string, src io.Reader) (entities.Table, error) {
	if err := ctx.Err(); err != nil {
		return entities.Table{}, err
	}

	wb, err := excelize.OpenReader(src)
	if err != nil {
		return entities.Table{}, errors.WrapIO("decode", name, err)
	}
	defer wb.Close()

	sheets := wb.GetSheetList()
	if len(sheets) == 0 {
		return entities.Table{Name: name}, nil
	}
	sheet := sheets[0]

	rows, err := wb.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return entities.Table{}, errors.WrapIO("read sheet", name+":"+sheet, err)
	}
	if len(rows) == 0 {
		return entities.Table{Name: name}, nil
	}

	cells := make([][]any, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if err := ctx.Err(); err != nil {
			return entities.Table{}, err
		}
		values := make([]any, len(row))
		for col, raw := range row {
			values[col] = typedCell(wb, sheet, col+1, i+2, raw)
		}
		cells = append(cells, values)
	}
	return entities.NewTable(name, rows[0], cells), nil
}

func typedCell(wb *excelize.File, sheet string, col, row int, raw string) any {
	if raw == "" {
		return nil
	}
	ref, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return raw
	}
	typ, err := wb.GetCellType(sheet, ref)
	if err != nil {
		return raw
	}
	switch typ {
	case excelize.CellTypeBool:
		return raw == "1" || raw == "TRUE" || raw == "true"
	case excelize.CellTypeUnset, excelize.CellTypeNumber:
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			return f
		}
	}
	return raw
}

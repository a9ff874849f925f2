package csv

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"

	"github.com/vsinha/fleetdash/pkg/domain/entities"
	"github.com/vsinha/fleetdash/pkg/domain/repositories"
	"github.com/vsinha/fleetdash/pkg/errors"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Reader decodes delimited text exports. All cells are strings.
type Reader struct {
	// Comma forces a delimiter. Zero sniffs the header line for ';', tab
	// or ','.
	Comma rune
}

var _ repositories.TabularReader = (*Reader)(nil)

// NewReader creates a new CSV reader
func NewReader() *Reader {
	return &Reader{}
}

func (r *Reader) Read(ctx context.Context, path string) (entities.Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return entities.Table{}, errors.WrapIO("open", path, err)
	}
	defer file.Close()
	return r.Decode(ctx, filepath.Base(path), file)
}

func (r *Reader) Decode(ctx context.Context, name string, src io.Reader) (entities.Table, error) {
	br := bufio.NewReader(src)
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}

	comma := r.Comma
	if comma == 0 {
		comma = sniff(br)
	}

	reader := csv.NewReader(br)
	reader.Comma = comma
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err == io.EOF {
		return entities.Table{Name: name}, nil
	}
	if err != nil {
		return entities.Table{}, errors.WrapIO("decode", name, err)
	}

	var cells [][]any
	for {
		if err := ctx.Err(); err != nil {
			return entities.Table{}, err
		}
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return entities.Table{}, errors.WrapIO("decode", name, err)
		}
		row := make([]any, len(record))
		for i, v := range record {
			row[i] = v
		}
		cells = append(cells, row)
	}
	return entities.NewTable(name, header, cells), nil
}

// sniff picks the most frequent candidate delimiter on the first line.
func sniff(br *bufio.Reader) rune {
	line, _ := br.Peek(4096)
	if i := bytes.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	best, count := ',', bytes.Count(line, []byte{','})
	for _, c := range []rune{';', '\t'} {
		if n := bytes.Count(line, []byte(string(c))); n > count {
			best, count = c, n
		}
	}
	return best
}

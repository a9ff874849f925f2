// Package tabular picks a spreadsheet decoder by file extension.
package tabular

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/vsinha/fleetdash/pkg/domain/entities"
	"github.com/vsinha/fleetdash/pkg/domain/repositories"
	"github.com/vsinha/fleetdash/pkg/errors"
	"github.com/vsinha/fleetdash/pkg/infrastructure/repositories/csv"
	"github.com/vsinha/fleetdash/pkg/infrastructure/repositories/xlsx"
)

// Reader routes each file to the decoder registered for its extension.
type Reader struct {
	byExt map[string]repositories.TabularReader
}

var _ repositories.TabularReader = (*Reader)(nil)

// NewReader registers the xlsx and csv decoders.
func NewReader() *Reader {
	x, c := xlsx.NewReader(), csv.NewReader()
	return &Reader{byExt: map[string]repositories.TabularReader{
		".xlsx": x,
		".xlsm": x,
		".xltx": x,
		".csv":  c,
		".tsv":  &csv.Reader{Comma: '\t'},
		".txt":  c,
	}}
}

// Register adds or replaces the decoder for ext (with or without the dot).
func (r *Reader) Register(ext string, reader repositories.TabularReader) {
	r.byExt[normalizeExt(ext)] = reader
}

// Supports reports whether name has a registered extension.
func (r *Reader) Supports(name string) bool {
	_, ok := r.byExt[normalizeExt(filepath.Ext(name))]
	return ok
}

func (r *Reader) Read(ctx context.Context, path string) (entities.Table, error) {
	dec, err := r.decoder(path)
	if err != nil {
		return entities.Table{}, err
	}
	if _, err := os.Stat(path); err != nil {
		return entities.Table{}, errors.WrapIO("stat", path, err)
	}
	return dec.Read(ctx, path)
}

func (r *Reader) Decode(ctx context.Context, name string, src io.Reader) (entities.Table, error) {
	dec, err := r.decoder(name)
	if err != nil {
		return entities.Table{}, err
	}
	return dec.Decode(ctx, name, src)
}

func (r *Reader) decoder(name string) (repositories.TabularReader, error) {
	ext := normalizeExt(filepath.Ext(name))
	dec, ok := r.byExt[ext]
	if !ok {
		return nil, fmt.Errorf("%w: %q", errors.ErrUnsupportedFormat, filepath.Base(name))
	}
	return dec, nil
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

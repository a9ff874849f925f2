package repositories

import (
	"context"
	"io"

	"github.com/vsinha/fleetdash/pkg/domain/entities"
)

// TabularReader decodes a spreadsheet file into its first sheet's headers
// and rows. Cell values are strings, float64 or bool.
type TabularReader interface {
	Read(ctx context.Context, path string) (entities.Table, error)
	Decode(ctx context.Context, name string, r io.Reader) (entities.Table, error)
}

package dataset

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Temutjin2k/taxi-kpis/internal/domain/models"
	"github.com/Temutjin2k/taxi-kpis/internal/domain/types"
)

// Supported dataset file extensions.
const (
	ExtParquet = ".parquet"
	ExtCSV     = ".csv"
	ExtXLSX    = ".xlsx"
)

// Loader reads a cached dataset file into a models.Dataset.
type Loader struct{}

func NewLoader() *Loader {
	return &Loader{}
}

// Load picks the decoder by file extension. Any decoding failure is wrapped in
// types.ErrMalformedDataset.
func (l *Loader) Load(ctx context.Context, path string) (*models.Dataset, error) {
	const op = "Loader.Load"

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var (
		ds  *models.Dataset
		err error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ExtParquet:
		ds, err = readParquet(ctx, path)
	case ExtCSV:
		ds, err = readCSV(path)
	case ExtXLSX:
		ds, err = readXLSX(path)
	default:
		return nil, fmt.Errorf("%s: %w: %q", op, types.ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", op, types.ErrMalformedDataset, err)
	}

	return ds, nil
}

// IsSupported reports whether Load can decode a file with the given extension.
func IsSupported(ext string) bool {
	switch strings.ToLower(ext) {
	case ExtParquet, ExtCSV, ExtXLSX:
		return true
	}
	return false
}

package dataset

import (
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/Temutjin2k/taxi-kpis/internal/domain/models"
	"github.com/Temutjin2k/taxi-kpis/internal/domain/types"
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// Layouts the TLC and common spreadsheet exports use for pickup timestamps.
var pickupLayouts = []string{
	time.DateTime,
	"2006-01-02T15:04:05",
	time.RFC3339,
	"01/02/2006 03:04:05 PM",
	"01/02/2006 15:04",
}

func readCSV(path string) (*models.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	colTypes := make(map[string]series.Type, len(types.MetricColumns)+1)
	for _, col := range types.MetricColumns {
		colTypes[col] = series.Float
	}
	colTypes[types.ColPickup] = series.String

	df := dataframe.ReadCSV(f,
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.WithTypes(colTypes),
	)
	if df.Err != nil {
		return nil, fmt.Errorf("read csv: %w", df.Err)
	}

	return fromFrame(df)
}

// fromFrame reduces a decoded frame to the metric columns and extracts the
// latest pickup time when the pickup column is present.
func fromFrame(df dataframe.DataFrame) (*models.Dataset, error) {
	names := df.Names()
	for _, col := range types.MetricColumns {
		if !slices.Contains(names, col) {
			return nil, fmt.Errorf("missing column %q", col)
		}
	}

	var latest time.Time
	if slices.Contains(names, types.ColPickup) {
		for _, raw := range df.Col(types.ColPickup).Records() {
			t, ok := parsePickup(raw)
			if ok && t.After(latest) {
				latest = t
			}
		}
	}

	selected := df.Select(types.MetricColumns)
	if selected.Err != nil {
		return nil, selected.Err
	}

	// Columns decoded as strings (e.g. spreadsheet cells) are converted here.
	list := make([]series.Series, len(types.MetricColumns))
	for i, name := range types.MetricColumns {
		col := selected.Col(name)
		if col.Type() != series.Float {
			col = series.New(col.Float(), series.Float, name)
		}
		list[i] = col
	}

	return &models.Dataset{
		Frame:        dataframe.New(list...),
		LatestPickup: latest,
		Rows:         selected.Nrow(),
	}, nil
}

func parsePickup(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "NaN" {
		return time.Time{}, false
	}
	for _, layout := range pickupLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

package analytics

import (
	"fmt"
	"math"
	"slices"

	"github.com/Temutjin2k/taxi-kpis/internal/domain/types"
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// DefaultVendorID is the TLC vendor code the yellow-taxi metrics are computed for.
const DefaultVendorID = 1

// Clean returns the rows that have a value in every metric column, belong to
// vendorID and have a positive fare and trip distance. An empty result is not
// an error.
func Clean(df dataframe.DataFrame, vendorID int) (dataframe.DataFrame, error) {
	if df.Err != nil {
		return df, fmt.Errorf("%w: %v", types.ErrMalformedDataset, df.Err)
	}

	names := df.Names()
	for _, col := range types.MetricColumns {
		if !slices.Contains(names, col) {
			return df, fmt.Errorf("%w: missing column %q", types.ErrMalformedDataset, col)
		}
	}

	df = df.Select(types.MetricColumns)
	if df.Nrow() == 0 {
		return df, nil
	}

	df = dropNA(df)
	if df.Nrow() == 0 {
		return df, nil
	}

	steps := []dataframe.F{
		{Colname: types.ColVendorID, Comparator: series.Eq, Comparando: float64(vendorID)},
		{Colname: types.ColFareAmount, Comparator: series.Greater, Comparando: 0.0},
		{Colname: types.ColTripDistance, Comparator: series.Greater, Comparando: 0.0},
	}
	for _, f := range steps {
		df = df.Filter(f)
		if df.Err != nil {
			return df, fmt.Errorf("%w: filter %s: %v", types.ErrMalformedDataset, f.Colname, df.Err)
		}
		if df.Nrow() == 0 {
			return df, nil
		}
	}

	return df, nil
}

// dropNA keeps the rows where no column is NaN.
func dropNA(df dataframe.DataFrame) dataframe.DataFrame {
	keep := make([]bool, df.Nrow())
	for i := range keep {
		keep[i] = true
	}

	for _, name := range df.Names() {
		for i, v := range df.Col(name).Float() {
			if math.IsNaN(v) {
				keep[i] = false
			}
		}
	}

	if !slices.Contains(keep, false) {
		return df
	}
	return df.Subset(keep)
}

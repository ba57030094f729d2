package analytics

import (
	"context"
	"math"
	"strconv"

	"github.com/Temutjin2k/taxi-kpis/internal/domain/models"
	"github.com/Temutjin2k/taxi-kpis/internal/domain/types"
	"github.com/Temutjin2k/taxi-kpis/pkg/logger"
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"golang.org/x/sync/errgroup"
)

// Engine cleans a dataset and computes the metrics record from it.
type Engine struct {
	vendorID int
	l        logger.Logger
}

func NewEngine(vendorID int, l logger.Logger) *Engine {
	if vendorID == 0 {
		vendorID = DefaultVendorID
	}
	return &Engine{
		vendorID: vendorID,
		l:        l,
	}
}

// Result carries the computed record and the size of the frame it came from.
type Result struct {
	Record      *models.MetricsRecord
	RowsCleaned int
}

// Run cleans ds and computes its metrics.
func (e *Engine) Run(ctx context.Context, ds *models.Dataset) (*Result, error) {
	cleaned, err := Clean(ds.Frame, e.vendorID)
	if err != nil {
		return nil, err
	}

	e.l.Debug(ctx, "dataset cleaned", "rows_loaded", ds.Rows, "rows_cleaned", cleaned.Nrow())

	rec, err := e.Compute(ctx, cleaned)
	if err != nil {
		return &Result{RowsCleaned: cleaned.Nrow()}, err
	}

	return &Result{Record: rec, RowsCleaned: cleaned.Nrow()}, nil
}

// Compute runs the three reductions over an already cleaned frame. An empty
// frame yields types.ErrNoTrips.
func (e *Engine) Compute(ctx context.Context, df dataframe.DataFrame) (*models.MetricsRecord, error) {
	if df.Nrow() == 0 {
		return nil, types.ErrNoTrips
	}

	var rec models.MetricsRecord

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		rec.AveragePricePerMile = AveragePricePerMile(df)
		return nil
	})
	g.Go(func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		rec.PaymentTypeCounts = PaymentTypeCounts(df)
		return nil
	})
	g.Go(func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		rec.CustomIndicator = CustomIndicator(df)
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	if math.IsNaN(rec.AveragePricePerMile) || math.IsNaN(rec.CustomIndicator) {
		return nil, types.ErrNoTrips
	}

	return &rec, nil
}

// AveragePricePerMile is mean(total_amount / trip_distance).
func AveragePricePerMile(df dataframe.DataFrame) float64 {
	total := df.Col(types.ColTotalAmount).Float()
	distance := df.Col(types.ColTripDistance).Float()

	ratios := make([]float64, len(total))
	for i := range total {
		ratios[i] = total[i] / distance[i]
	}

	return series.New(ratios, series.Float, "price_per_mile").Mean()
}

// CustomIndicator is mean((tip_amount + extra) / trip_distance).
func CustomIndicator(df dataframe.DataFrame) float64 {
	tip := df.Col(types.ColTipAmount).Float()
	extra := df.Col(types.ColExtra).Float()
	distance := df.Col(types.ColTripDistance).Float()

	ratios := make([]float64, len(tip))
	for i := range tip {
		ratios[i] = (tip[i] + extra[i]) / distance[i]
	}

	return series.New(ratios, series.Float, "custom_indicator").Mean()
}

// PaymentTypeCounts counts rows per payment code. Only observed codes are present.
func PaymentTypeCounts(df dataframe.DataFrame) map[string]int {
	counts := make(map[string]int)
	for _, code := range df.Col(types.ColPaymentType).Float() {
		counts[strconv.Itoa(int(code))]++
	}
	return counts
}

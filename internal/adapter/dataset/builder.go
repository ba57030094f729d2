package dataset

import (
	"math"
	"time"

	"github.com/Temutjin2k/taxi-kpis/internal/domain/models"
	"github.com/Temutjin2k/taxi-kpis/internal/domain/types"
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// frameBuilder collects metric columns row by row and tracks the latest pickup.
type frameBuilder struct {
	cols   [][]float64
	latest time.Time
	rows   int
}

func newFrameBuilder(capacity int) *frameBuilder {
	cols := make([][]float64, len(types.MetricColumns))
	for i := range cols {
		cols[i] = make([]float64, 0, capacity)
	}
	return &frameBuilder{cols: cols}
}

// add appends one row. values follow types.MetricColumns order, NaN for missing.
func (b *frameBuilder) add(values [7]float64, pickup *time.Time) {
	for i, v := range values {
		b.cols[i] = append(b.cols[i], v)
	}
	if pickup != nil && pickup.After(b.latest) {
		b.latest = *pickup
	}
	b.rows++
}

func (b *frameBuilder) dataset() *models.Dataset {
	list := make([]series.Series, len(types.MetricColumns))
	for i, name := range types.MetricColumns {
		list[i] = series.New(b.cols[i], series.Float, name)
	}

	return &models.Dataset{
		Frame:        dataframe.New(list...),
		LatestPickup: b.latest,
		Rows:         b.rows,
	}
}

func floatOrNaN(v *float64) float64 {
	if v == nil {
		return math.NaN()
	}
	return *v
}

func intOrNaN(v *int64) float64 {
	if v == nil {
		return math.NaN()
	}
	return float64(*v)
}

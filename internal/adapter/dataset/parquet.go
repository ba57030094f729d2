package dataset

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/Temutjin2k/taxi-kpis/internal/domain/models"
	"github.com/parquet-go/parquet-go"
)

const parquetBatchSize = 8192

// tripRow mirrors the columns of a TLC yellow-taxi parquet file that the
// metrics read. Everything is optional in the published files. The pickup is a
// value type because parquet-go only accepts the timestamp tag on time.Time;
// a null pickup reads as the zero time.
type tripRow struct {
	VendorID     *int64    `parquet:"VendorID,optional"`
	PickupTime   time.Time `parquet:"tpep_pickup_datetime,optional,timestamp(microsecond)"`
	FareAmount   *float64  `parquet:"fare_amount,optional"`
	TotalAmount  *float64  `parquet:"total_amount,optional"`
	TripDistance *float64  `parquet:"trip_distance,optional"`
	TipAmount    *float64  `parquet:"tip_amount,optional"`
	Extra        *float64  `parquet:"extra,optional"`
	PaymentType  *int64    `parquet:"payment_type,optional"`
}

func (r tripRow) record() models.TripRecord {
	var pickup *time.Time
	if !r.PickupTime.IsZero() {
		t := r.PickupTime
		pickup = &t
	}
	return models.TripRecord{
		VendorID:     r.VendorID,
		PickupTime:   pickup,
		FareAmount:   r.FareAmount,
		TotalAmount:  r.TotalAmount,
		TripDistance: r.TripDistance,
		TipAmount:    r.TipAmount,
		Extra:        r.Extra,
		PaymentType:  r.PaymentType,
	}
}

func readParquet(ctx context.Context, path string) (*models.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}

	pf, err := parquet.OpenFile(f, info.Size())
	if err != nil {
		return nil, fmt.Errorf("open parquet: %w", err)
	}

	reader := parquet.NewGenericReader[tripRow](pf)
	defer reader.Close()

	b := newFrameBuilder(int(pf.NumRows()))
	buf := make([]tripRow, parquetBatchSize)

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		n, err := reader.Read(buf)
		for _, row := range buf[:n] {
			addRecord(b, row.record())
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read parquet rows: %w", err)
		}
	}

	return b.dataset(), nil
}

func addRecord(b *frameBuilder, rec models.TripRecord) {
	b.add([7]float64{
		intOrNaN(rec.VendorID),
		floatOrNaN(rec.FareAmount),
		floatOrNaN(rec.TotalAmount),
		floatOrNaN(rec.TripDistance),
		floatOrNaN(rec.TipAmount),
		floatOrNaN(rec.Extra),
		intOrNaN(rec.PaymentType),
	}, rec.PickupTime)
}

// WriteParquet writes records in the TLC column layout. It is used to build
// local fixtures and to convert other formats.
func WriteParquet(path string, records []models.TripRecord) error {
	rows := make([]tripRow, len(records))
	for i, rec := range records {
		var pickup time.Time
		if rec.PickupTime != nil {
			pickup = *rec.PickupTime
		}
		rows[i] = tripRow{
			VendorID:     rec.VendorID,
			PickupTime:   pickup,
			FareAmount:   rec.FareAmount,
			TotalAmount:  rec.TotalAmount,
			TripDistance: rec.TripDistance,
			TipAmount:    rec.TipAmount,
			Extra:        rec.Extra,
			PaymentType:  rec.PaymentType,
		}
	}
	return parquet.WriteFile(path, rows)
}

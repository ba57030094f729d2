package dataset

import (
	"context"
	"errors"
	"io"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Temutjin2k/taxi-kpis/internal/domain/models"
	"github.com/Temutjin2k/taxi-kpis/internal/domain/types"
	"github.com/Temutjin2k/taxi-kpis/internal/service/analytics"
	"github.com/Temutjin2k/taxi-kpis/pkg/logger"
	"github.com/parquet-go/parquet-go"
	"github.com/xuri/excelize/v2"
)

func ptr[T any](v T) *T { return &v }

func fixtureRecords() []models.TripRecord {
	return []models.TripRecord{
		{
			VendorID:     ptr(int64(1)),
			PickupTime:   ptr(time.Date(2024, 1, 3, 8, 15, 0, 0, time.UTC)),
			FareAmount:   ptr(8.0),
			TotalAmount:  ptr(10.0),
			TripDistance: ptr(5.0),
			TipAmount:    ptr(1.0),
			Extra:        ptr(0.5),
			PaymentType:  ptr(int64(1)),
		},
		{
			VendorID:     ptr(int64(2)),
			PickupTime:   ptr(time.Date(2024, 1, 31, 23, 59, 0, 0, time.UTC)),
			FareAmount:   ptr(15.0),
			TotalAmount:  ptr(20.0),
			TripDistance: ptr(4.0),
			TipAmount:    nil,
			Extra:        ptr(0.0),
			PaymentType:  ptr(int64(2)),
		},
	}
}

func TestLoadParquet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "yellow_tripdata_2024-01.parquet")
	if err := WriteParquet(path, fixtureRecords()); err != nil {
		t.Fatalf("WriteParquet() error = %v", err)
	}

	ds, err := NewLoader().Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	assertFixture(t, ds)
}

// tlcRow is the physical layout of a published yellow-taxi file: INT32 vendor,
// microsecond timestamps and columns the metrics never read.
type tlcRow struct {
	VendorID            *int32    `parquet:"VendorID,optional"`
	PickupTime          time.Time `parquet:"tpep_pickup_datetime,optional,timestamp(microsecond)"`
	DropoffTime         time.Time `parquet:"tpep_dropoff_datetime,optional,timestamp(microsecond)"`
	PassengerCount      *int64    `parquet:"passenger_count,optional"`
	TripDistance        *float64  `parquet:"trip_distance,optional"`
	RatecodeID          *int64    `parquet:"RatecodeID,optional"`
	StoreAndFwdFlag     *string   `parquet:"store_and_fwd_flag,optional"`
	PULocationID        *int32    `parquet:"PULocationID,optional"`
	PaymentType         *int64    `parquet:"payment_type,optional"`
	FareAmount          *float64  `parquet:"fare_amount,optional"`
	Extra               *float64  `parquet:"extra,optional"`
	TipAmount           *float64  `parquet:"tip_amount,optional"`
	TotalAmount         *float64  `parquet:"total_amount,optional"`
	CongestionSurcharge *float64  `parquet:"congestion_surcharge,optional"`
}

func tlcTrip(vendor int32, pickup time.Time, fare, total, dist, tip, extra float64, payment int64) tlcRow {
	return tlcRow{
		VendorID:        ptr(vendor),
		PickupTime:      pickup,
		DropoffTime:     pickup.Add(20 * time.Minute),
		PassengerCount:  ptr(int64(1)),
		TripDistance:    ptr(dist),
		RatecodeID:      ptr(int64(1)),
		StoreAndFwdFlag: ptr("N"),
		PULocationID:    ptr(int32(132)),
		PaymentType:     ptr(payment),
		FareAmount:      ptr(fare),
		Extra:           ptr(extra),
		TipAmount:       ptr(tip),
		TotalAmount:     ptr(total),
	}
}

func TestLoadPublishedParquetLayout(t *testing.T) {
	latest := time.Date(2024, 1, 31, 8, 0, 0, 0, time.UTC)
	rows := []tlcRow{
		tlcTrip(1, time.Date(2024, 1, 3, 8, 15, 0, 0, time.UTC), 8, 10, 5, 1, 0.5, 1),
		tlcTrip(2, latest, 15, 20, 4, 3, 1, 1),
		tlcTrip(1, time.Date(2024, 1, 15, 12, 30, 0, 0, time.UTC), 15, 20, 4, 2, 0, 2),
		{VendorID: ptr(int32(1))}, // every metric column null
	}

	path := filepath.Join(t.TempDir(), "yellow_tripdata_2024-01.parquet")
	if err := parquet.WriteFile(path, rows); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	ds, err := NewLoader().Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if ds.Rows != 4 {
		t.Errorf("rows = %d, want 4", ds.Rows)
	}
	if !ds.LatestPickup.Equal(latest) {
		t.Errorf("LatestPickup = %v, want %v", ds.LatestPickup, latest)
	}
	vendors := ds.Frame.Col(types.ColVendorID).Float()
	if vendors[0] != 1 || vendors[1] != 2 {
		t.Errorf("VendorID = %v", vendors)
	}

	res, err := analytics.NewEngine(1, logger.New(io.Discard, "test", logger.LevelError)).Run(context.Background(), ds)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.RowsCleaned != 2 {
		t.Errorf("RowsCleaned = %d, want 2", res.RowsCleaned)
	}

	rec := res.Record
	if math.Abs(rec.AveragePricePerMile-3.5) > 1e-9 {
		t.Errorf("AveragePricePerMile = %v, want 3.5", rec.AveragePricePerMile)
	}
	if math.Abs(rec.CustomIndicator-0.4) > 1e-9 {
		t.Errorf("CustomIndicator = %v, want 0.4", rec.CustomIndicator)
	}
	if len(rec.PaymentTypeCounts) != 2 || rec.PaymentTypeCounts["1"] != 1 || rec.PaymentTypeCounts["2"] != 1 {
		t.Errorf("PaymentTypeCounts = %v", rec.PaymentTypeCounts)
	}
}

func TestLoadCSV(t *testing.T) {
	content := "VendorID,tpep_pickup_datetime,passenger_count,fare_amount,total_amount,trip_distance,tip_amount,extra,payment_type\n" +
		"1,2024-01-03 08:15:00,1,8,10,5,1,0.5,1\n" +
		"2,2024-01-31 23:59:00,2,15,20,4,,0,2\n"

	path := filepath.Join(t.TempDir(), "yellow_tripdata_2024-01.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	ds, err := NewLoader().Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	assertFixture(t, ds)
}

func TestLoadXLSX(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	rows := [][]any{
		{"VendorID", "tpep_pickup_datetime", "fare_amount", "total_amount", "trip_distance", "tip_amount", "extra", "payment_type"},
		{1, "2024-01-03 08:15:00", 8, 10, 5, 1, 0.5, 1},
		{2, "2024-01-31 23:59:00", 15, 20, 4, nil, 0, 2},
	}
	for r, row := range rows {
		for c, v := range row {
			if v == nil {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				t.Fatal(err)
			}
			if err := f.SetCellValue("Sheet1", cell, v); err != nil {
				t.Fatal(err)
			}
		}
	}

	path := filepath.Join(t.TempDir(), "yellow_tripdata_2024-01.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("SaveAs() error = %v", err)
	}

	ds, err := NewLoader().Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	assertFixture(t, ds)
}

func TestLoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "yellow_tripdata_2024-01.parquet")
	if err := os.WriteFile(path, []byte("<html>not a parquet file</html>"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := NewLoader().Load(context.Background(), path)
	if !errors.Is(err, types.ErrMalformedDataset) {
		t.Fatalf("Load() error = %v, want ErrMalformedDataset", err)
	}
}

func TestLoadUnsupported(t *testing.T) {
	_, err := NewLoader().Load(context.Background(), "yellow_tripdata_2024-01.json")
	if !errors.Is(err, types.ErrUnsupportedFormat) {
		t.Fatalf("Load() error = %v, want ErrUnsupportedFormat", err)
	}
}

func TestLoadMissingColumn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.csv")
	if err := os.WriteFile(path, []byte("VendorID,fare_amount\n1,8\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := NewLoader().Load(context.Background(), path)
	if !errors.Is(err, types.ErrMalformedDataset) {
		t.Fatalf("Load() error = %v, want ErrMalformedDataset", err)
	}
}

func assertFixture(t *testing.T, ds *models.Dataset) {
	t.Helper()

	if ds.Rows != 2 || ds.Frame.Nrow() != 2 {
		t.Fatalf("rows = %d (frame %d), want 2", ds.Rows, ds.Frame.Nrow())
	}

	wantLatest := time.Date(2024, 1, 31, 23, 59, 0, 0, time.UTC)
	if !ds.LatestPickup.Equal(wantLatest) {
		t.Errorf("LatestPickup = %v, want %v", ds.LatestPickup, wantLatest)
	}

	if got := ds.Frame.Names(); len(got) != len(types.MetricColumns) {
		t.Fatalf("columns = %v, want %v", got, types.MetricColumns)
	}

	total := ds.Frame.Col(types.ColTotalAmount).Float()
	if total[0] != 10 || total[1] != 20 {
		t.Errorf("total_amount = %v", total)
	}
	tip := ds.Frame.Col(types.ColTipAmount).Float()
	if tip[0] != 1 || !math.IsNaN(tip[1]) {
		t.Errorf("tip_amount = %v, want [1 NaN]", tip)
	}
	payment := ds.Frame.Col(types.ColPaymentType).Float()
	if payment[0] != 1 || payment[1] != 2 {
		t.Errorf("payment_type = %v", payment)
	}
}

package filestore

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Temutjin2k/taxi-kpis/internal/domain/models"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestSaveReadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	store := NewMetricsStore(dir).WithClock(fixedClock(time.Date(2024, 3, 9, 14, 0, 0, 0, time.Local)))

	rec := &models.MetricsRecord{
		AveragePricePerMile: 3.5,
		PaymentTypeCounts:   map[string]int{"1": 1, "2": 1},
		CustomIndicator:     0.4,
	}

	path, err := store.Save(context.Background(), rec)
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if want := filepath.Join(dir, "20240309_yellow_taxi_kpis.json"); path != want {
		t.Errorf("Save() path = %s, want %s", path, want)
	}

	got, err := store.Read(context.Background(), filepath.Base(path))
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	if math.Abs(got.Record.AveragePricePerMile-rec.AveragePricePerMile) > 1e-9 {
		t.Errorf("AveragePricePerMile = %v, want %v", got.Record.AveragePricePerMile, rec.AveragePricePerMile)
	}
	if math.Abs(got.Record.CustomIndicator-rec.CustomIndicator) > 1e-9 {
		t.Errorf("CustomIndicator = %v, want %v", got.Record.CustomIndicator, rec.CustomIndicator)
	}
	if len(got.Record.PaymentTypeCounts) != 2 || got.Record.PaymentTypeCounts["1"] != 1 || got.Record.PaymentTypeCounts["2"] != 1 {
		t.Errorf("PaymentTypeCounts = %v", got.Record.PaymentTypeCounts)
	}
	if got.Date.Format("20060102") != "20240309" {
		t.Errorf("Date = %v", got.Date)
	}
}

func TestSaveOverwritesSameDay(t *testing.T) {
	dir := t.TempDir()
	store := NewMetricsStore(dir).WithClock(fixedClock(time.Date(2024, 3, 9, 8, 0, 0, 0, time.Local)))

	for _, v := range []float64{1.5, 2.5} {
		if _, err := store.Save(context.Background(), &models.MetricsRecord{AveragePricePerMile: v}); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
	}

	names, err := store.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(names) != 1 {
		t.Fatalf("List() = %v, want one file", names)
	}

	got, err := store.Read(context.Background(), names[0])
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if got.Record.AveragePricePerMile != 2.5 {
		t.Errorf("AveragePricePerMile = %v, want last written 2.5", got.Record.AveragePricePerMile)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("directory has %d entries, temp files left behind", len(entries))
	}
}

func TestListMissingDir(t *testing.T) {
	names, err := NewMetricsStore(filepath.Join(t.TempDir(), "absent")).List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(names) != 0 {
		t.Fatalf("List() = %v, want empty", names)
	}
}

func TestDecodeRecord(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr error
	}{
		{
			name: "valid",
			data: `{"average_price_per_mile": 3.5, "payment_type_counts": {"1": 2}, "custom_indicator": 0.4}`,
		},
		{
			name:    "invalid json",
			data:    `{"average_price_per_mile": 3.5,`,
			wantErr: ErrMalformedRecord,
		},
		{
			name:    "missing key",
			data:    `{"average_price_per_mile": 3.5, "payment_type_counts": {"1": 2}}`,
			wantErr: ErrMissingKey,
		},
		{
			name:    "null key",
			data:    `{"average_price_per_mile": null, "payment_type_counts": {"1": 2}, "custom_indicator": 0.4}`,
			wantErr: ErrMissingKey,
		},
		{
			name:    "wrong type",
			data:    `{"average_price_per_mile": "3.5", "payment_type_counts": {"1": 2}, "custom_indicator": 0.4}`,
			wantErr: ErrMalformedRecord,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeRecord([]byte(tt.data))
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("DecodeRecord() error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("DecodeRecord() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

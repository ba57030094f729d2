package aggregator

import (
	"context"
	"errors"
	"io"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/Temutjin2k/taxi-kpis/internal/adapter/filestore"
	"github.com/Temutjin2k/taxi-kpis/internal/domain/types"
	"github.com/Temutjin2k/taxi-kpis/pkg/logger"
)

func newService(dir string) *Service {
	return NewService(filestore.NewMetricsStore(dir), logger.New(io.Discard, "test", logger.LevelError))
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestAggregateTwoFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "20240301_yellow_taxi_kpis.json",
		`{"average_price_per_mile": 3.5, "payment_type_counts": {"1": 4, "2": 2}, "custom_indicator": 0.4}`)
	writeFile(t, dir, "20240302_yellow_taxi_kpis.json",
		`{"average_price_per_mile": 4.5, "payment_type_counts": {"1": 2, "3": 1}, "custom_indicator": 0.6}`)

	res, err := newService(dir).Aggregate(context.Background())
	if err != nil {
		t.Fatalf("Aggregate() error = %v", err)
	}

	if math.Abs(res.View.AveragePricePerMile-4.0) > 1e-9 {
		t.Errorf("AveragePricePerMile = %v, want 4.0", res.View.AveragePricePerMile)
	}
	if math.Abs(res.View.CustomIndicator-0.5) > 1e-9 {
		t.Errorf("CustomIndicator = %v, want 0.5", res.View.CustomIndicator)
	}

	want := map[string]float64{"1": 3, "2": 1, "3": 0.5}
	for code, v := range want {
		if math.Abs(res.View.PaymentTypeCounts[code]-v) > 1e-9 {
			t.Errorf("PaymentTypeCounts[%s] = %v, want %v", code, res.View.PaymentTypeCounts[code], v)
		}
	}
	if len(res.Files) != 2 || len(res.Skipped) != 0 {
		t.Errorf("files = %d, skipped = %d", len(res.Files), len(res.Skipped))
	}
}

func TestAggregateSingleFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "20240301_yellow_taxi_kpis.json",
		`{"average_price_per_mile": 3.5, "payment_type_counts": {"1": 1, "2": 1}, "custom_indicator": 0.4}`)

	res, err := newService(dir).Aggregate(context.Background())
	if err != nil {
		t.Fatalf("Aggregate() error = %v", err)
	}

	if res.View.AveragePricePerMile != 3.5 || res.View.CustomIndicator != 0.4 {
		t.Errorf("view = %+v, want the file's values", res.View)
	}
	if res.View.PaymentTypeCounts["1"] != 1 || res.View.PaymentTypeCounts["2"] != 1 || len(res.View.PaymentTypeCounts) != 2 {
		t.Errorf("PaymentTypeCounts = %v", res.View.PaymentTypeCounts)
	}
}

func TestAggregateNoData(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T) string
	}{
		{
			name:  "empty directory",
			setup: func(t *testing.T) string { return t.TempDir() },
		},
		{
			name:  "missing directory",
			setup: func(t *testing.T) string { return filepath.Join(t.TempDir(), "absent") },
		},
		{
			name: "only non json files",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, "notes.txt", "hello")
				return dir
			},
		},
		{
			name: "every file malformed",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, "20240301_yellow_taxi_kpis.json", `{"average_price_per_mile": 3.5}`)
				writeFile(t, dir, "20240302_yellow_taxi_kpis.json", `not json`)
				return dir
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newService(tt.setup(t)).Aggregate(context.Background())
			if !errors.Is(err, types.ErrNoData) {
				t.Fatalf("Aggregate() error = %v, want ErrNoData", err)
			}
		})
	}
}

func TestAggregateSkipsMalformed(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "20240301_yellow_taxi_kpis.json",
		`{"average_price_per_mile": 3.5, "payment_type_counts": {"1": 1}, "custom_indicator": 0.4}`)
	writeFile(t, dir, "20240302_yellow_taxi_kpis.json",
		`{"average_price_per_mile": 100, "payment_type_counts": {"1": 1}}`)
	writeFile(t, dir, "20240303_yellow_taxi_kpis.json", `{broken`)

	res, err := newService(dir).Aggregate(context.Background())
	if err != nil {
		t.Fatalf("Aggregate() error = %v", err)
	}

	if len(res.Skipped) != 2 {
		t.Fatalf("Skipped = %v, want 2 entries", res.Skipped)
	}
	if res.View.AveragePricePerMile != 3.5 {
		t.Errorf("AveragePricePerMile = %v, skipped files must not contribute", res.View.AveragePricePerMile)
	}
}

package filestore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/Temutjin2k/taxi-kpis/internal/domain/models"
	"github.com/Temutjin2k/taxi-kpis/internal/domain/types"
)

var (
	ErrMalformedRecord = errors.New("malformed metrics record")
	ErrMissingKey      = errors.New("missing key in metrics record")
)

var requiredKeys = []string{"average_price_per_mile", "payment_type_counts", "custom_indicator"}

// MetricsStore keeps one JSON metrics record per ingestion date in a directory.
type MetricsStore struct {
	dir string
	now func() time.Time
}

func NewMetricsStore(dir string) *MetricsStore {
	return &MetricsStore{
		dir: dir,
		now: time.Now,
	}
}

// WithClock replaces the clock used to name new files.
func (s *MetricsStore) WithClock(now func() time.Time) *MetricsStore {
	s.now = now
	return s
}

// FileName returns the metrics file name for the given write date.
func FileName(date time.Time) string {
	return date.Format(types.MetricsDateLayout) + types.MetricsFileSuffix
}

// Save writes rec as <YYYYMMDD>_yellow_taxi_kpis.json, replacing a file of the
// same day. The file is written to a temp file first and renamed into place.
func (s *MetricsStore) Save(ctx context.Context, rec *models.MetricsRecord) (string, error) {
	const op = "MetricsStore.Save"

	if err := ctx.Err(); err != nil {
		return "", err
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("%s: create dir: %w", op, err)
	}

	counts := rec.PaymentTypeCounts
	if counts == nil {
		counts = map[string]int{}
	}
	data, err := json.MarshalIndent(models.MetricsRecord{
		AveragePricePerMile: rec.AveragePricePerMile,
		PaymentTypeCounts:   counts,
		CustomIndicator:     rec.CustomIndicator,
	}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("%s: marshal: %w", op, err)
	}

	path := filepath.Join(s.dir, FileName(s.now()))

	// The temp name must not end in .json so a concurrent List never sees it.
	tmp, err := os.CreateTemp(s.dir, ".kpis-*.tmp")
	if err != nil {
		return "", fmt.Errorf("%s: create temp: %w", op, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("%s: write: %w", op, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("%s: close: %w", op, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("%s: rename: %w", op, err)
	}

	return path, nil
}

// List returns the names of every *.json file in the directory, oldest date
// first. A missing directory yields an empty list.
func (s *MetricsStore) List(ctx context.Context) ([]string, error) {
	const op = "MetricsStore.List"

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".json") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	return names, nil
}

// Read parses one metrics file. Invalid JSON yields ErrMalformedRecord, a
// missing top-level key yields ErrMissingKey.
func (s *MetricsStore) Read(ctx context.Context, name string) (*models.MetricsFile, error) {
	const op = "MetricsStore.Read"

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := filepath.Join(s.dir, filepath.Base(name))

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rec, err := DecodeRecord(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %s: %w", op, name, err)
	}

	file := &models.MetricsFile{
		Name:   name,
		Record: *rec,
	}
	if date, err := time.Parse(types.MetricsDateLayout, strings.TrimSuffix(name, types.MetricsFileSuffix)); err == nil {
		file.Date = date
	}
	if info, err := os.Stat(path); err == nil {
		file.ModTime = info.ModTime()
	}

	return file, nil
}

// DecodeRecord parses a metrics record and checks the three keys are present.
func DecodeRecord(data []byte) (*models.MetricsRecord, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}

	for _, key := range requiredKeys {
		v, ok := raw[key]
		if !ok || bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
			return nil, fmt.Errorf("%w: %q", ErrMissingKey, key)
		}
	}

	var rec models.MetricsRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}
	if rec.PaymentTypeCounts == nil {
		rec.PaymentTypeCounts = map[string]int{}
	}

	return &rec, nil
}

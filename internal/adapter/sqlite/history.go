package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/Temutjin2k/taxi-kpis/internal/domain/models"
	"github.com/Temutjin2k/taxi-kpis/internal/domain/types"
	wrap "github.com/Temutjin2k/taxi-kpis/pkg/logger/wrapper"
	"github.com/Temutjin2k/taxi-kpis/pkg/metrics"
	"github.com/google/uuid"
)

const driverName = "sqlite"

// HistoryStore keeps the ingestion run history in a single sqlite file.
type HistoryStore struct {
	db *sql.DB
}

func New(path string) (*HistoryStore, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite: path is required")
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("sqlite: create dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	store := &HistoryStore{db: db}
	if err := store.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

func (s *HistoryStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *HistoryStore) SaveRun(ctx context.Context, run *models.IngestionRun) (err error) {
	const op = "HistoryStore.SaveRun"

	start := time.Now()
	defer func() { metrics.RecordHistoryQuery(driverName, "save_run", err, time.Since(start)) }()

	var snapshot any
	if run.Record != nil {
		data, err := json.Marshal(run.Record)
		if err != nil {
			return wrap.Error(ctx, fmt.Errorf("%s: marshal snapshot: %w", op, err))
		}
		snapshot = string(data)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO ingestion_runs (
			id, month, status, message, rows_loaded, rows_cleaned,
			dataset_sha256, metrics_file, started_at, finished_at, snapshot
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID.String(),
		run.Month,
		run.Status.String(),
		run.Message,
		run.RowsLoaded,
		run.RowsCleaned,
		run.DatasetSHA256,
		run.MetricsFile,
		run.StartedAt.UTC().Format(time.RFC3339Nano),
		run.FinishedAt.UTC().Format(time.RFC3339Nano),
		snapshot,
	)
	if err != nil {
		ctx = wrap.WithAction(ctx, types.ActionDatabaseTransactionFailed)
		return wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}

	return nil
}

func (s *HistoryStore) ListRuns(ctx context.Context, limit int) (runs []models.IngestionRun, err error) {
	const op = "HistoryStore.ListRuns"

	start := time.Now()
	defer func() { metrics.RecordHistoryQuery(driverName, "list_runs", err, time.Since(start)) }()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, month, status, message, rows_loaded, rows_cleaned,
		       dataset_sha256, metrics_file, started_at, finished_at, snapshot
		FROM ingestion_runs
		ORDER BY started_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}
	defer rows.Close()

	runs = make([]models.IngestionRun, 0, limit)
	for rows.Next() {
		var (
			run                 models.IngestionRun
			id, status          string
			startedAt, finished string
			snapshot            sql.NullString
		)
		if err := rows.Scan(
			&id, &run.Month, &status, &run.Message, &run.RowsLoaded, &run.RowsCleaned,
			&run.DatasetSHA256, &run.MetricsFile, &startedAt, &finished, &snapshot,
		); err != nil {
			return nil, wrap.Error(ctx, fmt.Errorf("%s: scan: %w", op, err))
		}

		if run.ID, err = uuid.Parse(id); err != nil {
			return nil, wrap.Error(ctx, fmt.Errorf("%s: parse id: %w", op, err))
		}
		run.Status = types.IngestionStatus(status)
		run.StartedAt, _ = time.Parse(time.RFC3339Nano, startedAt)
		run.FinishedAt, _ = time.Parse(time.RFC3339Nano, finished)

		if snapshot.Valid {
			var rec models.MetricsRecord
			if err := json.Unmarshal([]byte(snapshot.String), &rec); err != nil {
				return nil, wrap.Error(ctx, fmt.Errorf("%s: decode snapshot: %w", op, err))
			}
			run.Record = &rec
		}

		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}

	return runs, nil
}

func (s *HistoryStore) migrate() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS ingestion_runs (
			id TEXT PRIMARY KEY,
			month TEXT NOT NULL,
			status TEXT NOT NULL,
			message TEXT NOT NULL DEFAULT '',
			rows_loaded INTEGER NOT NULL DEFAULT 0,
			rows_cleaned INTEGER NOT NULL DEFAULT 0,
			dataset_sha256 TEXT NOT NULL DEFAULT '',
			metrics_file TEXT NOT NULL DEFAULT '',
			started_at TEXT NOT NULL,
			finished_at TEXT NOT NULL,
			snapshot TEXT
		);`,
		`CREATE INDEX IF NOT EXISTS ingestion_runs_started_at_idx ON ingestion_runs (started_at);`,
	}

	for _, statement := range statements {
		if _, err := s.db.Exec(statement); err != nil {
			return err
		}
	}

	return nil
}

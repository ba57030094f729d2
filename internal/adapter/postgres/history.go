package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Temutjin2k/taxi-kpis/internal/domain/models"
	"github.com/Temutjin2k/taxi-kpis/internal/domain/types"
	wrap "github.com/Temutjin2k/taxi-kpis/pkg/logger/wrapper"
	"github.com/Temutjin2k/taxi-kpis/pkg/metrics"
	"github.com/Temutjin2k/taxi-kpis/pkg/trm"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const driverName = "postgres"

// HistoryRepo stores ingestion runs and their metrics snapshots.
type HistoryRepo struct {
	db  *pgxpool.Pool
	trm trm.TxManager
}

func NewHistoryRepo(db *pgxpool.Pool, trm trm.TxManager) *HistoryRepo {
	return &HistoryRepo{
		db:  db,
		trm: trm,
	}
}

// SaveRun inserts the run and, when present, its metrics snapshot in one transaction.
func (r *HistoryRepo) SaveRun(ctx context.Context, run *models.IngestionRun) (err error) {
	const op = "HistoryRepo.SaveRun"

	start := time.Now()
	defer func() { metrics.RecordHistoryQuery(driverName, "save_run", err, time.Since(start)) }()

	err = r.trm.Do(ctx, func(ctx context.Context) error {
		q := TxorDB(ctx, r.db)

		_, err := q.Exec(ctx, `
			INSERT INTO ingestion_runs (
				id, month, status, message, rows_loaded, rows_cleaned,
				dataset_sha256, metrics_file, started_at, finished_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);`,
			run.ID, run.Month, run.Status.String(), run.Message, run.RowsLoaded, run.RowsCleaned,
			run.DatasetSHA256, run.MetricsFile, run.StartedAt, run.FinishedAt,
		)
		if err != nil {
			return fmt.Errorf("insert run: %w", err)
		}

		if run.Record == nil {
			return nil
		}

		counts, err := json.Marshal(run.Record.PaymentTypeCounts)
		if err != nil {
			return fmt.Errorf("marshal payment counts: %w", err)
		}

		_, err = q.Exec(ctx, `
			INSERT INTO metrics_snapshots (run_id, average_price_per_mile, payment_type_counts, custom_indicator)
			VALUES ($1, $2, $3, $4);`,
			run.ID, run.Record.AveragePricePerMile, counts, run.Record.CustomIndicator,
		)
		if err != nil {
			return fmt.Errorf("insert snapshot: %w", err)
		}

		return nil
	})
	if err != nil {
		ctx = wrap.WithAction(ctx, types.ActionDatabaseTransactionFailed)
		return wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}

	return nil
}

// ListRuns returns the latest runs, newest first, read in one read-only transaction.
func (r *HistoryRepo) ListRuns(ctx context.Context, limit int) (runs []models.IngestionRun, err error) {
	const op = "HistoryRepo.ListRuns"

	start := time.Now()
	defer func() { metrics.RecordHistoryQuery(driverName, "list_runs", err, time.Since(start)) }()

	err = r.trm.DoReadOnly(ctx, func(ctx context.Context) error {
		rows, err := TxorDB(ctx, r.db).Query(ctx, `
			SELECT r.id, r.month, r.status, r.message, r.rows_loaded, r.rows_cleaned,
			       r.dataset_sha256, r.metrics_file, r.started_at, r.finished_at,
			       s.average_price_per_mile, s.payment_type_counts, s.custom_indicator
			FROM ingestion_runs r
			LEFT JOIN metrics_snapshots s ON s.run_id = r.id
			ORDER BY r.started_at DESC
			LIMIT $1;`, limit)
		if err != nil {
			return err
		}
		defer rows.Close()

		runs, err = scanRuns(rows, limit)
		return err
	})
	if err != nil {
		return nil, wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}

	return runs, nil
}

func scanRuns(rows pgx.Rows, limit int) ([]models.IngestionRun, error) {
	runs := make([]models.IngestionRun, 0, limit)
	for rows.Next() {
		var (
			run    models.IngestionRun
			status string
			avg    *float64
			counts []byte
			custom *float64
		)
		if err := rows.Scan(
			&run.ID, &run.Month, &status, &run.Message, &run.RowsLoaded, &run.RowsCleaned,
			&run.DatasetSHA256, &run.MetricsFile, &run.StartedAt, &run.FinishedAt,
			&avg, &counts, &custom,
		); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		run.Status = types.IngestionStatus(status)

		if avg != nil && custom != nil {
			rec := &models.MetricsRecord{AveragePricePerMile: *avg, CustomIndicator: *custom}
			if err := json.Unmarshal(counts, &rec.PaymentTypeCounts); err != nil {
				return nil, fmt.Errorf("decode payment counts: %w", err)
			}
			run.Record = rec
		}

		runs = append(runs, run)
	}

	return runs, rows.Err()
}

package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS ingestion_runs (
		id             UUID PRIMARY KEY,
		month          VARCHAR(7)  NOT NULL,
		status         VARCHAR(16) NOT NULL,
		message        TEXT        NOT NULL DEFAULT '',
		rows_loaded    BIGINT      NOT NULL DEFAULT 0,
		rows_cleaned   BIGINT      NOT NULL DEFAULT 0,
		dataset_sha256 TEXT        NOT NULL DEFAULT '',
		metrics_file   TEXT        NOT NULL DEFAULT '',
		started_at     TIMESTAMPTZ NOT NULL,
		finished_at    TIMESTAMPTZ NOT NULL
	);`,
	`CREATE INDEX IF NOT EXISTS ingestion_runs_started_at_idx ON ingestion_runs (started_at DESC);`,
	`CREATE TABLE IF NOT EXISTS metrics_snapshots (
		run_id                 UUID PRIMARY KEY REFERENCES ingestion_runs (id) ON DELETE CASCADE,
		average_price_per_mile DOUBLE PRECISION NOT NULL,
		payment_type_counts    JSONB            NOT NULL,
		custom_indicator       DOUBLE PRECISION NOT NULL
	);`,
}

// Migrate creates the run history tables when they are missing.
func Migrate(ctx context.Context, db *pgxpool.Pool) error {
	for _, stmt := range schema {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("postgres migrate: %w", err)
		}
	}
	return nil
}

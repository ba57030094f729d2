package models

import (
	"time"

	"github.com/Temutjin2k/taxi-kpis/internal/domain/types"
	"github.com/google/uuid"
)

// IngestionOutcome is what a refresh reports back to its caller.
type IngestionOutcome struct {
	RunID       uuid.UUID
	Month       string
	Status      types.IngestionStatus
	Record      *MetricsRecord // nil when the cache was up to date
	MetricsFile string
}

// IngestionRun is one row of the run history.
type IngestionRun struct {
	ID            uuid.UUID             `json:"id"`
	Month         string                `json:"month"`
	Status        types.IngestionStatus `json:"status"`
	Message       string                `json:"message,omitempty"`
	RowsLoaded    int                   `json:"rows_loaded"`
	RowsCleaned   int                   `json:"rows_cleaned"`
	DatasetSHA256 string                `json:"dataset_sha256,omitempty"`
	MetricsFile   string                `json:"metrics_file,omitempty"`
	StartedAt     time.Time             `json:"started_at"`
	FinishedAt    time.Time             `json:"finished_at"`

	// Record is stored alongside the run when metrics were computed.
	Record *MetricsRecord `json:"metrics,omitempty"`
}

func (r IngestionRun) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

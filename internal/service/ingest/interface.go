package ingest

import (
	"context"

	"github.com/Temutjin2k/taxi-kpis/internal/domain/models"
	"github.com/Temutjin2k/taxi-kpis/internal/service/analytics"
)

type Source interface {
	URL(month string) string
	Ext() string
	Download(ctx context.Context, month, dest string) (int64, error)
}

type DatasetLoader interface {
	Load(ctx context.Context, path string) (*models.Dataset, error)
}

type MetricsEngine interface {
	Run(ctx context.Context, ds *models.Dataset) (*analytics.Result, error)
}

type MetricsSaver interface {
	Save(ctx context.Context, rec *models.MetricsRecord) (string, error)
}

type HistoryStore interface {
	SaveRun(ctx context.Context, run *models.IngestionRun) error
	ListRuns(ctx context.Context, limit int) ([]models.IngestionRun, error)
}

type EventPublisher interface {
	PublishMetricsComputed(ctx context.Context, msg models.MetricsComputedMessage) error
}

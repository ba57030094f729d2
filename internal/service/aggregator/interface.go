package aggregator

import (
	"context"

	"github.com/Temutjin2k/taxi-kpis/internal/domain/models"
)

type MetricsRepository interface {
	List(ctx context.Context) ([]string, error)
	Read(ctx context.Context, name string) (*models.MetricsFile, error)
}

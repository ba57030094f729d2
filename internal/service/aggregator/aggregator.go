package aggregator

import (
	"context"
	"fmt"

	"github.com/Temutjin2k/taxi-kpis/internal/domain/models"
	"github.com/Temutjin2k/taxi-kpis/internal/domain/types"
	"github.com/Temutjin2k/taxi-kpis/pkg/logger"
	wrap "github.com/Temutjin2k/taxi-kpis/pkg/logger/wrapper"
	"github.com/Temutjin2k/taxi-kpis/pkg/metrics"
)

// Service averages every stored metrics record into the dashboard view.
type Service struct {
	repo MetricsRepository
	l    logger.Logger
}

func NewService(repo MetricsRepository, l logger.Logger) *Service {
	return &Service{
		repo: repo,
		l:    l,
	}
}

// Aggregate reads all metrics files and returns their unweighted mean.
// Files that cannot be used are skipped and reported. When no file is usable
// the result is types.ErrNoData.
func (s *Service) Aggregate(ctx context.Context) (*models.AggregateResult, error) {
	ctx = wrap.WithAction(ctx, types.ActionAggregate)

	names, err := s.repo.List(ctx)
	if err != nil {
		return nil, wrap.Error(ctx, fmt.Errorf("list metrics files: %w", err))
	}

	result := &models.AggregateResult{}
	for _, name := range names {
		file, err := s.repo.Read(ctx, name)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			s.l.Warn(wrap.WithAction(ctx, types.ActionMetricsFileSkip), "skipping metrics file", "file", name, "error", err.Error())
			metrics.AggregationFilesSkipped.Inc()
			result.Skipped = append(result.Skipped, models.SkippedFile{Name: name, Reason: err.Error()})
			continue
		}
		result.Files = append(result.Files, *file)
	}

	if len(result.Files) == 0 {
		return result, types.ErrNoData
	}

	result.View = Mean(result.Files)

	return result, nil
}

// Mean averages each field over files. A payment code absent from a file
// counts as zero for that file.
func Mean(files []models.MetricsFile) models.AggregateView {
	view := models.AggregateView{PaymentTypeCounts: make(map[string]float64)}
	if len(files) == 0 {
		return view
	}

	for _, f := range files {
		view.AveragePricePerMile += f.Record.AveragePricePerMile
		view.CustomIndicator += f.Record.CustomIndicator
		for code, n := range f.Record.PaymentTypeCounts {
			view.PaymentTypeCounts[code] += float64(n)
		}
	}

	n := float64(len(files))
	view.AveragePricePerMile /= n
	view.CustomIndicator /= n
	for code := range view.PaymentTypeCounts {
		view.PaymentTypeCounts[code] /= n
	}

	return view
}

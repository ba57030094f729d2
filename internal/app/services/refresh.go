package services

import (
	"context"
	"fmt"
	"time"

	"github.com/Temutjin2k/taxi-kpis/config"
	"github.com/Temutjin2k/taxi-kpis/internal/domain/types"
	"github.com/Temutjin2k/taxi-kpis/pkg/logger"
	wrap "github.com/Temutjin2k/taxi-kpis/pkg/logger/wrapper"
)

// RefreshService runs a single ingestion and exits.
type RefreshService struct {
	pipeline *pipeline
	month    string

	log logger.Logger
}

func NewRefresh(ctx context.Context, cfg config.Config, month string, log logger.Logger) (*RefreshService, error) {
	p, err := newPipeline(ctx, cfg, log)
	if err != nil {
		log.Error(ctx, "failed to setup pipeline", err)
		return nil, err
	}

	return &RefreshService{
		pipeline: p,
		month:    month,
		log:      log,
	}, nil
}

func (s *RefreshService) Start(ctx context.Context) error {
	ctx = wrap.WithAction(ctx, types.ActionRefresh)
	defer s.pipeline.close(context.WithoutCancel(ctx))

	start := time.Now()
	outcome, err := s.pipeline.ingest.Refresh(ctx, s.month)
	if err != nil {
		return fmt.Errorf("refresh %s: %w", s.month, err)
	}

	s.log.Info(ctx, "refresh finished",
		"month", outcome.Month,
		"status", outcome.Status,
		"metrics_file", outcome.MetricsFile,
		"run_id", outcome.RunID,
		"duration", time.Since(start),
	)

	// stdout carries only the status, like the /compute response body
	fmt.Println(outcome.Status.String())
	return nil
}

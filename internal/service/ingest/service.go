package ingest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Temutjin2k/taxi-kpis/internal/domain/models"
	"github.com/Temutjin2k/taxi-kpis/internal/domain/types"
	"github.com/Temutjin2k/taxi-kpis/pkg/hasher"
	"github.com/Temutjin2k/taxi-kpis/pkg/logger"
	wrap "github.com/Temutjin2k/taxi-kpis/pkg/logger/wrapper"
	"github.com/Temutjin2k/taxi-kpis/pkg/metrics"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// Service decides whether the cached dataset of a month is current and, when
// it is not, fetches it and stores a new metrics record.
type Service struct {
	dataDir string

	source    Source
	loader    DatasetLoader
	engine    MetricsEngine
	saver     MetricsSaver
	history   HistoryStore
	publisher EventPublisher

	group singleflight.Group
	now   func() time.Time
	l     logger.Logger
}

func NewService(
	dataDir string,
	source Source,
	loader DatasetLoader,
	engine MetricsEngine,
	saver MetricsSaver,
	history HistoryStore,
	publisher EventPublisher,
	l logger.Logger,
) *Service {
	return &Service{
		dataDir:   dataDir,
		source:    source,
		loader:    loader,
		engine:    engine,
		saver:     saver,
		history:   history,
		publisher: publisher,
		now:       time.Now,
		l:         l,
	}
}

// WithClock replaces the clock used for the default month and staleness.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// CachePath is the local file the dataset of month is cached in.
func (s *Service) CachePath(month string) string {
	return filepath.Join(s.dataDir, "yellow_tripdata_"+month+s.source.Ext())
}

// Refresh brings the metrics for month up to date. Concurrent calls for the
// same month share one run. The shared run is detached from the caller's
// cancellation; a caller whose ctx ends stops waiting and gets ctx.Err().
func (s *Service) Refresh(ctx context.Context, month string) (*models.IngestionOutcome, error) {
	month, err := ResolveMonth(month, s.now())
	if err != nil {
		return nil, err
	}

	ch := s.group.DoChan(month, func() (any, error) {
		return s.refresh(context.WithoutCancel(ctx), month)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*models.IngestionOutcome), nil
	}
}

func (s *Service) refresh(ctx context.Context, month string) (*models.IngestionOutcome, error) {
	run := &models.IngestionRun{
		ID:        uuid.New(),
		Month:     month,
		StartedAt: s.now(),
	}

	ctx = wrap.WithAction(ctx, types.ActionRefresh)
	ctx = wrap.WithMonth(ctx, month)
	ctx = wrap.WithRunID(ctx, run.ID.String())

	outcome, err := s.run(ctx, run)

	run.FinishedAt = s.now()
	if err != nil {
		run.Status = types.StatusFailed
		run.Message = err.Error()
	}
	metrics.RecordIngestion(run.Status.String(), run.Duration())
	s.recordRun(ctx, run)

	if err != nil {
		return nil, err
	}
	return outcome, nil
}

func (s *Service) run(ctx context.Context, run *models.IngestionRun) (*models.IngestionOutcome, error) {
	path := s.CachePath(run.Month)

	ds, ok := s.loadCached(ctx, path)
	if ok {
		run.RowsLoaded = ds.Rows
		if IsUpToDate(ds.LatestPickup, s.now()) {
			s.l.Info(ctx, "cached dataset is up to date", "path", path, "latest_pickup", ds.LatestPickup)
			run.Status = types.StatusUpToDate
			return &models.IngestionOutcome{RunID: run.ID, Month: run.Month, Status: types.StatusUpToDate}, nil
		}
		s.l.Info(ctx, "cached dataset is stale", "path", path, "latest_pickup", ds.LatestPickup)
	}

	size, err := s.source.Download(ctx, run.Month, path)
	if err != nil {
		return nil, wrap.Error(ctx, err)
	}
	s.l.Info(wrap.WithAction(ctx, types.ActionDatasetDownloaded), "dataset downloaded",
		"url", s.source.URL(run.Month), "path", path, "bytes", size)

	if sum, err := hasher.SumFile(path); err != nil {
		s.l.Warn(ctx, "failed to hash dataset", "path", path, "error", err.Error())
	} else {
		run.DatasetSHA256 = sum
	}

	ds, err = s.loader.Load(ctx, path)
	if err != nil {
		return nil, wrap.Error(ctx, fmt.Errorf("load downloaded dataset: %w", err))
	}
	run.RowsLoaded = ds.Rows

	res, err := s.engine.Run(ctx, ds)
	if res != nil {
		run.RowsCleaned = res.RowsCleaned
	}
	metrics.RecordDatasetRows(run.RowsLoaded, run.RowsCleaned)
	if err != nil {
		return nil, wrap.Error(ctx, err)
	}

	file, err := s.saver.Save(ctx, res.Record)
	if err != nil {
		return nil, wrap.Error(ctx, fmt.Errorf("save metrics: %w", err))
	}
	s.l.Info(wrap.WithAction(ctx, types.ActionMetricsSaved), "metrics saved",
		"file", file, "rows_loaded", run.RowsLoaded, "rows_cleaned", run.RowsCleaned)

	run.Status = types.StatusComputed
	run.MetricsFile = filepath.Base(file)
	run.Record = res.Record

	s.publish(ctx, run)

	return &models.IngestionOutcome{
		RunID:       run.ID,
		Month:       run.Month,
		Status:      types.StatusComputed,
		Record:      res.Record,
		MetricsFile: run.MetricsFile,
	}, nil
}

// loadCached returns the cached dataset if it exists and parses. A corrupt
// file is reported as absent.
func (s *Service) loadCached(ctx context.Context, path string) (*models.Dataset, bool) {
	if _, err := os.Stat(path); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.l.Warn(ctx, "failed to stat cached dataset", "path", path, "error", err.Error())
		}
		return nil, false
	}

	ds, err := s.loader.Load(ctx, path)
	if err != nil {
		s.l.Warn(ctx, "cached dataset is unreadable, fetching again", "path", path, "error", err.Error())
		return nil, false
	}

	return ds, true
}

func (s *Service) publish(ctx context.Context, run *models.IngestionRun) {
	if s.publisher == nil {
		return
	}

	msg := models.MetricsComputedMessage{
		RunID:       run.ID.String(),
		Month:       run.Month,
		MetricsFile: run.MetricsFile,
		Metrics:     *run.Record,
		ComputedAt:  s.now(),
	}
	if err := s.publisher.PublishMetricsComputed(ctx, msg); err != nil {
		s.l.Error(wrap.ErrorCtx(ctx, err), "failed to publish metrics computed event", err)
	}
}

func (s *Service) recordRun(ctx context.Context, run *models.IngestionRun) {
	if s.history == nil {
		return
	}
	if err := s.history.SaveRun(ctx, run); err != nil {
		s.l.Error(wrap.ErrorCtx(ctx, err), "failed to record ingestion run", err)
	}
}

// History returns the most recent ingestion runs, newest first.
func (s *Service) History(ctx context.Context, limit int) ([]models.IngestionRun, error) {
	if s.history == nil {
		return []models.IngestionRun{}, nil
	}
	runs, err := s.history.ListRuns(ctx, limit)
	if err != nil {
		return nil, wrap.Error(ctx, err)
	}
	return runs, nil
}

package services

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Temutjin2k/taxi-kpis/config"
	"github.com/Temutjin2k/taxi-kpis/internal/adapter/excel"
	httpserver "github.com/Temutjin2k/taxi-kpis/internal/adapter/http/server"
	"github.com/Temutjin2k/taxi-kpis/internal/adapter/http/middleware"
	"github.com/Temutjin2k/taxi-kpis/internal/adapter/watcher"
	"github.com/Temutjin2k/taxi-kpis/internal/domain/models"
	"github.com/Temutjin2k/taxi-kpis/internal/domain/types"
	"github.com/Temutjin2k/taxi-kpis/internal/service/auth"
	"github.com/Temutjin2k/taxi-kpis/pkg/logger"
	wrap "github.com/Temutjin2k/taxi-kpis/pkg/logger/wrapper"
	ws "github.com/Temutjin2k/taxi-kpis/pkg/wsHub"
	"github.com/robfig/cron"
)

// ServerService serves the dashboard and the compute trigger, runs the
// optional scheduled refresh and pushes aggregate updates to live clients.
type ServerService struct {
	pipeline   *pipeline
	httpServer *httpserver.API
	hub        *ws.ConnectionHub
	watcher    *watcher.DirWatcher
	scheduler  *cron.Cron

	cfg config.Config
	log logger.Logger
}

func NewServer(ctx context.Context, cfg config.Config, version string, log logger.Logger) (*ServerService, error) {
	p, err := newPipeline(ctx, cfg, log)
	if err != nil {
		log.Error(ctx, "failed to setup pipeline", err)
		return nil, err
	}

	s := &ServerService{
		pipeline: p,
		hub:      ws.NewConnHub(log),
		cfg:      cfg,
		log:      log,
	}

	var tokens middleware.TokenValidator
	if cfg.Auth.Enabled {
		tokenSvc, err := auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
		if err != nil {
			s.close(ctx)
			return nil, err
		}
		tokens = tokenSvc
	}

	s.httpServer, err = httpserver.New(cfg.HTTP, version, httpserver.Deps{
		Ingest:    p.ingest,
		Aggregate: p.aggregator,
		Workbook:  excel.WriteDashboard,
		Hub:       s.hub,
		Tokens:    tokens,
	}, log)
	if err != nil {
		log.Error(ctx, "failed to setup http server", err)
		s.close(ctx)
		return nil, err
	}

	s.watcher, err = watcher.New(cfg.App.MetricsDir, log)
	if err != nil {
		log.Error(ctx, "failed to watch metrics directory", err)
		s.close(ctx)
		return nil, err
	}

	if cfg.Scheduler.Enabled {
		if err := s.setupScheduler(ctx); err != nil {
			s.close(ctx)
			return nil, err
		}
	}

	return s, nil
}

func (s *ServerService) setupScheduler(ctx context.Context) error {
	s.scheduler = cron.New()
	schedule := fmt.Sprintf("@every %s", s.cfg.Scheduler.Interval)

	err := s.scheduler.AddFunc(schedule, func() {
		ctx := wrap.WithAction(ctx, types.ActionScheduledRefresh)
		start := time.Now()

		outcome, err := s.pipeline.ingest.Refresh(ctx, s.cfg.Scheduler.Month)
		if err != nil {
			s.log.Error(wrap.ErrorCtx(ctx, err), "scheduled refresh failed", err)
			return
		}
		s.log.Info(ctx, "scheduled refresh finished",
			"month", outcome.Month,
			"status", outcome.Status,
			"duration", time.Since(start),
		)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule refresh %q: %w", schedule, err)
	}
	return nil
}

// pushDashboard aggregates the metrics directory and broadcasts the result.
func (s *ServerService) pushDashboard(ctx context.Context) {
	ctx = wrap.WithAction(ctx, types.ActionDashboardPushed)

	if s.hub.Count() == 0 {
		return
	}

	res, err := s.pipeline.aggregator.Aggregate(ctx)
	if err != nil {
		s.log.Warn(ctx, "pushing dashboard without data", "err", err.Error())
	}

	sent := s.hub.Broadcast(models.NewDashboardUpdate(res, err, time.Now()))
	s.log.Debug(ctx, "dashboard update pushed", "clients", sent)
}

func (s *ServerService) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 2)

	s.httpServer.Run(ctx, errCh)
	defer func() {
		s.close(ctx)
		s.log.Info(ctx, "kpi service closed")
	}()

	go func() {
		if err := s.watcher.Watch(ctx, s.pushDashboard); err != nil {
			errCh <- fmt.Errorf("metrics directory watcher: %w", err)
		}
	}()

	if s.scheduler != nil {
		s.scheduler.Start()
		s.log.Info(ctx, "scheduled refresh enabled", "interval", s.cfg.Scheduler.Interval.String(), "month", s.cfg.Scheduler.Month)
	}

	// Waiting signal
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	s.log.Info(ctx, "kpi service started", "auth_enabled", s.cfg.Auth.Enabled, "history", s.cfg.History.Driver)

	select {
	case errRun := <-errCh:
		return errRun
	case sig := <-shutdownCh:
		s.log.Info(ctx, "shuting down application", "signal", sig.String())
		return nil
	}
}

func (s *ServerService) close(ctx context.Context) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()

	if s.scheduler != nil {
		s.scheduler.Stop()
	}

	if s.httpServer != nil {
		if err := s.httpServer.Stop(ctx); err != nil {
			s.log.Warn(ctx, "failed to gracefully close http server", "error", err.Error())
		}
	}

	if s.watcher != nil {
		if err := s.watcher.Close(); err != nil {
			s.log.Warn(ctx, "failed to close metrics watcher", "error", err.Error())
		}
	}

	s.hub.Close()
	s.pipeline.close(ctx)
}

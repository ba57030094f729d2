package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/Temutjin2k/taxi-kpis/config"
	"github.com/Temutjin2k/taxi-kpis/internal/app/services"
	"github.com/Temutjin2k/taxi-kpis/internal/domain/types"
	"github.com/Temutjin2k/taxi-kpis/pkg/logger"
)

var (
	ErrInvalidMode           = errors.New("invalid mode")
	ErrServiceNotInitialized = errors.New("service not initialized")
)

type Service interface {
	Start(ctx context.Context) error
}

type App struct {
	mode    types.ServiceMode
	service Service

	cfg     config.Config
	month   string
	version string
	log     logger.Logger
}

type Option func(*App)

// WithMonth sets the month refreshed in refresh mode.
func WithMonth(month string) Option {
	return func(a *App) {
		a.month = month
	}
}

func WithVersion(version string) Option {
	return func(a *App) {
		a.version = version
	}
}

// NewApplication
func NewApplication(ctx context.Context, cfg config.Config, log logger.Logger, opts ...Option) (*App, error) {
	app := &App{
		mode:    cfg.Mode,
		cfg:     cfg,
		version: "dev",
		log:     log,
	}
	for _, opt := range opts {
		opt(app)
	}

	if err := app.initService(ctx, app.mode); err != nil {
		return nil, err
	}

	return app, nil
}

func (a *App) Run(ctx context.Context) error {
	if a.service == nil {
		return ErrServiceNotInitialized
	}

	if err := a.service.Start(ctx); err != nil {
		return err
	}

	return nil
}

func (a *App) initService(ctx context.Context, mode types.ServiceMode) error {
	var (
		service Service
		err     error
	)
	switch mode {
	case types.ServerMode:
		service, err = services.NewServer(ctx, a.cfg, a.version, a.log)
	case types.RefreshMode:
		service, err = services.NewRefresh(ctx, a.cfg, a.month, a.log)
	default:
		return fmt.Errorf("%w: %s", ErrInvalidMode, mode)
	}

	if err != nil {
		return fmt.Errorf("failed to init service: %w", err)
	}

	a.service = service

	return nil
}

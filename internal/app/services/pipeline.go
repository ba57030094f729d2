package services

import (
	"context"
	"fmt"

	"github.com/Temutjin2k/taxi-kpis/config"
	"github.com/Temutjin2k/taxi-kpis/internal/adapter/dataset"
	"github.com/Temutjin2k/taxi-kpis/internal/adapter/filestore"
	repo "github.com/Temutjin2k/taxi-kpis/internal/adapter/postgres"
	kpibroker "github.com/Temutjin2k/taxi-kpis/internal/adapter/rabbit"
	"github.com/Temutjin2k/taxi-kpis/internal/adapter/source"
	"github.com/Temutjin2k/taxi-kpis/internal/adapter/sqlite"
	"github.com/Temutjin2k/taxi-kpis/internal/domain/types"
	"github.com/Temutjin2k/taxi-kpis/internal/service/aggregator"
	"github.com/Temutjin2k/taxi-kpis/internal/service/analytics"
	"github.com/Temutjin2k/taxi-kpis/internal/service/ingest"
	"github.com/Temutjin2k/taxi-kpis/pkg/logger"
	"github.com/Temutjin2k/taxi-kpis/pkg/postgres"
	"github.com/Temutjin2k/taxi-kpis/pkg/rabbit"
	"github.com/Temutjin2k/taxi-kpis/pkg/trm"
)

// pipeline is the part of the system shared by every mode: the ingestion
// refresh, the aggregator and the optional history and event sinks.
type pipeline struct {
	store      *filestore.MetricsStore
	ingest     *ingest.Service
	aggregator *aggregator.Service

	postgresDB *postgres.PostgreDB
	sqliteDB   *sqlite.HistoryStore
	rabbitMQ   *rabbit.RabbitMQ

	log logger.Logger
}

func newPipeline(ctx context.Context, cfg config.Config, log logger.Logger) (*pipeline, error) {
	src := source.New(cfg.App.SourceURLTemplate, cfg.App.FetchTimeout)
	if !dataset.IsSupported(src.Ext()) {
		return nil, fmt.Errorf("%w: %q", types.ErrUnsupportedFormat, src.Ext())
	}

	p := &pipeline{
		store: filestore.NewMetricsStore(cfg.App.MetricsDir),
		log:   log,
	}

	history, err := p.setupHistory(ctx, cfg)
	if err != nil {
		p.close(ctx)
		return nil, err
	}

	publisher, err := p.setupPublisher(ctx, cfg)
	if err != nil {
		p.close(ctx)
		return nil, err
	}

	p.ingest = ingest.NewService(
		cfg.App.DataDir,
		src,
		dataset.NewLoader(),
		analytics.NewEngine(cfg.App.VendorID, log),
		p.store,
		history,
		publisher,
		log,
	)
	p.aggregator = aggregator.NewService(p.store, log)

	return p, nil
}

// setupHistory returns a nil interface when history is disabled.
func (p *pipeline) setupHistory(ctx context.Context, cfg config.Config) (ingest.HistoryStore, error) {
	switch cfg.History.Driver {
	case types.HistorySqlite:
		store, err := sqlite.New(cfg.History.SqlitePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite history: %w", err)
		}
		p.sqliteDB = store
		return store, nil

	case types.HistoryPostgres:
		db, err := postgres.New(ctx, cfg.Database, postgres.PoolOptions{
			MaxConns:        cfg.Database.MaxConns,
			MinConns:        cfg.Database.MinConns,
			MaxConnLifetime: cfg.Database.MaxConnLifetime,
			MaxConnIdleTime: cfg.Database.MaxConnIdleTime,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to setup database: %w", err)
		}
		p.postgresDB = db

		if err := repo.Migrate(ctx, db.Pool); err != nil {
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
		return repo.NewHistoryRepo(db.Pool, trm.New(db.Pool)), nil

	default:
		return nil, nil
	}
}

// setupPublisher returns a nil interface when RabbitMQ is disabled.
func (p *pipeline) setupPublisher(ctx context.Context, cfg config.Config) (ingest.EventPublisher, error) {
	if !cfg.RabbitMQ.Enabled {
		return nil, nil
	}

	client, err := rabbit.New(ctx, cfg.RabbitMQ.GetDSN(), p.log)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to rabbitmq: %w", err)
	}
	p.rabbitMQ = client

	broker, err := kpibroker.NewKPIBroker(client, cfg.RabbitMQ.Exchange, p.log)
	if err != nil {
		return nil, err
	}
	return broker, nil
}

func (p *pipeline) close(ctx context.Context) {
	if p.rabbitMQ != nil {
		if err := p.rabbitMQ.Close(ctx); err != nil {
			p.log.Warn(ctx, "failed to close rabbitmq", "error", err.Error())
		}
	}

	if p.sqliteDB != nil {
		if err := p.sqliteDB.Close(); err != nil {
			p.log.Warn(ctx, "failed to close sqlite history", "error", err.Error())
		}
	}

	if p.postgresDB != nil {
		p.postgresDB.Close()
	}
}

package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Temutjin2k/taxi-kpis/config"
	"github.com/Temutjin2k/taxi-kpis/internal/adapter/http/handler"
	"github.com/Temutjin2k/taxi-kpis/internal/adapter/http/middleware"
	"github.com/Temutjin2k/taxi-kpis/pkg/logger"
	wrap "github.com/Temutjin2k/taxi-kpis/pkg/logger/wrapper"
	ws "github.com/Temutjin2k/taxi-kpis/pkg/wsHub"
)

const (
	serverIPAddress = "%s:%s"
	serviceName     = "taxi-kpis"
	swaggerInstance = "kpis"
)

type API struct {
	mux    *http.ServeMux
	server *http.Server
	routes *handlers
	m      *middleware.Middleware

	addr string
	log  logger.Logger
}

type handlers struct {
	health *handler.Health
	kpi    *handler.KPI
	page   *handler.Page
	export *handler.Export
	live   *handler.LiveDashboard
}

// Deps are the services the HTTP surface calls into. Tokens may be nil, which
// leaves /compute open.
type Deps struct {
	Ingest    handler.IngestService
	Aggregate handler.AggregateService
	Workbook  handler.WorkbookWriter
	Hub       *ws.ConnectionHub
	Tokens    middleware.TokenValidator
}

func New(cfg config.HTTPConfig, version string, deps Deps, log logger.Logger) (*API, error) {
	switch {
	case deps.Ingest == nil:
		return nil, errors.New("ingest service is required")
	case deps.Aggregate == nil:
		return nil, errors.New("aggregate service is required")
	case deps.Workbook == nil:
		return nil, errors.New("workbook writer is required")
	case deps.Hub == nil:
		return nil, errors.New("websocket hub is required")
	}

	api := &API{
		mux: http.NewServeMux(),
		routes: &handlers{
			health: handler.NewHealth(serviceName, version, log),
			kpi:    handler.NewKPI(deps.Ingest, deps.Aggregate, log),
			page:   handler.NewPage(deps.Aggregate, log),
			export: handler.NewExport(deps.Aggregate, deps.Workbook, log),
			live:   handler.NewLiveDashboard(deps.Hub, deps.Aggregate, log),
		},
		m:    middleware.NewMiddleware(deps.Tokens, log),
		addr: fmt.Sprintf(serverIPAddress, "0.0.0.0", cfg.Port),
		log:  log,
	}

	api.setupRoutes()

	api.server = &http.Server{
		Addr:              api.addr,
		Handler:           api.withMiddleware(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
	}

	return api, nil
}

// Handler returns the fully wrapped router.
func (a *API) Handler() http.Handler {
	return a.server.Handler
}

func (a *API) Stop(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	ctx = wrap.WithAction(ctx, "http_server_stop")

	a.log.Debug(ctx, "shutting down HTTP server...", "address", a.addr)
	if err := a.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("error shutting down server: %w", err)
	}
	a.log.Debug(ctx, "shutting down HTTP server completed")

	return nil
}

func (a *API) Run(ctx context.Context, errCh chan<- error) {
	go func() {
		ctx = wrap.WithAction(ctx, "http_server_start")
		a.log.Info(ctx, "started http server", "address", a.addr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("failed to start HTTP server: %w", err)
			return
		}
	}()
}

// withMiddleware applies middlewares to the mux
func (a *API) withMiddleware() http.Handler {
	return a.m.Recover(a.m.RequestID(a.m.Logging(a.m.Metrics(serviceName)(a.mux))))
}

package server

import (
	_ "github.com/Temutjin2k/taxi-kpis/docs"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
)

// setupRoutes - setups http routes
func (a *API) setupRoutes() {
	// System Health
	a.mux.HandleFunc("GET /health", a.routes.health.HealthCheck)

	a.mux.HandleFunc("GET /{$}", a.routes.page.Home)
	a.mux.HandleFunc("GET /dashboard", a.routes.kpi.Dashboard)
	a.mux.HandleFunc("GET /dashboard.xlsx", a.routes.export.DashboardXLSX)
	a.mux.HandleFunc("GET /ingestions", a.routes.kpi.Ingestions)
	a.mux.HandleFunc("GET /ws/dashboard", a.routes.live.HandleWS)

	// Trigger a refresh, admin only when auth is enabled
	a.mux.Handle("GET /compute", a.m.RequireAdmin(a.routes.kpi.Compute))
	a.mux.Handle("POST /compute", a.m.RequireAdmin(a.routes.kpi.Compute))

	a.setupSwaggerRoutes()
	a.setupMetricsRoute()
}

// setupSwaggerRoutes configures the Swagger UI endpoint
func (a *API) setupSwaggerRoutes() {
	a.mux.HandleFunc("/swagger/", httpSwagger.Handler(httpSwagger.InstanceName(swaggerInstance)))
}

// setupMetricsRoute configures the Prometheus metrics endpoint
func (a *API) setupMetricsRoute() {
	a.mux.Handle("GET /metrics", promhttp.Handler())
}

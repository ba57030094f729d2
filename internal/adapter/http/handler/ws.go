package handler

import (
	"net/http"
	"time"

	"github.com/Temutjin2k/taxi-kpis/internal/domain/models"
	"github.com/Temutjin2k/taxi-kpis/pkg/logger"
	wrap "github.com/Temutjin2k/taxi-kpis/pkg/logger/wrapper"
	"github.com/Temutjin2k/taxi-kpis/pkg/metrics"
	ws "github.com/Temutjin2k/taxi-kpis/pkg/wsHub"
	"github.com/gorilla/websocket"
)

const wsServiceLabel = "dashboard"

type LiveDashboard struct {
	hub       *ws.ConnectionHub
	aggregate AggregateService
	upgrader  websocket.Upgrader
	l         logger.Logger
}

func NewLiveDashboard(hub *ws.ConnectionHub, aggregate AggregateService, l logger.Logger) *LiveDashboard {
	return &LiveDashboard{
		hub:       hub,
		aggregate: aggregate,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		l: l,
	}
}

// HandleWS godoc
// @Summary      Live dashboard
// @Description  WebSocket stream of aggregate updates. The current aggregate is sent right after the upgrade.
// @Tags         KPI
// @Success      101  {object}  models.DashboardUpdateMessage
// @Router       /ws/dashboard [get]
func (h *LiveDashboard) HandleWS(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "ws_dashboard")

	wsConn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already replied to the client.
		h.l.Error(ctx, "failed to upgrade connection", err)
		return
	}

	conn := ws.NewConn(ctx, wsConn)
	if err := h.hub.Add(conn); err != nil {
		h.l.Error(ctx, "failed to register connection", err)
		_ = conn.Close()
		return
	}
	metrics.WebSocketConnectionsGauge.WithLabelValues(wsServiceLabel).Inc()
	defer metrics.WebSocketConnectionsGauge.WithLabelValues(wsServiceLabel).Dec()
	defer h.hub.Delete(conn.ID())

	h.l.Debug(ctx, "dashboard client connected", "conn_id", conn.ID())

	res, aggErr := h.aggregate.Aggregate(ctx)
	if err := conn.Send(models.NewDashboardUpdate(res, aggErr, time.Now())); err != nil {
		h.l.Warn(ctx, "failed to send initial aggregate", "conn_id", conn.ID(), "err", err.Error())
		return
	}

	if err := conn.Listen(); err != nil {
		h.l.Debug(ctx, "dashboard client gone", "conn_id", conn.ID(), "err", err.Error())
	}
}

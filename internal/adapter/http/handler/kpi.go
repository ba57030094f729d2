package handler

import (
	"context"
	"net/http"

	"github.com/Temutjin2k/taxi-kpis/internal/domain/models"
	"github.com/Temutjin2k/taxi-kpis/pkg/logger"
	wrap "github.com/Temutjin2k/taxi-kpis/pkg/logger/wrapper"
)

type (
	IngestService interface {
		Refresh(ctx context.Context, month string) (*models.IngestionOutcome, error)
		History(ctx context.Context, limit int) ([]models.IngestionRun, error)
	}

	AggregateService interface {
		Aggregate(ctx context.Context) (*models.AggregateResult, error)
	}
)

type KPI struct {
	ingest    IngestService
	aggregate AggregateService
	l         logger.Logger
}

func NewKPI(ingest IngestService, aggregate AggregateService, l logger.Logger) *KPI {
	return &KPI{
		ingest:    ingest,
		aggregate: aggregate,
		l:         l,
	}
}

// Compute godoc
// @Summary      Refresh monthly metrics
// @Description  Downloads the month's dataset when the cached copy is missing or stale, then computes and stores a metrics record
// @Tags         KPI
// @Produce      plain
// @Param        month  query     string  false  "Dataset month, YYYY-MM (default current month)"
// @Security     BearerAuth
// @Success      200  {string}  string  "up to date | computed"
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      422  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /compute [get]
// @Router       /compute [post]
func (h *KPI) Compute(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "http_compute")
	month := r.URL.Query().Get("month")

	outcome, err := h.ingest.Refresh(ctx, month)
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "refresh failed", err, "month", month)
		errorFrom(w, err)
		return
	}

	h.l.Info(ctx, "refresh finished", "month", outcome.Month, "status", outcome.Status, "run_id", outcome.RunID)
	writeText(w, http.StatusOK, outcome.Status.String())
}

// Dashboard godoc
// @Summary      Aggregate metrics
// @Description  Returns the mean of every stored metrics record
// @Tags         KPI
// @Produce      json
// @Success      200  {object}  models.AggregateView
// @Failure      404  {object}  map[string]string
// @Router       /dashboard [get]
func (h *KPI) Dashboard(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "http_dashboard")

	res, err := h.aggregate.Aggregate(ctx)
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to aggregate metrics", err)
		errorFrom(w, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, res.View, nil); err != nil {
		h.l.Error(ctx, "failed to write response", err)
		w.WriteHeader(http.StatusInternalServerError)
	}
}

const (
	defaultRunsLimit = 20
	maxRunsLimit     = 100
)

// Ingestions godoc
// @Summary      Ingestion history
// @Description  Lists the most recent refresh runs, newest first
// @Tags         KPI
// @Produce      json
// @Param        limit  query     int  false  "Number of runs (1..100, default 20)"
// @Success      200  {object}  map[string][]models.IngestionRun
// @Failure      400  {object}  map[string]string
// @Router       /ingestions [get]
func (h *KPI) Ingestions(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "http_ingestions")

	limit, err := readInt(r.URL.Query(), "limit", defaultRunsLimit)
	if err != nil {
		badRequestResponse(w, err.Error())
		return
	}
	if limit < 1 || limit > maxRunsLimit {
		badRequestResponse(w, "limit must be between 1 and 100")
		return
	}

	runs, err := h.ingest.History(ctx, limit)
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to list ingestion runs", err)
		errorFrom(w, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, envelope{"runs": runs}, nil); err != nil {
		h.l.Error(ctx, "failed to write response", err)
		w.WriteHeader(http.StatusInternalServerError)
	}
}

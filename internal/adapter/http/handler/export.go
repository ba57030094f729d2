package handler

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strconv"

	"github.com/Temutjin2k/taxi-kpis/internal/domain/models"
	"github.com/Temutjin2k/taxi-kpis/pkg/logger"
	wrap "github.com/Temutjin2k/taxi-kpis/pkg/logger/wrapper"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// WorkbookWriter renders an aggregation result as a spreadsheet.
type WorkbookWriter func(w io.Writer, res *models.AggregateResult) error

type Export struct {
	aggregate AggregateService
	write     WorkbookWriter
	l         logger.Logger
}

func NewExport(aggregate AggregateService, write WorkbookWriter, l logger.Logger) *Export {
	return &Export{
		aggregate: aggregate,
		write:     write,
		l:         l,
	}
}

// DashboardXLSX godoc
// @Summary      Dashboard workbook
// @Description  Aggregate view, every stored metrics record and skipped files as an XLSX workbook
// @Tags         KPI
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success      200  {file}    binary
// @Failure      404  {object}  map[string]string
// @Router       /dashboard.xlsx [get]
func (h *Export) DashboardXLSX(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "http_dashboard_export")

	body, err := h.render(ctx)
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to export dashboard", err)
		errorFrom(w, err)
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="yellow_taxi_kpis.xlsx"`)
	w.Header().Set("Content-Length", strconv.Itoa(body.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := body.WriteTo(w); err != nil {
		h.l.Warn(ctx, "failed to write workbook", "err", err.Error())
	}
}

// render builds the whole workbook before anything is written, so a failure
// can still be reported as a JSON error.
func (h *Export) render(ctx context.Context) (*bytes.Buffer, error) {
	res, err := h.aggregate.Aggregate(ctx)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := h.write(&buf, res); err != nil {
		return nil, wrap.Error(ctx, err)
	}
	return &buf, nil
}

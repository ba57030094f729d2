package handler

import (
	"bytes"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/Temutjin2k/taxi-kpis/internal/domain/models"
	"github.com/Temutjin2k/taxi-kpis/internal/domain/types"
	"github.com/Temutjin2k/taxi-kpis/pkg/logger"
	wrap "github.com/Temutjin2k/taxi-kpis/pkg/logger/wrapper"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

//go:embed templates/dashboard.html
var templateFS embed.FS

var dashboardTmpl = template.Must(template.ParseFS(templateFS, "templates/dashboard.html"))

type paymentRow struct {
	Code  string
	Label string
	Count string
}

type pageData struct {
	HasData         bool
	Message         string
	AvgPricePerMile string
	CustomIndicator string
	Payments        []paymentRow
	Labels          map[string]string
	Files           int
	Skipped         int
	GeneratedAt     string
}

type Page struct {
	aggregate AggregateService
	printer   *message.Printer
	now       func() time.Time
	l         logger.Logger
}

func NewPage(aggregate AggregateService, l logger.Logger) *Page {
	return &Page{
		aggregate: aggregate,
		printer:   message.NewPrinter(language.English),
		now:       time.Now,
		l:         l,
	}
}

// Home godoc
// @Summary      Dashboard page
// @Description  HTML page with the aggregate view, kept live over /ws/dashboard
// @Tags         KPI
// @Produce      html
// @Success      200  {string}  string
// @Failure      404  {string}  string
// @Router       / [get]
func (h *Page) Home(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "http_dashboard_page")

	res, err := h.aggregate.Aggregate(ctx)
	if err != nil && !errors.Is(err, types.ErrNoData) {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to aggregate metrics", err)
		internalErrorResponse(w)
		return
	}

	data := h.build(res, err)
	status := http.StatusOK
	if !data.HasData {
		status = http.StatusNotFound
	}

	var buf bytes.Buffer
	if err := dashboardTmpl.Execute(&buf, data); err != nil {
		h.l.Error(ctx, "failed to render dashboard", err)
		internalErrorResponse(w)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

func (h *Page) build(res *models.AggregateResult, err error) pageData {
	data := pageData{
		Labels:          types.PaymentTypeLabels(),
		AvgPricePerMile: "-",
		CustomIndicator: "-",
		GeneratedAt:     h.now().Format(time.DateTime),
	}
	if res != nil {
		data.Files = len(res.Files)
		data.Skipped = len(res.Skipped)
	}
	if err != nil || res == nil {
		data.Message = types.ErrNoData.Error()
		return data
	}

	view := res.View
	data.HasData = true
	data.AvgPricePerMile = h.format(view.AveragePricePerMile)
	data.CustomIndicator = h.format(view.CustomIndicator)

	codes := make([]string, 0, len(view.PaymentTypeCounts))
	for code := range view.PaymentTypeCounts {
		codes = append(codes, code)
	}
	slices.SortFunc(codes, compareCodes)

	for _, code := range codes {
		data.Payments = append(data.Payments, paymentRow{
			Code:  code,
			Label: types.PaymentTypeLabel(code),
			Count: h.format(view.PaymentTypeCounts[code]),
		})
	}
	return data
}

// format prints v with two decimals and English digit grouping.
func (h *Page) format(v float64) string {
	return h.printer.Sprint(number.Decimal(v, number.Scale(2)))
}

// compareCodes orders numeric codes by value and puts anything else after them.
func compareCodes(a, b string) int {
	ai, aErr := strconv.Atoi(a)
	bi, bErr := strconv.Atoi(b)
	switch {
	case aErr == nil && bErr == nil:
		return ai - bi
	case aErr == nil:
		return -1
	case bErr == nil:
		return 1
	}
	if a < b {
		return -1
	}
	if a > b {
		return 1
	}
	return 0
}

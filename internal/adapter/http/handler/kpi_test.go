package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Temutjin2k/taxi-kpis/internal/domain/models"
	"github.com/Temutjin2k/taxi-kpis/internal/domain/types"
	"github.com/Temutjin2k/taxi-kpis/pkg/logger"
	"github.com/google/uuid"
)

type fakeIngest struct {
	status     types.IngestionStatus
	err        error
	gotMonth   string
	runs       []models.IngestionRun
	gotLimit   int
	historyErr error
}

func (f *fakeIngest) Refresh(ctx context.Context, month string) (*models.IngestionOutcome, error) {
	f.gotMonth = month
	if f.err != nil {
		return nil, f.err
	}
	if month == "" {
		month = "2024-01"
	}
	return &models.IngestionOutcome{RunID: uuid.New(), Month: month, Status: f.status}, nil
}

func (f *fakeIngest) History(ctx context.Context, limit int) ([]models.IngestionRun, error) {
	f.gotLimit = limit
	return f.runs, f.historyErr
}

type fakeAggregate struct {
	res *models.AggregateResult
	err error
}

func (f *fakeAggregate) Aggregate(ctx context.Context) (*models.AggregateResult, error) {
	return f.res, f.err
}

func testLogger() logger.Logger {
	return logger.New(io.Discard, "test", logger.LevelError)
}

func sampleResult() *models.AggregateResult {
	return &models.AggregateResult{
		View: models.AggregateView{
			AveragePricePerMile: 4.0,
			PaymentTypeCounts:   map[string]float64{"1": 1.5, "2": 1},
			CustomIndicator:     0.5,
		},
		Files: []models.MetricsFile{{Name: "20240101_yellow_taxi_kpis.json"}, {Name: "20240102_yellow_taxi_kpis.json"}},
	}
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()

	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if body["status"] != "error" {
		t.Errorf("status field = %q, want error", body["status"])
	}
	return body["error"]
}

func TestCompute(t *testing.T) {
	tests := []struct {
		name      string
		target    string
		ingest    *fakeIngest
		wantCode  int
		wantBody  string
		wantMonth string
	}{
		{
			name:      "computed",
			target:    "/compute?month=2024-01",
			ingest:    &fakeIngest{status: types.StatusComputed},
			wantCode:  http.StatusOK,
			wantBody:  "computed",
			wantMonth: "2024-01",
		},
		{
			name:     "up to date with default month",
			target:   "/compute",
			ingest:   &fakeIngest{status: types.StatusUpToDate},
			wantCode: http.StatusOK,
			wantBody: "up to date",
		},
		{
			name:     "invalid month",
			target:   "/compute?month=2024-13",
			ingest:   &fakeIngest{err: types.ErrInvalidMonth},
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "not published",
			target:   "/compute?month=2030-01",
			ingest:   &fakeIngest{err: fmt.Errorf("download: %w", types.ErrMonthNotPublished)},
			wantCode: http.StatusNotFound,
		},
		{
			name:     "fetch failed",
			target:   "/compute",
			ingest:   &fakeIngest{err: fmt.Errorf("download: %w", types.ErrFetchFailed)},
			wantCode: http.StatusBadGateway,
		},
		{
			name:     "downloaded file unreadable",
			target:   "/compute",
			ingest:   &fakeIngest{err: fmt.Errorf("load: %w", types.ErrMalformedDataset)},
			wantCode: http.StatusBadGateway,
		},
		{
			name:     "no trips",
			target:   "/compute",
			ingest:   &fakeIngest{err: types.ErrNoTrips},
			wantCode: http.StatusUnprocessableEntity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewKPI(tt.ingest, &fakeAggregate{}, testLogger())

			rec := httptest.NewRecorder()
			h.Compute(rec, httptest.NewRequest(http.MethodPost, tt.target, nil))

			if rec.Code != tt.wantCode {
				t.Fatalf("code = %d, want %d", rec.Code, tt.wantCode)
			}
			if tt.wantCode != http.StatusOK {
				if msg := decodeError(t, rec); msg == "" {
					t.Error("empty error message")
				}
				return
			}
			if got := rec.Body.String(); got != tt.wantBody {
				t.Errorf("body = %q, want %q", got, tt.wantBody)
			}
			if !strings.HasPrefix(rec.Header().Get("Content-Type"), "text/plain") {
				t.Errorf("content type = %q", rec.Header().Get("Content-Type"))
			}
			if tt.ingest.gotMonth != tt.wantMonth {
				t.Errorf("month passed = %q, want %q", tt.ingest.gotMonth, tt.wantMonth)
			}
		})
	}
}

func TestDashboard(t *testing.T) {
	h := NewKPI(&fakeIngest{}, &fakeAggregate{res: sampleResult()}, testLogger())

	rec := httptest.NewRecorder()
	h.Dashboard(rec, httptest.NewRequest(http.MethodGet, "/dashboard", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d, want 200", rec.Code)
	}

	var body map[string]json.RawMessage
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body) != 3 {
		t.Errorf("keys = %d, want 3: %v", len(body), body)
	}
	for _, key := range []string{"average_price_per_mile", "payment_type_counts", "custom_indicator"} {
		if _, ok := body[key]; !ok {
			t.Errorf("missing key %s", key)
		}
	}
}

func TestDashboardNoData(t *testing.T) {
	h := NewKPI(&fakeIngest{}, &fakeAggregate{err: types.ErrNoData}, testLogger())

	rec := httptest.NewRecorder()
	h.Dashboard(rec, httptest.NewRequest(http.MethodGet, "/dashboard", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("code = %d, want 404", rec.Code)
	}
	if msg := decodeError(t, rec); msg != types.ErrNoData.Error() {
		t.Errorf("error = %q", msg)
	}
}

func TestDashboardInternalErrorHidesCause(t *testing.T) {
	h := NewKPI(&fakeIngest{}, &fakeAggregate{err: fmt.Errorf("open /secret/path: permission denied")}, testLogger())

	rec := httptest.NewRecorder()
	h.Dashboard(rec, httptest.NewRequest(http.MethodGet, "/dashboard", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("code = %d, want 500", rec.Code)
	}
	if msg := decodeError(t, rec); strings.Contains(msg, "/secret/path") {
		t.Errorf("error leaks cause: %q", msg)
	}
}

func TestIngestions(t *testing.T) {
	tests := []struct {
		target    string
		wantCode  int
		wantLimit int
	}{
		{target: "/ingestions", wantCode: http.StatusOK, wantLimit: 20},
		{target: "/ingestions?limit=5", wantCode: http.StatusOK, wantLimit: 5},
		{target: "/ingestions?limit=100", wantCode: http.StatusOK, wantLimit: 100},
		{target: "/ingestions?limit=0", wantCode: http.StatusBadRequest},
		{target: "/ingestions?limit=101", wantCode: http.StatusBadRequest},
		{target: "/ingestions?limit=abc", wantCode: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			ingest := &fakeIngest{runs: []models.IngestionRun{{ID: uuid.New(), Month: "2024-01", Status: types.StatusComputed}}}
			h := NewKPI(ingest, &fakeAggregate{}, testLogger())

			rec := httptest.NewRecorder()
			h.Ingestions(rec, httptest.NewRequest(http.MethodGet, tt.target, nil))

			if rec.Code != tt.wantCode {
				t.Fatalf("code = %d, want %d", rec.Code, tt.wantCode)
			}
			if tt.wantCode != http.StatusOK {
				return
			}
			if ingest.gotLimit != tt.wantLimit {
				t.Errorf("limit = %d, want %d", ingest.gotLimit, tt.wantLimit)
			}

			var body struct {
				Runs []models.IngestionRun `json:"runs"`
			}
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if len(body.Runs) != 1 || body.Runs[0].Status != types.StatusComputed {
				t.Errorf("runs = %+v", body.Runs)
			}
		})
	}
}

func TestGetCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{types.ErrInvalidMonth, http.StatusBadRequest},
		{types.ErrInvalidToken, http.StatusUnauthorized},
		{types.ErrForbidden, http.StatusForbidden},
		{types.ErrMonthNotPublished, http.StatusNotFound},
		{types.ErrNoData, http.StatusNotFound},
		{types.ErrNoTrips, http.StatusUnprocessableEntity},
		{fmt.Errorf("wrapped: %w", types.ErrFetchFailed), http.StatusBadGateway},
		{fmt.Errorf("load: %w", types.ErrMalformedDataset), http.StatusBadGateway},
		{errors.New("disk full"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := GetCode(tt.err); got != tt.want {
			t.Errorf("GetCode(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

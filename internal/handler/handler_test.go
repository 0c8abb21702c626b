package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/logsentry/agent/internal/model"
	"github.com/logsentry/agent/internal/service"
)

type fakeStats struct{ snap service.StatsSnapshot }

func (f fakeStats) Snapshot() service.StatsSnapshot { return f.snap }

type fakeTargets []model.WatchTarget

func (f fakeTargets) Targets() []model.WatchTarget { return f }

type fakeDedup int

func (f fakeDedup) Len() int { return int(f) }

type fakeReports struct {
	entries []model.ReportEntry
	err     error
	limit   int
}

func (f *fakeReports) RecentReports(ctx context.Context, limit int) ([]model.ReportEntry, error) {
	f.limit = limit
	return f.entries, f.err
}

func newTestRouter(reports reportLister) *gin.Engine {
	gin.SetMode(gin.TestMode)
	status := NewStatusHandler(
		fakeStats{snap: service.StatsSnapshot{LinesRead: 10, Detected: 3, Suppressed: 1, Dispatched: 2, Completed: 2}},
		fakeTargets{model.NewWatchTarget("/var/log/app.log", []string{"ERROR"})},
		fakeDedup(2),
	)
	var rh *ReportHandler
	if reports != nil {
		rh = NewReportHandler(reports)
	}
	return NewRouter(status, rh)
}

func do(r http.Handler, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestPing(t *testing.T) {
	w := do(newTestRouter(nil), "/ping")
	if w.Code != http.StatusOK || w.Body.String() != `{"message":"pong"}` {
		t.Fatalf("got %d %s", w.Code, w.Body.String())
	}
}

func TestGetStats(t *testing.T) {
	w := do(newTestRouter(nil), "/api/v1/stats")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var res model.StatsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatal(err)
	}
	if res.LinesRead != 10 || res.Suppressed != 1 || res.DedupEntries != 2 || res.Status != "success" {
		t.Fatalf("unexpected stats: %+v", res)
	}
}

func TestGetTargets(t *testing.T) {
	w := do(newTestRouter(nil), "/api/v1/targets")
	var res model.TargetListResponse
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatal(err)
	}
	if len(res.Data) != 1 || res.Data[0].Path != "/var/log/app.log" || res.Data[0].Keywords[0] != "ERROR" {
		t.Fatalf("unexpected targets: %+v", res)
	}
}

func TestGetReports(t *testing.T) {
	reports := &fakeReports{entries: []model.ReportEntry{{Location: "/r/a.json", Summary: "disk full"}}}
	r := newTestRouter(reports)

	w := do(r, "/api/v1/reports?limit=1000")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if reports.limit != maxReportLimit {
		t.Fatalf("limit should be capped, got %d", reports.limit)
	}
	var res model.ReportListResponse
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatal(err)
	}
	if len(res.Data) != 1 || res.Data[0].Location != "/r/a.json" {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}

	do(r, "/api/v1/reports")
	if reports.limit != defaultReportLimit {
		t.Fatalf("default limit = %d", reports.limit)
	}
}

func TestGetReportsValidation(t *testing.T) {
	w := do(newTestRouter(&fakeReports{}), "/api/v1/reports?limit=abc")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestGetReportsError(t *testing.T) {
	w := do(newTestRouter(&fakeReports{err: errors.New("db down")}), "/api/v1/reports")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
}

func TestReportsRouteDisabled(t *testing.T) {
	w := do(newTestRouter(nil), "/api/v1/reports")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

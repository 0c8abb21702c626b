package report

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/logsentry/agent/internal/model"
)

var ts = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

func TestFileStoreSaveLayout(t *testing.T) {
	dir := t.TempDir()
	s := NewFileStore(dir)

	analysis := &model.Analysis{Summary: "disk <full>", Severity: "high", Timestamp: ts.Format(time.RFC3339)}
	path, err := s.Save(context.Background(), "a\nERROR: disk full", analysis, ts)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if want := filepath.Join(dir, "20260102", "alert_030405.json"); path != want {
		t.Fatalf("path = %s, want %s", path, want)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var rep model.Report
	if err := json.Unmarshal(data, &rep); err != nil {
		t.Fatalf("report is not valid JSON: %v", err)
	}
	if rep.Timestamp != "2026-01-02T03:04:05Z" || rep.RawLogContext != "a\nERROR: disk full" || rep.Analysis.Summary != "disk <full>" {
		t.Fatalf("unexpected report: %+v", rep)
	}
	var raw map[string]json.RawMessage
	_ = json.Unmarshal(data, &raw)
	for _, key := range []string{"timestamp", "raw_log_context", "analysis"} {
		if _, ok := raw[key]; !ok {
			t.Fatalf("report missing key %q", key)
		}
	}
}

func TestFileStoreSameSecondNeverOverwrites(t *testing.T) {
	s := NewFileStore(t.TempDir())

	const n = 8
	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		paths = map[string]bool{}
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p, err := s.Save(context.Background(), "ctx", model.FallbackAnalysis(""), ts)
			if err != nil {
				t.Errorf("Save: %v", err)
				return
			}
			mu.Lock()
			paths[p] = true
			mu.Unlock()
		}()
	}
	wg.Wait()

	if len(paths) != n {
		t.Fatalf("expected %d distinct files, got %d", n, len(paths))
	}
	if !paths[filepath.Join(s.Dir(), "20260102", "alert_030405_1.json")] {
		t.Fatalf("expected suffixed file, got %v", paths)
	}
}

func TestFileStoreRecentReports(t *testing.T) {
	s := NewFileStore(t.TempDir())
	ctx := context.Background()

	times := []time.Time{ts, ts.Add(time.Second), ts.Add(24 * time.Hour)}
	for i, at := range times {
		a := &model.Analysis{Summary: []string{"first", "second", "next-day"}[i], Severity: "low"}
		if _, err := s.Save(ctx, "ctx", a, at); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := s.Save(ctx, "ctx", &model.Analysis{Summary: "second-dup"}, ts.Add(time.Second)); err != nil {
		t.Fatal(err)
	}

	got, err := s.RecentReports(ctx, 3)
	if err != nil {
		t.Fatalf("RecentReports: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(got))
	}
	want := []string{"next-day", "second-dup", "second"}
	for i, w := range want {
		if got[i].Summary != w {
			t.Fatalf("entry %d summary = %q, want %q (%+v)", i, got[i].Summary, w, got)
		}
	}
}

func TestFileStoreRecentReportsMissingDir(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "missing"))
	got, err := s.RecentReports(context.Background(), 10)
	if err != nil || len(got) != 0 {
		t.Fatalf("got %v, %v", got, err)
	}
}

func TestReportOrderKey(t *testing.T) {
	if !(reportOrderKey("alert_030405_10.json") > reportOrderKey("alert_030405_9.json")) {
		t.Fatalf("numeric suffix ordering broken")
	}
	if !(reportOrderKey("alert_030406.json") > reportOrderKey("alert_030405_3.json")) {
		t.Fatalf("clock ordering broken")
	}
}

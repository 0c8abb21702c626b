package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/logsentry/agent/internal/config"
	"github.com/logsentry/agent/internal/model"
)

func TestWebhookNotifyRendersTemplate(t *testing.T) {
	var (
		gotBody   string
		gotHeader string
		gotMethod string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		gotHeader = r.Header.Get("X-Token")
		gotMethod = r.Method
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := NewWebhookClient([]config.WebhookConfig{{
		URL:     srv.URL,
		Method:  "PUT",
		Headers: []config.WebhookHeader{{Key: "X-Token", Value: "abc"}},
		Body:    `{"text":"[{{alert.severity}}] {{alert.summary}}","ctx":"{{alert.context}}"}`,
	}})

	analysis := &model.Analysis{Summary: `quote "here"`, Severity: "high"}
	if err := c.Notify(context.Background(), analysis, "line1\nline2", "/r.json"); err != nil {
		t.Fatalf("Notify: %v", err)
	}

	if gotMethod != http.MethodPut || gotHeader != "abc" {
		t.Fatalf("method=%s header=%q", gotMethod, gotHeader)
	}
	var payload map[string]string
	if err := json.Unmarshal([]byte(gotBody), &payload); err != nil {
		t.Fatalf("rendered body is not valid JSON %q: %v", gotBody, err)
	}
	if payload["text"] != `[high] quote "here"` || payload["ctx"] != "line1\nline2" {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func TestWebhookNotifyDefaultPayload(t *testing.T) {
	var gotContentType string
	var payload map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		_ = json.NewDecoder(r.Body).Decode(&payload)
	}))
	defer srv.Close()

	c := NewWebhookClient([]config.WebhookConfig{{URL: srv.URL}})
	if err := c.Notify(context.Background(), model.FallbackAnalysis("boom"), "ctx", "/r.json"); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if gotContentType != "application/json" {
		t.Fatalf("content-type = %q", gotContentType)
	}
	if payload["summary"] != model.FallbackSummary || payload["report"] != "/r.json" {
		t.Fatalf("unexpected default payload: %+v", payload)
	}
}

func TestWebhookNotifyContinuesAfterFailure(t *testing.T) {
	var okHits int32
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer bad.Close()
	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&okHits, 1)
	}))
	defer good.Close()

	c := NewWebhookClient([]config.WebhookConfig{{URL: bad.URL}, {URL: ""}, {URL: good.URL}})
	err := c.Notify(context.Background(), model.FallbackAnalysis(""), "ctx", "")
	if err == nil || !strings.Contains(err.Error(), "unexpected status 500") {
		t.Fatalf("expected joined status error, got %v", err)
	}
	if atomic.LoadInt32(&okHits) != 1 {
		t.Fatalf("healthy webhook should still be called, hits=%d", okHits)
	}
}

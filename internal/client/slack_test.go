package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/logsentry/agent/internal/config"
	"github.com/logsentry/agent/internal/model"
)

func TestSlackNotifySendsAttachment(t *testing.T) {
	var (
		gotAuth string
		gotMsg  SlackMessage
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat.postMessage" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotMsg); err != nil {
			t.Errorf("decode: %v", err)
		}
		_, _ = w.Write([]byte(`{"ok":true,"ts":"1.2"}`))
	}))
	defer srv.Close()

	c := NewSlackClient(config.SlackConfig{BotToken: "xoxb-test", ChannelID: "C123"}).WithBaseURL(srv.URL)
	c.now = func() time.Time { return time.Unix(100, 0) }

	analysis := &model.Analysis{
		Summary:       "disk full",
		Severity:      "high",
		DiagnosisPath: []string{"check df"},
		Solution:      model.Solution{Immediate: "free space"},
		Timestamp:     "2026-01-02T03:04:05Z",
	}
	if err := c.Notify(context.Background(), analysis, "ERROR: disk full", "/r/alert.json"); err != nil {
		t.Fatalf("Notify: %v", err)
	}

	if gotAuth != "Bearer xoxb-test" {
		t.Fatalf("authorization = %q", gotAuth)
	}
	if gotMsg.Channel != "C123" || len(gotMsg.Attachments) != 1 {
		t.Fatalf("unexpected message: %+v", gotMsg)
	}
	att := gotMsg.Attachments[0]
	if att.Color != "#dc3545" || att.Ts != 100 {
		t.Fatalf("unexpected attachment: %+v", att)
	}
	if !strings.Contains(att.Text, "ERROR: disk full") {
		t.Fatalf("context missing from attachment text: %q", att.Text)
	}
	var sawReport bool
	for _, f := range att.Fields {
		if f.Title == "Report" && f.Value == "/r/alert.json" {
			sawReport = true
		}
	}
	if !sawReport {
		t.Fatalf("report field missing: %+v", att.Fields)
	}
}

func TestSlackNotifyAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ok":false,"error":"channel_not_found"}`))
	}))
	defer srv.Close()

	c := NewSlackClient(config.SlackConfig{BotToken: "x", ChannelID: "C"}).WithBaseURL(srv.URL)
	err := c.Notify(context.Background(), model.FallbackAnalysis("boom"), "ctx", "")
	if err == nil || !strings.Contains(err.Error(), "channel_not_found") {
		t.Fatalf("expected slack API error, got %v", err)
	}
}

func TestSlackNotifyNotConfigured(t *testing.T) {
	c := NewSlackClient(config.SlackConfig{})
	if err := c.Notify(context.Background(), nil, "ctx", ""); err == nil {
		t.Fatalf("expected error for missing token")
	}
}

func TestSeverityColor(t *testing.T) {
	tests := []struct {
		severity string
		want     string
	}{
		{"critical", "#8b0000"},
		{"HIGH", "#dc3545"},
		{"medium", "#ffc107"},
		{"low", "#36a64f"},
		{"unknown", "#6c757d"},
	}
	for _, tt := range tests {
		if got := severityColor(tt.severity); got != tt.want {
			t.Fatalf("severityColor(%q) = %q, want %q", tt.severity, got, tt.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("héllo", 2); got != "hé…" {
		t.Fatalf("truncate = %q", got)
	}
	if got := truncate("ok", 5); got != "ok" {
		t.Fatalf("truncate = %q", got)
	}
}

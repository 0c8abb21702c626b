package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/logsentry/agent/internal/model"
)

type fakeAnalyzer struct {
	mu       sync.Mutex
	calls    []string
	analysis *model.Analysis
	err      error
	delay    time.Duration
}

func (f *fakeAnalyzer) Analyze(ctx context.Context, contextText string) (*model.Analysis, error) {
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, contextText)
	if f.err != nil {
		return nil, f.err
	}
	a := *f.analysis
	return &a, nil
}

type savedReport struct {
	context  string
	analysis *model.Analysis
	ts       time.Time
}

type fakePersister struct {
	mu       sync.Mutex
	saved    []savedReport
	location string
	err      error
}

func (f *fakePersister) Save(ctx context.Context, contextText string, analysis *model.Analysis, ts time.Time) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved = append(f.saved, savedReport{context: contextText, analysis: analysis, ts: ts})
	if f.err != nil {
		return "", f.err
	}
	return f.location, nil
}

func (f *fakePersister) Saved() []savedReport {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]savedReport(nil), f.saved...)
}

type notification struct {
	analysis *model.Analysis
	context  string
	location string
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []notification
	err  error
}

func (f *fakeNotifier) Notify(ctx context.Context, analysis *model.Analysis, contextText, location string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, notification{analysis: analysis, context: contextText, location: location})
	return f.err
}

func (f *fakeNotifier) Sent() []notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]notification(nil), f.sent...)
}

// recordingSink - AlertService 대신 알림을 모으는 AlertSubmitter
type recordingSink struct {
	mu     sync.Mutex
	alerts []model.Alert
	ch     chan model.Alert
}

func newRecordingSink() *recordingSink {
	return &recordingSink{ch: make(chan model.Alert, 16)}
}

func (r *recordingSink) Submit(alert model.Alert) bool {
	r.mu.Lock()
	r.alerts = append(r.alerts, alert)
	r.mu.Unlock()
	select {
	case r.ch <- alert:
	default:
	}
	return true
}

func (r *recordingSink) Alerts() []model.Alert {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.Alert(nil), r.alerts...)
}

type fakeGenerator struct {
	mu      sync.Mutex
	outputs []string
	errs    []error
	calls   int
	block   bool
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	f.mu.Lock()
	i := f.calls
	f.calls++
	f.mu.Unlock()

	if f.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	var err error
	if i < len(f.errs) {
		err = f.errs[i]
	}
	if err != nil {
		return "", err
	}
	if i < len(f.outputs) {
		return f.outputs[i], nil
	}
	if len(f.outputs) > 0 {
		return f.outputs[len(f.outputs)-1], nil
	}
	return "", errors.New("no output configured")
}

func (f *fakeGenerator) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func sampleAnalysis() *model.Analysis {
	return &model.Analysis{
		Summary:       "disk full",
		Severity:      "high",
		DiagnosisPath: []string{"check df"},
		Solution:      model.Solution{Immediate: "free space", LongTerm: "add alerting"},
	}
}

// 알림 처리 파이프라인 비즈니스 로직 정의
// monitor가 감지 + 중복 제거를 마친 알림을 큐로 받아 worker pool에서 처리
//
// 처리 흐름 (알림 1건당 1회):
//  1. Analyzer로 분석 (실패/형식 오류 시 대체 레코드 사용, 알림은 버리지 않음)
//  2. timestamp 주입
//  3. Persister로 보고서 저장 → 위치 반환 (실패 시 빈 위치로 계속 진행)
//  4. Notifier로 분석 결과 + 컨텍스트 + 위치 전송 (실패해도 로그만 남김)
//  5. 완료

package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/logsentry/agent/internal/config"
	"github.com/logsentry/agent/internal/logger"
	"github.com/logsentry/agent/internal/model"
)

// Analyzer - 로그 컨텍스트 분석 (LLM)
type Analyzer interface {
	Analyze(ctx context.Context, contextText string) (*model.Analysis, error)
}

// Persister - 보고서 저장, 저장 위치 반환
type Persister interface {
	Save(ctx context.Context, contextText string, analysis *model.Analysis, ts time.Time) (string, error)
}

// Notifier - 분석 결과 알림 전송
type Notifier interface {
	Notify(ctx context.Context, analysis *model.Analysis, contextText, location string) error
}

// Outcome - 알림 1건 처리 결과
type Outcome struct {
	Analysis    *model.Analysis
	Location    string
	AnalyzerErr error
	PersistErr  error
	NotifyErr   error
}

// AlertService 구조체 정의
type AlertService struct {
	analyzer  Analyzer
	persister Persister
	notifier  Notifier
	stats     *Stats
	now       func() time.Time

	queue chan model.Alert
	wg    sync.WaitGroup

	// mu: Submit(RLock)과 Close(Lock) 사이에서 닫힌 채널로 보내는 것을 방지
	mu     sync.RWMutex
	closed bool
}

// AlertService 객체 생성 + worker 시작
func NewAlertService(analyzer Analyzer, persister Persister, notifier Notifier, stats *Stats, cfg config.PipelineConfig) *AlertService {
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	if stats == nil {
		stats = NewStats()
	}
	queueSize := cfg.QueueSize
	if queueSize < 0 {
		queueSize = 0
	}

	s := &AlertService{
		analyzer:  analyzer,
		persister: persister,
		notifier:  notifier,
		stats:     stats,
		now:       time.Now,
		queue:     make(chan model.Alert, queueSize),
	}

	for i := 0; i < workers; i++ {
		s.wg.Add(1)
		go s.worker()
	}
	return s
}

// worker - 종료 신호와 분리된 context로 처리 (진행 중 알림은 끝까지 처리)
func (s *AlertService) worker() {
	defer s.wg.Done()
	for alert := range s.queue {
		s.Process(context.Background(), alert)
	}
}

// Submit - 알림을 큐에 넣음
// 큐가 가득 차면 호출한 경로의 처리만 대기, Close 이후에는 버리고 false 반환
func (s *AlertService) Submit(alert model.Alert) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		logger.Named("pipeline").Warn().
			Str("alert_id", alert.ID).
			Str("path", alert.Source).
			Msg("pipeline closed, dropping alert")
		s.stats.dropped.Add(1)
		return false
	}

	s.queue <- alert
	s.stats.dispatched.Add(1)
	return true
}

// Close - 신규 알림 수신 중단 후 큐에 남은 알림까지 처리가 끝날 때까지 대기
func (s *AlertService) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	close(s.queue)
	s.mu.Unlock()

	s.wg.Wait()
}

// Process - 알림 1건을 분석 → 저장 → 알림 순서로 처리
func (s *AlertService) Process(ctx context.Context, alert model.Alert) Outcome {
	log := logger.Named("pipeline").With().Str("alert_id", alert.ID).Str("path", alert.Source).Logger()
	var out Outcome

	// 1. 분석
	analysis, err := s.analyze(ctx, alert.Context)
	if err != nil {
		out.AnalyzerErr = err
		s.stats.analyzerFailures.Add(1)

		raw := err.Error()
		var malformed *MalformedOutputError
		if errors.As(err, &malformed) {
			raw = malformed.Raw
			log.Error().Err(err).Msg("analyzer returned malformed output, using fallback analysis")
		} else {
			log.Error().Err(err).Msg("analyzer failed, using fallback analysis")
		}
		analysis = model.FallbackAnalysis(raw)
	}

	// 2. timestamp 주입
	ts := s.now()
	analysis.Timestamp = ts.Format(time.RFC3339)
	out.Analysis = analysis

	// 3. 저장
	if s.persister != nil {
		location, err := s.persister.Save(ctx, alert.Context, analysis, ts)
		if err != nil {
			out.PersistErr = err
			s.stats.persistFailures.Add(1)
			log.Error().Err(err).Msg("failed to persist report")
			// 저장 실패해도 알림 전송은 계속 진행
		} else {
			out.Location = location
			log.Info().Str("location", location).Msg("report saved")
		}
	}

	// 4. 알림
	if s.notifier != nil {
		if err := s.notifier.Notify(ctx, analysis, alert.Context, out.Location); err != nil {
			out.NotifyErr = err
			s.stats.notifyFailures.Add(1)
			log.Error().Err(err).Msg("failed to notify")
		}
	}

	// 5. 완료
	s.stats.completed.Add(1)
	log.Info().Str("severity", analysis.Severity).Str("summary", analysis.Summary).Msg("alert processed")
	return out
}

func (s *AlertService) analyze(ctx context.Context, contextText string) (*model.Analysis, error) {
	if s.analyzer == nil {
		return nil, errors.New("no analyzer configured")
	}
	analysis, err := s.analyzer.Analyze(ctx, contextText)
	if err != nil {
		return nil, err
	}
	if analysis == nil {
		return nil, &MalformedOutputError{Err: errors.New("analyzer returned no result")}
	}
	return analysis, nil
}

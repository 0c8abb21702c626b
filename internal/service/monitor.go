// 로그 감시 비즈니스 로직 정의
// watcher 이벤트를 감시 대상별 goroutine으로 전달하고, 새 줄에서 키워드를 찾아 알림을 만든다
//
// 처리 흐름 (감시 대상 1개 기준, 항상 같은 goroutine에서 순서대로):
//  1. 파일 변경 이벤트 수신 (같은 대상의 이벤트가 밀려 있으면 1건으로 합침)
//  2. LineReader로 새 줄 읽기
//  3. 줄마다 ContextBuffer에 추가 → 키워드 검사
//  4. 매칭 줄은 after 줄이 더 쌓이거나 이번 읽기 묶음이 끝날 때 컨텍스트 추출
//  5. Deduplicator로 중복 검사 (중복이면 로그만 남기고 종료)
//  6. AlertService.Submit으로 파이프라인에 전달

package service

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/logsentry/agent/internal/detect"
	"github.com/logsentry/agent/internal/logger"
	"github.com/logsentry/agent/internal/model"
	"github.com/logsentry/agent/internal/tailer"
	"github.com/logsentry/agent/internal/watcher"
)

// AlertSubmitter - 감지된 알림을 받는 파이프라인 (AlertService)
type AlertSubmitter interface {
	Submit(alert model.Alert) bool
}

// Suppressor - 중복 알림 판정 (dedup.Deduplicator)
type Suppressor interface {
	ShouldSuppress(content string) bool
}

// MonitorConfig - 컨텍스트 줄 수와 시작 동작
type MonitorConfig struct {
	Before        int
	After         int
	BufferSize    int
	ReadFromStart bool
}

// targetState - 감시 대상 1개가 독점하는 상태 (해당 goroutine에서만 접근)
type targetState struct {
	target  model.WatchTarget
	reader  *tailer.LineReader
	buffer  *detect.ContextBuffer
	matcher *detect.KeywordMatcher
	signal  chan struct{}
}

// pendingMatch - after 줄을 기다리는 매칭 줄
type pendingMatch struct {
	seq       uint64
	trigger   string
	keyword   string
	remaining int
}

// MonitorService 구조체 정의
type MonitorService struct {
	targets map[string]*targetState
	order   []string

	before        int
	after         int
	readFromStart bool

	dedup Suppressor
	sink  AlertSubmitter
	stats *Stats
	now   func() time.Time
}

// MonitorService 객체 생성
func NewMonitorService(targets []model.WatchTarget, cfg MonitorConfig, dedup Suppressor, sink AlertSubmitter, stats *Stats) *MonitorService {
	if stats == nil {
		stats = NewStats()
	}
	bufferSize := cfg.BufferSize
	if need := cfg.Before + cfg.After + 1; bufferSize < need {
		bufferSize = need
	}

	s := &MonitorService{
		targets:       make(map[string]*targetState, len(targets)),
		before:        max(cfg.Before, 0),
		after:         max(cfg.After, 0),
		readFromStart: cfg.ReadFromStart,
		dedup:         dedup,
		sink:          sink,
		stats:         stats,
		now:           time.Now,
	}
	for _, t := range targets {
		path := filepath.Clean(t.Path)
		if _, ok := s.targets[path]; ok {
			continue
		}
		s.targets[path] = &targetState{
			target:  t,
			reader:  tailer.NewLineReader(),
			buffer:  detect.NewContextBuffer(bufferSize),
			matcher: detect.NewKeywordMatcher(t.Keywords),
			signal:  make(chan struct{}, 1),
		}
		s.order = append(s.order, path)
	}
	return s
}

// Targets - 감시 대상 목록 (설정 순서)
func (s *MonitorService) Targets() []model.WatchTarget {
	out := make([]model.WatchTarget, 0, len(s.order))
	for _, path := range s.order {
		out = append(out, s.targets[path].target)
	}
	return out
}

// Run - 이벤트 채널이 닫히거나 ctx가 취소될 때까지 이벤트를 대상별 goroutine으로 전달
// 반환 전에 대상별 goroutine이 모두 끝나기를 기다린다
func (s *MonitorService) Run(ctx context.Context, events <-chan watcher.Event) error {
	log := logger.Named("monitor")

	if !s.readFromStart {
		for _, path := range s.order {
			s.targets[path].reader.Prime(path)
		}
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	for _, path := range s.order {
		st := s.targets[path]
		log.Debug().Str("path", path).Int("buffer_size", st.buffer.Cap()).Msg("target ready")
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.runTarget(runCtx, path, st)
		}()
	}
	log.Info().Int("targets", len(s.order)).Bool("read_from_start", s.readFromStart).Msg("monitoring started")

loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case ev, ok := <-events:
			if !ok {
				break loop
			}
			st, ok := s.targets[filepath.Clean(ev.Path)]
			if !ok {
				continue
			}
			// 이미 처리 대기 중이면 합침 (다음 읽기에서 새 줄을 모두 가져옴)
			select {
			case st.signal <- struct{}{}:
			default:
			}
		}
	}

	cancel()
	wg.Wait()
	log.Info().Msg("monitoring stopped")
	return nil
}

func (s *MonitorService) runTarget(ctx context.Context, path string, st *targetState) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-st.signal:
			s.ProcessLines(path, st.reader.ReadNewLines(path))
		}
	}
}

// ProcessLines - 한 번 읽은 줄 묶음을 처리하고 파이프라인에 전달한 알림 수 반환
//
// after 컨텍스트는 최선 노력: 같은 묶음 안에서 after 줄이 뒤따르면 포함하고,
// 묶음이 먼저 끝나면 그때까지 버퍼에 있는 줄만 사용한다.
// 같은 경로에 대해 동시에 호출하면 안 된다.
func (s *MonitorService) ProcessLines(path string, lines []string) int {
	st, ok := s.targets[filepath.Clean(path)]
	if !ok {
		return 0
	}

	var pending []pendingMatch
	emitted := 0

	flush := func(all bool) {
		for len(pending) > 0 && (all || pending[0].remaining <= 0) {
			if s.emit(path, st, pending[0]) {
				emitted++
			}
			pending = pending[1:]
		}
	}

	for _, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		s.stats.linesRead.Add(1)
		seq := st.buffer.Append(line)

		for i := range pending {
			pending[i].remaining--
		}
		flush(false)

		if kw, ok := st.matcher.MatchedKeyword(line); ok {
			s.stats.detected.Add(1)
			pending = append(pending, pendingMatch{seq: seq, trigger: line, keyword: kw, remaining: s.after})
			flush(false)
		}
	}
	flush(true)
	return emitted
}

// emit - 컨텍스트 추출 → 중복 검사 → 파이프라인 전달
func (s *MonitorService) emit(path string, st *targetState, m pendingMatch) bool {
	log := logger.Named("monitor")

	fromEnd, ok := st.buffer.FromEnd(m.seq)
	if !ok {
		// 버퍼 크기 >= before+after+1 이므로 발생하지 않아야 함
		log.Warn().Str("path", path).Msg("matched line evicted before extraction, using newest line")
		fromEnd = 0
	}
	contextText := st.buffer.ExtractAround(fromEnd, s.before, s.after)

	if s.dedup != nil && s.dedup.ShouldSuppress(contextText) {
		s.stats.suppressed.Add(1)
		log.Info().Str("path", path).Str("trigger", m.trigger).Msg("duplicate alert suppressed")
		return false
	}

	alert := model.Alert{
		ID:         uuid.NewString(),
		Source:     path,
		Trigger:    m.trigger,
		Keyword:    m.keyword,
		Context:    contextText,
		DetectedAt: s.now(),
	}
	log.Info().Str("path", path).Str("alert_id", alert.ID).Str("keyword", m.keyword).Str("trigger", m.trigger).Msg("error detected, dispatching alert")

	if s.sink == nil {
		return false
	}
	return s.sink.Submit(alert)
}

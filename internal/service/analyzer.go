// LLM 분석 요청 비즈니스 로직 정의
//
// 처리 흐름:
//  1. 로그 컨텍스트로 프롬프트 생성
//  2. Generator 호출 (시도마다 timeout, 실패 시 고정 간격 후 재시도, 최대 max_retries회)
//  3. 응답에서 첫 '{' ~ 마지막 '}' 구간을 잘라 JSON 디코딩
//  4. 디코딩 실패 / 필수 필드 누락 시 MalformedOutputError 반환 (원본 출력 포함)

package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/logsentry/agent/internal/config"
	"github.com/logsentry/agent/internal/logger"
	"github.com/logsentry/agent/internal/model"
)

// Generator - 프롬프트 1건을 보내고 응답 텍스트를 받는 LLM 클라이언트
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// MalformedOutputError - 분석기 응답을 기대한 구조로 해석할 수 없을 때
type MalformedOutputError struct {
	Raw string
	Err error
}

func (e *MalformedOutputError) Error() string {
	return fmt.Sprintf("malformed analyzer output: %v", e.Err)
}

func (e *MalformedOutputError) Unwrap() error {
	return e.Err
}

var errMissingFields = errors.New("summary and severity are both empty")

// AnalyzerService 구조체 정의
type AnalyzerService struct {
	gen        Generator
	timeout    time.Duration
	maxRetries int
	backoff    time.Duration
	sleep      func(ctx context.Context, d time.Duration) error
}

// AnalyzerService 객체 생성
func NewAnalyzerService(gen Generator, cfg config.LLMConfig) *AnalyzerService {
	maxRetries := cfg.MaxRetries
	if maxRetries < 1 {
		maxRetries = 1
	}
	return &AnalyzerService{
		gen:        gen,
		timeout:    cfg.TimeoutDuration(),
		maxRetries: maxRetries,
		backoff:    cfg.RetryBackoff(),
		sleep:      sleepContext,
	}
}

// Analyze - 로그 컨텍스트 분석
func (s *AnalyzerService) Analyze(ctx context.Context, contextText string) (*model.Analysis, error) {
	raw, err := s.generate(ctx, BuildAnalysisPrompt(contextText))
	if err != nil {
		return nil, err
	}
	return parseAnalysis(raw)
}

func (s *AnalyzerService) generate(ctx context.Context, prompt string) (string, error) {
	log := logger.Named("analyzer")

	var lastErr error
	for attempt := 1; attempt <= s.maxRetries; attempt++ {
		attemptCtx := ctx
		cancel := context.CancelFunc(func() {})
		if s.timeout > 0 {
			attemptCtx, cancel = context.WithTimeout(ctx, s.timeout)
		}

		start := time.Now()
		out, err := s.gen.Generate(attemptCtx, prompt)
		cancel()
		if err == nil {
			log.Debug().Int("attempt", attempt).Dur("took", time.Since(start)).Msg("analyzer responded")
			return out, nil
		}

		lastErr = err
		log.Warn().Err(err).Int("attempt", attempt).Int("max_retries", s.maxRetries).Msg("analyzer call failed")

		if attempt < s.maxRetries {
			if err := s.sleep(ctx, s.backoff); err != nil {
				return "", err
			}
		}
	}
	return "", fmt.Errorf("analyzer failed after %d attempts: %w", s.maxRetries, lastErr)
}

// parseAnalysis - 응답 텍스트에서 JSON 객체를 추출해 Analysis로 변환
func parseAnalysis(raw string) (*model.Analysis, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end < start {
		return nil, &MalformedOutputError{Raw: raw, Err: errors.New("no JSON object found")}
	}

	var a model.Analysis
	if err := json.Unmarshal([]byte(raw[start:end+1]), &a); err != nil {
		return nil, &MalformedOutputError{Raw: raw, Err: err}
	}
	if strings.TrimSpace(a.Summary) == "" && strings.TrimSpace(a.Severity) == "" {
		return nil, &MalformedOutputError{Raw: raw, Err: errMissingFields}
	}

	// timestamp는 파이프라인이 주입, raw_llm_output은 대체 레코드 전용
	a.Timestamp = ""
	a.RawOutput = ""
	a.Severity = strings.ToLower(strings.TrimSpace(a.Severity))
	return &a, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

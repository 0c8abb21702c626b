package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/logsentry/agent/internal/config"
	"github.com/logsentry/agent/internal/logger"
	"github.com/logsentry/agent/internal/model"
	tmpl "github.com/logsentry/agent/internal/template"
)

// WebhookClient - 사용자 설정 Webhook으로 알림을 전송하는 클라이언트
type WebhookClient struct {
	configs    []config.WebhookConfig
	httpClient *http.Client
}

func NewWebhookClient(configs []config.WebhookConfig) *WebhookClient {
	return &WebhookClient{
		configs: append([]config.WebhookConfig(nil), configs...),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Notify - 설정된 모든 webhook에 렌더링된 body를 HTTP로 전송
//
// 개별 webhook 실패 시 로그만 남기고 나머지는 계속 전송합니다.
// 실패한 전송은 errors.Join으로 모아서 반환합니다.
func (c *WebhookClient) Notify(ctx context.Context, analysis *model.Analysis, contextText, location string) error {
	log := logger.Named("webhook")
	alertData := tmpl.AlertDataFromAnalysis(analysis, contextText, location)

	var errs []error
	for i, cfg := range c.configs {
		if cfg.URL == "" {
			log.Warn().Int("index", i).Msg("skipping webhook: URL is empty")
			continue
		}

		body, err := renderWebhookBody(cfg.Body, alertData)
		if err != nil {
			errs = append(errs, fmt.Errorf("webhook %s: %w", cfg.URL, err))
			continue
		}

		if err := c.sendHTTP(ctx, cfg, body); err != nil {
			log.Error().Err(err).Str("url", cfg.URL).Msg("failed to deliver webhook")
			errs = append(errs, fmt.Errorf("webhook %s: %w", cfg.URL, err))
			continue
		}
		log.Debug().Str("url", cfg.URL).Msg("webhook delivered")
	}
	return errors.Join(errs...)
}

// renderWebhookBody - body 템플릿이 비어 있으면 AlertData 전체를 JSON으로 전송
func renderWebhookBody(body string, data tmpl.AlertData) (string, error) {
	if body == "" {
		b, err := json.Marshal(data)
		if err != nil {
			return "", fmt.Errorf("marshal default payload: %w", err)
		}
		return string(b), nil
	}
	return tmpl.RenderBody(body, data, tmpl.JSONEscape), nil
}

// sendHTTP - 단일 webhook으로 HTTP 요청 전송
func (c *WebhookClient) sendHTTP(ctx context.Context, cfg config.WebhookConfig, body string) error {
	method := cfg.Method
	if method == "" {
		method = http.MethodPost
	}
	req, err := http.NewRequestWithContext(ctx, method, cfg.URL, bytes.NewBufferString(body))
	if err != nil {
		return err
	}

	// Content-Type 기본값 설정 (없으면 application/json)
	hasContentType := false
	for _, h := range cfg.Headers {
		if h.Key != "" {
			req.Header.Set(h.Key, h.Value)
		}
		if http.CanonicalHeaderKey(h.Key) == "Content-Type" {
			hasContentType = true
		}
	}
	if !hasContentType {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return nil
}

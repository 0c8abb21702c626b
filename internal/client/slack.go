// 외부 Slack API와 통신하는 클라이언트 정의
// 분석이 끝난 알림 1건을 Bot Token으로 chat.postMessage 호출해 채널에 전송
//
// 설정 (config.yaml):
//   - slack.bot_token: Slack Bot Token (xoxb-...)
//   - slack.channel_id: Slack 채널 ID (C...)

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/logsentry/agent/internal/config"
	"github.com/logsentry/agent/internal/model"
)

const defaultSlackBaseURL = "https://slack.com/api"

// Slack attachment text 최대 길이 (로그 컨텍스트가 길면 잘라서 전송)
const slackContextLimit = 2800

// SlackClient(메시지 메타데이터) 구조체 정의
type SlackClient struct {
	botToken   string
	channelID  string
	baseURL    string
	httpClient *http.Client
	now        func() time.Time
}

// SlackMessage(메시지 내용) 구조체 정의
type SlackMessage struct {
	Channel     string            `json:"channel"`               // 메시지를 보낼 채널 ID
	Text        string            `json:"text,omitempty"`        // 메시지 본문 (알림 미리보기)
	Attachments []SlackAttachment `json:"attachments,omitempty"` // 색상, 필드
}

// SlackAttachment(메시지 포맷) 구조체 정의
type SlackAttachment struct {
	Color  string       `json:"color"`
	Title  string       `json:"title"`
	Text   string       `json:"text"`
	Footer string       `json:"footer,omitempty"`
	Ts     int64        `json:"ts,omitempty"`
	Fields []SlackField `json:"fields,omitempty"`
}

// SlackField(메시지 포맷 필드) 구조체 정의
type SlackField struct {
	Title string `json:"title"`
	Value string `json:"value"`
	Short bool   `json:"short"` // true면 좁은 너비 (한 줄에 2개)
}

// SlackResponse(메시지 응답) 구조체 정의
type SlackResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
	TS    string `json:"ts,omitempty"`
}

// SlackClient 객체 생성
func NewSlackClient(cfg config.SlackConfig) *SlackClient {
	return &SlackClient{
		botToken:  cfg.BotToken,
		channelID: cfg.ChannelID,
		baseURL:   defaultSlackBaseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		now: time.Now,
	}
}

// WithBaseURL - Slack API 주소 변경 (테스트용 httptest 서버 등)
func (c *SlackClient) WithBaseURL(baseURL string) *SlackClient {
	c.baseURL = strings.TrimRight(baseURL, "/")
	return c
}

// SlackClient에 Bot Token과 Channel ID가 모두 설정되어 있는지 체크
func (c *SlackClient) IsConfigured() bool {
	return c.botToken != "" && c.channelID != ""
}

// Notify - 분석 결과를 Slack 채널로 전송
//
// 처리 흐름:
//  1. severity에 맞는 색상/이모지 선택
//  2. 요약, 진단 경로, 조치 방안, 보고서 위치를 필드로 구성
//  3. chat.postMessage 호출
func (c *SlackClient) Notify(ctx context.Context, analysis *model.Analysis, contextText, location string) error {
	if !c.IsConfigured() {
		return fmt.Errorf("slack bot token or channel ID not configured")
	}
	if analysis == nil {
		analysis = model.FallbackAnalysis("")
	}

	title := fmt.Sprintf("%s [%s] %s", severityEmoji(analysis.Severity), strings.ToUpper(analysis.Severity), analysis.Summary)

	fields := []SlackField{
		{Title: "Severity", Value: analysis.Severity, Short: true},
		{Title: "Detected", Value: analysis.Timestamp, Short: true},
	}
	if len(analysis.DiagnosisPath) > 0 {
		fields = append(fields, SlackField{Title: "Diagnosis", Value: numbered(analysis.DiagnosisPath)})
	}
	if analysis.Solution.Immediate != "" {
		fields = append(fields, SlackField{Title: "Immediate action", Value: analysis.Solution.Immediate})
	}
	if analysis.Solution.LongTerm != "" {
		fields = append(fields, SlackField{Title: "Long-term fix", Value: analysis.Solution.LongTerm})
	}
	if location != "" {
		fields = append(fields, SlackField{Title: "Report", Value: location})
	}

	msg := SlackMessage{
		Channel: c.channelID,
		Text:    title,
		Attachments: []SlackAttachment{
			{
				Color:  severityColor(analysis.Severity),
				Title:  title,
				Text:   "```" + truncate(contextText, slackContextLimit) + "```",
				Fields: fields,
				Footer: "logsentry",
				Ts:     c.now().Unix(),
			},
		},
	}

	_, err := c.send(ctx, msg)
	return err
}

// Slack API 호출
func (c *SlackClient) send(ctx context.Context, msg SlackMessage) (*SlackResponse, error) {
	// JSON 직렬화
	payload, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal message: %w", err)
	}

	// HTTP 요청 생성
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat.postMessage", bytes.NewBuffer(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	// 헤더 설정
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.botToken)

	// 요청 전송
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send message: %w", err)
	}
	defer resp.Body.Close()

	// 응답 읽기
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	// JSON 파싱
	var slackResp SlackResponse
	if err := json.Unmarshal(body, &slackResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	// 에러 확인
	if !slackResp.OK {
		return nil, fmt.Errorf("slack API error: %s", slackResp.Error)
	}

	return &slackResp, nil
}

// severity에 따른 메시지 색상 반환
func severityColor(severity string) string {
	switch strings.ToLower(severity) {
	case "critical":
		return "#8b0000" // dark red
	case "high":
		return "#dc3545" // red
	case "medium":
		return "#ffc107" // yellow
	case "low":
		return "#36a64f" // green
	default:
		return "#6c757d" // grey (unknown, 분석 실패 포함)
	}
}

func severityEmoji(severity string) string {
	switch strings.ToLower(severity) {
	case "critical", "high":
		return "🔥"
	case "medium":
		return "⚠️"
	case "low":
		return "ℹ️"
	default:
		return "❓"
	}
}

func numbered(items []string) string {
	var b strings.Builder
	for i, item := range items {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%d. %s", i+1, item)
	}
	return b.String()
}

// truncate - 룬 단위로 자르고 말줄임 표시
func truncate(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit]) + "…"
}

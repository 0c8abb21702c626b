package client

import (
	"context"
	"fmt"

	"github.com/logsentry/agent/internal/config"
	"google.golang.org/genai"
)

// GeminiClient - Gemini API로 분석 프롬프트를 보내고 JSON 텍스트를 받아오는 생성기
type GeminiClient struct {
	client *genai.Client
	model  string
}

func NewGeminiClient(ctx context.Context, cfg config.LLMConfig) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("missing llm.api_key for gemini")
	}
	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &GeminiClient{client: client, model: cfg.ModelName}, nil
}

// Generate - 프롬프트 1건에 대한 응답 텍스트 반환
// 응답 MIME 타입을 application/json으로 지정해 코드 펜스 없는 JSON을 유도
func (c *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	contents := []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}
	res, err := c.client.Models.GenerateContent(ctx, c.model, contents, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return "", err
	}
	if res == nil || len(res.Candidates) == 0 {
		return "", fmt.Errorf("empty gemini response")
	}
	return res.Text(), nil
}

func (c *GeminiClient) Model() string {
	return c.model
}

package client

import (
	"context"
	"fmt"

	"github.com/logsentry/agent/internal/config"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// OpenAIClient - OpenAI 호환 엔드포인트용 생성기 (langchaingo)
// base_url을 지정하면 로컬 추론 서버 등 호환 API로 보낼 수 있다
type OpenAIClient struct {
	llm   llms.Model
	model string
}

func NewOpenAIClient(cfg config.LLMConfig) (*OpenAIClient, error) {
	opts := []openai.Option{openai.WithModel(cfg.ModelName)}
	if cfg.APIKey != "" {
		opts = append(opts, openai.WithToken(cfg.APIKey))
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}
	llm, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("create openai client: %w", err)
	}
	return &OpenAIClient{llm: llm, model: cfg.ModelName}, nil
}

// Generate - JSON 모드로 프롬프트 1건 호출
func (c *OpenAIClient) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.llm.GenerateContent(ctx, []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeHuman, prompt),
	}, llms.WithJSONMode())
	if err != nil {
		return "", err
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty openai response")
	}
	return resp.Choices[0].Content, nil
}

func (c *OpenAIClient) Model() string {
	return c.model
}

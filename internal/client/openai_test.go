package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/logsentry/agent/internal/config"
)

func TestOpenAIClientGenerateJSONMode(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"created": 1,
			"model": "local-model",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "{\"summary\":\"disk full\"}"}, "finish_reason": "stop"}],
			"usage": {"prompt_tokens": 1, "completion_tokens": 1, "total_tokens": 2}
		}`))
	}))
	defer srv.Close()

	c, err := NewOpenAIClient(config.LLMConfig{Provider: "openai", ModelName: "local-model", APIKey: "sk-test", BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("NewOpenAIClient: %v", err)
	}
	if c.Model() != "local-model" {
		t.Fatalf("Model = %q", c.Model())
	}

	out, err := c.Generate(context.Background(), "analyze this")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if out != `{"summary":"disk full"}` {
		t.Fatalf("Generate = %q", out)
	}

	if gotBody["model"] != "local-model" {
		t.Fatalf("request model = %v", gotBody["model"])
	}
	format, _ := gotBody["response_format"].(map[string]any)
	if format["type"] != "json_object" {
		t.Fatalf("expected json_object response format, got %v", gotBody["response_format"])
	}
}

// 설정 파일(YAML) 로드 및 검증
//
// 로드 순서:
//  1. .env 파일이 있으면 환경변수로 적재 (API 키 등 비밀값 분리용)
//  2. viper로 YAML 파일 읽기 + 기본값 적용
//  3. LOGSENTRY_ 접두사 환경변수로 덮어쓰기 (예: LOGSENTRY_LLM_API_KEY)
//  4. 경로 정규화 후 validator로 검증
//
// 설정 오류는 모두 ErrInvalidConfig로 감싸서 반환하며, 호출 측(main)은 즉시 종료한다.

package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/logsentry/agent/internal/model"
	"github.com/spf13/viper"
)

const envPrefix = "LOGSENTRY"

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	Logs               []WatchTargetConfig `mapstructure:"logs" validate:"required,min=1,dive"`
	ContextLines       ContextLinesConfig  `mapstructure:"context_lines"`
	DedupWindowSeconds int                 `mapstructure:"dedup_window_seconds" validate:"gte=0"`
	ReadFromStart      bool                `mapstructure:"read_from_start"`
	OutputDir          string              `mapstructure:"output_dir" validate:"required"`
	Pipeline           PipelineConfig      `mapstructure:"pipeline"`
	LLM                LLMConfig           `mapstructure:"llm"`
	Email              EmailConfig         `mapstructure:"email"`
	Slack              SlackConfig         `mapstructure:"slack"`
	Webhooks           []WebhookConfig     `mapstructure:"webhooks" validate:"dive"`
	Postgres           PostgresConfig      `mapstructure:"postgres"`
	HTTP               HTTPConfig          `mapstructure:"http"`
	Log                LogConfig           `mapstructure:"log"`
}

type WatchTargetConfig struct {
	Path     string   `mapstructure:"path" validate:"required"`
	Keywords []string `mapstructure:"keywords" validate:"required,min=1,dive,required"`
}

type ContextLinesConfig struct {
	Before     int `mapstructure:"before" validate:"gte=0"`
	After      int `mapstructure:"after" validate:"gte=0"`
	BufferSize int `mapstructure:"buffer_size" validate:"gte=1"`
}

type PipelineConfig struct {
	Workers   int `mapstructure:"workers" validate:"gte=1"`
	QueueSize int `mapstructure:"queue_size" validate:"gte=1"`
}

type LLMConfig struct {
	Provider            string `mapstructure:"provider" validate:"oneof=gemini openai"`
	ModelName           string `mapstructure:"model_name" validate:"required"`
	APIKey              string `mapstructure:"api_key"`
	BaseURL             string `mapstructure:"base_url" validate:"omitempty,url"`
	Timeout             int    `mapstructure:"timeout" validate:"gte=1"`
	MaxRetries          int    `mapstructure:"max_retries" validate:"gte=1"`
	RetryBackoffSeconds int    `mapstructure:"retry_backoff_seconds" validate:"gte=0"`
}

type EmailConfig struct {
	Enable     bool     `mapstructure:"enable"`
	SMTPServer string   `mapstructure:"smtp_server" validate:"required_if=Enable true"`
	Port       int      `mapstructure:"port" validate:"required_if=Enable true,gte=0,lte=65535"`
	Username   string   `mapstructure:"username" validate:"required_if=Enable true"`
	Password   string   `mapstructure:"password"`
	Recipients []string `mapstructure:"recipients" validate:"required_if=Enable true,dive,email"`
	SenderName string   `mapstructure:"sender_name"`
}

type SlackConfig struct {
	Enable    bool   `mapstructure:"enable"`
	BotToken  string `mapstructure:"bot_token" validate:"required_if=Enable true"`
	ChannelID string `mapstructure:"channel_id" validate:"required_if=Enable true"`
}

type WebhookConfig struct {
	URL     string          `mapstructure:"url" validate:"required,url"`
	Method  string          `mapstructure:"method" validate:"omitempty,oneof=GET POST PUT PATCH"`
	Headers []WebhookHeader `mapstructure:"headers"`
	Body    string          `mapstructure:"body"`
}

type WebhookHeader struct {
	Key   string `mapstructure:"key"`
	Value string `mapstructure:"value"`
}

type PostgresConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	DatabaseURL string `mapstructure:"database_url"`
}

type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format" validate:"omitempty,oneof=console json"`
}

// Load - 설정 파일을 읽고 검증된 Config 반환
func Load(path string) (Config, error) {
	// .env는 선택 사항 (없으면 무시)
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(path)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("%w: read %s: %v", ErrInvalidConfig, path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("%w: decode %s: %v", ErrInvalidConfig, path, err)
	}

	if err := cfg.normalize(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("context_lines.before", 5)
	v.SetDefault("context_lines.after", 3)
	v.SetDefault("context_lines.buffer_size", 100)
	v.SetDefault("dedup_window_seconds", 300)
	v.SetDefault("read_from_start", false)
	v.SetDefault("output_dir", "./reports")
	v.SetDefault("pipeline.workers", 4)
	v.SetDefault("pipeline.queue_size", 64)
	v.SetDefault("llm.provider", "gemini")
	v.SetDefault("llm.model_name", "gemini-2.0-flash")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.base_url", "")
	v.SetDefault("llm.timeout", 30)
	v.SetDefault("llm.max_retries", 2)
	v.SetDefault("llm.retry_backoff_seconds", 2)
	v.SetDefault("email.enable", false)
	v.SetDefault("email.smtp_server", "")
	v.SetDefault("email.port", 465)
	v.SetDefault("email.username", "")
	v.SetDefault("email.password", "")
	v.SetDefault("email.sender_name", "LogMonitor AI")
	v.SetDefault("slack.enable", false)
	v.SetDefault("slack.bot_token", "")
	v.SetDefault("slack.channel_id", "")
	v.SetDefault("postgres.enabled", false)
	v.SetDefault("postgres.database_url", "")
	v.SetDefault("http.addr", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
}

// normalize - 감시 경로를 절대경로로 바꾸고 빈 키워드 제거
func (c *Config) normalize() error {
	for i := range c.Logs {
		p := strings.TrimSpace(c.Logs[i].Path)
		if p != "" {
			abs, err := filepath.Abs(p)
			if err != nil {
				return fmt.Errorf("%w: logs[%d].path %q: %v", ErrInvalidConfig, i, p, err)
			}
			p = abs
		}
		c.Logs[i].Path = p

		keywords := make([]string, 0, len(c.Logs[i].Keywords))
		for _, kw := range c.Logs[i].Keywords {
			if kw = strings.TrimSpace(kw); kw != "" {
				keywords = append(keywords, kw)
			}
		}
		c.Logs[i].Keywords = keywords
	}

	for i := range c.Webhooks {
		if c.Webhooks[i].Method == "" {
			c.Webhooks[i].Method = "POST"
		}
		c.Webhooks[i].Method = strings.ToUpper(c.Webhooks[i].Method)
	}
	return nil
}

// Validate - 구조체 태그 검증 + 필드 간 제약 검증
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	cl := c.ContextLines
	if cl.BufferSize < cl.Before+cl.After+1 {
		return fmt.Errorf("%w: context_lines.buffer_size (%d) must be at least before+after+1 (%d)",
			ErrInvalidConfig, cl.BufferSize, cl.Before+cl.After+1)
	}

	seen := make(map[string]struct{}, len(c.Logs))
	for _, lc := range c.Logs {
		if _, ok := seen[lc.Path]; ok {
			return fmt.Errorf("%w: duplicate log path %s", ErrInvalidConfig, lc.Path)
		}
		seen[lc.Path] = struct{}{}
	}
	return nil
}

// Targets - 감시 대상 목록
func (c Config) Targets() []model.WatchTarget {
	targets := make([]model.WatchTarget, 0, len(c.Logs))
	for _, lc := range c.Logs {
		targets = append(targets, model.NewWatchTarget(lc.Path, lc.Keywords))
	}
	return targets
}

func (c Config) DedupWindow() time.Duration {
	return time.Duration(c.DedupWindowSeconds) * time.Second
}

func (c LLMConfig) TimeoutDuration() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}

func (c LLMConfig) RetryBackoff() time.Duration {
	return time.Duration(c.RetryBackoffSeconds) * time.Second
}

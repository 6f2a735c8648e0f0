// Package groq builds chat-model clients against Groq's OpenAI-compatible
// API: an eino chat model for the agent loop and a raw SDK client for
// endpoint checks.
package groq

import (
	"context"
	"fmt"
	"strings"
	"time"

	openaimodel "github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	openaisdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

type LLMBuilder interface {
	New(ctx context.Context) (model.ToolCallingChatModel, error)
}

var _ LLMBuilder = (*Config)(nil)

type Config struct {
	BaseURL            string        `envconfig:"BASE_URL" split_words:"true" default:"https://api.groq.com/openai/v1"`
	APIKey             string        `envconfig:"API_KEY" split_words:"true" required:"true"`
	Model              string        `envconfig:"MODEL" split_words:"true" required:"true"`
	MaxCompletionToken *int          `envconfig:"MAX_COMPLETION_TOKEN" split_words:"true" default:"400"`
	Temperature        float32       `envconfig:"TEMPERATURE" split_words:"true" default:"0.2"`
	Timeout            time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"30s"`
}

// New creates the tool-calling chat model the assistant drives.
func (c *Config) New(ctx context.Context) (model.ToolCallingChatModel, error) {
	conf := &openaimodel.ChatModelConfig{
		BaseURL:     strings.TrimRight(c.BaseURL, "/"),
		APIKey:      strings.TrimSpace(c.APIKey),
		Model:       strings.TrimSpace(c.Model),
		MaxTokens:   c.MaxCompletionToken,
		Temperature: &c.Temperature,
		Timeout:     c.Timeout,
	}

	m, err := openaimodel.NewChatModel(ctx, conf)
	if err != nil {
		return nil, fmt.Errorf("groq: create chat model: %w", err)
	}
	return m, nil
}

// NewClient creates a raw OpenAI SDK client pointed at Groq.
func NewClient(cfg Config) *openaisdk.Client {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil
	}

	opts := []option.RequestOption{
		option.WithAPIKey(strings.TrimSpace(cfg.APIKey)),
	}
	if trimmed := strings.TrimRight(cfg.BaseURL, "/"); trimmed != "" {
		opts = append(opts, option.WithBaseURL(trimmed))
	}

	client := openaisdk.NewClient(opts...)
	return &client
}

// Ping verifies the configured endpoint and credentials by listing models.
func Ping(ctx context.Context, cfg Config) error {
	client := NewClient(cfg)
	if client == nil {
		return fmt.Errorf("groq: api key is required")
	}
	if _, err := client.Models.List(ctx); err != nil {
		return fmt.Errorf("groq: list models: %w", err)
	}
	return nil
}

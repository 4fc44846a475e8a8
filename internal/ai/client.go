// Package ai generates work summaries and dish details from the persisted
// snapshot via an OpenAI-compatible completion endpoint.
package ai

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/rs/zerolog"

	"github.com/lhjing/workdash/internal/core/config"
	"github.com/lhjing/workdash/internal/core/logging"
)

// ErrNotConfigured is returned when the completion provider has no API key.
// Callers render it as a setup hint, not a failure.
var ErrNotConfigured = errors.New("ai provider not configured")

// Completion parameters shared by every prompt. Summaries are meant to be
// short, so the token cap is tight.
const (
	temperature = 0.7
	maxTokens   = 500
)

// Provider presets. Zhipu and Aliyun both expose OpenAI-compatible chat
// endpoints, so one client serves all four providers.
var providerPresets = map[string]struct {
	baseURL string
	model   string
}{
	config.ProviderZhipu:  {baseURL: "https://open.bigmodel.cn/api/paas/v4/", model: "glm-4-flash"},
	config.ProviderAliyun: {baseURL: "https://dashscope.aliyuncs.com/compatible-mode/v1/", model: "qwen-turbo"},
	config.ProviderOpenAI: {model: "gpt-3.5-turbo"},
	config.ProviderRelay:  {model: "gpt-3.5-turbo"},
}

// Completer produces a completion for one system+user prompt pair.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Client is a thin completion wrapper over the configured provider.
type Client struct {
	api   openai.Client
	model string
	log   zerolog.Logger
}

// NewClient builds a completion client from the AI configuration.
func NewClient(cfg config.AIConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, ErrNotConfigured
	}

	preset, ok := providerPresets[cfg.Provider]
	if !ok {
		return nil, fmt.Errorf("unknown ai provider %q", cfg.Provider)
	}

	baseURL := preset.baseURL
	if cfg.BaseURL != "" {
		baseURL = cfg.BaseURL
	}
	if cfg.Provider == config.ProviderRelay && baseURL == "" {
		return nil, fmt.Errorf("relay provider requires a base url")
	}

	model := preset.model
	if cfg.Model != "" {
		model = cfg.Model
	}

	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	return &Client{
		api:   openai.NewClient(opts...),
		model: model,
		log:   logging.Component("ai"),
	}, nil
}

// Complete sends one system+user prompt pair and returns the response text.
func (c *Client) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	resp, err := c.api.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userPrompt),
		},
		Temperature: openai.Float(temperature),
		MaxTokens:   openai.Int(maxTokens),
	})
	if err != nil {
		return "", fmt.Errorf("completion request: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("completion returned no choices")
	}

	c.log.Debug().Str("model", c.model).Msg("completion ok")
	return resp.Choices[0].Message.Content, nil
}

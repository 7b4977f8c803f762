package ai

import (
	"context"
	"encoding/base64"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"medcouncil/internal/core"
)

// Default base URLs for the OpenAI-compatible providers.
const (
	grokBaseURL       = "https://api.x.ai/v1"
	deepSeekBaseURL   = "https://api.deepseek.com/v1"
	openRouterBaseURL = "https://openrouter.ai/api/v1"
)

// openAICompatBackend speaks the OpenAI chat-completions protocol. It covers
// OpenAI itself plus the providers exposing compatible endpoints (Grok,
// DeepSeek, OpenRouter) differing only in base URL and image detail hints.
type openAICompatBackend struct {
	name        string
	provider    string
	model       string
	temperature float32
	maxTokens   int
	imageDetail openai.ImageURLDetail
	client      *openai.Client
}

// NewOpenAIBackend creates a backend against the OpenAI API.
func NewOpenAIBackend(cfg BackendConfig) (core.Backend, error) {
	return newOpenAICompat(cfg, "", openai.ImageURLDetailAuto)
}

// NewGrokBackend creates a backend against the x.ai API.
func NewGrokBackend(cfg BackendConfig) (core.Backend, error) {
	return newOpenAICompat(cfg, grokBaseURL, openai.ImageURLDetailHigh)
}

// NewDeepSeekBackend creates a backend against the DeepSeek API.
func NewDeepSeekBackend(cfg BackendConfig) (core.Backend, error) {
	return newOpenAICompat(cfg, deepSeekBaseURL, openai.ImageURLDetailAuto)
}

// NewOpenRouterBackend creates a backend against the OpenRouter API.
func NewOpenRouterBackend(cfg BackendConfig) (core.Backend, error) {
	return newOpenAICompat(cfg, openRouterBaseURL, openai.ImageURLDetailAuto)
}

func newOpenAICompat(cfg BackendConfig, defaultBaseURL string, detail openai.ImageURLDetail) (core.Backend, error) {
	key, err := resolveAPIKey(cfg)
	if err != nil {
		return nil, err
	}
	if cfg.Model == "" {
		return nil, core.ErrValidation("MISSING_MODEL",
			fmt.Sprintf("backend %q has no model configured", cfg.Name))
	}

	clientCfg := openai.DefaultConfig(key)
	switch {
	case cfg.BaseURL != "":
		clientCfg.BaseURL = cfg.BaseURL
	case defaultBaseURL != "":
		clientCfg.BaseURL = defaultBaseURL
	}

	return &openAICompatBackend{
		name:        cfg.Name,
		provider:    cfg.Provider,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   defaultMaxTokens(cfg.MaxTokens),
		imageDetail: detail,
		client:      openai.NewClientWithConfig(clientCfg),
	}, nil
}

func (b *openAICompatBackend) Name() string     { return b.name }
func (b *openAICompatBackend) Provider() string { return b.provider }

func (b *openAICompatBackend) Send(ctx context.Context, img core.Image, prompt string) (string, error) {
	dataURI := fmt.Sprintf("data:%s;base64,%s", img.MediaType,
		base64.StdEncoding.EncodeToString(img.Data))

	req := openai.ChatCompletionRequest{
		Model:       b.model,
		Temperature: b.temperature,
		MaxTokens:   b.maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{
						Type: openai.ChatMessagePartTypeText,
						Text: prompt,
					},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL:    dataURI,
							Detail: b.imageDetail,
						},
					},
				},
			},
		},
	}

	resp, err := b.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("%s chat completion: %w", b.provider, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%s returned no choices", b.provider)
	}
	return resp.Choices[0].Message.Content, nil
}

package ai

import (
	"context"
	"fmt"

	anthropic "github.com/liushuangls/go-anthropic/v2"

	"medcouncil/internal/core"
)

// anthropicBackend speaks the Anthropic Messages API.
type anthropicBackend struct {
	name        string
	model       string
	temperature float32
	maxTokens   int
	client      *anthropic.Client
}

// NewAnthropicBackend creates a backend against the Anthropic API.
func NewAnthropicBackend(cfg BackendConfig) (core.Backend, error) {
	key, err := resolveAPIKey(cfg)
	if err != nil {
		return nil, err
	}
	if cfg.Model == "" {
		return nil, core.ErrValidation("MISSING_MODEL",
			fmt.Sprintf("backend %q has no model configured", cfg.Name))
	}

	return &anthropicBackend{
		name:        cfg.Name,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   defaultMaxTokens(cfg.MaxTokens),
		client:      anthropic.NewClient(key),
	}, nil
}

func (b *anthropicBackend) Name() string     { return b.name }
func (b *anthropicBackend) Provider() string { return "anthropic" }

func (b *anthropicBackend) Send(ctx context.Context, img core.Image, prompt string) (string, error) {
	temp := b.temperature
	resp, err := b.client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model:       anthropic.Model(b.model),
		MaxTokens:   b.maxTokens,
		Temperature: &temp,
		Messages: []anthropic.Message{
			{
				Role: anthropic.RoleUser,
				Content: []anthropic.MessageContent{
					anthropic.NewImageMessageContent(anthropic.NewMessageContentSource(
						anthropic.MessagesContentSourceTypeBase64, img.MediaType, img.Data)),
					anthropic.NewTextMessageContent(prompt),
				},
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic messages: %w", err)
	}

	text := resp.GetFirstContentText()
	if text == "" {
		return "", fmt.Errorf("anthropic returned no text content")
	}
	return text, nil
}

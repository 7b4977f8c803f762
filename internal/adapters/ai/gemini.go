package ai

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"medcouncil/internal/core"
)

// geminiBackend speaks the Gemini API through the official genai client.
type geminiBackend struct {
	name        string
	model       string
	temperature float32
	maxTokens   int
	apiKey      string
}

// NewGeminiBackend creates a backend against the Gemini API. The client is
// created lazily per call because genai.NewClient requires a context.
func NewGeminiBackend(cfg BackendConfig) (core.Backend, error) {
	key, err := resolveAPIKey(cfg)
	if err != nil {
		return nil, err
	}
	if cfg.Model == "" {
		return nil, core.ErrValidation("MISSING_MODEL",
			fmt.Sprintf("backend %q has no model configured", cfg.Name))
	}

	return &geminiBackend{
		name:        cfg.Name,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   defaultMaxTokens(cfg.MaxTokens),
		apiKey:      key,
	}, nil
}

func (b *geminiBackend) Name() string     { return b.name }
func (b *geminiBackend) Provider() string { return "gemini" }

func (b *geminiBackend) Send(ctx context.Context, img core.Image, prompt string) (string, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  b.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return "", fmt.Errorf("gemini client: %w", err)
	}

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromBytes(img.Data, img.MediaType),
			genai.NewPartFromText(prompt),
		}, genai.RoleUser),
	}

	resp, err := client.Models.GenerateContent(ctx, b.model, contents, &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(b.temperature),
		MaxOutputTokens: int32(b.maxTokens),
	})
	if err != nil {
		return "", fmt.Errorf("gemini generate content: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("gemini returned no text content")
	}
	return text, nil
}

package config

import (
	"medcouncil/internal/extract"
	"medcouncil/internal/prompt"
)

// Config holds all application configuration.
type Config struct {
	Log     LogConfig     `mapstructure:"log"`
	Dataset DatasetConfig `mapstructure:"dataset"`
	Models  ModelsConfig  `mapstructure:"models"`
	Prompts PromptsConfig `mapstructure:"prompts"`
	Extract extract.Rules `mapstructure:"extract"`
	Run     RunConfig     `mapstructure:"run"`
}

// LogConfig configures logging behavior.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"`
}

// DatasetConfig locates the question spreadsheet and its images.
type DatasetConfig struct {
	Path          string `mapstructure:"path"`
	ImageBaseDir  string `mapstructure:"image_base_dir"`
	MaxImageBytes int64  `mapstructure:"max_image_bytes"`
}

// ModelConfig configures one backend: an advisor or the decision model.
type ModelConfig struct {
	Provider    string  `mapstructure:"provider"`
	Model       string  `mapstructure:"model"`
	Temperature float64 `mapstructure:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	BaseURL     string  `mapstructure:"base_url"`
	APIKey      string  `mapstructure:"api_key"`
}

// ModelsConfig configures the advisor council and the decision model.
type ModelsConfig struct {
	Advisors map[string]ModelConfig `mapstructure:"advisors"`
	Decision ModelConfig            `mapstructure:"decision"`
}

// PromptsConfig configures the prompt templates. File, when set, overrides
// the inline templates.
type PromptsConfig struct {
	File      string           `mapstructure:"file"`
	Templates prompt.Templates `mapstructure:",squash"`
}

// RunConfig configures run output and persistence.
type RunConfig struct {
	LogDir  string `mapstructure:"log_dir"`
	SaveRaw bool   `mapstructure:"save_raw"`
}

// AdvisorNames returns the configured advisor names, unordered.
func (m ModelsConfig) AdvisorNames() []string {
	names := make([]string, 0, len(m.Advisors))
	for name := range m.Advisors {
		names = append(names, name)
	}
	return names
}

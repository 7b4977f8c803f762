package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"medcouncil/internal/extract"
	"medcouncil/internal/prompt"
)

// Loader handles configuration loading from multiple sources.
type Loader struct {
	v          *viper.Viper
	configFile string
	envPrefix  string
}

// NewLoader creates a new configuration loader.
func NewLoader() *Loader {
	return &Loader{
		v:         viper.New(),
		envPrefix: "MEDCOUNCIL",
	}
}

// NewLoaderWithViper creates a loader using an existing viper instance.
// This allows integration with CLI flag bindings.
func NewLoaderWithViper(v *viper.Viper) *Loader {
	return &Loader{
		v:         v,
		envPrefix: "MEDCOUNCIL",
	}
}

// WithConfigFile sets an explicit config file path.
func (l *Loader) WithConfigFile(path string) *Loader {
	l.configFile = path
	return l
}

// Viper returns the underlying viper instance for flag binding.
func (l *Loader) Viper() *viper.Viper {
	return l.v
}

// Load loads configuration from all sources.
// Precedence (highest to lowest):
// 1. CLI flags (set via viper.BindPFlag)
// 2. Environment variables (MEDCOUNCIL_*)
// 3. Project config (.medcouncil.yaml in current directory)
// 4. User config (~/.config/medcouncil/config.yaml)
// 5. Defaults
func (l *Loader) Load() (*Config, error) {
	l.setDefaults()

	l.v.SetEnvPrefix(l.envPrefix)
	l.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	l.v.AutomaticEnv()

	if l.configFile != "" {
		l.v.SetConfigFile(l.configFile)
	} else {
		l.v.SetConfigName(".medcouncil")
		l.v.SetConfigType("yaml")

		// Project config takes precedence over user config.
		l.v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			l.v.AddConfigPath(filepath.Join(home, ".config", "medcouncil"))
		}
	}

	if err := l.v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// setDefaults configures default values.
func (l *Loader) setDefaults() {
	// Log defaults
	l.v.SetDefault("log.level", "info")
	l.v.SetDefault("log.format", "auto")

	// Dataset defaults
	l.v.SetDefault("dataset.path", "data/preguntas.xlsx")
	l.v.SetDefault("dataset.image_base_dir", "data")
	l.v.SetDefault("dataset.max_image_bytes", int64(4.5*1024*1024))

	// Advisor council defaults: three advisors plus the Gemini decisor,
	// mirroring the reference council composition.
	l.v.SetDefault("models.advisors.claude.provider", "anthropic")
	l.v.SetDefault("models.advisors.claude.model", "claude-sonnet-4-20250514")
	l.v.SetDefault("models.advisors.claude.temperature", 0.0)
	l.v.SetDefault("models.advisors.claude.max_tokens", 1000)
	l.v.SetDefault("models.advisors.grok.provider", "grok")
	l.v.SetDefault("models.advisors.grok.model", "grok-2-vision-1212")
	l.v.SetDefault("models.advisors.grok.temperature", 0.0)
	l.v.SetDefault("models.advisors.grok.max_tokens", 1000)
	l.v.SetDefault("models.advisors.openai.provider", "openai")
	l.v.SetDefault("models.advisors.openai.model", "gpt-4o")
	l.v.SetDefault("models.advisors.openai.temperature", 0.0)
	l.v.SetDefault("models.advisors.openai.max_tokens", 1000)
	l.v.SetDefault("models.decision.provider", "gemini")
	l.v.SetDefault("models.decision.model", "gemini-2.0-flash")
	l.v.SetDefault("models.decision.temperature", 0.0)
	l.v.SetDefault("models.decision.max_tokens", 1000)

	// Prompt defaults
	defaults := prompt.DefaultTemplates()
	l.v.SetDefault("prompts.advisor_template", defaults.Advisor)
	l.v.SetDefault("prompts.decision_template", defaults.Decision)

	// Extraction defaults: the bilingual synonym and pattern lists.
	rules := extract.DefaultRules()
	l.v.SetDefault("extract.answer_keys", rules.AnswerKeys)
	l.v.SetDefault("extract.justification_keys", rules.JustificationKeys)
	l.v.SetDefault("extract.patterns", rules.Patterns)
	l.v.SetDefault("extract.justification_pattern", rules.JustificationPattern)
	l.v.SetDefault("extract.error_prefix", rules.ErrorPrefix)

	// Run defaults
	l.v.SetDefault("run.log_dir", "logs")
	l.v.SetDefault("run.save_raw", true)
}

// ConfigFile returns the config file path if one was used.
func (l *Loader) ConfigFile() string {
	return l.v.ConfigFileUsed()
}

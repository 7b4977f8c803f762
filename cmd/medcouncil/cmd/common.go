package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sahilm/fuzzy"
	"github.com/spf13/viper"

	"medcouncil/internal/adapters/ai"
	"medcouncil/internal/config"
	"medcouncil/internal/core"
	"medcouncil/internal/council"
	"medcouncil/internal/extract"
	"medcouncil/internal/logging"
	"medcouncil/internal/prompt"
)

// loadConfig loads and validates the unified configuration, honoring the
// global viper instance so CLI flag bindings apply.
func loadConfig() (*config.Config, error) {
	loader := config.NewLoaderWithViper(viper.GetViper())
	if cfgFile != "" {
		loader.WithConfigFile(cfgFile)
	}
	cfg, err := loader.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := config.NewValidator().Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) *logging.Logger {
	return logging.New(logging.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})
}

// councilDeps holds everything needed to process questions.
type councilDeps struct {
	advisors  map[string]core.Backend
	decision  core.Backend
	prompts   *prompt.Manager
	extractor *extract.Extractor
	processor *council.Processor
}

// buildCouncil resolves the configured backends and assembles the question
// pipeline. advisorFilter, when non-empty, restricts the council to the named
// advisors; unknown names fail with a did-you-mean suggestion.
func buildCouncil(cfg *config.Config, advisorFilter []string, logger *logging.Logger) (*councilDeps, error) {
	selected, err := selectAdvisors(cfg.Models.Advisors, advisorFilter)
	if err != nil {
		return nil, err
	}

	registry := ai.NewRegistry()
	for name, mc := range selected {
		registry.Configure(backendConfig(name, mc))
	}
	registry.Configure(backendConfig("decision", cfg.Models.Decision))

	advisors := make(map[string]core.Backend, len(selected))
	for name := range selected {
		b, err := registry.Get(name)
		if err != nil {
			return nil, err
		}
		advisors[name] = b
	}
	decision, err := registry.Get("decision")
	if err != nil {
		return nil, err
	}

	extractor, err := extract.New(cfg.Extract)
	if err != nil {
		return nil, err
	}

	tpl := cfg.Prompts.Templates
	if cfg.Prompts.File != "" {
		if tpl, err = prompt.LoadTemplatesFile(cfg.Prompts.File); err != nil {
			return nil, err
		}
	}
	names := make([]string, 0, len(advisors))
	for name := range advisors {
		names = append(names, name)
	}
	prompts, err := prompt.NewManager(tpl, names)
	if err != nil {
		return nil, err
	}

	fanout := council.NewFanOut(advisors, prompts, extractor, logger)
	arbiter := council.NewArbiter(decision, prompts, extractor, logger)
	processor := council.NewProcessor(fanout, arbiter, cfg.Dataset.MaxImageBytes, logger)

	return &councilDeps{
		advisors:  advisors,
		decision:  decision,
		prompts:   prompts,
		extractor: extractor,
		processor: processor,
	}, nil
}

func backendConfig(name string, mc config.ModelConfig) ai.BackendConfig {
	return ai.BackendConfig{
		Name:        name,
		Provider:    mc.Provider,
		Model:       mc.Model,
		Temperature: float32(mc.Temperature),
		MaxTokens:   mc.MaxTokens,
		BaseURL:     mc.BaseURL,
		APIKey:      mc.APIKey,
	}
}

// selectAdvisors restricts the configured advisors to the requested subset.
func selectAdvisors(configured map[string]config.ModelConfig, filter []string) (map[string]config.ModelConfig, error) {
	if len(filter) == 0 {
		return configured, nil
	}

	selected := make(map[string]config.ModelConfig, len(filter))
	for _, name := range filter {
		name = strings.TrimSpace(name)
		mc, ok := configured[name]
		if !ok {
			return nil, core.ErrValidation("UNKNOWN_ADVISOR", unknownAdvisorMessage(name, configured))
		}
		selected[name] = mc
	}
	return selected, nil
}

func unknownAdvisorMessage(name string, configured map[string]config.ModelConfig) string {
	names := make([]string, 0, len(configured))
	for n := range configured {
		names = append(names, n)
	}
	sort.Strings(names)

	msg := fmt.Sprintf("unknown advisor %q (configured: %s)", name, strings.Join(names, ", "))
	if matches := fuzzy.Find(name, names); len(matches) > 0 {
		msg = fmt.Sprintf("unknown advisor %q, did you mean %q?", name, matches[0].Str)
	}
	return msg
}

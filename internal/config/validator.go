package config

import (
	"fmt"
	"sort"
	"strings"

	"medcouncil/internal/adapters/ai"
	"medcouncil/internal/extract"
	"medcouncil/internal/prompt"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("config validation: %s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors collects multiple validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// HasErrors returns true if there are any validation errors.
func (e ValidationErrors) HasErrors() bool {
	return len(e) > 0
}

// Validator validates configuration. Configuration errors are fatal: the run
// never starts with a broken council.
type Validator struct {
	errors ValidationErrors
}

// NewValidator creates a new validator.
func NewValidator() *Validator {
	return &Validator{
		errors: make(ValidationErrors, 0),
	}
}

// Validate validates the entire configuration.
func (v *Validator) Validate(cfg *Config) error {
	v.validateLog(&cfg.Log)
	v.validateDataset(&cfg.Dataset)
	v.validateModels(&cfg.Models)
	v.validatePrompts(cfg)
	v.validateExtract(&cfg.Extract)

	if v.errors.HasErrors() {
		return v.errors
	}
	return nil
}

func (v *Validator) addError(field string, value interface{}, message string) {
	v.errors = append(v.errors, ValidationError{Field: field, Value: value, Message: message})
}

func (v *Validator) validateLog(log *LogConfig) {
	switch log.Level {
	case "debug", "info", "warn", "error":
	default:
		v.addError("log.level", log.Level, "must be one of: debug, info, warn, error")
	}
	switch log.Format {
	case "auto", "text", "json", "pretty":
	default:
		v.addError("log.format", log.Format, "must be one of: auto, text, json, pretty")
	}
}

func (v *Validator) validateDataset(ds *DatasetConfig) {
	if strings.TrimSpace(ds.Path) == "" {
		v.addError("dataset.path", ds.Path, "question file path is required")
	}
	if ds.MaxImageBytes < 0 {
		v.addError("dataset.max_image_bytes", ds.MaxImageBytes, "must be >= 0 (0 disables the limit)")
	}
}

func (v *Validator) validateModels(m *ModelsConfig) {
	if len(m.Advisors) == 0 {
		v.addError("models.advisors", nil, "at least one advisor is required")
	}

	names := m.AdvisorNames()
	sort.Strings(names)
	for _, name := range names {
		v.validateModel("models.advisors."+name, m.Advisors[name])
	}
	v.validateModel("models.decision", m.Decision)
}

func (v *Validator) validateModel(field string, mc ModelConfig) {
	if mc.Provider == "" {
		v.addError(field+".provider", mc.Provider, "provider is required")
	} else if ai.EnvKeyFor(mc.Provider) == "" {
		v.addError(field+".provider", mc.Provider, "unknown provider")
	}
	if strings.TrimSpace(mc.Model) == "" {
		v.addError(field+".model", mc.Model, "model id is required")
	}
	if mc.Temperature < 0 || mc.Temperature > 2 {
		v.addError(field+".temperature", mc.Temperature, "must be between 0 and 2")
	}
	if mc.MaxTokens < 0 {
		v.addError(field+".max_tokens", mc.MaxTokens, "must be >= 0")
	}
}

func (v *Validator) validatePrompts(cfg *Config) {
	tpl := cfg.Prompts.Templates
	if cfg.Prompts.File != "" {
		loaded, err := prompt.LoadTemplatesFile(cfg.Prompts.File)
		if err != nil {
			v.addError("prompts.file", cfg.Prompts.File, err.Error())
			return
		}
		tpl = loaded
	}
	if _, err := prompt.NewManager(tpl, cfg.Models.AdvisorNames()); err != nil {
		v.addError("prompts", "", err.Error())
	}
}

func (v *Validator) validateExtract(rules *extract.Rules) {
	if len(rules.AnswerKeys) == 0 {
		v.addError("extract.answer_keys", rules.AnswerKeys, "at least one answer key synonym is required")
	}
	if _, err := extract.New(*rules); err != nil {
		v.addError("extract.patterns", "", err.Error())
	}
}

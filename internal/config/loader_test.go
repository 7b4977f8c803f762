package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	// An explicit but missing config file is an error.
	_, err := NewLoader().WithConfigFile(filepath.Join(t.TempDir(), "nonexistent.yaml")).Load()
	require.Error(t, err)

	cfg, err := loadWithoutFiles(t)
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "auto", cfg.Log.Format)
	assert.Equal(t, "data/preguntas.xlsx", cfg.Dataset.Path)
	assert.Equal(t, int64(4718592), cfg.Dataset.MaxImageBytes)

	require.Contains(t, cfg.Models.Advisors, "claude")
	require.Contains(t, cfg.Models.Advisors, "grok")
	require.Contains(t, cfg.Models.Advisors, "openai")
	assert.Equal(t, "anthropic", cfg.Models.Advisors["claude"].Provider)
	assert.Equal(t, "gemini", cfg.Models.Decision.Provider)
	assert.Equal(t, 1000, cfg.Models.Decision.MaxTokens)

	assert.Contains(t, cfg.Prompts.Templates.Advisor, "{question}")
	assert.Contains(t, cfg.Prompts.Templates.Decision, "{advisor_responses}")

	assert.NotEmpty(t, cfg.Extract.AnswerKeys)
	assert.NotEmpty(t, cfg.Extract.Patterns)

	assert.Equal(t, "logs", cfg.Run.LogDir)
	assert.True(t, cfg.Run.SaveRaw)
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
log:
  level: debug
dataset:
  path: /data/mir.xlsx
  max_image_bytes: 1024
models:
  decision:
    provider: anthropic
    model: claude-opus-4
run:
  save_raw: false
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := NewLoader().WithConfigFile(path).Load()
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "/data/mir.xlsx", cfg.Dataset.Path)
	assert.Equal(t, int64(1024), cfg.Dataset.MaxImageBytes)
	assert.Equal(t, "anthropic", cfg.Models.Decision.Provider)
	assert.Equal(t, "claude-opus-4", cfg.Models.Decision.Model)
	assert.False(t, cfg.Run.SaveRaw)

	// Untouched sections keep their defaults.
	assert.Equal(t, "auto", cfg.Log.Format)
	assert.Contains(t, cfg.Models.Advisors, "claude")
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("MEDCOUNCIL_LOG_LEVEL", "warn")
	t.Setenv("MEDCOUNCIL_DATASET_PATH", "/env/questions.csv")

	cfg, err := loadWithoutFiles(t)
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "/env/questions.csv", cfg.Dataset.Path)
}

// loadWithoutFiles loads from a directory guaranteed to contain no config
// file, so only defaults and environment apply.
func loadWithoutFiles(t *testing.T) (*Config, error) {
	t.Helper()
	cwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(cwd) })
	return NewLoader().Load()
}

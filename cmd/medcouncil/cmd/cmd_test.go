package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medcouncil/internal/config"
	"medcouncil/internal/core"
	"medcouncil/internal/runlog"
	"medcouncil/internal/stats"
)

func TestResolveResume(t *testing.T) {
	t.Run("empty disables", func(t *testing.T) {
		id, err := resolveResume("")
		require.NoError(t, err)
		assert.Equal(t, -1, id)
	})

	t.Run("numeric id", func(t *testing.T) {
		id, err := resolveResume("42")
		require.NoError(t, err)
		assert.Equal(t, 42, id)
	})

	t.Run("negative id rejected", func(t *testing.T) {
		_, err := resolveResume("-3")
		require.Error(t, err)
	})

	t.Run("run directory resumes after last committed", func(t *testing.T) {
		l, err := runlog.Open(t.TempDir(), false)
		require.NoError(t, err)
		res := core.Result{
			Question: core.Question{ID: 17, CorrectAnswer: "a"},
			Decision: core.Decision{AdvisorReply: core.AdvisorReply{ParsedAnswer: "a"}, IsCorrect: true},
		}
		require.NoError(t, l.Append(res))
		require.NoError(t, l.WriteSnapshot(stats.New(nil).Snapshot()))
		dir := l.Dir()
		require.NoError(t, l.Close())

		id, err := resolveResume(dir)
		require.NoError(t, err)
		assert.Equal(t, 18, id)
	})

	t.Run("empty directory fails", func(t *testing.T) {
		_, err := resolveResume(t.TempDir())
		require.Error(t, err)
	})
}

func TestSelectAdvisors(t *testing.T) {
	configured := map[string]config.ModelConfig{
		"claude": {Provider: "anthropic", Model: "claude-sonnet-4"},
		"grok":   {Provider: "grok", Model: "grok-2-vision"},
		"openai": {Provider: "openai", Model: "gpt-4o"},
	}

	t.Run("empty filter keeps all", func(t *testing.T) {
		selected, err := selectAdvisors(configured, nil)
		require.NoError(t, err)
		assert.Len(t, selected, 3)
	})

	t.Run("subset", func(t *testing.T) {
		selected, err := selectAdvisors(configured, []string{"claude", "grok"})
		require.NoError(t, err)
		assert.Len(t, selected, 2)
		assert.Contains(t, selected, "claude")
		assert.NotContains(t, selected, "openai")
	})

	t.Run("unknown name suggests closest match", func(t *testing.T) {
		_, err := selectAdvisors(configured, []string{"cluade"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "claude")
	})
}

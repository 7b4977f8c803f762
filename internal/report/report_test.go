package report

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medcouncil/internal/core"
	"medcouncil/internal/stats"
)

func seedAggregator(t *testing.T) *stats.Aggregator {
	t.Helper()
	agg := stats.New([]string{"claude", "grok"})

	record := func(id int, claudeAns, grokAns, decisionAns, correct, cat1, cat2 string) {
		agg.Record(core.Result{
			Question: core.Question{ID: id, CorrectAnswer: correct, Category1: cat1, Category2: cat2},
			Advisors: map[string]core.AdvisorReply{
				"claude": {ParsedAnswer: claudeAns, Elapsed: time.Second},
				"grok":   {ParsedAnswer: grokAns, Elapsed: 2 * time.Second},
			},
			Decision: core.Decision{
				AdvisorReply: core.AdvisorReply{ParsedAnswer: decisionAns, Elapsed: time.Second},
				IsCorrect:    strings.EqualFold(decisionAns, correct),
			},
			Elapsed: 4 * time.Second,
		})
	}

	record(0, "a", "a", "a", "a", "torax", "neumologia")
	record(1, "b", "c", "b", "b", "torax", "neumologia")
	record(2, "d", "a", "c", "b", "abdomen", "digestivo")
	return agg
}

func TestRenderWritesAllArtifacts(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, NewWriter().Render(dir, seedAggregator(t)))

	assert.FileExists(t, filepath.Join(dir, summaryFile))
	assert.FileExists(t, filepath.Join(dir, categoryFile))
	assert.FileExists(t, filepath.Join(dir, chartsFile))
}

func TestSummaryContent(t *testing.T) {
	agg := seedAggregator(t)
	md := buildSummary(agg)

	assert.Contains(t, md, "# Resumen de la ejecucion")
	assert.Contains(t, md, "Preguntas procesadas: 3")
	assert.Contains(t, md, "Respuestas correctas: 2")
	assert.Contains(t, md, "| claude |")
	assert.Contains(t, md, "| grok |")
	assert.Contains(t, md, "| decision |")
	assert.Contains(t, md, "Sin consenso")
	assert.Contains(t, md, "## Preguntas mas dificiles")

	// The decision row comes after the advisor rows.
	assert.Greater(t, strings.Index(md, "| decision |"), strings.Index(md, "| grok |"))
}

func TestCategoryCSV(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, NewWriter().Render(dir, seedAggregator(t)))

	f, err := os.Open(filepath.Join(dir, categoryFile))
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"categoria_1", "categoria_2", "total", "correct", "accuracy"}, rows[0])
	assert.Equal(t, []string{"abdomen", "digestivo", "1", "0", "0.00"}, rows[1])
	assert.Equal(t, []string{"torax", "neumologia", "2", "2", "100.00"}, rows[2])
}

func TestChartsHTML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, NewWriter().Render(dir, seedAggregator(t)))

	data, err := os.ReadFile(filepath.Join(dir, chartsFile))
	require.NoError(t, err)
	html := string(data)
	assert.Contains(t, html, "Precision por modelo")
	assert.Contains(t, html, "Consenso entre consejeros")
	assert.Contains(t, html, "Tiempo medio por pregunta")
}

func TestRenderEmptyRun(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, NewWriter().Render(dir, stats.New([]string{"claude"})))

	md, err := os.ReadFile(SummaryPath(dir))
	require.NoError(t, err)
	assert.Contains(t, string(md), "Preguntas procesadas: 0")
	assert.NotContains(t, string(md), "## Preguntas mas dificiles")
}

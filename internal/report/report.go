// Package report renders the end-of-run artifacts: a markdown summary, the
// per-category CSV, and interactive HTML charts.
package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/google/renameio/v2"

	"medcouncil/internal/stats"
)

const (
	summaryFile  = "summary.md"
	categoryFile = "category_analysis.csv"
	chartsFile   = "charts.html"
)

// Writer renders reports into a run directory.
type Writer struct{}

// NewWriter creates a report writer.
func NewWriter() *Writer { return &Writer{} }

// Render writes every report artifact into dir from the aggregator's final
// state. Artifacts are independent; the first failure aborts.
func (w *Writer) Render(dir string, agg *stats.Aggregator) error {
	if err := w.writeSummary(dir, agg); err != nil {
		return fmt.Errorf("writing summary: %w", err)
	}
	if err := w.writeCategoryCSV(dir, agg); err != nil {
		return fmt.Errorf("writing category analysis: %w", err)
	}
	if err := w.writeCharts(dir, agg); err != nil {
		return fmt.Errorf("writing charts: %w", err)
	}
	return nil
}

// SummaryPath returns the summary file location inside a run directory.
func SummaryPath(dir string) string {
	return filepath.Join(dir, summaryFile)
}

func (w *Writer) writeSummary(dir string, agg *stats.Aggregator) error {
	return renameio.WriteFile(SummaryPath(dir), []byte(buildSummary(agg)), 0o640)
}

func (w *Writer) writeCategoryCSV(dir string, agg *stats.Aggregator) error {
	f, err := os.Create(filepath.Join(dir, categoryFile))
	if err != nil {
		return err
	}

	rows := [][]string{{"categoria_1", "categoria_2", "total", "correct", "accuracy"}}
	for _, cs := range agg.CategoryBreakdown() {
		rows = append(rows, []string{
			cs.Category1,
			cs.Category2,
			strconv.Itoa(cs.Total),
			strconv.Itoa(cs.Correct),
			fmt.Sprintf("%.2f", cs.Accuracy),
		})
	}

	cw := csv.NewWriter(f)
	if err := cw.WriteAll(rows); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

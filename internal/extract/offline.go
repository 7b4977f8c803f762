package extract

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// OfflineRecord is one line of a raw-response log reprocessed offline. Field
// names follow the dataset's Spanish column names so existing logs load
// unchanged.
type OfflineRecord struct {
	QuestionID    int    `json:"question_id"`
	ModelResponse string `json:"respuesta_modelo"`
	CorrectAnswer string `json:"respuesta_correcta"`
	Category1     string `json:"categoria_1"`
	Category2     string `json:"categoria_2"`
	Extracted     string `json:"respuesta_extraida"`
	IsCorrect     bool   `json:"es_correcta"`
}

// OfflineSummary accumulates statistics over a reprocessed file.
type OfflineSummary struct {
	Total      int
	Correct    int
	Categories map[string]*CategoryCount // key: "cat1/cat2"
}

// CategoryCount is a per-category tally.
type CategoryCount struct {
	Category1 string
	Category2 string
	Total     int
	Correct   int
}

// Accuracy returns the percentage of correct answers, 0 when empty.
func (s *OfflineSummary) Accuracy() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Correct) / float64(s.Total) * 100
}

// Reprocess reads a JSONL stream of raw model responses, re-runs the
// extractor on each, annotates correctness, and writes the enriched records
// as JSONL to out. Malformed lines are skipped and counted.
func (e *Extractor) Reprocess(in io.Reader, out io.Writer) (*OfflineSummary, int, error) {
	summary := &OfflineSummary{Categories: make(map[string]*CategoryCount)}
	skipped := 0

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 1024*1024), 16*1024*1024)
	enc := json.NewEncoder(out)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var rec OfflineRecord
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			skipped++
			continue
		}

		rec.Extracted, _ = e.Extract(rec.ModelResponse)
		rec.IsCorrect = rec.Extracted != "" && rec.CorrectAnswer != "" &&
			strings.EqualFold(rec.Extracted, rec.CorrectAnswer)

		if err := enc.Encode(&rec); err != nil {
			return nil, skipped, fmt.Errorf("writing record: %w", err)
		}

		summary.Total++
		if rec.IsCorrect {
			summary.Correct++
		}
		key := rec.Category1 + "/" + rec.Category2
		cc, ok := summary.Categories[key]
		if !ok {
			cc = &CategoryCount{Category1: rec.Category1, Category2: rec.Category2}
			summary.Categories[key] = cc
		}
		cc.Total++
		if rec.IsCorrect {
			cc.Correct++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, skipped, fmt.Errorf("reading input: %w", err)
	}

	return summary, skipped, nil
}

// Package runlog persists one run's output tree:
//
//	<base>/<run-id>/results.jsonl   one JSON line per completed question
//	<base>/<run-id>/raw/<id>.json   full per-question record (optional)
//	<base>/<run-id>/stats.json      final statistics snapshot
//	<base>/<run-id>/run.db          SQLite index used for resume lookups
//
// The JSONL stream is the durable record: each line is flushed before the
// question is considered committed, so an aborted run resumes exactly after
// the last line written.
package runlog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/renameio/v2"
	"github.com/google/uuid"

	"medcouncil/internal/core"
	"medcouncil/internal/stats"
)

const (
	resultsFile  = "results.jsonl"
	statsFile    = "stats.json"
	rawDir       = "raw"
	timeLayout   = "20060102_150405"
	dirPerm      = 0o750
	filePerm     = 0o640
)

// Log writes one run's results under a dedicated directory.
type Log struct {
	dir     string
	results *os.File
	index   *Index
	saveRaw bool
}

// Open creates a fresh run directory under baseDir and opens the result
// stream and the SQLite index. The directory name embeds the start timestamp
// and a short random suffix so concurrent runs never collide.
func Open(baseDir string, saveRaw bool) (*Log, error) {
	runID := fmt.Sprintf("%s_%s", time.Now().Format(timeLayout), uuid.NewString()[:8])
	dir := filepath.Join(baseDir, runID)
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return nil, fmt.Errorf("creating run directory: %w", err)
	}
	if saveRaw {
		if err := os.MkdirAll(filepath.Join(dir, rawDir), dirPerm); err != nil {
			return nil, fmt.Errorf("creating raw directory: %w", err)
		}
	}

	results, err := os.OpenFile(filepath.Join(dir, resultsFile), os.O_CREATE|os.O_WRONLY|os.O_APPEND, filePerm)
	if err != nil {
		return nil, fmt.Errorf("opening result stream: %w", err)
	}

	index, err := OpenIndex(filepath.Join(dir, indexFile))
	if err != nil {
		_ = results.Close()
		return nil, err
	}

	return &Log{dir: dir, results: results, index: index, saveRaw: saveRaw}, nil
}

// Dir returns the run directory path.
func (l *Log) Dir() string { return l.dir }

// Append commits one completed result: a line in the JSONL stream, a row in
// the index, and optionally the full raw record. The result only counts as
// committed once the JSONL line is flushed to disk.
func (l *Log) Append(res core.Result) error {
	line, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("encoding result %d: %w", res.Question.ID, err)
	}
	if _, err := l.results.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("appending result %d: %w", res.Question.ID, err)
	}
	if err := l.results.Sync(); err != nil {
		return fmt.Errorf("flushing result %d: %w", res.Question.ID, err)
	}

	if err := l.index.Insert(res); err != nil {
		return err
	}

	if l.saveRaw {
		raw, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding raw record %d: %w", res.Question.ID, err)
		}
		path := filepath.Join(l.dir, rawDir, fmt.Sprintf("%d.json", res.Question.ID))
		if err := renameio.WriteFile(path, raw, filePerm); err != nil {
			return fmt.Errorf("writing raw record %d: %w", res.Question.ID, err)
		}
	}

	return nil
}

// WriteSnapshot atomically replaces the statistics file with the given
// snapshot. Called once at run end, or on demand for mid-run checkpoints.
func (l *Log) WriteSnapshot(snap stats.Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding statistics: %w", err)
	}
	if err := renameio.WriteFile(filepath.Join(l.dir, statsFile), data, filePerm); err != nil {
		return fmt.Errorf("writing statistics: %w", err)
	}
	return nil
}

// Close releases the result stream and the index.
func (l *Log) Close() error {
	var firstErr error
	if err := l.results.Close(); err != nil {
		firstErr = err
	}
	if err := l.index.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

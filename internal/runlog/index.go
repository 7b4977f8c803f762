package runlog

import (
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"medcouncil/internal/core"
)

const indexFile = "run.db"

//go:embed schema.sql
var schemaSQL string

// Index is the per-run SQLite table of committed question IDs. It exists for
// fast resume lookups over long runs; the JSONL stream stays the source of
// truth.
type Index struct {
	db *sql.DB
}

// OpenIndex opens (creating if needed) the run index at path.
func OpenIndex(path string) (*Index, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("opening run index: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initializing run index: %w", err)
	}
	return &Index{db: db}, nil
}

// Insert records one committed result.
func (ix *Index) Insert(res core.Result) error {
	_, err := ix.db.Exec(
		`INSERT OR REPLACE INTO results (question_id, answer, is_correct, elapsed_ms, recorded_at)
		 VALUES (?, ?, ?, ?, ?)`,
		res.Question.ID,
		res.Decision.ParsedAnswer,
		res.Decision.IsCorrect,
		res.Elapsed.Milliseconds(),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("indexing result %d: %w", res.Question.ID, err)
	}
	return nil
}

// MaxQuestionID returns the highest committed question ID, or false when the
// index is empty.
func (ix *Index) MaxQuestionID() (int, bool, error) {
	var id sql.NullInt64
	if err := ix.db.QueryRow(`SELECT MAX(question_id) FROM results`).Scan(&id); err != nil {
		return 0, false, fmt.Errorf("querying run index: %w", err)
	}
	if !id.Valid {
		return 0, false, nil
	}
	return int(id.Int64), true, nil
}

// Close closes the underlying database.
func (ix *Index) Close() error {
	return ix.db.Close()
}

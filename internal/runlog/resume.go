package runlog

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"medcouncil/internal/core"
)

// LastCompletedID returns the highest question ID committed in the given run
// directory. The SQLite index is consulted first; a missing or unreadable
// index falls back to scanning the JSONL stream, so runs from before the
// index (or with a corrupted one) still resume. Returns core.ErrNotFound
// when the directory holds no committed results.
func LastCompletedID(dir string) (int, error) {
	if id, ok := maxFromIndex(filepath.Join(dir, indexFile)); ok {
		return id, nil
	}
	return maxFromStream(filepath.Join(dir, resultsFile))
}

func maxFromIndex(path string) (int, bool) {
	if _, err := os.Stat(path); err != nil {
		return 0, false
	}
	ix, err := OpenIndex(path)
	if err != nil {
		return 0, false
	}
	defer ix.Close()

	id, ok, err := ix.MaxQuestionID()
	if err != nil || !ok {
		return 0, false
	}
	return id, true
}

func maxFromStream(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, core.ErrNotFound("run results", path)
	}
	defer f.Close()

	maxID := -1
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for sc.Scan() {
		var res core.Result
		if err := json.Unmarshal(sc.Bytes(), &res); err != nil {
			// A torn final line from an aborted run is expected; everything
			// before it is committed.
			continue
		}
		if res.Question.ID > maxID {
			maxID = res.Question.ID
		}
	}
	if err := sc.Err(); err != nil {
		return 0, fmt.Errorf("scanning %s: %w", path, err)
	}
	if maxID < 0 {
		return 0, core.ErrNotFound("run results", path)
	}
	return maxID, nil
}

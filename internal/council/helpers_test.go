package council

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"medcouncil/internal/core"
	"medcouncil/internal/extract"
	"medcouncil/internal/prompt"
	"medcouncil/internal/stats"
)

// fakeBackend returns a canned response or error and records the prompts it
// was called with.
type fakeBackend struct {
	name     string
	response string
	err      error

	mu      sync.Mutex
	prompts []string
}

func (f *fakeBackend) Name() string     { return f.name }
func (f *fakeBackend) Provider() string { return "fake" }

func (f *fakeBackend) Send(_ context.Context, _ core.Image, p string) (string, error) {
	f.mu.Lock()
	f.prompts = append(f.prompts, p)
	f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func (f *fakeBackend) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.prompts)
}

func (f *fakeBackend) lastPrompt() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.prompts) == 0 {
		return ""
	}
	return f.prompts[len(f.prompts)-1]
}

func testExtractor(t *testing.T) *extract.Extractor {
	t.Helper()
	e, err := extract.New(extract.DefaultRules())
	require.NoError(t, err)
	return e
}

func testPrompts(t *testing.T, names []string) *prompt.Manager {
	t.Helper()
	m, err := prompt.NewManager(prompt.DefaultTemplates(), names)
	require.NoError(t, err)
	return m
}

func advisorBackends(fakes ...*fakeBackend) map[string]core.Backend {
	m := make(map[string]core.Backend, len(fakes))
	for _, f := range fakes {
		m[f.name] = f
	}
	return m
}

func names(advisors map[string]core.Backend) []string {
	out := make([]string, 0, len(advisors))
	for name := range advisors {
		out = append(out, name)
	}
	return out
}

// writeTestImage creates a small JPEG-magic file and returns its path.
func writeTestImage(t *testing.T, size int) string {
	t.Helper()
	data := make([]byte, size)
	copy(data, []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F'})
	path := filepath.Join(t.TempDir(), "fig.jpg")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

// memRunLog captures appended results and the final snapshot in memory.
type memRunLog struct {
	results  []core.Result
	snapshot *stats.Snapshot
}

func (m *memRunLog) Append(res core.Result) error { m.results = append(m.results, res); return nil }
func (m *memRunLog) WriteSnapshot(s stats.Snapshot) error {
	m.snapshot = &s
	return nil
}
func (m *memRunLog) Dir() string { return "testrun" }

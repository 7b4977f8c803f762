package council

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medcouncil/internal/core"
	"medcouncil/internal/logging"
)

func newTestProcessor(t *testing.T, advisors map[string]core.Backend, decision *fakeBackend, maxImageBytes int64) *Processor {
	t.Helper()
	prompts := testPrompts(t, names(advisors))
	extractor := testExtractor(t)
	log := logging.NewNop()
	fanout := NewFanOut(advisors, prompts, extractor, log)
	arbiter := NewArbiter(decision, prompts, extractor, log)
	return NewProcessor(fanout, arbiter, maxImageBytes, log)
}

func TestProcessMissingImageSkips(t *testing.T) {
	advisors := advisorBackends(&fakeBackend{name: "claude", response: "a"})
	p := newTestProcessor(t, advisors, &fakeBackend{name: "gemini", response: "a"}, 0)

	q := core.Question{ID: 1, Text: "q", ImagePath: "/nonexistent/fig.jpg", CorrectAnswer: "a"}
	res, err := p.Process(context.Background(), q)

	require.Nil(t, res)
	var skip *SkipError
	require.ErrorAs(t, err, &skip)
	assert.NotEmpty(t, skip.Reason)
}

func TestProcessOversizedImageSkips(t *testing.T) {
	advisors := advisorBackends(&fakeBackend{name: "claude", response: "a"})
	p := newTestProcessor(t, advisors, &fakeBackend{name: "gemini", response: "a"}, 64)

	q := core.Question{ID: 2, Text: "q", ImagePath: writeTestImage(t, 128), CorrectAnswer: "a"}
	res, err := p.Process(context.Background(), q)

	require.Nil(t, res)
	var skip *SkipError
	require.ErrorAs(t, err, &skip)
}

func TestProcessAssemblesResult(t *testing.T) {
	claude := &fakeBackend{name: "claude", response: `{"Respuesta": "a", "Justificacion": "neumotorax"}`}
	grok := &fakeBackend{name: "grok", response: `{"Respuesta": "b"}`}
	advisors := advisorBackends(claude, grok)
	decision := &fakeBackend{name: "gemini", response: `{"Respuesta": "a"}`}
	p := newTestProcessor(t, advisors, decision, 0)

	q := core.Question{ID: 7, Text: "¿hallazgo?", ImagePath: writeTestImage(t, 256), CorrectAnswer: "a"}
	res, err := p.Process(context.Background(), q)
	require.NoError(t, err)
	require.NotNil(t, res)

	assert.Equal(t, q, res.Question)
	require.Len(t, res.Advisors, 2)
	assert.Equal(t, "a", res.Advisors["claude"].ParsedAnswer)
	assert.Equal(t, "neumotorax", res.Advisors["claude"].Justification)
	assert.Equal(t, "b", res.Advisors["grok"].ParsedAnswer)
	assert.True(t, res.Decision.IsCorrect)
	assert.GreaterOrEqual(t, res.Elapsed, time.Duration(0))
}

func TestProcessBackendFailuresStillYieldResult(t *testing.T) {
	claude := &fakeBackend{name: "claude", err: errors.New("overloaded")}
	advisors := advisorBackends(claude)
	decision := &fakeBackend{name: "gemini", err: errors.New("unavailable")}
	p := newTestProcessor(t, advisors, decision, 0)

	q := core.Question{ID: 9, Text: "q", ImagePath: writeTestImage(t, 100), CorrectAnswer: "c"}
	res, err := p.Process(context.Background(), q)
	require.NoError(t, err)
	require.NotNil(t, res)

	assert.True(t, res.Advisors["claude"].Failed)
	assert.True(t, res.Decision.Failed)
	assert.False(t, res.Decision.IsCorrect)
}

func TestProcessCancelledContext(t *testing.T) {
	advisors := advisorBackends(&fakeBackend{name: "claude", response: "a"})
	p := newTestProcessor(t, advisors, &fakeBackend{name: "gemini", response: "a"}, 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	q := core.Question{ID: 4, Text: "q", ImagePath: writeTestImage(t, 100), CorrectAnswer: "a"}
	res, err := p.Process(ctx, q)
	require.Nil(t, res)
	assert.ErrorIs(t, err, context.Canceled)
}

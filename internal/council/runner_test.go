package council

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medcouncil/internal/core"
	"medcouncil/internal/logging"
	"medcouncil/internal/stats"
)

func TestSelect(t *testing.T) {
	questions := func(ids ...int) []core.Question {
		qs := make([]core.Question, 0, len(ids))
		for _, id := range ids {
			qs = append(qs, core.Question{ID: id})
		}
		return qs
	}
	ids := func(qs []core.Question) []int {
		out := make([]int, 0, len(qs))
		for _, q := range qs {
			out = append(out, q.ID)
		}
		return out
	}

	tests := []struct {
		name       string
		input      []core.Question
		sampleSize int
		resumeFrom int
		want       []int
	}{
		{"no filters", questions(1, 2, 3), 0, -1, []int{1, 2, 3}},
		{"sample truncates", questions(0, 1, 2, 3, 4, 5, 6, 7, 8, 9), 3, -1, []int{0, 1, 2}},
		{"sample larger than set", questions(1, 2), 10, -1, []int{1, 2}},
		{"resume keeps ids at or after", questions(1, 2, 3, 4, 5), 0, 3, []int{3, 4, 5}},
		{"resume from zero keeps all", questions(0, 1, 2), 0, 0, []int{0, 1, 2}},
		{"sample applies before resume", questions(1, 2, 3, 4, 5), 3, 3, []int{3}},
		{"resume past the end", questions(1, 2, 3), 0, 10, []int{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Select(tt.input, tt.sampleSize, tt.resumeFrom)
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestRunEndToEnd(t *testing.T) {
	claude := &fakeBackend{name: "claude", response: `{"Respuesta": "a"}`}
	grok := &fakeBackend{name: "grok", response: `{"Respuesta": "b"}`}
	deepseek := &fakeBackend{name: "deepseek", response: `{"Respuesta": "a"}`}
	advisors := advisorBackends(claude, grok, deepseek)
	decision := &fakeBackend{name: "gemini", response: `{"Respuesta": "a"}`}

	p := newTestProcessor(t, advisors, decision, 0)
	agg := stats.New(names(advisors))
	runlog := &memRunLog{}
	runner := NewRunner(p, agg, runlog, nil, logging.NewNop())

	var seen []core.Result
	questions := []core.Question{
		{ID: 0, Text: "¿hallazgo?", ImagePath: writeTestImage(t, 200), CorrectAnswer: "a", Category1: "torax"},
	}
	dir, err := runner.Run(context.Background(), questions, Options{
		TestMode: true,
		OnResult: func(res core.Result) { seen = append(seen, res) },
	})
	require.NoError(t, err)
	assert.Equal(t, "testrun", dir)

	require.Len(t, runlog.results, 1)
	res := runlog.results[0]
	assert.True(t, res.Decision.IsCorrect)
	assert.Equal(t, stats.BucketPartial, agg.ConsensusBucket(res))

	// 2 correct advisors + correct decision.
	difficult := agg.DifficultQuestions(10)
	require.Len(t, difficult, 1)
	assert.Equal(t, 0, difficult[0].QuestionID)
	assert.Equal(t, 3, difficult[0].CorrectModels)
	assert.Equal(t, 4, difficult[0].TotalModels)

	assert.Equal(t, 1, agg.TotalQuestions())
	assert.InDelta(t, 100.0, agg.GlobalAccuracy(), 0.001)

	require.NotNil(t, runlog.snapshot)
	assert.Equal(t, 1, runlog.snapshot.TotalQuestions)

	require.Len(t, seen, 1)
	assert.Equal(t, 0, seen[0].Question.ID)
}

func TestRunSkipsBadImagesAndContinues(t *testing.T) {
	advisors := advisorBackends(&fakeBackend{name: "claude", response: `{"Respuesta": "a"}`})
	decision := &fakeBackend{name: "gemini", response: `{"Respuesta": "a"}`}

	p := newTestProcessor(t, advisors, decision, 0)
	agg := stats.New(names(advisors))
	runlog := &memRunLog{}
	runner := NewRunner(p, agg, runlog, nil, logging.NewNop())

	questions := []core.Question{
		{ID: 0, Text: "q", ImagePath: "/missing/fig.jpg", CorrectAnswer: "a"},
		{ID: 1, Text: "q", ImagePath: writeTestImage(t, 150), CorrectAnswer: "a"},
	}
	_, err := runner.Run(context.Background(), questions, Options{ResumeFrom: -1})
	require.NoError(t, err)

	// Skipped question never enters the log or the statistics.
	require.Len(t, runlog.results, 1)
	assert.Equal(t, 1, runlog.results[0].Question.ID)
	assert.Equal(t, 1, agg.TotalQuestions())
}

func TestRunAbortsOnCancelledContext(t *testing.T) {
	advisors := advisorBackends(&fakeBackend{name: "claude", response: "a"})
	decision := &fakeBackend{name: "gemini", response: "a"}

	p := newTestProcessor(t, advisors, decision, 0)
	runner := NewRunner(p, stats.New(names(advisors)), &memRunLog{}, nil, logging.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	questions := []core.Question{{ID: 0, Text: "q", ImagePath: writeTestImage(t, 100), CorrectAnswer: "a"}}
	dir, err := runner.Run(ctx, questions, Options{ResumeFrom: -1})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, "testrun", dir, "run directory surfaces even on abort")
}

func TestRunResumeReprocessesNothingCommitted(t *testing.T) {
	advisors := advisorBackends(&fakeBackend{name: "claude", response: `{"Respuesta": "a"}`})
	decision := &fakeBackend{name: "gemini", response: `{"Respuesta": "a"}`}

	p := newTestProcessor(t, advisors, decision, 0)
	agg := stats.New(names(advisors))
	runlog := &memRunLog{}
	runner := NewRunner(p, agg, runlog, nil, logging.NewNop())

	img := writeTestImage(t, 120)
	questions := []core.Question{
		{ID: 0, Text: "q0", ImagePath: img, CorrectAnswer: "a"},
		{ID: 1, Text: "q1", ImagePath: img, CorrectAnswer: "a"},
		{ID: 2, Text: "q2", ImagePath: img, CorrectAnswer: "a"},
	}
	_, err := runner.Run(context.Background(), questions, Options{ResumeFrom: 2})
	require.NoError(t, err)

	require.Len(t, runlog.results, 1)
	assert.Equal(t, 2, runlog.results[0].Question.ID)
}

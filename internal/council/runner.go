package council

import (
	"context"
	"errors"
	"fmt"

	"medcouncil/internal/core"
	"medcouncil/internal/logging"
	"medcouncil/internal/stats"
)

// RunLog persists the run's result stream and final statistics.
type RunLog interface {
	Append(res core.Result) error
	WriteSnapshot(snap stats.Snapshot) error
	Dir() string
}

// Reporter renders reports from the final aggregator state into the run
// directory.
type Reporter interface {
	Render(dir string, agg *stats.Aggregator) error
}

// Options configures one run.
type Options struct {
	// TestMode surfaces an immediate per-question summary via OnResult.
	TestMode bool

	// SampleSize truncates the question sequence to its first N entries
	// before resume filtering. <= 0 processes everything.
	SampleSize int

	// ResumeFrom keeps only questions with ID >= ResumeFrom. Resume is
	// idempotent on identity, not position: re-running with the same value
	// reprocesses no already-committed question as long as the caller
	// supplies the id after the last completed one. < 0 disables.
	ResumeFrom int

	// OnResult, when set, receives each result immediately after it is
	// recorded. Used for the test-mode operator summary.
	OnResult func(res core.Result)
}

// Runner drives the question sequence through the processor, one question
// at a time. Concurrency exists only inside a question's advisor fan-out,
// never across questions.
type Runner struct {
	processor *Processor
	agg       *stats.Aggregator
	runlog    RunLog
	reporter  Reporter
	logger    *logging.Logger
}

// NewRunner assembles a run controller. reporter may be nil.
func NewRunner(processor *Processor, agg *stats.Aggregator, runlog RunLog, reporter Reporter, logger *logging.Logger) *Runner {
	return &Runner{
		processor: processor,
		agg:       agg,
		runlog:    runlog,
		reporter:  reporter,
		logger:    logger,
	}
}

// Run processes the selected question subsequence sequentially and renders
// the final reports. It returns the run directory even on a mid-run abort
// so the operator can resume from it. Skipped questions are logged and
// excluded from statistics; only a cancelled context or a persistence
// failure stops the loop.
func (r *Runner) Run(ctx context.Context, questions []core.Question, opts Options) (string, error) {
	selected := Select(questions, opts.SampleSize, opts.ResumeFrom)
	r.logger.Info("run started",
		"questions", len(selected),
		"advisors", len(r.processor.fanout.advisors),
		"test_mode", opts.TestMode,
	)

	skipped := 0
	for _, q := range selected {
		res, err := r.processor.Process(ctx, q)
		if err != nil {
			var skip *SkipError
			if errors.As(err, &skip) {
				skipped++
				r.logger.WithQuestion(q.ID).Warn("question skipped", "reason", skip.Reason)
				continue
			}
			return r.runlog.Dir(), err
		}

		r.agg.Record(*res)
		if err := r.runlog.Append(*res); err != nil {
			return r.runlog.Dir(), fmt.Errorf("appending result %d: %w", q.ID, err)
		}

		r.logger.WithQuestion(q.ID).Info("question processed",
			"answer", res.Decision.ParsedAnswer,
			"correct", res.Decision.IsCorrect,
			"elapsed", res.Elapsed,
		)
		if opts.OnResult != nil {
			opts.OnResult(*res)
		}
	}

	if err := r.runlog.WriteSnapshot(r.agg.Snapshot()); err != nil {
		return r.runlog.Dir(), fmt.Errorf("writing statistics snapshot: %w", err)
	}
	if r.reporter != nil {
		if err := r.reporter.Render(r.runlog.Dir(), r.agg); err != nil {
			return r.runlog.Dir(), fmt.Errorf("rendering reports: %w", err)
		}
	}

	r.logger.Info("run finished",
		"processed", r.agg.TotalQuestions(),
		"skipped", skipped,
		"accuracy", fmt.Sprintf("%.1f%%", r.agg.GlobalAccuracy()),
	)

	return r.runlog.Dir(), nil
}

// Select applies the sampling and resume policies: index-based truncation
// to the first sampleSize questions, then the identity filter keeping
// IDs >= resumeFrom. Sampling always happens before resume filtering.
func Select(questions []core.Question, sampleSize, resumeFrom int) []core.Question {
	qs := questions
	if sampleSize > 0 && sampleSize < len(qs) {
		qs = qs[:sampleSize]
	}
	if resumeFrom < 0 {
		return qs
	}
	out := make([]core.Question, 0, len(qs))
	for _, q := range qs {
		if q.ID >= resumeFrom {
			out = append(out, q)
		}
	}
	return out
}

// Package council implements the answer-aggregation pipeline: the advisor
// fan-out, the decision arbiter, the per-question processor, and the run
// controller that drives them.
package council

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"medcouncil/internal/core"
	"medcouncil/internal/extract"
	"medcouncil/internal/logging"
	"medcouncil/internal/prompt"
)

// FanOut queries every advisor concurrently for one question and collects
// the replies behind a join barrier: the call returns only when every
// advisor has answered or failed. No advisor is retried and none is ever
// dropped from the reply map.
type FanOut struct {
	advisors  map[string]core.Backend
	prompts   *prompt.Manager
	extractor *extract.Extractor
	logger    *logging.Logger
}

// NewFanOut creates a fan-out over the configured advisor set.
func NewFanOut(advisors map[string]core.Backend, prompts *prompt.Manager, extractor *extract.Extractor, logger *logging.Logger) *FanOut {
	return &FanOut{
		advisors:  advisors,
		prompts:   prompts,
		extractor: extractor,
		logger:    logger,
	}
}

// Query sends the question to all advisors in parallel. Backend failures
// are converted into failed replies at the call site; they never abort the
// sibling calls. The returned map's key set always equals the configured
// advisor set.
func (f *FanOut) Query(ctx context.Context, img core.Image, questionText string) map[string]core.AdvisorReply {
	replies := make(map[string]core.AdvisorReply, len(f.advisors))
	var mu sync.Mutex

	advisorPrompt := f.prompts.AdvisorPrompt(questionText)

	g, gctx := errgroup.WithContext(ctx)
	for name, backend := range f.advisors {
		g.Go(func() error {
			reply := f.query(gctx, backend, img, advisorPrompt)
			mu.Lock()
			replies[name] = reply
			mu.Unlock()
			return nil
		})
	}
	// Join barrier. Goroutines never return errors; failures live in the
	// replies themselves.
	_ = g.Wait()

	return replies
}

func (f *FanOut) query(ctx context.Context, backend core.Backend, img core.Image, advisorPrompt string) core.AdvisorReply {
	start := time.Now()
	text, err := backend.Send(ctx, img, advisorPrompt)
	elapsed := time.Since(start)

	if err != nil {
		f.logger.WithModel(backend.Name()).Warn("advisor call failed",
			"elapsed", elapsed,
			"error", err,
		)
		return core.AdvisorReply{
			RawText: "Error: " + err.Error(),
			Elapsed: elapsed,
			Failed:  true,
		}
	}

	answer, justification := f.extractor.Extract(text)
	return core.AdvisorReply{
		RawText:       text,
		ParsedAnswer:  answer,
		Justification: justification,
		Elapsed:       elapsed,
	}
}

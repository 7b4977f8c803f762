package council

import (
	"context"
	"fmt"
	"time"

	"medcouncil/internal/core"
	"medcouncil/internal/dataset"
	"medcouncil/internal/logging"
)

// SkipError reports that a question was skipped before any backend call,
// with the reason surfaced to the operator. Skipped questions never enter
// the statistics.
type SkipError struct {
	Reason string
}

func (e *SkipError) Error() string {
	return fmt.Sprintf("question skipped: %s", e.Reason)
}

// Processor runs the full pipeline for one question: precondition checks,
// advisor fan-out, decision arbitration, result assembly.
type Processor struct {
	fanout        *FanOut
	arbiter       *Arbiter
	maxImageBytes int64
	logger        *logging.Logger
}

// NewProcessor creates a question processor. maxImageBytes <= 0 disables
// the size precondition.
func NewProcessor(fanout *FanOut, arbiter *Arbiter, maxImageBytes int64, logger *logging.Logger) *Processor {
	return &Processor{
		fanout:        fanout,
		arbiter:       arbiter,
		maxImageBytes: maxImageBytes,
		logger:        logger,
	}
}

// Process validates the question's image, fans the question out to every
// advisor, then runs the arbiter over the collected replies. Backend
// failures inside either stage never propagate: they are captured in the
// affected reply or decision and the question still yields a Result. A
// *SkipError is returned when the image precondition fails; a cancelled
// context returns ctx.Err().
func (p *Processor) Process(ctx context.Context, q core.Question) (*core.Result, error) {
	if ok, reason := dataset.ValidateImage(q.ImagePath, p.maxImageBytes); !ok {
		return nil, &SkipError{Reason: reason}
	}

	img, err := dataset.LoadImage(q.ImagePath)
	if err != nil {
		return nil, &SkipError{Reason: err.Error()}
	}

	log := p.logger.WithQuestion(q.ID)
	log.Info("processing question",
		"image", q.ImagePath,
		"categories", q.Category1+"/"+q.Category2,
	)

	start := time.Now()
	replies := p.fanout.Query(ctx, img, q.Text)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	decision := p.arbiter.Decide(ctx, img, q, replies)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return &core.Result{
		Question: q,
		Advisors: replies,
		Decision: decision,
		Elapsed:  time.Since(start),
	}, nil
}

package council

import (
	"context"
	"strings"
	"time"

	"medcouncil/internal/core"
	"medcouncil/internal/extract"
	"medcouncil/internal/logging"
	"medcouncil/internal/prompt"
)

// Arbiter asks the decision backend to arbitrate among the advisor replies
// and produce the final answer. One call, no retry; a backend failure is
// captured in the decision record.
type Arbiter struct {
	backend   core.Backend
	prompts   *prompt.Manager
	extractor *extract.Extractor
	logger    *logging.Logger
}

// NewArbiter creates an arbiter over the decision backend.
func NewArbiter(backend core.Backend, prompts *prompt.Manager, extractor *extract.Extractor, logger *logging.Logger) *Arbiter {
	return &Arbiter{
		backend:   backend,
		prompts:   prompts,
		extractor: extractor,
		logger:    logger,
	}
}

// Decide builds the synthesis prompt from the question and every advisor
// reply (failed advisors appear as a fixed placeholder, never omitted, in
// stable order) and issues one decision call.
func (a *Arbiter) Decide(ctx context.Context, img core.Image, q core.Question, replies map[string]core.AdvisorReply) core.Decision {
	decisionPrompt := a.prompts.DecisionPrompt(q.Text, replies)

	start := time.Now()
	text, err := a.backend.Send(ctx, img, decisionPrompt)
	elapsed := time.Since(start)

	var dec core.Decision
	if err != nil {
		a.logger.WithModel(a.backend.Name()).Warn("decision call failed",
			"elapsed", elapsed,
			"error", err,
		)
		dec.AdvisorReply = core.AdvisorReply{
			RawText: "Error: " + err.Error(),
			Elapsed: elapsed,
			Failed:  true,
		}
	} else {
		answer, justification := a.extractor.Extract(text)
		dec.AdvisorReply = core.AdvisorReply{
			RawText:       text,
			ParsedAnswer:  answer,
			Justification: justification,
			Elapsed:       elapsed,
		}
	}

	// Empty-vs-non-empty mismatches count as incorrect by construction.
	dec.IsCorrect = dec.ParsedAnswer != "" && q.CorrectAnswer != "" &&
		strings.EqualFold(dec.ParsedAnswer, q.CorrectAnswer)

	return dec
}

// Package stats accumulates run-wide statistics: global and per-model
// accuracy, consensus buckets, per-category breakdowns, and the
// hardest-questions ranking.
//
// The aggregator is owned by the run controller and mutated from its single
// goroutine only, after the fan-out join barrier, so it carries no locking.
package stats

import (
	"sort"
	"strings"
	"time"

	"medcouncil/internal/core"
)

// DecisionKey is the synthetic per-model entry for the decision backend.
const DecisionKey = "decision"

// Bucket classifies a question by advisor agreement.
type Bucket string

const (
	BucketFull    Bucket = "full_agreement"
	BucketPartial Bucket = "partial_agreement"
	BucketNone    Bucket = "no_agreement"
)

// ModelStats tracks one model's running tallies.
type ModelStats struct {
	Correct int           `json:"correct"`
	Total   int           `json:"total"`
	Time    time.Duration `json:"time"`
}

// Accuracy returns the model's accuracy percentage, 0 when empty.
func (m ModelStats) Accuracy() float64 {
	if m.Total == 0 {
		return 0
	}
	return float64(m.Correct) / float64(m.Total) * 100
}

// AvgTime returns the mean per-question time, 0 when empty.
func (m ModelStats) AvgTime() time.Duration {
	if m.Total == 0 {
		return 0
	}
	return m.Time / time.Duration(m.Total)
}

// BucketStats tracks one consensus bucket.
type BucketStats struct {
	Count   int `json:"count"`
	Correct int `json:"correct"`
}

// Accuracy returns the decision accuracy within the bucket, 0 when empty.
func (b BucketStats) Accuracy() float64 {
	if b.Count == 0 {
		return 0
	}
	return float64(b.Correct) / float64(b.Count) * 100
}

// DifficultQuestion is one entry of the hardest-questions ranking.
type DifficultQuestion struct {
	QuestionID    int `json:"question_id"`
	CorrectModels int `json:"correct_models"`
	TotalModels   int `json:"total_models"` // advisors + decision
}

// CategoryStats is the per-(category_1, category_2) breakdown.
type CategoryStats struct {
	Category1 string  `json:"categoria_1"`
	Category2 string  `json:"categoria_2"`
	Total     int     `json:"total"`
	Correct   int     `json:"correct"`
	Accuracy  float64 `json:"accuracy"`
}

// Aggregator accumulates statistics for one run. Created empty at run
// start, mutated exactly once per completed result, read-only afterwards.
type Aggregator struct {
	advisorNames []string // sorted, fixed at construction
	start        time.Time
	results      []core.Result

	totalQuestions int
	correctAnswers int
	perModel       map[string]*ModelStats
	consensus      map[Bucket]*BucketStats
}

// New creates an empty aggregator for the given advisor set.
func New(advisorNames []string) *Aggregator {
	names := make([]string, len(advisorNames))
	copy(names, advisorNames)
	sort.Strings(names)

	return &Aggregator{
		advisorNames: names,
		start:        time.Now(),
		perModel:     make(map[string]*ModelStats),
		consensus: map[Bucket]*BucketStats{
			BucketFull:    {},
			BucketPartial: {},
			BucketNone:    {},
		},
	}
}

// Record folds one completed result into the running statistics.
func (a *Aggregator) Record(res core.Result) {
	a.results = append(a.results, res)
	a.totalQuestions++
	if res.Decision.IsCorrect {
		a.correctAnswers++
	}

	for name, reply := range res.Advisors {
		ms := a.model(name)
		ms.Total++
		if reply.Correct(res.Question.CorrectAnswer) {
			ms.Correct++
		}
		ms.Time += reply.Elapsed
	}

	ds := a.model(DecisionKey)
	ds.Total++
	if res.Decision.IsCorrect {
		ds.Correct++
	}
	ds.Time += res.Decision.Elapsed

	bs := a.consensus[a.ConsensusBucket(res)]
	bs.Count++
	if res.Decision.IsCorrect {
		bs.Correct++
	}
}

// ConsensusBucket classifies a result by how many advisors agreed on the
// same answer, the decision excluded. The modal answer is found iterating
// advisors in sorted-name order, so frequency ties break deterministically
// on first-seen order.
func (a *Aggregator) ConsensusBucket(res core.Result) Bucket {
	counts := make(map[string]int, len(a.advisorNames))
	maxCount := 0
	n := 0
	for _, name := range a.advisorNames {
		reply, ok := res.Advisors[name]
		if !ok {
			continue
		}
		n++
		key := strings.ToLower(reply.ParsedAnswer)
		counts[key]++
		if counts[key] > maxCount {
			maxCount = counts[key]
		}
	}

	switch {
	case maxCount <= 1:
		return BucketNone
	case maxCount == n:
		return BucketFull
	default:
		return BucketPartial
	}
}

// TotalQuestions returns the number of recorded results.
func (a *Aggregator) TotalQuestions() int { return a.totalQuestions }

// CorrectAnswers returns the number of correct decisions.
func (a *Aggregator) CorrectAnswers() int { return a.correctAnswers }

// GlobalAccuracy returns the decision accuracy percentage, 0 when empty.
func (a *Aggregator) GlobalAccuracy() float64 {
	if a.totalQuestions == 0 {
		return 0
	}
	return float64(a.correctAnswers) / float64(a.totalQuestions) * 100
}

// Elapsed returns the wall time since the aggregator was created.
func (a *Aggregator) Elapsed() time.Duration { return time.Since(a.start) }

// AdvisorNames returns the advisor set in sorted order.
func (a *Aggregator) AdvisorNames() []string {
	names := make([]string, len(a.advisorNames))
	copy(names, a.advisorNames)
	return names
}

// PerModel returns a copy of every model's tallies, the synthetic decision
// entry included.
func (a *Aggregator) PerModel() map[string]ModelStats {
	out := make(map[string]ModelStats, len(a.perModel))
	for name, ms := range a.perModel {
		out[name] = *ms
	}
	return out
}

// Consensus returns a copy of the per-bucket tallies.
func (a *Aggregator) Consensus() map[Bucket]BucketStats {
	out := make(map[Bucket]BucketStats, len(a.consensus))
	for b, bs := range a.consensus {
		out[b] = *bs
	}
	return out
}

// DifficultQuestions ranks recorded questions ascending by how many models
// answered correctly (most difficult first) and returns the first limit.
// Equal difficulty keeps the original recording order.
func (a *Aggregator) DifficultQuestions(limit int) []DifficultQuestion {
	ranked := make([]DifficultQuestion, 0, len(a.results))
	for _, res := range a.results {
		ranked = append(ranked, DifficultQuestion{
			QuestionID:    res.Question.ID,
			CorrectModels: res.CorrectModels(),
			TotalModels:   len(res.Advisors) + 1,
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].CorrectModels < ranked[j].CorrectModels
	})

	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// CategoryBreakdown groups recorded results by (category_1, category_2) and
// computes count and decision accuracy per group, sorted by category names.
func (a *Aggregator) CategoryBreakdown() []CategoryStats {
	type key struct{ c1, c2 string }
	groups := make(map[key]*CategoryStats)
	for _, res := range a.results {
		k := key{res.Question.Category1, res.Question.Category2}
		cs, ok := groups[k]
		if !ok {
			cs = &CategoryStats{Category1: k.c1, Category2: k.c2}
			groups[k] = cs
		}
		cs.Total++
		if res.Decision.IsCorrect {
			cs.Correct++
		}
	}

	out := make([]CategoryStats, 0, len(groups))
	for _, cs := range groups {
		if cs.Total > 0 {
			cs.Accuracy = float64(cs.Correct) / float64(cs.Total) * 100
		}
		out = append(out, *cs)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Category1 != out[j].Category1 {
			return out[i].Category1 < out[j].Category1
		}
		return out[i].Category2 < out[j].Category2
	})
	return out
}

func (a *Aggregator) model(name string) *ModelStats {
	ms, ok := a.perModel[name]
	if !ok {
		ms = &ModelStats{}
		a.perModel[name] = ms
	}
	return ms
}

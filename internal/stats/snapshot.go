package stats

import (
	"time"
)

// ModelSnapshot is the JSON-ready form of one model's tallies.
type ModelSnapshot struct {
	Correct  int     `json:"correct"`
	Total    int     `json:"total"`
	Accuracy float64 `json:"accuracy"`
	TimeSec  float64 `json:"time_seconds"`
	AvgSec   float64 `json:"avg_time_seconds"`
}

// BucketSnapshot is the JSON-ready form of one consensus bucket.
type BucketSnapshot struct {
	Count    int     `json:"count"`
	Correct  int     `json:"correct"`
	Accuracy float64 `json:"accuracy"`
}

// Snapshot is the final statistics state persisted at run end.
type Snapshot struct {
	StartTime          time.Time                 `json:"start_time"`
	EndTime            time.Time                 `json:"end_time"`
	TotalQuestions     int                       `json:"total_questions"`
	CorrectAnswers     int                       `json:"correct_answers"`
	GlobalAccuracy     float64                   `json:"global_accuracy"`
	Models             map[string]ModelSnapshot  `json:"model_stats"`
	Consensus          map[string]BucketSnapshot `json:"consensus"`
	Categories         []CategoryStats           `json:"categories"`
	DifficultQuestions []DifficultQuestion       `json:"difficult_questions"`
}

// DifficultLimit caps the hardest-questions ranking in reports.
const DifficultLimit = 10

// Snapshot renders the aggregator's current state for persistence.
func (a *Aggregator) Snapshot() Snapshot {
	models := make(map[string]ModelSnapshot, len(a.perModel))
	for name, ms := range a.perModel {
		models[name] = ModelSnapshot{
			Correct:  ms.Correct,
			Total:    ms.Total,
			Accuracy: ms.Accuracy(),
			TimeSec:  ms.Time.Seconds(),
			AvgSec:   ms.AvgTime().Seconds(),
		}
	}

	consensus := make(map[string]BucketSnapshot, len(a.consensus))
	for bucket, bs := range a.consensus {
		consensus[string(bucket)] = BucketSnapshot{
			Count:    bs.Count,
			Correct:  bs.Correct,
			Accuracy: bs.Accuracy(),
		}
	}

	return Snapshot{
		StartTime:          a.start,
		EndTime:            time.Now(),
		TotalQuestions:     a.totalQuestions,
		CorrectAnswers:     a.correctAnswers,
		GlobalAccuracy:     a.GlobalAccuracy(),
		Models:             models,
		Consensus:          consensus,
		Categories:         a.CategoryBreakdown(),
		DifficultQuestions: a.DifficultQuestions(DifficultLimit),
	}
}

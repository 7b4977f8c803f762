package core

import (
	"strings"
	"time"
)

// Alphabet is the set of valid multiple-choice answers. Parsed answers
// outside this set are treated as unparsed (empty).
const Alphabet = "abcd"

// ValidAnswer reports whether s is a single letter of the canonical alphabet,
// case-insensitively.
func ValidAnswer(s string) bool {
	if len(s) != 1 {
		return false
	}
	return strings.ContainsRune(Alphabet, rune(strings.ToLower(s)[0]))
}

// Question is one multiple-choice question from the dataset. The ID is the
// stable identity used for resume filtering and never changes across runs.
type Question struct {
	ID            int    `json:"question_id"`
	Text          string `json:"question_text"`
	ImagePath     string `json:"image_path"`
	CorrectAnswer string `json:"correct_answer"`
	Category1     string `json:"category_1"`
	Category2     string `json:"category_2"`
}

// AdvisorReply is the normalized outcome of one advisor call for one
// question. Immutable after creation.
type AdvisorReply struct {
	RawText       string        `json:"raw_response"`
	ParsedAnswer  string        `json:"parsed_answer"`
	Justification string        `json:"reasoning,omitempty"`
	Elapsed       time.Duration `json:"processing_time"`
	Failed        bool          `json:"failed,omitempty"`
}

// Correct reports whether the reply's parsed answer matches the expected
// answer, case-insensitively. Empty parsed answers never match.
func (r AdvisorReply) Correct(expected string) bool {
	if r.ParsedAnswer == "" || expected == "" {
		return false
	}
	return strings.EqualFold(r.ParsedAnswer, expected)
}

// Decision is the arbiter's verdict for a question.
type Decision struct {
	AdvisorReply
	IsCorrect bool `json:"is_correct"`
}

// Result aggregates everything produced for one question: the question
// itself, one reply per configured advisor (the key set is always the full
// advisor set, individual entries may be failed), the decision, and the
// total wall time across both stages.
type Result struct {
	Question Question                `json:"question"`
	Advisors map[string]AdvisorReply `json:"advisors"`
	Decision Decision                `json:"decision"`
	Elapsed  time.Duration           `json:"total_time"`
}

// CorrectModels counts how many models got the question right: advisors
// whose parsed answer matches the correct answer, plus one if the decision
// was correct. Used for difficulty ranking.
func (r Result) CorrectModels() int {
	n := 0
	for _, reply := range r.Advisors {
		if reply.Correct(r.Question.CorrectAnswer) {
			n++
		}
	}
	if r.Decision.IsCorrect {
		n++
	}
	return n
}

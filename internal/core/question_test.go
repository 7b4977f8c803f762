package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestValidAnswer(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"a", true},
		{"d", true},
		{"B", true},
		{"e", false},
		{"", false},
		{"ab", false},
		{"1", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ValidAnswer(tt.in), "ValidAnswer(%q)", tt.in)
	}
}

func TestAdvisorReplyCorrect(t *testing.T) {
	tests := []struct {
		name     string
		parsed   string
		expected string
		want     bool
	}{
		{"exact match", "a", "a", true},
		{"case insensitive", "C", "c", true},
		{"mismatch", "b", "a", false},
		{"empty parsed never matches", "", "a", false},
		{"empty expected never matches", "a", "", false},
		{"both empty never match", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := AdvisorReply{ParsedAnswer: tt.parsed}
			assert.Equal(t, tt.want, r.Correct(tt.expected))
		})
	}
}

func TestResultCorrectModels(t *testing.T) {
	res := Result{
		Question: Question{ID: 1, CorrectAnswer: "a"},
		Advisors: map[string]AdvisorReply{
			"claude":   {ParsedAnswer: "a", Elapsed: time.Second},
			"grok":     {ParsedAnswer: "b", Elapsed: time.Second},
			"deepseek": {ParsedAnswer: "a", Elapsed: time.Second},
		},
		Decision: Decision{
			AdvisorReply: AdvisorReply{ParsedAnswer: "a"},
			IsCorrect:    true,
		},
	}

	// Two advisors plus the decision; the dissenting advisor does not count.
	assert.Equal(t, 3, res.CorrectModels())
}

func TestDomainErrorFatality(t *testing.T) {
	assert.True(t, IsFatal(ErrValidation("BAD_CONFIG", "missing dataset path")))
	assert.True(t, IsFatal(ErrAuth("NO_KEY", "ANTHROPIC_API_KEY not set")))
	assert.False(t, IsFatal(ErrNetwork("connection refused")))
	assert.False(t, IsFatal(ErrExecution("PROVIDER", "rate limited")))
	assert.False(t, IsFatal(assert.AnError))
}

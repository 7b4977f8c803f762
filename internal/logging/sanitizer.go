package logging

import (
	"regexp"
)

// Sanitizer redacts provider credentials from log output. Backend error
// payloads sometimes echo the request headers, so raw error text cannot be
// trusted in logs.
type Sanitizer struct {
	patterns []*regexp.Regexp
	redacted string
}

// NewSanitizer creates a sanitizer with the default credential patterns.
func NewSanitizer() *Sanitizer {
	return &Sanitizer{
		patterns: defaultPatterns(),
		redacted: "[REDACTED]",
	}
}

func defaultPatterns() []*regexp.Regexp {
	patterns := []string{
		// Anthropic (before the generic OpenAI prefix, which would match its head)
		`sk-ant-[a-zA-Z0-9-]{40,}`,
		// OpenAI / DeepSeek
		`sk-[A-Za-z0-9]{20,}`,
		// x.ai
		`xai-[A-Za-z0-9]{20,}`,
		// OpenRouter
		`sk-or-[A-Za-z0-9-]{20,}`,
		// Google AI
		`AIza[a-zA-Z0-9_-]{35}`,
		// Generic Bearer tokens
		`(?i)bearer\s+[a-zA-Z0-9._-]{20,}`,
		// Generic API keys
		`(?i)api[_-]?key["'\s:=]+[a-zA-Z0-9_-]{20,}`,
	}

	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		compiled = append(compiled, regexp.MustCompile(p))
	}
	return compiled
}

// Sanitize replaces any credential-shaped substring with a redaction marker.
func (s *Sanitizer) Sanitize(input string) string {
	out := input
	for _, re := range s.patterns {
		out = re.ReplaceAllString(out, s.redacted)
	}
	return out
}

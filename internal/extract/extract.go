// Package extract normalizes free-text or JSON-shaped model replies into a
// canonical multiple-choice letter plus optional justification text.
//
// The precedence chain is deliberate and must not regress: structured data
// wins over pattern search wins over character scan, because models embed
// extraneous letters in reasoning prose that must not be mistaken for the
// answer.
package extract

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"medcouncil/internal/core"
)

// Rules holds the accepted key synonyms and text patterns. They are
// configuration data, not code: new locales or phrasings are added here
// without touching the extraction algorithm. Defaults mix the Spanish and
// English phrasings the models actually produce.
type Rules struct {
	AnswerKeys           []string `mapstructure:"answer_keys" yaml:"answer_keys"`
	JustificationKeys    []string `mapstructure:"justification_keys" yaml:"justification_keys"`
	Patterns             []string `mapstructure:"patterns" yaml:"patterns"`
	JustificationPattern string   `mapstructure:"justification_pattern" yaml:"justification_pattern"`
	ErrorPrefix          string   `mapstructure:"error_prefix" yaml:"error_prefix"`
}

// DefaultRules returns the built-in synonym and pattern lists. Order matters:
// the first matching key or pattern wins.
func DefaultRules() Rules {
	return Rules{
		AnswerKeys:        []string{"respuesta", "answer", "opcion", "option", "alternativa"},
		JustificationKeys: []string{"justificacion", "justification", "reasoning"},
		Patterns: []string{
			`(?:respuesta|answer):\s*["']?([a-d])["']?`,
			`(?:opci[oó]n|option):\s*["']?([a-d])["']?`,
			`(?:alternativa|alternative):\s*["']?([a-d])["']?`,
			`["'](?:respuesta|answer)["']:\s*["']([a-d])["']`,
			`["'](?:opci[oó]n|option)["']:\s*["']([a-d])["']`,
			`(?:la respuesta correcta es|the correct answer is)\s+["']?([a-d])["']?`,
			`(?:elijo|opto por|i choose)\s+["']?([a-d])["']?`,
		},
		JustificationPattern: `(?:justificaci[oó]n|justification|reasoning):\s*["']?(.*?)["']?(?:\}|\n|$)`,
		ErrorPrefix:          "Error:",
	}
}

// Extractor parses model replies according to a fixed rule set. It is a pure
// function holder: Extract has no hidden state and is safe for concurrent
// use.
type Extractor struct {
	rules    Rules
	patterns []*regexp.Regexp
	justRe   *regexp.Regexp
}

// New compiles the rule set into an extractor.
func New(rules Rules) (*Extractor, error) {
	e := &Extractor{rules: rules}
	for _, p := range rules.Patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("compiling answer pattern %q: %w", p, err)
		}
		e.patterns = append(e.patterns, re)
	}
	if rules.JustificationPattern != "" {
		re, err := regexp.Compile(rules.JustificationPattern)
		if err != nil {
			return nil, fmt.Errorf("compiling justification pattern: %w", err)
		}
		e.justRe = re
	}
	return e, nil
}

// MustNew compiles the rule set and panics on invalid patterns. Intended for
// the built-in defaults, which are covered by tests.
func MustNew(rules Rules) *Extractor {
	e, err := New(rules)
	if err != nil {
		panic(err)
	}
	return e
}

// Extract parses a raw model reply into (answer, justification). The answer
// is a lowercased letter of the canonical alphabet or "" when nothing
// usable was found. Precedence: error short-circuit, code-fence strip,
// structured JSON keys, text patterns, first-letter scan.
func (e *Extractor) Extract(raw string) (answer, justification string) {
	if raw == "" || strings.HasPrefix(raw, e.rules.ErrorPrefix) {
		return "", ""
	}

	clean := stripFences(raw)

	if ans, just, ok := e.extractStructured(clean); ok {
		return ans, just
	}

	if ans, just, ok := e.extractPatterns(raw); ok {
		return ans, just
	}

	return e.scanFirstLetter(raw), ""
}

// extractStructured attempts a JSON object parse and scans its keys against
// the synonym lists in priority order.
func (e *Extractor) extractStructured(text string) (answer, justification string, ok bool) {
	var data map[string]any
	if err := json.Unmarshal([]byte(text), &data); err != nil {
		return "", "", false
	}

	rawAnswer, found := lookupSynonym(data, e.rules.AnswerKeys)
	if found {
		if j, ok := lookupSynonym(data, e.rules.JustificationKeys); ok {
			justification = j
		}
		rawAnswer = strings.ToLower(strings.TrimSpace(rawAnswer))
		if core.ValidAnswer(rawAnswer) {
			return rawAnswer, justification, true
		}
		if len(rawAnswer) > 1 && core.ValidAnswer(rawAnswer[:1]) {
			return rawAnswer[:1], justification, true
		}
		// The value itself is prose; fall back to pattern search inside it.
		if ans, _, ok := e.extractPatterns(rawAnswer); ok {
			return ans, justification, true
		}
		if ans := e.scanFirstLetter(rawAnswer); ans != "" {
			return ans, justification, true
		}
	}
	return "", "", false
}

// extractPatterns runs the ordered pattern list against the lowercased text.
func (e *Extractor) extractPatterns(text string) (answer, justification string, ok bool) {
	lower := strings.ToLower(text)
	for _, re := range e.patterns {
		m := re.FindStringSubmatch(lower)
		if m == nil {
			continue
		}
		if e.justRe != nil {
			if jm := e.justRe.FindStringSubmatch(lower); jm != nil {
				justification = strings.TrimSpace(jm[1])
			}
		}
		return m[1], justification, true
	}
	return "", "", false
}

// scanFirstLetter returns the first character of the lowercased text that
// belongs to the canonical alphabet.
func (e *Extractor) scanFirstLetter(text string) string {
	for _, r := range strings.ToLower(text) {
		if strings.ContainsRune(core.Alphabet, r) {
			return string(r)
		}
	}
	return ""
}

// lookupSynonym finds the first synonym present as a key of data,
// case-insensitively, and returns its value rendered as a string.
func lookupSynonym(data map[string]any, synonyms []string) (string, bool) {
	for _, syn := range synonyms {
		for k, v := range data {
			if !strings.EqualFold(k, syn) {
				continue
			}
			switch val := v.(type) {
			case string:
				return val, true
			case fmt.Stringer:
				return val.String(), true
			default:
				b, err := json.Marshal(val)
				if err != nil {
					return "", false
				}
				return string(b), true
			}
		}
	}
	return "", false
}

// stripFences removes a surrounding markdown code fence, with or without a
// language tag, so fenced JSON payloads parse cleanly.
func stripFences(text string) string {
	s := strings.TrimSpace(text)
	if !strings.Contains(s, "```") {
		return s
	}
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}

package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newExtractor(t *testing.T) *Extractor {
	t.Helper()
	e, err := New(DefaultRules())
	require.NoError(t, err)
	return e
}

func TestExtractStructured(t *testing.T) {
	e := newExtractor(t)

	tests := []struct {
		name     string
		raw      string
		wantAns  string
		wantJust string
	}{
		{
			name:     "spanish keys",
			raw:      `{"Respuesta": "a", "Justificacion": "vena umbilical obliterada"}`,
			wantAns:  "a",
			wantJust: "vena umbilical obliterada",
		},
		{
			name:    "english keys",
			raw:     `{"answer": "b", "reasoning": "clear hepatic margin"}`,
			wantAns: "b",
		},
		{
			name:    "uppercase value",
			raw:     `{"Respuesta": "C"}`,
			wantAns: "c",
		},
		{
			name:    "mixed-case key",
			raw:     `{"ANSWER": "d"}`,
			wantAns: "d",
		},
		{
			name:    "option synonym",
			raw:     `{"opcion": "b"}`,
			wantAns: "b",
		},
		{
			name:    "long value truncated to leading letter",
			raw:     `{"respuesta": "a) vena umbilical"}`,
			wantAns: "a",
		},
		{
			name:    "fenced json with language tag",
			raw:     "```json\n{\"Respuesta\": \"d\"}\n```",
			wantAns: "d",
		},
		{
			name:    "fenced json without language tag",
			raw:     "```\n{\"answer\": \"a\"}\n```",
			wantAns: "a",
		},
		{
			name:    "prose value with embedded choice phrase",
			raw:     `{"respuesta": "creo que la respuesta correcta es b"}`,
			wantAns: "b",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ans, just := e.Extract(tt.raw)
			assert.Equal(t, tt.wantAns, ans)
			if tt.wantJust != "" {
				assert.Equal(t, tt.wantJust, just)
			}
		})
	}
}

func TestExtractStructuredPrecedenceOverProse(t *testing.T) {
	e := newExtractor(t)

	// A stray letter in surrounding prose must not beat the structured
	// field once the fences are stripped.
	raw := "```json\n{\"comment\": \"between b and a it must be...\", \"answer\": \"a\"}\n```"
	ans, _ := e.Extract(raw)
	assert.Equal(t, "a", ans)
}

func TestExtractPatterns(t *testing.T) {
	e := newExtractor(t)

	tests := []struct {
		name    string
		raw     string
		wantAns string
	}{
		{"respuesta colon", "Tras analizar la imagen, Respuesta: b", "b"},
		{"answer colon quoted", `answer: "c"`, "c"},
		{"option colon", "Option: d", "d"},
		{"correct answer phrase", "The correct answer is a", "a"},
		{"spanish choice phrase", "Por lo tanto elijo c", "c"},
		{"quoted key outside json", `texto previo "respuesta": "d" texto posterior`, "d"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ans, _ := e.Extract(tt.raw)
			assert.Equal(t, tt.wantAns, ans)
		})
	}
}

func TestExtractPatternJustification(t *testing.T) {
	e := newExtractor(t)

	ans, just := e.Extract("Respuesta: a\nJustificacion: la estructura es la vena umbilical")
	assert.Equal(t, "a", ans)
	assert.Equal(t, "la estructura es la vena umbilical", just)
}

func TestExtractFallbackScan(t *testing.T) {
	e := newExtractor(t)

	// No structure, no pattern phrasing: first alphabet letter wins.
	ans, just := e.Extract("xyz d xyz")
	assert.Equal(t, "d", ans)
	assert.Empty(t, just)
}

func TestExtractEmptyAndErrors(t *testing.T) {
	e := newExtractor(t)

	for _, raw := range []string{"", "Error: timeout", "Error: connection refused"} {
		ans, just := e.Extract(raw)
		assert.Empty(t, ans, "raw=%q", raw)
		assert.Empty(t, just, "raw=%q", raw)
	}
}

func TestExtractNothingUsable(t *testing.T) {
	e := newExtractor(t)

	ans, just := e.Extract("zzz 123 !!!")
	assert.Empty(t, ans)
	assert.Empty(t, just)
}

func TestExtractIdempotent(t *testing.T) {
	e := newExtractor(t)

	raw := `{"Respuesta": "a", "Justificacion": "x"}`
	a1, j1 := e.Extract(raw)
	a2, j2 := e.Extract(raw)
	assert.Equal(t, a1, a2)
	assert.Equal(t, j1, j2)
}

func TestExtractInvalidStructuredValueFallsThrough(t *testing.T) {
	e := newExtractor(t)

	// "z" is not a valid choice, so the structured result is discarded and
	// the chain continues down to the character scan over the raw text,
	// which picks up the first alphabet letter it sees.
	ans, _ := e.Extract(`{"respuesta": "z"}`)
	assert.Equal(t, "a", ans)
}

func TestNewRejectsBadPattern(t *testing.T) {
	rules := DefaultRules()
	rules.Patterns = []string{"(["}
	_, err := New(rules)
	assert.Error(t, err)
}

// Package prompt renders the advisor and decision prompts from templates.
// Templates use simple {slot} substitution; the decision template embeds
// every advisor's raw reply in a stable, name-sorted order so the decision
// model always sees the advisors in the same positions.
package prompt

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"medcouncil/internal/core"
)

// FailedReplyPlaceholder stands in for a missing or failed advisor reply in
// the decision prompt. Advisors are never omitted from the prompt; positional
// identity must be stable across calls.
const FailedReplyPlaceholder = "Error al obtener respuesta"

// Templates holds the raw template strings. Loadable from the config file or
// from a standalone YAML file.
type Templates struct {
	Advisor  string `mapstructure:"advisor_template" yaml:"advisor_template"`
	Decision string `mapstructure:"decision_template" yaml:"decision_template"`
}

// DefaultTemplates returns the built-in bilingual prompts used when the
// config provides none.
func DefaultTemplates() Templates {
	return Templates{
		Advisor: `Eres un experto en imagenes medicas. Analiza la imagen y responde la siguiente pregunta de opcion multiple.

Pregunta: {question}

Responde unicamente en formato JSON con las claves "Respuesta" (una sola letra: a, b, c o d) y "Justificacion".`,
		Decision: `Eres el medico decisor de un consejo de expertos. Varios consejeros han analizado la imagen y respondido la pregunta. Revisa la imagen, la pregunta y las opiniones, y emite la respuesta final.

Pregunta: {question}

Opiniones de los consejeros:
{advisor_responses}

Responde unicamente en formato JSON con las claves "Respuesta" (una sola letra: a, b, c o d) y "Justificacion".`,
	}
}

// LoadTemplatesFile reads templates from a YAML file with the keys
// advisor_template and decision_template.
func LoadTemplatesFile(path string) (Templates, error) {
	var tpl Templates
	data, err := os.ReadFile(path)
	if err != nil {
		return tpl, fmt.Errorf("reading prompt file: %w", err)
	}
	if err := yaml.Unmarshal(data, &tpl); err != nil {
		return tpl, fmt.Errorf("parsing prompt file %s: %w", path, err)
	}
	return tpl, nil
}

// Manager renders prompts for a fixed advisor set.
type Manager struct {
	templates    Templates
	advisorNames []string // sorted once at construction
}

// NewManager validates the templates against the advisor set and returns a
// renderer. The decision template must reference the question and either the
// {advisor_responses} block or one {<name>_response} slot per advisor.
func NewManager(tpl Templates, advisorNames []string) (*Manager, error) {
	if strings.TrimSpace(tpl.Advisor) == "" || strings.TrimSpace(tpl.Decision) == "" {
		return nil, core.ErrValidation("EMPTY_TEMPLATE", "advisor and decision templates are required")
	}
	if !strings.Contains(tpl.Advisor, "{question}") {
		return nil, core.ErrValidation("MISSING_SLOT", "advisor template is missing the {question} slot")
	}
	if !strings.Contains(tpl.Decision, "{question}") {
		return nil, core.ErrValidation("MISSING_SLOT", "decision template is missing the {question} slot")
	}
	if !strings.Contains(tpl.Decision, "{advisor_responses}") && !hasPerAdvisorSlots(tpl.Decision, advisorNames) {
		return nil, core.ErrValidation("MISSING_SLOT",
			"decision template needs {advisor_responses} or one {<name>_response} slot per advisor")
	}

	names := make([]string, len(advisorNames))
	copy(names, advisorNames)
	sort.Strings(names)

	return &Manager{templates: tpl, advisorNames: names}, nil
}

// AdvisorNames returns the advisor names in the stable order used for
// rendering.
func (m *Manager) AdvisorNames() []string {
	names := make([]string, len(m.advisorNames))
	copy(names, m.advisorNames)
	return names
}

// AdvisorPrompt renders the prompt sent to every advisor.
func (m *Manager) AdvisorPrompt(question string) string {
	return strings.ReplaceAll(m.templates.Advisor, "{question}", question)
}

// DecisionPrompt renders the synthesis prompt. Every configured advisor
// appears exactly once, in sorted-name order; failed or missing replies are
// represented by the fixed placeholder, never omitted.
func (m *Manager) DecisionPrompt(question string, replies map[string]core.AdvisorReply) string {
	prompt := strings.ReplaceAll(m.templates.Decision, "{question}", question)

	if strings.Contains(prompt, "{advisor_responses}") {
		var b strings.Builder
		for i, name := range m.advisorNames {
			if i > 0 {
				b.WriteString("\n\n")
			}
			fmt.Fprintf(&b, "### %s\n%s", name, m.replyText(replies, name))
		}
		prompt = strings.ReplaceAll(prompt, "{advisor_responses}", b.String())
	}

	for _, name := range m.advisorNames {
		slot := "{" + name + "_response}"
		if strings.Contains(prompt, slot) {
			prompt = strings.ReplaceAll(prompt, slot, m.replyText(replies, name))
		}
	}

	return prompt
}

func (m *Manager) replyText(replies map[string]core.AdvisorReply, name string) string {
	reply, ok := replies[name]
	if !ok || reply.Failed || strings.TrimSpace(reply.RawText) == "" {
		return FailedReplyPlaceholder
	}
	return reply.RawText
}

func hasPerAdvisorSlots(tpl string, names []string) bool {
	if len(names) == 0 {
		return false
	}
	for _, name := range names {
		if !strings.Contains(tpl, "{"+name+"_response}") {
			return false
		}
	}
	return true
}

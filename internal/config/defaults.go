package config

// DefaultConfigYAML is the annotated starter configuration written by
// `medcouncil init`. Values omitted from the file keep their built-in
// defaults.
const DefaultConfigYAML = `# MedCouncil configuration
#
# API keys are read from the environment, never from this file:
#   ANTHROPIC_API_KEY, OPENAI_API_KEY, XAI_API_KEY, DEEPSEEK_API_KEY,
#   OPENROUTER_API_KEY, GEMINI_API_KEY

log:
  level: info     # debug, info, warn, error
  format: auto    # auto, json, pretty

dataset:
  path: data/preguntas.xlsx
  image_base_dir: data
  # max_image_bytes: 4718592

models:
  advisors:
    claude:
      provider: anthropic
      model: claude-sonnet-4-20250514
      temperature: 0.0
      max_tokens: 1000
    grok:
      provider: grok
      model: grok-2-vision-1212
      temperature: 0.0
      max_tokens: 1000
    openai:
      provider: openai
      model: gpt-4o
      temperature: 0.0
      max_tokens: 1000
  decision:
    provider: gemini
    model: gemini-2.0-flash
    temperature: 0.0
    max_tokens: 1000

# prompts:
#   file: prompts.yaml          # overrides the inline templates
#   advisor_template: |
#     ...must contain {question}
#   decision_template: |
#     ...must contain {question} and {advisor_responses}

run:
  log_dir: logs
  save_raw: true
`

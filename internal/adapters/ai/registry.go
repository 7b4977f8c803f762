// Package ai provides multimodal model provider adapters behind the
// core.Backend port. Providers are selected once at configuration time; the
// pipeline never branches on provider identity.
package ai

import (
	"fmt"
	"os"
	"sync"

	"medcouncil/internal/core"
)

// BackendConfig configures a single named backend.
type BackendConfig struct {
	Name        string  // configured name, e.g. "claude"
	Provider    string  // provider identifier, e.g. "anthropic"
	Model       string  // provider model id
	Temperature float32 // 0.0 - 1.0
	MaxTokens   int
	BaseURL     string // optional override for OpenAI-compatible providers
	APIKey      string // resolved from env when empty
}

// BackendFactory creates a backend from configuration.
type BackendFactory func(cfg BackendConfig) (core.Backend, error)

// Registry manages available backend factories and configured instances.
type Registry struct {
	factories map[string]BackendFactory
	backends  map[string]core.Backend
	configs   map[string]BackendConfig
	mu        sync.RWMutex
}

// NewRegistry creates a registry with the built-in provider factories.
func NewRegistry() *Registry {
	r := &Registry{
		factories: make(map[string]BackendFactory),
		backends:  make(map[string]core.Backend),
		configs:   make(map[string]BackendConfig),
	}
	r.registerBuiltins()
	return r
}

func (r *Registry) registerBuiltins() {
	r.RegisterFactory("anthropic", NewAnthropicBackend)
	r.RegisterFactory("gemini", NewGeminiBackend)
	r.RegisterFactory("openai", NewOpenAIBackend)
	r.RegisterFactory("grok", NewGrokBackend)
	r.RegisterFactory("deepseek", NewDeepSeekBackend)
	r.RegisterFactory("openrouter", NewOpenRouterBackend)
}

// RegisterFactory registers a factory for a provider.
func (r *Registry) RegisterFactory(provider string, factory BackendFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[provider] = factory
}

// Register adds a pre-built backend directly, bypassing factories. Used by
// tests to inject fakes.
func (r *Registry) Register(name string, backend core.Backend) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.backends[name] = backend
}

// Configure sets the configuration for a named backend. Any cached instance
// is discarded so the next Get rebuilds it.
func (r *Registry) Configure(cfg BackendConfig) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.configs[cfg.Name] = cfg
	delete(r.backends, cfg.Name)
}

// Get returns the backend with the given configured name, building it on
// first use.
func (r *Registry) Get(name string) (core.Backend, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if b, ok := r.backends[name]; ok {
		return b, nil
	}

	cfg, ok := r.configs[name]
	if !ok {
		return nil, core.ErrNotFound("backend", name)
	}

	factory, ok := r.factories[cfg.Provider]
	if !ok {
		return nil, core.ErrValidation("UNKNOWN_PROVIDER",
			fmt.Sprintf("backend %q references unknown provider %q", name, cfg.Provider))
	}

	b, err := factory(cfg)
	if err != nil {
		return nil, fmt.Errorf("creating backend %s: %w", name, err)
	}

	r.backends[name] = b
	return b, nil
}

// List returns the names of all configured or registered backends.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]bool, len(r.configs)+len(r.backends))
	names := make([]string, 0, len(r.configs)+len(r.backends))
	for name := range r.configs {
		seen[name] = true
		names = append(names, name)
	}
	for name := range r.backends {
		if !seen[name] {
			names = append(names, name)
		}
	}
	return names
}

// Providers returns the registered provider identifiers.
func (r *Registry) Providers() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	providers := make([]string, 0, len(r.factories))
	for p := range r.factories {
		providers = append(providers, p)
	}
	return providers
}

// EnvKeyFor maps a provider to the environment variable holding its API key.
func EnvKeyFor(provider string) string {
	switch provider {
	case "anthropic":
		return "ANTHROPIC_API_KEY"
	case "openai":
		return "OPENAI_API_KEY"
	case "grok":
		return "XAI_API_KEY"
	case "deepseek":
		return "DEEPSEEK_API_KEY"
	case "openrouter":
		return "OPENROUTER_API_KEY"
	case "gemini":
		return "GEMINI_API_KEY"
	default:
		return ""
	}
}

// resolveAPIKey returns the configured key or falls back to the provider's
// environment variable. A missing key is a fatal configuration error raised
// before any question is processed.
func resolveAPIKey(cfg BackendConfig) (string, error) {
	if cfg.APIKey != "" {
		return cfg.APIKey, nil
	}
	envKey := EnvKeyFor(cfg.Provider)
	if envKey == "" {
		return "", core.ErrValidation("UNKNOWN_PROVIDER",
			fmt.Sprintf("no API key source for provider %q", cfg.Provider))
	}
	if key := os.Getenv(envKey); key != "" {
		return key, nil
	}
	return "", core.ErrAuth("MISSING_API_KEY",
		fmt.Sprintf("%s is not set (required by backend %q)", envKey, cfg.Name))
}

func defaultMaxTokens(n int) int {
	if n <= 0 {
		return 1000
	}
	return n
}

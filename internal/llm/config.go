package llm

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Provider names.
const (
	ProviderGemini     = "gemini"
	ProviderOpenAI     = "openai"
	ProviderAnthropic  = "anthropic"
	ProviderOpenRouter = "openrouter"
	ProviderMock       = "mock"
)

// Config holds all LLM provider configuration.
type Config struct {
	// Chain is the ordered provider list tried in auto mode.
	Chain []string `yaml:"chain"`

	Anthropic  AnthropicConfig  `yaml:"anthropic"`
	OpenAI     OpenAIConfig     `yaml:"openai"`
	Gemini     GeminiConfig     `yaml:"gemini"`
	OpenRouter OpenRouterConfig `yaml:"openrouter"`
	Retry      RetryConfig      `yaml:"retry"`

	// Timeout bounds a single provider call including retries.
	Timeout time.Duration `yaml:"timeout"`
}

// AnthropicConfig holds Anthropic-specific configuration.
type AnthropicConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"` // Default: "claude-haiku"
}

// OpenAIConfig holds OpenAI-specific configuration.
type OpenAIConfig struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`    // Default: "gpt-4o-mini"
	BaseURL string `yaml:"base_url"` // Optional. OpenAI-compatible endpoints.
}

// GeminiConfig holds Gemini-specific configuration.
type GeminiConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"` // Default: "gemini-flash"
}

// OpenRouterConfig holds OpenRouter-specific configuration.
type OpenRouterConfig struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url"`
}

// RetryConfig configures retry behavior for transient failures.
type RetryConfig struct {
	MaxAttempts int           `yaml:"max_attempts"`
	InitialWait time.Duration `yaml:"initial_wait"`
	MaxWait     time.Duration `yaml:"max_wait"`
	Multiplier  float64       `yaml:"multiplier"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Chain: []string{ProviderGemini, ProviderOpenRouter, ProviderOpenAI, ProviderAnthropic},
		Anthropic: AnthropicConfig{
			Model: "claude-haiku",
		},
		OpenAI: OpenAIConfig{
			Model: "gpt-4o-mini",
		},
		Gemini: GeminiConfig{
			Model: "gemini-flash",
		},
		OpenRouter: OpenRouterConfig{
			Model: "google/gemini-2.0-flash-exp",
		},
		Retry: RetryConfig{
			MaxAttempts: 2,
			InitialWait: 1 * time.Second,
			MaxWait:     8 * time.Second,
			Multiplier:  2.0,
		},
		Timeout: 90 * time.Second,
	}
}

// ApplyEnv overlays environment variables onto cfg. QUIZPREP_* names win
// over the vendors' standard key variables.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("QUIZPREP_LLM_CHAIN"); v != "" {
		c.Chain = splitList(v)
	}

	c.Gemini.APIKey = firstEnv(c.Gemini.APIKey, "QUIZPREP_GEMINI_API_KEY", "GEMINI_API_KEY")
	c.Gemini.Model = firstEnv(c.Gemini.Model, "QUIZPREP_GEMINI_MODEL")

	c.OpenAI.APIKey = firstEnv(c.OpenAI.APIKey, "QUIZPREP_OPENAI_API_KEY", "OPENAI_API_KEY")
	c.OpenAI.Model = firstEnv(c.OpenAI.Model, "QUIZPREP_OPENAI_MODEL")
	c.OpenAI.BaseURL = firstEnv(c.OpenAI.BaseURL, "QUIZPREP_OPENAI_BASE_URL")

	c.Anthropic.APIKey = firstEnv(c.Anthropic.APIKey, "QUIZPREP_ANTHROPIC_API_KEY", "ANTHROPIC_API_KEY")
	c.Anthropic.Model = firstEnv(c.Anthropic.Model, "QUIZPREP_ANTHROPIC_MODEL")

	c.OpenRouter.APIKey = firstEnv(c.OpenRouter.APIKey, "QUIZPREP_OPENROUTER_API_KEY", "OPENROUTER_API_KEY")
	c.OpenRouter.Model = firstEnv(c.OpenRouter.Model, "QUIZPREP_OPENROUTER_MODEL")
}

// ConfigFromEnv builds a Config from defaults plus environment variables.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	cfg.ApplyEnv()
	return cfg
}

// firstEnv returns the first non-empty env var among names, or fallback.
func firstEnv(fallback string, names ...string) string {
	for _, n := range names {
		if v := os.Getenv(n); v != "" {
			return v
		}
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// APIKey returns the configured key for the named provider.
func (c Config) APIKey(name string) string {
	switch name {
	case ProviderAnthropic:
		return c.Anthropic.APIKey
	case ProviderOpenAI:
		return c.OpenAI.APIKey
	case ProviderGemini:
		return c.Gemini.APIKey
	case ProviderOpenRouter:
		return c.OpenRouter.APIKey
	}
	return ""
}

// WithAPIKey returns a copy of c with the named provider's key replaced.
// Used for caller-supplied credentials.
func (c Config) WithAPIKey(name, key string) Config {
	switch name {
	case ProviderAnthropic:
		c.Anthropic.APIKey = key
	case ProviderOpenAI:
		c.OpenAI.APIKey = key
	case ProviderGemini:
		c.Gemini.APIKey = key
	case ProviderOpenRouter:
		c.OpenRouter.APIKey = key
	}
	return c
}

// Validate checks that the chain names known providers and that retry
// settings are usable. Missing keys are not an error: providers without a
// key are skipped when the chain is built.
func (c Config) Validate() error {
	if len(c.Chain) == 0 {
		return fmt.Errorf("llm.chain must list at least one provider")
	}
	for _, name := range c.Chain {
		if !KnownProvider(name) {
			return fmt.Errorf("unknown LLM provider: %q", name)
		}
	}
	if c.Retry.MaxAttempts < 1 {
		return fmt.Errorf("llm.retry.max_attempts must be at least 1")
	}
	return nil
}

// KnownProvider reports whether name is a supported provider.
func KnownProvider(name string) bool {
	switch name {
	case ProviderAnthropic, ProviderOpenAI, ProviderGemini, ProviderOpenRouter, ProviderMock:
		return true
	}
	return false
}

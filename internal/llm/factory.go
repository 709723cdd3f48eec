package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/abhisek/quizprep/internal/store"
)

// NewProvider creates the named provider from configuration, wrapped with
// retry and logging middleware. eventRepo may be nil to skip event logging.
func NewProvider(ctx context.Context, name string, cfg Config, eventRepo store.EventRepo) (Provider, error) {
	var base Provider
	var err error

	switch name {
	case ProviderAnthropic:
		base, err = NewAnthropicProvider(cfg.Anthropic)
	case ProviderOpenAI:
		base, err = NewOpenAIProvider(cfg.OpenAI)
	case ProviderGemini:
		base, err = NewGeminiProvider(ctx, cfg.Gemini)
	case ProviderOpenRouter:
		base, err = NewOpenRouterProvider(cfg.OpenRouter)
	case ProviderMock:
		return NewMockProvider(), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", name)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", name, err)
	}

	// caller → retry → logging → base
	var p Provider = base
	if eventRepo != nil {
		p = WithLogging(p, eventRepo)
	}
	retry := &RetryProvider{inner: p, config: cfg.Retry, timeout: cfg.Timeout}
	if retry.config.MaxAttempts < 1 {
		retry.config.MaxAttempts = 1
	}
	return retry, nil
}

// NewChain builds every provider in cfg.Chain that has credentials, in order.
// Providers without a key are skipped; it is an error only if none remain.
func NewChain(ctx context.Context, cfg Config, eventRepo store.EventRepo) ([]Provider, error) {
	var out []Provider
	var skipped []string
	for _, name := range cfg.Chain {
		p, err := NewProvider(ctx, name, cfg, eventRepo)
		if errors.Is(err, ErrMissingAPIKey) {
			skipped = append(skipped, name)
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no LLM provider configured (missing keys for %v)", skipped)
	}
	return out, nil
}

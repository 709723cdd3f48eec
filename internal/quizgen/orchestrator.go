package quizgen

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"github.com/abhisek/quizprep/internal/llm"
	"github.com/abhisek/quizprep/internal/quiz"
	"github.com/abhisek/quizprep/internal/reconcile"
	"github.com/abhisek/quizprep/internal/store"
)

// ProviderAuto selects the fallback chain.
const ProviderAuto = "auto"

var (
	// ErrUnknownProvider is returned when a request names a provider that
	// does not exist.
	ErrUnknownProvider = errors.New("unknown provider")

	// ErrNoQuestions is returned when a provider answered with an empty
	// question list.
	ErrNoQuestions = errors.New("provider returned no questions")

	// ErrNoProviders is returned by auto mode when the chain is empty.
	ErrNoProviders = errors.New("no generation providers configured")
)

// ExhaustedError is returned when every provider of the chain failed.
type ExhaustedError struct {
	// Tried lists the providers in call order.
	Tried []string

	// Last is the failure of the final provider.
	Last error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("all providers failed (tried %s): %v", strings.Join(e.Tried, ", "), e.Last)
}

func (e *ExhaustedError) Unwrap() error { return e.Last }

// Request is one generation request.
type Request struct {
	Content string `json:"content"`

	// Provider is a provider name or "auto". Empty means auto.
	Provider string `json:"provider"`

	// APIKey is a caller-supplied credential for a specific provider.
	APIKey string `json:"apiKey,omitempty"`

	Count      int    `json:"count"`
	Difficulty string `json:"difficulty"`
}

// Result is a reconciled generation result.
type Result struct {
	Provider  string                   `json:"provider"`
	Questions []quiz.GeneratedQuestion `json:"questions"`
	Warnings  []reconcile.Warning      `json:"warnings"`
}

// Factory builds a one-off generator for the named provider using apiKey.
type Factory func(ctx context.Context, name, apiKey string) (Generator, error)

// Orchestrator runs generation requests against an ordered chain of
// generators. Calls are strictly sequential.
type Orchestrator struct {
	chain   []Generator
	factory Factory
	logger  *log.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithFactory enables caller-supplied API keys.
func WithFactory(f Factory) Option {
	return func(o *Orchestrator) { o.factory = f }
}

// WithLogger sets the logger for fallback messages.
func WithLogger(l *log.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

// NewOrchestrator creates an orchestrator over chain, tried in order.
func NewOrchestrator(chain []Generator, opts ...Option) *Orchestrator {
	o := &Orchestrator{chain: chain, logger: log.Default()}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Providers returns the chain's provider names in order.
func (o *Orchestrator) Providers() []string {
	names := make([]string, len(o.chain))
	for i, g := range o.chain {
		names[i] = g.Name()
	}
	return names
}

// Generate runs req. A specific provider is called once and its failure is
// returned as is. In auto mode each provider is tried in turn until one
// returns at least one question; if none does, the error is an
// *ExhaustedError.
func (o *Orchestrator) Generate(ctx context.Context, req Request) (*Result, error) {
	if llm.RequestIDFrom(ctx) == "" {
		ctx = llm.WithRequestID(ctx, uuid.NewString())
	}
	input := GenerateInput{
		Content:    req.Content,
		Count:      req.Count,
		Difficulty: req.Difficulty,
	}

	if req.Provider != "" && req.Provider != ProviderAuto {
		g, err := o.lookup(ctx, req.Provider, req.APIKey)
		if err != nil {
			return nil, err
		}
		qs, err := g.Generate(ctx, input)
		if err != nil {
			return nil, err
		}
		if len(qs) == 0 {
			return nil, fmt.Errorf("%s: %w", g.Name(), ErrNoQuestions)
		}
		return finish(g.Name(), qs, req.Count), nil
	}

	if len(o.chain) == 0 {
		return nil, ErrNoProviders
	}

	exhausted := &ExhaustedError{}
	for _, g := range o.chain {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		exhausted.Tried = append(exhausted.Tried, g.Name())

		qs, err := g.Generate(ctx, input)
		if err == nil && len(qs) > 0 {
			return finish(g.Name(), qs, req.Count), nil
		}
		if err == nil {
			err = fmt.Errorf("%s: %w", g.Name(), ErrNoQuestions)
		}
		exhausted.Last = err

		if llm.IsQuota(err) {
			o.logger.Printf("info: %s quota exhausted, trying next provider", g.Name())
		} else {
			o.logger.Printf("warning: %s failed, trying next provider: %v", g.Name(), err)
		}
	}
	return nil, exhausted
}

func (o *Orchestrator) lookup(ctx context.Context, name, apiKey string) (Generator, error) {
	if !llm.KnownProvider(name) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, name)
	}
	if apiKey != "" && o.factory != nil {
		return o.factory(ctx, name, apiKey)
	}
	for _, g := range o.chain {
		if g.Name() == name {
			return g, nil
		}
	}
	return nil, fmt.Errorf("provider %s is not configured: %w", name, llm.ErrMissingAPIKey)
}

// finish trims qs to count and reconciles every answer.
func finish(provider string, qs []quiz.GeneratedQuestion, count int) *Result {
	if count > 0 && len(qs) > count {
		qs = qs[:count]
	}
	res := &Result{
		Provider:  provider,
		Questions: make([]quiz.GeneratedQuestion, len(qs)),
		Warnings:  []reconcile.Warning{},
	}
	for i, q := range qs {
		fixed, w := reconcile.Reconcile(i, q)
		res.Questions[i] = fixed
		if w != nil {
			res.Warnings = append(res.Warnings, *w)
		}
	}
	return res
}

// NewLLMFactory returns a Factory that builds providers from cfg with the
// caller's key substituted.
func NewLLMFactory(cfg llm.Config, genCfg Config, eventRepo store.EventRepo) Factory {
	return func(ctx context.Context, name, apiKey string) (Generator, error) {
		p, err := llm.NewProvider(ctx, name, cfg.WithAPIKey(name, apiKey), eventRepo)
		if err != nil {
			return nil, err
		}
		return New(p, genCfg), nil
	}
}

// NewChain builds one LLMGenerator per configured provider of cfg.Chain.
func NewChain(ctx context.Context, cfg llm.Config, genCfg Config, eventRepo store.EventRepo) ([]Generator, error) {
	providers, err := llm.NewChain(ctx, cfg, eventRepo)
	if err != nil {
		return nil, err
	}
	out := make([]Generator, len(providers))
	for i, p := range providers {
		out[i] = New(p, genCfg)
	}
	return out, nil
}

package quizgen

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/abhisek/quizprep/internal/llm"
	"github.com/abhisek/quizprep/internal/quiz"
)

// Purpose is the event-log label of generation calls.
const Purpose = "quiz-gen"

// LLMGenerator implements Generator using an LLM provider.
type LLMGenerator struct {
	provider llm.Provider
	config   Config
}

// New creates a new LLMGenerator with the given provider and config.
func New(provider llm.Provider, cfg Config) *LLMGenerator {
	return &LLMGenerator{provider: provider, config: cfg}
}

// questionsOutput is the raw LLM response.
type questionsOutput struct {
	Questions []quiz.GeneratedQuestion `json:"questions"`
}

func (g *LLMGenerator) Name() string { return g.provider.Name() }

// Generate asks the provider for input.Count questions.
func (g *LLMGenerator) Generate(ctx context.Context, input GenerateInput) ([]quiz.GeneratedQuestion, error) {
	ctx = llm.WithPurpose(ctx, Purpose)

	req := llm.Request{
		System: systemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildUserMessage(input)},
		},
		Schema:      QuestionsSchema,
		MaxTokens:   g.config.MaxTokens,
		Temperature: g.config.Temperature,
	}

	resp, err := g.provider.Generate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%s generation failed: %w", g.Name(), err)
	}

	var raw questionsOutput
	if err := json.Unmarshal(resp.Content, &raw); err != nil {
		return nil, &llm.ErrInvalidResponse{
			Content: resp.Content,
			Err:     fmt.Errorf("failed to parse %s response: %w", g.Name(), err),
		}
	}

	return raw.Questions, nil
}

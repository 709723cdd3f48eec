// Package quizgen turns source text into multiple-choice questions through
// an ordered chain of generation providers.
package quizgen

import (
	"context"

	"github.com/abhisek/quizprep/internal/quiz"
)

// Generator produces questions from source text using one backend.
type Generator interface {
	// Name identifies the backend ("gemini", "openai", ...).
	Name() string

	// Generate returns the raw generated questions. Answers are not yet
	// reconciled against the options.
	Generate(ctx context.Context, input GenerateInput) ([]quiz.GeneratedQuestion, error)
}

// GenerateInput holds everything a Generator needs for one call.
type GenerateInput struct {
	// Content is the (already sampled) source text.
	Content string

	// Count is the number of questions requested.
	Count int

	// Difficulty is a free-form label ("easy", "medium", "hard").
	Difficulty string
}

package quizgen

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/abhisek/quizprep/internal/quiz"
	"github.com/abhisek/quizprep/internal/sampler"
)

// Pipeline samples the source text, generates questions and drops the ones
// that cannot be used.
type Pipeline struct {
	Sampler      *sampler.Sampler
	Orchestrator *Orchestrator

	// DropUnresolved removes questions whose answer matched no option.
	DropUnresolved bool

	Logger *log.Logger
}

// Run executes req end to end. Questions with fewer than two options or
// with no answer are always dropped.
func (p *Pipeline) Run(ctx context.Context, req Request) (*Result, error) {
	logger := p.Logger
	if logger == nil {
		logger = log.Default()
	}

	if strings.TrimSpace(req.Content) == "" {
		return nil, fmt.Errorf("source text is empty")
	}
	if p.Sampler != nil {
		req.Content = p.Sampler.Sample(req.Content)
	}

	res, err := p.Orchestrator.Generate(ctx, req)
	if err != nil {
		return nil, err
	}

	unresolved := make(map[int]bool, len(res.Warnings))
	for _, w := range res.Warnings {
		unresolved[w.Index] = true
	}

	kept := res.Questions[:0:0]
	for i, q := range res.Questions {
		switch {
		case strings.TrimSpace(q.Question) == "":
			logger.Printf("warning: dropping question %d: empty text", i+1)
		case len(q.Options) < 2:
			logger.Printf("warning: dropping question %d: %d options", i+1, len(q.Options))
		case strings.TrimSpace(q.Answer) == "":
			logger.Printf("warning: dropping question %d: no answer", i+1)
		case p.DropUnresolved && unresolved[i]:
			logger.Printf("warning: dropping question %d: answer %q matches no option", i+1, q.Answer)
		default:
			kept = append(kept, q)
		}
	}
	if len(kept) == 0 {
		return nil, fmt.Errorf("%s: no usable questions: %w", res.Provider, ErrNoQuestions)
	}
	res.Questions = kept
	return res, nil
}

// QuizQuestions converts a result to a validated question list.
func (r *Result) QuizQuestions() ([]quiz.Question, error) {
	qs := quiz.ToQuestions(r.Questions)
	if err := quiz.Validate(qs); err != nil {
		return nil, err
	}
	return qs, nil
}

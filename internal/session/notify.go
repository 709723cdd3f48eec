package session

import (
	"context"

	"github.com/abhisek/quizprep/internal/quiz"
	"github.com/abhisek/quizprep/internal/scoring"
)

// Submission is what a Notifier receives once per attempt.
type Submission struct {
	SessionID      string                          `json:"sessionId"`
	Category       string                          `json:"category"`
	UserAnswers    map[quiz.QuestionID]quiz.Answer `json:"userAnswers"`
	Score          float64                         `json:"score"`
	TotalQuestions int                             `json:"totalQuestions"`
	Nickname       string                          `json:"nickname,omitempty"`
}

// Notifier reports a submitted attempt to an external sink. Its failure
// never undoes the submission.
type Notifier interface {
	Notify(ctx context.Context, s Submission) error
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, s Submission) error

func (f NotifierFunc) Notify(ctx context.Context, s Submission) error { return f(ctx, s) }

// SubmissionOutcome is the result of Submit.
type SubmissionOutcome struct {
	// AlreadySubmitted is true when the attempt had been submitted before
	// this call; nothing was changed or reported.
	AlreadySubmitted bool

	// Report scores the answers as they stood at submission.
	Report scoring.Report

	// Answers is a copy of the submitted answers.
	Answers map[quiz.QuestionID]quiz.Answer

	// NotifyErr is the notifier's error, if any.
	NotifyErr error
}

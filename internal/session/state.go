// Package session runs one quiz attempt: navigation, answers, marks, the
// exam countdown and durable snapshots of all of it.
package session

import (
	"maps"
	"slices"

	"github.com/abhisek/quizprep/internal/quiz"
)

// Mode selects the mutation rules of an attempt.
type Mode string

const (
	// ModePractice keeps answers editable after submission and runs no timer.
	ModePractice Mode = "practice"

	// ModeExam runs a countdown and freezes answers on submission.
	ModeExam Mode = "exam"
)

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	return m == ModePractice || m == ModeExam
}

// State is the mutable part of an attempt.
type State struct {
	// CurrentIndex is the position in the question list.
	CurrentIndex int

	// Answers holds one answer per question id.
	Answers map[quiz.QuestionID]quiz.Answer

	// Marked is the set of questions flagged for review.
	Marked map[quiz.QuestionID]bool

	// TimeRemaining is the countdown in whole seconds. It only moves in
	// exam mode and never drops below zero.
	TimeRemaining int

	// Submitted is set once by Submit or by timer expiry.
	Submitted bool
}

// newState returns the initial state for an attempt.
func newState(fullTime int) State {
	return State{
		Answers:       make(map[quiz.QuestionID]quiz.Answer),
		Marked:        make(map[quiz.QuestionID]bool),
		TimeRemaining: fullTime,
	}
}

// Clone returns a deep copy of s.
func (s State) Clone() State {
	out := s
	out.Answers = make(map[quiz.QuestionID]quiz.Answer, len(s.Answers))
	for id, a := range s.Answers {
		out.Answers[id] = a.Clone()
	}
	out.Marked = maps.Clone(s.Marked)
	if out.Marked == nil {
		out.Marked = make(map[quiz.QuestionID]bool)
	}
	return out
}

// MarkedIDs returns the marked ids in sorted order.
func (s State) MarkedIDs() []quiz.QuestionID {
	ids := make([]quiz.QuestionID, 0, len(s.Marked))
	for id, on := range s.Marked {
		if on {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids
}

// snapshot is the persisted JSON form of a State.
type snapshot struct {
	CurrentQuestionIndex int                             `json:"currentQuestionIndex"`
	UserAnswers          map[quiz.QuestionID]quiz.Answer `json:"userAnswers"`
	MarkedQuestions      []quiz.QuestionID               `json:"markedQuestions"`
	TimeRemaining        int                             `json:"timeRemaining"`
	IsSubmitted          bool                            `json:"isSubmitted"`
}

func toSnapshot(s State) snapshot {
	answers := s.Answers
	if answers == nil {
		answers = map[quiz.QuestionID]quiz.Answer{}
	}
	return snapshot{
		CurrentQuestionIndex: s.CurrentIndex,
		UserAnswers:          answers,
		MarkedQuestions:      s.MarkedIDs(),
		TimeRemaining:        s.TimeRemaining,
		IsSubmitted:          s.Submitted,
	}
}

func (sn snapshot) state() State {
	st := State{
		CurrentIndex:  sn.CurrentQuestionIndex,
		Answers:       make(map[quiz.QuestionID]quiz.Answer, len(sn.UserAnswers)),
		Marked:        make(map[quiz.QuestionID]bool, len(sn.MarkedQuestions)),
		TimeRemaining: sn.TimeRemaining,
		Submitted:     sn.IsSubmitted,
	}
	for id, a := range sn.UserAnswers {
		if !a.IsZero() {
			st.Answers[id] = a
		}
	}
	for _, id := range sn.MarkedQuestions {
		st.Marked[id] = true
	}
	return st
}

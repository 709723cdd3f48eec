package scoring

import (
	"github.com/abhisek/quizprep/internal/quiz"
)

// DefaultPassThreshold is the passing percentage used when no
// configuration overrides it.
const DefaultPassThreshold = 70.0

// Rule decides whether a learner answer matches a question's canonical answer.
type Rule interface {
	Correct(q *quiz.Question, a quiz.Answer) bool
}

// RuleFunc adapts a function to Rule.
type RuleFunc func(q *quiz.Question, a quiz.Answer) bool

func (f RuleFunc) Correct(q *quiz.Question, a quiz.Answer) bool { return f(q, a) }

// rules routes each question type to its comparison. The same table serves
// live practice feedback and final exam scoring.
var rules = map[quiz.QuestionType]Rule{
	quiz.TypeMCQ:               RuleFunc(choiceRule),
	quiz.TypeMultiSelect:       RuleFunc(setRule),
	quiz.TypeDragDrop:          RuleFunc(dragDropRule),
	quiz.TypeHotspot:           RuleFunc(mapRule),
	quiz.TypeHotspotYesNoTable: RuleFunc(mapRule),
	quiz.TypeCaseTable:         RuleFunc(mapRule),
	quiz.TypeHotspotBoxMapping: RuleFunc(mapRule),
	quiz.TypeHotspotSentence:   RuleFunc(singleRule),
}

// IsCorrect reports whether a is the correct answer to q. Answers in the
// wrong union arm for the question type are incorrect, never an error.
func IsCorrect(q *quiz.Question, a quiz.Answer) bool {
	if a.IsZero() {
		return false
	}
	r, ok := rules[q.Type]
	if !ok {
		return false
	}
	return r.Correct(q, a)
}

// IsAttempted reports whether the learner set at least one non-empty field.
// A partially filled matching or table counts as attempted.
func IsAttempted(a quiz.Answer) bool {
	return !a.IsEmpty()
}

func choiceRule(q *quiz.Question, a quiz.Answer) bool {
	if q.Answer.Kind == quiz.KindMulti {
		return setRule(q, a)
	}
	return singleRule(q, a)
}

func singleRule(q *quiz.Question, a quiz.Answer) bool {
	canonical := q.Canonical()
	if a.Kind != quiz.KindSingle || canonical.Kind != quiz.KindSingle {
		return false
	}
	return a.Value == canonical.Value
}

// setRule compares as sets: same cardinality and every element present.
func setRule(q *quiz.Question, a quiz.Answer) bool {
	canonical := q.Canonical()
	if a.Kind != quiz.KindMulti || canonical.Kind != quiz.KindMulti {
		return false
	}
	want := toSet(canonical.Values)
	got := toSet(a.Values)
	if len(want) != len(got) {
		return false
	}
	for k := range want {
		if _, ok := got[k]; !ok {
			return false
		}
	}
	return true
}

func dragDropRule(q *quiz.Question, a quiz.Answer) bool {
	if q.IsMatching() {
		return mapRule(q, a)
	}
	return setRule(q, a)
}

// mapRule requires every canonical key to hold the canonical value in the
// learner's map. Missing keys are mismatches; extra keys are ignored.
func mapRule(q *quiz.Question, a quiz.Answer) bool {
	canonical := q.Canonical()
	if a.Kind != quiz.KindMap || canonical.Kind != quiz.KindMap || len(canonical.Entries) == 0 {
		return false
	}
	for k, want := range canonical.Entries {
		if got, ok := a.Entries[k]; !ok || got != want {
			return false
		}
	}
	return true
}

func toSet(arr []string) map[string]struct{} {
	m := make(map[string]struct{}, len(arr))
	for _, s := range arr {
		m[s] = struct{}{}
	}
	return m
}

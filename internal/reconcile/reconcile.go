// Package reconcile maps free-text answers from generation providers onto
// the exact option strings of a question.
package reconcile

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/abhisek/quizprep/internal/quiz"
)

// Tier identifies which matching rule resolved an answer.
type Tier int

const (
	TierNone Tier = iota
	TierExact
	TierCaseInsensitive
	TierNormalized
	TierSubstring
	TierNormalizedSubstring
	TierRescue
)

func (t Tier) String() string {
	switch t {
	case TierExact:
		return "exact"
	case TierCaseInsensitive:
		return "case-insensitive"
	case TierNormalized:
		return "normalized"
	case TierSubstring:
		return "substring"
	case TierNormalizedSubstring:
		return "normalized-substring"
	case TierRescue:
		return "rescue"
	default:
		return "none"
	}
}

// Normalize lowercases s and drops whitespace and every punctuation or
// symbol rune except '.', '%' and '-', so "720 kg" and "720kg" compare equal.
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		switch {
		case r == '.' || r == '%' || r == '-':
			b.WriteRune(r)
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		}
	}
	return b.String()
}

// FindMatch resolves answer to one of options, trying each tier in order
// and stopping at the first hit. Within a tier the first option wins.
func FindMatch(options []string, answer string) (string, Tier, bool) {
	if answer == "" || len(options) == 0 {
		return "", TierNone, false
	}

	for _, o := range options {
		if o == answer {
			return o, TierExact, true
		}
	}

	for _, o := range options {
		if strings.EqualFold(o, answer) {
			return o, TierCaseInsensitive, true
		}
	}

	normAnswer := Normalize(answer)
	normOptions := make([]string, len(options))
	for i, o := range options {
		normOptions[i] = Normalize(o)
	}

	if normAnswer != "" {
		for i, o := range options {
			if normOptions[i] == normAnswer {
				return o, TierNormalized, true
			}
		}
	}

	lowerAnswer := strings.ToLower(strings.TrimSpace(answer))
	if lowerAnswer != "" {
		for _, o := range options {
			lo := strings.ToLower(strings.TrimSpace(o))
			if lo == "" {
				continue
			}
			if strings.Contains(lowerAnswer, lo) || strings.Contains(lo, lowerAnswer) {
				return o, TierSubstring, true
			}
		}
	}

	if normAnswer != "" {
		for i, o := range options {
			no := normOptions[i]
			if no == "" {
				continue
			}
			if strings.Contains(normAnswer, no) || strings.Contains(no, normAnswer) {
				return o, TierNormalizedSubstring, true
			}
		}
	}

	return "", TierNone, false
}

// Rescue looks for exactly one option quoted verbatim in the explanation.
// Two or more candidates are ambiguous and yield no rescue.
func Rescue(options []string, explanation string) (string, bool) {
	if explanation == "" {
		return "", false
	}
	found := ""
	hits := 0
	for _, o := range options {
		if o == "" || !strings.Contains(explanation, o) {
			continue
		}
		if hits > 0 && o == found {
			continue
		}
		found = o
		hits++
	}
	if hits != 1 {
		return "", false
	}
	return found, true
}

// Resolve runs FindMatch and, when it fails, Rescue.
func Resolve(options []string, answer, explanation string) (string, Tier, bool) {
	if match, tier, ok := FindMatch(options, answer); ok {
		return match, tier, true
	}
	if match, ok := Rescue(options, explanation); ok {
		return match, TierRescue, true
	}
	return "", TierNone, false
}

// Warning records a question whose answer could not be resolved.
type Warning struct {
	Index    int    `json:"index"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Message  string `json:"message"`
}

func (w Warning) String() string {
	return fmt.Sprintf("question %d: %s (answer %q)", w.Index+1, w.Message, w.Answer)
}

// Reconcile rewrites q.Answer to the option it resolves to. An unresolved
// question is returned unchanged together with a warning; index is its
// position in the provider output.
func Reconcile(index int, q quiz.GeneratedQuestion) (quiz.GeneratedQuestion, *Warning) {
	match, tier, ok := Resolve(q.Options, q.Answer, q.Explanation)
	if !ok {
		msg := "answer matches no option"
		if strings.TrimSpace(q.Answer) == "" {
			msg = "answer is empty"
		}
		return q, &Warning{Index: index, Question: q.Question, Answer: q.Answer, Message: msg}
	}
	if tier != TierExact {
		q.Answer = match
	}
	return q, nil
}

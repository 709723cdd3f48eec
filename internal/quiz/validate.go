package quiz

import (
	"encoding/json"
	"fmt"
	"os"
	"slices"
)

// ValidationError describes why a question list cannot be used.
type ValidationError struct {
	QuestionID QuestionID
	Index      int
	Message    string
}

func (e *ValidationError) Error() string {
	if e.QuestionID == "" {
		return fmt.Sprintf("question #%d: %s", e.Index+1, e.Message)
	}
	return fmt.Sprintf("question %q: %s", e.QuestionID, e.Message)
}

// Validate checks that ids are present and unique and that every question
// carries the fields its type needs. The first problem found is returned.
func Validate(questions []Question) error {
	seen := make(map[QuestionID]bool, len(questions))
	for i := range questions {
		q := &questions[i]
		fail := func(format string, args ...any) error {
			return &ValidationError{QuestionID: q.ID, Index: i, Message: fmt.Sprintf(format, args...)}
		}

		if q.ID == "" {
			return fail("id is empty")
		}
		if seen[q.ID] {
			return fail("duplicate id")
		}
		seen[q.ID] = true

		if !slices.Contains(KnownTypes, q.Type) {
			return fail("unknown type %q", q.Type)
		}

		switch q.Type {
		case TypeMCQ, TypeMultiSelect, TypeHotspotSentence:
			if len(q.Options) < 2 {
				return fail("needs at least 2 options, got %d", len(q.Options))
			}
			if q.Answer.IsZero() {
				return fail("answer is missing")
			}
		case TypeDragDrop:
			if !q.IsMatching() && q.Answer.Kind != KindMulti {
				return fail("drag_drop needs answer_mapping or an answer list")
			}
		case TypeHotspot, TypeHotspotYesNoTable:
			if q.Answer.Kind != KindMap || len(q.Answer.Entries) == 0 {
				return fail("answer must map statements to Yes/No")
			}
			for stmt, v := range q.Answer.Entries {
				if v != Yes && v != No {
					return fail("statement %q has answer %q, want Yes or No", stmt, v)
				}
			}
		case TypeHotspotBoxMapping:
			if len(q.Boxes) == 0 {
				return fail("no boxes")
			}
			for _, b := range q.Boxes {
				if !slices.Contains(b.Options, b.Answer) {
					return fail("box %q answer %q is not one of its options", b.Label, b.Answer)
				}
			}
		case TypeCaseTable:
			if len(q.Rows) == 0 {
				return fail("no statements")
			}
			for _, r := range q.Rows {
				if r.Answer != Yes && r.Answer != No {
					return fail("statement %q has answer %q, want Yes or No", r.Text, r.Answer)
				}
			}
		}
	}
	return nil
}

// IDs returns the question ids in order.
func IDs(questions []Question) []QuestionID {
	out := make([]QuestionID, len(questions))
	for i, q := range questions {
		out[i] = q.ID
	}
	return out
}

// LoadFile reads and validates a JSON array of questions.
func LoadFile(path string) ([]Question, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read questions: %w", err)
	}
	var qs []Question
	if err := json.Unmarshal(data, &qs); err != nil {
		return nil, fmt.Errorf("parse questions: %w", err)
	}
	if err := Validate(qs); err != nil {
		return nil, err
	}
	return qs, nil
}

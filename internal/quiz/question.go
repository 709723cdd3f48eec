package quiz

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// QuestionType is the discriminator of the Question union.
type QuestionType string

const (
	TypeMCQ               QuestionType = "mcq"
	TypeMultiSelect       QuestionType = "multi-select"
	TypeDragDrop          QuestionType = "drag_drop"
	TypeHotspot           QuestionType = "hotspot"
	TypeHotspotYesNoTable QuestionType = "hotspot_yesno_table"
	TypeHotspotBoxMapping QuestionType = "hotspot_box_mapping"
	TypeCaseTable         QuestionType = "case_table"
	TypeHotspotSentence   QuestionType = "hotspot_sentence"
)

// KnownTypes lists every supported question type.
var KnownTypes = []QuestionType{
	TypeMCQ,
	TypeMultiSelect,
	TypeDragDrop,
	TypeHotspot,
	TypeHotspotYesNoTable,
	TypeHotspotBoxMapping,
	TypeCaseTable,
	TypeHotspotSentence,
}

// Yes and No are the only values accepted in yes/no tables.
const (
	Yes = "Yes"
	No  = "No"
)

// QuestionID identifies a question within one attempt. Banks use both
// strings and numbers for ids; numbers are kept in their decimal form.
type QuestionID string

func (id *QuestionID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = QuestionID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("question id must be a string or number: %w", err)
	}
	*id = QuestionID(n.String())
	return nil
}

// Question is one quiz item. Which fields are populated depends on Type.
type Question struct {
	ID          QuestionID   `json:"id"`
	Type        QuestionType `json:"type"`
	Question    string       `json:"question"`
	Explanation string       `json:"explanation,omitempty"`

	// Options feeds mcq, multi-select, drag_drop buckets and hotspot_sentence.
	Options []string `json:"options,omitempty"`

	// Answer is the canonical answer for option-based and yes/no types.
	Answer Answer `json:"answer,omitzero"`

	// Drag-drop matching.
	Zones         []string          `json:"zones,omitempty"`
	Items         []string          `json:"items,omitempty"`
	AnswerMapping map[string]string `json:"answer_mapping,omitempty"`

	// Statements feeds hotspot tables; Rows feeds case tables.
	Statements []string        `json:"statements,omitempty"`
	Scenario   string          `json:"scenario,omitempty"`
	Rows       []CaseStatement `json:"rows,omitempty"`

	// Boxes feeds hotspot_box_mapping.
	Boxes []Box `json:"boxes,omitempty"`

	// Sentence is the fill-in-the-blank text for hotspot_sentence.
	Sentence string `json:"sentence,omitempty"`
}

// CaseStatement is one Yes/No row of a case table.
type CaseStatement struct {
	Text   string `json:"text"`
	Answer string `json:"answer"`
}

// Box is one drop-down of a hotspot_box_mapping question.
type Box struct {
	Label   string   `json:"label"`
	Options []string `json:"options"`
	Answer  string   `json:"answer"`
}

// IsMatching reports whether a drag_drop question is a zone matching rather
// than a bucket selection.
func (q *Question) IsMatching() bool {
	return q.Type == TypeDragDrop && len(q.AnswerMapping) > 0
}

// Canonical returns the correct answer in the union arm the type dictates.
func (q *Question) Canonical() Answer {
	switch q.Type {
	case TypeDragDrop:
		if q.IsMatching() {
			return Map(q.AnswerMapping)
		}
		return q.Answer
	case TypeHotspotBoxMapping:
		m := make(map[string]string, len(q.Boxes))
		for _, b := range q.Boxes {
			m[b.Label] = b.Answer
		}
		return Map(m)
	case TypeCaseTable:
		m := make(map[string]string, len(q.Rows))
		for _, r := range q.Rows {
			m[r.Text] = r.Answer
		}
		return Map(m)
	default:
		return q.Answer
	}
}

// ExpectedKind returns the answer arm a learner answer must use.
func (q *Question) ExpectedKind() AnswerKind {
	switch q.Type {
	case TypeMultiSelect:
		return KindMulti
	case TypeMCQ:
		if q.Answer.Kind == KindMulti {
			return KindMulti
		}
		return KindSingle
	case TypeDragDrop:
		if q.IsMatching() {
			return KindMap
		}
		return KindMulti
	case TypeHotspot, TypeHotspotYesNoTable, TypeHotspotBoxMapping, TypeCaseTable:
		return KindMap
	default:
		return KindSingle
	}
}

// Summary returns a one-line label for listings.
func (q *Question) Summary() string {
	text := strings.Join(strings.Fields(q.Question), " ")
	if len(text) > 60 {
		text = text[:57] + "..."
	}
	return fmt.Sprintf("[%s] %s: %s", q.ID, q.Type, text)
}

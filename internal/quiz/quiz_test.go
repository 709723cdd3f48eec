package quiz

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnswerJSONShapes(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Answer
	}{
		{"single", `"Paris"`, Single("Paris")},
		{"multi", `["a","b"]`, Multi("a", "b")},
		{"map", `{"s1":"Yes","s2":"No"}`, Map(map[string]string{"s1": Yes, "s2": No})},
		{"number", `42`, Single("42")},
		{"null", `null`, Answer{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Answer
			require.NoError(t, json.Unmarshal([]byte(tt.in), &got))
			assert.True(t, tt.want.Equal(got), "got %+v", got)
		})
	}
}

func TestAnswerIsEmpty(t *testing.T) {
	assert.True(t, Answer{}.IsEmpty())
	assert.True(t, Single("  ").IsEmpty())
	assert.True(t, Multi().IsEmpty())
	assert.True(t, Map(map[string]string{"zone": ""}).IsEmpty())

	assert.False(t, Single("x").IsEmpty())
	assert.False(t, Multi("", "b").IsEmpty())
	assert.False(t, Map(map[string]string{"z1": "", "z2": "item"}).IsEmpty())
}

func TestQuestionIDAcceptsNumbers(t *testing.T) {
	var qs []Question
	data := `[{"id": 7, "type": "mcq", "question": "q", "options": ["a","b"], "answer": "a"},
	          {"id": "q8", "type": "mcq", "question": "q", "options": ["a","b"], "answer": "b"}]`
	require.NoError(t, json.Unmarshal([]byte(data), &qs))
	assert.Equal(t, []QuestionID{"7", "q8"}, IDs(qs))
	assert.NoError(t, Validate(qs))
}

func TestCanonicalPerType(t *testing.T) {
	matching := Question{
		ID:            "1",
		Type:          TypeDragDrop,
		AnswerMapping: map[string]string{"Zone A": "Item 1"},
	}
	assert.Equal(t, KindMap, matching.ExpectedKind())
	assert.Equal(t, "Item 1", matching.Canonical().Entries["Zone A"])

	bucket := Question{ID: "2", Type: TypeDragDrop, Answer: Multi("x", "y")}
	assert.Equal(t, KindMulti, bucket.ExpectedKind())

	boxes := Question{
		ID:   "3",
		Type: TypeHotspotBoxMapping,
		Boxes: []Box{
			{Label: "Box 1", Options: []string{"A", "B"}, Answer: "B"},
			{Label: "Box 2", Options: []string{"C", "D"}, Answer: "C"},
		},
	}
	assert.Equal(t, map[string]string{"Box 1": "B", "Box 2": "C"}, boxes.Canonical().Entries)

	table := Question{
		ID:   "4",
		Type: TypeCaseTable,
		Rows: []CaseStatement{{Text: "s1", Answer: Yes}, {Text: "s2", Answer: No}},
	}
	assert.Equal(t, map[string]string{"s1": Yes, "s2": No}, table.Canonical().Entries)
}

func TestValidateRejectsDuplicateIDs(t *testing.T) {
	qs := []Question{
		{ID: "1", Type: TypeMCQ, Options: []string{"a", "b"}, Answer: Single("a")},
		{ID: "1", Type: TypeMCQ, Options: []string{"a", "b"}, Answer: Single("b")},
	}
	err := Validate(qs)
	require.Error(t, err)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, 1, verr.Index)
}

func TestValidateYesNoValues(t *testing.T) {
	qs := []Question{{
		ID:     "1",
		Type:   TypeHotspot,
		Answer: Map(map[string]string{"s": "Maybe"}),
	}}
	assert.Error(t, Validate(qs))
}

func TestValidateBoxAnswerInOptions(t *testing.T) {
	qs := []Question{{
		ID:    "1",
		Type:  TypeHotspotBoxMapping,
		Boxes: []Box{{Label: "b", Options: []string{"x"}, Answer: "y"}},
	}}
	assert.Error(t, Validate(qs))
}

func TestToQuestions(t *testing.T) {
	qs := ToQuestions([]GeneratedQuestion{
		{Question: "Q1", Options: []string{"a", "b"}, Answer: "b", Explanation: "because"},
		{Question: "Q2", Options: []string{"c", "d"}},
	})

	require.Len(t, qs, 2)
	assert.Equal(t, QuestionID("1"), qs[0].ID)
	assert.Equal(t, TypeMCQ, qs[0].Type)
	assert.Equal(t, Single("b"), qs[0].Answer)
	assert.Equal(t, "because", qs[0].Explanation)

	assert.Equal(t, QuestionID("2"), qs[1].ID)
	assert.True(t, qs[1].Answer.IsZero())
}

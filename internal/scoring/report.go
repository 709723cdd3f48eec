package scoring

import (
	"math"

	"github.com/abhisek/quizprep/internal/quiz"
)

// Report is the aggregate result of one attempt.
type Report struct {
	Total      int     `json:"total"`
	Correct    int     `json:"correct"`
	Attempted  int     `json:"attempted"`
	Wrong      int     `json:"wrong"`
	Skipped    int     `json:"skipped"`
	Percentage float64 `json:"percentage"`
	Passed     bool    `json:"passed"`
	Threshold  float64 `json:"threshold"`

	// PerQuestion holds the outcome of every question in list order.
	PerQuestion []QuestionResult `json:"perQuestion,omitempty"`
}

// QuestionResult is the outcome of a single question.
type QuestionResult struct {
	ID        quiz.QuestionID `json:"id"`
	Attempted bool            `json:"attempted"`
	Correct   bool            `json:"correct"`
}

// Score grades answers against questions. Answers for ids not in the list
// are ignored. threshold is the passing percentage (0-100).
func Score(questions []quiz.Question, answers map[quiz.QuestionID]quiz.Answer, threshold float64) Report {
	r := Report{
		Total:       len(questions),
		Threshold:   threshold,
		PerQuestion: make([]QuestionResult, 0, len(questions)),
	}

	for i := range questions {
		q := &questions[i]
		res := QuestionResult{ID: q.ID}
		if a, ok := answers[q.ID]; ok && IsAttempted(a) {
			res.Attempted = true
			res.Correct = IsCorrect(q, a)
		}
		if res.Attempted {
			r.Attempted++
		}
		if res.Correct {
			r.Correct++
		}
		r.PerQuestion = append(r.PerQuestion, res)
	}

	r.Wrong = r.Attempted - r.Correct
	r.Skipped = r.Total - r.Attempted
	if r.Total > 0 {
		r.Percentage = math.Round(float64(r.Correct)/float64(r.Total)*10000) / 100
	}
	r.Passed = r.Total > 0 && r.Percentage >= threshold
	return r
}

package quiz

import "strconv"

// GeneratedQuestion is a multiple-choice item as returned by a generation
// backend, before it is trusted.
type GeneratedQuestion struct {
	Question    string   `json:"question"`
	Options     []string `json:"options"`
	Answer      string   `json:"answer"`
	Explanation string   `json:"explanation"`
}

// ToQuestions converts generated items to mcq questions with ids "1".."n".
func ToQuestions(items []GeneratedQuestion) []Question {
	out := make([]Question, len(items))
	for i, g := range items {
		out[i] = Question{
			ID:          QuestionID(strconv.Itoa(i + 1)),
			Type:        TypeMCQ,
			Question:    g.Question,
			Options:     append([]string(nil), g.Options...),
			Answer:      Single(g.Answer),
			Explanation: g.Explanation,
		}
		if g.Answer == "" {
			out[i].Answer = Answer{}
		}
	}
	return out
}

package quizgen

import "github.com/abhisek/quizprep/internal/llm"

// QuestionsSchema defines the JSON schema for quiz generation responses.
var QuestionsSchema = &llm.Schema{
	Name:        "quiz-questions",
	Description: "Multiple-choice questions generated from a source document",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"questions": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"question": map[string]any{
							"type":        "string",
							"description": "The question text, answerable from the document alone",
						},
						"options": map[string]any{
							"type":        "array",
							"items":       map[string]any{"type": "string"},
							"minItems":    2,
							"description": "The answer options, usually 4",
						},
						"answer": map[string]any{
							"type":        "string",
							"description": "The correct option, copied character for character from options",
						},
						"explanation": map[string]any{
							"type":        "string",
							"description": "Why the answer is correct, citing the document",
						},
					},
					"required":             []any{"question", "options", "answer", "explanation"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []any{"questions"},
		"additionalProperties": false,
	},
}

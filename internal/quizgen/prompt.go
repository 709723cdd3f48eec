package quizgen

import (
	"fmt"
	"strings"
)

const systemPrompt = `You are an exam author writing multiple-choice questions from study material.

Rules:
- Respond with JSON only. No markdown, no code fences, no commentary.
- Every question must be answerable from the provided document alone.
- Give each question 4 options with exactly one correct option.
- The "answer" field must be an exact, character-for-character copy of one of the options. Do not paraphrase it, do not add a letter prefix such as "A)".
- The explanation should say why the answer is correct and mention the correct option.
- Generate at least the requested number of questions.`

// buildUserMessage constructs the user message for one generation call.
func buildUserMessage(input GenerateInput) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Number of questions: %d\n", input.Count)
	if input.Difficulty != "" {
		fmt.Fprintf(&b, "Difficulty: %s\n", input.Difficulty)
	}
	b.WriteString("\nDocument:\n")
	b.WriteString(strings.TrimSpace(input.Content))

	return b.String()
}

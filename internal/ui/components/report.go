package components

import (
	"fmt"
	"strings"

	"github.com/abhisek/quizprep/internal/quiz"
	"github.com/abhisek/quizprep/internal/scoring"
	"github.com/abhisek/quizprep/internal/ui/theme"
)

// ReportView renders a score report. questions may be nil to skip the
// per-question list.
func ReportView(r scoring.Report, questions []quiz.Question, width int) string {
	var b strings.Builder

	b.WriteString(theme.Title.Render("Score"))
	b.WriteString("\n\n")

	verdict := theme.Incorrect.Render("FAILED")
	if r.Passed {
		verdict = theme.Correct.Render("PASSED")
	}
	fmt.Fprintf(&b, "%s%s  (pass mark %.0f%%)\n", theme.Label.Render("Result"), verdict, r.Threshold)
	fmt.Fprintf(&b, "%s%s\n", theme.Label.Render("Correct"), theme.Body.Render(fmt.Sprintf("%d / %d", r.Correct, r.Total)))
	fmt.Fprintf(&b, "%s%s\n", theme.Label.Render("Wrong"), theme.Body.Render(fmt.Sprint(r.Wrong)))
	fmt.Fprintf(&b, "%s%s\n\n", theme.Label.Render("Skipped"), theme.Body.Render(fmt.Sprint(r.Skipped)))

	bar := ProgressBar{
		Percent:     r.Percentage / 100,
		ShowPercent: true,
		Width:       width,
		Mark:        r.Threshold / 100,
	}
	b.WriteString(bar.View())

	if len(questions) > 0 {
		b.WriteString("\n\n")
		byID := make(map[quiz.QuestionID]*quiz.Question, len(questions))
		for i := range questions {
			byID[questions[i].ID] = &questions[i]
		}
		for _, res := range r.PerQuestion {
			q, ok := byID[res.ID]
			if !ok {
				continue
			}
			var icon string
			switch {
			case !res.Attempted:
				icon = theme.Skipped.Render("-")
			case res.Correct:
				icon = theme.Correct.Render("✓")
			default:
				icon = theme.Incorrect.Render("✗")
			}
			fmt.Fprintf(&b, "%s %s\n", icon, theme.Body.Render(q.Summary()))
		}
	}

	return theme.Card.Render(strings.TrimRight(b.String(), "\n"))
}

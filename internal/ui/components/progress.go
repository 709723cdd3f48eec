package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/quizprep/internal/ui/theme"
)

// ProgressBar displays a horizontal bar with an optional pass mark.
type ProgressBar struct {
	Label       string
	Percent     float64 // 0-1
	ShowPercent bool
	Width       int

	// Mark is the pass threshold (0-1). Zero draws no mark.
	Mark float64
}

// NewProgressBar creates a new progress bar.
func NewProgressBar(label string, percent float64, showPercent bool, width int) ProgressBar {
	return ProgressBar{
		Label:       label,
		Percent:     percent,
		ShowPercent: showPercent,
		Width:       width,
	}
}

// View renders the progress bar.
func (p ProgressBar) View() string {
	var result string

	if p.Label != "" {
		result += theme.Body.Render(p.Label) + "  "
	}

	labelWidth := lipgloss.Width(result)
	percentWidth := 0
	if p.ShowPercent {
		percentWidth = 7 // "  100%"
	}

	barWidth := max(p.Width-labelWidth-percentWidth, 4)
	filled := min(max(int(float64(barWidth)*p.Percent), 0), barWidth)

	fill := theme.Secondary
	if p.Mark > 0 && p.Percent < p.Mark {
		fill = theme.Error
	}

	cells := make([]string, barWidth)
	for i := range cells {
		bg := theme.Border
		if i < filled {
			bg = fill
		}
		ch := " "
		if p.Mark > 0 && i == int(float64(barWidth)*p.Mark) {
			ch = "|"
		}
		cells[i] = lipgloss.NewStyle().Background(bg).Foreground(theme.Text).Render(ch)
	}
	result += strings.Join(cells, "")

	if p.ShowPercent {
		result += theme.Hint.Italic(false).Render(fmt.Sprintf("  %d%%", int(p.Percent*100)))
	}

	return result
}

package components

import (
	"fmt"

	"github.com/theirongolddev/sims/internal/tui/theme"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

// UtilizationBar renders budget utilization (0-100, may exceed 100) as a
// labeled bar. An undefined utilization renders an empty bar and "n/a".
func UtilizationBar(label string, pct float64, ok bool, labelW, barWidth int) string {
	t := theme.Active

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	spaceStyle := lipgloss.NewStyle().Background(t.Surface)

	color := t.Utilization(pct)
	fill := pct / 100
	if !ok {
		color = t.TextDim
		fill = 0
	}
	fill = max(0, min(fill, 1))

	bar := progress.New(
		progress.WithSolidFill(string(color)),
		progress.WithWidth(barWidth),
		progress.WithoutPercentage(),
	)
	bar.EmptyColor = string(t.TextDim)

	pctStyle := lipgloss.NewStyle().Foreground(color).Background(t.Surface).Bold(true)
	pctStr := "n/a"
	if ok {
		pctStr = fmt.Sprintf("%5.1f%%", pct)
	}

	return labelStyle.Render(fmt.Sprintf("%-*s", labelW, label)) +
		spaceStyle.Render(" ") +
		bar.ViewAs(fill) +
		spaceStyle.Render(" ") +
		pctStyle.Render(pctStr)
}

// ShareBar renders a compact bar for a part of a whole, e.g. one category's
// share of the total budget.
func ShareBar(part, whole float64, width int) string {
	t := theme.Active
	fill := 0.0
	if whole > 0 {
		fill = max(0, min(part/whole, 1))
	}
	bar := progress.New(
		progress.WithSolidFill(string(t.Accent)),
		progress.WithWidth(width),
		progress.WithoutPercentage(),
	)
	bar.EmptyColor = string(t.SurfaceHover)
	return bar.ViewAs(fill)
}

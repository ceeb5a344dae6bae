package tui

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/sims/internal/cli"
	"github.com/theirongolddev/sims/internal/tui/components"
	"github.com/theirongolddev/sims/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

func (a App) renderRevenueTab(cw, h int) string {
	title := fmt.Sprintf("Revenue  %s", cli.FormatSSP(a.totals.TotalRevenue))
	return a.renderLines(title, revenueRows(a.snap.Revenue), &a.revList, cw, h, false)
}

func (a App) renderBudgetTab(cw, h int) string {
	title := fmt.Sprintf("Budget  %s", cli.FormatSSP(a.totals.TotalBudget))
	return a.renderLines(title, budgetRows(a.snap.Budget), &a.budList, cw, h, true)
}

// renderLines draws a scrollable tree of rows inside one card. The list
// state is a copy owned by View, so scrolling here never leaks into Update.
func (a App) renderLines(title string, rows []row, ls *listState, cw, h int, costs bool) string {
	t := theme.Active
	innerW := components.CardInnerWidth(cw)

	if len(rows) == 0 {
		empty := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface).
			Render("No lines yet. Add them with `sims draft add-revenue` or `sims draft add-expense`.")
		return components.ContentCard(title, empty, cw)
	}

	codeW := 10
	amountW := 18
	detailW := 0
	if costs {
		detailW = 22
	}
	labelW := max(innerW-codeW-amountW-detailW-3, 12)

	headStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface).Bold(true)
	head := fmt.Sprintf("%-*s %-*s", labelW, "Line", codeW, "Code")
	if costs {
		head += fmt.Sprintf(" %*s", detailW, "Unit x Qty")
	}
	head += fmt.Sprintf(" %*s", amountW, "Amount")

	reserved := 4 // border, title, header
	if a.editing {
		reserved++
	}
	listH := max(h-reserved, 1)

	l := *ls
	start, end := l.window(len(rows), listH)

	lines := []string{headStyle.Render(head)}
	for i := start; i < end; i++ {
		lines = append(lines, a.renderRow(rows[i], i == l.cursor, labelW, codeW, detailW, amountW, costs))
	}
	if a.editing {
		prompt := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true).
			Render(truncStr(a.editRow.label, 24) + ": ")
		lines = append(lines, prompt+a.input.View())
	}
	return components.ContentCard(title, strings.Join(lines, "\n"), cw)
}

func (a App) renderRow(r row, selected bool, labelW, codeW, detailW, amountW int, costs bool) string {
	t := theme.Active
	bg := t.Surface
	if selected {
		bg = t.SurfaceHover
	}
	base := lipgloss.NewStyle().Background(bg)

	var labelStyle lipgloss.Style
	indent := ""
	switch r.kind {
	case rowGroup:
		labelStyle = base.Foreground(t.Group(r.group)).Bold(true)
	case rowCategory:
		labelStyle = base.Foreground(t.TextPrimary).Bold(true)
		indent = "  "
	case rowItem:
		labelStyle = base.Foreground(t.TextPrimary)
		indent = "    "
	case rowNeeded:
		labelStyle = base.Foreground(t.TextMuted)
		indent = "      · "
	}
	if selected {
		labelStyle = labelStyle.Foreground(t.AccentBright)
	}

	label := indent + r.label
	if label == indent {
		label = indent + "(untitled)"
	}
	out := labelStyle.Render(fmt.Sprintf("%-*s", labelW, truncStr(label, labelW)))
	out += base.Render(" ")
	out += base.Foreground(t.TextDim).Render(fmt.Sprintf("%-*s", codeW, truncStr(r.code, codeW)))

	if costs {
		detail := ""
		if r.kind == rowNeeded {
			detail = cli.FormatNative(r.group, r.unitCost) + " x " + cli.FormatQuantity(r.quantity)
		}
		out += base.Render(" ")
		out += base.Foreground(t.TextMuted).Render(fmt.Sprintf("%*s", detailW, truncStr(detail, detailW)))
	}

	amount := ""
	if r.kind == rowItem || r.kind == rowNeeded {
		amount = cli.FormatNative(r.group, r.amount)
	}
	out += base.Render(" ")
	out += base.Foreground(t.TextPrimary).Render(fmt.Sprintf("%*s", amountW, amount))
	return out
}

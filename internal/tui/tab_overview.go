package tui

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/sims/internal/cli"
	"github.com/theirongolddev/sims/internal/model"
	"github.com/theirongolddev/sims/internal/tui/components"
	"github.com/theirongolddev/sims/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

func (a App) renderOverviewTab(cw int) string {
	t := theme.Active
	tot := a.totals
	var b strings.Builder

	utilNote := "no revenue yet"
	if tot.UtilizationDefined {
		utilNote = cli.FormatPercent(tot.Utilization, true) + " of revenue"
	}
	balanceNote := "within revenue"
	if tot.OverBudget {
		balanceNote = "over budget, submission blocked"
	}

	b.WriteString(components.MetricCardRow([]components.Metric{
		{Label: "Revenue", Value: cli.FormatSSP(tot.TotalRevenue), Note: fmt.Sprintf("%d lines", countRevenue(a.snap.Revenue))},
		{Label: "Budget", Value: cli.FormatSSP(tot.TotalBudget), Note: utilNote},
		{Label: "Balance", Value: cli.FormatSSP(tot.Balance), Note: balanceNote, Color: t.Balance(tot.Balance)},
		{Label: "Rate", Value: fmt.Sprintf("1 USD = %s SSP", formatNum(tot.Rate)), Note: "CAPEX converted"},
	}, cw))
	b.WriteString("\n")

	barW := max(components.CardInnerWidth(cw)-20, 10)
	b.WriteString(components.ContentCard("Utilization",
		components.UtilizationBar("Budget / Revenue", tot.Utilization, tot.UtilizationDefined, 16, barW), cw))
	b.WriteString("\n")

	halves := components.LayoutRow(cw, 2)
	b.WriteString(components.CardRow([]string{
		components.ContentCard("Revenue by group", a.groupTable(a.revenueGroups, tot.TotalRevenue, halves[0]), halves[0]),
		components.ContentCard("Budget by group", a.groupTable(a.budgetGroups, tot.TotalBudget, halves[1]), halves[1]),
	}))
	b.WriteString("\n")

	b.WriteString(a.renderMetaCard(cw))
	return b.String()
}

func countRevenue(tree model.RevenueTree) int {
	n := 0
	for _, g := range tree {
		for _, c := range g.Categories {
			n += len(c.Items)
		}
	}
	return n
}

// groupTable lists each group and its categories with SSP subtotals and a
// share-of-total bar.
func (a App) groupTable(groups []model.GroupTotals, total float64, outerW int) string {
	t := theme.Active
	if len(groups) == 0 {
		return lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface).Render("Nothing entered yet")
	}

	innerW := components.CardInnerWidth(outerW)
	amountW := 16
	barW := 8
	nameW := max(innerW-amountW-barW-2, 8)

	nameStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	space := lipgloss.NewStyle().Background(t.Surface).Render(" ")

	var lines []string
	for _, g := range groups {
		groupStyle := lipgloss.NewStyle().Foreground(t.Group(g.Group)).Background(t.Surface).Bold(true)
		lines = append(lines,
			groupStyle.Render(fmt.Sprintf("%-*s", nameW, g.Group))+space+
				groupStyle.Render(fmt.Sprintf("%*s", amountW, cli.FormatSSP(g.SSP)))+space+
				components.ShareBar(g.SSP, total, barW))
		for _, c := range g.Categories {
			lines = append(lines,
				nameStyle.Render(fmt.Sprintf("  %-*s", nameW-2, truncStr(c.Name, nameW-2)))+space+
					mutedStyle.Render(fmt.Sprintf("%*s", amountW, cli.FormatSSP(c.SSP)))+space+
					components.ShareBar(c.SSP, total, barW))
		}
	}
	return strings.Join(lines, "\n")
}

func (a App) renderMetaCard(cw int) string {
	t := theme.Active
	m := a.snap.Meta
	label := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	value := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)

	field := func(k, v string) string {
		if v == "" {
			v = "-"
		}
		return label.Render(fmt.Sprintf("%-12s", k)) + value.Render(v)
	}

	lines := []string{
		field("School", strings.TrimSpace(m.SchoolName+" ("+m.SchoolCode+")")),
		field("County", m.County),
		field("Payam", m.Payam),
	}
	if d := m.Demographics; d != nil {
		lines = append(lines, field("Learners", fmt.Sprintf("%d (%d M / %d F, %d with disability)",
			d.Learners, d.Male, d.Female, d.WithDisability)))
	}
	if p := m.Preparation; p != nil && p.PreparedBy != "" {
		lines = append(lines, field("Prepared by", p.PreparedBy))
	}
	return components.ContentCard("School", strings.Join(lines, "\n"), cw)
}

package tui

import (
	"errors"
	"sort"
	"strings"

	"github.com/theirongolddev/sims/internal/cli"
	"github.com/theirongolddev/sims/internal/review"
	"github.com/theirongolddev/sims/internal/tui/components"
	"github.com/theirongolddev/sims/internal/tui/theme"
	"github.com/theirongolddev/sims/internal/validate"

	"github.com/charmbracelet/lipgloss"
)

func (a App) renderReviewTab(cw int) string {
	t := theme.Active
	surface := lipgloss.NewStyle().Background(t.Surface)
	muted := surface.Foreground(t.TextMuted)
	good := surface.Foreground(t.Green)
	bad := surface.Foreground(t.Red).Bold(true)
	key := surface.Foreground(t.Cyan).Bold(true)

	halves := components.LayoutRow(cw, 2)

	// Checklist
	cl := a.opts.Gate.Checklist()
	var check []string
	for _, sec := range review.Sections {
		if cl.Get(sec) {
			check = append(check, good.Render("[x] ")+surface.Foreground(t.TextPrimary).Render(sectionLabel(sec)))
		} else {
			check = append(check, muted.Render("[ ] "+sectionLabel(sec)))
		}
	}
	check = append(check, "", muted.Render("State: ")+surface.Foreground(t.TextPrimary).Render(a.opts.Gate.State().String()))
	if err := a.opts.Gate.LastError(); err != nil {
		check = append(check, bad.Render(truncStr("Last attempt: "+err.Error(), components.CardInnerWidth(halves[0]))))
	}

	// Blockers
	var issues []string
	if a.opts.Draft.Empty() {
		issues = append(issues, "The draft has no revenue or budget lines.")
	}
	if a.totals.OverBudget {
		issues = append(issues, "Budget exceeds revenue by "+cli.FormatSSP(-a.totals.Balance)+".")
	}
	issues = append(issues, fieldIssues(a.opts.Draft.Payload())...)

	innerW := components.CardInnerWidth(halves[1])
	var blockers []string
	if len(issues) == 0 {
		blockers = append(blockers, good.Render("Nothing blocks submission."))
	}
	for _, s := range issues {
		blockers = append(blockers, bad.Render("! ")+muted.Render(truncStr(s, innerW-2)))
	}

	var b strings.Builder
	b.WriteString(components.CardRow([]string{
		components.ContentCard("Checklist", strings.Join(check, "\n"), halves[0]),
		components.ContentCard("Blockers", strings.Join(blockers, "\n"), halves[1]),
	}))
	b.WriteString("\n")

	action := "create the budget for next year"
	if a.opts.Edit {
		action = "update the loaded budget"
	}
	hint := key.Render("s") + muted.Render(" open review & submit to "+action)
	if a.opts.Submitter == nil {
		hint += muted.Render("  (API not configured, run ") + key.Render("sims setup") + muted.Render(")")
	}
	b.WriteString(components.ContentCard("", hint, cw))
	return b.String()
}

// fieldIssues lists validation messages for the payload, sorted by field.
func fieldIssues(p any) []string {
	err := validate.Struct(p)
	if err == nil {
		return nil
	}
	var verrs validate.Errors
	if !errors.As(err, &verrs) {
		return []string{err.Error()}
	}
	keys := make([]string, 0, len(verrs))
	for k := range verrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, verrs[k])
	}
	return out
}

package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/theirongolddev/sims/internal/cli"
	"github.com/theirongolddev/sims/internal/review"
	"github.com/theirongolddev/sims/internal/submit"
	"github.com/theirongolddev/sims/internal/tui/theme"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var errNoAPI = errors.New("API is not configured; run `sims setup`")

var dialogKeys = map[string]review.Section{
	"m": review.SectionMeta,
	"r": review.SectionRevenue,
	"b": review.SectionBudget,
}

func (a App) openDialog() (tea.Model, tea.Cmd) {
	a.opts.Gate.OpenReview()
	a.dialogOpen = true
	a.dialogErr = nil
	a.persistView()
	return a, nil
}

// closeDialog hides the dialog. An in-flight submission is abandoned and its
// result will be ignored.
func (a *App) closeDialog() {
	a.opts.Gate.CloseReview()
	a.dialogOpen = false
	a.submitting = false
	a.dialogErr = nil
	a.persistView()
}

func (a App) updateDialog(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if sec, ok := dialogKeys[key]; ok {
		if err := a.opts.Gate.Toggle(sec); err != nil {
			return a, a.flash(submit.NoticeFor(submit.Result{}, err).Title, true)
		}
		a.persistChecklist()
		return a, nil
	}

	switch key {
	case "esc", "q":
		a.closeDialog()
		return a, nil
	case "enter":
		if a.opts.Gate.State() == review.Failed {
			a.opts.Gate.Retry()
		}
		attempt, err := a.opts.Gate.Begin(a.totals.OverBudget)
		if err != nil {
			n := submit.NoticeFor(submit.Result{}, err)
			a.dialogErr = &n
			return a, nil
		}
		a.submitting = true
		a.dialogErr = nil
		return a, tea.Batch(a.spinner.Tick, a.submitCmd(attempt))
	}
	return a, nil
}

// persistChecklist stores the checklist with the draft even when the draft
// itself has not changed.
func (a *App) persistChecklist() {
	if a.opts.Store == nil {
		return
	}
	if err := a.opts.Store.SaveDraft(a.snap, a.opts.Gate.Checklist()); err != nil {
		a.log.Printf("saving checklist: %v", err)
		return
	}
	a.savedVersion = a.version
}

func (a App) submitCmd(attempt review.Attempt) tea.Cmd {
	svc := a.opts.Submitter
	timeout := a.opts.Timeout
	req := submit.Request{
		SchoolCode: a.snap.SchoolCode,
		Edit:       a.opts.Edit,
		Payload:    a.opts.Draft.Payload(),
	}
	return func() tea.Msg {
		if svc == nil {
			return SubmitResultMsg{Attempt: attempt, Err: errNoAPI}
		}
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		res, err := svc.Submit(ctx, req)
		return SubmitResultMsg{Attempt: attempt, Result: res, Err: err}
	}
}

func (a App) settleSubmit(msg SubmitResultMsg) (tea.Model, tea.Cmd) {
	if err := a.opts.Gate.Finish(msg.Attempt, msg.Err); err != nil {
		a.log.Printf("ignoring result of attempt %d: %v", msg.Attempt, err)
		return a, nil
	}
	a.submitting = false
	n := submit.NoticeFor(msg.Result, msg.Err)

	if msg.Err != nil {
		a.log.Printf("submit %s: %v", a.snap.SchoolCode, msg.Err)
		a.dialogErr = &n
		return a, nil
	}

	code, year := a.snap.SchoolCode, a.snap.Year
	a.closeDialog()
	a.opts.Draft.Reset()
	a.opts.Gate.Reset()
	if a.opts.Store != nil {
		if err := a.opts.Store.DeleteDraft(code, year); err != nil {
			a.log.Printf("deleting submitted draft: %v", err)
		}
	}
	a.recompute()
	a.savedVersion = a.version
	return a, a.flash(n.Title+": "+n.Description, false)
}

func (a App) renderDialog(cw int) string {
	t := theme.Active
	w := min(max(cw/2, 56), cw-4)

	surface := lipgloss.NewStyle().Background(t.Surface)
	titleStyle := surface.Foreground(t.AccentBright).Bold(true)
	labelStyle := surface.Foreground(t.TextMuted)
	valueStyle := surface.Foreground(t.TextPrimary)
	keyStyle := surface.Foreground(t.Cyan).Bold(true)
	dimStyle := surface.Foreground(t.TextDim)
	errStyle := surface.Foreground(t.Red).Bold(true)

	gate := a.opts.Gate
	cl := gate.Checklist()
	tot := a.totals

	var b strings.Builder
	title := "Review & submit"
	if a.opts.Edit {
		title = "Review & update"
	}
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n\n")

	line := func(k, v string, style lipgloss.Style) {
		b.WriteString(labelStyle.Render(fmt.Sprintf("%-12s", k)))
		b.WriteString(style.Render(v))
		b.WriteString("\n")
	}
	line("Revenue", cli.FormatSSP(tot.TotalRevenue), valueStyle)
	line("Budget", cli.FormatSSP(tot.TotalBudget), valueStyle)
	line("Balance", cli.FormatSSP(tot.Balance), surface.Foreground(t.Balance(tot.Balance)))
	line("Utilization", cli.FormatPercent(tot.Utilization, tot.UtilizationDefined), valueStyle)
	b.WriteString("\n")

	for _, sec := range review.Sections {
		mark, style := "[ ]", dimStyle
		if cl.Get(sec) {
			mark, style = "[x]", surface.Foreground(t.Green)
		}
		b.WriteString(style.Render(mark))
		b.WriteString(surface.Render(" "))
		b.WriteString(keyStyle.Render(string(sec[0])))
		b.WriteString(valueStyle.Render(" " + sectionLabel(sec)))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if tot.OverBudget {
		b.WriteString(errStyle.Render("Budget exceeds revenue. Reduce spending before submitting."))
		b.WriteString("\n")
	}

	state := gate.State()
	switch {
	case a.submitting:
		b.WriteString(a.spinner.View())
		b.WriteString(valueStyle.Render(" Submitting..."))
	case a.dialogErr != nil:
		b.WriteString(errStyle.Render(a.dialogErr.Title))
		b.WriteString("\n")
		b.WriteString(labelStyle.Width(w - 6).Render(a.dialogErr.Description))
	default:
		b.WriteString(labelStyle.Render("State: "))
		b.WriteString(valueStyle.Render(state.String()))
	}
	b.WriteString("\n\n")

	action := "submit"
	if state == review.Failed {
		action = "retry"
	}
	if gate.CanSubmit(tot.OverBudget) || state == review.Failed {
		b.WriteString(keyStyle.Render("Enter"))
		b.WriteString(dimStyle.Render(" " + action + "  "))
	}
	b.WriteString(keyStyle.Render("m r b"))
	b.WriteString(dimStyle.Render(" tick  "))
	b.WriteString(keyStyle.Render("Esc"))
	b.WriteString(dimStyle.Render(" close"))

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		BorderBackground(t.Background).
		Background(t.Surface).
		Padding(1, 2).
		Width(w).
		Render(b.String())
}

func sectionLabel(s review.Section) string {
	switch s {
	case review.SectionMeta:
		return "School details reviewed"
	case review.SectionRevenue:
		return "Revenue reviewed"
	case review.SectionBudget:
		return "Budget reviewed"
	}
	return string(s)
}

package components

import (
	"strconv"
	"strings"

	"github.com/theirongolddev/sims/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// StatusInfo is what the bottom bar shows on its right-hand side.
type StatusInfo struct {
	School string
	Year   int
	Edit   bool
	Dirty  bool
	// Notice is a transient message; Alert marks it as an error.
	Notice string
	Alert  bool
}

// RenderStatusBar renders the bottom status bar.
func RenderStatusBar(width int, info StatusInfo) string {
	t := theme.Active

	base := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	accent := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	alert := lipgloss.NewStyle().Foreground(t.Red).Background(t.Surface).Bold(true)

	left := base.Render(" [?]help  [s]ubmit  [q]uit")
	if info.Notice != "" {
		style := accent
		if info.Alert {
			style = alert
		}
		left += base.Render("  ") + style.Render(info.Notice)
	}

	var right []string
	if info.School != "" {
		right = append(right, info.School)
	}
	if info.Year != 0 {
		right = append(right, strconv.Itoa(info.Year))
	}
	mode := "new"
	if info.Edit {
		mode = "edit"
	}
	right = append(right, mode)
	if info.Dirty {
		right = append(right, "unsaved")
	}
	r := base.Render(strings.Join(right, " · ") + " ")

	padding := width - lipgloss.Width(left) - lipgloss.Width(r)
	if padding < 0 {
		padding = 0
	}
	return left + base.Render(strings.Repeat(" ", padding)) + r
}

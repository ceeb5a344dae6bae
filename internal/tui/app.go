// Package tui provides the interactive Bubble Tea dashboard for sims.
package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/theirongolddev/sims/internal/config"
	"github.com/theirongolddev/sims/internal/currency"
	"github.com/theirongolddev/sims/internal/draft"
	"github.com/theirongolddev/sims/internal/model"
	"github.com/theirongolddev/sims/internal/pipeline"
	"github.com/theirongolddev/sims/internal/review"
	"github.com/theirongolddev/sims/internal/store"
	"github.com/theirongolddev/sims/internal/submit"
	"github.com/theirongolddev/sims/internal/tui/components"
	"github.com/theirongolddev/sims/internal/tui/theme"
	"github.com/theirongolddev/sims/internal/viewstate"
	"github.com/theirongolddev/sims/internal/wire"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// BudgetLoadedMsg is sent when the budget to edit has been fetched.
type BudgetLoadedMsg struct {
	Payload *wire.Payload
	Err     error
}

// SubmitResultMsg is sent when a submission attempt settles.
type SubmitResultMsg struct {
	Attempt review.Attempt
	Result  submit.Result
	Err     error
}

type noticeExpiredMsg struct{ seq int }

// Options wires the dashboard to its collaborators.
type Options struct {
	Draft     *draft.Draft
	Gate      *review.Gate
	Submitter *submit.Service // nil when the API is not configured
	Store     *store.Store    // nil disables persistence
	Rates     currency.RateProvider
	Logger    *log.Logger
	Timeout   time.Duration

	// Edit loads the draft's budget from the server and submits as an update.
	Edit        bool
	View        viewstate.State
	PersistView bool
	NeedSetup   bool

	// Connect rebuilds the submitter after the setup wizard saves a config.
	Connect func(config.Config) (*submit.Service, error)
}

// App is the root Bubble Tea model.
type App struct {
	opts Options
	log  *log.Logger

	// Derived from the draft on every change
	snap          draft.Snapshot
	version       uint64
	savedVersion  uint64
	totals        model.BudgetTotals
	budgetGroups  []model.GroupTotals
	revenueGroups []model.GroupTotals

	loaded  bool
	loadErr error

	// UI state
	width     int
	height    int
	activeTab int
	showHelp  bool

	revList listState
	budList listState
	idle    listState // tabs without a list

	// Inline editing of an amount or cost
	editing bool
	input   textinput.Model
	editRow row

	// Submit dialog
	dialogOpen bool
	submitting bool
	dialogErr  *submit.Notice
	spinner    spinner.Model

	// Transient status-bar message
	notice    string
	alert     bool
	noticeSeq int

	// First-run setup (huh form)
	setupForm *huh.Form
	setupVals SetupValues
	needSetup bool
}

const (
	minTerminalWidth = 80
	maxContentWidth  = 160
	minContentHeight = 5
	noticeTTL        = 4 * time.Second
)

// NewApp creates a new TUI app model.
func NewApp(opts Options) App {
	if opts.Gate == nil {
		opts.Gate = review.NewGate()
	}
	if opts.Rates == nil {
		opts.Rates = currency.Default()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent).Background(theme.Active.Surface)

	a := App{
		opts:      opts,
		log:       logger,
		loaded:    !opts.Edit,
		needSetup: opts.NeedSetup,
		spinner:   sp,
	}
	if i := viewstate.TabIndex(opts.View.Tab); i >= 0 {
		a.activeTab = i
	}
	a.recompute()
	a.savedVersion = a.version
	if opts.Edit && !opts.Draft.Empty() {
		// Local edits are never replaced by the server copy here.
		a.loaded = true
		if a.storedBudgetID() != "" {
			a.notice = "Resuming local edits"
		} else {
			a.notice = "Local draft kept; run sims budget edit --force to load the server budget"
			a.alert = true
		}
		a.noticeSeq++
	}
	a.listFor(a.activeTab).setCursor(opts.View.Position, a.rowCount(a.activeTab))

	if a.needSetup {
		a.setupVals = SetupValues{SchoolCode: a.snap.SchoolCode}
		a.setupForm = NewSetupForm(&a.setupVals)
	}
	return a
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	cmds := []tea.Cmd{tea.EnableMouseCellMotion}
	if !a.loaded {
		cmds = append(cmds, a.spinner.Tick, a.loadBudgetCmd())
	}
	if a.setupForm != nil {
		cmds = append(cmds, a.setupForm.Init())
	}
	if a.notice != "" {
		seq := a.noticeSeq
		cmds = append(cmds, tea.Tick(noticeTTL, func(time.Time) tea.Msg { return noticeExpiredMsg{seq: seq} }))
	}
	return tea.Batch(cmds...)
}

func (a App) storedBudgetID() string {
	if a.opts.Store == nil {
		return ""
	}
	id, _, err := a.opts.Store.Get(submit.BudgetKey)
	if err != nil {
		a.log.Printf("reading %s: %v", submit.BudgetKey, err)
	}
	return id
}

// recompute refreshes everything derived from the draft.
func (a *App) recompute() {
	a.snap = a.opts.Draft.Snapshot()
	a.version = a.opts.Draft.Version()
	a.totals = pipeline.Summarize(a.snap.Budget, a.snap.Revenue, a.opts.Rates)
	a.budgetGroups = pipeline.AggregateBudgetGroups(a.snap.Budget, a.opts.Rates)
	a.revenueGroups = pipeline.AggregateRevenueGroups(a.snap.Revenue, a.opts.Rates)
	a.revList.clamp(len(revenueRows(a.snap.Revenue)))
	a.budList.clamp(len(budgetRows(a.snap.Budget)))
}

// persist saves the draft and checklist when the store is available.
func (a *App) persist() {
	if a.opts.Store == nil || a.version == a.savedVersion {
		return
	}
	if err := a.opts.Store.SaveDraft(a.snap, a.opts.Gate.Checklist()); err != nil {
		a.log.Printf("saving draft: %v", err)
		return
	}
	a.savedVersion = a.version
}

func (a App) viewState() viewstate.State {
	v := viewstate.State{
		Tab:      viewstate.Tabs[a.activeTab],
		Edit:     a.opts.Edit,
		Code:     a.snap.SchoolCode,
		Year:     a.snap.Year,
		Position: a.listFor(a.activeTab).cursor,
	}
	if a.dialogOpen {
		v.Tab2 = "submit"
	}
	return v
}

func (a *App) persistView() {
	if a.opts.Store == nil || !a.opts.PersistView {
		return
	}
	if err := a.opts.Store.Set(store.KeyView, a.viewState().Encode()); err != nil {
		a.log.Printf("saving view state: %v", err)
	}
}

func (a *App) flash(msg string, isAlert bool) tea.Cmd {
	a.noticeSeq++
	a.notice = msg
	a.alert = isAlert
	seq := a.noticeSeq
	return tea.Tick(noticeTTL, func(time.Time) tea.Msg { return noticeExpiredMsg{seq: seq} })
}

// switchTab moves to another tab. Leaving abandons any in-flight submission.
func (a *App) switchTab(i int) {
	if i == a.activeTab && !a.dialogOpen {
		return
	}
	a.opts.Gate.Cancel()
	if a.dialogOpen {
		a.closeDialog()
	}
	a.activeTab = i
	a.editing = false
	a.persistView()
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.setupForm != nil {
			a.setupForm = a.setupForm.WithWidth(msg.Width).WithHeight(msg.Height)
		}
		return a, nil

	case tea.MouseMsg:
		if !a.loaded || a.showHelp || a.setupForm != nil {
			return a, nil
		}
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			a.listFor(a.activeTab).move(-1, a.rowCount(a.activeTab))
		case tea.MouseButtonWheelDown:
			a.listFor(a.activeTab).move(1, a.rowCount(a.activeTab))
		case tea.MouseButtonLeft:
			if msg.Action == tea.MouseActionPress && msg.Y == 0 {
				if tab := a.tabAtX(msg.X); tab >= 0 {
					a.switchTab(tab)
				}
			}
		}
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			a.opts.Gate.Cancel()
			a.persist()
			return a, tea.Quit
		}
		if a.setupForm != nil {
			return a.updateSetupForm(msg)
		}
		if !a.loaded {
			return a, nil
		}
		if a.editing {
			return a.updateEditInput(msg)
		}
		if a.dialogOpen {
			return a.updateDialog(msg)
		}
		return a.updateKeys(msg)

	case BudgetLoadedMsg:
		a.loaded = true
		if msg.Err != nil {
			a.loadErr = msg.Err
			a.log.Printf("loading budget for edit: %v", msg.Err)
			return a, a.flash("Could not load the budget: "+msg.Err.Error(), true)
		}
		meta, budget, revenue := wire.Hydrate(*msg.Payload)
		a.opts.Draft.Hydrate(meta, budget, revenue)
		a.opts.Gate.Reset()
		a.recompute()
		a.persist()
		return a, a.flash(fmt.Sprintf("Loaded %d budget for editing", msg.Payload.Year), false)

	case SubmitResultMsg:
		return a.settleSubmit(msg)

	case spinner.TickMsg:
		if !a.loaded || a.submitting {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil

	case noticeExpiredMsg:
		if msg.seq == a.noticeSeq {
			a.notice = ""
			a.alert = false
		}
		return a, nil
	}

	if a.setupForm != nil {
		return a.updateSetupForm(msg)
	}
	if a.editing {
		var cmd tea.Cmd
		a.input, cmd = a.input.Update(msg)
		return a, cmd
	}
	return a, nil
}

func (a App) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "?" {
		a.showHelp = !a.showHelp
		return a, nil
	}
	if a.showHelp {
		a.showHelp = false
		return a, nil
	}

	switch key {
	case "q":
		a.persist()
		a.persistView()
		return a, tea.Quit
	case "s":
		return a.openDialog()
	case "left", "h":
		a.switchTab((a.activeTab - 1 + len(components.Tabs)) % len(components.Tabs))
		return a, nil
	case "right", "l", "tab":
		a.switchTab((a.activeTab + 1) % len(components.Tabs))
		return a, nil
	case "j", "down":
		a.listFor(a.activeTab).move(1, a.rowCount(a.activeTab))
		return a, nil
	case "k", "up":
		a.listFor(a.activeTab).move(-1, a.rowCount(a.activeTab))
		return a, nil
	case "g":
		a.listFor(a.activeTab).setCursor(0, a.rowCount(a.activeTab))
		return a, nil
	case "G":
		n := a.rowCount(a.activeTab)
		a.listFor(a.activeTab).setCursor(n-1, n)
		return a, nil
	case "e", "enter":
		return a.startEdit()
	case "d", "delete":
		return a.deleteSelected()
	}

	if len(msg.Runes) == 1 {
		if i := components.TabIdxByKey(msg.Runes[0]); i >= 0 {
			a.switchTab(i)
		}
	}
	return a, nil
}

func (a App) updateSetupForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.setupForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.setupForm = f
	}

	switch a.setupForm.State {
	case huh.StateCompleted:
		a.setupForm = nil
		a.needSetup = false
		return a, a.saveSetup()
	case huh.StateAborted:
		a.setupForm = nil
		a.needSetup = false
		return a, nil
	}
	return a, cmd
}

func (a *App) saveSetup() tea.Cmd {
	cfg, err := config.Load()
	if err != nil {
		cfg = config.DefaultConfig()
	}
	cfg, err = ApplySetup(cfg, a.setupVals)
	if err != nil {
		return a.flash(err.Error(), true)
	}
	if err := config.Save(cfg); err != nil {
		a.log.Printf("saving config: %v", err)
		return a.flash("Could not save config: "+err.Error(), true)
	}
	theme.SetActive(cfg.Appearance.Theme)
	if rates, err := cfg.Rates(); err == nil {
		a.opts.Rates = rates
		a.recompute()
	}
	if a.opts.Connect != nil {
		svc, err := a.opts.Connect(cfg)
		if err != nil {
			return a.flash("Saved, but the API is not reachable: "+err.Error(), true)
		}
		a.opts.Submitter = svc
	}
	return a.flash("Saved to "+config.ConfigPath(), false)
}

func (a App) loadBudgetCmd() tea.Cmd {
	svc := a.opts.Submitter
	code, year := a.snap.SchoolCode, a.snap.Year
	timeout := a.opts.Timeout
	return func() tea.Msg {
		if svc == nil {
			return BudgetLoadedMsg{Err: errors.New("API is not configured; run `sims setup`")}
		}
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		p, err := svc.LoadForEdit(ctx, code, year)
		return BudgetLoadedMsg{Payload: p, Err: err}
	}
}

func (a App) contentWidth() int {
	return min(a.width, maxContentWidth)
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}
	if a.width < minTerminalWidth {
		return a.viewTooNarrow()
	}
	if a.setupForm != nil {
		return a.setupForm.View()
	}
	if !a.loaded {
		return a.viewLoading()
	}
	if a.showHelp {
		return a.viewHelp()
	}
	return a.viewMain()
}

func (a App) viewTooNarrow() string {
	h := max(a.height, 5)
	msg := fmt.Sprintf(
		"\n  Terminal too narrow (%d cols)\n\n  sims needs at least %d columns.\n",
		a.width,
		minTerminalWidth,
	)
	return padHeight(truncateHeight(msg, h), h)
}

func (a App) viewLoading() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(2, 4)
	logoStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	subtitleStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	var b strings.Builder
	b.WriteString(logoStyle.Render("◈ sims"))
	b.WriteString(subtitleStyle.Render(" · School Budget"))
	b.WriteString("\n\n")
	b.WriteString(a.spinner.View())
	b.WriteString(subtitleStyle.Render(fmt.Sprintf(" Loading %s budget for %d...", a.snap.SchoolCode, a.snap.Year)))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewHelp() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(1, 3)
	titleStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	sectionStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	keyStyle := lipgloss.NewStyle().Foreground(t.Cyan).Background(t.Surface).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	sections := []struct {
		title    string
		bindings [][2]string
	}{
		{"Navigation", [][2]string{
			{"o r b v", "Jump to tab"},
			{"← →", "Previous / Next tab"},
			{"j k", "Move through lines"},
			{"g G", "First / Last line"},
		}},
		{"Editing", [][2]string{
			{"e Enter", "Edit amount, or cost x quantity"},
			{"d", "Delete line, category or group"},
		}},
		{"Submission", [][2]string{
			{"s", "Open review & submit"},
			{"m r b", "Tick meta / revenue / budget reviewed"},
			{"Enter", "Submit (or retry after a failure)"},
			{"Esc", "Close the dialog"},
		}},
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("◈ Keyboard Shortcuts"))
	b.WriteString("\n\n")
	for _, sec := range sections {
		b.WriteString(sectionStyle.Render(sec.title))
		b.WriteString("\n")
		for _, bind := range sec.bindings {
			fmt.Fprintf(&b, "  %s  %s\n",
				keyStyle.Render(fmt.Sprintf("%-10s", bind[0])),
				descStyle.Render(bind[1]))
		}
		b.WriteString("\n")
	}
	b.WriteString(dimStyle.Render("Press any key to close"))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewMain() string {
	t := theme.Active
	w := a.width
	cw := a.contentWidth()
	h := a.height

	header := components.RenderTabBar(a.activeTab, w)
	statusBar := components.RenderStatusBar(w, components.StatusInfo{
		School: a.snap.SchoolCode,
		Year:   a.snap.Year,
		Edit:   a.opts.Edit,
		Dirty:  a.opts.Store != nil && a.version != a.savedVersion,
		Notice: a.notice,
		Alert:  a.alert,
	})

	contentH := max(h-lipgloss.Height(header)-lipgloss.Height(statusBar), minContentHeight)

	var content string
	switch a.activeTab {
	case 0:
		content = a.renderOverviewTab(cw)
	case 1:
		content = a.renderRevenueTab(cw, contentH)
	case 2:
		content = a.renderBudgetTab(cw, contentH)
	case 3:
		content = a.renderReviewTab(cw)
	}

	content = padHeight(truncateHeight(content, contentH), contentH)
	content = fillLinesWithBackground(content, cw, t.Background)
	content = lipgloss.Place(w, contentH, lipgloss.Center, lipgloss.Top, content,
		lipgloss.WithWhitespaceBackground(t.Background))

	if a.dialogOpen {
		content = lipgloss.Place(w, contentH, lipgloss.Center, lipgloss.Center, a.renderDialog(cw),
			lipgloss.WithWhitespaceBackground(t.Background))
	}

	output := lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
	return lipgloss.Place(w, h, lipgloss.Left, lipgloss.Top, output,
		lipgloss.WithWhitespaceBackground(t.Background))
}

// ─── Helpers ────────────────────────────────────────────────────

func truncStr(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}

func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

func padHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) >= h {
		return s
	}
	return s + strings.Repeat("\n", h-len(lines))
}

// fillLinesWithBackground pads each line to width w with background color.
func fillLinesWithBackground(s string, w int, bg lipgloss.Color) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = lipgloss.PlaceHorizontal(w, lipgloss.Left, line,
			lipgloss.WithWhitespaceBackground(bg))
	}
	return strings.Join(lines, "\n")
}

// ─── Mouse Support ──────────────────────────────────────────────

// tabAtX returns the tab index at the given X coordinate, or -1 if none.
// Hitboxes are derived from the same width rules used by RenderTabBar.
func (a App) tabAtX(x int) int {
	pos := 0
	for i, tab := range components.Tabs {
		tabW := components.TabVisualWidth(tab, i == a.activeTab)
		if x >= pos && x < pos+tabW {
			return i
		}
		pos += tabW
		if i < len(components.Tabs)-1 {
			pos++ // separator
		}
	}
	return -1
}

package cmd

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/theirongolddev/sims/internal/config"
	"github.com/theirongolddev/sims/internal/store"
	"github.com/theirongolddev/sims/internal/submit"
	"github.com/theirongolddev/sims/internal/tui"
	"github.com/theirongolddev/sims/internal/tui/theme"
	"github.com/theirongolddev/sims/internal/viewstate"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
)

var (
	flagView    string
	flagTUIEdit bool
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch interactive TUI dashboard",
	RunE:  runTUI,
}

func init() {
	tuiCmd.Flags().StringVar(&flagView, "view", "", "View to open, e.g. \"tab=budget&position=3\"")
	tuiCmd.Flags().BoolVar(&flagTUIEdit, "edit", false, "Load the submitted budget and submit changes as an update")
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(_ *cobra.Command, _ []string) error {
	cfg := loadConfig()
	theme.SetActive(cfg.Appearance.Theme)

	// Force TrueColor profile so all background styling produces ANSI codes
	// Without this, lipgloss may default to Ascii profile (no colors)
	lipgloss.SetColorProfile(termenv.TrueColor)

	// The terminal belongs to the UI; log to a file.
	logger, closeLog := fileLogger()
	defer closeLog()

	view, err := initialView(cfg)
	if err != nil {
		return err
	}
	if view.Code != "" && flagCode == "" {
		flagCode = view.Code
	}
	if view.Year > 0 && flagYear == 0 {
		flagYear = view.Year
	}

	ws, err := openWorkspace()
	if err != nil {
		return err
	}
	defer func() { _ = ws.Close() }()

	rates, err := cfg.Rates()
	if err != nil {
		return err
	}

	connect := func(c config.Config) (*submit.Service, error) {
		client, err := newClient(c)
		if err != nil {
			return nil, err
		}
		return submit.New(client, ws.store, logger), nil
	}
	svc, err := connect(cfg)
	if err != nil {
		logger.Printf("API unavailable: %v", err)
		svc = nil
	}

	app := tui.NewApp(tui.Options{
		Draft:       ws.draft,
		Gate:        ws.gate,
		Submitter:   svc,
		Store:       ws.store,
		Rates:       rates,
		Logger:      logger,
		Timeout:     2 * cfg.Timeout(),
		Edit:        flagTUIEdit || view.Edit,
		View:        view,
		PersistView: cfg.TUI.RestoreView,
		NeedSetup:   !config.Exists() && config.APIURL(cfg) == "",
		Connect:     connect,
	})
	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}

// initialView is --view when given, else the last saved view if restoring
// is enabled.
func initialView(cfg config.Config) (viewstate.State, error) {
	if flagView != "" {
		v, err := viewstate.Parse(flagView)
		if err != nil {
			return viewstate.State{}, fmt.Errorf("--view: %w", err)
		}
		return v, nil
	}
	if !cfg.TUI.RestoreView {
		return viewstate.State{Tab: viewstate.Tabs[0]}, nil
	}

	st, err := openStore()
	if err != nil {
		return viewstate.State{Tab: viewstate.Tabs[0]}, nil
	}
	defer func() { _ = st.Close() }()
	saved, ok, err := st.Get(store.KeyView)
	if err != nil || !ok {
		return viewstate.State{Tab: viewstate.Tabs[0]}, nil
	}
	v, err := viewstate.Parse(saved)
	if err != nil {
		return viewstate.State{Tab: viewstate.Tabs[0]}, nil
	}
	// A saved view for another school only restores the tab.
	if flagCode != "" && v.Code != "" && v.Code != flagCode {
		v = viewstate.State{Tab: v.Tab}
	}
	v.Tab2 = ""
	return v, nil
}

func fileLogger() (*log.Logger, func()) {
	path := config.LogPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err == nil {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
		if err == nil {
			return log.New(f, "", log.LstdFlags), func() { _ = f.Close() }
		}
	}
	return newLogger(), func() {}
}

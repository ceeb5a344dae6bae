// Package cmd implements the sims CLI commands.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/theirongolddev/sims/internal/cli"
	"github.com/theirongolddev/sims/internal/config"
	"github.com/theirongolddev/sims/internal/draft"
	"github.com/theirongolddev/sims/internal/review"
	"github.com/theirongolddev/sims/internal/sdapi"
	"github.com/theirongolddev/sims/internal/store"
	"github.com/theirongolddev/sims/internal/submit"

	"github.com/spf13/cobra"
)

var (
	flagCode    string
	flagYear    int
	flagNoCache bool
	flagQuiet   bool
)

var rootCmd = &cobra.Command{
	Use:   "sims",
	Short: "School budget dashboard",
	Long:  "Prepare, review and submit a school's annual budget, and manage school data.",
	RunE:  runSummary,

	SilenceUsage: true,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagCode, "code", "c", "", "School code (default from config or "+config.EnvSchool+")")
	rootCmd.PersistentFlags().IntVarP(&flagYear, "year", "y", 0, "Budget year (default next calendar year)")
	rootCmd.PersistentFlags().BoolVar(&flagNoCache, "no-cache", false, "Skip the local budget-code cache")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")
}

// loadConfig loads .env and the config file. A broken config file is
// reported and defaults are used.
func loadConfig() config.Config {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "  warning: %v\n", err)
	}
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "  warning: %v (using defaults)\n", err)
		return config.DefaultConfig()
	}
	return cfg
}

func progress(format string, args ...any) {
	if flagQuiet {
		return
	}
	fmt.Fprintf(os.Stderr, "  "+format+"\n", args...)
}

// newLogger logs to stderr unless --quiet is set.
func newLogger() *log.Logger {
	if flagQuiet {
		return log.New(io.Discard, "", 0)
	}
	return log.New(os.Stderr, "  sims: ", 0)
}

func schoolCode(cfg config.Config) (string, error) {
	if flagCode != "" {
		return flagCode, nil
	}
	if code := config.SchoolCode(cfg); code != "" {
		return code, nil
	}
	return "", errors.New("no school code: pass --code, set " + config.EnvSchool + ", or run `sims setup`")
}

func budgetYear() int {
	if flagYear > 0 {
		return flagYear
	}
	return submit.TargetYear(time.Now())
}

func newClient(cfg config.Config) (*sdapi.Client, error) {
	c, err := sdapi.NewClient(config.APIURL(cfg), config.APIToken(cfg), sdapi.WithTimeout(cfg.Timeout()))
	if errors.Is(err, sdapi.ErrNoBaseURL) {
		return nil, errors.New("API URL not configured: set " + config.EnvAPIURL + " or run `sims setup`")
	}
	return c, err
}

func apiContext(cfg config.Config) (context.Context, context.CancelFunc) {
	// Leave room for a create after the existence check.
	return context.WithTimeout(context.Background(), 2*cfg.Timeout())
}

func openStore() (*store.Store, error) {
	st, err := store.Open(config.StatePath())
	if err != nil {
		return nil, fmt.Errorf("opening state database: %w", err)
	}
	return st, nil
}

// workspace is the local draft of one school year and its persisted state.
type workspace struct {
	cfg   config.Config
	store *store.Store
	draft *draft.Draft
	gate  *review.Gate
	saved bool // a draft was found in the store
}

// openWorkspace loads the saved draft for the selected school and year, or
// starts an empty one.
func openWorkspace() (*workspace, error) {
	cfg := loadConfig()
	code, err := schoolCode(cfg)
	if err != nil {
		return nil, err
	}
	st, err := openStore()
	if err != nil {
		return nil, err
	}
	year := budgetYear()

	ws := &workspace{cfg: cfg, store: st, gate: review.NewGate()}
	snap, cl, ok, err := st.LoadDraft(code, year)
	if err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("loading draft: %w", err)
	}
	if ok {
		ws.draft = draft.FromSnapshot(snap)
		ws.saved = true
		for _, sec := range review.Sections {
			if cl.Get(sec) {
				_ = ws.gate.Set(sec, true)
			}
		}
	} else {
		ws.draft = draft.New(code, year)
	}
	return ws, nil
}

func (w *workspace) save() error {
	if err := w.store.SaveDraft(w.draft.Snapshot(), w.gate.Checklist()); err != nil {
		return fmt.Errorf("saving draft: %w", err)
	}
	return nil
}

func (w *workspace) Close() error {
	return w.store.Close()
}

func formatNumber(n int64) string {
	return cli.FormatNumber(n)
}

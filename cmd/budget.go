package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/theirongolddev/sims/internal/cli"
	"github.com/theirongolddev/sims/internal/pipeline"
	"github.com/theirongolddev/sims/internal/review"
	"github.com/theirongolddev/sims/internal/submit"
	"github.com/theirongolddev/sims/internal/wire"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

var (
	flagYes   bool
	flagForce bool
	flagEdit  bool
)

var budgetCmd = &cobra.Command{
	Use:   "budget",
	Short: "Fetch, load, submit or reset the school budget",
}

var budgetShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the budget stored on the server",
	RunE:  runBudgetShow,
}

var budgetEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Load the server budget into the local draft for editing",
	RunE:  runBudgetEdit,
}

var budgetSubmitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Review the checklist and submit the local draft",
	RunE:  runBudgetSubmit,
}

var budgetResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Discard the local draft",
	RunE:  runBudgetReset,
}

func init() {
	budgetEditCmd.Flags().BoolVarP(&flagForce, "force", "f", false, "Overwrite a non-empty local draft")
	budgetSubmitCmd.Flags().BoolVar(&flagEdit, "edit", false, "Update the loaded budget instead of creating one")
	budgetSubmitCmd.Flags().BoolVar(&flagYes, "yes", false, "Tick every checklist section without prompting")
	budgetResetCmd.Flags().BoolVar(&flagYes, "yes", false, "Do not ask for confirmation")

	budgetCmd.AddCommand(budgetShowCmd, budgetEditCmd, budgetSubmitCmd, budgetResetCmd)
	rootCmd.AddCommand(budgetCmd)
}

func runBudgetShow(_ *cobra.Command, _ []string) error {
	cfg := loadConfig()
	code, err := schoolCode(cfg)
	if err != nil {
		return err
	}
	client, err := newClient(cfg)
	if err != nil {
		return err
	}
	rates, err := cfg.Rates()
	if err != nil {
		return err
	}
	year := budgetYear()

	progress("Fetching %s budget for %d...", code, year)
	ctx, cancel := apiContext(cfg)
	defer cancel()
	p, err := client.FetchBudget(ctx, code, year)
	if err != nil {
		return fmt.Errorf("fetching budget: %w", err)
	}

	meta, budget, revenue := wire.Hydrate(*p)
	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("SUBMITTED BUDGET  %s  %d", code, p.Year)))
	fmt.Println()
	if meta.SchoolName != "" {
		fmt.Printf("  %s, %s\n", meta.SchoolName, meta.County)
	}
	fmt.Printf("  Budget id: %s\n\n", p.ID)
	printBudget(budget, revenue, rates)
	return nil
}

func runBudgetEdit(_ *cobra.Command, _ []string) error {
	ws, err := openWorkspace()
	if err != nil {
		return err
	}
	defer func() { _ = ws.Close() }()

	if !ws.draft.Empty() && !flagForce {
		return errors.New("the local draft has unsaved lines; submit it, run `sims budget reset`, or pass --force")
	}
	client, err := newClient(ws.cfg)
	if err != nil {
		return err
	}
	svc := submit.New(client, ws.store, newLogger())

	snap := ws.draft.Snapshot()
	progress("Loading %s budget for %d...", snap.SchoolCode, snap.Year)
	ctx, cancel := apiContext(ws.cfg)
	defer cancel()
	p, err := svc.LoadForEdit(ctx, snap.SchoolCode, snap.Year)
	if err != nil {
		return fmt.Errorf("loading budget: %w", err)
	}

	meta, budget, revenue := wire.Hydrate(*p)
	ws.draft.Hydrate(meta, budget, revenue)
	ws.gate.Reset()
	if err := ws.save(); err != nil {
		return err
	}
	fmt.Printf("  Loaded budget %s into the local draft.\n", p.ID)
	fmt.Println("  Make changes, then run `sims budget submit --edit`.")
	return nil
}

func runBudgetSubmit(_ *cobra.Command, _ []string) error {
	ws, err := openWorkspace()
	if err != nil {
		return err
	}
	defer func() { _ = ws.Close() }()

	if ws.draft.Empty() {
		return errors.New("the local draft is empty")
	}
	rates, err := ws.cfg.Rates()
	if err != nil {
		return err
	}
	snap := ws.draft.Snapshot()
	printBudget(snap.Budget, snap.Revenue, rates)

	ws.gate.OpenReview()
	if err := confirmChecklist(ws.gate); err != nil {
		return err
	}
	if err := ws.save(); err != nil {
		return err
	}

	client, err := newClient(ws.cfg)
	if err != nil {
		return err
	}
	svc := submit.New(client, ws.store, newLogger())
	over := pipeline.Summarize(snap.Budget, snap.Revenue, rates).OverBudget
	if over {
		return errors.New("the budget exceeds revenue; reduce spending before submitting")
	}

	var res submit.Result
	ctx, cancel := apiContext(ws.cfg)
	defer cancel()
	progress("Submitting...")
	err = ws.gate.Submit(ctx, over, func(ctx context.Context) error {
		var err error
		res, err = svc.Submit(ctx, submit.Request{
			SchoolCode: snap.SchoolCode,
			Edit:       flagEdit,
			Payload:    ws.draft.Payload(),
		})
		return err
	})

	n := submit.NoticeFor(res, err)
	fmt.Println()
	fmt.Printf("  %s\n", n.Title)
	fmt.Printf("  %s\n\n", n.Description)
	if err != nil {
		return err
	}

	ws.draft.Reset()
	ws.gate.Reset()
	if err := ws.store.DeleteDraft(snap.SchoolCode, snap.Year); err != nil {
		progress("Could not clear the local draft: %v", err)
	}
	return nil
}

// confirmChecklist asks which sections were reviewed, unless --yes.
func confirmChecklist(g *review.Gate) error {
	cl := g.Checklist()
	if flagYes {
		for _, sec := range review.Sections {
			_ = g.Set(sec, true)
		}
		return nil
	}

	labels := map[review.Section]string{
		review.SectionMeta:    "School details are correct",
		review.SectionRevenue: "Revenue lines are correct",
		review.SectionBudget:  "Budget lines are correct",
	}
	var opts []huh.Option[review.Section]
	for _, sec := range review.Sections {
		opts = append(opts, huh.NewOption(labels[sec], sec).Selected(cl.Get(sec)))
	}
	var picked []review.Section
	err := huh.NewMultiSelect[review.Section]().
		Title("Review before submitting").
		Description("Tick every section you have checked.").
		Options(opts...).
		Value(&picked).
		Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return errors.New("submission cancelled")
	}
	if err != nil {
		return err
	}

	ticked := map[review.Section]bool{}
	for _, sec := range picked {
		ticked[sec] = true
	}
	for _, sec := range review.Sections {
		if err := g.Set(sec, ticked[sec]); err != nil {
			return err
		}
	}
	if !g.Checklist().Complete() {
		return errors.New("every section must be reviewed before submitting")
	}
	return nil
}

func runBudgetReset(_ *cobra.Command, _ []string) error {
	ws, err := openWorkspace()
	if err != nil {
		return err
	}
	defer func() { _ = ws.Close() }()

	snap := ws.draft.Snapshot()
	if !flagYes {
		ok := false
		err := huh.NewConfirm().
			Title(fmt.Sprintf("Discard the %s draft for %d?", snap.SchoolCode, snap.Year)).
			Affirmative("Discard").
			Negative("Keep").
			Value(&ok).
			Run()
		if err != nil && !errors.Is(err, huh.ErrUserAborted) {
			return err
		}
		if !ok {
			fmt.Println("  Kept the draft.")
			return nil
		}
	}

	ws.draft.Reset()
	ws.gate.Reset()
	if err := ws.store.DeleteDraft(snap.SchoolCode, snap.Year); err != nil {
		return fmt.Errorf("deleting draft: %w", err)
	}
	if err := ws.store.Delete(submit.BudgetKey); err != nil {
		return err
	}
	fmt.Println("  Draft discarded.")
	return nil
}

package cmd

import (
	"fmt"

	"github.com/theirongolddev/sims/internal/cli"
	"github.com/theirongolddev/sims/internal/currency"
	"github.com/theirongolddev/sims/internal/model"
	"github.com/theirongolddev/sims/internal/pipeline"
	"github.com/theirongolddev/sims/internal/review"

	"github.com/spf13/cobra"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Totals of the local draft",
	RunE:  runSummary,
}

func init() {
	rootCmd.AddCommand(summaryCmd)
}

func runSummary(_ *cobra.Command, _ []string) error {
	ws, err := openWorkspace()
	if err != nil {
		return err
	}
	defer func() { _ = ws.Close() }()

	rates, err := ws.cfg.Rates()
	if err != nil {
		return err
	}
	snap := ws.draft.Snapshot()

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("SCHOOL BUDGET  %s  %d", snap.SchoolCode, snap.Year)))
	fmt.Println()

	if ws.draft.Empty() {
		fmt.Println("  The draft is empty.")
		fmt.Println("  Add lines with `sims draft add-revenue` and `sims draft add-expense`,")
		fmt.Println("  or load the submitted budget with `sims budget edit`.")
		fmt.Println()
		return nil
	}

	printBudget(snap.Budget, snap.Revenue, rates)
	printChecklist(ws.gate.Checklist())
	return nil
}

// printBudget renders headline totals and per-group breakdowns.
func printBudget(budget model.BudgetTree, revenue model.RevenueTree, rates currency.RateProvider) {
	tot := pipeline.Summarize(budget, revenue, rates)

	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Totals (SSP)",
		Headers: []string{"", "Amount"},
		Rows: [][]string{
			{"Revenue", cli.FormatSSP(tot.TotalRevenue)},
			{"Budget", cli.FormatSSP(tot.TotalBudget)},
			{cli.SeparatorRow},
			{"Balance", cli.RenderBalance(tot.Balance)},
			{"Utilization", cli.RenderUtilizationBar(tot.Utilization, tot.UtilizationDefined, 20)},
			{"USD rate", fmt.Sprintf("1 USD = %s SSP", cli.FormatMoney(tot.Rate))},
		},
	}))
	fmt.Println()

	printGroups("Revenue by group", pipeline.AggregateRevenueGroups(revenue, rates))
	printGroups("Budget by group", pipeline.AggregateBudgetGroups(budget, rates))
}

func printGroups(title string, groups []model.GroupTotals) {
	if len(groups) == 0 {
		return
	}
	var rows [][]string
	for i, g := range groups {
		if i > 0 {
			rows = append(rows, []string{cli.SeparatorRow})
		}
		rows = append(rows, []string{g.Group, "", "", cli.FormatNative(g.Group, g.Native), cli.FormatSSP(g.SSP)})
		for _, c := range g.Categories {
			rows = append(rows, []string{"", c.Name, c.Code, cli.FormatNumber(int64(c.Items)), cli.FormatSSP(c.SSP)})
		}
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   title,
		Headers: []string{"Group", "Category", "Code", "Lines / Native", "SSP"},
		Rows:    rows,
	}))
	fmt.Println()
}

func printChecklist(cl review.Checklist) {
	fmt.Println("  Review checklist")
	fmt.Println("    " + cli.RenderCheck("School details", cl.Meta))
	fmt.Println("    " + cli.RenderCheck("Revenue", cl.Revenue))
	fmt.Println("    " + cli.RenderCheck("Budget", cl.Budget))
	fmt.Println()
}

package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/theirongolddev/sims/internal/cli"
	"github.com/theirongolddev/sims/internal/draft"
	"github.com/theirongolddev/sims/internal/model"
	"github.com/theirongolddev/sims/internal/validate"
	"github.com/theirongolddev/sims/internal/wire"

	"github.com/spf13/cobra"
)

var (
	flagGroup       string
	flagCategory    string
	flagBudgetCode  string
	flagDescription string
	flagAmount      float64
	flagItems       []string
	flagFunding     string
	flagMonth       string
)

var draftCmd = &cobra.Command{
	Use:   "draft",
	Short: "Inspect and edit the local budget draft",
}

var draftShowCmd = &cobra.Command{
	Use:   "show",
	Short: "List every line of the draft with its id",
	RunE:  runDraftShow,
}

var draftAddRevenueCmd = &cobra.Command{
	Use:   "add-revenue",
	Short: "Add an expected income line",
	RunE:  runDraftAddRevenue,
}

var draftAddExpenseCmd = &cobra.Command{
	Use:   "add-expense",
	Short: "Add a planned expenditure line",
	Example: `  sims draft add-expense --category "Learning materials" --code 2210 \
    --description "Term 1 stationery" --item "exercise books=50x120" --item "pens=20x240"`,
	RunE: runDraftAddExpense,
}

var draftRemoveCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Remove a group, category or line by id",
	Args:  cobra.ExactArgs(1),
	RunE:  runDraftRemove,
}

var draftMetaCmd = &cobra.Command{
	Use:   "meta",
	Short: "Set school details sent with the budget",
	RunE:  runDraftMeta,
}

var draftImportCmd = &cobra.Command{
	Use:   "import <file.json>",
	Short: "Replace the draft with a budget payload from a file",
	Args:  cobra.ExactArgs(1),
	RunE:  runDraftImport,
}

var draftExportCmd = &cobra.Command{
	Use:   "export [file.json]",
	Short: "Write the draft as the API payload (stdout by default)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runDraftExport,
}

func init() {
	for _, c := range []*cobra.Command{draftAddRevenueCmd, draftAddExpenseCmd} {
		c.Flags().StringVar(&flagGroup, "group", model.GroupOPEX, "OPEX (SSP) or CAPEX (USD)")
		c.Flags().StringVar(&flagCategory, "category", "", "Category name (default: the code's name)")
		c.Flags().StringVar(&flagBudgetCode, "budget-code", "", "Budget code of the category")
		c.Flags().StringVar(&flagDescription, "description", "", "Line description")
	}
	draftAddRevenueCmd.Flags().Float64Var(&flagAmount, "amount", 0, "Expected amount")
	draftAddExpenseCmd.Flags().StringArrayVar(&flagItems, "item", nil, "Needed item as name=unitCost x quantity (repeatable)")
	draftAddExpenseCmd.Flags().StringVar(&flagFunding, "funding", "", "Funding source")
	draftAddExpenseCmd.Flags().StringVar(&flagMonth, "month", "", "Month the activity is completed")

	addMetaFlags(draftMetaCmd)

	draftCmd.AddCommand(draftShowCmd, draftAddRevenueCmd, draftAddExpenseCmd, draftRemoveCmd,
		draftMetaCmd, draftImportCmd, draftExportCmd)
	rootCmd.AddCommand(draftCmd)
}

func runDraftShow(_ *cobra.Command, _ []string) error {
	ws, err := openWorkspace()
	if err != nil {
		return err
	}
	defer func() { _ = ws.Close() }()

	snap := ws.draft.Snapshot()
	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("DRAFT  %s  %d", snap.SchoolCode, snap.Year)))
	fmt.Println()
	if ws.draft.Empty() {
		fmt.Println("  The draft is empty.")
		return nil
	}

	var rows [][]string
	for _, g := range snap.Revenue {
		rows = append(rows, []string{g.ID, g.GroupName, "", ""})
		for _, c := range g.Categories {
			rows = append(rows, []string{c.ID, "  " + c.CategoryName, c.CategoryCode, ""})
			for _, it := range c.Items {
				rows = append(rows, []string{it.ID, "    " + it.Description, it.BudgetCode, cli.FormatNative(g.GroupName, it.Amount)})
			}
		}
	}
	if len(rows) > 0 {
		fmt.Print(cli.RenderTable(cli.Table{Title: "Revenue", Headers: []string{"ID", "Line", "Code", "Amount"}, Rows: rows}))
		fmt.Println()
	}

	rows = nil
	for _, g := range snap.Budget {
		rows = append(rows, []string{g.ID, g.GroupName, "", "", ""})
		for _, c := range g.Categories {
			rows = append(rows, []string{c.ID, "  " + c.CategoryName, c.CategoryCode, "", ""})
			for _, it := range c.Items {
				var total float64
				for _, n := range it.NeededItems {
					total += n.TotalCost
				}
				rows = append(rows, []string{it.ID, "    " + it.Description, it.BudgetCode, "", cli.FormatNative(g.GroupName, total)})
				for _, n := range it.NeededItems {
					rows = append(rows, []string{"", "      " + n.Name, "",
						cli.FormatNative(g.GroupName, n.UnitCost) + " x " + cli.FormatQuantity(n.Quantity),
						cli.FormatNative(g.GroupName, n.TotalCost)})
				}
			}
		}
	}
	if len(rows) > 0 {
		fmt.Print(cli.RenderTable(cli.Table{Title: "Budget", Headers: []string{"ID", "Line", "Code", "Unit x Qty", "Total"}, Rows: rows}))
		fmt.Println()
	}
	return nil
}

// categoryName is --category, falling back to the cached code name.
func categoryName() (string, error) {
	if flagCategory != "" {
		return flagCategory, nil
	}
	if flagBudgetCode == "" {
		return "", errors.New("pass --category or --budget-code")
	}
	codes, err := loadBudgetCodes()
	if err != nil {
		return "", fmt.Errorf("looking up code %s: %w", flagBudgetCode, err)
	}
	c, ok := findCode(codes, flagBudgetCode)
	if !ok {
		return "", fmt.Errorf("unknown budget code %s", flagBudgetCode)
	}
	return c.Name, nil
}

func runDraftAddRevenue(_ *cobra.Command, _ []string) error {
	ws, err := openWorkspace()
	if err != nil {
		return err
	}
	defer func() { _ = ws.Close() }()

	name, err := categoryName()
	if err != nil {
		return err
	}
	cat, err := ws.draft.EnsureRevenueCategory(strings.ToUpper(flagGroup), name, flagBudgetCode)
	if err != nil {
		return err
	}
	id, err := ws.draft.AddRevenueItem(cat, model.RevenueItem{
		BudgetCode:  flagBudgetCode,
		Description: flagDescription,
		Amount:      flagAmount,
	})
	if err != nil {
		return err
	}
	if err := ws.save(); err != nil {
		return err
	}
	fmt.Printf("  Added revenue line %s (%s)\n", id, cli.FormatNative(strings.ToUpper(flagGroup), flagAmount))
	return nil
}

// parseNeededItem reads "name=unitCost x quantity".
func parseNeededItem(s string) (model.NeededItem, error) {
	name, spec, ok := strings.Cut(s, "=")
	if !ok || strings.TrimSpace(name) == "" {
		return model.NeededItem{}, fmt.Errorf("item %q: want name=unitCost x quantity", s)
	}
	cost, qty, err := draft.ParseCostQuantity(spec)
	if err != nil {
		return model.NeededItem{}, fmt.Errorf("item %q: %w", s, err)
	}
	return model.NeededItem{Name: strings.TrimSpace(name), UnitCost: cost, Quantity: qty}, nil
}

func runDraftAddExpense(_ *cobra.Command, _ []string) error {
	if len(flagItems) == 0 {
		return errors.New("pass at least one --item")
	}
	var needed []model.NeededItem
	for _, s := range flagItems {
		n, err := parseNeededItem(s)
		if err != nil {
			return err
		}
		needed = append(needed, n)
	}

	ws, err := openWorkspace()
	if err != nil {
		return err
	}
	defer func() { _ = ws.Close() }()

	name, err := categoryName()
	if err != nil {
		return err
	}
	group := strings.ToUpper(flagGroup)
	cat, err := ws.draft.EnsureBudgetCategory(group, name, flagBudgetCode)
	if err != nil {
		return err
	}
	id, err := ws.draft.AddBudgetItem(cat, model.BudgetItem{
		BudgetCode:                 flagBudgetCode,
		Description:                flagDescription,
		NeededItems:                needed,
		FundingSource:              flagFunding,
		MonthActivityToBeCompleted: flagMonth,
	})
	if err != nil {
		return err
	}
	if err := ws.save(); err != nil {
		return err
	}
	fmt.Printf("  Added budget line %s with %d item(s)\n", id, len(needed))
	return nil
}

func runDraftRemove(_ *cobra.Command, args []string) error {
	ws, err := openWorkspace()
	if err != nil {
		return err
	}
	defer func() { _ = ws.Close() }()

	if err := ws.draft.Remove(args[0]); err != nil {
		return err
	}
	if err := ws.save(); err != nil {
		return err
	}
	fmt.Printf("  Removed %s\n", args[0])
	return nil
}

func runDraftMeta(cmd *cobra.Command, _ []string) error {
	ws, err := openWorkspace()
	if err != nil {
		return err
	}
	defer func() { _ = ws.Close() }()

	meta := ws.draft.Snapshot().Meta
	applyMetaFlags(cmd, &meta)
	if err := validate.Struct(meta); err != nil {
		return err
	}
	ws.draft.SetMeta(meta)
	if err := ws.save(); err != nil {
		return err
	}
	fmt.Println("  School details updated.")
	return nil
}

func runDraftImport(_ *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	var p wire.Payload
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("parsing %s: %w", args[0], err)
	}

	ws, err := openWorkspace()
	if err != nil {
		return err
	}
	defer func() { _ = ws.Close() }()

	snap := ws.draft.Snapshot()
	if p.SchoolCode != "" && p.SchoolCode != snap.SchoolCode {
		return fmt.Errorf("payload is for school %s, draft is for %s (pass --code)", p.SchoolCode, snap.SchoolCode)
	}
	meta, budget, revenue := wire.Hydrate(p)
	ws.draft.Hydrate(meta, budget, revenue)
	ws.gate.Reset()
	if err := ws.save(); err != nil {
		return err
	}
	fmt.Printf("  Imported %s into the %s draft for %d.\n", args[0], snap.SchoolCode, snap.Year)
	return nil
}

func runDraftExport(_ *cobra.Command, args []string) error {
	ws, err := openWorkspace()
	if err != nil {
		return err
	}
	defer func() { _ = ws.Close() }()

	data, err := json.MarshalIndent(ws.draft.Payload(), "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	if len(args) == 0 {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(args[0], data, 0o600); err != nil {
		return err
	}
	progress("Wrote %s", args[0])
	return nil
}

package cmd

import (
	"fmt"
	"sort"

	"github.com/theirongolddev/sims/internal/cli"
	"github.com/theirongolddev/sims/internal/model"

	"github.com/spf13/cobra"
)

var flagCodesKind string

var codesCmd = &cobra.Command{
	Use:   "codes",
	Short: "List budget and revenue codes",
	RunE:  runCodes,
}

func init() {
	codesCmd.Flags().StringVar(&flagCodesKind, "kind", "", "Only list \"budget\" or \"revenue\" codes")
	rootCmd.AddCommand(codesCmd)
}

func runCodes(_ *cobra.Command, _ []string) error {
	codes, err := loadBudgetCodes()
	if err != nil {
		return err
	}

	var rows [][]string
	for _, c := range codes {
		if flagCodesKind != "" && c.Kind != flagCodesKind {
			continue
		}
		rows = append(rows, []string{c.Code, c.Name, c.Group, c.Kind, c.Parent})
	}
	if len(rows) == 0 {
		fmt.Println("\n  No budget codes found.")
		return nil
	}

	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   fmt.Sprintf("Budget codes (%s)", formatNumber(int64(len(rows)))),
		Headers: []string{"Code", "Name", "Group", "Kind", "Parent"},
		Rows:    rows,
	}))
	return nil
}

// loadBudgetCodes returns the code taxonomy, from the local cache when it is
// fresh, else from the API. A stale cache is used when the API fails.
func loadBudgetCodes() ([]model.BudgetCode, error) {
	cfg := loadConfig()

	st, err := openStore()
	if err != nil {
		progress("Cache unavailable: %v", err)
	}
	if st != nil {
		defer func() { _ = st.Close() }()
	}

	var cached []model.BudgetCode
	if st != nil && !flagNoCache {
		codes, fresh, err := st.LoadBudgetCodes(cfg.CodesMaxAge())
		if err != nil {
			progress("Cache error: %v", err)
		} else if fresh {
			progress("Loaded %d codes from cache", len(codes))
			return sortCodes(codes), nil
		}
		cached = codes
	}

	client, err := newClient(cfg)
	if err != nil {
		return nil, err
	}
	progress("Fetching budget codes...")
	ctx, cancel := apiContext(cfg)
	defer cancel()

	codes, err := client.FetchBudgetCodes(ctx)
	if err != nil {
		if len(cached) > 0 {
			progress("Fetch failed (%v), using stale cache", err)
			return sortCodes(cached), nil
		}
		return nil, fmt.Errorf("fetching budget codes: %w", err)
	}
	if st != nil {
		if err := st.SaveBudgetCodes(codes); err != nil {
			progress("Could not cache codes: %v", err)
		}
	}
	return sortCodes(codes), nil
}

func sortCodes(codes []model.BudgetCode) []model.BudgetCode {
	sort.SliceStable(codes, func(i, j int) bool {
		if codes[i].Kind != codes[j].Kind {
			return codes[i].Kind < codes[j].Kind
		}
		return codes[i].Code < codes[j].Code
	})
	return codes
}

// findCode looks up a code's display name, for filling in category names.
func findCode(codes []model.BudgetCode, code string) (model.BudgetCode, bool) {
	for _, c := range codes {
		if c.Code == code {
			return c, true
		}
	}
	return model.BudgetCode{}, false
}

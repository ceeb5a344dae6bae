package cmd

import (
	"fmt"

	"github.com/theirongolddev/sims/internal/cli"
	"github.com/theirongolddev/sims/internal/config"
	"github.com/theirongolddev/sims/internal/currency"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	fmt.Printf("  Config file: %s\n", config.ConfigPath())
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Printf("  State:       %s\n", config.StatePath())
	fmt.Printf("  Log:         %s\n", config.LogPath())
	fmt.Println()

	fmt.Println("  [General]")
	if code := config.SchoolCode(cfg); code != "" {
		fmt.Printf("    School code:     %s\n", code)
	} else {
		fmt.Println("    School code:     not configured")
	}
	fmt.Printf("    Codes cache age: %s\n", cfg.CodesMaxAge())
	fmt.Println()

	fmt.Println("  [API]")
	if u := config.APIURL(cfg); u != "" {
		fmt.Printf("    Base URL: %s\n", u)
	} else {
		fmt.Println("    Base URL: not configured")
	}
	if tok := config.APIToken(cfg); tok != "" {
		fmt.Printf("    Token:    %s\n", maskToken(tok))
	} else {
		fmt.Println("    Token:    not configured")
	}
	fmt.Printf("    Timeout:  %s\n", cfg.Timeout())
	fmt.Println()

	fmt.Println("  [Currency]")
	if cfg.Currency.USDToSSP != nil {
		fmt.Printf("    USD to SSP: %s\n", cli.FormatMoney(*cfg.Currency.USDToSSP))
	} else {
		fmt.Printf("    USD to SSP: %s (default)\n", cli.FormatMoney(currency.DefaultUSDToSSP))
	}
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme: %s\n", cfg.Appearance.Theme)
	fmt.Println()

	fmt.Println("  [TUI]")
	fmt.Printf("    Restore last view: %s\n", cli.FormatBool(cfg.TUI.RestoreView))
	fmt.Println()

	fmt.Println("  Run `sims setup` to reconfigure.")
	return nil
}

func maskToken(key string) string {
	if len(key) > 16 {
		return key[:8] + "..." + key[len(key)-4:]
	}
	if len(key) > 4 {
		return key[:4] + "..."
	}
	return "****"
}
